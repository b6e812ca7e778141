package common

// AuthorizationHeaderName is the HTTP header used to carry the bearer access
// token on authenticated requests, including the WebSocket upgrade.
const AuthorizationHeaderName = "Authorization"

// Logical keys of the four credential entries held by the session store.
// Their joint presence is what "has stored credentials" means; a partial set
// is treated as no credentials at all.
const (
	KeyAccessToken  = "access_token"
	KeyRefreshToken = "refresh_token"
	KeyUserID       = "user_id"
	KeyZunoTag      = "zuno_tag"
)
