package webauthnx

// attestationResponse carries the registration ceremony artifacts.
type attestationResponse struct {
	ClientDataJSON    string `json:"clientDataJSON"`
	AttestationObject string `json:"attestationObject"`
}

// RegistrationResponse is the WebAuthn-standard JSON body posted to the
// registration completion endpoint. clientExtensionResults is required by the
// spec even when no extensions were exercised.
type RegistrationResponse struct {
	ID                     string              `json:"id"`
	RawID                  string              `json:"rawId"`
	Type                   string              `json:"type"`
	Response               attestationResponse `json:"response"`
	ClientExtensionResults map[string]any      `json:"clientExtensionResults"`
}

// NewRegistrationResponse builds the completion payload from raw ceremony
// output bytes.
func NewRegistrationResponse(credentialID, clientDataJSON, attestationObject []byte) *RegistrationResponse {
	return &RegistrationResponse{
		ID:    Base64URLEncode(credentialID),
		RawID: Base64URLEncode(credentialID),
		Type:  "public-key",
		Response: attestationResponse{
			ClientDataJSON:    Base64URLEncode(clientDataJSON),
			AttestationObject: Base64URLEncode(attestationObject),
		},
		ClientExtensionResults: map[string]any{},
	}
}

// assertionResponse carries the authentication ceremony artifacts. UserHandle
// is omitted entirely (not null) when the authenticator returned none: some
// relying-party implementations reject an explicit null.
type assertionResponse struct {
	ClientDataJSON    string `json:"clientDataJSON"`
	AuthenticatorData string `json:"authenticatorData"`
	Signature         string `json:"signature"`
	UserHandle        string `json:"userHandle,omitempty"`
}

// AssertionResponse is the JSON body posted to the login completion endpoint.
type AssertionResponse struct {
	ID                     string            `json:"id"`
	RawID                  string            `json:"rawId"`
	Type                   string            `json:"type"`
	Response               assertionResponse `json:"response"`
	ClientExtensionResults map[string]any    `json:"clientExtensionResults"`
}

// NewAssertionResponse builds the login completion payload. userHandle may be
// nil or empty.
func NewAssertionResponse(credentialID, clientDataJSON, authenticatorData, signature, userHandle []byte) *AssertionResponse {
	resp := &AssertionResponse{
		ID:    Base64URLEncode(credentialID),
		RawID: Base64URLEncode(credentialID),
		Type:  "public-key",
		Response: assertionResponse{
			ClientDataJSON:    Base64URLEncode(clientDataJSON),
			AuthenticatorData: Base64URLEncode(authenticatorData),
			Signature:         Base64URLEncode(signature),
		},
		ClientExtensionResults: map[string]any{},
	}
	if len(userHandle) > 0 {
		resp.Response.UserHandle = Base64URLEncode(userHandle)
	}
	return resp
}
