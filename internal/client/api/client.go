// Package api contains the transport used to talk to the Zuno backend.
//
// It provides:
//  1. A transport-agnostic contract (the Client interface): the two-phase
//     WebAuthn handshake endpoints, current-user fetch/update, wallet and
//     transaction operations, and session refresh.
//  2. A concrete HTTP implementation (HTTPClient) that injects the bearer
//     access token, transparently refreshes an expired session once per
//     request, and maps HTTP statuses to the sentinel errors in
//     internal/common.
//
// Callers match common conditions with errors.Is: common.ErrUnavailable,
// common.ErrUnauthorized, common.ErrTagAlreadyRegistered, common.ErrNotFound.
package api

import (
	"context"
	"encoding/json"

	"github.com/zuno-wallet/zuno-go/internal/client/models"
	"github.com/zuno-wallet/zuno-go/internal/webauthnx"
)

// ChallengeResponse is the server's answer to a handshake begin call. Options
// is kept raw: the two observed shapes are resolved by webauthnx.
type ChallengeResponse struct {
	ChallengeID string          `json:"challenge_id"`
	Options     json.RawMessage `json:"options"`
}

// AuthResponse is the server's answer to a handshake completion call (and to
// a session refresh, where User is zero).
type AuthResponse struct {
	AccessToken  string      `json:"access_token"`
	RefreshToken string      `json:"refresh_token"`
	ExpiresIn    int64       `json:"expires_in"`
	User         models.User `json:"user"`
}

// UserUpdate carries the mutable profile fields of PATCH /user. Nil fields
// are omitted from the request.
type UserUpdate struct {
	DisplayName         *string `json:"display_name,omitempty"`
	Email               *string `json:"email,omitempty"`
	DefaultCurrency     *string `json:"default_currency,omitempty"`
	PreferredNetwork    *string `json:"preferred_network,omitempty"`
	PreferredStablecoin *string `json:"preferred_stablecoin,omitempty"`
}

// SendRequest describes an outgoing payment. Exactly one of ToAddress or
// RecipientTag is set.
type SendRequest struct {
	WalletID     string `json:"wallet_id"`
	ToAddress    string `json:"to_address,omitempty"`
	RecipientTag string `json:"recipient_tag,omitempty"`
	Amount       string `json:"amount"`
	TokenSymbol  string `json:"token_symbol"`
}

// Client is the backend contract the services layer depends on.
type Client interface {
	// Unauthenticated handshake endpoints.
	BeginRegistration(ctx context.Context, tag, displayName, email string) (*ChallengeResponse, error)
	CompleteRegistration(ctx context.Context, challengeID string, credential *webauthnx.RegistrationResponse) (*AuthResponse, error)
	BeginLogin(ctx context.Context, tag string) (*ChallengeResponse, error)
	CompleteLogin(ctx context.Context, challengeID string, credential *webauthnx.AssertionResponse) (*AuthResponse, error)
	RefreshSession(ctx context.Context, refreshToken string) (*AuthResponse, error)

	// Bearer-authenticated endpoints.
	CurrentUser(ctx context.Context) (*models.User, error)
	UpdateUser(ctx context.Context, update UserUpdate) (*models.User, error)
	ListWallets(ctx context.Context) ([]models.Wallet, error)
	CreateWallet(ctx context.Context, network string) (*models.Wallet, error)
	ListTransactions(ctx context.Context, walletID string, limit int) ([]models.Transaction, error)
	SendTransaction(ctx context.Context, req SendRequest) (*models.Transaction, error)

	// SetTokens installs the session token pair used for bearer auth.
	SetTokens(access, refresh string)

	Close() error
}
