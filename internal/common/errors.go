// Package common defines shared constants and sentinel errors used across
// the Zuno client layers. Callers should use errors.Is to match these values.
package common

import "errors"

var (
	// Transport-level errors.
	ErrUnavailable = errors.New("server unavailable")
	ErrTimeout     = errors.New("request timed out")

	// Auth / session errors.
	ErrUnauthorized         = errors.New("unauthorized")
	ErrTokenExpired         = errors.New("token expired")
	ErrNotAuthenticated     = errors.New("not authenticated")
	ErrNoStoredCredentials  = errors.New("no stored credentials")
	ErrTagAlreadyRegistered = errors.New("zuno tag already registered")

	// Protocol errors (WebAuthn handshake).
	ErrInvalidChallenge          = errors.New("invalid or malformed challenge")
	ErrUnsupportedCredentialType = errors.New("unsupported credential type")

	// Validation errors.
	ErrInvalidHandleTag = errors.New("invalid zuno tag")
	ErrInvalidAmount    = errors.New("invalid amount")
	ErrInvalidRecipient = errors.New("invalid recipient")

	// Domain errors.
	ErrNotFound            = errors.New("not found")
	ErrWalletNotFound      = errors.New("wallet not found")
	ErrInsufficientBalance = errors.New("insufficient balance")
	ErrInternal            = errors.New("internal error")
)
