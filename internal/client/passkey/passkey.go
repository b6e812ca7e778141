// Package passkey wraps the public-key-credential ceremony behind a small
// Provider interface. A ceremony is a single user-mediated interaction
// (approval gate) producing either a registration attestation or an
// authentication assertion. Providers perform no network I/O.
package passkey

import (
	"context"
	"errors"
)

var (
	// ErrCancelled is returned when the user dismisses the ceremony.
	ErrCancelled = errors.New("ceremony cancelled by user")

	// ErrNotAvailable is returned when no authenticator exists for the
	// relying party (e.g. no device key was ever registered).
	ErrNotAvailable = errors.New("no authenticator available")

	// ErrCeremonyFailed covers any other authenticator-reported failure.
	ErrCeremonyFailed = errors.New("ceremony failed")

	// ErrCeremonyPending is returned when a second ceremony is started
	// while one is still outstanding. At most one ceremony may be in
	// flight per provider; without this guard a concurrent request would
	// silently drop the first ceremony's completion.
	ErrCeremonyPending = errors.New("another ceremony is already in progress")
)

// RegistrationCredential is the raw output of a registration ceremony.
type RegistrationCredential struct {
	CredentialID      []byte
	ClientDataJSON    []byte
	AttestationObject []byte
}

// AssertionCredential is the raw output of an authentication ceremony.
// UserHandle may be empty.
type AssertionCredential struct {
	CredentialID      []byte
	ClientDataJSON    []byte
	AuthenticatorData []byte
	Signature         []byte
	UserHandle        []byte
}

// Provider produces platform credentials for server-issued challenges. Both
// operations block until the user completes or cancels the ceremony and must
// honor context cancellation.
type Provider interface {
	CreateRegistrationCredential(ctx context.Context, challenge []byte, rpID, userName string, userID []byte) (*RegistrationCredential, error)
	CreateAssertionCredential(ctx context.Context, challenge []byte, rpID string) (*AssertionCredential, error)
}

// Gate models the user-approval step of a ceremony (the biometric/passcode
// prompt on a phone). It returns nil to proceed, ErrCancelled if the user
// dismissed the prompt, or any other error to fail the ceremony.
type Gate func(ctx context.Context, prompt string) error

// ApproveAlways is a Gate that never prompts; used in tests and
// non-interactive flows.
func ApproveAlways(ctx context.Context, prompt string) error { return nil }
