// Package models defines the client-side data models mirrored from the Zuno
// backend, plus validation helpers for user-supplied values.
package models

import "time"

// User is the local mirror of a server-side user record.
type User struct {
	// ID is the opaque, immutable server-assigned identifier.
	ID string `json:"id"`

	// ZunoTag is the unique human-chosen handle (stored without the '@').
	ZunoTag string `json:"zuno_tag"`

	Email       string `json:"email,omitempty"`
	DisplayName string `json:"display_name,omitempty"`

	// DefaultCurrency is the fiat currency used for balance display.
	DefaultCurrency string `json:"default_currency"`

	// PreferredNetwork is the blockchain network new wallets default to.
	PreferredNetwork string `json:"preferred_network"`

	// PreferredStablecoin is the token symbol used for payments by default.
	PreferredStablecoin string `json:"preferred_stablecoin"`

	IsVerified bool `json:"is_verified"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
