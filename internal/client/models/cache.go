package models

import "time"

// CachedData is a generic expiring key/value entry with no server mirror.
type CachedData struct {
	Key       string
	Value     []byte
	ExpiresAt time.Time
}

// Expired is a pure function of the supplied clock reading.
func (c CachedData) Expired(now time.Time) bool {
	return !now.Before(c.ExpiresAt)
}

// Settings is the single-row, local-only application settings record.
type Settings struct {
	Currency             string
	Network              string
	Theme                string
	NotificationsEnabled bool
}

// DefaultSettings returns the values used before a user payload has ever
// been merged.
func DefaultSettings() Settings {
	return Settings{
		Currency:             "USD",
		Network:              "base",
		Theme:                "system",
		NotificationsEnabled: true,
	}
}
