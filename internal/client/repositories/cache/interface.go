package cache

import (
	"context"
	"time"

	"github.com/zuno-wallet/zuno-go/internal/client/models"
)

// Repository describes the generic expiring key/value cache. Entries carry an
// explicit expiry; "expired" is a pure function of the clock reading the
// caller passes in, so the store itself never consults wall time.
type Repository interface {
	// Set upserts an entry.
	Set(ctx context.Context, entry models.CachedData) error

	// Get returns an entry (possibly expired) or common.ErrNotFound.
	Get(ctx context.Context, key string) (*models.CachedData, error)

	// Delete removes an entry; deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// DeleteExpired removes every entry whose expiry is at or before now.
	DeleteExpired(ctx context.Context, now time.Time) error

	// Clear removes all entries.
	Clear(ctx context.Context) error
}
