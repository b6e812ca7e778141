package settings

import (
	"context"

	"github.com/zuno-wallet/zuno-go/internal/client/models"
)

// Repository persists the single-row application settings record.
type Repository interface {
	// Get returns the settings row, or the defaults if none was saved yet.
	Get(ctx context.Context) (models.Settings, error)

	// Save upserts the settings row.
	Save(ctx context.Context, s models.Settings) error
}
