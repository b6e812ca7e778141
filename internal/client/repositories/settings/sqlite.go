package settings

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/zuno-wallet/zuno-go/internal/client/models"
	"github.com/zuno-wallet/zuno-go/internal/dbx"
)

// SQLiteRepository implements Repository over a DBTX.
type SQLiteRepository struct {
	db dbx.DBTX
}

func NewSQLiteRepository(db dbx.DBTX) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

func (r *SQLiteRepository) Get(ctx context.Context) (models.Settings, error) {
	var s models.Settings
	err := r.db.QueryRowContext(ctx,
		`SELECT currency, network, theme, notifications_enabled FROM settings WHERE id = 1`).
		Scan(&s.Currency, &s.Network, &s.Theme, &s.NotificationsEnabled)
	if errors.Is(err, sql.ErrNoRows) {
		return models.DefaultSettings(), nil
	}
	if err != nil {
		return models.Settings{}, fmt.Errorf("failed to get settings: %w", err)
	}
	return s, nil
}

func (r *SQLiteRepository) Save(ctx context.Context, s models.Settings) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO settings (id, currency, network, theme, notifications_enabled)
		VALUES (1, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			currency = excluded.currency,
			network = excluded.network,
			theme = excluded.theme,
			notifications_enabled = excluded.notifications_enabled
	`, s.Currency, s.Network, s.Theme, s.NotificationsEnabled)
	if err != nil {
		return fmt.Errorf("failed to save settings: %w", err)
	}
	return nil
}
