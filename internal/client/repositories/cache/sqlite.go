package cache

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/zuno-wallet/zuno-go/internal/client/models"
	"github.com/zuno-wallet/zuno-go/internal/common"
	"github.com/zuno-wallet/zuno-go/internal/dbx"
)

// SQLiteRepository implements Repository over a DBTX.
type SQLiteRepository struct {
	db dbx.DBTX
}

func NewSQLiteRepository(db dbx.DBTX) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

func (r *SQLiteRepository) Set(ctx context.Context, entry models.CachedData) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO cached_data (key, value, expires_at) VALUES (?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value, expires_at = excluded.expires_at
	`, entry.Key, entry.Value, entry.ExpiresAt)
	if err != nil {
		return fmt.Errorf("failed to set cache[%s]: %w", entry.Key, err)
	}
	return nil
}

func (r *SQLiteRepository) Get(ctx context.Context, key string) (*models.CachedData, error) {
	entry := &models.CachedData{}
	err := r.db.QueryRowContext(ctx,
		`SELECT key, value, expires_at FROM cached_data WHERE key = ?`, key).
		Scan(&entry.Key, &entry.Value, &entry.ExpiresAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, common.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get cache[%s]: %w", key, err)
	}
	return entry, nil
}

func (r *SQLiteRepository) Delete(ctx context.Context, key string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM cached_data WHERE key = ?`, key); err != nil {
		return fmt.Errorf("failed to delete cache[%s]: %w", key, err)
	}
	return nil
}

func (r *SQLiteRepository) DeleteExpired(ctx context.Context, now time.Time) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM cached_data WHERE expires_at <= ?`, now); err != nil {
		return fmt.Errorf("failed to delete expired cache entries: %w", err)
	}
	return nil
}

func (r *SQLiteRepository) Clear(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM cached_data`); err != nil {
		return fmt.Errorf("failed to clear cache: %w", err)
	}
	return nil
}
