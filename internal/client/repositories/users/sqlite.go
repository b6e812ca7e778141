package users

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/zuno-wallet/zuno-go/internal/client/models"
	"github.com/zuno-wallet/zuno-go/internal/common"
	"github.com/zuno-wallet/zuno-go/internal/dbx"
)

// SQLiteRepository implements Repository over a DBTX (either *sql.DB or *sql.Tx).
type SQLiteRepository struct {
	db dbx.DBTX
}

func NewSQLiteRepository(db dbx.DBTX) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

// CreateOrUpdate upserts a user by id. On conflict every server-owned column
// is overwritten; the row identity is never recreated.
func (r *SQLiteRepository) CreateOrUpdate(ctx context.Context, u *models.User) error {
	query := `INSERT INTO users
			(id, zuno_tag, email, display_name, default_currency,
			 preferred_network, preferred_stablecoin, is_verified, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			zuno_tag = excluded.zuno_tag,
			email = excluded.email,
			display_name = excluded.display_name,
			default_currency = excluded.default_currency,
			preferred_network = excluded.preferred_network,
			preferred_stablecoin = excluded.preferred_stablecoin,
			is_verified = excluded.is_verified,
			updated_at = excluded.updated_at`
	_, err := r.db.ExecContext(ctx, query,
		u.ID, u.ZunoTag, u.Email, u.DisplayName, u.DefaultCurrency,
		u.PreferredNetwork, u.PreferredStablecoin, u.IsVerified, u.CreatedAt, u.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to upsert user: %w", err)
	}
	return nil
}

const selectColumns = `id, zuno_tag, email, display_name, default_currency,
	preferred_network, preferred_stablecoin, is_verified, created_at, updated_at`

func scanUser(row *sql.Row) (*models.User, error) {
	u := &models.User{}
	err := row.Scan(&u.ID, &u.ZunoTag, &u.Email, &u.DisplayName, &u.DefaultCurrency,
		&u.PreferredNetwork, &u.PreferredStablecoin, &u.IsVerified, &u.CreatedAt, &u.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, common.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan user: %w", err)
	}
	return u, nil
}

func (r *SQLiteRepository) GetByID(ctx context.Context, id string) (*models.User, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+selectColumns+` FROM users WHERE id = ?`, id)
	return scanUser(row)
}

func (r *SQLiteRepository) GetByTag(ctx context.Context, tag string) (*models.User, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+selectColumns+` FROM users WHERE zuno_tag = ?`, tag)
	return scanUser(row)
}

func (r *SQLiteRepository) Delete(ctx context.Context, id string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM users WHERE id = ?`, id); err != nil {
		return fmt.Errorf("failed to delete user: %w", err)
	}
	return nil
}
