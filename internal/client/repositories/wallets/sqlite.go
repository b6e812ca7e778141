package wallets

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

func (r *SQLiteRepository) CreateOrUpdate(ctx context.Context, w *models.Wallet) error {
	query := `INSERT INTO wallets
			(id, user_id, address, network, account_type, is_primary,
			 name, balance, balance_usd, last_synced_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			user_id = excluded.user_id,
			address = excluded.address,
			network = excluded.network,
			account_type = excluded.account_type,
			is_primary = excluded.is_primary,
			name = excluded.name,
			balance = excluded.balance,
			balance_usd = excluded.balance_usd,
			last_synced_at = excluded.last_synced_at`
	_, err := r.db.ExecContext(ctx, query,
		w.ID, w.UserID, w.Address, w.Network, w.AccountType, w.IsPrimary,
		w.Name, w.Balance, w.BalanceUSD, w.LastSyncedAt)
	if err != nil {
		return fmt.Errorf("failed to upsert wallet: %w", err)
	}
	return nil
}

const selectColumns = `id, user_id, address, network, account_type, is_primary,
	name, balance, balance_usd, last_synced_at`

func (r *SQLiteRepository) GetByID(ctx context.Context, id string) (*models.Wallet, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+selectColumns+` FROM wallets WHERE id = ?`, id)

	w := &models.Wallet{}
	err := row.Scan(&w.ID, &w.UserID, &w.Address, &w.Network, &w.AccountType,
		&w.IsPrimary, &w.Name, &w.Balance, &w.BalanceUSD, &w.LastSyncedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, common.ErrWalletNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan wallet: %w", err)
	}
	return w, nil
}

func (r *SQLiteRepository) ListByUser(ctx context.Context, userID string) ([]models.Wallet, error) {
	query := `SELECT ` + selectColumns + ` FROM wallets
		WHERE user_id = ? ORDER BY is_primary DESC, last_synced_at DESC`
	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to select wallets: %w", err)
	}
	defer rows.Close()

	var result []models.Wallet
	for rows.Next() {
		var w models.Wallet
		if err := rows.Scan(&w.ID, &w.UserID, &w.Address, &w.Network, &w.AccountType,
			&w.IsPrimary, &w.Name, &w.Balance, &w.BalanceUSD, &w.LastSyncedAt); err != nil {
			return nil, err
		}
		result = append(result, w)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

func (r *SQLiteRepository) CountByUser(ctx context.Context, userID string) (int, error) {
	var n int
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM wallets WHERE user_id = ?`, userID).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("failed to count wallets: %w", err)
	}
	return n, nil
}

// SetPrimary demotes all of the user's wallets, then promotes walletID. The
// promote step expects exactly one affected row; a zero count means the
// wallet does not belong to the user.
func (r *SQLiteRepository) SetPrimary(ctx context.Context, userID, walletID string) error {
	if _, err := r.db.ExecContext(ctx,
		`UPDATE wallets SET is_primary = 0 WHERE user_id = ? AND is_primary = 1`, userID); err != nil {
		return fmt.Errorf("failed to clear primary flags: %w", err)
	}

	res, err := r.db.ExecContext(ctx,
		`UPDATE wallets SET is_primary = 1 WHERE id = ? AND user_id = ?`, walletID, userID)
	if err != nil {
		return fmt.Errorf("failed to set primary flag: %w", err)
	}
	ra, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if ra != 1 {
		return common.ErrWalletNotFound
	}
	return nil
}

func (r *SQLiteRepository) Delete(ctx context.Context, id string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM wallets WHERE id = ?`, id); err != nil {
		return fmt.Errorf("failed to delete wallet: %w", err)
	}
	return nil
}
