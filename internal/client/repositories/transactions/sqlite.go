package transactions

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

func (r *SQLiteRepository) CreateOrUpdate(ctx context.Context, tx *models.Transaction) error {
	query := `INSERT INTO transactions
			(id, wallet_id, type, status, amount, fee, token_symbol, network,
			 from_address, to_address, recipient_tag, tx_hash, confirmations,
			 created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			wallet_id = excluded.wallet_id,
			type = excluded.type,
			status = excluded.status,
			amount = excluded.amount,
			fee = excluded.fee,
			token_symbol = excluded.token_symbol,
			network = excluded.network,
			from_address = excluded.from_address,
			to_address = excluded.to_address,
			recipient_tag = excluded.recipient_tag,
			tx_hash = excluded.tx_hash,
			confirmations = excluded.confirmations,
			updated_at = excluded.updated_at`
	_, err := r.db.ExecContext(ctx, query,
		tx.ID, tx.WalletID, tx.Type, tx.Status, tx.Amount, tx.Fee, tx.TokenSymbol,
		tx.Network, tx.FromAddress, tx.ToAddress, tx.RecipientTag, tx.TxHash,
		tx.Confirmations, tx.CreatedAt, tx.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to upsert transaction: %w", err)
	}
	return nil
}

const selectColumns = `id, wallet_id, type, status, amount, fee, token_symbol,
	network, from_address, to_address, recipient_tag, tx_hash, confirmations,
	created_at, updated_at`

func (r *SQLiteRepository) GetByID(ctx context.Context, id string) (*models.Transaction, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+selectColumns+` FROM transactions WHERE id = ?`, id)

	tx := &models.Transaction{}
	err := row.Scan(&tx.ID, &tx.WalletID, &tx.Type, &tx.Status, &tx.Amount, &tx.Fee,
		&tx.TokenSymbol, &tx.Network, &tx.FromAddress, &tx.ToAddress, &tx.RecipientTag,
		&tx.TxHash, &tx.Confirmations, &tx.CreatedAt, &tx.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, common.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan transaction: %w", err)
	}
	return tx, nil
}

func (r *SQLiteRepository) ListByWallet(ctx context.Context, walletID string, limit int) ([]models.Transaction, error) {
	query := `SELECT ` + selectColumns + ` FROM transactions
		WHERE wallet_id = ? ORDER BY created_at DESC`
	args := []any{walletID}
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to select transactions: %w", err)
	}
	defer rows.Close()

	var result []models.Transaction
	for rows.Next() {
		var tx models.Transaction
		if err := rows.Scan(&tx.ID, &tx.WalletID, &tx.Type, &tx.Status, &tx.Amount, &tx.Fee,
			&tx.TokenSymbol, &tx.Network, &tx.FromAddress, &tx.ToAddress, &tx.RecipientTag,
			&tx.TxHash, &tx.Confirmations, &tx.CreatedAt, &tx.UpdatedAt); err != nil {
			return nil, err
		}
		result = append(result, tx)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}
