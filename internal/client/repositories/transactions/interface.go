package transactions

import (
	"context"

	"github.com/zuno-wallet/zuno-go/internal/client/models"
)

// Repository describes persistence operations for the local Transaction
// mirror. Rows are written only by the reconciler applying server responses.
type Repository interface {
	// CreateOrUpdate inserts a new transaction or overwrites the
	// server-owned fields of an existing one by ID.
	CreateOrUpdate(ctx context.Context, tx *models.Transaction) error

	// GetByID returns a transaction or common.ErrNotFound.
	GetByID(ctx context.Context, id string) (*models.Transaction, error)

	// ListByWallet returns the wallet's transactions, newest first.
	// limit <= 0 means no limit.
	ListByWallet(ctx context.Context, walletID string, limit int) ([]models.Transaction, error)
}
