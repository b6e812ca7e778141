package wallets

import (
	"context"

	"github.com/zuno-wallet/zuno-go/internal/client/models"
)

// Repository describes persistence operations for the local Wallet mirror.
type Repository interface {
	// CreateOrUpdate inserts a new wallet or overwrites the server-owned
	// fields of an existing one by ID.
	CreateOrUpdate(ctx context.Context, w *models.Wallet) error

	// GetByID returns a wallet or common.ErrNotFound.
	GetByID(ctx context.Context, id string) (*models.Wallet, error)

	// ListByUser returns the user's wallets, primary first.
	ListByUser(ctx context.Context, userID string) ([]models.Wallet, error)

	// CountByUser returns the number of wallets owned by the user.
	CountByUser(ctx context.Context, userID string) (int, error)

	// SetPrimary clears is_primary on every wallet of userID and sets it
	// on walletID. Callers needing atomicity run it inside dbx.WithTx.
	SetPrimary(ctx context.Context, userID, walletID string) error

	// Delete removes a wallet; its transactions cascade.
	Delete(ctx context.Context, id string) error
}
