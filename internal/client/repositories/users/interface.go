package users

import (
	"context"

	"github.com/zuno-wallet/zuno-go/internal/client/models"
)

// Repository describes persistence operations for the local User mirror.
type Repository interface {
	// CreateOrUpdate inserts a new user or overwrites the server-owned
	// fields of an existing one by ID.
	CreateOrUpdate(ctx context.Context, u *models.User) error

	// GetByID returns a user or common.ErrNotFound.
	GetByID(ctx context.Context, id string) (*models.User, error)

	// GetByTag returns a user by zuno tag or common.ErrNotFound.
	GetByTag(ctx context.Context, tag string) (*models.User, error)

	// Delete removes a user; wallets and their transactions cascade.
	Delete(ctx context.Context, id string) error
}
