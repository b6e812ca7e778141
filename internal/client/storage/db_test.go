package storage

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/zuno-wallet/zuno-go/internal/client/models"
	"github.com/zuno-wallet/zuno-go/internal/common"

	_ "modernc.org/sqlite"
)

func initRepos(t *testing.T) *Repositories {
	t.Helper()
	repos, err := InitDatabase(context.Background(), ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = repos.DB.Close() })
	return repos
}

func TestInitDatabase_AppliesMigrations(t *testing.T) {
	repos := initRepos(t)

	for _, table := range []string{"users", "wallets", "transactions", "cached_data", "settings"} {
		var name string
		err := repos.DB.QueryRow(
			`SELECT name FROM sqlite_master WHERE type='table' AND name=?`, table).Scan(&name)
		require.NoError(t, err, table)
	}
}

func TestInitDatabase_CascadeDelete(t *testing.T) {
	repos := initRepos(t)
	ctx := context.Background()
	now := time.Now().UTC()

	require.NoError(t, repos.Users.CreateOrUpdate(ctx, &models.User{
		ID: "u_1", ZunoTag: "alice_1", DefaultCurrency: "USD",
		CreatedAt: now, UpdatedAt: now,
	}))
	require.NoError(t, repos.Wallets.CreateOrUpdate(ctx, &models.Wallet{
		ID: "w_1", UserID: "u_1", Address: "0x1", Network: "base",
		Balance: "0", BalanceUSD: "0", LastSyncedAt: now,
	}))
	require.NoError(t, repos.Transactions.CreateOrUpdate(ctx, &models.Transaction{
		ID: "t_1", WalletID: "w_1", Type: models.TxTypeReceive,
		Status: models.TxStatusConfirmed, Amount: "1",
		CreatedAt: now, UpdatedAt: now,
	}))

	// Deleting the user cascades through wallets to transactions.
	require.NoError(t, repos.Users.Delete(ctx, "u_1"))

	_, err := repos.Wallets.GetByID(ctx, "w_1")
	require.ErrorIs(t, err, common.ErrWalletNotFound)

	_, err = repos.Transactions.GetByID(ctx, "t_1")
	require.ErrorIs(t, err, common.ErrNotFound)
}
