package settings

import (
	"context"
	"database/sql"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/zuno-wallet/zuno-go/internal/client/models"

	_ "modernc.org/sqlite"
)

func setupDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite", ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	_, err = db.Exec(`
CREATE TABLE settings (
  id                    INTEGER PRIMARY KEY CHECK (id = 1),
  currency              TEXT NOT NULL DEFAULT 'USD',
  network               TEXT NOT NULL DEFAULT 'base',
  theme                 TEXT NOT NULL DEFAULT 'system',
  notifications_enabled INTEGER NOT NULL DEFAULT 1
);`)
	require.NoError(t, err)
	return db
}

func TestGet_EmptyReturnsDefaults(t *testing.T) {
	db := setupDB(t)
	r := NewSQLiteRepository(db)

	s, err := r.Get(context.Background())
	require.NoError(t, err)
	require.Equal(t, models.DefaultSettings(), s)
}

func TestSaveGet_RoundTripAndSingleRow(t *testing.T) {
	db := setupDB(t)
	r := NewSQLiteRepository(db)
	ctx := context.Background()

	s := models.Settings{Currency: "EUR", Network: "polygon", Theme: "dark", NotificationsEnabled: false}
	require.NoError(t, r.Save(ctx, s))

	got, err := r.Get(ctx)
	require.NoError(t, err)
	require.Equal(t, s, got)

	// Second save overwrites the same row.
	s.Currency = "GBP"
	require.NoError(t, r.Save(ctx, s))

	var n int
	require.NoError(t, db.QueryRow(`SELECT COUNT(*) FROM settings`).Scan(&n))
	require.Equal(t, 1, n)

	got, err = r.Get(ctx)
	require.NoError(t, err)
	require.Equal(t, "GBP", got.Currency)
}
