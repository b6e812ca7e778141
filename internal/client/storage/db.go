// Package storage wires the local mirror database: it opens the SQLite file,
// applies embedded goose migrations, and hands out the per-entity
// repositories.
package storage

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/pressly/goose/v3"
	"github.com/zuno-wallet/zuno-go/internal/client/migrations"
	"github.com/zuno-wallet/zuno-go/internal/client/repositories/cache"
	"github.com/zuno-wallet/zuno-go/internal/client/repositories/settings"
	"github.com/zuno-wallet/zuno-go/internal/client/repositories/transactions"
	"github.com/zuno-wallet/zuno-go/internal/client/repositories/users"
	"github.com/zuno-wallet/zuno-go/internal/client/repositories/wallets"
)

// Repositories bundles the repositories backed by one database handle.
type Repositories struct {
	DB           *sql.DB
	Users        users.Repository
	Wallets      wallets.Repository
	Transactions transactions.Repository
	Cache        cache.Repository
	Settings     settings.Repository
}

// RunMigrations applies the embedded migrations to db.
func RunMigrations(ctx context.Context, db *sql.DB) error {
	goose.SetBaseFS(migrations.Migrations)
	if err := goose.SetDialect("sqlite3"); err != nil {
		return fmt.Errorf("set goose dialect: %w", err)
	}
	return goose.UpContext(ctx, db, ".")
}

// InitDatabase opens (creating if needed) the mirror database at dsn,
// enables foreign-key enforcement, runs migrations, and returns the
// repository set.
func InitDatabase(ctx context.Context, dsn string) (*Repositories, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	// Single writer: avoids SQLITE_BUSY under concurrent refreshes and keeps
	// in-memory databases on one connection.
	db.SetMaxOpenConns(1)

	if _, err := db.ExecContext(ctx, `PRAGMA foreign_keys = ON`); err != nil {
		return nil, fmt.Errorf("enable foreign keys: %w", err)
	}

	if err := RunMigrations(ctx, db); err != nil {
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &Repositories{
		DB:           db,
		Users:        users.NewSQLiteRepository(db),
		Wallets:      wallets.NewSQLiteRepository(db),
		Transactions: transactions.NewSQLiteRepository(db),
		Cache:        cache.NewSQLiteRepository(db),
		Settings:     settings.NewSQLiteRepository(db),
	}, nil
}
