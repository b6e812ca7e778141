// Package dbx carries the SQL plumbing shared by the mirror repositories:
// the DBTX interface both *sql.DB and *sql.Tx satisfy, and WithTx for the
// merge paths that must land several rows atomically (wallet batches, the
// primary-flag move).
package dbx

import (
	"context"
	"database/sql"
)

// DBTX is the query surface the repositories need. Constructing a repository
// over a *sql.Tx runs its statements inside that transaction.
type DBTX interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// WithTx runs fn inside a transaction: commit on nil error, rollback
// otherwise. A panic in fn rolls back and is rethrown.
//
//	err := dbx.WithTx(ctx, db, func(ctx context.Context, tx dbx.DBTX) error {
//	    return wallets.NewSQLiteRepository(tx).SetPrimary(ctx, userID, walletID)
//	})
func WithTx(ctx context.Context, db *sql.DB, fn func(ctx context.Context, tx DBTX) error) (err error) {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}

	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		}
		if err != nil {
			_ = tx.Rollback()
			return
		}
		err = tx.Commit()
	}()

	err = fn(ctx, tx)
	return err
}
