package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sync"

	"github.com/zuno-wallet/zuno-go/internal/client/models"
	"github.com/zuno-wallet/zuno-go/internal/client/repositories/settings"
	"github.com/zuno-wallet/zuno-go/internal/client/repositories/transactions"
	"github.com/zuno-wallet/zuno-go/internal/client/repositories/users"
	"github.com/zuno-wallet/zuno-go/internal/client/repositories/wallets"
	"github.com/zuno-wallet/zuno-go/internal/common"
	"github.com/zuno-wallet/zuno-go/internal/dbx"
	"github.com/zuno-wallet/zuno-go/internal/logging"
)

// WalletState tracks the cold-start lifecycle of the wallet list. A fresh
// account has no wallet until the first one is provisioned server-side, so an
// empty fetch is ambiguous: it may mean "no wallet yet" or merely "creation
// still in flight".
type WalletState int

const (
	// WalletStateNotChecked means no fetch has completed yet.
	WalletStateNotChecked WalletState = iota

	// WalletStateCheckedEmpty means a fetch completed and found no wallets.
	WalletStateCheckedEmpty

	// WalletStateCreationInFlight means a wallet creation request is
	// outstanding; empty fetches do not regress the state while set.
	WalletStateCreationInFlight

	// WalletStateReady means at least one wallet is mirrored locally.
	WalletStateReady
)

func (s WalletState) String() string {
	switch s {
	case WalletStateNotChecked:
		return "not_checked"
	case WalletStateCheckedEmpty:
		return "checked_empty"
	case WalletStateCreationInFlight:
		return "creation_in_flight"
	case WalletStateReady:
		return "ready"
	default:
		return "unknown"
	}
}

// Reconciler applies server responses to the local mirror with
// create-or-update merge semantics keyed by server-assigned ids. Merging the
// same payload twice is a no-op; the server copy always wins for
// server-owned fields, except that a transaction status is never regressed.
type Reconciler struct {
	db     *sql.DB
	logger logging.Logger

	mu          sync.Mutex
	walletState WalletState
}

func NewReconciler(db *sql.DB, logger logging.Logger) *Reconciler {
	return &Reconciler{
		db:     db,
		logger: logger.With("component", "reconciler"),
	}
}

// WalletState returns the current cold-start state of the wallet list.
func (r *Reconciler) WalletState() WalletState {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.walletState
}

// BeginWalletCreation marks a wallet creation as outstanding so a concurrent
// empty list fetch is not mistaken for "account has no wallet".
func (r *Reconciler) BeginWalletCreation() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.walletState != WalletStateReady {
		r.walletState = WalletStateCreationInFlight
	}
}

// AbortWalletCreation clears an outstanding creation that failed before the
// server acknowledged it.
func (r *Reconciler) AbortWalletCreation() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.walletState == WalletStateCreationInFlight {
		r.walletState = WalletStateNotChecked
	}
}

func (r *Reconciler) setWalletState(s WalletState) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.walletState = s
}

// MergeUser upserts the server's user payload into the local mirror and
// folds its display preferences into the local settings row.
func (r *Reconciler) MergeUser(ctx context.Context, u *models.User) error {
	if u == nil || u.ID == "" {
		return fmt.Errorf("merge user: %w", common.ErrInternal)
	}
	repo := users.NewSQLiteRepository(r.db)
	if err := repo.CreateOrUpdate(ctx, u); err != nil {
		return fmt.Errorf("merge user %s: %w", u.ID, err)
	}

	srepo := settings.NewSQLiteRepository(r.db)
	current, err := srepo.Get(ctx)
	if err != nil {
		return fmt.Errorf("load settings: %w", err)
	}
	if u.DefaultCurrency != "" {
		current.Currency = u.DefaultCurrency
	}
	if u.PreferredNetwork != "" {
		current.Network = u.PreferredNetwork
	}
	if err := srepo.Save(ctx, current); err != nil {
		return fmt.Errorf("save settings: %w", err)
	}
	return nil
}

// MergeWallets upserts the fetched wallet list and advances the cold-start
// state. The primary flag is applied atomically: at most one wallet per user
// holds it after the merge.
func (r *Reconciler) MergeWallets(ctx context.Context, userID string, list []models.Wallet) error {
	if len(list) == 0 {
		r.mu.Lock()
		// An in-flight creation means emptiness is transient, not truth.
		if r.walletState != WalletStateCreationInFlight && r.walletState != WalletStateReady {
			r.walletState = WalletStateCheckedEmpty
		}
		r.mu.Unlock()
		return nil
	}

	primaryID := ""
	err := dbx.WithTx(ctx, r.db, func(ctx context.Context, tx dbx.DBTX) error {
		repo := wallets.NewSQLiteRepository(tx)
		for i := range list {
			w := list[i]
			if w.UserID == "" {
				w.UserID = userID
			}
			if err := repo.CreateOrUpdate(ctx, &w); err != nil {
				return fmt.Errorf("merge wallet %s: %w", w.ID, err)
			}
			if w.IsPrimary {
				primaryID = w.ID
			}
		}
		if primaryID != "" {
			if err := repo.SetPrimary(ctx, userID, primaryID); err != nil {
				return fmt.Errorf("set primary %s: %w", primaryID, err)
			}
		}
		return nil
	})
	if err != nil {
		return err
	}

	r.setWalletState(WalletStateReady)
	return nil
}

// MergeTransactions upserts fetched transactions. A payload that would move a
// transaction backwards through the status machine (or out of a terminal
// state) is skipped with a warning; the local row keeps the further-along
// status.
func (r *Reconciler) MergeTransactions(ctx context.Context, list []models.Transaction) error {
	repo := transactions.NewSQLiteRepository(r.db)
	for i := range list {
		tx := list[i]

		existing, err := repo.GetByID(ctx, tx.ID)
		switch {
		case errors.Is(err, common.ErrNotFound):
			// New row, insert as-is.
		case err != nil:
			return fmt.Errorf("merge transaction %s: %w", tx.ID, err)
		default:
			if !existing.Status.CanTransitionTo(tx.Status) {
				r.logger.Warn(ctx, "ignoring status regression",
					"tx", tx.ID, "local", existing.Status, "server", tx.Status)
				continue
			}
		}

		if err := repo.CreateOrUpdate(ctx, &tx); err != nil {
			return fmt.Errorf("merge transaction %s: %w", tx.ID, err)
		}
	}
	return nil
}
