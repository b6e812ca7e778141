package services

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/zuno-wallet/zuno-go/internal/client/api"
	"github.com/zuno-wallet/zuno-go/internal/client/models"
	"github.com/zuno-wallet/zuno-go/internal/client/repositories/cache"
	"github.com/zuno-wallet/zuno-go/internal/client/repositories/transactions"
	"github.com/zuno-wallet/zuno-go/internal/client/repositories/wallets"
	"github.com/zuno-wallet/zuno-go/internal/common"
	"github.com/zuno-wallet/zuno-go/internal/dbx"
	"github.com/zuno-wallet/zuno-go/internal/logging"
)

// WalletService exposes wallet and payment operations. Reads go to the local
// mirror after a merge, so every caller observes the same reconciled state;
// writes go to the server first and are merged back from the response (no
// optimistic local inserts, to avoid id collisions with server-assigned ids).
type WalletService struct {
	client     api.Client
	db         *sql.DB
	session    *SessionService
	reconciler *Reconciler
	logger     logging.Logger
	now        func() time.Time

	// cacheTTL suppresses redundant wallet fetches: a List within the TTL
	// of the last successful refresh serves the mirror directly. Zero
	// disables the suppression.
	cacheTTL time.Duration
}

func NewWalletService(client api.Client, db *sql.DB, session *SessionService, reconciler *Reconciler, cacheTTL time.Duration, logger logging.Logger) *WalletService {
	return &WalletService{
		client:     client,
		db:         db,
		session:    session,
		reconciler: reconciler,
		cacheTTL:   cacheTTL,
		now:        time.Now,
		logger:     logger.With("component", "wallets"),
	}
}

func walletsFreshKey(userID string) string {
	return "wallets_fresh:" + userID
}

// Refresh fetches the wallet list from the server, merges it into the local
// mirror, and stamps the freshness marker.
func (s *WalletService) Refresh(ctx context.Context) error {
	userID := s.session.UserID()
	if userID == "" {
		return common.ErrNotAuthenticated
	}

	list, err := s.client.ListWallets(ctx)
	if err != nil {
		return fmt.Errorf("fetch wallets: %w", err)
	}
	if err := s.reconciler.MergeWallets(ctx, userID, list); err != nil {
		return err
	}

	if s.cacheTTL > 0 {
		err := cache.NewSQLiteRepository(s.db).Set(ctx, models.CachedData{
			Key:       walletsFreshKey(userID),
			Value:     []byte(s.now().UTC().Format(time.RFC3339)),
			ExpiresAt: s.now().Add(s.cacheTTL),
		})
		if err != nil {
			s.logger.Warn(ctx, "stamp wallet freshness", "error", err)
		}
	}
	return nil
}

// fresh reports whether the last wallet refresh is within the cache TTL.
func (s *WalletService) fresh(ctx context.Context, userID string) bool {
	if s.cacheTTL <= 0 {
		return false
	}
	entry, err := cache.NewSQLiteRepository(s.db).Get(ctx, walletsFreshKey(userID))
	if err != nil {
		return false
	}
	return !entry.Expired(s.now())
}

// List returns the locally mirrored wallets, primary first. A refresh runs
// first unless the mirror is still fresh; when the server is unreachable the
// stale mirror is returned instead, because a stale balance beats no balance.
func (s *WalletService) List(ctx context.Context) ([]models.Wallet, error) {
	userID := s.session.UserID()
	if userID == "" {
		return nil, common.ErrNotAuthenticated
	}

	if !s.fresh(ctx, userID) {
		if err := s.Refresh(ctx); err != nil {
			s.logger.Warn(ctx, "refresh failed, serving local mirror", "error", err)
		}
	}
	return wallets.NewSQLiteRepository(s.db).ListByUser(ctx, userID)
}

// Create provisions a wallet server-side and merges it back. The in-flight
// marker keeps a concurrent empty list fetch from being read as "account has
// no wallet".
func (s *WalletService) Create(ctx context.Context, network string) (*models.Wallet, error) {
	userID := s.session.UserID()
	if userID == "" {
		return nil, common.ErrNotAuthenticated
	}

	s.reconciler.BeginWalletCreation()
	wallet, err := s.client.CreateWallet(ctx, network)
	if err != nil {
		s.reconciler.AbortWalletCreation()
		return nil, fmt.Errorf("create wallet: %w", err)
	}

	if wallet.UserID == "" {
		wallet.UserID = userID
	}
	if err := s.reconciler.MergeWallets(ctx, userID, []models.Wallet{*wallet}); err != nil {
		return nil, err
	}
	s.logger.Info(ctx, "wallet created", "wallet", wallet.ID, "network", wallet.Network)
	return wallet, nil
}

// SetPrimary atomically moves the primary flag to walletID.
func (s *WalletService) SetPrimary(ctx context.Context, walletID string) error {
	userID := s.session.UserID()
	if userID == "" {
		return common.ErrNotAuthenticated
	}

	return dbx.WithTx(ctx, s.db, func(ctx context.Context, tx dbx.DBTX) error {
		return wallets.NewSQLiteRepository(tx).SetPrimary(ctx, userID, walletID)
	})
}

// Transactions returns the wallet's mirrored transactions, newest first,
// refreshing from the server when reachable.
func (s *WalletService) Transactions(ctx context.Context, walletID string, limit int) ([]models.Transaction, error) {
	if s.session.UserID() == "" {
		return nil, common.ErrNotAuthenticated
	}

	list, err := s.client.ListTransactions(ctx, walletID, limit)
	if err != nil {
		s.logger.Warn(ctx, "fetch transactions failed, serving local mirror", "error", err)
	} else if err := s.reconciler.MergeTransactions(ctx, list); err != nil {
		return nil, err
	}

	return transactions.NewSQLiteRepository(s.db).ListByWallet(ctx, walletID, limit)
}

// Send submits a payment to either a raw address or a handle tag. The
// transaction row is inserted only after the server acknowledges it.
func (s *WalletService) Send(ctx context.Context, req api.SendRequest) (*models.Transaction, error) {
	if s.session.UserID() == "" {
		return nil, common.ErrNotAuthenticated
	}

	if err := models.ValidateAmount(req.Amount); err != nil {
		return nil, err
	}
	if (req.ToAddress == "") == (req.RecipientTag == "") {
		return nil, fmt.Errorf("%w: exactly one of address or tag required", common.ErrInvalidRecipient)
	}
	if req.RecipientTag != "" {
		tag, err := models.NormalizeHandleTag(req.RecipientTag)
		if err != nil {
			return nil, err
		}
		req.RecipientTag = tag
	}

	tx, err := s.client.SendTransaction(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("send transaction: %w", err)
	}

	if err := s.reconciler.MergeTransactions(ctx, []models.Transaction{*tx}); err != nil {
		return nil, err
	}
	s.logger.Info(ctx, "transaction sent", "tx", tx.ID, "amount", tx.Amount, "token", tx.TokenSymbol)
	return tx, nil
}
