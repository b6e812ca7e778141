// Package cli implements the interactive Zuno client: a small REPL over the
// application services, with passkey approval and PIN entry on the terminal.
package cli

import (
	"bufio"
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/zuno-wallet/zuno-go/internal/client/api"
	"github.com/zuno-wallet/zuno-go/internal/client/config"
	"github.com/zuno-wallet/zuno-go/internal/client/passkey"
	"github.com/zuno-wallet/zuno-go/internal/client/secrets"
	"github.com/zuno-wallet/zuno-go/internal/client/services"
	"github.com/zuno-wallet/zuno-go/internal/client/storage"
	"github.com/zuno-wallet/zuno-go/internal/client/ws"
	"github.com/zuno-wallet/zuno-go/internal/common"
	"github.com/zuno-wallet/zuno-go/internal/filex"
	"github.com/zuno-wallet/zuno-go/internal/logging"

	_ "modernc.org/sqlite"
)

type App struct {
	config *config.Config
	logger logging.Logger
	reader *bufio.Reader

	client     *api.HTTPClient
	repos      *storage.Repositories
	vault      *secrets.FileVault
	session    *services.SessionService
	auth       *services.AuthService
	wallets    *services.WalletService
	reconciler *services.Reconciler
	channel    *ws.Channel

	watchCancel context.CancelFunc
}

func NewApp(c *config.Config) (*App, error) {
	ctx := context.Background()

	dataDir := c.DataDir
	if dataDir == "" {
		var err error
		dataDir, err = filex.AppDataDir()
		if err != nil {
			return nil, err
		}
	} else if err := os.MkdirAll(dataDir, 0o700); err != nil {
		return nil, fmt.Errorf("mkdir %s: %w", dataDir, err)
	}

	logger := logging.NewSlogLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelWarn,
	})))

	repos, err := storage.InitDatabase(ctx, filepath.Join(dataDir, "mirror.db"))
	if err != nil {
		return nil, fmt.Errorf("init database: %w", err)
	}

	app := &App{
		config: c,
		logger: logger,
		reader: bufio.NewReader(os.Stdin),
		repos:  repos,
		vault:  secrets.NewFileVault(filepath.Join(dataDir, "vault.json")),
	}

	app.client = api.NewHTTPClient(c.APIBaseURL)
	app.session = services.NewSessionService(app.vault, app.client, logger)
	app.reconciler = services.NewReconciler(repos.DB, logger)

	provider := passkey.NewSoftwareAuthenticator(filepath.Join(dataDir, "keys"), app.approvalGate)
	app.auth = services.NewAuthService(app.client, provider, app.session, app.reconciler, c.RPID, logger)
	app.wallets = services.NewWalletService(app.client, repos.DB, app.session, app.reconciler, c.CacheTTL, logger)

	return app, nil
}

// approvalGate is the CLI stand-in for the platform biometric prompt.
func (a *App) approvalGate(ctx context.Context, prompt string) error {
	answer, err := GetSimpleText(a.reader, prompt+", approve? [Y/n]", os.Stdout)
	if err != nil {
		return err
	}
	if answer == "n" || answer == "N" {
		return passkey.ErrCancelled
	}
	return nil
}

func (a *App) isLoggedIn() bool {
	return a.session.IsAuthenticated()
}

func (a *App) Run(ctx context.Context) {
	defer a.Close()
	a.Root(ctx)
}

// Close stops the watcher and releases the database and transport.
func (a *App) Close() {
	a.stopWatch()
	a.client.Close()
	a.repos.DB.Close()
}

// startWatch connects the push channel and the refresher; idempotent.
func (a *App) startWatch(ctx context.Context) {
	if a.watchCancel != nil {
		return
	}

	watchCtx, cancel := context.WithCancel(ctx)
	a.watchCancel = cancel

	a.channel = ws.NewChannel(ws.Config{
		URL: a.config.WSURL,
		Token: func() string {
			access, err := a.vault.Retrieve(common.KeyAccessToken)
			if err != nil {
				return ""
			}
			return string(access)
		},
	}, a.logger)

	refresher := services.NewRefresher(a.channel, a.config.PollInterval, func(ctx context.Context, walletID string) error {
		if walletID != "" {
			_, err := a.wallets.Transactions(ctx, walletID, 0)
			return err
		}
		return a.wallets.Refresh(ctx)
	}, a.logger)

	go a.channel.Run(watchCtx)
	go refresher.Run(watchCtx)

	// Subscribe to everything currently mirrored.
	go func() {
		list, err := a.wallets.List(watchCtx)
		if err != nil {
			return
		}
		ids := make([]string, 0, len(list))
		for _, w := range list {
			ids = append(ids, w.ID)
		}
		if len(ids) > 0 {
			a.channel.Subscribe(ids...)
		}
	}()
}

func (a *App) stopWatch() {
	if a.watchCancel != nil {
		a.watchCancel()
		a.watchCancel = nil
		a.channel = nil
	}
}

// shortTimeout bounds one interactive command round trip.
func shortTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, 30*time.Second)
}
