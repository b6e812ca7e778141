package services

import (
	"context"
	"log/slog"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/zuno-wallet/zuno-go/internal/client/api"
	"github.com/zuno-wallet/zuno-go/internal/client/models"
	"github.com/zuno-wallet/zuno-go/internal/client/storage"
	"github.com/zuno-wallet/zuno-go/internal/logging"
	"github.com/zuno-wallet/zuno-go/internal/webauthnx"

	_ "modernc.org/sqlite"
)

func testLogger() logging.Logger {
	return logging.NewSlogLogger(slog.Default())
}

func testRepos(t *testing.T) *storage.Repositories {
	t.Helper()
	repos, err := storage.InitDatabase(context.Background(), ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { repos.DB.Close() })
	return repos
}

// fakeClient is a scripted api.Client. Unset hooks fail the calling test.
type fakeClient struct {
	t *testing.T

	mu      sync.Mutex
	access  string
	refresh string

	beginRegistration    func(ctx context.Context, tag, displayName, email string) (*api.ChallengeResponse, error)
	completeRegistration func(ctx context.Context, challengeID string, cred *webauthnx.RegistrationResponse) (*api.AuthResponse, error)
	beginLogin           func(ctx context.Context, tag string) (*api.ChallengeResponse, error)
	completeLogin        func(ctx context.Context, challengeID string, cred *webauthnx.AssertionResponse) (*api.AuthResponse, error)
	refreshSession       func(ctx context.Context, refreshToken string) (*api.AuthResponse, error)
	currentUser          func(ctx context.Context) (*models.User, error)
	updateUser           func(ctx context.Context, update api.UserUpdate) (*models.User, error)
	listWallets          func(ctx context.Context) ([]models.Wallet, error)
	createWallet         func(ctx context.Context, network string) (*models.Wallet, error)
	listTransactions     func(ctx context.Context, walletID string, limit int) ([]models.Transaction, error)
	sendTransaction      func(ctx context.Context, req api.SendRequest) (*models.Transaction, error)
}

func newFakeClient(t *testing.T) *fakeClient {
	return &fakeClient{t: t}
}

func (f *fakeClient) SetTokens(access, refresh string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.access, f.refresh = access, refresh
}

func (f *fakeClient) tokens() (string, string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.access, f.refresh
}

func (f *fakeClient) Close() error { return nil }

func (f *fakeClient) BeginRegistration(ctx context.Context, tag, displayName, email string) (*api.ChallengeResponse, error) {
	if f.beginRegistration == nil {
		f.t.Fatal("unexpected BeginRegistration call")
	}
	return f.beginRegistration(ctx, tag, displayName, email)
}

func (f *fakeClient) CompleteRegistration(ctx context.Context, challengeID string, cred *webauthnx.RegistrationResponse) (*api.AuthResponse, error) {
	if f.completeRegistration == nil {
		f.t.Fatal("unexpected CompleteRegistration call")
	}
	return f.completeRegistration(ctx, challengeID, cred)
}

func (f *fakeClient) BeginLogin(ctx context.Context, tag string) (*api.ChallengeResponse, error) {
	if f.beginLogin == nil {
		f.t.Fatal("unexpected BeginLogin call")
	}
	return f.beginLogin(ctx, tag)
}

func (f *fakeClient) CompleteLogin(ctx context.Context, challengeID string, cred *webauthnx.AssertionResponse) (*api.AuthResponse, error) {
	if f.completeLogin == nil {
		f.t.Fatal("unexpected CompleteLogin call")
	}
	return f.completeLogin(ctx, challengeID, cred)
}

func (f *fakeClient) RefreshSession(ctx context.Context, refreshToken string) (*api.AuthResponse, error) {
	if f.refreshSession == nil {
		f.t.Fatal("unexpected RefreshSession call")
	}
	return f.refreshSession(ctx, refreshToken)
}

func (f *fakeClient) CurrentUser(ctx context.Context) (*models.User, error) {
	if f.currentUser == nil {
		f.t.Fatal("unexpected CurrentUser call")
	}
	return f.currentUser(ctx)
}

func (f *fakeClient) UpdateUser(ctx context.Context, update api.UserUpdate) (*models.User, error) {
	if f.updateUser == nil {
		f.t.Fatal("unexpected UpdateUser call")
	}
	return f.updateUser(ctx, update)
}

func (f *fakeClient) ListWallets(ctx context.Context) ([]models.Wallet, error) {
	if f.listWallets == nil {
		f.t.Fatal("unexpected ListWallets call")
	}
	return f.listWallets(ctx)
}

func (f *fakeClient) CreateWallet(ctx context.Context, network string) (*models.Wallet, error) {
	if f.createWallet == nil {
		f.t.Fatal("unexpected CreateWallet call")
	}
	return f.createWallet(ctx, network)
}

func (f *fakeClient) ListTransactions(ctx context.Context, walletID string, limit int) ([]models.Transaction, error) {
	if f.listTransactions == nil {
		f.t.Fatal("unexpected ListTransactions call")
	}
	return f.listTransactions(ctx, walletID, limit)
}

func (f *fakeClient) SendTransaction(ctx context.Context, req api.SendRequest) (*models.Transaction, error) {
	if f.sendTransaction == nil {
		f.t.Fatal("unexpected SendTransaction call")
	}
	return f.sendTransaction(ctx, req)
}
