// Package services contains the application services of the Zuno client:
// session lifecycle, the WebAuthn handshake driver, the local-mirror
// reconciler, wallet/payment operations, and push-driven refresh.
package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/zuno-wallet/zuno-go/internal/client/api"
	"github.com/zuno-wallet/zuno-go/internal/client/models"
	"github.com/zuno-wallet/zuno-go/internal/client/secrets"
	"github.com/zuno-wallet/zuno-go/internal/common"
	"github.com/zuno-wallet/zuno-go/internal/logging"
)

// Vault is the PIN-protected credential store the session depends on.
// *secrets.FileVault satisfies it.
type Vault interface {
	secrets.Store
	Initialized() bool
	Create(pin []byte) error
	Unlock(pin []byte) error
	Lock()
}

// SessionService owns the authenticated-session state: the persisted token
// pair and identity markers, and the distinction between "has stored
// credentials" (quick unlock can be offered) and "is authenticated" (a
// ceremony or unlock succeeded in this process).
type SessionService struct {
	vault  Vault
	client api.Client
	logger logging.Logger
	now    func() time.Time

	mu            sync.Mutex
	authenticated bool
	userID        string
	zunoTag       string
}

func NewSessionService(vault Vault, client api.Client, logger logging.Logger) *SessionService {
	s := &SessionService{
		vault:  vault,
		client: client,
		logger: logger.With("component", "session"),
		now:    time.Now,
	}
	if hc, ok := client.(*api.HTTPClient); ok {
		hc.OnTokensRefreshed(func(access, refresh string) {
			if err := s.persistTokens(access, refresh); err != nil {
				logger.Warn(context.Background(), "persist refreshed tokens", "error", err)
			}
		})
	}
	return s
}

// IsAuthenticated reports whether this process completed a ceremony or quick
// unlock. It always starts false: stored credentials alone never grant an
// authenticated session.
func (s *SessionService) IsAuthenticated() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.authenticated
}

// UserID returns the authenticated user's id, or "" before authentication.
func (s *SessionService) UserID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.userID
}

// ZunoTag returns the authenticated user's handle, or "" before
// authentication.
func (s *SessionService) ZunoTag() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.zunoTag
}

// HasStoredCredentials reports whether the vault holds a complete session:
// all four keys present and both tokens non-empty. The vault must be
// unlocked. A partial session (any key missing or empty) reports false, so
// the caller offers a full login instead of a quick unlock that cannot work.
func (s *SessionService) HasStoredCredentials() (bool, error) {
	for _, key := range []string{common.KeyAccessToken, common.KeyRefreshToken} {
		v, err := s.vault.Retrieve(key)
		if errors.Is(err, common.ErrNotFound) {
			return false, nil
		}
		if err != nil {
			return false, err
		}
		if len(v) == 0 {
			return false, nil
		}
	}
	for _, key := range []string{common.KeyUserID, common.KeyZunoTag} {
		ok, err := s.vault.Exists(key)
		if err != nil || !ok {
			return false, err
		}
	}
	return true, nil
}

// SaveSession persists a completed handshake: the token pair and identity
// markers go into the vault, the transport gets the live tokens, and the
// session flips to authenticated.
func (s *SessionService) SaveSession(ctx context.Context, auth *api.AuthResponse) error {
	if err := s.persistTokens(auth.AccessToken, auth.RefreshToken); err != nil {
		return err
	}
	if err := s.vault.Save(common.KeyUserID, []byte(auth.User.ID)); err != nil {
		return fmt.Errorf("save user id: %w", err)
	}
	if err := s.vault.Save(common.KeyZunoTag, []byte(auth.User.ZunoTag)); err != nil {
		return fmt.Errorf("save zuno tag: %w", err)
	}

	s.client.SetTokens(auth.AccessToken, auth.RefreshToken)

	s.mu.Lock()
	s.authenticated = true
	s.userID = auth.User.ID
	s.zunoTag = auth.User.ZunoTag
	s.mu.Unlock()
	return nil
}

func (s *SessionService) persistTokens(access, refresh string) error {
	if err := s.vault.Save(common.KeyAccessToken, []byte(access)); err != nil {
		return fmt.Errorf("save access token: %w", err)
	}
	if err := s.vault.Save(common.KeyRefreshToken, []byte(refresh)); err != nil {
		return fmt.Errorf("save refresh token: %w", err)
	}
	return nil
}

// QuickUnlock re-establishes the session from stored credentials after a PIN
// unlock, without a WebAuthn ceremony. The stored access token is validated
// against the server with a current-user fetch (the transport refreshes it
// transparently if expired). It fails with common.ErrNoStoredCredentials when
// the vault holds no complete session and common.ErrTokenExpired when the
// server rejects the session outright; both cases require a full login.
func (s *SessionService) QuickUnlock(ctx context.Context, pin []byte) (*models.User, error) {
	if err := s.vault.Unlock(pin); err != nil {
		return nil, err
	}

	ok, err := s.HasStoredCredentials()
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, common.ErrNoStoredCredentials
	}

	access, err := s.vault.Retrieve(common.KeyAccessToken)
	if err != nil {
		return nil, err
	}
	refresh, err := s.vault.Retrieve(common.KeyRefreshToken)
	if err != nil {
		return nil, err
	}

	if api.TokenExpired(string(access), s.now()) {
		s.logger.Info(ctx, "stored access token expired, relying on refresh")
	}
	s.client.SetTokens(string(access), string(refresh))

	user, err := s.client.CurrentUser(ctx)
	if err != nil {
		if errors.Is(err, common.ErrUnauthorized) {
			return nil, fmt.Errorf("%w: session rejected", common.ErrTokenExpired)
		}
		return nil, err
	}

	s.mu.Lock()
	s.authenticated = true
	s.userID = user.ID
	s.zunoTag = user.ZunoTag
	s.mu.Unlock()
	return user, nil
}

// Logout removes the stored session in one vault write and drops the live
// tokens. Local mirror data stays; it is server-owned and re-merged on the
// next login.
func (s *SessionService) Logout(ctx context.Context) error {
	err := s.vault.DeleteAll(
		common.KeyAccessToken, common.KeyRefreshToken,
		common.KeyUserID, common.KeyZunoTag,
	)
	if err != nil {
		return fmt.Errorf("clear stored session: %w", err)
	}

	s.client.SetTokens("", "")

	s.mu.Lock()
	s.authenticated = false
	s.userID = ""
	s.zunoTag = ""
	s.mu.Unlock()

	s.logger.Info(ctx, "logged out")
	return nil
}
