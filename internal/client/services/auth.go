package services

import (
	"context"
	"fmt"

	"github.com/zuno-wallet/zuno-go/internal/client/api"
	"github.com/zuno-wallet/zuno-go/internal/client/models"
	"github.com/zuno-wallet/zuno-go/internal/client/passkey"
	"github.com/zuno-wallet/zuno-go/internal/logging"
	"github.com/zuno-wallet/zuno-go/internal/webauthnx"
)

// AuthService drives the two-phase WebAuthn handshake for registration and
// login: begin call, platform ceremony, completion call, session persist,
// local-mirror merge.
type AuthService struct {
	client     api.Client
	provider   passkey.Provider
	session    *SessionService
	reconciler *Reconciler
	logger     logging.Logger

	// rpID is the fallback relying-party id when the server's options omit
	// it (the flat legacy shape sometimes does).
	rpID string
}

func NewAuthService(client api.Client, provider passkey.Provider, session *SessionService, reconciler *Reconciler, rpID string, logger logging.Logger) *AuthService {
	return &AuthService{
		client:     client,
		provider:   provider,
		session:    session,
		reconciler: reconciler,
		rpID:       rpID,
		logger:     logger.With("component", "auth"),
	}
}

// Register creates an account for tag: validates the handle locally, runs the
// registration ceremony against the server challenge, and persists the issued
// session. A taken handle surfaces as common.ErrTagAlreadyRegistered; a
// dismissed ceremony as passkey.ErrCancelled.
func (a *AuthService) Register(ctx context.Context, tag, displayName, email string) (*models.User, error) {
	tag, err := models.NormalizeHandleTag(tag)
	if err != nil {
		return nil, err
	}

	begin, err := a.client.BeginRegistration(ctx, tag, displayName, email)
	if err != nil {
		return nil, fmt.Errorf("begin registration: %w", err)
	}

	opts, err := webauthnx.ParseCreationOptions(begin.Options)
	if err != nil {
		return nil, err
	}
	rpID := opts.RPID
	if rpID == "" {
		rpID = a.rpID
	}

	cred, err := a.provider.CreateRegistrationCredential(ctx, opts.Challenge, rpID, tag, opts.UserID)
	if err != nil {
		return nil, err
	}

	payload := webauthnx.NewRegistrationResponse(cred.CredentialID, cred.ClientDataJSON, cred.AttestationObject)
	auth, err := a.client.CompleteRegistration(ctx, begin.ChallengeID, payload)
	if err != nil {
		return nil, fmt.Errorf("complete registration: %w", err)
	}

	if err := a.finishHandshake(ctx, auth); err != nil {
		return nil, err
	}
	a.logger.Info(ctx, "registered", "tag", tag)
	return &auth.User, nil
}

// Login authenticates an existing account with an assertion ceremony.
func (a *AuthService) Login(ctx context.Context, tag string) (*models.User, error) {
	tag, err := models.NormalizeHandleTag(tag)
	if err != nil {
		return nil, err
	}

	begin, err := a.client.BeginLogin(ctx, tag)
	if err != nil {
		return nil, fmt.Errorf("begin login: %w", err)
	}

	opts, err := webauthnx.ParseRequestOptions(begin.Options)
	if err != nil {
		return nil, err
	}
	rpID := opts.RPID
	if rpID == "" {
		rpID = a.rpID
	}

	cred, err := a.provider.CreateAssertionCredential(ctx, opts.Challenge, rpID)
	if err != nil {
		return nil, err
	}

	payload := webauthnx.NewAssertionResponse(cred.CredentialID, cred.ClientDataJSON,
		cred.AuthenticatorData, cred.Signature, cred.UserHandle)
	auth, err := a.client.CompleteLogin(ctx, begin.ChallengeID, payload)
	if err != nil {
		return nil, fmt.Errorf("complete login: %w", err)
	}

	if err := a.finishHandshake(ctx, auth); err != nil {
		return nil, err
	}
	a.logger.Info(ctx, "logged in", "tag", tag)
	return &auth.User, nil
}

// finishHandshake persists the issued session and merges the user payload
// into the local mirror. The session is saved first: losing the mirror merge
// costs a re-fetch, losing the tokens costs a re-ceremony.
func (a *AuthService) finishHandshake(ctx context.Context, auth *api.AuthResponse) error {
	if err := a.session.SaveSession(ctx, auth); err != nil {
		return fmt.Errorf("save session: %w", err)
	}
	if err := a.reconciler.MergeUser(ctx, &auth.User); err != nil {
		a.logger.Warn(ctx, "merge user after handshake", "error", err)
	}
	return nil
}

// UpdateProfile pushes profile changes to the server and merges the returned
// canonical user back into the local mirror.
func (a *AuthService) UpdateProfile(ctx context.Context, update api.UserUpdate) (*models.User, error) {
	user, err := a.client.UpdateUser(ctx, update)
	if err != nil {
		return nil, fmt.Errorf("update profile: %w", err)
	}
	if err := a.reconciler.MergeUser(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// CurrentUser fetches the canonical user record and merges it locally.
func (a *AuthService) CurrentUser(ctx context.Context) (*models.User, error) {
	user, err := a.client.CurrentUser(ctx)
	if err != nil {
		return nil, err
	}
	if err := a.reconciler.MergeUser(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}
