package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"sync"
	"time"

	"github.com/zuno-wallet/zuno-go/internal/client/models"
	"github.com/zuno-wallet/zuno-go/internal/common"
	"github.com/zuno-wallet/zuno-go/internal/webauthnx"
)

const defaultRequestTimeout = 12 * time.Second

// HTTPClient implements Client over the REST backend.
type HTTPClient struct {
	baseURL string
	http    *http.Client

	mu           sync.Mutex
	accessToken  string
	refreshToken string
	onTokens     func(access, refresh string)
}

// NewHTTPClient builds a client for baseURL (scheme://host[:port], no
// trailing slash required).
func NewHTTPClient(baseURL string) *HTTPClient {
	for len(baseURL) > 0 && baseURL[len(baseURL)-1] == '/' {
		baseURL = baseURL[:len(baseURL)-1]
	}
	return &HTTPClient{
		baseURL: baseURL,
		http:    &http.Client{Timeout: defaultRequestTimeout},
	}
}

func (c *HTTPClient) SetTokens(access, refresh string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.accessToken = access
	c.refreshToken = refresh
}

// OnTokensRefreshed registers a callback invoked after a transparent session
// refresh, so the caller can persist the new pair.
func (c *HTTPClient) OnTokensRefreshed(fn func(access, refresh string)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.onTokens = fn
}

func (c *HTTPClient) tokens() (access, refresh string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.accessToken, c.refreshToken
}

func (c *HTTPClient) Close() error {
	c.http.CloseIdleConnections()
	return nil
}

// errorBody is the server's error envelope; Message falls back to the raw
// body when the envelope is absent.
type errorBody struct {
	Error string `json:"error"`
}

// do performs one request/decode cycle. authed requests carry the bearer
// token and are retried once after a successful transparent refresh.
func (c *HTTPClient) do(ctx context.Context, method, path string, body any, out any, authed bool) error {
	err := c.doOnce(ctx, method, path, body, out, authed)
	if !authed || !errors.Is(err, common.ErrUnauthorized) {
		return err
	}

	_, refresh := c.tokens()
	if refresh == "" {
		return err
	}

	auth, rerr := c.RefreshSession(ctx, refresh)
	if rerr != nil {
		return err
	}

	c.mu.Lock()
	c.accessToken = auth.AccessToken
	c.refreshToken = auth.RefreshToken
	notify := c.onTokens
	c.mu.Unlock()
	if notify != nil {
		notify(auth.AccessToken, auth.RefreshToken)
	}

	return c.doOnce(ctx, method, path, body, out, authed)
}

func (c *HTTPClient) doOnce(ctx context.Context, method, path string, body any, out any, authed bool) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if authed {
		access, _ := c.tokens()
		req.Header.Set(common.AuthorizationHeaderName, "Bearer "+access)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return fmt.Errorf("%w: %v", common.ErrTimeout, err)
		}
		if errors.Is(err, context.Canceled) {
			return err
		}
		return fmt.Errorf("%w: %v", common.ErrUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		data, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		eb := errorBody{}
		if json.Unmarshal(data, &eb) != nil || eb.Error == "" {
			eb.Error = string(data)
		}
		return mapStatus(resp.StatusCode, eb.Error)
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

func (c *HTTPClient) BeginRegistration(ctx context.Context, tag, displayName, email string) (*ChallengeResponse, error) {
	body := map[string]string{"zuno_tag": tag}
	if displayName != "" {
		body["display_name"] = displayName
	}
	if email != "" {
		body["email"] = email
	}
	resp := &ChallengeResponse{}
	if err := c.do(ctx, http.MethodPost, "/register", body, resp, false); err != nil {
		return nil, err
	}
	return resp, nil
}

func (c *HTTPClient) CompleteRegistration(ctx context.Context, challengeID string, credential *webauthnx.RegistrationResponse) (*AuthResponse, error) {
	body := map[string]any{"challenge_id": challengeID, "credential": credential}
	resp := &AuthResponse{}
	if err := c.do(ctx, http.MethodPost, "/register/complete", body, resp, false); err != nil {
		return nil, err
	}
	return resp, nil
}

func (c *HTTPClient) BeginLogin(ctx context.Context, tag string) (*ChallengeResponse, error) {
	resp := &ChallengeResponse{}
	if err := c.do(ctx, http.MethodPost, "/login", map[string]string{"zuno_tag": tag}, resp, false); err != nil {
		return nil, err
	}
	return resp, nil
}

func (c *HTTPClient) CompleteLogin(ctx context.Context, challengeID string, credential *webauthnx.AssertionResponse) (*AuthResponse, error) {
	body := map[string]any{"challenge_id": challengeID, "credential": credential}
	resp := &AuthResponse{}
	if err := c.do(ctx, http.MethodPost, "/login/complete", body, resp, false); err != nil {
		return nil, err
	}
	return resp, nil
}

func (c *HTTPClient) RefreshSession(ctx context.Context, refreshToken string) (*AuthResponse, error) {
	body := map[string]string{"refresh_token": refreshToken}
	resp := &AuthResponse{}
	if err := c.doOnce(ctx, http.MethodPost, "/refresh", body, resp, false); err != nil {
		return nil, err
	}
	return resp, nil
}

func (c *HTTPClient) CurrentUser(ctx context.Context) (*models.User, error) {
	user := &models.User{}
	if err := c.do(ctx, http.MethodGet, "/me", nil, user, true); err != nil {
		return nil, err
	}
	return user, nil
}

func (c *HTTPClient) UpdateUser(ctx context.Context, update UserUpdate) (*models.User, error) {
	user := &models.User{}
	if err := c.do(ctx, http.MethodPatch, "/user", update, user, true); err != nil {
		return nil, err
	}
	return user, nil
}

func (c *HTTPClient) ListWallets(ctx context.Context) ([]models.Wallet, error) {
	var wallets []models.Wallet
	if err := c.do(ctx, http.MethodGet, "/wallets", nil, &wallets, true); err != nil {
		return nil, err
	}
	return wallets, nil
}

func (c *HTTPClient) CreateWallet(ctx context.Context, network string) (*models.Wallet, error) {
	wallet := &models.Wallet{}
	if err := c.do(ctx, http.MethodPost, "/wallets", map[string]string{"network": network}, wallet, true); err != nil {
		return nil, err
	}
	return wallet, nil
}

func (c *HTTPClient) ListTransactions(ctx context.Context, walletID string, limit int) ([]models.Transaction, error) {
	q := url.Values{}
	q.Set("wallet_id", walletID)
	if limit > 0 {
		q.Set("limit", strconv.Itoa(limit))
	}
	var txs []models.Transaction
	if err := c.do(ctx, http.MethodGet, "/transactions?"+q.Encode(), nil, &txs, true); err != nil {
		return nil, err
	}
	return txs, nil
}

func (c *HTTPClient) SendTransaction(ctx context.Context, req SendRequest) (*models.Transaction, error) {
	tx := &models.Transaction{}
	if err := c.do(ctx, http.MethodPost, "/transactions/send", req, tx, true); err != nil {
		return nil, err
	}
	return tx, nil
}
