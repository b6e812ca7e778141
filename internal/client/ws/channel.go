// Package ws implements the push channel: a WebSocket client that subscribes
// to wallet events and surfaces them to the refresh layer. Push events are
// the primary invalidation signal; polling is only a fallback while the
// socket is down.
package ws

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/zuno-wallet/zuno-go/internal/common"
	"github.com/zuno-wallet/zuno-go/internal/logging"
)

// EventType labels a server push frame.
type EventType string

const (
	EventConnected           EventType = "connected"
	EventTransactionReceived EventType = "transaction_received"
	EventTransactionUpdated  EventType = "transaction_updated"
	EventBalanceUpdated      EventType = "balance_updated"
	EventPong                EventType = "pong"
	EventError               EventType = "error"
)

// Event is one server push frame. Data is kept raw; the consumer decodes it
// based on Type.
type Event struct {
	Type EventType       `json:"type"`
	Data json.RawMessage `json:"data"`
}

// BalanceData is the payload of a balance_updated event.
type BalanceData struct {
	WalletID   string `json:"wallet_id"`
	Balance    string `json:"balance"`
	BalanceUSD string `json:"balance_usd"`
}

// clientFrame is the union of frames the client sends.
type clientFrame struct {
	Type      string   `json:"type"`
	WalletIDs []string `json:"wallet_ids,omitempty"`
	WalletID  string   `json:"wallet_id,omitempty"`
	Timestamp int64    `json:"timestamp,omitempty"`
}

var (
	// ErrNotConnected is returned by frame senders while the socket is down.
	ErrNotConnected = errors.New("websocket not connected")

	// ErrReconnectExhausted is returned by Run after the maximum number of
	// consecutive failed connection attempts.
	ErrReconnectExhausted = errors.New("websocket reconnect attempts exhausted")
)

const (
	defaultHeartbeat   = 30 * time.Second
	defaultMaxBackoff  = 30 * time.Second
	defaultMaxAttempts = 5
	readLimit          = 1 << 20
)

// Config tunes a Channel. Zero values fall back to production defaults; the
// knobs exist so tests can run on millisecond timescales.
type Config struct {
	// URL is the ws:// or wss:// endpoint.
	URL string

	// Token returns the current bearer access token. It is called before
	// every connection attempt so reconnects pick up refreshed sessions.
	Token func() string

	// Heartbeat is the client-side ping interval.
	Heartbeat time.Duration

	// BackoffBase is the first reconnect delay; each subsequent attempt
	// doubles it.
	BackoffBase time.Duration

	// MaxBackoff caps the exponential reconnect delay.
	MaxBackoff time.Duration

	// MaxAttempts is the number of consecutive failed connects tolerated
	// before Run gives up.
	MaxAttempts int
}

func (c *Config) applyDefaults() {
	if c.Heartbeat <= 0 {
		c.Heartbeat = defaultHeartbeat
	}
	if c.BackoffBase <= 0 {
		c.BackoffBase = time.Second
	}
	if c.MaxBackoff <= 0 {
		c.MaxBackoff = defaultMaxBackoff
	}
	if c.MaxAttempts <= 0 {
		c.MaxAttempts = defaultMaxAttempts
	}
}

// Channel maintains one WebSocket connection to the backend, reconnecting
// with exponential backoff and replaying the wallet subscription after every
// reconnect.
type Channel struct {
	cfg    Config
	logger logging.Logger
	events chan Event

	mu         sync.Mutex
	conn       *websocket.Conn
	subscribed []string
}

func NewChannel(cfg Config, logger logging.Logger) *Channel {
	cfg.applyDefaults()
	return &Channel{
		cfg:    cfg,
		logger: logger.With("component", "ws"),
		events: make(chan Event, 64),
	}
}

// Events returns the stream of server push frames. The channel is closed when
// Run returns.
func (c *Channel) Events() <-chan Event {
	return c.events
}

// Connected reports whether a live socket is currently attached.
func (c *Channel) Connected() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.conn != nil
}

// Subscribe records walletIDs as the active subscription and, when connected,
// sends the subscribe frame immediately. The subscription is replayed after
// every reconnect.
func (c *Channel) Subscribe(walletIDs ...string) error {
	c.mu.Lock()
	c.subscribed = append([]string{}, walletIDs...)
	conn := c.conn
	c.mu.Unlock()

	if conn == nil {
		return nil
	}
	return c.send(clientFrame{Type: "subscribe", WalletIDs: walletIDs})
}

// RequestRefresh asks the server to re-push state for one wallet (or for all
// subscribed wallets when walletID is empty).
func (c *Channel) RequestRefresh(walletID string) error {
	return c.send(clientFrame{Type: "refresh", WalletID: walletID})
}

func (c *Channel) send(frame clientFrame) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.conn == nil {
		return ErrNotConnected
	}
	if err := c.conn.WriteJSON(frame); err != nil {
		return fmt.Errorf("write %s frame: %w", frame.Type, err)
	}
	return nil
}

// Run connects and serves the socket until ctx is cancelled or the reconnect
// budget is spent. Each successfully established connection resets the
// attempt counter.
func (c *Channel) Run(ctx context.Context) error {
	defer close(c.events)

	attempts := 0
	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		conn, err := c.dial(ctx)
		if err != nil {
			attempts++
			c.logger.Warn(ctx, "connect failed", "attempt", attempts, "error", err)
			if attempts >= c.cfg.MaxAttempts {
				return fmt.Errorf("%w: %v", ErrReconnectExhausted, err)
			}
			if err := sleep(ctx, backoff(attempts, c.cfg.BackoffBase, c.cfg.MaxBackoff)); err != nil {
				return err
			}
			continue
		}

		attempts = 0
		err = c.serve(ctx, conn)
		if ctx.Err() != nil {
			return ctx.Err()
		}
		c.logger.Warn(ctx, "connection lost", "error", err)

		attempts++
		if err := sleep(ctx, backoff(attempts, c.cfg.BackoffBase, c.cfg.MaxBackoff)); err != nil {
			return err
		}
	}
}

func (c *Channel) dial(ctx context.Context) (*websocket.Conn, error) {
	header := http.Header{}
	if c.cfg.Token != nil {
		header.Set(common.AuthorizationHeaderName, "Bearer "+c.cfg.Token())
	}

	conn, resp, err := websocket.DefaultDialer.DialContext(ctx, c.cfg.URL, header)
	if err != nil {
		if resp != nil && (resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden) {
			return nil, fmt.Errorf("%w: status %d", common.ErrUnauthorized, resp.StatusCode)
		}
		return nil, fmt.Errorf("%w: %v", common.ErrUnavailable, err)
	}
	conn.SetReadLimit(readLimit)
	return conn, nil
}

// serve attaches conn, replays the subscription, and pumps frames until the
// connection drops or ctx is cancelled.
func (c *Channel) serve(ctx context.Context, conn *websocket.Conn) error {
	c.mu.Lock()
	c.conn = conn
	subscribed := append([]string{}, c.subscribed...)
	c.mu.Unlock()

	defer func() {
		c.mu.Lock()
		c.conn = nil
		c.mu.Unlock()
		conn.Close()
	}()

	if len(subscribed) > 0 {
		if err := c.send(clientFrame{Type: "subscribe", WalletIDs: subscribed}); err != nil {
			return err
		}
	}

	done := make(chan error, 1)
	go func() { done <- c.readLoop(ctx, conn) }()

	ticker := time.NewTicker(c.cfg.Heartbeat)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			conn.WriteMessage(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
			conn.Close()
			<-done
			return ctx.Err()
		case err := <-done:
			return err
		case <-ticker.C:
			if err := c.send(clientFrame{Type: "ping", Timestamp: time.Now().UnixMilli()}); err != nil {
				return err
			}
		}
	}
}

func (c *Channel) readLoop(ctx context.Context, conn *websocket.Conn) error {
	for {
		event := Event{}
		if err := conn.ReadJSON(&event); err != nil {
			return err
		}

		select {
		case c.events <- event:
		default:
			// Consumer is behind; dropping is safe because every event only
			// triggers a re-fetch, never carries sole state.
			c.logger.Warn(ctx, "event buffer full, dropping", "type", event.Type)
		}
	}
}

// backoff returns the delay before reconnect attempt n (1-based): base,
// 2*base, 4*base, ... capped at limit.
func backoff(n int, base, limit time.Duration) time.Duration {
	d := base << (n - 1)
	if d > limit || d <= 0 {
		return limit
	}
	return d
}

func sleep(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
