package ws

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zuno-wallet/zuno-go/internal/common"
	"github.com/zuno-wallet/zuno-go/internal/logging"
)

var upgrader = websocket.Upgrader{}

// fakeServer is a WebSocket endpoint that records client frames and lets
// tests push events down each accepted connection.
type fakeServer struct {
	t   *testing.T
	srv *httptest.Server

	mu     sync.Mutex
	conns  []*websocket.Conn
	frames []clientFrame
	tokens []string
}

func newFakeServer(t *testing.T) *fakeServer {
	f := &fakeServer{t: t}
	f.srv = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		f.tokens = append(f.tokens, r.Header.Get("Authorization"))
		f.mu.Unlock()

		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		f.mu.Lock()
		f.conns = append(f.conns, conn)
		f.mu.Unlock()

		conn.WriteJSON(Event{Type: EventConnected})
		for {
			frame := clientFrame{}
			if err := conn.ReadJSON(&frame); err != nil {
				return
			}
			f.mu.Lock()
			f.frames = append(f.frames, frame)
			f.mu.Unlock()
		}
	}))
	t.Cleanup(f.srv.Close)
	return f
}

func (f *fakeServer) url() string {
	return "ws" + strings.TrimPrefix(f.srv.URL, "http")
}

func (f *fakeServer) push(i int, event Event) {
	f.mu.Lock()
	conn := f.conns[i]
	f.mu.Unlock()
	require.NoError(f.t, conn.WriteJSON(event))
}

func (f *fakeServer) framesOfType(kind string) []clientFrame {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []clientFrame
	for _, fr := range f.frames {
		if fr.Type == kind {
			out = append(out, fr)
		}
	}
	return out
}

func (f *fakeServer) connCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.conns)
}

func testChannel(t *testing.T, cfg Config) *Channel {
	t.Helper()
	if cfg.Token == nil {
		cfg.Token = func() string { return "tok-1" }
	}
	cfg.Heartbeat = 50 * time.Millisecond
	cfg.BackoffBase = 10 * time.Millisecond
	cfg.MaxBackoff = 50 * time.Millisecond
	return NewChannel(cfg, logging.NewSlogLogger(slog.Default()))
}

func waitFor(t *testing.T, cond func() bool, msg string) {
	t.Helper()
	require.Eventually(t, cond, 2*time.Second, 5*time.Millisecond, msg)
}

func nextEvent(t *testing.T, events <-chan Event, want EventType) Event {
	t.Helper()
	deadline := time.After(2 * time.Second)
	for {
		select {
		case e, ok := <-events:
			require.True(t, ok, "event channel closed while waiting for %s", want)
			if e.Type == want {
				return e
			}
		case <-deadline:
			t.Fatalf("timed out waiting for %s event", want)
		}
	}
}

func TestConnect_AuthHeaderAndConnectedEvent(t *testing.T) {
	f := newFakeServer(t)
	c := testChannel(t, Config{URL: f.url()})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- c.Run(ctx) }()

	nextEvent(t, c.Events(), EventConnected)
	waitFor(t, c.Connected, "channel never connected")

	f.mu.Lock()
	token := f.tokens[0]
	f.mu.Unlock()
	assert.Equal(t, "Bearer tok-1", token)

	cancel()
	require.ErrorIs(t, <-done, context.Canceled)
}

func TestSubscribe_FrameReachesServer(t *testing.T) {
	f := newFakeServer(t)
	c := testChannel(t, Config{URL: f.url()})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go c.Run(ctx)

	waitFor(t, c.Connected, "channel never connected")
	require.NoError(t, c.Subscribe("w_1", "w_2"))

	waitFor(t, func() bool { return len(f.framesOfType("subscribe")) > 0 }, "no subscribe frame")
	frame := f.framesOfType("subscribe")[0]
	assert.Equal(t, []string{"w_1", "w_2"}, frame.WalletIDs)
}

func TestPushEvent_Delivered(t *testing.T) {
	f := newFakeServer(t)
	c := testChannel(t, Config{URL: f.url()})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go c.Run(ctx)

	waitFor(t, c.Connected, "channel never connected")

	data, _ := json.Marshal(BalanceData{WalletID: "w_1", Balance: "12.5", BalanceUSD: "12.49"})
	f.push(0, Event{Type: EventBalanceUpdated, Data: data})

	e := nextEvent(t, c.Events(), EventBalanceUpdated)
	bd := BalanceData{}
	require.NoError(t, json.Unmarshal(e.Data, &bd))
	assert.Equal(t, "w_1", bd.WalletID)
	assert.Equal(t, "12.5", bd.Balance)
}

func TestHeartbeat_PingFramesSent(t *testing.T) {
	f := newFakeServer(t)
	c := testChannel(t, Config{URL: f.url()})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go c.Run(ctx)

	waitFor(t, func() bool { return len(f.framesOfType("ping")) >= 2 }, "no ping frames")
	ping := f.framesOfType("ping")[0]
	assert.NotZero(t, ping.Timestamp)
}

func TestReconnect_ReplaysSubscription(t *testing.T) {
	f := newFakeServer(t)
	c := testChannel(t, Config{URL: f.url()})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go c.Run(ctx)

	waitFor(t, c.Connected, "channel never connected")
	require.NoError(t, c.Subscribe("w_1"))
	waitFor(t, func() bool { return len(f.framesOfType("subscribe")) == 1 }, "no subscribe frame")

	// Drop the connection server-side; the channel must reconnect and
	// re-subscribe on the fresh socket without caller involvement.
	f.mu.Lock()
	f.conns[0].Close()
	f.mu.Unlock()

	waitFor(t, func() bool { return f.connCount() >= 2 }, "no reconnect")
	waitFor(t, func() bool { return len(f.framesOfType("subscribe")) >= 2 }, "subscription not replayed")
}

func TestRun_GivesUpAfterMaxAttempts(t *testing.T) {
	// A server that is already down: every dial fails.
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	srv.Close()

	c := testChannel(t, Config{URL: url, MaxAttempts: 3})

	err := c.Run(context.Background())
	require.ErrorIs(t, err, ErrReconnectExhausted)

	// The events channel is closed once the budget is spent.
	_, ok := <-c.Events()
	require.False(t, ok)
}

func TestDial_RejectedTokenMapsToUnauthorized(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "bad token", http.StatusUnauthorized)
	}))
	defer srv.Close()

	c := testChannel(t, Config{URL: "ws" + strings.TrimPrefix(srv.URL, "http")})
	_, err := c.dial(context.Background())
	require.ErrorIs(t, err, common.ErrUnauthorized)
}

func TestSend_NotConnected(t *testing.T) {
	c := testChannel(t, Config{URL: "ws://127.0.0.1:0"})
	require.ErrorIs(t, c.RequestRefresh("w_1"), ErrNotConnected)
}
