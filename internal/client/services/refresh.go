package services

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/zuno-wallet/zuno-go/internal/client/ws"
	"github.com/zuno-wallet/zuno-go/internal/logging"
)

// PushSource is the slice of ws.Channel the refresher consumes.
type PushSource interface {
	Events() <-chan ws.Event
	Connected() bool
}

// Refresher turns push events into local-mirror refreshes. The WebSocket is
// the source of truth for invalidation; the poll ticker only fires while the
// socket is down, so a healthy connection causes zero redundant fetches.
// Refreshes never overlap: a trigger arriving mid-refresh is coalesced into
// one follow-up run.
type Refresher struct {
	source   PushSource
	interval time.Duration
	logger   logging.Logger

	// refresh re-fetches and merges state for one wallet ("" means all
	// subscribed wallets).
	refresh func(ctx context.Context, walletID string) error

	mu      sync.Mutex
	running bool
	queued  bool
}

func NewRefresher(source PushSource, interval time.Duration, refresh func(ctx context.Context, walletID string) error, logger logging.Logger) *Refresher {
	return &Refresher{
		source:   source,
		interval: interval,
		refresh:  refresh,
		logger:   logger.With("component", "refresher"),
	}
}

// Run consumes push events until ctx is cancelled or the event stream
// closes (the channel gave up reconnecting; polling then carries on alone).
func (r *Refresher) Run(ctx context.Context) error {
	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	events := r.source.Events()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case event, ok := <-events:
			if !ok {
				r.logger.Warn(ctx, "push channel closed, polling only")
				events = nil
				continue
			}
			if walletID, relevant := invalidates(event); relevant {
				r.trigger(ctx, walletID)
			}

		case <-ticker.C:
			// Degraded fallback only: with a live socket the server pushes
			// every change, so polling would just duplicate load.
			if events == nil || !r.source.Connected() {
				r.trigger(ctx, "")
			}
		}
	}
}

// invalidates reports whether event requires a re-fetch, and for which
// wallet. Unknown event types are ignored rather than guessed at.
func invalidates(event ws.Event) (walletID string, ok bool) {
	switch event.Type {
	case ws.EventTransactionReceived, ws.EventTransactionUpdated, ws.EventBalanceUpdated:
	default:
		return "", false
	}

	data := struct {
		WalletID string `json:"wallet_id"`
	}{}
	// A payload without a wallet id still triggers a full refresh.
	_ = json.Unmarshal(event.Data, &data)
	return data.WalletID, true
}

// trigger runs one refresh, coalescing triggers that arrive while a refresh
// is in flight.
func (r *Refresher) trigger(ctx context.Context, walletID string) {
	r.mu.Lock()
	if r.running {
		r.queued = true
		r.mu.Unlock()
		return
	}
	r.running = true
	r.mu.Unlock()

	go func() {
		for {
			if err := r.refresh(ctx, walletID); err != nil && ctx.Err() == nil {
				r.logger.Warn(ctx, "refresh failed", "wallet", walletID, "error", err)
			}

			r.mu.Lock()
			if !r.queued || ctx.Err() != nil {
				r.running = false
				r.mu.Unlock()
				return
			}
			r.queued = false
			r.mu.Unlock()

			// Coalesced follow-up covers everything.
			walletID = ""
		}
	}()
}
