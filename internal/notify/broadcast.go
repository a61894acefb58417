package notify

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/stackpulse/pulse-server/internal/store"
)

// DefaultDispatchTimeout bounds a single outbound channel call so one
// hanging channel cannot stall siblings.
const DefaultDispatchTimeout = 5 * time.Second

// Result aggregates the outcome of every dispatch attempt in one broadcast.
type Result struct {
	Sent   int `json:"sent"`
	Failed int `json:"failed"`
}

// Broadcaster resolves recipients from the preference store and fans a
// notification out across each recipient's configured channels. Any sender
// may be nil, which disables that channel.
type Broadcaster struct {
	store    store.Store
	discord  Sender
	telegram Sender
	email    Sender
	timeout  time.Duration
	logger   *zap.Logger
}

func NewBroadcaster(st store.Store, discord, telegram, email Sender, timeout time.Duration, logger *zap.Logger) *Broadcaster {
	if timeout <= 0 {
		timeout = DefaultDispatchTimeout
	}
	return &Broadcaster{
		store:    st,
		discord:  discord,
		telegram: telegram,
		email:    email,
		timeout:  timeout,
		logger:   logger,
	}
}

// Broadcast dispatches n to every resolved recipient's configured channels,
// plus one unconditional delivery to the operator Discord webhook when that
// channel is configured. Dispatches run concurrently with independent
// timeouts; one failure never blocks siblings. Every attempt, the operator
// delivery included, counts toward the returned totals.
func (b *Broadcaster) Broadcast(ctx context.Context, n Notification, addresses ...string) Result {
	recipients := b.resolveRecipients(ctx, addresses)

	var wg sync.WaitGroup
	var sent, failed atomic.Int64

	dispatch := func(s Sender, dest string) {
		wg.Add(1)
		go func() {
			defer wg.Done()
			sendCtx, cancel := context.WithTimeout(ctx, b.timeout)
			defer cancel()
			if s.Send(sendCtx, dest, n) {
				sent.Add(1)
			} else {
				failed.Add(1)
			}
		}()
	}

	for _, user := range recipients {
		// Hard filter: recipients that did not opt in to this category get
		// no dispatches at all.
		if !user.AlertsEnabled(string(n.Category)) {
			continue
		}
		if b.discord != nil && user.Discord != "" {
			dispatch(b.discord, user.Discord)
		}
		if b.telegram != nil && user.Telegram != "" {
			dispatch(b.telegram, user.Telegram)
		}
		if b.email != nil && user.Email != "" {
			dispatch(b.email, user.Email)
		}
	}

	// Operator visibility channel: always delivered once, independent of any
	// per-user filter.
	if b.discord != nil {
		dispatch(b.discord, "")
	}

	wg.Wait()

	result := Result{Sent: int(sent.Load()), Failed: int(failed.Load())}
	b.logger.Info("broadcast complete",
		zap.String("category", string(n.Category)),
		zap.Int("recipients", len(recipients)),
		zap.Int("sent", result.Sent),
		zap.Int("failed", result.Failed))
	return result
}

// resolveRecipients looks up the explicit address list (missing addresses
// are skipped) or scans all stored preferences when no list is given. Store
// errors degrade to an empty recipient set.
func (b *Broadcaster) resolveRecipients(ctx context.Context, addresses []string) []*store.UserPreferences {
	if len(addresses) == 0 {
		users, err := b.store.ListPreferences(ctx)
		if err != nil {
			b.logger.Error("failed to list recipients", zap.Error(err))
			return nil
		}
		return users
	}

	out := make([]*store.UserPreferences, 0, len(addresses))
	for _, address := range addresses {
		user, err := b.store.GetPreferences(ctx, address)
		if err == store.ErrNotFound {
			continue
		}
		if err != nil {
			b.logger.Error("failed to resolve recipient",
				zap.String("address", address),
				zap.Error(err))
			continue
		}
		out = append(out, user)
	}
	return out
}
