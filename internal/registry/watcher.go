package registry

import (
	"context"
	"errors"
	"fmt"

	"github.com/onticket/chainindexer/internal/logger"
	"github.com/onticket/chainindexer/internal/retry"
	"github.com/onticket/chainindexer/pkg/config"
	"github.com/redis/go-redis/v9"
)

// Reloader refreshes the cached contract addresses.
type Reloader interface {
	Reload(ctx context.Context) error
}

// Watcher keeps a Reloader in sync with registry update notifications.
// Every message triggers a reload regardless of its payload. When the subscription
// breaks, the watcher subscribes again with exponential backoff and reloads once
// after each successful subscription to cover notifications it may have missed.
type Watcher struct {
	client   redis.UniversalClient
	channel  string
	reloader Reloader
	backoff  *config.RetryConfig
	log      *logger.Logger

	// subscribed, if set, is called after every successful subscription.
	subscribed func()
}

// NewWatcher creates a watcher listening on UpdateChannel.
func NewWatcher(client redis.UniversalClient, reloader Reloader, backoff *config.RetryConfig,
	log *logger.Logger) *Watcher {
	if backoff == nil {
		backoff = &config.RetryConfig{}
		backoff.ApplyDefaults()
	}

	return &Watcher{
		client:   client,
		channel:  UpdateChannel,
		reloader: reloader,
		backoff:  backoff,
		log:      log,
	}
}

// Run blocks until ctx is done or max_attempts subscriptions in a row have failed.
// Giving up is logged, not returned, so that it does not stop the processes sharing ctx.
func (w *Watcher) Run(ctx context.Context) error {
	failures := 0
	for {
		err := w.session(ctx, func() { failures = 0 })
		if ctx.Err() != nil {
			w.log.Info("registry watcher stopped")
			return nil
		}

		failures++
		if w.backoff.MaxAttempts > 0 && failures >= w.backoff.MaxAttempts {
			// the cache keeps serving the last addresses it resolved
			w.log.Errorw("registry watcher giving up, addresses will no longer be reloaded",
				"channel", w.channel, "failed_subscriptions", failures, "error", err)
			return nil
		}

		// attempt numbering starts at 2 so the first reconnect already waits InitialBackoff
		wait := retry.Backoff(failures+1, w.backoff)
		w.log.Warnw("registry subscription ended, reconnecting",
			"channel", w.channel, "attempt", failures, "backoff", wait, "error", err)
		retry.Inc("registry_subscribe")

		if err := retry.Wait(ctx, wait); err != nil {
			w.log.Info("registry watcher stopped")
			return nil
		}
	}
}

// session subscribes, reloads once and then reloads per message until the stream breaks.
func (w *Watcher) session(ctx context.Context, onSubscribed func()) error {
	sub := w.client.Subscribe(ctx, w.channel)

	// blocking reads only honour deadlines, closing the subscription unblocks them on cancel
	stop := context.AfterFunc(ctx, func() { _ = sub.Close() })
	defer stop()
	defer func() {
		if err := sub.Close(); err != nil && !errors.Is(err, redis.ErrClosed) {
			w.log.Debugf("failed to close subscription: %v", err)
		}
	}()

	// wait for the subscription to be confirmed
	if _, err := sub.Receive(ctx); err != nil {
		return fmt.Errorf("failed to subscribe to %s: %w", w.channel, err)
	}

	onSubscribed()
	SubscriptionInc()
	w.log.Infow("subscribed to registry updates", "channel", w.channel)

	w.reload(ctx, "subscribed")
	if w.subscribed != nil {
		w.subscribed()
	}

	for {
		msg, err := sub.ReceiveMessage(ctx)
		if err != nil {
			return fmt.Errorf("registry subscription on %s ended: %w", w.channel, err)
		}

		NotificationInc()
		w.reload(ctx, msg.Payload)
	}
}

func (w *Watcher) reload(ctx context.Context, trigger string) {
	if err := w.reloader.Reload(ctx); err != nil {
		if ctx.Err() != nil {
			return
		}
		w.log.Errorw("registry reload failed, keeping previous addresses", "trigger", trigger, "error", err)
		return
	}
	w.log.Debugw("registry reloaded", "trigger", trigger)
}
