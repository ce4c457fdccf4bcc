package retry

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math"
	"math/rand"
	"net"
	"strings"
	"syscall"
	"time"

	"github.com/onticket/chainindexer/pkg/config"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var retries = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: "chainindexer_retries_total",
		Help: "Total number of retried operations by operation name",
	},
	[]string{"operation"},
)

// Retryable checks if an error should trigger a retry.
func Retryable(err error) bool {
	if err == nil {
		return false
	}

	// Network errors
	var netErr net.Error
	if errors.As(err, &netErr) {
		return true
	}

	// Connection errors
	if errors.Is(err, syscall.ECONNREFUSED) ||
		errors.Is(err, syscall.ECONNRESET) ||
		errors.Is(err, syscall.EPIPE) ||
		errors.Is(err, io.EOF) ||
		errors.Is(err, io.ErrUnexpectedEOF) ||
		errors.Is(err, net.ErrClosed) {
		return true
	}

	errStr := strings.ToLower(err.Error())

	for _, marker := range []string{
		// Timeout errors
		"timeout", "deadline exceeded",
		// Rate limiting
		"429", "too many requests", "rate limit",
		// Temporary server errors
		"502", "503", "504", "bad gateway", "service unavailable",
		// Connection pool exhausted
		"connection pool", "no available connection",
	} {
		if strings.Contains(errStr, marker) {
			return true
		}
	}

	return false
}

// Backoff computes the wait before the given attempt with ±25% jitter.
// Attempt 1 never waits.
func Backoff(attempt int, cfg *config.RetryConfig) time.Duration {
	if attempt <= 1 {
		return 0
	}

	backoff := float64(cfg.InitialBackoff.Duration) * math.Pow(cfg.BackoffMultiplier, float64(attempt-2))
	if backoff > float64(cfg.MaxBackoff.Duration) {
		backoff = float64(cfg.MaxBackoff.Duration)
	}

	jitterRange := backoff * 0.25
	jitter := (rand.Float64() * 2 * jitterRange) - jitterRange //nolint:gosec
	backoff += jitter

	if backoff < 0 {
		backoff = 0
	}

	return time.Duration(backoff)
}

// Wait blocks for d or until ctx is done.
func Wait(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}

	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Inc records one retry of operation.
func Inc(operation string) {
	retries.WithLabelValues(operation).Inc()
}

// Do executes fn with exponential backoff while it fails with a retryable error.
// A nil cfg runs fn once; MaxAttempts of 0 retries until ctx is done.
func Do(ctx context.Context, cfg *config.RetryConfig, operation string, fn func() error) error {
	if cfg == nil {
		return fn()
	}

	var lastErr error
	startTime := time.Now()

	for attempt := 1; cfg.MaxAttempts == 0 || attempt <= cfg.MaxAttempts; attempt++ {
		if err := Wait(ctx, Backoff(attempt, cfg)); err != nil {
			if lastErr != nil {
				return fmt.Errorf("context cancelled before attempt %d: %w (last error: %w)", attempt, err, lastErr)
			}
			return fmt.Errorf("context cancelled before attempt %d: %w", attempt, err)
		}
		if attempt > 1 {
			Inc(operation)
		}

		err := fn()
		if err == nil {
			return nil
		}
		lastErr = err

		if !Retryable(err) {
			return fmt.Errorf("non-retryable error on attempt %d: %w", attempt, err)
		}
	}

	return fmt.Errorf("all %d attempts failed after %v (last error: %w)",
		cfg.MaxAttempts, time.Since(startTime), lastErr)
}
