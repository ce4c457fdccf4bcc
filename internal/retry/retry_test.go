package retry

import (
	"context"
	"errors"
	"fmt"
	"io"
	"syscall"
	"testing"
	"time"

	"github.com/onticket/chainindexer/internal/common"
	"github.com/onticket/chainindexer/pkg/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// mockNetError implements net.Error for testing
type mockNetError struct {
	msg     string
	timeout bool
}

func (e *mockNetError) Error() string   { return e.msg }
func (e *mockNetError) Timeout() bool   { return e.timeout }
func (e *mockNetError) Temporary() bool { return false }

func fastConfig(maxAttempts int) *config.RetryConfig {
	return &config.RetryConfig{
		MaxAttempts:       maxAttempts,
		InitialBackoff:    common.NewDuration(time.Millisecond),
		MaxBackoff:        common.NewDuration(5 * time.Millisecond),
		BackoffMultiplier: 2.0,
	}
}

func TestRetryable(t *testing.T) {
	tests := []struct {
		name      string
		err       error
		retryable bool
	}{
		{name: "nil error", err: nil, retryable: false},
		{name: "network timeout", err: &mockNetError{msg: "network timeout", timeout: true}, retryable: true},
		{name: "connection refused", err: syscall.ECONNREFUSED, retryable: true},
		{name: "connection reset", err: syscall.ECONNRESET, retryable: true},
		{name: "eof", err: io.EOF, retryable: true},
		{name: "wrapped eof", err: fmt.Errorf("read: %w", io.EOF), retryable: true},
		{name: "deadline", err: context.DeadlineExceeded, retryable: true},
		{name: "rate limited", err: errors.New("HTTP 429 Too Many Requests"), retryable: true},
		{name: "bad gateway", err: errors.New("502 Bad Gateway"), retryable: true},
		{name: "invalid params", err: errors.New("invalid argument 0: hex string without 0x prefix"), retryable: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.retryable, Retryable(tt.err))
		})
	}
}

func TestBackoff(t *testing.T) {
	cfg := &config.RetryConfig{
		InitialBackoff:    common.NewDuration(1 * time.Second),
		MaxBackoff:        common.NewDuration(30 * time.Second),
		BackoffMultiplier: 2.0,
	}

	tests := []struct {
		attempt     int
		minExpected time.Duration
		maxExpected time.Duration
	}{
		{attempt: 1, minExpected: 0, maxExpected: 0},
		{attempt: 2, minExpected: 750 * time.Millisecond, maxExpected: 1250 * time.Millisecond},
		{attempt: 3, minExpected: 1500 * time.Millisecond, maxExpected: 2500 * time.Millisecond},
		{attempt: 5, minExpected: 6 * time.Second, maxExpected: 10 * time.Second},
	}

	for _, tt := range tests {
		t.Run(fmt.Sprintf("attempt %d", tt.attempt), func(t *testing.T) {
			// jitter is random, sample several times
			for range 10 {
				backoff := Backoff(tt.attempt, cfg)
				assert.GreaterOrEqual(t, backoff, tt.minExpected)
				assert.LessOrEqual(t, backoff, tt.maxExpected)
			}
		})
	}
}

func TestBackoff_CappedAtMax(t *testing.T) {
	cfg := &config.RetryConfig{
		InitialBackoff:    common.NewDuration(1 * time.Second),
		MaxBackoff:        common.NewDuration(5 * time.Second),
		BackoffMultiplier: 2.0,
	}

	assert.LessOrEqual(t, Backoff(10, cfg), 6250*time.Millisecond)
}

func TestDo_SuccessAfterRetries(t *testing.T) {
	calls := 0
	err := Do(context.Background(), fastConfig(5), "test", func() error {
		calls++
		if calls < 3 {
			return &mockNetError{msg: "temporary", timeout: true}
		}
		return nil
	})
	require.NoError(t, err)
	require.Equal(t, 3, calls)
}

func TestDo_NonRetryable(t *testing.T) {
	calls := 0
	err := Do(context.Background(), fastConfig(5), "test", func() error {
		calls++
		return errors.New("invalid params")
	})
	require.ErrorContains(t, err, "non-retryable")
	require.Equal(t, 1, calls)
}

func TestDo_Exhausted(t *testing.T) {
	calls := 0
	err := Do(context.Background(), fastConfig(3), "test", func() error {
		calls++
		return syscall.ECONNREFUSED
	})
	require.ErrorIs(t, err, syscall.ECONNREFUSED)
	require.Equal(t, 3, calls)
}

func TestDo_UnboundedStopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())

	calls := 0
	err := Do(ctx, fastConfig(0), "test", func() error {
		calls++
		if calls == 10 {
			cancel()
		}
		return syscall.ECONNRESET
	})
	require.ErrorIs(t, err, context.Canceled)
	require.ErrorIs(t, err, syscall.ECONNRESET)
	require.Equal(t, 10, calls)
}

func TestDo_NilConfig(t *testing.T) {
	boom := errors.New("boom")
	require.ErrorIs(t, Do(context.Background(), nil, "test", func() error { return boom }), boom)
}

func TestWait(t *testing.T) {
	require.NoError(t, Wait(context.Background(), time.Millisecond))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	require.ErrorIs(t, Wait(ctx, time.Hour), context.Canceled)
	require.ErrorIs(t, Wait(ctx, 0), context.Canceled)
}
