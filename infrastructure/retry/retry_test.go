package retry_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/Hosseinjeff/Wholesale-project/infrastructure/retry"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var errStore = errors.New("store write failed")

func fastConfig() retry.Config {
	return retry.Config{MaxAttempts: 3, InitialDelay: time.Millisecond, Backoff: retry.BackoffLinear}
}

func TestDo_SucceedsAfterTransientFailures(t *testing.T) {
	t.Parallel()

	calls := 0
	err := retry.Do(context.Background(), fastConfig(), func(context.Context) error {
		calls++
		if calls < 3 {
			return errStore
		}
		return nil
	})

	require.NoError(t, err)
	assert.Equal(t, 3, calls)
}

func TestDo_SurfacesErrorAfterMaxAttempts(t *testing.T) {
	t.Parallel()

	calls := 0
	err := retry.Do(context.Background(), fastConfig(), func(context.Context) error {
		calls++
		return errStore
	})

	require.ErrorIs(t, err, retry.ErrMaxAttemptsExceeded)
	require.ErrorIs(t, err, errStore)
	assert.Equal(t, 3, calls)
}

func TestDo_StopsOnNonRetryable(t *testing.T) {
	t.Parallel()

	cfg := fastConfig()
	cfg.IsRetryable = func(error) bool { return false }

	calls := 0
	err := retry.Do(context.Background(), cfg, func(context.Context) error {
		calls++
		return errStore
	})

	require.ErrorIs(t, err, errStore)
	assert.NotErrorIs(t, err, retry.ErrMaxAttemptsExceeded)
	assert.Equal(t, 1, calls)
}

func TestDo_ContextCancelled(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := retry.Do(ctx, fastConfig(), func(context.Context) error { return nil })
	assert.ErrorIs(t, err, retry.ErrContextCancelled)
}

func TestDo_OnRetryReceivesLinearDelays(t *testing.T) {
	t.Parallel()

	var delays []time.Duration
	cfg := fastConfig()
	cfg.OnRetry = func(_ int, d time.Duration, _ error) { delays = append(delays, d) }

	_ = retry.Do(context.Background(), cfg, func(context.Context) error { return errStore })

	assert.Equal(t, []time.Duration{time.Millisecond, 2 * time.Millisecond}, delays)
}

func TestConfig_Delay(t *testing.T) {
	t.Parallel()

	linear := retry.DefaultConfig()
	assert.Equal(t, time.Second, linear.Delay(1))
	assert.Equal(t, 2*time.Second, linear.Delay(2))
	assert.Equal(t, 3*time.Second, linear.Delay(3))

	exp := retry.Config{InitialDelay: 100 * time.Millisecond, MaxDelay: 300 * time.Millisecond, Backoff: retry.BackoffExponential}
	exp.SetDefaults()
	assert.Equal(t, 100*time.Millisecond, exp.Delay(1))
	assert.Equal(t, 200*time.Millisecond, exp.Delay(2))
	assert.Equal(t, 300*time.Millisecond, exp.Delay(3), "capped at MaxDelay")
}

func TestIsTransient(t *testing.T) {
	t.Parallel()

	assert.True(t, retry.IsTransient(errors.New("dial tcp: connection refused")))
	assert.True(t, retry.IsTransient(context.DeadlineExceeded))
	assert.True(t, retry.IsTransient(errors.New("database is locked")))
	assert.False(t, retry.IsTransient(errors.New("duplicate key value")))
	assert.False(t, retry.IsTransient(nil))
}
