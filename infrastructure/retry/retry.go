// Package retry re-runs transient operations with a bounded number of attempts.
package retry

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"
)

var (
	// ErrMaxAttemptsExceeded wraps the last error once every attempt has failed.
	ErrMaxAttemptsExceeded = errors.New("max retry attempts exceeded")
	// ErrContextCancelled is returned when ctx ends between attempts.
	ErrContextCancelled = errors.New("context cancelled during retry")
)

// Backoff selects how the delay grows between attempts.
type Backoff string

const (
	// BackoffLinear waits InitialDelay*n after the n-th failed attempt.
	BackoffLinear Backoff = "linear"
	// BackoffExponential waits InitialDelay*Multiplier^(n-1).
	BackoffExponential Backoff = "exponential"
)

const (
	defaultMaxAttempts  = 3
	defaultInitialDelay = time.Second
	defaultMaxDelay     = 30 * time.Second
	defaultMultiplier   = 2.0
)

// Config configures Do.
type Config struct {
	// MaxAttempts counts the first call.
	MaxAttempts  int           `env:"RETRY_MAX_ATTEMPTS"  yaml:"max_attempts"`
	InitialDelay time.Duration `env:"RETRY_INITIAL_DELAY" yaml:"initial_delay"`
	MaxDelay     time.Duration `env:"RETRY_MAX_DELAY"     yaml:"max_delay"`
	Backoff      Backoff       `env:"RETRY_BACKOFF"       yaml:"backoff"`
	// Multiplier only applies to exponential backoff.
	Multiplier float64 `yaml:"multiplier"`
	// IsRetryable decides whether an error earns another attempt. Nil retries everything.
	IsRetryable func(error) bool `yaml:"-"`
	// OnRetry is called before each wait.
	OnRetry func(attempt int, delay time.Duration, err error) `yaml:"-"`
}

// DefaultConfig is three attempts with 1s, 2s linear waits.
func DefaultConfig() Config {
	return Config{
		MaxAttempts:  defaultMaxAttempts,
		InitialDelay: defaultInitialDelay,
		MaxDelay:     defaultMaxDelay,
		Backoff:      BackoffLinear,
	}
}

// SetDefaults fills unset fields.
func (c *Config) SetDefaults() {
	if c.MaxAttempts <= 0 {
		c.MaxAttempts = defaultMaxAttempts
	}
	if c.InitialDelay <= 0 {
		c.InitialDelay = defaultInitialDelay
	}
	if c.MaxDelay <= 0 {
		c.MaxDelay = defaultMaxDelay
	}
	if c.Backoff == "" {
		c.Backoff = BackoffLinear
	}
	if c.Multiplier <= 0 {
		c.Multiplier = defaultMultiplier
	}
}

// Delay returns the wait after the given failed attempt (1-based).
func (c Config) Delay(attempt int) time.Duration {
	var d time.Duration
	switch c.Backoff {
	case BackoffExponential:
		d = time.Duration(float64(c.InitialDelay) * math.Pow(c.Multiplier, float64(attempt-1)))
	default:
		d = c.InitialDelay * time.Duration(attempt)
	}
	if d > c.MaxDelay {
		d = c.MaxDelay
	}
	return d
}

// Do calls fn until it succeeds, returns a non-retryable error, or MaxAttempts
// is reached. The final failure is surfaced wrapped in ErrMaxAttemptsExceeded.
func Do(ctx context.Context, cfg Config, fn func(ctx context.Context) error) error {
	cfg.SetDefaults()

	var lastErr error
	for attempt := 1; attempt <= cfg.MaxAttempts; attempt++ {
		if ctx.Err() != nil {
			return fmt.Errorf("%w: %w", ErrContextCancelled, ctx.Err())
		}

		err := fn(ctx)
		if err == nil {
			return nil
		}
		lastErr = err

		if cfg.IsRetryable != nil && !cfg.IsRetryable(err) {
			return err
		}
		if attempt == cfg.MaxAttempts {
			break
		}

		delay := cfg.Delay(attempt)
		if cfg.OnRetry != nil {
			cfg.OnRetry(attempt, delay, err)
		}

		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return fmt.Errorf("%w: %w", ErrContextCancelled, ctx.Err())
		case <-timer.C:
		}
	}

	return fmt.Errorf("%w after %d attempts: %w", ErrMaxAttemptsExceeded, cfg.MaxAttempts, lastErr)
}

// IsTransient reports whether err looks like a network or timeout failure.
func IsTransient(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}

	msg := strings.ToLower(err.Error())
	for _, pattern := range []string{
		"timeout",
		"connection refused",
		"connection reset",
		"broken pipe",
		"no such host",
		"temporary failure",
		"database is locked",
		"too many connections",
	} {
		if strings.Contains(msg, pattern) {
			return true
		}
	}
	return false
}
