// Package circuitbreaker guards calls to a failing dependency with
// sony/gobreaker.
package circuitbreaker

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sony/gobreaker"
)

// ErrCircuitOpen is returned without calling fn while the breaker is open or
// the half-open probe quota is used up.
var ErrCircuitOpen = errors.New("circuit breaker is open")

// State mirrors the gobreaker states.
type State string

const (
	StateClosed   State = "closed"
	StateHalfOpen State = "half-open"
	StateOpen     State = "open"
)

const (
	defaultMaxFailures = 5
	defaultMaxRequests = 1
	defaultTimeout     = 30 * time.Second
	defaultInterval    = time.Minute
)

// Config configures a Breaker.
type Config struct {
	Name string
	// MaxFailures consecutive failures open the circuit.
	MaxFailures uint32
	// MaxRequests are let through while half-open.
	MaxRequests uint32
	// Timeout is how long the circuit stays open.
	Timeout time.Duration
	// Interval clears the closed-state counts.
	Interval time.Duration
	// IsFailure decides whether an error counts against the circuit. Nil
	// counts every error except context cancellation.
	IsFailure func(error) bool
	// OnStateChange is called on every transition.
	OnStateChange func(name string, from, to State)
}

func (c *Config) setDefaults() {
	if c.MaxFailures == 0 {
		c.MaxFailures = defaultMaxFailures
	}
	if c.MaxRequests == 0 {
		c.MaxRequests = defaultMaxRequests
	}
	if c.Timeout <= 0 {
		c.Timeout = defaultTimeout
	}
	if c.Interval <= 0 {
		c.Interval = defaultInterval
	}
	if c.IsFailure == nil {
		c.IsFailure = func(err error) bool {
			return !errors.Is(err, context.Canceled)
		}
	}
}

// Breaker wraps a gobreaker.CircuitBreaker.
type Breaker struct {
	cb *gobreaker.CircuitBreaker
}

// New creates a breaker.
func New(cfg Config) *Breaker {
	cfg.setDefaults()

	settings := gobreaker.Settings{
		Name:        cfg.Name,
		MaxRequests: cfg.MaxRequests,
		Interval:    cfg.Interval,
		Timeout:     cfg.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= cfg.MaxFailures
		},
		IsSuccessful: func(err error) bool {
			return err == nil || !cfg.IsFailure(err)
		},
	}
	if cfg.OnStateChange != nil {
		settings.OnStateChange = func(name string, from, to gobreaker.State) {
			cfg.OnStateChange(name, convert(from), convert(to))
		}
	}

	return &Breaker{cb: gobreaker.NewCircuitBreaker(settings)}
}

// Execute runs fn unless the circuit is open.
func (b *Breaker) Execute(ctx context.Context, fn func(ctx context.Context) error) error {
	_, err := b.cb.Execute(func() (any, error) {
		return nil, fn(ctx)
	})
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return fmt.Errorf("%w: %s", ErrCircuitOpen, b.cb.Name())
	}
	return err
}

// State returns the current state.
func (b *Breaker) State() State {
	return convert(b.cb.State())
}

// Stats is a point-in-time view of the counts.
type Stats struct {
	State               State  `json:"state"`
	Requests            uint32 `json:"requests"`
	ConsecutiveFailures uint32 `json:"consecutive_failures"`
	TotalFailures       uint32 `json:"total_failures"`
}

// GetStats returns current statistics.
func (b *Breaker) GetStats() Stats {
	counts := b.cb.Counts()
	return Stats{
		State:               b.State(),
		Requests:            counts.Requests,
		ConsecutiveFailures: counts.ConsecutiveFailures,
		TotalFailures:       counts.TotalFailures,
	}
}

func convert(s gobreaker.State) State {
	switch s {
	case gobreaker.StateOpen:
		return StateOpen
	case gobreaker.StateHalfOpen:
		return StateHalfOpen
	default:
		return StateClosed
	}
}
