// Package lock serialises ingestion across processes (redis) or within one
// process (local).
package lock

import (
	"context"
	"errors"
	"time"
)

const (
	// DefaultWait is how long Lock waits before giving up with ErrBusy.
	DefaultWait = 30 * time.Second

	// DefaultTTL bounds how long a crashed holder can keep the redis lock.
	DefaultTTL = 60 * time.Second

	// DefaultRetryDelay is the pause between redis acquisition attempts.
	DefaultRetryDelay = 50 * time.Millisecond
)

var (
	// ErrBusy is returned when the lock could not be acquired within the wait.
	ErrBusy = errors.New("server busy")

	// ErrNotHeld is returned when releasing a lease that has expired or was
	// taken over.
	ErrNotHeld = errors.New("lock not held")
)

// Locker hands out exclusive leases.
type Locker interface {
	Lock(ctx context.Context) (Lease, error)
}

// Lease is one held acquisition.
type Lease interface {
	Unlock(ctx context.Context) error
}

// Config configures a Locker.
type Config struct {
	Wait       time.Duration
	TTL        time.Duration
	RetryDelay time.Duration
}

func (c *Config) setDefaults() {
	if c.Wait <= 0 {
		c.Wait = DefaultWait
	}
	if c.TTL <= 0 {
		c.TTL = DefaultTTL
	}
	if c.RetryDelay <= 0 {
		c.RetryDelay = DefaultRetryDelay
	}
}
