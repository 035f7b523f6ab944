package lock

import (
	"context"
	"sync/atomic"
	"time"
)

// LocalLocker is the in-process fallback used when redis is disabled.
type LocalLocker struct {
	sem  chan struct{}
	wait time.Duration
}

// NewLocalLocker creates a locker that waits at most cfg.Wait.
func NewLocalLocker(cfg Config) *LocalLocker {
	cfg.setDefaults()
	return &LocalLocker{sem: make(chan struct{}, 1), wait: cfg.Wait}
}

// Lock blocks until the lock is free, ctx ends, or the wait elapses.
func (l *LocalLocker) Lock(ctx context.Context) (Lease, error) {
	timer := time.NewTimer(l.wait)
	defer timer.Stop()

	select {
	case l.sem <- struct{}{}:
		return &localLease{sem: l.sem}, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-timer.C:
		return nil, ErrBusy
	}
}

type localLease struct {
	sem      chan struct{}
	released atomic.Bool
}

func (l *localLease) Unlock(context.Context) error {
	if !l.released.CompareAndSwap(false, true) {
		return ErrNotHeld
	}
	<-l.sem
	return nil
}
