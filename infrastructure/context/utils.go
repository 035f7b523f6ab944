// Package context provides timeout helpers for background operations.
package context

import (
	"context"
	"time"
)

const (
	// DefaultShutdownTimeout bounds graceful shutdown of background workers.
	DefaultShutdownTimeout = 10 * time.Second

	// DefaultPingTimeout bounds health check pings.
	DefaultPingTimeout = 2 * time.Second
)

// WithShutdownTimeout returns a context bounded by DefaultShutdownTimeout. It
// is detached from any request or signal context.
func WithShutdownTimeout() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), DefaultShutdownTimeout)
}

// WithPingTimeout returns a context bounded by DefaultPingTimeout.
func WithPingTimeout() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), DefaultPingTimeout)
}
