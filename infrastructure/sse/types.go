// Package sse streams events to HTTP clients as Server-Sent Events.
package sse

import (
	"errors"
	"time"
)

// Event is one Server-Sent Event. Data is encoded as JSON.
type Event struct {
	Type string `json:"type"`
	Data any    `json:"data"`
	ID   string `json:"id,omitempty"`
}

// EventFilter reports whether an event should reach a client.
type EventFilter func(event Event) bool

// Errors returned by the broker.
var (
	ErrBufferFull     = errors.New("sse publish buffer full")
	ErrTooManyClients = errors.New("sse client limit reached")
	ErrNotRunning     = errors.New("sse broker not running")
)

// Defaults for Config.
const (
	DefaultEventBufferSize   = 256
	DefaultClientBufferSize  = 64
	DefaultHeartbeatInterval = 15 * time.Second
	DefaultMaxClients        = 100
)

// Config configures a broker. Zero values take defaults.
type Config struct {
	EventBufferSize   int           `yaml:"event_buffer_size"`
	ClientBufferSize  int           `yaml:"client_buffer_size"`
	HeartbeatInterval time.Duration `yaml:"heartbeat_interval"`
	MaxClients        int           `env:"SSE_MAX_CLIENTS" yaml:"max_clients"`
}

// SetDefaults fills zero values.
func (c *Config) SetDefaults() {
	if c.EventBufferSize <= 0 {
		c.EventBufferSize = DefaultEventBufferSize
	}
	if c.ClientBufferSize <= 0 {
		c.ClientBufferSize = DefaultClientBufferSize
	}
	if c.HeartbeatInterval <= 0 {
		c.HeartbeatInterval = DefaultHeartbeatInterval
	}
	if c.MaxClients <= 0 {
		c.MaxClients = DefaultMaxClients
	}
}
