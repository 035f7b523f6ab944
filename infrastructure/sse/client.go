package sse

import (
	"strconv"
	"sync"
	"sync/atomic"
)

var clientIDCounter atomic.Int64

// client is one subscription. events is closed exactly once.
type client struct {
	id     string
	events chan Event
	filter EventFilter

	mu     sync.Mutex
	closed bool
}

func newClient(bufferSize int, filter EventFilter) *client {
	return &client{
		id:     "sse-" + strconv.FormatInt(clientIDCounter.Add(1), 10),
		events: make(chan Event, bufferSize),
		filter: filter,
	}
}

// send delivers event unless it is filtered out. It returns false when the
// client buffer is full.
func (c *client) send(event Event) bool {
	if c.filter != nil && !c.filter(event) {
		return true
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return true
	}
	select {
	case c.events <- event:
		return true
	default:
		return false
	}
}

func (c *client) close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.closed {
		c.closed = true
		close(c.events)
	}
}
