package sse

import (
	"context"
	"sync"

	"github.com/Hosseinjeff/Wholesale-project/infrastructure/logger"
)

// Broker fans published events out to subscribers. Slow subscribers whose
// buffer fills are disconnected rather than blocking the others.
type Broker struct {
	cfg     Config
	log     logger.Logger
	publish chan Event

	mu      sync.RWMutex
	clients map[string]*client
	running bool

	cancel context.CancelFunc
	done   chan struct{}
}

// NewBroker creates a broker. Start must be called before events flow.
func NewBroker(cfg Config, log logger.Logger) *Broker {
	cfg.SetDefaults()
	if log == nil {
		log = logger.NewNop()
	}
	return &Broker{
		cfg:     cfg,
		log:     log.With(logger.Component("sse")),
		publish: make(chan Event, cfg.EventBufferSize),
		clients: make(map[string]*client),
	}
}

// Config returns the effective configuration.
func (b *Broker) Config() Config {
	return b.cfg
}

// Start runs the broadcast loop until ctx is cancelled or Stop is called.
func (b *Broker) Start(ctx context.Context) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.running {
		return
	}
	ctx, b.cancel = context.WithCancel(ctx)
	b.done = make(chan struct{})
	b.running = true

	go b.loop(ctx)
	b.log.Info("SSE broker started",
		logger.Int("event_buffer_size", b.cfg.EventBufferSize),
		logger.Int("max_clients", b.cfg.MaxClients),
	)
}

// Stop ends the broadcast loop and disconnects every client.
func (b *Broker) Stop(ctx context.Context) error {
	b.mu.RLock()
	cancel, done := b.cancel, b.done
	b.mu.RUnlock()
	if cancel == nil {
		return nil
	}

	cancel()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Publish queues event for broadcast without blocking. With no subscribers
// the event is discarded.
func (b *Broker) Publish(event Event) error {
	b.mu.RLock()
	running, clients := b.running, len(b.clients)
	b.mu.RUnlock()

	if !running {
		return ErrNotRunning
	}
	if clients == 0 {
		return nil
	}
	select {
	case b.publish <- event:
		return nil
	default:
		return ErrBufferFull
	}
}

// Subscribe registers a client. The returned channel closes when ctx ends,
// the client falls behind, or the broker stops. cancel releases the
// subscription early.
func (b *Broker) Subscribe(ctx context.Context, filter EventFilter) (events <-chan Event, cancel func(), err error) {
	b.mu.Lock()
	if !b.running {
		b.mu.Unlock()
		return nil, nil, ErrNotRunning
	}
	if len(b.clients) >= b.cfg.MaxClients {
		b.mu.Unlock()
		return nil, nil, ErrTooManyClients
	}
	c := newClient(b.cfg.ClientBufferSize, filter)
	b.clients[c.id] = c
	total := len(b.clients)
	b.mu.Unlock()

	b.log.Debug("SSE client subscribed",
		logger.String("client_id", c.id),
		logger.Int("clients", total),
	)

	stop := context.AfterFunc(ctx, func() { b.remove(c.id) })
	cancel = func() {
		stop()
		b.remove(c.id)
	}
	return c.events, cancel, nil
}

// ClientCount returns the number of subscribers.
func (b *Broker) ClientCount() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.clients)
}

func (b *Broker) loop(ctx context.Context) {
	defer close(b.done)
	for {
		select {
		case event := <-b.publish:
			b.broadcast(event)
		case <-ctx.Done():
			b.disconnectAll()
			return
		}
	}
}

func (b *Broker) broadcast(event Event) {
	b.mu.RLock()
	clients := make([]*client, 0, len(b.clients))
	for _, c := range b.clients {
		clients = append(clients, c)
	}
	b.mu.RUnlock()

	for _, c := range clients {
		if !c.send(event) {
			b.log.Warn("SSE client too slow, disconnecting",
				logger.String("client_id", c.id),
				logger.String("event_type", event.Type),
			)
			b.remove(c.id)
		}
	}
}

func (b *Broker) remove(id string) {
	b.mu.Lock()
	c, ok := b.clients[id]
	delete(b.clients, id)
	b.mu.Unlock()

	if ok {
		c.close()
	}
}

func (b *Broker) disconnectAll() {
	b.mu.Lock()
	clients := b.clients
	b.clients = make(map[string]*client)
	b.running = false
	b.cancel = nil
	b.mu.Unlock()

	for _, c := range clients {
		c.close()
	}
	b.log.Info("SSE broker stopped", logger.Int("disconnected", len(clients)))
}
