package sse_test

import (
	"bufio"
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Hosseinjeff/Wholesale-project/infrastructure/logger"
	"github.com/Hosseinjeff/Wholesale-project/infrastructure/sse"
)

func startBroker(t *testing.T, cfg sse.Config) *sse.Broker {
	t.Helper()
	b := sse.NewBroker(cfg, logger.NewNop())
	b.Start(context.Background())
	t.Cleanup(func() { _ = b.Stop(context.Background()) })
	return b
}

func receive(t *testing.T, events <-chan sse.Event) sse.Event {
	t.Helper()
	select {
	case ev, ok := <-events:
		require.True(t, ok, "channel closed")
		return ev
	case <-time.After(time.Second):
		t.Fatal("timeout waiting for event")
		return sse.Event{}
	}
}

func TestBroker_PublishSubscribe(t *testing.T) {
	b := startBroker(t, sse.Config{})

	events, cancel, err := b.Subscribe(context.Background(), nil)
	require.NoError(t, err)
	defer cancel()

	require.NoError(t, b.Publish(sse.Event{Type: "log", Data: "hello"}))
	assert.Equal(t, "log", receive(t, events).Type)
}

func TestBroker_Filter(t *testing.T) {
	b := startBroker(t, sse.Config{})

	events, cancel, err := b.Subscribe(context.Background(), func(ev sse.Event) bool {
		return ev.Type == "alert"
	})
	require.NoError(t, err)
	defer cancel()

	require.NoError(t, b.Publish(sse.Event{Type: "log"}))
	require.NoError(t, b.Publish(sse.Event{Type: "alert"}))
	assert.Equal(t, "alert", receive(t, events).Type)
}

func TestBroker_PublishWithoutSubscribers(t *testing.T) {
	b := startBroker(t, sse.Config{})
	assert.NoError(t, b.Publish(sse.Event{Type: "log"}))

	idle := sse.NewBroker(sse.Config{}, nil)
	assert.ErrorIs(t, idle.Publish(sse.Event{Type: "log"}), sse.ErrNotRunning)
}

func TestBroker_MaxClients(t *testing.T) {
	b := startBroker(t, sse.Config{MaxClients: 1})

	_, cancel, err := b.Subscribe(context.Background(), nil)
	require.NoError(t, err)

	_, _, err = b.Subscribe(context.Background(), nil)
	require.ErrorIs(t, err, sse.ErrTooManyClients)

	cancel()
	assert.Equal(t, 0, b.ClientCount())
	_, cancel, err = b.Subscribe(context.Background(), nil)
	require.NoError(t, err)
	cancel()
}

func TestBroker_ContextCancelRemovesClient(t *testing.T) {
	b := startBroker(t, sse.Config{})

	ctx, cancel := context.WithCancel(context.Background())
	events, release, err := b.Subscribe(ctx, nil)
	require.NoError(t, err)
	defer release()

	cancel()
	select {
	case _, ok := <-events:
		assert.False(t, ok)
	case <-time.After(time.Second):
		t.Fatal("subscription not closed")
	}
	assert.Equal(t, 0, b.ClientCount())
}

func TestBroker_StopClosesSubscribers(t *testing.T) {
	b := sse.NewBroker(sse.Config{}, nil)
	b.Start(context.Background())

	events, cancel, err := b.Subscribe(context.Background(), nil)
	require.NoError(t, err)
	defer cancel()

	require.NoError(t, b.Stop(context.Background()))
	_, ok := <-events
	assert.False(t, ok)

	_, _, err = b.Subscribe(context.Background(), nil)
	assert.ErrorIs(t, err, sse.ErrNotRunning)
}

func TestHandler_StreamsEvents(t *testing.T) {
	gin.SetMode(gin.TestMode)
	b := startBroker(t, sse.Config{})

	router := gin.New()
	router.GET("/events", sse.Handler(b, logger.NewNop(), nil))
	srv := httptest.NewServer(router)
	t.Cleanup(srv.Close)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, srv.URL+"/events", http.NoBody)
	require.NoError(t, err)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, "text/event-stream", resp.Header.Get("Content-Type"))
	lines := bufio.NewScanner(resp.Body)
	require.True(t, lines.Scan())
	assert.Equal(t, "event: connected", lines.Text())

	require.Eventually(t, func() bool { return b.ClientCount() == 1 }, time.Second, 5*time.Millisecond)
	require.NoError(t, b.Publish(sse.Event{Type: "log", Data: map[string]string{"level": "WARN"}}))

	for lines.Scan() {
		if lines.Text() == "event: log" {
			break
		}
	}
	require.True(t, lines.Scan())
	assert.Equal(t, `data: {"level":"WARN"}`, lines.Text())
}

func TestHandler_RejectsWhenNotRunning(t *testing.T) {
	gin.SetMode(gin.TestMode)
	b := sse.NewBroker(sse.Config{}, nil)

	router := gin.New()
	router.GET("/events", sse.Handler(b, logger.NewNop(), nil))

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/events", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}
