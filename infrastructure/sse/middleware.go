package sse

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/Hosseinjeff/Wholesale-project/infrastructure/logger"
	"github.com/gin-gonic/gin"
)

const eventTypeConnected = "connected"

// Handler streams broker events to the client. filterFor derives the
// client's filter from the request and may be nil.
func Handler(b *Broker, log logger.Logger, filterFor func(c *gin.Context) EventFilter) gin.HandlerFunc {
	return func(c *gin.Context) {
		var filter EventFilter
		if filterFor != nil {
			filter = filterFor(c)
		}

		events, cancel, err := b.Subscribe(c.Request.Context(), filter)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusServiceUnavailable, gin.H{"status": "error", "error": err.Error()})
			return
		}
		defer cancel()

		setHeaders(c.Writer)
		c.Status(http.StatusOK)
		if err = writeEvent(c.Writer, Event{Type: eventTypeConnected, Data: gin.H{"time": time.Now().UTC()}}); err != nil {
			return
		}
		c.Writer.Flush()

		heartbeat := time.NewTicker(b.Config().HeartbeatInterval)
		defer heartbeat.Stop()

		for {
			select {
			case event, ok := <-events:
				if !ok {
					return
				}
				if err = writeEvent(c.Writer, event); err != nil {
					log.Debug("SSE write failed", logger.Error(err))
					return
				}
			case <-heartbeat.C:
				if _, err = io.WriteString(c.Writer, ": heartbeat\n\n"); err != nil {
					return
				}
			case <-c.Request.Context().Done():
				return
			}
			c.Writer.Flush()
		}
	}
}

func setHeaders(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no")
}

// writeEvent encodes event in the text/event-stream format.
func writeEvent(w io.Writer, event Event) error {
	data, err := json.Marshal(event.Data)
	if err != nil {
		return fmt.Errorf("marshal sse event %s: %w", event.Type, err)
	}
	if event.ID != "" {
		if _, err = fmt.Fprintf(w, "id: %s\n", event.ID); err != nil {
			return err
		}
	}
	_, err = fmt.Fprintf(w, "event: %s\ndata: %s\n\n", event.Type, data)
	return err
}
