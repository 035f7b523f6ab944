// Package feed publishes operational events to live stream subscribers.
package feed

import (
	"context"
	"errors"
	"strconv"
	"strings"

	"github.com/Hosseinjeff/Wholesale-project/infrastructure/logger"
	"github.com/Hosseinjeff/Wholesale-project/infrastructure/sse"
	"github.com/Hosseinjeff/Wholesale-project/internal/domain"
	"github.com/gin-gonic/gin"
)

// Stream event types.
const (
	TypeLog   = "log"
	TypeAlert = "alert"
)

// Publisher accepts stream events without blocking.
type Publisher interface {
	Publish(event sse.Event) error
}

// Feed turns operational log events into stream events.
type Feed struct {
	pub Publisher
	log logger.Logger
}

// New creates a feed over pub.
func New(pub Publisher, log logger.Logger) *Feed {
	if log == nil {
		log = logger.NewNop()
	}
	return &Feed{pub: pub, log: log.With(logger.Component("feed"))}
}

// ObserveEvent publishes ev. Systemic alerts use their own event type.
func (f *Feed) ObserveEvent(_ context.Context, ev domain.LogEvent) {
	event := sse.Event{Type: TypeLog, Data: ev}
	if ev.Function == domain.FnSystemicAlert {
		event.Type = TypeAlert
	}
	if ev.ID > 0 {
		event.ID = strconv.FormatInt(ev.ID, 10)
	}

	if err := f.pub.Publish(event); err != nil && !errors.Is(err, sse.ErrNotRunning) {
		f.log.Debug("Dropped stream event",
			logger.String("function", ev.Function),
			logger.Error(err),
		)
	}
}

var levelRank = map[domain.LogLevel]int{
	domain.LevelInfo:  0,
	domain.LevelWarn:  1,
	domain.LevelError: 2,
}

// Filter narrows a subscription by query parameters: level is the minimum
// level, channel and function match exactly. Alerts always pass.
func Filter(c *gin.Context) sse.EventFilter {
	minLevel := domain.LogLevel(strings.ToUpper(c.Query("level")))
	channel := strings.TrimPrefix(c.Query("channel"), "@")
	function := c.Query("function")
	if _, ok := levelRank[minLevel]; !ok && channel == "" && function == "" {
		return nil
	}

	return func(event sse.Event) bool {
		if event.Type == TypeAlert {
			return true
		}
		ev, ok := event.Data.(domain.LogEvent)
		if !ok {
			return true
		}
		if rank, known := levelRank[minLevel]; known && levelRank[ev.Level] < rank {
			return false
		}
		if channel != "" && strings.TrimPrefix(ev.Channel, "@") != channel {
			return false
		}
		return function == "" || ev.Function == function
	}
}
