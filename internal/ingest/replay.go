package ingest

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/Hosseinjeff/Wholesale-project/infrastructure/logger"
	"github.com/Hosseinjeff/Wholesale-project/internal/database"
	"github.com/Hosseinjeff/Wholesale-project/internal/domain"
)

const reprocessMarker = "_REPROCESS_"

// ReplayOptions selects stored messages to run through the pipeline again.
type ReplayOptions struct {
	Channel string `json:"channel"`
	Limit   int    `json:"limit"`
	// Resume clears the pause switch before replaying.
	Resume bool `json:"resume"`
}

// ReplayReport summarises a replay run.
type ReplayReport struct {
	Total     int      `json:"total"`
	Unique    int      `json:"unique"`
	Processed int      `json:"processed"`
	Skipped   int      `json:"skipped"`
	Failed    int      `json:"failed"`
	Products  int      `json:"products"`
	Errors    []string `json:"errors,omitempty"`
}

// ReprocessID is the ID a replayed copy of id is stored under.
func ReprocessID(id string, at time.Time) string {
	return id + reprocessMarker + strconv.FormatInt(at.UnixMilli(), 10)
}

// Replay re-extracts stored messages as new copies, one distinct content at a
// time, pausing ReplayDelay between messages. It is refused while paused
// unless opts.Resume is set.
func (s *Service) Replay(ctx context.Context, opts ReplayOptions) (ReplayReport, error) {
	var report ReplayReport

	if opts.Resume {
		if err := s.Resume(ctx); err != nil {
			return report, err
		}
	}
	paused, err := s.flag.Paused(ctx)
	if err != nil {
		return report, err
	}
	if paused {
		return report, ErrPaused
	}

	msgs, err := s.store.ListMessages(ctx, database.MessageFilter{Channel: opts.Channel, Limit: opts.Limit})
	if err != nil {
		return report, fmt.Errorf("list messages: %w", err)
	}
	report.Total = len(msgs)

	unique := uniqueByContent(msgs)
	report.Unique = len(unique)
	report.Skipped = report.Total - report.Unique

	s.log.Info("Replaying messages",
		logger.Channel(opts.Channel),
		logger.Int("total", report.Total),
		logger.Int("unique", report.Unique),
	)

	for i, msg := range unique {
		if i > 0 && s.replayDelay > 0 {
			if err := sleep(ctx, s.replayDelay); err != nil {
				return report, err
			}
		}

		msg.ID = ReprocessID(msg.ID, s.now())
		msg.ImportedAt = s.now().UTC()
		msg.Status = ""

		out, procErr := s.locked(ctx, Outcome{MessageID: msg.ID}, func(ctx context.Context) (Outcome, error) {
			return s.process(ctx, msg, true)
		})
		if procErr != nil {
			report.Failed++
			report.Errors = append(report.Errors, procErr.Error())
			continue
		}
		report.Processed++
		report.Products += out.ProductsFound
	}

	summary := fmt.Sprintf("replayed %d of %d messages (%d duplicates skipped, %d failed)",
		report.Processed, report.Total, report.Skipped, report.Failed)
	s.log.Info("Replay finished",
		logger.Int("processed", report.Processed),
		logger.Int("failed", report.Failed),
		logger.Int("products", report.Products),
	)
	s.emit(ctx, domain.LogEvent{
		Function:      domain.FnReplay,
		Level:         domain.LevelInfo,
		Channel:       opts.Channel,
		Message:       summary,
		ProductsFound: report.Products,
	}, false)

	return report, nil
}

// uniqueByContent keeps the first message of each distinct trimmed text and
// drops empty ones.
func uniqueByContent(msgs []domain.RawMessage) []domain.RawMessage {
	seen := make(map[string]struct{}, len(msgs))
	out := make([]domain.RawMessage, 0, len(msgs))
	for _, m := range msgs {
		key := strings.TrimSpace(m.Text)
		if key == "" {
			continue
		}
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, m)
	}
	return out
}

func sleep(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
