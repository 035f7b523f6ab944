// Package scheduler runs the periodic maintenance jobs: the degradation window
// report and operational log retention.
package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/Hosseinjeff/Wholesale-project/infrastructure/logger"
	"github.com/Hosseinjeff/Wholesale-project/internal/quality"
	"github.com/robfig/cron/v3"
)

const jobTimeout = time.Minute

// WindowSource exposes the degradation window.
type WindowSource interface {
	Snapshot() quality.Snapshot
}

// WindowObserver publishes window snapshots, typically as metrics.
type WindowObserver interface {
	ObserveWindow(s quality.Snapshot)
}

// LogPruner deletes operational log rows older than cutoff.
type LogPruner interface {
	DeleteBefore(ctx context.Context, cutoff time.Time) (int64, error)
}

// Config holds the cron specs. Descriptors such as "@every 5m" are accepted.
type Config struct {
	WindowReportSpec string
	RetentionSpec    string
	LogRetention     time.Duration
}

// Scheduler owns the cron runner.
type Scheduler struct {
	cron      *cron.Cron
	cfg       Config
	window    WindowSource
	observer  WindowObserver
	pruner    LogPruner
	log       logger.Logger
	now       func() time.Time
	parentCtx context.Context
}

// New registers the jobs. observer may be nil.
func New(cfg Config, window WindowSource, observer WindowObserver, pruner LogPruner, log logger.Logger) (*Scheduler, error) {
	if log == nil {
		log = logger.NewNop()
	}
	log = log.With(logger.Component("scheduler"))

	parser := cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor)
	cronLog := cronLogger{log: log}

	s := &Scheduler{
		cron: cron.New(
			cron.WithParser(parser),
			cron.WithLogger(cronLog),
			cron.WithChain(cron.Recover(cronLog), cron.SkipIfStillRunning(cronLog)),
		),
		cfg:       cfg,
		window:    window,
		observer:  observer,
		pruner:    pruner,
		log:       log,
		now:       time.Now,
		parentCtx: context.Background(),
	}

	if cfg.WindowReportSpec != "" && window != nil {
		if _, err := s.cron.AddFunc(cfg.WindowReportSpec, func() { s.ReportWindow() }); err != nil {
			return nil, fmt.Errorf("schedule window report %q: %w", cfg.WindowReportSpec, err)
		}
	}
	if cfg.RetentionSpec != "" && cfg.LogRetention > 0 && pruner != nil {
		if _, err := s.cron.AddFunc(cfg.RetentionSpec, s.runPrune); err != nil {
			return nil, fmt.Errorf("schedule log retention %q: %w", cfg.RetentionSpec, err)
		}
	}
	return s, nil
}

// Start runs the scheduler until ctx is done or Stop is called.
func (s *Scheduler) Start(ctx context.Context) {
	s.parentCtx = ctx
	s.cron.Start()
	s.log.Info("Scheduler started", logger.Int("jobs", len(s.cron.Entries())))
}

// Stop stops scheduling and waits for running jobs or ctx.
func (s *Scheduler) Stop(ctx context.Context) error {
	done := s.cron.Stop()
	select {
	case <-done.Done():
		s.log.Info("Scheduler stopped")
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// ReportWindow logs and publishes the current window.
func (s *Scheduler) ReportWindow() quality.Snapshot {
	snap := s.window.Snapshot()
	if s.observer != nil {
		s.observer.ObserveWindow(snap)
	}

	fields := []logger.Field{
		logger.Int("samples", snap.Samples),
		logger.Int("degraded", snap.Degraded),
		logger.Float64("ratio", snap.Ratio),
		logger.Float64("threshold", snap.Threshold),
	}
	if snap.Alerting {
		s.log.Warn("Extraction window degraded", fields...)
	} else {
		s.log.Info("Extraction window report", fields...)
	}
	return snap
}

// PruneLogs deletes operational log rows older than the retention period.
func (s *Scheduler) PruneLogs(ctx context.Context) (int64, error) {
	cutoff := s.now().UTC().Add(-s.cfg.LogRetention)
	n, err := s.pruner.DeleteBefore(ctx, cutoff)
	if err != nil {
		return 0, fmt.Errorf("prune logs before %s: %w", cutoff.Format(time.RFC3339), err)
	}
	s.log.Info("Pruned operational logs", logger.Int64("deleted", n), logger.Time("cutoff", cutoff))
	return n, nil
}

func (s *Scheduler) runPrune() {
	ctx, cancel := context.WithTimeout(s.parentCtx, jobTimeout)
	defer cancel()
	if _, err := s.PruneLogs(ctx); err != nil {
		s.log.Error("Log retention failed", logger.Error(err))
	}
}

// cronLogger adapts logger.Logger to cron.Logger.
type cronLogger struct {
	log logger.Logger
}

func (l cronLogger) Info(msg string, keysAndValues ...any) {
	l.log.Debug(msg, kvFields(keysAndValues)...)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...any) {
	l.log.Error(msg, append(kvFields(keysAndValues), logger.Error(err))...)
}

func kvFields(kv []any) []logger.Field {
	fields := make([]logger.Field, 0, len(kv)/2)
	for i := 0; i+1 < len(kv); i += 2 {
		key, ok := kv[i].(string)
		if !ok {
			key = fmt.Sprint(kv[i])
		}
		fields = append(fields, logger.Any(key, kv[i+1]))
	}
	return fields
}
