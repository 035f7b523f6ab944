// Package ingest is the boundary between transports and the extraction
// pipeline. It validates payloads, honours the pause switch, serialises store
// access behind a lock, retries transient store failures and feeds the
// degradation monitor.
package ingest

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/Hosseinjeff/Wholesale-project/infrastructure/circuitbreaker"
	"github.com/Hosseinjeff/Wholesale-project/infrastructure/logger"
	"github.com/Hosseinjeff/Wholesale-project/infrastructure/retry"
	"github.com/Hosseinjeff/Wholesale-project/internal/database"
	"github.com/Hosseinjeff/Wholesale-project/internal/dedup"
	"github.com/Hosseinjeff/Wholesale-project/internal/domain"
	"github.com/Hosseinjeff/Wholesale-project/internal/lock"
	"github.com/Hosseinjeff/Wholesale-project/internal/pipeline"
	"github.com/Hosseinjeff/Wholesale-project/internal/quality"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// Outcome statuses.
const (
	StatusSuccess    = "success"
	StatusDuplicate  = "duplicate"
	StatusNoProducts = "no_products"
	StatusNonProduct = "non_product"
	StatusInvalid    = "invalid"
	StatusPaused     = "paused"
	StatusBusy       = "busy"
	StatusError      = "error"
)

// ErrPaused is returned while ingestion is switched off.
var ErrPaused = errors.New("ingestion paused")

// Store is what the service reads and writes.
type Store interface {
	dedup.Finder
	pipeline.PriceHistory
	GetMessage(ctx context.Context, id string) (*domain.RawMessage, error)
	ListMessages(ctx context.Context, filter database.MessageFilter) ([]domain.RawMessage, error)
	Apply(ctx context.Context, batch database.Batch) error
	InsertLog(ctx context.Context, ev *domain.LogEvent) error
}

// Extractor runs the pipeline on one message.
type Extractor interface {
	Extract(ctx context.Context, msg domain.RawMessage) (pipeline.Result, error)
}

// Recorder receives ingestion metrics.
type Recorder interface {
	RecordIngest(ctx context.Context, status string, duration time.Duration)
	RecordProducts(ctx context.Context, action string, n int)
	RecordReview(ctx context.Context, n int)
	RecordEvent(ctx context.Context, ev domain.LogEvent)
	RecordRetry(ctx context.Context)
	RecordBusy(ctx context.Context)
	SetBreakerState(state string)
	ObserveWindow(s quality.Snapshot)
}

// Config tunes the service.
type Config struct {
	Retry       retry.Config
	Breaker     circuitbreaker.Config
	Window      quality.WindowConfig
	ReplayDelay time.Duration
}

// Observer receives every operational event after it is written.
type Observer interface {
	ObserveEvent(ctx context.Context, ev domain.LogEvent)
}

// Deps are the collaborators. Recorder, AlertSinks and Observers are optional.
type Deps struct {
	Store      Store
	Extractor  Extractor
	Locker     lock.Locker
	Flag       PauseFlag
	Recorder   Recorder
	AlertSinks []quality.AlertSink
	Observers  []Observer
}

// Outcome describes what happened to one message.
type Outcome struct {
	Status         string                    `json:"status"`
	MessageID      string                    `json:"id"`
	Channel        string                    `json:"channel"`
	Classification domain.ClassificationType `json:"classification,omitempty"`
	Profile        string                    `json:"profile,omitempty"`
	ProductsFound  int                       `json:"products_found"`
	Inserted       int                       `json:"inserted"`
	Updated        int                       `json:"updated"`
	NeedsReview    int                       `json:"needs_review"`

	events []domain.LogEvent
}

// StatusReport is the operational view of the boundary.
type StatusReport struct {
	Paused  bool                 `json:"paused"`
	Window  quality.Snapshot     `json:"window"`
	Breaker circuitbreaker.Stats `json:"breaker"`
}

// Service is the ingestion boundary.
type Service struct {
	store       Store
	extractor   Extractor
	policy      *dedup.Policy
	locker      lock.Locker
	flag        PauseFlag
	breaker     *circuitbreaker.Breaker
	monitor     *quality.Monitor
	recorder    Recorder
	observers   []Observer
	retryCfg    retry.Config
	replayDelay time.Duration
	tracer      trace.Tracer
	log         logger.Logger
	now         func() time.Time
}

// NewService wires the boundary.
func NewService(deps Deps, cfg Config, log logger.Logger) *Service {
	if log == nil {
		log = logger.NewNop()
	}
	recorder := deps.Recorder
	if recorder == nil {
		recorder = nopRecorder{}
	}

	s := &Service{
		store:       deps.Store,
		extractor:   deps.Extractor,
		policy:      dedup.NewPolicy(deps.Store),
		locker:      deps.Locker,
		flag:        deps.Flag,
		recorder:    recorder,
		observers:   deps.Observers,
		replayDelay: cfg.ReplayDelay,
		tracer:      otel.Tracer("ingest"),
		log:         log.With(logger.Component("ingest")),
		now:         time.Now,
	}
	if s.flag == nil {
		s.flag = &MemoryFlag{}
	}

	s.retryCfg = cfg.Retry
	s.retryCfg.IsRetryable = retryable
	s.retryCfg.OnRetry = s.onRetry

	breakerCfg := cfg.Breaker
	if breakerCfg.Name == "" {
		breakerCfg.Name = "store"
	}
	breakerCfg.OnStateChange = s.onBreakerChange
	s.breaker = circuitbreaker.New(breakerCfg)

	sinks := append([]quality.AlertSink{quality.AlertSinkFunc(s.onAlert)}, deps.AlertSinks...)
	s.monitor = quality.NewMonitor(cfg.Window, fanOut(sinks))

	return s
}

// Monitor exposes the degradation window.
func (s *Service) Monitor() *quality.Monitor {
	return s.monitor
}

// Ingest validates p, then extracts and stores it under the ingestion lock.
func (s *Service) Ingest(ctx context.Context, p Payload) (Outcome, error) {
	start := s.now()
	ctx, span := s.tracer.Start(ctx, "ingest.message", trace.WithAttributes(
		attribute.String("message.id", p.ID),
		attribute.String("message.channel", p.ChannelUsername),
	))
	defer span.End()

	out, err := s.ingest(ctx, p)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, out.Status)
	}
	s.recorder.RecordIngest(ctx, out.Status, s.now().Sub(start))
	return out, err
}

func (s *Service) ingest(ctx context.Context, p Payload) (Outcome, error) {
	out := Outcome{MessageID: p.ID, Channel: firstNonEmpty(p.ChannelUsername, p.Channel)}

	if err := p.Validate(); err != nil {
		out.Status = StatusInvalid
		return out, err
	}

	paused, err := s.flag.Paused(ctx)
	if err != nil {
		out.Status = StatusError
		return out, err
	}
	if paused {
		out.Status = StatusPaused
		return out, ErrPaused
	}

	msg := p.Message(s.now().UTC())
	return s.locked(ctx, out, func(ctx context.Context) (Outcome, error) {
		return s.process(ctx, msg, false)
	})
}

func (s *Service) locked(ctx context.Context, out Outcome, fn func(ctx context.Context) (Outcome, error)) (Outcome, error) {
	lease, err := s.locker.Lock(ctx)
	if err != nil {
		if errors.Is(err, lock.ErrBusy) {
			s.recorder.RecordBusy(ctx)
			s.log.Warn("Ingestion lock busy", logger.MessageID(out.MessageID))
			out.Status = StatusBusy
			return out, err
		}
		out.Status = StatusError
		return out, fmt.Errorf("acquire ingestion lock: %w", err)
	}
	defer func() {
		if unlockErr := lease.Unlock(context.WithoutCancel(ctx)); unlockErr != nil {
			s.log.Warn("Failed to release ingestion lock", logger.Error(unlockErr))
		}
	}()

	return fn(ctx)
}

// process runs with the lock held.
func (s *Service) process(ctx context.Context, msg domain.RawMessage, replay bool) (Outcome, error) {
	var out Outcome
	err := retry.Do(ctx, s.retryCfg, func(ctx context.Context) error {
		var attemptErr error
		out, attemptErr = s.attempt(ctx, msg, replay)
		return attemptErr
	})
	if err != nil {
		s.log.Error("Failed to ingest message",
			logger.MessageID(msg.ID),
			logger.Channel(msg.ChannelIdentifier()),
			logger.Error(err),
		)
		fn := domain.FnIngest
		if replay {
			fn = domain.FnReplay
		}
		s.emit(ctx, domain.LogEvent{
			Function:      fn,
			Level:         domain.LevelError,
			MessageID:     msg.ID,
			Channel:       msg.ChannelIdentifier(),
			ContentLength: len([]rune(msg.Text)),
			Message:       "ingestion failed",
			Details:       err.Error(),
		}, true)
		return Outcome{Status: StatusError, MessageID: msg.ID, Channel: msg.ChannelIdentifier()},
			fmt.Errorf("ingest message %s: %w", msg.ID, err)
	}

	for _, ev := range out.events {
		s.observe(ctx, ev)
	}
	return out, nil
}

func (s *Service) attempt(ctx context.Context, msg domain.RawMessage, replay bool) (Outcome, error) {
	out := Outcome{MessageID: msg.ID, Channel: msg.ChannelIdentifier()}

	replace := false
	existing, err := s.store.GetMessage(ctx, msg.ID)
	switch {
	case err == nil:
		if existing.Text == msg.Text {
			out.Status = StatusDuplicate
			return out, nil
		}
		replace = true
	case errors.Is(err, database.ErrNotFound):
	default:
		return out, err
	}

	res, err := s.extractor.Extract(ctx, msg)
	if err != nil {
		return out, err
	}

	decisions, err := s.resolve(ctx, res.Records)
	if err != nil {
		return out, err
	}

	msg.Status = messageStatus(res, replay)
	batch := database.Batch{
		Message:        msg,
		ReplaceMessage: replace,
		Products:       decisions,
		Logs:           res.Events,
	}
	if err := s.breaker.Execute(ctx, func(ctx context.Context) error {
		return s.store.Apply(ctx, batch)
	}); err != nil {
		return out, err
	}

	out.Classification = res.Classification.Type
	out.Profile = res.Profile
	out.ProductsFound = len(res.Records)
	out.events = res.Events
	for _, d := range decisions {
		if d.Action == dedup.ActionInsert {
			out.Inserted++
		} else {
			out.Updated++
		}
		if d.Target.Status == domain.StatusNeedsReview {
			out.NeedsReview++
		}
	}

	switch {
	case out.ProductsFound > 0:
		out.Status = StatusSuccess
	case !res.Classification.ProductBearing():
		out.Status = StatusNonProduct
	default:
		out.Status = StatusNoProducts
	}

	s.recorder.RecordProducts(ctx, string(dedup.ActionInsert), out.Inserted)
	s.recorder.RecordProducts(ctx, string(dedup.ActionUpdate), out.Updated)
	s.recorder.RecordReview(ctx, out.NeedsReview)
	return out, nil
}

// resolve turns records into store decisions. Records repeating a name
// within the message fold into the first one.
func (s *Service) resolve(ctx context.Context, recs []domain.ProductRecord) ([]dedup.Decision, error) {
	decisions := make([]dedup.Decision, 0, len(recs))
	byKey := make(map[string]int, len(recs))
	ids := make(map[string]struct{}, len(recs))

	for _, rec := range recs {
		key := strings.ToLower(rec.Name) + "\x00" + rec.Channel
		if i, ok := byKey[key]; ok {
			merged := dedup.Merge(decisions[i].Target, rec, s.now().UTC())
			if decisions[i].Action == dedup.ActionInsert {
				merged.Status = rec.Status
			}
			decisions[i].Target = merged
			continue
		}

		d, err := s.policy.Resolve(ctx, rec)
		if err != nil {
			return nil, err
		}
		if d.Action == dedup.ActionInsert {
			d.Target.ID = uniqueID(d.Target.ID, ids)
		}
		ids[d.Target.ID] = struct{}{}
		byKey[key] = len(decisions)
		decisions = append(decisions, d)
	}
	return decisions, nil
}

func uniqueID(id string, used map[string]struct{}) string {
	if _, taken := used[id]; !taken {
		return id
	}
	for n := 2; ; n++ {
		candidate := id + "_" + strconv.Itoa(n)
		if _, taken := used[candidate]; !taken {
			return candidate
		}
	}
}

func messageStatus(res pipeline.Result, replay bool) string {
	switch {
	case replay:
		return domain.MessageStatusReprocessed
	case len(res.Records) > 0:
		return domain.MessageStatusImported
	case !res.Classification.ProductBearing():
		return domain.MessageStatusNonProduct
	default:
		return domain.MessageStatusNoProducts
	}
}

// Pause switches ingestion off.
func (s *Service) Pause(ctx context.Context) error {
	return s.setPaused(ctx, true)
}

// Resume switches ingestion back on.
func (s *Service) Resume(ctx context.Context) error {
	return s.setPaused(ctx, false)
}

func (s *Service) setPaused(ctx context.Context, paused bool) error {
	if err := s.flag.SetPaused(ctx, paused); err != nil {
		return err
	}
	msg := "ingestion resumed"
	if paused {
		msg = "ingestion paused"
	}
	s.log.Info(msg)
	s.emit(ctx, domain.LogEvent{Function: domain.FnIngest, Level: domain.LevelInfo, Message: msg}, false)
	return nil
}

// Status reports the switch, the window and the breaker.
func (s *Service) Status(ctx context.Context) (StatusReport, error) {
	paused, err := s.flag.Paused(ctx)
	if err != nil {
		return StatusReport{}, err
	}
	return StatusReport{
		Paused:  paused,
		Window:  s.monitor.Snapshot(),
		Breaker: s.breaker.GetStats(),
	}, nil
}

// observe feeds one already-stored event to the monitor and metrics.
func (s *Service) observe(ctx context.Context, ev domain.LogEvent) {
	s.record(ctx, ev)
	s.monitor.Record(ctx, ev.Level)
	s.recorder.ObserveWindow(s.monitor.Snapshot())
}

// emit writes ev outside any batch. Write failures are logged and dropped.
func (s *Service) emit(ctx context.Context, ev domain.LogEvent, observe bool) {
	if err := s.store.InsertLog(context.WithoutCancel(ctx), &ev); err != nil {
		s.log.Warn("Failed to write operational log",
			logger.String("function", ev.Function),
			logger.Error(err),
		)
	}
	if observe {
		s.observe(ctx, ev)
		return
	}
	s.record(ctx, ev)
}

func (s *Service) record(ctx context.Context, ev domain.LogEvent) {
	s.recorder.RecordEvent(ctx, ev)
	for _, o := range s.observers {
		o.ObserveEvent(ctx, ev)
	}
}

func (s *Service) onAlert(ctx context.Context, alert quality.Alert) {
	details := fmt.Sprintf("degraded=%d samples=%d threshold=%.2f", alert.Degraded, alert.Samples, alert.Threshold)
	ev := domain.LogEvent{Function: domain.FnSystemicAlert, Details: details}

	if alert.Raised {
		ev.Level = domain.LevelError
		ev.Message = fmt.Sprintf("systemic degradation: %.1f%% of recent outcomes are WARN or ERROR", alert.Ratio*100)
		s.log.Error("Systemic extraction degradation",
			logger.Float64("ratio", alert.Ratio),
			logger.Int("degraded", alert.Degraded),
			logger.Int("samples", alert.Samples),
		)
	} else {
		ev.Level = domain.LevelInfo
		ev.Message = "systemic degradation cleared"
		s.log.Info("Systemic extraction degradation cleared", logger.Float64("ratio", alert.Ratio))
	}
	s.emit(ctx, ev, false)
}

func (s *Service) onRetry(attempt int, delay time.Duration, err error) {
	s.recorder.RecordRetry(context.Background())
	s.log.Warn("Retrying store operation",
		logger.Int("attempt", attempt),
		logger.Duration("delay", delay),
		logger.Error(err),
	)
}

func (s *Service) onBreakerChange(name string, from, to circuitbreaker.State) {
	s.recorder.SetBreakerState(string(to))
	s.log.Warn("Circuit breaker state changed",
		logger.String("breaker", name),
		logger.String("from", string(from)),
		logger.String("to", string(to)),
	)
}

func retryable(err error) bool {
	return !errors.Is(err, circuitbreaker.ErrCircuitOpen) &&
		!errors.Is(err, context.Canceled) &&
		!errors.Is(err, context.DeadlineExceeded)
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			return v
		}
	}
	return ""
}

type alertFanOut []quality.AlertSink

func fanOut(sinks []quality.AlertSink) quality.AlertSink {
	return alertFanOut(sinks)
}

func (f alertFanOut) SystemicAlert(ctx context.Context, alert quality.Alert) {
	for _, sink := range f {
		sink.SystemicAlert(ctx, alert)
	}
}

type nopRecorder struct{}

func (nopRecorder) RecordIngest(context.Context, string, time.Duration) {}
func (nopRecorder) RecordProducts(context.Context, string, int)         {}
func (nopRecorder) RecordReview(context.Context, int)                   {}
func (nopRecorder) RecordEvent(context.Context, domain.LogEvent)        {}
func (nopRecorder) RecordRetry(context.Context)                         {}
func (nopRecorder) RecordBusy(context.Context)                          {}
func (nopRecorder) SetBreakerState(string)                              {}
func (nopRecorder) ObserveWindow(quality.Snapshot)                      {}
