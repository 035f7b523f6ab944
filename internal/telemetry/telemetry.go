// Package telemetry provides Prometheus metrics and OpenTelemetry tracing for
// the extractor service.
package telemetry

import (
	"context"
	"net/http"
	"time"

	"github.com/Hosseinjeff/Wholesale-project/internal/domain"
	"github.com/Hosseinjeff/Wholesale-project/internal/quality"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

const serviceName = "wholesale-extractor"

// Breaker state gauge values.
const (
	breakerClosed   = 0
	breakerHalfOpen = 1
	breakerOpen     = 2
)

// Metrics holds the service Prometheus metrics
type Metrics struct {
	// Ingestion
	MessagesIngested *prometheus.CounterVec
	IngestDuration   *prometheus.HistogramVec
	IngestRetries    prometheus.Counter
	IngestBusy       prometheus.Counter
	ProductsWritten  *prometheus.CounterVec
	RecordsForReview prometheus.Counter
	BreakerState     prometheus.Gauge

	// Operational log and the degradation window
	Events        *prometheus.CounterVec
	WindowRatio   prometheus.Gauge
	WindowSamples prometheus.Gauge
	SystemicAlert prometheus.Gauge
	AlertsRaised  prometheus.Counter
}

// Provider wraps telemetry providers
type Provider struct {
	Tracer     trace.Tracer
	Metrics    *Metrics
	registerer prometheus.Registerer
	gatherer   prometheus.Gatherer
}

// NewProvider registers the metrics on reg.
func NewProvider(reg *prometheus.Registry) *Provider {
	return &Provider{
		Tracer:     otel.Tracer(serviceName),
		Metrics:    initMetrics(promauto.With(reg)),
		registerer: reg,
		gatherer:   reg,
	}
}

// NewDefaultProvider registers on the global Prometheus registry.
func NewDefaultProvider() *Provider {
	return &Provider{
		Tracer:     otel.Tracer(serviceName),
		Metrics:    initMetrics(promauto.With(prometheus.DefaultRegisterer)),
		registerer: prometheus.DefaultRegisterer,
		gatherer:   prometheus.DefaultGatherer,
	}
}

// Registerer is where further collectors, such as HTTP metrics, belong.
func (p *Provider) Registerer() prometheus.Registerer {
	return p.registerer
}

// Handler returns the Prometheus HTTP handler for /metrics endpoint
func (p *Provider) Handler() http.Handler {
	return promhttp.HandlerFor(p.gatherer, promhttp.HandlerOpts{})
}

func initMetrics(f promauto.Factory) *Metrics {
	m := &Metrics{}
	initIngestMetrics(f, m)
	initWindowMetrics(f, m)
	return m
}

func initIngestMetrics(f promauto.Factory, m *Metrics) {
	m.MessagesIngested = f.NewCounterVec(prometheus.CounterOpts{
		Name: "wholesale_messages_ingested_total",
		Help: "Messages handled by the ingestion boundary, by outcome",
	}, []string{"status"})

	m.IngestDuration = f.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "wholesale_ingest_duration_seconds",
		Help:    "Time to extract and store one message",
		Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
	}, []string{"status"})

	m.IngestRetries = f.NewCounter(prometheus.CounterOpts{
		Name: "wholesale_ingest_retries_total",
		Help: "Store attempts retried after a transient failure",
	})

	m.IngestBusy = f.NewCounter(prometheus.CounterOpts{
		Name: "wholesale_ingest_busy_total",
		Help: "Requests refused because the ingestion lock was held",
	})

	m.ProductsWritten = f.NewCounterVec(prometheus.CounterOpts{
		Name: "wholesale_products_written_total",
		Help: "Product rows written, by insert or update",
	}, []string{"action"})

	m.RecordsForReview = f.NewCounter(prometheus.CounterOpts{
		Name: "wholesale_records_needs_review_total",
		Help: "Product records flagged for manual review",
	})

	m.BreakerState = f.NewGauge(prometheus.GaugeOpts{
		Name: "wholesale_store_breaker_state",
		Help: "Store circuit breaker state (0 closed, 1 half-open, 2 open)",
	})
}

func initWindowMetrics(f promauto.Factory, m *Metrics) {
	m.Events = f.NewCounterVec(prometheus.CounterOpts{
		Name: "wholesale_oplog_events_total",
		Help: "Operational log rows, by function and level",
	}, []string{"function", "level"})

	m.WindowRatio = f.NewGauge(prometheus.GaugeOpts{
		Name: "wholesale_error_window_ratio",
		Help: "Share of WARN and ERROR outcomes in the recent window",
	})

	m.WindowSamples = f.NewGauge(prometheus.GaugeOpts{
		Name: "wholesale_error_window_samples",
		Help: "Outcomes currently held in the window",
	})

	m.SystemicAlert = f.NewGauge(prometheus.GaugeOpts{
		Name: "wholesale_systemic_alert",
		Help: "1 while the degradation alert is raised",
	})

	m.AlertsRaised = f.NewCounter(prometheus.CounterOpts{
		Name: "wholesale_systemic_alerts_raised_total",
		Help: "Times the degradation alert was raised",
	})
}

// RecordIngest records one handled message
func (p *Provider) RecordIngest(_ context.Context, status string, duration time.Duration) {
	p.Metrics.MessagesIngested.WithLabelValues(status).Inc()
	p.Metrics.IngestDuration.WithLabelValues(status).Observe(duration.Seconds())
}

// RecordProducts counts written rows for one action.
func (p *Provider) RecordProducts(_ context.Context, action string, n int) {
	if n > 0 {
		p.Metrics.ProductsWritten.WithLabelValues(action).Add(float64(n))
	}
}

// RecordReview counts flagged records.
func (p *Provider) RecordReview(_ context.Context, n int) {
	if n > 0 {
		p.Metrics.RecordsForReview.Add(float64(n))
	}
}

// RecordEvent counts one operational log row.
func (p *Provider) RecordEvent(_ context.Context, ev domain.LogEvent) {
	p.Metrics.Events.WithLabelValues(ev.Function, string(ev.Level)).Inc()
}

// RecordRetry counts one retried store attempt.
func (p *Provider) RecordRetry(context.Context) {
	p.Metrics.IngestRetries.Inc()
}

// RecordBusy counts one request refused on the lock.
func (p *Provider) RecordBusy(context.Context) {
	p.Metrics.IngestBusy.Inc()
}

// SetBreakerState publishes the breaker state by name.
func (p *Provider) SetBreakerState(state string) {
	switch state {
	case "open":
		p.Metrics.BreakerState.Set(breakerOpen)
	case "half-open":
		p.Metrics.BreakerState.Set(breakerHalfOpen)
	default:
		p.Metrics.BreakerState.Set(breakerClosed)
	}
}

// ObserveWindow publishes the degradation window.
func (p *Provider) ObserveWindow(s quality.Snapshot) {
	p.Metrics.WindowRatio.Set(s.Ratio)
	p.Metrics.WindowSamples.Set(float64(s.Samples))
	if s.Alerting {
		p.Metrics.SystemicAlert.Set(1)
	} else {
		p.Metrics.SystemicAlert.Set(0)
	}
}

// SystemicAlert implements quality.AlertSink.
func (p *Provider) SystemicAlert(_ context.Context, alert quality.Alert) {
	p.Metrics.WindowRatio.Set(alert.Ratio)
	if alert.Raised {
		p.Metrics.SystemicAlert.Set(1)
		p.Metrics.AlertsRaised.Inc()
		return
	}
	p.Metrics.SystemicAlert.Set(0)
}

// StartSpan starts a new trace span.
// The caller is responsible for ending the span with span.End().
//
//nolint:spancheck // Caller is responsible for ending the span
func (p *Provider) StartSpan(ctx context.Context, name string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	return p.Tracer.Start(ctx, name, trace.WithAttributes(attrs...))
}
