package telemetry_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/Hosseinjeff/Wholesale-project/internal/domain"
	"github.com/Hosseinjeff/Wholesale-project/internal/quality"
	"github.com/Hosseinjeff/Wholesale-project/internal/telemetry"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newProvider(t *testing.T) *telemetry.Provider {
	t.Helper()
	return telemetry.NewProvider(prometheus.NewRegistry())
}

func TestNewProvider(t *testing.T) {
	provider := newProvider(t)

	require.NotNil(t, provider.Tracer)
	require.NotNil(t, provider.Metrics)
}

func TestRecordIngestAndProducts(t *testing.T) {
	provider := newProvider(t)
	ctx := context.Background()

	provider.RecordIngest(ctx, "success", 20*time.Millisecond)
	provider.RecordIngest(ctx, "success", 30*time.Millisecond)
	provider.RecordIngest(ctx, "duplicate", time.Millisecond)
	provider.RecordProducts(ctx, "insert", 3)
	provider.RecordProducts(ctx, "update", 0)
	provider.RecordReview(ctx, 2)

	assert.InDelta(t, 2, testutil.ToFloat64(provider.Metrics.MessagesIngested.WithLabelValues("success")), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(provider.Metrics.MessagesIngested.WithLabelValues("duplicate")), 0)
	assert.InDelta(t, 3, testutil.ToFloat64(provider.Metrics.ProductsWritten.WithLabelValues("insert")), 0)
	assert.InDelta(t, 2, testutil.ToFloat64(provider.Metrics.RecordsForReview), 0)
}

func TestRecordEvent(t *testing.T) {
	provider := newProvider(t)

	provider.RecordEvent(context.Background(), domain.LogEvent{Function: domain.FnNoProducts, Level: domain.LevelWarn})

	got := testutil.ToFloat64(provider.Metrics.Events.WithLabelValues(domain.FnNoProducts, "WARN"))
	assert.InDelta(t, 1, got, 0)
}

func TestSystemicAlertGauge(t *testing.T) {
	provider := newProvider(t)
	ctx := context.Background()

	provider.SystemicAlert(ctx, quality.Alert{Raised: true, Ratio: 0.1})
	assert.InDelta(t, 1, testutil.ToFloat64(provider.Metrics.SystemicAlert), 0)
	assert.InDelta(t, 0.1, testutil.ToFloat64(provider.Metrics.WindowRatio), 1e-9)
	assert.InDelta(t, 1, testutil.ToFloat64(provider.Metrics.AlertsRaised), 0)

	provider.SystemicAlert(ctx, quality.Alert{Raised: false, Ratio: 0.01})
	assert.InDelta(t, 0, testutil.ToFloat64(provider.Metrics.SystemicAlert), 0)

	provider.ObserveWindow(quality.Snapshot{Samples: 40, Ratio: 0.025})
	assert.InDelta(t, 40, testutil.ToFloat64(provider.Metrics.WindowSamples), 0)
}

func TestSetBreakerState(t *testing.T) {
	provider := newProvider(t)

	provider.SetBreakerState("open")
	assert.InDelta(t, 2, testutil.ToFloat64(provider.Metrics.BreakerState), 0)
	provider.SetBreakerState("closed")
	assert.InDelta(t, 0, testutil.ToFloat64(provider.Metrics.BreakerState), 0)
}

func TestHandlerExposesMetrics(t *testing.T) {
	provider := newProvider(t)
	provider.RecordBusy(context.Background())

	rec := httptest.NewRecorder()
	provider.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, strings.Contains(rec.Body.String(), "wholesale_ingest_busy_total 1"))
}

func TestStartSpan(t *testing.T) {
	provider := newProvider(t)

	ctx, span := provider.StartSpan(context.Background(), "ingest")
	defer span.End()
	assert.NotNil(t, ctx)
}
