package quality_test

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Hosseinjeff/Wholesale-project/internal/domain"
	"github.com/Hosseinjeff/Wholesale-project/internal/quality"
)

type alertRecorder struct {
	mu     sync.Mutex
	alerts []quality.Alert
}

func (r *alertRecorder) SystemicAlert(_ context.Context, a quality.Alert) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.alerts = append(r.alerts, a)
}

func (r *alertRecorder) all() []quality.Alert {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]quality.Alert(nil), r.alerts...)
}

func TestMonitor_EdgeTriggered(t *testing.T) {
	sink := &alertRecorder{}
	m := quality.NewMonitor(quality.WindowConfig{Size: 20, Threshold: 0.1, MinSamples: 10}, sink)
	ctx := context.Background()

	for range 10 {
		m.Record(ctx, domain.LevelInfo)
	}
	require.Empty(t, sink.all())

	// 2 of 12 = 16.7% crosses the 10% threshold once.
	m.Record(ctx, domain.LevelWarn)
	m.Record(ctx, domain.LevelError)
	m.Record(ctx, domain.LevelError)

	alerts := sink.all()
	require.Len(t, alerts, 1)
	assert.True(t, alerts[0].Raised)
	assert.Equal(t, 2, alerts[0].Degraded)
	assert.True(t, m.Snapshot().Alerting)

	// Healthy outcomes push the degraded entries out of the window.
	for range 20 {
		m.Record(ctx, domain.LevelInfo)
	}
	alerts = sink.all()
	require.Len(t, alerts, 2)
	assert.False(t, alerts[1].Raised)

	snap := m.Snapshot()
	assert.Equal(t, 20, snap.Samples)
	assert.Zero(t, snap.Degraded)
	assert.False(t, snap.Alerting)
}

func TestMonitor_MinSamplesSuppressesEarlyAlerts(t *testing.T) {
	sink := &alertRecorder{}
	m := quality.NewMonitor(quality.WindowConfig{Size: 200, Threshold: 0.05, MinSamples: 20}, sink)

	for range 5 {
		m.Record(context.Background(), domain.LevelError)
	}
	assert.Empty(t, sink.all())
	assert.InDelta(t, 1.0, m.Snapshot().Ratio, 1e-9)
}

func TestMonitor_Defaults(t *testing.T) {
	snap := quality.NewMonitor(quality.WindowConfig{}, nil).Snapshot()
	assert.Equal(t, 200, snap.Size)
	assert.InDelta(t, 0.05, snap.Threshold, 1e-9)
}

func TestMonitor_ConcurrentRecord(t *testing.T) {
	m := quality.NewMonitor(quality.WindowConfig{Size: 50}, quality.AlertSinkFunc(func(context.Context, quality.Alert) {}))

	var wg sync.WaitGroup
	for i := range 8 {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			for j := range 100 {
				level := domain.LevelInfo
				if (i+j)%10 == 0 {
					level = domain.LevelWarn
				}
				m.Record(context.Background(), level)
			}
		}(i)
	}
	wg.Wait()

	snap := m.Snapshot()
	assert.Equal(t, 50, snap.Samples)
	assert.LessOrEqual(t, snap.Degraded, 50)
}
