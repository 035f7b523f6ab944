package quality

import (
	"context"
	"sync"
	"time"

	"github.com/Hosseinjeff/Wholesale-project/internal/domain"
)

const (
	defaultWindowSize      = 200
	defaultAlertThreshold  = 0.05
	defaultMinWindowSample = 20
)

// WindowConfig sizes the systemic-degradation window.
type WindowConfig struct {
	Size       int     `env:"QUALITY_WINDOW_SIZE"        yaml:"size"`
	Threshold  float64 `env:"QUALITY_WINDOW_THRESHOLD"   yaml:"threshold"`
	MinSamples int     `env:"QUALITY_WINDOW_MIN_SAMPLES" yaml:"min_samples"`
}

// SetDefaults fills zero values.
func (c *WindowConfig) SetDefaults() {
	if c.Size <= 0 {
		c.Size = defaultWindowSize
	}
	if c.Threshold == 0 {
		c.Threshold = defaultAlertThreshold
	}
	if c.MinSamples <= 0 {
		c.MinSamples = defaultMinWindowSample
	}
	if c.MinSamples > c.Size {
		c.MinSamples = c.Size
	}
}

// Alert is raised when the degraded ratio crosses the threshold, and again
// with Raised unset when it recovers.
type Alert struct {
	Raised    bool      `json:"raised"`
	Ratio     float64   `json:"ratio"`
	Degraded  int       `json:"degraded"`
	Samples   int       `json:"samples"`
	Threshold float64   `json:"threshold"`
	At        time.Time `json:"at"`
}

// AlertSink receives edge-triggered alerts.
type AlertSink interface {
	SystemicAlert(ctx context.Context, alert Alert)
}

// AlertSinkFunc adapts a function to AlertSink.
type AlertSinkFunc func(ctx context.Context, alert Alert)

// SystemicAlert calls f.
func (f AlertSinkFunc) SystemicAlert(ctx context.Context, alert Alert) { f(ctx, alert) }

// Snapshot is the current window state.
type Snapshot struct {
	Size      int     `json:"size"`
	Samples   int     `json:"samples"`
	Degraded  int     `json:"degraded"`
	Ratio     float64 `json:"ratio"`
	Threshold float64 `json:"threshold"`
	Alerting  bool    `json:"alerting"`
}

// Monitor keeps a ring of the most recent outcomes and the count of warn or
// error outcomes among them. It is safe for concurrent use.
type Monitor struct {
	mu       sync.Mutex
	cfg      WindowConfig
	ring     []bool
	next     int
	samples  int
	degraded int
	alerting bool

	sink AlertSink
	now  func() time.Time
}

// NewMonitor creates a monitor. sink may be nil.
func NewMonitor(cfg WindowConfig, sink AlertSink) *Monitor {
	cfg.SetDefaults()
	return &Monitor{
		cfg:  cfg,
		ring: make([]bool, cfg.Size),
		sink: sink,
		now:  time.Now,
	}
}

// Record adds one outcome and notifies the sink on a threshold crossing.
func (m *Monitor) Record(ctx context.Context, level domain.LogLevel) {
	alert, fire := m.record(level.Degraded())
	if fire && m.sink != nil {
		m.sink.SystemicAlert(ctx, alert)
	}
}

func (m *Monitor) record(degraded bool) (Alert, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.samples == len(m.ring) {
		if m.ring[m.next] {
			m.degraded--
		}
	} else {
		m.samples++
	}
	m.ring[m.next] = degraded
	if degraded {
		m.degraded++
	}
	m.next = (m.next + 1) % len(m.ring)

	ratio := m.ratio()
	above := m.samples >= m.cfg.MinSamples && ratio > m.cfg.Threshold
	if above == m.alerting {
		return Alert{}, false
	}
	m.alerting = above
	return Alert{
		Raised:    above,
		Ratio:     ratio,
		Degraded:  m.degraded,
		Samples:   m.samples,
		Threshold: m.cfg.Threshold,
		At:        m.now(),
	}, true
}

func (m *Monitor) ratio() float64 {
	if m.samples == 0 {
		return 0
	}
	return float64(m.degraded) / float64(m.samples)
}

// Snapshot returns the window state.
func (m *Monitor) Snapshot() Snapshot {
	m.mu.Lock()
	defer m.mu.Unlock()
	return Snapshot{
		Size:      len(m.ring),
		Samples:   m.samples,
		Degraded:  m.degraded,
		Ratio:     m.ratio(),
		Threshold: m.cfg.Threshold,
		Alerting:  m.alerting,
	}
}
