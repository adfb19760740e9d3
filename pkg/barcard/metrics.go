package barcard

import (
	"expvar"
	"sync/atomic"
	"time"
)

// Metrics collects engine counters and exposes them through expvar.
// Thread-safe for concurrent use.
//
// Example usage:
//
//	metrics := barcard.NewMetrics()
//	metrics.RegisterExpvar()
//	// import _ "expvar" serves them on /debug/vars
type Metrics struct {
	renders        atomic.Int64
	colorFallbacks atomic.Int64
	animated       atomic.Int64
	configReloads  atomic.Int64
	reloadFailures atomic.Int64
	errorsTotal    atomic.Int64
	eventsEmitted  atomic.Int64

	renderLatencyNs    atomic.Int64
	renderLatencyCount atomic.Int64

	bars     atomic.Int32
	watching atomic.Int32

	registered atomic.Bool
}

// NewMetrics creates a new Metrics instance.
func NewMetrics() *Metrics {
	return &Metrics{}
}

// RegisterExpvar publishes the metrics under barcard_* names. Safe to call
// multiple times; subsequent calls are no-ops.
func (m *Metrics) RegisterExpvar() {
	if m.registered.Swap(true) {
		return
	}

	expvar.Publish("barcard_renders_total", expvar.Func(func() any { return m.renders.Load() }))
	expvar.Publish("barcard_color_fallbacks_total", expvar.Func(func() any { return m.colorFallbacks.Load() }))
	expvar.Publish("barcard_animated_renders_total", expvar.Func(func() any { return m.animated.Load() }))
	expvar.Publish("barcard_config_reloads_total", expvar.Func(func() any { return m.configReloads.Load() }))
	expvar.Publish("barcard_config_reload_failures_total", expvar.Func(func() any { return m.reloadFailures.Load() }))
	expvar.Publish("barcard_errors_total", expvar.Func(func() any { return m.errorsTotal.Load() }))
	expvar.Publish("barcard_events_emitted_total", expvar.Func(func() any { return m.eventsEmitted.Load() }))

	expvar.Publish("barcard_bars", expvar.Func(func() any { return m.bars.Load() }))
	expvar.Publish("barcard_watching", expvar.Func(func() any { return m.watching.Load() }))

	expvar.Publish("barcard_render_latency_avg_ms", expvar.Func(func() any {
		count := m.renderLatencyCount.Load()
		if count == 0 {
			return float64(0)
		}
		return float64(m.renderLatencyNs.Load()) / float64(count) / 1e6
	}))
}

// Snapshot returns a point-in-time copy of all metrics.
func (m *Metrics) Snapshot() MetricsSnapshot {
	return MetricsSnapshot{
		Renders:        m.renders.Load(),
		ColorFallbacks: m.colorFallbacks.Load(),
		AnimatedRender: m.animated.Load(),
		ConfigReloads:  m.configReloads.Load(),
		ReloadFailures: m.reloadFailures.Load(),
		ErrorsTotal:    m.errorsTotal.Load(),
		EventsEmitted:  m.eventsEmitted.Load(),

		Bars:     int(m.bars.Load()),
		Watching: m.watching.Load() > 0,

		RenderLatencyAvg: safeDivide(m.renderLatencyNs.Load(), m.renderLatencyCount.Load()),
	}
}

// MetricsSnapshot is a point-in-time copy of all metrics.
type MetricsSnapshot struct {
	Renders        int64
	ColorFallbacks int64
	AnimatedRender int64
	ConfigReloads  int64
	ReloadFailures int64
	ErrorsTotal    int64
	EventsEmitted  int64

	Bars     int
	Watching bool

	RenderLatencyAvg time.Duration
}

// IncrementRenders records one rendered bar.
func (m *Metrics) IncrementRenders() {
	m.renders.Add(1)
}

// AddColorFallbacks records colors that rendered as neutral gray.
func (m *Metrics) AddColorFallbacks(n int) {
	if n > 0 {
		m.colorFallbacks.Add(int64(n))
	}
}

// IncrementAnimated records a render that resolved to an animation.
func (m *Metrics) IncrementAnimated() {
	m.animated.Add(1)
}

// IncrementConfigReloads records a successful configuration reload.
func (m *Metrics) IncrementConfigReloads() {
	m.configReloads.Add(1)
}

// IncrementReloadFailures records a reload that kept the old configuration.
func (m *Metrics) IncrementReloadFailures() {
	m.reloadFailures.Add(1)
}

// IncrementErrors records an error occurrence.
func (m *Metrics) IncrementErrors() {
	m.errorsTotal.Add(1)
}

// IncrementEventsEmitted records an event emission.
func (m *Metrics) IncrementEventsEmitted() {
	m.eventsEmitted.Add(1)
}

// SetBars updates the configured bar count gauge.
func (m *Metrics) SetBars(n int) {
	m.bars.Store(int32(n))
}

// SetWatching updates the config watcher gauge.
func (m *Metrics) SetWatching(watching bool) {
	if watching {
		m.watching.Store(1)
	} else {
		m.watching.Store(0)
	}
}

// RecordRenderLatency records the duration of a render operation.
func (m *Metrics) RecordRenderLatency(d time.Duration) {
	m.renderLatencyNs.Add(d.Nanoseconds())
	m.renderLatencyCount.Add(1)
}

// Reset clears all metrics. Useful for testing.
func (m *Metrics) Reset() {
	m.renders.Store(0)
	m.colorFallbacks.Store(0)
	m.animated.Store(0)
	m.configReloads.Store(0)
	m.reloadFailures.Store(0)
	m.errorsTotal.Store(0)
	m.eventsEmitted.Store(0)
	m.renderLatencyNs.Store(0)
	m.renderLatencyCount.Store(0)
	m.bars.Store(0)
	m.watching.Store(0)
}

// safeDivide performs safe division, returning 0 for divide by zero.
func safeDivide(total, count int64) time.Duration {
	if count == 0 {
		return 0
	}
	return time.Duration(total / count)
}

var defaultMetrics = NewMetrics()

// DefaultMetrics returns the global default Metrics instance.
func DefaultMetrics() *Metrics {
	return defaultMetrics
}
