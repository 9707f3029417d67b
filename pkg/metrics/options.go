package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Option configures a Manager when it is built. Collector names and buckets
// are fixed once registered; recording and the refresh interval can also be
// changed later through Configure.
type Option func(*Manager)

// WithNamespace replaces the "paybench" metric namespace.
func WithNamespace(namespace string) Option {
	return func(m *Manager) {
		if namespace != "" {
			m.namespace = namespace
		}
	}
}

// WithSubsystem replaces the "dashboard" metric subsystem.
func WithSubsystem(subsystem string) Option {
	return func(m *Manager) {
		if subsystem != "" {
			m.subsystem = subsystem
		}
	}
}

// WithLatencyBuckets sets the buckets shared by the raster, HTTP and error
// latency histograms, in milliseconds.
func WithLatencyBuckets(buckets []float64) Option {
	return func(m *Manager) {
		if len(buckets) > 0 {
			m.latencyBuckets = buckets
		}
	}
}

// WithRecording turns dashboard activity counters on or off. HTTP, error and
// runtime metrics are always recorded.
func WithRecording(enabled bool) Option {
	return func(m *Manager) { m.enabled.Store(enabled) }
}

// WithRefreshInterval sets how often the runtime gauges are refreshed.
// Non-positive intervals are ignored.
func WithRefreshInterval(interval time.Duration) Option {
	return func(m *Manager) {
		if interval > 0 {
			m.refreshInterval.Store(int64(interval))
		}
	}
}

// WithPrometheusRegistry registers collectors on registry instead of the
// default registerer.
func WithPrometheusRegistry(registry prometheus.Registerer) Option {
	return func(m *Manager) {
		if registry != nil {
			m.registry = registry
		}
	}
}

// Configure sets recording and the refresh interval of the process-wide
// manager. A non-positive interval keeps the current one.
func Configure(enabled bool, interval time.Duration) {
	WithRecording(enabled)(globalManager)
	WithRefreshInterval(interval)(globalManager)
}

// RefreshInterval is how often the process-wide runtime gauges are refreshed.
func RefreshInterval() time.Duration {
	return globalManager.RefreshInterval()
}
