// Package metrics exposes Prometheus collectors for the render pipeline:
// server renders, live-session lifecycle, patch delivery, event dispatch
// and hydration mismatches.
package metrics

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Config configures the metrics collectors.
type Config struct {
	// Namespace is the metrics namespace (default: "glint").
	Namespace string

	// Subsystem is the metrics subsystem (default: "").
	Subsystem string

	// ConstLabels are constant labels added to all metrics.
	ConstLabels prometheus.Labels

	// Buckets are the histogram buckets for render and event durations.
	// Default: prometheus.DefBuckets.
	Buckets []float64

	// Registry is the Prometheus registry to use.
	// Default: prometheus.DefaultRegisterer.
	Registry prometheus.Registerer
}

// Option configures the collectors.
type Option func(*Config)

// WithNamespace sets the metrics namespace.
func WithNamespace(namespace string) Option {
	return func(c *Config) { c.Namespace = namespace }
}

// WithSubsystem sets the metrics subsystem.
func WithSubsystem(subsystem string) Option {
	return func(c *Config) { c.Subsystem = subsystem }
}

// WithConstLabels sets constant labels for all metrics.
func WithConstLabels(labels prometheus.Labels) Option {
	return func(c *Config) { c.ConstLabels = labels }
}

// WithBuckets sets the histogram buckets.
func WithBuckets(buckets []float64) Option {
	return func(c *Config) { c.Buckets = buckets }
}

// WithRegistry sets the Prometheus registry.
func WithRegistry(registry prometheus.Registerer) Option {
	return func(c *Config) { c.Registry = registry }
}

func defaultConfig() Config {
	return Config{
		Namespace: "glint",
		Buckets:   prometheus.DefBuckets,
		Registry:  prometheus.DefaultRegisterer,
	}
}

// Collector holds the Prometheus metrics for one server.
type Collector struct {
	rendersTotal       *prometheus.CounterVec
	renderDuration     *prometheus.HistogramVec
	eventsTotal        *prometheus.CounterVec
	eventDuration      *prometheus.HistogramVec
	patchesSent        prometheus.Counter
	activeSessions     prometheus.Gauge
	hydrationMismatch  *prometheus.CounterVec
	flushOverflowTotal prometheus.Counter
}

var (
	globalCollector *Collector
	globalMu        sync.Mutex
)

// New creates a Collector registered against the configured registry.
func New(opts ...Option) *Collector {
	config := defaultConfig()
	for _, opt := range opts {
		opt(&config)
	}
	factory := promauto.With(config.Registry)

	return &Collector{
		rendersTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "renders_total",
			Help:        "Total number of server-side page renders",
			ConstLabels: config.ConstLabels,
		}, []string{"path", "status"}),

		renderDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "render_duration_seconds",
			Help:        "Server-side render duration in seconds",
			ConstLabels: config.ConstLabels,
			Buckets:     config.Buckets,
		}, []string{"path"}),

		eventsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "events_total",
			Help:        "Total number of client events dispatched",
			ConstLabels: config.ConstLabels,
		}, []string{"event", "status"}),

		eventDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "event_duration_seconds",
			Help:        "Event dispatch and flush duration in seconds",
			ConstLabels: config.ConstLabels,
			Buckets:     config.Buckets,
		}, []string{"event"}),

		patchesSent: factory.NewCounter(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "patches_sent_total",
			Help:        "Total number of patches sent to live clients",
			ConstLabels: config.ConstLabels,
		}),

		activeSessions: factory.NewGauge(prometheus.GaugeOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "active_sessions",
			Help:        "Number of active live-update sessions",
			ConstLabels: config.ConstLabels,
		}),

		hydrationMismatch: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "hydration_mismatches_total",
			Help:        "Total number of hydration mismatches detected",
			ConstLabels: config.ConstLabels,
		}, []string{"class"}),

		flushOverflowTotal: factory.NewCounter(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "flush_overflows_total",
			Help:        "Total number of reactive flushes that exceeded the pass budget",
			ConstLabels: config.ConstLabels,
		}),
	}
}

// Default returns the process-wide Collector, creating it on first use
// against the default registry.
func Default() *Collector {
	globalMu.Lock()
	defer globalMu.Unlock()
	if globalCollector == nil {
		globalCollector = New()
	}
	return globalCollector
}

// RecordRender records one server-side render.
func (c *Collector) RecordRender(path, status string, elapsed time.Duration) {
	c.rendersTotal.WithLabelValues(path, status).Inc()
	c.renderDuration.WithLabelValues(path).Observe(elapsed.Seconds())
}

// RecordEvent records one dispatched client event.
func (c *Collector) RecordEvent(event, status string, elapsed time.Duration) {
	c.eventsTotal.WithLabelValues(event, status).Inc()
	c.eventDuration.WithLabelValues(event).Observe(elapsed.Seconds())
}

// RecordPatches adds count to the patches-sent counter.
func (c *Collector) RecordPatches(count int) {
	c.patchesSent.Add(float64(count))
}

// SessionStarted increments the active session gauge.
func (c *Collector) SessionStarted() {
	c.activeSessions.Inc()
}

// SessionEnded decrements the active session gauge.
func (c *Collector) SessionEnded() {
	c.activeSessions.Dec()
}

// RecordHydrationMismatch records one detected mismatch. class is the
// mismatch family ("text", "tag", "attribute", "missing").
func (c *Collector) RecordHydrationMismatch(class string) {
	c.hydrationMismatch.WithLabelValues(class).Inc()
}

// RecordFlushOverflow records one flush that blew its pass budget.
func (c *Collector) RecordFlushOverflow() {
	c.flushOverflowTotal.Inc()
}
