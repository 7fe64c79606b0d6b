package middleware

import (
	"errors"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/strand-dev/strand/pkg/render"
	"github.com/strand-dev/strand/pkg/server"
	"github.com/strand-dev/strand/pkg/suspense"
)

// MetricsConfig configures the Prometheus metrics middleware.
type MetricsConfig struct {
	// Namespace is the metrics namespace (default: "strand").
	Namespace string

	// Subsystem is the metrics subsystem (default: "").
	Subsystem string

	// ConstLabels are constant labels added to all metrics.
	ConstLabels prometheus.Labels

	// Buckets are the histogram buckets for request duration.
	// Default: prometheus.DefBuckets
	Buckets []float64

	// Registry is the Prometheus registry to use.
	// Default: prometheus.DefaultRegisterer
	Registry prometheus.Registerer
}

// MetricsOption configures the Prometheus metrics middleware.
type MetricsOption func(*MetricsConfig)

// WithNamespace sets the metrics namespace.
func WithNamespace(namespace string) MetricsOption {
	return func(c *MetricsConfig) {
		c.Namespace = namespace
	}
}

// WithSubsystem sets the metrics subsystem.
func WithSubsystem(subsystem string) MetricsOption {
	return func(c *MetricsConfig) {
		c.Subsystem = subsystem
	}
}

// WithConstLabels sets constant labels for all metrics.
func WithConstLabels(labels prometheus.Labels) MetricsOption {
	return func(c *MetricsConfig) {
		c.ConstLabels = labels
	}
}

// WithBuckets sets the histogram buckets.
func WithBuckets(buckets []float64) MetricsOption {
	return func(c *MetricsConfig) {
		c.Buckets = buckets
	}
}

// WithRegistry sets the Prometheus registry.
func WithRegistry(registry prometheus.Registerer) MetricsOption {
	return func(c *MetricsConfig) {
		c.Registry = registry
	}
}

// defaultMetricsConfig returns the default metrics configuration.
func defaultMetricsConfig() MetricsConfig {
	return MetricsConfig{
		Namespace: "strand",
		Buckets:   prometheus.DefBuckets,
		Registry:  prometheus.DefaultRegisterer,
	}
}

// metrics holds the Prometheus metrics for strand.
type metrics struct {
	requestsTotal    *prometheus.CounterVec
	requestDuration  *prometheus.HistogramVec
	requestErrors    *prometheus.CounterVec
	streamBytes      prometheus.Counter
	deferredSpawned  prometheus.Counter
	deferredFlushed  prometheus.Counter
	deferredDropped  prometheus.Counter
	boundaryTimeouts prometheus.Counter
}

// globalMetrics is the singleton metrics instance, created on the first
// call to Prometheus().
var (
	globalMetrics   *metrics
	globalMetricsMu sync.Mutex
)

// initMetrics initializes the Prometheus metrics.
func initMetrics(config MetricsConfig) *metrics {
	factory := promauto.With(config.Registry)

	return &metrics{
		requestsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "requests_total",
			Help:        "Total number of dispatched requests",
			ConstLabels: config.ConstLabels,
		}, []string{"path", "status"}),

		requestDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "request_duration_seconds",
			Help:        "Request handling duration in seconds",
			ConstLabels: config.ConstLabels,
			Buckets:     config.Buckets,
		}, []string{"path"}),

		requestErrors: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "request_errors_total",
			Help:        "Total number of handler errors",
			ConstLabels: config.ConstLabels,
		}, []string{"path", "error_type"}),

		streamBytes: factory.NewCounter(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "stream_bytes_total",
			Help:        "Total bytes written to response streams",
			ConstLabels: config.ConstLabels,
		}),

		deferredSpawned: factory.NewCounter(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "deferred_boundaries_total",
			Help:        "Total deferred boundaries encountered while streaming",
			ConstLabels: config.ConstLabels,
		}),

		deferredFlushed: factory.NewCounter(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "deferred_payloads_flushed_total",
			Help:        "Total deferred replacement payloads flushed to clients",
			ConstLabels: config.ConstLabels,
		}),

		deferredDropped: factory.NewCounter(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "deferred_payloads_dropped_total",
			Help:        "Total deferred payloads discarded by abort or failure",
			ConstLabels: config.ConstLabels,
		}),

		boundaryTimeouts: factory.NewCounter(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "boundary_timeouts_total",
			Help:        "Total suspense boundaries that exceeded their max delay",
			ConstLabels: config.ConstLabels,
		}),
	}
}

// Prometheus creates middleware that collects Prometheus metrics for
// dispatched requests.
//
// Metrics collected:
//   - strand_requests_total: Counter of requests by path and status
//   - strand_request_duration_seconds: Histogram of request duration
//   - strand_request_errors_total: Counter of handler errors by type
//   - strand_stream_bytes_total: Counter of streamed bytes (via RecordStream)
//   - strand_deferred_boundaries_total, strand_deferred_payloads_flushed_total,
//     strand_deferred_payloads_dropped_total: deferred streaming counters
//   - strand_boundary_timeouts_total: Counter of boundary max-delay failures
//
// Expose the registry with promhttp in your server setup.
func Prometheus(opts ...MetricsOption) server.Middleware {
	config := defaultMetricsConfig()
	for _, opt := range opts {
		opt(&config)
	}

	globalMetricsMu.Lock()
	if globalMetrics == nil {
		globalMetrics = initMetrics(config)
	}
	m := globalMetrics
	globalMetricsMu.Unlock()

	return server.MiddlewareFunc(func(ctx *server.Ctx, next func() error) error {
		path := ctx.Path()
		if path == "" {
			path = "/"
		}

		start := time.Now()
		err := next()
		m.requestDuration.WithLabelValues(path).Observe(time.Since(start).Seconds())

		status := "success"
		if err != nil {
			status = "error"
			m.requestErrors.WithLabelValues(path, categorizeError(err)).Inc()
		}
		m.requestsTotal.WithLabelValues(path, status).Inc()

		return err
	})
}

// categorizeError maps an error onto a low-cardinality label value.
func categorizeError(err error) string {
	switch {
	case errors.Is(err, suspense.ErrTimeout):
		return "timeout"
	case errors.Is(err, render.ErrAborted):
		return "aborted"
	default:
		return "internal"
	}
}

// RecordStream records one response's stream encoder stats. Call this
// from the dispatcher's stats hook:
//
//	server.WithStatsHook(middleware.RecordStream)
func RecordStream(stats render.Stats) {
	if globalMetrics == nil {
		return
	}
	globalMetrics.streamBytes.Add(float64(stats.BytesWritten))
	globalMetrics.deferredSpawned.Add(float64(stats.DeferredSpawned))
	globalMetrics.deferredFlushed.Add(float64(stats.DeferredFlushed))
	globalMetrics.deferredDropped.Add(float64(stats.DeferredDropped))
}

// RecordBoundaryTimeout records a suspense boundary exceeding its max
// delay. The App registers it as the dispatcher's boundary timeout hook
// when metrics are enabled; it also works from a boundary error renderer.
func RecordBoundaryTimeout() {
	if globalMetrics != nil {
		globalMetrics.boundaryTimeouts.Inc()
	}
}
