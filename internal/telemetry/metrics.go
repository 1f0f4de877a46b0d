package telemetry

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/url2app/u2a/internal/errors"
)

// MetricsConfig configures the u2a metrics.
type MetricsConfig struct {
	// Namespace is the metrics namespace (default: "u2a").
	Namespace string

	// ConstLabels are constant labels added to all metrics.
	ConstLabels prometheus.Labels

	// Buckets are the histogram buckets for operation duration.
	Buckets []float64
}

// MetricsOption configures the metrics.
type MetricsOption func(*MetricsConfig)

// WithNamespace sets the metrics namespace.
func WithNamespace(namespace string) MetricsOption {
	return func(c *MetricsConfig) {
		c.Namespace = namespace
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

func defaultMetricsConfig() MetricsConfig {
	return MetricsConfig{
		Namespace: "u2a",
		// Operations wait on npm, so the interesting range is seconds to minutes.
		Buckets: []float64{0.1, 0.5, 1, 5, 15, 30, 60, 120, 300, 600},
	}
}

// Metrics records lifecycle activity on a private registry. Methods on a
// nil *Metrics are no-ops.
type Metrics struct {
	registry *prometheus.Registry

	operationsTotal   *prometheus.CounterVec
	operationDuration *prometheus.HistogramVec
	operationErrors   *prometheus.CounterVec
	upgradeApps       *prometheus.CounterVec
	registeredApps    prometheus.Gauge
}

// NewMetrics creates the u2a metrics on a fresh registry.
func NewMetrics(opts ...MetricsOption) *Metrics {
	config := defaultMetricsConfig()
	for _, opt := range opts {
		opt(&config)
	}

	registry := prometheus.NewRegistry()
	factory := promauto.With(registry)

	return &Metrics{
		registry: registry,

		operationsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Name:        "operations_total",
			Help:        "Total number of lifecycle operations",
			ConstLabels: config.ConstLabels,
		}, []string{"operation", "status"}),

		operationDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace:   config.Namespace,
			Name:        "operation_duration_seconds",
			Help:        "Lifecycle operation duration in seconds",
			ConstLabels: config.ConstLabels,
			Buckets:     config.Buckets,
		}, []string{"operation"}),

		operationErrors: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Name:        "operation_errors_total",
			Help:        "Total number of failed lifecycle operations by error code",
			ConstLabels: config.ConstLabels,
		}, []string{"operation", "code"}),

		upgradeApps: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Name:        "upgrade_apps_total",
			Help:        "Apps processed by bulk upgrade by result",
			ConstLabels: config.ConstLabels,
		}, []string{"result"}),

		registeredApps: factory.NewGauge(prometheus.GaugeOpts{
			Namespace:   config.Namespace,
			Name:        "registered_apps",
			Help:        "Number of apps in the registry",
			ConstLabels: config.ConstLabels,
		}),
	}
}

// Registry returns the underlying registry.
func (m *Metrics) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

// ObserveOperation records one finished operation.
func (m *Metrics) ObserveOperation(operation string, start time.Time, err error) {
	if m == nil {
		return
	}
	status := "ok"
	if err != nil {
		status = "error"
		code := errors.CodeOf(err)
		if code == "" {
			code = "unknown"
		}
		m.operationErrors.WithLabelValues(operation, code).Inc()
	}
	m.operationsTotal.WithLabelValues(operation, status).Inc()
	m.operationDuration.WithLabelValues(operation).Observe(time.Since(start).Seconds())
}

// ObserveUpgrade records the outcome of a bulk upgrade.
func (m *Metrics) ObserveUpgrade(upgraded, failed, missing int) {
	if m == nil {
		return
	}
	m.upgradeApps.WithLabelValues("upgraded").Add(float64(upgraded))
	m.upgradeApps.WithLabelValues("failed").Add(float64(failed))
	m.upgradeApps.WithLabelValues("missing").Add(float64(missing))
}

// SetRegisteredApps sets the registered-apps gauge.
func (m *Metrics) SetRegisteredApps(n int) {
	if m == nil {
		return
	}
	m.registeredApps.Set(float64(n))
}

// WriteFile writes the current metrics to path in the prometheus text
// format, replacing the file atomically.
func (m *Metrics) WriteFile(path string) error {
	if m == nil {
		return nil
	}
	return prometheus.WriteToTextfile(path, m.registry)
}
