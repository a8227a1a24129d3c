// Package metrics exposes Prometheus counters for the signing API.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Operation labels for issued grants and requests.
const (
	OpPresign    = "presign"
	OpPostPolicy = "post_policy"
	OpDelete     = "delete"
	OpResolve    = "resolve"
)

// Manager owns the metric vectors and their registry.
type Manager struct {
	registry *prometheus.Registry

	operations   *prometheus.CounterVec
	signDuration prometheus.Histogram
}

// NewManager creates a manager with its own registry so tests never trip
// over duplicate registrations in the default one.
func NewManager() *Manager {
	m := &Manager{registry: prometheus.NewRegistry()}

	m.operations = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "signer",
		Name:      "operations_total",
		Help:      "Signing operations by type and outcome",
	}, []string{"operation", "outcome"})

	m.signDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: "signer",
		Name:      "operation_duration_seconds",
		Help:      "Wall time spent per signing operation",
		Buckets:   prometheus.DefBuckets,
	})

	m.registry.MustRegister(m.operations, m.signDuration)
	return m
}

// RecordOperation counts one operation with its outcome ("ok" or "error").
func (m *Manager) RecordOperation(operation string, err error) {
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	m.operations.WithLabelValues(operation, outcome).Inc()
}

// ObserveDuration records how long a signing operation took.
func (m *Manager) ObserveDuration(seconds float64) {
	m.signDuration.Observe(seconds)
}

// Handler returns the HTTP handler serving this manager's registry.
func (m *Manager) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
