// Package metrics exposes Prometheus metrics for the coachpay app and the
// sync worker. A nil *Manager is valid and records nothing.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Option applies a configuration option to the Manager.
type Option func(*Manager)

// WithNamespace sets the namespace for all metrics.
func WithNamespace(namespace string) Option {
	return func(m *Manager) {
		if namespace != "" {
			m.namespace = namespace
		}
	}
}

// WithSubsystem sets the subsystem for all metrics.
func WithSubsystem(subsystem string) Option {
	return func(m *Manager) {
		if subsystem != "" {
			m.subsystem = subsystem
		}
	}
}

// WithRegistry registers metrics on reg instead of a fresh registry.
func WithRegistry(reg *prometheus.Registry) Option {
	return func(m *Manager) {
		if reg != nil {
			m.registry = reg
		}
	}
}

// WithRuntimeCollectors adds the Go runtime and process collectors.
func WithRuntimeCollectors() Option {
	return func(m *Manager) { m.runtime = true }
}

type Manager struct {
	namespace string
	subsystem string
	registry  *prometheus.Registry
	runtime   bool

	recordsSubmitted    prometheus.Counter
	submissionsRejected prometheus.Counter
	recordsCleared      prometheus.Counter
	paymentRuns         *prometheus.CounterVec
	paymentRows         *prometheus.GaugeVec

	syncPending prometheus.Gauge
	syncedRows  prometheus.Counter
	syncErrors  *prometheus.CounterVec

	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec
}

// NewManager creates a manager on its own registry so the exposed metrics
// are only the ones defined here (plus runtime collectors when asked).
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace: "coachpay",
		registry:  prometheus.NewRegistry(),
	}
	for _, opt := range opts {
		opt(m)
	}
	m.initializeMetrics()
	return m
}

func (m *Manager) initializeMetrics() {
	auto := promauto.With(m.registry)
	if m.runtime {
		m.registry.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		)
	}

	m.recordsSubmitted = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: m.subsystem,
		Name: "records_submitted_total",
		Help: "Training records stored through the submission form",
	})
	m.submissionsRejected = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: m.subsystem,
		Name: "submissions_rejected_total",
		Help: "Submissions rejected by validation",
	})
	m.recordsCleared = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: m.subsystem,
		Name: "records_cleared_total",
		Help: "Times the record table was wiped",
	})
	m.paymentRuns = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: m.subsystem,
		Name: "payment_runs_total",
		Help: "Payment computations by month",
	}, []string{"month"})
	m.paymentRows = auto.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: m.namespace, Subsystem: m.subsystem,
		Name: "payment_rows",
		Help: "Coaches in the last payment computation for a month",
	}, []string{"month"})

	m.syncPending = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace, Subsystem: m.subsystem,
		Name: "sync_pending_records",
		Help: "Records stored in SQLite and not yet mirrored to Google Sheets",
	})
	m.syncedRows = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: m.subsystem,
		Name: "sync_records_total",
		Help: "Records mirrored to Google Sheets",
	})
	m.syncErrors = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: m.subsystem,
		Name: "sync_errors_total",
		Help: "Mirror failures by operation",
	}, []string{"operation"})

	m.httpRequests = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: m.subsystem,
		Name: "http_requests_total",
		Help: "HTTP requests by route, method and status code",
	}, []string{"route", "method", "status_code"})
	m.httpRequestDuration = auto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: m.namespace, Subsystem: m.subsystem,
		Name:    "http_request_duration_seconds",
		Help:    "HTTP request latency by route and method",
		Buckets: prometheus.DefBuckets,
	}, []string{"route", "method"})
}

// Registry returns the registry the metrics are registered on.
func (m *Manager) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Manager) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

func (m *Manager) RecordSubmission(records int) {
	if m == nil {
		return
	}
	m.recordsSubmitted.Add(float64(records))
}

func (m *Manager) RecordRejection() {
	if m == nil {
		return
	}
	m.submissionsRejected.Inc()
}

func (m *Manager) RecordClear() {
	if m == nil {
		return
	}
	m.recordsCleared.Inc()
}

func (m *Manager) RecordPaymentRun(month string, rows int) {
	if m == nil {
		return
	}
	m.paymentRuns.WithLabelValues(month).Inc()
	m.paymentRows.WithLabelValues(month).Set(float64(rows))
}

func (m *Manager) SetSyncPending(n int64) {
	if m == nil {
		return
	}
	m.syncPending.Set(float64(n))
}

func (m *Manager) RecordSynced(n int) {
	if m == nil {
		return
	}
	m.syncedRows.Add(float64(n))
}

func (m *Manager) RecordSyncError(operation string) {
	if m == nil {
		return
	}
	m.syncErrors.WithLabelValues(operation).Inc()
}

func (m *Manager) RecordHTTPRequest(route, method string, status int, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.httpRequests.WithLabelValues(route, method, strconv.Itoa(status)).Inc()
	m.httpRequestDuration.WithLabelValues(route, method).Observe(elapsed.Seconds())
}
