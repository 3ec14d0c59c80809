// Package metrics provides Prometheus collectors for the risk engine.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/caseguard/riskmatrix/pkg/domain/interfaces"
	"github.com/caseguard/riskmatrix/pkg/domain/types"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
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

// WithHistogramBuckets sets custom buckets for latency histograms (seconds).
func WithHistogramBuckets(buckets []float64) Option {
	return func(m *Manager) {
		if len(buckets) > 0 {
			m.buckets = buckets
		}
	}
}

// WithRegistry sets a custom Prometheus registry.
func WithRegistry(registry *prometheus.Registry) Option {
	return func(m *Manager) {
		if registry != nil {
			m.registry = registry
		}
	}
}

// Manager owns the engine's collectors and the registry they are exposed from.
type Manager struct {
	namespace string
	buckets   []float64
	registry  *prometheus.Registry

	evaluations           *prometheus.CounterVec
	evaluationLatency     prometheus.Histogram
	activations           *prometheus.CounterVec
	serializationDegraded prometheus.Counter
	httpRequests          *prometheus.CounterVec
	httpRequestDuration   *prometheus.HistogramVec
}

var _ interfaces.MetricsRecorder = &Manager{}

// NewManager creates a Manager registering on a fresh registry unless WithRegistry is given.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace: "riskmatrix",
		buckets:   prometheus.DefBuckets,
		registry:  prometheus.NewRegistry(),
	}

	for _, opt := range opts {
		opt(m)
	}

	auto := promauto.With(m.registry)

	m.evaluations = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Name:      "evaluations_total",
		Help:      "Number of stored risk evaluations by traffic light",
	}, []string{"traffic_light"})

	m.evaluationLatency = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Name:      "evaluation_duration_seconds",
		Help:      "Time from request to stored snapshot",
		Buckets:   m.buckets,
	})

	m.activations = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Name:      "config_activations_total",
		Help:      "Number of risk matrix activations by tenant",
	}, []string{"tenant_id"})

	m.serializationDegraded = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Name:      "snapshot_serialization_degraded_total",
		Help:      "Snapshots stored with placeholder payload sections",
	})

	m.httpRequests = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: "http",
		Name:      "requests_total",
		Help:      "HTTP requests by route pattern, method and status",
	}, []string{"route", "method", "status"})

	m.httpRequestDuration = auto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: "http",
		Name:      "request_duration_seconds",
		Help:      "HTTP request latency by route pattern",
		Buckets:   m.buckets,
	}, []string{"route", "method"})

	// pre-create one series per light so dashboards see zeros
	for _, light := range types.AllTrafficLights() {
		m.evaluations.WithLabelValues(light.String())
	}

	return m
}

func (m *Manager) ObserveEvaluation(light types.TrafficLight, duration time.Duration) {
	m.evaluations.WithLabelValues(light.String()).Inc()
	m.evaluationLatency.Observe(duration.Seconds())
}

func (m *Manager) IncActivation(tenantID types.TenantID) {
	m.activations.WithLabelValues(tenantID.String()).Inc()
}

func (m *Manager) IncSerializationDegraded() {
	m.serializationDegraded.Inc()
}

// Registry returns the registry the collectors are registered on
func (m *Manager) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the Prometheus exposition format
func (m *Manager) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// Middleware records request counts and latency per chi route pattern.
// Raw paths are not used as labels since they contain case ids.
func (m *Manager) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		route := "unmatched"
		if rctx := chi.RouteContext(r.Context()); rctx != nil {
			if pattern := rctx.RoutePattern(); pattern != "" {
				route = pattern
			}
		}
		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}

		m.httpRequests.WithLabelValues(route, r.Method, strconv.Itoa(status)).Inc()
		m.httpRequestDuration.WithLabelValues(route, r.Method).Observe(time.Since(start).Seconds())
	})
}
