package metric

import (
	"net/http"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "pushmesh"

// Registry holds all application metrics on a private Prometheus registry.
//
// A nil *Registry is valid; every recording method is then a no-op, which
// lets components run without metrics in tests.
type Registry struct {
	registry *prometheus.Registry

	// Connection metrics
	ConnectionsActive prometheus.Gauge
	ConnectionsTotal  *prometheus.CounterVec
	DisconnectsTotal  *prometheus.CounterVec

	// Relay metrics
	NotificationsTotal  *prometheus.CounterVec
	FramesTotal         *prometheus.CounterVec
	LivenessProbesTotal prometheus.Counter

	// HTTP metrics
	RequestDuration *prometheus.HistogramVec
}

var (
	globalOnce sync.Once
	global     *Registry
)

// NewRegistry creates a registry with the relay metrics plus the Go and
// process collectors.
func NewRegistry() *Registry {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	r := &Registry{
		registry: reg,
		ConnectionsActive: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "connections_active",
			Help:      "Number of live destination connections.",
		}),
		ConnectionsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "connections_total",
			Help:      "Connection attempts by result.",
		}, []string{"result"}),
		DisconnectsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "disconnects_total",
			Help:      "Connection teardowns by reason.",
		}, []string{"reason"}),
		NotificationsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "notifications_total",
			Help:      "Notifications routed by outcome.",
		}, []string{"outcome"}),
		FramesTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "frames_total",
			Help:      "WebSocket frames by direction and kind.",
		}, []string{"direction", "kind"}),
		LivenessProbesTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "liveness_probes_total",
			Help:      "Ping probes sent by liveness monitors.",
		}),
		RequestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route", "status"}),
	}

	reg.MustRegister(
		r.ConnectionsActive,
		r.ConnectionsTotal,
		r.DisconnectsTotal,
		r.NotificationsTotal,
		r.FramesTotal,
		r.LivenessProbesTotal,
		r.RequestDuration,
	)
	return r
}

// Global returns the process-wide registry.
func Global() *Registry {
	globalOnce.Do(func() {
		global = NewRegistry()
	})
	return global
}

// Handler returns the /metrics handler of the global registry.
func Handler() http.Handler {
	return Global().Handler()
}

// Handler returns an HTTP handler exposing this registry.
func (r *Registry) Handler() http.Handler {
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{
		Registry: r.registry,
	})
}

// Register adds an extra collector to the registry.
func (r *Registry) Register(c prometheus.Collector) error {
	return r.registry.Register(c)
}

// Gatherer exposes the underlying registry for tests and exporters.
func (r *Registry) Gatherer() prometheus.Gatherer {
	return r.registry
}

// ConnectionOpened records a successful connection.
func (r *Registry) ConnectionOpened() {
	if r == nil {
		return
	}
	r.ConnectionsTotal.WithLabelValues("accepted").Inc()
	r.ConnectionsActive.Inc()
}

// ConnectionRejected records a connection attempt that never went live.
func (r *Registry) ConnectionRejected(result string) {
	if r == nil {
		return
	}
	r.ConnectionsTotal.WithLabelValues(result).Inc()
}

// ConnectionClosed records a teardown.
func (r *Registry) ConnectionClosed(reason string) {
	if r == nil {
		return
	}
	r.DisconnectsTotal.WithLabelValues(reason).Inc()
	r.ConnectionsActive.Dec()
}

// RecordNotification records one routing outcome.
func (r *Registry) RecordNotification(outcome string) {
	if r == nil {
		return
	}
	r.NotificationsTotal.WithLabelValues(outcome).Inc()
}

// RecordFrame records one frame. direction is "in" or "out".
func (r *Registry) RecordFrame(direction, kind string) {
	if r == nil {
		return
	}
	r.FramesTotal.WithLabelValues(direction, kind).Inc()
}

// IncLivenessProbe records one ping probe.
func (r *Registry) IncLivenessProbe() {
	if r == nil {
		return
	}
	r.LivenessProbesTotal.Inc()
}

// ObserveRequestDuration records the latency of one HTTP request.
func (r *Registry) ObserveRequestDuration(method, route, status string, seconds float64) {
	if r == nil {
		return
	}
	r.RequestDuration.WithLabelValues(method, route, status).Observe(seconds)
}
