package observability

import (
	"net/http"
	"strconv"
	"time"

	"github.com/aretw0/weft/pkg/domain"
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the weft prometheus collectors.
type Metrics struct {
	NodeEvents       *prometheus.CounterVec
	ConnectionEvents *prometheus.CounterVec
	Rejections       *prometheus.CounterVec
	ValueChanges     *prometheus.CounterVec
	CycleGuards      prometheus.Counter

	HTTPRequests        *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec
}

// NewMetrics creates the collectors and registers them on reg.
// Pass prometheus.DefaultRegisterer to expose them on the default handler.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		NodeEvents: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "weft_node_events_total",
				Help: "Nodes added to or removed from graphs",
			},
			[]string{"event"},
		),
		ConnectionEvents: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "weft_connection_events_total",
				Help: "Connections made or broken",
			},
			[]string{"event"},
		),
		Rejections: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "weft_connection_rejections_total",
				Help: "Connection attempts rejected by validation",
			},
			[]string{"reason"},
		),
		ValueChanges: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "weft_value_changes_total",
				Help: "Effective property value writes",
			},
			[]string{"type"},
		),
		CycleGuards: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "weft_cycle_guard_total",
				Help: "Propagations dropped by the loop guard",
			},
		),
		HTTPRequests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "weft_http_requests_total",
				Help: "Total number of HTTP requests processed",
			},
			[]string{"method", "route", "status"},
		),
		HTTPRequestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "weft_http_request_duration_seconds",
				Help:    "Duration of HTTP requests in seconds",
				Buckets: []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 2.5, 5},
			},
			[]string{"method", "route"},
		),
	}
	reg.MustRegister(
		m.NodeEvents,
		m.ConnectionEvents,
		m.Rejections,
		m.ValueChanges,
		m.CycleGuards,
		m.HTTPRequests,
		m.HTTPRequestDuration,
	)
	return m
}

// Hooks returns lifecycle hooks that record graph events.
func (m *Metrics) Hooks() domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnNodeAdded: func(e *domain.NodeEvent) {
			m.NodeEvents.WithLabelValues(string(e.Type)).Inc()
		},
		OnNodeRemoved: func(e *domain.NodeEvent) {
			m.NodeEvents.WithLabelValues(string(e.Type)).Inc()
		},
		OnConnect: func(e *domain.ConnectionEvent) {
			m.ConnectionEvents.WithLabelValues(string(e.Type)).Inc()
		},
		OnDisconnect: func(e *domain.ConnectionEvent) {
			m.ConnectionEvents.WithLabelValues(string(e.Type)).Inc()
		},
		OnReject: func(e *domain.ConnectionEvent) {
			m.Rejections.WithLabelValues(string(e.Reason)).Inc()
		},
		OnValueChanged: func(e *domain.ValueEvent) {
			m.ValueChanges.WithLabelValues(e.Property.Type().Name()).Inc()
		},
		OnCycleGuard: func(*domain.CycleEvent) {
			m.CycleGuards.Inc()
		},
	}
}

// ObserveRequest records one served HTTP request.
func (m *Metrics) ObserveRequest(method, route string, status int, elapsed time.Duration) {
	m.HTTPRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	m.HTTPRequestDuration.WithLabelValues(method, route).Observe(elapsed.Seconds())
}

// StatusRecorder captures the status code written by a handler.
type StatusRecorder struct {
	http.ResponseWriter
	Status int
}

// WriteHeader records the status before delegating.
func (r *StatusRecorder) WriteHeader(code int) {
	r.Status = code
	r.ResponseWriter.WriteHeader(code)
}

// Flush lets streaming handlers flush through the recorder.
func (r *StatusRecorder) Flush() {
	if f, ok := r.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}
