package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the process-wide HTTP metrics. Per-context metrics live in
// each context's metrics package.
type Metrics struct {
	RequestsTotal    *prometheus.CounterVec
	RequestDuration  *prometheus.HistogramVec
	RequestsInFlight prometheus.Gauge
}

// New creates and registers the HTTP metrics with the default registry.
func New() *Metrics {
	return NewWith(promauto.With(prometheus.DefaultRegisterer))
}

// NewWith registers metrics through factory; tests pass a factory over a
// private registry.
func NewWith(factory promauto.Factory) *Metrics {
	return &Metrics{
		RequestsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "dvi_http_requests_total",
			Help: "Total HTTP requests by route pattern, method and status",
		}, []string{"route", "method", "status"}),
		RequestDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "dvi_http_request_duration_seconds",
			Help:    "HTTP request latency by route pattern and method",
			Buckets: prometheus.DefBuckets,
		}, []string{"route", "method"}),
		RequestsInFlight: factory.NewGauge(prometheus.GaugeOpts{
			Name: "dvi_http_requests_in_flight",
			Help: "HTTP requests currently being served",
		}),
	}
}

func (m *Metrics) ObserveRequest(route, method string, status int, seconds float64) {
	if m == nil {
		return
	}
	m.RequestsTotal.WithLabelValues(route, method, statusClass(status)).Inc()
	m.RequestDuration.WithLabelValues(route, method).Observe(seconds)
}

func (m *Metrics) IncInFlight() {
	if m == nil {
		return
	}
	m.RequestsInFlight.Inc()
}

func (m *Metrics) DecInFlight() {
	if m == nil {
		return
	}
	m.RequestsInFlight.Dec()
}

func statusClass(status int) string {
	switch {
	case status >= 500:
		return "5xx"
	case status >= 400:
		return "4xx"
	case status >= 300:
		return "3xx"
	default:
		return "2xx"
	}
}
