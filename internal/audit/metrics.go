package audit

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type Metrics struct {
	emitted       *prometheus.CounterVec
	relayed       prometheus.Counter
	relayFailures prometheus.Counter
	outboxBacklog prometheus.Gauge
}

func NewMetrics() *Metrics {
	return NewMetricsWith(promauto.With(prometheus.DefaultRegisterer))
}

func NewMetricsWith(f promauto.Factory) *Metrics {
	return &Metrics{
		emitted: f.NewCounterVec(prometheus.CounterOpts{
			Name: "dvi_audit_events_emitted_total",
			Help: "Audit events appended, by action",
		}, []string{"action"}),
		relayed: f.NewCounter(prometheus.CounterOpts{
			Name: "dvi_audit_events_relayed_total",
			Help: "Outbox events published to the producer",
		}),
		relayFailures: f.NewCounter(prometheus.CounterOpts{
			Name: "dvi_audit_relay_failures_total",
			Help: "Failed outbox relay batches",
		}),
		outboxBacklog: f.NewGauge(prometheus.GaugeOpts{
			Name: "dvi_audit_outbox_backlog",
			Help: "Pending outbox events seen by the last relay poll",
		}),
	}
}

func (m *Metrics) IncEmitted(action Action) {
	if m == nil {
		return
	}
	m.emitted.WithLabelValues(string(action)).Inc()
}

func (m *Metrics) AddRelayed(n int) {
	if m == nil {
		return
	}
	m.relayed.Add(float64(n))
}

func (m *Metrics) IncRelayFailures() {
	if m == nil {
		return
	}
	m.relayFailures.Inc()
}

func (m *Metrics) SetBacklog(n int) {
	if m == nil {
		return
	}
	m.outboxBacklog.Set(float64(n))
}
