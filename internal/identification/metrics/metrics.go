package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type Metrics struct {
	ClaimsOpened     prometheus.Counter
	ClaimTransitions *prometheus.CounterVec
	Overrides        prometheus.Counter
}

func New() *Metrics {
	return NewWith(promauto.With(prometheus.DefaultRegisterer))
}

func NewWith(f promauto.Factory) *Metrics {
	return &Metrics{
		ClaimsOpened: f.NewCounter(prometheus.CounterOpts{
			Name: "dvi_claims_opened_total",
			Help: "Identification claims opened",
		}),
		ClaimTransitions: f.NewCounterVec(prometheus.CounterOpts{
			Name: "dvi_claim_transitions_total",
			Help: "Identification claim status changes by target status",
		}, []string{"to"}),
		Overrides: f.NewCounter(prometheus.CounterOpts{
			Name: "dvi_claim_evidence_overrides_total",
			Help: "Confirmations granted by evidence override",
		}),
	}
}

func (m *Metrics) IncOpened() {
	if m == nil {
		return
	}
	m.ClaimsOpened.Inc()
}

func (m *Metrics) IncTransition(to string) {
	if m == nil {
		return
	}
	m.ClaimTransitions.WithLabelValues(to).Inc()
}

func (m *Metrics) IncOverride() {
	if m == nil {
		return
	}
	m.Overrides.Inc()
}
