package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics covers the recovery request manager.
type Metrics struct {
	RequestsCreated prometheus.Counter
	Transitions     *prometheus.CounterVec
	CommandDuration *prometheus.HistogramVec
}

func New() *Metrics {
	return NewWith(promauto.With(prometheus.DefaultRegisterer))
}

func NewWith(f promauto.Factory) *Metrics {
	return &Metrics{
		RequestsCreated: f.NewCounter(prometheus.CounterOpts{
			Name: "dvi_recovery_requests_total",
			Help: "Recovery requests created",
		}),
		Transitions: f.NewCounterVec(prometheus.CounterOpts{
			Name: "dvi_recovery_request_transitions_total",
			Help: "Recovery request status transitions by target status",
		}, []string{"to"}),
		CommandDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "dvi_recovery_command_duration_seconds",
			Help:    "Duration of recovery request commands",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
		}, []string{"command"}),
	}
}

func (m *Metrics) IncCreated() {
	if m == nil {
		return
	}
	m.RequestsCreated.Inc()
}

func (m *Metrics) IncTransition(to string) {
	if m == nil {
		return
	}
	m.Transitions.WithLabelValues(to).Inc()
}

// ObserveCommand records the duration of a command started at start.
func (m *Metrics) ObserveCommand(command string, start time.Time) {
	if m == nil {
		return
	}
	m.CommandDuration.WithLabelValues(command).Observe(time.Since(start).Seconds())
}
