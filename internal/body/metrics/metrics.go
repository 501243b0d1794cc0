package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type Metrics struct {
	BodiesCreated        prometheus.Counter
	BodiesDeleted        prometheus.Counter
	ChecklistTransitions *prometheus.CounterVec
	CommandDuration      *prometheus.HistogramVec
}

func New() *Metrics {
	return NewWith(promauto.With(prometheus.DefaultRegisterer))
}

func NewWith(f promauto.Factory) *Metrics {
	return &Metrics{
		BodiesCreated: f.NewCounter(prometheus.CounterOpts{
			Name: "dvi_bodies_created_total",
			Help: "Body records created",
		}),
		BodiesDeleted: f.NewCounter(prometheus.CounterOpts{
			Name: "dvi_bodies_deleted_total",
			Help: "Body records deleted",
		}),
		ChecklistTransitions: f.NewCounterVec(prometheus.CounterOpts{
			Name: "dvi_checklist_transitions_total",
			Help: "Checklist operation state changes",
		}, []string{"operation", "state"}),
		CommandDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "dvi_body_command_duration_seconds",
			Help:    "Duration of body record commands",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
		}, []string{"command"}),
	}
}

func (m *Metrics) IncCreated() {
	if m == nil {
		return
	}
	m.BodiesCreated.Inc()
}

func (m *Metrics) IncDeleted() {
	if m == nil {
		return
	}
	m.BodiesDeleted.Inc()
}

func (m *Metrics) IncChecklistTransition(operation, state string) {
	if m == nil {
		return
	}
	m.ChecklistTransitions.WithLabelValues(operation, state).Inc()
}

func (m *Metrics) ObserveCommand(command string, start time.Time) {
	if m == nil {
		return
	}
	m.CommandDuration.WithLabelValues(command).Observe(time.Since(start).Seconds())
}
