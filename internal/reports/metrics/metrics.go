package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type Metrics struct {
	QueryDuration *prometheus.HistogramVec
}

func New() *Metrics {
	return NewWith(promauto.With(prometheus.DefaultRegisterer))
}

func NewWith(f promauto.Factory) *Metrics {
	return &Metrics{
		QueryDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "dvi_report_query_duration_seconds",
			Help:    "Duration of aggregate report queries",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
		}, []string{"report"}),
	}
}

func (m *Metrics) ObserveQuery(report string, d time.Duration) {
	if m == nil {
		return
	}
	m.QueryDuration.WithLabelValues(report).Observe(d.Seconds())
}
