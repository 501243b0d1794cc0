package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestMetrics(t *testing.T) {
	m := NewWith(promauto.With(prometheus.NewRegistry()))

	m.IncCreated()
	m.IncChecklistTransition("dna", "completed")
	m.IncChecklistTransition("dna", "completed")
	m.ObserveCommand("create", time.Now())

	assert.Equal(t, 1.0, testutil.ToFloat64(m.BodiesCreated))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.ChecklistTransitions.WithLabelValues("dna", "completed")))
}

func TestNilMetricsAreNoOps(t *testing.T) {
	var m *Metrics
	m.IncCreated()
	m.IncDeleted()
	m.IncChecklistTransition("dna", "assigned")
	m.ObserveCommand("create", time.Now())
}
