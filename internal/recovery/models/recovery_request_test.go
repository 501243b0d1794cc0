package models

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	id "dvi/pkg/domain"
	dErrors "dvi/pkg/domain-errors"
)

var now = time.Date(2024, 1, 10, 15, 0, 0, 0, time.UTC)

func newRequest(t *testing.T, found int) *RecoveryRequest {
	t.Helper()
	r, err := NewRecoveryRequest(id.NewRecoveryRequestID(), now.Add(-6*time.Hour), "A-14", "", "L1", found, "", now)
	require.NoError(t, err)
	return r
}

func TestNewRecoveryRequest(t *testing.T) {
	t.Run("starts not_started", func(t *testing.T) {
		r := newRequest(t, 3)
		assert.Equal(t, id.TaskNotStarted, r.Status)
		assert.Equal(t, 0, r.BodiesRecovered)
	})

	tests := []struct {
		name      string
		dateFound time.Time
		found     int
		code      dErrors.Code
	}{
		{"future date", now.Add(time.Second), 1, dErrors.CodeFutureDate},
		{"negative count", now, -1, dErrors.CodeNegativeCount},
		{"count above bound", now, MaxBodies + 1, dErrors.CodeCountOutOfRange},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewRecoveryRequest(id.NewRecoveryRequestID(), tt.dateFound, "", "", "L1", tt.found, "", now)
			assert.True(t, dErrors.HasCode(err, tt.code), "got %v", err)
		})
	}

	t.Run("boundary values accepted", func(t *testing.T) {
		r, err := NewRecoveryRequest(id.NewRecoveryRequestID(), now, "", "", "L1", MaxBodies, "", now)
		require.NoError(t, err)
		assert.Equal(t, MaxBodies, r.BodiesFound)
	})
}

func TestRecoveryRequestTransitions(t *testing.T) {
	t.Run("assign then progress then complete", func(t *testing.T) {
		r := newRequest(t, 1)
		require.NoError(t, r.CanAssign())
		r.ApplyAssign("P9", now)
		assert.Equal(t, id.PersonRef("P9"), r.AssignedTo)

		require.NoError(t, r.CanAssign(), "reassignment is allowed")
		require.NoError(t, r.CanProgress())
		r.ApplyProgress(now)

		assert.True(t, dErrors.HasCode(r.CanAssign(), dErrors.CodeIllegalTransition))
		require.NoError(t, r.CanComplete(id.TaskCompleted))
		r.ApplyComplete(id.TaskCompleted, now)
	})

	t.Run("terminal states are final", func(t *testing.T) {
		for _, terminal := range []id.TaskStatus{id.TaskCompleted, id.TaskNotApplicable, id.TaskNotPossible} {
			r := newRequest(t, 1)
			require.NoError(t, r.CanComplete(terminal))
			r.ApplyComplete(terminal, now)

			assert.True(t, dErrors.HasCode(r.CanComplete(id.TaskCompleted), dErrors.CodeIllegalTransition))
			assert.True(t, dErrors.HasCode(r.CanProgress(), dErrors.CodeIllegalTransition))
			assert.True(t, dErrors.HasCode(r.CanAssign(), dErrors.CodeIllegalTransition))
		}
	})

	t.Run("complete requires a terminal target", func(t *testing.T) {
		r := newRequest(t, 1)
		assert.True(t, dErrors.HasCode(r.CanComplete(id.TaskInProgress), dErrors.CodeInvalidInput))
	})
}

func TestRecoveryRequestCounters(t *testing.T) {
	r := newRequest(t, 3)

	require.NoError(t, r.SetRecovered(3, now))
	assert.True(t, dErrors.HasCode(r.SetRecovered(4, now), dErrors.CodeExceedsFound))
	assert.True(t, dErrors.HasCode(r.SetRecovered(-1, now), dErrors.CodeNegativeCount))

	assert.True(t, dErrors.HasCode(r.SetFound(2, now), dErrors.CodeExceedsFound))
	require.NoError(t, r.SetFound(5, now))
	assert.Equal(t, 5, r.BodiesFound)
	assert.Equal(t, 3, r.BodiesRecovered)
}

func TestFilterAndOrder(t *testing.T) {
	a := newRequest(t, 1)
	b := newRequest(t, 1)
	b.DateFound = a.DateFound
	b.ID = id.RecoveryRequestID(uuid.MustParse("ffffffff-ffff-7fff-bfff-ffffffffffff"))
	c := newRequest(t, 1)
	c.DateFound = a.DateFound.Add(time.Hour)

	assert.True(t, Less(c, a), "newer date_found first")
	assert.True(t, Less(b, a), "equal dates order by id descending")

	f := Filter{Statuses: []id.TaskStatus{id.TaskAssigned}}
	assert.False(t, f.Matches(a))
	a.Status = id.TaskAssigned
	assert.True(t, f.Matches(a))

	assert.False(t, Filter{Location: "L2"}.Matches(a))
	assert.False(t, Filter{From: c.DateFound}.Matches(a))
	assert.True(t, Filter{To: c.DateFound}.Matches(a))
}
