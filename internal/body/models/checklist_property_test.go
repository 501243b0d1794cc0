//go:build property

package models

import (
	"testing"
	"time"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"

	id "dvi/pkg/domain"
)

type checklistStep struct {
	Op Operation
	To id.TaskStatus
}

func genStep() gopter.Gen {
	return gopter.CombineGens(
		gen.IntRange(0, NumOperations-1),
		gen.IntRange(0, len(id.TaskStatuses)-1),
	).Map(func(v []any) checklistStep {
		return checklistStep{Op: Operations[v[0].(int)], To: id.TaskStatuses[v[1].(int)]}
	})
}

// The only rejected move is leaving completed for anything but
// not_applicable, and every operation always holds a valid state.
func TestChecklistTransitions(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 200
	properties := gopter.NewProperties(parameters)
	now := time.Date(2024, 1, 10, 0, 0, 0, 0, time.UTC)

	properties.Property("completed only yields to not_applicable", prop.ForAll(
		func(steps []checklistStep) bool {
			c := NewChecklist(id.NewBodyID(), now)
			for _, step := range steps {
				from := c.State(step.Op)
				err := c.CanTransition(step.Op, step.To)
				blocked := from == id.TaskCompleted && step.To != id.TaskCompleted && step.To != id.TaskNotApplicable
				if (err != nil) != blocked {
					return false
				}
				if err == nil {
					c.ApplyTransition(step.Op, step.To, now)
				}
				if c.State(step.Op) != step.To && err == nil {
					return false
				}
				for _, s := range c.States {
					if !s.IsValid() {
						return false
					}
				}
			}
			return true
		},
		gen.SliceOf(genStep()),
	))

	properties.TestingRun(t)
}
