package models

import (
	"encoding/json"
	"time"

	id "dvi/pkg/domain"
	dErrors "dvi/pkg/domain-errors"
)

// Checklist tracks the eight forensic operations of one body.
type Checklist struct {
	BodyID    id.BodyID
	States    [NumOperations]id.TaskStatus
	UpdatedAt time.Time
}

func NewChecklist(bodyID id.BodyID, now time.Time) *Checklist {
	c := &Checklist{BodyID: bodyID, UpdatedAt: now}
	for i := range c.States {
		c.States[i] = id.TaskNotStarted
	}
	return c
}

func (c *Checklist) State(op Operation) id.TaskStatus {
	i := op.Index()
	if i < 0 {
		return ""
	}
	return c.States[i]
}

// CanTransition applies the per-operation rules: any move is allowed except
// that completed may only be followed by not_applicable.
func (c *Checklist) CanTransition(op Operation, to id.TaskStatus) error {
	i := op.Index()
	if i < 0 {
		return dErrors.NewField(dErrors.CodeInvalidInput, "operation", "unknown checklist operation "+string(op))
	}
	if !to.IsValid() {
		return dErrors.NewField(dErrors.CodeInvalidInput, "status", "unknown status "+string(to))
	}
	from := c.States[i]
	if from == id.TaskCompleted && to != id.TaskCompleted && to != id.TaskNotApplicable {
		return dErrors.NewField(dErrors.CodeIllegalTransition, "status",
			string(op)+" is completed and may only become not_applicable")
	}
	return nil
}

// ApplyTransition sets the state and reports whether anything changed.
func (c *Checklist) ApplyTransition(op Operation, to id.TaskStatus, now time.Time) bool {
	i := op.Index()
	if c.States[i] == to {
		return false
	}
	c.States[i] = to
	c.UpdatedAt = now
	return true
}

func (c Checklist) MarshalJSON() ([]byte, error) {
	ops := make(map[string]id.TaskStatus, NumOperations)
	for i, op := range Operations {
		ops[string(op)] = c.States[i]
	}
	return json.Marshal(struct {
		BodyID     id.BodyID                `json:"body_id"`
		Operations map[string]id.TaskStatus `json:"operations"`
		UpdatedAt  time.Time                `json:"updated_at"`
	}{c.BodyID, ops, c.UpdatedAt})
}
