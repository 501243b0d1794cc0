package models

import (
	"slices"
	"time"

	id "dvi/pkg/domain"
	dErrors "dvi/pkg/domain-errors"
)

// MaxBodies bounds bodies_found and bodies_recovered.
const MaxBodies = 99999

// RecoveryRequest records the need to retrieve bodies from a place.
//
// Invariants:
//   - DateFound is not in the future
//   - 0 <= BodiesRecovered <= BodiesFound <= MaxBodies
//   - Terminal statuses (completed, not_applicable, not_possible) are final
type RecoveryRequest struct {
	ID              id.RecoveryRequestID `json:"id"`
	DateFound       time.Time            `json:"date_found"`
	Marker          string               `json:"marker"`
	Finder          id.PersonRef         `json:"finder,omitempty"`
	BodiesFound     int                  `json:"bodies_found"`
	BodiesRecovered int                  `json:"bodies_recovered"`
	Description     string               `json:"description"`
	Location        id.LocationRef       `json:"location"`
	Status          id.TaskStatus        `json:"status"`
	AssignedTo      id.PersonRef         `json:"assigned_to,omitempty"`
	CreatedAt       time.Time            `json:"created_at"`
	UpdatedAt       time.Time            `json:"updated_at"`
}

// NewRecoveryRequest validates inputs and returns a request in not_started.
// Finder and location must already be resolved by the caller.
func NewRecoveryRequest(reqID id.RecoveryRequestID, dateFound time.Time, marker string, finder id.PersonRef,
	location id.LocationRef, bodiesFound int, description string, now time.Time) (*RecoveryRequest, error) {
	if dateFound.IsZero() {
		return nil, dErrors.NewField(dErrors.CodeInvalidInput, "date_found", "date_found is required")
	}
	if dateFound.After(now) {
		return nil, dErrors.NewField(dErrors.CodeFutureDate, "date_found", "date_found is in the future")
	}
	if err := ValidateCount("bodies_found", bodiesFound); err != nil {
		return nil, err
	}
	if location == "" {
		return nil, dErrors.NewField(dErrors.CodeInvalidInput, "location", "location is required")
	}
	return &RecoveryRequest{
		ID:          reqID,
		DateFound:   dateFound.UTC(),
		Marker:      marker,
		Finder:      finder,
		BodiesFound: bodiesFound,
		Description: description,
		Location:    location,
		Status:      id.TaskNotStarted,
		CreatedAt:   now,
		UpdatedAt:   now,
	}, nil
}

// ValidateCount rejects negative and out-of-range counters.
func ValidateCount(field string, n int) error {
	if n < 0 {
		return dErrors.NewField(dErrors.CodeNegativeCount, field, field+" must not be negative")
	}
	if n > MaxBodies {
		return dErrors.NewField(dErrors.CodeCountOutOfRange, field, field+" must be at most 99999")
	}
	return nil
}

func (r *RecoveryRequest) illegal(to id.TaskStatus) error {
	return dErrors.NewField(dErrors.CodeIllegalTransition, "status",
		"cannot move recovery request from "+string(r.Status)+" to "+string(to))
}

// CanAssign allows not_started -> assigned and reassignment while assigned.
func (r *RecoveryRequest) CanAssign() error {
	if r.Status != id.TaskNotStarted && r.Status != id.TaskAssigned {
		return r.illegal(id.TaskAssigned)
	}
	return nil
}

func (r *RecoveryRequest) ApplyAssign(actor id.PersonRef, now time.Time) {
	r.Status = id.TaskAssigned
	r.AssignedTo = actor
	r.UpdatedAt = now
}

// CanProgress allows not_started|assigned -> in_progress.
func (r *RecoveryRequest) CanProgress() error {
	if r.Status != id.TaskNotStarted && r.Status != id.TaskAssigned {
		return r.illegal(id.TaskInProgress)
	}
	return nil
}

func (r *RecoveryRequest) ApplyProgress(now time.Time) {
	r.Status = id.TaskInProgress
	r.UpdatedAt = now
}

// CanComplete allows any non-terminal status to reach a terminal one.
func (r *RecoveryRequest) CanComplete(terminal id.TaskStatus) error {
	if !terminal.IsTerminal() {
		return dErrors.NewField(dErrors.CodeInvalidInput, "status", string(terminal)+" is not a terminal status")
	}
	if r.Status.IsTerminal() {
		return r.illegal(terminal)
	}
	return nil
}

func (r *RecoveryRequest) ApplyComplete(terminal id.TaskStatus, now time.Time) {
	r.Status = terminal
	r.UpdatedAt = now
}

// SetRecovered updates bodies_recovered, keeping it within bodies_found.
func (r *RecoveryRequest) SetRecovered(n int, now time.Time) error {
	if err := ValidateCount("bodies_recovered", n); err != nil {
		return err
	}
	if n > r.BodiesFound {
		return dErrors.NewField(dErrors.CodeExceedsFound, "bodies_recovered", "bodies_recovered exceeds bodies_found")
	}
	r.BodiesRecovered = n
	r.UpdatedAt = now
	return nil
}

// SetFound updates bodies_found; it may not drop below bodies_recovered.
func (r *RecoveryRequest) SetFound(n int, now time.Time) error {
	if err := ValidateCount("bodies_found", n); err != nil {
		return err
	}
	if n < r.BodiesRecovered {
		return dErrors.NewField(dErrors.CodeExceedsFound, "bodies_found", "bodies_recovered would exceed bodies_found")
	}
	r.BodiesFound = n
	r.UpdatedAt = now
	return nil
}

// Filter narrows ListRecoveryRequests. Zero fields match everything.
type Filter struct {
	Location id.LocationRef
	From     time.Time
	To       time.Time
	Statuses []id.TaskStatus
	Limit    int
	Offset   int
}

// Matches reports whether r passes the filter (used by in-memory stores).
func (f Filter) Matches(r *RecoveryRequest) bool {
	if f.Location != "" && r.Location != f.Location {
		return false
	}
	if !f.From.IsZero() && r.DateFound.Before(f.From) {
		return false
	}
	if !f.To.IsZero() && r.DateFound.After(f.To) {
		return false
	}
	if len(f.Statuses) > 0 && !slices.Contains(f.Statuses, r.Status) {
		return false
	}
	return true
}

// Less orders requests by date_found descending, then id descending.
func Less(a, b *RecoveryRequest) bool {
	if !a.DateFound.Equal(b.DateFound) {
		return a.DateFound.After(b.DateFound)
	}
	return a.ID.String() > b.ID.String()
}
