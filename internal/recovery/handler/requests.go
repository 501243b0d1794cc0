package handler

import (
	"strings"
	"time"

	id "dvi/pkg/domain"
	dErrors "dvi/pkg/domain-errors"
)

type createRequest struct {
	Finder      string    `json:"finder"`
	DateFound   time.Time `json:"date_found"`
	Marker      string    `json:"marker"`
	Location    string    `json:"location"`
	BodiesFound int       `json:"bodies_found"`
	Description string    `json:"description"`
}

func (r *createRequest) Normalize() {
	r.Finder = strings.TrimSpace(r.Finder)
	r.Marker = strings.TrimSpace(r.Marker)
	r.Location = strings.TrimSpace(r.Location)
}

func (r *createRequest) Validate() error {
	if r.DateFound.IsZero() {
		return dErrors.NewField(dErrors.CodeInvalidInput, "date_found", "date_found is required")
	}
	if _, err := id.ParseLocationRef(r.Location); err != nil {
		return dErrors.WithField(err, "location")
	}
	return nil
}

type assignRequest struct {
	AssignedTo string `json:"assigned_to"`
}

func (r *assignRequest) Normalize() { r.AssignedTo = strings.TrimSpace(r.AssignedTo) }

func (r *assignRequest) Validate() error {
	if r.AssignedTo == "" {
		return dErrors.NewField(dErrors.CodeInvalidInput, "assigned_to", "assigned_to is required")
	}
	return nil
}

type completeRequest struct {
	Status string `json:"status"`
}

func (r *completeRequest) Validate() error {
	st, err := id.ParseTaskStatus(r.Status)
	if err != nil {
		return dErrors.WithField(err, "status")
	}
	if !st.IsTerminal() {
		return dErrors.NewField(dErrors.CodeInvalidInput, "status", "status must be completed, not_applicable or not_possible")
	}
	return nil
}

type countRequest struct {
	Count *int `json:"count"`
}

func (r *countRequest) Validate() error {
	if r.Count == nil {
		return dErrors.NewField(dErrors.CodeInvalidInput, "count", "count is required")
	}
	return nil
}
