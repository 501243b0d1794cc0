package handler

import (
	"strings"

	"dvi/internal/morgue/models"
	id "dvi/pkg/domain"
	dErrors "dvi/pkg/domain-errors"
)

type createRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Location    string `json:"location"`
}

func (r *createRequest) Normalize() {
	r.Name = strings.TrimSpace(r.Name)
	r.Location = strings.TrimSpace(r.Location)
}

func (r *createRequest) Validate() error {
	if _, err := models.ValidateName(r.Name); err != nil {
		return err
	}
	if _, err := id.ParseLocationRef(r.Location); err != nil {
		return dErrors.WithField(err, "location")
	}
	return nil
}

// updateRequest is a partial update; absent fields are untouched.
type updateRequest struct {
	Name        *string `json:"name"`
	Description *string `json:"description"`
	Location    *string `json:"location"`
}

func (r *updateRequest) Validate() error {
	if r.Name == nil && r.Description == nil && r.Location == nil {
		return dErrors.New(dErrors.CodeInvalidInput, "at least one of name, description, location is required")
	}
	if r.Name != nil {
		if _, err := models.ValidateName(*r.Name); err != nil {
			return err
		}
	}
	if r.Location != nil {
		if _, err := id.ParseLocationRef(strings.TrimSpace(*r.Location)); err != nil {
			return dErrors.WithField(err, "location")
		}
	}
	return nil
}

func (r *updateRequest) toUpdate() models.Update {
	u := models.Update{Name: r.Name, Description: r.Description}
	if r.Location != nil {
		loc := id.LocationRef(strings.TrimSpace(*r.Location))
		u.Location = &loc
	}
	return u
}
