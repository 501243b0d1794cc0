package models

import (
	"strings"
	"time"
	"unicode/utf8"

	id "dvi/pkg/domain"
	dErrors "dvi/pkg/domain-errors"
)

const maxNameLength = 128

// Morgue is a facility holding bodies. Names are unique among live morgues;
// a retired morgue keeps its bodies but accepts no new assignments.
type Morgue struct {
	ID          id.MorgueID    `json:"id"`
	Name        string         `json:"name"`
	Description string         `json:"description"`
	Location    id.LocationRef `json:"location"`
	RetiredAt   *time.Time     `json:"retired_at,omitempty"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
}

func NewMorgue(morgueID id.MorgueID, name, description string, location id.LocationRef, now time.Time) (*Morgue, error) {
	name, err := ValidateName(name)
	if err != nil {
		return nil, err
	}
	if location == "" {
		return nil, dErrors.NewField(dErrors.CodeInvalidInput, "location", "location is required")
	}
	return &Morgue{
		ID:          morgueID,
		Name:        name,
		Description: description,
		Location:    location,
		CreatedAt:   now,
		UpdatedAt:   now,
	}, nil
}

func ValidateName(name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", dErrors.NewField(dErrors.CodeInvalidInput, "name", "name is required")
	}
	if utf8.RuneCountInString(name) > maxNameLength {
		return "", dErrors.NewField(dErrors.CodeInvalidInput, "name", "name must be 128 characters or less")
	}
	return name, nil
}

func (m *Morgue) IsRetired() bool { return m.RetiredAt != nil }

func (m *Morgue) CanRetire() error {
	if m.IsRetired() {
		return dErrors.New(dErrors.CodeIllegalTransition, "morgue is already retired")
	}
	return nil
}

func (m *Morgue) ApplyRetire(now time.Time) {
	t := now
	m.RetiredAt = &t
	m.UpdatedAt = now
}

// CanHoldBodies reports whether bodies may be newly assigned here.
func (m *Morgue) CanHoldBodies() error {
	if m.IsRetired() {
		return dErrors.NewField(dErrors.CodeMorgueRetired, "morgue", "morgue "+m.Name+" is retired")
	}
	return nil
}

// Update carries optional changes to a morgue. Nil fields are left alone.
type Update struct {
	Name        *string
	Description *string
	Location    *id.LocationRef
}

// ApplyUpdate validates and applies u, returning the names of the fields
// that actually changed.
func (m *Morgue) ApplyUpdate(u Update, now time.Time) ([]string, error) {
	var changed []string
	if u.Name != nil {
		name, err := ValidateName(*u.Name)
		if err != nil {
			return nil, err
		}
		if name != m.Name {
			m.Name = name
			changed = append(changed, "name")
		}
	}
	if u.Description != nil && *u.Description != m.Description {
		m.Description = *u.Description
		changed = append(changed, "description")
	}
	if u.Location != nil && *u.Location != m.Location {
		m.Location = *u.Location
		changed = append(changed, "location")
	}
	if len(changed) > 0 {
		m.UpdatedAt = now
	}
	return changed, nil
}
