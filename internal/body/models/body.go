package models

import (
	"time"
	"unicode/utf8"

	id "dvi/pkg/domain"
	dErrors "dvi/pkg/domain-errors"
)

const maxTextLength = 4000

// Observed holds the four boolean condition flags recorded at recovery.
type Observed struct {
	Incomplete         bool `json:"incomplete"`
	MajorOutwardDamage bool `json:"major_outward_damage"`
	BurnedOrCharred    bool `json:"burned_or_charred"`
	Decomposed         bool `json:"decomposed"`
}

// ObservedUpdate carries optional flag changes. Nil fields are left alone.
type ObservedUpdate struct {
	Incomplete         *bool `json:"incomplete"`
	MajorOutwardDamage *bool `json:"major_outward_damage"`
	BurnedOrCharred    *bool `json:"burned_or_charred"`
	Decomposed         *bool `json:"decomposed"`
}

func (u ObservedUpdate) IsEmpty() bool {
	return u.Incomplete == nil && u.MajorOutwardDamage == nil && u.BurnedOrCharred == nil && u.Decomposed == nil
}

// Apply sets the given flags and reports whether any changed.
func (o *Observed) Apply(u ObservedUpdate) bool {
	before := *o
	set := func(dst *bool, v *bool) {
		if v != nil {
			*dst = *v
		}
	}
	set(&o.Incomplete, u.Incomplete)
	set(&o.MajorOutwardDamage, u.MajorOutwardDamage)
	set(&o.BurnedOrCharred, u.BurnedOrCharred)
	set(&o.Decomposed, u.Decomposed)
	return *o != before
}

// Body is a recovered remains record addressed by its label.
//
// ClaimCount counts every identification claim ever opened against the body.
// It never decreases; a non-zero count locks the label and forbids deletion.
type Body struct {
	ID               id.BodyID            `json:"id"`
	Label            string               `json:"label"`
	Morgue           id.MorgueID          `json:"morgue,omitzero"`
	RecoveryRequest  id.RecoveryRequestID `json:"recovery_request,omitzero"`
	DateOfRecovery   time.Time            `json:"date_of_recovery"`
	RecoveryDetails  string               `json:"recovery_details"`
	ApparentGender   Gender               `json:"apparent_gender"`
	ApparentAgeGroup AgeGroup             `json:"apparent_age_group"`
	PlaceOfRecovery  id.LocationRef       `json:"place_of_recovery"`
	Observed         Observed             `json:"observed"`
	ClaimCount       int                  `json:"claim_count"`
	CreatedAt        time.Time            `json:"created_at"`
	UpdatedAt        time.Time            `json:"updated_at"`
}

// NewBodyParams carries the validated inputs of create_body.
type NewBodyParams struct {
	Label            string
	Morgue           id.MorgueID
	RecoveryRequest  id.RecoveryRequestID
	DateOfRecovery   time.Time
	RecoveryDetails  string
	ApparentGender   Gender
	ApparentAgeGroup AgeGroup
	PlaceOfRecovery  id.LocationRef
	Observed         Observed
}

// NewBody checks the record-local rules. Label uniqueness and the recovery
// request date bound need the store and are checked by the service.
func NewBody(bodyID id.BodyID, p NewBodyParams, now time.Time) (*Body, error) {
	if p.DateOfRecovery.IsZero() {
		return nil, dErrors.NewField(dErrors.CodeInvalidInput, "date_of_recovery", "date_of_recovery is required")
	}
	if p.DateOfRecovery.After(now) {
		return nil, dErrors.NewField(dErrors.CodeFutureDate, "date_of_recovery", "date_of_recovery is in the future")
	}
	if p.PlaceOfRecovery == "" {
		return nil, dErrors.NewField(dErrors.CodeInvalidInput, "place_of_recovery", "place_of_recovery is required")
	}
	if err := ValidateText("recovery_details", p.RecoveryDetails); err != nil {
		return nil, err
	}
	if p.ApparentGender == "" {
		p.ApparentGender = GenderUnknown
	}
	if p.ApparentAgeGroup == "" {
		p.ApparentAgeGroup = AgeUnknown
	}
	return &Body{
		ID:               bodyID,
		Label:            p.Label,
		Morgue:           p.Morgue,
		RecoveryRequest:  p.RecoveryRequest,
		DateOfRecovery:   p.DateOfRecovery.UTC(),
		RecoveryDetails:  p.RecoveryDetails,
		ApparentGender:   p.ApparentGender,
		ApparentAgeGroup: p.ApparentAgeGroup,
		PlaceOfRecovery:  p.PlaceOfRecovery,
		Observed:         p.Observed,
		CreatedAt:        now,
		UpdatedAt:        now,
	}, nil
}

// CheckFoundDate enforces date_of_recovery >= the request's date_found.
func (b *Body) CheckFoundDate(dateFound time.Time) error {
	if b.DateOfRecovery.Before(dateFound) {
		return dErrors.NewField(dErrors.CodeDateBeforeFound, "date_of_recovery",
			"date_of_recovery is before the recovery request's date_found")
	}
	return nil
}

func (b *Body) HasClaims() bool { return b.ClaimCount > 0 }

// CanRelabel refuses once any claim has referenced the body.
func (b *Body) CanRelabel() error {
	if b.HasClaims() {
		return dErrors.NewField(dErrors.CodeLabelLocked, "label", "label is locked by identification claims")
	}
	return nil
}

// CanDelete refuses once any claim has referenced the body.
func (b *Body) CanDelete() error {
	if b.HasClaims() {
		return dErrors.New(dErrors.CodeClaimLocked, "body is referenced by identification claims")
	}
	return nil
}

func (b *Body) ApplyClaimOpened(now time.Time) {
	b.ClaimCount++
	b.UpdatedAt = now
}

func ValidateText(field, s string) error {
	if utf8.RuneCountInString(s) > maxTextLength {
		return dErrors.NewField(dErrors.CodeInvalidInput, field, field+" is too long")
	}
	return nil
}
