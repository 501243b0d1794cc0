package handler

import (
	"strings"
	"time"

	"dvi/internal/body/models"
	"dvi/internal/body/service"
	"dvi/internal/labels"
	id "dvi/pkg/domain"
	dErrors "dvi/pkg/domain-errors"
)

// Labels are taken verbatim: surrounding whitespace is part of the tag.
type createRequest struct {
	Label            string          `json:"label"`
	RecoveryRequest  string          `json:"recovery_request"`
	Morgue           string          `json:"morgue"`
	DateOfRecovery   time.Time       `json:"date_of_recovery"`
	RecoveryDetails  string          `json:"recovery_details"`
	ApparentGender   string          `json:"apparent_gender"`
	ApparentAgeGroup string          `json:"apparent_age_group"`
	PlaceOfRecovery  string          `json:"place_of_recovery"`
	Observed         models.Observed `json:"observed"`

	input service.CreateInput
}

func (r *createRequest) Normalize() {
	r.RecoveryRequest = strings.TrimSpace(r.RecoveryRequest)
	r.Morgue = strings.TrimSpace(r.Morgue)
	r.PlaceOfRecovery = strings.TrimSpace(r.PlaceOfRecovery)
}

// Validate parses the payload into input.
func (r *createRequest) Validate() error {
	if err := labels.CheckFormat(r.Label); err != nil {
		return err
	}
	if r.DateOfRecovery.IsZero() {
		return dErrors.NewField(dErrors.CodeInvalidInput, "date_of_recovery", "date_of_recovery is required")
	}
	if _, err := id.ParseLocationRef(r.PlaceOfRecovery); err != nil {
		return dErrors.WithField(err, "place_of_recovery")
	}
	in := service.CreateInput{
		Label:           r.Label,
		DateOfRecovery:  r.DateOfRecovery,
		RecoveryDetails: r.RecoveryDetails,
		PlaceOfRecovery: id.LocationRef(r.PlaceOfRecovery),
		Observed:        r.Observed,
	}
	var err error
	if r.Morgue != "" {
		if in.Morgue, err = id.ParseMorgueID(r.Morgue); err != nil {
			return dErrors.WithField(err, "morgue")
		}
	}
	if r.RecoveryRequest != "" {
		if in.RecoveryRequest, err = id.ParseRecoveryRequestID(r.RecoveryRequest); err != nil {
			return dErrors.WithField(err, "recovery_request")
		}
	}
	if in.ApparentGender, err = models.ParseGender(r.ApparentGender); err != nil {
		return err
	}
	if in.ApparentAgeGroup, err = models.ParseAgeGroup(r.ApparentAgeGroup); err != nil {
		return err
	}
	r.input = in
	return nil
}

type detailsRequest struct {
	RecoveryDetails  *string `json:"recovery_details"`
	ApparentGender   *string `json:"apparent_gender"`
	ApparentAgeGroup *string `json:"apparent_age_group"`

	update service.DetailsUpdate
}

func (r *detailsRequest) Validate() error {
	if r.RecoveryDetails == nil && r.ApparentGender == nil && r.ApparentAgeGroup == nil {
		return dErrors.New(dErrors.CodeInvalidInput, "at least one of recovery_details, apparent_gender, apparent_age_group is required")
	}
	u := service.DetailsUpdate{RecoveryDetails: r.RecoveryDetails}
	if r.ApparentGender != nil {
		g, err := models.ParseGender(*r.ApparentGender)
		if err != nil {
			return err
		}
		u.ApparentGender = &g
	}
	if r.ApparentAgeGroup != nil {
		ag, err := models.ParseAgeGroup(*r.ApparentAgeGroup)
		if err != nil {
			return err
		}
		u.ApparentAgeGroup = &ag
	}
	r.update = u
	return nil
}

type observedRequest struct {
	models.ObservedUpdate
}

func (r *observedRequest) Validate() error {
	if r.IsEmpty() {
		return dErrors.New(dErrors.CodeInvalidInput, "at least one observed flag is required")
	}
	return nil
}

type reassignRequest struct {
	Morgue string    `json:"morgue"`
	At     time.Time `json:"at"`

	morgueID id.MorgueID
}

func (r *reassignRequest) Validate() error {
	morgueID, err := id.ParseMorgueID(strings.TrimSpace(r.Morgue))
	if err != nil {
		return dErrors.WithField(err, "morgue")
	}
	r.morgueID = morgueID
	return nil
}

type relabelRequest struct {
	Label string `json:"label"`
}

func (r *relabelRequest) Validate() error {
	return labels.CheckFormat(r.Label)
}

type checklistRequest struct {
	Status string `json:"status"`
}

func (r *checklistRequest) Validate() error {
	_, err := id.ParseTaskStatus(r.Status)
	return err
}

type effectsRequest struct {
	Clothing  string `json:"clothing"`
	Jewellery string `json:"jewellery"`
	Footwear  string `json:"footwear"`
	Watch     string `json:"watch"`
	Other     string `json:"other"`
}

func (r *effectsRequest) Normalize() {
	for _, f := range []*string{&r.Clothing, &r.Jewellery, &r.Footwear, &r.Watch, &r.Other} {
		*f = strings.TrimSpace(*f)
	}
}

func (r *effectsRequest) effects() models.PersonalEffects {
	return models.PersonalEffects{
		Clothing:  r.Clothing,
		Jewellery: r.Jewellery,
		Footwear:  r.Footwear,
		Watch:     r.Watch,
		Other:     r.Other,
	}
}
