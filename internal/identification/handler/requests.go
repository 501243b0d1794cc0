package handler

import (
	"strings"

	"dvi/internal/identification/models"
	"dvi/internal/identification/service"
	id "dvi/pkg/domain"
	dErrors "dvi/pkg/domain-errors"
)

type openRequest struct {
	Body            string `json:"body"`
	ClaimedIdentity string `json:"claimed_identity"`
	IdentifiedBy    string `json:"identified_by"`
	Method          string `json:"method"`
	Comment         string `json:"comment"`

	input service.OpenInput
}

func (r *openRequest) Normalize() {
	r.Body = strings.TrimSpace(r.Body)
	r.ClaimedIdentity = strings.TrimSpace(r.ClaimedIdentity)
	r.IdentifiedBy = strings.TrimSpace(r.IdentifiedBy)
	r.Method = strings.TrimSpace(r.Method)
}

func (r *openRequest) Validate() error {
	bodyID, err := id.ParseBodyID(r.Body)
	if err != nil {
		return dErrors.WithField(err, "body")
	}
	identity, err := id.ParsePersonRef(r.ClaimedIdentity)
	if err != nil {
		return dErrors.WithField(err, "claimed_identity")
	}
	method, err := models.ParseMethod(r.Method)
	if err != nil {
		return err
	}
	r.input = service.OpenInput{
		Body:            bodyID,
		ClaimedIdentity: identity,
		IdentifiedBy:    id.PersonRef(r.IdentifiedBy),
		Method:          method,
		Comment:         r.Comment,
	}
	return nil
}

type advanceRequest struct {
	Status   string `json:"status"`
	Method   string `json:"method"`
	Override bool   `json:"override"`
	Reason   string `json:"reason"`

	input service.AdvanceInput
}

func (r *advanceRequest) Normalize() {
	r.Reason = strings.TrimSpace(r.Reason)
}

func (r *advanceRequest) Validate() error {
	to, err := models.ParseStatus(r.Status)
	if err != nil {
		return err
	}
	in := service.AdvanceInput{To: to, Override: r.Override, Reason: r.Reason}
	if r.Method != "" {
		if in.Method, err = models.ParseMethod(r.Method); err != nil {
			return err
		}
	}
	r.input = in
	return nil
}

type revokeRequest struct {
	Reason string `json:"reason"`
}

func (r *revokeRequest) Normalize() { r.Reason = strings.TrimSpace(r.Reason) }

func (r *revokeRequest) Validate() error {
	if r.Reason == "" {
		return dErrors.NewField(dErrors.CodeInvalidInput, "reason", "reason is required")
	}
	return nil
}
