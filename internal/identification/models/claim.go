package models

import (
	"time"

	id "dvi/pkg/domain"
	dErrors "dvi/pkg/domain-errors"
)

// Method is the kind of evidence supporting an identification.
type Method string

const (
	MethodVisualRecognition   Method = "visual_recognition"
	MethodPhysicalDescription Method = "physical_description"
	MethodFingerprints        Method = "fingerprints"
	MethodDentalProfile       Method = "dental_profile"
	MethodDNAProfile          Method = "dna_profile"
	MethodCombined            Method = "combined_method"
	MethodOtherEvidence       Method = "other_evidence"
)

var methodCodes = map[Method]int{
	MethodVisualRecognition:   1,
	MethodPhysicalDescription: 2,
	MethodFingerprints:        3,
	MethodDentalProfile:       4,
	MethodDNAProfile:          5,
	MethodCombined:            6,
	MethodOtherEvidence:       9,
}

func ParseMethod(s string) (Method, error) {
	m := Method(s)
	if _, ok := methodCodes[m]; !ok {
		return "", dErrors.NewField(dErrors.CodeInvalidInput, "method", "unknown identification method "+s)
	}
	return m, nil
}

func MethodFromCode(code int) (Method, error) {
	for m, c := range methodCodes {
		if c == code {
			return m, nil
		}
	}
	return "", dErrors.NewField(dErrors.CodeInvalidInput, "method", "unknown identification method code")
}

func (m Method) Code() int { return methodCodes[m] }

// IsStrong reports whether m alone is enough to confirm an identification.
func (m Method) IsStrong() bool {
	switch m {
	case MethodFingerprints, MethodDentalProfile, MethodDNAProfile, MethodCombined:
		return true
	}
	return false
}

// Status is the state of one claim. Order matters: higher wins.
type Status string

const (
	StatusUnidentified Status = "unidentified"
	StatusPreliminary  Status = "preliminary"
	StatusConfirmed    Status = "confirmed"
)

var statusCodes = map[Status]int{
	StatusUnidentified: 1,
	StatusPreliminary:  2,
	StatusConfirmed:    3,
}

func ParseStatus(s string) (Status, error) {
	st := Status(s)
	if _, ok := statusCodes[st]; !ok {
		return "", dErrors.NewField(dErrors.CodeInvalidInput, "status", "unknown identification status "+s)
	}
	return st, nil
}

func StatusFromCode(code int) (Status, error) {
	for st, c := range statusCodes {
		if c == code {
			return st, nil
		}
	}
	return "", dErrors.NewField(dErrors.CodeInvalidInput, "status", "unknown identification status code")
}

func (s Status) Code() int { return statusCodes[s] }

// Claim asserts that a body is a known person.
//
// A claim is live until revoked. ConfirmedAt, once set, is never cleared and
// marks the claim as undeletable.
type Claim struct {
	ID              id.ClaimID   `json:"id"`
	Body            id.BodyID    `json:"body"`
	ClaimedIdentity id.PersonRef `json:"claimed_identity"`
	IdentifiedBy    id.PersonRef `json:"identified_by"`
	Method          Method       `json:"method"`
	Status          Status       `json:"status"`
	Comment         string       `json:"comment"`
	CreatedAt       time.Time    `json:"created_at"`
	UpdatedAt       time.Time    `json:"updated_at"`
	ConfirmedAt     *time.Time   `json:"confirmed_at,omitempty"`
	RevokedAt       *time.Time   `json:"revoked_at,omitempty"`
	RevokedBy       id.PersonRef `json:"revoked_by,omitempty"`
	RevokeReason    string       `json:"revoke_reason,omitempty"`
}

func NewClaim(claimID id.ClaimID, body id.BodyID, identity, identifiedBy id.PersonRef,
	method Method, comment string, now time.Time) (*Claim, error) {
	if identity == "" {
		return nil, dErrors.NewField(dErrors.CodeInvalidInput, "claimed_identity", "claimed_identity is required")
	}
	if identifiedBy == "" {
		return nil, dErrors.NewField(dErrors.CodeInvalidInput, "identified_by", "identified_by is required")
	}
	if _, ok := methodCodes[method]; !ok {
		return nil, dErrors.NewField(dErrors.CodeInvalidInput, "method", "unknown identification method "+string(method))
	}
	return &Claim{
		ID:              claimID,
		Body:            body,
		ClaimedIdentity: identity,
		IdentifiedBy:    identifiedBy,
		Method:          method,
		Status:          StatusUnidentified,
		Comment:         comment,
		CreatedAt:       now,
		UpdatedAt:       now,
	}, nil
}

func (c *Claim) IsRevoked() bool    { return c.RevokedAt != nil }
func (c *Claim) WasConfirmed() bool { return c.ConfirmedAt != nil }
func (c *Claim) IsConfirmed() bool  { return c.Status == StatusConfirmed }

func (c *Claim) illegal(to Status) error {
	return dErrors.NewField(dErrors.CodeIllegalTransition, "status",
		"cannot move claim from "+string(c.Status)+" to "+string(to))
}

// Advance describes a requested status change.
type Advance struct {
	To Status
	// Method, when set, replaces the claim's method as new evidence.
	Method Method
	// Override lets an elevated actor confirm without strong evidence.
	Override bool
}

// CanAdvance checks the transition table and the evidence rule:
//
//	unidentified -> preliminary
//	preliminary  -> confirmed | unidentified
//	confirmed    -> unidentified (revocation)
func (c *Claim) CanAdvance(a Advance) error {
	if c.IsRevoked() {
		return dErrors.NewField(dErrors.CodeIllegalTransition, "status", "claim has been revoked")
	}
	switch {
	case c.Status == StatusUnidentified && a.To == StatusPreliminary:
	case c.Status == StatusPreliminary && a.To == StatusConfirmed:
		method := c.Method
		if a.Method != "" {
			method = a.Method
		}
		if !method.IsStrong() && !a.Override {
			return dErrors.NewField(dErrors.CodeInsufficientEvidence, "method",
				string(method)+" is not sufficient to confirm an identification")
		}
	case c.Status == StatusPreliminary && a.To == StatusUnidentified:
	case c.Status == StatusConfirmed && a.To == StatusUnidentified:
	default:
		return c.illegal(a.To)
	}
	return nil
}

// ApplyAdvance moves the claim. Leaving confirmed counts as a revocation.
func (c *Claim) ApplyAdvance(a Advance, actor id.PersonRef, now time.Time) {
	if a.Method != "" {
		c.Method = a.Method
	}
	if c.Status == StatusConfirmed && a.To == StatusUnidentified {
		c.ApplyRevoke(actor, "demoted from confirmed", now)
		return
	}
	c.Status = a.To
	if a.To == StatusConfirmed && c.ConfirmedAt == nil {
		t := now
		c.ConfirmedAt = &t
	}
	c.UpdatedAt = now
}

func (c *Claim) CanRevoke() error {
	if c.IsRevoked() {
		return dErrors.NewField(dErrors.CodeIllegalTransition, "status", "claim is already revoked")
	}
	return nil
}

// ApplyRevoke returns the claim to unidentified and keeps it for audit.
func (c *Claim) ApplyRevoke(actor id.PersonRef, reason string, now time.Time) {
	t := now
	c.Status = StatusUnidentified
	c.RevokedAt = &t
	c.RevokedBy = actor
	c.RevokeReason = reason
	c.UpdatedAt = now
}

// CanDelete allows hard deletion only for claims that were never confirmed.
func (c *Claim) CanDelete() error {
	if c.WasConfirmed() {
		return dErrors.New(dErrors.CodeClaimLocked, "a claim that was ever confirmed cannot be deleted")
	}
	return nil
}

// EffectiveStatus is the highest status over a body's live claims.
func EffectiveStatus(claims []*Claim) Status {
	best := StatusUnidentified
	for _, c := range claims {
		if c.IsRevoked() {
			continue
		}
		if c.Status.Code() > best.Code() {
			best = c.Status
		}
	}
	return best
}

// Less orders claims by creation time, then id.
func Less(a, b *Claim) bool {
	if !a.CreatedAt.Equal(b.CreatedAt) {
		return a.CreatedAt.Before(b.CreatedAt)
	}
	return a.ID.String() < b.ID.String()
}

// BodyIdentification is the per-body summary surfaced to callers.
type BodyIdentification struct {
	Body            id.BodyID `json:"body"`
	EffectiveStatus Status    `json:"effective_status"`
	Claims          []*Claim  `json:"claims"`
}
