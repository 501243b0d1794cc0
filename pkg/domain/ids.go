// Package domain holds identifier primitives shared by every DVI context.
//
// Internal primary keys are typed UUIDs so a MorgueID can never be passed where a
// BodyID is expected. References into external registries (persons, locations)
// are opaque strings owned by those registries.
package domain

import (
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"

	dErrors "dvi/pkg/domain-errors"
)

type (
	BodyID            uuid.UUID
	MorgueID          uuid.UUID
	RecoveryRequestID uuid.UUID
	ClaimID           uuid.UUID
	EventID           uuid.UUID
)

// PersonRef is an opaque reference issued by the external person registry.
type PersonRef string

// LocationRef is an opaque reference issued by the external location registry.
type LocationRef string

// maxRefLength bounds external references accepted at trust boundaries.
const maxRefLength = 128

// NewOpaqueID returns a time-ordered UUID (v7) so that lexical order of ids
// follows creation order. Falls back to a random v4 if the clock source fails.
func NewOpaqueID() uuid.UUID {
	u, err := uuid.NewV7()
	if err != nil {
		return uuid.New()
	}
	return u
}

func NewBodyID() BodyID                       { return BodyID(NewOpaqueID()) }
func NewMorgueID() MorgueID                   { return MorgueID(NewOpaqueID()) }
func NewRecoveryRequestID() RecoveryRequestID { return RecoveryRequestID(NewOpaqueID()) }
func NewClaimID() ClaimID                     { return ClaimID(NewOpaqueID()) }
func NewEventID() EventID                     { return EventID(NewOpaqueID()) }

func parseUUID(kind, s string) (uuid.UUID, error) {
	if s == "" {
		return uuid.Nil, dErrors.New(dErrors.CodeInvalidInput, kind+" is required")
	}
	if len(s) > 64 || !utf8.ValidString(s) {
		return uuid.Nil, dErrors.New(dErrors.CodeInvalidInput, "invalid "+kind)
	}
	u, err := uuid.Parse(s)
	if err != nil {
		return uuid.Nil, dErrors.New(dErrors.CodeInvalidInput, "invalid "+kind)
	}
	if u == uuid.Nil {
		return uuid.Nil, dErrors.New(dErrors.CodeInvalidInput, "invalid "+kind)
	}
	return u, nil
}

func ParseBodyID(s string) (BodyID, error) {
	u, err := parseUUID("body id", s)
	return BodyID(u), err
}

func ParseMorgueID(s string) (MorgueID, error) {
	u, err := parseUUID("morgue id", s)
	return MorgueID(u), err
}

func ParseRecoveryRequestID(s string) (RecoveryRequestID, error) {
	u, err := parseUUID("recovery request id", s)
	return RecoveryRequestID(u), err
}

func ParseClaimID(s string) (ClaimID, error) {
	u, err := parseUUID("claim id", s)
	return ClaimID(u), err
}

func (id BodyID) String() string            { return uuid.UUID(id).String() }
func (id MorgueID) String() string          { return uuid.UUID(id).String() }
func (id RecoveryRequestID) String() string { return uuid.UUID(id).String() }
func (id ClaimID) String() string           { return uuid.UUID(id).String() }
func (id EventID) String() string           { return uuid.UUID(id).String() }

func (id BodyID) IsNil() bool            { return uuid.UUID(id) == uuid.Nil }
func (id MorgueID) IsNil() bool          { return uuid.UUID(id) == uuid.Nil }
func (id RecoveryRequestID) IsNil() bool { return uuid.UUID(id) == uuid.Nil }
func (id ClaimID) IsNil() bool           { return uuid.UUID(id) == uuid.Nil }

func (id BodyID) MarshalText() ([]byte, error) { return []byte(id.String()), nil }
func (id *BodyID) UnmarshalText(b []byte) error {
	parsed, err := ParseBodyID(string(b))
	if err != nil {
		return err
	}
	*id = parsed
	return nil
}

func (id MorgueID) MarshalText() ([]byte, error) { return []byte(id.String()), nil }
func (id *MorgueID) UnmarshalText(b []byte) error {
	parsed, err := ParseMorgueID(string(b))
	if err != nil {
		return err
	}
	*id = parsed
	return nil
}

func (id RecoveryRequestID) MarshalText() ([]byte, error) { return []byte(id.String()), nil }
func (id *RecoveryRequestID) UnmarshalText(b []byte) error {
	parsed, err := ParseRecoveryRequestID(string(b))
	if err != nil {
		return err
	}
	*id = parsed
	return nil
}

func (id ClaimID) MarshalText() ([]byte, error) { return []byte(id.String()), nil }
func (id *ClaimID) UnmarshalText(b []byte) error {
	parsed, err := ParseClaimID(string(b))
	if err != nil {
		return err
	}
	*id = parsed
	return nil
}

// ParsePersonRef validates an external person reference at a trust boundary.
// Whether the person exists is the registry's decision, not ours.
func ParsePersonRef(s string) (PersonRef, error) {
	ref, err := parseRef("person reference", s)
	return PersonRef(ref), err
}

// ParseLocationRef validates an external location reference at a trust boundary.
func ParseLocationRef(s string) (LocationRef, error) {
	ref, err := parseRef("location reference", s)
	return LocationRef(ref), err
}

func parseRef(kind, s string) (string, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", dErrors.New(dErrors.CodeInvalidInput, kind+" is required")
	}
	if len(s) > maxRefLength || !utf8.ValidString(s) || strings.ContainsRune(s, 0) {
		return "", dErrors.New(dErrors.CodeInvalidInput, "invalid "+kind)
	}
	return s, nil
}

func (r PersonRef) String() string   { return string(r) }
func (r LocationRef) String() string { return string(r) }

func (id EventID) MarshalText() ([]byte, error) { return []byte(id.String()), nil }
func (id *EventID) UnmarshalText(b []byte) error {
	u, err := parseUUID("event id", string(b))
	if err != nil {
		return err
	}
	*id = EventID(u)
	return nil
}
