// Package domainerrors carries stable, coded errors from the core to its callers.
//
// Every failure surfaced by a service has a Code (a stable machine kind), a
// human-readable message, and optionally the offending input field. Codes group
// into Kinds so transports can map whole families (validation, reference,
// conflict, authorization, infrastructure) without enumerating every code.
package domainerrors

import (
	"errors"
	"fmt"
	"net/http"
)

type Code string

const (
	// Validation
	CodeEmptyLabel           Code = "empty_label"
	CodeDuplicateLabel       Code = "duplicate_label"
	CodeFutureDate           Code = "future_date"
	CodeNegativeCount        Code = "negative_count"
	CodeCountOutOfRange      Code = "count_out_of_range"
	CodeExceedsFound         Code = "exceeds_found"
	CodeDateBeforeFound      Code = "date_before_found"
	CodeBeforeCurrent        Code = "before_current_location"
	CodeIllegalTransition    Code = "illegal_transition"
	CodeInsufficientEvidence Code = "insufficient_evidence"
	CodeLabelLocked          Code = "label_locked"
	CodeInvalidInput         Code = "invalid_input"
	CodeBadRequest           Code = "bad_request"

	// Reference
	CodeUnknownPerson   Code = "unknown_person"
	CodeUnknownLocation Code = "unknown_location"
	CodeUnknownMorgue   Code = "unknown_morgue"
	CodeUnknownRequest  Code = "unknown_request"
	CodeUnknownBody     Code = "unknown_body"
	CodeUnknownClaim    Code = "unknown_claim"

	// Conflict
	CodeDuplicateClaim         Code = "duplicate_claim"
	CodeAlreadyConfirmed       Code = "already_confirmed"
	CodeConcurrentModification Code = "concurrent_modification"
	CodeDuplicateName          Code = "duplicate_name"
	CodeMorgueRetired          Code = "morgue_retired"
	CodeMorgueInUse            Code = "morgue_in_use"
	CodeClaimLocked            Code = "claim_locked"

	// Authorization
	CodeForbidden    Code = "forbidden"
	CodeUnauthorized Code = "unauthorized"

	// Infrastructure
	CodeStorageUnavailable Code = "storage_unavailable"
	CodeTrackerUnavailable Code = "tracker_unavailable"
	CodeTimeout            Code = "timeout"
	CodeInternal           Code = "internal_error"
)

// Kind is the family a Code belongs to.
type Kind string

const (
	KindValidation     Kind = "validation"
	KindReference      Kind = "reference"
	KindConflict       Kind = "conflict"
	KindAuthorization  Kind = "authorization"
	KindInfrastructure Kind = "infrastructure"
)

var codeKinds = map[Code]Kind{
	CodeEmptyLabel:           KindValidation,
	CodeDuplicateLabel:       KindValidation,
	CodeFutureDate:           KindValidation,
	CodeNegativeCount:        KindValidation,
	CodeCountOutOfRange:      KindValidation,
	CodeExceedsFound:         KindValidation,
	CodeDateBeforeFound:      KindValidation,
	CodeBeforeCurrent:        KindValidation,
	CodeIllegalTransition:    KindValidation,
	CodeInsufficientEvidence: KindValidation,
	CodeLabelLocked:          KindValidation,
	CodeInvalidInput:         KindValidation,
	CodeBadRequest:           KindValidation,

	CodeUnknownPerson:   KindReference,
	CodeUnknownLocation: KindReference,
	CodeUnknownMorgue:   KindReference,
	CodeUnknownRequest:  KindReference,
	CodeUnknownBody:     KindReference,
	CodeUnknownClaim:    KindReference,

	CodeDuplicateClaim:         KindConflict,
	CodeAlreadyConfirmed:       KindConflict,
	CodeConcurrentModification: KindConflict,
	CodeDuplicateName:          KindConflict,
	CodeMorgueRetired:          KindConflict,
	CodeMorgueInUse:            KindConflict,
	CodeClaimLocked:            KindConflict,

	CodeForbidden:    KindAuthorization,
	CodeUnauthorized: KindAuthorization,

	CodeStorageUnavailable: KindInfrastructure,
	CodeTrackerUnavailable: KindInfrastructure,
	CodeTimeout:            KindInfrastructure,
	CodeInternal:           KindInfrastructure,
}

// KindOf reports the family of a code. Unknown codes are infrastructure.
func KindOf(code Code) Kind {
	if k, ok := codeKinds[code]; ok {
		return k
	}
	return KindInfrastructure
}

// Error is the coded error type returned across service boundaries.
type Error struct {
	Code    Code
	Message string
	Field   string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Err
}

func New(code Code, msg string) error {
	return &Error{Code: code, Message: msg}
}

// NewField builds a coded error naming the offending input field.
func NewField(code Code, field, msg string) error {
	return &Error{Code: code, Message: msg, Field: field}
}

// WithField returns a copy of a coded error that names the offending field.
// Uncoded errors are returned unchanged.
func WithField(err error, field string) error {
	de, ok := As(err)
	if !ok {
		return err
	}
	cp := *de
	cp.Field = field
	return &cp
}

func Wrap(err error, code Code, msg string) error {
	if err == nil {
		return nil
	}
	return &Error{Code: code, Message: msg, Err: err}
}

// As returns the outermost coded error in the chain.
func As(err error) (*Error, bool) {
	var de *Error
	if errors.As(err, &de) {
		return de, true
	}
	return nil, false
}

// CodeOf returns the code of the outermost coded error, or CodeInternal.
func CodeOf(err error) Code {
	if de, ok := As(err); ok {
		return de.Code
	}
	return CodeInternal
}

// FieldOf returns the offending field recorded anywhere in the chain.
func FieldOf(err error) string {
	for err != nil {
		var de *Error
		if !errors.As(err, &de) {
			return ""
		}
		if de.Field != "" {
			return de.Field
		}
		err = de.Err
	}
	return ""
}

// HasCode reports whether the outermost coded error carries code.
func HasCode(err error, code Code) bool {
	if de, ok := As(err); ok {
		return de.Code == code
	}
	return false
}

// Is is an alias of HasCode kept for call sites that read better with it.
func Is(err error, code Code) bool {
	return HasCode(err, code)
}

// ToHTTPStatus maps a code to the status transports should answer with.
func ToHTTPStatus(code Code) int {
	switch code {
	case CodeUnauthorized:
		return http.StatusUnauthorized
	case CodeForbidden:
		return http.StatusForbidden
	case CodeTimeout:
		return http.StatusGatewayTimeout
	case CodeStorageUnavailable, CodeTrackerUnavailable:
		return http.StatusServiceUnavailable
	case CodeInternal:
		return http.StatusInternalServerError
	case CodeBadRequest, CodeInvalidInput:
		return http.StatusBadRequest
	}
	switch KindOf(code) {
	case KindValidation:
		return http.StatusUnprocessableEntity
	case KindReference:
		return http.StatusNotFound
	case KindConflict:
		return http.StatusConflict
	}
	return http.StatusInternalServerError
}
