package storage

import (
	"context"
	"errors"
	"fmt"

	dErrors "dvi/pkg/domain-errors"
	"dvi/pkg/platform/sentinel"
)

// Unique constraints shared by both implementations.
const (
	ConstraintBodyLabel      = "body_label_key"
	ConstraintMorgueName     = "morgue_live_name_idx"
	ConstraintClaimIdentity  = "claim_live_identity_idx"
	ConstraintClaimConfirmed = "claim_single_confirmed_idx"
)

// ErrConcurrentModification reports a serialization failure or deadlock.
var ErrConcurrentModification = errors.New("concurrent modification")

// ConflictError names the unique constraint a write violated.
type ConflictError struct {
	Constraint string
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("conflict on %s", e.Constraint)
}

func (e *ConflictError) Is(target error) bool {
	return target == sentinel.ErrConflict
}

func Conflict(constraint string) error {
	return &ConflictError{Constraint: constraint}
}

// ConflictOn reports whether err is a violation of constraint.
func ConflictOn(err error, constraint string) bool {
	var ce *ConflictError
	return errors.As(err, &ce) && ce.Constraint == constraint
}

// Translate maps storage failures onto coded errors. Coded errors pass
// through unchanged; ErrNotFound becomes notFound.
func Translate(err error, notFound dErrors.Code, what string) error {
	if err == nil {
		return nil
	}
	if _, ok := dErrors.As(err); ok {
		return err
	}
	switch {
	case errors.Is(err, sentinel.ErrNotFound):
		return dErrors.New(notFound, what+" not found")
	case errors.Is(err, ErrConcurrentModification):
		return dErrors.Wrap(err, dErrors.CodeConcurrentModification, "concurrent modification, retry the command")
	case errors.Is(err, context.DeadlineExceeded):
		return dErrors.Wrap(err, dErrors.CodeTimeout, "storage timed out")
	case errors.Is(err, context.Canceled):
		return dErrors.Wrap(err, dErrors.CodeTimeout, "command cancelled")
	default:
		return dErrors.Wrap(err, dErrors.CodeStorageUnavailable, "storage unavailable")
	}
}
