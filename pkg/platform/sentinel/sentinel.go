package sentinel

import "errors"

// Sentinel errors for storage facts. Stores return these (optionally wrapped)
// so services can translate them into coded domain errors:
// - ErrNotFound: row does not exist
// - ErrConflict: a uniqueness constraint rejected the write
// - ErrInvalidState: row is in the wrong state for the write
// - ErrUnavailable: backend or external registry cannot be reached
//
// For validation errors, use pkg/domain-errors directly.
var (
	ErrNotFound     = errors.New("not found")
	ErrConflict     = errors.New("conflict")
	ErrInvalidState = errors.New("invalid state")
	ErrUnavailable  = errors.New("unavailable")
)
