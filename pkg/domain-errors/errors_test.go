package domainerrors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCodedErrors(t *testing.T) {
	t.Run("wrap keeps cause reachable", func(t *testing.T) {
		cause := errors.New("connection refused")
		err := Wrap(cause, CodeStorageUnavailable, "failed to load body")

		require.Error(t, err)
		assert.True(t, HasCode(err, CodeStorageUnavailable))
		assert.ErrorIs(t, err, cause)
		assert.Contains(t, err.Error(), "connection refused")
	})

	t.Run("wrap of nil is nil", func(t *testing.T) {
		assert.NoError(t, Wrap(nil, CodeInternal, "ignored"))
	})

	t.Run("outermost code wins", func(t *testing.T) {
		inner := New(CodeDuplicateLabel, "label taken")
		outer := Wrap(inner, CodeInternal, "create failed")
		assert.Equal(t, CodeInternal, CodeOf(outer))
		assert.False(t, HasCode(outer, CodeDuplicateLabel))
	})

	t.Run("code survives fmt wrapping", func(t *testing.T) {
		err := fmt.Errorf("context: %w", New(CodeUnknownBody, "body not found"))
		assert.True(t, Is(err, CodeUnknownBody))
	})

	t.Run("plain errors map to internal", func(t *testing.T) {
		assert.Equal(t, CodeInternal, CodeOf(errors.New("boom")))
	})
}

func TestFieldOf(t *testing.T) {
	err := NewField(CodeFutureDate, "date_of_recovery", "date is in the future")
	assert.Equal(t, "date_of_recovery", FieldOf(err))

	wrapped := Wrap(err, CodeFutureDate, "create body")
	assert.Equal(t, "date_of_recovery", FieldOf(wrapped))

	assert.Empty(t, FieldOf(New(CodeInternal, "x")))
	assert.Equal(t, "label", FieldOf(WithField(New(CodeEmptyLabel, "label is required"), "label")))
	assert.Empty(t, FieldOf(nil))
}

func TestKindsAndStatus(t *testing.T) {
	tests := []struct {
		code   Code
		kind   Kind
		status int
	}{
		{CodeEmptyLabel, KindValidation, http.StatusUnprocessableEntity},
		{CodeInsufficientEvidence, KindValidation, http.StatusUnprocessableEntity},
		{CodeInvalidInput, KindValidation, http.StatusBadRequest},
		{CodeUnknownClaim, KindReference, http.StatusNotFound},
		{CodeAlreadyConfirmed, KindConflict, http.StatusConflict},
		{CodeForbidden, KindAuthorization, http.StatusForbidden},
		{CodeUnauthorized, KindAuthorization, http.StatusUnauthorized},
		{CodeTrackerUnavailable, KindInfrastructure, http.StatusServiceUnavailable},
		{CodeTimeout, KindInfrastructure, http.StatusGatewayTimeout},
		{Code("mystery"), KindInfrastructure, http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(string(tt.code), func(t *testing.T) {
			assert.Equal(t, tt.kind, KindOf(tt.code))
			assert.Equal(t, tt.status, ToHTTPStatus(tt.code))
		})
	}
}
