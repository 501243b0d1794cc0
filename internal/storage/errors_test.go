package storage

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	dErrors "dvi/pkg/domain-errors"
	"dvi/pkg/platform/sentinel"
)

func TestTranslate(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want dErrors.Code
	}{
		{"not found", fmt.Errorf("get body: %w", sentinel.ErrNotFound), dErrors.CodeUnknownBody},
		{"deadlock", ErrConcurrentModification, dErrors.CodeConcurrentModification},
		{"deadline", context.DeadlineExceeded, dErrors.CodeTimeout},
		{"backend", errors.New("connection refused"), dErrors.CodeStorageUnavailable},
		{"coded passes through", dErrors.New(dErrors.CodeDuplicateLabel, "x"), dErrors.CodeDuplicateLabel},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, dErrors.CodeOf(Translate(tt.err, dErrors.CodeUnknownBody, "body")))
		})
	}
	assert.NoError(t, Translate(nil, dErrors.CodeUnknownBody, "body"))
}

func TestConflict(t *testing.T) {
	err := fmt.Errorf("insert: %w", Conflict(ConstraintBodyLabel))
	assert.ErrorIs(t, err, sentinel.ErrConflict)
	assert.True(t, ConflictOn(err, ConstraintBodyLabel))
	assert.False(t, ConflictOn(err, ConstraintMorgueName))
	assert.False(t, ConflictOn(sentinel.ErrConflict, ConstraintBodyLabel))
}
