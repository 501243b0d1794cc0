package labels

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	bodymodels "dvi/internal/body/models"
	id "dvi/pkg/domain"
	dErrors "dvi/pkg/domain-errors"
	"dvi/pkg/platform/sentinel"
)

type finderFunc func(ctx context.Context, label string) (*bodymodels.Body, error)

func (f finderFunc) FindBodyByLabel(ctx context.Context, label string) (*bodymodels.Body, error) {
	return f(ctx, label)
}

func TestValidate(t *testing.T) {
	taken := id.NewBodyID()
	finder := finderFunc(func(_ context.Context, label string) (*bodymodels.Body, error) {
		if label == "A-14-001" {
			return &bodymodels.Body{ID: taken, Label: label}, nil
		}
		return nil, sentinel.ErrNotFound
	})
	ctx := context.Background()

	tests := []struct {
		name   string
		label  string
		except id.BodyID
		code   dErrors.Code
	}{
		{name: "free label", label: "A-14-002"},
		{name: "blank label", label: "   ", code: dErrors.CodeEmptyLabel},
		{name: "empty label", label: "", code: dErrors.CodeEmptyLabel},
		{name: "taken label", label: "A-14-001", code: dErrors.CodeDuplicateLabel},
		{name: "label held by the same body", label: "A-14-001", except: taken},
		{name: "case differs", label: "a-14-001"},
		{name: "whitespace is significant", label: " A-14-001"},
		{name: "too long", label: strings.Repeat("x", MaxLength+1), code: dErrors.CodeInvalidInput},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Validate(ctx, finder, tt.label, tt.except)
			if tt.code == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.True(t, dErrors.HasCode(err, tt.code), "got %v", err)
			assert.Equal(t, "label", dErrors.FieldOf(err))
		})
	}
}

func TestValidatePropagatesStoreErrors(t *testing.T) {
	boom := errors.New("connection reset")
	finder := finderFunc(func(context.Context, string) (*bodymodels.Body, error) { return nil, boom })
	assert.ErrorIs(t, Validate(context.Background(), finder, "L", id.BodyID{}), boom)
}

func TestPattern(t *testing.T) {
	assert.Equal(t, "%%", Pattern(""))
	assert.Equal(t, "%A-14%", Pattern("A-14"))
	assert.Equal(t, "%A%01%", Pattern("A%01"))
	assert.Equal(t, `%A\_1\\%`, Pattern(`A_1\`))
}

func TestMatch(t *testing.T) {
	tests := []struct {
		query, label string
		want         bool
	}{
		{"", "anything", true},
		{"14-00", "A-14-001", true},
		{"a-14", "A-14-001", false},
		{"A%3", "A-14-003", true},
		{"%003", "A-14-003", true},
		{"3%A", "A-14-003", false},
		{"A_1", "A-1", false},
		{"A_1", "A_1", true},
		{"%%", "x", true},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Match(tt.query, tt.label), "Match(%q, %q)", tt.query, tt.label)
	}
}
