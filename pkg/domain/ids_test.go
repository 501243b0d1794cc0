package domain

import (
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dErrors "dvi/pkg/domain-errors"
)

// TestParseUUID_Invariants validates the parsing invariant:
// "IDs must be valid, non-empty, non-nil UUIDs"
func TestParseUUID_Invariants(t *testing.T) {
	t.Run("rejects empty string", func(t *testing.T) {
		_, err := ParseBodyID("")
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidInput))
	})

	t.Run("rejects invalid format", func(t *testing.T) {
		_, err := ParseBodyID("not-a-uuid")
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidInput))
	})

	t.Run("rejects nil UUID", func(t *testing.T) {
		_, err := ParseBodyID(uuid.Nil.String())
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidInput))
	})

	t.Run("accepts valid UUID", func(t *testing.T) {
		valid := uuid.New()
		id, err := ParseBodyID(valid.String())
		require.NoError(t, err)
		assert.Equal(t, BodyID(valid), id)
	})
}

func TestParseID_TrustBoundary(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"SQL injection attempt", "'; DROP TABLE body;--", true},
		{"Path traversal", "../../../etc/passwd", true},
		{"Null byte injection", "550e8400\x00-e29b-41d4-a716-446655440000", true},
		{"Oversized input", strings.Repeat("a", 1000), true},
		{"Empty string", "", true},
		{"Nil UUID", uuid.Nil.String(), true},
		{"Whitespace only", "   ", true},
		{"Uppercase valid UUID", "550E8400-E29B-41D4-A716-446655440000", false},
		{"Valid UUID lowercase", "550e8400-e29b-41d4-a716-446655440000", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseClaimID(tt.input)
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidInput))
			} else {
				require.NoError(t, err)
			}
		})
	}
}

func TestAllIDTypes_ConsistentBehavior(t *testing.T) {
	valid := uuid.New().String()

	t.Run("all accept valid UUID", func(t *testing.T) {
		_, errBody := ParseBodyID(valid)
		_, errMorgue := ParseMorgueID(valid)
		_, errRequest := ParseRecoveryRequestID(valid)
		_, errClaim := ParseClaimID(valid)

		require.NoError(t, errBody)
		require.NoError(t, errMorgue)
		require.NoError(t, errRequest)
		require.NoError(t, errClaim)
	})

	for _, input := range []string{"", "invalid", uuid.Nil.String()} {
		t.Run("all reject: "+input, func(t *testing.T) {
			_, errBody := ParseBodyID(input)
			_, errMorgue := ParseMorgueID(input)
			_, errRequest := ParseRecoveryRequestID(input)
			_, errClaim := ParseClaimID(input)

			require.Error(t, errBody)
			require.Error(t, errMorgue)
			require.Error(t, errRequest)
			require.Error(t, errClaim)
		})
	}
}

func TestNewOpaqueID_TimeOrdered(t *testing.T) {
	prev := NewOpaqueID()
	for range 100 {
		next := NewOpaqueID()
		assert.NotEqual(t, prev, next)
		assert.Equal(t, uuid.Version(7), next.Version())
		assert.LessOrEqual(t, prev.String(), next.String(), "v7 ids must sort by creation")
		prev = next
	}
}

func TestTextRoundTrip(t *testing.T) {
	id := NewBodyID()
	text, err := id.MarshalText()
	require.NoError(t, err)

	var decoded BodyID
	require.NoError(t, decoded.UnmarshalText(text))
	assert.Equal(t, id, decoded)

	var bad BodyID
	assert.Error(t, bad.UnmarshalText([]byte("nope")))
}

func TestParseRefs(t *testing.T) {
	t.Run("trims and accepts opaque person reference", func(t *testing.T) {
		ref, err := ParsePersonRef("  P17 ")
		require.NoError(t, err)
		assert.Equal(t, PersonRef("P17"), ref)
	})

	t.Run("rejects blank location reference", func(t *testing.T) {
		_, err := ParseLocationRef("   ")
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidInput))
	})

	t.Run("rejects oversized reference", func(t *testing.T) {
		_, err := ParsePersonRef(strings.Repeat("x", maxRefLength+1))
		require.Error(t, err)
	})
}
