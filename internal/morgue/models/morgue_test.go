package models

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	id "dvi/pkg/domain"
	dErrors "dvi/pkg/domain-errors"
)

func TestNewMorgue(t *testing.T) {
	now := time.Now()

	m, err := NewMorgue(id.NewMorgueID(), "  Central  ", "", "L9", now)
	require.NoError(t, err)
	assert.Equal(t, "Central", m.Name)
	assert.False(t, m.IsRetired())

	_, err = NewMorgue(id.NewMorgueID(), " ", "", "L9", now)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidInput))
	assert.Equal(t, "name", dErrors.FieldOf(err))

	_, err = NewMorgue(id.NewMorgueID(), strings.Repeat("m", 129), "", "L9", now)
	assert.Error(t, err)

	_, err = NewMorgue(id.NewMorgueID(), "North", "", "", now)
	assert.Equal(t, "location", dErrors.FieldOf(err))
}

func TestMorgueRetire(t *testing.T) {
	now := time.Now()
	m, err := NewMorgue(id.NewMorgueID(), "Central", "", "L9", now)
	require.NoError(t, err)

	require.NoError(t, m.CanHoldBodies())
	require.NoError(t, m.CanRetire())
	m.ApplyRetire(now)

	assert.True(t, m.IsRetired())
	assert.True(t, dErrors.HasCode(m.CanRetire(), dErrors.CodeIllegalTransition))
	assert.True(t, dErrors.HasCode(m.CanHoldBodies(), dErrors.CodeMorgueRetired))
}

func TestMorgueApplyUpdate(t *testing.T) {
	created := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	later := created.Add(time.Hour)
	m, err := NewMorgue(id.NewMorgueID(), "Central", "old", "L9", created)
	require.NoError(t, err)

	same := "Central"
	changed, err := m.ApplyUpdate(Update{Name: &same}, later)
	require.NoError(t, err)
	assert.Empty(t, changed)
	assert.Equal(t, created, m.UpdatedAt)

	name, desc := " East ", "cold storage"
	changed, err = m.ApplyUpdate(Update{Name: &name, Description: &desc}, later)
	require.NoError(t, err)
	assert.Equal(t, []string{"name", "description"}, changed)
	assert.Equal(t, "East", m.Name)
	assert.Equal(t, later, m.UpdatedAt)

	blank := " "
	_, err = m.ApplyUpdate(Update{Name: &blank}, later)
	assert.Equal(t, "name", dErrors.FieldOf(err))
}
