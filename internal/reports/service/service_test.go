package service_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dvi/internal/reports/models"
	"dvi/internal/reports/service"
	id "dvi/pkg/domain"
	dErrors "dvi/pkg/domain-errors"
)

type stubSource struct {
	morgues      models.MorgueCounts
	requests     []models.RequestCount
	distribution models.Distribution
	err          error
}

func (s *stubSource) CountBodiesByMorgue(ctx context.Context) (models.MorgueCounts, error) {
	return s.morgues, s.err
}

func (s *stubSource) CountBodiesByRequest(ctx context.Context) ([]models.RequestCount, error) {
	return s.requests, nil
}

func (s *stubSource) IdentificationDistribution(ctx context.Context) (models.Distribution, error) {
	if err := ctx.Err(); err != nil {
		return models.Distribution{}, err
	}
	return s.distribution, nil
}

func TestSummary(t *testing.T) {
	morgueID := id.NewMorgueID()
	src := &stubSource{
		morgues:      models.MorgueCounts{Morgues: []models.MorgueCount{{Morgue: morgueID, Name: "Central", Bodies: 3}}, Unassigned: 1},
		requests:     []models.RequestCount{{Marker: "A-14", BodiesFound: 5, BodiesRecovered: 4, Bodies: 4}},
		distribution: models.Distribution{Confirmed: 1, Preliminary: 1, Unidentified: 2},
	}
	svc := service.New(src)

	t.Run("all three aggregates are returned together", func(t *testing.T) {
		sum, err := svc.Summary(context.Background())
		require.NoError(t, err)
		assert.Equal(t, 3, sum.Morgues.Morgues[0].Bodies)
		assert.Equal(t, 1, sum.Morgues.Unassigned)
		assert.Len(t, sum.Requests, 1)
		assert.Equal(t, 4, sum.Identification.Total())
	})

	t.Run("the first failure fails the summary", func(t *testing.T) {
		failing := service.New(&stubSource{err: errors.New("connection refused")})
		_, err := failing.Summary(context.Background())
		assert.True(t, dErrors.HasCode(err, dErrors.CodeStorageUnavailable))
	})
}

func TestEmptyReportsAreNotNull(t *testing.T) {
	svc := service.New(&stubSource{})

	m, err := svc.BodiesByMorgue(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, m.Morgues)

	r, err := svc.BodiesByRequest(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, r)

	d, err := svc.Identification(context.Background())
	require.NoError(t, err)
	assert.Zero(t, d.Total())
}

func TestCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := service.New(&stubSource{}).Identification(ctx)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeTimeout))
}
