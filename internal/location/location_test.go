package location_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"

	"dvi/internal/location"
	"dvi/internal/location/mocks"
	id "dvi/pkg/domain"
	dErrors "dvi/pkg/domain-errors"
	"dvi/pkg/platform/sentinel"
)

var t0 = time.Date(2024, 1, 10, 12, 0, 0, 0, time.UTC)

func journals(t *testing.T) map[string]location.Journal {
	t.Helper()
	sqlite, err := location.OpenSQLiteJournal(context.Background(), ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = sqlite.Close() })
	return map[string]location.Journal{
		"memory": location.NewMemoryJournal(),
		"sqlite": sqlite,
	}
}

func TestJournalContract(t *testing.T) {
	for name, j := range journals(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()

			_, err := j.Current(ctx, "body:1")
			assert.ErrorIs(t, err, sentinel.ErrNotFound)

			_, err = j.Append(ctx, "body:1", "L1", t0)
			require.NoError(t, err)
			_, err = j.Append(ctx, "body:1", "M2", t0.Add(20*time.Hour))
			require.NoError(t, err)
			// Out-of-order write with an older timestamp does not become current.
			_, err = j.Append(ctx, "body:1", "L0", t0.Add(-time.Hour))
			require.NoError(t, err)

			cur, err := j.Current(ctx, "body:1")
			require.NoError(t, err)
			assert.Equal(t, id.LocationRef("M2"), cur.Location)

			h, err := j.History(ctx, "body:1")
			require.NoError(t, err)
			require.Len(t, h, 3)
			assert.Equal(t, []id.LocationRef{"L0", "L1", "M2"},
				[]id.LocationRef{h[0].Location, h[1].Location, h[2].Location})
		})
	}
}

func TestJournalEqualTimestampsLaterWriteWins(t *testing.T) {
	for name, j := range journals(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			_, err := j.Append(ctx, "body:2", "A", t0)
			require.NoError(t, err)
			_, err = j.Append(ctx, "body:2", "B", t0)
			require.NoError(t, err)

			cur, err := j.Current(ctx, "body:2")
			require.NoError(t, err)
			assert.Equal(t, id.LocationRef("B"), cur.Location)

			other, err := j.History(ctx, "body:3")
			require.NoError(t, err)
			assert.Empty(t, other)
		})
	}
}

type TrackerSuite struct {
	suite.Suite
	ctrl    *gomock.Controller
	journal *mocks.MockJournal
	tracker *location.Tracker
	body    id.BodyID
}

func TestTrackerSuite(t *testing.T) {
	suite.Run(t, new(TrackerSuite))
}

func (s *TrackerSuite) SetupTest() {
	s.ctrl = gomock.NewController(s.T())
	s.journal = mocks.NewMockJournal(s.ctrl)
	s.tracker = location.NewTracker(s.journal, location.WithTimeout(time.Second))
	s.body = id.NewBodyID()
}

func (s *TrackerSuite) TestSetLocation() {
	ctx := context.Background()
	entity := "body:" + s.body.String()

	s.Run("records presence in UTC", func() {
		local := t0.In(time.FixedZone("X", 3600))
		s.journal.EXPECT().Append(gomock.Any(), entity, id.LocationRef("L1"), t0).
			Return(location.Presence{Seq: 1, Entity: entity, Location: "L1", At: t0}, nil)
		p, err := s.tracker.SetLocation(ctx, s.body, "L1", local)
		s.Require().NoError(err)
		s.Equal(int64(1), p.Seq)
	})

	s.Run("journal failure is tracker_unavailable", func() {
		s.journal.EXPECT().Append(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
			Return(location.Presence{}, errors.New("disk I/O error"))
		_, err := s.tracker.SetLocation(ctx, s.body, "L1", t0)
		s.True(dErrors.HasCode(err, dErrors.CodeTrackerUnavailable))
	})

	s.Run("deadline is timeout", func() {
		s.journal.EXPECT().Append(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
			Return(location.Presence{}, context.DeadlineExceeded)
		_, err := s.tracker.SetLocation(ctx, s.body, "L1", t0)
		s.True(dErrors.HasCode(err, dErrors.CodeTimeout))
	})
}

func (s *TrackerSuite) TestCurrentLocation() {
	ctx := context.Background()
	s.journal.EXPECT().Current(gomock.Any(), gomock.Any()).Return(location.Presence{}, sentinel.ErrNotFound)
	_, ok, err := s.tracker.CurrentLocation(ctx, s.body)
	s.NoError(err)
	s.False(ok)

	s.journal.EXPECT().Current(gomock.Any(), gomock.Any()).Return(location.Presence{Location: "M2"}, nil)
	p, ok, err := s.tracker.CurrentLocation(ctx, s.body)
	s.NoError(err)
	s.True(ok)
	s.Equal(id.LocationRef("M2"), p.Location)
}

func TestResolver(t *testing.T) {
	ctrl := gomock.NewController(t)
	registry := mocks.NewMockRegistry(ctrl)
	r := location.NewResolver(registry, time.Second, nil)
	ctx := context.Background()

	registry.EXPECT().Resolve(gomock.Any(), id.LocationRef("L1")).Return(id.LocationRef("loc:1"), nil)
	key, err := r.Resolve(ctx, "L1", "location")
	require.NoError(t, err)
	assert.Equal(t, id.LocationRef("loc:1"), key)

	registry.EXPECT().Resolve(gomock.Any(), id.LocationRef("L404")).Return(id.LocationRef(""), sentinel.ErrNotFound)
	_, err = r.Resolve(ctx, "L404", "place_of_recovery")
	assert.True(t, dErrors.HasCode(err, dErrors.CodeUnknownLocation))
	assert.Equal(t, "place_of_recovery", dErrors.FieldOf(err))

	registry.EXPECT().Resolve(gomock.Any(), gomock.Any()).Return(id.LocationRef(""), sentinel.ErrUnavailable)
	_, err = r.Resolve(ctx, "L1", "location")
	assert.True(t, dErrors.HasCode(err, dErrors.CodeStorageUnavailable))
}

func TestStaticRegistry(t *testing.T) {
	ctx := context.Background()
	_, err := location.NewStaticRegistry().Resolve(ctx, "anywhere")
	assert.NoError(t, err)
	_, err = location.NewStaticRegistry("L1").Resolve(ctx, "L2")
	assert.ErrorIs(t, err, sentinel.ErrNotFound)
}
