package service_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"

	"dvi/internal/audit"
	"dvi/internal/authz"
	authzmocks "dvi/internal/authz/mocks"
	"dvi/internal/location"
	"dvi/internal/person"
	personmocks "dvi/internal/person/mocks"
	"dvi/internal/recovery/models"
	"dvi/internal/recovery/service"
	"dvi/internal/storage/memory"
	id "dvi/pkg/domain"
	dErrors "dvi/pkg/domain-errors"
	"dvi/pkg/platform/sentinel"
	"dvi/pkg/requestcontext"
	"dvi/pkg/testutil"
)

var now = time.Date(2024, 1, 10, 12, 0, 0, 0, time.UTC)

type RecoveryServiceSuite struct {
	suite.Suite
	ctx     context.Context
	store   *memory.Store
	service *service.Service
}

func TestRecoveryServiceSuite(t *testing.T) {
	suite.Run(t, new(RecoveryServiceSuite))
}

func (s *RecoveryServiceSuite) SetupTest() {
	s.ctx = requestcontext.WithTime(testutil.AsRole(context.Background(), "P-team", authz.RoleRecoveryTeam), now)
	s.store = memory.New()
	s.service = service.New(s.store,
		authz.NewRolePolicy(authz.DefaultGrants()),
		person.NewAdapter(person.NewStaticRegistry()),
		location.NewResolver(location.NewStaticRegistry("L1", "L2"), time.Second, nil),
	)
}

func (s *RecoveryServiceSuite) create(found int) *models.RecoveryRequest {
	r, err := s.service.Create(s.ctx, service.CreateInput{
		DateFound:   time.Date(2024, 1, 10, 9, 0, 0, 0, time.UTC),
		Marker:      " A-14 ",
		Location:    "L1",
		BodiesFound: found,
	})
	s.Require().NoError(err)
	return r
}

func (s *RecoveryServiceSuite) TestCreate() {
	s.Run("starts not started and audits", func() {
		r := s.create(3)
		s.Equal(id.TaskNotStarted, r.Status)
		s.Equal("A-14", r.Marker)

		stored, err := s.service.Get(s.ctx, r.ID)
		s.Require().NoError(err)
		s.Equal(3, stored.BodiesFound)

		events := s.store.AuditEvents()
		s.Require().NotEmpty(events)
		last := events[len(events)-1]
		s.Equal(audit.ActionRecoveryCreated, last.Action)
		s.Equal("P-team", last.Actor)
		s.Equal(r.ID.String(), last.AggregateID)
	})

	s.Run("boundary counts", func() {
		s.create(models.MaxBodies)
		_, err := s.service.Create(s.ctx, service.CreateInput{DateFound: now, Location: "L1", BodiesFound: models.MaxBodies + 1})
		s.True(dErrors.HasCode(err, dErrors.CodeCountOutOfRange))
		_, err = s.service.Create(s.ctx, service.CreateInput{DateFound: now, Location: "L1", BodiesFound: -1})
		s.True(dErrors.HasCode(err, dErrors.CodeNegativeCount))
	})

	s.Run("future date is rejected", func() {
		_, err := s.service.Create(s.ctx, service.CreateInput{DateFound: now.Add(time.Second), Location: "L1"})
		s.True(dErrors.HasCode(err, dErrors.CodeFutureDate))
	})

	s.Run("unknown location", func() {
		_, err := s.service.Create(s.ctx, service.CreateInput{DateFound: now, Location: "L9"})
		s.True(dErrors.HasCode(err, dErrors.CodeUnknownLocation))
		s.Equal("location", dErrors.FieldOf(err))
	})

	s.Run("viewer is forbidden", func() {
		ctx := testutil.AsRole(s.ctx, "P-view", authz.RoleViewer)
		_, err := s.service.Create(ctx, service.CreateInput{DateFound: now, Location: "L1"})
		s.True(dErrors.HasCode(err, dErrors.CodeForbidden))
	})
}

func (s *RecoveryServiceSuite) TestTransitions() {
	r := s.create(3)

	assigned, err := s.service.Assign(s.ctx, r.ID, "P-7")
	s.Require().NoError(err)
	s.Equal(id.TaskAssigned, assigned.Status)
	s.Equal(id.PersonRef("P-7"), assigned.AssignedTo)

	progressed, err := s.service.Progress(s.ctx, r.ID)
	s.Require().NoError(err)
	s.Equal(id.TaskInProgress, progressed.Status)

	_, err = s.service.Assign(s.ctx, r.ID, "P-8")
	s.True(dErrors.HasCode(err, dErrors.CodeIllegalTransition))

	done, err := s.service.Complete(s.ctx, r.ID, id.TaskCompleted)
	s.Require().NoError(err)
	s.Equal(id.TaskCompleted, done.Status)

	_, err = s.service.Complete(s.ctx, r.ID, id.TaskNotPossible)
	s.True(dErrors.HasCode(err, dErrors.CodeIllegalTransition))

	stored, err := s.service.Get(s.ctx, r.ID)
	s.Require().NoError(err)
	s.Equal(id.TaskCompleted, stored.Status)
}

func (s *RecoveryServiceSuite) TestCounts() {
	r := s.create(3)

	got, err := s.service.SetRecovered(s.ctx, r.ID, 3)
	s.Require().NoError(err)
	s.Equal(3, got.BodiesRecovered)

	_, err = s.service.SetRecovered(s.ctx, r.ID, 4)
	s.True(dErrors.HasCode(err, dErrors.CodeExceedsFound))

	_, err = s.service.SetFound(s.ctx, r.ID, 2)
	s.True(dErrors.HasCode(err, dErrors.CodeExceedsFound))

	got, err = s.service.SetFound(s.ctx, r.ID, 5)
	s.Require().NoError(err)
	s.Equal(5, got.BodiesFound)
	s.Equal(3, got.BodiesRecovered)
}

func (s *RecoveryServiceSuite) TestUnknownRequest() {
	_, err := s.service.Progress(s.ctx, id.NewRecoveryRequestID())
	s.True(dErrors.HasCode(err, dErrors.CodeUnknownRequest))

	_, err = s.service.Get(s.ctx, id.NewRecoveryRequestID())
	s.True(dErrors.HasCode(err, dErrors.CodeUnknownRequest))
}

func (s *RecoveryServiceSuite) TestList() {
	first := s.create(1)
	second := s.create(2)
	_, err := s.service.Assign(s.ctx, second.ID, "P-1")
	s.Require().NoError(err)

	all, err := s.service.List(s.ctx, models.Filter{})
	s.Require().NoError(err)
	s.Len(all, 2)

	assigned, err := s.service.List(s.ctx, models.Filter{Statuses: []id.TaskStatus{id.TaskAssigned}})
	s.Require().NoError(err)
	s.Require().Len(assigned, 1)
	s.Equal(second.ID, assigned[0].ID)

	none, err := s.service.List(s.ctx, models.Filter{Location: "L2"})
	s.Require().NoError(err)
	s.NotNil(none)
	s.Empty(none)

	_, err = s.service.List(s.ctx, models.Filter{From: now, To: now.Add(-time.Hour)})
	s.True(dErrors.HasCode(err, dErrors.CodeInvalidInput))
	_ = first
}

func TestAuthorizationPrecedesReads(t *testing.T) {
	ctrl := gomock.NewController(t)
	az := authzmocks.NewMockAuthorizer(ctrl)
	registry := personmocks.NewMockRegistry(ctrl)
	svc := service.New(memory.New(), az, person.NewAdapter(registry),
		location.NewResolver(location.NewStaticRegistry(), time.Second, nil))

	ctx := testutil.AsRole(context.Background(), "P-1", authz.RoleViewer)
	reqID := id.NewRecoveryRequestID()
	az.EXPECT().
		May(gomock.Any(), gomock.Any(), authz.ActionRecoveryUpdate, authz.Resource{Kind: "recovery_request", ID: reqID.String()}).
		Return(false)

	_, err := svc.Assign(ctx, reqID, "P-2")
	if !dErrors.HasCode(err, dErrors.CodeForbidden) {
		t.Fatalf("expected forbidden before lookup, got %v", err)
	}
}

func TestAssignUnknownPerson(t *testing.T) {
	ctrl := gomock.NewController(t)
	registry := personmocks.NewMockRegistry(ctrl)
	store := memory.New()
	svc := service.New(store, authz.NewRolePolicy(authz.DefaultGrants()), person.NewAdapter(registry),
		location.NewResolver(location.NewStaticRegistry(), time.Second, nil))
	ctx := requestcontext.WithTime(testutil.AsRole(context.Background(), "P-1", authz.RoleAdmin), now)

	r, err := svc.Create(ctx, service.CreateInput{DateFound: now, Location: "L1"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	registry.EXPECT().Resolve(gomock.Any(), id.PersonRef("P-404")).Return(id.PersonRef(""), sentinel.ErrNotFound)

	_, err = svc.Assign(ctx, r.ID, "P-404")
	if !dErrors.HasCode(err, dErrors.CodeUnknownPerson) {
		t.Fatalf("expected unknown_person, got %v", err)
	}
	if got := dErrors.FieldOf(err); got != "assigned_to" {
		t.Fatalf("expected field assigned_to, got %q", got)
	}
}
