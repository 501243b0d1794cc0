// Package storagetest holds the behavioural contract every storage.Store
// implementation must satisfy. Implementations run it from their own tests.
package storagetest

import (
	"context"
	"errors"
	"time"

	"github.com/stretchr/testify/suite"

	"dvi/internal/audit"
	bodymodels "dvi/internal/body/models"
	idmodels "dvi/internal/identification/models"
	morguemodels "dvi/internal/morgue/models"
	recoverymodels "dvi/internal/recovery/models"
	"dvi/internal/storage"
	id "dvi/pkg/domain"
	"dvi/pkg/platform/sentinel"
)

// Base is a fixed, microsecond-aligned clock reading shared by fixtures.
var Base = time.Date(2026, 3, 14, 9, 30, 0, 0, time.UTC)

var errAbort = errors.New("abort")

// ContractSuite is embedded by implementation suites, which set Store in
// SetupTest.
type ContractSuite struct {
	suite.Suite
	Store storage.Store
}

func (s *ContractSuite) write(fn func(ctx context.Context, tx storage.Tx) error) error {
	return s.Store.RunInTx(context.Background(), fn)
}

func (s *ContractSuite) mustWrite(fn func(ctx context.Context, tx storage.Tx) error) {
	s.Require().NoError(s.write(fn))
}

// NewMorgue inserts a live morgue.
func (s *ContractSuite) NewMorgue(name string) *morguemodels.Morgue {
	m, err := morguemodels.NewMorgue(id.NewMorgueID(), name, "", "L-1", Base)
	s.Require().NoError(err)
	s.mustWrite(func(ctx context.Context, tx storage.Tx) error { return tx.InsertMorgue(ctx, m) })
	return m
}

// NewRequest inserts a recovery request found at dateFound.
func (s *ContractSuite) NewRequest(marker string, dateFound time.Time, found int) *recoverymodels.RecoveryRequest {
	r, err := recoverymodels.NewRecoveryRequest(id.NewRecoveryRequestID(), dateFound, marker, "", "L-2", found, "", Base)
	s.Require().NoError(err)
	s.mustWrite(func(ctx context.Context, tx storage.Tx) error { return tx.InsertRecoveryRequest(ctx, r) })
	return r
}

// NewBody inserts a body and its checklist.
func (s *ContractSuite) NewBody(label string, morgue id.MorgueID, req id.RecoveryRequestID) *bodymodels.Body {
	b, err := bodymodels.NewBody(id.NewBodyID(), bodymodels.NewBodyParams{
		Label:           label,
		Morgue:          morgue,
		RecoveryRequest: req,
		DateOfRecovery:  Base.Add(-time.Hour),
		PlaceOfRecovery: "L-3",
	}, Base)
	s.Require().NoError(err)
	s.mustWrite(func(ctx context.Context, tx storage.Tx) error {
		if err := tx.InsertBody(ctx, b); err != nil {
			return err
		}
		return tx.InsertChecklist(ctx, bodymodels.NewChecklist(b.ID, Base))
	})
	return b
}

// NewClaim inserts an unidentified claim.
func (s *ContractSuite) NewClaim(body id.BodyID, identity id.PersonRef) *idmodels.Claim {
	c, err := idmodels.NewClaim(id.NewClaimID(), body, identity, "P-officer", idmodels.MethodVisualRecognition, "", Base)
	s.Require().NoError(err)
	s.mustWrite(func(ctx context.Context, tx storage.Tx) error { return tx.InsertClaim(ctx, c) })
	return c
}

func (s *ContractSuite) TestRecoveryRequests() {
	ctx := context.Background()
	older := s.NewRequest("older", Base.Add(-48*time.Hour), 3)
	newer := s.NewRequest("newer", Base.Add(-time.Hour), 1)

	s.Run("get returns ErrNotFound for unknown id", func() {
		_, err := s.Store.GetRecoveryRequest(ctx, id.NewRecoveryRequestID())
		s.ErrorIs(err, sentinel.ErrNotFound)
	})

	s.Run("list orders by date found descending", func() {
		got, err := s.Store.ListRecoveryRequests(ctx, recoverymodels.Filter{})
		s.Require().NoError(err)
		s.Require().Len(got, 2)
		s.Equal(newer.ID, got[0].ID)
		s.Equal(older.ID, got[1].ID)
	})

	s.Run("list filters by status and window", func() {
		s.mustWrite(func(ctx context.Context, tx storage.Tx) error {
			r, err := tx.LockRecoveryRequest(ctx, older.ID)
			if err != nil {
				return err
			}
			r.ApplyAssign("P-9", Base)
			return tx.UpdateRecoveryRequest(ctx, r)
		})
		got, err := s.Store.ListRecoveryRequests(ctx, recoverymodels.Filter{Statuses: []id.TaskStatus{id.TaskAssigned}})
		s.Require().NoError(err)
		s.Require().Len(got, 1)
		s.Equal(older.ID, got[0].ID)
		s.Equal(id.PersonRef("P-9"), got[0].AssignedTo)

		got, err = s.Store.ListRecoveryRequests(ctx, recoverymodels.Filter{From: Base.Add(-2 * time.Hour)})
		s.Require().NoError(err)
		s.Require().Len(got, 1)
		s.Equal(newer.ID, got[0].ID)
	})

	s.Run("list pages with limit and offset", func() {
		got, err := s.Store.ListRecoveryRequests(ctx, recoverymodels.Filter{Limit: 1, Offset: 1})
		s.Require().NoError(err)
		s.Require().Len(got, 1)
		s.Equal(older.ID, got[0].ID)
	})
}

func (s *ContractSuite) TestMorgueNames() {
	ctx := context.Background()
	first := s.NewMorgue("Central")

	s.Run("live names are unique", func() {
		dup, err := morguemodels.NewMorgue(id.NewMorgueID(), "Central", "", "L-1", Base)
		s.Require().NoError(err)
		err = s.write(func(ctx context.Context, tx storage.Tx) error { return tx.InsertMorgue(ctx, dup) })
		s.True(storage.ConflictOn(err, storage.ConstraintMorgueName), "got %v", err)
	})

	s.Run("retiring frees the name", func() {
		s.mustWrite(func(ctx context.Context, tx storage.Tx) error {
			m, err := tx.LockMorgue(ctx, first.ID)
			if err != nil {
				return err
			}
			m.ApplyRetire(Base)
			return tx.UpdateMorgue(ctx, m)
		})
		again := s.NewMorgue("Central")

		live, err := s.Store.ListMorgues(ctx, false)
		s.Require().NoError(err)
		s.Require().Len(live, 1)
		s.Equal(again.ID, live[0].ID)

		all, err := s.Store.ListMorgues(ctx, true)
		s.Require().NoError(err)
		s.Len(all, 2)
	})

	s.Run("delete refuses a morgue holding bodies", func() {
		m := s.NewMorgue("North")
		s.NewBody("N-1", m.ID, id.RecoveryRequestID{})
		err := s.write(func(ctx context.Context, tx storage.Tx) error {
			n, err := tx.CountBodiesInMorgue(ctx, m.ID)
			s.Equal(1, n)
			if err != nil {
				return err
			}
			return tx.DeleteMorgue(ctx, m.ID)
		})
		s.Error(err)
		_, err = s.Store.GetMorgue(ctx, m.ID)
		s.NoError(err)
	})
}

func (s *ContractSuite) TestBodies() {
	ctx := context.Background()
	m := s.NewMorgue("Central")
	b := s.NewBody("DVI-001", m.ID, id.RecoveryRequestID{})

	s.Run("labels are unique", func() {
		dup, err := bodymodels.NewBody(id.NewBodyID(), bodymodels.NewBodyParams{
			Label: "DVI-001", DateOfRecovery: Base, PlaceOfRecovery: "L-3",
		}, Base)
		s.Require().NoError(err)
		err = s.write(func(ctx context.Context, tx storage.Tx) error { return tx.InsertBody(ctx, dup) })
		s.True(storage.ConflictOn(err, storage.ConstraintBodyLabel), "got %v", err)
	})

	s.Run("unknown morgue is rejected", func() {
		orphan, err := bodymodels.NewBody(id.NewBodyID(), bodymodels.NewBodyParams{
			Label: "DVI-404", Morgue: id.NewMorgueID(), DateOfRecovery: Base, PlaceOfRecovery: "L-3",
		}, Base)
		s.Require().NoError(err)
		err = s.write(func(ctx context.Context, tx storage.Tx) error { return tx.InsertBody(ctx, orphan) })
		s.ErrorIs(err, sentinel.ErrInvalidState)
	})

	s.Run("relabel moves the label index", func() {
		s.mustWrite(func(ctx context.Context, tx storage.Tx) error {
			locked, err := tx.LockBody(ctx, b.ID)
			if err != nil {
				return err
			}
			locked.Label = "DVI-001A"
			return tx.UpdateBody(ctx, locked)
		})
		_, err := s.Store.FindBodyByLabel(ctx, "DVI-001")
		s.ErrorIs(err, sentinel.ErrNotFound)
		got, err := s.Store.FindBodyByLabel(ctx, "DVI-001A")
		s.Require().NoError(err)
		s.Equal(b.ID, got.ID)
	})

	s.Run("checklist and effects round trip", func() {
		s.mustWrite(func(ctx context.Context, tx storage.Tx) error {
			c, err := tx.GetChecklist(ctx, b.ID)
			if err != nil {
				return err
			}
			c.ApplyTransition(bodymodels.OpDNA, id.TaskInProgress, Base)
			if err := tx.UpdateChecklist(ctx, c); err != nil {
				return err
			}
			return tx.UpsertEffects(ctx, &bodymodels.PersonalEffects{BodyID: b.ID, Watch: "steel", UpdatedAt: Base})
		})
		c, err := s.Store.GetChecklist(ctx, b.ID)
		s.Require().NoError(err)
		s.Equal(id.TaskInProgress, c.State(bodymodels.OpDNA))
		s.Equal(id.TaskNotStarted, c.State(bodymodels.OpDental))

		e, err := s.Store.GetEffects(ctx, b.ID)
		s.Require().NoError(err)
		s.Equal("steel", e.Watch)
	})

	s.Run("delete cascades checklist and effects", func() {
		s.mustWrite(func(ctx context.Context, tx storage.Tx) error { return tx.DeleteBody(ctx, b.ID) })
		_, err := s.Store.GetBody(ctx, b.ID)
		s.ErrorIs(err, sentinel.ErrNotFound)
		_, err = s.Store.GetChecklist(ctx, b.ID)
		s.ErrorIs(err, sentinel.ErrNotFound)
		_, err = s.Store.GetEffects(ctx, b.ID)
		s.ErrorIs(err, sentinel.ErrNotFound)
	})
}

func (s *ContractSuite) TestSearchBodies() {
	ctx := context.Background()
	for _, label := range []string{"B-3", "A_1", "B-1", "AX1", "B-2"} {
		s.NewBody(label, id.MorgueID{}, id.RecoveryRequestID{})
	}

	search := func(q bodymodels.SearchQuery) ([]string, int) {
		got, total, err := s.Store.SearchBodies(ctx, q)
		s.Require().NoError(err)
		labels := make([]string, len(got))
		for i, b := range got {
			labels[i] = b.Label
		}
		return labels, total
	}

	s.Run("substring match in label order", func() {
		labels, total := search(bodymodels.SearchQuery{Query: "B-"})
		s.Equal([]string{"B-1", "B-2", "B-3"}, labels)
		s.Equal(3, total)
	})

	s.Run("underscore is literal", func() {
		labels, total := search(bodymodels.SearchQuery{Query: "A_"})
		s.Equal([]string{"A_1"}, labels)
		s.Equal(1, total)
	})

	s.Run("percent is a wildcard", func() {
		labels, _ := search(bodymodels.SearchQuery{Query: "A%1"})
		s.Equal([]string{"AX1", "A_1"}, labels)
	})

	s.Run("pages report the full total", func() {
		labels, total := search(bodymodels.SearchQuery{Query: "B", Page: 2, PageSize: 2})
		s.Equal([]string{"B-3"}, labels)
		s.Equal(3, total)
	})
}

func (s *ContractSuite) TestClaims() {
	ctx := context.Background()
	b := s.NewBody("C-1", id.MorgueID{}, id.RecoveryRequestID{})
	first := s.NewClaim(b.ID, "P-1")

	s.Run("one live claim per identity", func() {
		dup, err := idmodels.NewClaim(id.NewClaimID(), b.ID, "P-1", "P-2", idmodels.MethodDNAProfile, "", Base)
		s.Require().NoError(err)
		err = s.write(func(ctx context.Context, tx storage.Tx) error { return tx.InsertClaim(ctx, dup) })
		s.True(storage.ConflictOn(err, storage.ConstraintClaimIdentity), "got %v", err)
	})

	s.Run("one confirmed claim per body", func() {
		second := s.NewClaim(b.ID, "P-2")
		confirm := func(c *idmodels.Claim) error {
			return s.write(func(ctx context.Context, tx storage.Tx) error {
				c.ApplyAdvance(idmodels.Advance{To: idmodels.StatusConfirmed, Method: idmodels.MethodDNAProfile}, "P-9", Base)
				return tx.UpdateClaim(ctx, c)
			})
		}
		s.Require().NoError(confirm(first))
		err := confirm(second)
		s.True(storage.ConflictOn(err, storage.ConstraintClaimConfirmed), "got %v", err)

		stored, err := s.Store.GetClaim(ctx, second.ID)
		s.Require().NoError(err)
		s.Equal(idmodels.StatusUnidentified, stored.Status)
	})

	s.Run("lists by body and by identity", func() {
		forBody, err := s.Store.ListClaimsForBody(ctx, b.ID)
		s.Require().NoError(err)
		s.Len(forBody, 2)

		forIdentity, err := s.Store.ListClaimsByIdentity(ctx, "P-1")
		s.Require().NoError(err)
		s.Require().Len(forIdentity, 1)
		s.Equal(first.ID, forIdentity[0].ID)
		s.Equal(idmodels.StatusConfirmed, forIdentity[0].Status)
	})

	s.Run("distribution uses the effective status", func() {
		s.NewBody("C-2", id.MorgueID{}, id.RecoveryRequestID{})
		d, err := s.Store.IdentificationDistribution(ctx)
		s.Require().NoError(err)
		s.Equal(1, d.Confirmed)
		s.Equal(1, d.Unidentified)
		s.Equal(2, d.Total())
	})
}

func (s *ContractSuite) TestAggregates() {
	ctx := context.Background()
	central := s.NewMorgue("Central")
	empty := s.NewMorgue("Annex")
	req := s.NewRequest("R-1", Base.Add(-24*time.Hour), 5)
	s.NewBody("G-1", central.ID, req.ID)
	s.NewBody("G-2", central.ID, id.RecoveryRequestID{})
	s.NewBody("G-3", id.MorgueID{}, req.ID)

	counts, err := s.Store.CountBodiesByMorgue(ctx)
	s.Require().NoError(err)
	s.Equal(1, counts.Unassigned)
	byID := map[id.MorgueID]int{}
	for _, c := range counts.Morgues {
		byID[c.Morgue] = c.Bodies
	}
	s.Equal(2, byID[central.ID])
	s.Contains(byID, empty.ID)

	requests, err := s.Store.CountBodiesByRequest(ctx)
	s.Require().NoError(err)
	s.Require().Len(requests, 1)
	s.Equal(5, requests[0].BodiesFound)
	s.Equal(2, requests[0].Bodies)
}

func (s *ContractSuite) TestRollback() {
	ctx := context.Background()
	m := s.NewMorgue("Central")

	err := s.write(func(ctx context.Context, tx storage.Tx) error {
		b, err := bodymodels.NewBody(id.NewBodyID(), bodymodels.NewBodyParams{
			Label: "R-1", Morgue: m.ID, DateOfRecovery: Base, PlaceOfRecovery: "L-3",
		}, Base)
		if err != nil {
			return err
		}
		if err := tx.InsertBody(ctx, b); err != nil {
			return err
		}
		locked, err := tx.LockMorgue(ctx, m.ID)
		if err != nil {
			return err
		}
		locked.Description = "changed"
		if err := tx.UpdateMorgue(ctx, locked); err != nil {
			return err
		}
		if err := tx.AppendAudit(ctx, audit.Event{ID: id.NewEventID(), Action: audit.ActionBodyCreated, Timestamp: Base}); err != nil {
			return err
		}
		return errAbort
	})
	s.ErrorIs(err, errAbort)

	_, err = s.Store.FindBodyByLabel(ctx, "R-1")
	s.ErrorIs(err, sentinel.ErrNotFound)
	got, err := s.Store.GetMorgue(ctx, m.ID)
	s.Require().NoError(err)
	s.Empty(got.Description)

	// The label is free again.
	s.NewBody("R-1", m.ID, id.RecoveryRequestID{})
}

func (s *ContractSuite) TestCancelledContext() {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := s.Store.RunInTx(ctx, func(context.Context, storage.Tx) error { return nil })
	s.ErrorIs(err, context.Canceled)
}
