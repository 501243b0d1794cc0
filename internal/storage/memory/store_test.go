package memory

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"dvi/internal/audit"
	"dvi/internal/storage"
	"dvi/internal/storage/storagetest"
	id "dvi/pkg/domain"
)

type MemoryStoreSuite struct {
	storagetest.ContractSuite
	mem *Store
}

func TestMemoryStoreSuite(t *testing.T) {
	suite.Run(t, new(MemoryStoreSuite))
}

func (s *MemoryStoreSuite) SetupTest() {
	s.mem = New()
	s.Store = s.mem
}

func (s *MemoryStoreSuite) appendEvents(actions ...audit.Action) {
	err := s.mem.RunInTx(context.Background(), func(ctx context.Context, tx storage.Tx) error {
		for _, a := range actions {
			if err := tx.AppendAudit(ctx, audit.Event{ID: id.NewEventID(), Action: a, Timestamp: storagetest.Base}); err != nil {
				return err
			}
		}
		return nil
	})
	s.Require().NoError(err)
}

func (s *MemoryStoreSuite) TestOutbox() {
	ctx := context.Background()
	s.appendEvents(audit.ActionMorgueCreated, audit.ActionBodyCreated, audit.ActionClaimOpened)

	s.Run("pending is ordered and bounded", func() {
		pending, err := s.mem.PendingAudit(ctx, 2)
		s.Require().NoError(err)
		s.Require().Len(pending, 2)
		s.Equal(int64(1), pending[0].Seq)
		s.Equal(audit.ActionBodyCreated, pending[1].Event.Action)
	})

	s.Run("published entries are skipped", func() {
		s.Require().NoError(s.mem.MarkAuditPublished(ctx, []int64{1, 2}, time.Now()))
		pending, err := s.mem.PendingAudit(ctx, 10)
		s.Require().NoError(err)
		s.Require().Len(pending, 1)
		s.Equal(int64(3), pending[0].Seq)
	})

	s.Run("published entries leave the outbox", func() {
		s.Len(s.mem.st.outbox, 1)
		events := s.mem.AuditEvents()
		s.Require().Len(events, 3)
		s.Equal(audit.ActionMorgueCreated, events[0].Action)
		s.Equal(audit.ActionClaimOpened, events[2].Action)
	})
}

func (s *MemoryStoreSuite) TestPublishedHistoryIsBounded() {
	ctx := context.Background()
	s.mem.st.historyCap = 2
	s.appendEvents(audit.ActionMorgueCreated, audit.ActionMorgueUpdated, audit.ActionMorgueRetired)
	s.Require().NoError(s.mem.MarkAuditPublished(ctx, []int64{1, 2, 3}, time.Now()))

	s.Empty(s.mem.st.outbox)
	events := s.mem.AuditEvents()
	s.Require().Len(events, 2)
	s.Equal(audit.ActionMorgueUpdated, events[0].Action)
	s.Equal(audit.ActionMorgueRetired, events[1].Action)

	// sequence numbers keep increasing after pruning
	s.appendEvents(audit.ActionMorgueDeleted)
	pending, err := s.mem.PendingAudit(ctx, 10)
	s.Require().NoError(err)
	s.Require().Len(pending, 1)
	s.Equal(int64(4), pending[0].Seq)
}

func (s *MemoryStoreSuite) TestRolledBackAuditReusesSequence() {
	ctx := context.Background()
	s.appendEvents(audit.ActionMorgueCreated)
	err := s.mem.RunInTx(ctx, func(ctx context.Context, tx storage.Tx) error {
		s.Require().NoError(tx.AppendAudit(ctx, audit.Event{ID: id.NewEventID(), Action: audit.ActionMorgueDeleted}))
		return context.DeadlineExceeded
	})
	s.ErrorIs(err, context.DeadlineExceeded)
	s.appendEvents(audit.ActionMorgueUpdated)

	pending, err := s.mem.PendingAudit(ctx, 10)
	s.Require().NoError(err)
	s.Require().Len(pending, 2)
	s.Equal(int64(2), pending[1].Seq)
	s.Equal(audit.ActionMorgueUpdated, pending[1].Event.Action)
}

func (s *MemoryStoreSuite) TestPanicRollsBack() {
	s.Panics(func() {
		_ = s.mem.RunInTx(context.Background(), func(ctx context.Context, tx storage.Tx) error {
			_ = tx.AppendAudit(ctx, audit.Event{ID: id.NewEventID(), Action: audit.ActionBodyDeleted})
			panic("boom")
		})
	})
	s.Empty(s.mem.AuditEvents())
}

func (s *MemoryStoreSuite) TestReadsReturnCopies() {
	ctx := context.Background()
	m := s.NewMorgue("Central")
	got, err := s.mem.GetMorgue(ctx, m.ID)
	s.Require().NoError(err)
	got.Name = "mutated"

	again, err := s.mem.GetMorgue(ctx, m.ID)
	s.Require().NoError(err)
	s.Equal("Central", again.Name)
}
