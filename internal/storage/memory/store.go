// Package memory is the in-process store used for development and tests.
//
// One writer lock serializes units of work; every write records an undo step
// so a failed callback leaves no trace. Once the callback returns nil the
// commit cannot fail.
package memory

import (
	"context"
	"slices"
	"strings"
	"sync"
	"time"

	"dvi/internal/audit"
	bodymodels "dvi/internal/body/models"
	idmodels "dvi/internal/identification/models"
	"dvi/internal/labels"
	morguemodels "dvi/internal/morgue/models"
	recoverymodels "dvi/internal/recovery/models"
	reportmodels "dvi/internal/reports/models"
	"dvi/internal/storage"
	id "dvi/pkg/domain"
	"dvi/pkg/platform/sentinel"
)

type state struct {
	requests   map[id.RecoveryRequestID]*recoverymodels.RecoveryRequest
	morgues    map[id.MorgueID]*morguemodels.Morgue
	bodies     map[id.BodyID]*bodymodels.Body
	labels     map[string]id.BodyID
	checklists map[id.BodyID]*bodymodels.Checklist
	effects    map[id.BodyID]*bodymodels.PersonalEffects
	claims     map[id.ClaimID]*idmodels.Claim
	outbox     []audit.OutboxEntry
	outboxSeq  int64

	// relayed events, oldest dropped past historyCap
	history    []audit.Event
	historyCap int
}

const defaultHistoryCap = 10000

type Store struct {
	mu sync.RWMutex
	st *state
}

var _ storage.Store = (*Store)(nil)

func New() *Store {
	return &Store{st: &state{
		requests:   make(map[id.RecoveryRequestID]*recoverymodels.RecoveryRequest),
		morgues:    make(map[id.MorgueID]*morguemodels.Morgue),
		bodies:     make(map[id.BodyID]*bodymodels.Body),
		labels:     make(map[string]id.BodyID),
		checklists: make(map[id.BodyID]*bodymodels.Checklist),
		effects:    make(map[id.BodyID]*bodymodels.PersonalEffects),
		claims:     make(map[id.ClaimID]*idmodels.Claim),
		historyCap: defaultHistoryCap,
	}}
}

func (s *Store) Ping(context.Context) error { return nil }

// RunInTx runs fn under the writer lock and rolls back every write if fn
// returns an error or panics.
func (s *Store) RunInTx(ctx context.Context, fn func(ctx context.Context, tx storage.Tx) error) (err error) {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	t := &tx{state: s.st}
	defer func() {
		if r := recover(); r != nil {
			t.rollback()
			panic(r)
		}
	}()
	if err := fn(ctx, t); err != nil {
		t.rollback()
		return err
	}
	return nil
}

// PendingAudit implements audit.Outbox.
func (s *Store) PendingAudit(_ context.Context, limit int) ([]audit.OutboxEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	n := min(limit, len(s.st.outbox))
	out := make([]audit.OutboxEntry, n)
	copy(out, s.st.outbox[:n])
	return out, nil
}

// MarkAuditPublished drops relayed entries from the outbox and keeps their
// events in a bounded history.
func (s *Store) MarkAuditPublished(_ context.Context, seqs []int64, _ time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	done := make(map[int64]struct{}, len(seqs))
	for _, seq := range seqs {
		done[seq] = struct{}{}
	}
	kept := s.st.outbox[:0]
	for _, e := range s.st.outbox {
		if _, ok := done[e.Seq]; ok {
			s.st.history = append(s.st.history, e.Event)
			continue
		}
		kept = append(kept, e)
	}
	s.st.outbox = kept
	if over := len(s.st.history) - s.st.historyCap; over > 0 {
		s.st.history = append([]audit.Event(nil), s.st.history[over:]...)
	}
	return nil
}

// AuditEvents returns the retained relayed events followed by the pending
// ones, in commit order.
func (s *Store) AuditEvents() []audit.Event {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]audit.Event, 0, len(s.st.history)+len(s.st.outbox))
	out = append(out, s.st.history...)
	for _, e := range s.st.outbox {
		out = append(out, e.Event)
	}
	return out
}

// -----------------------------------------------------------------------------
// Reads. Store methods take the read lock; tx reuses the unlocked versions.
// -----------------------------------------------------------------------------

func (s *Store) GetRecoveryRequest(ctx context.Context, reqID id.RecoveryRequestID) (*recoverymodels.RecoveryRequest, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.st.GetRecoveryRequest(ctx, reqID)
}

func (s *Store) ListRecoveryRequests(ctx context.Context, f recoverymodels.Filter) ([]*recoverymodels.RecoveryRequest, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.st.ListRecoveryRequests(ctx, f)
}

func (s *Store) GetMorgue(ctx context.Context, morgueID id.MorgueID) (*morguemodels.Morgue, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.st.GetMorgue(ctx, morgueID)
}

func (s *Store) ListMorgues(ctx context.Context, includeRetired bool) ([]*morguemodels.Morgue, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.st.ListMorgues(ctx, includeRetired)
}

func (s *Store) GetBody(ctx context.Context, bodyID id.BodyID) (*bodymodels.Body, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.st.GetBody(ctx, bodyID)
}

func (s *Store) FindBodyByLabel(ctx context.Context, label string) (*bodymodels.Body, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.st.FindBodyByLabel(ctx, label)
}

func (s *Store) SearchBodies(ctx context.Context, q bodymodels.SearchQuery) ([]*bodymodels.Body, int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.st.SearchBodies(ctx, q)
}

func (s *Store) GetChecklist(ctx context.Context, bodyID id.BodyID) (*bodymodels.Checklist, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.st.GetChecklist(ctx, bodyID)
}

func (s *Store) GetEffects(ctx context.Context, bodyID id.BodyID) (*bodymodels.PersonalEffects, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.st.GetEffects(ctx, bodyID)
}

func (s *Store) GetClaim(ctx context.Context, claimID id.ClaimID) (*idmodels.Claim, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.st.GetClaim(ctx, claimID)
}

func (s *Store) ListClaimsForBody(ctx context.Context, bodyID id.BodyID) ([]*idmodels.Claim, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.st.ListClaimsForBody(ctx, bodyID)
}

func (s *Store) ListClaimsByIdentity(ctx context.Context, identity id.PersonRef) ([]*idmodels.Claim, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.st.ListClaimsByIdentity(ctx, identity)
}

func (s *Store) CountBodiesByMorgue(ctx context.Context) (reportmodels.MorgueCounts, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.st.CountBodiesByMorgue(ctx)
}

func (s *Store) CountBodiesByRequest(ctx context.Context) ([]reportmodels.RequestCount, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.st.CountBodiesByRequest(ctx)
}

func (s *Store) IdentificationDistribution(ctx context.Context) (reportmodels.Distribution, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.st.IdentificationDistribution(ctx)
}

func (st *state) GetRecoveryRequest(ctx context.Context, reqID id.RecoveryRequestID) (*recoverymodels.RecoveryRequest, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r, ok := st.requests[reqID]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	cp := *r
	return &cp, nil
}

func (st *state) ListRecoveryRequests(ctx context.Context, f recoverymodels.Filter) ([]*recoverymodels.RecoveryRequest, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	var out []*recoverymodels.RecoveryRequest
	for _, r := range st.requests {
		if f.Matches(r) {
			cp := *r
			out = append(out, &cp)
		}
	}
	slices.SortFunc(out, func(a, b *recoverymodels.RecoveryRequest) int {
		return lessCmp(recoverymodels.Less(a, b), recoverymodels.Less(b, a))
	})
	return page(out, f.Offset, f.Limit), nil
}

func (st *state) GetMorgue(ctx context.Context, morgueID id.MorgueID) (*morguemodels.Morgue, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m, ok := st.morgues[morgueID]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	cp := *m
	return &cp, nil
}

func (st *state) ListMorgues(ctx context.Context, includeRetired bool) ([]*morguemodels.Morgue, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	var out []*morguemodels.Morgue
	for _, m := range st.morgues {
		if m.IsRetired() && !includeRetired {
			continue
		}
		cp := *m
		out = append(out, &cp)
	}
	slices.SortFunc(out, func(a, b *morguemodels.Morgue) int {
		if c := strings.Compare(a.Name, b.Name); c != 0 {
			return c
		}
		return strings.Compare(a.ID.String(), b.ID.String())
	})
	return out, nil
}

func (st *state) GetBody(ctx context.Context, bodyID id.BodyID) (*bodymodels.Body, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	b, ok := st.bodies[bodyID]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	cp := *b
	return &cp, nil
}

func (st *state) FindBodyByLabel(ctx context.Context, label string) (*bodymodels.Body, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	bodyID, ok := st.labels[label]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	return st.GetBody(ctx, bodyID)
}

func (st *state) SearchBodies(ctx context.Context, q bodymodels.SearchQuery) ([]*bodymodels.Body, int, error) {
	if err := ctx.Err(); err != nil {
		return nil, 0, err
	}
	q.Normalize()
	var matched []*bodymodels.Body
	for _, b := range st.bodies {
		if labels.Match(q.Query, b.Label) {
			cp := *b
			matched = append(matched, &cp)
		}
	}
	slices.SortFunc(matched, func(a, b *bodymodels.Body) int {
		return strings.Compare(a.Label, b.Label)
	})
	return page(matched, q.Offset(), q.PageSize), len(matched), nil
}

func (st *state) GetChecklist(ctx context.Context, bodyID id.BodyID) (*bodymodels.Checklist, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	c, ok := st.checklists[bodyID]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	cp := *c
	return &cp, nil
}

func (st *state) GetEffects(ctx context.Context, bodyID id.BodyID) (*bodymodels.PersonalEffects, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	e, ok := st.effects[bodyID]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	cp := *e
	return &cp, nil
}

func (st *state) GetClaim(ctx context.Context, claimID id.ClaimID) (*idmodels.Claim, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	c, ok := st.claims[claimID]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	cp := *c
	return &cp, nil
}

func (st *state) ListClaimsForBody(ctx context.Context, bodyID id.BodyID) ([]*idmodels.Claim, error) {
	return st.listClaims(ctx, func(c *idmodels.Claim) bool { return c.Body == bodyID })
}

func (st *state) ListClaimsByIdentity(ctx context.Context, identity id.PersonRef) ([]*idmodels.Claim, error) {
	return st.listClaims(ctx, func(c *idmodels.Claim) bool { return c.ClaimedIdentity == identity })
}

func (st *state) listClaims(ctx context.Context, keep func(*idmodels.Claim) bool) ([]*idmodels.Claim, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	var out []*idmodels.Claim
	for _, c := range st.claims {
		if keep(c) {
			cp := *c
			out = append(out, &cp)
		}
	}
	slices.SortFunc(out, func(a, b *idmodels.Claim) int {
		return lessCmp(idmodels.Less(a, b), idmodels.Less(b, a))
	})
	return out, nil
}

func (st *state) CountBodiesByMorgue(ctx context.Context) (reportmodels.MorgueCounts, error) {
	if err := ctx.Err(); err != nil {
		return reportmodels.MorgueCounts{}, err
	}
	counts := make(map[id.MorgueID]int)
	var result reportmodels.MorgueCounts
	for _, b := range st.bodies {
		if b.Morgue.IsNil() {
			result.Unassigned++
			continue
		}
		counts[b.Morgue]++
	}
	morgues, _ := st.ListMorgues(ctx, true)
	for _, m := range morgues {
		if m.IsRetired() && counts[m.ID] == 0 {
			continue
		}
		result.Morgues = append(result.Morgues, reportmodels.MorgueCount{Morgue: m.ID, Name: m.Name, Bodies: counts[m.ID]})
	}
	return result, nil
}

func (st *state) CountBodiesByRequest(ctx context.Context) ([]reportmodels.RequestCount, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	counts := make(map[id.RecoveryRequestID]int)
	for _, b := range st.bodies {
		if !b.RecoveryRequest.IsNil() {
			counts[b.RecoveryRequest]++
		}
	}
	requests, _ := st.ListRecoveryRequests(ctx, recoverymodels.Filter{})
	out := make([]reportmodels.RequestCount, 0, len(requests))
	for _, r := range requests {
		out = append(out, reportmodels.RequestCount{
			Request:         r.ID,
			Marker:          r.Marker,
			BodiesFound:     r.BodiesFound,
			BodiesRecovered: r.BodiesRecovered,
			Bodies:          counts[r.ID],
		})
	}
	return out, nil
}

func (st *state) IdentificationDistribution(ctx context.Context) (reportmodels.Distribution, error) {
	if err := ctx.Err(); err != nil {
		return reportmodels.Distribution{}, err
	}
	byBody := make(map[id.BodyID][]*idmodels.Claim)
	for _, c := range st.claims {
		byBody[c.Body] = append(byBody[c.Body], c)
	}
	var d reportmodels.Distribution
	for bodyID := range st.bodies {
		switch idmodels.EffectiveStatus(byBody[bodyID]) {
		case idmodels.StatusConfirmed:
			d.Confirmed++
		case idmodels.StatusPreliminary:
			d.Preliminary++
		default:
			d.Unidentified++
		}
	}
	return d, nil
}

func lessCmp(less, greater bool) int {
	switch {
	case less:
		return -1
	case greater:
		return 1
	}
	return 0
}

func page[T any](items []T, offset, limit int) []T {
	offset = max(offset, 0)
	if offset >= len(items) {
		return nil
	}
	items = items[offset:]
	if limit > 0 && limit < len(items) {
		items = items[:limit]
	}
	return items
}
