package memory

import (
	"context"
	"fmt"

	"dvi/internal/audit"
	bodymodels "dvi/internal/body/models"
	idmodels "dvi/internal/identification/models"
	morguemodels "dvi/internal/morgue/models"
	recoverymodels "dvi/internal/recovery/models"
	"dvi/internal/storage"
	id "dvi/pkg/domain"
	"dvi/pkg/platform/sentinel"
)

// tx runs with the store's writer lock held.
type tx struct {
	*state
	undo []func()
}

func (t *tx) onRollback(f func()) { t.undo = append(t.undo, f) }

func (t *tx) rollback() {
	for i := len(t.undo) - 1; i >= 0; i-- {
		t.undo[i]()
	}
	t.undo = nil
}

// restore returns an undo step putting m[k] back to its current value.
func restore[K comparable, V any](m map[K]V, k K) func() {
	prev, had := m[k]
	return func() {
		if had {
			m[k] = prev
		} else {
			delete(m, k)
		}
	}
}

func (t *tx) InsertRecoveryRequest(ctx context.Context, r *recoverymodels.RecoveryRequest) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if _, ok := t.requests[r.ID]; ok {
		return fmt.Errorf("recovery request %s: %w", r.ID, sentinel.ErrConflict)
	}
	t.onRollback(restore(t.requests, r.ID))
	cp := *r
	t.requests[r.ID] = &cp
	return nil
}

func (t *tx) LockRecoveryRequest(ctx context.Context, reqID id.RecoveryRequestID) (*recoverymodels.RecoveryRequest, error) {
	return t.GetRecoveryRequest(ctx, reqID)
}

func (t *tx) UpdateRecoveryRequest(ctx context.Context, r *recoverymodels.RecoveryRequest) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if _, ok := t.requests[r.ID]; !ok {
		return sentinel.ErrNotFound
	}
	t.onRollback(restore(t.requests, r.ID))
	cp := *r
	t.requests[r.ID] = &cp
	return nil
}

func (t *tx) liveMorgueNamed(name string, except id.MorgueID) bool {
	for _, m := range t.morgues {
		if m.ID != except && !m.IsRetired() && m.Name == name {
			return true
		}
	}
	return false
}

func (t *tx) InsertMorgue(ctx context.Context, m *morguemodels.Morgue) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if !m.IsRetired() && t.liveMorgueNamed(m.Name, m.ID) {
		return storage.Conflict(storage.ConstraintMorgueName)
	}
	t.onRollback(restore(t.morgues, m.ID))
	cp := *m
	t.morgues[m.ID] = &cp
	return nil
}

func (t *tx) LockMorgue(ctx context.Context, morgueID id.MorgueID) (*morguemodels.Morgue, error) {
	return t.GetMorgue(ctx, morgueID)
}

func (t *tx) UpdateMorgue(ctx context.Context, m *morguemodels.Morgue) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if _, ok := t.morgues[m.ID]; !ok {
		return sentinel.ErrNotFound
	}
	if !m.IsRetired() && t.liveMorgueNamed(m.Name, m.ID) {
		return storage.Conflict(storage.ConstraintMorgueName)
	}
	t.onRollback(restore(t.morgues, m.ID))
	cp := *m
	t.morgues[m.ID] = &cp
	return nil
}

func (t *tx) DeleteMorgue(ctx context.Context, morgueID id.MorgueID) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if _, ok := t.morgues[morgueID]; !ok {
		return sentinel.ErrNotFound
	}
	if n, _ := t.CountBodiesInMorgue(ctx, morgueID); n > 0 {
		return fmt.Errorf("morgue holds %d bodies: %w", n, sentinel.ErrInvalidState)
	}
	t.onRollback(restore(t.morgues, morgueID))
	delete(t.morgues, morgueID)
	return nil
}

func (t *tx) CountBodiesInMorgue(ctx context.Context, morgueID id.MorgueID) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	n := 0
	for _, b := range t.bodies {
		if b.Morgue == morgueID {
			n++
		}
	}
	return n, nil
}

func (t *tx) checkBodyRefs(b *bodymodels.Body) error {
	if !b.Morgue.IsNil() {
		if _, ok := t.morgues[b.Morgue]; !ok {
			return fmt.Errorf("morgue %s: %w", b.Morgue, sentinel.ErrInvalidState)
		}
	}
	if !b.RecoveryRequest.IsNil() {
		if _, ok := t.requests[b.RecoveryRequest]; !ok {
			return fmt.Errorf("recovery request %s: %w", b.RecoveryRequest, sentinel.ErrInvalidState)
		}
	}
	return nil
}

func (t *tx) InsertBody(ctx context.Context, b *bodymodels.Body) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if _, taken := t.labels[b.Label]; taken {
		return storage.Conflict(storage.ConstraintBodyLabel)
	}
	if err := t.checkBodyRefs(b); err != nil {
		return err
	}
	t.onRollback(restore(t.bodies, b.ID))
	t.onRollback(restore(t.labels, b.Label))
	cp := *b
	t.bodies[b.ID] = &cp
	t.labels[b.Label] = b.ID
	return nil
}

func (t *tx) LockBody(ctx context.Context, bodyID id.BodyID) (*bodymodels.Body, error) {
	return t.GetBody(ctx, bodyID)
}

func (t *tx) UpdateBody(ctx context.Context, b *bodymodels.Body) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	old, ok := t.bodies[b.ID]
	if !ok {
		return sentinel.ErrNotFound
	}
	if old.Label != b.Label {
		if _, taken := t.labels[b.Label]; taken {
			return storage.Conflict(storage.ConstraintBodyLabel)
		}
	}
	if err := t.checkBodyRefs(b); err != nil {
		return err
	}
	t.onRollback(restore(t.bodies, b.ID))
	t.onRollback(restore(t.labels, old.Label))
	t.onRollback(restore(t.labels, b.Label))
	delete(t.labels, old.Label)
	cp := *b
	t.bodies[b.ID] = &cp
	t.labels[b.Label] = b.ID
	return nil
}

func (t *tx) DeleteBody(ctx context.Context, bodyID id.BodyID) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	b, ok := t.bodies[bodyID]
	if !ok {
		return sentinel.ErrNotFound
	}
	for _, c := range t.claims {
		if c.Body == bodyID {
			return fmt.Errorf("body is referenced by claims: %w", sentinel.ErrInvalidState)
		}
	}
	t.onRollback(restore(t.bodies, bodyID))
	t.onRollback(restore(t.labels, b.Label))
	t.onRollback(restore(t.checklists, bodyID))
	t.onRollback(restore(t.effects, bodyID))
	delete(t.bodies, bodyID)
	delete(t.labels, b.Label)
	delete(t.checklists, bodyID)
	delete(t.effects, bodyID)
	return nil
}

func (t *tx) InsertChecklist(ctx context.Context, c *bodymodels.Checklist) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if _, ok := t.bodies[c.BodyID]; !ok {
		return fmt.Errorf("checklist body %s: %w", c.BodyID, sentinel.ErrInvalidState)
	}
	if _, ok := t.checklists[c.BodyID]; ok {
		return fmt.Errorf("checklist %s: %w", c.BodyID, sentinel.ErrConflict)
	}
	t.onRollback(restore(t.checklists, c.BodyID))
	cp := *c
	t.checklists[c.BodyID] = &cp
	return nil
}

func (t *tx) UpdateChecklist(ctx context.Context, c *bodymodels.Checklist) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if _, ok := t.checklists[c.BodyID]; !ok {
		return sentinel.ErrNotFound
	}
	t.onRollback(restore(t.checklists, c.BodyID))
	cp := *c
	t.checklists[c.BodyID] = &cp
	return nil
}

func (t *tx) UpsertEffects(ctx context.Context, e *bodymodels.PersonalEffects) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if _, ok := t.bodies[e.BodyID]; !ok {
		return fmt.Errorf("effects body %s: %w", e.BodyID, sentinel.ErrInvalidState)
	}
	t.onRollback(restore(t.effects, e.BodyID))
	cp := *e
	t.effects[e.BodyID] = &cp
	return nil
}

func (t *tx) DeleteEffects(ctx context.Context, bodyID id.BodyID) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if _, ok := t.effects[bodyID]; !ok {
		return sentinel.ErrNotFound
	}
	t.onRollback(restore(t.effects, bodyID))
	delete(t.effects, bodyID)
	return nil
}

// checkClaimUniqueness mirrors the two partial unique indexes.
func (t *tx) checkClaimUniqueness(c *idmodels.Claim) error {
	for _, other := range t.claims {
		if other.ID == c.ID || other.Body != c.Body {
			continue
		}
		if !c.IsRevoked() && !other.IsRevoked() && other.ClaimedIdentity == c.ClaimedIdentity {
			return storage.Conflict(storage.ConstraintClaimIdentity)
		}
		if c.IsConfirmed() && other.IsConfirmed() {
			return storage.Conflict(storage.ConstraintClaimConfirmed)
		}
	}
	return nil
}

func (t *tx) InsertClaim(ctx context.Context, c *idmodels.Claim) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if _, ok := t.bodies[c.Body]; !ok {
		return fmt.Errorf("claim body %s: %w", c.Body, sentinel.ErrInvalidState)
	}
	if err := t.checkClaimUniqueness(c); err != nil {
		return err
	}
	t.onRollback(restore(t.claims, c.ID))
	cp := *c
	t.claims[c.ID] = &cp
	return nil
}

func (t *tx) UpdateClaim(ctx context.Context, c *idmodels.Claim) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if _, ok := t.claims[c.ID]; !ok {
		return sentinel.ErrNotFound
	}
	if err := t.checkClaimUniqueness(c); err != nil {
		return err
	}
	t.onRollback(restore(t.claims, c.ID))
	cp := *c
	t.claims[c.ID] = &cp
	return nil
}

func (t *tx) DeleteClaim(ctx context.Context, claimID id.ClaimID) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if _, ok := t.claims[claimID]; !ok {
		return sentinel.ErrNotFound
	}
	t.onRollback(restore(t.claims, claimID))
	delete(t.claims, claimID)
	return nil
}

func (t *tx) AppendAudit(ctx context.Context, e audit.Event) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	t.outboxSeq++
	t.outbox = append(t.outbox, audit.OutboxEntry{Seq: t.outboxSeq, Event: e})
	n := len(t.outbox)
	t.onRollback(func() {
		t.outbox = t.outbox[:n-1]
		t.outboxSeq--
	})
	return nil
}
