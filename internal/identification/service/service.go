// Package service is the identification protocol engine.
//
// Every claim write locks the claimed body first, so the one-confirmed-claim
// rule and the live-identity rule are checked against a stable claim set.
// The store's unique indexes back both rules up.
package service

import (
	"context"
	"errors"
	"log/slog"
	"slices"
	"strings"

	"go.opentelemetry.io/otel/attribute"

	"dvi/internal/audit"
	"dvi/internal/authz"
	bodymodels "dvi/internal/body/models"
	"dvi/internal/identification/metrics"
	"dvi/internal/identification/models"
	"dvi/internal/platform/tracing"
	"dvi/internal/storage"
	id "dvi/pkg/domain"
	dErrors "dvi/pkg/domain-errors"
	"dvi/pkg/platform/sentinel"
	"dvi/pkg/requestcontext"
)

const resourceKind = "claim"

type PersonResolver interface {
	Resolve(ctx context.Context, ref id.PersonRef, field string) (id.PersonRef, error)
}

type AuditPublisher interface {
	Emit(ctx context.Context, sink audit.Appender, e audit.Event) error
}

type Service struct {
	store      storage.Store
	authorizer authz.Authorizer
	persons    PersonResolver
	audit      AuditPublisher
	logger     *slog.Logger
	metrics    *metrics.Metrics
}

type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) {
		s.metrics = m
	}
}

func WithAuditPublisher(p AuditPublisher) Option {
	return func(s *Service) {
		s.audit = p
	}
}

func New(store storage.Store, authorizer authz.Authorizer, persons PersonResolver, opts ...Option) *Service {
	s := &Service{
		store:      store,
		authorizer: authorizer,
		persons:    persons,
		audit:      audit.NewPublisher(),
		logger:     slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// OpenInput carries open_claim's arguments. An empty IdentifiedBy defaults to
// the calling principal.
type OpenInput struct {
	Body            id.BodyID
	ClaimedIdentity id.PersonRef
	IdentifiedBy    id.PersonRef
	Method          models.Method
	Comment         string
}

// Open records a new unidentified claim against a body.
func (s *Service) Open(ctx context.Context, in OpenInput) (c *models.Claim, err error) {
	ctx, span := tracing.Start(ctx, "identification", "open", attribute.String("body_id", in.Body.String()))
	defer func() { tracing.End(span, err) }()

	if err := authz.Require(ctx, s.authorizer, authz.ActionClaimOpen, authz.Resource{Kind: "body", ID: in.Body.String()}); err != nil {
		return nil, err
	}
	identity, err := s.persons.Resolve(ctx, in.ClaimedIdentity, "claimed_identity")
	if err != nil {
		return nil, err
	}
	identifiedBy := in.IdentifiedBy
	if identifiedBy == "" {
		identifiedBy = actor(ctx)
	}
	identifiedBy, err = s.persons.Resolve(ctx, identifiedBy, "identified_by")
	if err != nil {
		return nil, err
	}
	now := requestcontext.Now(ctx)
	c, err = models.NewClaim(id.NewClaimID(), in.Body, identity, identifiedBy, in.Method, strings.TrimSpace(in.Comment), now)
	if err != nil {
		return nil, err
	}

	err = s.store.RunInTx(ctx, func(ctx context.Context, tx storage.Tx) error {
		b, err := tx.LockBody(ctx, in.Body)
		if err != nil {
			return bodyReference(err)
		}
		existing, err := tx.ListClaimsForBody(ctx, in.Body)
		if err != nil {
			return err
		}
		for _, other := range existing {
			if other.IsRevoked() {
				continue
			}
			if other.IsConfirmed() {
				return alreadyConfirmed()
			}
			if other.ClaimedIdentity == identity {
				return duplicateClaim()
			}
		}
		if err := tx.InsertClaim(ctx, c); err != nil {
			return err
		}
		b.ApplyClaimOpened(now)
		if err := tx.UpdateBody(ctx, b); err != nil {
			return err
		}
		return s.emit(ctx, tx, audit.ActionClaimOpened, c, map[string]string{
			"body":             c.Body.String(),
			"claimed_identity": string(c.ClaimedIdentity),
			"method":           string(c.Method),
		})
	})
	if err != nil {
		return nil, s.translate(ctx, "open", c.ID, err)
	}
	s.metrics.IncOpened()
	s.logger.InfoContext(ctx, "claim opened",
		"claim_id", c.ID.String(),
		"body_id", c.Body.String(),
		"request_id", requestcontext.RequestID(ctx),
	)
	return c, nil
}

// AdvanceInput requests a status change. Override needs the
// claim:override_evidence grant.
type AdvanceInput struct {
	To       models.Status
	Method   models.Method
	Override bool
	Reason   string
}

func (s *Service) Advance(ctx context.Context, claimID id.ClaimID, in AdvanceInput) (*models.Claim, error) {
	if err := s.require(ctx, authz.ActionClaimAdvance, claimID); err != nil {
		return nil, err
	}
	if in.Override {
		if err := s.require(ctx, authz.ActionOverrideEvidence, claimID); err != nil {
			return nil, err
		}
	}
	a := models.Advance{To: in.To, Method: in.Method, Override: in.Override}
	return s.mutate(ctx, "advance", claimID, audit.ActionClaimAdvanced, func(ctx context.Context, tx storage.Tx, c *models.Claim) (map[string]string, error) {
		if err := c.CanAdvance(a); err != nil {
			return nil, err
		}
		if a.To == models.StatusConfirmed {
			if err := s.checkNoOtherConfirmed(ctx, tx, c); err != nil {
				return nil, err
			}
		}
		from := c.Status
		c.ApplyAdvance(a, actor(ctx), requestcontext.Now(ctx))
		details := map[string]string{"from": string(from), "to": string(a.To), "method": string(c.Method)}
		if in.Override && a.To == models.StatusConfirmed && !c.Method.IsStrong() {
			details["override"] = "true"
			s.metrics.IncOverride()
		}
		if in.Reason != "" {
			details["reason"] = in.Reason
		}
		return details, nil
	})
}

// Revoke returns the claim to unidentified and keeps it on record.
func (s *Service) Revoke(ctx context.Context, claimID id.ClaimID, reason string) (*models.Claim, error) {
	if err := s.require(ctx, authz.ActionClaimRevoke, claimID); err != nil {
		return nil, err
	}
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return nil, dErrors.NewField(dErrors.CodeInvalidInput, "reason", "reason is required")
	}
	if err := bodymodels.ValidateText("reason", reason); err != nil {
		return nil, err
	}
	return s.mutate(ctx, "revoke", claimID, audit.ActionClaimRevoked, func(ctx context.Context, _ storage.Tx, c *models.Claim) (map[string]string, error) {
		if err := c.CanRevoke(); err != nil {
			return nil, err
		}
		from := c.Status
		c.ApplyRevoke(actor(ctx), reason, requestcontext.Now(ctx))
		return map[string]string{"from": string(from), "reason": reason}, nil
	})
}

// Delete hard-deletes a claim that was never confirmed. The body stays
// locked against relabel and delete.
func (s *Service) Delete(ctx context.Context, claimID id.ClaimID) (err error) {
	ctx, span := tracing.Start(ctx, "identification", "delete", attribute.String("claim_id", claimID.String()))
	defer func() { tracing.End(span, err) }()

	if err := s.require(ctx, authz.ActionClaimDelete, claimID); err != nil {
		return err
	}
	err = s.store.RunInTx(ctx, func(ctx context.Context, tx storage.Tx) error {
		c, err := s.lockClaim(ctx, tx, claimID)
		if err != nil {
			return err
		}
		if err := c.CanDelete(); err != nil {
			return err
		}
		if err := tx.DeleteClaim(ctx, claimID); err != nil {
			return err
		}
		return s.emit(ctx, tx, audit.ActionClaimDeleted, c, map[string]string{"body": c.Body.String()})
	})
	if err != nil {
		return s.translate(ctx, "delete", claimID, err)
	}
	return nil
}

func (s *Service) Get(ctx context.Context, claimID id.ClaimID) (*models.Claim, error) {
	c, err := s.store.GetClaim(ctx, claimID)
	if err != nil {
		return nil, storage.Translate(err, dErrors.CodeUnknownClaim, "claim")
	}
	return c, nil
}

// ClaimsForBody lists a body's claims oldest first.
func (s *Service) ClaimsForBody(ctx context.Context, bodyID id.BodyID) ([]*models.Claim, error) {
	if _, err := s.store.GetBody(ctx, bodyID); err != nil {
		return nil, storage.Translate(err, dErrors.CodeUnknownBody, "body")
	}
	claims, err := s.store.ListClaimsForBody(ctx, bodyID)
	if err != nil {
		return nil, storage.Translate(err, dErrors.CodeUnknownClaim, "claim")
	}
	return sorted(claims), nil
}

// ClaimsByIdentity lists every claim naming the person, across bodies.
func (s *Service) ClaimsByIdentity(ctx context.Context, identity id.PersonRef) ([]*models.Claim, error) {
	ref, err := id.ParsePersonRef(string(identity))
	if err != nil {
		return nil, dErrors.WithField(err, "claimed_identity")
	}
	claims, err := s.store.ListClaimsByIdentity(ctx, ref)
	if err != nil {
		return nil, storage.Translate(err, dErrors.CodeUnknownClaim, "claim")
	}
	return sorted(claims), nil
}

// Identification reports the body's effective status with its claims.
func (s *Service) Identification(ctx context.Context, bodyID id.BodyID) (*models.BodyIdentification, error) {
	claims, err := s.ClaimsForBody(ctx, bodyID)
	if err != nil {
		return nil, err
	}
	return &models.BodyIdentification{
		Body:            bodyID,
		EffectiveStatus: models.EffectiveStatus(claims),
		Claims:          claims,
	}, nil
}

func (s *Service) require(ctx context.Context, action authz.Action, claimID id.ClaimID) error {
	return authz.Require(ctx, s.authorizer, action, authz.Resource{Kind: resourceKind, ID: claimID.String()})
}

// lockClaim finds the claim, locks its body and re-reads the claim under
// that lock.
func (s *Service) lockClaim(ctx context.Context, tx storage.Tx, claimID id.ClaimID) (*models.Claim, error) {
	c, err := tx.GetClaim(ctx, claimID)
	if err != nil {
		return nil, err
	}
	if _, err := tx.LockBody(ctx, c.Body); err != nil {
		return nil, err
	}
	return tx.GetClaim(ctx, claimID)
}

func (s *Service) checkNoOtherConfirmed(ctx context.Context, tx storage.Tx, c *models.Claim) error {
	claims, err := tx.ListClaimsForBody(ctx, c.Body)
	if err != nil {
		return err
	}
	for _, other := range claims {
		if other.ID != c.ID && !other.IsRevoked() && other.IsConfirmed() {
			return alreadyConfirmed()
		}
	}
	return nil
}

// mutate runs one claim state change under the body lock.
func (s *Service) mutate(ctx context.Context, command string, claimID id.ClaimID, action audit.Action,
	apply func(ctx context.Context, tx storage.Tx, c *models.Claim) (map[string]string, error)) (c *models.Claim, err error) {
	ctx, span := tracing.Start(ctx, "identification", command, attribute.String("claim_id", claimID.String()))
	defer func() { tracing.End(span, err) }()

	err = s.store.RunInTx(ctx, func(ctx context.Context, tx storage.Tx) error {
		locked, err := s.lockClaim(ctx, tx, claimID)
		if err != nil {
			return err
		}
		details, err := apply(ctx, tx, locked)
		if err != nil {
			return err
		}
		if err := tx.UpdateClaim(ctx, locked); err != nil {
			return err
		}
		c = locked
		return s.emit(ctx, tx, action, locked, details)
	})
	if err != nil {
		return nil, s.translate(ctx, command, claimID, err)
	}
	s.metrics.IncTransition(string(c.Status))
	s.logger.InfoContext(ctx, "claim updated",
		"command", command,
		"claim_id", claimID.String(),
		"status", string(c.Status),
		"request_id", requestcontext.RequestID(ctx),
	)
	return c, nil
}

func (s *Service) emit(ctx context.Context, tx storage.Tx, action audit.Action, c *models.Claim, details map[string]string) error {
	return s.audit.Emit(ctx, tx, audit.Event{
		Action:        action,
		AggregateType: audit.AggregateClaim,
		AggregateID:   c.ID.String(),
		Reason:        c.RevokeReason,
		Details:       details,
	})
}

func (s *Service) translate(ctx context.Context, command string, claimID id.ClaimID, err error) error {
	switch {
	case storage.ConflictOn(err, storage.ConstraintClaimIdentity):
		err = duplicateClaim()
	case storage.ConflictOn(err, storage.ConstraintClaimConfirmed):
		err = alreadyConfirmed()
	case errors.Is(err, sentinel.ErrInvalidState):
		err = dErrors.Wrap(err, dErrors.CodeConcurrentModification, "the body changed, retry the command")
	default:
		err = storage.Translate(err, dErrors.CodeUnknownClaim, "claim")
	}
	level := slog.LevelWarn
	if dErrors.KindOf(dErrors.CodeOf(err)) == dErrors.KindInfrastructure {
		level = slog.LevelError
	}
	s.logger.Log(ctx, level, "claim command failed",
		"command", command,
		"claim_id", claimID.String(),
		"request_id", requestcontext.RequestID(ctx),
		"error", err,
	)
	return err
}

func actor(ctx context.Context) id.PersonRef {
	return id.PersonRef(requestcontext.Principal(ctx).Subject)
}

func bodyReference(err error) error {
	if errors.Is(err, sentinel.ErrNotFound) {
		return dErrors.NewField(dErrors.CodeUnknownBody, "body", "body not found")
	}
	return err
}

func duplicateClaim() error {
	return dErrors.NewField(dErrors.CodeDuplicateClaim, "claimed_identity", "a live claim for this identity already exists on the body")
}

func alreadyConfirmed() error {
	return dErrors.New(dErrors.CodeAlreadyConfirmed, "the body already has a confirmed identification")
}

func sorted(claims []*models.Claim) []*models.Claim {
	out := slices.Clone(claims)
	if out == nil {
		out = []*models.Claim{}
	}
	slices.SortFunc(out, func(a, b *models.Claim) int {
		switch {
		case models.Less(a, b):
			return -1
		case models.Less(b, a):
			return 1
		}
		return 0
	})
	return out
}
