// Package service is the body record and checklist engine.
//
// Every command runs in one unit of work. Commands that move a body call the
// location tracker last inside that unit, so a tracker failure rolls back the
// body rows and a committed body always has its presence event.
package service

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"go.opentelemetry.io/otel/attribute"

	"dvi/internal/audit"
	"dvi/internal/authz"
	"dvi/internal/body/metrics"
	"dvi/internal/body/models"
	"dvi/internal/labels"
	"dvi/internal/location"
	"dvi/internal/platform/tracing"
	"dvi/internal/storage"
	id "dvi/pkg/domain"
	dErrors "dvi/pkg/domain-errors"
	"dvi/pkg/platform/sentinel"
	"dvi/pkg/requestcontext"
)

const resourceKind = "body"

// EnumChecker validates apparent gender and age group against the person
// registry's sets.
type EnumChecker interface {
	CheckGender(ctx context.Context, g string) error
	CheckAgeGroup(ctx context.Context, ag string) error
}

type LocationResolver interface {
	Resolve(ctx context.Context, ref id.LocationRef, field string) (id.LocationRef, error)
}

type Tracker interface {
	SetLocation(ctx context.Context, body id.BodyID, loc id.LocationRef, at time.Time) (location.Presence, error)
	CurrentLocation(ctx context.Context, body id.BodyID) (location.Presence, bool, error)
	History(ctx context.Context, body id.BodyID) ([]location.Presence, error)
}

type AuditPublisher interface {
	Emit(ctx context.Context, sink audit.Appender, e audit.Event) error
}

type Service struct {
	store      storage.Store
	authorizer authz.Authorizer
	enums      EnumChecker
	locations  LocationResolver
	tracker    Tracker
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

func New(store storage.Store, authorizer authz.Authorizer, enums EnumChecker, locations LocationResolver, tracker Tracker, opts ...Option) *Service {
	s := &Service{
		store:      store,
		authorizer: authorizer,
		enums:      enums,
		locations:  locations,
		tracker:    tracker,
		audit:      audit.NewPublisher(),
		logger:     slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// CreateInput carries create_body's arguments. Morgue and RecoveryRequest
// are optional.
type CreateInput struct {
	Label            string
	RecoveryRequest  id.RecoveryRequestID
	Morgue           id.MorgueID
	DateOfRecovery   time.Time
	RecoveryDetails  string
	ApparentGender   models.Gender
	ApparentAgeGroup models.AgeGroup
	PlaceOfRecovery  id.LocationRef
	Observed         models.Observed
}

// Create persists a body with a fresh checklist and records its first
// presence at the place of recovery.
func (s *Service) Create(ctx context.Context, in CreateInput) (d *models.Details, err error) {
	defer s.metrics.ObserveCommand("create", time.Now())
	ctx, span := tracing.Start(ctx, "body", "create")
	defer func() { tracing.End(span, err) }()

	if err := authz.Require(ctx, s.authorizer, authz.ActionBodyCreate, authz.Resource{Kind: resourceKind}); err != nil {
		return nil, err
	}
	if err := labels.CheckFormat(in.Label); err != nil {
		return nil, err
	}
	if err := s.checkEnums(ctx, in.ApparentGender, in.ApparentAgeGroup); err != nil {
		return nil, err
	}
	place, err := s.locations.Resolve(ctx, in.PlaceOfRecovery, "place_of_recovery")
	if err != nil {
		return nil, err
	}
	now := requestcontext.Now(ctx)
	b, err := models.NewBody(id.NewBodyID(), models.NewBodyParams{
		Label:            in.Label,
		Morgue:           in.Morgue,
		RecoveryRequest:  in.RecoveryRequest,
		DateOfRecovery:   in.DateOfRecovery,
		RecoveryDetails:  strings.TrimSpace(in.RecoveryDetails),
		ApparentGender:   in.ApparentGender,
		ApparentAgeGroup: in.ApparentAgeGroup,
		PlaceOfRecovery:  place,
		Observed:         in.Observed,
	}, now)
	if err != nil {
		return nil, err
	}
	checklist := models.NewChecklist(b.ID, now)

	err = s.store.RunInTx(ctx, func(ctx context.Context, tx storage.Tx) error {
		if err := labels.Validate(ctx, tx, b.Label, id.BodyID{}); err != nil {
			return err
		}
		if !b.Morgue.IsNil() {
			if err := s.checkMorgue(ctx, tx, b.Morgue); err != nil {
				return err
			}
		}
		if !b.RecoveryRequest.IsNil() {
			r, err := tx.GetRecoveryRequest(ctx, b.RecoveryRequest)
			if err != nil {
				return referenceError(err, dErrors.CodeUnknownRequest, "recovery_request", "recovery request")
			}
			if err := b.CheckFoundDate(r.DateFound); err != nil {
				return err
			}
		}
		if err := tx.InsertBody(ctx, b); err != nil {
			return err
		}
		if err := tx.InsertChecklist(ctx, checklist); err != nil {
			return err
		}
		if err := s.emit(ctx, tx, audit.ActionBodyCreated, b.ID, map[string]string{
			"label":             b.Label,
			"place_of_recovery": string(b.PlaceOfRecovery),
		}); err != nil {
			return err
		}
		_, err := s.tracker.SetLocation(ctx, b.ID, b.PlaceOfRecovery, b.DateOfRecovery)
		return err
	})
	if err != nil {
		return nil, s.translate(ctx, "create", b.ID, err)
	}
	s.metrics.IncCreated()
	s.logger.InfoContext(ctx, "body created",
		"body_id", b.ID.String(),
		"label", b.Label,
		"request_id", requestcontext.RequestID(ctx),
	)
	return &models.Details{Body: b, Checklist: checklist}, nil
}

// Get returns the body with its checklist and personal effects.
func (s *Service) Get(ctx context.Context, bodyID id.BodyID) (*models.Details, error) {
	b, err := s.store.GetBody(ctx, bodyID)
	if err != nil {
		return nil, storage.Translate(err, dErrors.CodeUnknownBody, "body")
	}
	checklist, err := s.store.GetChecklist(ctx, bodyID)
	if err != nil {
		return nil, storage.Translate(err, dErrors.CodeUnknownBody, "body checklist")
	}
	effects, err := s.store.GetEffects(ctx, bodyID)
	if err != nil && !errors.Is(err, sentinel.ErrNotFound) {
		return nil, storage.Translate(err, dErrors.CodeUnknownBody, "body")
	}
	return &models.Details{Body: b, Checklist: checklist, Effects: effects}, nil
}

// Search pages through bodies whose label matches q.Query.
func (s *Service) Search(ctx context.Context, q models.SearchQuery) (*models.SearchResult, error) {
	q.Normalize()
	bodies, total, err := s.store.SearchBodies(ctx, q)
	if err != nil {
		return nil, storage.Translate(err, dErrors.CodeUnknownBody, "body")
	}
	if bodies == nil {
		bodies = []*models.Body{}
	}
	return &models.SearchResult{Bodies: bodies, Total: total, Page: q.Page, PageSize: q.PageSize}, nil
}

// UpdateObserved changes the condition flags. It never touches identity.
func (s *Service) UpdateObserved(ctx context.Context, bodyID id.BodyID, u models.ObservedUpdate) (*models.Body, error) {
	if err := s.require(ctx, authz.ActionBodyUpdate, bodyID); err != nil {
		return nil, err
	}
	return s.update(ctx, "update_observed", bodyID, audit.ActionBodyUpdated, func(_ context.Context, _ storage.Tx, b *models.Body, now time.Time) (map[string]string, error) {
		if !b.Observed.Apply(u) {
			return nil, nil
		}
		b.UpdatedAt = now
		return map[string]string{"fields": "observed"}, nil
	})
}

// DetailsUpdate carries optional changes to the descriptive fields recorded
// at recovery. Nil fields are left alone.
type DetailsUpdate struct {
	RecoveryDetails  *string
	ApparentGender   *models.Gender
	ApparentAgeGroup *models.AgeGroup
}

func (s *Service) UpdateRecoveryDetails(ctx context.Context, bodyID id.BodyID, u DetailsUpdate) (*models.Body, error) {
	if err := s.require(ctx, authz.ActionBodyUpdate, bodyID); err != nil {
		return nil, err
	}
	if u.RecoveryDetails != nil {
		details := strings.TrimSpace(*u.RecoveryDetails)
		if err := models.ValidateText("recovery_details", details); err != nil {
			return nil, err
		}
		u.RecoveryDetails = &details
	}
	if u.ApparentGender != nil {
		if err := s.enums.CheckGender(ctx, string(*u.ApparentGender)); err != nil {
			return nil, err
		}
	}
	if u.ApparentAgeGroup != nil {
		if err := s.enums.CheckAgeGroup(ctx, string(*u.ApparentAgeGroup)); err != nil {
			return nil, err
		}
	}
	return s.update(ctx, "update_recovery_details", bodyID, audit.ActionBodyUpdated, func(_ context.Context, _ storage.Tx, b *models.Body, now time.Time) (map[string]string, error) {
		var changed []string
		if u.RecoveryDetails != nil && *u.RecoveryDetails != b.RecoveryDetails {
			b.RecoveryDetails = *u.RecoveryDetails
			changed = append(changed, "recovery_details")
		}
		if u.ApparentGender != nil && *u.ApparentGender != b.ApparentGender {
			b.ApparentGender = *u.ApparentGender
			changed = append(changed, "apparent_gender")
		}
		if u.ApparentAgeGroup != nil && *u.ApparentAgeGroup != b.ApparentAgeGroup {
			b.ApparentAgeGroup = *u.ApparentAgeGroup
			changed = append(changed, "apparent_age_group")
		}
		if len(changed) == 0 {
			return nil, nil
		}
		b.UpdatedAt = now
		return map[string]string{"fields": strings.Join(changed, ",")}, nil
	})
}

// ReassignMorgue moves the body to morgueID and records its presence at the
// morgue's location as of at. A zero at means now.
func (s *Service) ReassignMorgue(ctx context.Context, bodyID id.BodyID, morgueID id.MorgueID, at time.Time) (*models.Body, error) {
	if err := s.require(ctx, authz.ActionBodyUpdate, bodyID); err != nil {
		return nil, err
	}
	if morgueID.IsNil() {
		return nil, dErrors.NewField(dErrors.CodeInvalidInput, "morgue", "morgue is required")
	}
	now := requestcontext.Now(ctx)
	if at.IsZero() {
		at = now
	}
	if at.After(now) {
		return nil, dErrors.NewField(dErrors.CodeFutureDate, "at", "reassignment time is in the future")
	}
	var dest id.LocationRef
	return s.update(ctx, "reassign_morgue", bodyID, audit.ActionBodyReassigned, func(ctx context.Context, tx storage.Tx, b *models.Body, now time.Time) (map[string]string, error) {
		m, err := tx.LockMorgue(ctx, morgueID)
		if err != nil {
			return nil, referenceError(err, dErrors.CodeUnknownMorgue, "morgue", "morgue")
		}
		if err := m.CanHoldBodies(); err != nil {
			return nil, err
		}
		cur, ok, err := s.tracker.CurrentLocation(ctx, b.ID)
		if err != nil {
			return nil, err
		}
		if ok && at.Before(cur.At) {
			return nil, dErrors.NewField(dErrors.CodeBeforeCurrent, "at",
				"reassignment time is before the body's current location was recorded")
		}
		from := b.Morgue
		b.Morgue = morgueID
		b.UpdatedAt = now
		dest = m.Location
		details := map[string]string{"to": morgueID.String(), "location": string(m.Location)}
		if !from.IsNil() {
			details["from"] = from.String()
		}
		return details, nil
	}, thenTrack(func(ctx context.Context, b *models.Body) error {
		_, err := s.tracker.SetLocation(ctx, b.ID, dest, at)
		return err
	}))
}

// Relabel changes the body's tag. A body referenced by any claim keeps its label.
func (s *Service) Relabel(ctx context.Context, bodyID id.BodyID, label string) (*models.Body, error) {
	if err := s.require(ctx, authz.ActionBodyUpdate, bodyID); err != nil {
		return nil, err
	}
	if err := labels.CheckFormat(label); err != nil {
		return nil, err
	}
	return s.update(ctx, "relabel", bodyID, audit.ActionBodyRelabeled, func(ctx context.Context, tx storage.Tx, b *models.Body, now time.Time) (map[string]string, error) {
		if b.Label == label {
			return nil, nil
		}
		if err := b.CanRelabel(); err != nil {
			return nil, err
		}
		if err := labels.Validate(ctx, tx, label, b.ID); err != nil {
			return nil, err
		}
		from := b.Label
		b.Label = label
		b.UpdatedAt = now
		return map[string]string{"from": from, "to": label}, nil
	})
}

// UpdateChecklist moves one checklist operation to state. Setting the current
// state again is a no-op.
func (s *Service) UpdateChecklist(ctx context.Context, bodyID id.BodyID, op models.Operation, state id.TaskStatus) (c *models.Checklist, err error) {
	defer s.metrics.ObserveCommand("update_checklist", time.Now())
	ctx, span := tracing.Start(ctx, "body", "update_checklist",
		attribute.String("body_id", bodyID.String()), attribute.String("operation", string(op)))
	defer func() { tracing.End(span, err) }()

	if err := s.require(ctx, authz.ActionChecklistUpdate, bodyID); err != nil {
		return nil, err
	}
	now := requestcontext.Now(ctx)
	changed := false
	err = s.store.RunInTx(ctx, func(ctx context.Context, tx storage.Tx) error {
		if _, err := tx.LockBody(ctx, bodyID); err != nil {
			return err
		}
		current, err := tx.GetChecklist(ctx, bodyID)
		if err != nil {
			return err
		}
		if err := current.CanTransition(op, state); err != nil {
			return err
		}
		from := current.State(op)
		c = current
		if changed = current.ApplyTransition(op, state, now); !changed {
			return nil
		}
		if err := tx.UpdateChecklist(ctx, current); err != nil {
			return err
		}
		return s.emit(ctx, tx, audit.ActionChecklistUpdated, bodyID, map[string]string{
			"operation": string(op),
			"from":      string(from),
			"to":        string(state),
		})
	})
	if err != nil {
		return nil, s.translate(ctx, "update_checklist", bodyID, err)
	}
	if changed {
		s.metrics.IncChecklistTransition(string(op), string(state))
	}
	return c, nil
}

// RecordEffects replaces the body's personal effects record.
func (s *Service) RecordEffects(ctx context.Context, bodyID id.BodyID, e models.PersonalEffects) (out *models.PersonalEffects, err error) {
	ctx, span := tracing.Start(ctx, "body", "record_effects", attribute.String("body_id", bodyID.String()))
	defer func() { tracing.End(span, err) }()

	if err := s.require(ctx, authz.ActionEffectsUpdate, bodyID); err != nil {
		return nil, err
	}
	e.BodyID = bodyID
	if err := e.Validate(); err != nil {
		return nil, err
	}
	e.UpdatedAt = requestcontext.Now(ctx)
	err = s.store.RunInTx(ctx, func(ctx context.Context, tx storage.Tx) error {
		if _, err := tx.LockBody(ctx, bodyID); err != nil {
			return err
		}
		if err := tx.UpsertEffects(ctx, &e); err != nil {
			return err
		}
		return s.emit(ctx, tx, audit.ActionEffectsRecorded, bodyID, nil)
	})
	if err != nil {
		return nil, s.translate(ctx, "record_effects", bodyID, err)
	}
	return &e, nil
}

// ClearEffects removes the personal effects record. Clearing an absent record
// succeeds.
func (s *Service) ClearEffects(ctx context.Context, bodyID id.BodyID) (err error) {
	ctx, span := tracing.Start(ctx, "body", "clear_effects", attribute.String("body_id", bodyID.String()))
	defer func() { tracing.End(span, err) }()

	if err := s.require(ctx, authz.ActionEffectsUpdate, bodyID); err != nil {
		return err
	}
	err = s.store.RunInTx(ctx, func(ctx context.Context, tx storage.Tx) error {
		if _, err := tx.LockBody(ctx, bodyID); err != nil {
			return err
		}
		err := tx.DeleteEffects(ctx, bodyID)
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil
		}
		if err != nil {
			return err
		}
		return s.emit(ctx, tx, audit.ActionEffectsCleared, bodyID, nil)
	})
	if err != nil {
		return s.translate(ctx, "clear_effects", bodyID, err)
	}
	return nil
}

// Delete removes a body that no identification claim has ever referenced,
// with its checklist and effects.
func (s *Service) Delete(ctx context.Context, bodyID id.BodyID) (err error) {
	defer s.metrics.ObserveCommand("delete", time.Now())
	ctx, span := tracing.Start(ctx, "body", "delete", attribute.String("body_id", bodyID.String()))
	defer func() { tracing.End(span, err) }()

	if err := s.require(ctx, authz.ActionBodyDelete, bodyID); err != nil {
		return err
	}
	err = s.store.RunInTx(ctx, func(ctx context.Context, tx storage.Tx) error {
		b, err := tx.LockBody(ctx, bodyID)
		if err != nil {
			return err
		}
		if err := b.CanDelete(); err != nil {
			return err
		}
		if err := tx.DeleteBody(ctx, bodyID); err != nil {
			if errors.Is(err, sentinel.ErrInvalidState) {
				return dErrors.New(dErrors.CodeClaimLocked, "body is referenced by identification claims")
			}
			return err
		}
		return s.emit(ctx, tx, audit.ActionBodyDeleted, bodyID, map[string]string{"label": b.Label})
	})
	if err != nil {
		return s.translate(ctx, "delete", bodyID, err)
	}
	s.metrics.IncDeleted()
	s.logger.InfoContext(ctx, "body deleted",
		"body_id", bodyID.String(),
		"request_id", requestcontext.RequestID(ctx),
	)
	return nil
}

// LocationHistory returns the body's presence events, oldest first.
func (s *Service) LocationHistory(ctx context.Context, bodyID id.BodyID) ([]location.Presence, error) {
	if _, err := s.store.GetBody(ctx, bodyID); err != nil {
		return nil, storage.Translate(err, dErrors.CodeUnknownBody, "body")
	}
	h, err := s.tracker.History(ctx, bodyID)
	if err != nil {
		return nil, err
	}
	if h == nil {
		h = []location.Presence{}
	}
	return h, nil
}

func (s *Service) require(ctx context.Context, action authz.Action, bodyID id.BodyID) error {
	return authz.Require(ctx, s.authorizer, action, authz.Resource{Kind: resourceKind, ID: bodyID.String()})
}

func (s *Service) checkEnums(ctx context.Context, g models.Gender, ag models.AgeGroup) error {
	if g != "" {
		if err := s.enums.CheckGender(ctx, string(g)); err != nil {
			return err
		}
	}
	if ag != "" {
		if err := s.enums.CheckAgeGroup(ctx, string(ag)); err != nil {
			return err
		}
	}
	return nil
}

func (s *Service) checkMorgue(ctx context.Context, tx storage.Tx, morgueID id.MorgueID) error {
	m, err := tx.LockMorgue(ctx, morgueID)
	if err != nil {
		return referenceError(err, dErrors.CodeUnknownMorgue, "morgue", "morgue")
	}
	return m.CanHoldBodies()
}

type updateConfig struct {
	track func(ctx context.Context, b *models.Body) error
}

type updateOption func(*updateConfig)

// thenTrack runs fn after the body update and its audit event. Tracker
// journals outside the store cannot roll back, so nothing fallible may
// follow them.
func thenTrack(fn func(ctx context.Context, b *models.Body) error) updateOption {
	return func(c *updateConfig) { c.track = fn }
}

// update locks the body and applies mutate. A nil details map from mutate
// means nothing changed: the body is returned as is and nothing is audited.
func (s *Service) update(ctx context.Context, command string, bodyID id.BodyID, action audit.Action,
	mutate func(ctx context.Context, tx storage.Tx, b *models.Body, now time.Time) (map[string]string, error),
	opts ...updateOption) (b *models.Body, err error) {
	defer s.metrics.ObserveCommand(command, time.Now())
	ctx, span := tracing.Start(ctx, "body", command, attribute.String("body_id", bodyID.String()))
	defer func() { tracing.End(span, err) }()

	var cfg updateConfig
	for _, opt := range opts {
		opt(&cfg)
	}
	now := requestcontext.Now(ctx)
	err = s.store.RunInTx(ctx, func(ctx context.Context, tx storage.Tx) error {
		locked, err := tx.LockBody(ctx, bodyID)
		if err != nil {
			return err
		}
		details, err := mutate(ctx, tx, locked, now)
		if err != nil {
			return err
		}
		b = locked
		if details == nil {
			return nil
		}
		if err := tx.UpdateBody(ctx, locked); err != nil {
			return err
		}
		if err := s.emit(ctx, tx, action, bodyID, details); err != nil {
			return err
		}
		if cfg.track != nil {
			return cfg.track(ctx, locked)
		}
		return nil
	})
	if err != nil {
		return nil, s.translate(ctx, command, bodyID, err)
	}
	return b, nil
}

func (s *Service) emit(ctx context.Context, tx storage.Tx, action audit.Action, bodyID id.BodyID, details map[string]string) error {
	return s.audit.Emit(ctx, tx, audit.Event{
		Action:        action,
		AggregateType: audit.AggregateBody,
		AggregateID:   bodyID.String(),
		Details:       details,
	})
}

// referenceError reports a missing referenced record as code on field.
func referenceError(err error, code dErrors.Code, field, what string) error {
	if errors.Is(err, sentinel.ErrNotFound) {
		return dErrors.NewField(code, field, what+" not found")
	}
	return err
}

func (s *Service) translate(ctx context.Context, command string, bodyID id.BodyID, err error) error {
	switch {
	case storage.ConflictOn(err, storage.ConstraintBodyLabel):
		err = dErrors.NewField(dErrors.CodeDuplicateLabel, "label", "label is already in use")
	case errors.Is(err, sentinel.ErrInvalidState):
		err = dErrors.Wrap(err, dErrors.CodeConcurrentModification, "a referenced record changed, retry the command")
	default:
		err = storage.Translate(err, dErrors.CodeUnknownBody, "body")
	}
	level := slog.LevelWarn
	if dErrors.KindOf(dErrors.CodeOf(err)) == dErrors.KindInfrastructure {
		level = slog.LevelError
	}
	s.logger.Log(ctx, level, "body command failed",
		"command", command,
		"body_id", bodyID.String(),
		"request_id", requestcontext.RequestID(ctx),
		"error", err,
	)
	return err
}
