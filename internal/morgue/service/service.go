package service

import (
	"context"
	"errors"
	"log/slog"
	"strconv"
	"strings"

	"go.opentelemetry.io/otel/attribute"

	"dvi/internal/audit"
	"dvi/internal/authz"
	"dvi/internal/morgue/models"
	"dvi/internal/platform/tracing"
	"dvi/internal/storage"
	id "dvi/pkg/domain"
	dErrors "dvi/pkg/domain-errors"
	"dvi/pkg/platform/sentinel"
	"dvi/pkg/requestcontext"
)

const resourceKind = "morgue"

type LocationResolver interface {
	Resolve(ctx context.Context, ref id.LocationRef, field string) (id.LocationRef, error)
}

type AuditPublisher interface {
	Emit(ctx context.Context, sink audit.Appender, e audit.Event) error
}

// Service manages the morgue directory.
type Service struct {
	store      storage.Store
	authorizer authz.Authorizer
	locations  LocationResolver
	audit      AuditPublisher
	logger     *slog.Logger
}

type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

func WithAuditPublisher(p AuditPublisher) Option {
	return func(s *Service) {
		s.audit = p
	}
}

func New(store storage.Store, authorizer authz.Authorizer, locations LocationResolver, opts ...Option) *Service {
	s := &Service{
		store:      store,
		authorizer: authorizer,
		locations:  locations,
		audit:      audit.NewPublisher(),
		logger:     slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

type CreateInput struct {
	Name        string
	Description string
	Location    id.LocationRef
}

func (s *Service) Create(ctx context.Context, in CreateInput) (m *models.Morgue, err error) {
	ctx, span := tracing.Start(ctx, "morgue", "create")
	defer func() { tracing.End(span, err) }()

	if err := authz.Require(ctx, s.authorizer, authz.ActionMorgueManage, authz.Resource{Kind: resourceKind}); err != nil {
		return nil, err
	}
	location, err := s.locations.Resolve(ctx, in.Location, "location")
	if err != nil {
		return nil, err
	}
	m, err = models.NewMorgue(id.NewMorgueID(), in.Name, strings.TrimSpace(in.Description), location, requestcontext.Now(ctx))
	if err != nil {
		return nil, err
	}
	err = s.store.RunInTx(ctx, func(ctx context.Context, tx storage.Tx) error {
		if err := tx.InsertMorgue(ctx, m); err != nil {
			return err
		}
		return s.emit(ctx, tx, audit.ActionMorgueCreated, m.ID, map[string]string{"name": m.Name})
	})
	if err != nil {
		return nil, s.translate(ctx, "create", m.ID, err)
	}
	s.logger.InfoContext(ctx, "morgue created",
		"morgue_id", m.ID.String(),
		"name", m.Name,
		"request_id", requestcontext.RequestID(ctx),
	)
	return m, nil
}

func (s *Service) Get(ctx context.Context, morgueID id.MorgueID) (*models.Morgue, error) {
	m, err := s.store.GetMorgue(ctx, morgueID)
	if err != nil {
		return nil, storage.Translate(err, dErrors.CodeUnknownMorgue, "morgue")
	}
	return m, nil
}

// List returns live morgues in name order, plus retired ones on request.
func (s *Service) List(ctx context.Context, includeRetired bool) ([]*models.Morgue, error) {
	out, err := s.store.ListMorgues(ctx, includeRetired)
	if err != nil {
		return nil, storage.Translate(err, dErrors.CodeUnknownMorgue, "morgue")
	}
	if out == nil {
		out = []*models.Morgue{}
	}
	return out, nil
}

func (s *Service) Update(ctx context.Context, morgueID id.MorgueID, u models.Update) (m *models.Morgue, err error) {
	ctx, span := tracing.Start(ctx, "morgue", "update", attribute.String("morgue_id", morgueID.String()))
	defer func() { tracing.End(span, err) }()

	if err := s.require(ctx, morgueID); err != nil {
		return nil, err
	}
	if u.Location != nil {
		location, err := s.locations.Resolve(ctx, *u.Location, "location")
		if err != nil {
			return nil, err
		}
		u.Location = &location
	}
	if u.Description != nil {
		desc := strings.TrimSpace(*u.Description)
		u.Description = &desc
	}
	now := requestcontext.Now(ctx)
	err = s.store.RunInTx(ctx, func(ctx context.Context, tx storage.Tx) error {
		locked, err := tx.LockMorgue(ctx, morgueID)
		if err != nil {
			return err
		}
		changed, err := locked.ApplyUpdate(u, now)
		if err != nil {
			return err
		}
		m = locked
		if len(changed) == 0 {
			return nil
		}
		if err := tx.UpdateMorgue(ctx, locked); err != nil {
			return err
		}
		return s.emit(ctx, tx, audit.ActionMorgueUpdated, morgueID, map[string]string{"fields": strings.Join(changed, ",")})
	})
	if err != nil {
		return nil, s.translate(ctx, "update", morgueID, err)
	}
	return m, nil
}

// Retire stops new assignments to the morgue. Bodies already held stay.
func (s *Service) Retire(ctx context.Context, morgueID id.MorgueID) (m *models.Morgue, err error) {
	ctx, span := tracing.Start(ctx, "morgue", "retire", attribute.String("morgue_id", morgueID.String()))
	defer func() { tracing.End(span, err) }()

	if err := s.require(ctx, morgueID); err != nil {
		return nil, err
	}
	now := requestcontext.Now(ctx)
	err = s.store.RunInTx(ctx, func(ctx context.Context, tx storage.Tx) error {
		locked, err := tx.LockMorgue(ctx, morgueID)
		if err != nil {
			return err
		}
		if err := locked.CanRetire(); err != nil {
			return err
		}
		locked.ApplyRetire(now)
		if err := tx.UpdateMorgue(ctx, locked); err != nil {
			return err
		}
		held, err := tx.CountBodiesInMorgue(ctx, morgueID)
		if err != nil {
			return err
		}
		m = locked
		return s.emit(ctx, tx, audit.ActionMorgueRetired, morgueID, map[string]string{"bodies_held": strconv.Itoa(held)})
	})
	if err != nil {
		return nil, s.translate(ctx, "retire", morgueID, err)
	}
	return m, nil
}

// Delete removes a morgue that no body references.
func (s *Service) Delete(ctx context.Context, morgueID id.MorgueID) (err error) {
	ctx, span := tracing.Start(ctx, "morgue", "delete", attribute.String("morgue_id", morgueID.String()))
	defer func() { tracing.End(span, err) }()

	if err := s.require(ctx, morgueID); err != nil {
		return err
	}
	err = s.store.RunInTx(ctx, func(ctx context.Context, tx storage.Tx) error {
		locked, err := tx.LockMorgue(ctx, morgueID)
		if err != nil {
			return err
		}
		held, err := tx.CountBodiesInMorgue(ctx, morgueID)
		if err != nil {
			return err
		}
		if held > 0 {
			return dErrors.New(dErrors.CodeMorgueInUse, "morgue "+locked.Name+" holds "+strconv.Itoa(held)+" bodies")
		}
		if err := tx.DeleteMorgue(ctx, morgueID); err != nil {
			return err
		}
		return s.emit(ctx, tx, audit.ActionMorgueDeleted, morgueID, map[string]string{"name": locked.Name})
	})
	if err != nil {
		return s.translate(ctx, "delete", morgueID, err)
	}
	s.logger.InfoContext(ctx, "morgue deleted",
		"morgue_id", morgueID.String(),
		"request_id", requestcontext.RequestID(ctx),
	)
	return nil
}

func (s *Service) require(ctx context.Context, morgueID id.MorgueID) error {
	return authz.Require(ctx, s.authorizer, authz.ActionMorgueManage, authz.Resource{Kind: resourceKind, ID: morgueID.String()})
}

func (s *Service) emit(ctx context.Context, tx storage.Tx, action audit.Action, morgueID id.MorgueID, details map[string]string) error {
	return s.audit.Emit(ctx, tx, audit.Event{
		Action:        action,
		AggregateType: audit.AggregateMorgue,
		AggregateID:   morgueID.String(),
		Details:       details,
	})
}

func (s *Service) translate(ctx context.Context, command string, morgueID id.MorgueID, err error) error {
	switch {
	case storage.ConflictOn(err, storage.ConstraintMorgueName):
		err = dErrors.NewField(dErrors.CodeDuplicateName, "name", "a live morgue already has this name")
	case errors.Is(err, sentinel.ErrInvalidState):
		err = dErrors.New(dErrors.CodeMorgueInUse, "morgue is referenced by bodies")
	default:
		err = storage.Translate(err, dErrors.CodeUnknownMorgue, "morgue")
	}
	level := slog.LevelWarn
	if dErrors.KindOf(dErrors.CodeOf(err)) == dErrors.KindInfrastructure {
		level = slog.LevelError
	}
	s.logger.Log(ctx, level, "morgue command failed",
		"command", command,
		"morgue_id", morgueID.String(),
		"request_id", requestcontext.RequestID(ctx),
		"error", err,
	)
	return err
}
