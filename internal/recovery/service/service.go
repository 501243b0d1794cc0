package service

import (
	"context"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"go.opentelemetry.io/otel/attribute"

	"dvi/internal/audit"
	"dvi/internal/authz"
	"dvi/internal/platform/tracing"
	"dvi/internal/recovery/metrics"
	"dvi/internal/recovery/models"
	"dvi/internal/storage"
	id "dvi/pkg/domain"
	dErrors "dvi/pkg/domain-errors"
	"dvi/pkg/requestcontext"
)

const resourceKind = "recovery_request"

type PersonResolver interface {
	Resolve(ctx context.Context, ref id.PersonRef, field string) (id.PersonRef, error)
	ResolveOptional(ctx context.Context, ref id.PersonRef, field string) (id.PersonRef, error)
}

type LocationResolver interface {
	Resolve(ctx context.Context, ref id.LocationRef, field string) (id.LocationRef, error)
}

type AuditPublisher interface {
	Emit(ctx context.Context, sink audit.Appender, e audit.Event) error
}

// Service is the recovery request manager. Every command runs in one unit of
// work that also appends its audit event.
type Service struct {
	store      storage.Store
	authorizer authz.Authorizer
	persons    PersonResolver
	locations  LocationResolver
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

func New(store storage.Store, authorizer authz.Authorizer, persons PersonResolver, locations LocationResolver, opts ...Option) *Service {
	s := &Service{
		store:      store,
		authorizer: authorizer,
		persons:    persons,
		locations:  locations,
		audit:      audit.NewPublisher(),
		logger:     slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// CreateInput carries the fields of a new recovery request.
type CreateInput struct {
	Finder      id.PersonRef
	DateFound   time.Time
	Marker      string
	Location    id.LocationRef
	BodiesFound int
	Description string
}

func (s *Service) Create(ctx context.Context, in CreateInput) (r *models.RecoveryRequest, err error) {
	defer s.metrics.ObserveCommand("create", time.Now())
	ctx, span := tracing.Start(ctx, "recovery", "create")
	defer func() { tracing.End(span, err) }()

	if err := authz.Require(ctx, s.authorizer, authz.ActionRecoveryCreate, authz.Resource{Kind: resourceKind}); err != nil {
		return nil, err
	}
	finder, err := s.persons.ResolveOptional(ctx, in.Finder, "finder")
	if err != nil {
		return nil, err
	}
	location, err := s.locations.Resolve(ctx, in.Location, "location")
	if err != nil {
		return nil, err
	}
	r, err = models.NewRecoveryRequest(id.NewRecoveryRequestID(), in.DateFound, strings.TrimSpace(in.Marker),
		finder, location, in.BodiesFound, in.Description, requestcontext.Now(ctx))
	if err != nil {
		return nil, err
	}

	err = s.store.RunInTx(ctx, func(ctx context.Context, tx storage.Tx) error {
		if err := tx.InsertRecoveryRequest(ctx, r); err != nil {
			return err
		}
		return s.emit(ctx, tx, audit.ActionRecoveryCreated, r, map[string]string{
			"marker":       r.Marker,
			"bodies_found": strconv.Itoa(r.BodiesFound),
		})
	})
	if err != nil {
		return nil, s.translate(ctx, "create", r.ID, err)
	}
	s.metrics.IncCreated()
	s.logger.InfoContext(ctx, "recovery request created",
		"recovery_request_id", r.ID.String(),
		"marker", r.Marker,
		"request_id", requestcontext.RequestID(ctx),
	)
	return r, nil
}

func (s *Service) Get(ctx context.Context, reqID id.RecoveryRequestID) (*models.RecoveryRequest, error) {
	r, err := s.store.GetRecoveryRequest(ctx, reqID)
	if err != nil {
		return nil, storage.Translate(err, dErrors.CodeUnknownRequest, "recovery request")
	}
	return r, nil
}

func (s *Service) List(ctx context.Context, f models.Filter) ([]*models.RecoveryRequest, error) {
	if !f.From.IsZero() && !f.To.IsZero() && f.From.After(f.To) {
		return nil, dErrors.NewField(dErrors.CodeInvalidInput, "from", "from must not be after to")
	}
	out, err := s.store.ListRecoveryRequests(ctx, f)
	if err != nil {
		return nil, storage.Translate(err, dErrors.CodeUnknownRequest, "recovery request")
	}
	if out == nil {
		out = []*models.RecoveryRequest{}
	}
	return out, nil
}

// Assign moves the request to assigned and records the assignee.
func (s *Service) Assign(ctx context.Context, reqID id.RecoveryRequestID, assignee id.PersonRef) (*models.RecoveryRequest, error) {
	if err := s.require(ctx, reqID); err != nil {
		return nil, err
	}
	actor, err := s.persons.Resolve(ctx, assignee, "assigned_to")
	if err != nil {
		return nil, err
	}
	return s.update(ctx, "assign", reqID, audit.ActionRecoveryAssigned, func(r *models.RecoveryRequest, now time.Time) (map[string]string, error) {
		if err := r.CanAssign(); err != nil {
			return nil, err
		}
		from := r.Status
		r.ApplyAssign(actor, now)
		return map[string]string{"from": string(from), "assigned_to": string(actor)}, nil
	})
}

func (s *Service) Progress(ctx context.Context, reqID id.RecoveryRequestID) (*models.RecoveryRequest, error) {
	if err := s.require(ctx, reqID); err != nil {
		return nil, err
	}
	return s.update(ctx, "progress", reqID, audit.ActionRecoveryProgress, func(r *models.RecoveryRequest, now time.Time) (map[string]string, error) {
		if err := r.CanProgress(); err != nil {
			return nil, err
		}
		from := r.Status
		r.ApplyProgress(now)
		return map[string]string{"from": string(from)}, nil
	})
}

// Complete moves the request to a terminal status.
func (s *Service) Complete(ctx context.Context, reqID id.RecoveryRequestID, terminal id.TaskStatus) (*models.RecoveryRequest, error) {
	if err := s.require(ctx, reqID); err != nil {
		return nil, err
	}
	return s.update(ctx, "complete", reqID, audit.ActionRecoveryCompleted, func(r *models.RecoveryRequest, now time.Time) (map[string]string, error) {
		if err := r.CanComplete(terminal); err != nil {
			return nil, err
		}
		from := r.Status
		r.ApplyComplete(terminal, now)
		return map[string]string{"from": string(from), "to": string(terminal)}, nil
	})
}

func (s *Service) SetRecovered(ctx context.Context, reqID id.RecoveryRequestID, n int) (*models.RecoveryRequest, error) {
	if err := s.require(ctx, reqID); err != nil {
		return nil, err
	}
	return s.update(ctx, "set_recovered", reqID, audit.ActionRecoveryCounted, func(r *models.RecoveryRequest, now time.Time) (map[string]string, error) {
		if err := r.SetRecovered(n, now); err != nil {
			return nil, err
		}
		return map[string]string{"bodies_recovered": strconv.Itoa(n)}, nil
	})
}

func (s *Service) SetFound(ctx context.Context, reqID id.RecoveryRequestID, n int) (*models.RecoveryRequest, error) {
	if err := s.require(ctx, reqID); err != nil {
		return nil, err
	}
	return s.update(ctx, "set_found", reqID, audit.ActionRecoveryCounted, func(r *models.RecoveryRequest, now time.Time) (map[string]string, error) {
		if err := r.SetFound(n, now); err != nil {
			return nil, err
		}
		return map[string]string{"bodies_found": strconv.Itoa(n)}, nil
	})
}

func (s *Service) require(ctx context.Context, reqID id.RecoveryRequestID) error {
	return authz.Require(ctx, s.authorizer, authz.ActionRecoveryUpdate, authz.Resource{Kind: resourceKind, ID: reqID.String()})
}

// update locks the request, applies mutate and persists it with its audit
// event. mutate returns the event details.
func (s *Service) update(ctx context.Context, command string, reqID id.RecoveryRequestID, action audit.Action,
	mutate func(r *models.RecoveryRequest, now time.Time) (map[string]string, error)) (r *models.RecoveryRequest, err error) {
	defer s.metrics.ObserveCommand(command, time.Now())
	ctx, span := tracing.Start(ctx, "recovery", command, attribute.String("recovery_request_id", reqID.String()))
	defer func() { tracing.End(span, err) }()

	now := requestcontext.Now(ctx)
	err = s.store.RunInTx(ctx, func(ctx context.Context, tx storage.Tx) error {
		locked, err := tx.LockRecoveryRequest(ctx, reqID)
		if err != nil {
			return err
		}
		details, err := mutate(locked, now)
		if err != nil {
			return err
		}
		if err := tx.UpdateRecoveryRequest(ctx, locked); err != nil {
			return err
		}
		r = locked
		return s.emit(ctx, tx, action, locked, details)
	})
	if err != nil {
		return nil, s.translate(ctx, command, reqID, err)
	}
	s.metrics.IncTransition(string(r.Status))
	return r, nil
}

func (s *Service) emit(ctx context.Context, tx storage.Tx, action audit.Action, r *models.RecoveryRequest, details map[string]string) error {
	return s.audit.Emit(ctx, tx, audit.Event{
		Action:        action,
		AggregateType: audit.AggregateRecoveryRequest,
		AggregateID:   r.ID.String(),
		Details:       details,
	})
}

func (s *Service) translate(ctx context.Context, command string, reqID id.RecoveryRequestID, err error) error {
	err = storage.Translate(err, dErrors.CodeUnknownRequest, "recovery request")
	level := slog.LevelWarn
	if dErrors.KindOf(dErrors.CodeOf(err)) == dErrors.KindInfrastructure {
		level = slog.LevelError
	}
	s.logger.Log(ctx, level, "recovery request command failed",
		"command", command,
		"recovery_request_id", reqID.String(),
		"request_id", requestcontext.RequestID(ctx),
		"error", err,
	)
	return err
}
