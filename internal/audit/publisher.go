package audit

import (
	"context"
	"fmt"
	"log/slog"

	id "dvi/pkg/domain"
	"dvi/pkg/requestcontext"
)

// Appender persists an event inside the caller's unit of work.
type Appender interface {
	AppendAudit(ctx context.Context, e Event) error
}

// Publisher enriches events from the request context and appends them with
// fail-closed semantics: if the append fails, the caller's operation fails.
type Publisher struct {
	logger  *slog.Logger
	metrics *Metrics
}

type Option func(*Publisher)

func WithLogger(logger *slog.Logger) Option {
	return func(p *Publisher) {
		p.logger = logger
	}
}

func WithMetrics(m *Metrics) Option {
	return func(p *Publisher) {
		p.metrics = m
	}
}

func NewPublisher(opts ...Option) *Publisher {
	p := &Publisher{}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Emit fills in id, timestamp, request id and actor, then appends to sink.
func (p *Publisher) Emit(ctx context.Context, sink Appender, e Event) error {
	if e.Action == "" {
		return fmt.Errorf("audit event requires Action")
	}
	if uuidZero(e.ID) {
		e.ID = id.NewEventID()
	}
	if e.Timestamp.IsZero() {
		e.Timestamp = requestcontext.Now(ctx)
	}
	if e.RequestID == "" {
		e.RequestID = requestcontext.RequestID(ctx)
	}
	if e.Actor == "" {
		e.Actor = requestcontext.Principal(ctx).Subject
	}
	if err := sink.AppendAudit(ctx, e); err != nil {
		if p.logger != nil {
			p.logger.ErrorContext(ctx, "audit append failed",
				"action", e.Action,
				"aggregate_id", e.AggregateID,
				"error", err,
			)
		}
		return fmt.Errorf("append audit event: %w", err)
	}
	p.metrics.IncEmitted(e.Action)
	return nil
}

func uuidZero(e id.EventID) bool {
	return e == id.EventID{}
}
