package audit

import (
	"context"
	"log/slog"
	"time"
)

// Outbox is the read side of the audit outbox.
type Outbox interface {
	PendingAudit(ctx context.Context, limit int) ([]OutboxEntry, error)
	MarkAuditPublished(ctx context.Context, seqs []int64, at time.Time) error
}

// Producer ships events to an external sink. Publish must be all-or-nothing
// from the relay's point of view: on error the batch is retried later.
type Producer interface {
	Publish(ctx context.Context, events []Event) error
	Close()
}

// Relay drains the outbox into a Producer on a fixed period.
type Relay struct {
	outbox   Outbox
	producer Producer
	batch    int
	period   time.Duration
	logger   *slog.Logger
	metrics  *Metrics
}

type RelayOption func(*Relay)

func WithRelayLogger(logger *slog.Logger) RelayOption {
	return func(r *Relay) {
		r.logger = logger
	}
}

func WithRelayMetrics(m *Metrics) RelayOption {
	return func(r *Relay) {
		r.metrics = m
	}
}

func WithBatch(n int) RelayOption {
	return func(r *Relay) {
		if n > 0 {
			r.batch = n
		}
	}
}

func WithPeriod(d time.Duration) RelayOption {
	return func(r *Relay) {
		if d > 0 {
			r.period = d
		}
	}
}

func NewRelay(outbox Outbox, producer Producer, opts ...RelayOption) *Relay {
	r := &Relay{
		outbox:   outbox,
		producer: producer,
		batch:    100,
		period:   2 * time.Second,
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Run polls until ctx is cancelled. Failed batches are logged and retried on
// the next tick.
func (r *Relay) Run(ctx context.Context) error {
	ticker := time.NewTicker(r.period)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if _, err := r.RunOnce(ctx); err != nil && ctx.Err() == nil {
				r.metrics.IncRelayFailures()
				r.logger.ErrorContext(ctx, "audit relay failed", "error", err)
			}
		}
	}
}

// RunOnce relays one batch and returns how many events were published.
func (r *Relay) RunOnce(ctx context.Context) (int, error) {
	entries, err := r.outbox.PendingAudit(ctx, r.batch)
	if err != nil {
		return 0, err
	}
	r.metrics.SetBacklog(len(entries))
	if len(entries) == 0 {
		return 0, nil
	}

	events := make([]Event, len(entries))
	seqs := make([]int64, len(entries))
	for i, e := range entries {
		events[i] = e.Event
		seqs[i] = e.Seq
	}
	if err := r.producer.Publish(ctx, events); err != nil {
		return 0, err
	}
	// A failure here republishes the batch; consumers dedupe on event id.
	if err := r.outbox.MarkAuditPublished(ctx, seqs, time.Now().UTC()); err != nil {
		return 0, err
	}
	r.metrics.AddRelayed(len(events))
	r.logger.DebugContext(ctx, "audit events relayed", "count", len(events))
	return len(events), nil
}
