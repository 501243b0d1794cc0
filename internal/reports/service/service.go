// Package service answers the read-only aggregate queries. Each query runs
// directly against the primary tables; nothing is cached.
package service

import (
	"context"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"dvi/internal/platform/tracing"
	"dvi/internal/reports/metrics"
	"dvi/internal/reports/models"
	"dvi/internal/storage"
	dErrors "dvi/pkg/domain-errors"
	"dvi/pkg/requestcontext"
)

// summaryTimeout bounds the whole fan-out, not each query.
const summaryTimeout = 10 * time.Second

// Source is the subset of storage.Reader the reports need.
type Source interface {
	CountBodiesByMorgue(ctx context.Context) (models.MorgueCounts, error)
	CountBodiesByRequest(ctx context.Context) ([]models.RequestCount, error)
	IdentificationDistribution(ctx context.Context) (models.Distribution, error)
}

type Service struct {
	source  Source
	logger  *slog.Logger
	metrics *metrics.Metrics
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

func New(source Source, opts ...Option) *Service {
	s := &Service{source: source, logger: slog.Default()}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Service) BodiesByMorgue(ctx context.Context) (*models.MorgueCounts, error) {
	out, err := timed(ctx, s, "morgues", s.source.CountBodiesByMorgue)
	if err != nil {
		return nil, err
	}
	if out.Morgues == nil {
		out.Morgues = []models.MorgueCount{}
	}
	return &out, nil
}

func (s *Service) BodiesByRequest(ctx context.Context) ([]models.RequestCount, error) {
	out, err := timed(ctx, s, "recovery_requests", s.source.CountBodiesByRequest)
	if err != nil {
		return nil, err
	}
	if out == nil {
		out = []models.RequestCount{}
	}
	return out, nil
}

func (s *Service) Identification(ctx context.Context) (*models.Distribution, error) {
	out, err := timed(ctx, s, "identification", s.source.IdentificationDistribution)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// Summary runs the three aggregates concurrently. The first failure cancels
// the others.
func (s *Service) Summary(ctx context.Context) (sum *models.Summary, err error) {
	ctx, span := tracing.Start(ctx, "reports", "summary")
	defer func() { tracing.End(span, err) }()

	ctx, cancel := context.WithTimeout(ctx, summaryTimeout)
	defer cancel()

	g, ctx := errgroup.WithContext(ctx)
	out := &models.Summary{}

	g.Go(func() error {
		m, err := s.BodiesByMorgue(ctx)
		if err != nil {
			return err
		}
		out.Morgues = *m
		return nil
	})
	g.Go(func() error {
		r, err := s.BodiesByRequest(ctx)
		if err != nil {
			return err
		}
		out.Requests = r
		return nil
	})
	g.Go(func() error {
		d, err := s.Identification(ctx)
		if err != nil {
			return err
		}
		out.Identification = *d
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

func timed[T any](ctx context.Context, s *Service, report string, query func(context.Context) (T, error)) (T, error) {
	start := time.Now()
	out, err := query(ctx)
	s.metrics.ObserveQuery(report, time.Since(start))
	if err != nil {
		var zero T
		err = storage.Translate(err, dErrors.CodeInternal, report)
		s.logger.ErrorContext(ctx, "report query failed",
			"report", report,
			"error", err,
			"request_id", requestcontext.RequestID(ctx),
		)
		return zero, err
	}
	return out, nil
}
