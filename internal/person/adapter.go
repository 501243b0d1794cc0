package person

import (
	"context"
	"errors"
	"log/slog"
	"time"

	id "dvi/pkg/domain"
	dErrors "dvi/pkg/domain-errors"
	"dvi/pkg/platform/sentinel"
)

// Adapter resolves person references for the domain services and maps
// registry failures onto coded errors.
type Adapter struct {
	registry Registry
	timeout  time.Duration
	logger   *slog.Logger
}

type Option func(*Adapter)

func WithLogger(logger *slog.Logger) Option {
	return func(a *Adapter) {
		a.logger = logger
	}
}

func WithTimeout(d time.Duration) Option {
	return func(a *Adapter) {
		if d > 0 {
			a.timeout = d
		}
	}
}

func NewAdapter(registry Registry, opts ...Option) *Adapter {
	a := &Adapter{
		registry: registry,
		timeout:  3 * time.Second,
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Resolve returns the stable key for ref. field names the input being
// resolved so errors point at it.
func (a *Adapter) Resolve(ctx context.Context, ref id.PersonRef, field string) (id.PersonRef, error) {
	parsed, err := id.ParsePersonRef(string(ref))
	if err != nil {
		return "", dErrors.WithField(err, field)
	}
	ctx, cancel := context.WithTimeout(ctx, a.timeout)
	defer cancel()

	key, err := a.registry.Resolve(ctx, parsed)
	if err != nil {
		return "", a.translate(ctx, err, field, "person "+string(parsed)+" is not known to the registry")
	}
	return key, nil
}

// ResolveOptional resolves ref unless it is empty.
func (a *Adapter) ResolveOptional(ctx context.Context, ref id.PersonRef, field string) (id.PersonRef, error) {
	if ref == "" {
		return "", nil
	}
	return a.Resolve(ctx, ref, field)
}

// CheckGender verifies g against the registry's gender set.
func (a *Adapter) CheckGender(ctx context.Context, g string) error {
	return a.checkEnum(ctx, a.registry.Genders, g, "apparent_gender")
}

// CheckAgeGroup verifies ag against the registry's age group set.
func (a *Adapter) CheckAgeGroup(ctx context.Context, ag string) error {
	return a.checkEnum(ctx, a.registry.AgeGroups, ag, "apparent_age_group")
}

func (a *Adapter) checkEnum(ctx context.Context, load func(context.Context) ([]string, error), v, field string) error {
	ctx, cancel := context.WithTimeout(ctx, a.timeout)
	defer cancel()
	values, err := load(ctx)
	if err != nil {
		return a.translate(ctx, err, field, "")
	}
	if !containsValue(values, v) {
		return dErrors.NewField(dErrors.CodeInvalidInput, field, v+" is not in the registry's "+field+" set")
	}
	return nil
}

func (a *Adapter) translate(ctx context.Context, err error, field, notFound string) error {
	switch {
	case errors.Is(err, sentinel.ErrNotFound) && notFound != "":
		return dErrors.NewField(dErrors.CodeUnknownPerson, field, notFound)
	case errors.Is(err, context.DeadlineExceeded):
		return dErrors.Wrap(err, dErrors.CodeTimeout, "person registry timed out")
	default:
		a.logger.ErrorContext(ctx, "person registry unavailable", "field", field, "error", err)
		return dErrors.Wrap(err, dErrors.CodeStorageUnavailable, "person registry unavailable")
	}
}
