// Package location mediates the external location registry and the
// append-only presence tracker.
package location

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"dvi/internal/platform/registryhttp"
	id "dvi/pkg/domain"
	dErrors "dvi/pkg/domain-errors"
	"dvi/pkg/platform/sentinel"
)

//go:generate mockgen -source=registry.go -destination=mocks/registry_mocks.go -package=mocks Registry

// Registry resolves location references. Unknown references return
// sentinel.ErrNotFound.
type Registry interface {
	Resolve(ctx context.Context, ref id.LocationRef) (id.LocationRef, error)
}

// StaticRegistry accepts every reference unless a known set is configured.
type StaticRegistry struct {
	mu    sync.RWMutex
	known map[id.LocationRef]struct{}
}

func NewStaticRegistry(refs ...id.LocationRef) *StaticRegistry {
	r := &StaticRegistry{}
	if len(refs) > 0 {
		r.known = make(map[id.LocationRef]struct{}, len(refs))
		for _, ref := range refs {
			r.known[ref] = struct{}{}
		}
	}
	return r
}

func (r *StaticRegistry) Resolve(_ context.Context, ref id.LocationRef) (id.LocationRef, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.known == nil {
		return ref, nil
	}
	if _, ok := r.known[ref]; !ok {
		return "", sentinel.ErrNotFound
	}
	return ref, nil
}

// HTTPRegistry calls GET /locations/{ref} -> {"key": "..."}.
type HTTPRegistry struct {
	client *registryhttp.Client
}

func NewHTTPRegistry(client *registryhttp.Client) *HTTPRegistry {
	return &HTTPRegistry{client: client}
}

func (r *HTTPRegistry) Resolve(ctx context.Context, ref id.LocationRef) (id.LocationRef, error) {
	var out struct {
		Key string `json:"key"`
	}
	if err := r.client.GetJSON(ctx, &out, "locations", string(ref)); err != nil {
		return "", err
	}
	if out.Key == "" {
		return ref, nil
	}
	return id.LocationRef(out.Key), nil
}

// Resolver wraps a Registry with input parsing and error mapping.
type Resolver struct {
	registry Registry
	timeout  time.Duration
	logger   *slog.Logger
}

func NewResolver(registry Registry, timeout time.Duration, logger *slog.Logger) *Resolver {
	if timeout <= 0 {
		timeout = 3 * time.Second
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Resolver{registry: registry, timeout: timeout, logger: logger}
}

// Resolve returns the registry key for ref or unknown_location.
func (r *Resolver) Resolve(ctx context.Context, ref id.LocationRef, field string) (id.LocationRef, error) {
	parsed, err := id.ParseLocationRef(string(ref))
	if err != nil {
		return "", dErrors.WithField(err, field)
	}
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	key, err := r.registry.Resolve(ctx, parsed)
	switch {
	case err == nil:
		return key, nil
	case errors.Is(err, sentinel.ErrNotFound):
		return "", dErrors.NewField(dErrors.CodeUnknownLocation, field, "location "+string(parsed)+" is not known")
	case errors.Is(err, context.DeadlineExceeded):
		return "", dErrors.Wrap(err, dErrors.CodeTimeout, "location registry timed out")
	default:
		r.logger.ErrorContext(ctx, "location registry unavailable", "field", field, "error", err)
		return "", dErrors.Wrap(err, dErrors.CodeStorageUnavailable, "location registry unavailable")
	}
}
