// Package person is the single point where the DVI core refers to the
// external person registry. It resolves references to stable keys and
// never stores person data of its own.
package person

import (
	"context"
	"slices"
	"sync"

	bodymodels "dvi/internal/body/models"
	id "dvi/pkg/domain"
	"dvi/pkg/platform/sentinel"
)

//go:generate mockgen -source=registry.go -destination=mocks/mocks.go -package=mocks Registry

// Registry is the external person registry. Resolve returns
// sentinel.ErrNotFound for unknown references and sentinel.ErrUnavailable
// when the registry cannot answer.
type Registry interface {
	Resolve(ctx context.Context, ref id.PersonRef) (id.PersonRef, error)
	Genders(ctx context.Context) ([]string, error)
	AgeGroups(ctx context.Context) ([]string, error)
}

// StaticRegistry is an in-process registry for development and tests. With
// no known persons configured it accepts every reference as its own key.
type StaticRegistry struct {
	mu    sync.RWMutex
	known map[id.PersonRef]struct{}
}

func NewStaticRegistry(refs ...id.PersonRef) *StaticRegistry {
	r := &StaticRegistry{}
	if len(refs) > 0 {
		r.known = make(map[id.PersonRef]struct{}, len(refs))
		for _, ref := range refs {
			r.known[ref] = struct{}{}
		}
	}
	return r
}

func (r *StaticRegistry) Add(ref id.PersonRef) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.known == nil {
		r.known = make(map[id.PersonRef]struct{})
	}
	r.known[ref] = struct{}{}
}

func (r *StaticRegistry) Resolve(_ context.Context, ref id.PersonRef) (id.PersonRef, error) {
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

func (r *StaticRegistry) Genders(context.Context) ([]string, error) {
	return []string{
		string(bodymodels.GenderUnknown), string(bodymodels.GenderFemale),
		string(bodymodels.GenderMale), string(bodymodels.GenderOther),
	}, nil
}

func (r *StaticRegistry) AgeGroups(context.Context) ([]string, error) {
	return []string{
		string(bodymodels.AgeUnknown), string(bodymodels.AgeInfant), string(bodymodels.AgeChild),
		string(bodymodels.AgeAdolescent), string(bodymodels.AgeAdult), string(bodymodels.AgeSenior),
	}, nil
}

func containsValue(values []string, v string) bool {
	return slices.Contains(values, v)
}
