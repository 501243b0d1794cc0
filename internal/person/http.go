package person

import (
	"context"

	"dvi/internal/platform/registryhttp"
	id "dvi/pkg/domain"
)

// HTTPRegistry talks to a person registry exposing
//
//	GET /persons/{ref}       -> {"key": "..."}
//	GET /enums/gender        -> ["unknown", ...]
//	GET /enums/age_group     -> ["unknown", ...]
type HTTPRegistry struct {
	client *registryhttp.Client
}

func NewHTTPRegistry(client *registryhttp.Client) *HTTPRegistry {
	return &HTTPRegistry{client: client}
}

func (r *HTTPRegistry) Resolve(ctx context.Context, ref id.PersonRef) (id.PersonRef, error) {
	var out struct {
		Key string `json:"key"`
	}
	if err := r.client.GetJSON(ctx, &out, "persons", string(ref)); err != nil {
		return "", err
	}
	if out.Key == "" {
		return ref, nil
	}
	return id.PersonRef(out.Key), nil
}

func (r *HTTPRegistry) Genders(ctx context.Context) ([]string, error) {
	var out []string
	err := r.client.GetJSON(ctx, &out, "enums", "gender")
	return out, err
}

func (r *HTTPRegistry) AgeGroups(ctx context.Context) ([]string, error) {
	var out []string
	err := r.client.GetJSON(ctx, &out, "enums", "age_group")
	return out, err
}
