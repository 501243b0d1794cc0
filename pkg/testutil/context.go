package testutil

import (
	"context"
	"net/http"

	"dvi/pkg/requestcontext"
)

// WithPrincipal adds an authenticated principal to the request context.
// This simulates what the auth middleware does for bearer-token requests.
func WithPrincipal(req *http.Request, subject string, roles ...string) *http.Request {
	ctx := requestcontext.WithPrincipal(req.Context(), requestcontext.PrincipalInfo{
		Subject: subject,
		Roles:   roles,
	})
	return req.WithContext(ctx)
}

// AsRole returns a context carrying a principal with the given roles.
func AsRole(ctx context.Context, subject string, roles ...string) context.Context {
	return requestcontext.WithPrincipal(ctx, requestcontext.PrincipalInfo{Subject: subject, Roles: roles})
}

// WithContextValue adds an arbitrary key-value pair to the request context.
func WithContextValue(req *http.Request, key, value any) *http.Request {
	ctx := context.WithValue(req.Context(), key, value)
	return req.WithContext(ctx)
}
