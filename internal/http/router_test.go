package httpapi_test

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	httpapi "dvi/internal/http"
	jwttoken "dvi/internal/jwt_token"
	"dvi/internal/platform/metrics"
	"dvi/pkg/platform/httputil"
	"dvi/pkg/requestcontext"
	"dvi/pkg/testutil"
)

type whoAmI struct{}

func (whoAmI) Register(r chi.Router) {
	r.Get("/whoami", func(w http.ResponseWriter, r *http.Request) {
		p := requestcontext.Principal(r.Context())
		httputil.WriteJSON(w, http.StatusOK, map[string]any{"subject": p.Subject})
	})
}

type pinger struct{ err error }

func (p pinger) Ping(context.Context) error { return p.err }

func newRouter(t *testing.T, health map[string]httpapi.Pinger) (http.Handler, *jwttoken.JWTService) {
	t.Helper()
	reg := prometheus.NewRegistry()
	tokens := jwttoken.NewJWTService("test-signing-key-with-enough-bytes", "dvi", "dvi-api")
	router := httpapi.NewRouter(httpapi.Config{
		Metrics:        metrics.NewWith(promauto.With(reg)),
		Tokens:         tokens,
		RequestTimeout: time.Second,
		Gatherer:       reg,
		Health:         health,
	}, whoAmI{})
	return router, tokens
}

func TestAPIRequiresBearerToken(t *testing.T) {
	router, tokens := newRouter(t, nil)

	testutil.Given(t, "no token", func(t *testing.T) {
		rr := testutil.DoRequest(router, testutil.NewRequest(t, http.MethodGet, "/api/v1/whoami"))
		testutil.AssertStatusAndError(t, rr, http.StatusUnauthorized, "unauthorized")
	})

	testutil.Given(t, "a valid operator token", func(t *testing.T) {
		token, err := tokens.GenerateAccessToken("P-7", []string{"viewer"}, time.Minute)
		require.NoError(t, err)
		req := testutil.NewRequest(t, http.MethodGet, "/api/v1/whoami")
		req.Header.Set("Authorization", "Bearer "+token)

		rr := testutil.DoRequest(router, req)
		testutil.AssertStatusOK(t, rr)
		testutil.AssertJSONContains(t, rr, "subject", "P-7")
		assert.NotEmpty(t, rr.Header().Get("X-Request-ID"))
	})

	testutil.Given(t, "a token signed with another key", func(t *testing.T) {
		other := jwttoken.NewJWTService("another-signing-key-entirely-different", "dvi", "dvi-api")
		token, err := other.GenerateAccessToken("P-7", nil, time.Minute)
		require.NoError(t, err)
		req := testutil.NewRequest(t, http.MethodGet, "/api/v1/whoami")
		req.Header.Set("Authorization", "Bearer "+token)
		testutil.AssertStatus(t, testutil.DoRequest(router, req), http.StatusUnauthorized)
	})
}

func TestHealthz(t *testing.T) {
	testutil.Given(t, "every dependency answering", func(t *testing.T) {
		router, _ := newRouter(t, map[string]httpapi.Pinger{"store": pinger{}})
		rr := testutil.DoRequest(router, testutil.NewRequest(t, http.MethodGet, "/healthz"))
		testutil.AssertStatusOK(t, rr)
		testutil.AssertJSONContains(t, rr, "status", "ok")
	})

	testutil.Given(t, "the store down", func(t *testing.T) {
		router, _ := newRouter(t, map[string]httpapi.Pinger{
			"store":   pinger{err: errors.New("dial tcp: connection refused")},
			"tracker": pinger{},
		})
		rr := testutil.DoRequest(router, testutil.NewRequest(t, http.MethodGet, "/healthz"))
		testutil.AssertStatus(t, rr, http.StatusServiceUnavailable)
		testutil.AssertJSONContains(t, rr, "status", "degraded")
	})
}

func TestMetricsEndpoint(t *testing.T) {
	router, _ := newRouter(t, nil)
	testutil.DoRequest(router, testutil.NewRequest(t, http.MethodGet, "/healthz"))

	rr := testutil.DoRequest(router, testutil.NewRequest(t, http.MethodGet, "/metrics"))
	testutil.AssertStatusOK(t, rr)
	assert.True(t, strings.Contains(rr.Body.String(), "dvi_http_requests_total"))
}
