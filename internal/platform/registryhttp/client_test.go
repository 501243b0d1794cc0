package registryhttp

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dvi/pkg/platform/circuit"
	"dvi/pkg/platform/sentinel"
)

func TestGetJSON(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.EscapedPath() {
		case "/persons/P%2F17":
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`{"key":"P/17"}`))
		case "/persons/broken":
			w.WriteHeader(http.StatusBadGateway)
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	c := New("person-registry", srv.URL+"/", time.Second)
	ctx := context.Background()

	var out struct {
		Key string `json:"key"`
	}
	require.NoError(t, c.GetJSON(ctx, &out, "persons", "P/17"))
	assert.Equal(t, "P/17", out.Key)

	assert.ErrorIs(t, c.GetJSON(ctx, &out, "persons", "P99"), sentinel.ErrNotFound)
	assert.ErrorIs(t, c.GetJSON(ctx, &out, "persons", "broken"), sentinel.ErrUnavailable)
}

func TestBreakerOpensAndFailsFast(t *testing.T) {
	var calls atomic.Int32
	healthy := atomic.Bool{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls.Add(1)
		if healthy.Load() {
			_, _ = w.Write([]byte(`{}`))
			return
		}
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	breaker := circuit.New("location-registry", circuit.WithFailureThreshold(2), circuit.WithSuccessThreshold(1))
	c := New("location-registry", srv.URL, time.Second, WithBreaker(breaker), WithCooldown(time.Minute))
	clock := time.Date(2024, 1, 10, 12, 0, 0, 0, time.UTC)
	c.now = func() time.Time { return clock }

	ctx := context.Background()
	var out map[string]any
	for range 2 {
		_ = c.GetJSON(ctx, &out, "locations", "L1")
	}
	require.True(t, breaker.IsOpen())

	err := c.GetJSON(ctx, &out, "locations", "L1")
	assert.ErrorIs(t, err, sentinel.ErrUnavailable)
	assert.Equal(t, int32(2), calls.Load(), "open breaker must not reach the registry")

	healthy.Store(true)
	clock = clock.Add(2 * time.Minute)
	require.NoError(t, c.GetJSON(ctx, &out, "locations", "L1"))
	assert.False(t, breaker.IsOpen())
}

func TestNotFoundKeepsBreakerClosed(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	defer srv.Close()

	breaker := circuit.New("person-registry", circuit.WithFailureThreshold(1))
	c := New("person-registry", srv.URL, time.Second, WithBreaker(breaker))
	var out map[string]any
	assert.ErrorIs(t, c.GetJSON(context.Background(), &out, "persons", "nobody"), sentinel.ErrNotFound)
	assert.False(t, breaker.IsOpen())
}
