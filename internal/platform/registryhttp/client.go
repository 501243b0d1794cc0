// Package registryhttp is the JSON-over-HTTP client used for the external
// person and location registries.
package registryhttp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"sync/atomic"
	"time"

	"dvi/pkg/platform/circuit"
	"dvi/pkg/platform/sentinel"
)

// Client issues GET requests against one registry base URL. 404 maps to
// sentinel.ErrNotFound; transport failures, 5xx and an open breaker map to
// sentinel.ErrUnavailable.
type Client struct {
	base     string
	http     *http.Client
	breaker  *circuit.Breaker
	cooldown time.Duration
	openedAt atomic.Value
	logger   *slog.Logger
	now      func() time.Time
}

type Option func(*Client)

func WithHTTPClient(c *http.Client) Option {
	return func(cl *Client) {
		if c != nil {
			cl.http = c
		}
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(cl *Client) {
		cl.logger = logger
	}
}

func WithBreaker(b *circuit.Breaker) Option {
	return func(cl *Client) {
		if b != nil {
			cl.breaker = b
		}
	}
}

func WithCooldown(d time.Duration) Option {
	return func(cl *Client) {
		cl.cooldown = d
	}
}

func New(name, baseURL string, timeout time.Duration, opts ...Option) *Client {
	c := &Client{
		base:     strings.TrimRight(baseURL, "/"),
		http:     &http.Client{Timeout: timeout},
		breaker:  circuit.New(name),
		cooldown: 5 * time.Second,
		logger:   slog.Default(),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	c.openedAt.Store(time.Time{})
	return c
}

// GetJSON fetches base + path (segments are escaped) and decodes into out.
// While the breaker is open, calls fail fast until the cooldown has passed;
// the first call after it probes the registry.
func (c *Client) GetJSON(ctx context.Context, out any, segments ...string) error {
	if c.breaker.IsOpen() && c.now().Sub(c.openedAt.Load().(time.Time)) < c.cooldown {
		return fmt.Errorf("%s: %w: circuit open", c.breaker.Name(), sentinel.ErrUnavailable)
	}
	err := c.do(ctx, out, segments)
	switch {
	case err == nil, errors.Is(err, sentinel.ErrNotFound):
		c.recordSuccess(ctx)
	case ctx.Err() != nil:
		// Caller cancellation says nothing about registry health.
	default:
		c.recordFailure(ctx, err)
	}
	return err
}

func (c *Client) do(ctx context.Context, out any, segments []string) error {
	escaped := make([]string, len(segments))
	for i, s := range segments {
		escaped[i] = url.PathEscape(s)
	}
	target := c.base + "/" + strings.Join(escaped, "/")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return fmt.Errorf("build registry request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	resp, err := c.http.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return fmt.Errorf("%s: %w: %v", c.breaker.Name(), sentinel.ErrUnavailable, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return sentinel.ErrNotFound
	case resp.StatusCode != http.StatusOK:
		return fmt.Errorf("%s: %w: status %d", c.breaker.Name(), sentinel.ErrUnavailable, resp.StatusCode)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%s: %w: decode: %v", c.breaker.Name(), sentinel.ErrUnavailable, err)
	}
	return nil
}

func (c *Client) recordFailure(ctx context.Context, err error) {
	useFallback, change := c.breaker.RecordFailure()
	if useFallback {
		c.openedAt.Store(c.now())
	}
	if change.Opened {
		c.logger.WarnContext(ctx, "registry circuit opened",
			"registry", c.breaker.Name(),
			"error", err,
		)
	}
}

func (c *Client) recordSuccess(ctx context.Context) {
	if _, change := c.breaker.RecordSuccess(); change.Closed {
		c.logger.InfoContext(ctx, "registry circuit closed", "registry", c.breaker.Name())
	}
}
