package location

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"dvi/internal/platform/tracing"
	id "dvi/pkg/domain"
	dErrors "dvi/pkg/domain-errors"
	"dvi/pkg/platform/sentinel"
)

// Presence is one append-only tracker entry. Seq is assigned by the journal
// and increases with write order.
type Presence struct {
	Seq        int64          `json:"seq"`
	Entity     string         `json:"entity"`
	Location   id.LocationRef `json:"location"`
	At         time.Time      `json:"at"`
	RecordedAt time.Time      `json:"recorded_at"`
}

// After reports whether p supersedes q: later At wins, equal At falls back
// to write order.
func (p Presence) After(q Presence) bool {
	if !p.At.Equal(q.At) {
		return p.At.After(q.At)
	}
	return p.Seq > q.Seq
}

//go:generate mockgen -source=tracker.go -destination=mocks/tracker_mocks.go -package=mocks Journal

// Journal is the storage behind the tracker. Append never rewrites history.
// Current returns sentinel.ErrNotFound for entities with no presence.
type Journal interface {
	Append(ctx context.Context, entity string, loc id.LocationRef, at time.Time) (Presence, error)
	Current(ctx context.Context, entity string) (Presence, error)
	History(ctx context.Context, entity string) ([]Presence, error)
}

// Tracker is the adapter the body engine uses. Failures surface as
// tracker_unavailable or timeout.
type Tracker struct {
	journal Journal
	timeout time.Duration
	logger  *slog.Logger
	now     func() time.Time
}

type TrackerOption func(*Tracker)

func WithTimeout(d time.Duration) TrackerOption {
	return func(t *Tracker) {
		if d > 0 {
			t.timeout = d
		}
	}
}

func WithLogger(logger *slog.Logger) TrackerOption {
	return func(t *Tracker) {
		t.logger = logger
	}
}

func NewTracker(journal Journal, opts ...TrackerOption) *Tracker {
	t := &Tracker{
		journal: journal,
		timeout: 3 * time.Second,
		logger:  slog.Default(),
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

func entityKey(body id.BodyID) string { return "body:" + body.String() }

// SetLocation records that body was at loc at the given time.
func (t *Tracker) SetLocation(ctx context.Context, body id.BodyID, loc id.LocationRef, at time.Time) (p Presence, err error) {
	ctx, span := tracing.Start(ctx, "tracker", "set_location")
	defer func() { tracing.End(span, err) }()

	ctx, cancel := context.WithTimeout(ctx, t.timeout)
	defer cancel()
	p, err = t.journal.Append(ctx, entityKey(body), loc, at.UTC())
	if err != nil {
		return Presence{}, t.translate(ctx, body, err)
	}
	return p, nil
}

// CurrentLocation returns the latest presence, or ok=false if there is none.
func (t *Tracker) CurrentLocation(ctx context.Context, body id.BodyID) (Presence, bool, error) {
	ctx, cancel := context.WithTimeout(ctx, t.timeout)
	defer cancel()
	p, err := t.journal.Current(ctx, entityKey(body))
	if errors.Is(err, sentinel.ErrNotFound) {
		return Presence{}, false, nil
	}
	if err != nil {
		return Presence{}, false, t.translate(ctx, body, err)
	}
	return p, true, nil
}

// History returns every presence of body in supersession order, oldest first.
func (t *Tracker) History(ctx context.Context, body id.BodyID) ([]Presence, error) {
	ctx, cancel := context.WithTimeout(ctx, t.timeout)
	defer cancel()
	h, err := t.journal.History(ctx, entityKey(body))
	if err != nil {
		return nil, t.translate(ctx, body, err)
	}
	return h, nil
}

func (t *Tracker) translate(ctx context.Context, body id.BodyID, err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return dErrors.Wrap(err, dErrors.CodeTimeout, "location tracker timed out")
	}
	if errors.Is(err, context.Canceled) {
		return err
	}
	t.logger.ErrorContext(ctx, "location tracker failed", "body_id", body.String(), "error", err)
	return dErrors.Wrap(err, dErrors.CodeTrackerUnavailable, "location tracker unavailable")
}
