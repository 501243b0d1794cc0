package location

import (
	"context"
	"slices"
	"sync"
	"time"

	id "dvi/pkg/domain"
	"dvi/pkg/platform/sentinel"
)

type MemoryJournal struct {
	mu     sync.RWMutex
	seq    int64
	events map[string][]Presence
	now    func() time.Time
}

func NewMemoryJournal() *MemoryJournal {
	return &MemoryJournal{events: make(map[string][]Presence), now: time.Now}
}

func (j *MemoryJournal) Append(ctx context.Context, entity string, loc id.LocationRef, at time.Time) (Presence, error) {
	if err := ctx.Err(); err != nil {
		return Presence{}, err
	}
	j.mu.Lock()
	defer j.mu.Unlock()
	j.seq++
	p := Presence{Seq: j.seq, Entity: entity, Location: loc, At: at, RecordedAt: j.now().UTC()}
	j.events[entity] = append(j.events[entity], p)
	return p, nil
}

func (j *MemoryJournal) Current(ctx context.Context, entity string) (Presence, error) {
	if err := ctx.Err(); err != nil {
		return Presence{}, err
	}
	j.mu.RLock()
	defer j.mu.RUnlock()
	events := j.events[entity]
	if len(events) == 0 {
		return Presence{}, sentinel.ErrNotFound
	}
	best := events[0]
	for _, p := range events[1:] {
		if p.After(best) {
			best = p
		}
	}
	return best, nil
}

func (j *MemoryJournal) History(ctx context.Context, entity string) ([]Presence, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	j.mu.RLock()
	out := slices.Clone(j.events[entity])
	j.mu.RUnlock()
	sortHistory(out)
	return out, nil
}

func sortHistory(h []Presence) {
	slices.SortFunc(h, func(a, b Presence) int {
		switch {
		case b.After(a):
			return -1
		case a.After(b):
			return 1
		}
		return 0
	})
}
