package audit

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dvi/pkg/requestcontext"
)

type memOutbox struct {
	mu        sync.Mutex
	entries   []OutboxEntry
	published map[int64]bool
	appendErr error
	markErr   error
}

func (o *memOutbox) AppendAudit(_ context.Context, e Event) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.appendErr != nil {
		return o.appendErr
	}
	o.entries = append(o.entries, OutboxEntry{Seq: int64(len(o.entries) + 1), Event: e})
	return nil
}

func (o *memOutbox) PendingAudit(_ context.Context, limit int) ([]OutboxEntry, error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	var out []OutboxEntry
	for _, e := range o.entries {
		if !o.published[e.Seq] && len(out) < limit {
			out = append(out, e)
		}
	}
	return out, nil
}

func (o *memOutbox) MarkAuditPublished(_ context.Context, seqs []int64, _ time.Time) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.markErr != nil {
		return o.markErr
	}
	if o.published == nil {
		o.published = map[int64]bool{}
	}
	for _, s := range seqs {
		o.published[s] = true
	}
	return nil
}

type recordingProducer struct {
	events []Event
	err    error
}

func (p *recordingProducer) Publish(_ context.Context, events []Event) error {
	if p.err != nil {
		return p.err
	}
	p.events = append(p.events, events...)
	return nil
}

func (p *recordingProducer) Close() {}

func TestPublisherEnrichesEvents(t *testing.T) {
	at := time.Date(2024, 1, 10, 12, 0, 0, 0, time.UTC)
	ctx := requestcontext.WithTime(context.Background(), at)
	ctx = requestcontext.WithRequestID(ctx, "req-1")
	ctx = requestcontext.WithPrincipal(ctx, requestcontext.PrincipalInfo{Subject: "P42"})

	metrics := NewMetricsWith(promauto.With(prometheus.NewRegistry()))
	pub := NewPublisher(WithMetrics(metrics))
	sink := &memOutbox{}

	err := pub.Emit(ctx, sink, Event{Action: ActionBodyCreated, AggregateType: AggregateBody, AggregateID: "b1"})
	require.NoError(t, err)

	require.Len(t, sink.entries, 1)
	e := sink.entries[0].Event
	assert.NotEqual(t, "00000000-0000-0000-0000-000000000000", e.ID.String())
	assert.Equal(t, at, e.Timestamp)
	assert.Equal(t, "req-1", e.RequestID)
	assert.Equal(t, "P42", e.Actor)
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.emitted.WithLabelValues(string(ActionBodyCreated))))
}

func TestPublisherFailsClosed(t *testing.T) {
	pub := NewPublisher()
	sink := &memOutbox{appendErr: errors.New("disk full")}

	err := pub.Emit(context.Background(), sink, Event{Action: ActionBodyDeleted})
	assert.ErrorContains(t, err, "disk full")

	err = pub.Emit(context.Background(), &memOutbox{}, Event{})
	assert.Error(t, err)
}

func TestRelay(t *testing.T) {
	ctx := context.Background()
	pub := NewPublisher()

	t.Run("publishes pending events once", func(t *testing.T) {
		outbox := &memOutbox{}
		for range 3 {
			require.NoError(t, pub.Emit(ctx, outbox, Event{Action: ActionClaimOpened, AggregateID: "c1"}))
		}
		producer := &recordingProducer{}
		relay := NewRelay(outbox, producer, WithBatch(2))

		n, err := relay.RunOnce(ctx)
		require.NoError(t, err)
		assert.Equal(t, 2, n)
		n, err = relay.RunOnce(ctx)
		require.NoError(t, err)
		assert.Equal(t, 1, n)
		n, err = relay.RunOnce(ctx)
		require.NoError(t, err)
		assert.Zero(t, n)
		assert.Len(t, producer.events, 3)
	})

	t.Run("producer failure leaves events pending", func(t *testing.T) {
		outbox := &memOutbox{}
		require.NoError(t, pub.Emit(ctx, outbox, Event{Action: ActionClaimRevoked}))
		producer := &recordingProducer{err: errors.New("broker down")}
		relay := NewRelay(outbox, producer)

		_, err := relay.RunOnce(ctx)
		require.Error(t, err)

		producer.err = nil
		n, err := relay.RunOnce(ctx)
		require.NoError(t, err)
		assert.Equal(t, 1, n)
	})

	t.Run("run stops on cancellation", func(t *testing.T) {
		cctx, cancel := context.WithCancel(ctx)
		relay := NewRelay(&memOutbox{}, &recordingProducer{}, WithPeriod(time.Millisecond))
		done := make(chan error, 1)
		go func() { done <- relay.Run(cctx) }()
		cancel()
		select {
		case err := <-done:
			assert.ErrorIs(t, err, context.Canceled)
		case <-time.After(time.Second):
			t.Fatal("relay did not stop")
		}
	})
}

func TestNewRecordKeysByAggregate(t *testing.T) {
	rec, err := newRecord(Event{Action: ActionBodyCreated, AggregateID: "b7"})
	require.NoError(t, err)
	assert.Equal(t, []byte("b7"), rec.Key)
	assert.Contains(t, string(rec.Value), `"action":"body_created"`)
	assert.Equal(t, "action", rec.Headers[0].Key)
}
