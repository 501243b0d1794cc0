package audit

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/twmb/franz-go/pkg/kadm"
	"github.com/twmb/franz-go/pkg/kerr"
	"github.com/twmb/franz-go/pkg/kgo"
)

// KafkaProducer publishes events to one topic keyed by aggregate id, so all
// events for one record land in one partition in commit order.
type KafkaProducer struct {
	client *kgo.Client
	topic  string
}

func NewKafkaProducer(brokers []string, topic string) (*KafkaProducer, error) {
	client, err := kgo.NewClient(
		kgo.SeedBrokers(brokers...),
		kgo.DefaultProduceTopic(topic),
		kgo.RequiredAcks(kgo.AllISRAcks()),
	)
	if err != nil {
		return nil, fmt.Errorf("create kafka client: %w", err)
	}
	return &KafkaProducer{client: client, topic: topic}, nil
}

// EnsureTopic creates the audit topic if it does not exist.
func (p *KafkaProducer) EnsureTopic(ctx context.Context, partitions int32, replication int16) error {
	adm := kadm.NewClient(p.client)
	resp, err := adm.CreateTopic(ctx, partitions, replication, nil, p.topic)
	if err != nil {
		return fmt.Errorf("create topic %s: %w", p.topic, err)
	}
	if resp.Err != nil && !errors.Is(resp.Err, kerr.TopicAlreadyExists) {
		return fmt.Errorf("create topic %s: %w", p.topic, resp.Err)
	}
	return nil
}

func (p *KafkaProducer) Publish(ctx context.Context, events []Event) error {
	records := make([]*kgo.Record, 0, len(events))
	for _, e := range events {
		rec, err := newRecord(e)
		if err != nil {
			return err
		}
		records = append(records, rec)
	}
	return p.client.ProduceSync(ctx, records...).FirstErr()
}

func (p *KafkaProducer) Close() { p.client.Close() }

func newRecord(e Event) (*kgo.Record, error) {
	payload, err := json.Marshal(e)
	if err != nil {
		return nil, fmt.Errorf("marshal audit event: %w", err)
	}
	return &kgo.Record{
		Key:   []byte(e.AggregateID),
		Value: payload,
		Headers: []kgo.RecordHeader{
			{Key: "action", Value: []byte(e.Action)},
			{Key: "event_id", Value: []byte(e.ID.String())},
		},
	}, nil
}

// LogProducer writes events to the logger. Used when no brokers are configured.
type LogProducer struct {
	logger *slog.Logger
}

func NewLogProducer(logger *slog.Logger) *LogProducer {
	return &LogProducer{logger: logger}
}

func (p *LogProducer) Publish(ctx context.Context, events []Event) error {
	for _, e := range events {
		p.logger.InfoContext(ctx, "audit",
			"event_id", e.ID.String(),
			"action", e.Action,
			"aggregate_type", e.AggregateType,
			"aggregate_id", e.AggregateID,
			"actor", e.Actor,
			"request_id", e.RequestID,
			"reason", e.Reason,
		)
	}
	return nil
}

func (p *LogProducer) Close() {}
