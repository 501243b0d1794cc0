package postgres

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"dvi/internal/audit"
)

var _ audit.Outbox = (*Store)(nil)

func (t *pgTx) AppendAudit(ctx context.Context, e audit.Event) error {
	payload, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("marshal audit event: %w", err)
	}
	_, err = t.ex(ctx).ExecContext(ctx,
		`INSERT INTO outbox (id, aggregate_type, aggregate_id, event_type, payload, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6)`,
		uuid.UUID(e.ID), string(e.AggregateType), e.AggregateID, string(e.Action), payload, e.Timestamp)
	return wrap("insert outbox entry", err)
}

// PendingAudit returns unpublished entries in commit order.
func (s *Store) PendingAudit(ctx context.Context, limit int) ([]audit.OutboxEntry, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT seq, payload FROM outbox WHERE published_at IS NULL ORDER BY seq LIMIT $1`, limit)
	if err != nil {
		return nil, wrap("query outbox", err)
	}
	defer rows.Close()
	var out []audit.OutboxEntry
	for rows.Next() {
		var (
			entry   audit.OutboxEntry
			payload []byte
		)
		if err := rows.Scan(&entry.Seq, &payload); err != nil {
			return nil, wrap("scan outbox entry", err)
		}
		if err := json.Unmarshal(payload, &entry.Event); err != nil {
			return nil, fmt.Errorf("decode outbox entry %d: %w", entry.Seq, err)
		}
		out = append(out, entry)
	}
	return out, wrap("query outbox", rows.Err())
}

func (s *Store) MarkAuditPublished(ctx context.Context, seqs []int64, at time.Time) error {
	if len(seqs) == 0 {
		return nil
	}
	_, err := s.db.ExecContext(ctx,
		`UPDATE outbox SET published_at = $2 WHERE seq = ANY($1::bigint[])`, pq.Array(seqs), at)
	return wrap("mark outbox published", err)
}
