package location

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	id "dvi/pkg/domain"
	"dvi/pkg/platform/sentinel"
	"dvi/pkg/platform/tx"
)

// PostgresJournal stores presence events in the presence_event table. Inside
// a unit of work it joins the caller's transaction, so a body and its first
// presence commit together.
type PostgresJournal struct {
	db  *sql.DB
	now func() time.Time
}

func NewPostgresJournal(db *sql.DB) *PostgresJournal {
	return &PostgresJournal{db: db, now: time.Now}
}

func (j *PostgresJournal) Append(ctx context.Context, entity string, loc id.LocationRef, at time.Time) (Presence, error) {
	p := Presence{Entity: entity, Location: loc, At: at, RecordedAt: j.now().UTC()}
	err := tx.Executor(ctx, j.db).QueryRowContext(ctx,
		`INSERT INTO presence_event (entity_id, location, at, recorded_at) VALUES ($1, $2, $3, $4) RETURNING seq`,
		entity, string(loc), at, p.RecordedAt,
	).Scan(&p.Seq)
	if err != nil {
		return Presence{}, fmt.Errorf("insert presence event: %w", err)
	}
	return p, nil
}

func (j *PostgresJournal) Current(ctx context.Context, entity string) (Presence, error) {
	p := Presence{Entity: entity}
	var loc string
	err := tx.Executor(ctx, j.db).QueryRowContext(ctx,
		`SELECT seq, location, at, recorded_at FROM presence_event
		 WHERE entity_id = $1 ORDER BY at DESC, seq DESC LIMIT 1`,
		entity,
	).Scan(&p.Seq, &loc, &p.At, &p.RecordedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return Presence{}, sentinel.ErrNotFound
	}
	if err != nil {
		return Presence{}, fmt.Errorf("query current presence: %w", err)
	}
	p.Location = id.LocationRef(loc)
	return p, nil
}

func (j *PostgresJournal) History(ctx context.Context, entity string) ([]Presence, error) {
	rows, err := tx.Executor(ctx, j.db).QueryContext(ctx,
		`SELECT seq, location, at, recorded_at FROM presence_event
		 WHERE entity_id = $1 ORDER BY at ASC, seq ASC`,
		entity,
	)
	if err != nil {
		return nil, fmt.Errorf("query presence history: %w", err)
	}
	defer rows.Close()

	var out []Presence
	for rows.Next() {
		p := Presence{Entity: entity}
		var loc string
		if err := rows.Scan(&p.Seq, &loc, &p.At, &p.RecordedAt); err != nil {
			return nil, fmt.Errorf("scan presence: %w", err)
		}
		p.Location = id.LocationRef(loc)
		out = append(out, p)
	}
	return out, rows.Err()
}
