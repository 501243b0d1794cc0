package location

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	// Registers the "sqlite" driver.
	_ "modernc.org/sqlite"

	id "dvi/pkg/domain"
	"dvi/pkg/platform/sentinel"
)

const sqliteSchema = `CREATE TABLE IF NOT EXISTS presence_event (
	seq         INTEGER PRIMARY KEY AUTOINCREMENT,
	entity_id   TEXT NOT NULL,
	location    TEXT NOT NULL,
	at          INTEGER NOT NULL,
	recorded_at INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS presence_entity_idx ON presence_event (entity_id, at, seq);`

// SQLiteJournal keeps the presence journal in a local file for field
// deployments without a shared database. Timestamps are unix nanoseconds.
type SQLiteJournal struct {
	db  *sql.DB
	now func() time.Time
}

// OpenSQLiteJournal opens (creating if needed) the journal at path. Use
// ":memory:" for a throwaway journal.
func OpenSQLiteJournal(ctx context.Context, path string) (*SQLiteJournal, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite journal: %w", err)
	}
	// SQLite allows one writer; a single connection also keeps ":memory:" shared.
	db.SetMaxOpenConns(1)
	if _, err := db.ExecContext(ctx, sqliteSchema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("create sqlite journal schema: %w", err)
	}
	return &SQLiteJournal{db: db, now: time.Now}, nil
}

func (j *SQLiteJournal) Close() error { return j.db.Close() }

func (j *SQLiteJournal) Append(ctx context.Context, entity string, loc id.LocationRef, at time.Time) (Presence, error) {
	p := Presence{Entity: entity, Location: loc, At: at.UTC(), RecordedAt: j.now().UTC()}
	res, err := j.db.ExecContext(ctx,
		`INSERT INTO presence_event (entity_id, location, at, recorded_at) VALUES (?, ?, ?, ?)`,
		entity, string(loc), p.At.UnixNano(), p.RecordedAt.UnixNano(),
	)
	if err != nil {
		return Presence{}, fmt.Errorf("insert presence event: %w", err)
	}
	if p.Seq, err = res.LastInsertId(); err != nil {
		return Presence{}, fmt.Errorf("read presence seq: %w", err)
	}
	return p, nil
}

func (j *SQLiteJournal) Current(ctx context.Context, entity string) (Presence, error) {
	row := j.db.QueryRowContext(ctx,
		`SELECT seq, location, at, recorded_at FROM presence_event
		 WHERE entity_id = ? ORDER BY at DESC, seq DESC LIMIT 1`, entity)
	p, err := scanSQLite(row.Scan, entity)
	if errors.Is(err, sql.ErrNoRows) {
		return Presence{}, sentinel.ErrNotFound
	}
	return p, err
}

func (j *SQLiteJournal) History(ctx context.Context, entity string) ([]Presence, error) {
	rows, err := j.db.QueryContext(ctx,
		`SELECT seq, location, at, recorded_at FROM presence_event
		 WHERE entity_id = ? ORDER BY at ASC, seq ASC`, entity)
	if err != nil {
		return nil, fmt.Errorf("query presence history: %w", err)
	}
	defer rows.Close()
	var out []Presence
	for rows.Next() {
		p, err := scanSQLite(rows.Scan, entity)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func scanSQLite(scan func(dest ...any) error, entity string) (Presence, error) {
	var (
		p          = Presence{Entity: entity}
		loc        string
		at, logged int64
	)
	if err := scan(&p.Seq, &loc, &at, &logged); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Presence{}, err
		}
		return Presence{}, fmt.Errorf("scan presence: %w", err)
	}
	p.Location = id.LocationRef(loc)
	p.At = time.Unix(0, at).UTC()
	p.RecordedAt = time.Unix(0, logged).UTC()
	return p, nil
}
