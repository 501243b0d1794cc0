package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/lib/pq"

	morguemodels "dvi/internal/morgue/models"
	recoverymodels "dvi/internal/recovery/models"
	id "dvi/pkg/domain"
)

const requestColumns = `id, date_found, marker, finder, bodies_found, bodies_recovered,
	description, location, status, assigned_to, created_at, updated_at`

type scanner interface {
	Scan(dest ...any) error
}

func scanRequest(row scanner) (*recoverymodels.RecoveryRequest, error) {
	var (
		r                recoverymodels.RecoveryRequest
		rid              uuid.UUID
		finder, location string
		assigned         string
		status           int
	)
	if err := row.Scan(&rid, &r.DateFound, &r.Marker, &finder, &r.BodiesFound, &r.BodiesRecovered,
		&r.Description, &location, &status, &assigned, &r.CreatedAt, &r.UpdatedAt); err != nil {
		return nil, err
	}
	st, err := id.TaskStatusFromCode(status)
	if err != nil {
		return nil, err
	}
	r.ID = id.RecoveryRequestID(rid)
	r.Finder = id.PersonRef(finder)
	r.Location = id.LocationRef(location)
	r.AssignedTo = id.PersonRef(assigned)
	r.Status = st
	r.DateFound = r.DateFound.UTC()
	r.CreatedAt = r.CreatedAt.UTC()
	r.UpdatedAt = r.UpdatedAt.UTC()
	return &r, nil
}

func (q queries) getRecoveryRequest(ctx context.Context, reqID id.RecoveryRequestID, lock bool) (*recoverymodels.RecoveryRequest, error) {
	row := q.ex(ctx).QueryRowContext(ctx,
		`SELECT `+requestColumns+` FROM recovery_request WHERE id = $1`+lockClause(lock), uuid.UUID(reqID))
	r, err := scanRequest(row)
	if err != nil {
		return nil, wrap("get recovery request", err)
	}
	return r, nil
}

func (q queries) GetRecoveryRequest(ctx context.Context, reqID id.RecoveryRequestID) (*recoverymodels.RecoveryRequest, error) {
	return q.getRecoveryRequest(ctx, reqID, false)
}

func (q queries) ListRecoveryRequests(ctx context.Context, f recoverymodels.Filter) ([]*recoverymodels.RecoveryRequest, error) {
	var (
		where []string
		args  []any
	)
	arg := func(v any) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}
	if f.Location != "" {
		where = append(where, "location = "+arg(string(f.Location)))
	}
	if !f.From.IsZero() {
		where = append(where, "date_found >= "+arg(f.From))
	}
	if !f.To.IsZero() {
		where = append(where, "date_found <= "+arg(f.To))
	}
	if len(f.Statuses) > 0 {
		codes := make([]int64, len(f.Statuses))
		for i, s := range f.Statuses {
			codes[i] = int64(s.Code())
		}
		where = append(where, "status = ANY("+arg(pq.Array(codes))+"::smallint[])")
	}

	query := `SELECT ` + requestColumns + ` FROM recovery_request`
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY date_found DESC, id::text DESC"
	if f.Limit > 0 {
		query += " LIMIT " + arg(f.Limit)
	}
	if f.Offset > 0 {
		query += " OFFSET " + arg(f.Offset)
	}

	rows, err := q.ex(ctx).QueryContext(ctx, query, args...)
	if err != nil {
		return nil, wrap("list recovery requests", err)
	}
	defer rows.Close()
	var out []*recoverymodels.RecoveryRequest
	for rows.Next() {
		r, err := scanRequest(rows)
		if err != nil {
			return nil, wrap("scan recovery request", err)
		}
		out = append(out, r)
	}
	return out, wrap("list recovery requests", rows.Err())
}

func (t *pgTx) InsertRecoveryRequest(ctx context.Context, r *recoverymodels.RecoveryRequest) error {
	_, err := t.ex(ctx).ExecContext(ctx,
		`INSERT INTO recovery_request (`+requestColumns+`)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`,
		uuid.UUID(r.ID), r.DateFound, r.Marker, string(r.Finder), r.BodiesFound, r.BodiesRecovered,
		r.Description, string(r.Location), r.Status.Code(), string(r.AssignedTo), r.CreatedAt, r.UpdatedAt)
	return wrap("insert recovery request", err)
}

func (t *pgTx) LockRecoveryRequest(ctx context.Context, reqID id.RecoveryRequestID) (*recoverymodels.RecoveryRequest, error) {
	return t.getRecoveryRequest(ctx, reqID, true)
}

func (t *pgTx) UpdateRecoveryRequest(ctx context.Context, r *recoverymodels.RecoveryRequest) error {
	res, err := t.ex(ctx).ExecContext(ctx,
		`UPDATE recovery_request SET date_found = $2, marker = $3, finder = $4, bodies_found = $5,
		 bodies_recovered = $6, description = $7, location = $8, status = $9, assigned_to = $10, updated_at = $11
		 WHERE id = $1`,
		uuid.UUID(r.ID), r.DateFound, r.Marker, string(r.Finder), r.BodiesFound,
		r.BodiesRecovered, r.Description, string(r.Location), r.Status.Code(), string(r.AssignedTo), r.UpdatedAt)
	return expectOne(res, err, "update recovery request")
}

const morgueColumns = `id, name, description, location, retired_at, created_at, updated_at`

func scanMorgue(row scanner) (*morguemodels.Morgue, error) {
	var (
		m        morguemodels.Morgue
		mid      uuid.UUID
		location string
		retired  sql.NullTime
	)
	if err := row.Scan(&mid, &m.Name, &m.Description, &location, &retired, &m.CreatedAt, &m.UpdatedAt); err != nil {
		return nil, err
	}
	m.ID = id.MorgueID(mid)
	m.Location = id.LocationRef(location)
	m.RetiredAt = utcPtr(retired)
	m.CreatedAt = m.CreatedAt.UTC()
	m.UpdatedAt = m.UpdatedAt.UTC()
	return &m, nil
}

func (q queries) getMorgue(ctx context.Context, morgueID id.MorgueID, lock bool) (*morguemodels.Morgue, error) {
	row := q.ex(ctx).QueryRowContext(ctx,
		`SELECT `+morgueColumns+` FROM morgue WHERE id = $1`+lockClause(lock), uuid.UUID(morgueID))
	m, err := scanMorgue(row)
	if err != nil {
		return nil, wrap("get morgue", err)
	}
	return m, nil
}

func (q queries) GetMorgue(ctx context.Context, morgueID id.MorgueID) (*morguemodels.Morgue, error) {
	return q.getMorgue(ctx, morgueID, false)
}

func (q queries) ListMorgues(ctx context.Context, includeRetired bool) ([]*morguemodels.Morgue, error) {
	rows, err := q.ex(ctx).QueryContext(ctx,
		`SELECT `+morgueColumns+` FROM morgue WHERE $1 OR retired_at IS NULL ORDER BY name COLLATE "C", id::text`,
		includeRetired)
	if err != nil {
		return nil, wrap("list morgues", err)
	}
	defer rows.Close()
	var out []*morguemodels.Morgue
	for rows.Next() {
		m, err := scanMorgue(rows)
		if err != nil {
			return nil, wrap("scan morgue", err)
		}
		out = append(out, m)
	}
	return out, wrap("list morgues", rows.Err())
}

func (t *pgTx) InsertMorgue(ctx context.Context, m *morguemodels.Morgue) error {
	_, err := t.ex(ctx).ExecContext(ctx,
		`INSERT INTO morgue (`+morgueColumns+`) VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		uuid.UUID(m.ID), m.Name, m.Description, string(m.Location), nullTime(m.RetiredAt), m.CreatedAt, m.UpdatedAt)
	return wrap("insert morgue", err)
}

func (t *pgTx) LockMorgue(ctx context.Context, morgueID id.MorgueID) (*morguemodels.Morgue, error) {
	return t.getMorgue(ctx, morgueID, true)
}

func (t *pgTx) UpdateMorgue(ctx context.Context, m *morguemodels.Morgue) error {
	res, err := t.ex(ctx).ExecContext(ctx,
		`UPDATE morgue SET name = $2, description = $3, location = $4, retired_at = $5, updated_at = $6 WHERE id = $1`,
		uuid.UUID(m.ID), m.Name, m.Description, string(m.Location), nullTime(m.RetiredAt), m.UpdatedAt)
	return expectOne(res, err, "update morgue")
}

func (t *pgTx) DeleteMorgue(ctx context.Context, morgueID id.MorgueID) error {
	res, err := t.ex(ctx).ExecContext(ctx, `DELETE FROM morgue WHERE id = $1`, uuid.UUID(morgueID))
	return expectOne(res, err, "delete morgue")
}

func (t *pgTx) CountBodiesInMorgue(ctx context.Context, morgueID id.MorgueID) (int, error) {
	var n int
	err := t.ex(ctx).QueryRowContext(ctx, `SELECT count(*) FROM body WHERE morgue_id = $1`, uuid.UUID(morgueID)).Scan(&n)
	return n, wrap("count bodies in morgue", err)
}
