package postgres

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	bodymodels "dvi/internal/body/models"
	"dvi/internal/labels"
	id "dvi/pkg/domain"
)

const bodyColumns = `id, label, morgue_id, recovery_request_id, date_of_recovery, recovery_details,
	apparent_gender, apparent_age_group, place_of_recovery, incomplete, major_outward_damage,
	burned_or_charred, decomposed, claim_count, created_at, updated_at`

func scanBody(row scanner) (*bodymodels.Body, error) {
	var (
		b           bodymodels.Body
		bid         uuid.UUID
		morgue, req uuid.NullUUID
		gender, age int
		place       string
	)
	if err := row.Scan(&bid, &b.Label, &morgue, &req, &b.DateOfRecovery, &b.RecoveryDetails,
		&gender, &age, &place, &b.Observed.Incomplete, &b.Observed.MajorOutwardDamage,
		&b.Observed.BurnedOrCharred, &b.Observed.Decomposed, &b.ClaimCount, &b.CreatedAt, &b.UpdatedAt); err != nil {
		return nil, err
	}
	var err error
	if b.ApparentGender, err = bodymodels.GenderFromCode(gender); err != nil {
		return nil, err
	}
	if b.ApparentAgeGroup, err = bodymodels.AgeGroupFromCode(age); err != nil {
		return nil, err
	}
	b.ID = id.BodyID(bid)
	if morgue.Valid {
		b.Morgue = id.MorgueID(morgue.UUID)
	}
	if req.Valid {
		b.RecoveryRequest = id.RecoveryRequestID(req.UUID)
	}
	b.PlaceOfRecovery = id.LocationRef(place)
	b.DateOfRecovery = b.DateOfRecovery.UTC()
	b.CreatedAt = b.CreatedAt.UTC()
	b.UpdatedAt = b.UpdatedAt.UTC()
	return &b, nil
}

func nullMorgue(m id.MorgueID) uuid.NullUUID {
	return uuid.NullUUID{UUID: uuid.UUID(m), Valid: !m.IsNil()}
}

func nullRequest(r id.RecoveryRequestID) uuid.NullUUID {
	return uuid.NullUUID{UUID: uuid.UUID(r), Valid: !r.IsNil()}
}

func (q queries) getBody(ctx context.Context, where string, arg any, lock bool) (*bodymodels.Body, error) {
	row := q.ex(ctx).QueryRowContext(ctx, `SELECT `+bodyColumns+` FROM body WHERE `+where+lockClause(lock), arg)
	b, err := scanBody(row)
	if err != nil {
		return nil, wrap("get body", err)
	}
	return b, nil
}

func (q queries) GetBody(ctx context.Context, bodyID id.BodyID) (*bodymodels.Body, error) {
	return q.getBody(ctx, "id = $1", uuid.UUID(bodyID), false)
}

func (q queries) FindBodyByLabel(ctx context.Context, label string) (*bodymodels.Body, error) {
	return q.getBody(ctx, "label = $1", label, false)
}

func (q queries) SearchBodies(ctx context.Context, sq bodymodels.SearchQuery) ([]*bodymodels.Body, int, error) {
	sq.Normalize()
	pattern := labels.Pattern(sq.Query)

	var total int
	err := q.ex(ctx).QueryRowContext(ctx,
		`SELECT count(*) FROM body WHERE label LIKE $1 ESCAPE '\'`, pattern).Scan(&total)
	if err != nil {
		return nil, 0, wrap("count bodies", err)
	}
	if total == 0 {
		return nil, 0, nil
	}

	rows, err := q.ex(ctx).QueryContext(ctx,
		`SELECT `+bodyColumns+` FROM body WHERE label LIKE $1 ESCAPE '\'
		 ORDER BY label COLLATE "C" LIMIT $2 OFFSET $3`,
		pattern, sq.PageSize, sq.Offset())
	if err != nil {
		return nil, 0, wrap("search bodies", err)
	}
	defer rows.Close()
	var out []*bodymodels.Body
	for rows.Next() {
		b, err := scanBody(rows)
		if err != nil {
			return nil, 0, wrap("scan body", err)
		}
		out = append(out, b)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, wrap("search bodies", err)
	}
	return out, total, nil
}

func (t *pgTx) InsertBody(ctx context.Context, b *bodymodels.Body) error {
	_, err := t.ex(ctx).ExecContext(ctx,
		`INSERT INTO body (`+bodyColumns+`)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)`,
		uuid.UUID(b.ID), b.Label, nullMorgue(b.Morgue), nullRequest(b.RecoveryRequest), b.DateOfRecovery,
		b.RecoveryDetails, b.ApparentGender.Code(), b.ApparentAgeGroup.Code(), string(b.PlaceOfRecovery),
		b.Observed.Incomplete, b.Observed.MajorOutwardDamage, b.Observed.BurnedOrCharred, b.Observed.Decomposed,
		b.ClaimCount, b.CreatedAt, b.UpdatedAt)
	return wrap("insert body", err)
}

func (t *pgTx) LockBody(ctx context.Context, bodyID id.BodyID) (*bodymodels.Body, error) {
	return t.getBody(ctx, "id = $1", uuid.UUID(bodyID), true)
}

func (t *pgTx) UpdateBody(ctx context.Context, b *bodymodels.Body) error {
	res, err := t.ex(ctx).ExecContext(ctx,
		`UPDATE body SET label = $2, morgue_id = $3, recovery_request_id = $4, date_of_recovery = $5,
		 recovery_details = $6, apparent_gender = $7, apparent_age_group = $8, place_of_recovery = $9,
		 incomplete = $10, major_outward_damage = $11, burned_or_charred = $12, decomposed = $13,
		 claim_count = $14, updated_at = $15
		 WHERE id = $1`,
		uuid.UUID(b.ID), b.Label, nullMorgue(b.Morgue), nullRequest(b.RecoveryRequest), b.DateOfRecovery,
		b.RecoveryDetails, b.ApparentGender.Code(), b.ApparentAgeGroup.Code(), string(b.PlaceOfRecovery),
		b.Observed.Incomplete, b.Observed.MajorOutwardDamage, b.Observed.BurnedOrCharred, b.Observed.Decomposed,
		b.ClaimCount, b.UpdatedAt)
	return expectOne(res, err, "update body")
}

// DeleteBody relies on ON DELETE CASCADE for the checklist and effects.
func (t *pgTx) DeleteBody(ctx context.Context, bodyID id.BodyID) error {
	res, err := t.ex(ctx).ExecContext(ctx, `DELETE FROM body WHERE id = $1`, uuid.UUID(bodyID))
	return expectOne(res, err, "delete body")
}

// checklistColumns follows bodymodels.Operations, whose values are the
// column names.
var checklistColumns = func() string {
	cols := make([]string, len(bodymodels.Operations))
	for i, op := range bodymodels.Operations {
		cols[i] = string(op)
	}
	return strings.Join(cols, ", ")
}()

func (q queries) GetChecklist(ctx context.Context, bodyID id.BodyID) (*bodymodels.Checklist, error) {
	var codes [bodymodels.NumOperations]int
	c := &bodymodels.Checklist{BodyID: bodyID}
	dest := make([]any, 0, len(codes)+1)
	for i := range codes {
		dest = append(dest, &codes[i])
	}
	dest = append(dest, &c.UpdatedAt)
	err := q.ex(ctx).QueryRowContext(ctx,
		`SELECT `+checklistColumns+`, updated_at FROM checklist WHERE body_id = $1`, uuid.UUID(bodyID)).Scan(dest...)
	if err != nil {
		return nil, wrap("get checklist", err)
	}
	for i, code := range codes {
		st, err := id.TaskStatusFromCode(code)
		if err != nil {
			return nil, fmt.Errorf("checklist %s: %w", bodymodels.Operations[i], err)
		}
		c.States[i] = st
	}
	c.UpdatedAt = c.UpdatedAt.UTC()
	return c, nil
}

func checklistArgs(c *bodymodels.Checklist) []any {
	args := []any{uuid.UUID(c.BodyID)}
	for _, st := range c.States {
		args = append(args, st.Code())
	}
	return append(args, c.UpdatedAt)
}

func (t *pgTx) InsertChecklist(ctx context.Context, c *bodymodels.Checklist) error {
	_, err := t.ex(ctx).ExecContext(ctx,
		`INSERT INTO checklist (body_id, `+checklistColumns+`, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		checklistArgs(c)...)
	return wrap("insert checklist", err)
}

func (t *pgTx) UpdateChecklist(ctx context.Context, c *bodymodels.Checklist) error {
	set := make([]string, 0, bodymodels.NumOperations)
	for i, op := range bodymodels.Operations {
		set = append(set, fmt.Sprintf("%s = $%d", op, i+2))
	}
	res, err := t.ex(ctx).ExecContext(ctx,
		`UPDATE checklist SET `+strings.Join(set, ", ")+`, updated_at = $10 WHERE body_id = $1`,
		checklistArgs(c)...)
	return expectOne(res, err, "update checklist")
}

func (q queries) GetEffects(ctx context.Context, bodyID id.BodyID) (*bodymodels.PersonalEffects, error) {
	e := &bodymodels.PersonalEffects{BodyID: bodyID}
	err := q.ex(ctx).QueryRowContext(ctx,
		`SELECT clothing, jewellery, footwear, watch, other, updated_at FROM personal_effects WHERE body_id = $1`,
		uuid.UUID(bodyID)).Scan(&e.Clothing, &e.Jewellery, &e.Footwear, &e.Watch, &e.Other, &e.UpdatedAt)
	if err != nil {
		return nil, wrap("get personal effects", err)
	}
	e.UpdatedAt = e.UpdatedAt.UTC()
	return e, nil
}

func (t *pgTx) UpsertEffects(ctx context.Context, e *bodymodels.PersonalEffects) error {
	_, err := t.ex(ctx).ExecContext(ctx,
		`INSERT INTO personal_effects (body_id, clothing, jewellery, footwear, watch, other, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)
		 ON CONFLICT (body_id) DO UPDATE SET clothing = EXCLUDED.clothing, jewellery = EXCLUDED.jewellery,
		 footwear = EXCLUDED.footwear, watch = EXCLUDED.watch, other = EXCLUDED.other, updated_at = EXCLUDED.updated_at`,
		uuid.UUID(e.BodyID), e.Clothing, e.Jewellery, e.Footwear, e.Watch, e.Other, e.UpdatedAt)
	return wrap("upsert personal effects", err)
}

func (t *pgTx) DeleteEffects(ctx context.Context, bodyID id.BodyID) error {
	res, err := t.ex(ctx).ExecContext(ctx, `DELETE FROM personal_effects WHERE body_id = $1`, uuid.UUID(bodyID))
	return expectOne(res, err, "delete personal effects")
}
