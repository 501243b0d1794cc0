package postgres

import (
	"context"
	"database/sql"

	"github.com/google/uuid"

	idmodels "dvi/internal/identification/models"
	reportmodels "dvi/internal/reports/models"
	id "dvi/pkg/domain"
)

func (q queries) CountBodiesByMorgue(ctx context.Context) (reportmodels.MorgueCounts, error) {
	var result reportmodels.MorgueCounts
	rows, err := q.ex(ctx).QueryContext(ctx,
		`SELECT m.id, m.name, count(b.id)
		 FROM morgue m LEFT JOIN body b ON b.morgue_id = m.id
		 GROUP BY m.id
		 HAVING m.retired_at IS NULL OR count(b.id) > 0
		 ORDER BY m.name COLLATE "C", m.id::text`)
	if err != nil {
		return result, wrap("count bodies by morgue", err)
	}
	defer rows.Close()
	for rows.Next() {
		var (
			mc  reportmodels.MorgueCount
			mid uuid.UUID
		)
		if err := rows.Scan(&mid, &mc.Name, &mc.Bodies); err != nil {
			return result, wrap("scan morgue count", err)
		}
		mc.Morgue = id.MorgueID(mid)
		result.Morgues = append(result.Morgues, mc)
	}
	if err := rows.Err(); err != nil {
		return result, wrap("count bodies by morgue", err)
	}
	err = q.ex(ctx).QueryRowContext(ctx, `SELECT count(*) FROM body WHERE morgue_id IS NULL`).Scan(&result.Unassigned)
	return result, wrap("count unassigned bodies", err)
}

func (q queries) CountBodiesByRequest(ctx context.Context) ([]reportmodels.RequestCount, error) {
	rows, err := q.ex(ctx).QueryContext(ctx,
		`SELECT r.id, r.marker, r.bodies_found, r.bodies_recovered, count(b.id)
		 FROM recovery_request r LEFT JOIN body b ON b.recovery_request_id = r.id
		 GROUP BY r.id
		 ORDER BY r.date_found DESC, r.id::text DESC`)
	if err != nil {
		return nil, wrap("count bodies by request", err)
	}
	defer rows.Close()
	out := []reportmodels.RequestCount{}
	for rows.Next() {
		var (
			rc  reportmodels.RequestCount
			rid uuid.UUID
		)
		if err := rows.Scan(&rid, &rc.Marker, &rc.BodiesFound, &rc.BodiesRecovered, &rc.Bodies); err != nil {
			return nil, wrap("scan request count", err)
		}
		rc.Request = id.RecoveryRequestID(rid)
		out = append(out, rc)
	}
	return out, wrap("count bodies by request", rows.Err())
}

// IdentificationDistribution takes the highest status among live claims
// per body; bodies without one count as unidentified.
func (q queries) IdentificationDistribution(ctx context.Context) (reportmodels.Distribution, error) {
	var d reportmodels.Distribution
	rows, err := q.ex(ctx).QueryContext(ctx,
		`SELECT c.effective, count(*)
		 FROM body b LEFT JOIN (
		     SELECT body_id, max(status) AS effective
		     FROM identification_claim WHERE revoked_at IS NULL
		     GROUP BY body_id
		 ) c ON c.body_id = b.id
		 GROUP BY c.effective`)
	if err != nil {
		return d, wrap("identification distribution", err)
	}
	defer rows.Close()
	for rows.Next() {
		var (
			code sql.NullInt64
			n    int
		)
		if err := rows.Scan(&code, &n); err != nil {
			return d, wrap("scan distribution", err)
		}
		status := idmodels.StatusUnidentified
		if code.Valid {
			if status, err = idmodels.StatusFromCode(int(code.Int64)); err != nil {
				return d, err
			}
		}
		switch status {
		case idmodels.StatusConfirmed:
			d.Confirmed += n
		case idmodels.StatusPreliminary:
			d.Preliminary += n
		default:
			d.Unidentified += n
		}
	}
	return d, wrap("identification distribution", rows.Err())
}
