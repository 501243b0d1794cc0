package postgres

import (
	"context"
	"database/sql"

	"github.com/google/uuid"

	idmodels "dvi/internal/identification/models"
	id "dvi/pkg/domain"
)

const claimColumns = `id, body_id, claimed_identity, identified_by, method, status, comment,
	created_at, updated_at, confirmed_at, revoked_at, revoked_by, revoke_reason`

func scanClaim(row scanner) (*idmodels.Claim, error) {
	var (
		c                                 idmodels.Claim
		cid, bid                          uuid.UUID
		identity, identifiedBy, revokedBy string
		method, status                    int
		confirmed, revoked                sql.NullTime
	)
	if err := row.Scan(&cid, &bid, &identity, &identifiedBy, &method, &status, &c.Comment,
		&c.CreatedAt, &c.UpdatedAt, &confirmed, &revoked, &revokedBy, &c.RevokeReason); err != nil {
		return nil, err
	}
	var err error
	if c.Method, err = idmodels.MethodFromCode(method); err != nil {
		return nil, err
	}
	if c.Status, err = idmodels.StatusFromCode(status); err != nil {
		return nil, err
	}
	c.ID = id.ClaimID(cid)
	c.Body = id.BodyID(bid)
	c.ClaimedIdentity = id.PersonRef(identity)
	c.IdentifiedBy = id.PersonRef(identifiedBy)
	c.RevokedBy = id.PersonRef(revokedBy)
	c.ConfirmedAt = utcPtr(confirmed)
	c.RevokedAt = utcPtr(revoked)
	c.CreatedAt = c.CreatedAt.UTC()
	c.UpdatedAt = c.UpdatedAt.UTC()
	return &c, nil
}

func (q queries) GetClaim(ctx context.Context, claimID id.ClaimID) (*idmodels.Claim, error) {
	row := q.ex(ctx).QueryRowContext(ctx, `SELECT `+claimColumns+` FROM identification_claim WHERE id = $1`, uuid.UUID(claimID))
	c, err := scanClaim(row)
	if err != nil {
		return nil, wrap("get claim", err)
	}
	return c, nil
}

func (q queries) listClaims(ctx context.Context, where string, arg any) ([]*idmodels.Claim, error) {
	rows, err := q.ex(ctx).QueryContext(ctx,
		`SELECT `+claimColumns+` FROM identification_claim WHERE `+where+` ORDER BY created_at, id::text`, arg)
	if err != nil {
		return nil, wrap("list claims", err)
	}
	defer rows.Close()
	var out []*idmodels.Claim
	for rows.Next() {
		c, err := scanClaim(rows)
		if err != nil {
			return nil, wrap("scan claim", err)
		}
		out = append(out, c)
	}
	return out, wrap("list claims", rows.Err())
}

func (q queries) ListClaimsForBody(ctx context.Context, bodyID id.BodyID) ([]*idmodels.Claim, error) {
	return q.listClaims(ctx, "body_id = $1", uuid.UUID(bodyID))
}

func (q queries) ListClaimsByIdentity(ctx context.Context, identity id.PersonRef) ([]*idmodels.Claim, error) {
	return q.listClaims(ctx, "claimed_identity = $1", string(identity))
}

func (t *pgTx) InsertClaim(ctx context.Context, c *idmodels.Claim) error {
	_, err := t.ex(ctx).ExecContext(ctx,
		`INSERT INTO identification_claim (`+claimColumns+`)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`,
		uuid.UUID(c.ID), uuid.UUID(c.Body), string(c.ClaimedIdentity), string(c.IdentifiedBy),
		c.Method.Code(), c.Status.Code(), c.Comment, c.CreatedAt, c.UpdatedAt,
		nullTime(c.ConfirmedAt), nullTime(c.RevokedAt), string(c.RevokedBy), c.RevokeReason)
	return wrap("insert claim", err)
}

func (t *pgTx) UpdateClaim(ctx context.Context, c *idmodels.Claim) error {
	res, err := t.ex(ctx).ExecContext(ctx,
		`UPDATE identification_claim SET method = $2, status = $3, comment = $4, updated_at = $5,
		 confirmed_at = $6, revoked_at = $7, revoked_by = $8, revoke_reason = $9
		 WHERE id = $1`,
		uuid.UUID(c.ID), c.Method.Code(), c.Status.Code(), c.Comment, c.UpdatedAt,
		nullTime(c.ConfirmedAt), nullTime(c.RevokedAt), string(c.RevokedBy), c.RevokeReason)
	return expectOne(res, err, "update claim")
}

func (t *pgTx) DeleteClaim(ctx context.Context, claimID id.ClaimID) error {
	res, err := t.ex(ctx).ExecContext(ctx, `DELETE FROM identification_claim WHERE id = $1`, uuid.UUID(claimID))
	return expectOne(res, err, "delete claim")
}
