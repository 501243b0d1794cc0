// Package storage defines the unit of work over the DVI tables.
//
// Every command runs inside Store.RunInTx. Lock* methods take a row-level
// exclusive lock (postgres) or rely on the store-wide writer lock (memory),
// so commands on one body are linearizable. Implementations return
// pkg/platform/sentinel errors; services translate them with Translate.
package storage

import (
	"context"

	"dvi/internal/audit"
	bodymodels "dvi/internal/body/models"
	idmodels "dvi/internal/identification/models"
	morguemodels "dvi/internal/morgue/models"
	recoverymodels "dvi/internal/recovery/models"
	reportmodels "dvi/internal/reports/models"
	id "dvi/pkg/domain"
)

// Reader holds every query. Results are copies owned by the caller.
type Reader interface {
	GetRecoveryRequest(ctx context.Context, reqID id.RecoveryRequestID) (*recoverymodels.RecoveryRequest, error)
	ListRecoveryRequests(ctx context.Context, f recoverymodels.Filter) ([]*recoverymodels.RecoveryRequest, error)

	GetMorgue(ctx context.Context, morgueID id.MorgueID) (*morguemodels.Morgue, error)
	ListMorgues(ctx context.Context, includeRetired bool) ([]*morguemodels.Morgue, error)

	GetBody(ctx context.Context, bodyID id.BodyID) (*bodymodels.Body, error)
	FindBodyByLabel(ctx context.Context, label string) (*bodymodels.Body, error)
	// SearchBodies returns one page in label order plus the total match count.
	SearchBodies(ctx context.Context, q bodymodels.SearchQuery) ([]*bodymodels.Body, int, error)
	GetChecklist(ctx context.Context, bodyID id.BodyID) (*bodymodels.Checklist, error)
	GetEffects(ctx context.Context, bodyID id.BodyID) (*bodymodels.PersonalEffects, error)

	GetClaim(ctx context.Context, claimID id.ClaimID) (*idmodels.Claim, error)
	ListClaimsForBody(ctx context.Context, bodyID id.BodyID) ([]*idmodels.Claim, error)
	ListClaimsByIdentity(ctx context.Context, identity id.PersonRef) ([]*idmodels.Claim, error)

	CountBodiesByMorgue(ctx context.Context) (reportmodels.MorgueCounts, error)
	CountBodiesByRequest(ctx context.Context) ([]reportmodels.RequestCount, error)
	IdentificationDistribution(ctx context.Context) (reportmodels.Distribution, error)
}

// Tx is a unit of work. Writes become visible only if the RunInTx callback
// returns nil.
type Tx interface {
	Reader
	audit.Appender

	InsertRecoveryRequest(ctx context.Context, r *recoverymodels.RecoveryRequest) error
	LockRecoveryRequest(ctx context.Context, reqID id.RecoveryRequestID) (*recoverymodels.RecoveryRequest, error)
	UpdateRecoveryRequest(ctx context.Context, r *recoverymodels.RecoveryRequest) error

	InsertMorgue(ctx context.Context, m *morguemodels.Morgue) error
	LockMorgue(ctx context.Context, morgueID id.MorgueID) (*morguemodels.Morgue, error)
	UpdateMorgue(ctx context.Context, m *morguemodels.Morgue) error
	DeleteMorgue(ctx context.Context, morgueID id.MorgueID) error
	CountBodiesInMorgue(ctx context.Context, morgueID id.MorgueID) (int, error)

	InsertBody(ctx context.Context, b *bodymodels.Body) error
	LockBody(ctx context.Context, bodyID id.BodyID) (*bodymodels.Body, error)
	UpdateBody(ctx context.Context, b *bodymodels.Body) error
	// DeleteBody removes the body with its checklist and effects.
	DeleteBody(ctx context.Context, bodyID id.BodyID) error
	InsertChecklist(ctx context.Context, c *bodymodels.Checklist) error
	UpdateChecklist(ctx context.Context, c *bodymodels.Checklist) error
	UpsertEffects(ctx context.Context, e *bodymodels.PersonalEffects) error
	DeleteEffects(ctx context.Context, bodyID id.BodyID) error

	InsertClaim(ctx context.Context, c *idmodels.Claim) error
	UpdateClaim(ctx context.Context, c *idmodels.Claim) error
	DeleteClaim(ctx context.Context, claimID id.ClaimID) error
}

// Store is the entry point held by services.
type Store interface {
	Reader
	RunInTx(ctx context.Context, fn func(ctx context.Context, tx Tx) error) error
	Ping(ctx context.Context) error
}
