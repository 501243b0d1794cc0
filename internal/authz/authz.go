// Package authz is the authorization oracle consulted by every mutating
// command. The policy is role based; resources are passed through so a
// finer-grained oracle can be swapped in behind the same interface.
package authz

import (
	"context"
	"log/slog"

	dErrors "dvi/pkg/domain-errors"
	"dvi/pkg/requestcontext"
)

type Action string

const (
	ActionRecoveryCreate   Action = "recovery:create"
	ActionRecoveryUpdate   Action = "recovery:update"
	ActionMorgueManage     Action = "morgue:manage"
	ActionBodyCreate       Action = "body:create"
	ActionBodyUpdate       Action = "body:update"
	ActionBodyDelete       Action = "body:delete"
	ActionChecklistUpdate  Action = "checklist:update"
	ActionEffectsUpdate    Action = "effects:update"
	ActionClaimOpen        Action = "claim:open"
	ActionClaimAdvance     Action = "claim:advance"
	ActionClaimRevoke      Action = "claim:revoke"
	ActionClaimDelete      Action = "claim:delete"
	ActionOverrideEvidence Action = "claim:override_evidence"
)

const (
	RoleAdmin            = "admin"
	RoleDVIManager       = "dvi_manager"
	RoleForensicExaminer = "forensic_examiner"
	RoleRecoveryTeam     = "recovery_team"
	RoleViewer           = "viewer"
)

// Resource names the kind and id of the record an action targets.
type Resource struct {
	Kind string
	ID   string
}

//go:generate mockgen -source=authz.go -destination=mocks/mocks.go -package=mocks Authorizer

// Authorizer answers may(principal, action, resource).
type Authorizer interface {
	May(ctx context.Context, principal requestcontext.PrincipalInfo, action Action, resource Resource) bool
}

var allActions = []Action{
	ActionRecoveryCreate, ActionRecoveryUpdate, ActionMorgueManage,
	ActionBodyCreate, ActionBodyUpdate, ActionBodyDelete,
	ActionChecklistUpdate, ActionEffectsUpdate,
	ActionClaimOpen, ActionClaimAdvance, ActionClaimRevoke, ActionClaimDelete,
	ActionOverrideEvidence,
}

// DefaultGrants is the stock role table.
func DefaultGrants() map[string][]Action {
	manager := make([]Action, 0, len(allActions))
	for _, a := range allActions {
		if a == ActionBodyDelete || a == ActionOverrideEvidence {
			continue
		}
		manager = append(manager, a)
	}
	return map[string][]Action{
		RoleAdmin:      allActions,
		RoleDVIManager: manager,
		RoleForensicExaminer: {
			ActionChecklistUpdate, ActionEffectsUpdate,
			ActionClaimOpen, ActionClaimAdvance,
		},
		RoleRecoveryTeam: {
			ActionRecoveryCreate, ActionRecoveryUpdate,
			ActionBodyCreate, ActionBodyUpdate,
		},
		RoleViewer: {},
	}
}

// RolePolicy grants actions by role membership.
type RolePolicy struct {
	grants map[string]map[Action]struct{}
	logger *slog.Logger
}

type Option func(*RolePolicy)

func WithLogger(logger *slog.Logger) Option {
	return func(p *RolePolicy) { p.logger = logger }
}

func NewRolePolicy(grants map[string][]Action, opts ...Option) *RolePolicy {
	p := &RolePolicy{grants: make(map[string]map[Action]struct{}, len(grants))}
	for role, actions := range grants {
		set := make(map[Action]struct{}, len(actions))
		for _, a := range actions {
			set[a] = struct{}{}
		}
		p.grants[role] = set
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

func (p *RolePolicy) May(ctx context.Context, principal requestcontext.PrincipalInfo, action Action, resource Resource) bool {
	if principal.IsZero() {
		return false
	}
	for _, role := range principal.Roles {
		if _, ok := p.grants[role][action]; ok {
			return true
		}
	}
	if p.logger != nil {
		p.logger.WarnContext(ctx, "authorization denied",
			"principal", principal.Subject,
			"action", string(action),
			"resource_kind", resource.Kind,
			"resource_id", resource.ID,
			"request_id", requestcontext.RequestID(ctx),
		)
	}
	return false
}

// Require checks the principal in ctx and returns a coded error when the
// action is not allowed. Call it before reading the target record.
func Require(ctx context.Context, az Authorizer, action Action, resource Resource) error {
	principal := requestcontext.Principal(ctx)
	if principal.IsZero() {
		return dErrors.New(dErrors.CodeUnauthorized, "authentication required")
	}
	if az == nil || !az.May(ctx, principal, action, resource) {
		return dErrors.New(dErrors.CodeForbidden, "not permitted to "+string(action)+" on "+resource.Kind)
	}
	return nil
}
