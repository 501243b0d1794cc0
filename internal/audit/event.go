// Package audit records every successful mutation as an append-only event.
//
// Events are written through the unit of work that performs the mutation, so
// an event exists if and only if its change committed. A relay worker drains
// committed events from the outbox to an external producer (Kafka).
package audit

import (
	"time"

	id "dvi/pkg/domain"
)

type Action string

const (
	ActionRecoveryCreated   Action = "recovery_request_created"
	ActionRecoveryAssigned  Action = "recovery_request_assigned"
	ActionRecoveryProgress  Action = "recovery_request_in_progress"
	ActionRecoveryCompleted Action = "recovery_request_completed"
	ActionRecoveryCounted   Action = "recovery_request_counted"

	ActionMorgueCreated Action = "morgue_created"
	ActionMorgueUpdated Action = "morgue_updated"
	ActionMorgueRetired Action = "morgue_retired"
	ActionMorgueDeleted Action = "morgue_deleted"

	ActionBodyCreated      Action = "body_created"
	ActionBodyUpdated      Action = "body_updated"
	ActionBodyRelabeled    Action = "body_relabeled"
	ActionBodyReassigned   Action = "body_reassigned"
	ActionBodyDeleted      Action = "body_deleted"
	ActionChecklistUpdated Action = "checklist_updated"
	ActionEffectsRecorded  Action = "effects_recorded"
	ActionEffectsCleared   Action = "effects_cleared"

	ActionClaimOpened   Action = "claim_opened"
	ActionClaimAdvanced Action = "claim_advanced"
	ActionClaimRevoked  Action = "claim_revoked"
	ActionClaimDeleted  Action = "claim_deleted"
)

// Aggregate kinds name the record an event is about.
const (
	AggregateRecoveryRequest = "recovery_request"
	AggregateMorgue          = "morgue"
	AggregateBody            = "body"
	AggregateClaim           = "claim"
)

// Event is one audited action. Details carries action-specific values such as
// the old and new status; it must be JSON-encodable.
type Event struct {
	ID            id.EventID        `json:"id"`
	Action        Action            `json:"action"`
	AggregateType string            `json:"aggregate_type"`
	AggregateID   string            `json:"aggregate_id"`
	Actor         string            `json:"actor"`
	RequestID     string            `json:"request_id,omitempty"`
	Reason        string            `json:"reason,omitempty"`
	Details       map[string]string `json:"details,omitempty"`
	Timestamp     time.Time         `json:"timestamp"`
}

// OutboxEntry is a committed event awaiting relay.
type OutboxEntry struct {
	Seq   int64
	Event Event
}
