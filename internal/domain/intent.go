package domain

import (
	"time"

	"github.com/google/uuid"
)

// IntentType is the closed set of things an utterance can be interpreted
// as. It is broader than ActionType because it must also represent
// read-only queries and utterances that could not be classified.
type IntentType string

const (
	IntentUpdateStatus     IntentType = "UpdateStatus"
	IntentAssignTask       IntentType = "AssignTask"
	IntentTakeOwnership    IntentType = "TakeOwnership"
	IntentReleaseOwnership IntentType = "ReleaseOwnership"
	IntentStartWork        IntentType = "StartWork"
	IntentCompleteTask     IntentType = "CompleteTask"
	IntentCreateItem       IntentType = "CreateItem"
	IntentUpdatePriority   IntentType = "UpdatePriority"
	IntentMoveToSprint     IntentType = "MoveToSprint"
	IntentArchive          IntentType = "Archive"
	IntentAddComment       IntentType = "AddComment"
	IntentQueryStatus      IntentType = "QueryStatus"
	IntentSearchItems      IntentType = "SearchItems"
	IntentGenerateReport   IntentType = "GenerateReport"
	IntentUnknown          IntentType = "Unknown"
)

// actionableIntents maps the subset of IntentType that can become an
// ActionCommand to its ActionType. Read-only/unknown intents are absent.
var actionableIntents = map[IntentType]ActionType{
	IntentUpdateStatus:     ActionUpdateStatus,
	IntentAssignTask:       ActionAssignUser,
	IntentTakeOwnership:    ActionTakeOwnership,
	IntentReleaseOwnership: ActionReleaseOwnership,
	IntentStartWork:        ActionStartWork,
	IntentCompleteTask:     ActionCompleteTask,
	IntentCreateItem:       ActionCreateTask,
	IntentUpdatePriority:   ActionUpdatePriority,
	IntentMoveToSprint:     ActionMoveToSprint,
	IntentArchive:          ActionArchive,
	IntentAddComment:       ActionAddComment,
}

// ToActionType reports whether intent is actionable and, if so, the
// ActionType it maps to.
func (i IntentType) ToActionType() (ActionType, bool) {
	a, ok := actionableIntents[i]
	return a, ok
}

// wellKnownIntents feed the +0.1 service-confidence bonus.
var wellKnownIntents = map[IntentType]bool{
	IntentUpdateStatus:  true,
	IntentTakeOwnership: true,
	IntentCompleteTask:  true,
	IntentQueryStatus:   true,
}

// IsWellKnown reports whether i is common enough to earn the familiarity
// bonus in the service-confidence formula.
func (i IntentType) IsWellKnown() bool { return wellKnownIntents[i] }

// RequiresConfirmation implements the Interpret pipeline's IntentType-keyed
// confirmation gate (distinct from the Action Validator's ActionType-keyed
// gate in action.go): Archive, CreateItem and MoveToSprint always require
// confirmation; UpdateStatus and AssignTask require it only when the
// utterance touches more than three entities.
func (i IntentType) RequiresConfirmation(entityCount int) bool {
	switch i {
	case IntentArchive, IntentCreateItem, IntentMoveToSprint:
		return true
	case IntentUpdateStatus, IntentAssignTask:
		return entityCount > 3
	default:
		return false
	}
}

// ParsedEntity is one entity reference extracted from an utterance, with
// the role it plays in the parsed intent (e.g. "target", "assignee").
type ParsedEntity struct {
	EntityID   uuid.UUID `json:"entity_id"`
	EntityType string    `json:"entity_type"`
	Role       string    `json:"role"`
}

// ParsedIntent is the structured result of the Interpret pipeline before
// it is recorded and optionally turned into an ActionCommand.
type ParsedIntent struct {
	IntentType IntentType     `json:"intent_type"`
	Entities   []ParsedEntity `json:"entities"`
	Parameters map[string]any `json:"parameters"`
}

// IntentRecord is the audit trail of one interpret() invocation.
type IntentRecord struct {
	ID                uuid.UUID      `json:"id"`
	TenantID          *uuid.UUID     `json:"tenant_id,omitempty"`
	UserID            uuid.UUID      `json:"user_id"`
	Utterance         string         `json:"utterance"`
	ParsedIntent      ParsedIntent   `json:"parsed_intent"`
	LLMConfidence     float64        `json:"llm_confidence"`
	ServiceConfidence float64        `json:"service_confidence"`
	CandidateIDs      []uuid.UUID    `json:"candidate_ids"`
	CreatedAt         time.Time      `json:"created_at"`
}

// CandidateEntity is a tenant-scoped entity surfaced by vector search to
// ground intent parsing. Every use site must filter to the requester's
// tenant before trusting it.
type CandidateEntity struct {
	ID              uuid.UUID  `json:"id"`
	TenantID        *uuid.UUID `json:"tenant_id,omitempty"`
	EntityType      string     `json:"entity_type"`
	Title           string     `json:"title"`
	Description     string     `json:"description,omitempty"`
	Status          string     `json:"status,omitempty"`
	SimilarityScore float64    `json:"similarity_score"`
}

// SameTenant mirrors Story/Task.SameTenant.
func (c *CandidateEntity) SameTenant(org *uuid.UUID) bool {
	if c.TenantID == nil && org == nil {
		return true
	}
	if c.TenantID == nil || org == nil {
		return false
	}
	return *c.TenantID == *org
}

// AuditLogEntry records every action attempt, succeed or fail.
type AuditLogEntry struct {
	ID             uuid.UUID      `json:"id"`
	TenantID       *uuid.UUID     `json:"tenant_id,omitempty"`
	UserID         uuid.UUID      `json:"user_id"`
	ActionType     ActionType     `json:"action_type"`
	TargetEntities []uuid.UUID    `json:"target_entities"`
	Parameters     map[string]any `json:"parameters"`
	Success        bool           `json:"success"`
	ErrorMessage   string         `json:"error_message,omitempty"`
	Duration       time.Duration  `json:"duration"`
	RollbackToken  *uuid.UUID     `json:"rollback_token,omitempty"`
	CreatedAt      time.Time      `json:"created_at"`
}
