package domain

import "github.com/google/uuid"

// ActionType is the closed set of mutating commands the Act pipeline can
// dispatch. It is intentionally narrower than IntentType: read-only and
// unrecognized intents never become an ActionCommand.
type ActionType string

const (
	ActionUpdateStatus      ActionType = "UpdateStatus"
	ActionAssignUser        ActionType = "AssignUser"
	ActionTakeOwnership     ActionType = "TakeOwnership"
	ActionReleaseOwnership  ActionType = "ReleaseOwnership"
	ActionStartWork         ActionType = "StartWork"
	ActionCompleteTask      ActionType = "CompleteTask"
	ActionCreateTask        ActionType = "CreateTask"
	ActionCreateStory       ActionType = "CreateStory"
	ActionUpdatePriority    ActionType = "UpdatePriority"
	ActionMoveToSprint      ActionType = "MoveToSprint"
	ActionArchive           ActionType = "Archive"
	ActionAddComment        ActionType = "AddComment"
)

// RiskLevel classifies how disruptive an action is, independent of whether
// it ultimately requires interactive confirmation.
type RiskLevel string

const (
	RiskLow    RiskLevel = "Low"
	RiskMedium RiskLevel = "Medium"
	RiskHigh   RiskLevel = "High"
)

// creatingActions are the only action types allowed an empty target set.
var creatingActions = map[ActionType]bool{
	ActionCreateTask:  true,
	ActionCreateStory: true,
}

// AllowsEmptyTargets reports whether a is permitted to carry zero targets.
func (a ActionType) AllowsEmptyTargets() bool { return creatingActions[a] }

// ActionCommand is a validated, typed command produced either directly by
// an API caller or by the Interpret pipeline after confirmation.
type ActionCommand struct {
	ActionType          ActionType             `json:"action_type"`
	TargetEntities      []uuid.UUID            `json:"target_entities"`
	Parameters          map[string]any         `json:"parameters"`
	RequireConfirmation bool                   `json:"require_confirmation"`
	RiskLevel           RiskLevel              `json:"risk_level"`
}

// EstimateRiskLevel implements the risk table from the supplemented
// feature set: Archive and bulk actions (>3 targets) are High; the core
// mutation actions are Medium; everything else is Low.
func EstimateRiskLevel(a ActionType, targetCount int) RiskLevel {
	if a == ActionArchive || targetCount > 3 {
		return RiskHigh
	}
	switch a {
	case ActionUpdateStatus, ActionAssignUser, ActionMoveToSprint, ActionCreateStory, ActionCreateTask:
		return RiskMedium
	default:
		return RiskLow
	}
}

// ActionRequiresConfirmation implements the Action Validator's
// ActionType-keyed confirmation gate, distinct from the Interpret
// pipeline's IntentType-keyed gate in intent.go.
func ActionRequiresConfirmation(a ActionType, targetCount int) bool {
	switch a {
	case ActionArchive:
		return true
	default:
		return targetCount > 3
	}
}
