package domain

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// TaskStatus represents a task's position in the ownership lifecycle.
type TaskStatus string

const (
	TaskAvailable  TaskStatus = "available"
	TaskOwned      TaskStatus = "owned"
	TaskInProgress TaskStatus = "in_progress"
	TaskCompleted  TaskStatus = "completed"
)

// TaskTransitions is the monotonic forward graph; release is handled
// separately since it is not a forward transition but a reset to Available.
var TaskTransitions = map[TaskStatus][]TaskStatus{
	TaskAvailable:  {TaskOwned},
	TaskOwned:      {TaskInProgress},
	TaskInProgress: {TaskCompleted},
	TaskCompleted:  {},
}

func (s TaskStatus) IsValid() bool {
	_, ok := TaskTransitions[s]
	return ok
}

func (s TaskStatus) CanTransition(target TaskStatus) bool {
	for _, allowed := range TaskTransitions[s] {
		if allowed == target {
			return true
		}
	}
	return false
}

// Task is a unit of executable work belonging to a Story.
type Task struct {
	ID                     uuid.UUID  `json:"id"`
	StoryID                uuid.UUID  `json:"story_id"`
	OrganizationID         *uuid.UUID `json:"organization_id,omitempty"`
	Title                  string     `json:"title"`
	Description            string     `json:"description,omitempty"`
	AcceptanceCriteriaRefs []string   `json:"acceptance_criteria_refs,omitempty"`
	Status                 TaskStatus `json:"status"`
	OwnerUserID            *uuid.UUID `json:"owner_user_id,omitempty"`
	EstimatedHours         *int       `json:"estimated_hours,omitempty"`
	CreatedAt              time.Time  `json:"created_at"`
	UpdatedAt              time.Time  `json:"updated_at"`
	OwnedAt                *time.Time `json:"owned_at,omitempty"`
	CompletedAt            *time.Time `json:"completed_at,omitempty"`
}

// Validate enforces the task invariants from the data model: owner set iff
// status implies ownership, owned_at set iff owner set, completed_at set
// iff completed, and estimate range when present.
func (t *Task) Validate() error {
	if strings.TrimSpace(t.Title) == "" {
		return errTitleEmpty
	}
	if len(t.Title) > 255 {
		return errTitleTooLong
	}
	if !t.Status.IsValid() {
		return errInvalidStatus
	}
	requiresOwner := t.Status == TaskOwned || t.Status == TaskInProgress || t.Status == TaskCompleted
	if requiresOwner != (t.OwnerUserID != nil) {
		return apperrTaskOwnerMismatch
	}
	if (t.OwnerUserID != nil) != (t.OwnedAt != nil) {
		return apperrTaskOwnedAtMismatch
	}
	if (t.Status == TaskCompleted) != (t.CompletedAt != nil) {
		return apperrTaskCompletedAtMismatch
	}
	if t.EstimatedHours != nil && (*t.EstimatedHours < 1 || *t.EstimatedHours > 40) {
		return errEstimateRange
	}
	return nil
}

// SameTenant mirrors Story.SameTenant for tenant-isolation checks.
func (t *Task) SameTenant(org *uuid.UUID) bool {
	if t.OrganizationID == nil && org == nil {
		return true
	}
	if t.OrganizationID == nil || org == nil {
		return false
	}
	return *t.OrganizationID == *org
}

// Release resets a task from Owned or InProgress back to Available,
// clearing owner, estimate and ownership timestamps in one step.
func (t *Task) Release() {
	t.Status = TaskAvailable
	t.OwnerUserID = nil
	t.EstimatedHours = nil
	t.OwnedAt = nil
	t.CompletedAt = nil
}
