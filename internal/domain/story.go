package domain

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// StoryStatus represents a story's position in its delivery lifecycle.
type StoryStatus string

const (
	StoryDraft             StoryStatus = "draft"
	StoryNeedsRefinement   StoryStatus = "needs_refinement"
	StoryReady             StoryStatus = "ready"
	StoryCommitted         StoryStatus = "committed"
	StoryInProgress        StoryStatus = "in_progress"
	StoryTasksComplete     StoryStatus = "tasks_complete"
	StoryDeployed          StoryStatus = "deployed"
	StoryAwaitingAcceptance StoryStatus = "awaiting_acceptance"
	StoryAccepted          StoryStatus = "accepted"
)

// StoryTransitions defines the allowed forward graph plus the three-way
// backward edges between Draft, NeedsRefinement and Ready.
var StoryTransitions = map[StoryStatus][]StoryStatus{
	StoryDraft:              {StoryNeedsRefinement, StoryReady},
	StoryNeedsRefinement:    {StoryDraft, StoryReady},
	StoryReady:              {StoryDraft, StoryNeedsRefinement, StoryCommitted},
	StoryCommitted:          {StoryInProgress},
	StoryInProgress:         {StoryTasksComplete},
	StoryTasksComplete:      {StoryDeployed},
	StoryDeployed:           {StoryAwaitingAcceptance},
	StoryAwaitingAcceptance: {StoryAccepted},
	StoryAccepted:           {},
}

// IsValid reports whether s is one of the known story statuses.
func (s StoryStatus) IsValid() bool {
	_, ok := StoryTransitions[s]
	return ok
}

// CanTransition reports whether moving from s to target is permitted.
func (s StoryStatus) CanTransition(target StoryStatus) bool {
	for _, allowed := range StoryTransitions[s] {
		if allowed == target {
			return true
		}
	}
	return false
}

// IsTerminal reports whether s has no further outgoing transitions.
func (s StoryStatus) IsTerminal() bool {
	return s == StoryAccepted
}

// Story is a unit of work tracked against a tenant's backlog.
type Story struct {
	ID               uuid.UUID  `json:"id"`
	ProjectID        uuid.UUID  `json:"project_id"`
	OrganizationID   *uuid.UUID `json:"organization_id,omitempty"`
	Title            string     `json:"title"`
	Description      string     `json:"description,omitempty"`
	Status           StoryStatus `json:"status"`
	Labels           []string   `json:"labels,omitempty"`
	StoryPoints      *int       `json:"story_points,omitempty"`
	SprintID         *uuid.UUID `json:"sprint_id,omitempty"`
	AssignedToUserID *uuid.UUID `json:"assigned_to_user_id,omitempty"`
	ReadinessOverride *bool     `json:"readiness_override,omitempty"`
	CreatedAt        time.Time  `json:"created_at"`
	UpdatedAt        time.Time  `json:"updated_at"`
	DeletedAt        *time.Time `json:"deleted_at,omitempty"`
}

// Validate enforces the title and status invariants from the data model.
func (s *Story) Validate() error {
	trimmed := strings.TrimSpace(s.Title)
	if trimmed == "" {
		return errTitleEmpty
	}
	if len(s.Title) > 255 {
		return errTitleTooLong
	}
	if !s.Status.IsValid() {
		return errInvalidStatus
	}
	if s.StoryPoints != nil && (*s.StoryPoints < 1 || *s.StoryPoints > 8) {
		return errStoryPointsRange
	}
	return nil
}

// IsDeleted reports whether the story has been soft-deleted.
func (s *Story) IsDeleted() bool { return s.DeletedAt != nil }

// SameTenant reports whether this story's organization matches org,
// treating a nil organization (personal context) as only matching nil.
func (s *Story) SameTenant(org *uuid.UUID) bool {
	if s.OrganizationID == nil && org == nil {
		return true
	}
	if s.OrganizationID == nil || org == nil {
		return false
	}
	return *s.OrganizationID == *org
}
