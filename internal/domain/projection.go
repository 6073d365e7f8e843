package domain

import (
	"time"

	"github.com/google/uuid"
)

// StoryProjection is the denormalized read model consulted by the
// Readiness Evaluator (C5); it is converged from DomainEvents by the
// projection worker (C4) and never written directly by request handlers.
type StoryProjection struct {
	StoryID             uuid.UUID             `json:"story_id"`
	OrganizationID      *uuid.UUID            `json:"organization_id,omitempty"`
	Title               string                `json:"title"`
	Description         string                `json:"description"`
	Status              StoryStatus           `json:"status"`
	StoryPoints         *int                  `json:"story_points,omitempty"`
	AcceptanceCriteria  []AcceptanceCriterion `json:"acceptance_criteria"`
	TaskACRefs          [][]string            `json:"task_ac_refs"`
	TaskCount           int                   `json:"task_count"`
	UpdatedAt           time.Time             `json:"updated_at"`
}

// TaskProjection is the denormalized read model consulted by the Task
// Analyzer (C6).
type TaskProjection struct {
	TaskID                 uuid.UUID  `json:"task_id"`
	StoryID                uuid.UUID  `json:"story_id"`
	OrganizationID         *uuid.UUID `json:"organization_id,omitempty"`
	Title                  string     `json:"title"`
	Description            string     `json:"description"`
	AcceptanceCriteriaRefs []string   `json:"acceptance_criteria_refs"`
	EstimatedHours         *int       `json:"estimated_hours,omitempty"`
	Status                 TaskStatus `json:"status"`
	UpdatedAt              time.Time  `json:"updated_at"`
}
