package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/jaxxstorm/landlord/internal/domain"
)

// CreateTaskRequest is the camelCase request body for POST /tasks.
type CreateTaskRequest struct {
	StoryID                uuid.UUID `json:"storyId"`
	Title                  string    `json:"title"`
	Description            string    `json:"description,omitempty"`
	AcceptanceCriteriaRefs []string  `json:"acceptanceCriteriaRefs,omitempty"`
	EstimatedHours         *int      `json:"estimatedHours,omitempty"`
}

// UpdateTaskRequest is the camelCase request body for PUT /tasks/{id}. It
// covers the plain field edits; ownership and status transitions go
// through the Act pipeline (POST /act) rather than this endpoint so every
// mutation that needs the atomic-claim or audit-log guarantees goes
// through one code path.
type UpdateTaskRequest struct {
	Title                  *string  `json:"title,omitempty"`
	Description            *string  `json:"description,omitempty"`
	AcceptanceCriteriaRefs []string `json:"acceptanceCriteriaRefs,omitempty"`
	EstimatedHours         *int     `json:"estimatedHours,omitempty"`
}

// TaskResponse is the camelCase read model for a Task.
type TaskResponse struct {
	ID                     uuid.UUID         `json:"id"`
	StoryID                uuid.UUID         `json:"storyId"`
	OrganizationID         *uuid.UUID        `json:"organizationId,omitempty"`
	Title                  string            `json:"title"`
	Description            string            `json:"description,omitempty"`
	AcceptanceCriteriaRefs []string          `json:"acceptanceCriteriaRefs,omitempty"`
	Status                 domain.TaskStatus `json:"status"`
	OwnerUserID            *uuid.UUID        `json:"ownerUserId,omitempty"`
	EstimatedHours         *int              `json:"estimatedHours,omitempty"`
	CreatedAt              time.Time         `json:"createdAt"`
	UpdatedAt              time.Time         `json:"updatedAt"`
	OwnedAt                *time.Time        `json:"ownedAt,omitempty"`
	CompletedAt            *time.Time        `json:"completedAt,omitempty"`
}

// NewTaskResponse converts a domain.Task into its API representation.
func NewTaskResponse(t *domain.Task) TaskResponse {
	return TaskResponse{
		ID:                     t.ID,
		StoryID:                t.StoryID,
		OrganizationID:         t.OrganizationID,
		Title:                  t.Title,
		Description:            t.Description,
		AcceptanceCriteriaRefs: t.AcceptanceCriteriaRefs,
		Status:                 t.Status,
		OwnerUserID:            t.OwnerUserID,
		EstimatedHours:         t.EstimatedHours,
		CreatedAt:              t.CreatedAt,
		UpdatedAt:              t.UpdatedAt,
		OwnedAt:                t.OwnedAt,
		CompletedAt:            t.CompletedAt,
	}
}

// NewTaskResponses converts a slice of tasks in one pass.
func NewTaskResponses(tasks []*domain.Task) []TaskResponse {
	out := make([]TaskResponse, 0, len(tasks))
	for _, t := range tasks {
		out = append(out, NewTaskResponse(t))
	}
	return out
}
