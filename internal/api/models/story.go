package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/jaxxstorm/landlord/internal/domain"
)

// CreateStoryRequest is the camelCase request body for POST /stories.
type CreateStoryRequest struct {
	ProjectID   uuid.UUID `json:"projectId"`
	Title       string    `json:"title"`
	Description string    `json:"description,omitempty"`
	Labels      []string  `json:"labels,omitempty"`
	StoryPoints *int      `json:"storyPoints,omitempty"`
}

// UpdateStoryRequest is the camelCase request body for PUT /stories/{id}.
// Status is validated against domain.StoryTransitions by the caller; a nil
// field leaves the corresponding column unchanged.
type UpdateStoryRequest struct {
	Title       *string            `json:"title,omitempty"`
	Description *string            `json:"description,omitempty"`
	Status      *domain.StoryStatus `json:"status,omitempty"`
	Labels      []string           `json:"labels,omitempty"`
	StoryPoints *int               `json:"storyPoints,omitempty"`
	SprintID    *uuid.UUID         `json:"sprintId,omitempty"`
}

// StoryResponse is the camelCase read model for a Story.
type StoryResponse struct {
	ID               uuid.UUID          `json:"id"`
	ProjectID        uuid.UUID          `json:"projectId"`
	OrganizationID   *uuid.UUID         `json:"organizationId,omitempty"`
	Title            string             `json:"title"`
	Description      string             `json:"description,omitempty"`
	Status           domain.StoryStatus `json:"status"`
	Labels           []string           `json:"labels,omitempty"`
	StoryPoints      *int               `json:"storyPoints,omitempty"`
	SprintID         *uuid.UUID         `json:"sprintId,omitempty"`
	AssignedToUserID *uuid.UUID         `json:"assignedToUserId,omitempty"`
	CreatedAt        time.Time          `json:"createdAt"`
	UpdatedAt        time.Time          `json:"updatedAt"`
}

// NewStoryResponse converts a domain.Story into its API representation.
func NewStoryResponse(s *domain.Story) StoryResponse {
	return StoryResponse{
		ID:               s.ID,
		ProjectID:        s.ProjectID,
		OrganizationID:   s.OrganizationID,
		Title:            s.Title,
		Description:      s.Description,
		Status:           s.Status,
		Labels:           s.Labels,
		StoryPoints:      s.StoryPoints,
		SprintID:         s.SprintID,
		AssignedToUserID: s.AssignedToUserID,
		CreatedAt:        s.CreatedAt,
		UpdatedAt:        s.UpdatedAt,
	}
}

// NewStoryResponses converts a slice of stories in one pass.
func NewStoryResponses(stories []*domain.Story) []StoryResponse {
	out := make([]StoryResponse, 0, len(stories))
	for _, s := range stories {
		out = append(out, NewStoryResponse(s))
	}
	return out
}
