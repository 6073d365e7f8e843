package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/jaxxstorm/landlord/internal/domain"
)

// UpdateSprintRequest is the camelCase request body for PUT /sprints/{id}.
type UpdateSprintRequest struct {
	Name            *string             `json:"name,omitempty"`
	Status          *domain.SprintStatus `json:"status,omitempty"`
	CapacityPoints  *int                `json:"capacityPoints,omitempty"`
	CommittedPoints *int                `json:"committedPoints,omitempty"`
	StartsAt        *time.Time          `json:"startsAt,omitempty"`
	EndsAt          *time.Time          `json:"endsAt,omitempty"`
}

// SprintResponse is the camelCase read model for a Sprint.
type SprintResponse struct {
	ID              uuid.UUID           `json:"id"`
	OrganizationID  *uuid.UUID          `json:"organizationId,omitempty"`
	Name            string              `json:"name"`
	Status          domain.SprintStatus `json:"status"`
	CapacityPoints  int                 `json:"capacityPoints"`
	CommittedPoints int                 `json:"committedPoints"`
	StartsAt        *time.Time          `json:"startsAt,omitempty"`
	EndsAt          *time.Time          `json:"endsAt,omitempty"`
	CreatedAt       time.Time           `json:"createdAt"`
	UpdatedAt       time.Time           `json:"updatedAt"`
}

// NewSprintResponse converts a domain.Sprint into its API representation.
func NewSprintResponse(s *domain.Sprint) SprintResponse {
	return SprintResponse{
		ID:              s.ID,
		OrganizationID:  s.OrganizationID,
		Name:            s.Name,
		Status:          s.Status,
		CapacityPoints:  s.CapacityPoints,
		CommittedPoints: s.CommittedPoints,
		StartsAt:        s.StartsAt,
		EndsAt:          s.EndsAt,
		CreatedAt:       s.CreatedAt,
		UpdatedAt:       s.UpdatedAt,
	}
}
