package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/jaxxstorm/landlord/internal/domain"
)

// CreateAcceptanceCriterionRequest is the camelCase request body for
// POST /stories/{id}/acceptance-criteria.
type CreateAcceptanceCriterionRequest struct {
	ACID  string `json:"acId"`
	Given string `json:"given"`
	When  string `json:"when"`
	Then  string `json:"then"`
}

// AcceptanceCriterionResponse is the camelCase read model for an
// AcceptanceCriterion.
type AcceptanceCriterionResponse struct {
	ID        uuid.UUID `json:"id"`
	StoryID   uuid.UUID `json:"storyId"`
	ACID      string    `json:"acId"`
	Given     string    `json:"given"`
	When      string    `json:"when"`
	Then      string    `json:"then"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// NewAcceptanceCriterionResponse converts a domain.AcceptanceCriterion.
func NewAcceptanceCriterionResponse(a *domain.AcceptanceCriterion) AcceptanceCriterionResponse {
	return AcceptanceCriterionResponse{
		ID:        a.ID,
		StoryID:   a.StoryID,
		ACID:      a.ACID,
		Given:     a.Given,
		When:      a.When,
		Then:      a.Then,
		CreatedAt: a.CreatedAt,
		UpdatedAt: a.UpdatedAt,
	}
}

// NewAcceptanceCriterionResponses converts a slice in one pass.
func NewAcceptanceCriterionResponses(acs []*domain.AcceptanceCriterion) []AcceptanceCriterionResponse {
	out := make([]AcceptanceCriterionResponse, 0, len(acs))
	for _, a := range acs {
		out = append(out, NewAcceptanceCriterionResponse(a))
	}
	return out
}
