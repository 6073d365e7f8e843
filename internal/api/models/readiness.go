package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/jaxxstorm/landlord/internal/readiness"
)

// MissingItem is the camelCase form of readiness.MissingItem.
type MissingItem struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// ReadinessResponse is the camelCase read model for a readiness
// evaluation, returned by GET /v1/stories/{id}/readiness.
type ReadinessResponse struct {
	ID           uuid.UUID     `json:"id"`
	StoryID      uuid.UUID     `json:"storyId"`
	Score        int           `json:"score"`
	IsReady      bool          `json:"isReady"`
	MissingItems []MissingItem `json:"missingItems"`
	EvaluatedAt  time.Time     `json:"evaluatedAt"`
}

// NewReadinessResponse converts a readiness.Evaluation.
func NewReadinessResponse(e readiness.Evaluation) ReadinessResponse {
	items := make([]MissingItem, 0, len(e.MissingItems))
	for _, m := range e.MissingItems {
		items = append(items, MissingItem{Code: m.Code, Message: m.Message})
	}
	return ReadinessResponse{
		ID:           e.ID,
		StoryID:      e.StoryID,
		Score:        e.Score,
		IsReady:      e.IsReady,
		MissingItems: items,
		EvaluatedAt:  e.EvaluatedAt,
	}
}
