package models

import (
	"github.com/google/uuid"

	"github.com/jaxxstorm/landlord/internal/act"
	"github.com/jaxxstorm/landlord/internal/domain"
)

// ActRequest is the camelCase request body for POST /v1/act: a directly
// issued command, bypassing the Interpret pipeline.
type ActRequest struct {
	ActionType     domain.ActionType `json:"actionType"`
	TargetEntities []uuid.UUID       `json:"targetEntities"`
	Parameters     map[string]any    `json:"parameters,omitempty"`
}

// ToCommand converts the request into the domain.ActionCommand the Act
// pipeline dispatches, filling in the risk level and confirmation flag
// from the same rules the Interpret pipeline uses.
func (r ActRequest) ToCommand() domain.ActionCommand {
	risk := domain.EstimateRiskLevel(r.ActionType, len(r.TargetEntities))
	return domain.ActionCommand{
		ActionType:          r.ActionType,
		TargetEntities:      r.TargetEntities,
		Parameters:          r.Parameters,
		RequireConfirmation: domain.ActionRequiresConfirmation(r.ActionType, len(r.TargetEntities)),
		RiskLevel:           risk,
	}
}

// TargetResultResponse is the camelCase form of act.TargetResult.
type TargetResultResponse struct {
	TargetID string `json:"targetId"`
	Success  bool   `json:"success"`
	Error    string `json:"error,omitempty"`
}

// ActResponse is the camelCase response body for POST /v1/act.
type ActResponse struct {
	Success        bool                    `json:"success"`
	PartialSuccess bool                    `json:"partialSuccess"`
	Results        []TargetResultResponse  `json:"results"`
	RollbackToken  string                  `json:"rollbackToken,omitempty"`
}

// NewActResponse converts an act.Result into its API shape.
func NewActResponse(res act.Result) ActResponse {
	results := make([]TargetResultResponse, 0, len(res.Results))
	for _, r := range res.Results {
		results = append(results, TargetResultResponse{
			TargetID: r.TargetID.String(),
			Success:  r.Success,
			Error:    r.Error,
		})
	}
	out := ActResponse{
		Success:        res.Success,
		PartialSuccess: res.PartialSuccess,
		Results:        results,
	}
	if res.RollbackToken != nil {
		out.RollbackToken = res.RollbackToken.String()
	}
	return out
}
