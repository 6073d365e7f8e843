package models

import (
	"github.com/jaxxstorm/landlord/internal/interpret"
)

// InterpretRequest is the camelCase request body for POST /v1/interpret.
type InterpretRequest struct {
	Utterance   string   `json:"utterance"`
	Limit       int      `json:"limit,omitempty"`
	EntityTypes []string `json:"entityTypes,omitempty"`
	DisableLLM  bool     `json:"disableLlm,omitempty"`
}

// ParsedEntityResponse is the camelCase form of domain.ParsedEntity.
type ParsedEntityResponse struct {
	EntityID   string `json:"entityId"`
	EntityType string `json:"entityType"`
	Role       string `json:"role"`
}

// ParsedIntentResponse is the camelCase form of domain.ParsedIntent.
type ParsedIntentResponse struct {
	IntentType string                 `json:"intentType"`
	Entities   []ParsedEntityResponse `json:"entities"`
	Parameters map[string]any         `json:"parameters,omitempty"`
}

// CandidateEntityResponse is the camelCase form of domain.CandidateEntity.
type CandidateEntityResponse struct {
	ID              string  `json:"id"`
	EntityType      string  `json:"entityType"`
	Title           string  `json:"title"`
	Description     string  `json:"description,omitempty"`
	Status          string  `json:"status,omitempty"`
	SimilarityScore float64 `json:"similarityScore"`
}

// InterpretResponse is the camelCase response body for POST /v1/interpret.
type InterpretResponse struct {
	Intent                ParsedIntentResponse       `json:"intent"`
	Candidates             []CandidateEntityResponse `json:"candidates"`
	LLMConfidence          float64                   `json:"llmConfidence"`
	ServiceConfidence      float64                   `json:"serviceConfidence"`
	RequiresConfirmation   bool                      `json:"requiresConfirmation"`
	UsedHeuristicFallback  bool                      `json:"usedHeuristicFallback"`
}

// NewInterpretResponse converts an interpret.Result into its API shape.
func NewInterpretResponse(res interpret.Result) InterpretResponse {
	entities := make([]ParsedEntityResponse, 0, len(res.Intent.Entities))
	for _, e := range res.Intent.Entities {
		entities = append(entities, ParsedEntityResponse{
			EntityID:   e.EntityID.String(),
			EntityType: e.EntityType,
			Role:       e.Role,
		})
	}

	candidates := make([]CandidateEntityResponse, 0, len(res.Candidates))
	for _, c := range res.Candidates {
		candidates = append(candidates, CandidateEntityResponse{
			ID:              c.ID.String(),
			EntityType:      c.EntityType,
			Title:           c.Title,
			Description:     c.Description,
			Status:          c.Status,
			SimilarityScore: c.SimilarityScore,
		})
	}

	return InterpretResponse{
		Intent: ParsedIntentResponse{
			IntentType: string(res.Intent.IntentType),
			Entities:   entities,
			Parameters: res.Intent.Parameters,
		},
		Candidates:            candidates,
		LLMConfidence:         res.LLMConfidence,
		ServiceConfidence:     res.ServiceConfidence,
		RequiresConfirmation:  res.RequiresConfirmation,
		UsedHeuristicFallback: res.UsedHeuristicFallback,
	}
}
