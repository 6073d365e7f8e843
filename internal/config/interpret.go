package config

import "fmt"

// InterpretConfig holds Interpret Pipeline tuning parameters.
type InterpretConfig struct {
	LLMEnabled          bool    `mapstructure:"llm_enabled" env:"INTERPRET_LLM_ENABLED" default:"true"`
	CandidateLimit      int     `mapstructure:"candidate_limit" env:"INTERPRET_CANDIDATE_LIMIT" default:"20"`
	SimilarityThreshold float64 `mapstructure:"similarity_threshold" env:"INTERPRET_SIMILARITY_THRESHOLD" default:"0.3"`

	// LLMEndpoint/LLMAPIKey/LLMModel configure the chat-completions style
	// LLM provider (internal/interpret/providers.ChatLLM). LLMEndpoint
	// empty means no LLM provider is registered and every interpret()
	// call falls back straight to the heuristic parser, regardless of
	// LLMEnabled.
	LLMEndpoint string `mapstructure:"llm_endpoint" env:"INTERPRET_LLM_ENDPOINT"`
	LLMAPIKey   string `mapstructure:"llm_api_key" env:"INTERPRET_LLM_API_KEY"`
	LLMModel    string `mapstructure:"llm_model" env:"INTERPRET_LLM_MODEL" default:"gpt-4o-mini"`

	// EmbeddingDim sizes the default hash-embedding provider's vector.
	EmbeddingDim int `mapstructure:"embedding_dim" env:"INTERPRET_EMBEDDING_DIM" default:"64"`
}

// Validate validates interpret pipeline configuration.
func (i *InterpretConfig) Validate() error {
	if i.CandidateLimit <= 0 {
		return fmt.Errorf("candidate limit must be positive")
	}
	if i.SimilarityThreshold < 0 || i.SimilarityThreshold > 1 {
		return fmt.Errorf("similarity threshold must be in [0,1]")
	}
	return nil
}
