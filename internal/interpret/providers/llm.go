package providers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

// responseSchema is the JSON Schema every LLM reply must satisfy before
// ParseLLMResponse is trusted to decode it: an intent_type string, an
// entities array of {entity_id, entity_type, role}, and a parameters
// object. Rejecting a malformed reply here, before it ever reaches the
// hand-rolled decoder, keeps a provider's hallucinated shape (missing
// fields, wrong types, extra garbage) from propagating past this port.
const responseSchemaJSON = `{
	"type": "object",
	"required": ["intent_type", "entities", "parameters"],
	"properties": {
		"intent_type": {"type": "string"},
		"entities": {
			"type": "array",
			"items": {
				"type": "object",
				"required": ["entity_id", "entity_type"],
				"properties": {
					"entity_id": {"type": "string"},
					"entity_type": {"type": "string"},
					"role": {"type": "string"}
				}
			}
		},
		"parameters": {"type": "object"}
	}
}`

var responseSchema = mustCompileSchema(responseSchemaJSON)

func mustCompileSchema(raw string) *jsonschema.Schema {
	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource("interpret-llm-response.json", strings.NewReader(raw)); err != nil {
		panic(fmt.Sprintf("interpret providers: invalid LLM response schema: %v", err))
	}
	schema, err := compiler.Compile("interpret-llm-response.json")
	if err != nil {
		panic(fmt.Sprintf("interpret providers: failed to compile LLM response schema: %v", err))
	}
	return schema
}

// ChatLLM is an interpret.LLM implementation speaking the OpenAI-compatible
// chat completions wire format, usable against OpenAI itself or any
// self-hosted gateway (vLLM, Ollama's compat endpoint, Azure OpenAI) that
// implements the same contract.
type ChatLLM struct {
	Endpoint   string
	APIKey     string
	Model      string
	HTTPClient *http.Client
}

// NewChatLLM builds a ChatLLM. httpClient may be nil, in which case a
// client with a 15s timeout is used.
func NewChatLLM(endpoint, apiKey, model string, httpClient *http.Client) *ChatLLM {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 15 * time.Second}
	}
	return &ChatLLM{Endpoint: endpoint, APIKey: apiKey, Model: model, HTTPClient: httpClient}
}

type chatRequest struct {
	Model          string        `json:"model"`
	Messages       []chatMessage `json:"messages"`
	ResponseFormat *respFormat   `json:"response_format,omitempty"`
	Temperature    float64       `json:"temperature"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type respFormat struct {
	Type string `json:"type"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
}

// confidenceDefault is returned for every successful completion: chat
// completion APIs do not return a calibrated confidence score, so the
// pipeline's service-confidence formula (internal/interpret) supplies the
// signal that actually varies call to call.
const confidenceDefault = 0.75

// Complete posts systemPrompt as the sole user message, validates the
// JSON reply against responseSchema, and returns the raw JSON text for
// ParseLLMResponse to decode.
func (c *ChatLLM) Complete(ctx context.Context, systemPrompt string) (string, float64, error) {
	body, err := json.Marshal(chatRequest{
		Model:          c.Model,
		Messages:       []chatMessage{{Role: "user", Content: systemPrompt}},
		ResponseFormat: &respFormat{Type: "json_object"},
		Temperature:    0,
	})
	if err != nil {
		return "", 0, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.Endpoint, bytes.NewReader(body))
	if err != nil {
		return "", 0, err
	}
	req.Header.Set("Content-Type", "application/json")
	if c.APIKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.APIKey)
	}

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return "", 0, err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", 0, err
	}
	if resp.StatusCode != http.StatusOK {
		return "", 0, fmt.Errorf("llm provider returned status %d: %s", resp.StatusCode, string(raw))
	}

	var parsed chatResponse
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return "", 0, fmt.Errorf("decode llm response envelope: %w", err)
	}
	if len(parsed.Choices) == 0 {
		return "", 0, fmt.Errorf("llm provider returned no choices")
	}
	content := parsed.Choices[0].Message.Content

	var generic interface{}
	if err := json.Unmarshal([]byte(content), &generic); err != nil {
		return "", 0, fmt.Errorf("llm content is not valid JSON: %w", err)
	}
	if err := responseSchema.Validate(generic); err != nil {
		return "", 0, fmt.Errorf("llm content failed schema validation: %w", err)
	}

	return content, confidenceDefault, nil
}
