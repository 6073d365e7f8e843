// Package interpret implements the natural-language interpretation
// pipeline: rate limiting, candidate search, LLM-or-heuristic intent
// parsing with candidate-set containment enforced as a security
// boundary, service-confidence scoring, and the confirmation gate.
package interpret

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/jaxxstorm/landlord/internal/domain"
)

// llmResponse is the JSON shape demanded of the LLM in the system prompt:
// {"intent_type": "...", "entities": [{"entity_id","entity_type","role"}], "parameters": {...}}.
type llmResponse struct {
	IntentType string                   `json:"intent_type"`
	Entities   []llmEntity              `json:"entities"`
	Parameters map[string]interface{}   `json:"parameters"`
}

type llmEntity struct {
	EntityID   string `json:"entity_id"`
	EntityType string `json:"entity_type"`
	Role       string `json:"role"`
}

var llmIntentNames = map[string]domain.IntentType{
	"update_status":      domain.IntentUpdateStatus,
	"create_item":        domain.IntentCreateItem,
	"archive":            domain.IntentArchive,
	"move_to_sprint":     domain.IntentMoveToSprint,
	"query_status":       domain.IntentQueryStatus,
	"search_items":       domain.IntentSearchItems,
	"update_priority":    domain.IntentUpdatePriority,
	"add_comment":        domain.IntentAddComment,
	"assign_task":        domain.IntentAssignTask,
	"take_ownership":     domain.IntentTakeOwnership,
	"release_ownership":  domain.IntentReleaseOwnership,
	"start_work":         domain.IntentStartWork,
	"complete_task":      domain.IntentCompleteTask,
	"generate_report":    domain.IntentGenerateReport,
	"unknown":            domain.IntentUnknown,
}

// ErrEntityNotInCandidateSet is returned when the LLM names an entity_id
// that wasn't among the candidates used to build its prompt. This is the
// parse-fails-closed security boundary (P5): the caller must treat this
// exactly like any other parse failure and fall back to the heuristic
// parser, never retry the LLM with the same response.
var ErrEntityNotInCandidateSet = fmt.Errorf("entity id not in candidate set")

// ParseLLMResponse validates and decodes the LLM's JSON reply, enforcing
// that every entity_id it names is a member of candidateIDs.
func ParseLLMResponse(raw string, candidateIDs []uuid.UUID) (domain.ParsedIntent, error) {
	var resp llmResponse
	if err := json.Unmarshal([]byte(raw), &resp); err != nil {
		return domain.ParsedIntent{}, fmt.Errorf("invalid JSON from LLM: %w", err)
	}
	if resp.IntentType == "" {
		return domain.ParsedIntent{}, fmt.Errorf("missing intent_type")
	}

	intentType, ok := llmIntentNames[resp.IntentType]
	if !ok {
		return domain.ParsedIntent{}, fmt.Errorf("invalid intent_type: %s", resp.IntentType)
	}

	allowed := make(map[uuid.UUID]bool, len(candidateIDs))
	for _, id := range candidateIDs {
		allowed[id] = true
	}

	entities := make([]domain.ParsedEntity, 0, len(resp.Entities))
	for _, e := range resp.Entities {
		id, err := uuid.Parse(e.EntityID)
		if err != nil {
			return domain.ParsedIntent{}, fmt.Errorf("invalid entity_id format: %s", e.EntityID)
		}
		if !allowed[id] {
			return domain.ParsedIntent{}, ErrEntityNotInCandidateSet
		}
		role := e.Role
		if role == "" {
			role = "target"
		}
		entities = append(entities, domain.ParsedEntity{
			EntityID:   id,
			EntityType: e.EntityType,
			Role:       role,
		})
	}

	return domain.ParsedIntent{
		IntentType: intentType,
		Entities:   entities,
		Parameters: resp.Parameters,
	}, nil
}

// SystemPrompt builds the LLM prompt embedding up to the top 20
// candidates, one line each: "- {id} ({type}): {title} - {description or
// "No description"}".
func SystemPrompt(utterance string, candidates []domain.CandidateEntity) string {
	var b strings.Builder
	b.WriteString("You are an intent parser for a work-item coordination engine. ")
	b.WriteString("Given the user's utterance and the candidate entities below, respond with JSON ")
	b.WriteString(`{"intent_type": "...", "entities": [{"entity_id": "...", "entity_type": "...", "role": "..."}], "parameters": {...}}.` + "\n\n")
	b.WriteString("Candidates:\n")

	limit := len(candidates)
	if limit > 20 {
		limit = 20
	}
	for _, c := range candidates[:limit] {
		desc := c.Description
		if desc == "" {
			desc = "No description"
		}
		fmt.Fprintf(&b, "- %s (%s): %s - %s\n", c.ID, c.EntityType, c.Title, desc)
	}

	b.WriteString("\nUtterance: ")
	b.WriteString(utterance)
	return b.String()
}

// shortWordLength is the longest word length ignored by heuristic entity
// matching; words this short are too common to be meaningful.
const shortWordLength = 2

// entityMatchThreshold is the minimum fraction of utterance words found
// in a candidate's title for that candidate to be treated as referenced.
const entityMatchThreshold = 0.2

// FallbackHeuristicParse is the keyword-table parser used when the LLM is
// disabled, errors, or produces a response that fails validation.
// Ownership-related phrases are checked before the generic move/change
// branch so "I'll take this one" isn't misread as a status update.
func FallbackHeuristicParse(utterance string, candidates []domain.CandidateEntity) domain.ParsedIntent {
	lower := strings.ToLower(utterance)

	intentType := classifyUtterance(lower)
	entities := matchEntities(lower, candidates)
	parameters := extractParameters(lower, utterance, intentType)

	return domain.ParsedIntent{
		IntentType: intentType,
		Entities:   entities,
		Parameters: parameters,
	}
}

func classifyUtterance(lower string) domain.IntentType {
	switch {
	case containsAny(lower, "i'll take", "i'm on it", "i'll work on", "i'll handle",
		"taking this", "picking up", "taking ownership", "takes ownership", "took ownership") ||
		(strings.Contains(lower, "take") && strings.Contains(lower, "ownership")):
		return domain.IntentTakeOwnership
	case containsAny(lower, "release", "give up", "drop this", "can't work on", "no longer working"):
		return domain.IntentReleaseOwnership
	case containsAny(lower, "completed", "finished", "done with", "completed task", "task is done"):
		return domain.IntentCompleteTask
	case containsAny(lower, "starting", "begin work", "working on") ||
		(strings.Contains(lower, "start") && strings.Contains(lower, "task")):
		return domain.IntentStartWork
	case strings.Contains(lower, "move") || strings.Contains(lower, "change"):
		switch {
		case strings.Contains(lower, "ready") || strings.Contains(lower, "status"):
			return domain.IntentUpdateStatus
		case strings.Contains(lower, "sprint"):
			return domain.IntentMoveToSprint
		default:
			return domain.IntentUpdateStatus
		}
	case strings.Contains(lower, "create") || strings.Contains(lower, "add"):
		return domain.IntentCreateItem
	case containsAny(lower, "delete", "remove", "archive"):
		return domain.IntentArchive
	case containsAny(lower, "generate", "plan", "report"):
		return domain.IntentGenerateReport
	case containsAny(lower, "what", "show", "get", "find"):
		return domain.IntentQueryStatus
	case strings.Contains(lower, "search"):
		return domain.IntentSearchItems
	case strings.Contains(lower, "assign"):
		return domain.IntentAssignTask
	case strings.Contains(lower, "priority"):
		return domain.IntentUpdatePriority
	case strings.Contains(lower, "comment"):
		return domain.IntentAddComment
	default:
		return domain.IntentUnknown
	}
}

func containsAny(haystack string, needles ...string) bool {
	for _, n := range needles {
		if strings.Contains(haystack, n) {
			return true
		}
	}
	return false
}

func matchEntities(lower string, candidates []domain.CandidateEntity) []domain.ParsedEntity {
	words := strings.Fields(lower)
	var out []domain.ParsedEntity
	for _, c := range candidates {
		titleLower := strings.ToLower(c.Title)
		matches, total := 0, 0
		for _, w := range words {
			if len(w) <= shortWordLength {
				continue
			}
			total++
			if strings.Contains(titleLower, w) {
				matches++
			}
		}
		if total == 0 || matches == 0 {
			continue
		}
		if float64(matches)/float64(total) > entityMatchThreshold {
			out = append(out, domain.ParsedEntity{
				EntityID:   c.ID,
				EntityType: c.EntityType,
				Role:       "target",
			})
		}
	}
	return out
}

func extractParameters(lower, original string, intentType domain.IntentType) map[string]interface{} {
	params := map[string]interface{}{}
	switch intentType {
	case domain.IntentUpdateStatus:
		switch {
		case strings.Contains(lower, "ready"):
			params["new_status"] = "Ready"
		case strings.Contains(lower, "progress"):
			params["new_status"] = "InProgress"
		case strings.Contains(lower, "review"):
			params["new_status"] = "InReview"
		case strings.Contains(lower, "done"):
			params["new_status"] = "Done"
		}
	case domain.IntentCreateItem:
		if title, ok := extractAfter(lower, original, "create "); ok {
			params["title"] = title
		} else if title, ok := extractAfter(lower, original, "add "); ok {
			params["title"] = title
		}
	}
	return params
}

// extractAfter returns the text of original following the first
// occurrence of marker in lower, trimmed and cut at " for" if present,
// mirroring the original's naive title-extraction heuristic.
func extractAfter(lower, original, marker string) (string, bool) {
	idx := strings.Index(lower, marker)
	if idx < 0 {
		return "", false
	}
	rest := original[idx+len(marker):]
	if cut := strings.Index(strings.ToLower(rest), " for"); cut >= 0 {
		rest = rest[:cut]
	}
	rest = strings.TrimSpace(rest)
	if rest == "" {
		return "", false
	}
	return rest, true
}
