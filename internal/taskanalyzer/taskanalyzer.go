// Package taskanalyzer scores how clearly a task is specified and flags
// the specific gaps that would trip up an AI coding agent picking it up,
// grounded on the original clarity-score deductions: the score starts at
// 100 and loses fixed amounts for missing description, missing/invalid
// acceptance criteria references, missing estimate and missing
// AI-compatibility elements. Vague language is flagged as a
// recommendation but never subtracted from the score itself.
package taskanalyzer

import (
	"regexp"
	"strings"

	"github.com/jaxxstorm/landlord/internal/domain"
)

// GapType names one category of specification gap a task can have.
type GapType string

const (
	GapMissingDescription    GapType = "missing_description"
	GapVagueLanguage         GapType = "vague_language"
	GapNoAcceptanceCriteria  GapType = "no_acceptance_criteria"
	GapInvalidACReferences   GapType = "invalid_ac_references"
	GapMissingEstimate       GapType = "missing_estimate"
	GapMissingAICompat       GapType = "missing_ai_compatibility"
)

// Recommendation pairs a gap with the human-readable text surfaced to the
// requester, matching the exact message strings confirmed against the
// original analyzer's test suite. AutoApplyable marks the one
// recommendation in the list (always the first found) whose fix the
// system can apply on the requester's behalf without further input.
type Recommendation struct {
	Gap           GapType `json:"gap"`
	Message       string  `json:"message"`
	AutoApplyable bool    `json:"auto_applyable"`
}

// ClarityLevel buckets a numeric clarity score for display.
type ClarityLevel string

const (
	ClarityHigh   ClarityLevel = "high"
	ClarityMedium ClarityLevel = "medium"
	ClarityLow    ClarityLevel = "low"
)

func levelFor(score int) ClarityLevel {
	switch {
	case score >= 80:
		return ClarityHigh
	case score >= 50:
		return ClarityMedium
	default:
		return ClarityLow
	}
}

// Analysis is the deterministic output of analyzing one task: identical
// input must always produce a byte-identical Analysis.
type Analysis struct {
	TaskID          string           `json:"task_id"`
	ClarityScore    int              `json:"clarity_score"`
	ClarityLevel    ClarityLevel     `json:"clarity_level"`
	Recommendations []Recommendation `json:"recommendations"`
	Summary         string           `json:"summary"`
}

const wellDefinedSummary = "Task is well-defined and ready for implementation"

var vagueVerbs = regexp.MustCompile(`(?i)\b(implement|create|build|add|fix)\b`)

// concreteNounPattern is a coarse signal for "this description names a
// specific technical artifact" (a file, function, endpoint, or table)
// rather than only a vague verb. Descriptions under 200 characters that
// contain a vague verb but no concrete noun are flagged.
var concreteNounPattern = regexp.MustCompile(`(?i)\b\w+\.(go|ts|tsx|py|sql)\b|\bfunc \w+|\b[A-Z][a-zA-Z0-9]*Handler\b|/[a-z0-9_\-/]+`)

const (
	vagueLanguageMaxLength = 200

	deductNoDescription   = 20
	deductNoACReferences  = 15
	deductNoEstimate      = 10
	deductMissingAICompat = 10
)

// Analyze scores a task against its story's acceptance criteria, which
// must be the same set ac_references are validated against.
func Analyze(task *domain.Task, storyACs []domain.AcceptanceCriterion) Analysis {
	score := 100
	var recs []Recommendation

	hasDescription := strings.TrimSpace(task.Description) != ""
	if !hasDescription {
		score -= deductNoDescription
		recs = append(recs, Recommendation{
			Gap:     GapMissingDescription,
			Message: "Task description lacks specific technical details",
		})
	} else if isVague(task.Description) {
		recs = append(recs, Recommendation{
			Gap:     GapVagueLanguage,
			Message: "Task contains vague or ambiguous language",
		})
	}

	validRefs, invalidRefs := splitACReferences(task.AcceptanceCriteriaRefs, storyACs)
	switch {
	case len(task.AcceptanceCriteriaRefs) == 0:
		score -= deductNoACReferences
		recs = append(recs, Recommendation{
			Gap:     GapNoAcceptanceCriteria,
			Message: "Task is not linked to acceptance criteria",
		})
	case len(invalidRefs) > 0:
		score -= deductNoACReferences
		recs = append(recs, Recommendation{
			Gap:     GapInvalidACReferences,
			Message: "Task references invalid acceptance criteria IDs",
		})
	}
	_ = validRefs

	if task.EstimatedHours == nil {
		score -= deductNoEstimate
		recs = append(recs, Recommendation{
			Gap:     GapMissingEstimate,
			Message: "Task is missing an hour estimate",
		})
	}

	// A missing description is already charged above, so the
	// AI-compatibility deduction applies only to tasks that have one.
	if hasDescription && !hasAICompatibilityElements(task) {
		score -= deductMissingAICompat
		recs = append(recs, Recommendation{
			Gap:     GapMissingAICompat,
			Message: "Task missing elements for AI agent compatibility",
		})
	}

	if score < 0 {
		score = 0
	}
	if score > 100 {
		score = 100
	}

	summary := wellDefinedSummary
	if len(recs) > 0 {
		recs[0].AutoApplyable = true
		summary = recs[0].Message
	}

	return Analysis{
		TaskID:          task.ID.String(),
		ClarityScore:    score,
		ClarityLevel:    levelFor(score),
		Recommendations: recs,
		Summary:         summary,
	}
}

func isVague(description string) bool {
	if len(description) >= vagueLanguageMaxLength {
		return false
	}
	return vagueVerbs.MatchString(description) && !concreteNounPattern.MatchString(description)
}

// VagueTerms returns every vague verb matched in description when the
// description as a whole reads as vague (isVague), in the order they
// occur. It returns nil for a description that is either concrete or
// long enough to stand on its own.
func VagueTerms(description string) []string {
	if !isVague(description) {
		return nil
	}
	return vagueVerbs.FindAllString(description, -1)
}

// AICompatibilityIssues names each missing element hasAICompatibilityElements
// checks for, so a caller can surface specifics instead of a single
// pass/fail flag.
func AICompatibilityIssues(task *domain.Task) []string {
	var issues []string
	if strings.TrimSpace(task.Title) == "" {
		issues = append(issues, "missing title")
	}
	if strings.TrimSpace(task.Description) == "" {
		issues = append(issues, "missing description")
	}
	if len(task.AcceptanceCriteriaRefs) == 0 {
		issues = append(issues, "no acceptance criteria references")
	}
	return issues
}

func splitACReferences(refs []string, storyACs []domain.AcceptanceCriterion) (valid, invalid []string) {
	known := make(map[string]bool, len(storyACs))
	for _, ac := range storyACs {
		known[ac.ACID] = true
	}
	for _, ref := range refs {
		if known[ref] {
			valid = append(valid, ref)
		} else {
			invalid = append(invalid, ref)
		}
	}
	return valid, invalid
}

// hasAICompatibilityElements requires a title, a description, and at
// least one acceptance criteria reference, the minimum an autonomous
// coding agent needs to act on a task without clarifying questions.
func hasAICompatibilityElements(task *domain.Task) bool {
	return strings.TrimSpace(task.Title) != "" &&
		strings.TrimSpace(task.Description) != "" &&
		len(task.AcceptanceCriteriaRefs) > 0
}
