package taskanalyzer

import (
	"testing"

	"github.com/google/uuid"

	"github.com/jaxxstorm/landlord/internal/domain"
)

func TestAnalyzeWellDefinedTask(t *testing.T) {
	hours := 4
	task := &domain.Task{
		ID:                     uuid.New(),
		Title:                  "Add idempotency key handling to POST /orders",
		Description:            "Validate the Idempotency-Key header in pkg/orders/handler.go against the orders_idempotency table before inserting a new order row.",
		AcceptanceCriteriaRefs: []string{"AC-1"},
		EstimatedHours:         &hours,
	}
	acs := []domain.AcceptanceCriterion{{ACID: "AC-1"}}

	a := Analyze(task, acs)
	if a.ClarityScore < 80 {
		t.Fatalf("expected clarity score >= 80, got %d", a.ClarityScore)
	}
	if len(a.Recommendations) > 1 {
		t.Fatalf("expected at most one recommendation for a well-defined task, got %v", a.Recommendations)
	}
	if a.ClarityLevel != ClarityHigh {
		t.Fatalf("expected high clarity level, got %s", a.ClarityLevel)
	}
}

func TestAnalyzeNoDescriptionDeductsTwenty(t *testing.T) {
	hours := 2
	task := &domain.Task{
		ID:                     uuid.New(),
		Title:                  "Fix login bug",
		AcceptanceCriteriaRefs: []string{"AC-1"},
		EstimatedHours:         &hours,
	}
	acs := []domain.AcceptanceCriterion{{ACID: "AC-1"}}

	a := Analyze(task, acs)
	if a.ClarityScore != 80 {
		t.Fatalf("expected score 80 (100-20 for missing description), got %d", a.ClarityScore)
	}
}

func TestAnalyzeMissingACEstimateAndAICompat(t *testing.T) {
	task := &domain.Task{
		ID:          uuid.New(),
		Title:       "Implement thing",
		Description: "Implement the thing properly with good code quality throughout.",
	}

	a := Analyze(task, nil)
	if a.ClarityScore != 65 {
		t.Fatalf("expected score 65 (100-15-10-10), got %d", a.ClarityScore)
	}
}

func TestAnalyzeInvalidACReferenceTreatedLikeMissing(t *testing.T) {
	hours := 3
	task := &domain.Task{
		ID:                     uuid.New(),
		Title:                  "Add retry to webhook delivery",
		Description:            "Add retry with exponential backoff to internal/webhook/deliver.go.",
		AcceptanceCriteriaRefs: []string{"AC-99"},
		EstimatedHours:         &hours,
	}
	acs := []domain.AcceptanceCriterion{{ACID: "AC-1"}}

	a := Analyze(task, acs)
	found := false
	for _, r := range a.Recommendations {
		if r.Gap == GapInvalidACReferences {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected invalid AC reference gap, got %+v", a.Recommendations)
	}
}

func TestAnalyzeFirstRecommendationIsAutoApplyable(t *testing.T) {
	task := &domain.Task{
		ID:    uuid.New(),
		Title: "Implement thing",
	}

	a := Analyze(task, nil)
	if len(a.Recommendations) == 0 {
		t.Fatalf("expected at least one recommendation")
	}
	if !a.Recommendations[0].AutoApplyable {
		t.Fatalf("expected first recommendation to be auto-applyable, got %+v", a.Recommendations[0])
	}
	for i, r := range a.Recommendations[1:] {
		if r.AutoApplyable {
			t.Fatalf("expected only the first recommendation to be auto-applyable, recommendation %d was too: %+v", i+1, r)
		}
	}
}

func TestAnalyzeDeterministic(t *testing.T) {
	hours := 6
	task := &domain.Task{
		ID:                     uuid.New(),
		Title:                  "Implement search reindex job",
		Description:            "Implement a cron job calling cmd/reindex/main.go nightly.",
		AcceptanceCriteriaRefs: []string{"AC-1"},
		EstimatedHours:         &hours,
	}
	acs := []domain.AcceptanceCriterion{{ACID: "AC-1"}}

	a1 := Analyze(task, acs)
	a2 := Analyze(task, acs)
	if a1.ClarityScore != a2.ClarityScore || a1.Summary != a2.Summary {
		t.Fatalf("expected deterministic output, got %+v vs %+v", a1, a2)
	}
}
