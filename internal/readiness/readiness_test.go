package readiness

import (
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/jaxxstorm/landlord/internal/domain"
)

func longText(n int) string { return strings.Repeat("x", n) }

func readyStory() (*domain.StoryProjection, []domain.AcceptanceCriterion) {
	points := 5
	storyID := uuid.New()
	acs := []domain.AcceptanceCriterion{
		{StoryID: storyID, ACID: "AC-1", Given: longText(20), When: longText(20), Then: longText(20)},
		{StoryID: storyID, ACID: "AC-2", Given: longText(20), When: longText(20), Then: longText(20)},
		{StoryID: storyID, ACID: "AC-3", Given: longText(20), When: longText(20), Then: longText(20)},
	}
	story := &domain.StoryProjection{
		StoryID:     storyID,
		Title:       "Implement checkout payment capture flow",
		Description: longText(80),
		StoryPoints: &points,
		TaskCount:   2,
		TaskACRefs:  [][]string{{"AC-1", "AC-2"}, {"AC-3"}},
	}
	return story, acs
}

func TestScoreFullyReadyStory(t *testing.T) {
	story, acs := readyStory()
	eval := Score(story, acs, time.Now())
	if !eval.IsReady {
		t.Fatalf("expected ready story, got missing items: %+v", eval.MissingItems)
	}
	if eval.Score != 100 {
		t.Fatalf("expected score 100, got %d", eval.Score)
	}
}

func TestScoreMissingTitleDescriptionPointsAndTasks(t *testing.T) {
	story := &domain.StoryProjection{StoryID: uuid.New(), Title: "short"}
	eval := Score(story, nil, time.Now())
	if eval.IsReady {
		t.Fatalf("expected not ready")
	}
	wantCodes := map[string]bool{
		"title_too_short":        true,
		"description_too_short":  true,
		"story_points_missing":   true,
		"no_acceptance_criteria": true,
		"no_tasks":               true,
	}
	for _, m := range eval.MissingItems {
		delete(wantCodes, m.Code)
	}
	if len(wantCodes) != 0 {
		t.Fatalf("missing expected deduction codes: %v", wantCodes)
	}
	if eval.Score != 100-10-10-15-25-20 {
		t.Fatalf("unexpected score %d", eval.Score)
	}
}

func TestScoreUncoveredAcceptanceCriterionChargedOnce(t *testing.T) {
	story, acs := readyStory()
	story.TaskACRefs = [][]string{{"AC-1"}} // AC-2 and AC-3 uncovered
	eval := Score(story, acs, time.Now())

	count := 0
	for _, m := range eval.MissingItems {
		if m.Code == "uncovered_acceptance_criteria" {
			count++
		}
	}
	if count != 1 {
		t.Fatalf("expected exactly one uncovered-criteria deduction, got %d", count)
	}
}

func TestScorePadsDoNotInflateTitleOrDescriptionLength(t *testing.T) {
	story, acs := readyStory()
	story.Title = "  " + strings.Repeat(" ", 20)
	story.Description = strings.Repeat(" ", 120)
	eval := Score(story, acs, time.Now())

	wantCodes := map[string]bool{"title_too_short": true, "description_too_short": true}
	for _, m := range eval.MissingItems {
		delete(wantCodes, m.Code)
	}
	if len(wantCodes) != 0 {
		t.Fatalf("expected whitespace-only title/description to be treated as too short, missing codes: %v", wantCodes)
	}
}

func TestScoreClampedAtZero(t *testing.T) {
	story := &domain.StoryProjection{StoryID: uuid.New()}
	eval := Score(story, nil, time.Now())
	if eval.Score < 0 {
		t.Fatalf("score should be clamped at 0, got %d", eval.Score)
	}
}
