// Package readiness scores a story's readiness to enter a sprint against
// the projection maintained by internal/projection, producing an
// append-only evaluation with a deterministic score and a list of the
// specific gaps that keep a story from being ready.
package readiness

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/jaxxstorm/landlord/internal/domain"
)

// MissingItem names one concrete reason a story is not ready, matched to
// the table of deductions below.
type MissingItem struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Evaluation is the append-only result of scoring one story at one point
// in time.
type Evaluation struct {
	ID            uuid.UUID     `json:"id"`
	StoryID       uuid.UUID     `json:"story_id"`
	Score         int           `json:"score"`
	IsReady       bool          `json:"is_ready"`
	MissingItems  []MissingItem `json:"missing_items"`
	EvaluatedAt   time.Time     `json:"evaluated_at"`
}

const (
	titleMinLength       = 12
	descriptionMinLength = 60
	acBodyMinLength      = 60
)

// Score computes a readiness evaluation from a story's projection and its
// tasks' acceptance-criteria references, applying the deduction table:
// short/missing title −10, missing/short description −10, missing story
// points −15 (out of range −10), zero acceptance criteria −25 (one or two
// −15), any acceptance criterion with a thin body −5 each, any acceptance
// criterion not referenced by at least one task −25 (charged once, not
// per-AC), zero tasks −20. The result is clamped to [0, 100] and
// is_ready holds iff no deductions were applied.
func Score(story *domain.StoryProjection, acs []domain.AcceptanceCriterion, now time.Time) Evaluation {
	score := 100
	var missing []MissingItem

	deduct := func(amount int, code, message string) {
		score -= amount
		missing = append(missing, MissingItem{Code: code, Message: message})
	}

	if len(strings.TrimSpace(story.Title)) < titleMinLength {
		deduct(10, "title_too_short", "Title is missing or too short to convey the story")
	}
	if len(strings.TrimSpace(story.Description)) < descriptionMinLength {
		deduct(10, "description_too_short", "Description is missing or too short")
	}

	switch {
	case story.StoryPoints == nil:
		deduct(15, "story_points_missing", "Story points have not been estimated")
	case *story.StoryPoints < 1 || *story.StoryPoints > 8:
		deduct(10, "story_points_out_of_range", "Story points are outside the expected 1-8 range")
	}

	switch len(acs) {
	case 0:
		deduct(25, "no_acceptance_criteria", "Story has no acceptance criteria")
	case 1, 2:
		deduct(15, "few_acceptance_criteria", "Story has fewer than three acceptance criteria")
	}

	for _, ac := range acs {
		if ac.BodyLength() < acBodyMinLength {
			deduct(5, "thin_acceptance_criterion", "Acceptance criterion "+ac.ACID+" is too thin to implement against")
		}
	}

	if len(acs) > 0 && hasUncoveredCriterion(acs, story.TaskACRefs) {
		deduct(25, "uncovered_acceptance_criteria", "At least one acceptance criterion is not referenced by any task")
	}

	if story.TaskCount == 0 {
		deduct(20, "no_tasks", "Story has not been broken down into tasks")
	}

	if score < 0 {
		score = 0
	}
	if score > 100 {
		score = 100
	}

	return Evaluation{
		ID:           uuid.New(),
		StoryID:      story.StoryID,
		Score:        score,
		IsReady:      len(missing) == 0,
		MissingItems: missing,
		EvaluatedAt:  now,
	}
}

func hasUncoveredCriterion(acs []domain.AcceptanceCriterion, taskRefs [][]string) bool {
	covered := make(map[string]bool)
	for _, refs := range taskRefs {
		for _, ref := range refs {
			covered[ref] = true
		}
	}
	for _, ac := range acs {
		if !covered[ac.ACID] {
			return true
		}
	}
	return false
}

// Store persists evaluations append-only; each call to Score should be
// followed by Append so the history of readiness over time is preserved
// for audit and for the Recommendation Generator's trend analysis.
type Store interface {
	Append(ctx context.Context, eval Evaluation) error
	Latest(ctx context.Context, storyID uuid.UUID) (*Evaluation, error)
}
