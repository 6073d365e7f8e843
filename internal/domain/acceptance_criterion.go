package domain

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// AcceptanceCriterion is a given/when/then clause attached to a Story.
// (StoryID, ACID) is the business-unique key; ID is the surrogate key.
type AcceptanceCriterion struct {
	ID        uuid.UUID `json:"id"`
	StoryID   uuid.UUID `json:"story_id"`
	ACID      string    `json:"ac_id"`
	Given     string    `json:"given"`
	When      string    `json:"when"`
	Then      string    `json:"then"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Validate enforces the trimmed-non-empty invariant on each clause.
func (a *AcceptanceCriterion) Validate() error {
	if strings.TrimSpace(a.ACID) == "" {
		return apperrACIDEmpty
	}
	if strings.TrimSpace(a.Given) == "" || strings.TrimSpace(a.When) == "" || strings.TrimSpace(a.Then) == "" {
		return apperrACClauseEmpty
	}
	return nil
}

// BodyLength returns the combined length of the three clauses, used by the
// readiness evaluator's AC body-quality check.
func (a *AcceptanceCriterion) BodyLength() int {
	return len(a.Given) + len(a.When) + len(a.Then)
}
