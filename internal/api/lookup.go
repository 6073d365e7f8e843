package api

import (
	"context"

	"github.com/google/uuid"

	"github.com/jaxxstorm/landlord/internal/backlog"
	"github.com/jaxxstorm/landlord/internal/domain"
)

// repoLookup implements actionvalidator.CandidateLookup directly against
// the backlog repository, for commands issued through POST /v1/act
// rather than produced by the Interpret pipeline's own candidate search.
// It tries story then task, since an ActionCommand's target type is only
// known by looking it up.
type repoLookup struct {
	ctx    context.Context
	repo   backlog.Repository
	tenant *uuid.UUID
}

func (l repoLookup) Lookup(id uuid.UUID) (domain.CandidateEntity, bool) {
	if s, err := l.repo.GetStory(l.ctx, l.tenant, id); err == nil {
		return domain.CandidateEntity{
			ID:         s.ID,
			TenantID:   s.OrganizationID,
			EntityType: "story",
			Title:      s.Title,
			Description: s.Description,
			Status:     string(s.Status),
		}, true
	}
	if t, err := l.repo.GetTask(l.ctx, l.tenant, id); err == nil {
		return domain.CandidateEntity{
			ID:         t.ID,
			TenantID:   t.OrganizationID,
			EntityType: "task",
			Title:      t.Title,
			Description: t.Description,
			Status:     string(t.Status),
		}, true
	}
	return domain.CandidateEntity{}, false
}
