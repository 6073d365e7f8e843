package providers

import (
	"context"
	"sort"

	"github.com/google/uuid"

	"github.com/jaxxstorm/landlord/internal/backlog"
	"github.com/jaxxstorm/landlord/internal/domain"
	"github.com/jaxxstorm/landlord/internal/interpret"
)

// BacklogSearch is the default CandidateSearch implementation: it scans
// the tenant's open stories and tasks, embeds each one's title and
// description with the same Embedder used on the query, and ranks by
// cosine similarity. It stands in for a real vector index (pgvector,
// OpenSearch k-NN) that a deployment can swap in later by registering a
// different name in the SearchRegistry; the pipeline itself never knows
// the difference since both speak the same CandidateSearch port.
type BacklogSearch struct {
	Repo     backlog.Repository
	Embedder interpret.Embedder
}

// NewBacklogSearch builds a BacklogSearch over repo using embedder to
// score both the query and every candidate's text.
func NewBacklogSearch(repo backlog.Repository, embedder interpret.Embedder) *BacklogSearch {
	return &BacklogSearch{Repo: repo, Embedder: embedder}
}

type scored struct {
	entity domain.CandidateEntity
}

// Search embeds every candidate story/task the tenant owns and returns
// the limit highest-scoring ones whose type is in entityTypes (or any
// type, if entityTypes is empty).
func (s *BacklogSearch) Search(ctx context.Context, embedding []float32, tenant *uuid.UUID, entityTypes []string, limit int) ([]domain.CandidateEntity, error) {
	wantStories := wantsType(entityTypes, "story")
	wantTasks := wantsType(entityTypes, "task")

	var candidates []scored

	if wantStories {
		stories, err := s.Repo.ListStories(ctx, tenant, backlog.StoryFilters{Limit: 500})
		if err != nil {
			return nil, err
		}
		for _, story := range stories {
			text := story.Title + " " + story.Description
			vec, err := s.Embedder.Embed(ctx, text)
			if err != nil {
				return nil, err
			}
			candidates = append(candidates, scored{
				entity: domain.CandidateEntity{
					ID: story.ID, TenantID: story.OrganizationID, EntityType: "story",
					Title: story.Title, Description: story.Description, Status: string(story.Status),
					SimilarityScore: CosineSimilarity(embedding, vec),
				},
			})
			if wantTasks {
				tasks, err := s.Repo.ListTasksByStory(ctx, tenant, story.ID, backlog.TaskFilters{Limit: 200})
				if err != nil {
					return nil, err
				}
				for _, task := range tasks {
					tvec, err := s.Embedder.Embed(ctx, task.Title+" "+task.Description)
					if err != nil {
						return nil, err
					}
					candidates = append(candidates, scored{
						entity: domain.CandidateEntity{
							ID: task.ID, TenantID: task.OrganizationID, EntityType: "task",
							Title: task.Title, Description: task.Description, Status: string(task.Status),
							SimilarityScore: CosineSimilarity(embedding, tvec),
						},
					})
				}
			}
		}
	} else if wantTasks {
		stories, err := s.Repo.ListStories(ctx, tenant, backlog.StoryFilters{Limit: 500})
		if err != nil {
			return nil, err
		}
		for _, story := range stories {
			tasks, err := s.Repo.ListTasksByStory(ctx, tenant, story.ID, backlog.TaskFilters{Limit: 200})
			if err != nil {
				return nil, err
			}
			for _, task := range tasks {
				tvec, err := s.Embedder.Embed(ctx, task.Title+" "+task.Description)
				if err != nil {
					return nil, err
				}
				candidates = append(candidates, scored{
					entity: domain.CandidateEntity{
						ID: task.ID, TenantID: task.OrganizationID, EntityType: "task",
						Title: task.Title, Description: task.Description, Status: string(task.Status),
						SimilarityScore: CosineSimilarity(embedding, tvec),
					},
				})
			}
		}
	}

	sort.Slice(candidates, func(i, j int) bool { return candidates[i].entity.SimilarityScore > candidates[j].entity.SimilarityScore })

	if limit <= 0 || limit > len(candidates) {
		limit = len(candidates)
	}
	out := make([]domain.CandidateEntity, limit)
	for i := 0; i < limit; i++ {
		out[i] = candidates[i].entity
	}
	return out, nil
}

func wantsType(entityTypes []string, t string) bool {
	if len(entityTypes) == 0 {
		return true
	}
	for _, want := range entityTypes {
		if want == t {
			return true
		}
	}
	return false
}
