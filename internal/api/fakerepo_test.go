package api

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/jaxxstorm/landlord/internal/backlog"
	"github.com/jaxxstorm/landlord/internal/domain"
)

// fakeRepo is a minimal in-memory backlog.Repository sufficient to drive
// the HTTP handlers in tests, including the ownership race's
// single-winner contract, mirroring internal/act's fakeRepo.
type fakeRepo struct {
	mu      sync.Mutex
	stories map[uuid.UUID]*domain.Story
	tasks   map[uuid.UUID]*domain.Task
	sprints map[uuid.UUID]*domain.Sprint
	acs     map[uuid.UUID][]*domain.AcceptanceCriterion
	audit   []*domain.AuditLogEntry
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{
		stories: make(map[uuid.UUID]*domain.Story),
		tasks:   make(map[uuid.UUID]*domain.Task),
		sprints: make(map[uuid.UUID]*domain.Sprint),
		acs:     make(map[uuid.UUID][]*domain.AcceptanceCriterion),
	}
}

type notFoundErr struct{}

func (notFoundErr) Error() string { return "not found" }
func notFound() error             { return notFoundErr{} }

func (f *fakeRepo) CreateStory(ctx context.Context, s *domain.Story) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	s.CreatedAt, s.UpdatedAt = time.Now(), time.Now()
	cp := *s
	f.stories[s.ID] = &cp
	return nil
}

func (f *fakeRepo) GetStory(ctx context.Context, org *uuid.UUID, id uuid.UUID) (*domain.Story, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	s, ok := f.stories[id]
	if !ok {
		return nil, notFound()
	}
	cp := *s
	return &cp, nil
}

func (f *fakeRepo) UpdateStory(ctx context.Context, s *domain.Story) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.stories[s.ID]; !ok {
		return notFound()
	}
	s.UpdatedAt = time.Now()
	cp := *s
	f.stories[s.ID] = &cp
	return nil
}

func (f *fakeRepo) SoftDeleteStory(ctx context.Context, org *uuid.UUID, id uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	s, ok := f.stories[id]
	if !ok {
		return notFound()
	}
	now := time.Now()
	s.DeletedAt = &now
	return nil
}

func (f *fakeRepo) ListStories(ctx context.Context, org *uuid.UUID, filters backlog.StoryFilters) ([]*domain.Story, error) {
	return nil, nil
}

func (f *fakeRepo) CreateTask(ctx context.Context, t *domain.Task) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	t.CreatedAt, t.UpdatedAt = time.Now(), time.Now()
	cp := *t
	f.tasks[t.ID] = &cp
	return nil
}

func (f *fakeRepo) GetTask(ctx context.Context, org *uuid.UUID, id uuid.UUID) (*domain.Task, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	t, ok := f.tasks[id]
	if !ok {
		return nil, notFound()
	}
	cp := *t
	return &cp, nil
}

func (f *fakeRepo) UpdateTask(ctx context.Context, t *domain.Task) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.tasks[t.ID]; !ok {
		return notFound()
	}
	t.UpdatedAt = time.Now()
	cp := *t
	f.tasks[t.ID] = &cp
	return nil
}

func (f *fakeRepo) ListTasksByStory(ctx context.Context, org *uuid.UUID, storyID uuid.UUID, filters backlog.TaskFilters) ([]*domain.Task, error) {
	return nil, nil
}

func (f *fakeRepo) ListTasksByOwner(ctx context.Context, org *uuid.UUID, owner uuid.UUID) ([]*domain.Task, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*domain.Task
	for _, t := range f.tasks {
		if t.OwnerUserID != nil && *t.OwnerUserID == owner {
			cp := *t
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (f *fakeRepo) TakeTaskOwnershipAtomic(ctx context.Context, org *uuid.UUID, taskID, user uuid.UUID, now time.Time) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	t, ok := f.tasks[taskID]
	if !ok || t.Status != domain.TaskAvailable {
		return false, nil
	}
	t.Status = domain.TaskOwned
	t.OwnerUserID = &user
	t.OwnedAt = &now
	return true, nil
}

func (f *fakeRepo) CreateAcceptanceCriterion(ctx context.Context, ac *domain.AcceptanceCriterion) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if ac.ID == uuid.Nil {
		ac.ID = uuid.New()
	}
	f.acs[ac.StoryID] = append(f.acs[ac.StoryID], ac)
	return nil
}

func (f *fakeRepo) ListAcceptanceCriteria(ctx context.Context, storyID uuid.UUID) ([]*domain.AcceptanceCriterion, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.acs[storyID], nil
}

func (f *fakeRepo) GetSprint(ctx context.Context, org *uuid.UUID, id uuid.UUID) (*domain.Sprint, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	s, ok := f.sprints[id]
	if !ok {
		return nil, notFound()
	}
	cp := *s
	return &cp, nil
}

func (f *fakeRepo) UpdateSprint(ctx context.Context, s *domain.Sprint) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	cp := *s
	f.sprints[s.ID] = &cp
	return nil
}

func (f *fakeRepo) ListSprintTasks(ctx context.Context, org *uuid.UUID, sprintID uuid.UUID, filters backlog.TaskFilters) ([]*domain.Task, error) {
	return nil, nil
}

func (f *fakeRepo) AppendAuditLog(ctx context.Context, entry *domain.AuditLogEntry) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.audit = append(f.audit, entry)
	return nil
}

var _ backlog.Repository = (*fakeRepo)(nil)
