package act

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/jaxxstorm/landlord/internal/backlog"
	"github.com/jaxxstorm/landlord/internal/domain"
)

// fakeRepo is a minimal in-memory backlog.Repository sufficient to drive
// the Act pipeline's dispatch logic in tests, including the ownership
// race's single-winner contract.
type fakeRepo struct {
	mu     sync.Mutex
	stories map[uuid.UUID]*domain.Story
	tasks   map[uuid.UUID]*domain.Task
	sprints map[uuid.UUID]*domain.Sprint
	audit   []*domain.AuditLogEntry
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{
		stories: make(map[uuid.UUID]*domain.Story),
		tasks:   make(map[uuid.UUID]*domain.Task),
		sprints: make(map[uuid.UUID]*domain.Sprint),
	}
}

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
	return nil, nil
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
	return nil
}
func (f *fakeRepo) ListAcceptanceCriteria(ctx context.Context, storyID uuid.UUID) ([]*domain.AcceptanceCriterion, error) {
	return nil, nil
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

type notFoundErr struct{}

func (notFoundErr) Error() string { return "not found" }
func notFound() error             { return notFoundErr{} }

var _ backlog.Repository = (*fakeRepo)(nil)

func TestTakeOwnershipSingleWinner(t *testing.T) {
	repo := newFakeRepo()
	taskID := uuid.New()
	repo.tasks[taskID] = &domain.Task{ID: taskID, Status: domain.TaskAvailable}

	p := New(repo, noopEvents{}, noopBroadcast{}, nil)

	const n = 20
	results := make([]bool, n)
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			res, _ := p.Dispatch(context.Background(), nil, uuid.New(), domain.ActionCommand{
				ActionType:     domain.ActionTakeOwnership,
				TargetEntities: []uuid.UUID{taskID},
			})
			results[i] = res.Success
		}(i)
	}
	wg.Wait()

	wins := 0
	for _, ok := range results {
		if ok {
			wins++
		}
	}
	if wins != 1 {
		t.Fatalf("expected exactly one winner, got %d", wins)
	}
}

func TestUpdateStatusInvalidTransition(t *testing.T) {
	repo := newFakeRepo()
	storyID := uuid.New()
	repo.stories[storyID] = &domain.Story{ID: storyID, Title: "As a user", Status: domain.StoryDraft}

	p := New(repo, noopEvents{}, noopBroadcast{}, nil)
	res, err := p.Dispatch(context.Background(), nil, uuid.New(), domain.ActionCommand{
		ActionType:     domain.ActionUpdateStatus,
		TargetEntities: []uuid.UUID{storyID},
		Parameters:     map[string]any{"new_status": "InProgress"},
	})
	if err != nil {
		t.Fatalf("dispatch itself should not error, got %v", err)
	}
	if res.Success {
		t.Fatalf("expected failure for an invalid Draft->InProgress transition")
	}
	if len(repo.audit) != 1 || repo.audit[0].Success {
		t.Fatalf("expected one failed audit entry, got %+v", repo.audit)
	}
}

func TestPartialSuccessAcrossMultipleTargets(t *testing.T) {
	repo := newFakeRepo()
	okID, missingID := uuid.New(), uuid.New()
	repo.stories[okID] = &domain.Story{ID: okID, Title: "As a user", Status: domain.StoryCommitted}

	p := New(repo, noopEvents{}, noopBroadcast{}, nil)
	res, _ := p.Dispatch(context.Background(), nil, uuid.New(), domain.ActionCommand{
		ActionType:     domain.ActionUpdateStatus,
		TargetEntities: []uuid.UUID{okID, missingID},
		Parameters:     map[string]any{"new_status": "InProgress"},
	})
	if !res.PartialSuccess {
		t.Fatalf("expected partial success with one valid and one missing target")
	}
}

type noopEvents struct{}

func (noopEvents) Publish(domain.DomainEvent) {}

type noopBroadcast struct{}

func (noopBroadcast) Broadcast(domain.TaskEvent) {}
