// Package projection maintains the read-optimized StoryProjection and
// TaskProjection views consumed by the readiness evaluator and the HTTP
// API, keeping them eventually consistent with the authoritative backlog
// tables via the event bus.
package projection

import (
	"context"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/jaxxstorm/landlord/internal/domain"
)

// Store holds the current projection state in memory, keyed by entity id.
// It is not persisted: the readiness_story_projections /
// readiness_task_projections tables exist in the schema, but this package
// neither reads nor writes them; Hydrate seeds the store at startup from
// the backlog's stories, tasks and acceptance criteria.
type Store struct {
	mu       sync.RWMutex
	stories  map[uuid.UUID]*domain.StoryProjection
	tasks    map[uuid.UUID]*domain.TaskProjection
	byStory  map[uuid.UUID]map[uuid.UUID]*domain.TaskProjection
}

// NewStore creates an empty projection store.
func NewStore() *Store {
	return &Store{
		stories: make(map[uuid.UUID]*domain.StoryProjection),
		tasks:   make(map[uuid.UUID]*domain.TaskProjection),
		byStory: make(map[uuid.UUID]map[uuid.UUID]*domain.TaskProjection),
	}
}

// Story returns the current projection for a story, or false if absent.
func (s *Store) Story(id uuid.UUID) (*domain.StoryProjection, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.stories[id]
	return p, ok
}

// Task returns the current projection for a task, or false if absent.
func (s *Store) Task(id uuid.UUID) (*domain.TaskProjection, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.tasks[id]
	return p, ok
}

// TasksForStory returns the current task projections belonging to a story.
func (s *Store) TasksForStory(storyID uuid.UUID) []*domain.TaskProjection {
	s.mu.RLock()
	defer s.mu.RUnlock()
	byID := s.byStory[storyID]
	out := make([]*domain.TaskProjection, 0, len(byID))
	for _, t := range byID {
		out = append(out, t)
	}
	return out
}

func (s *Store) upsertStory(p *domain.StoryProjection) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stories[p.StoryID] = p
}

func (s *Store) deleteStory(id uuid.UUID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.stories, id)
	delete(s.byStory, id)
}

func (s *Store) upsertTask(p *domain.TaskProjection) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tasks[p.TaskID] = p
	byID, ok := s.byStory[p.StoryID]
	if !ok {
		byID = make(map[uuid.UUID]*domain.TaskProjection)
		s.byStory[p.StoryID] = byID
	}
	byID[p.TaskID] = p
}

func (s *Store) deleteTask(id, storyID uuid.UUID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.tasks, id)
	if byID, ok := s.byStory[storyID]; ok {
		delete(byID, id)
	}
}

// Subscription is the minimal event source the worker consumes; satisfied
// by *eventbus.Subscription.
type Subscription interface {
	Events() <-chan domain.DomainEvent
}

// Worker drains a DomainEvent subscription and keeps a Store up to date.
// It runs until its context is cancelled or the subscription channel
// closes.
type Worker struct {
	store  *Store
	sub    Subscription
	logger *zap.Logger
}

// NewWorker builds a projection worker over the given store and event
// subscription.
func NewWorker(store *Store, sub Subscription, logger *zap.Logger) *Worker {
	return &Worker{store: store, sub: sub, logger: logger.With(zap.String("component", "projection-worker"))}
}

// Run consumes events until ctx is done or the subscription is closed.
func (w *Worker) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-w.sub.Events():
			if !ok {
				return
			}
			w.apply(ev)
		}
	}
}

func (w *Worker) apply(ev domain.DomainEvent) {
	switch ev.Type {
	case domain.EventStoryCreated, domain.EventStoryUpdated:
		if ev.Story == nil {
			w.logger.Warn("story event missing payload", zap.String("type", string(ev.Type)))
			return
		}
		existing, _ := w.store.Story(ev.Story.ID)
		taskCount := 0
		var acRefs [][]string
		var acs []domain.AcceptanceCriterion
		if existing != nil {
			taskCount = existing.TaskCount
			acRefs = existing.TaskACRefs
			acs = existing.AcceptanceCriteria
		}
		w.store.upsertStory(&domain.StoryProjection{
			StoryID:            ev.Story.ID,
			OrganizationID:     ev.Story.OrganizationID,
			Title:              ev.Story.Title,
			Description:        ev.Story.Description,
			Status:             ev.Story.Status,
			StoryPoints:        ev.Story.StoryPoints,
			AcceptanceCriteria: acs,
			TaskCount:          taskCount,
			TaskACRefs:         acRefs,
			UpdatedAt:          ev.OccurredAt,
		})
	case domain.EventStoryDeleted:
		if ev.Story != nil {
			w.store.deleteStory(ev.Story.ID)
		} else {
			w.store.deleteStory(ev.EntityID)
		}
	case domain.EventTaskCreated, domain.EventTaskUpdated:
		if ev.Task == nil {
			w.logger.Warn("task event missing payload", zap.String("type", string(ev.Type)))
			return
		}
		w.store.upsertTask(&domain.TaskProjection{
			TaskID:                 ev.Task.ID,
			StoryID:                ev.Task.StoryID,
			OrganizationID:         ev.Task.OrganizationID,
			Title:                  ev.Task.Title,
			Description:            ev.Task.Description,
			AcceptanceCriteriaRefs: ev.Task.AcceptanceCriteriaRefs,
			EstimatedHours:         ev.Task.EstimatedHours,
			Status:                 ev.Task.Status,
			UpdatedAt:              ev.OccurredAt,
		})
		w.recomputeStoryAggregate(ev.Task.StoryID)
	case domain.EventTaskDeleted:
		storyID := ev.EntityID
		if ev.Task != nil {
			storyID = ev.Task.StoryID
			w.store.deleteTask(ev.Task.ID, storyID)
		}
		w.recomputeStoryAggregate(storyID)
	}
}

func (w *Worker) recomputeStoryAggregate(storyID uuid.UUID) {
	story, ok := w.store.Story(storyID)
	if !ok {
		return
	}
	tasks := w.store.TasksForStory(storyID)
	refs := make([][]string, len(tasks))
	for i, t := range tasks {
		refs[i] = t.AcceptanceCriteriaRefs
	}
	story.TaskCount = len(tasks)
	story.TaskACRefs = refs
	w.store.upsertStory(story)
}

// SetAcceptanceCriteria updates the acceptance criteria attached to a
// story's projection. The worker does not call it (the backlog repository
// publishes no acceptance-criteria event), and no other code in this
// repository calls it either; after startup, a projection's criteria
// change only through this method.
func (s *Store) SetAcceptanceCriteria(storyID uuid.UUID, acs []domain.AcceptanceCriterion) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.stories[storyID]
	if !ok {
		return
	}
	p.AcceptanceCriteria = acs
}

// Hydrate replays the authoritative tables into the store at startup so
// the projection is consistent before the worker starts draining new
// events. Callers pass already-loaded domain objects (typically fetched
// via backlog.Repository.ListStories / ListTasksByStory per story).
func Hydrate(store *Store, stories []*domain.Story, tasksByStory map[uuid.UUID][]*domain.Task, acsByStory map[uuid.UUID][]domain.AcceptanceCriterion) {
	for _, s := range stories {
		tasks := tasksByStory[s.ID]
		refs := make([][]string, len(tasks))
		for i, t := range tasks {
			refs[i] = t.AcceptanceCriteriaRefs
			store.upsertTask(&domain.TaskProjection{
				TaskID:                 t.ID,
				StoryID:                t.StoryID,
				OrganizationID:         t.OrganizationID,
				Title:                  t.Title,
				Description:            t.Description,
				AcceptanceCriteriaRefs: t.AcceptanceCriteriaRefs,
				EstimatedHours:         t.EstimatedHours,
				Status:                 t.Status,
				UpdatedAt:              t.UpdatedAt,
			})
		}
		store.upsertStory(&domain.StoryProjection{
			StoryID:            s.ID,
			OrganizationID:     s.OrganizationID,
			Title:              s.Title,
			Description:        s.Description,
			Status:             s.Status,
			StoryPoints:        s.StoryPoints,
			AcceptanceCriteria: acsByStory[s.ID],
			TaskCount:          len(tasks),
			TaskACRefs:         refs,
			UpdatedAt:          s.UpdatedAt,
		})
	}
}
