// Package backlog defines the tenant-scoped persistence contract for
// Stories, Tasks and AcceptanceCriteria, including the one
// correctness-critical operation in the whole engine: atomic single-winner
// task ownership claim.
package backlog

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/jaxxstorm/landlord/internal/domain"
)

// StoryFilters narrows ListStories results.
type StoryFilters struct {
	Statuses []domain.StoryStatus
	SprintID *uuid.UUID
	Limit    int
	Offset   int
}

// TaskFilters narrows ListTasks results.
type TaskFilters struct {
	Statuses    []domain.TaskStatus
	OwnerUserID *uuid.UUID
	Limit       int
	Offset      int
}

// Repository is the tenant-scoped persistence contract consumed by the Act
// pipeline and HTTP handlers. Every method takes the caller's organization
// id explicitly (nil means personal context) and every implementation must
// apply the tenant filter `(organization_id = ?) OR (? IS NULL AND
// organization_id IS NULL)` to both reads and writes; cross-tenant access
// always surfaces as domain/apperr.NotFound, never as a permission error.
type Repository interface {
	CreateStory(ctx context.Context, s *domain.Story) error
	GetStory(ctx context.Context, org *uuid.UUID, id uuid.UUID) (*domain.Story, error)
	UpdateStory(ctx context.Context, s *domain.Story) error
	SoftDeleteStory(ctx context.Context, org *uuid.UUID, id uuid.UUID) error
	ListStories(ctx context.Context, org *uuid.UUID, filters StoryFilters) ([]*domain.Story, error)

	CreateTask(ctx context.Context, task *domain.Task) error
	GetTask(ctx context.Context, org *uuid.UUID, id uuid.UUID) (*domain.Task, error)
	UpdateTask(ctx context.Context, task *domain.Task) error
	ListTasksByStory(ctx context.Context, org *uuid.UUID, storyID uuid.UUID, filters TaskFilters) ([]*domain.Task, error)
	ListTasksByOwner(ctx context.Context, org *uuid.UUID, owner uuid.UUID) ([]*domain.Task, error)

	// TakeTaskOwnershipAtomic sets status=Owned, owner_user_id=user,
	// owned_at=now, updated_at=now in a single conditional storage
	// operation, iff the current row has status=Available and matching
	// tenant. It returns true iff exactly one row was modified; under N
	// concurrent callers for the same task at most one call returns true.
	TakeTaskOwnershipAtomic(ctx context.Context, org *uuid.UUID, taskID, user uuid.UUID, now time.Time) (bool, error)

	CreateAcceptanceCriterion(ctx context.Context, ac *domain.AcceptanceCriterion) error
	ListAcceptanceCriteria(ctx context.Context, storyID uuid.UUID) ([]*domain.AcceptanceCriterion, error)

	GetSprint(ctx context.Context, org *uuid.UUID, id uuid.UUID) (*domain.Sprint, error)
	UpdateSprint(ctx context.Context, sprint *domain.Sprint) error
	ListSprintTasks(ctx context.Context, org *uuid.UUID, sprintID uuid.UUID, filters TaskFilters) ([]*domain.Task, error)

	AppendAuditLog(ctx context.Context, entry *domain.AuditLogEntry) error
}
