// Package postgres implements backlog.Repository against PostgreSQL using
// pgx, following the query-as-constant, conditional-UPDATE pattern used
// throughout this codebase's tenant repository.
package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/jaxxstorm/landlord/internal/apperr"
	"github.com/jaxxstorm/landlord/internal/backlog"
	"github.com/jaxxstorm/landlord/internal/domain"
)

// Repository implements backlog.Repository for PostgreSQL.
type Repository struct {
	pool   *pgxpool.Pool
	logger *zap.Logger
}

// New creates a PostgreSQL-backed backlog repository.
func New(pool *pgxpool.Pool, logger *zap.Logger) *Repository {
	return &Repository{
		pool:   pool,
		logger: logger.With(zap.String("component", "backlog-postgres-repository")),
	}
}

// tenantFilter renders "(organization_id = $n) OR ($n IS NULL AND
// organization_id IS NULL)" for the given placeholder position, the
// consistent tenant-scoping predicate used by every query in this file.
func tenantFilter(pos int) string {
	return fmt.Sprintf("(organization_id = $%d OR ($%d IS NULL AND organization_id IS NULL))", pos, pos)
}

const createStoryQuery = `
INSERT INTO stories (
    id, project_id, organization_id, title, description, status,
    labels, story_points, sprint_id, assigned_to_user_id, readiness_override
) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11)
RETURNING created_at, updated_at
`

func (r *Repository) CreateStory(ctx context.Context, s *domain.Story) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	row := r.pool.QueryRow(ctx, createStoryQuery,
		s.ID, s.ProjectID, s.OrganizationID, s.Title, s.Description, s.Status,
		s.Labels, s.StoryPoints, s.SprintID, s.AssignedToUserID, s.ReadinessOverride,
	)
	if err := row.Scan(&s.CreatedAt, &s.UpdatedAt); err != nil {
		return fmt.Errorf("create story: %w", err)
	}
	return nil
}

const getStoryQueryTpl = `
SELECT id, project_id, organization_id, title, description, status,
       labels, story_points, sprint_id, assigned_to_user_id, readiness_override,
       created_at, updated_at, deleted_at
FROM stories
WHERE id = $1 AND deleted_at IS NULL AND %s
`

func (r *Repository) GetStory(ctx context.Context, org *uuid.UUID, id uuid.UUID) (*domain.Story, error) {
	query := fmt.Sprintf(getStoryQueryTpl, tenantFilter(2))
	row := r.pool.QueryRow(ctx, query, id, org)
	s := &domain.Story{}
	err := row.Scan(&s.ID, &s.ProjectID, &s.OrganizationID, &s.Title, &s.Description, &s.Status,
		&s.Labels, &s.StoryPoints, &s.SprintID, &s.AssignedToUserID, &s.ReadinessOverride,
		&s.CreatedAt, &s.UpdatedAt, &s.DeletedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.NotFound("story not found")
		}
		return nil, fmt.Errorf("get story: %w", err)
	}
	return s, nil
}

const updateStoryQueryTpl = `
UPDATE stories SET
    title = $3, description = $4, status = $5, labels = $6,
    story_points = $7, sprint_id = $8, assigned_to_user_id = $9,
    readiness_override = $10, updated_at = NOW()
WHERE id = $1 AND deleted_at IS NULL AND %s
RETURNING updated_at
`

func (r *Repository) UpdateStory(ctx context.Context, s *domain.Story) error {
	query := fmt.Sprintf(updateStoryQueryTpl, tenantFilter(2))
	row := r.pool.QueryRow(ctx, query, s.ID, s.OrganizationID,
		s.Title, s.Description, s.Status, s.Labels,
		s.StoryPoints, s.SprintID, s.AssignedToUserID, s.ReadinessOverride,
	)
	if err := row.Scan(&s.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return apperr.NotFound("story not found")
		}
		return fmt.Errorf("update story: %w", err)
	}
	return nil
}

const softDeleteStoryQueryTpl = `
UPDATE stories SET deleted_at = NOW(), updated_at = NOW()
WHERE id = $1 AND deleted_at IS NULL AND %s
RETURNING id
`

func (r *Repository) SoftDeleteStory(ctx context.Context, org *uuid.UUID, id uuid.UUID) error {
	query := fmt.Sprintf(softDeleteStoryQueryTpl, tenantFilter(2))
	var deletedID uuid.UUID
	err := r.pool.QueryRow(ctx, query, id, org).Scan(&deletedID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return apperr.NotFound("story not found")
		}
		return fmt.Errorf("soft delete story: %w", err)
	}
	return nil
}

func (r *Repository) ListStories(ctx context.Context, org *uuid.UUID, filters backlog.StoryFilters) ([]*domain.Story, error) {
	query := `
SELECT id, project_id, organization_id, title, description, status,
       labels, story_points, sprint_id, assigned_to_user_id, readiness_override,
       created_at, updated_at, deleted_at
FROM stories
WHERE deleted_at IS NULL AND ` + tenantFilter(1)
	args := []interface{}{org}
	pos := 2

	if len(filters.Statuses) > 0 {
		query += fmt.Sprintf(" AND status = ANY($%d)", pos)
		args = append(args, statusStrings(filters.Statuses))
		pos++
	}
	if filters.SprintID != nil {
		query += fmt.Sprintf(" AND sprint_id = $%d", pos)
		args = append(args, *filters.SprintID)
		pos++
	}
	query += " ORDER BY created_at DESC"
	if filters.Limit > 0 {
		query += fmt.Sprintf(" LIMIT $%d", pos)
		args = append(args, filters.Limit)
		pos++
	}
	if filters.Offset > 0 {
		query += fmt.Sprintf(" OFFSET $%d", pos)
		args = append(args, filters.Offset)
	}

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list stories: %w", err)
	}
	defer rows.Close()

	var stories []*domain.Story
	for rows.Next() {
		s := &domain.Story{}
		if err := rows.Scan(&s.ID, &s.ProjectID, &s.OrganizationID, &s.Title, &s.Description, &s.Status,
			&s.Labels, &s.StoryPoints, &s.SprintID, &s.AssignedToUserID, &s.ReadinessOverride,
			&s.CreatedAt, &s.UpdatedAt, &s.DeletedAt); err != nil {
			return nil, fmt.Errorf("scan story: %w", err)
		}
		stories = append(stories, s)
	}
	return stories, rows.Err()
}

const createTaskQuery = `
INSERT INTO tasks (
    id, story_id, organization_id, title, description,
    acceptance_criteria_refs, status, owner_user_id, estimated_hours
) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)
RETURNING created_at, updated_at
`

func (r *Repository) CreateTask(ctx context.Context, task *domain.Task) error {
	if task.ID == uuid.Nil {
		task.ID = uuid.New()
	}
	row := r.pool.QueryRow(ctx, createTaskQuery,
		task.ID, task.StoryID, task.OrganizationID, task.Title, task.Description,
		task.AcceptanceCriteriaRefs, task.Status, task.OwnerUserID, task.EstimatedHours,
	)
	if err := row.Scan(&task.CreatedAt, &task.UpdatedAt); err != nil {
		return fmt.Errorf("create task: %w", err)
	}
	return nil
}

const getTaskQueryTpl = `
SELECT id, story_id, organization_id, title, description, acceptance_criteria_refs,
       status, owner_user_id, estimated_hours, created_at, updated_at, owned_at, completed_at
FROM tasks
WHERE id = $1 AND %s
`

func (r *Repository) GetTask(ctx context.Context, org *uuid.UUID, id uuid.UUID) (*domain.Task, error) {
	query := fmt.Sprintf(getTaskQueryTpl, tenantFilter(2))
	row := r.pool.QueryRow(ctx, query, id, org)
	return scanTask(row)
}

func scanTask(row pgx.Row) (*domain.Task, error) {
	t := &domain.Task{}
	err := row.Scan(&t.ID, &t.StoryID, &t.OrganizationID, &t.Title, &t.Description, &t.AcceptanceCriteriaRefs,
		&t.Status, &t.OwnerUserID, &t.EstimatedHours, &t.CreatedAt, &t.UpdatedAt, &t.OwnedAt, &t.CompletedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.NotFound("task not found")
		}
		return nil, fmt.Errorf("scan task: %w", err)
	}
	return t, nil
}

const updateTaskQueryTpl = `
UPDATE tasks SET
    title = $3, description = $4, acceptance_criteria_refs = $5, status = $6,
    owner_user_id = $7, estimated_hours = $8, owned_at = $9, completed_at = $10,
    updated_at = NOW()
WHERE id = $1 AND %s
RETURNING updated_at
`

func (r *Repository) UpdateTask(ctx context.Context, task *domain.Task) error {
	query := fmt.Sprintf(updateTaskQueryTpl, tenantFilter(2))
	row := r.pool.QueryRow(ctx, query, task.ID, task.OrganizationID,
		task.Title, task.Description, task.AcceptanceCriteriaRefs, task.Status,
		task.OwnerUserID, task.EstimatedHours, task.OwnedAt, task.CompletedAt,
	)
	if err := row.Scan(&task.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return apperr.NotFound("task not found")
		}
		return fmt.Errorf("update task: %w", err)
	}
	return nil
}

func (r *Repository) ListTasksByStory(ctx context.Context, org *uuid.UUID, storyID uuid.UUID, filters backlog.TaskFilters) ([]*domain.Task, error) {
	query := `
SELECT id, story_id, organization_id, title, description, acceptance_criteria_refs,
       status, owner_user_id, estimated_hours, created_at, updated_at, owned_at, completed_at
FROM tasks
WHERE story_id = $1 AND ` + tenantFilter(2)
	args := []interface{}{storyID, org}
	pos := 3
	if len(filters.Statuses) > 0 {
		query += fmt.Sprintf(" AND status = ANY($%d)", pos)
		args = append(args, taskStatusStrings(filters.Statuses))
		pos++
	}
	query += " ORDER BY created_at ASC"
	return r.queryTasks(ctx, query, args...)
}

func (r *Repository) ListTasksByOwner(ctx context.Context, org *uuid.UUID, owner uuid.UUID) ([]*domain.Task, error) {
	query := `
SELECT id, story_id, organization_id, title, description, acceptance_criteria_refs,
       status, owner_user_id, estimated_hours, created_at, updated_at, owned_at, completed_at
FROM tasks
WHERE owner_user_id = $1 AND ` + tenantFilter(2) + `
ORDER BY owned_at ASC`
	return r.queryTasks(ctx, query, owner, org)
}

func (r *Repository) ListSprintTasks(ctx context.Context, org *uuid.UUID, sprintID uuid.UUID, filters backlog.TaskFilters) ([]*domain.Task, error) {
	query := `
SELECT t.id, t.story_id, t.organization_id, t.title, t.description, t.acceptance_criteria_refs,
       t.status, t.owner_user_id, t.estimated_hours, t.created_at, t.updated_at, t.owned_at, t.completed_at
FROM tasks t
JOIN stories s ON s.id = t.story_id
WHERE s.sprint_id = $1 AND ` + tenantFilterOn("t", 2)
	args := []interface{}{sprintID, org}
	pos := 3
	if len(filters.Statuses) > 0 {
		query += fmt.Sprintf(" AND t.status = ANY($%d)", pos)
		args = append(args, taskStatusStrings(filters.Statuses))
		pos++
	}
	query += " ORDER BY t.created_at ASC"
	return r.queryTasks(ctx, query, args...)
}

func tenantFilterOn(alias string, pos int) string {
	return fmt.Sprintf("(%s.organization_id = $%d OR ($%d IS NULL AND %s.organization_id IS NULL))", alias, pos, pos, alias)
}

func (r *Repository) queryTasks(ctx context.Context, query string, args ...interface{}) ([]*domain.Task, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}
	defer rows.Close()

	var tasks []*domain.Task
	for rows.Next() {
		t := &domain.Task{}
		if err := rows.Scan(&t.ID, &t.StoryID, &t.OrganizationID, &t.Title, &t.Description, &t.AcceptanceCriteriaRefs,
			&t.Status, &t.OwnerUserID, &t.EstimatedHours, &t.CreatedAt, &t.UpdatedAt, &t.OwnedAt, &t.CompletedAt); err != nil {
			return nil, fmt.Errorf("scan task: %w", err)
		}
		tasks = append(tasks, t)
	}
	return tasks, rows.Err()
}

// takeTaskOwnershipQueryTpl is the heart of P1 (single-winner): a single
// conditional UPDATE that only matches a row currently Available in the
// caller's tenant. Under N concurrent callers the database guarantees at
// most one UPDATE matches a row, because the WHERE clause re-checks
// status=Available against the committed row, not a value read earlier in
// the same transaction.
const takeTaskOwnershipQueryTpl = `
UPDATE tasks SET
    status = 'owned', owner_user_id = $3, owned_at = $4, updated_at = $4
WHERE id = $1 AND status = 'available' AND %s
RETURNING id
`

func (r *Repository) TakeTaskOwnershipAtomic(ctx context.Context, org *uuid.UUID, taskID, user uuid.UUID, now time.Time) (bool, error) {
	query := fmt.Sprintf(takeTaskOwnershipQueryTpl, tenantFilter(2))
	var wonID uuid.UUID
	err := r.pool.QueryRow(ctx, query, taskID, org, user, now).Scan(&wonID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			// Either the task doesn't exist/isn't in this tenant, or
			// another caller already won the race. Either way, false.
			r.logger.Debug("ownership claim lost or not applicable",
				zap.String("task_id", taskID.String()), zap.String("user_id", user.String()))
			return false, nil
		}
		return false, fmt.Errorf("take task ownership: %w", err)
	}
	return true, nil
}

const createACQuery = `
INSERT INTO acceptance_criteria (id, story_id, ac_id, given_clause, when_clause, then_clause)
VALUES ($1,$2,$3,$4,$5,$6)
RETURNING created_at, updated_at
`

func (r *Repository) CreateAcceptanceCriterion(ctx context.Context, ac *domain.AcceptanceCriterion) error {
	if ac.ID == uuid.Nil {
		ac.ID = uuid.New()
	}
	row := r.pool.QueryRow(ctx, createACQuery, ac.ID, ac.StoryID, ac.ACID, ac.Given, ac.When, ac.Then)
	if err := row.Scan(&ac.CreatedAt, &ac.UpdatedAt); err != nil {
		if isUniqueViolation(err) {
			return apperr.Conflict(fmt.Sprintf("acceptance criterion %q already exists for this story", ac.ACID))
		}
		return fmt.Errorf("create acceptance criterion: %w", err)
	}
	return nil
}

const listACQuery = `
SELECT id, story_id, ac_id, given_clause, when_clause, then_clause, created_at, updated_at
FROM acceptance_criteria
WHERE story_id = $1
ORDER BY ac_id ASC
`

func (r *Repository) ListAcceptanceCriteria(ctx context.Context, storyID uuid.UUID) ([]*domain.AcceptanceCriterion, error) {
	rows, err := r.pool.Query(ctx, listACQuery, storyID)
	if err != nil {
		return nil, fmt.Errorf("list acceptance criteria: %w", err)
	}
	defer rows.Close()

	var acs []*domain.AcceptanceCriterion
	for rows.Next() {
		ac := &domain.AcceptanceCriterion{}
		if err := rows.Scan(&ac.ID, &ac.StoryID, &ac.ACID, &ac.Given, &ac.When, &ac.Then, &ac.CreatedAt, &ac.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan acceptance criterion: %w", err)
		}
		acs = append(acs, ac)
	}
	return acs, rows.Err()
}

const getSprintQueryTpl = `
SELECT id, organization_id, name, status, capacity_points, committed_points,
       starts_at, ends_at, created_at, updated_at
FROM sprints
WHERE id = $1 AND %s
`

func (r *Repository) GetSprint(ctx context.Context, org *uuid.UUID, id uuid.UUID) (*domain.Sprint, error) {
	query := fmt.Sprintf(getSprintQueryTpl, tenantFilter(2))
	row := r.pool.QueryRow(ctx, query, id, org)
	s := &domain.Sprint{}
	err := row.Scan(&s.ID, &s.OrganizationID, &s.Name, &s.Status, &s.CapacityPoints, &s.CommittedPoints,
		&s.StartsAt, &s.EndsAt, &s.CreatedAt, &s.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.NotFound("sprint not found")
		}
		return nil, fmt.Errorf("get sprint: %w", err)
	}
	return s, nil
}

const updateSprintQueryTpl = `
UPDATE sprints SET
    name = $3, status = $4, capacity_points = $5, committed_points = $6,
    starts_at = $7, ends_at = $8, updated_at = NOW()
WHERE id = $1 AND %s
RETURNING updated_at
`

func (r *Repository) UpdateSprint(ctx context.Context, sprint *domain.Sprint) error {
	query := fmt.Sprintf(updateSprintQueryTpl, tenantFilter(2))
	row := r.pool.QueryRow(ctx, query, sprint.ID, sprint.OrganizationID,
		sprint.Name, sprint.Status, sprint.CapacityPoints, sprint.CommittedPoints,
		sprint.StartsAt, sprint.EndsAt,
	)
	if err := row.Scan(&sprint.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return apperr.NotFound("sprint not found")
		}
		return fmt.Errorf("update sprint: %w", err)
	}
	return nil
}

const appendAuditLogQuery = `
INSERT INTO audit_log (
    id, organization_id, user_id, action_type, target_entities,
    parameters, success, error_message, duration_ms, rollback_token
) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)
RETURNING created_at
`

func (r *Repository) AppendAuditLog(ctx context.Context, entry *domain.AuditLogEntry) error {
	if entry.ID == uuid.Nil {
		entry.ID = uuid.New()
	}
	params, err := json.Marshal(entry.Parameters)
	if err != nil {
		return fmt.Errorf("marshal audit parameters: %w", err)
	}
	row := r.pool.QueryRow(ctx, appendAuditLogQuery,
		entry.ID, entry.TenantID, entry.UserID, entry.ActionType, entry.TargetEntities,
		params, entry.Success, nullableString(entry.ErrorMessage), entry.Duration.Milliseconds(), entry.RollbackToken,
	)
	if err := row.Scan(&entry.CreatedAt); err != nil {
		return fmt.Errorf("append audit log: %w", err)
	}
	return nil
}

func nullableString(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func statusStrings(statuses []domain.StoryStatus) []string {
	out := make([]string, len(statuses))
	for i, s := range statuses {
		out[i] = string(s)
	}
	return out
}

func taskStatusStrings(statuses []domain.TaskStatus) []string {
	out := make([]string, len(statuses))
	for i, s := range statuses {
		out[i] = string(s)
	}
	return out
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
