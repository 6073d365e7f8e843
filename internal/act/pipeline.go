// Package act implements the Act Pipeline (C10): dispatches a validated
// ActionCommand to the backlog repository, publishes the resulting
// DomainEvent and TaskEvent, and records an audit log entry for every
// attempt, success or failure. It never performs the validation itself
// (see internal/actionvalidator) and never retries or rolls back a
// partially-applied multi-target action; it only records the rollback
// token an operator would need to do that by hand.
package act

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/jaxxstorm/landlord/internal/apperr"
	"github.com/jaxxstorm/landlord/internal/backlog"
	"github.com/jaxxstorm/landlord/internal/domain"
	"github.com/jaxxstorm/landlord/internal/readiness"
)

// EventPublisher is the narrow slice of eventbus.Bus the pipeline needs.
type EventPublisher interface {
	Publish(domain.DomainEvent)
}

// TaskBroadcaster is the narrow slice of broadcaster.Broadcaster the
// pipeline needs.
type TaskBroadcaster interface {
	Broadcast(domain.TaskEvent)
}

// ProjectionSource resolves a story's current read-model projection for
// the MoveToSprint readiness precheck, satisfied by *projection.Store.
type ProjectionSource interface {
	Story(id uuid.UUID) (*domain.StoryProjection, bool)
}

// TargetResult is the per-target outcome of dispatching one action.
type TargetResult struct {
	TargetID uuid.UUID `json:"target_id"`
	Success  bool      `json:"success"`
	Error    string    `json:"error,omitempty"`
}

// Result is the overall outcome of one Dispatch call.
type Result struct {
	Success        bool           `json:"success"`
	PartialSuccess bool           `json:"partial_success"`
	Results        []TargetResult `json:"results"`
	RollbackToken  *uuid.UUID     `json:"rollback_token,omitempty"`
}

// Pipeline wires the Act stage's collaborators together.
type Pipeline struct {
	Repo         backlog.Repository
	Events       EventPublisher
	Broadcast    TaskBroadcaster
	Projections  ProjectionSource
	Now          func() time.Time
}

// New builds a Pipeline with a real-time clock.
func New(repo backlog.Repository, events EventPublisher, broadcast TaskBroadcaster, projections ProjectionSource) *Pipeline {
	return &Pipeline{Repo: repo, Events: events, Broadcast: broadcast, Projections: projections, Now: time.Now}
}

// statusParamToStory maps the Action Validator's four-way status
// vocabulary onto the full StoryStatus graph. "InReview" has no direct
// counterpart in the canonical state graph (§4.1 draws no review state);
// it is mapped to TasksComplete, the state a story sits in while its
// tasks are done and it awaits deployment review, which is the closest
// analog and keeps the mapping total.
var statusParamToStory = map[string]domain.StoryStatus{
	"Ready":      domain.StoryReady,
	"InProgress": domain.StoryInProgress,
	"InReview":   domain.StoryTasksComplete,
	"Done":       domain.StoryAccepted,
}

// Dispatch runs the validated command's mutation(s), aggregates
// per-target results, and always appends an audit log entry before
// returning, matching §4.8's "every action logs audit with duration"
// requirement even when Dispatch itself returns an error.
func (p *Pipeline) Dispatch(ctx context.Context, tenant *uuid.UUID, user uuid.UUID, cmd domain.ActionCommand) (Result, error) {
	start := p.Now()
	res, dispatchErr := p.dispatch(ctx, tenant, user, cmd)

	entry := &domain.AuditLogEntry{
		TenantID:       tenant,
		UserID:         user,
		ActionType:     cmd.ActionType,
		TargetEntities: cmd.TargetEntities,
		Parameters:     cmd.Parameters,
		Success:        res.Success && dispatchErr == nil,
		Duration:       p.Now().Sub(start),
	}
	if dispatchErr != nil {
		entry.ErrorMessage = dispatchErr.Error()
	}
	if !entry.Success {
		token := uuid.New()
		res.RollbackToken = &token
		entry.RollbackToken = &token
	}
	if err := p.Repo.AppendAuditLog(ctx, entry); err != nil {
		// Audit failures never mask the underlying dispatch result: a
		// dispatch error is returned as-is, and an audit failure is
		// returned as the error only when the dispatch itself succeeded.
		if dispatchErr == nil {
			dispatchErr = fmt.Errorf("dispatch succeeded but audit log failed: %w", err)
		}
	}
	return res, dispatchErr
}

func (p *Pipeline) dispatch(ctx context.Context, tenant *uuid.UUID, user uuid.UUID, cmd domain.ActionCommand) (Result, error) {
	switch cmd.ActionType {
	case domain.ActionCreateTask:
		return p.createTask(ctx, tenant, cmd)
	case domain.ActionCreateStory:
		return p.createStory(ctx, tenant, cmd)
	}

	var results []TargetResult
	for _, target := range cmd.TargetEntities {
		err := p.dispatchOne(ctx, tenant, user, cmd, target)
		tr := TargetResult{TargetID: target, Success: err == nil}
		if err != nil {
			tr.Error = err.Error()
		}
		results = append(results, tr)
	}
	return summarize(results), nil
}

func summarize(results []TargetResult) Result {
	succeeded := 0
	for _, r := range results {
		if r.Success {
			succeeded++
		}
	}
	return Result{
		Success:        succeeded == len(results) && len(results) > 0,
		PartialSuccess: succeeded > 0 && succeeded < len(results),
		Results:        results,
	}
}

func (p *Pipeline) dispatchOne(ctx context.Context, tenant *uuid.UUID, user uuid.UUID, cmd domain.ActionCommand, target uuid.UUID) error {
	switch cmd.ActionType {
	case domain.ActionUpdateStatus:
		return p.updateStatus(ctx, tenant, target, cmd.Parameters)
	case domain.ActionAssignUser:
		return p.assignUser(ctx, tenant, target, cmd.Parameters)
	case domain.ActionTakeOwnership:
		return p.takeOwnership(ctx, tenant, user, target)
	case domain.ActionReleaseOwnership:
		return p.releaseOwnership(ctx, tenant, user, target)
	case domain.ActionStartWork:
		return p.startWork(ctx, tenant, user, target)
	case domain.ActionCompleteTask:
		return p.completeTask(ctx, tenant, user, target)
	case domain.ActionUpdatePriority:
		return p.updatePriority(ctx, tenant, target, cmd.Parameters)
	case domain.ActionMoveToSprint:
		return p.moveToSprint(ctx, tenant, target, cmd.Parameters)
	case domain.ActionArchive:
		return p.archive(ctx, tenant, target)
	case domain.ActionAddComment:
		// AddComment has no dedicated entity in the data model; this
		// engine records the attempt via audit only, matching the
		// original's treatment of comments as the least-built corner of
		// the Act pipeline.
		return nil
	default:
		return apperr.BadRequest(fmt.Sprintf("unsupported action type %s", cmd.ActionType))
	}
}

func (p *Pipeline) updateStatus(ctx context.Context, tenant *uuid.UUID, storyID uuid.UUID, params map[string]any) error {
	target, _ := params["new_status"].(string)
	newStatus, ok := statusParamToStory[target]
	if !ok {
		return apperr.BadRequest(fmt.Sprintf("unknown new_status %q", target))
	}
	story, err := p.Repo.GetStory(ctx, tenant, storyID)
	if err != nil {
		return err
	}
	if !story.Status.CanTransition(newStatus) {
		return apperr.InvalidTransition(fmt.Sprintf("cannot transition story from %s to %s", story.Status, newStatus))
	}
	story.Status = newStatus
	if err := p.Repo.UpdateStory(ctx, story); err != nil {
		return err
	}
	p.publishStory(domain.EventStoryUpdated, story)
	return nil
}

func (p *Pipeline) assignUser(ctx context.Context, tenant *uuid.UUID, taskID uuid.UUID, params map[string]any) error {
	raw, _ := params["assignee_user_id"].(string)
	assignee, err := uuid.Parse(raw)
	if err != nil {
		return apperr.BadRequest("assignee_user_id must be a valid uuid")
	}
	task, err := p.Repo.GetTask(ctx, tenant, taskID)
	if err != nil {
		return err
	}
	oldStatus := task.Status
	task.OwnerUserID = &assignee
	if task.Status == domain.TaskAvailable {
		task.Status = domain.TaskOwned
		now := p.Now()
		task.OwnedAt = &now
	}
	if err := p.Repo.UpdateTask(ctx, task); err != nil {
		return err
	}
	p.publishTask(domain.EventTaskUpdated, task)
	p.broadcastStatusChange(task, assignee, oldStatus)
	return nil
}

func (p *Pipeline) takeOwnership(ctx context.Context, tenant *uuid.UUID, user uuid.UUID, taskID uuid.UUID) error {
	now := p.Now()
	won, err := p.Repo.TakeTaskOwnershipAtomic(ctx, tenant, taskID, user, now)
	if err != nil {
		return err
	}
	if !won {
		return apperr.Conflict("task ownership already claimed")
	}
	task, err := p.Repo.GetTask(ctx, tenant, taskID)
	if err != nil {
		return err
	}
	p.publishTask(domain.EventTaskUpdated, task)
	if p.Broadcast != nil {
		p.Broadcast.Broadcast(domain.TaskEvent{
			Type: domain.TaskEventOwnershipTaken, TaskID: task.ID, StoryID: task.StoryID,
			ActorUserID: user, Timestamp: now, NewStatus: task.Status,
		})
	}
	return nil
}

func (p *Pipeline) releaseOwnership(ctx context.Context, tenant *uuid.UUID, user uuid.UUID, taskID uuid.UUID) error {
	task, err := p.Repo.GetTask(ctx, tenant, taskID)
	if err != nil {
		return err
	}
	if task.OwnerUserID == nil || *task.OwnerUserID != user {
		return apperr.PermissionDenied("only the current owner may release a task")
	}
	oldStatus := task.Status
	task.Release()
	if err := p.Repo.UpdateTask(ctx, task); err != nil {
		return err
	}
	p.publishTask(domain.EventTaskUpdated, task)
	if p.Broadcast != nil {
		p.Broadcast.Broadcast(domain.TaskEvent{
			Type: domain.TaskEventOwnershipReleased, TaskID: task.ID, StoryID: task.StoryID,
			ActorUserID: user, Timestamp: p.Now(), OldStatus: oldStatus, NewStatus: task.Status,
		})
	}
	return nil
}

func (p *Pipeline) startWork(ctx context.Context, tenant *uuid.UUID, user uuid.UUID, taskID uuid.UUID) error {
	task, err := p.Repo.GetTask(ctx, tenant, taskID)
	if err != nil {
		return err
	}
	if task.OwnerUserID == nil || *task.OwnerUserID != user {
		return apperr.PermissionDenied("only the task owner may start work")
	}
	if !task.Status.CanTransition(domain.TaskInProgress) {
		return apperr.InvalidTransition(fmt.Sprintf("cannot start work from status %s", task.Status))
	}
	oldStatus := task.Status
	task.Status = domain.TaskInProgress
	if err := p.Repo.UpdateTask(ctx, task); err != nil {
		return err
	}
	p.publishTask(domain.EventTaskUpdated, task)
	p.broadcastStatusChange(task, user, oldStatus)
	return nil
}

func (p *Pipeline) completeTask(ctx context.Context, tenant *uuid.UUID, user uuid.UUID, taskID uuid.UUID) error {
	task, err := p.Repo.GetTask(ctx, tenant, taskID)
	if err != nil {
		return err
	}
	if task.OwnerUserID == nil || *task.OwnerUserID != user {
		return apperr.PermissionDenied("only the task owner may complete the task")
	}
	if !task.Status.CanTransition(domain.TaskCompleted) {
		return apperr.InvalidTransition(fmt.Sprintf("cannot complete task from status %s", task.Status))
	}
	oldStatus := task.Status
	now := p.Now()
	task.Status = domain.TaskCompleted
	task.CompletedAt = &now
	if err := p.Repo.UpdateTask(ctx, task); err != nil {
		return err
	}
	p.publishTask(domain.EventTaskUpdated, task)
	p.broadcastStatusChange(task, user, oldStatus)
	return nil
}

// priorityLabelPrefix namespaces the priority value stored on
// Story.Labels, since the data model has no dedicated priority field.
const priorityLabelPrefix = "priority:"

func (p *Pipeline) updatePriority(ctx context.Context, tenant *uuid.UUID, storyID uuid.UUID, params map[string]any) error {
	priority, err := paramInt(params["priority"])
	if err != nil || priority < 1 || priority > 5 {
		return apperr.BadRequest("priority must be an integer between 1 and 5")
	}
	story, err := p.Repo.GetStory(ctx, tenant, storyID)
	if err != nil {
		return err
	}
	labels := make([]string, 0, len(story.Labels)+1)
	for _, l := range story.Labels {
		if !strings.HasPrefix(l, priorityLabelPrefix) {
			labels = append(labels, l)
		}
	}
	story.Labels = append(labels, priorityLabelPrefix+strconv.Itoa(priority))
	if err := p.Repo.UpdateStory(ctx, story); err != nil {
		return err
	}
	p.publishStory(domain.EventStoryUpdated, story)
	return nil
}

func paramInt(v interface{}) (int, error) {
	switch n := v.(type) {
	case int:
		return n, nil
	case int64:
		return int(n), nil
	case float64:
		return int(n), nil
	default:
		return 0, fmt.Errorf("not a number: %v", v)
	}
}

// moveToSprint implements the supplemented readiness precheck: a story
// target is moved only if it is ready; a task target resolves to its
// parent story, since only stories carry a sprint_id in the data model.
// Readiness is scored only when a projection store is set and holds a
// projection of the story; otherwise the move is not checked for readiness.
func (p *Pipeline) moveToSprint(ctx context.Context, tenant *uuid.UUID, target uuid.UUID, params map[string]any) error {
	raw, _ := params["sprint_id"].(string)
	sprintID, err := uuid.Parse(raw)
	if err != nil {
		return apperr.BadRequest("sprint_id must be a valid uuid")
	}

	story, err := p.Repo.GetStory(ctx, tenant, target)
	if err != nil {
		task, taskErr := p.Repo.GetTask(ctx, tenant, target)
		if taskErr != nil {
			return err
		}
		story, err = p.Repo.GetStory(ctx, tenant, task.StoryID)
		if err != nil {
			return err
		}
	}

	if p.Projections != nil {
		proj, ok := p.Projections.Story(story.ID)
		if ok {
			acs, acErr := p.Repo.ListAcceptanceCriteria(ctx, story.ID)
			if acErr != nil {
				return acErr
			}
			domainACs := make([]domain.AcceptanceCriterion, len(acs))
			for i, ac := range acs {
				domainACs[i] = *ac
			}
			eval := readiness.Score(proj, domainACs, p.Now())
			if !eval.IsReady {
				msgs := make([]string, len(eval.MissingItems))
				for i, m := range eval.MissingItems {
					msgs[i] = m.Message
				}
				return apperr.BadRequest("story is not ready for sprint: " + strings.Join(msgs, "; "))
			}
		}
	}

	sprint, err := p.Repo.GetSprint(ctx, tenant, sprintID)
	if err != nil {
		return err
	}
	if story.StoryPoints != nil && !sprint.HasRoom(*story.StoryPoints) {
		return apperr.BadRequest("sprint does not have capacity for this story")
	}

	story.SprintID = &sprintID
	if err := p.Repo.UpdateStory(ctx, story); err != nil {
		return err
	}
	if story.StoryPoints != nil {
		sprint.CommittedPoints += *story.StoryPoints
		if err := p.Repo.UpdateSprint(ctx, sprint); err != nil {
			return err
		}
	}
	p.publishStory(domain.EventStoryUpdated, story)
	return nil
}

func (p *Pipeline) archive(ctx context.Context, tenant *uuid.UUID, storyID uuid.UUID) error {
	if err := p.Repo.SoftDeleteStory(ctx, tenant, storyID); err != nil {
		return err
	}
	p.Events.Publish(domain.DomainEvent{
		Type: domain.EventStoryDeleted, EntityID: storyID, OrganizationID: tenant, OccurredAt: p.Now(),
	})
	return nil
}

func (p *Pipeline) createTask(ctx context.Context, tenant *uuid.UUID, cmd domain.ActionCommand) (Result, error) {
	title, _ := cmd.Parameters["title"].(string)
	if strings.TrimSpace(title) == "" {
		return Result{}, apperr.BadRequest("title is required")
	}
	task := &domain.Task{
		OrganizationID: tenant,
		Title:          title,
		Status:         domain.TaskAvailable,
	}
	if desc, ok := cmd.Parameters["description"].(string); ok {
		task.Description = desc
	}
	if len(cmd.TargetEntities) > 0 {
		task.StoryID = cmd.TargetEntities[0]
	}
	if task.StoryID == uuid.Nil {
		return Result{}, apperr.BadRequest("create_task requires a story target")
	}
	if err := task.Validate(); err != nil {
		return Result{}, err
	}
	if err := p.Repo.CreateTask(ctx, task); err != nil {
		return Result{}, err
	}
	p.publishTask(domain.EventTaskCreated, task)
	return Result{Success: true, Results: []TargetResult{{TargetID: task.ID, Success: true}}}, nil
}

func (p *Pipeline) createStory(ctx context.Context, tenant *uuid.UUID, cmd domain.ActionCommand) (Result, error) {
	title, _ := cmd.Parameters["title"].(string)
	if strings.TrimSpace(title) == "" {
		return Result{}, apperr.BadRequest("title is required")
	}
	projectRaw, _ := cmd.Parameters["project_id"].(string)
	projectID, err := uuid.Parse(projectRaw)
	if err != nil {
		return Result{}, apperr.BadRequest("project_id must be a valid uuid")
	}
	story := &domain.Story{
		ProjectID:      projectID,
		OrganizationID: tenant,
		Title:          title,
		Status:         domain.StoryDraft,
	}
	if desc, ok := cmd.Parameters["description"].(string); ok {
		story.Description = desc
	}
	if err := story.Validate(); err != nil {
		return Result{}, err
	}
	if err := p.Repo.CreateStory(ctx, story); err != nil {
		return Result{}, err
	}
	p.publishStory(domain.EventStoryCreated, story)
	return Result{Success: true, Results: []TargetResult{{TargetID: story.ID, Success: true}}}, nil
}

func (p *Pipeline) publishStory(t domain.EventType, s *domain.Story) {
	if p.Events != nil {
		p.Events.Publish(domain.NewStoryEvent(t, s))
	}
}

func (p *Pipeline) publishTask(t domain.EventType, task *domain.Task) {
	if p.Events != nil {
		p.Events.Publish(domain.NewTaskEvent(t, task))
	}
}

func (p *Pipeline) broadcastStatusChange(task *domain.Task, actor uuid.UUID, oldStatus domain.TaskStatus) {
	if p.Broadcast == nil {
		return
	}
	p.Broadcast.Broadcast(domain.TaskEvent{
		Type: domain.TaskEventStatusChanged, TaskID: task.ID, StoryID: task.StoryID,
		ActorUserID: actor, Timestamp: p.Now(), OldStatus: oldStatus, NewStatus: task.Status,
	})
}
