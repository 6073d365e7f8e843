package domain

import (
	"time"

	"github.com/google/uuid"
)

// EventType tags the kind of domain change carried by a DomainEvent.
type EventType string

const (
	EventStoryCreated  EventType = "story_created"
	EventStoryUpdated  EventType = "story_updated"
	EventStoryDeleted  EventType = "story_deleted"
	EventTaskCreated   EventType = "task_created"
	EventTaskUpdated   EventType = "task_updated"
	EventTaskDeleted   EventType = "task_deleted"
	EventSprintCreated EventType = "sprint_created"
	EventSprintUpdated EventType = "sprint_updated"
	EventSprintDeleted EventType = "sprint_deleted"
)

// DomainEvent is the payload broadcast on the event bus after a commit.
// Exactly one of Story/Task/Sprint is populated, matching Type.
type DomainEvent struct {
	Type           EventType  `json:"type"`
	EntityID       uuid.UUID  `json:"entity_id"`
	OrganizationID *uuid.UUID `json:"organization_id,omitempty"`
	Story          *Story     `json:"story,omitempty"`
	Task           *Task      `json:"task,omitempty"`
	Sprint         *Sprint    `json:"sprint,omitempty"`
	OccurredAt     time.Time  `json:"occurred_at"`
}

// NewStoryEvent builds a DomainEvent for a story lifecycle change.
func NewStoryEvent(t EventType, s *Story) DomainEvent {
	return DomainEvent{
		Type:           t,
		EntityID:       s.ID,
		OrganizationID: s.OrganizationID,
		Story:          s,
		OccurredAt:     time.Now(),
	}
}

// NewTaskEvent builds a DomainEvent for a task lifecycle change.
func NewTaskEvent(t EventType, task *Task) DomainEvent {
	return DomainEvent{
		Type:           t,
		EntityID:       task.ID,
		OrganizationID: task.OrganizationID,
		Task:           task,
		OccurredAt:     time.Now(),
	}
}

// NewSprintEvent builds a DomainEvent for a sprint lifecycle change.
func NewSprintEvent(t EventType, sprint *Sprint) DomainEvent {
	return DomainEvent{
		Type:           t,
		EntityID:       sprint.ID,
		OrganizationID: sprint.OrganizationID,
		Sprint:         sprint,
		OccurredAt:     time.Now(),
	}
}

// TaskEventType is the closed set of events the broadcaster (C12) emits to
// live subscribers after a successful task mutation, distinct from the
// internal DomainEvent bus.
type TaskEventType string

const (
	TaskEventOwnershipTaken     TaskEventType = "ownership_taken"
	TaskEventOwnershipReleased TaskEventType = "ownership_released"
	TaskEventStatusChanged     TaskEventType = "status_changed"
)

// TaskEvent is the JSON-serializable, tagged payload delivered over
// /ws/tasks for one successful task mutation.
type TaskEvent struct {
	Type        TaskEventType `json:"type"`
	TaskID      uuid.UUID     `json:"task_id"`
	StoryID     uuid.UUID     `json:"story_id"`
	ActorUserID uuid.UUID     `json:"actor_user_id"`
	Timestamp   time.Time     `json:"timestamp"`
	OldStatus   TaskStatus    `json:"old_status,omitempty"`
	NewStatus   TaskStatus    `json:"new_status,omitempty"`
}
