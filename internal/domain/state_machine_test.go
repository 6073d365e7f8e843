package domain

import "testing"

func TestValidateStoryTransition(t *testing.T) {
	tests := []struct {
		name        string
		from        StoryStatus
		to          StoryStatus
		expectError bool
	}{
		{name: "draft to needs refinement", from: StoryDraft, to: StoryNeedsRefinement, expectError: false},
		{name: "needs refinement back to draft", from: StoryNeedsRefinement, to: StoryDraft, expectError: false},
		{name: "ready to committed", from: StoryReady, to: StoryCommitted, expectError: false},
		{name: "committed to in progress", from: StoryCommitted, to: StoryInProgress, expectError: false},
		{name: "accepted is terminal", from: StoryAccepted, to: StoryDraft, expectError: true},
		{name: "cannot skip committed", from: StoryReady, to: StoryInProgress, expectError: true},
		{name: "cannot go backward past ready", from: StoryCommitted, to: StoryDraft, expectError: true},
		{name: "unknown source", from: StoryStatus("bogus"), to: StoryDraft, expectError: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateStoryTransition(tt.from, tt.to)
			if tt.expectError && err == nil {
				t.Fatalf("expected error for %s -> %s, got nil", tt.from, tt.to)
			}
			if !tt.expectError && err != nil {
				t.Fatalf("expected no error for %s -> %s, got %v", tt.from, tt.to, err)
			}
		})
	}
}

func TestValidateTaskTransition(t *testing.T) {
	tests := []struct {
		name        string
		from        TaskStatus
		to          TaskStatus
		expectError bool
	}{
		{name: "available to owned", from: TaskAvailable, to: TaskOwned, expectError: false},
		{name: "owned to in progress", from: TaskOwned, to: TaskInProgress, expectError: false},
		{name: "in progress to completed", from: TaskInProgress, to: TaskCompleted, expectError: false},
		{name: "completed is terminal", from: TaskCompleted, to: TaskAvailable, expectError: true},
		{name: "cannot skip owned", from: TaskAvailable, to: TaskInProgress, expectError: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateTaskTransition(tt.from, tt.to)
			if tt.expectError && err == nil {
				t.Fatalf("expected error for %s -> %s, got nil", tt.from, tt.to)
			}
			if !tt.expectError && err != nil {
				t.Fatalf("expected no error for %s -> %s, got %v", tt.from, tt.to, err)
			}
		})
	}
}

func TestTaskRelease(t *testing.T) {
	owner := mustUUID()
	hours := 8
	now := mustNow()
	task := &Task{
		Status:         TaskInProgress,
		OwnerUserID:    &owner,
		EstimatedHours: &hours,
		OwnedAt:        &now,
	}

	task.Release()

	if task.Status != TaskAvailable {
		t.Fatalf("expected status Available, got %s", task.Status)
	}
	if task.OwnerUserID != nil {
		t.Fatalf("expected owner cleared")
	}
	if task.EstimatedHours != nil {
		t.Fatalf("expected estimate cleared")
	}
	if task.OwnedAt != nil {
		t.Fatalf("expected owned_at cleared")
	}
}

func TestCanRelease(t *testing.T) {
	if !CanRelease(TaskOwned) {
		t.Fatalf("expected Owned to be releasable")
	}
	if !CanRelease(TaskInProgress) {
		t.Fatalf("expected InProgress to be releasable")
	}
	if CanRelease(TaskAvailable) {
		t.Fatalf("expected Available to not be releasable")
	}
	if CanRelease(TaskCompleted) {
		t.Fatalf("expected Completed to not be releasable")
	}
}
