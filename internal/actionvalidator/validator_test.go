package actionvalidator

import (
	"testing"

	"github.com/google/uuid"

	"github.com/jaxxstorm/landlord/internal/apperr"
	"github.com/jaxxstorm/landlord/internal/domain"
)

func fullPerms() UserPermissions {
	return UserPermissions{
		CanUpdateStory: true, CanAssignTask: true, CanManageOwnership: true,
		CanCreateItems: true, CanArchive: true, CanManageSprints: true, CanComment: true,
	}
}

func TestValidateRejectsEmptyTargetsExceptCreate(t *testing.T) {
	cmd := domain.ActionCommand{ActionType: domain.ActionUpdateStatus, Parameters: map[string]any{"new_status": "Ready"}}
	if err := Validate(cmd, fullPerms(), MapLookup{}); apperr.KindOf(err) != apperr.KindBadRequest {
		t.Fatalf("expected bad request for empty targets, got %v", err)
	}

	createCmd := domain.ActionCommand{ActionType: domain.ActionCreateTask, Parameters: map[string]any{"title": "x"}}
	if err := Validate(createCmd, fullPerms(), MapLookup{}); err != nil {
		t.Fatalf("expected CreateTask to allow empty targets, got %v", err)
	}
}

func TestValidateTenantIsolationReturnsNotFound(t *testing.T) {
	id := uuid.New()
	cmd := domain.ActionCommand{ActionType: domain.ActionUpdateStatus, TargetEntities: []uuid.UUID{id}, Parameters: map[string]any{"new_status": "Ready"}}
	if err := Validate(cmd, fullPerms(), MapLookup{}); apperr.KindOf(err) != apperr.KindNotFound {
		t.Fatalf("expected not found for unresolvable target, got %v", err)
	}
}

func TestValidateCompatibilityTable(t *testing.T) {
	id := uuid.New()
	lookup := MapLookup{id: {ID: id, EntityType: "task"}}
	cmd := domain.ActionCommand{ActionType: domain.ActionUpdateStatus, TargetEntities: []uuid.UUID{id}, Parameters: map[string]any{"new_status": "Ready"}}
	if err := Validate(cmd, fullPerms(), lookup); apperr.KindOf(err) != apperr.KindBadRequest {
		t.Fatalf("expected bad request when UpdateStatus targets a task, got %v", err)
	}
}

func TestValidateMoveToSprintAcceptsStoryOrTask(t *testing.T) {
	storyID, taskID := uuid.New(), uuid.New()
	lookup := MapLookup{
		storyID: {ID: storyID, EntityType: "story"},
		taskID:  {ID: taskID, EntityType: "task"},
	}
	cmd := domain.ActionCommand{
		ActionType:     domain.ActionMoveToSprint,
		TargetEntities: []uuid.UUID{storyID, taskID},
		Parameters:     map[string]any{"sprint_id": "s1"},
	}
	if err := Validate(cmd, fullPerms(), lookup); err != nil {
		t.Fatalf("expected move_to_sprint over story+task to pass, got %v", err)
	}
}

func TestValidateParameterRanges(t *testing.T) {
	id := uuid.New()
	lookup := MapLookup{id: {ID: id, EntityType: "story"}}

	cases := []struct {
		name string
		cmd  domain.ActionCommand
	}{
		{"bad priority", domain.ActionCommand{ActionType: domain.ActionUpdatePriority, TargetEntities: []uuid.UUID{id}, Parameters: map[string]any{"priority": 6}}},
		{"bad status", domain.ActionCommand{ActionType: domain.ActionUpdateStatus, TargetEntities: []uuid.UUID{id}, Parameters: map[string]any{"new_status": "Bogus"}}},
		{"empty comment", domain.ActionCommand{ActionType: domain.ActionAddComment, TargetEntities: []uuid.UUID{id}, Parameters: map[string]any{"comment": ""}}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if err := Validate(tc.cmd, fullPerms(), lookup); apperr.KindOf(err) != apperr.KindBadRequest {
				t.Fatalf("expected bad request, got %v", err)
			}
		})
	}
}

func TestValidatePermissionDenied(t *testing.T) {
	id := uuid.New()
	lookup := MapLookup{id: {ID: id, EntityType: "story"}}
	cmd := domain.ActionCommand{ActionType: domain.ActionArchive, TargetEntities: []uuid.UUID{id}}
	if err := Validate(cmd, UserPermissions{}, lookup); apperr.KindOf(err) != apperr.KindPermissionDenied {
		t.Fatalf("expected permission denied, got %v", err)
	}
}
