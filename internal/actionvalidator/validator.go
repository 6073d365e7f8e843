// Package actionvalidator implements the Action Validator (C9): the gate
// every ActionCommand must pass before the Act Pipeline (C10) is allowed
// to dispatch it. It enforces basic shape, tenant isolation against the
// candidate set computed during interpretation, the action/entity
// compatibility table, per-action parameter requirements, and permission
// checks, in that order, so the first violation found is the one
// reported.
package actionvalidator

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/jaxxstorm/landlord/internal/apperr"
	"github.com/jaxxstorm/landlord/internal/domain"
)

// UserPermissions are the capability flags an authenticated caller
// carries, consulted by the permission check below. The zero value
// denies every mutating action.
type UserPermissions struct {
	CanUpdateStory    bool
	CanAssignTask     bool
	CanManageOwnership bool
	CanCreateItems    bool
	CanArchive        bool
	CanManageSprints  bool
	CanComment        bool
}

// requiredPermission maps an ActionType to the single capability flag
// that must be set for a caller to perform it.
var requiredPermission = map[domain.ActionType]func(UserPermissions) bool{
	domain.ActionUpdateStatus:     func(p UserPermissions) bool { return p.CanUpdateStory },
	domain.ActionUpdatePriority:   func(p UserPermissions) bool { return p.CanUpdateStory },
	domain.ActionAssignUser:      func(p UserPermissions) bool { return p.CanAssignTask },
	domain.ActionTakeOwnership:    func(p UserPermissions) bool { return p.CanManageOwnership },
	domain.ActionReleaseOwnership: func(p UserPermissions) bool { return p.CanManageOwnership },
	domain.ActionStartWork:        func(p UserPermissions) bool { return p.CanManageOwnership },
	domain.ActionCompleteTask:     func(p UserPermissions) bool { return p.CanManageOwnership },
	domain.ActionCreateTask:       func(p UserPermissions) bool { return p.CanCreateItems },
	domain.ActionCreateStory:      func(p UserPermissions) bool { return p.CanCreateItems },
	domain.ActionArchive:          func(p UserPermissions) bool { return p.CanArchive },
	domain.ActionMoveToSprint:     func(p UserPermissions) bool { return p.CanManageSprints },
	domain.ActionAddComment:       func(p UserPermissions) bool { return p.CanComment },
}

// entityCompatibility is the action/entity-type compatibility table from
// §4.8: a nil entry means the action accepts any entity_type.
var entityCompatibility = map[domain.ActionType]string{
	domain.ActionUpdateStatus: "story",
	domain.ActionAssignUser:   "task",
	domain.ActionArchive:      "story",
}

// moveToSprintTypes is the only action whose compatibility rule is a set
// rather than a single type.
var moveToSprintTypes = map[string]bool{"story": true, "task": true}

// CandidateLookup resolves an entity id to the tenant-scoped candidate
// that grounds it, the same candidate set produced by the Interpret
// Pipeline's search step. A miss (id not found, or found in a different
// tenant) must be treated identically: apperr.NotFound, never a
// permission error, so cross-tenant targets never leak their existence.
type CandidateLookup interface {
	Lookup(id uuid.UUID) (domain.CandidateEntity, bool)
}

// MapLookup is the simplest CandidateLookup: a pre-filtered map of
// candidates already scoped to the caller's tenant, as produced by the
// Interpret Pipeline's candidate-search step.
type MapLookup map[uuid.UUID]domain.CandidateEntity

func (m MapLookup) Lookup(id uuid.UUID) (domain.CandidateEntity, bool) {
	c, ok := m[id]
	return c, ok
}

// requiredParameters lists, per ActionType, the parameter keys that must
// be present (value validation for the keys that have one is in
// validateParameterValues below).
var requiredParameters = map[domain.ActionType][]string{
	domain.ActionUpdateStatus:   {"new_status"},
	domain.ActionAssignUser:     {"assignee_user_id"},
	domain.ActionUpdatePriority: {"priority"},
	domain.ActionMoveToSprint:   {"sprint_id"},
	domain.ActionAddComment:     {"comment"},
	domain.ActionCreateTask:     {"title"},
	domain.ActionCreateStory:    {"title"},
}

var validStatusParams = map[string]bool{"Ready": true, "InProgress": true, "InReview": true, "Done": true}

// Validate runs the full §4.8 gate over cmd for the given tenant and
// caller permissions, using lookup to resolve target ids to
// tenant-scoped candidates.
func Validate(cmd domain.ActionCommand, perms UserPermissions, lookup CandidateLookup) error {
	if err := validateShape(cmd); err != nil {
		return err
	}
	if err := validateTenantIsolation(cmd, lookup); err != nil {
		return err
	}
	if err := validateCompatibility(cmd, lookup); err != nil {
		return err
	}
	if err := validateParameters(cmd); err != nil {
		return err
	}
	if err := validatePermissions(cmd, perms); err != nil {
		return err
	}
	return nil
}

func validateShape(cmd domain.ActionCommand) error {
	if len(cmd.TargetEntities) == 0 && !cmd.ActionType.AllowsEmptyTargets() {
		return apperr.BadRequest(fmt.Sprintf("%s requires at least one target entity", cmd.ActionType))
	}
	return nil
}

// validateTenantIsolation reports apperr.NotFound, never a permission
// error, for any target that doesn't resolve to a candidate in the
// caller's tenant: this is the existence-leakage boundary (P2).
func validateTenantIsolation(cmd domain.ActionCommand, lookup CandidateLookup) error {
	for _, id := range cmd.TargetEntities {
		if _, ok := lookup.Lookup(id); !ok {
			return apperr.NotFound("target entity not found")
		}
	}
	return nil
}

func validateCompatibility(cmd domain.ActionCommand, lookup CandidateLookup) error {
	if cmd.ActionType == domain.ActionMoveToSprint {
		for _, id := range cmd.TargetEntities {
			c, _ := lookup.Lookup(id)
			if !moveToSprintTypes[c.EntityType] {
				return apperr.BadRequest(fmt.Sprintf("move_to_sprint cannot target entity type %q", c.EntityType))
			}
		}
		return nil
	}
	want, ok := entityCompatibility[cmd.ActionType]
	if !ok {
		return nil
	}
	for _, id := range cmd.TargetEntities {
		c, _ := lookup.Lookup(id)
		if c.EntityType != want {
			return apperr.BadRequest(fmt.Sprintf("%s cannot target entity type %q, expected %q", cmd.ActionType, c.EntityType, want))
		}
	}
	return nil
}

func validateParameters(cmd domain.ActionCommand) error {
	for _, key := range requiredParameters[cmd.ActionType] {
		v, ok := cmd.Parameters[key]
		if !ok || v == nil || v == "" {
			return apperr.BadRequest(fmt.Sprintf("%s requires parameter %q", cmd.ActionType, key))
		}
	}
	return validateParameterValues(cmd)
}

func validateParameterValues(cmd domain.ActionCommand) error {
	switch cmd.ActionType {
	case domain.ActionUpdateStatus:
		status, _ := cmd.Parameters["new_status"].(string)
		if !validStatusParams[status] {
			return apperr.BadRequest(fmt.Sprintf("new_status must be one of Ready, InProgress, InReview, Done, got %q", status))
		}
	case domain.ActionUpdatePriority:
		priority, err := paramInt(cmd.Parameters["priority"])
		if err != nil || priority < 1 || priority > 5 {
			return apperr.BadRequest("priority must be an integer between 1 and 5")
		}
	case domain.ActionAddComment:
		comment, _ := cmd.Parameters["comment"].(string)
		if comment == "" {
			return apperr.BadRequest("comment must be non-empty")
		}
	case domain.ActionCreateTask, domain.ActionCreateStory:
		title, _ := cmd.Parameters["title"].(string)
		if title == "" || len(title) > 200 {
			return apperr.BadRequest("title must be between 1 and 200 characters")
		}
	}
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

func validatePermissions(cmd domain.ActionCommand, perms UserPermissions) error {
	check, ok := requiredPermission[cmd.ActionType]
	if !ok {
		return nil
	}
	if !check(perms) {
		return apperr.PermissionDenied(fmt.Sprintf("caller lacks permission for %s", cmd.ActionType))
	}
	return nil
}
