package domain

import (
	"time"

	"github.com/google/uuid"
)

// SprintStatus represents a sprint's monotonic-forward lifecycle, grounded
// on the auth-gateway sprint entity of the original implementation.
type SprintStatus string

const (
	SprintPlanning  SprintStatus = "planning"
	SprintActive    SprintStatus = "active"
	SprintReview    SprintStatus = "review"
	SprintCompleted SprintStatus = "completed"
)

var sprintOrder = map[SprintStatus]int{
	SprintPlanning:  0,
	SprintActive:    1,
	SprintReview:    2,
	SprintCompleted: 3,
}

// CanTransition reports whether moving from s to target advances exactly
// one step forward; skipping a step or moving backward is rejected.
func (s SprintStatus) CanTransition(target SprintStatus) bool {
	from, ok := sprintOrder[s]
	if !ok {
		return false
	}
	to, ok := sprintOrder[target]
	if !ok {
		return false
	}
	return to == from+1
}

// Sprint is the collaborator entity referenced by Story.SprintID.
type Sprint struct {
	ID              uuid.UUID    `json:"id"`
	OrganizationID  *uuid.UUID   `json:"organization_id,omitempty"`
	Name            string       `json:"name"`
	Status          SprintStatus `json:"status"`
	CapacityPoints  int          `json:"capacity_points"`
	CommittedPoints int          `json:"committed_points"`
	StartsAt        *time.Time   `json:"starts_at,omitempty"`
	EndsAt          *time.Time   `json:"ends_at,omitempty"`
	CreatedAt       time.Time    `json:"created_at"`
	UpdatedAt       time.Time    `json:"updated_at"`
}

// Validate enforces capacity and committed-points invariants.
func (s *Sprint) Validate() error {
	if s.CapacityPoints <= 0 {
		return apperrSprintCapacity
	}
	if s.CommittedPoints > s.CapacityPoints {
		return apperrSprintOverflow
	}
	return nil
}

// HasRoom reports whether adding points more story points keeps the sprint
// within capacity.
func (s *Sprint) HasRoom(points int) bool {
	return s.CommittedPoints+points <= s.CapacityPoints
}
