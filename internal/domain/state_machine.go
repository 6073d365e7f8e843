package domain

import "fmt"

// ValidateStoryTransition checks if a story status transition is valid,
// returning an *apperr.Error (InvalidStateTransition) when it is not.
func ValidateStoryTransition(from, to StoryStatus) error {
	if !from.IsValid() {
		return apperrTransition(fmt.Sprintf("unknown source status: %s", from))
	}
	if !to.IsValid() {
		return apperrTransition(fmt.Sprintf("unknown target status: %s", to))
	}
	if !from.CanTransition(to) {
		return apperrTransition(fmt.Sprintf("invalid transition from %s to %s", from, to))
	}
	return nil
}

// ValidateTaskTransition checks if a task status transition is valid. The
// release operation (Owned|InProgress -> Available) is handled by
// Task.Release and is not part of this forward-only graph.
func ValidateTaskTransition(from, to TaskStatus) error {
	if !from.IsValid() {
		return apperrTransition(fmt.Sprintf("unknown source status: %s", from))
	}
	if !to.IsValid() {
		return apperrTransition(fmt.Sprintf("unknown target status: %s", to))
	}
	if !from.CanTransition(to) {
		return apperrTransition(fmt.Sprintf("invalid transition from %s to %s", from, to))
	}
	return nil
}

// CanRelease reports whether a task in the given status may be released
// back to Available.
func CanRelease(status TaskStatus) bool {
	return status == TaskOwned || status == TaskInProgress
}
