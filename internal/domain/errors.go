package domain

import "github.com/jaxxstorm/landlord/internal/apperr"

var (
	errTitleEmpty       = apperr.BadRequest("title must not be empty")
	errTitleTooLong     = apperr.BadRequest("title must be at most 255 characters")
	errInvalidStatus    = apperr.BadRequest("invalid status")
	errStoryPointsRange = apperr.BadRequest("story points must be between 1 and 8")
	errEstimateRange    = apperr.BadRequest("estimated hours must be between 1 and 40")

	apperrTaskOwnerMismatch      = apperr.Internal("owner_user_id must be set iff status requires ownership", nil)
	apperrTaskOwnedAtMismatch    = apperr.Internal("owned_at must be set iff owner_user_id is set", nil)
	apperrTaskCompletedAtMismatch = apperr.Internal("completed_at must be set iff status is completed", nil)
)

func apperrTransition(msg string) error {
	return apperr.InvalidTransition(msg)
}

var (
	apperrACIDEmpty      = apperr.BadRequest("ac_id must not be empty")
	apperrACClauseEmpty  = apperr.BadRequest("given, when and then must each be non-empty")
	apperrSprintCapacity = apperr.BadRequest("capacity_points must be greater than zero")
	apperrSprintOverflow = apperr.BadRequest("committed_points must not exceed capacity_points")
)
