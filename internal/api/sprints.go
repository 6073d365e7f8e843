package api

import (
	"net/http"

	"github.com/jaxxstorm/landlord/internal/api/models"
	"github.com/jaxxstorm/landlord/internal/apperr"
	"github.com/jaxxstorm/landlord/internal/backlog"
	"github.com/jaxxstorm/landlord/internal/domain"
)

// handleGetSprint handles GET /v1/sprints/{id}.
func (s *Server) handleGetSprint(w http.ResponseWriter, r *http.Request) {
	id, err := pathUUID(r, "id")
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	sprint, err := s.repo.GetSprint(r.Context(), s.tenantFrom(r), id)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, models.NewSprintResponse(sprint))
}

// handleUpdateSprint handles PUT /v1/sprints/{id}, including the
// monotonic-forward status transition check.
func (s *Server) handleUpdateSprint(w http.ResponseWriter, r *http.Request) {
	id, err := pathUUID(r, "id")
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	var req models.UpdateSprintRequest
	if err := decodeJSON(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}

	tenant := s.tenantFrom(r)
	sprint, err := s.repo.GetSprint(r.Context(), tenant, id)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	if req.Name != nil {
		sprint.Name = *req.Name
	}
	if req.CapacityPoints != nil {
		sprint.CapacityPoints = *req.CapacityPoints
	}
	if req.CommittedPoints != nil {
		sprint.CommittedPoints = *req.CommittedPoints
	}
	if req.StartsAt != nil {
		sprint.StartsAt = req.StartsAt
	}
	if req.EndsAt != nil {
		sprint.EndsAt = req.EndsAt
	}
	if req.Status != nil {
		if !sprint.Status.CanTransition(*req.Status) {
			s.writeError(w, r, apperr.InvalidTransition("cannot transition sprint from "+string(sprint.Status)+" to "+string(*req.Status)))
			return
		}
		sprint.Status = *req.Status
	}

	if err := sprint.Validate(); err != nil {
		s.writeError(w, r, err)
		return
	}
	if err := s.repo.UpdateSprint(r.Context(), sprint); err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, models.NewSprintResponse(sprint))
}

// handleListSprintTasks handles GET /v1/sprints/{id}/tasks, the sprint
// board view, optionally filtered by status.
func (s *Server) handleListSprintTasks(w http.ResponseWriter, r *http.Request) {
	sprintID, err := pathUUID(r, "id")
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	filters := backlog.TaskFilters{
		Limit:  queryInt(r, "limit", 100),
		Offset: queryInt(r, "offset", 0),
	}
	if status := r.URL.Query().Get("status"); status != "" {
		filters.Statuses = []domain.TaskStatus{domain.TaskStatus(status)}
	}
	tasks, err := s.repo.ListSprintTasks(r.Context(), s.tenantFrom(r), sprintID, filters)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, models.NewTaskResponses(tasks))
}
