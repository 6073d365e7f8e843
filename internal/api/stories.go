package api

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/jaxxstorm/landlord/internal/api/models"
	"github.com/jaxxstorm/landlord/internal/apperr"
	"github.com/jaxxstorm/landlord/internal/auth"
	"github.com/jaxxstorm/landlord/internal/backlog"
	"github.com/jaxxstorm/landlord/internal/domain"
	"github.com/jaxxstorm/landlord/internal/readiness"
)

func (s *Server) tenantFrom(r *http.Request) *uuid.UUID {
	p, ok := auth.FromContext(r.Context())
	if !ok {
		return nil
	}
	return p.Tenant()
}

func pathUUID(r *http.Request, param string) (uuid.UUID, error) {
	id, err := uuid.Parse(chi.URLParam(r, param))
	if err != nil {
		return uuid.UUID{}, apperr.BadRequest("invalid " + param)
	}
	return id, nil
}

// handleCreateStory handles POST /v1/stories.
func (s *Server) handleCreateStory(w http.ResponseWriter, r *http.Request) {
	var req models.CreateStoryRequest
	if err := decodeJSON(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}

	story := &domain.Story{
		ID:             uuid.New(),
		ProjectID:      req.ProjectID,
		OrganizationID: s.tenantFrom(r),
		Title:          req.Title,
		Description:    req.Description,
		Status:         domain.StoryDraft,
		Labels:         req.Labels,
		StoryPoints:    req.StoryPoints,
	}
	if err := story.Validate(); err != nil {
		s.writeError(w, r, err)
		return
	}
	if err := s.repo.CreateStory(r.Context(), story); err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, models.NewStoryResponse(story))
}

// handleListStories handles GET /v1/stories.
func (s *Server) handleListStories(w http.ResponseWriter, r *http.Request) {
	filters := backlog.StoryFilters{
		Limit:  queryInt(r, "limit", 50),
		Offset: queryInt(r, "offset", 0),
	}
	if status := r.URL.Query().Get("status"); status != "" {
		filters.Statuses = []domain.StoryStatus{domain.StoryStatus(status)}
	}
	if sprintID := r.URL.Query().Get("sprintId"); sprintID != "" {
		id, err := uuid.Parse(sprintID)
		if err != nil {
			s.writeError(w, r, apperr.BadRequest("invalid sprintId"))
			return
		}
		filters.SprintID = &id
	}

	stories, err := s.repo.ListStories(r.Context(), s.tenantFrom(r), filters)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, models.NewStoryResponses(stories))
}

// handleGetStory handles GET /v1/stories/{id}.
func (s *Server) handleGetStory(w http.ResponseWriter, r *http.Request) {
	id, err := pathUUID(r, "id")
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	story, err := s.repo.GetStory(r.Context(), s.tenantFrom(r), id)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, models.NewStoryResponse(story))
}

// handleUpdateStory handles PUT /v1/stories/{id}.
func (s *Server) handleUpdateStory(w http.ResponseWriter, r *http.Request) {
	id, err := pathUUID(r, "id")
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	var req models.UpdateStoryRequest
	if err := decodeJSON(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}

	tenant := s.tenantFrom(r)
	story, err := s.repo.GetStory(r.Context(), tenant, id)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	if req.Title != nil {
		story.Title = *req.Title
	}
	if req.Description != nil {
		story.Description = *req.Description
	}
	if req.Labels != nil {
		story.Labels = req.Labels
	}
	if req.StoryPoints != nil {
		story.StoryPoints = req.StoryPoints
	}
	if req.SprintID != nil {
		story.SprintID = req.SprintID
	}
	if req.Status != nil {
		if !story.Status.CanTransition(*req.Status) {
			s.writeError(w, r, apperr.InvalidTransition("cannot transition story from "+string(story.Status)+" to "+string(*req.Status)))
			return
		}
		story.Status = *req.Status
	}

	if err := story.Validate(); err != nil {
		s.writeError(w, r, err)
		return
	}
	if err := s.repo.UpdateStory(r.Context(), story); err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, models.NewStoryResponse(story))
}

// handleDeleteStory handles DELETE /v1/stories/{id}.
func (s *Server) handleDeleteStory(w http.ResponseWriter, r *http.Request) {
	id, err := pathUUID(r, "id")
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if err := s.repo.SoftDeleteStory(r.Context(), s.tenantFrom(r), id); err != nil {
		s.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// handleCreateAcceptanceCriterion handles
// POST /v1/stories/{id}/acceptance-criteria.
func (s *Server) handleCreateAcceptanceCriterion(w http.ResponseWriter, r *http.Request) {
	storyID, err := pathUUID(r, "id")
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	var req models.CreateAcceptanceCriterionRequest
	if err := decodeJSON(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}

	if _, err := s.repo.GetStory(r.Context(), s.tenantFrom(r), storyID); err != nil {
		s.writeError(w, r, err)
		return
	}

	ac := &domain.AcceptanceCriterion{
		ID:      uuid.New(),
		StoryID: storyID,
		ACID:    req.ACID,
		Given:   req.Given,
		When:    req.When,
		Then:    req.Then,
	}
	if err := ac.Validate(); err != nil {
		s.writeError(w, r, err)
		return
	}
	if err := s.repo.CreateAcceptanceCriterion(r.Context(), ac); err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, models.NewAcceptanceCriterionResponse(ac))
}

// handleListAcceptanceCriteria handles
// GET /v1/stories/{id}/acceptance-criteria.
func (s *Server) handleListAcceptanceCriteria(w http.ResponseWriter, r *http.Request) {
	storyID, err := pathUUID(r, "id")
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	acs, err := s.repo.ListAcceptanceCriteria(r.Context(), storyID)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, models.NewAcceptanceCriterionResponses(acs))
}

// handleListTasksByStory handles GET /v1/stories/{id}/tasks.
func (s *Server) handleListTasksByStory(w http.ResponseWriter, r *http.Request) {
	storyID, err := pathUUID(r, "id")
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	filters := backlog.TaskFilters{
		Limit:  queryInt(r, "limit", 50),
		Offset: queryInt(r, "offset", 0),
	}
	if status := r.URL.Query().Get("status"); status != "" {
		filters.Statuses = []domain.TaskStatus{domain.TaskStatus(status)}
	}
	tasks, err := s.repo.ListTasksByStory(r.Context(), s.tenantFrom(r), storyID, filters)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, models.NewTaskResponses(tasks))
}

// handleStoryReadiness handles GET /v1/stories/{id}/readiness, evaluating
// the story's current projection on demand.
func (s *Server) handleStoryReadiness(w http.ResponseWriter, r *http.Request) {
	storyID, err := pathUUID(r, "id")
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	projection, ok := s.projections.Story(storyID)
	if !ok {
		s.writeError(w, r, apperr.NotFound("story projection not found"))
		return
	}
	acs, err := s.repo.ListAcceptanceCriteria(r.Context(), storyID)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	acValues := make([]domain.AcceptanceCriterion, 0, len(acs))
	for _, ac := range acs {
		acValues = append(acValues, *ac)
	}

	eval := readiness.Score(projection, acValues, time.Now())
	if s.history != nil {
		if err := s.history.RecordReadiness(r.Context(), storyID, eval); err != nil {
			s.logger.Warn("failed to record readiness evaluation", zap.Error(err))
		}
	}
	writeJSON(w, http.StatusOK, models.NewReadinessResponse(eval))
}

func queryInt(r *http.Request, key string, def int) int {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return def
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		return def
	}
	return n
}
