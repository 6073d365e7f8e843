package api

import (
	"net/http"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/jaxxstorm/landlord/internal/api/models"
	"github.com/jaxxstorm/landlord/internal/apperr"
	"github.com/jaxxstorm/landlord/internal/auth"
	"github.com/jaxxstorm/landlord/internal/domain"
	"github.com/jaxxstorm/landlord/internal/recommendation"
	"github.com/jaxxstorm/landlord/internal/taskanalyzer"
)

// handleCreateTask handles POST /v1/tasks.
func (s *Server) handleCreateTask(w http.ResponseWriter, r *http.Request) {
	var req models.CreateTaskRequest
	if err := decodeJSON(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}

	tenant := s.tenantFrom(r)
	if _, err := s.repo.GetStory(r.Context(), tenant, req.StoryID); err != nil {
		s.writeError(w, r, err)
		return
	}

	task := &domain.Task{
		ID:                     uuid.New(),
		StoryID:                req.StoryID,
		OrganizationID:         tenant,
		Title:                  req.Title,
		Description:            req.Description,
		AcceptanceCriteriaRefs: req.AcceptanceCriteriaRefs,
		Status:                 domain.TaskAvailable,
		EstimatedHours:         req.EstimatedHours,
	}
	if err := task.Validate(); err != nil {
		s.writeError(w, r, err)
		return
	}
	if err := s.repo.CreateTask(r.Context(), task); err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, models.NewTaskResponse(task))
}

// handleGetTask handles GET /v1/tasks/{id}.
func (s *Server) handleGetTask(w http.ResponseWriter, r *http.Request) {
	id, err := pathUUID(r, "id")
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	task, err := s.repo.GetTask(r.Context(), s.tenantFrom(r), id)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, models.NewTaskResponse(task))
}

// handleUpdateTask handles PUT /v1/tasks/{id}. It covers plain field
// edits only; ownership claims and status transitions go through
// POST /v1/act so they carry the atomic-claim and audit-log guarantees.
func (s *Server) handleUpdateTask(w http.ResponseWriter, r *http.Request) {
	id, err := pathUUID(r, "id")
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	var req models.UpdateTaskRequest
	if err := decodeJSON(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}

	tenant := s.tenantFrom(r)
	task, err := s.repo.GetTask(r.Context(), tenant, id)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	if req.Title != nil {
		task.Title = *req.Title
	}
	if req.Description != nil {
		task.Description = *req.Description
	}
	if req.AcceptanceCriteriaRefs != nil {
		task.AcceptanceCriteriaRefs = req.AcceptanceCriteriaRefs
	}
	if req.EstimatedHours != nil {
		task.EstimatedHours = req.EstimatedHours
	}

	if err := task.Validate(); err != nil {
		s.writeError(w, r, err)
		return
	}
	if err := s.repo.UpdateTask(r.Context(), task); err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, models.NewTaskResponse(task))
}

// handleListTasksByOwner handles GET /v1/tasks/owned: the calling
// principal's own claimed tasks.
func (s *Server) handleListTasksByOwner(w http.ResponseWriter, r *http.Request) {
	principal, ok := auth.FromContext(r.Context())
	if !ok {
		s.writeError(w, r, apperr.Unauthorized("authentication required"))
		return
	}
	tasks, err := s.repo.ListTasksByOwner(r.Context(), principal.Tenant(), principal.UserID)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, models.NewTaskResponses(tasks))
}

// handleTaskAnalysis handles GET /v1/tasks/{id}/analysis, running the
// Task Analyzer and Recommendation Generator against the task's current
// state and its story's acceptance criteria.
func (s *Server) handleTaskAnalysis(w http.ResponseWriter, r *http.Request) {
	id, err := pathUUID(r, "id")
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	tenant := s.tenantFrom(r)
	task, err := s.repo.GetTask(r.Context(), tenant, id)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	acs, err := s.repo.ListAcceptanceCriteria(r.Context(), task.StoryID)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	acValues := make([]domain.AcceptanceCriterion, 0, len(acs))
	for _, ac := range acs {
		acValues = append(acValues, *ac)
	}

	analysis := taskanalyzer.Analyze(task, acValues)
	suggestion := recommendation.Generate(task, analysis)
	if s.history != nil {
		if err := s.history.RecordAnalysis(r.Context(), id, analysis, time.Now()); err != nil {
			s.logger.Warn("failed to record task analysis", zap.Error(err))
		}
	}
	writeJSON(w, http.StatusOK, models.NewTaskAnalysisResponse(analysis, task, suggestion, acValues))
}
