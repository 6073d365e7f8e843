// Package api provides the HTTP API server and request handlers for the
// work-item coordination engine: stories, tasks, sprints, readiness and
// clarity scoring, the Interpret/Act pipeline, and the live task
// broadcast websocket.
// @title Landlord API
// @version 1.0
// @description HTTP API for the landlord work-item coordination engine
// @basePath /v1
// @schemes http https
// @consumes application/json
// @produces application/json
package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/jaxxstorm/landlord/internal/act"
	"github.com/jaxxstorm/landlord/internal/actionvalidator"
	"github.com/jaxxstorm/landlord/internal/api/models"
	"github.com/jaxxstorm/landlord/internal/apiversion"
	"github.com/jaxxstorm/landlord/internal/auth"
	"github.com/jaxxstorm/landlord/internal/backlog"
	"github.com/jaxxstorm/landlord/internal/broadcaster"
	"github.com/jaxxstorm/landlord/internal/config"
	"github.com/jaxxstorm/landlord/internal/database"
	historypg "github.com/jaxxstorm/landlord/internal/history/postgres"
	"github.com/jaxxstorm/landlord/internal/interpret"
	"github.com/jaxxstorm/landlord/internal/logger"
	"github.com/jaxxstorm/landlord/internal/projection"
)

// Server represents the HTTP API server.
type Server struct {
	router      *chi.Mux
	server      *http.Server
	provider    database.Provider
	repo        backlog.Repository
	projections *projection.Store
	act         *act.Pipeline
	interpret   *interpret.Pipeline
	broadcaster *broadcaster.Broadcaster
	history     *historypg.Recorder
	logger      *zap.Logger
}

// WithHistory attaches the readiness/task-analysis audit-trail recorder.
// It is optional: when nil, evaluations and analyses are still computed
// and returned but not persisted.
func (s *Server) WithHistory(h *historypg.Recorder) *Server {
	s.history = h
	return s
}

// New creates a new HTTP API server wired to every collaborator needed by
// the stories/tasks/readiness/interpret/act/ws routes. verifier may be
// nil, in which case every route runs unauthenticated (used by tests that
// exercise a single handler directly).
func New(
	cfg *config.HTTPConfig,
	dbProvider database.Provider,
	repo backlog.Repository,
	projections *projection.Store,
	actPipeline *act.Pipeline,
	interpretPipeline *interpret.Pipeline,
	bcast *broadcaster.Broadcaster,
	verifier *auth.Verifier,
	log *zap.Logger,
) *Server {
	log = log.With(zap.String("component", "api"))

	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(logger.HTTPMiddleware(log))
	r.Use(logger.CorrelationIDMiddleware)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))

	srv := &Server{
		router:      r,
		provider:    dbProvider,
		repo:        repo,
		projections: projections,
		act:         actPipeline,
		interpret:   interpretPipeline,
		broadcaster: bcast,
		logger:      log,
		server: &http.Server{
			Addr:         cfg.Address(),
			Handler:      r,
			ReadTimeout:  cfg.ReadTimeout,
			WriteTimeout: cfg.WriteTimeout,
			IdleTimeout:  cfg.IdleTimeout,
		},
	}

	srv.registerRoutes(verifier)

	return srv
}

func (s *Server) registerRoutes(verifier *auth.Verifier) {
	s.router.Get("/health", s.handleHealth)
	s.router.Get("/ready", s.handleReady)

	s.router.Route("/"+apiversion.Current, func(r chi.Router) {
		r.Get("/swagger.json", s.handleSwaggerSpec)
		r.Get("/docs", s.handleDocsUI)

		r.Group(func(r chi.Router) {
			if verifier != nil {
				r.Use(auth.Middleware(verifier))
			}

			r.Route("/stories", func(r chi.Router) {
				r.Post("/", s.handleCreateStory)
				r.Get("/", s.handleListStories)
				r.Get("/{id}", s.handleGetStory)
				r.Put("/{id}", s.handleUpdateStory)
				r.Delete("/{id}", s.handleDeleteStory)
				r.Get("/{id}/readiness", s.handleStoryReadiness)
				r.Post("/{id}/acceptance-criteria", s.handleCreateAcceptanceCriterion)
				r.Get("/{id}/acceptance-criteria", s.handleListAcceptanceCriteria)
				r.Get("/{id}/tasks", s.handleListTasksByStory)
			})

			r.Route("/tasks", func(r chi.Router) {
				r.Post("/", s.handleCreateTask)
				r.Get("/owned", s.handleListTasksByOwner)
				r.Get("/{id}", s.handleGetTask)
				r.Put("/{id}", s.handleUpdateTask)
				r.Get("/{id}/analysis", s.handleTaskAnalysis)
			})

			r.Route("/sprints", func(r chi.Router) {
				r.Get("/{id}", s.handleGetSprint)
				r.Put("/{id}", s.handleUpdateSprint)
				r.Get("/{id}/tasks", s.handleListSprintTasks)
			})

			r.Post("/interpret", s.handleInterpret)
			r.Post("/act", s.handleAct)

			r.Get("/ws/tasks", s.handleTaskStream)
		})
	})

	s.router.Route("/api", func(r chi.Router) {
		r.Handle("/", http.HandlerFunc(s.handleVersionRequired))
		r.Handle("/*", http.HandlerFunc(s.handleVersionRequired))
	})

	s.router.Route("/v{version}", func(r chi.Router) {
		r.Handle("/", http.HandlerFunc(s.handleUnsupportedVersion))
		r.Handle("/*", http.HandlerFunc(s.handleUnsupportedVersion))
	})
}

// handleHealth is the liveness check endpoint.
// @Summary Health check
// @Tags health
// @Produce json
// @Success 200 {object} map[string]string
// @Router /health [get]
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status": "ok",
		"time":   time.Now().UTC().Format(time.RFC3339),
	})
}

// handleReady is the readiness check endpoint.
// @Summary Readiness check
// @Tags health
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Failure 503 {object} map[string]interface{}
// @Router /ready [get]
func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	checks := make(map[string]string)

	if err := s.provider.Health(ctx); err != nil {
		s.logger.Warn("readiness check failed: database unhealthy", zap.Error(err))
		checks["database"] = "unhealthy"
		writeJSON(w, http.StatusServiceUnavailable, map[string]interface{}{
			"status": "unavailable",
			"checks": checks,
			"error":  err.Error(),
		})
		return
	}
	checks["database"] = "healthy"

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"status": "ready",
		"checks": checks,
		"time":   time.Now().UTC().Format(time.RFC3339),
	})
}

// handleSwaggerSpec serves the generated OpenAPI specification.
func (s *Server) handleSwaggerSpec(w http.ResponseWriter, r *http.Request) {
	http.ServeFile(w, r, "docs/swagger.json")
}

// handleDocsUI serves the interactive API documentation.
func (s *Server) handleDocsUI(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	html := `<!DOCTYPE html>
<html>
<head>
  <meta charset="UTF-8">
  <meta name="viewport" content="width=device-width, initial-scale=1">
  <title>Landlord API Docs</title>
  <script src="https://cdn.redoc.ly/redoc/latest/bundles/redoc.standalone.js"></script>
</head>
<body>
  <div id="redoc-container"></div>
  <script>
    Redoc.init('/v1/swagger.json', {scrollYOffset: 50}, document.getElementById('redoc-container'));
  </script>
</body>
</html>`
	w.Write([]byte(html))
}

// Start starts the HTTP server.
func (s *Server) Start() error {
	s.logger.Info("starting HTTP server", zap.String("address", s.server.Addr))
	if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("server failed: %w", err)
	}
	return nil
}

// Shutdown gracefully shuts down the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("shutting down HTTP server")
	if err := s.server.Shutdown(ctx); err != nil {
		s.logger.Error("server shutdown failed", zap.Error(err))
		return fmt.Errorf("server shutdown failed: %w", err)
	}
	s.logger.Info("HTTP server shut down successfully")
	return nil
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func (s *Server) writeErrorResponse(w http.ResponseWriter, statusCode int, message string, details []string, requestID string) {
	writeJSON(w, statusCode, models.ErrorResponse{
		Error:     message,
		Details:   details,
		RequestID: requestID,
	})
}

func permissionsFor(r *http.Request) actionvalidator.UserPermissions {
	p, ok := auth.FromContext(r.Context())
	if !ok {
		return actionvalidator.UserPermissions{}
	}
	return p.Permissions
}
