package api

import (
	"net/http"

	"github.com/jaxxstorm/landlord/internal/api/models"
	"github.com/jaxxstorm/landlord/internal/apperr"
	"github.com/jaxxstorm/landlord/internal/auth"
	"github.com/jaxxstorm/landlord/internal/interpret"
)

// handleInterpret handles POST /v1/interpret: natural-language utterance
// in, parsed intent and tenant-scoped candidates out. It never mutates
// state; the caller confirms separately via POST /v1/act.
func (s *Server) handleInterpret(w http.ResponseWriter, r *http.Request) {
	principal, ok := auth.FromContext(r.Context())
	if !ok {
		s.writeError(w, r, apperr.Unauthorized("authentication required"))
		return
	}

	var req models.InterpretRequest
	if err := decodeJSON(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	if req.Utterance == "" {
		s.writeError(w, r, apperr.BadRequest("utterance must not be empty"))
		return
	}

	res, err := s.interpret.Interpret(r.Context(), interpret.Request{
		UserID:      principal.UserID,
		Tenant:      principal.Tenant(),
		Utterance:   req.Utterance,
		Limit:       req.Limit,
		EntityTypes: req.EntityTypes,
		DisableLLM:  req.DisableLLM,
	})
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, models.NewInterpretResponse(res))
}
