package api

import (
	"net/http"

	"github.com/jaxxstorm/landlord/internal/actionvalidator"
	"github.com/jaxxstorm/landlord/internal/api/models"
	"github.com/jaxxstorm/landlord/internal/apperr"
	"github.com/jaxxstorm/landlord/internal/auth"
	"github.com/jaxxstorm/landlord/internal/domain"
)

// handleAct handles POST /v1/act: a validated command dispatched straight
// to the Act pipeline, bypassing Interpret for callers that already know
// exactly what they want done (scripts, the CLI, a confirmed Interpret
// result echoed back by the client).
func (s *Server) handleAct(w http.ResponseWriter, r *http.Request) {
	principal, ok := auth.FromContext(r.Context())
	if !ok {
		s.writeError(w, r, apperr.Unauthorized("authentication required"))
		return
	}

	var req models.ActRequest
	if err := decodeJSON(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}

	cmd := req.ToCommand()
	lookup := repoLookup{ctx: r.Context(), repo: s.repo, tenant: principal.Tenant()}
	if err := actionvalidator.Validate(cmd, permissionsFor(r), lookup); err != nil {
		s.writeError(w, r, err)
		return
	}

	res, err := s.act.Dispatch(r.Context(), principal.Tenant(), principal.UserID, cmd)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	status := http.StatusOK
	if cmd.ActionType == domain.ActionTakeOwnership && !res.Success && !res.PartialSuccess {
		// A lost ownership claim is reported as a conflict, not as a 200.
		status = http.StatusConflict
	}
	writeJSON(w, status, models.NewActResponse(res))
}
