package api

import (
	"encoding/json"
	"net/http"

	"go.uber.org/zap"

	"github.com/jaxxstorm/landlord/internal/apperr"
)

// decodeJSON decodes r's body into v, reporting a bad-request apperr on
// malformed JSON rather than letting the zero value silently pass through.
func decodeJSON(r *http.Request, v interface{}) error {
	defer r.Body.Close()
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return apperr.BadRequest("malformed request body: " + err.Error())
	}
	return nil
}

// writeError maps err to its apperr.Kind-derived status code and writes
// the standard error envelope. Any error that isn't an *apperr.Error is
// treated as internal, per apperr.KindOf.
func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	kind := apperr.KindOf(err)
	status := apperr.HTTPStatus(kind)
	requestID := r.Header.Get("X-Request-ID")
	if status >= 500 {
		s.logger.Error("request failed", zap.Error(err))
	}
	s.writeErrorResponse(w, status, string(kind), []string{err.Error()}, requestID)
}
