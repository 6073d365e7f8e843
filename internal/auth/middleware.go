package auth

import (
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/jaxxstorm/landlord/internal/apperr"
)

const (
	headerOrganizationID = "x-organization-id"
	headerContextType    = "x-context-type"
)

// Middleware returns chi-compatible middleware that verifies the request's
// bearer token against verifier and derives the tenant context from the
// x-organization-id/x-context-type headers, per §6: absent or invalid
// credentials fail with 401 before the handler runs.
func Middleware(verifier *Verifier) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			principal, err := authenticate(r, verifier)
			if err != nil {
				writeUnauthorized(w, err)
				return
			}
			next.ServeHTTP(w, r.WithContext(WithPrincipal(r.Context(), principal)))
		})
	}
}

func authenticate(r *http.Request, verifier *Verifier) (Principal, error) {
	token, err := bearerToken(r)
	if err != nil {
		return Principal{}, err
	}

	claims, err := verifier.Verify(token)
	if err != nil {
		return Principal{}, apperr.Unauthorized("invalid bearer token")
	}

	contextType := ContextType(strings.ToLower(r.Header.Get(headerContextType)))
	if contextType == "" {
		contextType = ContextPersonal
	}
	if contextType != ContextPersonal && contextType != ContextOrganization {
		return Principal{}, apperr.Unauthorized("invalid x-context-type")
	}

	var orgID *uuid.UUID
	if raw := r.Header.Get(headerOrganizationID); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			return Principal{}, apperr.Unauthorized("invalid x-organization-id")
		}
		orgID = &id
	}
	if contextType == ContextOrganization && orgID == nil {
		return Principal{}, apperr.Unauthorized("x-organization-id required for organization context")
	}

	return Principal{
		UserID:         claims.Subject,
		OrganizationID: orgID,
		ContextType:    contextType,
		Permissions:    fullPermissions(),
	}, nil
}

func bearerToken(r *http.Request) (string, error) {
	header := r.Header.Get("Authorization")
	if header == "" {
		return "", apperr.Unauthorized("missing Authorization header")
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") || parts[1] == "" {
		return "", apperr.Unauthorized("Authorization header must be a Bearer token")
	}
	return parts[1], nil
}

func writeUnauthorized(w http.ResponseWriter, err error) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(apperr.HTTPStatus(apperr.KindOf(err)))
	_, _ = w.Write([]byte(`{"error":"` + err.Error() + `"}`))
}
