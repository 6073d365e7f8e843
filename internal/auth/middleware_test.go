package auth

import (
	"crypto/rand"
	"crypto/rsa"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

func testVerifier(t *testing.T) (*Verifier, *rsa.PrivateKey, string) {
	t.Helper()
	priv, err := rsa.GenerateKey(rand.Reader, 2048)
	if err != nil {
		t.Fatalf("generate key: %v", err)
	}
	srv := startJWKS(t, "key-1", &priv.PublicKey)
	t.Cleanup(srv.Close)
	return NewVerifier(NewKeyCache(srv.URL, nil, time.Minute)), priv, "key-1"
}

func TestMiddlewareRejectsMissingAuthorization(t *testing.T) {
	verifier, _, _ := testVerifier(t)
	handler := Middleware(verifier)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("handler should not run without credentials")
	}))

	req := httptest.NewRequest(http.MethodGet, "/stories", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
}

func TestMiddlewareDerivesPersonalContextByDefault(t *testing.T) {
	verifier, priv, kid := testVerifier(t)
	userID := uuid.New()
	token := signToken(t, priv, kid, jwt.MapClaims{"sub": userID.String(), "exp": time.Now().Add(time.Hour).Unix()})

	var captured Principal
	handler := Middleware(verifier)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		p, ok := FromContext(r.Context())
		if !ok {
			t.Fatal("expected principal in context")
		}
		captured = p
	}))

	req := httptest.NewRequest(http.MethodGet, "/stories", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if captured.UserID != userID {
		t.Fatalf("user id mismatch")
	}
	if captured.ContextType != ContextPersonal || captured.Tenant() != nil {
		t.Fatalf("expected personal context with nil tenant, got %+v", captured)
	}
}

func TestMiddlewareRequiresOrganizationIDInOrgContext(t *testing.T) {
	verifier, priv, kid := testVerifier(t)
	token := signToken(t, priv, kid, jwt.MapClaims{"sub": uuid.New().String(), "exp": time.Now().Add(time.Hour).Unix()})

	handler := Middleware(verifier)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("handler should not run without organization id")
	}))

	req := httptest.NewRequest(http.MethodGet, "/stories", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("x-context-type", "organization")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
}

func TestMiddlewareOrganizationContextSetsTenant(t *testing.T) {
	verifier, priv, kid := testVerifier(t)
	token := signToken(t, priv, kid, jwt.MapClaims{"sub": uuid.New().String(), "exp": time.Now().Add(time.Hour).Unix()})
	orgID := uuid.New()

	var captured Principal
	handler := Middleware(verifier)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		captured, _ = FromContext(r.Context())
	}))

	req := httptest.NewRequest(http.MethodGet, "/stories", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("x-context-type", "organization")
	req.Header.Set("x-organization-id", orgID.String())
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if captured.Tenant() == nil || *captured.Tenant() != orgID {
		t.Fatalf("expected tenant %v, got %+v", orgID, captured.Tenant())
	}
}
