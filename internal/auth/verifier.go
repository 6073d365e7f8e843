package auth

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// Claims is the subset of the verified token this engine consumes. Subject
// is the only required claim; organization membership is optional and only
// used as a hint, never as the sole source of tenant scoping (that comes
// from the x-organization-id header, checked independently).
type Claims struct {
	Subject         uuid.UUID
	OrganizationIDs []uuid.UUID
	ExpiresAt       time.Time
}

// Verifier checks bearer JWTs against a KeyCache-backed JWKS.
type Verifier struct {
	keys *KeyCache
}

// NewVerifier builds a Verifier over keys.
func NewVerifier(keys *KeyCache) *Verifier {
	return &Verifier{keys: keys}
}

// Verify parses and validates tokenString, requiring RS256 and a present,
// well-formed sub claim. Expiry is enforced by the underlying jwt library.
func (v *Verifier) Verify(tokenString string) (Claims, error) {
	token, err := jwt.Parse(tokenString, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodRSA); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		kid, _ := t.Header["kid"].(string)
		if kid == "" {
			return nil, fmt.Errorf("token missing kid header")
		}
		return v.keys.Key(kid)
	}, jwt.WithValidMethods([]string{"RS256"}))
	if err != nil {
		return Claims{}, fmt.Errorf("verify token: %w", err)
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return Claims{}, fmt.Errorf("invalid token claims")
	}

	subRaw, _ := claims["sub"].(string)
	sub, err := uuid.Parse(subRaw)
	if err != nil {
		return Claims{}, fmt.Errorf("invalid sub claim: %w", err)
	}

	var orgs []uuid.UUID
	for _, raw := range organizationClaimValues(claims["organization_ids"]) {
		if id, err := uuid.Parse(raw); err == nil {
			orgs = append(orgs, id)
		}
	}

	var expiresAt time.Time
	if exp, ok := claims["exp"].(float64); ok {
		expiresAt = time.Unix(int64(exp), 0)
	}

	return Claims{Subject: sub, OrganizationIDs: orgs, ExpiresAt: expiresAt}, nil
}

func organizationClaimValues(v interface{}) []string {
	list, ok := v.([]interface{})
	if !ok {
		return nil
	}
	out := make([]string, 0, len(list))
	for _, item := range list {
		if s, ok := item.(string); ok {
			out = append(out, s)
		}
	}
	return out
}
