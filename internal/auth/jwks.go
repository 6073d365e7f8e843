// Package auth verifies bearer JWTs against a remote JWKS and derives the
// tenant context (§6: organization scoping) and capability flags an
// authenticated request carries for the rest of the engine.
package auth

import (
	"crypto/rsa"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"math/big"
	"net/http"
	"sync"
	"time"
)

// jwk is the subset of RFC 7517 fields this engine needs: RSA public keys
// tagged with a key id.
type jwk struct {
	Kty string `json:"kty"`
	Kid string `json:"kid"`
	N   string `json:"n"`
	E   string `json:"e"`
}

type jwksDocument struct {
	Keys []jwk `json:"keys"`
}

// KeyCache fetches and caches RSA public keys from a remote JWKS endpoint,
// keyed by kid. A single RWMutex guards the cached key set only long
// enough to swap it in on refresh, never around the verification path, so
// concurrent token verification never blocks on a slow refresh.
type KeyCache struct {
	url        string
	httpClient *http.Client
	ttl        time.Duration

	mu        sync.RWMutex
	keys      map[string]*rsa.PublicKey
	fetchedAt time.Time
}

// DefaultRefreshInterval is how long a fetched key set is trusted before
// the next lookup triggers a refresh.
const DefaultRefreshInterval = 15 * time.Minute

// NewKeyCache creates a KeyCache against the given JWKS URL. A zero ttl
// falls back to DefaultRefreshInterval.
func NewKeyCache(url string, httpClient *http.Client, ttl time.Duration) *KeyCache {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 5 * time.Second}
	}
	if ttl <= 0 {
		ttl = DefaultRefreshInterval
	}
	return &KeyCache{url: url, httpClient: httpClient, ttl: ttl, keys: make(map[string]*rsa.PublicKey)}
}

// Key returns the RSA public key for kid, refreshing from the JWKS
// endpoint if the cache is stale or the key is unknown.
func (c *KeyCache) Key(kid string) (*rsa.PublicKey, error) {
	c.mu.RLock()
	key, ok := c.keys[kid]
	stale := time.Since(c.fetchedAt) > c.ttl
	c.mu.RUnlock()

	if ok && !stale {
		return key, nil
	}
	if err := c.refresh(); err != nil {
		if ok {
			// Serve the stale key rather than fail a request outright when
			// the JWKS endpoint is transiently unreachable.
			return key, nil
		}
		return nil, err
	}

	c.mu.RLock()
	defer c.mu.RUnlock()
	key, ok = c.keys[kid]
	if !ok {
		return nil, fmt.Errorf("unknown key id %q", kid)
	}
	return key, nil
}

func (c *KeyCache) refresh() error {
	req, err := http.NewRequest(http.MethodGet, c.url, nil)
	if err != nil {
		return fmt.Errorf("build jwks request: %w", err)
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("fetch jwks: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("jwks endpoint returned status %d", resp.StatusCode)
	}

	var doc jwksDocument
	if err := json.NewDecoder(resp.Body).Decode(&doc); err != nil {
		return fmt.Errorf("decode jwks: %w", err)
	}

	keys := make(map[string]*rsa.PublicKey, len(doc.Keys))
	for _, k := range doc.Keys {
		if k.Kty != "RSA" || k.Kid == "" {
			continue
		}
		pub, err := rsaPublicKeyFromJWK(k)
		if err != nil {
			continue
		}
		keys[k.Kid] = pub
	}

	c.mu.Lock()
	c.keys = keys
	c.fetchedAt = time.Now()
	c.mu.Unlock()
	return nil
}

func rsaPublicKeyFromJWK(k jwk) (*rsa.PublicKey, error) {
	n, err := base64URLBigInt(k.N)
	if err != nil {
		return nil, fmt.Errorf("decode modulus: %w", err)
	}
	e, err := base64URLBigInt(k.E)
	if err != nil {
		return nil, fmt.Errorf("decode exponent: %w", err)
	}
	return &rsa.PublicKey{N: n, E: int(e.Int64())}, nil
}

func base64URLBigInt(s string) (*big.Int, error) {
	b, err := base64.RawURLEncoding.DecodeString(s)
	if err != nil {
		return nil, err
	}
	return new(big.Int).SetBytes(b), nil
}
