// Package providers holds the pluggable Embedder, CandidateSearch and LLM
// implementations for the Interpret Pipeline (internal/interpret), plus a
// name-keyed registry for each port modeled on the compute provider
// registry: callers register whichever providers a deployment has
// credentials for, then select one by name from configuration instead of
// the pipeline hardcoding a single vendor.
package providers

import (
	"errors"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/jaxxstorm/landlord/internal/interpret"
)

var (
	// ErrProviderNotFound is returned when a provider is not registered.
	ErrProviderNotFound = errors.New("interpret provider not found")

	// ErrProviderConflict is returned when registering a duplicate name.
	ErrProviderConflict = errors.New("interpret provider already registered")
)

// EmbedderRegistry is a name-keyed set of interpret.Embedder implementations.
type EmbedderRegistry struct {
	mu        sync.RWMutex
	providers map[string]interpret.Embedder
	logger    *zap.Logger
}

// NewEmbedderRegistry creates an empty registry.
func NewEmbedderRegistry(logger *zap.Logger) *EmbedderRegistry {
	return &EmbedderRegistry{providers: make(map[string]interpret.Embedder), logger: logger.With(zap.String("component", "embedder-registry"))}
}

// Register adds a provider under name, failing on a duplicate.
func (r *EmbedderRegistry) Register(name string, p interpret.Embedder) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.providers[name]; exists {
		return fmt.Errorf("%w: %s", ErrProviderConflict, name)
	}
	r.providers[name] = p
	r.logger.Info("registered embedder provider", zap.String("provider", name))
	return nil
}

// Get returns the provider registered under name.
func (r *EmbedderRegistry) Get(name string) (interpret.Embedder, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.providers[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrProviderNotFound, name)
	}
	return p, nil
}

// List returns every registered provider name.
func (r *EmbedderRegistry) List() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.providers))
	for name := range r.providers {
		names = append(names, name)
	}
	return names
}

// SearchRegistry is a name-keyed set of interpret.CandidateSearch implementations.
type SearchRegistry struct {
	mu        sync.RWMutex
	providers map[string]interpret.CandidateSearch
	logger    *zap.Logger
}

// NewSearchRegistry creates an empty registry.
func NewSearchRegistry(logger *zap.Logger) *SearchRegistry {
	return &SearchRegistry{providers: make(map[string]interpret.CandidateSearch), logger: logger.With(zap.String("component", "search-registry"))}
}

// Register adds a provider under name, failing on a duplicate.
func (r *SearchRegistry) Register(name string, p interpret.CandidateSearch) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.providers[name]; exists {
		return fmt.Errorf("%w: %s", ErrProviderConflict, name)
	}
	r.providers[name] = p
	r.logger.Info("registered candidate search provider", zap.String("provider", name))
	return nil
}

// Get returns the provider registered under name.
func (r *SearchRegistry) Get(name string) (interpret.CandidateSearch, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.providers[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrProviderNotFound, name)
	}
	return p, nil
}

// LLMRegistry is a name-keyed set of interpret.LLM implementations.
type LLMRegistry struct {
	mu        sync.RWMutex
	providers map[string]interpret.LLM
	logger    *zap.Logger
}

// NewLLMRegistry creates an empty registry.
func NewLLMRegistry(logger *zap.Logger) *LLMRegistry {
	return &LLMRegistry{providers: make(map[string]interpret.LLM), logger: logger.With(zap.String("component", "llm-registry"))}
}

// Register adds a provider under name, failing on a duplicate.
func (r *LLMRegistry) Register(name string, p interpret.LLM) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.providers[name]; exists {
		return fmt.Errorf("%w: %s", ErrProviderConflict, name)
	}
	r.providers[name] = p
	r.logger.Info("registered LLM provider", zap.String("provider", name))
	return nil
}

// Get returns the provider registered under name.
func (r *LLMRegistry) Get(name string) (interpret.LLM, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.providers[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrProviderNotFound, name)
	}
	return p, nil
}
