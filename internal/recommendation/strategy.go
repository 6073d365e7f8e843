package recommendation

import (
	"errors"
	"fmt"
	"sort"
	"sync"

	"go.uber.org/zap"

	"github.com/jaxxstorm/landlord/internal/domain"
	"github.com/jaxxstorm/landlord/internal/taskanalyzer"
)

// ErrStrategyConflict is returned by Register when a strategy name is
// already registered.
var ErrStrategyConflict = errors.New("recommendation strategy already registered")

// ErrStrategyNotFound is returned by Get/Registry lookups for an unknown
// strategy name.
var ErrStrategyNotFound = errors.New("recommendation strategy not found")

// Strategy produces a Suggestion for a task, given its clarity analysis.
// The default strategy is the bucket-aware Generate function in this
// package; callers can register alternate strategies (for example, one
// that calls out to an LLM for free-form suggestions) and select between
// them per organization.
type Strategy interface {
	Name() string
	Suggest(task *domain.Task, analysis taskanalyzer.Analysis) Suggestion
}

// bucketStrategy wraps the package-level Generate function as the default,
// always-available Strategy.
type bucketStrategy struct{}

func (bucketStrategy) Name() string { return "bucket" }
func (bucketStrategy) Suggest(task *domain.Task, analysis taskanalyzer.Analysis) Suggestion {
	return Generate(task, analysis)
}

// Registry manages registered recommendation strategies, following the
// same register/get/list shape used for compute and workflow providers.
type Registry struct {
	mu         sync.RWMutex
	strategies map[string]Strategy
	logger     *zap.Logger
}

// NewRegistry creates a registry pre-populated with the bucket strategy.
func NewRegistry(logger *zap.Logger) *Registry {
	r := &Registry{
		strategies: make(map[string]Strategy),
		logger:     logger.With(zap.String("component", "recommendation-registry")),
	}
	_ = r.Register(bucketStrategy{})
	return r
}

// Register adds a strategy to the registry.
func (r *Registry) Register(strategy Strategy) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	name := strategy.Name()
	if name == "" {
		return fmt.Errorf("strategy name cannot be empty")
	}
	if _, exists := r.strategies[name]; exists {
		return fmt.Errorf("%w: %s", ErrStrategyConflict, name)
	}
	r.strategies[name] = strategy
	r.logger.Info("registered recommendation strategy", zap.String("strategy", name))
	return nil
}

// Get retrieves a strategy by name.
func (r *Registry) Get(name string) (Strategy, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	strategy, exists := r.strategies[name]
	if !exists {
		return nil, fmt.Errorf("%w: %s", ErrStrategyNotFound, name)
	}
	return strategy, nil
}

// List returns the names of all registered strategies, sorted.
func (r *Registry) List() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.strategies))
	for name := range r.strategies {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
