package interpret

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/jaxxstorm/landlord/internal/apperr"
	"github.com/jaxxstorm/landlord/internal/domain"
	"github.com/jaxxstorm/landlord/internal/ratelimit"
)

// Embedder turns an utterance into a vector for the candidate search port.
// Implementations call out to an external embedding model.
type Embedder interface {
	Embed(ctx context.Context, utterance string) ([]float32, error)
}

// CandidateSearch is the vector-index port: given an embedding, a tenant
// filter, an optional entity-type filter and a limit, returns candidates
// at or above the similarity threshold. Implementations are not required
// to apply the tenant filter themselves; the pipeline re-filters the
// result defensively (step 4 of §4.7).
type CandidateSearch interface {
	Search(ctx context.Context, embedding []float32, tenant *uuid.UUID, entityTypes []string, limit int) ([]domain.CandidateEntity, error)
}

// LLM is the natural-language parse port. A non-nil error, or a response
// that fails ParseLLMResponse's validation, causes the pipeline to fall
// back to the heuristic parser per §7's propagation policy.
type LLM interface {
	Complete(ctx context.Context, systemPrompt string) (raw string, confidence float64, err error)
}

// IntentRecorder persists the IntentRecord audit trail produced by every
// interpret() call.
type IntentRecorder interface {
	Record(ctx context.Context, rec *domain.IntentRecord) error
}

// SimilarityThreshold is the minimum candidate similarity score (σ) kept
// after vector search, per §4.7 step 3.
const SimilarityThreshold = 0.3

// DefaultCandidateLimit bounds the number of candidates requested when the
// caller does not specify one.
const DefaultCandidateLimit = 20

// Pipeline implements the Interpret Pipeline (C8): rate limiting,
// embedding, tenant-filtered candidate search, LLM-or-heuristic intent
// parsing with candidate-set containment enforced as a security boundary,
// service-confidence scoring, IntentRecord persistence, and the
// confirmation gate.
type Pipeline struct {
	RateLimiter *ratelimit.Limiter
	Embedder    Embedder
	Search      CandidateSearch
	LLM         LLM
	Recorder    IntentRecorder
	Now         func() time.Time
}

// New builds a Pipeline from its collaborators. LLM may be nil, in which
// case every call behaves as if disableLLM were true.
func New(limiter *ratelimit.Limiter, embedder Embedder, search CandidateSearch, llm LLM, recorder IntentRecorder) *Pipeline {
	return &Pipeline{
		RateLimiter: limiter,
		Embedder:    embedder,
		Search:      search,
		LLM:         llm,
		Recorder:    recorder,
		Now:         time.Now,
	}
}

// Result is the outcome of one interpret() call.
type Result struct {
	Intent              domain.ParsedIntent
	Candidates          []domain.CandidateEntity
	LLMConfidence       float64
	ServiceConfidence   float64
	RequiresConfirmation bool
	UsedHeuristicFallback bool
}

// Request carries interpret()'s input parameters.
type Request struct {
	UserID      uuid.UUID
	Tenant      *uuid.UUID
	Utterance   string
	Limit       int
	EntityTypes []string
	DisableLLM  bool
}

// Interpret runs the full §4.7 pipeline for req.
func (p *Pipeline) Interpret(ctx context.Context, req Request) (Result, error) {
	key := ratelimit.Key(req.UserID.String(), "interpret")
	if !p.RateLimiter.Allow(key) {
		return Result{}, apperr.RateLimitExceeded("interpret rate limit exceeded")
	}

	limit := req.Limit
	if limit <= 0 {
		limit = DefaultCandidateLimit
	}

	embedding, err := p.Embedder.Embed(ctx, req.Utterance)
	if err != nil {
		return Result{}, apperr.ExternalService("embed utterance", err)
	}

	raw, err := p.Search.Search(ctx, embedding, req.Tenant, req.EntityTypes, limit)
	if err != nil {
		return Result{}, apperr.ExternalService("candidate search", err)
	}

	candidates := filterTenantAndThreshold(raw, req.Tenant)

	intent, llmConfidence, usedFallback := p.parseIntent(ctx, req, candidates)

	serviceConfidence := computeServiceConfidence(intent, candidates)

	rec := &domain.IntentRecord{
		ID:                uuid.New(),
		TenantID:          req.Tenant,
		UserID:            req.UserID,
		Utterance:         req.Utterance,
		ParsedIntent:      intent,
		LLMConfidence:     llmConfidence,
		ServiceConfidence: serviceConfidence,
		CandidateIDs:      candidateIDs(candidates),
		CreatedAt:         p.now(),
	}
	if p.Recorder != nil {
		if err := p.Recorder.Record(ctx, rec); err != nil {
			return Result{}, apperr.Internal("record intent", err)
		}
	}

	return Result{
		Intent:                intent,
		Candidates:            candidates,
		LLMConfidence:         llmConfidence,
		ServiceConfidence:     serviceConfidence,
		RequiresConfirmation:  intent.IntentType.RequiresConfirmation(len(intent.Entities)),
		UsedHeuristicFallback: usedFallback,
	}, nil
}

func (p *Pipeline) now() time.Time {
	if p.Now != nil {
		return p.Now()
	}
	return time.Now()
}

// parseIntent runs step 5+6 of §4.7: LLM parse with candidate-containment
// enforcement, falling back to the heuristic parser whenever the LLM is
// disabled, unavailable, or its response fails validation.
func (p *Pipeline) parseIntent(ctx context.Context, req Request, candidates []domain.CandidateEntity) (domain.ParsedIntent, float64, bool) {
	if req.DisableLLM || p.LLM == nil {
		return FallbackHeuristicParse(req.Utterance, candidates), 0, true
	}

	prompt := SystemPrompt(req.Utterance, candidates)
	raw, confidence, err := p.LLM.Complete(ctx, prompt)
	if err != nil {
		return FallbackHeuristicParse(req.Utterance, candidates), 0, true
	}

	intent, err := ParseLLMResponse(raw, candidateIDs(candidates))
	if err != nil {
		return FallbackHeuristicParse(req.Utterance, candidates), 0, true
	}

	return intent, confidence, false
}

// filterTenantAndThreshold applies §4.7 step 3/4: drop candidates below
// the similarity threshold and any whose tenant doesn't match, even if
// the search backend already claims to have filtered them.
func filterTenantAndThreshold(candidates []domain.CandidateEntity, tenant *uuid.UUID) []domain.CandidateEntity {
	out := make([]domain.CandidateEntity, 0, len(candidates))
	for _, c := range candidates {
		if c.SimilarityScore < SimilarityThreshold {
			continue
		}
		if !c.SameTenant(tenant) {
			continue
		}
		out = append(out, c)
	}
	return out
}

func candidateIDs(candidates []domain.CandidateEntity) []uuid.UUID {
	ids := make([]uuid.UUID, len(candidates))
	for i, c := range candidates {
		ids[i] = c.ID
	}
	return ids
}

// computeServiceConfidence implements the §12 supplemented formula: base
// 0.5, +0.2 if any entities were extracted, +0.3 * average similarity of
// the candidates fed to the parser, +0.1 if the intent is well-known,
// -0.2 if unknown, clamped to [0,1].
func computeServiceConfidence(intent domain.ParsedIntent, candidates []domain.CandidateEntity) float64 {
	score := 0.5
	if len(intent.Entities) > 0 {
		score += 0.2
	}
	if len(candidates) > 0 {
		var sum float64
		for _, c := range candidates {
			sum += c.SimilarityScore
		}
		score += 0.3 * (sum / float64(len(candidates)))
	}
	if intent.IntentType.IsWellKnown() {
		score += 0.1
	}
	if intent.IntentType == domain.IntentUnknown {
		score -= 0.2
	}
	if score < 0 {
		score = 0
	}
	if score > 1 {
		score = 1
	}
	return score
}

// ToActionCommand converts an actionable ParsedIntent into an
// ActionCommand ready for the Action Validator, stamping its risk level
// and the ActionType-keyed confirmation flag. Returns an error for
// read-only or unrecognized intents, which never reach the Act pipeline.
func ToActionCommand(intent domain.ParsedIntent) (domain.ActionCommand, error) {
	actionType, ok := intent.IntentType.ToActionType()
	if !ok {
		return domain.ActionCommand{}, fmt.Errorf("intent %s is not actionable", intent.IntentType)
	}

	targets := make([]uuid.UUID, 0, len(intent.Entities))
	for _, e := range intent.Entities {
		targets = append(targets, e.EntityID)
	}

	return domain.ActionCommand{
		ActionType:          actionType,
		TargetEntities:      targets,
		Parameters:          intent.Parameters,
		RequireConfirmation: domain.ActionRequiresConfirmation(actionType, len(targets)),
		RiskLevel:           domain.EstimateRiskLevel(actionType, len(targets)),
	}, nil
}
