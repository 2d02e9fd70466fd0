package services

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/siteforge-io/design-engine/pkg/apperrors"
	"github.com/siteforge-io/design-engine/pkg/models"
)

// nominalTaskTokens is the token count assumed when estimating whether a
// provider would blow a task's cost budget before the real prompt exists.
const nominalTaskTokens = 1000

// Selection scoring weights and penalties. See Select for how they combine.
const (
	qualityWeight          = 4.0
	criticalQualityBonus   = 2.0
	criticalLatencyPenalty = 2.0
	lowCostEfficiencyScale = 0.001
	lowQualityDiscount     = 0.5
	budgetCostPenalty      = 20.0
	budgetLatencyPenalty   = 15.0
	capabilityMatchBonus   = 10.0
)

// ProviderRegistry holds the configured provider set and selects the best
// provider for a task context. It is constructed once at startup and passed
// by handle to the executor; there is no ambient global provider state.
type ProviderRegistry struct {
	providers []*models.LLMProvider
	byName    map[string]int // index into providers; registration order kept
	logger    *zap.Logger
}

// NewProviderRegistry creates a registry seeded with the given providers.
// Registration order is preserved and breaks scoring ties.
func NewProviderRegistry(logger *zap.Logger, providers ...*models.LLMProvider) *ProviderRegistry {
	r := &ProviderRegistry{
		byName: make(map[string]int),
		logger: logger.Named("provider-registry"),
	}
	for _, p := range providers {
		r.Register(p)
	}
	return r
}

// Register adds a provider, replacing any existing provider with the same
// name in place (the original registration position is kept).
func (r *ProviderRegistry) Register(p *models.LLMProvider) {
	if idx, ok := r.byName[p.Name]; ok {
		r.providers[idx] = p
		return
	}
	r.byName[p.Name] = len(r.providers)
	r.providers = append(r.providers, p)
}

// Get retrieves a provider by name.
func (r *ProviderRegistry) Get(name string) (*models.LLMProvider, error) {
	idx, ok := r.byName[name]
	if !ok {
		return nil, fmt.Errorf("provider %q: %w", name, apperrors.ErrNotFound)
	}
	return r.providers[idx], nil
}

// List returns the providers in registration order.
func (r *ProviderRegistry) List() []*models.LLMProvider {
	out := make([]*models.LLMProvider, len(r.providers))
	copy(out, r.providers)
	return out
}

// RequiredCapabilities maps each task type to the capability set a provider
// must fully possess to be eligible.
func RequiredCapabilities(taskType string) []models.Capability {
	switch taskType {
	case models.TaskTypeComponentSelection:
		return []models.Capability{
			models.CapabilityDesignAnalysis,
			models.CapabilityPatternRecognition,
		}
	case models.TaskTypeDesignGeneration:
		return []models.Capability{
			models.CapabilityCodeGeneration,
			models.CapabilityCreativeIdeation,
		}
	case models.TaskTypeTrendAnalysis:
		return []models.Capability{
			models.CapabilityPatternRecognition,
			models.CapabilityStrategicReasoning,
		}
	case models.TaskTypeOptimization:
		return []models.Capability{
			models.CapabilityTechnicalPrecision,
			models.CapabilityCodeGeneration,
		}
	case models.TaskTypeQualityAssessment:
		return []models.Capability{
			models.CapabilityDesignAnalysis,
			models.CapabilityVisualUnderstanding,
		}
	}
	return nil
}

// Select returns the highest-scoring eligible provider for the context.
// Scoring is deterministic: an unchanged registry and an identical context
// always yield the same provider, with ties broken by registration order.
func (r *ProviderRegistry) Select(taskCtx *models.TaskContext) (*models.LLMProvider, error) {
	return r.SelectExcluding(taskCtx, nil)
}

// SelectExcluding is Select with a caller-supplied exclusion list, supporting
// retry-with-different-provider policies implemented outside the core.
func (r *ProviderRegistry) SelectExcluding(taskCtx *models.TaskContext, exclude []string) (*models.LLMProvider, error) {
	if !models.ValidTaskType(taskCtx.TaskType) {
		return nil, fmt.Errorf("unknown task type %q: %w", taskCtx.TaskType, apperrors.ErrValidation)
	}

	excluded := make(map[string]bool, len(exclude))
	for _, name := range exclude {
		excluded[name] = true
	}

	required := RequiredCapabilities(taskCtx.TaskType)

	var (
		best      *models.LLMProvider
		bestScore float64
	)
	for _, p := range r.providers {
		if excluded[p.Name] || !hasAllCapabilities(p, required) {
			continue
		}
		score := scoreProvider(p, taskCtx, required)
		// Strict > keeps the first-registered provider on ties.
		if best == nil || score > bestScore {
			best = p
			bestScore = score
		}
	}

	if best == nil {
		return nil, fmt.Errorf("task type %q: %w", taskCtx.TaskType, apperrors.ErrNoEligibleProvider)
	}

	r.logger.Debug("provider selected",
		zap.String("provider", best.Name),
		zap.String("task_type", taskCtx.TaskType),
		zap.String("priority", taskCtx.Priority),
		zap.Float64("score", bestScore))

	return best, nil
}

// scoreProvider computes the selection score for one eligible provider.
func scoreProvider(p *models.LLMProvider, taskCtx *models.TaskContext, required []models.Capability) float64 {
	quality := float64(p.QualityScore)
	score := qualityWeight * quality

	switch taskCtx.Priority {
	case models.PriorityCritical:
		// Favor quality and speed over cost.
		score += criticalQualityBonus * quality
		score -= criticalLatencyPenalty * p.ResponseTime.Seconds()
	case models.PriorityLow:
		// Favor cheapness.
		if p.CostPerToken > 0 {
			score += lowCostEfficiencyScale / p.CostPerToken
		}
		score -= lowQualityDiscount * quality
	}

	if budget := taskCtx.Budget; budget != nil {
		if budget.MaxCostPerTask > 0 && p.CostPerToken*nominalTaskTokens > budget.MaxCostPerTask {
			score -= budgetCostPenalty
		}
		if budget.MaxResponseTime > 0 && p.ResponseTime > budget.MaxResponseTime {
			score -= budgetLatencyPenalty
		}
	}

	// Always 100% for eligible providers; kept for partial-match extensions.
	score += capabilityMatchBonus * capabilityMatchFraction(p, required)

	return score
}

func hasAllCapabilities(p *models.LLMProvider, required []models.Capability) bool {
	for _, c := range required {
		if !p.HasCapability(c) {
			return false
		}
	}
	return true
}

func capabilityMatchFraction(p *models.LLMProvider, required []models.Capability) float64 {
	if len(required) == 0 {
		return 1
	}
	var matched int
	for _, c := range required {
		if p.HasCapability(c) {
			matched++
		}
	}
	return float64(matched) / float64(len(required))
}
