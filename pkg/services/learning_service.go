package services

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/siteforge-io/design-engine/pkg/apperrors"
	"github.com/siteforge-io/design-engine/pkg/models"
	"github.com/siteforge-io/design-engine/pkg/repositories"
)

// Insight generation thresholds, one set per analysis. Tag groupings demand
// more support and a stronger lift because the tag space is sparse and noisy;
// the placement analysis has no lift bar at all, it only ranks.
const (
	industryMinSamples  = 3
	industryMinLift     = 10.0 // percent conversion impact
	tagMinSamples       = 5
	tagMinLift          = 15.0
	comboMinSamples     = 3
	comboMaxLift        = 5.0
	comboMaxAesthetic   = 80.0
	placementMinSamples = 3

	confidencePerSample = 4.0
	confidenceCap       = 100.0
	impactScalePerPoint = 4.0
)

// LearningService runs the continuous learning loop: performance feedback,
// candidate extraction with auto-promotion, and insight generation.
type LearningService interface {
	// RecordPerformance stores one performance observation and folds it into
	// the rolling pattern counters.
	RecordPerformance(ctx context.Context, rec *models.PerformanceRecord) error

	// RegisterSite onboards a customer site into the learning loop.
	RegisterSite(ctx context.Context, site *models.OnboardingSite) error

	// ExtractCandidate cleans, classifies and scores scraped markup from an
	// onboarded site. Candidates clearing every promotion threshold are
	// promoted into the global catalog immediately.
	ExtractCandidate(ctx context.Context, siteID uuid.UUID, rawHTML, rawCSS, rawJS string) (*models.CandidateComponent, error)

	// RejectCandidate permanently rejects an undecided candidate.
	RejectCandidate(ctx context.Context, id uuid.UUID) error

	// ListCandidates retrieves all candidates extracted from a site.
	ListCandidates(ctx context.Context, siteID uuid.UUID) ([]*models.CandidateComponent, error)

	// GenerateInsights runs the four insight analyses over performance data
	// recorded since the given time and persists what they find.
	GenerateInsights(ctx context.Context, since time.Time) ([]*models.LearningInsight, error)

	// ListInsights retrieves stored insights, optionally filtered by
	// validation status.
	ListInsights(ctx context.Context, validationStatus string, limit int) ([]*models.LearningInsight, error)

	// ValidateInsight transitions a pending insight to validated or rejected.
	ValidateInsight(ctx context.Context, id uuid.UUID, status string) error
}

type learningService struct {
	catalog    CatalogService
	components repositories.ComponentRepository
	candidates repositories.CandidateRepository
	sites      repositories.SiteRepository
	insights   repositories.InsightRepository
	patterns   repositories.PatternRepository
	logger     *zap.Logger
}

// NewLearningService creates a new learning service.
func NewLearningService(
	catalog CatalogService,
	components repositories.ComponentRepository,
	candidates repositories.CandidateRepository,
	sites repositories.SiteRepository,
	insights repositories.InsightRepository,
	patterns repositories.PatternRepository,
	logger *zap.Logger,
) LearningService {
	return &learningService{
		catalog:    catalog,
		components: components,
		candidates: candidates,
		sites:      sites,
		insights:   insights,
		patterns:   patterns,
		logger:     logger.Named("learning"),
	}
}

var _ LearningService = (*learningService)(nil)

// RecordPerformance stores one observation and updates pattern counters.
// Pattern updates are best effort: the observation itself is the durable
// record, counters can be rebuilt from it.
func (s *learningService) RecordPerformance(ctx context.Context, rec *models.PerformanceRecord) error {
	if !models.ValidPlacement(rec.Placement) {
		return fmt.Errorf("unknown placement %q: %w", rec.Placement, apperrors.ErrValidation)
	}

	c, err := s.components.GetByID(ctx, rec.ComponentID)
	if err != nil {
		return err
	}

	if err := s.components.RecordPerformance(ctx, rec); err != nil {
		return err
	}

	s.observe(ctx, "component_type", c.ComponentType, rec.ConversionImpact)
	s.observe(ctx, "placement", rec.Placement, rec.ConversionImpact)
	for _, tag := range c.Tags {
		s.observe(ctx, "tag", tag, rec.ConversionImpact)
	}
	for _, industry := range c.Industries {
		s.observe(ctx, "industry", industry, rec.ConversionImpact)
	}
	return nil
}

func (s *learningService) observe(ctx context.Context, dimension, value string, impact float64) {
	if value == "" {
		return
	}
	if err := s.patterns.Observe(ctx, dimension, value, impact); err != nil {
		s.logger.Warn("pattern observation failed",
			zap.String("dimension", dimension),
			zap.String("value", value),
			zap.Error(err))
	}
}

// RegisterSite onboards a customer site.
func (s *learningService) RegisterSite(ctx context.Context, site *models.OnboardingSite) error {
	if site.Domain == "" {
		return fmt.Errorf("site domain is required: %w", apperrors.ErrValidation)
	}
	return s.sites.Create(ctx, site)
}

// ExtractCandidate cleans, classifies, scores and stores scraped markup,
// promoting it into the catalog when it clears every threshold.
func (s *learningService) ExtractCandidate(ctx context.Context, siteID uuid.UUID, rawHTML, rawCSS, rawJS string) (*models.CandidateComponent, error) {
	site, err := s.sites.GetByID(ctx, siteID)
	if err != nil {
		return nil, err
	}

	html, css, js, err := CleanMarkup(rawHTML, rawCSS, rawJS)
	if err != nil {
		return nil, err
	}
	if html == "" {
		return nil, fmt.Errorf("no markup left after cleaning: %w", apperrors.ErrValidation)
	}

	candidate := &models.CandidateComponent{
		SiteID:           siteID,
		RawHTML:          rawHTML,
		RawCSS:           rawCSS,
		RawJS:            rawJS,
		CleanedHTML:      html,
		CleanedCSS:       css,
		CleanedJS:        js,
		DetectedType:     DetectComponentType(html),
		AestheticScore:   ScoreAesthetics(html, css),
		PerformanceScore: ScorePerformance(html, css, js),
		UniquenessScore:  ScoreUniqueness(html, css),
	}
	if err := s.candidates.Create(ctx, candidate); err != nil {
		return nil, err
	}

	if !candidate.QualifiesForPromotion() {
		s.logger.Debug("candidate stored below promotion thresholds",
			zap.String("candidate_id", candidate.ID.String()),
			zap.String("detected_type", candidate.DetectedType),
			zap.Int("aesthetic", candidate.AestheticScore),
			zap.Int("uniqueness", candidate.UniquenessScore),
			zap.Int("performance", candidate.PerformanceScore))
		return candidate, nil
	}

	component, err := s.promote(ctx, candidate, site)
	if err != nil {
		// The candidate survives an aborted promotion and can be promoted
		// again by a later pass.
		s.logger.Error("candidate promotion failed",
			zap.String("candidate_id", candidate.ID.String()),
			zap.Error(err))
		return candidate, nil
	}

	candidate.PromotionStatus = models.PromotionStatusPromoted
	candidate.PromotedComponentID = &component.ID
	s.logger.Info("candidate promoted",
		zap.String("candidate_id", candidate.ID.String()),
		zap.String("component_id", component.ID.String()),
		zap.String("component_type", component.ComponentType))
	return candidate, nil
}

// promote materializes a qualifying candidate as a catalog component.
func (s *learningService) promote(ctx context.Context, candidate *models.CandidateComponent, site *models.OnboardingSite) (*models.Component, error) {
	now := time.Now()
	component := &models.Component{
		ID:               uuid.New(),
		Name:             fmt.Sprintf("%s from %s", candidate.DetectedType, site.Domain),
		Description:      fmt.Sprintf("Extracted %s component from %s", candidate.DetectedType, site.Domain),
		HTML:             candidate.CleanedHTML,
		CSS:              candidate.CleanedCSS,
		JS:               candidate.CleanedJS,
		ComponentType:    candidate.DetectedType,
		Category:         CategoryForType(candidate.DetectedType),
		AestheticScore:   candidate.AestheticScore,
		PerformanceScore: candidate.PerformanceScore,
		Complexity:       models.MinComplexity,
		UsageCount:       0,
		ScrapedAt:        &now,
	}
	if site.Industry != "" {
		component.Industries = []string{site.Industry}
	}

	if err := s.catalog.UpsertComponent(ctx, component); err != nil {
		return nil, err
	}
	if err := s.candidates.MarkPromoted(ctx, candidate.ID, component.ID); err != nil {
		return nil, err
	}
	return component, nil
}

// RejectCandidate permanently rejects an undecided candidate.
func (s *learningService) RejectCandidate(ctx context.Context, id uuid.UUID) error {
	return s.candidates.MarkRejected(ctx, id)
}

// ListCandidates retrieves all candidates extracted from a site.
func (s *learningService) ListCandidates(ctx context.Context, siteID uuid.UUID) ([]*models.CandidateComponent, error) {
	return s.candidates.ListBySite(ctx, siteID)
}

// ListInsights retrieves stored insights.
func (s *learningService) ListInsights(ctx context.Context, validationStatus string, limit int) ([]*models.LearningInsight, error) {
	return s.insights.List(ctx, validationStatus, limit)
}

// ValidateInsight transitions a pending insight.
func (s *learningService) ValidateInsight(ctx context.Context, id uuid.UUID, status string) error {
	return s.insights.UpdateValidationStatus(ctx, id, status)
}

// GenerateInsights runs four independent analyses over recent performance
// samples and persists every finding. The analyses share one sample load but
// do not depend on each other's results; cancellation is honored between
// analyses, never inside one.
func (s *learningService) GenerateInsights(ctx context.Context, since time.Time) ([]*models.LearningInsight, error) {
	samples, err := s.components.PerformanceSamples(ctx, since)
	if err != nil {
		return nil, err
	}

	analyses := []func([]models.PerformanceSample) []*models.LearningInsight{
		bestTypePerIndustry,
		trendingTagPatterns,
		underperformingCombos,
		bestPlacements,
	}
	var insights []*models.LearningInsight
	for _, analyze := range analyses {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		insights = append(insights, analyze(samples)...)
	}

	for _, insight := range insights {
		if err := s.insights.Create(ctx, insight); err != nil {
			return nil, fmt.Errorf("failed to persist insight: %w", err)
		}
	}

	s.logger.Info("insights generated",
		zap.Int("samples", len(samples)),
		zap.Int("insights", len(insights)))
	return insights, nil
}

// impactGroup accumulates observations for one analysis bucket.
type impactGroup struct {
	count        int
	sum          float64
	aestheticSum float64
}

func (g *impactGroup) add(impact float64) {
	g.count++
	g.sum += impact
}

func (g *impactGroup) avg() float64 {
	if g.count == 0 {
		return 0
	}
	return g.sum / float64(g.count)
}

func (g *impactGroup) avgAesthetic() float64 {
	if g.count == 0 {
		return 0
	}
	return g.aestheticSum / float64(g.count)
}

// newInsight builds an insight with confidence scaled by sample count and
// impact scaled by effect size.
func newInsight(insightType, description, recommendation string, count int, avgImpact float64) *models.LearningInsight {
	confidence := float64(count) * confidencePerSample
	if confidence > confidenceCap {
		confidence = confidenceCap
	}
	impact := avgImpact
	if impact < 0 {
		impact = -impact
	}
	impact *= impactScalePerPoint
	if impact > 100 {
		impact = 100
	}
	return &models.LearningInsight{
		InsightType:              insightType,
		ConfidenceScore:          confidence,
		ImpactScore:              impact,
		Description:              description,
		ActionableRecommendation: recommendation,
		DataPoints:               count,
	}
}

// sortedKeys returns map keys in lexical order so insight output is stable
// across runs over the same data.
func sortedKeys[K ~string, V any](m map[K]V) []K {
	keys := make([]K, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })
	return keys
}

// bestTypePerIndustry finds, for each industry with enough data, the
// component type with the strongest positive average impact.
func bestTypePerIndustry(samples []models.PerformanceSample) []*models.LearningInsight {
	byIndustry := make(map[string]map[string]*impactGroup)
	for _, s := range samples {
		for _, industry := range s.Industries {
			if byIndustry[industry] == nil {
				byIndustry[industry] = make(map[string]*impactGroup)
			}
			g := byIndustry[industry][s.ComponentType]
			if g == nil {
				g = &impactGroup{}
				byIndustry[industry][s.ComponentType] = g
			}
			g.add(s.ConversionImpact)
		}
	}

	var insights []*models.LearningInsight
	for _, industry := range sortedKeys(byIndustry) {
		var (
			bestType string
			bestG    *impactGroup
		)
		for _, componentType := range sortedKeys(byIndustry[industry]) {
			g := byIndustry[industry][componentType]
			if g.count < industryMinSamples || g.avg() <= industryMinLift {
				continue
			}
			if bestG == nil || g.avg() > bestG.avg() {
				bestType, bestG = componentType, g
			}
		}
		if bestG == nil {
			continue
		}
		insights = append(insights, newInsight(
			models.InsightTypeBestTypeForIndustry,
			fmt.Sprintf("%s components average %+.1f%% conversion impact in the %s industry",
				bestType, bestG.avg(), industry),
			fmt.Sprintf("Prefer %s components for %s sites", bestType, industry),
			bestG.count, bestG.avg()))
	}
	return insights
}

// trendingTagPatterns finds tags whose tagged components consistently lift
// conversion.
func trendingTagPatterns(samples []models.PerformanceSample) []*models.LearningInsight {
	byTag := make(map[string]*impactGroup)
	for _, s := range samples {
		for _, tag := range s.Tags {
			g := byTag[tag]
			if g == nil {
				g = &impactGroup{}
				byTag[tag] = g
			}
			g.add(s.ConversionImpact)
		}
	}

	var insights []*models.LearningInsight
	for _, tag := range sortedKeys(byTag) {
		g := byTag[tag]
		if g.count < tagMinSamples || g.avg() <= tagMinLift {
			continue
		}
		insights = append(insights, newInsight(
			models.InsightTypeTrendingTagPattern,
			fmt.Sprintf("Components tagged %q average %+.1f%% conversion impact", tag, g.avg()),
			fmt.Sprintf("Weight %q-tagged components higher during selection", tag),
			g.count, g.avg()))
	}
	return insights
}

// underperformingCombos finds component type + style pairs that deliver weak
// conversion without the visual quality to excuse it.
func underperformingCombos(samples []models.PerformanceSample) []*models.LearningInsight {
	byCombo := make(map[string]*impactGroup)
	for _, s := range samples {
		if s.Style == "" {
			continue
		}
		key := s.Style + " " + s.ComponentType
		g := byCombo[key]
		if g == nil {
			g = &impactGroup{}
			byCombo[key] = g
		}
		g.add(s.ConversionImpact)
		g.aestheticSum += float64(s.AestheticScore)
	}

	var insights []*models.LearningInsight
	for _, combo := range sortedKeys(byCombo) {
		g := byCombo[combo]
		if g.count < comboMinSamples || g.avg() >= comboMaxLift || g.avgAesthetic() >= comboMaxAesthetic {
			continue
		}
		insights = append(insights, newInsight(
			models.InsightTypeUnderperformingCombo,
			fmt.Sprintf("%s components average %.1f%% conversion impact at %.0f aesthetic score",
				combo, g.avg(), g.avgAesthetic()),
			fmt.Sprintf("Rework or retire %s components", combo),
			g.count, g.avg()))
	}
	return insights
}

// bestPlacements finds, for each component type with enough data, the
// placement with the strongest average impact. Pure ranking: even a type
// that hurts everywhere has a least-bad placement worth knowing.
func bestPlacements(samples []models.PerformanceSample) []*models.LearningInsight {
	byType := make(map[string]map[string]*impactGroup)
	for _, s := range samples {
		if byType[s.ComponentType] == nil {
			byType[s.ComponentType] = make(map[string]*impactGroup)
		}
		g := byType[s.ComponentType][s.Placement]
		if g == nil {
			g = &impactGroup{}
			byType[s.ComponentType][s.Placement] = g
		}
		g.add(s.ConversionImpact)
	}

	var insights []*models.LearningInsight
	for _, componentType := range sortedKeys(byType) {
		var (
			bestPlacement string
			bestG         *impactGroup
		)
		for _, placement := range sortedKeys(byType[componentType]) {
			g := byType[componentType][placement]
			if g.count < placementMinSamples {
				continue
			}
			if bestG == nil || g.avg() > bestG.avg() {
				bestPlacement, bestG = placement, g
			}
		}
		if bestG == nil {
			continue
		}
		insights = append(insights, newInsight(
			models.InsightTypeBestPlacement,
			fmt.Sprintf("%s components perform best in %s placement (%+.1f%% average impact)",
				componentType, bestPlacement, bestG.avg()),
			fmt.Sprintf("Default %s components to %s placement", componentType, bestPlacement),
			bestG.count, bestG.avg()))
	}
	return insights
}
