package services

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/siteforge-io/design-engine/pkg/apperrors"
	"github.com/siteforge-io/design-engine/pkg/llm"
	"github.com/siteforge-io/design-engine/pkg/models"
)

// Markup engineered to clear every auto-promotion threshold: the style text
// packs the aesthetic rubric's signals into a minimal footprint, and the
// markup spends almost every printable character exactly once so the
// distinct-character ratio stays above the uniqueness bar.
const (
	promotableHTML = `hero !"#$%&'()*+,./013456789;<=>?ABCDEFGHIJKLMNOPQRSTUVWXYZ[\]^_`
	promotableCSS  = `gradientransition@media--2remdisplay:flexbox-shadow`
)

type learningFixture struct {
	svc        LearningService
	components *mockComponentRepository
	embeddings *mockEmbeddingRepository
	candidates *mockCandidateRepository
	sites      *mockSiteRepository
	insights   *mockInsightRepository
	patterns   *mockPatternRepository
}

func newLearningFixture(t *testing.T) *learningFixture {
	t.Helper()

	f := &learningFixture{
		components: &mockComponentRepository{},
		embeddings: &mockEmbeddingRepository{},
		candidates: &mockCandidateRepository{},
		sites:      &mockSiteRepository{},
		insights:   &mockInsightRepository{},
		patterns:   &mockPatternRepository{},
	}

	embeddingService := NewEmbeddingService(f.components, f.embeddings, llm.NewDeterministicEmbedder(), zap.NewNop())
	catalog := NewCatalogService(f.components, embeddingService, zap.NewNop())
	f.svc = NewLearningService(catalog, f.components, f.candidates, f.sites, f.insights, f.patterns, zap.NewNop())
	return f
}

func TestRecordPerformance_InvalidPlacement(t *testing.T) {
	f := newLearningFixture(t)

	err := f.svc.RecordPerformance(context.Background(), &models.PerformanceRecord{
		ComponentID: uuid.New(),
		SiteID:      uuid.New(),
		Placement:   "sidebar",
	})
	assert.ErrorIs(t, err, apperrors.ErrValidation)
	assert.Empty(t, f.patterns.Observed)
}

func TestRecordPerformance_ObservesPatterns(t *testing.T) {
	f := newLearningFixture(t)
	componentID := uuid.New()
	f.components.GetByIDFunc = func(ctx context.Context, id uuid.UUID) (*models.Component, error) {
		return &models.Component{
			ID:            id,
			ComponentType: models.ComponentTypeHero,
			Tags:          []string{"gradient", "dark"},
			Industries:    []string{"saas"},
		}, nil
	}

	err := f.svc.RecordPerformance(context.Background(), &models.PerformanceRecord{
		ComponentID:      componentID,
		SiteID:           uuid.New(),
		Placement:        models.PlacementHero,
		ConversionImpact: 12.5,
	})
	require.NoError(t, err)

	assert.Equal(t, []string{
		"component_type/hero",
		"placement/hero",
		"tag/gradient",
		"tag/dark",
		"industry/saas",
	}, f.patterns.Observed)
}

func TestRecordPerformance_MissingComponent(t *testing.T) {
	f := newLearningFixture(t)
	f.components.GetByIDFunc = func(ctx context.Context, id uuid.UUID) (*models.Component, error) {
		return nil, apperrors.ErrNotFound
	}

	err := f.svc.RecordPerformance(context.Background(), &models.PerformanceRecord{
		ComponentID: uuid.New(),
		SiteID:      uuid.New(),
		Placement:   models.PlacementHero,
	})
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestRegisterSite_RequiresDomain(t *testing.T) {
	f := newLearningFixture(t)

	err := f.svc.RegisterSite(context.Background(), &models.OnboardingSite{Industry: "retail"})
	assert.ErrorIs(t, err, apperrors.ErrValidation)
}

func TestExtractCandidate_BelowThresholdStaysCandidate(t *testing.T) {
	f := newLearningFixture(t)

	candidate, err := f.svc.ExtractCandidate(context.Background(), uuid.New(),
		"<div><p>plain</p></div>", "", "")
	require.NoError(t, err)

	assert.Equal(t, models.PromotionStatusCandidate, candidate.PromotionStatus)
	assert.Nil(t, candidate.PromotedComponentID)
	assert.Zero(t, f.candidates.PromotedCalls)
}

func TestExtractCandidate_AutoPromotes(t *testing.T) {
	f := newLearningFixture(t)
	siteID := uuid.New()
	f.sites.GetByIDFunc = func(ctx context.Context, id uuid.UUID) (*models.OnboardingSite, error) {
		return &models.OnboardingSite{ID: id, Domain: "stripe.com", Industry: "fintech"}, nil
	}

	var promoted *models.Component
	f.components.UpsertFunc = func(ctx context.Context, c *models.Component) error {
		promoted = c
		return nil
	}

	candidate, err := f.svc.ExtractCandidate(context.Background(), siteID, promotableHTML, promotableCSS, "")
	require.NoError(t, err)

	assert.Equal(t, models.PromotionStatusPromoted, candidate.PromotionStatus)
	require.NotNil(t, candidate.PromotedComponentID)
	assert.Equal(t, 1, f.candidates.PromotedCalls)

	require.NotNil(t, promoted)
	assert.Equal(t, models.ComponentTypeHero, promoted.ComponentType)
	assert.Equal(t, "marketing", promoted.Category)
	assert.Equal(t, []string{"fintech"}, promoted.Industries)
	assert.Zero(t, promoted.UsageCount)
	assert.NotNil(t, promoted.ScrapedAt)
	// Promoted components are indexed for similarity search.
	assert.Equal(t, 1, f.embeddings.UpsertCalls)
}

func TestExtractCandidate_RejectsInjection(t *testing.T) {
	f := newLearningFixture(t)

	_, err := f.svc.ExtractCandidate(context.Background(), uuid.New(),
		"<div>ok</div>", `</style><script>document.location='//evil'</script>`, "")
	assert.ErrorIs(t, err, apperrors.ErrValidation)
}

func TestExtractCandidate_UnknownSite(t *testing.T) {
	f := newLearningFixture(t)
	f.sites.GetByIDFunc = func(ctx context.Context, id uuid.UUID) (*models.OnboardingSite, error) {
		return nil, apperrors.ErrNotFound
	}

	_, err := f.svc.ExtractCandidate(context.Background(), uuid.New(), "<div>x</div>", "", "")
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestGenerateInsights_BestTypeForIndustry(t *testing.T) {
	f := newLearningFixture(t)
	var samples []models.PerformanceSample
	for i := 0; i < 6; i++ {
		samples = append(samples, models.PerformanceSample{
			ComponentType:    models.ComponentTypeHero,
			Industries:       []string{"fintech"},
			Placement:        models.PlacementHero,
			ConversionImpact: 15,
		})
	}
	f.components.PerformanceSamplesFunc = func(ctx context.Context, since time.Time) ([]models.PerformanceSample, error) {
		return samples, nil
	}

	insights, err := f.svc.GenerateInsights(context.Background(), time.Now().AddDate(0, 0, -30))
	require.NoError(t, err)

	var found *models.LearningInsight
	for _, in := range insights {
		if in.InsightType == models.InsightTypeBestTypeForIndustry {
			found = in
		}
	}
	require.NotNil(t, found)
	assert.Contains(t, found.Description, "hero")
	assert.Contains(t, found.Description, "fintech")
	assert.Equal(t, 6, found.DataPoints)
	assert.InDelta(t, 24.0, found.ConfidenceScore, 0.001) // 6 samples * 4
	assert.InDelta(t, 60.0, found.ImpactScore, 0.001)     // 15 avg * 4
	// Everything generated was persisted.
	assert.Len(t, f.insights.Created, len(insights))
}

func TestGenerateInsights_BestTypeForIndustry_ThreeSamplesQualify(t *testing.T) {
	f := newLearningFixture(t)
	var samples []models.PerformanceSample
	for i := 0; i < 3; i++ {
		samples = append(samples, models.PerformanceSample{
			ComponentType:    models.ComponentTypePricing,
			Industries:       []string{"retail"},
			Placement:        models.PlacementBelowFold,
			ConversionImpact: 12,
		})
	}
	f.components.PerformanceSamplesFunc = func(ctx context.Context, since time.Time) ([]models.PerformanceSample, error) {
		return samples, nil
	}

	insights, err := f.svc.GenerateInsights(context.Background(), time.Now().AddDate(0, 0, -30))
	require.NoError(t, err)

	var found *models.LearningInsight
	for _, in := range insights {
		if in.InsightType == models.InsightTypeBestTypeForIndustry {
			found = in
		}
	}
	require.NotNil(t, found, "three samples above 10%% lift should produce an industry insight")
	assert.Equal(t, 3, found.DataPoints)
}

func TestGenerateInsights_UnderperformingCombo(t *testing.T) {
	f := newLearningFixture(t)
	// Weak positive lift with mediocre aesthetics: still an underperformer.
	var samples []models.PerformanceSample
	for i := 0; i < 3; i++ {
		samples = append(samples, models.PerformanceSample{
			ComponentType:    models.ComponentTypePricing,
			Style:            "corporate",
			AestheticScore:   70,
			Placement:        models.PlacementFooter,
			ConversionImpact: 3,
		})
	}
	f.components.PerformanceSamplesFunc = func(ctx context.Context, since time.Time) ([]models.PerformanceSample, error) {
		return samples, nil
	}

	insights, err := f.svc.GenerateInsights(context.Background(), time.Now().AddDate(0, 0, -30))
	require.NoError(t, err)

	var found *models.LearningInsight
	for _, in := range insights {
		if in.InsightType == models.InsightTypeUnderperformingCombo {
			found = in
		}
	}
	require.NotNil(t, found)
	assert.Contains(t, found.Description, "corporate pricing")
}

func TestGenerateInsights_ComboSparedByAesthetics(t *testing.T) {
	f := newLearningFixture(t)
	// Same weak lift, but high visual quality keeps the combo off the list.
	var samples []models.PerformanceSample
	for i := 0; i < 3; i++ {
		samples = append(samples, models.PerformanceSample{
			ComponentType:    models.ComponentTypePricing,
			Style:            "corporate",
			AestheticScore:   92,
			Placement:        models.PlacementFooter,
			ConversionImpact: 3,
		})
	}
	f.components.PerformanceSamplesFunc = func(ctx context.Context, since time.Time) ([]models.PerformanceSample, error) {
		return samples, nil
	}

	insights, err := f.svc.GenerateInsights(context.Background(), time.Now().AddDate(0, 0, -30))
	require.NoError(t, err)

	for _, in := range insights {
		assert.NotEqual(t, models.InsightTypeUnderperformingCombo, in.InsightType)
	}
}

func TestGenerateInsights_RequiresMinimumSamples(t *testing.T) {
	f := newLearningFixture(t)
	// Two strong samples: one short of the minimum everywhere.
	var samples []models.PerformanceSample
	for i := 0; i < 2; i++ {
		samples = append(samples, models.PerformanceSample{
			ComponentType:    models.ComponentTypeHero,
			Style:            "minimal",
			Tags:             []string{"gradient"},
			Industries:       []string{"saas"},
			Placement:        models.PlacementHero,
			ConversionImpact: 30,
		})
	}
	f.components.PerformanceSamplesFunc = func(ctx context.Context, since time.Time) ([]models.PerformanceSample, error) {
		return samples, nil
	}

	insights, err := f.svc.GenerateInsights(context.Background(), time.Now().AddDate(0, 0, -30))
	require.NoError(t, err)
	assert.Empty(t, insights)
}

func TestGenerateInsights_TrendingTagAndBestPlacement(t *testing.T) {
	f := newLearningFixture(t)
	var samples []models.PerformanceSample
	for i := 0; i < 8; i++ {
		samples = append(samples, models.PerformanceSample{
			ComponentType:    models.ComponentTypeCard,
			Tags:             []string{"glassmorphism"},
			Placement:        models.PlacementAboveFold,
			ConversionImpact: 16,
		})
	}
	f.components.PerformanceSamplesFunc = func(ctx context.Context, since time.Time) ([]models.PerformanceSample, error) {
		return samples, nil
	}

	insights, err := f.svc.GenerateInsights(context.Background(), time.Now().AddDate(0, 0, -30))
	require.NoError(t, err)

	types := make(map[string]bool)
	for _, in := range insights {
		types[in.InsightType] = true
	}
	assert.True(t, types[models.InsightTypeTrendingTagPattern])
	assert.True(t, types[models.InsightTypeBestPlacement])
}

func TestGenerateInsights_TrendingTagNeedsStrongLift(t *testing.T) {
	f := newLearningFixture(t)
	// Plenty of samples, but 15% average lift is the bar, not a pass.
	var samples []models.PerformanceSample
	for i := 0; i < 8; i++ {
		samples = append(samples, models.PerformanceSample{
			ComponentType:    models.ComponentTypeCard,
			Tags:             []string{"glassmorphism"},
			Placement:        models.PlacementAboveFold,
			ConversionImpact: 15,
		})
	}
	f.components.PerformanceSamplesFunc = func(ctx context.Context, since time.Time) ([]models.PerformanceSample, error) {
		return samples, nil
	}

	insights, err := f.svc.GenerateInsights(context.Background(), time.Now().AddDate(0, 0, -30))
	require.NoError(t, err)

	for _, in := range insights {
		assert.NotEqual(t, models.InsightTypeTrendingTagPattern, in.InsightType)
	}
}

func TestGenerateInsights_BestPlacementNeedsNoLift(t *testing.T) {
	f := newLearningFixture(t)
	// Every placement hurts; the least-bad one is still reported.
	var samples []models.PerformanceSample
	for i := 0; i < 3; i++ {
		samples = append(samples, models.PerformanceSample{
			ComponentType:    models.ComponentTypeFooter,
			Placement:        models.PlacementFooter,
			ConversionImpact: -2,
		})
	}
	f.components.PerformanceSamplesFunc = func(ctx context.Context, since time.Time) ([]models.PerformanceSample, error) {
		return samples, nil
	}

	insights, err := f.svc.GenerateInsights(context.Background(), time.Now().AddDate(0, 0, -30))
	require.NoError(t, err)

	var found *models.LearningInsight
	for _, in := range insights {
		if in.InsightType == models.InsightTypeBestPlacement {
			found = in
		}
	}
	require.NotNil(t, found)
	assert.Contains(t, found.Description, models.PlacementFooter)
}

func TestGenerateInsights_ConfidenceCappedAt100(t *testing.T) {
	f := newLearningFixture(t)
	var samples []models.PerformanceSample
	for i := 0; i < 30; i++ {
		samples = append(samples, models.PerformanceSample{
			ComponentType:    models.ComponentTypeHero,
			Industries:       []string{"saas"},
			Placement:        models.PlacementHero,
			ConversionImpact: 20,
		})
	}
	f.components.PerformanceSamplesFunc = func(ctx context.Context, since time.Time) ([]models.PerformanceSample, error) {
		return samples, nil
	}

	insights, err := f.svc.GenerateInsights(context.Background(), time.Now().AddDate(0, 0, -30))
	require.NoError(t, err)
	require.NotEmpty(t, insights)

	for _, in := range insights {
		assert.InDelta(t, 100.0, in.ConfidenceScore, 0.001)
	}
}

func TestGenerateInsights_CancelledBetweenAnalyses(t *testing.T) {
	f := newLearningFixture(t)
	f.components.PerformanceSamplesFunc = func(ctx context.Context, since time.Time) ([]models.PerformanceSample, error) {
		return []models.PerformanceSample{{
			ComponentType:    models.ComponentTypeHero,
			Industries:       []string{"saas"},
			Placement:        models.PlacementHero,
			ConversionImpact: 20,
		}}, nil
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := f.svc.GenerateInsights(ctx, time.Now().AddDate(0, 0, -30))
	assert.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, f.insights.Created)
}
