package handlers

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/siteforge-io/design-engine/pkg/models"
)

// Configurable function-field mocks for the service interfaces the handlers
// depend on. Unset fields fall back to benign defaults.

type mockCatalogService struct {
	UpsertComponentFunc  func(ctx context.Context, c *models.Component) error
	GetComponentFunc     func(ctx context.Context, id uuid.UUID) (*models.Component, error)
	SearchComponentsFunc func(ctx context.Context, filters models.ComponentFilters, limit int) ([]*models.Component, error)
	TopPerformingFunc    func(ctx context.Context, limit int) ([]*models.Component, error)
}

func (m *mockCatalogService) UpsertComponent(ctx context.Context, c *models.Component) error {
	if m.UpsertComponentFunc != nil {
		return m.UpsertComponentFunc(ctx, c)
	}
	return nil
}

func (m *mockCatalogService) GetComponent(ctx context.Context, id uuid.UUID) (*models.Component, error) {
	if m.GetComponentFunc != nil {
		return m.GetComponentFunc(ctx, id)
	}
	return &models.Component{ID: id}, nil
}

func (m *mockCatalogService) SearchComponents(ctx context.Context, filters models.ComponentFilters, limit int) ([]*models.Component, error) {
	if m.SearchComponentsFunc != nil {
		return m.SearchComponentsFunc(ctx, filters, limit)
	}
	return nil, nil
}

func (m *mockCatalogService) TopPerforming(ctx context.Context, limit int) ([]*models.Component, error) {
	if m.TopPerformingFunc != nil {
		return m.TopPerformingFunc(ctx, limit)
	}
	return nil, nil
}

type mockEmbeddingService struct {
	IndexComponentFunc     func(ctx context.Context, c *models.Component) error
	SimilarToComponentFunc func(ctx context.Context, id uuid.UUID, k int, minSimilarity float64) ([]models.SimilarComponent, error)
	SearchByTextFunc       func(ctx context.Context, text string, filters models.ComponentFilters, limit int) ([]*models.Component, error)
}

func (m *mockEmbeddingService) IndexComponent(ctx context.Context, c *models.Component) error {
	if m.IndexComponentFunc != nil {
		return m.IndexComponentFunc(ctx, c)
	}
	return nil
}

func (m *mockEmbeddingService) SimilarToComponent(ctx context.Context, id uuid.UUID, k int, minSimilarity float64) ([]models.SimilarComponent, error) {
	if m.SimilarToComponentFunc != nil {
		return m.SimilarToComponentFunc(ctx, id, k, minSimilarity)
	}
	return nil, nil
}

func (m *mockEmbeddingService) SearchByText(ctx context.Context, text string, filters models.ComponentFilters, limit int) ([]*models.Component, error) {
	if m.SearchByTextFunc != nil {
		return m.SearchByTextFunc(ctx, text, filters, limit)
	}
	return nil, nil
}

type mockTrendService struct {
	AnalyzeTrendsFunc        func(ctx context.Context, window time.Duration) ([]*models.TrendMetric, error)
	DetectBreakingTrendsFunc func(ctx context.Context, minGrowthRate float64) ([]*models.TrendMetric, error)
	PredictTrajectoryFunc    func(ctx context.Context, trendID string) (*models.TrendTrajectory, error)
}

func (m *mockTrendService) AnalyzeTrends(ctx context.Context, window time.Duration) ([]*models.TrendMetric, error) {
	if m.AnalyzeTrendsFunc != nil {
		return m.AnalyzeTrendsFunc(ctx, window)
	}
	return nil, nil
}

func (m *mockTrendService) DetectBreakingTrends(ctx context.Context, minGrowthRate float64) ([]*models.TrendMetric, error) {
	if m.DetectBreakingTrendsFunc != nil {
		return m.DetectBreakingTrendsFunc(ctx, minGrowthRate)
	}
	return nil, nil
}

func (m *mockTrendService) PredictTrajectory(ctx context.Context, trendID string) (*models.TrendTrajectory, error) {
	if m.PredictTrajectoryFunc != nil {
		return m.PredictTrajectoryFunc(ctx, trendID)
	}
	return &models.TrendTrajectory{TrendID: trendID}, nil
}

type mockLearningService struct {
	RecordPerformanceFunc func(ctx context.Context, rec *models.PerformanceRecord) error
	RegisterSiteFunc      func(ctx context.Context, site *models.OnboardingSite) error
	ExtractCandidateFunc  func(ctx context.Context, siteID uuid.UUID, rawHTML, rawCSS, rawJS string) (*models.CandidateComponent, error)
	RejectCandidateFunc   func(ctx context.Context, id uuid.UUID) error
	ListCandidatesFunc    func(ctx context.Context, siteID uuid.UUID) ([]*models.CandidateComponent, error)
	GenerateInsightsFunc  func(ctx context.Context, since time.Time) ([]*models.LearningInsight, error)
	ListInsightsFunc      func(ctx context.Context, validationStatus string, limit int) ([]*models.LearningInsight, error)
	ValidateInsightFunc   func(ctx context.Context, id uuid.UUID, status string) error
}

func (m *mockLearningService) RecordPerformance(ctx context.Context, rec *models.PerformanceRecord) error {
	if m.RecordPerformanceFunc != nil {
		return m.RecordPerformanceFunc(ctx, rec)
	}
	return nil
}

func (m *mockLearningService) RegisterSite(ctx context.Context, site *models.OnboardingSite) error {
	if m.RegisterSiteFunc != nil {
		return m.RegisterSiteFunc(ctx, site)
	}
	return nil
}

func (m *mockLearningService) ExtractCandidate(ctx context.Context, siteID uuid.UUID, rawHTML, rawCSS, rawJS string) (*models.CandidateComponent, error) {
	if m.ExtractCandidateFunc != nil {
		return m.ExtractCandidateFunc(ctx, siteID, rawHTML, rawCSS, rawJS)
	}
	return &models.CandidateComponent{SiteID: siteID}, nil
}

func (m *mockLearningService) RejectCandidate(ctx context.Context, id uuid.UUID) error {
	if m.RejectCandidateFunc != nil {
		return m.RejectCandidateFunc(ctx, id)
	}
	return nil
}

func (m *mockLearningService) ListCandidates(ctx context.Context, siteID uuid.UUID) ([]*models.CandidateComponent, error) {
	if m.ListCandidatesFunc != nil {
		return m.ListCandidatesFunc(ctx, siteID)
	}
	return nil, nil
}

func (m *mockLearningService) GenerateInsights(ctx context.Context, since time.Time) ([]*models.LearningInsight, error) {
	if m.GenerateInsightsFunc != nil {
		return m.GenerateInsightsFunc(ctx, since)
	}
	return nil, nil
}

func (m *mockLearningService) ListInsights(ctx context.Context, validationStatus string, limit int) ([]*models.LearningInsight, error) {
	if m.ListInsightsFunc != nil {
		return m.ListInsightsFunc(ctx, validationStatus, limit)
	}
	return nil, nil
}

func (m *mockLearningService) ValidateInsight(ctx context.Context, id uuid.UUID, status string) error {
	if m.ValidateInsightFunc != nil {
		return m.ValidateInsightFunc(ctx, id, status)
	}
	return nil
}

type mockTaskExecutor struct {
	ExecuteFunc          func(ctx context.Context, taskCtx *models.TaskContext) (*models.TaskResult, error)
	ExecuteExcludingFunc func(ctx context.Context, taskCtx *models.TaskContext, exclude []string) (*models.TaskResult, error)
}

func (m *mockTaskExecutor) Execute(ctx context.Context, taskCtx *models.TaskContext) (*models.TaskResult, error) {
	if m.ExecuteFunc != nil {
		return m.ExecuteFunc(ctx, taskCtx)
	}
	return &models.TaskResult{TaskType: taskCtx.TaskType}, nil
}

func (m *mockTaskExecutor) ExecuteExcluding(ctx context.Context, taskCtx *models.TaskContext, exclude []string) (*models.TaskResult, error) {
	if m.ExecuteExcludingFunc != nil {
		return m.ExecuteExcludingFunc(ctx, taskCtx, exclude)
	}
	return &models.TaskResult{TaskType: taskCtx.TaskType}, nil
}
