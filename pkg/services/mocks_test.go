package services

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/siteforge-io/design-engine/pkg/models"
)

// mockComponentRepository is a configurable mock for ComponentRepository.
// Set the function fields to control behavior in tests.
type mockComponentRepository struct {
	UpsertFunc             func(ctx context.Context, c *models.Component) error
	GetByIDFunc            func(ctx context.Context, id uuid.UUID) (*models.Component, error)
	SearchFunc             func(ctx context.Context, filters models.ComponentFilters, limit int) ([]*models.Component, error)
	TopPerformingFunc      func(ctx context.Context, limit int) ([]*models.Component, error)
	RecordPerformanceFunc  func(ctx context.Context, rec *models.PerformanceRecord) error
	ListByIDsFunc          func(ctx context.Context, ids []uuid.UUID) ([]*models.Component, error)
	ListCreatedBetweenFunc func(ctx context.Context, from, to time.Time) ([]*models.Component, error)
	PerformanceSamplesFunc func(ctx context.Context, since time.Time) ([]models.PerformanceSample, error)
}

func (m *mockComponentRepository) Upsert(ctx context.Context, c *models.Component) error {
	if m.UpsertFunc != nil {
		return m.UpsertFunc(ctx, c)
	}
	return nil
}

func (m *mockComponentRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Component, error) {
	if m.GetByIDFunc != nil {
		return m.GetByIDFunc(ctx, id)
	}
	return &models.Component{ID: id}, nil
}

func (m *mockComponentRepository) Search(ctx context.Context, filters models.ComponentFilters, limit int) ([]*models.Component, error) {
	if m.SearchFunc != nil {
		return m.SearchFunc(ctx, filters, limit)
	}
	return nil, nil
}

func (m *mockComponentRepository) TopPerforming(ctx context.Context, limit int) ([]*models.Component, error) {
	if m.TopPerformingFunc != nil {
		return m.TopPerformingFunc(ctx, limit)
	}
	return nil, nil
}

func (m *mockComponentRepository) RecordPerformance(ctx context.Context, rec *models.PerformanceRecord) error {
	if m.RecordPerformanceFunc != nil {
		return m.RecordPerformanceFunc(ctx, rec)
	}
	return nil
}

func (m *mockComponentRepository) ListByIDs(ctx context.Context, ids []uuid.UUID) ([]*models.Component, error) {
	if m.ListByIDsFunc != nil {
		return m.ListByIDsFunc(ctx, ids)
	}
	return nil, nil
}

func (m *mockComponentRepository) ListCreatedBetween(ctx context.Context, from, to time.Time) ([]*models.Component, error) {
	if m.ListCreatedBetweenFunc != nil {
		return m.ListCreatedBetweenFunc(ctx, from, to)
	}
	return nil, nil
}

func (m *mockComponentRepository) PerformanceSamples(ctx context.Context, since time.Time) ([]models.PerformanceSample, error) {
	if m.PerformanceSamplesFunc != nil {
		return m.PerformanceSamplesFunc(ctx, since)
	}
	return nil, nil
}

// mockEmbeddingRepository is a configurable mock for EmbeddingRepository.
type mockEmbeddingRepository struct {
	UpsertFunc           func(ctx context.Context, componentID uuid.UUID, vector []float32, meta models.EmbeddingMetadata) error
	NearestNeighborsFunc func(ctx context.Context, query []float32, queryMeta models.EmbeddingMetadata, k int, minSimilarity float64) ([]models.SimilarComponent, error)
	SearchByTextFunc     func(ctx context.Context, text string, filters models.ComponentFilters, limit int) ([]*models.Component, error)

	UpsertCalls int
}

func (m *mockEmbeddingRepository) Upsert(ctx context.Context, componentID uuid.UUID, vector []float32, meta models.EmbeddingMetadata) error {
	m.UpsertCalls++
	if m.UpsertFunc != nil {
		return m.UpsertFunc(ctx, componentID, vector, meta)
	}
	return nil
}

func (m *mockEmbeddingRepository) NearestNeighbors(ctx context.Context, query []float32, queryMeta models.EmbeddingMetadata, k int, minSimilarity float64) ([]models.SimilarComponent, error) {
	if m.NearestNeighborsFunc != nil {
		return m.NearestNeighborsFunc(ctx, query, queryMeta, k, minSimilarity)
	}
	return nil, nil
}

func (m *mockEmbeddingRepository) SearchByText(ctx context.Context, text string, filters models.ComponentFilters, limit int) ([]*models.Component, error) {
	if m.SearchByTextFunc != nil {
		return m.SearchByTextFunc(ctx, text, filters, limit)
	}
	return nil, nil
}

// mockCandidateRepository is a configurable mock for CandidateRepository.
type mockCandidateRepository struct {
	CreateFunc       func(ctx context.Context, c *models.CandidateComponent) error
	GetByIDFunc      func(ctx context.Context, id uuid.UUID) (*models.CandidateComponent, error)
	ListBySiteFunc   func(ctx context.Context, siteID uuid.UUID) ([]*models.CandidateComponent, error)
	MarkPromotedFunc func(ctx context.Context, id, componentID uuid.UUID) error
	MarkRejectedFunc func(ctx context.Context, id uuid.UUID) error

	PromotedCalls int
}

func (m *mockCandidateRepository) Create(ctx context.Context, c *models.CandidateComponent) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	c.PromotionStatus = models.PromotionStatusCandidate
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, c)
	}
	return nil
}

func (m *mockCandidateRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.CandidateComponent, error) {
	if m.GetByIDFunc != nil {
		return m.GetByIDFunc(ctx, id)
	}
	return &models.CandidateComponent{ID: id}, nil
}

func (m *mockCandidateRepository) ListBySite(ctx context.Context, siteID uuid.UUID) ([]*models.CandidateComponent, error) {
	if m.ListBySiteFunc != nil {
		return m.ListBySiteFunc(ctx, siteID)
	}
	return nil, nil
}

func (m *mockCandidateRepository) MarkPromoted(ctx context.Context, id, componentID uuid.UUID) error {
	m.PromotedCalls++
	if m.MarkPromotedFunc != nil {
		return m.MarkPromotedFunc(ctx, id, componentID)
	}
	return nil
}

func (m *mockCandidateRepository) MarkRejected(ctx context.Context, id uuid.UUID) error {
	if m.MarkRejectedFunc != nil {
		return m.MarkRejectedFunc(ctx, id)
	}
	return nil
}

// mockSiteRepository is a configurable mock for SiteRepository.
type mockSiteRepository struct {
	CreateFunc  func(ctx context.Context, site *models.OnboardingSite) error
	GetByIDFunc func(ctx context.Context, id uuid.UUID) (*models.OnboardingSite, error)
}

func (m *mockSiteRepository) Create(ctx context.Context, site *models.OnboardingSite) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, site)
	}
	return nil
}

func (m *mockSiteRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.OnboardingSite, error) {
	if m.GetByIDFunc != nil {
		return m.GetByIDFunc(ctx, id)
	}
	return &models.OnboardingSite{ID: id, Domain: "example.com"}, nil
}

// mockInsightRepository is a configurable mock for InsightRepository.
type mockInsightRepository struct {
	CreateFunc                 func(ctx context.Context, insight *models.LearningInsight) error
	ListFunc                   func(ctx context.Context, validationStatus string, limit int) ([]*models.LearningInsight, error)
	UpdateValidationStatusFunc func(ctx context.Context, id uuid.UUID, status string) error

	Created []*models.LearningInsight
}

func (m *mockInsightRepository) Create(ctx context.Context, insight *models.LearningInsight) error {
	m.Created = append(m.Created, insight)
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, insight)
	}
	return nil
}

func (m *mockInsightRepository) List(ctx context.Context, validationStatus string, limit int) ([]*models.LearningInsight, error) {
	if m.ListFunc != nil {
		return m.ListFunc(ctx, validationStatus, limit)
	}
	return nil, nil
}

func (m *mockInsightRepository) UpdateValidationStatus(ctx context.Context, id uuid.UUID, status string) error {
	if m.UpdateValidationStatusFunc != nil {
		return m.UpdateValidationStatusFunc(ctx, id, status)
	}
	return nil
}

// mockPatternRepository records observations for verification.
type mockPatternRepository struct {
	ObserveFunc func(ctx context.Context, dimension, value string, impact float64) error
	ListFunc    func(ctx context.Context, dimension string) ([]*models.LearningPattern, error)

	Observed []string // "dimension/value" pairs in call order
}

func (m *mockPatternRepository) Observe(ctx context.Context, dimension, value string, impact float64) error {
	m.Observed = append(m.Observed, dimension+"/"+value)
	if m.ObserveFunc != nil {
		return m.ObserveFunc(ctx, dimension, value, impact)
	}
	return nil
}

func (m *mockPatternRepository) List(ctx context.Context, dimension string) ([]*models.LearningPattern, error) {
	if m.ListFunc != nil {
		return m.ListFunc(ctx, dimension)
	}
	return nil, nil
}

// mockTaskRepository records created task records for verification.
type mockTaskRepository struct {
	CreateFunc     func(ctx context.Context, rec *models.TaskRecord) error
	ListRecentFunc func(ctx context.Context, limit int) ([]*models.TaskRecord, error)

	Created []*models.TaskRecord
}

func (m *mockTaskRepository) Create(ctx context.Context, rec *models.TaskRecord) error {
	m.Created = append(m.Created, rec)
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, rec)
	}
	return nil
}

func (m *mockTaskRepository) ListRecent(ctx context.Context, limit int) ([]*models.TaskRecord, error) {
	if m.ListRecentFunc != nil {
		return m.ListRecentFunc(ctx, limit)
	}
	return nil, nil
}
