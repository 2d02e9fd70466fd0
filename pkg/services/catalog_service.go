package services

import (
	"context"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/siteforge-io/design-engine/pkg/models"
	"github.com/siteforge-io/design-engine/pkg/repositories"
)

// CatalogService is the write-through front of the component catalog: every
// accepted component write also refreshes the similarity index.
type CatalogService interface {
	// UpsertComponent validates and stores a component, then reindexes it.
	UpsertComponent(ctx context.Context, c *models.Component) error

	// GetComponent retrieves one component by id.
	GetComponent(ctx context.Context, id uuid.UUID) (*models.Component, error)

	// SearchComponents runs a ranked filter search over the catalog.
	SearchComponents(ctx context.Context, filters models.ComponentFilters, limit int) ([]*models.Component, error)

	// TopPerforming lists components ranked by observed conversion rate.
	TopPerforming(ctx context.Context, limit int) ([]*models.Component, error)
}

type catalogService struct {
	components repositories.ComponentRepository
	embeddings EmbeddingService
	logger     *zap.Logger
}

// NewCatalogService creates a new catalog service.
func NewCatalogService(
	components repositories.ComponentRepository,
	embeddings EmbeddingService,
	logger *zap.Logger,
) CatalogService {
	return &catalogService{
		components: components,
		embeddings: embeddings,
		logger:     logger.Named("catalog"),
	}
}

var _ CatalogService = (*catalogService)(nil)

// UpsertComponent stores a component and refreshes its similarity index
// entry. An indexing failure does not roll back the catalog write; the
// component stays searchable by filters and gets reindexed on its next write.
func (s *catalogService) UpsertComponent(ctx context.Context, c *models.Component) error {
	if err := s.components.Upsert(ctx, c); err != nil {
		return err
	}

	if err := s.embeddings.IndexComponent(ctx, c); err != nil {
		s.logger.Warn("component stored but not indexed",
			zap.String("component_id", c.ID.String()),
			zap.Error(err))
	}
	return nil
}

// GetComponent retrieves one component by id.
func (s *catalogService) GetComponent(ctx context.Context, id uuid.UUID) (*models.Component, error) {
	return s.components.GetByID(ctx, id)
}

// SearchComponents runs a ranked filter search.
func (s *catalogService) SearchComponents(ctx context.Context, filters models.ComponentFilters, limit int) ([]*models.Component, error) {
	return s.components.Search(ctx, filters, limit)
}

// TopPerforming lists components ranked by observed conversion rate.
func (s *catalogService) TopPerforming(ctx context.Context, limit int) ([]*models.Component, error) {
	return s.components.TopPerforming(ctx, limit)
}
