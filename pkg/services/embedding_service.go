package services

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/siteforge-io/design-engine/pkg/llm"
	"github.com/siteforge-io/design-engine/pkg/models"
	"github.com/siteforge-io/design-engine/pkg/repositories"
)

// EmbeddingService maintains the vector representation of catalog components
// and answers similarity queries.
type EmbeddingService interface {
	// IndexComponent (re)generates and stores the embedding for a component.
	// Idempotent: unchanged component content produces an identical vector.
	IndexComponent(ctx context.Context, c *models.Component) error

	// SimilarToComponent finds components most similar to an existing one.
	// The component itself is excluded from the results.
	SimilarToComponent(ctx context.Context, id uuid.UUID, k int, minSimilarity float64) ([]models.SimilarComponent, error)

	// SearchByText keyword-matches components independent of vector
	// availability.
	SearchByText(ctx context.Context, text string, filters models.ComponentFilters, limit int) ([]*models.Component, error)
}

type embeddingService struct {
	components repositories.ComponentRepository
	embeddings repositories.EmbeddingRepository
	embedder   llm.Embedder
	logger     *zap.Logger
}

// NewEmbeddingService creates a new embedding service. Pass the deterministic
// embedder unless a network-backed embedding endpoint is configured.
func NewEmbeddingService(
	components repositories.ComponentRepository,
	embeddings repositories.EmbeddingRepository,
	embedder llm.Embedder,
	logger *zap.Logger,
) EmbeddingService {
	return &embeddingService{
		components: components,
		embeddings: embeddings,
		embedder:   embedder,
		logger:     logger.Named("embedding"),
	}
}

var _ EmbeddingService = (*embeddingService)(nil)

// IndexComponent (re)generates and stores the embedding for a component.
func (s *embeddingService) IndexComponent(ctx context.Context, c *models.Component) error {
	vec, err := s.embedder.Embed(ctx, ComponentDocument(c))
	if err != nil {
		return fmt.Errorf("failed to generate embedding: %w", err)
	}

	meta := models.EmbeddingMetadata{
		ComponentType:  c.ComponentType,
		Style:          c.Style,
		Tags:           c.Tags,
		AestheticScore: c.AestheticScore,
	}
	if err := s.embeddings.Upsert(ctx, c.ID, vec, meta); err != nil {
		return fmt.Errorf("failed to store embedding: %w", err)
	}

	s.logger.Debug("component indexed", zap.String("component_id", c.ID.String()))
	return nil
}

// SimilarToComponent finds the nearest neighbors of an existing component.
func (s *embeddingService) SimilarToComponent(ctx context.Context, id uuid.UUID, k int, minSimilarity float64) ([]models.SimilarComponent, error) {
	c, err := s.components.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	vec, err := s.embedder.Embed(ctx, ComponentDocument(c))
	if err != nil {
		return nil, fmt.Errorf("failed to embed query: %w", err)
	}
	meta := models.EmbeddingMetadata{
		ComponentType:  c.ComponentType,
		Style:          c.Style,
		Tags:           c.Tags,
		AestheticScore: c.AestheticScore,
	}

	// Ask for one extra hit since the component matches itself perfectly.
	hits, err := s.embeddings.NearestNeighbors(ctx, vec, meta, k+1, minSimilarity)
	if err != nil {
		return nil, err
	}

	filtered := hits[:0]
	for _, h := range hits {
		if h.ComponentID != id {
			filtered = append(filtered, h)
		}
	}
	if len(filtered) > k {
		filtered = filtered[:k]
	}
	return filtered, nil
}

// SearchByText keyword-matches components.
func (s *embeddingService) SearchByText(ctx context.Context, text string, filters models.ComponentFilters, limit int) ([]*models.Component, error) {
	return s.embeddings.SearchByText(ctx, text, filters, limit)
}

// ComponentDocument renders a component's describable content into the
// canonical text fed to the embedder. Field order is fixed and tags are
// sorted so equal content always produces equal text (and therefore, with
// the deterministic embedder, bit-identical vectors).
func ComponentDocument(c *models.Component) string {
	tags := append([]string(nil), c.Tags...)
	sort.Strings(tags)
	industries := append([]string(nil), c.Industries...)
	sort.Strings(industries)

	var b strings.Builder
	b.WriteString(c.Name)
	b.WriteString("\n")
	b.WriteString(c.Description)
	b.WriteString("\ntype: ")
	b.WriteString(c.ComponentType)
	b.WriteString("\nstyle: ")
	b.WriteString(c.Style)
	b.WriteString("\ntags: ")
	b.WriteString(strings.Join(tags, " "))
	b.WriteString("\ncomplexity: ")
	b.WriteString(strconv.Itoa(c.Complexity))
	b.WriteString("\naesthetic: ")
	b.WriteString(strconv.Itoa(c.AestheticScore))
	b.WriteString("\nindustries: ")
	b.WriteString(strings.Join(industries, " "))
	return b.String()
}
