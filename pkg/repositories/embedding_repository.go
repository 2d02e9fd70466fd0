package repositories

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/pgvector/pgvector-go"
	"go.uber.org/zap"

	"github.com/siteforge-io/design-engine/pkg/database"
	"github.com/siteforge-io/design-engine/pkg/models"
)

// EmbeddingRepository maintains one vector row per component and answers
// nearest-neighbor queries. It must keep functioning when the pgvector
// extension is absent: writes then keep only the JSON representation and
// reads degrade to metadata-overlap ranking.
type EmbeddingRepository interface {
	// Upsert stores the vector and metadata snapshot for a component.
	// Idempotent; at most one row per component id.
	Upsert(ctx context.Context, componentID uuid.UUID, vector []float32, meta models.EmbeddingMetadata) error

	// NearestNeighbors returns up to k components with cosine similarity to
	// the query vector of at least minSimilarity, most similar first. When
	// vector search is unavailable it falls back to ranking by metadata
	// overlap against queryMeta; the fallback never returns an error for
	// the degradation itself.
	NearestNeighbors(ctx context.Context, query []float32, queryMeta models.EmbeddingMetadata, k int, minSimilarity float64) ([]models.SimilarComponent, error)

	// SearchByText keyword-matches name/description/tags combined with the
	// catalog filter predicates. Independent of vector availability.
	SearchByText(ctx context.Context, text string, filters models.ComponentFilters, limit int) ([]*models.Component, error)
}

type embeddingRepository struct {
	db     *database.DB
	logger *zap.Logger

	// Set after the first "undefined function/column" error so later queries
	// skip straight to the metadata fallback.
	vectorUnavailable atomic.Bool
}

// NewEmbeddingRepository creates a new embedding repository.
func NewEmbeddingRepository(db *database.DB, logger *zap.Logger) EmbeddingRepository {
	return &embeddingRepository{db: db, logger: logger.Named("embedding-repo")}
}

// Upsert stores the vector in both representations where possible.
func (r *embeddingRepository) Upsert(ctx context.Context, componentID uuid.UUID, vector []float32, meta models.EmbeddingMetadata) error {
	vectorJSON, err := json.Marshal(vector)
	if err != nil {
		return fmt.Errorf("failed to encode embedding: %w", err)
	}
	now := time.Now()

	if !r.vectorUnavailable.Load() {
		query := `
			INSERT INTO component_embeddings (component_id, embedding, embedding_json,
				component_type, style, tags, aesthetic_score, updated_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
			ON CONFLICT (component_id) DO UPDATE SET
				embedding = EXCLUDED.embedding,
				embedding_json = EXCLUDED.embedding_json,
				component_type = EXCLUDED.component_type,
				style = EXCLUDED.style,
				tags = EXCLUDED.tags,
				aesthetic_score = EXCLUDED.aesthetic_score,
				updated_at = EXCLUDED.updated_at`

		_, err = r.db.Exec(ctx, query,
			componentID, pgvector.NewVector(vector), vectorJSON,
			meta.ComponentType, meta.Style, meta.Tags, meta.AestheticScore, now,
		)
		if err == nil {
			return nil
		}
		if !isVectorUnavailable(err) {
			return fmt.Errorf("failed to upsert embedding: %w", err)
		}
		r.markDegraded(err)
	}

	query := `
		INSERT INTO component_embeddings (component_id, embedding_json,
			component_type, style, tags, aesthetic_score, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (component_id) DO UPDATE SET
			embedding_json = EXCLUDED.embedding_json,
			component_type = EXCLUDED.component_type,
			style = EXCLUDED.style,
			tags = EXCLUDED.tags,
			aesthetic_score = EXCLUDED.aesthetic_score,
			updated_at = EXCLUDED.updated_at`

	_, err = r.db.Exec(ctx, query,
		componentID, vectorJSON,
		meta.ComponentType, meta.Style, meta.Tags, meta.AestheticScore, now,
	)
	if err != nil {
		return fmt.Errorf("failed to upsert embedding: %w", err)
	}
	return nil
}

// NearestNeighbors ranks by cosine similarity, degrading to metadata overlap.
func (r *embeddingRepository) NearestNeighbors(ctx context.Context, query []float32, queryMeta models.EmbeddingMetadata, k int, minSimilarity float64) ([]models.SimilarComponent, error) {
	if k <= 0 {
		return nil, nil
	}

	if !r.vectorUnavailable.Load() {
		hits, err := r.vectorNeighbors(ctx, query, k, minSimilarity)
		if err == nil {
			return hits, nil
		}
		if !isVectorUnavailable(err) {
			return nil, err
		}
		r.markDegraded(err)
	}

	return r.metadataNeighbors(ctx, queryMeta, k, minSimilarity)
}

func (r *embeddingRepository) vectorNeighbors(ctx context.Context, query []float32, k int, minSimilarity float64) ([]models.SimilarComponent, error) {
	sql := `
		SELECT component_id, 1 - (embedding <=> $1) AS similarity
		FROM component_embeddings
		WHERE embedding IS NOT NULL AND 1 - (embedding <=> $1) >= $2
		ORDER BY similarity DESC, component_id
		LIMIT $3`

	rows, err := r.db.Query(ctx, sql, pgvector.NewVector(query), minSimilarity, k)
	if err != nil {
		return nil, fmt.Errorf("failed to query nearest neighbors: %w", err)
	}
	defer rows.Close()

	var hits []models.SimilarComponent
	for rows.Next() {
		var h models.SimilarComponent
		if err := rows.Scan(&h.ComponentID, &h.Similarity); err != nil {
			return nil, fmt.Errorf("failed to scan neighbor: %w", err)
		}
		hits = append(hits, h)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating neighbors: %w", err)
	}
	return hits, nil
}

// metadataNeighbors is the degraded ranking path: shared-tag Jaccard overlap
// blended with aesthetic-score proximity. Recall is worse than true vector
// search, but the ordering is strict and deterministic for equal inputs.
func (r *embeddingRepository) metadataNeighbors(ctx context.Context, queryMeta models.EmbeddingMetadata, k int, minSimilarity float64) ([]models.SimilarComponent, error) {
	sql := `
		SELECT component_id, component_type, style, tags, aesthetic_score
		FROM component_embeddings`

	rows, err := r.db.Query(ctx, sql)
	if err != nil {
		return nil, fmt.Errorf("failed to query embedding metadata: %w", err)
	}
	defer rows.Close()

	var hits []models.SimilarComponent
	for rows.Next() {
		var (
			id   uuid.UUID
			meta models.EmbeddingMetadata
		)
		if err := rows.Scan(&id, &meta.ComponentType, &meta.Style, &meta.Tags, &meta.AestheticScore); err != nil {
			return nil, fmt.Errorf("failed to scan embedding metadata: %w", err)
		}
		sim := metadataSimilarity(queryMeta, meta)
		if sim >= minSimilarity {
			hits = append(hits, models.SimilarComponent{ComponentID: id, Similarity: sim})
		}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating embedding metadata: %w", err)
	}

	sort.Slice(hits, func(i, j int) bool {
		if hits[i].Similarity != hits[j].Similarity {
			return hits[i].Similarity > hits[j].Similarity
		}
		return hits[i].ComponentID.String() < hits[j].ComponentID.String()
	})
	if len(hits) > k {
		hits = hits[:k]
	}
	return hits, nil
}

// SearchByText keyword-matches name/description/tags plus catalog filters.
func (r *embeddingRepository) SearchByText(ctx context.Context, text string, filters models.ComponentFilters, limit int) ([]*models.Component, error) {
	if limit <= 0 || limit > DefaultSearchLimit {
		limit = DefaultSearchLimit
	}

	where, args := buildComponentPredicates(filters)
	args = append(args, "%"+text+"%")
	textPredicate := fmt.Sprintf(
		"(name ILIKE $%d OR description ILIKE $%d OR EXISTS (SELECT 1 FROM unnest(tags) t WHERE t ILIKE $%d))",
		len(args), len(args), len(args),
	)
	if where == "" {
		where = "WHERE " + textPredicate
	} else {
		where += " AND " + textPredicate
	}
	args = append(args, limit)

	query := fmt.Sprintf(`
		SELECT `+componentColumns+`
		FROM components
		%s
		ORDER BY aesthetic_score DESC, conversion_rate DESC NULLS LAST, id
		LIMIT $%d`, where, len(args))

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to search by text: %w", err)
	}
	defer rows.Close()

	var components []*models.Component
	for rows.Next() {
		c, err := scanComponent(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan component: %w", err)
		}
		components = append(components, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating components: %w", err)
	}
	return components, nil
}

func (r *embeddingRepository) markDegraded(err error) {
	if r.vectorUnavailable.CompareAndSwap(false, true) {
		r.logger.Warn("vector search unavailable, degrading to metadata ranking",
			zap.Error(err))
	}
}

// isVectorUnavailable recognizes the SQLSTATEs raised when the pgvector
// extension (and therefore the embedding column and <=> operator) is missing.
func isVectorUnavailable(err error) bool {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return false
	}
	switch pgErr.Code {
	case "42883", // undefined_function (<=>)
		"42704", // undefined_object (vector type)
		"42703": // undefined_column (embedding)
		return true
	}
	return false
}

// metadataSimilarity blends tag overlap (70%) with aesthetic proximity (30%).
func metadataSimilarity(a, b models.EmbeddingMetadata) float64 {
	var score float64

	score += 0.7 * jaccard(a.Tags, b.Tags)

	diff := float64(a.AestheticScore - b.AestheticScore)
	if diff < 0 {
		diff = -diff
	}
	score += 0.3 * (1 - diff/float64(models.MaxScore))

	// Exact attribute matches nudge equal-tag candidates apart.
	if a.ComponentType != "" && a.ComponentType == b.ComponentType {
		score = min(1, score+0.05)
	}
	if a.Style != "" && a.Style == b.Style {
		score = min(1, score+0.05)
	}
	return score
}

func jaccard(a, b []string) float64 {
	if len(a) == 0 && len(b) == 0 {
		return 0
	}
	set := make(map[string]bool, len(a))
	for _, t := range a {
		set[t] = true
	}
	var shared int
	union := len(set)
	for _, t := range b {
		if set[t] {
			shared++
		} else {
			union++
		}
	}
	if union == 0 {
		return 0
	}
	return float64(shared) / float64(union)
}

// Ensure embeddingRepository implements EmbeddingRepository at compile time.
var _ EmbeddingRepository = (*embeddingRepository)(nil)
