package repositories

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/siteforge-io/design-engine/pkg/database"
	"github.com/siteforge-io/design-engine/pkg/models"
)

// PatternRepository maintains rolling per-dimension observation counters that
// feed insight generation. Observations are commutative: the counters update
// with a running-mean formula inside one statement, so concurrent writers
// converge on the same aggregate.
type PatternRepository interface {
	// Observe folds one impact observation into the (dimension, value) counter.
	Observe(ctx context.Context, dimension, value string, impact float64) error

	// List retrieves all patterns for a dimension, most observed first.
	List(ctx context.Context, dimension string) ([]*models.LearningPattern, error)
}

type patternRepository struct {
	db *database.DB
}

// NewPatternRepository creates a new pattern repository.
func NewPatternRepository(db *database.DB) PatternRepository {
	return &patternRepository{db: db}
}

// Observe folds one observation into the running counters.
func (r *patternRepository) Observe(ctx context.Context, dimension, value string, impact float64) error {
	query := `
		INSERT INTO learning_patterns (id, dimension, value, observations, avg_impact, updated_at)
		VALUES ($1, $2, $3, 1, $4, now())
		ON CONFLICT (dimension, value) DO UPDATE SET
			observations = learning_patterns.observations + 1,
			avg_impact = (learning_patterns.avg_impact * learning_patterns.observations + EXCLUDED.avg_impact)
				/ (learning_patterns.observations + 1),
			updated_at = now()`

	_, err := r.db.Exec(ctx, query, uuid.New(), dimension, value, impact)
	if err != nil {
		return fmt.Errorf("failed to observe pattern: %w", err)
	}
	return nil
}

// List retrieves all patterns for a dimension.
func (r *patternRepository) List(ctx context.Context, dimension string) ([]*models.LearningPattern, error) {
	query := `
		SELECT id, dimension, value, observations, avg_impact, updated_at
		FROM learning_patterns
		WHERE dimension = $1
		ORDER BY observations DESC, value`

	rows, err := r.db.Query(ctx, query, dimension)
	if err != nil {
		return nil, fmt.Errorf("failed to list patterns: %w", err)
	}
	defer rows.Close()

	var patterns []*models.LearningPattern
	for rows.Next() {
		var p models.LearningPattern
		err := rows.Scan(&p.ID, &p.Dimension, &p.Value, &p.Observations, &p.AvgImpact, &p.UpdatedAt)
		if err != nil {
			return nil, fmt.Errorf("failed to scan pattern: %w", err)
		}
		patterns = append(patterns, &p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating patterns: %w", err)
	}
	return patterns, nil
}

// Ensure patternRepository implements PatternRepository at compile time.
var _ PatternRepository = (*patternRepository)(nil)
