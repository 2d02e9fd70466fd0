package repositories

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/siteforge-io/design-engine/pkg/apperrors"
	"github.com/siteforge-io/design-engine/pkg/database"
	"github.com/siteforge-io/design-engine/pkg/models"
)

// InsightRepository stores derived learning insights. Insights are created
// pending; only their validation status ever changes afterward.
type InsightRepository interface {
	// Create inserts a new insight with status pending.
	Create(ctx context.Context, insight *models.LearningInsight) error

	// List retrieves insights, newest first, optionally filtered by
	// validation status ("" means all).
	List(ctx context.Context, validationStatus string, limit int) ([]*models.LearningInsight, error)

	// UpdateValidationStatus transitions a pending insight to validated or
	// rejected. Returns apperrors.ErrConflict if the insight was already
	// decided, apperrors.ErrNotFound if it does not exist.
	UpdateValidationStatus(ctx context.Context, id uuid.UUID, status string) error
}

type insightRepository struct {
	db *database.DB
}

// NewInsightRepository creates a new insight repository.
func NewInsightRepository(db *database.DB) InsightRepository {
	return &insightRepository{db: db}
}

// Create inserts a new insight.
func (r *insightRepository) Create(ctx context.Context, insight *models.LearningInsight) error {
	if insight.ID == uuid.Nil {
		insight.ID = uuid.New()
	}
	insight.CreatedAt = time.Now()
	insight.ValidationStatus = models.ValidationStatusPending

	query := `
		INSERT INTO learning_insights (id, insight_type, confidence_score, impact_score,
			description, actionable_recommendation, data_points, validation_status, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`

	_, err := r.db.Exec(ctx, query,
		insight.ID, insight.InsightType, insight.ConfidenceScore, insight.ImpactScore,
		insight.Description, insight.ActionableRecommendation, insight.DataPoints,
		insight.ValidationStatus, insight.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create insight: %w", err)
	}
	return nil
}

// List retrieves insights, newest first.
func (r *insightRepository) List(ctx context.Context, validationStatus string, limit int) ([]*models.LearningInsight, error) {
	if limit <= 0 || limit > DefaultSearchLimit {
		limit = DefaultSearchLimit
	}

	query := `
		SELECT id, insight_type, confidence_score, impact_score, description,
			actionable_recommendation, data_points, validation_status, created_at
		FROM learning_insights
		WHERE ($1 = '' OR validation_status = $1)
		ORDER BY created_at DESC, id
		LIMIT $2`

	rows, err := r.db.Query(ctx, query, validationStatus, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list insights: %w", err)
	}
	defer rows.Close()

	var insights []*models.LearningInsight
	for rows.Next() {
		var i models.LearningInsight
		err := rows.Scan(
			&i.ID, &i.InsightType, &i.ConfidenceScore, &i.ImpactScore, &i.Description,
			&i.ActionableRecommendation, &i.DataPoints, &i.ValidationStatus, &i.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan insight: %w", err)
		}
		insights = append(insights, &i)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating insights: %w", err)
	}
	return insights, nil
}

// UpdateValidationStatus transitions a pending insight.
func (r *insightRepository) UpdateValidationStatus(ctx context.Context, id uuid.UUID, status string) error {
	if status != models.ValidationStatusValidated && status != models.ValidationStatusRejected {
		return fmt.Errorf("invalid validation status %q: %w", status, apperrors.ErrValidation)
	}

	query := `
		UPDATE learning_insights SET validation_status = $2
		WHERE id = $1 AND validation_status = 'pending'`

	result, err := r.db.Exec(ctx, query, id, status)
	if err != nil {
		return fmt.Errorf("failed to update insight status: %w", err)
	}
	if result.RowsAffected() == 0 {
		var exists bool
		err := r.db.QueryRow(ctx, "SELECT EXISTS (SELECT 1 FROM learning_insights WHERE id = $1)", id).Scan(&exists)
		if err != nil && !errors.Is(err, pgx.ErrNoRows) {
			return fmt.Errorf("failed to check insight: %w", err)
		}
		if !exists {
			return fmt.Errorf("insight %s: %w", id, apperrors.ErrNotFound)
		}
		return fmt.Errorf("insight %s already decided: %w", id, apperrors.ErrConflict)
	}
	return nil
}

// Ensure insightRepository implements InsightRepository at compile time.
var _ InsightRepository = (*insightRepository)(nil)
