package repositories

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/siteforge-io/design-engine/pkg/apperrors"
	"github.com/siteforge-io/design-engine/pkg/database"
	"github.com/siteforge-io/design-engine/pkg/models"
)

// CandidateRepository stores extracted candidate components and their
// promotion decisions. Candidates are immutable once decided.
type CandidateRepository interface {
	// Create inserts a new candidate with status "candidate".
	Create(ctx context.Context, c *models.CandidateComponent) error

	// GetByID retrieves a candidate. Returns apperrors.ErrNotFound when missing.
	GetByID(ctx context.Context, id uuid.UUID) (*models.CandidateComponent, error)

	// ListBySite retrieves all candidates extracted from a site.
	ListBySite(ctx context.Context, siteID uuid.UUID) ([]*models.CandidateComponent, error)

	// MarkPromoted flips an undecided candidate to promoted, recording the
	// materialized component id. Returns apperrors.ErrConflict if already decided.
	MarkPromoted(ctx context.Context, id, componentID uuid.UUID) error

	// MarkRejected flips an undecided candidate to rejected.
	// Returns apperrors.ErrConflict if already decided.
	MarkRejected(ctx context.Context, id uuid.UUID) error
}

type candidateRepository struct {
	db *database.DB
}

// NewCandidateRepository creates a new candidate repository.
func NewCandidateRepository(db *database.DB) CandidateRepository {
	return &candidateRepository{db: db}
}

const candidateColumns = `id, site_id, raw_html, raw_css, raw_js, cleaned_html, cleaned_css,
		cleaned_js, detected_type, performance_score, aesthetic_score, uniqueness_score,
		promotion_status, promoted_component_id, created_at, updated_at`

// Create inserts a new candidate.
func (r *candidateRepository) Create(ctx context.Context, c *models.CandidateComponent) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	now := time.Now()
	c.CreatedAt = now
	c.UpdatedAt = now
	c.PromotionStatus = models.PromotionStatusCandidate

	query := `
		INSERT INTO extracted_components (` + candidateColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)`

	_, err := r.db.Exec(ctx, query,
		c.ID, c.SiteID, c.RawHTML, c.RawCSS, c.RawJS,
		c.CleanedHTML, c.CleanedCSS, c.CleanedJS, c.DetectedType,
		c.PerformanceScore, c.AestheticScore, c.UniquenessScore,
		c.PromotionStatus, c.PromotedComponentID, c.CreatedAt, c.UpdatedAt,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23503" {
			return fmt.Errorf("site %s: %w", c.SiteID, apperrors.ErrNotFound)
		}
		return fmt.Errorf("failed to create candidate: %w", err)
	}
	return nil
}

// GetByID retrieves a candidate by id.
func (r *candidateRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.CandidateComponent, error) {
	query := `SELECT ` + candidateColumns + ` FROM extracted_components WHERE id = $1`

	c, err := scanCandidate(r.db.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("candidate %s: %w", id, apperrors.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get candidate: %w", err)
	}
	return c, nil
}

// ListBySite retrieves all candidates extracted from a site.
func (r *candidateRepository) ListBySite(ctx context.Context, siteID uuid.UUID) ([]*models.CandidateComponent, error) {
	query := `SELECT ` + candidateColumns + ` FROM extracted_components
		WHERE site_id = $1 ORDER BY created_at DESC`

	rows, err := r.db.Query(ctx, query, siteID)
	if err != nil {
		return nil, fmt.Errorf("failed to list candidates: %w", err)
	}
	defer rows.Close()

	var candidates []*models.CandidateComponent
	for rows.Next() {
		c, err := scanCandidate(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan candidate: %w", err)
		}
		candidates = append(candidates, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating candidates: %w", err)
	}
	return candidates, nil
}

// MarkPromoted flips an undecided candidate to promoted.
func (r *candidateRepository) MarkPromoted(ctx context.Context, id, componentID uuid.UUID) error {
	return r.decide(ctx, id, models.PromotionStatusPromoted, &componentID)
}

// MarkRejected flips an undecided candidate to rejected.
func (r *candidateRepository) MarkRejected(ctx context.Context, id uuid.UUID) error {
	return r.decide(ctx, id, models.PromotionStatusRejected, nil)
}

// decide guards the one-way candidate -> promoted/rejected transition in SQL:
// the WHERE clause refuses to touch already-decided rows.
func (r *candidateRepository) decide(ctx context.Context, id uuid.UUID, status string, componentID *uuid.UUID) error {
	query := `
		UPDATE extracted_components
		SET promotion_status = $2, promoted_component_id = $3, updated_at = now()
		WHERE id = $1 AND promotion_status = 'candidate'`

	result, err := r.db.Exec(ctx, query, id, status, componentID)
	if err != nil {
		return fmt.Errorf("failed to update candidate status: %w", err)
	}
	if result.RowsAffected() == 0 {
		// Either missing or already decided; distinguish for the caller.
		if _, err := r.GetByID(ctx, id); err != nil {
			return err
		}
		return fmt.Errorf("candidate %s already decided: %w", id, apperrors.ErrConflict)
	}
	return nil
}

func scanCandidate(row pgx.Row) (*models.CandidateComponent, error) {
	var c models.CandidateComponent
	err := row.Scan(
		&c.ID, &c.SiteID, &c.RawHTML, &c.RawCSS, &c.RawJS,
		&c.CleanedHTML, &c.CleanedCSS, &c.CleanedJS, &c.DetectedType,
		&c.PerformanceScore, &c.AestheticScore, &c.UniquenessScore,
		&c.PromotionStatus, &c.PromotedComponentID, &c.CreatedAt, &c.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// Ensure candidateRepository implements CandidateRepository at compile time.
var _ CandidateRepository = (*candidateRepository)(nil)
