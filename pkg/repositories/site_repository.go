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

// SiteRepository stores onboarded sites. Promoted candidates seed their
// industries from the originating site.
type SiteRepository interface {
	// Create inserts a new onboarding site.
	Create(ctx context.Context, site *models.OnboardingSite) error

	// GetByID retrieves a site. Returns apperrors.ErrNotFound when missing.
	GetByID(ctx context.Context, id uuid.UUID) (*models.OnboardingSite, error)
}

type siteRepository struct {
	db *database.DB
}

// NewSiteRepository creates a new site repository.
func NewSiteRepository(db *database.DB) SiteRepository {
	return &siteRepository{db: db}
}

// Create inserts a new onboarding site.
func (r *siteRepository) Create(ctx context.Context, site *models.OnboardingSite) error {
	if site.ID == uuid.Nil {
		site.ID = uuid.New()
	}
	site.CreatedAt = time.Now()

	query := `INSERT INTO onboarding_sites (id, domain, industry, created_at) VALUES ($1, $2, $3, $4)`

	_, err := r.db.Exec(ctx, query, site.ID, site.Domain, site.Industry, site.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create site: %w", err)
	}
	return nil
}

// GetByID retrieves a site by id.
func (r *siteRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.OnboardingSite, error) {
	query := `SELECT id, domain, industry, created_at FROM onboarding_sites WHERE id = $1`

	var site models.OnboardingSite
	err := r.db.QueryRow(ctx, query, id).Scan(&site.ID, &site.Domain, &site.Industry, &site.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("site %s: %w", id, apperrors.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get site: %w", err)
	}
	return &site, nil
}

// Ensure siteRepository implements SiteRepository at compile time.
var _ SiteRepository = (*siteRepository)(nil)
