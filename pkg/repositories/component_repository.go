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

// DefaultSearchLimit caps search results when the caller asks for more (or
// nothing at all).
const DefaultSearchLimit = 50

// ComponentRepository defines the interface for catalog data access.
type ComponentRepository interface {
	// Upsert inserts a component or overwrites its mutable fields.
	// created_at is preserved on conflict; this is the idempotent ingestion path.
	Upsert(ctx context.Context, c *models.Component) error

	// GetByID retrieves a component. Returns apperrors.ErrNotFound when missing.
	GetByID(ctx context.Context, id uuid.UUID) (*models.Component, error)

	// Search returns components matching the filters, ordered by aesthetic
	// score descending then conversion rate descending with nulls last.
	Search(ctx context.Context, filters models.ComponentFilters, limit int) ([]*models.Component, error)

	// TopPerforming returns components with a non-null conversion rate,
	// ordered by conversion rate descending then aesthetic score descending.
	TopPerforming(ctx context.Context, limit int) ([]*models.Component, error)

	// RecordPerformance upserts a performance record keyed by
	// (component, site, placement) and recomputes the owning component's
	// conversion_rate and usage_count aggregates.
	RecordPerformance(ctx context.Context, rec *models.PerformanceRecord) error

	// ListByIDs retrieves components preserving the order of ids.
	ListByIDs(ctx context.Context, ids []uuid.UUID) ([]*models.Component, error)

	// ListCreatedBetween returns components created in [from, to).
	// Used by the trend analyzer's window computations.
	ListCreatedBetween(ctx context.Context, from, to time.Time) ([]*models.Component, error)

	// PerformanceSamples returns flattened component+performance join rows
	// recorded since the given time. Feeds the learning loop's analyses.
	PerformanceSamples(ctx context.Context, since time.Time) ([]models.PerformanceSample, error)
}

type componentRepository struct {
	db *database.DB
}

// NewComponentRepository creates a new catalog repository.
func NewComponentRepository(db *database.DB) ComponentRepository {
	return &componentRepository{db: db}
}

const componentColumns = `id, name, description, html, css, js, component_type, category, style,
		tags, complexity, aesthetic_score, performance_score, conversion_rate, usage_count,
		industries, frameworks, created_at, updated_at, scraped_at`

// Upsert inserts a component or overwrites its mutable fields, preserving
// created_at and the original identity.
func (r *componentRepository) Upsert(ctx context.Context, c *models.Component) error {
	c.Clamp()

	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	now := time.Now()
	if c.CreatedAt.IsZero() {
		c.CreatedAt = now
	}
	c.UpdatedAt = now

	query := `
		INSERT INTO components (` + componentColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20)
		ON CONFLICT (id) DO UPDATE SET
			name = EXCLUDED.name,
			description = EXCLUDED.description,
			html = EXCLUDED.html,
			css = EXCLUDED.css,
			js = EXCLUDED.js,
			component_type = EXCLUDED.component_type,
			category = EXCLUDED.category,
			style = EXCLUDED.style,
			tags = EXCLUDED.tags,
			complexity = EXCLUDED.complexity,
			aesthetic_score = EXCLUDED.aesthetic_score,
			performance_score = EXCLUDED.performance_score,
			industries = EXCLUDED.industries,
			frameworks = EXCLUDED.frameworks,
			updated_at = EXCLUDED.updated_at,
			scraped_at = EXCLUDED.scraped_at
		RETURNING created_at`

	err := r.db.QueryRow(ctx, query,
		c.ID, c.Name, c.Description, c.HTML, c.CSS, c.JS,
		c.ComponentType, c.Category, c.Style, c.Tags,
		c.Complexity, c.AestheticScore, c.PerformanceScore,
		c.ConversionRate, c.UsageCount, c.Industries, c.Frameworks,
		c.CreatedAt, c.UpdatedAt, c.ScrapedAt,
	).Scan(&c.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to upsert component: %w", err)
	}

	return nil
}

// GetByID retrieves a component by id.
func (r *componentRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Component, error) {
	query := `SELECT ` + componentColumns + ` FROM components WHERE id = $1`

	c, err := scanComponent(r.db.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("component %s: %w", id, apperrors.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get component: %w", err)
	}
	return c, nil
}

// Search returns components matching the filters. The WHERE clause is built
// from parameterized predicates only; filter values never reach SQL text.
func (r *componentRepository) Search(ctx context.Context, filters models.ComponentFilters, limit int) ([]*models.Component, error) {
	if limit <= 0 || limit > DefaultSearchLimit {
		limit = DefaultSearchLimit
	}
	if filters.MinAestheticScore < 0 || filters.MinAestheticScore > models.MaxScore {
		return nil, fmt.Errorf("min_aesthetic_score out of range: %w", apperrors.ErrValidation)
	}

	where, args := buildComponentPredicates(filters)
	args = append(args, limit)

	query := fmt.Sprintf(`
		SELECT `+componentColumns+`
		FROM components
		%s
		ORDER BY aesthetic_score DESC, conversion_rate DESC NULLS LAST, id
		LIMIT $%d`, where, len(args))

	return r.queryComponents(ctx, query, args...)
}

// TopPerforming returns the highest-converting components.
func (r *componentRepository) TopPerforming(ctx context.Context, limit int) ([]*models.Component, error) {
	if limit <= 0 || limit > DefaultSearchLimit {
		limit = DefaultSearchLimit
	}

	query := `
		SELECT ` + componentColumns + `
		FROM components
		WHERE conversion_rate IS NOT NULL
		ORDER BY conversion_rate DESC, aesthetic_score DESC, id
		LIMIT $1`

	return r.queryComponents(ctx, query, limit)
}

// RecordPerformance upserts a performance record and recomputes the owning
// component's aggregates inside one transaction. Re-running with identical
// rows yields identical aggregates, so concurrent writers are safe.
func (r *componentRepository) RecordPerformance(ctx context.Context, rec *models.PerformanceRecord) error {
	if !models.ValidPlacement(rec.Placement) {
		return fmt.Errorf("unknown placement %q: %w", rec.Placement, apperrors.ErrValidation)
	}

	if rec.ID == uuid.Nil {
		rec.ID = uuid.New()
	}
	now := time.Now()
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = now
	}
	rec.UpdatedAt = now

	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck // rollback on defer is best-effort

	upsert := `
		INSERT INTO component_performance (id, component_id, site_id, placement,
			conversion_impact, click_through_rate, time_on_element_ms, scroll_depth,
			interaction_rate, ab_test, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		ON CONFLICT (component_id, site_id, placement) DO UPDATE SET
			conversion_impact = EXCLUDED.conversion_impact,
			click_through_rate = EXCLUDED.click_through_rate,
			time_on_element_ms = EXCLUDED.time_on_element_ms,
			scroll_depth = EXCLUDED.scroll_depth,
			interaction_rate = EXCLUDED.interaction_rate,
			ab_test = EXCLUDED.ab_test,
			updated_at = EXCLUDED.updated_at`

	_, err = tx.Exec(ctx, upsert,
		rec.ID, rec.ComponentID, rec.SiteID, rec.Placement,
		rec.ConversionImpact, rec.ClickThroughRate, rec.TimeOnElementMs,
		rec.ScrollDepth, rec.InteractionRate, rec.ABTest,
		rec.CreatedAt, rec.UpdatedAt,
	)
	if err != nil {
		// Foreign key violation means the component (or site) does not exist.
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23503" {
			return fmt.Errorf("component %s: %w", rec.ComponentID, apperrors.ErrNotFound)
		}
		return fmt.Errorf("failed to upsert performance record: %w", err)
	}

	// conversion_rate = mean of positive-impact records; usage_count = total records.
	recompute := `
		UPDATE components SET
			conversion_rate = (
				SELECT AVG(conversion_impact) FROM component_performance
				WHERE component_id = $1 AND conversion_impact > 0
			),
			usage_count = (
				SELECT COUNT(*) FROM component_performance WHERE component_id = $1
			),
			updated_at = now()
		WHERE id = $1`

	if _, err := tx.Exec(ctx, recompute, rec.ComponentID); err != nil {
		return fmt.Errorf("failed to recompute component aggregates: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

// ListByIDs retrieves components preserving the order of ids.
func (r *componentRepository) ListByIDs(ctx context.Context, ids []uuid.UUID) ([]*models.Component, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	query := `SELECT ` + componentColumns + ` FROM components WHERE id = ANY($1)`
	components, err := r.queryComponents(ctx, query, ids)
	if err != nil {
		return nil, err
	}

	byID := make(map[uuid.UUID]*models.Component, len(components))
	for _, c := range components {
		byID[c.ID] = c
	}
	ordered := make([]*models.Component, 0, len(components))
	for _, id := range ids {
		if c, ok := byID[id]; ok {
			ordered = append(ordered, c)
		}
	}
	return ordered, nil
}

// ListCreatedBetween returns components created in [from, to).
func (r *componentRepository) ListCreatedBetween(ctx context.Context, from, to time.Time) ([]*models.Component, error) {
	query := `
		SELECT ` + componentColumns + `
		FROM components
		WHERE created_at >= $1 AND created_at < $2
		ORDER BY created_at, id`

	return r.queryComponents(ctx, query, from, to)
}

// PerformanceSamples returns flattened component+performance join rows.
func (r *componentRepository) PerformanceSamples(ctx context.Context, since time.Time) ([]models.PerformanceSample, error) {
	query := `
		SELECT p.component_id, c.component_type, c.style, c.tags, c.industries,
			c.aesthetic_score, p.placement, p.conversion_impact, p.updated_at
		FROM component_performance p
		JOIN components c ON c.id = p.component_id
		WHERE p.updated_at >= $1
		ORDER BY p.updated_at, p.id`

	rows, err := r.db.Query(ctx, query, since)
	if err != nil {
		return nil, fmt.Errorf("failed to query performance samples: %w", err)
	}
	defer rows.Close()

	var samples []models.PerformanceSample
	for rows.Next() {
		var s models.PerformanceSample
		err := rows.Scan(
			&s.ComponentID, &s.ComponentType, &s.Style, &s.Tags, &s.Industries,
			&s.AestheticScore, &s.Placement, &s.ConversionImpact, &s.RecordedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan performance sample: %w", err)
		}
		samples = append(samples, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating performance samples: %w", err)
	}

	return samples, nil
}

// buildComponentPredicates translates filters into a parameterized WHERE
// clause. Returns the clause (possibly empty) and its ordered arguments.
func buildComponentPredicates(filters models.ComponentFilters) (string, []any) {
	var (
		predicates []string
		args       []any
	)
	add := func(predicate string, value any) {
		args = append(args, value)
		predicates = append(predicates, fmt.Sprintf(predicate, len(args)))
	}

	if filters.ComponentType != "" {
		add("component_type = $%d", filters.ComponentType)
	}
	if filters.Category != "" {
		add("category = $%d", filters.Category)
	}
	if filters.Style != "" {
		add("style = $%d", filters.Style)
	}
	if len(filters.Tags) > 0 {
		add("tags && $%d", filters.Tags)
	}
	if len(filters.Industries) > 0 {
		add("industries && $%d", filters.Industries)
	}
	if filters.MinAestheticScore > 0 {
		add("aesthetic_score >= $%d", filters.MinAestheticScore)
	}
	if filters.MinConversionRate > 0 {
		add("conversion_rate >= $%d", filters.MinConversionRate)
	}

	if len(predicates) == 0 {
		return "", args
	}
	where := "WHERE " + predicates[0]
	for _, p := range predicates[1:] {
		where += " AND " + p
	}
	return where, args
}

func (r *componentRepository) queryComponents(ctx context.Context, query string, args ...any) ([]*models.Component, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query components: %w", err)
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

// scanComponent is the single row-to-entity mapping for components. Every
// read path goes through it so the column list cannot drift between queries.
func scanComponent(row pgx.Row) (*models.Component, error) {
	var c models.Component
	err := row.Scan(
		&c.ID, &c.Name, &c.Description, &c.HTML, &c.CSS, &c.JS,
		&c.ComponentType, &c.Category, &c.Style, &c.Tags,
		&c.Complexity, &c.AestheticScore, &c.PerformanceScore,
		&c.ConversionRate, &c.UsageCount, &c.Industries, &c.Frameworks,
		&c.CreatedAt, &c.UpdatedAt, &c.ScrapedAt,
	)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// Ensure componentRepository implements ComponentRepository at compile time.
var _ ComponentRepository = (*componentRepository)(nil)
