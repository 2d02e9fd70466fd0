package models

import (
	"time"

	"github.com/google/uuid"
)

// Trend dimensions. Trends are computed across three independent axes.
const (
	TrendDimensionStyle = "style"
	TrendDimensionType  = "component_type"
	TrendDimensionTag   = "tag"
)

// Market impact classifications derived from popularity thresholds.
const (
	MarketImpactLow    = "low"
	MarketImpactMedium = "medium"
	MarketImpactHigh   = "high"
)

// TrendMetric is a computed popularity/growth snapshot for one group along
// one dimension. It is regenerated on demand and never persisted by identity;
// ID is a stable composite of dimension and name so callers can reference a
// trend across recomputations.
type TrendMetric struct {
	ID        string `json:"id"` // "<dimension>:<name>"
	Dimension string `json:"dimension"`
	Name      string `json:"name"`

	PopularityScore   float64 `json:"popularity_score"`
	GrowthRate        float64 `json:"growth_rate"` // percent vs previous window
	ComponentCount    int     `json:"component_count"`
	AvgAestheticScore float64 `json:"avg_aesthetic_score"`

	TopComponentIDs []uuid.UUID `json:"top_component_ids"`
	PatternTags     []string    `json:"pattern_tags"` // co-occurring tags

	WindowStart time.Time `json:"window_start"`
	WindowEnd   time.Time `json:"window_end"`
}

// TrendID builds the stable composite id for a dimension/name pair.
func TrendID(dimension, name string) string {
	return dimension + ":" + name
}

// TrendTrajectory is a decaying-momentum projection for a known trend.
type TrendTrajectory struct {
	TrendID             string  `json:"trend_id"`
	CurrentGrowthRate   float64 `json:"current_growth_rate"`
	ProjectedGrowthRate float64 `json:"projected_growth_rate"` // 80% of current
	Confidence          float64 `json:"confidence"`            // capped by sample size
	MarketImpact        string  `json:"market_impact"`
}
