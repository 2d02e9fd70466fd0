package models

import (
	"time"

	"github.com/google/uuid"
)

// Placement identifies where on a page a component was rendered.
const (
	PlacementHero      = "hero"
	PlacementAboveFold = "above_fold"
	PlacementBelowFold = "below_fold"
	PlacementFooter    = "footer"
)

// ValidPlacement reports whether p is one of the known placements.
func ValidPlacement(p string) bool {
	switch p {
	case PlacementHero, PlacementAboveFold, PlacementBelowFold, PlacementFooter:
		return true
	}
	return false
}

// ABTestStats holds optional A/B test statistics attached to a performance
// observation. Stored as JSONB.
type ABTestStats struct {
	VariantPerformances map[string]float64 `json:"variant_performances,omitempty"`
	Confidence          float64            `json:"confidence,omitempty"`
	SampleSize          int                `json:"sample_size,omitempty"`
}

// PerformanceRecord is one observation of a component's real-world effect at
// a specific site and placement. Unique per (component, site, placement);
// later records overwrite earlier ones for the same key.
type PerformanceRecord struct {
	ID          uuid.UUID `json:"id"`
	ComponentID uuid.UUID `json:"component_id"`
	SiteID      uuid.UUID `json:"site_id"`
	Placement   string    `json:"placement"`

	ConversionImpact float64 `json:"conversion_impact"` // percent change
	ClickThroughRate float64 `json:"click_through_rate"`
	TimeOnElementMs  int     `json:"time_on_element_ms"`
	ScrollDepth      float64 `json:"scroll_depth"`
	InteractionRate  float64 `json:"interaction_rate"`

	ABTest *ABTestStats `json:"ab_test,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// PerformanceSample is a flattened component+performance join row used by the
// learning loop's insight analyses.
type PerformanceSample struct {
	ComponentID      uuid.UUID
	ComponentType    string
	Style            string
	Tags             []string
	Industries       []string
	AestheticScore   int
	Placement        string
	ConversionImpact float64
	RecordedAt       time.Time
}
