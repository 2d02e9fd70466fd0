// Package models contains domain types for design-engine.
package models

import (
	"time"

	"github.com/google/uuid"
)

// Component type constants produced by ingestion and candidate extraction.
const (
	ComponentTypeButton      = "button"
	ComponentTypeHero        = "hero"
	ComponentTypeCard        = "card"
	ComponentTypeForm        = "form"
	ComponentTypeNavbar      = "navbar"
	ComponentTypeFooter      = "footer"
	ComponentTypePricing     = "pricing"
	ComponentTypeTestimonial = "testimonial"
	ComponentTypeGallery     = "gallery"
	ComponentTypeGeneric     = "section"
)

// Score ranges enforced on every write path.
const (
	MinComplexity = 1
	MaxComplexity = 10
	MinScore      = 1
	MaxScore      = 100
)

// Component represents a reusable design artifact with quality and usage
// metadata. Stored in the components table. Components are never hard-deleted,
// only superseded by newer ingestions with the same id.
type Component struct {
	ID          uuid.UUID `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`

	// Structural payload, treated as opaque text.
	HTML string `json:"html"`
	CSS  string `json:"css"`
	JS   string `json:"js"`

	ComponentType string   `json:"component_type"` // e.g., "button", "hero"
	Category      string   `json:"category"`
	Style         string   `json:"style"` // e.g., "minimal", "brutalist"
	Tags          []string `json:"tags"`

	Complexity       int      `json:"complexity"`        // 1-10
	AestheticScore   int      `json:"aesthetic_score"`   // 1-100
	PerformanceScore int      `json:"performance_score"` // 1-100
	ConversionRate   *float64 `json:"conversion_rate,omitempty"`
	UsageCount       int      `json:"usage_count"`

	Industries []string `json:"industries"`
	Frameworks []string `json:"frameworks"`

	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
	ScrapedAt *time.Time `json:"scraped_at,omitempty"`
}

// Clamp forces complexity and quality scores into their documented ranges.
// Called before every write so out-of-range values never reach storage.
func (c *Component) Clamp() {
	c.Complexity = clampInt(c.Complexity, MinComplexity, MaxComplexity)
	c.AestheticScore = clampInt(c.AestheticScore, MinScore, MaxScore)
	c.PerformanceScore = clampInt(c.PerformanceScore, MinScore, MaxScore)
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// ComponentFilters narrows catalog searches. Zero values mean "no constraint".
type ComponentFilters struct {
	ComponentType     string   `json:"component_type,omitempty"`
	Category          string   `json:"category,omitempty"`
	Style             string   `json:"style,omitempty"`
	Tags              []string `json:"tags,omitempty"`       // any-of
	Industries        []string `json:"industries,omitempty"` // any-of
	MinAestheticScore int      `json:"min_aesthetic_score,omitempty"`
	MinConversionRate float64  `json:"min_conversion_rate,omitempty"`
}
