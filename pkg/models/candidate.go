package models

import (
	"time"

	"github.com/google/uuid"
)

// Promotion status values for extracted candidate components.
// A candidate is immutable once it reaches promoted or rejected.
const (
	PromotionStatusCandidate = "candidate"
	PromotionStatusPromoted  = "promoted"
	PromotionStatusRejected  = "rejected"
)

// Auto-promotion thresholds. A candidate clearing all three is promoted into
// the global catalog immediately; candidates below threshold stay candidates
// until an external reviewer rejects them.
const (
	PromotionMinAesthetic   = 85
	PromotionMinUniqueness  = 70
	PromotionMinPerformance = 80
)

// CandidateComponent is a component extracted from an onboarded site that has
// not yet been promoted into the global catalog. Stored in extracted_components.
type CandidateComponent struct {
	ID     uuid.UUID `json:"id"`
	SiteID uuid.UUID `json:"site_id"`

	RawHTML string `json:"raw_html"`
	RawCSS  string `json:"raw_css"`
	RawJS   string `json:"raw_js"`

	CleanedHTML string `json:"cleaned_html"`
	CleanedCSS  string `json:"cleaned_css"`
	CleanedJS   string `json:"cleaned_js"`

	DetectedType string `json:"detected_type"`

	PerformanceScore int `json:"performance_score"` // 1-100
	AestheticScore   int `json:"aesthetic_score"`   // 1-100
	UniquenessScore  int `json:"uniqueness_score"`  // 1-100

	PromotionStatus      string     `json:"promotion_status"`
	PromotedComponentID  *uuid.UUID `json:"promoted_component_id,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// QualifiesForPromotion reports whether the candidate clears every
// auto-promotion threshold.
func (c *CandidateComponent) QualifiesForPromotion() bool {
	return c.AestheticScore >= PromotionMinAesthetic &&
		c.UniquenessScore >= PromotionMinUniqueness &&
		c.PerformanceScore >= PromotionMinPerformance
}

// OnboardingSite is a customer site that feeds candidate components into the
// learning loop. Promoted candidates seed their industries from it.
type OnboardingSite struct {
	ID        uuid.UUID `json:"id"`
	Domain    string    `json:"domain"`
	Industry  string    `json:"industry"`
	CreatedAt time.Time `json:"created_at"`
}
