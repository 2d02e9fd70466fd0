package models

import (
	"time"

	"github.com/google/uuid"
)

// Insight types produced by the learning loop's four analyses.
const (
	InsightTypeBestTypeForIndustry  = "best_type_for_industry"
	InsightTypeTrendingTagPattern   = "trending_tag_pattern"
	InsightTypeUnderperformingCombo = "underperforming_combo"
	InsightTypeBestPlacement        = "best_placement"
)

// Validation status values. Insights start pending and may be validated or
// rejected by a reviewer; nothing else about an insight ever mutates.
const (
	ValidationStatusPending   = "pending"
	ValidationStatusValidated = "validated"
	ValidationStatusRejected  = "rejected"
)

// LearningInsight is a derived, confidence-scored recommendation produced
// from aggregated performance data. Stored in learning_insights.
type LearningInsight struct {
	ID                       uuid.UUID `json:"id"`
	InsightType              string    `json:"insight_type"`
	ConfidenceScore          float64   `json:"confidence_score"` // 0-100
	ImpactScore              float64   `json:"impact_score"`     // 0-100
	Description              string    `json:"description"`
	ActionableRecommendation string    `json:"actionable_recommendation"`
	DataPoints               int       `json:"data_points"`
	ValidationStatus         string    `json:"validation_status"`
	CreatedAt                time.Time `json:"created_at"`
}

// LearningPattern tracks rolling per-dimension observation counters that feed
// insight generation. Upserted on every performance observation; keyed by
// (dimension, value). Stored in learning_patterns.
type LearningPattern struct {
	ID           uuid.UUID `json:"id"`
	Dimension    string    `json:"dimension"` // component_type, placement, tag, industry
	Value        string    `json:"value"`
	Observations int       `json:"observations"`
	AvgImpact    float64   `json:"avg_impact"`
	UpdatedAt    time.Time `json:"updated_at"`
}
