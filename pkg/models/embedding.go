package models

import (
	"time"

	"github.com/google/uuid"
)

// EmbeddingDimension is the fixed dimensionality of component vectors.
// Matches the 1536-wide contract of the common text-embedding models so a
// network-backed embedder can be swapped in without a schema change.
const EmbeddingDimension = 1536

// EmbeddingMetadata is the attribute snapshot stored alongside each vector.
// It backs the degraded ranking path when the vector operator is unavailable.
type EmbeddingMetadata struct {
	ComponentType  string   `json:"component_type"`
	Style          string   `json:"style"`
	Tags           []string `json:"tags"`
	AestheticScore int      `json:"aesthetic_score"`
}

// ComponentEmbedding associates at most one vector with a component.
// Owned exclusively by the embedding index; the component id is a
// back-reference, never an ownership link.
type ComponentEmbedding struct {
	ComponentID uuid.UUID         `json:"component_id"`
	Vector      []float32         `json:"vector"`
	Metadata    EmbeddingMetadata `json:"metadata"`
	UpdatedAt   time.Time         `json:"updated_at"`
}

// SimilarComponent is one nearest-neighbor hit.
type SimilarComponent struct {
	ComponentID uuid.UUID `json:"component_id"`
	Similarity  float64   `json:"similarity"`
}
