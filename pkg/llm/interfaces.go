// Package llm provides the boundary to pluggable AI provider backends.
package llm

import (
	"context"

	"github.com/siteforge-io/design-engine/pkg/models"
)

// InvocationResult is the structured payload a provider returns for one call.
type InvocationResult struct {
	Content     string   // primary result payload
	Suggestions []string // optional follow-up suggestions
	TokensUsed  int      // provider-reported usage; 0 when unknown
}

// ProviderInvoker executes one prompt against one provider backend.
// Implementations must be safely callable with a context deadline.
// Use this interface for dependency injection to enable mocking in tests.
type ProviderInvoker interface {
	Invoke(ctx context.Context, provider *models.LLMProvider, prompt string) (*InvocationResult, error)
}

// Embedder turns text into a fixed-dimension vector. The deterministic
// hash embedder is the default; a network-backed implementation can be
// swapped in without touching the embedding index.
type Embedder interface {
	Embed(ctx context.Context, input string) ([]float32, error)
}
