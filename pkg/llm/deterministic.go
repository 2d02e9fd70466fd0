package llm

import (
	"context"
	"fmt"
	"hash/fnv"
	"math"
	"strings"

	"github.com/siteforge-io/design-engine/pkg/models"
)

// HashEmbedding maps text to a fixed-dimension, L2-normalized vector using
// feature hashing over word tokens. It is a pure function: identical input
// always yields a bit-identical vector. It stands in for a real embedding
// model; swap in a network-backed Embedder for production similarity quality.
func HashEmbedding(text string, dim int) []float32 {
	vec := make([]float32, dim)
	if dim == 0 {
		return vec
	}

	for _, token := range strings.Fields(strings.ToLower(text)) {
		h := fnv.New64a()
		h.Write([]byte(token))
		sum := h.Sum64()

		idx := int(sum % uint64(dim))
		// Second hash bit decides the sign so features cancel rather than
		// pile up in common buckets.
		sign := float32(1)
		if (sum>>32)&1 == 1 {
			sign = -1
		}
		vec[idx] += sign
	}

	var norm float64
	for _, v := range vec {
		norm += float64(v) * float64(v)
	}
	if norm > 0 {
		scale := float32(1 / math.Sqrt(norm))
		for i := range vec {
			vec[i] *= scale
		}
	}
	return vec
}

// DeterministicEmbedder is the default Embedder: feature hashing with no
// network dependency. Used in tests and in deployments without an embedding
// endpoint configured.
type DeterministicEmbedder struct {
	Dimension int
}

// NewDeterministicEmbedder creates an embedder with the standard dimension.
func NewDeterministicEmbedder() *DeterministicEmbedder {
	return &DeterministicEmbedder{Dimension: models.EmbeddingDimension}
}

// Embed implements Embedder.
func (e *DeterministicEmbedder) Embed(_ context.Context, input string) ([]float32, error) {
	dim := e.Dimension
	if dim <= 0 {
		dim = models.EmbeddingDimension
	}
	return HashEmbedding(input, dim), nil
}

// DeterministicInvoker is a ProviderInvoker that answers locally with a
// canned, prompt-derived payload. It backs the "mock" vendor so the executor
// path can run end to end without network access.
type DeterministicInvoker struct{}

// NewDeterministicInvoker creates the local invoker.
func NewDeterministicInvoker() *DeterministicInvoker {
	return &DeterministicInvoker{}
}

// Invoke implements ProviderInvoker.
func (i *DeterministicInvoker) Invoke(ctx context.Context, provider *models.LLMProvider, prompt string) (*InvocationResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, ClassifyError(err)
	}

	h := fnv.New64a()
	h.Write([]byte(prompt))

	return &InvocationResult{
		Content:    fmt.Sprintf("[%s] result %x", provider.Name, h.Sum64()),
		TokensUsed: len(prompt) / 4,
	}, nil
}

// Ensure implementations satisfy their interfaces at compile time.
var (
	_ Embedder        = (*DeterministicEmbedder)(nil)
	_ ProviderInvoker = (*DeterministicInvoker)(nil)
)
