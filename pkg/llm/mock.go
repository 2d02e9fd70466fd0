package llm

import (
	"context"

	"github.com/siteforge-io/design-engine/pkg/models"
)

// MockInvoker is a configurable mock for testing provider invocation.
// Set the function field to control behavior in tests.
type MockInvoker struct {
	// InvokeFunc is called when Invoke is invoked.
	// If nil, returns an empty result and nil error.
	InvokeFunc func(ctx context.Context, provider *models.LLMProvider, prompt string) (*InvocationResult, error)

	// Call tracking for verification.
	InvokeCalls int
	LastPrompt  string
}

// NewMockInvoker creates a new mock invoker.
func NewMockInvoker() *MockInvoker {
	return &MockInvoker{}
}

// Invoke implements ProviderInvoker.
func (m *MockInvoker) Invoke(ctx context.Context, provider *models.LLMProvider, prompt string) (*InvocationResult, error) {
	m.InvokeCalls++
	m.LastPrompt = prompt
	if m.InvokeFunc != nil {
		return m.InvokeFunc(ctx, provider, prompt)
	}
	return &InvocationResult{}, nil
}

// Reset clears call tracking.
func (m *MockInvoker) Reset() {
	m.InvokeCalls = 0
	m.LastPrompt = ""
}

// Ensure MockInvoker implements ProviderInvoker at compile time.
var _ ProviderInvoker = (*MockInvoker)(nil)
