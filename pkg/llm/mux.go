package llm

import (
	"context"
	"fmt"

	"github.com/siteforge-io/design-engine/pkg/models"
)

// VendorMux routes invocations to the invoker registered for the provider's
// vendor. Built once at startup from configured credentials.
type VendorMux struct {
	invokers map[string]ProviderInvoker
}

// NewVendorMux creates an empty mux.
func NewVendorMux() *VendorMux {
	return &VendorMux{invokers: make(map[string]ProviderInvoker)}
}

// Register binds an invoker to a vendor kind, replacing any previous binding.
func (m *VendorMux) Register(vendor string, invoker ProviderInvoker) {
	m.invokers[vendor] = invoker
}

// Invoke implements ProviderInvoker by dispatching on the provider's vendor.
func (m *VendorMux) Invoke(ctx context.Context, provider *models.LLMProvider, prompt string) (*InvocationResult, error) {
	invoker, ok := m.invokers[provider.Vendor]
	if !ok {
		return nil, NewError(ErrorTypeEndpoint,
			fmt.Sprintf("no invoker registered for vendor %q", provider.Vendor), false, nil)
	}
	return invoker.Invoke(ctx, provider, prompt)
}

// Ensure VendorMux implements ProviderInvoker at compile time.
var _ ProviderInvoker = (*VendorMux)(nil)
