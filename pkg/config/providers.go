package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/siteforge-io/design-engine/pkg/models"
)

// providerCatalog is the on-disk shape of the provider catalog file.
type providerCatalog struct {
	Providers []*models.LLMProvider `yaml:"providers"`
}

// LoadProviders reads and validates the provider catalog file. The catalog is
// loaded once at startup; providers are immutable during normal operation.
func LoadProviders(path string) ([]*models.LLMProvider, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read provider catalog: %w", err)
	}

	var catalog providerCatalog
	if err := yaml.Unmarshal(data, &catalog); err != nil {
		return nil, fmt.Errorf("failed to parse provider catalog: %w", err)
	}
	if len(catalog.Providers) == 0 {
		return nil, fmt.Errorf("provider catalog %s defines no providers", path)
	}

	seen := make(map[string]bool, len(catalog.Providers))
	for _, p := range catalog.Providers {
		if p.Name == "" {
			return nil, fmt.Errorf("provider catalog entry missing name")
		}
		if seen[p.Name] {
			return nil, fmt.Errorf("duplicate provider name %q in catalog", p.Name)
		}
		seen[p.Name] = true

		if p.QualityScore < 1 || p.QualityScore > 10 {
			return nil, fmt.Errorf("provider %q: quality_score must be 1-10, got %d", p.Name, p.QualityScore)
		}
		if p.CostPerToken < 0 {
			return nil, fmt.Errorf("provider %q: cost_per_token must not be negative", p.Name)
		}
		if len(p.Capabilities) == 0 {
			return nil, fmt.Errorf("provider %q: at least one capability is required", p.Name)
		}
		switch p.Vendor {
		case models.VendorOpenAI, models.VendorAnthropic, models.VendorMock:
		default:
			return nil, fmt.Errorf("provider %q: unknown vendor %q", p.Name, p.Vendor)
		}
	}

	return catalog.Providers, nil
}
