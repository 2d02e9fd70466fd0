package models

import "time"

// Capability is one entry of a provider's fixed capability enumeration.
type Capability string

// Provider capabilities.
const (
	CapabilityCodeGeneration      Capability = "code_generation"
	CapabilityDesignAnalysis      Capability = "design_analysis"
	CapabilityStrategicReasoning  Capability = "strategic_reasoning"
	CapabilityVisualUnderstanding Capability = "visual_understanding"
	CapabilitySpeedOptimization   Capability = "speed_optimization"
	CapabilityCostOptimization    Capability = "cost_optimization"
	CapabilityPatternRecognition  Capability = "pattern_recognition"
	CapabilityCreativeIdeation    Capability = "creative_ideation"
	CapabilityTechnicalPrecision  Capability = "technical_precision"
	CapabilityContentGeneration   Capability = "content_generation"
)

// Provider vendor kinds. The vendor selects which invoker drives the call.
const (
	VendorOpenAI    = "openai"
	VendorAnthropic = "anthropic"
	VendorMock      = "mock"
)

// LLMProvider describes one pluggable AI backend. Loaded once at startup from
// the provider catalog file and immutable during normal operation.
type LLMProvider struct {
	Name         string        `json:"name" yaml:"name"`
	Vendor       string        `json:"vendor" yaml:"vendor"`
	Model        string        `json:"model" yaml:"model"`
	Capabilities []Capability  `json:"capabilities" yaml:"capabilities"`
	CostPerToken float64       `json:"cost_per_token" yaml:"cost_per_token"`
	MaxTokens    int           `json:"max_tokens" yaml:"max_tokens"`
	ResponseTime time.Duration `json:"response_time" yaml:"response_time"`
	QualityScore int           `json:"quality_score" yaml:"quality_score"` // 1-10
}

// HasCapability reports whether the provider advertises c.
func (p *LLMProvider) HasCapability(c Capability) bool {
	for _, have := range p.Capabilities {
		if have == c {
			return true
		}
	}
	return false
}
