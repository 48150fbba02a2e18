package policy

import "github.com/davidbz/cinder/internal/domain"

// ConfigBuilder assembles the final generation config. This is the
// only place where the tagged budget is converted to the provider's
// numeric convention (-1 open, 0 disabled, n fixed).
type ConfigBuilder struct {
	maxOutputTokens int
}

// NewConfigBuilder creates a builder with a fixed output-length limit.
func NewConfigBuilder(maxOutputTokens int) *ConfigBuilder {
	return &ConfigBuilder{maxOutputTokens: maxOutputTokens}
}

// Build assembles temperature and budget into a GenerationConfig.
func (b *ConfigBuilder) Build(temperature float64, budget domain.ThoughtBudget) domain.GenerationConfig {
	return domain.GenerationConfig{
		Temperature:     temperature,
		ThoughtBudget:   budget.Encode(),
		MaxOutputTokens: b.maxOutputTokens,
	}
}
