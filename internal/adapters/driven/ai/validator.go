package ai

import (
	"github.com/custodia-labs/canvai/internal/core/domain"
	"github.com/custodia-labs/canvai/internal/core/ports/driven"
)

// Ensure ConfigValidator implements the interface.
var _ driven.ProviderChecker = (*ConfigValidator)(nil)

// ConfigValidator probes providers by building a client and pinging it.
type ConfigValidator struct {
	keys driven.KeyProvider
}

// NewConfigValidator creates a validator resolving LLM keys through keys.
func NewConfigValidator(keys driven.KeyProvider) *ConfigValidator {
	return &ConfigValidator{keys: keys}
}

// CheckEmbedding pings the embedding provider.
func (v *ConfigValidator) CheckEmbedding(config *domain.EmbeddingSettings) error {
	return ValidateEmbeddingConfig(config)
}

// CheckLLM pings the chat provider with the resolved key.
func (v *ConfigValidator) CheckLLM(config *domain.LLMSettings) error {
	return ValidateLLMConfig(config, v.keys)
}
