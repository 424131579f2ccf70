package driven

import "github.com/custodia-labs/canvai/internal/core/domain"

// ProviderChecker probes configured providers before settings are accepted.
// A nil or unconfigured section passes.
type ProviderChecker interface {
	CheckEmbedding(cfg *domain.EmbeddingSettings) error
	CheckLLM(cfg *domain.LLMSettings) error
}
