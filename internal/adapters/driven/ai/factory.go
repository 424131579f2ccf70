// Package ai selects and builds the embedding and chat clients from settings.
package ai

import (
	"context"
	"fmt"
	"time"

	"github.com/custodia-labs/canvai/internal/adapters/driven/embedding"
	ollamaembed "github.com/custodia-labs/canvai/internal/adapters/driven/embedding/ollama"
	openaiembed "github.com/custodia-labs/canvai/internal/adapters/driven/embedding/openai"
	ollamallm "github.com/custodia-labs/canvai/internal/adapters/driven/llm/ollama"
	openaillm "github.com/custodia-labs/canvai/internal/adapters/driven/llm/openai"
	"github.com/custodia-labs/canvai/internal/core/domain"
	"github.com/custodia-labs/canvai/internal/core/ports/driven"
	"github.com/custodia-labs/canvai/internal/logger"
)

// pingTimeout is the maximum time to wait for service connectivity validation.
const pingTimeout = 5 * time.Second

// InitResult contains the result of AI service initialisation.
type InitResult struct {
	EmbeddingService driven.EmbeddingService
	LLMService       driven.LLMService
	Warnings         []string // Non-fatal issues; the affected service is nil.
}

// Close releases all resources held by InitResult.
func (r *InitResult) Close() {
	if r.EmbeddingService != nil {
		r.EmbeddingService.Close()
	}
	if r.LLMService != nil {
		r.LLMService.Close()
	}
}

// Init creates both services. Creation failures become warnings so that
// commands not needing a service still run.
func Init(settings *domain.AppSettings, keys driven.KeyProvider) *InitResult {
	result := &InitResult{}

	emb, err := CreateEmbeddingService(&settings.Embedding)
	if err != nil {
		result.Warnings = append(result.Warnings, fmt.Sprintf("embedding: %v", err))
	} else if emb != nil {
		result.EmbeddingService = embedding.NewPaced(emb, settings.Embedding.RequestsPerSecond)
	}

	llm, err := CreateLLMService(&settings.LLM, keys)
	if err != nil {
		result.Warnings = append(result.Warnings, fmt.Sprintf("llm: %v", err))
	} else {
		result.LLMService = llm
	}

	for _, w := range result.Warnings {
		logger.Warn("%s", w)
	}
	return result
}

// ValidateEmbeddingConfig builds the configured embedding client and pings it.
func ValidateEmbeddingConfig(settings *domain.EmbeddingSettings) error {
	if settings == nil || !settings.IsConfigured() {
		return nil
	}
	svc, err := CreateEmbeddingService(settings)
	if err != nil || svc == nil {
		return err
	}
	return ping(svc)
}

// ValidateLLMConfig builds the configured chat client and pings it.
func ValidateLLMConfig(settings *domain.LLMSettings, keys driven.KeyProvider) error {
	if settings == nil || !settings.IsConfigured() {
		return nil
	}
	svc, err := CreateLLMService(settings, keys)
	if err != nil || svc == nil {
		return err
	}
	return ping(svc)
}

type pinger interface {
	Ping(ctx context.Context) error
	Close() error
}

// ping probes svc once within pingTimeout and releases it.
func ping(svc pinger) error {
	defer svc.Close() //nolint:errcheck

	ctx, cancel := context.WithTimeout(context.Background(), pingTimeout)
	defer cancel()
	return svc.Ping(ctx)
}

// CreateEmbeddingService creates the appropriate embedding service based on settings.
// Returns nil if the provider is not configured.
func CreateEmbeddingService(settings *domain.EmbeddingSettings) (driven.EmbeddingService, error) {
	if settings == nil || !settings.IsConfigured() {
		return nil, nil
	}

	switch settings.Provider {
	case domain.AIProviderOllama:
		return createOllamaEmbedding(settings), nil

	case domain.AIProviderOpenAI:
		return createOpenAIEmbedding(settings)

	default:
		return nil, fmt.Errorf("%s does not support embeddings, use ollama or openai", settings.Provider)
	}
}

// CreateLLMService creates the appropriate LLM service based on settings.
// keys resolves the API key of cloud providers per call; when nil the
// configured key is used as is.
func CreateLLMService(settings *domain.LLMSettings, keys driven.KeyProvider) (driven.LLMService, error) {
	if settings == nil || !settings.IsConfigured() {
		return nil, nil
	}
	if keys == nil {
		keys = driven.StaticKey(settings.APIKey)
	}

	switch settings.Provider {
	case domain.AIProviderOllama:
		return createOllamaLLM(settings), nil

	case domain.AIProviderOpenRouter:
		return createOpenAILLM(settings, keys, openaillm.OpenRouterBaseURL, "openrouter")

	case domain.AIProviderOpenAI:
		return createOpenAILLM(settings, keys, openaillm.DefaultBaseURL, "openai")

	default:
		return nil, fmt.Errorf("unsupported LLM provider: %s", settings.Provider)
	}
}

func createOllamaEmbedding(settings *domain.EmbeddingSettings) driven.EmbeddingService {
	dimensions := domain.EmbeddingDimensions()[settings.Model]
	if dimensions == 0 {
		dimensions = ollamaembed.DefaultDimensions
	}

	return ollamaembed.NewEmbeddingService(ollamaembed.Config{
		BaseURL:    settings.BaseURL,
		Model:      settings.Model,
		Dimensions: dimensions,
	})
}

func createOpenAIEmbedding(settings *domain.EmbeddingSettings) (driven.EmbeddingService, error) {
	return openaiembed.NewEmbeddingService(openaiembed.Config{
		APIKey:     settings.APIKey,
		BaseURL:    settings.BaseURL,
		Model:      settings.Model,
		Dimensions: domain.EmbeddingDimensions()[settings.Model],
	})
}

func createOllamaLLM(settings *domain.LLMSettings) driven.LLMService {
	model := settings.Model
	if model == domain.DefaultLLMModel {
		// The gateway default is not an Ollama model name.
		model = ollamallm.DefaultLLMModel
	}
	return ollamallm.NewLLMService(ollamallm.LLMConfig{
		BaseURL: settings.BaseURL,
		Model:   model,
	})
}

func createOpenAILLM(
	settings *domain.LLMSettings, keys driven.KeyProvider, defaultURL, name string,
) (driven.LLMService, error) {
	baseURL := settings.BaseURL
	if baseURL == "" {
		baseURL = defaultURL
	}
	return openaillm.NewLLMService(openaillm.LLMConfig{
		Keys:    keys,
		BaseURL: baseURL,
		Model:   settings.Model,
		Name:    name,
	})
}
