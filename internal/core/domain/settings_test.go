package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAIProvider_IsValid(t *testing.T) {
	tests := []struct {
		provider AIProvider
		expected bool
	}{
		{AIProviderOllama, true},
		{AIProviderOpenAI, true},
		{AIProviderOpenRouter, true},
		{AIProvider("anthropic"), false},
		{AIProvider(""), false},
	}

	for _, tt := range tests {
		t.Run(string(tt.provider), func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.provider.IsValid())
		})
	}
}

func TestAIProvider_RequiresAPIKey(t *testing.T) {
	assert.False(t, AIProviderOllama.RequiresAPIKey())
	assert.True(t, AIProviderOpenAI.RequiresAPIKey())
	assert.True(t, AIProviderOpenRouter.RequiresAPIKey())
	assert.True(t, AIProviderOllama.IsLocal())
}

func TestAIProvider_Description(t *testing.T) {
	assert.Equal(t, "OpenRouter (cloud gateway)", AIProviderOpenRouter.Description())
	assert.Equal(t, unknownDescription, AIProvider("x").Description())
}

func TestCacheKind_IsValid(t *testing.T) {
	assert.True(t, CacheMemory.IsValid())
	assert.True(t, CacheLRU.IsValid())
	assert.True(t, CacheRedis.IsValid())
	assert.False(t, CacheKind("memcached").IsValid())
}

func TestEmbeddingSettings_IsConfigured(t *testing.T) {
	tests := []struct {
		name     string
		settings EmbeddingSettings
		expected bool
	}{
		{"ollama without key", EmbeddingSettings{Provider: AIProviderOllama}, true},
		{"openai without key", EmbeddingSettings{Provider: AIProviderOpenAI}, false},
		{"openai with key", EmbeddingSettings{Provider: AIProviderOpenAI, APIKey: "sk"}, true},
		{"no provider", EmbeddingSettings{}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.settings.IsConfigured())
		})
	}
}

func TestLLMSettings_IsConfigured(t *testing.T) {
	assert.True(t, LLMSettings{Provider: AIProviderOpenRouter}.IsConfigured())
	assert.False(t, LLMSettings{Provider: "anthropic"}.IsConfigured())
}

func TestDefaultAppSettings(t *testing.T) {
	s := DefaultAppSettings()

	assert.Equal(t, DefaultK, s.Search.K)
	assert.Equal(t, 200, s.Search.MaxFetch)
	assert.Equal(t, 6, s.Search.HistoryTurns)
	assert.Equal(t, CacheMemory, s.Cache.Kind)
	assert.Equal(t, AIProviderOpenRouter, s.LLM.Provider)
	assert.Equal(t, "google/gemini-2.5-pro", s.LLM.Model)
	assert.Equal(t, 0.0, s.LLM.PlannerTemperature)
	assert.Equal(t, 0.7, s.LLM.AnswerTemperature)

	dims, ok := EmbeddingDimensions()[s.Embedding.Model]
	require.True(t, ok)
	assert.Equal(t, 384, dims)
}
