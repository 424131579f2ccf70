package ai

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/canvai/internal/core/domain"
	"github.com/custodia-labs/canvai/internal/core/ports/driven"
)

func TestNewConfigValidator(t *testing.T) {
	validator := NewConfigValidator(nil)

	require.NotNil(t, validator)
}

func TestConfigValidator_NothingToValidate(t *testing.T) {
	validator := NewConfigValidator(nil)

	assert.NoError(t, validator.CheckEmbedding(nil))
	assert.NoError(t, validator.CheckEmbedding(&domain.EmbeddingSettings{Model: "test-model"}))
	assert.NoError(t, validator.CheckLLM(nil))
	assert.NoError(t, validator.CheckLLM(&domain.LLMSettings{Model: "test-model"}))
}

func TestConfigValidator_PingsProviders(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/tags":
			_, _ = w.Write([]byte(`{"models":[]}`))
		case "/models":
			if r.Header.Get("Authorization") != "Bearer sk-good" {
				w.WriteHeader(http.StatusUnauthorized)
				return
			}
			_, _ = w.Write([]byte(`{"data":[]}`))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer server.Close()

	embed := &domain.EmbeddingSettings{Provider: domain.AIProviderOllama, BaseURL: server.URL}
	assert.NoError(t, NewConfigValidator(nil).CheckEmbedding(embed))

	llm := &domain.LLMSettings{Provider: domain.AIProviderOpenRouter, BaseURL: server.URL}
	assert.NoError(t, NewConfigValidator(driven.StaticKey("sk-good")).CheckLLM(llm))
	assert.ErrorIs(t, NewConfigValidator(driven.StaticKey("sk-bad")).CheckLLM(llm), domain.ErrUpstream)
}
