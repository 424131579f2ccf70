package domain

import "time"

const unknownDescription = "Unknown"

// AIProvider identifies an AI service provider for embeddings or LLM.
type AIProvider string

// Available AI providers.
const (
	// AIProviderOllama is local Ollama instance.
	AIProviderOllama AIProvider = "ollama"

	// AIProviderOpenAI is OpenAI cloud API.
	AIProviderOpenAI AIProvider = "openai"

	// AIProviderOpenRouter is the OpenRouter gateway (OpenAI-compatible API).
	AIProviderOpenRouter AIProvider = "openrouter"
)

// IsValid returns true if the AI provider is recognised.
func (p AIProvider) IsValid() bool {
	switch p {
	case AIProviderOllama, AIProviderOpenAI, AIProviderOpenRouter:
		return true
	default:
		return false
	}
}

// RequiresAPIKey returns true if this provider needs an API key.
func (p AIProvider) RequiresAPIKey() bool {
	return p == AIProviderOpenAI || p == AIProviderOpenRouter
}

// IsLocal returns true if this provider runs locally.
func (p AIProvider) IsLocal() bool {
	return p == AIProviderOllama
}

// String returns the string representation.
func (p AIProvider) String() string {
	return string(p)
}

// Description returns a human-readable description of the provider.
func (p AIProvider) Description() string {
	switch p {
	case AIProviderOllama:
		return "Ollama (local)"
	case AIProviderOpenAI:
		return "OpenAI (cloud)"
	case AIProviderOpenRouter:
		return "OpenRouter (cloud gateway)"
	default:
		return unknownDescription
	}
}

// CacheKind selects the backing implementation for the query and result caches.
type CacheKind string

// Available cache kinds.
const (
	// CacheMemory is an unbounded process-lifetime map.
	CacheMemory CacheKind = "memory"

	// CacheLRU is a bounded in-process LRU with optional TTL.
	CacheLRU CacheKind = "lru"

	// CacheRedis shares entries through a Redis server.
	CacheRedis CacheKind = "redis"
)

// IsValid returns true if the cache kind is recognised.
func (k CacheKind) IsValid() bool {
	switch k {
	case CacheMemory, CacheLRU, CacheRedis:
		return true
	default:
		return false
	}
}

// PathSettings locates source data and persisted stores.
type PathSettings struct {
	// DataDir holds the exported CSV files.
	DataDir string

	// IndexDir is the root under which stores are written.
	IndexDir string

	// OutDir is the subdirectory of IndexDir holding one directory per store.
	OutDir string
}

// SearchSettings holds retrieval defaults.
type SearchSettings struct {
	// K is the default number of results.
	K int

	// MaxFetch caps the adaptive candidate count.
	MaxFetch int

	// HistoryTurns is how many prior chat turns reach the synthesizer.
	HistoryTurns int
}

// CacheSettings configures the query embedding and result caches.
type CacheSettings struct {
	Kind      CacheKind
	Capacity  int
	TTL       time.Duration
	RedisAddr string
	RedisDB   int
}

// EmbeddingSettings holds embedding provider configuration.
type EmbeddingSettings struct {
	// Provider is the embedding service provider.
	Provider AIProvider

	// Model is the embedding model name.
	Model string

	// BaseURL is the API endpoint.
	BaseURL string

	// APIKey is the API key (for OpenAI).
	APIKey string

	// RequestsPerSecond paces embedding calls during builds. Zero disables pacing.
	RequestsPerSecond float64
}

// IsConfigured returns true if the embedding provider is set up.
func (e EmbeddingSettings) IsConfigured() bool {
	if !e.Provider.IsValid() {
		return false
	}
	if e.Provider.RequiresAPIKey() && e.APIKey == "" {
		return false
	}
	return true
}

// LLMSettings holds LLM provider configuration.
// APIKey may be empty here; the key is resolved per call so that a key
// saved after startup takes effect immediately.
type LLMSettings struct {
	Provider           AIProvider
	Model              string
	BaseURL            string
	APIKey             string
	PlannerTemperature float64
	AnswerTemperature  float64
}

// IsConfigured returns true if the LLM provider is recognised. Keys are
// checked when a request is made.
func (l LLMSettings) IsConfigured() bool {
	return l.Provider.IsValid()
}

// ServerSettings configures the HTTP query surface.
type ServerSettings struct {
	Addr           string
	AllowedOrigins []string
}

// AppSettings holds all application settings.
type AppSettings struct {
	Paths     PathSettings
	Search    SearchSettings
	Cache     CacheSettings
	Embedding EmbeddingSettings
	LLM       LLMSettings
	Server    ServerSettings
}

// Defaults for the LLM gateway.
const (
	DefaultLLMModel           = "google/gemini-2.5-pro"
	DefaultPlannerTemperature = 0.0
	DefaultAnswerTemperature  = 0.7
	DefaultMaxFetch           = 200
	DefaultHistoryTurns       = 6
)

// DefaultAppSettings returns settings with sensible defaults.
func DefaultAppSettings() AppSettings {
	return AppSettings{
		Paths: PathSettings{
			DataDir:  "data",
			IndexDir: "data",
			OutDir:   "vector_db",
		},
		Search: SearchSettings{
			K:            DefaultK,
			MaxFetch:     DefaultMaxFetch,
			HistoryTurns: DefaultHistoryTurns,
		},
		Cache: CacheSettings{
			Kind:     CacheMemory,
			Capacity: 1024,
		},
		Embedding: EmbeddingSettings{
			Provider: AIProviderOllama,
			Model:    "all-minilm",
		},
		LLM: LLMSettings{
			Provider:           AIProviderOpenRouter,
			Model:              DefaultLLMModel,
			PlannerTemperature: DefaultPlannerTemperature,
			AnswerTemperature:  DefaultAnswerTemperature,
		},
		Server: ServerSettings{
			Addr: "127.0.0.1:8000",
		},
	}
}

// AllEmbeddingProviders returns providers that support embeddings.
func AllEmbeddingProviders() []AIProvider {
	return []AIProvider{
		AIProviderOllama,
		AIProviderOpenAI,
	}
}

// AllLLMProviders returns providers that support chat completions.
func AllLLMProviders() []AIProvider {
	return []AIProvider{
		AIProviderOpenRouter,
		AIProviderOpenAI,
		AIProviderOllama,
	}
}

// DefaultEmbeddingModels returns default models for each embedding provider.
func DefaultEmbeddingModels() map[AIProvider]string {
	return map[AIProvider]string{
		AIProviderOllama: "all-minilm",
		AIProviderOpenAI: "text-embedding-3-small",
	}
}

// EmbeddingDimensions returns the vector dimensions for known models.
func EmbeddingDimensions() map[string]int {
	return map[string]int{
		// Ollama models
		"nomic-embed-text":  768,
		"mxbai-embed-large": 1024,
		"all-minilm":        384,
		// OpenAI models
		"text-embedding-3-small": 1536,
		"text-embedding-3-large": 3072,
		"text-embedding-ada-002": 1536,
	}
}
