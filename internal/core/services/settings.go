package services

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/custodia-labs/canvai/internal/core/domain"
	"github.com/custodia-labs/canvai/internal/core/ports/driven"
	"github.com/custodia-labs/canvai/internal/core/ports/driving"
)

// Ensure SettingsService implements the interface.
var _ driving.SettingsService = (*SettingsService)(nil)

// Config keys for settings storage.
//
//nolint:gosec // G101: These are config key names, not actual credentials.
const (
	keyDataDir            = "paths.data_dir"
	keyIndexDir           = "paths.index_dir"
	keyOutDir             = "paths.out_dir"
	keySearchK            = "search.k"
	keySearchMaxFetch     = "search.max_fetch"
	keyHistoryTurns       = "search.history_turns"
	keyCacheKind          = "cache.kind"
	keyCacheCapacity      = "cache.capacity"
	keyCacheTTL           = "cache.ttl"
	keyRedisAddr          = "cache.redis_addr"
	keyRedisDB            = "cache.redis_db"
	keyEmbedProvider      = "embedding.provider"
	keyEmbedModel         = "embedding.model"
	keyEmbedBaseURL       = "embedding.base_url"
	keyEmbedAPIKey        = "embedding.api_key"
	keyEmbedRate          = "embedding.requests_per_second"
	keyLLMProvider        = "llm.provider"
	keyLLMModel           = "llm.model"
	keyLLMBaseURL         = "llm.base_url"
	keyLLMAPIKey          = "llm.api_key"
	keyPlannerTemperature = "llm.planner_temperature"
	keyAnswerTemperature  = "llm.answer_temperature"
	keyServerAddr         = "server.addr"
	keyAllowedOrigins     = "server.allowed_origins"
)

// LLMKeySetting is the config key holding the stored LLM API key.
const LLMKeySetting = keyLLMAPIKey

// keyKind is how a settable key's value is parsed.
type keyKind int

const (
	kindString keyKind = iota
	kindInt
	kindFloat
	kindDuration
	kindList
	kindEmbedProvider
	kindLLMProvider
	kindCacheKind
)

var settableKeys = map[string]keyKind{
	keyDataDir:            kindString,
	keyIndexDir:           kindString,
	keyOutDir:             kindString,
	keySearchK:            kindInt,
	keySearchMaxFetch:     kindInt,
	keyHistoryTurns:       kindInt,
	keyCacheKind:          kindCacheKind,
	keyCacheCapacity:      kindInt,
	keyCacheTTL:           kindDuration,
	keyRedisAddr:          kindString,
	keyRedisDB:            kindInt,
	keyEmbedProvider:      kindEmbedProvider,
	keyEmbedModel:         kindString,
	keyEmbedBaseURL:       kindString,
	keyEmbedAPIKey:        kindString,
	keyEmbedRate:          kindFloat,
	keyLLMProvider:        kindLLMProvider,
	keyLLMModel:           kindString,
	keyLLMBaseURL:         kindString,
	keyLLMAPIKey:          kindString,
	keyPlannerTemperature: kindFloat,
	keyAnswerTemperature:  kindFloat,
	keyServerAddr:         kindString,
	keyAllowedOrigins:     kindList,
}

// SettingsService manages application settings.
type SettingsService struct {
	configStore driven.ConfigStore
	checker     driven.ProviderChecker
}

// NewSettingsService creates a new settings service. checker may be nil.
func NewSettingsService(configStore driven.ConfigStore, checker driven.ProviderChecker) *SettingsService {
	return &SettingsService{
		configStore: configStore,
		checker:     checker,
	}
}

// Get retrieves current application settings.
func (s *SettingsService) Get() (*domain.AppSettings, error) {
	defaults := domain.DefaultAppSettings()

	settings := &domain.AppSettings{
		Paths: domain.PathSettings{
			DataDir:  s.getString(keyDataDir, defaults.Paths.DataDir),
			IndexDir: s.getString(keyIndexDir, defaults.Paths.IndexDir),
			OutDir:   s.getString(keyOutDir, defaults.Paths.OutDir),
		},
		Search: domain.SearchSettings{
			K:            s.getInt(keySearchK, defaults.Search.K),
			MaxFetch:     s.getInt(keySearchMaxFetch, defaults.Search.MaxFetch),
			HistoryTurns: s.getInt(keyHistoryTurns, defaults.Search.HistoryTurns),
		},
		Cache: domain.CacheSettings{
			Kind:      s.getCacheKind(defaults.Cache.Kind),
			Capacity:  s.getInt(keyCacheCapacity, defaults.Cache.Capacity),
			TTL:       s.getDuration(keyCacheTTL, defaults.Cache.TTL),
			RedisAddr: s.configStore.GetString(keyRedisAddr),
			RedisDB:   s.configStore.GetInt(keyRedisDB),
		},
		Embedding: domain.EmbeddingSettings{
			Provider:          s.getProvider(keyEmbedProvider, defaults.Embedding.Provider),
			Model:             s.getString(keyEmbedModel, defaults.Embedding.Model),
			BaseURL:           s.configStore.GetString(keyEmbedBaseURL), // No default - adapters know their endpoint
			APIKey:            s.configStore.GetString(keyEmbedAPIKey),
			RequestsPerSecond: s.getFloat(keyEmbedRate, defaults.Embedding.RequestsPerSecond),
		},
		LLM: domain.LLMSettings{
			Provider:           s.getProvider(keyLLMProvider, defaults.LLM.Provider),
			Model:              s.getString(keyLLMModel, defaults.LLM.Model),
			BaseURL:            s.configStore.GetString(keyLLMBaseURL),
			APIKey:             s.configStore.GetString(keyLLMAPIKey),
			PlannerTemperature: s.getFloat(keyPlannerTemperature, defaults.LLM.PlannerTemperature),
			AnswerTemperature:  s.getFloat(keyAnswerTemperature, defaults.LLM.AnswerTemperature),
		},
		Server: domain.ServerSettings{
			Addr:           s.getString(keyServerAddr, defaults.Server.Addr),
			AllowedOrigins: s.configStore.GetStringSlice(keyAllowedOrigins),
		},
	}

	return settings, nil
}

// Set parses value for key, stores it and saves the config file.
func (s *SettingsService) Set(key, value string) error {
	kind, ok := settableKeys[key]
	if !ok {
		return fmt.Errorf("unknown setting %q: %w", key, domain.ErrInvalidInput)
	}
	value = strings.TrimSpace(value)

	parsed, err := parseSetting(kind, value)
	if err != nil {
		return fmt.Errorf("setting %s: %w", key, err)
	}

	if err := s.configStore.Set(key, parsed); err != nil {
		return fmt.Errorf("save %s: %w", key, err)
	}
	return s.configStore.Save()
}

func parseSetting(kind keyKind, value string) (any, error) {
	switch kind {
	case kindInt:
		n, err := strconv.Atoi(value)
		if err != nil || n < 0 {
			return nil, fmt.Errorf("%q is not a non-negative integer: %w", value, domain.ErrInvalidInput)
		}
		return n, nil
	case kindFloat:
		f, err := strconv.ParseFloat(value, 64)
		if err != nil || f < 0 {
			return nil, fmt.Errorf("%q is not a non-negative number: %w", value, domain.ErrInvalidInput)
		}
		return f, nil
	case kindDuration:
		if _, err := time.ParseDuration(value); err != nil {
			return nil, fmt.Errorf("%q is not a duration: %w", value, domain.ErrInvalidInput)
		}
		return value, nil
	case kindList:
		var items []string
		for _, item := range strings.Split(value, ",") {
			if item = strings.TrimSpace(item); item != "" {
				items = append(items, item)
			}
		}
		return items, nil
	case kindEmbedProvider:
		if !containsProvider(domain.AllEmbeddingProviders(), domain.AIProvider(value)) {
			return nil, fmt.Errorf("provider %s does not support embeddings: %w", value, domain.ErrInvalidInput)
		}
		return value, nil
	case kindLLMProvider:
		if !containsProvider(domain.AllLLMProviders(), domain.AIProvider(value)) {
			return nil, fmt.Errorf("invalid LLM provider: %s: %w", value, domain.ErrInvalidInput)
		}
		return value, nil
	case kindCacheKind:
		if !domain.CacheKind(value).IsValid() {
			return nil, fmt.Errorf("invalid cache kind: %s: %w", value, domain.ErrInvalidInput)
		}
		return value, nil
	default:
		return value, nil
	}
}

func containsProvider(list []domain.AIProvider, p domain.AIProvider) bool {
	for _, candidate := range list {
		if candidate == p {
			return true
		}
	}
	return false
}

// SetLLMKey stores the LLM API key.
func (s *SettingsService) SetLLMKey(key string) error {
	key = strings.TrimSpace(key)
	if key == "" {
		return fmt.Errorf("empty API key: %w", domain.ErrInvalidInput)
	}
	if err := s.configStore.Set(keyLLMAPIKey, key); err != nil {
		return fmt.Errorf("save llm api_key: %w", err)
	}
	return s.configStore.Save()
}

// Keys returns every settable key in sorted order.
func (s *SettingsService) Keys() []string {
	keys := make([]string, 0, len(settableKeys))
	for k := range settableKeys {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Value returns the stored value of key for display. API keys are masked.
func (s *SettingsService) Value(key string) string {
	v, ok := s.configStore.Get(key)
	if !ok {
		return ""
	}
	var str string
	switch val := v.(type) {
	case []string:
		str = strings.Join(val, ",")
	case []any:
		parts := make([]string, len(val))
		for i, p := range val {
			parts[i] = fmt.Sprint(p)
		}
		str = strings.Join(parts, ",")
	default:
		str = fmt.Sprint(val)
	}
	if strings.HasSuffix(key, ".api_key") {
		return MaskAPIKey(str)
	}
	return str
}

// MaskAPIKey hides all but the ends of a key.
func MaskAPIKey(key string) string {
	if key == "" {
		return ""
	}
	if len(key) <= 8 {
		return "****"
	}
	return key[:4] + "..." + key[len(key)-4:]
}

// Validate checks the configured providers are reachable.
func (s *SettingsService) Validate() error {
	settings, err := s.Get()
	if err != nil {
		return err
	}
	if s.checker == nil {
		return nil
	}
	if err := s.checker.CheckEmbedding(&settings.Embedding); err != nil {
		return fmt.Errorf("embedding: %w", err)
	}
	if err := s.checker.CheckLLM(&settings.LLM); err != nil {
		return fmt.Errorf("llm: %w", err)
	}
	return nil
}

// GetDefaults returns default settings.
func (s *SettingsService) GetDefaults() domain.AppSettings {
	return domain.DefaultAppSettings()
}

// Helper methods for reading config with defaults.

func (s *SettingsService) getString(key, defaultVal string) string {
	val := s.configStore.GetString(key)
	if val == "" {
		return defaultVal
	}
	return val
}

func (s *SettingsService) getInt(key string, defaultVal int) int {
	val := s.configStore.GetInt(key)
	if val == 0 {
		return defaultVal
	}
	return val
}

// getFloat distinguishes an explicit zero from a missing key, so a
// temperature can be set to 0.
func (s *SettingsService) getFloat(key string, defaultVal float64) float64 {
	if _, exists := s.configStore.Get(key); !exists {
		return defaultVal
	}
	return s.configStore.GetFloat(key)
}

func (s *SettingsService) getDuration(key string, defaultVal time.Duration) time.Duration {
	val := s.configStore.GetString(key)
	if val == "" {
		return defaultVal
	}
	d, err := time.ParseDuration(val)
	if err != nil {
		return defaultVal
	}
	return d
}

func (s *SettingsService) getCacheKind(defaultVal domain.CacheKind) domain.CacheKind {
	kind := domain.CacheKind(s.configStore.GetString(keyCacheKind))
	if !kind.IsValid() {
		return defaultVal
	}
	return kind
}

func (s *SettingsService) getProvider(key string, defaultVal domain.AIProvider) domain.AIProvider {
	val := s.configStore.GetString(key)
	if val == "" {
		return defaultVal
	}
	provider := domain.AIProvider(val)
	if !provider.IsValid() {
		return defaultVal
	}
	return provider
}
