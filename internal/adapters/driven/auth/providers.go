package auth

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/custodia-labs/canvai/internal/core/domain"
	"github.com/custodia-labs/canvai/internal/core/ports/driven"
)

// Well-known key locations.
const (
	// EnvOpenRouterKey is the environment variable holding the OpenRouter key.
	EnvOpenRouterKey = "OPENROUTER_API_KEY"

	// UserSettingsFile is the exported user settings table, relative to the data dir.
	UserSettingsFile = "user_db/user_settings.csv"

	// UserSettingsKeyColumn holds the key in the user settings table.
	UserSettingsKeyColumn = "openrouter_api_key"
)

// Ensure providers implement the interface.
var (
	_ driven.KeyProvider = (*ConfigKeyProvider)(nil)
	_ driven.KeyProvider = EnvKeyProvider("")
	_ driven.KeyProvider = (*CSVKeyProvider)(nil)
	_ driven.KeyProvider = Chain(nil)
)

// ConfigKeyProvider reads a key from the config store.
type ConfigKeyProvider struct {
	store driven.ConfigStore
	key   string
}

// NewConfigKeyProvider reads configKey from store.
func NewConfigKeyProvider(store driven.ConfigStore, configKey string) *ConfigKeyProvider {
	return &ConfigKeyProvider{store: store, key: configKey}
}

// APIKey returns the stored key.
func (p *ConfigKeyProvider) APIKey(_ context.Context) (string, error) {
	if v := strings.TrimSpace(p.store.GetString(p.key)); v != "" {
		return v, nil
	}
	return "", fmt.Errorf("config %s: %w", p.key, domain.ErrMissingCredential)
}

// EnvKeyProvider reads a key from the named environment variable.
type EnvKeyProvider string

// APIKey returns the variable's value.
func (p EnvKeyProvider) APIKey(_ context.Context) (string, error) {
	if v := strings.TrimSpace(os.Getenv(string(p))); v != "" {
		return v, nil
	}
	return "", fmt.Errorf("env %s: %w", string(p), domain.ErrMissingCredential)
}

// CSVKeyProvider reads a key from the first row of an exported settings table.
type CSVKeyProvider struct {
	path   string
	column string
}

// NewCSVKeyProvider reads column from the CSV file at path.
func NewCSVKeyProvider(path, column string) *CSVKeyProvider {
	return &CSVKeyProvider{path: path, column: column}
}

// APIKey returns the column value of the first data row.
func (p *CSVKeyProvider) APIKey(_ context.Context) (string, error) {
	f, err := os.Open(p.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return "", fmt.Errorf("%s: %w", p.path, domain.ErrMissingCredential)
		}
		return "", fmt.Errorf("open %s: %w", p.path, err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	header, err := r.Read()
	if err != nil {
		return "", fmt.Errorf("%s: read header: %w", p.path, domain.ErrMissingCredential)
	}
	col := -1
	for i, h := range header {
		if strings.TrimSpace(strings.TrimPrefix(h, "\ufeff")) == p.column {
			col = i
			break
		}
	}
	if col < 0 {
		return "", fmt.Errorf("%s: no %s column: %w", p.path, p.column, domain.ErrMissingCredential)
	}

	row, err := r.Read()
	if err == io.EOF || (err == nil && col >= len(row)) {
		return "", fmt.Errorf("%s: no %s value: %w", p.path, p.column, domain.ErrMissingCredential)
	}
	if err != nil {
		return "", fmt.Errorf("read %s: %w", p.path, err)
	}
	if v := strings.TrimSpace(row[col]); v != "" {
		return v, nil
	}
	return "", fmt.Errorf("%s: empty %s: %w", p.path, p.column, domain.ErrMissingCredential)
}

// Chain tries providers in order and returns the first key found.
type Chain []driven.KeyProvider

// APIKey returns the first available key. Errors other than a missing
// credential stop the search.
func (c Chain) APIKey(ctx context.Context) (string, error) {
	for _, p := range c {
		key, err := p.APIKey(ctx)
		if err == nil {
			return key, nil
		}
		if !errors.Is(err, domain.ErrMissingCredential) {
			return "", err
		}
	}
	return "", fmt.Errorf("set llm.api_key, %s or %s: %w", EnvOpenRouterKey, UserSettingsFile, domain.ErrMissingCredential)
}

// NewLLMKeyChain resolves the LLM key from the config store, then the
// environment, then the exported user settings under dataDir.
func NewLLMKeyChain(store driven.ConfigStore, configKey, dataDir string) Chain {
	return Chain{
		NewConfigKeyProvider(store, configKey),
		EnvKeyProvider(EnvOpenRouterKey),
		NewCSVKeyProvider(filepath.Join(dataDir, filepath.FromSlash(UserSettingsFile)), UserSettingsKeyColumn),
	}
}
