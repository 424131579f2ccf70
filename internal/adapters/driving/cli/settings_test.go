package cli

import (
	"bufio"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSettingsShow(t *testing.T) {
	ts, cleanup := setupTestServices()
	defer cleanup()
	ts.settings.values = map[string]string{"llm.api_key": "sk-o...abcd"}

	out, err := execute(t, "settings", "show")

	require.NoError(t, err)
	for _, section := range []string{"[Paths]", "[Search]", "[Cache]", "[Embedding]", "[LLM]", "[Server]"} {
		assert.Contains(t, out, section)
	}
	assert.Contains(t, out, "API Key: sk-o...abcd")
	assert.Contains(t, out, "Configuration is valid.")
}

func TestSettingsShow_IsDefault(t *testing.T) {
	_, cleanup := setupTestServices()
	defer cleanup()

	out, err := execute(t, "settings")

	require.NoError(t, err)
	assert.Contains(t, out, "Current Settings")
	assert.Contains(t, out, "API Key: (not set)")
}

func TestSettingsShow_ValidationWarning(t *testing.T) {
	ts, cleanup := setupTestServices()
	defer cleanup()
	ts.settings.validateErr = errors.New("llm: unreachable")

	out, err := execute(t, "settings", "show")

	require.NoError(t, err)
	assert.Contains(t, out, "Warning: llm: unreachable")
}

func TestSettingsSet(t *testing.T) {
	ts, cleanup := setupTestServices()
	defer cleanup()

	out, err := execute(t, "settings", "set", "search.k", "8")

	require.NoError(t, err)
	assert.Equal(t, "8", ts.settings.values["search.k"])
	assert.Contains(t, out, "search.k = 8")
}

func TestSettingsSet_Error(t *testing.T) {
	ts, cleanup := setupTestServices()
	defer cleanup()
	ts.settings.setErr = errors.New("unknown setting")

	_, err := execute(t, "settings", "set", "nope", "1")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to set nope")
}

func TestSettingsSet_RequiresTwoArgs(t *testing.T) {
	_, cleanup := setupTestServices()
	defer cleanup()

	_, err := execute(t, "settings", "set", "search.k")

	assert.Error(t, err)
}

func TestSettingsSetKey_FromFlag(t *testing.T) {
	ts, cleanup := setupTestServices()
	defer cleanup()

	out, err := execute(t, "settings", "set-key", "--value", "sk-or-1234567890")

	require.NoError(t, err)
	assert.Equal(t, "sk-or-1234567890", ts.settings.llmKey)
	assert.Contains(t, out, "API key saved.")
}

func TestSettingsSetKey_FromInput(t *testing.T) {
	ts, cleanup := setupTestServices()
	defer cleanup()
	rootCmd.SetIn(strings.NewReader("sk-or-typed\n"))
	defer rootCmd.SetIn(nil)

	_, err := execute(t, "settings", "set-key")

	require.NoError(t, err)
	assert.Equal(t, "sk-or-typed", ts.settings.llmKey)
}

func TestSettingsSetKey_Empty(t *testing.T) {
	ts, cleanup := setupTestServices()
	defer cleanup()
	rootCmd.SetIn(strings.NewReader("\n"))
	defer rootCmd.SetIn(nil)

	_, err := execute(t, "settings", "set-key")

	assert.Error(t, err)
	assert.Empty(t, ts.settings.llmKey)
}

func TestReadLine(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{name: "trims newline", input: "value\n", want: "value"},
		{name: "trims spaces", input: "  value  \n", want: "value"},
		{name: "no newline", input: "value", want: "value"},
		{name: "empty", input: "", want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, readLine(bufio.NewReader(strings.NewReader(tt.input))))
		})
	}
}

func TestDisplayKey(t *testing.T) {
	assert.Equal(t, "(not set)", displayKey(""))
	assert.Equal(t, "sk-1...cdef", displayKey("sk-1...cdef"))
}
