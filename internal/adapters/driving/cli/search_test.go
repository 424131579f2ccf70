package cli

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/canvai/internal/core/domain"
)

func TestSearchCmd_Use(t *testing.T) {
	assert.Equal(t, "search [query]", searchCmd.Use)
}

func TestSearchCmd_RequiresExactlyOneArg(t *testing.T) {
	_, cleanup := setupTestServices()
	defer cleanup()

	_, err := execute(t, "search")

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "accepts 1 arg(s)")
}

func TestSearchCmd_Flags(t *testing.T) {
	tests := []struct {
		name      string
		shorthand string
		defValue  string
	}{
		{name: "database", shorthand: "d", defValue: "course_content_summary"},
		{name: "k", shorthand: "k", defValue: "5"},
		{name: "min-score", defValue: "0"},
		{name: "recreate", defValue: "false"},
		{name: "json", defValue: "false"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			flag := searchCmd.Flags().Lookup(tt.name)
			require.NotNil(t, flag)
			assert.Equal(t, tt.shorthand, flag.Shorthand)
			assert.Equal(t, tt.defValue, flag.DefValue)
		})
	}
}

func TestSearchCmd_ExecutesWithQuery(t *testing.T) {
	ts, cleanup := setupTestServices()
	defer cleanup()

	out, err := execute(t, "search", "CMPSC461")

	require.NoError(t, err)
	assert.Contains(t, out, "Results:")
	assert.Contains(t, out, "[1] courses #4 (0.91)")
	assert.Contains(t, out, "course_id: CMPSC461 course_name: Programming Language Concepts")
	assert.Equal(t, "CMPSC461", ts.search.lastQuery)
	assert.Equal(t, "course_content_summary", ts.search.lastOpts.Database)
	assert.Nil(t, ts.search.lastOpts.MinScore)
	assert.False(t, ts.search.lastOpts.RecreateIfMissing)
}

func TestSearchCmd_PassesOptions(t *testing.T) {
	ts, cleanup := setupTestServices()
	defer cleanup()

	_, err := execute(t, "search", "-d", "grades", "-k", "8", "--min-score", "0.3", "--recreate", "Midterm")

	require.NoError(t, err)
	assert.Equal(t, "grades", ts.search.lastOpts.Database)
	assert.Equal(t, 8, ts.search.lastOpts.K)
	require.NotNil(t, ts.search.lastOpts.MinScore)
	assert.InDelta(t, 0.3, *ts.search.lastOpts.MinScore, 1e-9)
	assert.True(t, ts.search.lastOpts.RecreateIfMissing)
}

func TestSearchCmd_ZeroMinScoreIsExplicit(t *testing.T) {
	ts, cleanup := setupTestServices()
	defer cleanup()

	_, err := execute(t, "search", "--min-score", "0", "Midterm")

	require.NoError(t, err)
	require.NotNil(t, ts.search.lastOpts.MinScore)
	assert.Zero(t, *ts.search.lastOpts.MinScore)
}

func TestSearchCmd_JSONOutput(t *testing.T) {
	_, cleanup := setupTestServices()
	defer cleanup()

	out, err := execute(t, "search", "--json", "CMPSC461")
	require.NoError(t, err)

	var results []domain.SearchResult
	require.NoError(t, json.Unmarshal([]byte(out), &results))
	require.Len(t, results, 1)
	assert.Equal(t, "doc-1", results[0].Document.ID)
}

func TestSearchCmd_NoResults(t *testing.T) {
	ts, cleanup := setupTestServices()
	defer cleanup()
	ts.search.results = []domain.SearchResult{}

	out, err := execute(t, "search", "nothing")

	require.NoError(t, err)
	assert.Contains(t, out, "No results found.")
}

func TestSearchCmd_ServiceError(t *testing.T) {
	ts, cleanup := setupTestServices()
	defer cleanup()
	ts.search.err = errors.New("store missing")

	_, err := execute(t, "search", "grades")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "search failed")
}

func TestSearchCmd_NotConfigured(t *testing.T) {
	_, cleanup := setupTestServices()
	defer cleanup()
	SetServices(nil)

	_, err := execute(t, "search", "grades")

	assert.ErrorIs(t, err, errNotConfigured)
}

func TestResultLabel(t *testing.T) {
	tests := []struct {
		name string
		doc  domain.Document
		want string
	}{
		{
			name: "table and row",
			doc:  domain.Document{ID: "x", Metadata: map[string]string{domain.MetaTable: "grades", domain.MetaRow: "12"}},
			want: "grades #12",
		},
		{
			name: "table only",
			doc:  domain.Document{ID: "x", Metadata: map[string]string{domain.MetaTable: "grades"}},
			want: "grades x",
		},
		{
			name: "no metadata",
			doc:  domain.Document{ID: "x"},
			want: "x",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, resultLabel(tt.doc))
		})
	}
}

func TestSnippet(t *testing.T) {
	assert.Equal(t, "a b c", snippet("a\n b\t\tc "))

	long := strings.Repeat("é", snippetWidth+10)
	got := []rune(snippet(long))
	assert.Len(t, got, snippetWidth)
	assert.Equal(t, '…', got[len(got)-1])
}
