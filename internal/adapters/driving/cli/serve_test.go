package cli

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/canvai/internal/core/ports/driving"
)

func TestServeCmd_Flags(t *testing.T) {
	addr := serveCmd.Flags().Lookup("addr")
	require.NotNil(t, addr)
	assert.Equal(t, "", addr.DefValue)

	watch := serveCmd.Flags().Lookup("watch")
	require.NotNil(t, watch)
	assert.Equal(t, "false", watch.DefValue)
}

func TestServeCmd_RequiresSearch(t *testing.T) {
	_, cleanup := setupTestServices()
	defer cleanup()
	SetServices(nil)

	_, err := execute(t, "serve")

	assert.ErrorIs(t, err, errNotConfigured)
}

func TestServeCmd_WatchRequiresRefresh(t *testing.T) {
	_, cleanup := setupTestServices()
	defer cleanup()
	SetServices(&Services{Search: &mockSearchService{}})

	_, err := execute(t, "serve", "--watch")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "refresh service")
}

func TestServeCmd_ListenError(t *testing.T) {
	_, cleanup := setupTestServices()
	defer cleanup()

	_, err := execute(t, "serve", "--addr", "not-an-address")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "listen not-an-address")
}

func TestWatchCmd_PrintsReports(t *testing.T) {
	ts, cleanup := setupTestServices()
	defer cleanup()
	ts.refresh.reports = []driving.BuildReport{
		{Name: "grades", Documents: 40},
		{Name: "users", Skipped: true},
	}

	out, err := execute(t, "watch")

	require.NoError(t, err)
	assert.Contains(t, out, "Watching exported tables")
	assert.Contains(t, out, "40 documents")
	assert.Contains(t, out, "skipped")
}

func TestWatchCmd_Error(t *testing.T) {
	ts, cleanup := setupTestServices()
	defer cleanup()
	ts.refresh.err = errors.New("watch failed")

	_, err := execute(t, "watch")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "watch failed")
}

func TestWatchCmd_NotConfigured(t *testing.T) {
	_, cleanup := setupTestServices()
	defer cleanup()
	SetServices(nil)

	_, err := execute(t, "watch")

	assert.ErrorIs(t, err, errNotConfigured)
}

func TestMCPServeCmd_HasPortFlag(t *testing.T) {
	flag := mcpServeCmd.Flags().Lookup("port")
	require.NotNil(t, flag)
	assert.Equal(t, "p", flag.Shorthand)
	assert.Equal(t, "0", flag.DefValue)
}

func TestMCPServeCmd_RequiresSearch(t *testing.T) {
	_, cleanup := setupTestServices()
	defer cleanup()
	SetServices(nil)

	_, err := execute(t, "mcp", "serve")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "validating ports")
}
