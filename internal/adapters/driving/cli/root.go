// Package cli provides the canvai command line interface.
package cli

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/custodia-labs/canvai/internal/adapters/driving/mcp"
	"github.com/custodia-labs/canvai/internal/core/domain"
	"github.com/custodia-labs/canvai/internal/core/ports/driving"
	"github.com/custodia-labs/canvai/internal/logger"
)

// version is set at build time.
var version = "dev"

// Persistent flags.
var (
	verbose   bool
	configDir string
	envFile   string
)

// Services bundles everything the commands drive. Nil fields disable the
// commands that need them.
type Services struct {
	Build     driving.BuildService
	Search    driving.SearchService
	Planner   driving.PlannerService
	Assistant driving.AssistantService
	Settings  driving.SettingsService
	Refresh   driving.RefreshService
	Stores    mcp.StoreReader
	Metrics   http.Handler
	Server    domain.ServerSettings

	// Close releases resources opened by the bootstrap.
	Close func()
}

// Bootstrap creates the services for a configuration directory.
type Bootstrap func(configDir string) (*Services, error)

// Services used by the commands.
var (
	buildService     driving.BuildService
	searchService    driving.SearchService
	plannerService   driving.PlannerService
	assistantService driving.AssistantService
	settingsService  driving.SettingsService
	refreshService   driving.RefreshService
	storeReader      mcp.StoreReader
	metricsHandler   http.Handler
	serverSettings   domain.ServerSettings

	bootstrap Bootstrap
	closer    func()
)

var rootCmd = &cobra.Command{
	Use:   "canvai",
	Short: "Ask questions about your course exports",
	Long: `canvai answers natural-language questions about LMS exports.

Exported tables (users, courses, grades, course content) are embedded into
local index stores. Questions are planned by an LLM, matched against the
right store with vector similarity corrected by exact identifier matches,
and answered from the retrieved rows.`,
	SilenceUsage:       true,
	PersistentPreRunE:  setup,
	PersistentPostRunE: teardown,
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
	rootCmd.PersistentFlags().StringVar(&configDir, "config-dir", "", "configuration directory (default ~/.canvai)")
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", ".env", "dotenv file to load before starting")
}

// SetVersion sets the version reported by the version command.
func SetVersion(v string) {
	version = v
}

// SetBootstrap sets the function that creates services before a command runs.
func SetBootstrap(b Bootstrap) {
	bootstrap = b
}

// SetServices installs services directly, bypassing the bootstrap.
func SetServices(s *Services) {
	if s == nil {
		s = &Services{}
	}
	buildService = s.Build
	searchService = s.Search
	plannerService = s.Planner
	assistantService = s.Assistant
	settingsService = s.Settings
	refreshService = s.Refresh
	storeReader = s.Stores
	metricsHandler = s.Metrics
	serverSettings = s.Server
	closer = s.Close
}

// Execute runs the root command.
func Execute(ctx context.Context) error {
	return rootCmd.ExecuteContext(ctx)
}

func setup(cmd *cobra.Command, _ []string) error {
	logger.SetVerbose(verbose)

	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil && !errors.Is(err, os.ErrNotExist) {
			logger.Warn("loading %s: %v", envFile, err)
		}
	}

	if bootstrap == nil || cmd == versionCmd {
		return nil
	}
	svc, err := bootstrap(configDir)
	if err != nil {
		return fmt.Errorf("starting canvai: %w", err)
	}
	SetServices(svc)
	return nil
}

func teardown(_ *cobra.Command, _ []string) error {
	if closer != nil {
		closer()
		closer = nil
	}
	return nil
}

var errNotConfigured = errors.New("not configured")

// requireService returns an error naming the missing service.
func requireService(ok bool, name string) error {
	if ok {
		return nil
	}
	return fmt.Errorf("%s service %w", name, errNotConfigured)
}
