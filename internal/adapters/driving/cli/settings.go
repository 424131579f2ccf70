package cli

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"
)

var settingsKeyValue string

var settingsCmd = &cobra.Command{
	Use:   "settings",
	Short: "Manage application settings",
	Long: `View and configure paths, retrieval, cache, AI provider and server settings.

Settings are stored as TOML in the config directory. Keys are dotted,
e.g. search.k, cache.kind, llm.model.`,
	RunE: runSettingsShow,
}

var settingsShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current settings",
	RunE:  runSettingsShow,
}

var settingsSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Set a single setting",
	Long: `Set a single dotted setting. Values are validated before saving.

Examples:
  canvai settings set search.k 8
  canvai settings set cache.kind redis
  canvai settings set cache.ttl 10m
  canvai settings set server.allowed_origins http://localhost:3000,http://localhost:5173`,
	Args: cobra.ExactArgs(2),
	RunE: runSettingsSet,
}

var settingsSetKeyCmd = &cobra.Command{
	Use:   "set-key",
	Short: "Store the LLM API key",
	Long: `Store the OpenRouter API key used by the planner and the answer model.

The key is read without echo. The OPENROUTER_API_KEY environment variable
and the exported user settings table are used when no key is stored.`,
	Args: cobra.NoArgs,
	RunE: runSettingsSetKey,
}

func init() {
	settingsSetKeyCmd.Flags().StringVar(&settingsKeyValue, "value", "", "key value (prompted when empty)")
	settingsCmd.AddCommand(settingsShowCmd)
	settingsCmd.AddCommand(settingsSetCmd)
	settingsCmd.AddCommand(settingsSetKeyCmd)
	rootCmd.AddCommand(settingsCmd)
}

func runSettingsShow(cmd *cobra.Command, _ []string) error {
	if err := requireService(settingsService != nil, "settings"); err != nil {
		return err
	}

	settings, err := settingsService.Get()
	if err != nil {
		return fmt.Errorf("failed to get settings: %w", err)
	}

	cmd.Println("Current Settings")
	cmd.Println("================")
	cmd.Println()

	cmd.Println("[Paths]")
	cmd.Printf("  Data: %s\n", settings.Paths.DataDir)
	cmd.Printf("  Index: %s\n", settings.Paths.IndexDir)
	cmd.Printf("  Stores: %s\n", settings.Paths.OutDir)
	cmd.Println()

	cmd.Println("[Search]")
	cmd.Printf("  K: %d\n", settings.Search.K)
	cmd.Printf("  Max fetch: %d\n", settings.Search.MaxFetch)
	cmd.Printf("  History turns: %d\n", settings.Search.HistoryTurns)
	cmd.Println()

	cmd.Println("[Cache]")
	cmd.Printf("  Kind: %s\n", settings.Cache.Kind)
	cmd.Printf("  Capacity: %d\n", settings.Cache.Capacity)
	if settings.Cache.TTL > 0 {
		cmd.Printf("  TTL: %s\n", settings.Cache.TTL)
	}
	if settings.Cache.RedisAddr != "" {
		cmd.Printf("  Redis: %s (db %d)\n", settings.Cache.RedisAddr, settings.Cache.RedisDB)
	}
	cmd.Println()

	cmd.Println("[Embedding]")
	cmd.Printf("  Provider: %s\n", settings.Embedding.Provider.Description())
	cmd.Printf("  Model: %s\n", settings.Embedding.Model)
	cmd.Printf("  Base URL: %s\n", settings.Embedding.BaseURL)
	if settings.Embedding.Provider.RequiresAPIKey() {
		cmd.Printf("  API Key: %s\n", displayKey(settingsService.Value("embedding.api_key")))
	}
	if settings.Embedding.RequestsPerSecond > 0 {
		cmd.Printf("  Requests/s: %g\n", settings.Embedding.RequestsPerSecond)
	}
	cmd.Println()

	cmd.Println("[LLM]")
	cmd.Printf("  Provider: %s\n", settings.LLM.Provider.Description())
	cmd.Printf("  Model: %s\n", settings.LLM.Model)
	cmd.Printf("  Base URL: %s\n", settings.LLM.BaseURL)
	cmd.Printf("  API Key: %s\n", displayKey(settingsService.Value("llm.api_key")))
	cmd.Printf("  Planner temperature: %g\n", settings.LLM.PlannerTemperature)
	cmd.Printf("  Answer temperature: %g\n", settings.LLM.AnswerTemperature)
	cmd.Println()

	cmd.Println("[Server]")
	cmd.Printf("  Address: %s\n", settings.Server.Addr)
	if len(settings.Server.AllowedOrigins) > 0 {
		cmd.Printf("  Allowed origins: %s\n", strings.Join(settings.Server.AllowedOrigins, ", "))
	}
	cmd.Println()

	if err := settingsService.Validate(); err != nil {
		cmd.Printf("Warning: %v\n", err)
		cmd.Println("Run 'canvai settings set <key> <value>' to fix configuration issues.")
	} else {
		cmd.Println("Configuration is valid.")
	}

	return nil
}

func displayKey(masked string) string {
	if masked == "" {
		return "(not set)"
	}
	return masked
}

func runSettingsSet(cmd *cobra.Command, args []string) error {
	if err := requireService(settingsService != nil, "settings"); err != nil {
		return err
	}

	key, value := args[0], args[1]
	if err := settingsService.Set(key, value); err != nil {
		return fmt.Errorf("failed to set %s: %w", key, err)
	}
	cmd.Printf("%s = %s\n", key, settingsService.Value(key))
	return nil
}

func runSettingsSetKey(cmd *cobra.Command, _ []string) error {
	if err := requireService(settingsService != nil, "settings"); err != nil {
		return err
	}

	key := strings.TrimSpace(settingsKeyValue)
	if key == "" {
		cmd.Print("Enter API key: ")
		key = readPassword(cmd.InOrStdin())
		cmd.Println()
	}
	if key == "" {
		return errors.New("API key is required")
	}

	if err := settingsService.SetLLMKey(key); err != nil {
		return fmt.Errorf("failed to store API key: %w", err)
	}
	cmd.Println("API key saved.")
	return nil
}

// Helper functions.

//nolint:errcheck // CLI helper, error ignored for UX
func readLine(reader *bufio.Reader) string {
	input, _ := reader.ReadString('\n')
	return strings.TrimSpace(input)
}

// readPassword reads without echo from a terminal, otherwise one line from in.
func readPassword(in io.Reader) string {
	if f, ok := in.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		password, err := term.ReadPassword(int(f.Fd()))
		if err == nil {
			return strings.TrimSpace(string(password))
		}
	}
	return readLine(bufio.NewReader(in))
}
