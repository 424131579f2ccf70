package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/canvai/internal/adapters/driving/mcp"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "MCP server commands",
	Long:  `Commands for the Model Context Protocol (MCP) server integration.`,
}

var mcpServeCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the MCP server",
	Long: `Start the Model Context Protocol server for AI assistant integration.

Tools: search, plan and ask. Resources: canvai://stores lists the built
stores and canvai://stores/{name} describes one.

By default, the server communicates over stdio using JSON-RPC.
Use --port to start an HTTP server instead.

Examples:
  # Stdio mode (default, for desktop assistants)
  canvai mcp serve

  # HTTP mode (for MCP Inspector, remote access)
  canvai mcp serve --port 8080

Assistant configuration:
  {
    "mcpServers": {
      "canvai": {
        "command": "/path/to/canvai",
        "args": ["mcp", "serve"]
      }
    }
  }`,
	RunE: runMCPServe,
}

func init() {
	mcpServeCmd.Flags().IntP("port", "p", 0, "HTTP port (0 = use stdio)")
	mcpCmd.AddCommand(mcpServeCmd)
	rootCmd.AddCommand(mcpCmd)
}

func runMCPServe(cmd *cobra.Command, _ []string) error {
	port, err := cmd.Flags().GetInt("port")
	if err != nil {
		return fmt.Errorf("getting port flag: %w", err)
	}

	server, err := mcp.NewServer(&mcp.Ports{
		Search:    searchService,
		Planner:   plannerService,
		Assistant: assistantService,
		Stores:    storeReader,
	})
	if err != nil {
		return err
	}

	ctx, stop := signalContext(cmd.Context())
	defer stop()

	if port > 0 {
		return server.RunHTTP(ctx, fmt.Sprintf(":%d", port))
	}

	return server.Run(ctx)
}
