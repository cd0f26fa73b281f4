package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/pimctx/internal/adapters/driving/mcp"
	"github.com/custodia-labs/pimctx/internal/adapters/driving/watcher"
	"github.com/custodia-labs/pimctx/internal/logger"
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

By default, the server communicates over stdio using JSON-RPC and can be
used with Claude Desktop and other MCP-compatible AI assistants. Logs go
to stderr so stdout carries only protocol messages.

Use --port to start an HTTP server instead, which enables:
  - Testing with MCP Inspector web UI
  - Remote access via HTTP

Use --catalog to load catalog files at startup. With catalog.watch enabled
the files are re-ingested whenever they change.

Examples:
  # Stdio mode (default, for Claude Desktop)
  pimctx mcp serve --catalog products.json

  # HTTP mode (for MCP Inspector, remote access)
  pimctx mcp serve --port 8080

Claude Desktop configuration (claude_desktop_config.json):
  {
    "mcpServers": {
      "pim-context": {
        "command": "/path/to/pimctx",
        "args": ["mcp", "serve", "--catalog", "/path/to/products.json"]
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
	if retrievalService == nil {
		return errors.New("retrieval service not configured")
	}

	logger.SetTimestamps(true)

	ports := &mcp.Ports{
		Retrieval: retrievalService,
		Catalog:   catalogService,
	}

	server, err := mcp.NewServer(ports)
	if err != nil {
		return err
	}

	if stop := startCatalogWatch(cmd); stop != nil {
		defer stop()
	}

	if port > 0 {
		addr := fmt.Sprintf(":%d", port)
		fmt.Fprintf(cmd.ErrOrStderr(), "MCP server listening on http://localhost%s\n", addr)
		return server.RunHTTP(cmd.Context(), addr)
	}

	return server.Run(cmd.Context())
}

// startCatalogWatch watches the startup catalog when catalog.watch is set.
// It returns nil when nothing is watched.
func startCatalogWatch(cmd *cobra.Command) func() {
	if settingsService == nil || ingestService == nil {
		return nil
	}
	settings, err := settingsService.Get()
	if err != nil || !settings.Catalog.Watch {
		return nil
	}
	paths := flagCatalog
	if len(paths) == 0 {
		paths = settings.Catalog.Paths
	}
	if len(paths) == 0 {
		return nil
	}

	w := watcher.New(ingestService, nil, paths...)
	if err := w.Start(cmd.Context()); err != nil {
		logger.Warn("Catalog watch disabled: %v", err)
		return nil
	}
	return w.Stop
}
