package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/docwatch/internal/adapters/driven/display"
	"github.com/custodia-labs/docwatch/internal/adapters/driving/mcp"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "MCP server commands",
	Long:  `Commands for the Model Context Protocol (MCP) server integration.`,
}

var mcpServeCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the MCP server",
	Long: `Start the Model Context Protocol server so assistants can read and edit
the watched document.

By default, the server communicates over stdio using JSON-RPC. Use --port to
start an HTTP server instead.

Resources:
  docwatch://readme    current document content
  docwatch://status    settings (token masked) and sync state
  docwatch://history   recent reconciliation cycles

Tools:
  sync_now        re-read the document
  update_readme   commit new content
  rate_limit      report the API quota

Examples:
  # Stdio mode (default)
  docwatch mcp serve

  # HTTP mode (for MCP Inspector, remote access)
  docwatch mcp serve --port 8080`,
	RunE: runMCPServe,
}

func init() {
	mcpServeCmd.Flags().IntP("port", "p", 0, "HTTP port (0 = use stdio)")
	mcpCmd.AddCommand(mcpServeCmd)
	rootCmd.AddCommand(mcpCmd)
}

func runMCPServe(cmd *cobra.Command, _ []string) error {
	if err := requireDocuments(); err != nil {
		return err
	}

	port, err := cmd.Flags().GetInt("port")
	if err != nil {
		return fmt.Errorf("getting port flag: %w", err)
	}

	ports := &mcp.Ports{
		Document: documentService,
		Settings: settingsService,
		History:  historyService,
	}

	// Keep polling while serving so cycles land in history and the readme
	// resource is served from memory.
	if newController != nil {
		ctl, err := newController(cmd.Context(), display.NewLogSink("document"))
		if err != nil {
			return err
		}
		defer ctl.Dispose()
		if err := ctl.Initialize(cmd.Context()); err != nil {
			return err
		}
		ports.Sync = ctl
	}

	server, err := mcp.NewServer(ports)
	if err != nil {
		return err
	}

	if port > 0 {
		addr := fmt.Sprintf(":%d", port)
		fmt.Fprintf(cmd.OutOrStdout(), "MCP server listening on http://localhost%s\n", addr)
		return server.RunHTTP(cmd.Context(), addr)
	}

	return server.Run(cmd.Context())
}
