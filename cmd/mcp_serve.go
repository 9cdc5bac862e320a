package cmd

import (
	"github.com/GioMjds/commitly/internal/mcptools"
	"github.com/GioMjds/commitly/internal/result"
	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/spf13/cobra"
)

var mcpServeCmd = &cobra.Command{
	Use:   "mcp-serve",
	Short: "Run MCP server on stdio",
	Long: `Starts a Model Context Protocol (MCP) server that exposes the ledger
over stdio transport. The daily sync schedule runs for as long as the
server is up.

Available tools:
  - get_streak: Current and longest streak
  - list_entries: Entries by day, range or origin
  - search_entries: Text search over notes
  - day_status: Whether today is closed
  - log_entry: Log a manual entry
  - sync_github: Run one GitHub sync pass
  - call_it_a_day: Close today

Example usage in an MCP client config:
  {
    "mcpServers": {
      "commitly": {
        "command": "/path/to/commitly",
        "args": ["mcp-serve"]
      }
    }
  }`,
	RunE: runMCPServe,
}

func init() {
	rootCmd.AddCommand(mcpServeCmd)
}

func runMCPServe(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	if err := session.Start(ctx); err != nil {
		return finish(cmd, result.FromError("starting session", err), nil)
	}
	defer session.End()

	server := mcptools.CreateMCPServer(session, appConfig.DataDir)

	// stdout is reserved for the protocol; the logger writes to stderr.
	logger.Info(ctx, "starting MCP server", "transport", "stdio",
		"storage", appConfig.Storage, "data_dir", appConfig.DataDir)

	return server.Run(ctx, &mcp.StdioTransport{})
}
