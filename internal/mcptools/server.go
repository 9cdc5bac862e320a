// Package mcptools exposes a commitly session as MCP tools so assistants
// can log work, read the streak and trigger syncs.
package mcptools

import (
	"context"

	"github.com/GioMjds/commitly/internal/app"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// NewInMemoryServer creates an MCP server connected to an in-memory
// transport. Returns the server and the client side of the transport.
func NewInMemoryServer(sess *app.Session) (*mcp.Server, mcp.Transport) {
	clientTransport, serverTransport := mcp.NewInMemoryTransports()

	server := CreateMCPServer(sess, "")

	go func() {
		_, _ = server.Connect(context.Background(), serverTransport, nil)
	}()

	return server, clientTransport
}

// CreateMCPServer creates an MCP server with the commitly tools registered.
// dataDir is used for prompt cache invalidation after writes; pass "" to skip.
func CreateMCPServer(sess *app.Session, dataDir string) *mcp.Server {
	server := mcp.NewServer(&mcp.Implementation{
		Name:    "commitly",
		Version: "1.0.0",
	}, nil)

	// Read tools
	mcp.AddTool(server, &mcp.Tool{
		Name:        "get_streak",
		Description: "Current and longest streak of consecutive active days",
	}, StreakHandler(sess))

	mcp.AddTool(server, &mcp.Tool{
		Name:        "list_entries",
		Description: "List ledger entries by day, day range or origin, newest first",
	}, ListHandler(sess))

	mcp.AddTool(server, &mcp.Tool{
		Name:        "search_entries",
		Description: "Search ledger entries by text in the note, title or description",
	}, SearchHandler(sess))

	mcp.AddTool(server, &mcp.Tool{
		Name:        "day_status",
		Description: "Whether today has been closed with call_it_a_day",
	}, DayStatusHandler(sess))

	// Write tools
	mcp.AddTool(server, &mcp.Tool{
		Name:        "log_entry",
		Description: "Log a manual activity entry for today or a given day",
	}, LogEntryHandler(sess, dataDir))

	mcp.AddTool(server, &mcp.Tool{
		Name:        "sync_github",
		Description: "Fetch recent GitHub commits and merge them into the ledger",
	}, SyncHandler(sess, dataDir))

	mcp.AddTool(server, &mcp.Tool{
		Name:        "call_it_a_day",
		Description: "Close today after a final sync",
	}, CloseDayHandler(sess, dataDir))

	return server
}
