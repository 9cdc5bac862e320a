package mcptools

import (
	"context"

	"github.com/GioMjds/commitly/internal/app"
	"github.com/GioMjds/commitly/internal/daykey"
	"github.com/GioMjds/commitly/internal/entry"
	"github.com/GioMjds/commitly/internal/ledger"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// StreakHandler returns the handler function for the get_streak MCP tool.
func StreakHandler(sess *app.Session) func(ctx context.Context, req *mcp.CallToolRequest, input EmptyInput) (*mcp.CallToolResult, ResultOutput, error) {
	return func(ctx context.Context, req *mcp.CallToolRequest, input EmptyInput) (*mcp.CallToolResult, ResultOutput, error) {
		return nil, fromResult(sess.Streak(ctx)), nil
	}
}

// DayStatusHandler returns the handler function for the day_status MCP tool.
func DayStatusHandler(sess *app.Session) func(ctx context.Context, req *mcp.CallToolRequest, input EmptyInput) (*mcp.CallToolResult, ResultOutput, error) {
	return func(ctx context.Context, req *mcp.CallToolRequest, input EmptyInput) (*mcp.CallToolResult, ResultOutput, error) {
		return nil, fromResult(sess.DayStatus(ctx)), nil
	}
}

// LogEntryHandler returns the handler function for the log_entry MCP tool.
func LogEntryHandler(sess *app.Session, dataDir string) func(ctx context.Context, req *mcp.CallToolRequest, input LogEntryInput) (*mcp.CallToolResult, ResultOutput, error) {
	return func(ctx context.Context, req *mcp.CallToolRequest, input LogEntryInput) (*mcp.CallToolResult, ResultOutput, error) {
		d := ledger.Draft{
			Day:         daykey.Key(input.Day),
			Note:        input.Note,
			Title:       input.Title,
			Description: input.Description,
			Difficulty:  input.Difficulty,
			Mood:        input.Mood,
		}
		if input.EffortAmount != 0 || input.EffortUnit != "" {
			d.Effort = &entry.Effort{Amount: input.EffortAmount, Unit: input.EffortUnit}
		}
		out := fromResult(sess.Log(ctx, d))
		invalidate(dataDir, out)
		return nil, out, nil
	}
}

// SyncHandler returns the handler function for the sync_github MCP tool.
func SyncHandler(sess *app.Session, dataDir string) func(ctx context.Context, req *mcp.CallToolRequest, input EmptyInput) (*mcp.CallToolResult, ResultOutput, error) {
	return func(ctx context.Context, req *mcp.CallToolRequest, input EmptyInput) (*mcp.CallToolResult, ResultOutput, error) {
		out := fromResult(sess.SyncNow(ctx))
		invalidate(dataDir, out)
		return nil, out, nil
	}
}

// CloseDayHandler returns the handler function for the call_it_a_day MCP tool.
func CloseDayHandler(sess *app.Session, dataDir string) func(ctx context.Context, req *mcp.CallToolRequest, input EmptyInput) (*mcp.CallToolResult, ResultOutput, error) {
	return func(ctx context.Context, req *mcp.CallToolRequest, input EmptyInput) (*mcp.CallToolResult, ResultOutput, error) {
		out := fromResult(sess.CloseDay(ctx))
		invalidate(dataDir, out)
		return nil, out, nil
	}
}
