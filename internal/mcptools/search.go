package mcptools

import (
	"context"
	"errors"
	"strings"

	"github.com/GioMjds/commitly/internal/app"
	"github.com/GioMjds/commitly/internal/daykey"
	"github.com/GioMjds/commitly/internal/entry"
	"github.com/GioMjds/commitly/internal/ledger"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// ListHandler returns the handler function for the list_entries MCP tool.
func ListHandler(sess *app.Session) func(ctx context.Context, req *mcp.CallToolRequest, input ListInput) (*mcp.CallToolResult, EntriesOutput, error) {
	return func(ctx context.Context, req *mcp.CallToolRequest, input ListInput) (*mcp.CallToolResult, EntriesOutput, error) {
		res := sess.List(ctx, ledger.ListOptions{
			Day:    daykey.Key(input.Day),
			From:   daykey.Key(input.From),
			To:     daykey.Key(input.To),
			Origin: entry.Origin(input.Origin),
			Limit:  input.Limit,
		})
		if !res.Success {
			return nil, EntriesOutput{}, errors.New(res.Message)
		}
		entries, _ := res.Data.([]entry.Entry)
		return nil, EntriesOutput{Entries: toEntryResults(entries, 0)}, nil
	}
}

// SearchHandler returns the handler function for the search_entries MCP tool.
func SearchHandler(sess *app.Session) func(ctx context.Context, req *mcp.CallToolRequest, input SearchInput) (*mcp.CallToolResult, EntriesOutput, error) {
	return func(ctx context.Context, req *mcp.CallToolRequest, input SearchInput) (*mcp.CallToolResult, EntriesOutput, error) {
		limit := input.Limit
		if limit <= 0 {
			limit = 10
		}

		res := sess.List(ctx, ledger.ListOptions{})
		if !res.Success {
			return nil, EntriesOutput{}, errors.New(res.Message)
		}
		entries, _ := res.Data.([]entry.Entry)

		query := strings.ToLower(input.Query)
		var matched []entry.Entry
		for _, e := range entries {
			text := strings.ToLower(e.Title + "\n" + e.Note + "\n" + e.Description)
			if strings.Contains(text, query) {
				matched = append(matched, e)
			}
		}
		return nil, EntriesOutput{Entries: toEntryResults(matched, limit)}, nil
	}
}
