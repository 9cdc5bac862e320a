package mcptools

import "github.com/GioMjds/commitly/internal/result"

// ResultOutput mirrors result.Result for tool output. Data varies by tool.
type ResultOutput struct {
	Success bool   `json:"success"`
	Code    string `json:"code"`
	Message string `json:"message"`
	Data    any    `json:"data,omitempty"`
}

func fromResult(r result.Result) ResultOutput {
	return ResultOutput{Success: r.Success, Code: string(r.Code), Message: r.Message, Data: r.Data}
}

// EmptyInput is used by tools without arguments.
type EmptyInput struct{}

// ListInput is the input schema for the list_entries MCP tool.
type ListInput struct {
	Day    string `json:"day,omitempty" jsonschema:"Single day (YYYY-MM-DD); takes precedence over from/to"`
	From   string `json:"from,omitempty" jsonschema:"Earliest day, inclusive (YYYY-MM-DD)"`
	To     string `json:"to,omitempty" jsonschema:"Latest day, inclusive (YYYY-MM-DD)"`
	Origin string `json:"origin,omitempty" jsonschema:"manual or github"`
	Limit  int    `json:"limit,omitempty" jsonschema:"Maximum number of results"`
}

// SearchInput is the input schema for the search_entries MCP tool.
type SearchInput struct {
	Query string `json:"query" jsonschema:"Text to search for"`
	Limit int    `json:"limit,omitempty" jsonschema:"Maximum number of results to return"`
}

// EntriesOutput is returned by list_entries and search_entries.
type EntriesOutput struct {
	Entries []EntryResult `json:"entries"`
}

// EntryResult is the common output format for entry-related MCP tools.
type EntryResult struct {
	ID      string `json:"id"`
	Day     string `json:"day"`
	Origin  string `json:"origin"`
	Preview string `json:"preview"`
	Commits int    `json:"commits,omitempty"`
}

// LogEntryInput is the input schema for the log_entry MCP tool.
type LogEntryInput struct {
	Note         string  `json:"note" jsonschema:"What was done"`
	Day          string  `json:"day,omitempty" jsonschema:"Day to log for (YYYY-MM-DD); defaults to today"`
	Title        string  `json:"title,omitempty" jsonschema:"Short title"`
	Description  string  `json:"description,omitempty" jsonschema:"Longer description"`
	EffortAmount float64 `json:"effort_amount,omitempty" jsonschema:"Time spent"`
	EffortUnit   string  `json:"effort_unit,omitempty" jsonschema:"minutes or hours"`
	Difficulty   int     `json:"difficulty,omitempty" jsonschema:"1 to 5"`
	Mood         string  `json:"mood,omitempty" jsonschema:"great, good, okay, tired or frustrated"`
}
