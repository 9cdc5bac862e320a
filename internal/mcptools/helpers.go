package mcptools

import (
	"github.com/GioMjds/commitly/internal/entry"
	"github.com/GioMjds/commitly/internal/shell"
)

func toEntryResults(entries []entry.Entry, limit int) []EntryResult {
	results := make([]EntryResult, 0, len(entries))
	for _, e := range entries {
		if limit > 0 && len(results) >= limit {
			break
		}
		results = append(results, EntryResult{
			ID:      e.ID,
			Day:     string(e.DayKey),
			Origin:  string(e.Origin),
			Preview: e.Preview(100),
			Commits: len(e.ExternalEvents),
		})
	}
	return results
}

// invalidate drops the shell prompt cache after a write (best-effort).
func invalidate(dataDir string, out ResultOutput) {
	if dataDir != "" && out.Success {
		_ = shell.InvalidateCache(dataDir)
	}
}
