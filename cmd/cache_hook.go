package cmd

import (
	"github.com/GioMjds/commitly/internal/shell"
	"github.com/spf13/cobra"
)

// invalidateCachePostRun is a PostRunE hook that invalidates the prompt cache
// after commands that change the ledger or the day's state.
func invalidateCachePostRun(cmd *cobra.Command, args []string) error {
	if appConfig == nil {
		return nil
	}
	if err := shell.InvalidateCache(appConfig.DataDir); err != nil {
		logger.Debug(cmd.Context(), "prompt cache invalidation failed", "error", err)
	}
	return nil
}
