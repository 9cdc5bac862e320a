package cmd

import (
	"fmt"
	"io"

	"github.com/GioMjds/commitly/internal/reconcile"
	"github.com/GioMjds/commitly/internal/ui"
	"github.com/spf13/cobra"
)

var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Merge recent GitHub commits into the ledger",
	Long: `Fetch your recent GitHub commits and merge them into one entry per day.

Commits already recorded are skipped. When auto_create_entries is off the
pass only reports what would change.`,
	Example: `  commitly sync
  commitly sync --json`,
	PostRunE: invalidateCachePostRun,
	RunE: func(cmd *cobra.Command, args []string) error {
		res := session.SyncNow(cmd.Context())
		return finish(cmd, res, func(w io.Writer) {
			fmt.Fprintln(w, res.Message)
			ui.FormatSyncSummary(w, res.Data.(reconcile.Summary))
		})
	},
}

func init() {
	rootCmd.AddCommand(syncCmd)
}
