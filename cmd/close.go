package cmd

import (
	"io"

	"github.com/GioMjds/commitly/internal/closure"
	"github.com/GioMjds/commitly/internal/ui"
	"github.com/spf13/cobra"
)

var closeStatus bool

var closeCmd = &cobra.Command{
	Use:     "close",
	Aliases: []string{"call-it-a-day"},
	Short:   "Call it a day",
	Long: `Mark today as closed. If GitHub sync is available, one sync pass runs
first so today's commits are in the ledger. Closing twice is harmless.

Use --status to see whether today is already closed.`,
	Example: `  commitly close
  commitly call-it-a-day
  commitly close --status`,
	PostRunE: invalidateCachePostRun,
	RunE: func(cmd *cobra.Command, args []string) error {
		if closeStatus {
			res := session.DayStatus(cmd.Context())
			return finish(cmd, res, func(w io.Writer) {
				ui.FormatClosureStatus(w, res.Data.(closure.Status))
			})
		}
		return finish(cmd, session.CloseDay(cmd.Context()), nil)
	},
}

func init() {
	closeCmd.Flags().BoolVar(&closeStatus, "status", false, "show today's closure state instead of closing")
	rootCmd.AddCommand(closeCmd)
}
