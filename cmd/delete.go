package cmd

import (
	"fmt"
	"io"

	"github.com/GioMjds/commitly/internal/entry"
	"github.com/GioMjds/commitly/internal/ui"
	"github.com/spf13/cobra"
)

var forceDelete bool

var deleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete an entry",
	Long: `Permanently delete an entry. Requires confirmation unless --force is used.

Deleting an entry created by GitHub sync makes its commits eligible for the
next sync again.`,
	Example: `  commitly delete a3kf9x2m
  commitly delete a3kf9x2m --force`,
	Args:     cobra.ExactArgs(1),
	PostRunE: invalidateCachePostRun,
	RunE: func(cmd *cobra.Command, args []string) error {
		id := args[0]

		if !forceDelete && !jsonOutput {
			got := session.Get(cmd.Context(), id)
			if !got.Success {
				return finish(cmd, got, nil)
			}
			e := got.Data.(entry.Entry)
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Entry: %s (%s, %s)\n", e.ID, e.DayKey, e.Origin)
			fmt.Fprintf(out, "Preview: %s\n\n", e.Preview(60))

			confirmed, err := ui.Confirm("Delete this entry? This cannot be undone.", theme)
			if err != nil {
				return &ExitError{Code: exitRuntime, Err: err}
			}
			if !confirmed {
				fmt.Fprintln(out, "Cancelled.")
				return nil
			}
		}

		res := session.Delete(cmd.Context(), id)
		return finish(cmd, res, func(w io.Writer) {
			ui.FormatEntryDeleted(w, id)
		})
	},
}

func init() {
	deleteCmd.Flags().BoolVar(&forceDelete, "force", false, "skip confirmation prompt")
	rootCmd.AddCommand(deleteCmd)
}
