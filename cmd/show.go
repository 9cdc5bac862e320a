package cmd

import (
	"bytes"
	"fmt"
	"io"

	"github.com/GioMjds/commitly/internal/entry"
	"github.com/GioMjds/commitly/internal/ui"
	"github.com/spf13/cobra"
)

var showNoteOnly bool

var showCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Show an entry",
	Long:  "Display the full note, metadata and linked commits of an entry.",
	Example: `  commitly show a3kf9x2m
  commitly show a3kf9x2m --note-only
  commitly show a3kf9x2m --json`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		res := session.Get(cmd.Context(), args[0])
		if res.Success && showNoteOnly && !jsonOutput {
			fmt.Fprintln(cmd.OutOrStdout(), res.Data.(entry.Entry).Note)
			return nil
		}
		return finish(cmd, res, func(w io.Writer) {
			var buf bytes.Buffer
			ui.FormatEntryFull(&buf, res.Data.(entry.Entry), theme.MarkdownStyle)
			pager := ui.Pager{MaxWidth: appConfig.MaxWidth, Theme: theme}
			if err := pager.OutputOrPage(w, buf.String(), false); err != nil {
				logger.Warn(cmd.Context(), "pager failed", "error", err)
			}
		})
	},
}

func init() {
	showCmd.Flags().BoolVar(&showNoteOnly, "note-only", false, "print just the note")
	rootCmd.AddCommand(showCmd)
}
