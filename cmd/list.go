package cmd

import (
	"bytes"
	"fmt"
	"io"

	"github.com/GioMjds/commitly/internal/entry"
	"github.com/GioMjds/commitly/internal/ledger"
	"github.com/GioMjds/commitly/internal/ui"
	"github.com/spf13/cobra"
)

var (
	listDay    string
	listFrom   string
	listTo     string
	listOrigin string
	listLimit  int
	listIDOnly bool
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List entries by day",
	Long:  "List entries grouped by day, newest day first. Synced entries are marked with ⎇.",
	Example: `  commitly list
  commitly list --day 2024-03-05
  commitly list --from 2024-03-01 --to 2024-03-07 --origin github
  commitly list --json`,
	RunE: func(cmd *cobra.Command, args []string) error {
		opts, err := listOptions()
		if err != nil {
			return userError("%v", err)
		}

		res := session.List(cmd.Context(), opts)
		if !res.Success {
			return finish(cmd, res, nil)
		}
		entries := res.Data.([]entry.Entry)

		if listIDOnly {
			for _, e := range entries {
				fmt.Fprintln(cmd.OutOrStdout(), e.ID)
			}
			return nil
		}
		if jsonOutput {
			res.Data = ui.ToSummaries(entries)
		}
		return finish(cmd, res, func(w io.Writer) {
			var buf bytes.Buffer
			ui.FormatEntryList(&buf, entries)
			pager := ui.Pager{MaxWidth: appConfig.MaxWidth, Theme: theme}
			if err := pager.OutputOrPage(w, buf.String(), false); err != nil {
				logger.Warn(cmd.Context(), "pager failed", "error", err)
			}
		})
	},
}

func listOptions() (ledger.ListOptions, error) {
	var opts ledger.ListOptions
	var err error
	if opts.Day, err = parseDay("day", listDay); err != nil {
		return opts, err
	}
	if opts.From, err = parseDay("from", listFrom); err != nil {
		return opts, err
	}
	if opts.To, err = parseDay("to", listTo); err != nil {
		return opts, err
	}
	if opts.From != "" && opts.To != "" && opts.To.Before(opts.From) {
		return opts, fmt.Errorf("--to %s is before --from %s", opts.To, opts.From)
	}
	if listOrigin != "" {
		opts.Origin = entry.Origin(listOrigin)
		if !opts.Origin.Valid() {
			return opts, fmt.Errorf("invalid --origin %q (use manual or github)", listOrigin)
		}
	}
	if listLimit < 0 {
		return opts, fmt.Errorf("--limit must not be negative")
	}
	opts.Limit = listLimit
	return opts, nil
}

func init() {
	listCmd.Flags().StringVar(&listDay, "day", "", "only this day (YYYY-MM-DD)")
	listCmd.Flags().StringVar(&listFrom, "from", "", "first day of the range (YYYY-MM-DD)")
	listCmd.Flags().StringVar(&listTo, "to", "", "last day of the range (YYYY-MM-DD)")
	listCmd.Flags().StringVar(&listOrigin, "origin", "", "only entries of this origin (manual|github)")
	listCmd.Flags().IntVar(&listLimit, "limit", 0, "maximum number of entries")
	listCmd.Flags().BoolVar(&listIDOnly, "id-only", false, "print just entry IDs, one per line")
	rootCmd.AddCommand(listCmd)
}
