package cmd

import (
	"fmt"
	"io"
	"strings"

	"github.com/GioMjds/commitly/internal/editor"
	"github.com/GioMjds/commitly/internal/entry"
	"github.com/GioMjds/commitly/internal/ledger"
	"github.com/GioMjds/commitly/internal/ui"
	"github.com/spf13/cobra"
)

var (
	logDay         string
	logTitle       string
	logEffort      string
	logDifficulty  int
	logMood        string
	logDescription string
)

var logCmd = &cobra.Command{
	Use:   "log [note...]",
	Short: "Log what you worked on",
	Long: `Log a manual entry in today's ledger.

If a note is provided as arguments, it is used directly.
If "-" is provided, the note is read from stdin.
If no note is provided, your editor is opened.`,
	Example: `  commitly log "Paired on the parser rewrite"
  commitly log Reviewed three PRs --effort 45m --mood good
  commitly log "Fixed flaky CI" --day 2024-03-04 --difficulty 4
  echo "piped note" | commitly log -`,
	PostRunE: invalidateCachePostRun,
	RunE: func(cmd *cobra.Command, args []string) error {
		note, err := readNote(cmd, args)
		if err != nil {
			return err
		}
		day, err := parseDay("day", logDay)
		if err != nil {
			return userError("%v", err)
		}
		effort, err := parseEffort(logEffort)
		if err != nil {
			return userError("%v", err)
		}

		res := session.Log(cmd.Context(), ledger.Draft{
			Day:         day,
			Note:        note,
			Title:       logTitle,
			Effort:      effort,
			Difficulty:  logDifficulty,
			Description: logDescription,
			Mood:        logMood,
		})
		return finish(cmd, res, func(w io.Writer) {
			ui.FormatEntryCreated(w, res.Data.(entry.Entry))
		})
	},
}

func readNote(cmd *cobra.Command, args []string) (string, error) {
	switch {
	case len(args) == 1 && args[0] == "-":
		data, err := io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return "", &ExitError{Code: exitRuntime, Err: fmt.Errorf("reading stdin: %w", err)}
		}
		return string(data), nil

	case len(args) > 0:
		return strings.Join(args, " "), nil

	default:
		note, changed, err := editor.New(appConfig.Editor).Compose("",
			"What did you work on? Lines starting with '#: ' are ignored.")
		if err != nil {
			return "", &ExitError{Code: exitRuntime, Err: err}
		}
		if !changed {
			return "", userError("empty note")
		}
		return note, nil
	}
}

func init() {
	logCmd.Flags().StringVar(&logDay, "day", "", "day to log for (YYYY-MM-DD, default today)")
	logCmd.Flags().StringVar(&logTitle, "title", "", "short title")
	logCmd.Flags().StringVar(&logEffort, "effort", "", "time spent, e.g. 45m or 1.5h")
	logCmd.Flags().IntVar(&logDifficulty, "difficulty", 0, "difficulty from 1 to 5")
	logCmd.Flags().StringVar(&logMood, "mood", "", "mood: "+strings.Join(entry.Moods, ", "))
	logCmd.Flags().StringVar(&logDescription, "description", "", "longer description")
	rootCmd.AddCommand(logCmd)
}
