package cmd

import (
	"fmt"
	"io"
	"strings"

	"github.com/GioMjds/commitly/internal/daykey"
	"github.com/GioMjds/commitly/internal/editor"
	"github.com/GioMjds/commitly/internal/entry"
	"github.com/GioMjds/commitly/internal/ledger"
	"github.com/GioMjds/commitly/internal/ui"
	"github.com/spf13/cobra"
)

var editCmd = &cobra.Command{
	Use:   "edit <id>",
	Short: "Edit a manual entry",
	Long: `Change a manually logged entry.

With flags, only the given fields change. Pass an empty --effort to clear it.
Without flags, the note opens in your configured editor.

Entries created by GitHub sync can't be edited.`,
	Example: `  commitly edit a3kf9x2m
  commitly edit a3kf9x2m --mood great --effort 2h
  commitly edit a3kf9x2m --day 2024-03-04`,
	Args:     cobra.ExactArgs(1),
	PostRunE: invalidateCachePostRun,
	RunE: func(cmd *cobra.Command, args []string) error {
		id := args[0]

		changes, hasFlags, err := changesFromFlags(cmd)
		if err != nil {
			return userError("%v", err)
		}
		if !hasFlags {
			note, changed, err := editNote(cmd, id)
			if err != nil {
				return err
			}
			if !changed {
				fmt.Fprintf(cmd.OutOrStdout(), "No changes made to entry %s.\n", id)
				return nil
			}
			changes.Note = &note
		}

		res := session.Edit(cmd.Context(), id, changes)
		return finish(cmd, res, func(w io.Writer) {
			ui.FormatEntryUpdated(w, res.Data.(entry.Entry))
		})
	},
}

func changesFromFlags(cmd *cobra.Command) (ledger.Changes, bool, error) {
	var c ledger.Changes
	flags := cmd.Flags()
	set := false

	if flags.Changed("day") {
		s, _ := flags.GetString("day")
		k, err := daykey.Parse(s)
		if err != nil {
			return c, false, fmt.Errorf("invalid --day %q (use YYYY-MM-DD)", s)
		}
		c.Day, set = &k, true
	}
	for name, dst := range map[string]**string{
		"note":        &c.Note,
		"title":       &c.Title,
		"description": &c.Description,
		"mood":        &c.Mood,
	} {
		if flags.Changed(name) {
			v, _ := flags.GetString(name)
			*dst, set = &v, true
		}
	}
	if flags.Changed("effort") {
		s, _ := flags.GetString("effort")
		eff, err := parseEffort(s)
		if err != nil {
			return c, false, err
		}
		c.Effort, set = &eff, true
	}
	if flags.Changed("difficulty") {
		d, _ := flags.GetInt("difficulty")
		c.Difficulty, set = &d, true
	}
	return c, set, nil
}

func editNote(cmd *cobra.Command, id string) (string, bool, error) {
	got := session.Get(cmd.Context(), id)
	if !got.Success {
		return "", false, finish(cmd, got, nil)
	}
	e := got.Data.(entry.Entry)
	if e.Origin != entry.OriginManual {
		return "", false, userError("entry %s was created by GitHub sync and can't be edited", id)
	}

	note, changed, err := editor.New(appConfig.Editor).Compose(e.Note,
		fmt.Sprintf("Editing entry %s for %s", e.ID, e.DayKey))
	if err != nil {
		return "", false, &ExitError{Code: exitRuntime, Err: err}
	}
	return note, changed && strings.TrimSpace(note) != strings.TrimSpace(e.Note), nil
}

func init() {
	editCmd.Flags().String("day", "", "move the entry to another day (YYYY-MM-DD)")
	editCmd.Flags().String("note", "", "replace the note")
	editCmd.Flags().String("title", "", "short title")
	editCmd.Flags().String("effort", "", "time spent, e.g. 45m or 1.5h")
	editCmd.Flags().Int("difficulty", 0, "difficulty from 1 to 5 (0 clears)")
	editCmd.Flags().String("mood", "", "mood: "+strings.Join(entry.Moods, ", "))
	editCmd.Flags().String("description", "", "longer description")
	rootCmd.AddCommand(editCmd)
}
