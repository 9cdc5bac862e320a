package cmd

import (
	"io"

	"github.com/GioMjds/commitly/internal/streak"
	"github.com/GioMjds/commitly/internal/ui"
	"github.com/spf13/cobra"
)

var streakCmd = &cobra.Command{
	Use:   "streak",
	Short: "Show your current and longest streak",
	Long: `Show the number of consecutive active days ending today or yesterday,
the longest run ever, and the last active day.

A day is active when it has at least one entry of any origin.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		res := session.Streak(cmd.Context())
		return finish(cmd, res, func(w io.Writer) {
			ui.FormatStreak(w, res.Data.(streak.Snapshot), theme)
		})
	},
}

func init() {
	rootCmd.AddCommand(streakCmd)
}
