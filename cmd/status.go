package cmd

import (
	"fmt"
	"time"

	"github.com/GioMjds/commitly/internal/closure"
	"github.com/GioMjds/commitly/internal/shell"
	"github.com/spf13/cobra"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show streak status for the shell prompt",
	Long: `Show today's activity, the current streak and whether today is closed,
for shell prompt integration.

Reads from cache when fresh, recomputes from the ledger when stale or on a
new day.

Use --env to output shell environment variable assignments.
Use --refresh to force a cache refresh.
Use --format with a Go template for custom output.`,
	Example: `  commitly status
  commitly status --env
  commitly status --refresh
  commitly status --format "{{.ActiveIcon}} {{.Streak}}{{.StreakIcon}}"`,
	RunE: func(cmd *cobra.Command, args []string) error {
		envFlag, _ := cmd.Flags().GetBool("env")
		refreshFlag, _ := cmd.Flags().GetBool("refresh")
		formatFlag, _ := cmd.Flags().GetString("format")

		ttl, err := time.ParseDuration(appConfig.Shell.CacheTTL)
		if err != nil {
			ttl = 5 * time.Minute
		}

		now := time.Now()
		cache := shell.ReadCache(appConfig.DataDir)
		if refreshFlag || !cache.IsFresh(ttl, days.Today(now), now) {
			snap, err := session.Refresh(cmd.Context())
			if err != nil {
				return &ExitError{Code: exitRuntime, Err: fmt.Errorf("computing status: %w", err)}
			}
			st := closure.Status{State: closure.Open, Today: days.Today(now)}
			if res := session.DayStatus(cmd.Context()); res.Success {
				st = res.Data.(closure.Status)
			}

			cache = shell.NewCache(snap, st, appConfig.Storage, now)
			if err := shell.WriteCache(appConfig.DataDir, cache); err != nil {
				// A prompt must still render without a cache.
				logger.Warn(cmd.Context(), "could not write prompt cache", "error", err)
			}
		}

		data := shell.BuildStatusData(cache, appConfig.Shell)
		out := cmd.OutOrStdout()
		switch {
		case envFlag:
			shell.WriteEnv(out, data)
		case formatFlag != "":
			if err := shell.WriteTemplate(out, data, formatFlag); err != nil {
				return userError("%v", err)
			}
		default:
			shell.WriteDefault(out, data, appConfig.Shell)
		}
		return nil
	},
}

func init() {
	statusCmd.Flags().Bool("env", false, "output shell environment variable assignments")
	statusCmd.Flags().Bool("refresh", false, "force cache refresh")
	statusCmd.Flags().String("format", "", "Go template format string")
	rootCmd.AddCommand(statusCmd)
}
