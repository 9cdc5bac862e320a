package cmd

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/GioMjds/commitly/internal/result"
	"github.com/spf13/cobra"
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Run the daily GitHub sync in the foreground",
	Long: `Keep a session open and run the daily GitHub sync once the configured
daily_sync_time has passed. Requests made with "commitly settings trigger"
are picked up as soon as the settings change.

Stops on Ctrl-C.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		if err := session.Start(ctx); err != nil {
			return finish(cmd, result.FromError("starting session", err), nil)
		}
		defer session.End()

		snap := session.Snapshot()
		fmt.Fprintf(cmd.ErrOrStderr(), "Watching for %s (streak %d). Press Ctrl-C to stop.\n", appConfig.Owner, snap.Current)
		logger.Info(ctx, "watch started", "owner", appConfig.Owner, "interval", appConfig.CheckInterval())

		<-ctx.Done()
		logger.Info(cmd.Context(), "watch stopped")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(watchCmd)
}
