package cmd

import (
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"

	"github.com/GioMjds/commitly/internal/settings"
	"github.com/GioMjds/commitly/internal/ui"
	"github.com/spf13/cobra"
)

// settingSetters maps user-editable sync settings to their parsers.
var settingSetters = map[string]func(*settings.SyncSettings, string) error{
	"enabled": func(s *settings.SyncSettings, v string) error {
		return parseBool(v, &s.Enabled)
	},
	"auto_create_entries": func(s *settings.SyncSettings, v string) error {
		return parseBool(v, &s.AutoCreateEntries)
	},
	"daily_sync_enabled": func(s *settings.SyncSettings, v string) error {
		return parseBool(v, &s.DailySyncEnabled)
	},
	"daily_sync_time": func(s *settings.SyncSettings, v string) error {
		if _, _, err := settings.ParseDailyTime(v); err != nil {
			return err
		}
		s.DailySyncTime = v
		return nil
	},
}

func parseBool(v string, dst *bool) error {
	b, err := strconv.ParseBool(v)
	if err != nil {
		return fmt.Errorf("invalid boolean %q", v)
	}
	*dst = b
	return nil
}

func settingKeys() []string {
	keys := make([]string, 0, len(settingSetters))
	for k := range settingSetters {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

var settingsCmd = &cobra.Command{
	Use:   "settings",
	Short: "View and change GitHub sync settings",
}

var settingsShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show sync settings",
	RunE: func(cmd *cobra.Command, args []string) error {
		res := session.SyncSettings(cmd.Context())
		return finish(cmd, res, func(w io.Writer) {
			ui.FormatSyncSettings(w, res.Data.(settings.SyncSettings))
		})
	},
}

var settingsSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Change a sync setting",
	Long:  "Change a sync setting. Keys: " + strings.Join(settingKeys(), ", ") + ".",
	Example: `  commitly settings set enabled true
  commitly settings set daily_sync_enabled true
  commitly settings set daily_sync_time 18:30`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		key, value := args[0], args[1]
		set, ok := settingSetters[key]
		if !ok {
			return userError("unknown setting %q (keys: %s)", key, strings.Join(settingKeys(), ", "))
		}

		if err := set(&settings.SyncSettings{}, value); err != nil {
			return userError("%s: %v", key, err)
		}
		res := session.UpdateSyncSettings(cmd.Context(), func(s *settings.SyncSettings) {
			_ = set(s, value)
		})
		return finish(cmd, res, func(w io.Writer) {
			fmt.Fprintf(w, "Set %s = %s\n", key, value)
		})
	},
}

var settingsTriggerCmd = &cobra.Command{
	Use:   "trigger",
	Short: "Ask a running watcher to sync on its next check",
	RunE: func(cmd *cobra.Command, args []string) error {
		res := session.UpdateSyncSettings(cmd.Context(), func(s *settings.SyncSettings) {
			s.TriggerSync = true
		})
		return finish(cmd, res, func(w io.Writer) {
			fmt.Fprintln(w, "Sync requested. A running `commitly watch` picks it up on its next check.")
		})
	},
}

func init() {
	settingsCmd.AddCommand(settingsShowCmd, settingsSetCmd, settingsTriggerCmd)
	rootCmd.AddCommand(settingsCmd)
}
