package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Nested keys map to env vars with underscores: github.user -> COMMITLY_GITHUB_USER.
var envReplacer = strings.NewReplacer(".", "_")

// ShellConfig holds shell integration configuration.
type ShellConfig struct {
	CacheTTL     string `mapstructure:"cache_ttl"`
	ActiveIcon   string `mapstructure:"active_icon"`
	InactiveIcon string `mapstructure:"inactive_icon"`
	StreakIcon   string `mapstructure:"streak_icon"`
	ClosedIcon   string `mapstructure:"closed_icon"`
	ShowClosure  bool   `mapstructure:"show_closure"`
	ShowBackend  bool   `mapstructure:"show_backend"`
}

// ThemeConfig selects a color preset and optional per-color overrides.
type ThemeConfig struct {
	Preset        string `mapstructure:"preset"`
	Primary       string `mapstructure:"primary"`
	Secondary     string `mapstructure:"secondary"`
	Accent        string `mapstructure:"accent"`
	Muted         string `mapstructure:"muted"`
	Danger        string `mapstructure:"danger"`
	MarkdownStyle string `mapstructure:"markdown_style"`
}

// GitHubConfig configures the GitHub activity source.
type GitHubConfig struct {
	User         string `mapstructure:"user"`
	APIURL       string `mapstructure:"api_url"`
	LookbackDays int    `mapstructure:"lookback_days"`
}

// SyncConfig configures the background scheduler.
type SyncConfig struct {
	CheckInterval string `mapstructure:"check_interval"`
}

// Config holds the application configuration.
type Config struct {
	Storage  string       `mapstructure:"storage"`
	DataDir  string       `mapstructure:"data_dir"`
	Owner    string       `mapstructure:"owner"`
	Timezone string       `mapstructure:"timezone"`
	LogLevel string       `mapstructure:"log_level"`
	Editor   string       `mapstructure:"editor"`
	MaxWidth int          `mapstructure:"max_width"`
	GitHub   GitHubConfig `mapstructure:"github"`
	Sync     SyncConfig   `mapstructure:"sync"`
	Shell    ShellConfig  `mapstructure:"shell"`
	Theme    ThemeConfig  `mapstructure:"theme"`
}

// CheckInterval parses Sync.CheckInterval, falling back to one minute.
func (c *Config) CheckInterval() time.Duration {
	d, err := time.ParseDuration(c.Sync.CheckInterval)
	if err != nil || d <= 0 {
		return time.Minute
	}
	return d
}

// DefaultDataDir returns the default data directory (~/.commitly/).
func DefaultDataDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".", ".commitly")
	}
	return filepath.Join(home, ".commitly")
}

func defaultOwner() string {
	if u := os.Getenv("USER"); u != "" {
		return u
	}
	return os.Getenv("USERNAME")
}

// Load reads configuration from file, environment variables, and defaults.
func Load(configPath string) (*Config, error) {
	v := viper.New()

	// Defaults
	v.SetDefault("storage", "markdown")
	v.SetDefault("data_dir", DefaultDataDir())
	v.SetDefault("owner", defaultOwner())
	v.SetDefault("timezone", "UTC")
	v.SetDefault("log_level", "warn")
	v.SetDefault("editor", "")
	v.SetDefault("max_width", 100)
	v.SetDefault("github.user", "")
	v.SetDefault("github.api_url", "https://api.github.com")
	v.SetDefault("github.lookback_days", 7)
	v.SetDefault("sync.check_interval", "60s")
	v.SetDefault("shell.cache_ttl", "5m")
	v.SetDefault("shell.active_icon", "✓")
	v.SetDefault("shell.inactive_icon", "✗")
	v.SetDefault("shell.streak_icon", "🔥")
	v.SetDefault("shell.closed_icon", "🌙")
	v.SetDefault("shell.show_closure", true)
	v.SetDefault("shell.show_backend", false)
	v.SetDefault("theme.preset", "default-dark")

	// Config file
	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		// XDG support
		if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
			v.AddConfigPath(filepath.Join(xdg, "commitly"))
		}
		v.AddConfigPath(DefaultDataDir())
		v.SetConfigName("config")
		v.SetConfigType("toml")
	}

	// Environment variables: COMMITLY_STORAGE, COMMITLY_DATA_DIR, COMMITLY_GITHUB_USER, etc.
	v.SetEnvPrefix("COMMITLY")
	v.SetEnvKeyReplacer(envReplacer)
	v.AutomaticEnv()

	// Read config file (ignore not found)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			if configPath != "" {
				return nil, err
			}
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, err
	}

	switch cfg.Storage {
	case "markdown", "sqlite":
	default:
		return nil, fmt.Errorf("unknown storage backend %q (want markdown or sqlite)", cfg.Storage)
	}

	return cfg, nil
}
