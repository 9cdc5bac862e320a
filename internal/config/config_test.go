package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

// isolate points HOME and XDG_CONFIG_HOME at an empty directory so a
// developer's own config file does not leak into the test.
func isolate(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("HOME", dir)
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(dir, "xdg"))
	return dir
}

func TestLoadDefaults(t *testing.T) {
	home := isolate(t)

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.Storage != "markdown" {
		t.Errorf("expected storage 'markdown', got %q", cfg.Storage)
	}
	if cfg.DataDir != filepath.Join(home, ".commitly") {
		t.Errorf("expected data dir under home, got %q", cfg.DataDir)
	}
	if cfg.Timezone != "UTC" {
		t.Errorf("expected timezone 'UTC', got %q", cfg.Timezone)
	}
	if cfg.GitHub.APIURL != "https://api.github.com" {
		t.Errorf("unexpected api url %q", cfg.GitHub.APIURL)
	}
	if cfg.GitHub.LookbackDays != 7 {
		t.Errorf("expected lookback 7, got %d", cfg.GitHub.LookbackDays)
	}
	if cfg.CheckInterval() != time.Minute {
		t.Errorf("expected 1m check interval, got %v", cfg.CheckInterval())
	}
	if cfg.Theme.Preset != "default-dark" {
		t.Errorf("expected preset 'default-dark', got %q", cfg.Theme.Preset)
	}
	if cfg.Theme.MarkdownStyle != "" {
		t.Errorf("expected empty markdown_style (uses preset default), got %q", cfg.Theme.MarkdownStyle)
	}
	if !cfg.Shell.ShowClosure {
		t.Error("expected show_closure to default to true")
	}
}

func TestLoadFromFile(t *testing.T) {
	isolate(t)
	dir := t.TempDir()
	configPath := filepath.Join(dir, "config.toml")

	content := `
storage = "sqlite"
timezone = "Europe/Berlin"

[github]
user = "octocat"
lookback_days = 3

[sync]
check_interval = "15s"

[theme]
preset = "default-light"
primary = "#FF0000"
markdown_style = "light"
`
	if err := os.WriteFile(configPath, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(configPath)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.Storage != "sqlite" {
		t.Errorf("expected storage 'sqlite', got %q", cfg.Storage)
	}
	if cfg.Timezone != "Europe/Berlin" {
		t.Errorf("expected timezone 'Europe/Berlin', got %q", cfg.Timezone)
	}
	if cfg.GitHub.User != "octocat" || cfg.GitHub.LookbackDays != 3 {
		t.Errorf("unexpected github config %+v", cfg.GitHub)
	}
	if cfg.CheckInterval() != 15*time.Second {
		t.Errorf("expected 15s, got %v", cfg.CheckInterval())
	}
	if cfg.Theme.Preset != "default-light" {
		t.Errorf("expected preset 'default-light', got %q", cfg.Theme.Preset)
	}
	if cfg.Theme.Primary != "#FF0000" {
		t.Errorf("expected primary '#FF0000', got %q", cfg.Theme.Primary)
	}
	if cfg.Theme.MarkdownStyle != "light" {
		t.Errorf("expected markdown_style 'light', got %q", cfg.Theme.MarkdownStyle)
	}
}

func TestLoadEnvOverrides(t *testing.T) {
	isolate(t)
	t.Setenv("COMMITLY_STORAGE", "sqlite")
	t.Setenv("COMMITLY_GITHUB_USER", "hubot")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Storage != "sqlite" {
		t.Errorf("expected env storage 'sqlite', got %q", cfg.Storage)
	}
	if cfg.GitHub.User != "hubot" {
		t.Errorf("expected env github user 'hubot', got %q", cfg.GitHub.User)
	}
}

func TestLoadRejectsUnknownBackend(t *testing.T) {
	isolate(t)
	t.Setenv("COMMITLY_STORAGE", "postgres")

	if _, err := Load(""); err == nil {
		t.Fatal("expected error for unknown backend")
	}
}

func TestLoadMissingExplicitFile(t *testing.T) {
	isolate(t)
	if _, err := Load(filepath.Join(t.TempDir(), "nope.toml")); err == nil {
		t.Fatal("expected error for missing explicit config file")
	}
}

func TestCheckIntervalFallback(t *testing.T) {
	cfg := &Config{Sync: SyncConfig{CheckInterval: "soon"}}
	if cfg.CheckInterval() != time.Minute {
		t.Errorf("expected fallback of 1m, got %v", cfg.CheckInterval())
	}
}
