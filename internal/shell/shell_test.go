package shell

import (
	"bytes"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/GioMjds/commitly/internal/closure"
	"github.com/GioMjds/commitly/internal/config"
	"github.com/GioMjds/commitly/internal/daykey"
	"github.com/GioMjds/commitly/internal/streak"
)

var shellCfg = config.ShellConfig{
	ActiveIcon:   "✓",
	InactiveIcon: "✗",
	StreakIcon:   "🔥",
	ClosedIcon:   "🌙",
	ShowClosure:  true,
}

func TestCacheRoundTripAndInvalidate(t *testing.T) {
	dir := t.TempDir()
	if ReadCache(dir) != nil {
		t.Fatal("expected nil cache before first write")
	}

	now := time.Date(2024, 3, 5, 12, 0, 0, 0, time.UTC)
	c := &PromptCache{Active: true, Streak: 3, Today: "2024-03-05", UpdatedAt: now}
	if err := WriteCache(dir, c); err != nil {
		t.Fatal(err)
	}
	got := ReadCache(dir)
	if got == nil || got.Streak != 3 || !got.Active {
		t.Fatalf("unexpected cache %+v", got)
	}

	if err := InvalidateCache(dir); err != nil {
		t.Fatal(err)
	}
	if err := InvalidateCache(dir); err != nil {
		t.Fatalf("second invalidate should be a no-op: %v", err)
	}
	if ReadCache(dir) != nil {
		t.Fatal("expected cache to be gone")
	}
}

func TestReadCacheCorrupt(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(CachePath(dir), []byte("{"), 0600); err != nil {
		t.Fatal(err)
	}
	if ReadCache(dir) != nil {
		t.Fatal("expected nil for unparsable cache")
	}
}

func TestIsFresh(t *testing.T) {
	now := time.Date(2024, 3, 5, 12, 0, 0, 0, time.UTC)
	c := &PromptCache{Today: "2024-03-05", UpdatedAt: now.Add(-time.Minute)}

	if !c.IsFresh(5*time.Minute, "2024-03-05", now) {
		t.Error("expected fresh within ttl")
	}
	if c.IsFresh(30*time.Second, "2024-03-05", now) {
		t.Error("expected stale after ttl")
	}
	if c.IsFresh(5*time.Minute, "2024-03-06", now) {
		t.Error("expected stale after the day changes")
	}
	var nilCache *PromptCache
	if nilCache.IsFresh(time.Hour, "2024-03-05", now) {
		t.Error("nil cache is never fresh")
	}
}

func TestNewCache(t *testing.T) {
	today := daykey.Key("2024-03-05")
	snap := streak.Snapshot{Current: 2, Longest: 5, LastActive: &today}
	c := NewCache(snap, closure.Status{State: closure.Closed, Today: today}, "sqlite", time.Now())

	if !c.Active || !c.Closed || c.Streak != 2 || c.Longest != 5 || c.StorageBackend != "sqlite" {
		t.Errorf("unexpected cache %+v", c)
	}

	yesterday := today.Prev()
	c = NewCache(streak.Snapshot{Current: 1, LastActive: &yesterday}, closure.Status{State: closure.Open, Today: today}, "", time.Now())
	if c.Active || c.Closed {
		t.Errorf("expected inactive open day, got %+v", c)
	}
}

func TestWriteDefault(t *testing.T) {
	d := BuildStatusData(&PromptCache{Active: true, Closed: true, Streak: 4, StorageBackend: "markdown"}, shellCfg)

	var buf bytes.Buffer
	WriteDefault(&buf, d, shellCfg)
	if got := buf.String(); got != "✓ 4🔥 🌙\n" {
		t.Errorf("unexpected prompt %q", got)
	}

	cfg := shellCfg
	cfg.ShowClosure = false
	cfg.ShowBackend = true
	buf.Reset()
	WriteDefault(&buf, d, cfg)
	if got := buf.String(); got != "✓ 4🔥 markdown\n" {
		t.Errorf("unexpected prompt %q", got)
	}
}

func TestWriteEnv(t *testing.T) {
	var buf bytes.Buffer
	WriteEnv(&buf, BuildStatusData(&PromptCache{Streak: 2}, shellCfg))
	out := buf.String()

	if !strings.Contains(out, `export COMMITLY_ACTIVE="✗"`) || !strings.Contains(out, `export COMMITLY_STREAK="2"`) {
		t.Errorf("unexpected env output:\n%s", out)
	}
	if strings.Contains(out, "COMMITLY_CLOSED") {
		t.Errorf("closed icon should be omitted for an open day:\n%s", out)
	}
}

func TestWriteTemplate(t *testing.T) {
	var buf bytes.Buffer
	d := BuildStatusData(&PromptCache{Streak: 7, Longest: 9}, shellCfg)
	if err := WriteTemplate(&buf, d, "{{.Streak}}/{{.Longest}}"); err != nil {
		t.Fatal(err)
	}
	if buf.String() != "7/9\n" {
		t.Errorf("unexpected output %q", buf.String())
	}
	if err := WriteTemplate(&buf, d, "{{.Nope"); err == nil {
		t.Error("expected parse error")
	}
}

func TestWriteInit(t *testing.T) {
	for _, sh := range Supported() {
		var buf bytes.Buffer
		if err := WriteInit(&buf, sh); err != nil {
			t.Fatalf("%s: %v", sh, err)
		}
		if !strings.Contains(buf.String(), "commitly status --env") {
			t.Errorf("%s script missing prompt hook", sh)
		}
	}
	if err := WriteInit(&bytes.Buffer{}, "tcsh"); err == nil {
		t.Error("expected error for unsupported shell")
	}
}
