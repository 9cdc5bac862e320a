package ui

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/GioMjds/commitly/internal/closure"
	"github.com/GioMjds/commitly/internal/config"
	"github.com/GioMjds/commitly/internal/daykey"
	"github.com/GioMjds/commitly/internal/entry"
	"github.com/GioMjds/commitly/internal/reconcile"
	"github.com/GioMjds/commitly/internal/result"
	"github.com/GioMjds/commitly/internal/settings"
	"github.com/GioMjds/commitly/internal/streak"
	tea "github.com/charmbracelet/bubbletea"
)

func sampleEntries() []entry.Entry {
	at := time.Date(2024, 3, 5, 10, 0, 0, 0, time.UTC)
	return []entry.Entry{
		{ID: "aaaaaaaa", DayKey: "2024-03-05", Origin: entry.OriginManual, Note: "paired on parser", CreatedAt: at, UpdatedAt: at},
		{ID: "bbbbbbbb", DayKey: "2024-03-05", Origin: entry.OriginGitHub, Note: "acme/api: fix flaky test", CreatedAt: at, UpdatedAt: at,
			ExternalEvents: []entry.ExternalEvent{{ExternalID: "0123456789abcdef", Summary: "fix flaky test", Container: "acme/api", OccurredAt: at}}},
		{ID: "cccccccc", DayKey: "2024-03-04", Origin: entry.OriginManual, Note: "read docs", CreatedAt: at, UpdatedAt: at},
	}
}

func TestGroupByDay(t *testing.T) {
	days := GroupByDay(sampleEntries())
	if len(days) != 2 {
		t.Fatalf("expected 2 days, got %d", len(days))
	}
	if days[0].Day != "2024-03-05" || len(days[0].Entries) != 2 {
		t.Errorf("unexpected first group %+v", days[0])
	}
	if days[1].Day != "2024-03-04" || len(days[1].Entries) != 1 {
		t.Errorf("unexpected second group %+v", days[1])
	}
}

func TestFormatEntryList(t *testing.T) {
	var buf bytes.Buffer
	FormatEntryList(&buf, sampleEntries())
	out := buf.String()

	for _, want := range []string{"2024-03-05 (2 entries)", "2024-03-04 (1 entry)", "paired on parser", "⎇ bbbbbbbb"} {
		if !strings.Contains(out, want) {
			t.Errorf("expected %q in output:\n%s", want, out)
		}
	}

	buf.Reset()
	FormatEntryList(&buf, nil)
	if !strings.Contains(buf.String(), "No entries found") {
		t.Errorf("unexpected empty output %q", buf.String())
	}
}

func TestFormatEntryFull(t *testing.T) {
	e := sampleEntries()[1]
	e.Title = "Bugfix day"
	e.Effort = &entry.Effort{Amount: 1.5, Unit: entry.UnitHours}
	e.Difficulty = 3
	e.Mood = "good"

	var buf bytes.Buffer
	FormatEntryFull(&buf, e, "notty")
	out := stripANSI(buf.String())

	for _, want := range []string{"Entry: bbbbbbbb", "Origin: github", "Title: Bugfix day", "Effort: 1.5 hours", "Difficulty: 3/5", "Mood: good", "Commits (1)", "0123456", "acme/api"} {
		if !strings.Contains(out, want) {
			t.Errorf("expected %q in output:\n%s", want, out)
		}
	}
}

func TestFormatStreak(t *testing.T) {
	theme := ResolveTheme(config.ThemeConfig{})
	last := daykey.Key("2024-03-05")

	var buf bytes.Buffer
	FormatStreak(&buf, streak.Snapshot{Current: 1, Longest: 4, LastActive: &last}, theme)
	out := stripANSI(buf.String())
	if !strings.Contains(out, "Current streak: 1 day\n") || !strings.Contains(out, "Longest streak: 4 days") {
		t.Errorf("unexpected streak output:\n%s", out)
	}
	if !strings.Contains(out, "2024-03-05") {
		t.Errorf("expected last active day:\n%s", out)
	}

	buf.Reset()
	FormatStreak(&buf, streak.Snapshot{}, theme)
	if !strings.Contains(stripANSI(buf.String()), "never") {
		t.Errorf("expected 'never' for empty ledger:\n%s", buf.String())
	}
}

func TestFormatSyncSummary(t *testing.T) {
	var buf bytes.Buffer
	FormatSyncSummary(&buf, reconcile.Summary{Report: reconcile.MergeReport{Groups: []reconcile.GroupResult{
		{Day: "2024-03-05", EntryID: "bbbbbbbb", Action: reconcile.ActionCreated, Events: 2},
		{Day: "2024-03-04", Action: reconcile.ActionFailed, Events: 1, Error: "disk full"},
	}}})
	out := buf.String()
	if !strings.Contains(out, "2 commits  bbbbbbbb") {
		t.Errorf("expected created group line:\n%s", out)
	}
	if !strings.Contains(out, "1 commit  (disk full)") {
		t.Errorf("expected failed group line:\n%s", out)
	}
}

func TestFormatClosureAndSettings(t *testing.T) {
	var buf bytes.Buffer
	FormatClosureStatus(&buf, closure.Status{State: closure.Closed, Today: "2024-03-05", LastClosedDay: "2024-03-05"})
	if !strings.Contains(buf.String(), "Today (2024-03-05): closed") {
		t.Errorf("unexpected closure output %q", buf.String())
	}

	buf.Reset()
	cfg := settings.DefaultSync()
	cfg.TriggerSync = true
	FormatSyncSettings(&buf, cfg)
	out := buf.String()
	for _, want := range []string{"auto_create_entries  true", "daily_sync_time      18:00", "last_sync_at         never", "trigger_sync         pending"} {
		if !strings.Contains(out, want) {
			t.Errorf("expected %q in output:\n%s", want, out)
		}
	}
}

func TestFormatResult(t *testing.T) {
	theme := ResolveTheme(config.ThemeConfig{})
	var buf bytes.Buffer

	FormatResult(&buf, result.OK("Logged", nil), theme)
	FormatResult(&buf, result.Fail(result.CodeInvalid, "note is empty"), theme)
	out := stripANSI(buf.String())
	if out != "Logged\nError: note is empty\n" {
		t.Errorf("unexpected output %q", out)
	}
}

func TestToSummariesJSON(t *testing.T) {
	var buf bytes.Buffer
	if err := FormatJSON(&buf, ToSummaries(sampleEntries())); err != nil {
		t.Fatal(err)
	}
	var got []map[string]any
	if err := json.Unmarshal(buf.Bytes(), &got); err != nil {
		t.Fatal(err)
	}
	if len(got) != 3 {
		t.Fatalf("expected 3 summaries, got %d", len(got))
	}
	if got[1]["origin"] != "github" || got[1]["external_events"] != float64(1) {
		t.Errorf("unexpected github summary %v", got[1])
	}
}

func TestConfirmModel(t *testing.T) {
	m := confirmModel{prompt: "Delete?"}
	if !strings.Contains(stripANSI(m.View()), "Delete? [y/N]") {
		t.Errorf("unexpected prompt %q", m.View())
	}

	yes, _ := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("Y")})
	if !yes.(confirmModel).confirmed {
		t.Error("expected Y to confirm")
	}
	no, _ := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	if no.(confirmModel).confirmed || !no.(confirmModel).done {
		t.Error("expected enter to decline")
	}
}
