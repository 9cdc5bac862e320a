package ui

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/GioMjds/commitly/internal/closure"
	"github.com/GioMjds/commitly/internal/daykey"
	"github.com/GioMjds/commitly/internal/entry"
	"github.com/GioMjds/commitly/internal/reconcile"
	"github.com/GioMjds/commitly/internal/result"
	"github.com/GioMjds/commitly/internal/settings"
	"github.com/GioMjds/commitly/internal/streak"
)

const stamp = "2006-01-02 15:04"

// FormatEntryCreated formats a creation confirmation message.
func FormatEntryCreated(w io.Writer, e entry.Entry) {
	fmt.Fprintf(w, "Logged entry %s for %s\n", e.ID, e.DayKey)
}

// FormatEntryUpdated formats an update confirmation message.
func FormatEntryUpdated(w io.Writer, e entry.Entry) {
	fmt.Fprintf(w, "Updated entry %s (%s)\n", e.ID, e.UpdatedAt.Local().Format(stamp))
}

// FormatEntryDeleted formats a deletion confirmation message.
func FormatEntryDeleted(w io.Writer, id string) {
	fmt.Fprintf(w, "Deleted entry %s.\n", id)
}

// FormatEntryFull formats a full entry display with metadata header.
// The markdownStyle parameter controls glamour rendering (e.g. "dark", "light").
func FormatEntryFull(w io.Writer, e entry.Entry, markdownStyle string) {
	fmt.Fprintf(w, "Entry: %s\n", e.ID)
	fmt.Fprintf(w, "Day: %s\n", e.DayKey)
	fmt.Fprintf(w, "Origin: %s\n", e.Origin)
	if e.Title != "" {
		fmt.Fprintf(w, "Title: %s\n", e.Title)
	}
	if e.Effort != nil {
		fmt.Fprintf(w, "Effort: %s %s\n", strconv.FormatFloat(e.Effort.Amount, 'f', -1, 64), e.Effort.Unit)
	}
	if e.Difficulty > 0 {
		fmt.Fprintf(w, "Difficulty: %d/5\n", e.Difficulty)
	}
	if e.Mood != "" {
		fmt.Fprintf(w, "Mood: %s\n", e.Mood)
	}
	fmt.Fprintf(w, "Created: %s\n", e.CreatedAt.Local().Format(stamp))
	fmt.Fprintf(w, "Modified: %s\n", e.UpdatedAt.Local().Format(stamp))
	fmt.Fprintln(w)

	body := e.Note
	if e.Description != "" {
		body += "\n\n" + e.Description
	}
	fmt.Fprintln(w, RenderMarkdownWithStyle(body, 80, markdownStyle))

	if len(e.ExternalEvents) > 0 {
		fmt.Fprintln(w)
		fmt.Fprintf(w, "Commits (%d):\n", len(e.ExternalEvents))
		for _, ev := range e.ExternalEvents {
			fmt.Fprintf(w, "  %s  %s  %s\n", shortSHA(ev.ExternalID), ev.OccurredAt.Local().Format(stamp), ev.Container)
			if ev.Permalink != "" {
				fmt.Fprintf(w, "           %s\n", ev.Permalink)
			}
		}
	}
}

func shortSHA(id string) string {
	if len(id) > 7 {
		return id[:7]
	}
	return id
}

// DayEntries pairs a day with its entries for formatting.
type DayEntries struct {
	Day     daykey.Key
	Entries []entry.Entry
}

// GroupByDay groups entries, which must already be ordered newest day
// first, into consecutive runs sharing a day key.
func GroupByDay(entries []entry.Entry) []DayEntries {
	var days []DayEntries
	for _, e := range entries {
		if n := len(days); n > 0 && days[n-1].Day == e.DayKey {
			days[n-1].Entries = append(days[n-1].Entries, e)
			continue
		}
		days = append(days, DayEntries{Day: e.DayKey, Entries: []entry.Entry{e}})
	}
	return days
}

// FormatEntryList formats entries grouped by day as plain text.
func FormatEntryList(w io.Writer, entries []entry.Entry) {
	days := GroupByDay(entries)
	if len(days) == 0 {
		fmt.Fprintln(w, "No entries found.")
		return
	}
	for i, d := range days {
		label := "entries"
		if len(d.Entries) == 1 {
			label = "entry"
		}
		fmt.Fprintf(w, "── %s (%d %s) ──────────\n", d.Day, len(d.Entries), label)
		for _, e := range d.Entries {
			marker := " "
			if e.Origin == entry.OriginGitHub {
				marker = "⎇"
			}
			fmt.Fprintf(w, "  %s %s  %s\n", marker, e.ID, e.Preview(80))
		}
		if i < len(days)-1 {
			fmt.Fprintln(w)
		}
	}
}

// FormatStreak formats a streak snapshot.
func FormatStreak(w io.Writer, snap streak.Snapshot, theme Theme) {
	st := theme.StreakStyle()
	fmt.Fprintf(w, "Current streak: %s %s\n", st.Render(strconv.Itoa(snap.Current)), dayWord(snap.Current))
	fmt.Fprintf(w, "Longest streak: %s %s\n", st.Render(strconv.Itoa(snap.Longest)), dayWord(snap.Longest))
	if snap.LastActive != nil {
		fmt.Fprintf(w, "Last active:    %s\n", *snap.LastActive)
	} else {
		fmt.Fprintln(w, "Last active:    never")
	}
}

func dayWord(n int) string {
	if n == 1 {
		return "day"
	}
	return "days"
}

// FormatSyncSummary prints the per-day outcome of a sync pass.
func FormatSyncSummary(w io.Writer, s reconcile.Summary) {
	for _, g := range s.Report.Groups {
		line := fmt.Sprintf("  %s  %-12s %d %s", g.Day, g.Action, g.Events, plural(g.Events, "commit", "commits"))
		if g.EntryID != "" {
			line += "  " + g.EntryID
		}
		if g.Error != "" {
			line += "  (" + g.Error + ")"
		}
		fmt.Fprintln(w, line)
	}
}

// FormatClosureStatus formats today's closure state.
func FormatClosureStatus(w io.Writer, st closure.Status) {
	fmt.Fprintf(w, "Today (%s): %s\n", st.Today, st.State)
	if st.LastClosedDay != "" {
		fmt.Fprintf(w, "Last closed: %s\n", st.LastClosedDay)
	}
}

// FormatSyncSettings prints the owner's sync preferences.
func FormatSyncSettings(w io.Writer, s settings.SyncSettings) {
	fmt.Fprintf(w, "enabled              %t\n", s.Enabled)
	fmt.Fprintf(w, "auto_create_entries  %t\n", s.AutoCreateEntries)
	fmt.Fprintf(w, "daily_sync_enabled   %t\n", s.DailySyncEnabled)
	fmt.Fprintf(w, "daily_sync_time      %s\n", s.DailySyncTime)
	last := "never"
	if s.LastSyncAt != nil {
		last = s.LastSyncAt.Local().Format(time.RFC3339)
	}
	fmt.Fprintf(w, "last_sync_at         %s\n", last)
	if s.LastDailySyncDay != "" {
		fmt.Fprintf(w, "last_daily_sync_day  %s\n", s.LastDailySyncDay)
	}
	if s.TriggerSync {
		fmt.Fprintln(w, "trigger_sync         pending")
	}
}

// FormatResult prints a result's message, styled by outcome.
func FormatResult(w io.Writer, r result.Result, theme Theme) {
	msg := r.Message
	switch {
	case r.Success:
	case r.Code == result.CodeAlreadyClosed || r.Code == result.CodeSyncDisabled:
		msg = theme.HelpStyle().Render(msg)
	default:
		msg = theme.DangerStyle().Render("Error: " + msg)
	}
	fmt.Fprintln(w, strings.TrimRight(msg, "\n"))
}

// FormatJSON writes any value as JSON to the writer.
func FormatJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// EntrySummary is a JSON representation for list output.
type EntrySummary struct {
	ID        string       `json:"id"`
	Day       daykey.Key   `json:"day_key"`
	Origin    entry.Origin `json:"origin"`
	Preview   string       `json:"preview"`
	Events    int          `json:"external_events"`
	CreatedAt time.Time    `json:"created_at"`
	UpdatedAt time.Time    `json:"updated_at"`
}

// ToSummaries converts entries to summary format for JSON list output.
func ToSummaries(entries []entry.Entry) []EntrySummary {
	summaries := make([]EntrySummary, len(entries))
	for i, e := range entries {
		summaries[i] = EntrySummary{
			ID:        e.ID,
			Day:       e.DayKey,
			Origin:    e.Origin,
			Preview:   e.Preview(60),
			Events:    len(e.ExternalEvents),
			CreatedAt: e.CreatedAt,
			UpdatedAt: e.UpdatedAt,
		}
	}
	return summaries
}

func plural(n int, one, many string) string {
	if n == 1 {
		return one
	}
	return many
}
