package shell

import (
	"fmt"
	"io"
	"strings"
	"text/template"
	"time"

	"github.com/GioMjds/commitly/internal/closure"
	"github.com/GioMjds/commitly/internal/config"
	"github.com/GioMjds/commitly/internal/streak"
)

// NewCache builds a fresh prompt cache from the session's streak and
// today's closure state.
func NewCache(snap streak.Snapshot, st closure.Status, backend string, now time.Time) *PromptCache {
	return &PromptCache{
		Active:         snap.LastActive != nil && *snap.LastActive == st.Today,
		Closed:         st.State == closure.Closed,
		Streak:         snap.Current,
		Longest:        snap.Longest,
		Today:          st.Today,
		StorageBackend: backend,
		UpdatedAt:      now,
	}
}

// StatusData is what --format templates see.
type StatusData struct {
	ActiveIcon string
	Streak     int
	Longest    int
	StreakIcon string
	ClosedIcon string
	Backend    string
	Active     bool
	Closed     bool
}

// BuildStatusData resolves icons from the shell config.
func BuildStatusData(c *PromptCache, cfg config.ShellConfig) StatusData {
	icon := cfg.InactiveIcon
	if c.Active {
		icon = cfg.ActiveIcon
	}
	closed := ""
	if c.Closed {
		closed = cfg.ClosedIcon
	}
	return StatusData{
		ActiveIcon: icon,
		Streak:     c.Streak,
		Longest:    c.Longest,
		StreakIcon: cfg.StreakIcon,
		ClosedIcon: closed,
		Backend:    c.StorageBackend,
		Active:     c.Active,
		Closed:     c.Closed,
	}
}

// WriteEnv writes shell export statements for the prompt hook.
func WriteEnv(w io.Writer, d StatusData) {
	fmt.Fprintf(w, "export COMMITLY_ACTIVE=%q\n", d.ActiveIcon)
	fmt.Fprintf(w, "export COMMITLY_STREAK=%q\n", fmt.Sprintf("%d", d.Streak))
	fmt.Fprintf(w, "export COMMITLY_STREAK_ICON=%q\n", d.StreakIcon)
	if d.ClosedIcon != "" {
		fmt.Fprintf(w, "export COMMITLY_CLOSED=%q\n", d.ClosedIcon)
	}
	if d.Backend != "" {
		fmt.Fprintf(w, "export COMMITLY_BACKEND=%q\n", d.Backend)
	}
}

// WriteTemplate renders d with a user-supplied Go template.
func WriteTemplate(w io.Writer, d StatusData, format string) error {
	tmpl, err := template.New("status").Parse(format)
	if err != nil {
		return fmt.Errorf("invalid format template: %w", err)
	}
	if err := tmpl.Execute(w, d); err != nil {
		return fmt.Errorf("executing format template: %w", err)
	}
	fmt.Fprintln(w)
	return nil
}

// WriteDefault writes the one-line prompt segment.
func WriteDefault(w io.Writer, d StatusData, cfg config.ShellConfig) {
	parts := []string{fmt.Sprintf("%s %d%s", d.ActiveIcon, d.Streak, d.StreakIcon)}
	if cfg.ShowClosure && d.ClosedIcon != "" {
		parts = append(parts, d.ClosedIcon)
	}
	if cfg.ShowBackend && d.Backend != "" {
		parts = append(parts, d.Backend)
	}
	fmt.Fprintln(w, strings.Join(parts, " "))
}
