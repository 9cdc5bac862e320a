package entry

import (
	"fmt"
	"regexp"
	"sort"
	"strings"
	"time"

	"github.com/GioMjds/commitly/internal/daykey"
	gonanoid "github.com/matoous/go-nanoid/v2"
)

const (
	idAlphabet = "abcdefghijklmnopqrstuvwxyz0123456789"
	idLength   = 8
)

var idPattern = regexp.MustCompile(`^[a-z0-9]{8}$`)

// Origin tags where an entry came from.
type Origin string

const (
	OriginManual Origin = "manual"
	OriginGitHub Origin = "github"
)

// Valid reports whether o is a known origin.
func (o Origin) Valid() bool {
	return o == OriginManual || o == OriginGitHub
}

// Effort units accepted on manual entries.
const (
	UnitMinutes = "minutes"
	UnitHours   = "hours"
)

// Moods is the fixed set of mood markers.
var Moods = []string{"great", "good", "okay", "tired", "frustrated"}

// ExternalEvent is one item from an external source, embedded in an Entry.
// ExternalID is the dedup key across the owner's whole ledger.
type ExternalEvent struct {
	ExternalID string    `json:"external_id" yaml:"external_id"`
	Summary    string    `json:"summary" yaml:"summary"`
	Container  string    `json:"container,omitempty" yaml:"container,omitempty"`
	Permalink  string    `json:"permalink,omitempty" yaml:"permalink,omitempty"`
	OccurredAt time.Time `json:"occurred_at" yaml:"occurred_at"`
}

// Effort is time spent, as entered by the user.
type Effort struct {
	Amount float64 `json:"amount" yaml:"amount"`
	Unit   string  `json:"unit" yaml:"unit"`
}

// Entry is one activity record in an owner's ledger.
type Entry struct {
	ID             string          `json:"id"`
	OwnerID        string          `json:"owner_id"`
	DayKey         daykey.Key      `json:"day_key"`
	Note           string          `json:"note"`
	Origin         Origin          `json:"origin"`
	ExternalEvents []ExternalEvent `json:"external_events,omitempty"`
	CreatedAt      time.Time       `json:"created_at"`
	UpdatedAt      time.Time       `json:"updated_at"`
	Version        int             `json:"version"`

	Title       string  `json:"title,omitempty"`
	Effort      *Effort `json:"effort,omitempty"`
	Difficulty  int     `json:"difficulty,omitempty"`
	Description string  `json:"description,omitempty"`
	Mood        string  `json:"mood,omitempty"`
}

// NewID generates a new nanoid for an entry.
func NewID() (string, error) {
	return gonanoid.Generate(idAlphabet, idLength)
}

// ValidateID checks whether an ID matches the expected pattern.
func ValidateID(id string) error {
	if !idPattern.MatchString(id) {
		return fmt.Errorf("invalid entry ID: %q (must be 8 lowercase alphanumeric characters)", id)
	}
	return nil
}

// Validate checks the fields every entry must carry regardless of origin.
func (e *Entry) Validate() error {
	if e.OwnerID == "" {
		return fmt.Errorf("entry owner must not be empty")
	}
	if err := e.DayKey.Validate(); err != nil {
		return err
	}
	if !e.Origin.Valid() {
		return fmt.Errorf("unknown entry origin %q", e.Origin)
	}
	if e.Origin == OriginManual {
		return ValidateManual(e.Note, e.Effort, e.Difficulty, e.Mood)
	}
	if len(e.ExternalEvents) == 0 {
		return fmt.Errorf("github entry must carry at least one event")
	}
	return nil
}

// ValidateManual checks the user-supplied attributes of a manual entry.
func ValidateManual(note string, effort *Effort, difficulty int, mood string) error {
	if strings.TrimSpace(note) == "" {
		return fmt.Errorf("entry note must not be empty")
	}
	if effort != nil {
		if effort.Amount <= 0 {
			return fmt.Errorf("effort must be positive, got %v", effort.Amount)
		}
		if effort.Unit != UnitMinutes && effort.Unit != UnitHours {
			return fmt.Errorf("invalid effort unit %q: must be %s or %s", effort.Unit, UnitMinutes, UnitHours)
		}
	}
	if difficulty != 0 && (difficulty < 1 || difficulty > 5) {
		return fmt.Errorf("difficulty must be between 1 and 5, got %d", difficulty)
	}
	if mood != "" && !validMood(mood) {
		return fmt.Errorf("invalid mood %q: must be one of %s", mood, strings.Join(Moods, ", "))
	}
	return nil
}

func validMood(m string) bool {
	for _, v := range Moods {
		if v == m {
			return true
		}
	}
	return false
}

// Preview returns a truncated single-line preview of the entry.
func (e *Entry) Preview(maxLen int) string {
	text := e.Note
	if e.Title != "" {
		text = e.Title + " - " + e.Note
	}
	text = strings.ReplaceAll(text, "\n", " ")
	if len(text) <= maxLen {
		return text
	}
	return text[:maxLen-3] + "..."
}

// HasEvent reports whether the entry already embeds externalID.
func (e *Entry) HasEvent(externalID string) bool {
	for _, ev := range e.ExternalEvents {
		if ev.ExternalID == externalID {
			return true
		}
	}
	return false
}

// AppendEvents adds events not already present, keeping arrival order.
// It returns how many were added.
func (e *Entry) AppendEvents(events []ExternalEvent) int {
	added := 0
	for _, ev := range events {
		if e.HasEvent(ev.ExternalID) {
			continue
		}
		e.ExternalEvents = append(e.ExternalEvents, ev)
		added++
	}
	return added
}

// JoinNote builds the note for a synced entry. This is the only place the
// note text of a github entry is derived: events are deduplicated and
// ordered by ExternalID, each contributes the trimmed first line of its
// summary, prefixed with its container when present.
func JoinNote(events []ExternalEvent) string {
	seen := make(map[string]bool, len(events))
	uniq := make([]ExternalEvent, 0, len(events))
	for _, ev := range events {
		if seen[ev.ExternalID] {
			continue
		}
		seen[ev.ExternalID] = true
		uniq = append(uniq, ev)
	}
	sort.Slice(uniq, func(i, j int) bool {
		return uniq[i].ExternalID < uniq[j].ExternalID
	})

	lines := make([]string, 0, len(uniq))
	for _, ev := range uniq {
		summary := FirstLine(ev.Summary)
		if summary == "" {
			continue
		}
		if c := strings.TrimSpace(ev.Container); c != "" {
			summary = c + ": " + summary
		}
		lines = append(lines, summary)
	}
	return strings.Join(lines, "\n")
}

// FirstLine returns the first line of s with surrounding space removed.
func FirstLine(s string) string {
	s = strings.TrimSpace(s)
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		s = s[:i]
	}
	return strings.TrimSpace(s)
}
