package markdown

import (
	"bytes"
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"syscall"
	"time"

	"github.com/adrg/frontmatter"
	"github.com/GioMjds/commitly/internal/daykey"
	"github.com/GioMjds/commitly/internal/entry"
	"github.com/GioMjds/commitly/internal/storage"
	"gopkg.in/yaml.v3"
)

// Store implements storage.Store using Markdown files with YAML front-matter.
// Entries live under entries/YYYY/MM/DD/<id>.md keyed by their day key.
type Store struct {
	baseDir     string // e.g. ~/.commitly/entries/
	settingsDir string // e.g. ~/.commitly/settings/
	lockPath    string

	mu       sync.Mutex
	settings *settingsStore
}

// New creates a new Markdown file storage backend.
func New(dataDir string) (*Store, error) {
	entriesDir := filepath.Join(dataDir, "entries")
	if err := os.MkdirAll(entriesDir, 0755); err != nil {
		return nil, fmt.Errorf("%w: creating entries directory: %v", storage.ErrStorage, err)
	}
	settingsDir := filepath.Join(dataDir, "settings")
	if err := os.MkdirAll(settingsDir, 0755); err != nil {
		return nil, fmt.Errorf("%w: creating settings directory: %v", storage.ErrStorage, err)
	}
	s := &Store{
		baseDir:     entriesDir,
		settingsDir: settingsDir,
		lockPath:    filepath.Join(dataDir, ".lock"),
	}
	s.settings = &settingsStore{store: s}
	return s, nil
}

// Close is a no-op for the Markdown backend.
func (s *Store) Close() error {
	return nil
}

// Settings returns the file-backed settings store.
func (s *Store) Settings() storage.SettingsStore {
	return s.settings
}

// lock serializes writers within this process and, through flock on a
// shared lock file, across processes using the same data directory.
func (s *Store) lock() (func(), error) {
	s.mu.Lock()
	f, err := os.OpenFile(s.lockPath, os.O_CREATE|os.O_RDWR, 0644)
	if err != nil {
		s.mu.Unlock()
		return nil, fmt.Errorf("%w: opening lock file: %v", storage.ErrStorage, err)
	}
	if err := syscall.Flock(int(f.Fd()), syscall.LOCK_EX); err != nil {
		f.Close()
		s.mu.Unlock()
		return nil, fmt.Errorf("%w: acquiring lock: %v", storage.ErrStorage, err)
	}
	return func() {
		syscall.Flock(int(f.Fd()), syscall.LOCK_UN)
		f.Close()
		s.mu.Unlock()
	}, nil
}

func (s *Store) entryPath(id string, day daykey.Key) string {
	d := string(day)
	return filepath.Join(s.baseDir, d[0:4], d[5:7], d[8:10], id+".md")
}

type fmEffort struct {
	Amount float64 `yaml:"amount"`
	Unit   string  `yaml:"unit"`
}

type fmEvent struct {
	ExternalID string `yaml:"external_id"`
	Summary    string `yaml:"summary"`
	Container  string `yaml:"container,omitempty"`
	Permalink  string `yaml:"permalink,omitempty"`
	OccurredAt string `yaml:"occurred_at"`
}

type frontMatter struct {
	ID          string    `yaml:"id"`
	Owner       string    `yaml:"owner"`
	Day         string    `yaml:"day"`
	Origin      string    `yaml:"origin"`
	Version     int       `yaml:"version"`
	CreatedAt   string    `yaml:"created_at"`
	UpdatedAt   string    `yaml:"updated_at"`
	Title       string    `yaml:"title,omitempty"`
	Effort      *fmEffort `yaml:"effort,omitempty"`
	Difficulty  int       `yaml:"difficulty,omitempty"`
	Mood        string    `yaml:"mood,omitempty"`
	Description string    `yaml:"description,omitempty"`
	Events      []fmEvent `yaml:"events,omitempty"`
}

func marshal(e entry.Entry) ([]byte, error) {
	fm := frontMatter{
		ID:          e.ID,
		Owner:       e.OwnerID,
		Day:         string(e.DayKey),
		Origin:      string(e.Origin),
		Version:     e.Version,
		CreatedAt:   e.CreatedAt.UTC().Format(time.RFC3339Nano),
		UpdatedAt:   e.UpdatedAt.UTC().Format(time.RFC3339Nano),
		Title:       e.Title,
		Difficulty:  e.Difficulty,
		Mood:        e.Mood,
		Description: e.Description,
	}
	if e.Effort != nil {
		fm.Effort = &fmEffort{Amount: e.Effort.Amount, Unit: e.Effort.Unit}
	}
	for _, ev := range e.ExternalEvents {
		fm.Events = append(fm.Events, fmEvent{
			ExternalID: ev.ExternalID,
			Summary:    ev.Summary,
			Container:  ev.Container,
			Permalink:  ev.Permalink,
			OccurredAt: ev.OccurredAt.UTC().Format(time.RFC3339Nano),
		})
	}

	head, err := yaml.Marshal(fm)
	if err != nil {
		return nil, fmt.Errorf("%w: encoding front-matter: %v", storage.ErrStorage, err)
	}

	var b bytes.Buffer
	b.WriteString("---\n")
	b.Write(head)
	b.WriteString("---\n\n")
	b.WriteString(e.Note)
	b.WriteString("\n")
	return b.Bytes(), nil
}

func unmarshal(data []byte) (entry.Entry, error) {
	var fm frontMatter
	content, err := frontmatter.Parse(bytes.NewReader(data), &fm)
	if err != nil {
		return entry.Entry{}, fmt.Errorf("%w: parsing front-matter: %v", storage.ErrStorage, err)
	}

	createdAt, err := time.Parse(time.RFC3339Nano, fm.CreatedAt)
	if err != nil {
		return entry.Entry{}, fmt.Errorf("%w: parsing created_at: %v", storage.ErrStorage, err)
	}
	updatedAt, err := time.Parse(time.RFC3339Nano, fm.UpdatedAt)
	if err != nil {
		return entry.Entry{}, fmt.Errorf("%w: parsing updated_at: %v", storage.ErrStorage, err)
	}

	e := entry.Entry{
		ID:          fm.ID,
		OwnerID:     fm.Owner,
		DayKey:      daykey.Key(fm.Day),
		Note:        strings.TrimSpace(string(content)),
		Origin:      entry.Origin(fm.Origin),
		CreatedAt:   createdAt,
		UpdatedAt:   updatedAt,
		Version:     fm.Version,
		Title:       fm.Title,
		Difficulty:  fm.Difficulty,
		Mood:        fm.Mood,
		Description: fm.Description,
	}
	if fm.Effort != nil {
		e.Effort = &entry.Effort{Amount: fm.Effort.Amount, Unit: fm.Effort.Unit}
	}
	for _, ev := range fm.Events {
		occurred, err := time.Parse(time.RFC3339Nano, ev.OccurredAt)
		if err != nil {
			return entry.Entry{}, fmt.Errorf("%w: parsing occurred_at: %v", storage.ErrStorage, err)
		}
		e.ExternalEvents = append(e.ExternalEvents, entry.ExternalEvent{
			ExternalID: ev.ExternalID,
			Summary:    ev.Summary,
			Container:  ev.Container,
			Permalink:  ev.Permalink,
			OccurredAt: occurred,
		})
	}
	return e, nil
}

// atomicWrite writes data to a temp file then renames it to the target path.
func atomicWrite(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("%w: creating directory: %v", storage.ErrStorage, err)
	}

	tmp, err := os.CreateTemp(dir, ".tmp-*")
	if err != nil {
		return fmt.Errorf("%w: creating temp file: %v", storage.ErrStorage, err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("%w: writing temp file: %v", storage.ErrStorage, err)
	}

	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("%w: closing temp file: %v", storage.ErrStorage, err)
	}

	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("%w: renaming file: %v", storage.ErrStorage, err)
	}

	return nil
}

// Insert persists a new entry as a Markdown file.
func (s *Store) Insert(ctx context.Context, e entry.Entry) (string, error) {
	if e.ID == "" {
		id, err := entry.NewID()
		if err != nil {
			return "", fmt.Errorf("%w: generating ID: %v", storage.ErrStorage, err)
		}
		e.ID = id
	}
	if err := e.Validate(); err != nil {
		return "", fmt.Errorf("%w: %v", storage.ErrValidation, err)
	}
	e.Version = 1

	unlock, err := s.lock()
	if err != nil {
		return "", err
	}
	defer unlock()

	if _, err := s.findEntryPath(e.ID); err == nil {
		return "", fmt.Errorf("%w: entry %s already exists", storage.ErrConflict, e.ID)
	}
	if err := s.checkEventsUnclaimed(e); err != nil {
		return "", err
	}

	data, err := marshal(e)
	if err != nil {
		return "", err
	}
	if err := atomicWrite(s.entryPath(e.ID, e.DayKey), data); err != nil {
		return "", err
	}
	return e.ID, nil
}

// Get retrieves an entry by ID by scanning the directory tree.
func (s *Store) Get(ctx context.Context, id string) (entry.Entry, error) {
	path, err := s.findEntryPath(id)
	if err != nil {
		return entry.Entry{}, err
	}
	return readEntry(path)
}

func readEntry(path string) (entry.Entry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return entry.Entry{}, fmt.Errorf("%w: reading file: %v", storage.ErrStorage, err)
	}
	return unmarshal(data)
}

// findEntryPath locates the file for a given entry ID.
func (s *Store) findEntryPath(id string) (string, error) {
	var found string
	err := filepath.WalkDir(s.baseDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil // skip errors
		}
		if d.IsDir() {
			return nil
		}
		if d.Name() == id+".md" {
			found = path
			return filepath.SkipAll
		}
		return nil
	})
	if err != nil {
		return "", fmt.Errorf("%w: scanning entries: %v", storage.ErrStorage, err)
	}
	if found == "" {
		return "", storage.ErrNotFound
	}
	return found, nil
}

// walk calls fn for every readable entry file. Malformed files are skipped.
func (s *Store) walk(fn func(e entry.Entry)) error {
	err := filepath.WalkDir(s.baseDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if d.IsDir() || !strings.HasSuffix(d.Name(), ".md") || strings.HasPrefix(d.Name(), ".") {
			return nil
		}
		e, err := readEntry(path)
		if err != nil {
			return nil
		}
		fn(e)
		return nil
	})
	if err != nil {
		return fmt.Errorf("%w: scanning entries: %v", storage.ErrStorage, err)
	}
	return nil
}

// Query returns entries matching the filter, newest day first.
func (s *Store) Query(ctx context.Context, f storage.Filter) ([]entry.Entry, error) {
	if f.OwnerID == "" {
		return nil, fmt.Errorf("%w: owner is required", storage.ErrValidation)
	}

	entries := []entry.Entry{}
	if err := s.walk(func(e entry.Entry) {
		if f.Matches(e) {
			entries = append(entries, e)
		}
	}); err != nil {
		return nil, err
	}

	sort.Slice(entries, func(i, j int) bool {
		if entries[i].DayKey != entries[j].DayKey {
			return entries[i].DayKey.After(entries[j].DayKey)
		}
		return entries[i].CreatedAt.After(entries[j].CreatedAt)
	})

	if f.Limit > 0 && f.Limit < len(entries) {
		entries = entries[:f.Limit]
	}
	return entries, nil
}

// Update applies a patch, honoring ExpectVersion. A changed day key moves
// the file to its new directory.
func (s *Store) Update(ctx context.Context, id string, p storage.Patch) (entry.Entry, error) {
	unlock, err := s.lock()
	if err != nil {
		return entry.Entry{}, err
	}
	defer unlock()

	path, err := s.findEntryPath(id)
	if err != nil {
		return entry.Entry{}, err
	}
	current, err := readEntry(path)
	if err != nil {
		return entry.Entry{}, err
	}
	if p.ExpectVersion != 0 && current.Version != p.ExpectVersion {
		return entry.Entry{}, fmt.Errorf("%w: entry %s is at version %d, expected %d",
			storage.ErrConflict, id, current.Version, p.ExpectVersion)
	}

	next := p.Apply(current)
	if err := next.Validate(); err != nil {
		return entry.Entry{}, fmt.Errorf("%w: %v", storage.ErrValidation, err)
	}
	if p.ExternalEvents != nil {
		if err := s.checkEventsUnclaimed(next); err != nil {
			return entry.Entry{}, err
		}
	}

	data, err := marshal(next)
	if err != nil {
		return entry.Entry{}, err
	}
	newPath := s.entryPath(id, next.DayKey)
	if err := atomicWrite(newPath, data); err != nil {
		return entry.Entry{}, err
	}
	if newPath != path {
		if err := os.Remove(path); err != nil {
			return entry.Entry{}, fmt.Errorf("%w: removing old file: %v", storage.ErrStorage, err)
		}
	}
	return next, nil
}

// Delete removes an entry file permanently.
func (s *Store) Delete(ctx context.Context, id string) error {
	unlock, err := s.lock()
	if err != nil {
		return err
	}
	defer unlock()

	path, err := s.findEntryPath(id)
	if err != nil {
		return err
	}
	if err := os.Remove(path); err != nil {
		return fmt.Errorf("%w: deleting file: %v", storage.ErrStorage, err)
	}
	return nil
}

// checkEventsUnclaimed rejects e if any of its events already belongs to
// a different entry of the same owner. Callers hold the lock.
func (s *Store) checkEventsUnclaimed(e entry.Entry) error {
	if len(e.ExternalEvents) == 0 {
		return nil
	}
	want := make(map[string]bool, len(e.ExternalEvents))
	for _, ev := range e.ExternalEvents {
		want[ev.ExternalID] = true
	}

	var clash error
	err := s.walk(func(other entry.Entry) {
		if clash != nil || other.ID == e.ID || other.OwnerID != e.OwnerID {
			return
		}
		for _, ev := range other.ExternalEvents {
			if want[ev.ExternalID] {
				clash = fmt.Errorf("%w: event %s already belongs to entry %s",
					storage.ErrValidation, ev.ExternalID, other.ID)
				return
			}
		}
	})
	if err != nil {
		return err
	}
	return clash
}
