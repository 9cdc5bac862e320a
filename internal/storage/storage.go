package storage

import (
	"context"
	"errors"
	"time"

	"github.com/GioMjds/commitly/internal/daykey"
	"github.com/GioMjds/commitly/internal/entry"
)

// Sentinel errors for storage operations.
var (
	ErrNotFound   = errors.New("entry not found")
	ErrConflict   = errors.New("concurrent write conflict")
	ErrStorage    = errors.New("storage error")
	ErrValidation = errors.New("validation error")
)

// Filter controls which ledger entries Query returns. OwnerID is required.
type Filter struct {
	OwnerID string
	DayKey  daykey.Key   // exact day (takes precedence over From/To)
	From    daykey.Key   // inclusive lower bound ("" = none)
	To      daykey.Key   // inclusive upper bound ("" = none)
	Origin  entry.Origin // "" = any
	Limit   int          // 0 = no limit
}

// Patch is a partial update. Nil fields are left unchanged.
//
// ExpectVersion, when non-zero, makes the update conditional: the store
// rejects it with ErrConflict if the entry's Version differs. Every
// successful update increments Version.
type Patch struct {
	DayKey         *daykey.Key
	Note           *string
	ExternalEvents []entry.ExternalEvent // replaces the list when non-nil
	Title          *string
	Effort         **entry.Effort
	Difficulty     *int
	Description    *string
	Mood           *string
	UpdatedAt      time.Time
	ExpectVersion  int
}

// Apply returns e with the patch applied. Version and UpdatedAt are bumped.
func (p Patch) Apply(e entry.Entry) entry.Entry {
	if p.DayKey != nil {
		e.DayKey = *p.DayKey
	}
	if p.Note != nil {
		e.Note = *p.Note
	}
	if p.ExternalEvents != nil {
		e.ExternalEvents = append([]entry.ExternalEvent(nil), p.ExternalEvents...)
	}
	if p.Title != nil {
		e.Title = *p.Title
	}
	if p.Effort != nil {
		e.Effort = *p.Effort
	}
	if p.Difficulty != nil {
		e.Difficulty = *p.Difficulty
	}
	if p.Description != nil {
		e.Description = *p.Description
	}
	if p.Mood != nil {
		e.Mood = *p.Mood
	}
	if !p.UpdatedAt.IsZero() {
		e.UpdatedAt = p.UpdatedAt
	} else {
		e.UpdatedAt = time.Now().UTC()
	}
	e.Version++
	return e
}

// LedgerStore persists ledger entries. All queries are owner scoped.
type LedgerStore interface {
	// Query returns matching entries ordered by day descending, then
	// CreatedAt descending.
	Query(ctx context.Context, f Filter) ([]entry.Entry, error)

	// Insert stores a new entry. The store assigns an ID when e.ID is
	// empty, sets Version to 1, and returns the ID.
	Insert(ctx context.Context, e entry.Entry) (string, error)

	// Get returns one entry by ID or ErrNotFound.
	Get(ctx context.Context, id string) (entry.Entry, error)

	// Update applies p to the entry and returns the result. Returns
	// ErrNotFound or, for a stale ExpectVersion, ErrConflict.
	Update(ctx context.Context, id string, p Patch) (entry.Entry, error)

	// Delete removes an entry. Returns ErrNotFound if it doesn't exist.
	Delete(ctx context.Context, id string) error

	Close() error
}

// SettingsStore holds small owner-scoped documents as opaque bytes.
type SettingsStore interface {
	// Get returns the stored value or (nil, nil) when the key is absent.
	Get(ctx context.Context, owner, key string) ([]byte, error)

	Set(ctx context.Context, owner, key string, value []byte) error

	// CompareAndSwap writes next only if the current value equals prev
	// (nil prev means "absent"). Returns ErrConflict otherwise.
	CompareAndSwap(ctx context.Context, owner, key string, prev, next []byte) error

	// Subscribe streams the names of keys changed for owner, including
	// changes made by other processes, until ctx is done.
	Subscribe(ctx context.Context, owner string) (<-chan string, error)
}

// Store is a backend providing both stores.
type Store interface {
	LedgerStore
	Settings() SettingsStore
}

// Matches reports whether e satisfies f. Backends that filter in memory
// share this so their semantics can't drift.
func (f Filter) Matches(e entry.Entry) bool {
	if e.OwnerID != f.OwnerID {
		return false
	}
	if f.DayKey != "" {
		if e.DayKey != f.DayKey {
			return false
		}
	} else {
		if f.From != "" && e.DayKey.Before(f.From) {
			return false
		}
		if f.To != "" && e.DayKey.After(f.To) {
			return false
		}
	}
	if f.Origin != "" && e.Origin != f.Origin {
		return false
	}
	return true
}
