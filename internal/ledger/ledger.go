// Package ledger is the thin facade over the ledger store used by the CLI
// and MCP surfaces. Each call checks the owner, performs one store
// operation and resolves to a result.Result.
//
// Streaks are not computed here; callers recompute after every successful
// mutation.
package ledger

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/GioMjds/commitly/internal/daykey"
	"github.com/GioMjds/commitly/internal/entry"
	"github.com/GioMjds/commitly/internal/identity"
	"github.com/GioMjds/commitly/internal/result"
	"github.com/GioMjds/commitly/internal/storage"
)

// Draft is a new manual entry. An empty Day means today.
type Draft struct {
	Day         daykey.Key
	Note        string
	Title       string
	Effort      *entry.Effort
	Difficulty  int
	Description string
	Mood        string
}

// Changes edits a manual entry. Nil fields are left alone.
type Changes struct {
	Day         *daykey.Key
	Note        *string
	Title       *string
	Effort      **entry.Effort
	Difficulty  *int
	Description *string
	Mood        *string
}

func (c Changes) empty() bool {
	return c.Day == nil && c.Note == nil && c.Title == nil && c.Effort == nil &&
		c.Difficulty == nil && c.Description == nil && c.Mood == nil
}

// ListOptions narrows List. Day takes precedence over From/To.
type ListOptions struct {
	Day    daykey.Key
	From   daykey.Key
	To     daykey.Key
	Origin entry.Origin
	Limit  int
}

type Service struct {
	store    storage.LedgerStore
	identity identity.Provider
	days     daykey.Convention
	now      func() time.Time
}

func New(store storage.LedgerStore, id identity.Provider, days daykey.Convention) *Service {
	return &Service{store: store, identity: id, days: days, now: time.Now}
}

// Today is the current day under the service's convention.
func (s *Service) Today() daykey.Key {
	return s.days.Today(s.now())
}

// Create logs a manual entry.
func (s *Service) Create(ctx context.Context, d Draft) result.Result {
	id, err := s.identity.Current(ctx)
	if err != nil {
		return result.FromError("creating entry", err)
	}

	day := d.Day
	if day == "" {
		day = s.Today()
	}
	if err := day.Validate(); err != nil {
		return result.FromError("creating entry", err)
	}
	note := strings.TrimSpace(d.Note)
	if err := entry.ValidateManual(note, d.Effort, d.Difficulty, d.Mood); err != nil {
		return result.Fail(result.CodeInvalid, err.Error())
	}

	now := s.now().UTC()
	e := entry.Entry{
		OwnerID:     id.OwnerID,
		DayKey:      day,
		Note:        note,
		Origin:      entry.OriginManual,
		CreatedAt:   now,
		UpdatedAt:   now,
		Title:       strings.TrimSpace(d.Title),
		Effort:      d.Effort,
		Difficulty:  d.Difficulty,
		Description: strings.TrimSpace(d.Description),
		Mood:        d.Mood,
	}
	entryID, err := s.store.Insert(ctx, e)
	if err != nil {
		return result.FromError("creating entry", err)
	}
	e.ID = entryID
	e.Version = 1
	return result.OK(fmt.Sprintf("Logged entry %s for %s", entryID, day), e)
}

// Edit changes a manual entry. Synced entries are owned by sync and are
// rejected.
func (s *Service) Edit(ctx context.Context, entryID string, c Changes) result.Result {
	current, res, ok := s.owned(ctx, entryID, "editing entry")
	if !ok {
		return res
	}
	if current.Origin != entry.OriginManual {
		return result.Fail(result.CodeInvalid, fmt.Sprintf("entry %s was created by GitHub sync and can't be edited", entryID))
	}
	if c.empty() {
		return result.Fail(result.CodeInvalid, "no changes given")
	}
	if c.Day != nil {
		if err := c.Day.Validate(); err != nil {
			return result.FromError("editing entry", err)
		}
	}
	if c.Note != nil {
		trimmed := strings.TrimSpace(*c.Note)
		c.Note = &trimmed
	}

	updated, err := s.store.Update(ctx, entryID, storage.Patch{
		DayKey:        c.Day,
		Note:          c.Note,
		Title:         c.Title,
		Effort:        c.Effort,
		Difficulty:    c.Difficulty,
		Description:   c.Description,
		Mood:          c.Mood,
		UpdatedAt:     s.now().UTC(),
		ExpectVersion: current.Version,
	})
	if err != nil {
		return result.FromError("editing entry", err)
	}
	return result.OK(fmt.Sprintf("Updated entry %s", entryID), updated)
}

// Delete removes an entry of any origin. Events of a deleted synced entry
// become eligible for the next sync again.
func (s *Service) Delete(ctx context.Context, entryID string) result.Result {
	current, res, ok := s.owned(ctx, entryID, "deleting entry")
	if !ok {
		return res
	}
	if err := s.store.Delete(ctx, entryID); err != nil {
		return result.FromError("deleting entry", err)
	}
	return result.OK(fmt.Sprintf("Deleted entry %s", entryID), current)
}

// Get returns one entry.
func (s *Service) Get(ctx context.Context, entryID string) result.Result {
	e, res, ok := s.owned(ctx, entryID, "reading entry")
	if !ok {
		return res
	}
	return result.OK("", e)
}

// List returns the owner's entries, newest day first. Data is []entry.Entry.
func (s *Service) List(ctx context.Context, opts ListOptions) result.Result {
	id, err := s.identity.Current(ctx)
	if err != nil {
		return result.FromError("listing entries", err)
	}
	for _, k := range []daykey.Key{opts.Day, opts.From, opts.To} {
		if k == "" {
			continue
		}
		if err := k.Validate(); err != nil {
			return result.FromError("listing entries", err)
		}
	}
	entries, err := s.store.Query(ctx, storage.Filter{
		OwnerID: id.OwnerID,
		DayKey:  opts.Day,
		From:    opts.From,
		To:      opts.To,
		Origin:  opts.Origin,
		Limit:   opts.Limit,
	})
	if err != nil {
		return result.FromError("listing entries", err)
	}
	return result.OK(fmt.Sprintf("%d %s", len(entries), plural(len(entries))), entries)
}

// All returns every entry for the current owner, for streak computation.
func (s *Service) All(ctx context.Context) ([]entry.Entry, error) {
	id, err := s.identity.Current(ctx)
	if err != nil {
		return nil, err
	}
	return s.store.Query(ctx, storage.Filter{OwnerID: id.OwnerID})
}

// owned loads an entry and hides entries of other owners as not found.
func (s *Service) owned(ctx context.Context, entryID, action string) (entry.Entry, result.Result, bool) {
	id, err := s.identity.Current(ctx)
	if err != nil {
		return entry.Entry{}, result.FromError(action, err), false
	}
	if err := entry.ValidateID(entryID); err != nil {
		return entry.Entry{}, result.Fail(result.CodeInvalid, err.Error()), false
	}
	e, err := s.store.Get(ctx, entryID)
	if err != nil {
		return entry.Entry{}, result.FromError(action, err), false
	}
	if e.OwnerID != id.OwnerID {
		return entry.Entry{}, result.FromError(action, storage.ErrNotFound), false
	}
	return e, result.Result{}, true
}

func plural(n int) string {
	if n == 1 {
		return "entry"
	}
	return "entries"
}
