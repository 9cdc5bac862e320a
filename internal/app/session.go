// Package app holds the explicit application state for one owner session:
// who is signed in, the services acting for them and the latest streak.
package app

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/GioMjds/commitly/internal/closure"
	"github.com/GioMjds/commitly/internal/daykey"
	"github.com/GioMjds/commitly/internal/identity"
	"github.com/GioMjds/commitly/internal/ledger"
	"github.com/GioMjds/commitly/internal/logging"
	"github.com/GioMjds/commitly/internal/reconcile"
	"github.com/GioMjds/commitly/internal/result"
	"github.com/GioMjds/commitly/internal/schedule"
	"github.com/GioMjds/commitly/internal/settings"
	"github.com/GioMjds/commitly/internal/streak"
)

// Deps are the collaborators a Session acts through.
type Deps struct {
	Identity identity.Provider
	Ledger   *ledger.Service
	Sync     *reconcile.Service
	Closure  *closure.Tracker
	Settings *settings.Service
	Days     daykey.Convention
	Log      logging.Logger

	// Schedule configures the daily sync started by Start.
	Schedule schedule.Options
}

// Session routes every mutation through the facade or reconciler and
// recomputes the streak after each one that succeeds.
type Session struct {
	deps Deps
	now  func() time.Time

	mu       sync.Mutex
	snapshot streak.Snapshot
	daily    *schedule.Daily
}

func NewSession(deps Deps) *Session {
	if deps.Log == nil {
		deps.Log = logging.Discard()
	}
	return &Session{deps: deps, now: time.Now}
}

// Start verifies the owner, computes the initial streak and starts the
// daily schedule.
func (s *Session) Start(ctx context.Context) error {
	id, err := s.deps.Identity.Current(ctx)
	if err != nil {
		return err
	}
	if _, err := s.Refresh(ctx); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.daily != nil {
		return nil
	}
	opts := s.deps.Schedule
	opts.Days = s.deps.Days
	daily, err := schedule.Start(ctx, id.OwnerID, s.deps.Settings, runnerFunc(s.SyncNow), s.deps.Log, opts)
	if err != nil {
		return fmt.Errorf("starting daily sync: %w", err)
	}
	s.daily = daily
	return nil
}

// End stops the schedule. The session can be started again.
func (s *Session) End() {
	s.mu.Lock()
	daily := s.daily
	s.daily = nil
	s.mu.Unlock()
	if daily != nil {
		daily.Stop()
	}
}

// Refresh recomputes the streak from the full ledger.
func (s *Session) Refresh(ctx context.Context) (streak.Snapshot, error) {
	entries, err := s.deps.Ledger.All(ctx)
	if err != nil {
		return streak.Snapshot{}, err
	}
	snap, err := streak.FromEntries(entries, s.deps.Days.Today(s.now()))
	if err != nil {
		return streak.Snapshot{}, err
	}
	s.mu.Lock()
	s.snapshot = snap
	s.mu.Unlock()
	return snap, nil
}

// Snapshot returns the last computed streak.
func (s *Session) Snapshot() streak.Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshot
}

// Streak recomputes and returns the streak as a result.
func (s *Session) Streak(ctx context.Context) result.Result {
	snap, err := s.Refresh(ctx)
	if err != nil {
		return result.FromError("computing streak", err)
	}
	return result.OK(fmt.Sprintf("Current streak %d, longest %d", snap.Current, snap.Longest), snap)
}

// Log creates a manual entry.
func (s *Session) Log(ctx context.Context, d ledger.Draft) result.Result {
	return s.after(ctx, s.deps.Ledger.Create(ctx, d))
}

// Edit changes a manual entry.
func (s *Session) Edit(ctx context.Context, id string, c ledger.Changes) result.Result {
	return s.after(ctx, s.deps.Ledger.Edit(ctx, id, c))
}

// Delete removes an entry.
func (s *Session) Delete(ctx context.Context, id string) result.Result {
	return s.after(ctx, s.deps.Ledger.Delete(ctx, id))
}

// Get returns one of the owner's entries.
func (s *Session) Get(ctx context.Context, id string) result.Result {
	return s.deps.Ledger.Get(ctx, id)
}

// List returns the owner's entries, newest day first.
func (s *Session) List(ctx context.Context, opts ledger.ListOptions) result.Result {
	return s.deps.Ledger.List(ctx, opts)
}

// DayStatus reports whether today is open or closed.
func (s *Session) DayStatus(ctx context.Context) result.Result {
	return s.deps.Closure.Status(ctx)
}

// SyncSettings returns the owner's sync preferences.
func (s *Session) SyncSettings(ctx context.Context) result.Result {
	id, err := s.deps.Identity.Current(ctx)
	if err != nil {
		return result.FromError("reading sync settings", err)
	}
	cfg, err := s.deps.Settings.Sync(ctx, id.OwnerID)
	if err != nil {
		return result.FromError("reading sync settings", err)
	}
	return result.OK("", cfg)
}

// UpdateSyncSettings applies fn to the owner's sync preferences. Setting
// TriggerSync asks a running schedule to sync on its next check.
func (s *Session) UpdateSyncSettings(ctx context.Context, fn func(*settings.SyncSettings)) result.Result {
	id, err := s.deps.Identity.Current(ctx)
	if err != nil {
		return result.FromError("updating sync settings", err)
	}
	cfg, err := s.deps.Settings.UpdateSync(ctx, id.OwnerID, fn)
	if err != nil {
		return result.FromError("updating sync settings", err)
	}
	return result.OK("Sync settings updated", cfg)
}

// SyncNow runs one sync pass.
func (s *Session) SyncNow(ctx context.Context) result.Result {
	return s.after(ctx, s.deps.Sync.Run(ctx))
}

// CloseDay calls it a day. The pre-close sync may have added entries.
func (s *Session) CloseDay(ctx context.Context) result.Result {
	return s.after(ctx, s.deps.Closure.Close(ctx))
}

func (s *Session) after(ctx context.Context, res result.Result) result.Result {
	if !res.Success {
		return res
	}
	if _, err := s.Refresh(ctx); err != nil {
		s.deps.Log.Warn(ctx, "recomputing streak failed", "error", err)
	}
	return res
}

type runnerFunc func(ctx context.Context) result.Result

func (f runnerFunc) Run(ctx context.Context) result.Result { return f(ctx) }
