// Package closure tracks whether the owner has "called it a day".
//
// A day is Closed when the stored LastClosedDay equals today's key and
// Open otherwise, so a new calendar day reopens without any timer.
package closure

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/GioMjds/commitly/internal/daykey"
	"github.com/GioMjds/commitly/internal/identity"
	"github.com/GioMjds/commitly/internal/logging"
	"github.com/GioMjds/commitly/internal/result"
	"github.com/GioMjds/commitly/internal/settings"
	"github.com/GioMjds/commitly/internal/storage"
)

// State of the current day.
type State string

const (
	Open   State = "open"
	Closed State = "closed"
)

// Syncer runs a sync pass before closing.
type Syncer interface {
	Available(ctx context.Context) (bool, error)
	Run(ctx context.Context) result.Result
}

// Status is the Data of a Status result.
type Status struct {
	State         State      `json:"state"`
	Today         daykey.Key `json:"today"`
	LastClosedDay daykey.Key `json:"last_closed_day,omitempty"`
}

// Closing is the Data of a successful Close.
type Closing struct {
	Day  daykey.Key     `json:"day"`
	Sync *result.Result `json:"sync,omitempty"`
}

type Tracker struct {
	identity identity.Provider
	settings *settings.Service
	syncer   Syncer
	days     daykey.Convention
	log      logging.Logger
	now      func() time.Time
}

// NewTracker returns a tracker. syncer may be nil when sync is not wired.
func NewTracker(id identity.Provider, st *settings.Service, syncer Syncer, days daykey.Convention, log logging.Logger) *Tracker {
	return &Tracker{identity: id, settings: st, syncer: syncer, days: days, log: log, now: time.Now}
}

// Status reports whether today is open or closed.
func (t *Tracker) Status(ctx context.Context) result.Result {
	id, err := t.identity.Current(ctx)
	if err != nil {
		return result.FromError("closure status", err)
	}
	rec, _, err := t.settings.Closure(ctx, id.OwnerID)
	if err != nil {
		return result.FromError("reading closure record", err)
	}
	today := t.days.Today(t.now())
	st := Status{State: Open, Today: today, LastClosedDay: rec.LastClosedDay}
	if rec.LastClosedDay == today {
		st.State = Closed
		return result.OK(fmt.Sprintf("%s is closed", today), st)
	}
	return result.OK(fmt.Sprintf("%s is open", today), st)
}

// Close marks today as closed. When sync is available it runs one pass
// first so the day's activity is in the ledger; a failed pass is reported
// but does not prevent closing.
func (t *Tracker) Close(ctx context.Context) result.Result {
	id, err := t.identity.Current(ctx)
	if err != nil {
		return result.FromError("closing day", err)
	}
	owner := id.OwnerID
	today := t.days.Today(t.now())

	rec, stamp, err := t.settings.Closure(ctx, owner)
	if err != nil {
		return result.FromError("reading closure record", err)
	}
	if rec.LastClosedDay == today {
		return alreadyClosed(today)
	}

	closing := Closing{Day: today}
	if t.syncer != nil {
		ok, err := t.syncer.Available(ctx)
		if err != nil {
			t.log.Warn(ctx, "checking sync availability failed", "owner", owner, "error", err)
		}
		if ok {
			res := t.syncer.Run(ctx)
			if !res.Success {
				t.log.Warn(ctx, "sync before closing failed", "owner", owner, "code", res.Code, "message", res.Message)
			}
			closing.Sync = &res
		}
	}

	err = t.settings.SwapClosure(ctx, owner, stamp, settings.DayClosure{LastClosedDay: today})
	if errors.Is(err, storage.ErrConflict) {
		// Someone wrote the record since we read it.
		rec, _, rerr := t.settings.Closure(ctx, owner)
		if rerr == nil && rec.LastClosedDay == today {
			return alreadyClosed(today)
		}
	}
	if err != nil {
		return result.FromError("closing day", err)
	}

	t.log.Info(ctx, "day closed", "owner", owner, "day", today)
	msg := fmt.Sprintf("Called it a day for %s", today)
	if closing.Sync != nil {
		msg += ". " + closing.Sync.Message
	}
	return result.OK(msg, closing)
}

func alreadyClosed(day daykey.Key) result.Result {
	return result.Info(result.CodeAlreadyClosed, fmt.Sprintf("Already called it a day for %s", day))
}
