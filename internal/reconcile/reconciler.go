// Package reconcile merges fetched GitHub events into the ledger.
//
// A merge pass never deletes and never moves an event that is already in
// the ledger: the first placement of an external ID wins. Each day group
// is written on its own, so a failed group leaves the others committed
// and the next pass picks it up again.
package reconcile

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/GioMjds/commitly/internal/daykey"
	"github.com/GioMjds/commitly/internal/entry"
	"github.com/GioMjds/commitly/internal/logging"
	"github.com/GioMjds/commitly/internal/storage"
)

// Action describes what happened to one day group.
type Action string

const (
	ActionCreated     Action = "created"
	ActionUpdated     Action = "updated"
	ActionWouldCreate Action = "would_create"
	ActionWouldUpdate Action = "would_update"
	ActionUnchanged   Action = "unchanged"
	ActionFailed      Action = "failed"
)

// GroupResult is the outcome for one day.
type GroupResult struct {
	Day     daykey.Key `json:"day"`
	EntryID string     `json:"entry_id,omitempty"`
	Events  int        `json:"events"`
	Action  Action     `json:"action"`
	Error   string     `json:"error,omitempty"`
}

// MergeReport summarizes a merge pass. Counts are for display only.
type MergeReport struct {
	Created int           `json:"created"`
	Updated int           `json:"updated"`
	Skipped int           `json:"skipped"`
	Failed  int           `json:"failed"`
	Groups  []GroupResult `json:"groups"`
}

// Touched is the number of entries created or updated.
func (r MergeReport) Touched() int { return r.Created + r.Updated }

// Reconciler applies event batches to a ledger store.
type Reconciler struct {
	store storage.LedgerStore
	days  daykey.Convention
	log   logging.Logger
	now   func() time.Time
}

func NewReconciler(store storage.LedgerStore, days daykey.Convention, log logging.Logger) *Reconciler {
	return &Reconciler{store: store, days: days, log: log, now: time.Now}
}

// Merge writes events into owner's ledger.
//
// The only error returned is a failure to read the ledger up front; write
// failures on a day group are logged, reported in the MergeReport, and
// do not stop the remaining groups.
func (r *Reconciler) Merge(ctx context.Context, owner string, events []entry.ExternalEvent) (MergeReport, error) {
	return r.merge(ctx, owner, events, false)
}

// Plan computes the report Merge would produce without writing anything.
func (r *Reconciler) Plan(ctx context.Context, owner string, events []entry.ExternalEvent) (MergeReport, error) {
	return r.merge(ctx, owner, events, true)
}

func (r *Reconciler) merge(ctx context.Context, owner string, events []entry.ExternalEvent, dryRun bool) (MergeReport, error) {
	var report MergeReport

	// 1. every external ID already anywhere in the ledger
	known, err := r.knownIDs(ctx, owner)
	if err != nil {
		return report, err
	}

	// 2. drop known IDs and repeats within the batch
	fresh := make([]entry.ExternalEvent, 0, len(events))
	for _, ev := range events {
		if ev.ExternalID == "" || known[ev.ExternalID] {
			report.Skipped++
			continue
		}
		known[ev.ExternalID] = true
		fresh = append(fresh, ev)
	}

	// 3. group by day, preserving arrival order inside a group
	groups := make(map[daykey.Key][]entry.ExternalEvent)
	for _, ev := range fresh {
		day := r.days.Key(ev.OccurredAt)
		groups[day] = append(groups[day], ev)
	}
	days := make([]daykey.Key, 0, len(groups))
	for d := range groups {
		days = append(days, d)
	}
	sort.Slice(days, func(i, j int) bool { return days[i] < days[j] })

	// 4. one read-then-write per group, sequentially
	for _, day := range days {
		res, err := r.applyGroup(ctx, owner, day, groups[day], dryRun)
		if err != nil {
			r.log.Warn(ctx, "merging day group failed", "owner", owner, "day", day, "events", len(groups[day]), "error", err)
			res = GroupResult{Day: day, Events: len(groups[day]), Action: ActionFailed, Error: err.Error()}
			report.Failed++
		}
		switch res.Action {
		case ActionCreated, ActionWouldCreate:
			report.Created++
		case ActionUpdated, ActionWouldUpdate:
			report.Updated++
		}
		report.Groups = append(report.Groups, res)
	}
	return report, nil
}

func (r *Reconciler) knownIDs(ctx context.Context, owner string) (map[string]bool, error) {
	entries, err := r.store.Query(ctx, storage.Filter{OwnerID: owner})
	if err != nil {
		return nil, fmt.Errorf("reading ledger: %w", err)
	}
	known := make(map[string]bool)
	for _, e := range entries {
		for _, ev := range e.ExternalEvents {
			known[ev.ExternalID] = true
		}
	}
	return known, nil
}

func (r *Reconciler) applyGroup(ctx context.Context, owner string, day daykey.Key, events []entry.ExternalEvent, dryRun bool) (GroupResult, error) {
	res := GroupResult{Day: day, Events: len(events)}

	existing, err := r.githubEntry(ctx, owner, day)
	if err != nil {
		return res, err
	}

	if existing == nil {
		if dryRun {
			res.Action = ActionWouldCreate
			return res, nil
		}
		now := r.now().UTC()
		id, err := r.store.Insert(ctx, entry.Entry{
			OwnerID:        owner,
			DayKey:         day,
			Note:           entry.JoinNote(events),
			Origin:         entry.OriginGitHub,
			ExternalEvents: events,
			CreatedAt:      now,
			UpdatedAt:      now,
		})
		if err != nil {
			return res, err
		}
		res.EntryID = id
		res.Action = ActionCreated
		return res, nil
	}

	res.EntryID = existing.ID
	if dryRun {
		res.Action = ActionWouldUpdate
		return res, nil
	}

	err = r.appendTo(ctx, *existing, events)
	if errors.Is(err, storage.ErrConflict) {
		// Someone else wrote the entry between our read and write.
		r.log.Debug(ctx, "entry changed during merge, retrying", "entry", existing.ID, "day", day)
		existing, err = r.githubEntry(ctx, owner, day)
		if err != nil {
			return res, err
		}
		if existing == nil {
			return res, fmt.Errorf("%w: entry for %s disappeared during merge", storage.ErrConflict, day)
		}
		err = r.appendTo(ctx, *existing, events)
	}
	if errors.Is(err, errNothingToAppend) {
		res.Action = ActionUnchanged
		return res, nil
	}
	if err != nil {
		return res, err
	}
	res.Action = ActionUpdated
	return res, nil
}

var errNothingToAppend = errors.New("nothing to append")

func (r *Reconciler) appendTo(ctx context.Context, e entry.Entry, events []entry.ExternalEvent) error {
	if e.AppendEvents(events) == 0 {
		return errNothingToAppend
	}
	note := entry.JoinNote(e.ExternalEvents)
	_, err := r.store.Update(ctx, e.ID, storage.Patch{
		ExternalEvents: e.ExternalEvents,
		Note:           &note,
		UpdatedAt:      r.now().UTC(),
		ExpectVersion:  e.Version,
	})
	return err
}

// githubEntry returns the day's sync-created entry, or nil. If more than
// one exists the oldest is used.
func (r *Reconciler) githubEntry(ctx context.Context, owner string, day daykey.Key) (*entry.Entry, error) {
	entries, err := r.store.Query(ctx, storage.Filter{OwnerID: owner, DayKey: day, Origin: entry.OriginGitHub})
	if err != nil {
		return nil, err
	}
	if len(entries) == 0 {
		return nil, nil
	}
	if len(entries) > 1 {
		r.log.Warn(ctx, "multiple github entries for one day", "owner", owner, "day", day, "count", len(entries))
	}
	e := entries[len(entries)-1]
	return &e, nil
}
