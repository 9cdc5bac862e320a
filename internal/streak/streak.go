// Package streak derives continuity statistics from ledger days.
//
// Snapshots are always recomputed from the full entry set; nothing here is
// stored or updated incrementally.
package streak

import (
	"fmt"
	"sort"

	"github.com/GioMjds/commitly/internal/daykey"
	"github.com/GioMjds/commitly/internal/entry"
)

// Snapshot is the derived streak state for one owner.
type Snapshot struct {
	Current    int         `json:"current_streak"`
	Longest    int         `json:"longest_streak"`
	LastActive *daykey.Key `json:"last_active_day,omitempty"`
}

// Compute returns the snapshot for the given day keys as of today.
// Duplicates are counted once. A malformed key is rejected rather than
// skipped.
func Compute(keys []daykey.Key, today daykey.Key) (Snapshot, error) {
	if err := today.Validate(); err != nil {
		return Snapshot{}, fmt.Errorf("today: %w", err)
	}

	set := make(map[daykey.Key]struct{}, len(keys))
	for _, k := range keys {
		if err := k.Validate(); err != nil {
			return Snapshot{}, err
		}
		set[k] = struct{}{}
	}
	if len(set) == 0 {
		return Snapshot{}, nil
	}

	days := make([]daykey.Key, 0, len(set))
	for k := range set {
		days = append(days, k)
	}
	// Newest first.
	sort.Slice(days, func(i, j int) bool { return days[i].After(days[j]) })

	newest := days[0]
	return Snapshot{
		Current:    current(days, today),
		Longest:    longest(days),
		LastActive: &newest,
	}, nil
}

// FromEntries reduces entries to their day keys and computes the snapshot.
func FromEntries(entries []entry.Entry, today daykey.Key) (Snapshot, error) {
	keys := make([]daykey.Key, len(entries))
	for i, e := range entries {
		keys[i] = e.DayKey
	}
	return Compute(keys, today)
}

// current walks back from the newest day, which must be today or
// yesterday for the streak to still be alive.
func current(desc []daykey.Key, today daykey.Key) int {
	if desc[0] != today && desc[0] != today.Prev() {
		return 0
	}
	n := 1
	expect := desc[0].Prev()
	for _, k := range desc[1:] {
		if k != expect {
			break
		}
		n++
		expect = expect.Prev()
	}
	return n
}

func longest(desc []daykey.Key) int {
	best, run := 1, 1
	for i := 1; i < len(desc); i++ {
		if desc[i] == desc[i-1].Prev() {
			run++
		} else {
			run = 1
		}
		if run > best {
			best = run
		}
	}
	return best
}
