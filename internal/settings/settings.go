// Package settings stores the typed per-owner documents (sync settings and
// the day-closure record) on top of a storage.SettingsStore.
package settings

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/GioMjds/commitly/internal/daykey"
	"github.com/GioMjds/commitly/internal/storage"
)

// Keys under which the documents are stored.
const (
	KeySync    = "sync"
	KeyClosure = "closure"
)

// DefaultDailySyncTime is used when no daily time has been chosen.
const DefaultDailySyncTime = "18:00"

const maxSwapAttempts = 3

// SyncSettings controls GitHub sync for one owner.
type SyncSettings struct {
	Enabled           bool       `json:"enabled"`
	AutoCreateEntries bool       `json:"auto_create_entries"`
	LastSyncAt        *time.Time `json:"last_sync_at,omitempty"`
	DailySyncEnabled  bool       `json:"daily_sync_enabled"`
	DailySyncTime     string     `json:"daily_sync_time"`
	LastDailySyncDay  daykey.Key `json:"last_daily_sync_day,omitempty"`

	// TriggerSync is a remote "sync now" request. Whoever acts on it
	// clears it.
	TriggerSync bool `json:"trigger_sync,omitempty"`
}

// DefaultSync is what an owner without stored settings gets.
func DefaultSync() SyncSettings {
	return SyncSettings{
		AutoCreateEntries: true,
		DailySyncTime:     DefaultDailySyncTime,
	}
}

// Validate checks the user-editable fields.
func (s SyncSettings) Validate() error {
	if _, _, err := ParseDailyTime(s.DailySyncTime); err != nil {
		return err
	}
	if s.LastDailySyncDay != "" {
		if err := s.LastDailySyncDay.Validate(); err != nil {
			return err
		}
	}
	return nil
}

// DayClosure records the last day the owner called it a day.
type DayClosure struct {
	LastClosedDay daykey.Key `json:"last_closed_day,omitempty"`
}

// Stamp is the raw stored form of a document as it was read. It is handed
// back on write so the store can detect intervening changes.
type Stamp []byte

// Service reads and writes typed settings.
type Service struct {
	store storage.SettingsStore
}

func New(store storage.SettingsStore) *Service {
	return &Service{store: store}
}

// Store returns the underlying settings store.
func (s *Service) Store() storage.SettingsStore {
	return s.store
}

// Sync returns the owner's sync settings, or DefaultSync when none exist.
func (s *Service) Sync(ctx context.Context, owner string) (SyncSettings, error) {
	cfg, _, err := s.readSync(ctx, owner)
	return cfg, err
}

func (s *Service) readSync(ctx context.Context, owner string) (SyncSettings, Stamp, error) {
	raw, err := s.store.Get(ctx, owner, KeySync)
	if err != nil {
		return SyncSettings{}, nil, err
	}
	cfg := DefaultSync()
	if raw == nil {
		return cfg, nil, nil
	}
	if err := json.Unmarshal(raw, &cfg); err != nil {
		return SyncSettings{}, nil, fmt.Errorf("%w: decoding sync settings: %v", storage.ErrStorage, err)
	}
	if cfg.DailySyncTime == "" {
		cfg.DailySyncTime = DefaultDailySyncTime
	}
	return cfg, Stamp(raw), nil
}

// SaveSync overwrites the owner's sync settings.
func (s *Service) SaveSync(ctx context.Context, owner string, cfg SyncSettings) error {
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("%w: %v", storage.ErrValidation, err)
	}
	data, err := json.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("%w: encoding sync settings: %v", storage.ErrStorage, err)
	}
	return s.store.Set(ctx, owner, KeySync, data)
}

// UpdateSync applies fn to the current settings and writes the result with
// compare-and-swap, re-reading and re-applying fn when another writer got
// there first.
func (s *Service) UpdateSync(ctx context.Context, owner string, fn func(*SyncSettings)) (SyncSettings, error) {
	for attempt := 0; ; attempt++ {
		cfg, stamp, err := s.readSync(ctx, owner)
		if err != nil {
			return SyncSettings{}, err
		}
		fn(&cfg)
		if err := cfg.Validate(); err != nil {
			return SyncSettings{}, fmt.Errorf("%w: %v", storage.ErrValidation, err)
		}
		data, err := json.Marshal(cfg)
		if err != nil {
			return SyncSettings{}, fmt.Errorf("%w: encoding sync settings: %v", storage.ErrStorage, err)
		}
		err = s.store.CompareAndSwap(ctx, owner, KeySync, stamp, data)
		if err == nil {
			return cfg, nil
		}
		if !errors.Is(err, storage.ErrConflict) || attempt+1 >= maxSwapAttempts {
			return SyncSettings{}, err
		}
	}
}

// Closure returns the owner's closure record and the stamp to pass to
// SwapClosure.
func (s *Service) Closure(ctx context.Context, owner string) (DayClosure, Stamp, error) {
	raw, err := s.store.Get(ctx, owner, KeyClosure)
	if err != nil {
		return DayClosure{}, nil, err
	}
	var rec DayClosure
	if raw == nil {
		return rec, nil, nil
	}
	if err := json.Unmarshal(raw, &rec); err != nil {
		return DayClosure{}, nil, fmt.Errorf("%w: decoding closure record: %v", storage.ErrStorage, err)
	}
	return rec, Stamp(raw), nil
}

// SwapClosure writes next only if the stored record is still the one read
// as prev. Returns storage.ErrConflict otherwise.
func (s *Service) SwapClosure(ctx context.Context, owner string, prev Stamp, next DayClosure) error {
	if err := next.LastClosedDay.Validate(); err != nil {
		return err
	}
	data, err := json.Marshal(next)
	if err != nil {
		return fmt.Errorf("%w: encoding closure record: %v", storage.ErrStorage, err)
	}
	return s.store.CompareAndSwap(ctx, owner, KeyClosure, prev, data)
}

// ParseDailyTime parses an "hh:mm" 24-hour time.
func ParseDailyTime(s string) (hour, minute int, err error) {
	t, err := time.Parse("15:04", s)
	if err != nil {
		return 0, 0, fmt.Errorf("invalid daily sync time %q: want hh:mm", s)
	}
	return t.Hour(), t.Minute(), nil
}

// DailyDue reports whether the daily sync should run at now (in loc):
// daily sync is on, the local clock has passed DailySyncTime, and it has
// not already run for today.
func (s SyncSettings) DailyDue(now time.Time, today daykey.Key, loc *time.Location) bool {
	if !s.DailySyncEnabled || s.LastDailySyncDay == today {
		return false
	}
	h, m, err := ParseDailyTime(s.DailySyncTime)
	if err != nil {
		return false
	}
	local := now.In(loc)
	return local.Hour() > h || (local.Hour() == h && local.Minute() >= m)
}
