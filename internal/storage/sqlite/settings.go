package sqlite

import (
	"bytes"
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/GioMjds/commitly/internal/storage"
)

// DefaultPollInterval is how often Subscribe checks for settings changes
// written by other processes.
const DefaultPollInterval = time.Second

type settingsStore struct {
	db           *sql.DB
	pollInterval time.Duration
}

func newSettingsStore(db *sql.DB) *settingsStore {
	return &settingsStore{db: db, pollInterval: DefaultPollInterval}
}

// SetPollInterval changes how often settings subscribers poll the database.
func (s *Store) SetPollInterval(d time.Duration) {
	if d > 0 {
		s.settings.pollInterval = d
	}
}

func (s *settingsStore) Get(ctx context.Context, owner, key string) ([]byte, error) {
	var value []byte
	err := s.db.QueryRowContext(ctx,
		"SELECT value FROM settings WHERE owner_id = ? AND key = ?", owner, key,
	).Scan(&value)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%w: reading setting %s: %v", storage.ErrStorage, key, err)
	}
	return value, nil
}

func (s *settingsStore) Set(ctx context.Context, owner, key string, value []byte) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO settings (owner_id, key, value, rev) VALUES (?, ?, ?, 1)
		ON CONFLICT(owner_id, key) DO UPDATE SET value = excluded.value, rev = settings.rev + 1`,
		owner, key, value,
	)
	if err != nil {
		return fmt.Errorf("%w: writing setting %s: %v", storage.ErrStorage, key, err)
	}
	return nil
}

func (s *settingsStore) CompareAndSwap(ctx context.Context, owner, key string, prev, next []byte) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("%w: beginning transaction: %v", storage.ErrStorage, err)
	}
	defer tx.Rollback()

	var current []byte
	var rev int64
	err = tx.QueryRowContext(ctx,
		"SELECT value, rev FROM settings WHERE owner_id = ? AND key = ?", owner, key,
	).Scan(&current, &rev)
	switch {
	case err == sql.ErrNoRows:
		if prev != nil {
			return fmt.Errorf("%w: setting %s is absent", storage.ErrConflict, key)
		}
		if _, err := tx.ExecContext(ctx,
			"INSERT INTO settings (owner_id, key, value, rev) VALUES (?, ?, ?, 1)", owner, key, next,
		); err != nil {
			return fmt.Errorf("%w: inserting setting %s: %v", storage.ErrConflict, key, err)
		}
	case err != nil:
		return fmt.Errorf("%w: reading setting %s: %v", storage.ErrStorage, key, err)
	default:
		if prev == nil || !bytes.Equal(current, prev) {
			return fmt.Errorf("%w: setting %s changed", storage.ErrConflict, key)
		}
		res, err := tx.ExecContext(ctx,
			"UPDATE settings SET value = ?, rev = rev + 1 WHERE owner_id = ? AND key = ? AND rev = ?",
			next, owner, key, rev,
		)
		if err != nil {
			return fmt.Errorf("%w: updating setting %s: %v", storage.ErrStorage, key, err)
		}
		if n, _ := res.RowsAffected(); n == 0 {
			return fmt.Errorf("%w: setting %s changed", storage.ErrConflict, key)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("%w: committing: %v", storage.ErrStorage, err)
	}
	return nil
}

// Subscribe polls the revision counters of owner's settings and emits the
// key of every row whose revision moved since the previous poll.
func (s *settingsStore) Subscribe(ctx context.Context, owner string) (<-chan string, error) {
	seen, err := s.revisions(ctx, owner)
	if err != nil {
		return nil, err
	}

	out := make(chan string, 8)
	go func() {
		defer close(out)
		ticker := time.NewTicker(s.pollInterval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
			}

			revs, err := s.revisions(ctx, owner)
			if err != nil {
				continue
			}
			for key, rev := range revs {
				if seen[key] == rev {
					continue
				}
				select {
				case out <- key:
				case <-ctx.Done():
					return
				}
			}
			seen = revs
		}
	}()
	return out, nil
}

func (s *settingsStore) revisions(ctx context.Context, owner string) (map[string]int64, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT key, rev FROM settings WHERE owner_id = ?", owner)
	if err != nil {
		return nil, fmt.Errorf("%w: listing settings: %v", storage.ErrStorage, err)
	}
	defer rows.Close()

	revs := make(map[string]int64)
	for rows.Next() {
		var key string
		var rev int64
		if err := rows.Scan(&key, &rev); err != nil {
			return nil, fmt.Errorf("%w: scanning setting: %v", storage.ErrStorage, err)
		}
		revs[key] = rev
	}
	return revs, rows.Err()
}
