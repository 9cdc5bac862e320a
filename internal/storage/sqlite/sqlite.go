package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/GioMjds/commitly/internal/daykey"
	"github.com/GioMjds/commitly/internal/entry"
	"github.com/GioMjds/commitly/internal/storage"
	_ "github.com/tursodatabase/go-libsql"
)

// timeLayout has a fixed-width fraction so stored timestamps sort lexically.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

// Store implements storage.Store using SQLite via Turso/libSQL.
type Store struct {
	db       *sql.DB
	settings *settingsStore
}

// New creates a new SQLite storage backend under dataDir.
func New(dataDir string) (*Store, error) {
	if err := os.MkdirAll(dataDir, 0755); err != nil {
		return nil, fmt.Errorf("%w: creating data directory: %v", storage.ErrStorage, err)
	}

	dbPath := filepath.Join(dataDir, "commitly.db")
	db, err := sql.Open("libsql", "file:"+dbPath)
	if err != nil {
		return nil, fmt.Errorf("%w: opening database: %v", storage.ErrStorage, err)
	}

	// Enable WAL mode
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("%w: enabling WAL mode: %v", storage.ErrStorage, err)
	}

	if err := createSchema(db); err != nil {
		db.Close()
		return nil, err
	}

	return &Store{db: db, settings: newSettingsStore(db)}, nil
}

func createSchema(db *sql.DB) error {
	schema := `
		CREATE TABLE IF NOT EXISTS entries (
			id            TEXT PRIMARY KEY,
			owner_id      TEXT NOT NULL,
			day_key       TEXT NOT NULL,
			note          TEXT NOT NULL,
			origin        TEXT NOT NULL CHECK(origin IN ('manual', 'github')),
			title         TEXT NOT NULL DEFAULT '',
			effort_amount REAL,
			effort_unit   TEXT NOT NULL DEFAULT '',
			difficulty    INTEGER NOT NULL DEFAULT 0,
			description   TEXT NOT NULL DEFAULT '',
			mood          TEXT NOT NULL DEFAULT '',
			created_at    TEXT NOT NULL,
			updated_at    TEXT NOT NULL,
			version       INTEGER NOT NULL DEFAULT 1,
			CHECK(created_at <= updated_at)
		);
		CREATE INDEX IF NOT EXISTS idx_entries_owner_day ON entries(owner_id, day_key DESC);

		CREATE TABLE IF NOT EXISTS external_events (
			owner_id    TEXT NOT NULL,
			external_id TEXT NOT NULL,
			entry_id    TEXT NOT NULL REFERENCES entries(id),
			position    INTEGER NOT NULL,
			summary     TEXT NOT NULL,
			container   TEXT NOT NULL DEFAULT '',
			permalink   TEXT NOT NULL DEFAULT '',
			occurred_at TEXT NOT NULL,
			PRIMARY KEY (owner_id, external_id)
		);
		CREATE INDEX IF NOT EXISTS idx_external_events_entry ON external_events(entry_id, position);

		CREATE TABLE IF NOT EXISTS settings (
			owner_id TEXT NOT NULL,
			key      TEXT NOT NULL,
			value    BLOB NOT NULL,
			rev      INTEGER NOT NULL DEFAULT 1,
			PRIMARY KEY (owner_id, key)
		);
	`
	if _, err := db.Exec(schema); err != nil {
		return fmt.Errorf("%w: creating schema: %v", storage.ErrStorage, err)
	}
	return nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Settings returns the settings store sharing this database.
func (s *Store) Settings() storage.SettingsStore {
	return s.settings
}

type queryer interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

const entryColumns = `id, owner_id, day_key, note, origin, title, effort_amount, effort_unit,
	difficulty, description, mood, created_at, updated_at, version`

// Insert persists a new ledger entry and its events in one transaction.
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

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return "", fmt.Errorf("%w: beginning transaction: %v", storage.ErrStorage, err)
	}
	defer tx.Rollback()

	var exists int
	if err := tx.QueryRowContext(ctx, "SELECT COUNT(*) FROM entries WHERE id = ?", e.ID).Scan(&exists); err != nil {
		return "", fmt.Errorf("%w: checking entry: %v", storage.ErrStorage, err)
	}
	if exists > 0 {
		return "", fmt.Errorf("%w: entry %s already exists", storage.ErrConflict, e.ID)
	}

	var amount sql.NullFloat64
	var unit string
	if e.Effort != nil {
		amount = sql.NullFloat64{Float64: e.Effort.Amount, Valid: true}
		unit = e.Effort.Unit
	}
	_, err = tx.ExecContext(ctx,
		`INSERT INTO entries (`+entryColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		e.ID, e.OwnerID, string(e.DayKey), e.Note, string(e.Origin), e.Title, amount, unit,
		e.Difficulty, e.Description, e.Mood,
		formatTime(e.CreatedAt), formatTime(e.UpdatedAt), e.Version,
	)
	if err != nil {
		return "", fmt.Errorf("%w: inserting entry: %v", storage.ErrStorage, err)
	}

	if err := writeEvents(ctx, tx, e.OwnerID, e.ID, e.ExternalEvents); err != nil {
		return "", err
	}

	if err := tx.Commit(); err != nil {
		return "", fmt.Errorf("%w: committing: %v", storage.ErrStorage, err)
	}
	return e.ID, nil
}

// Get retrieves an entry by ID.
func (s *Store) Get(ctx context.Context, id string) (entry.Entry, error) {
	return getEntry(ctx, s.db, id)
}

func getEntry(ctx context.Context, q queryer, id string) (entry.Entry, error) {
	row := q.QueryRowContext(ctx, "SELECT "+entryColumns+" FROM entries WHERE id = ?", id)
	e, err := scanEntry(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return entry.Entry{}, storage.ErrNotFound
		}
		return entry.Entry{}, fmt.Errorf("%w: querying entry: %v", storage.ErrStorage, err)
	}
	if e.ExternalEvents, err = loadEvents(ctx, q, e.ID); err != nil {
		return entry.Entry{}, err
	}
	return e, nil
}

// Query returns entries matching the filter, newest day first.
func (s *Store) Query(ctx context.Context, f storage.Filter) ([]entry.Entry, error) {
	if f.OwnerID == "" {
		return nil, fmt.Errorf("%w: owner is required", storage.ErrValidation)
	}

	query := "SELECT " + entryColumns + " FROM entries WHERE owner_id = ?"
	args := []any{f.OwnerID}

	if f.DayKey != "" {
		query += " AND day_key = ?"
		args = append(args, string(f.DayKey))
	} else {
		if f.From != "" {
			query += " AND day_key >= ?"
			args = append(args, string(f.From))
		}
		if f.To != "" {
			query += " AND day_key <= ?"
			args = append(args, string(f.To))
		}
	}
	if f.Origin != "" {
		query += " AND origin = ?"
		args = append(args, string(f.Origin))
	}

	query += " ORDER BY day_key DESC, created_at DESC"

	if f.Limit > 0 {
		query += fmt.Sprintf(" LIMIT %d", f.Limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: listing entries: %v", storage.ErrStorage, err)
	}
	defer rows.Close()

	entries := []entry.Entry{}
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, fmt.Errorf("%w: scanning row: %v", storage.ErrStorage, err)
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: iterating rows: %v", storage.ErrStorage, err)
	}
	rows.Close()

	for i := range entries {
		if entries[i].ExternalEvents, err = loadEvents(ctx, s.db, entries[i].ID); err != nil {
			return nil, err
		}
	}
	return entries, nil
}

// Update applies a patch inside a transaction, honoring ExpectVersion.
func (s *Store) Update(ctx context.Context, id string, p storage.Patch) (entry.Entry, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return entry.Entry{}, fmt.Errorf("%w: beginning transaction: %v", storage.ErrStorage, err)
	}
	defer tx.Rollback()

	current, err := getEntry(ctx, tx, id)
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

	var amount sql.NullFloat64
	var unit string
	if next.Effort != nil {
		amount = sql.NullFloat64{Float64: next.Effort.Amount, Valid: true}
		unit = next.Effort.Unit
	}
	if _, err := tx.ExecContext(ctx, `
		UPDATE entries SET day_key = ?, note = ?, title = ?, effort_amount = ?, effort_unit = ?,
			difficulty = ?, description = ?, mood = ?, updated_at = ?, version = ?
		WHERE id = ? AND version = ?`,
		string(next.DayKey), next.Note, next.Title, amount, unit,
		next.Difficulty, next.Description, next.Mood, formatTime(next.UpdatedAt), next.Version,
		id, current.Version,
	); err != nil {
		return entry.Entry{}, fmt.Errorf("%w: updating entry: %v", storage.ErrStorage, err)
	}

	if p.ExternalEvents != nil {
		if _, err := tx.ExecContext(ctx, "DELETE FROM external_events WHERE entry_id = ?", id); err != nil {
			return entry.Entry{}, fmt.Errorf("%w: clearing events: %v", storage.ErrStorage, err)
		}
		if err := writeEvents(ctx, tx, next.OwnerID, id, next.ExternalEvents); err != nil {
			return entry.Entry{}, err
		}
	}

	if err := tx.Commit(); err != nil {
		return entry.Entry{}, fmt.Errorf("%w: committing: %v", storage.ErrStorage, err)
	}
	return next, nil
}

// Delete removes an entry and its events permanently.
func (s *Store) Delete(ctx context.Context, id string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("%w: beginning transaction: %v", storage.ErrStorage, err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, "DELETE FROM external_events WHERE entry_id = ?", id); err != nil {
		return fmt.Errorf("%w: deleting events: %v", storage.ErrStorage, err)
	}
	result, err := tx.ExecContext(ctx, "DELETE FROM entries WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("%w: deleting entry: %v", storage.ErrStorage, err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: checking rows affected: %v", storage.ErrStorage, err)
	}
	if rows == 0 {
		return storage.ErrNotFound
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("%w: committing: %v", storage.ErrStorage, err)
	}
	return nil
}

// writeEvents inserts events for an entry. An external ID already owned by
// a different entry is a validation error: an event lives in one entry only.
func writeEvents(ctx context.Context, q queryer, owner, entryID string, events []entry.ExternalEvent) error {
	for i, ev := range events {
		var holder string
		err := q.QueryRowContext(ctx,
			"SELECT entry_id FROM external_events WHERE owner_id = ? AND external_id = ?",
			owner, ev.ExternalID,
		).Scan(&holder)
		switch {
		case err == nil && holder != entryID:
			return fmt.Errorf("%w: event %s already belongs to entry %s", storage.ErrValidation, ev.ExternalID, holder)
		case err == nil:
			continue
		case err != sql.ErrNoRows:
			return fmt.Errorf("%w: checking event: %v", storage.ErrStorage, err)
		}

		if _, err := q.ExecContext(ctx, `
			INSERT INTO external_events (owner_id, external_id, entry_id, position, summary, container, permalink, occurred_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
			owner, ev.ExternalID, entryID, i, ev.Summary, ev.Container, ev.Permalink, formatTime(ev.OccurredAt),
		); err != nil {
			return fmt.Errorf("%w: inserting event: %v", storage.ErrStorage, err)
		}
	}
	return nil
}

func loadEvents(ctx context.Context, q queryer, entryID string) ([]entry.ExternalEvent, error) {
	rows, err := q.QueryContext(ctx, `
		SELECT external_id, summary, container, permalink, occurred_at
		FROM external_events WHERE entry_id = ? ORDER BY position`, entryID)
	if err != nil {
		return nil, fmt.Errorf("%w: listing events: %v", storage.ErrStorage, err)
	}
	defer rows.Close()

	var events []entry.ExternalEvent
	for rows.Next() {
		var ev entry.ExternalEvent
		var occurred string
		if err := rows.Scan(&ev.ExternalID, &ev.Summary, &ev.Container, &ev.Permalink, &occurred); err != nil {
			return nil, fmt.Errorf("%w: scanning event: %v", storage.ErrStorage, err)
		}
		if ev.OccurredAt, err = parseTime(occurred); err != nil {
			return nil, fmt.Errorf("%w: parsing occurred_at: %v", storage.ErrStorage, err)
		}
		events = append(events, ev)
	}
	return events, rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanEntry(row scanner) (entry.Entry, error) {
	var e entry.Entry
	var day, origin, createdStr, updatedStr, unit string
	var amount sql.NullFloat64
	if err := row.Scan(&e.ID, &e.OwnerID, &day, &e.Note, &origin, &e.Title, &amount, &unit,
		&e.Difficulty, &e.Description, &e.Mood, &createdStr, &updatedStr, &e.Version); err != nil {
		return entry.Entry{}, err
	}
	e.DayKey = daykey.Key(day)
	e.Origin = entry.Origin(origin)
	if amount.Valid {
		e.Effort = &entry.Effort{Amount: amount.Float64, Unit: unit}
	}

	var err error
	if e.CreatedAt, err = parseTime(createdStr); err != nil {
		return entry.Entry{}, fmt.Errorf("parsing created_at: %w", err)
	}
	if e.UpdatedAt, err = parseTime(updatedStr); err != nil {
		return entry.Entry{}, fmt.Errorf("parsing updated_at: %w", err)
	}
	return e, nil
}

func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

func parseTime(s string) (time.Time, error) {
	t, err := time.Parse(timeLayout, s)
	if err != nil {
		// Rows written by hand or older builds may use plain RFC3339.
		return time.Parse(time.RFC3339, strings.TrimSpace(s))
	}
	return t, nil
}
