/*
Package sqlite provides SQLite-backed persistence for the three input feeds.

PURPOSE:
  Durable home for the ingested store-status, business-hours and timezone
  rows. The monitor core never touches this package directly - report
  generation snapshots the feeds into in-memory collections and works on
  those, so the database is read once per report, not per store.

KEY TABLES:
  store_status:   (store_id, status, timestamp_utc)
  business_hours: (store_id, day_of_week, start_time_local, end_time_local)
  timezones:      (store_id, timezone_str)

CONCURRENCY:
  Uses sync.RWMutex for thread-safety around the single sql.DB handle.

WAL MODE:
  SQLite is opened with WAL (Write-Ahead Logging) for better concurrency:
  - Multiple readers don't block
  - Single writer at a time
  - Better crash recovery

USAGE:
  store, err := sqlite.New("./data/uptime.db")
  if err != nil {
      log.Fatal(err)
  }
  defer store.Close()

  Use ":memory:" for tests.

MIGRATION:
  Schema is auto-migrated on New(). For production, use a proper
  migration tool (golang-migrate, goose) with versioned migrations.

SEE ALSO:
  - ingest/csv.go: CSV bulk loading into this store
  - monitor: In-memory computation over the loaded rows
*/
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"sync"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/pulse/uptime-engine/monitor"
)

// timestampLayout is how observation timestamps are stored.
const timestampLayout = "2006-01-02 15:04:05.999999"

// Store persists the three input feeds in SQLite.
type Store struct {
	db *sql.DB
	mu sync.RWMutex
}

// New creates a new SQLite store with the given database path.
// Use ":memory:" for an in-memory database.
func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_foreign_keys=on&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	store := &Store{db: db}
	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return store, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) migrate() error {
	schema := []string{
		`CREATE TABLE IF NOT EXISTS store_status (
			store_id      TEXT NOT NULL,
			status        TEXT NOT NULL,
			timestamp_utc TEXT NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_status_store_ts
			ON store_status(store_id, timestamp_utc)`,
		`CREATE TABLE IF NOT EXISTS business_hours (
			store_id         TEXT NOT NULL,
			day_of_week      INTEGER NOT NULL,
			start_time_local TEXT NOT NULL,
			end_time_local   TEXT NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_hours_store
			ON business_hours(store_id)`,
		`CREATE TABLE IF NOT EXISTS timezones (
			store_id     TEXT NOT NULL,
			timezone_str TEXT NOT NULL
		)`,
	}

	for _, stmt := range schema {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("schema statement failed: %w", err)
		}
	}
	return nil
}

// =============================================================================
// WRITES - Bulk inserts used by ingestion
// =============================================================================

// InsertObservations appends a batch of status polls atomically.
func (s *Store) InsertObservations(ctx context.Context, obs []monitor.Observation) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.withTx(ctx, func(tx *sql.Tx) error {
		stmt, err := tx.PrepareContext(ctx,
			"INSERT INTO store_status (store_id, status, timestamp_utc) VALUES (?, ?, ?)")
		if err != nil {
			return err
		}
		defer stmt.Close()

		for _, o := range obs {
			if _, err := stmt.ExecContext(ctx,
				string(o.StoreID), string(o.Status), o.Timestamp.UTC().Format(timestampLayout)); err != nil {
				return err
			}
		}
		return nil
	})
}

// InsertBusinessHours appends a batch of schedule rows atomically.
func (s *Store) InsertBusinessHours(ctx context.Context, rows []monitor.BusinessHoursRow) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.withTx(ctx, func(tx *sql.Tx) error {
		stmt, err := tx.PrepareContext(ctx,
			"INSERT INTO business_hours (store_id, day_of_week, start_time_local, end_time_local) VALUES (?, ?, ?, ?)")
		if err != nil {
			return err
		}
		defer stmt.Close()

		for _, r := range rows {
			if _, err := stmt.ExecContext(ctx,
				string(r.StoreID), r.Day, r.Start.String(), r.End.String()); err != nil {
				return err
			}
		}
		return nil
	})
}

// InsertTimezones appends a batch of timezone rows atomically.
func (s *Store) InsertTimezones(ctx context.Context, rows []monitor.TimezoneRow) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.withTx(ctx, func(tx *sql.Tx) error {
		stmt, err := tx.PrepareContext(ctx,
			"INSERT INTO timezones (store_id, timezone_str) VALUES (?, ?)")
		if err != nil {
			return err
		}
		defer stmt.Close()

		for _, r := range rows {
			if _, err := stmt.ExecContext(ctx, string(r.StoreID), r.Name); err != nil {
				return err
			}
		}
		return nil
	})
}

func (s *Store) withTx(ctx context.Context, fn func(*sql.Tx) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	if err := fn(tx); err != nil {
		tx.Rollback()
		return err
	}
	return tx.Commit()
}

// =============================================================================
// READS - Feed snapshots for report generation
// =============================================================================

// LoadObservations returns every status poll.
func (s *Store) LoadObservations(ctx context.Context) ([]monitor.Observation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx,
		"SELECT store_id, status, timestamp_utc FROM store_status")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []monitor.Observation
	for rows.Next() {
		var storeID, status, ts string
		if err := rows.Scan(&storeID, &status, &ts); err != nil {
			return nil, err
		}
		t, err := time.Parse(timestampLayout, ts)
		if err != nil {
			return nil, fmt.Errorf("bad timestamp %q for store %s: %w", ts, storeID, err)
		}
		out = append(out, monitor.Observation{
			StoreID:   monitor.StoreID(storeID),
			Status:    monitor.Status(status),
			Timestamp: t.UTC(),
		})
	}
	return out, rows.Err()
}

// LoadBusinessHours returns every schedule row.
func (s *Store) LoadBusinessHours(ctx context.Context) ([]monitor.BusinessHoursRow, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx,
		"SELECT store_id, day_of_week, start_time_local, end_time_local FROM business_hours")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []monitor.BusinessHoursRow
	for rows.Next() {
		var storeID, start, end string
		var day int
		if err := rows.Scan(&storeID, &day, &start, &end); err != nil {
			return nil, err
		}
		startDT, err := monitor.ParseDayTime(start)
		if err != nil {
			return nil, fmt.Errorf("store %s: %w", storeID, err)
		}
		endDT, err := monitor.ParseDayTime(end)
		if err != nil {
			return nil, fmt.Errorf("store %s: %w", storeID, err)
		}
		out = append(out, monitor.BusinessHoursRow{
			StoreID: monitor.StoreID(storeID),
			Day:     day,
			Start:   startDT,
			End:     endDT,
		})
	}
	return out, rows.Err()
}

// LoadTimezones returns every timezone row.
func (s *Store) LoadTimezones(ctx context.Context) ([]monitor.TimezoneRow, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx,
		"SELECT store_id, timezone_str FROM timezones")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []monitor.TimezoneRow
	for rows.Next() {
		var storeID, name string
		if err := rows.Scan(&storeID, &name); err != nil {
			return nil, err
		}
		out = append(out, monitor.TimezoneRow{
			StoreID: monitor.StoreID(storeID),
			Name:    name,
		})
	}
	return out, rows.Err()
}

// CountObservations reports how many status polls are stored. Used at
// boot to decide whether the CSV seed data needs loading.
func (s *Store) CountObservations(ctx context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var n int
	err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM store_status").Scan(&n)
	return n, err
}
