// Copyright 2025 Toly Pochkin
// SPDX-License-Identifier: Apache-2.0

// Package store persists the full local snapshot as a single versioned blob
// in SQLite, alongside an independently keyed flag table for one-time
// maintenance passes. The flag table survives a snapshot reset.
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/santhosh-tekuri/jsonschema/v6"

	"github.com/DustinBergman/workout-app-sub004/internal/domain"
)

// SchemaVersion is the version written into every committed snapshot.
const SchemaVersion = 1

// ErrNoSnapshot is returned by Load when nothing has been committed yet.
var ErrNoSnapshot = errors.New("no snapshot persisted")

// snapshot is the envelope persisted in the app_state row.
type snapshot struct {
	State   *domain.State `json:"state"`
	Version int           `json:"version"`
}

// Observer receives the committed state after every successful Commit.
type Observer func(*domain.State)

// Store is the durable local Entity Store.
type Store struct {
	db     *sql.DB
	logger *slog.Logger
	schema *jsonschema.Schema

	mu        sync.Mutex // serializes writes, sqlite dislikes concurrent writers
	observers []Observer
}

// Open opens (creating if needed) the store at path. Use ":memory:" in tests.
func Open(path string, logger *slog.Logger) (*Store, error) {
	if logger == nil {
		logger = slog.Default()
	}
	db, err := sql.Open("sqlite3", path+"?_busy_timeout=5000&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite database: %w", err)
	}
	// A single connection sidesteps table-lock contention between the event
	// loop and test helpers.
	db.SetMaxOpenConns(1)
	if err := initTables(db); err != nil {
		db.Close()
		return nil, err
	}
	schema, err := compileSnapshotSchema()
	if err != nil {
		db.Close()
		return nil, err
	}
	return &Store{db: db, logger: logger, schema: schema}, nil
}

func initTables(db *sql.DB) error {
	_, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS app_state (
			id INTEGER PRIMARY KEY CHECK (id = 1),
			payload TEXT NOT NULL,
			schema_version INTEGER NOT NULL,
			updated_at TEXT NOT NULL
		);
		CREATE TABLE IF NOT EXISTS app_flags (
			name TEXT PRIMARY KEY,
			set_at TEXT NOT NULL
		);
	`)
	if err != nil {
		return fmt.Errorf("failed to initialize store tables: %w", err)
	}
	return nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Observe registers an observer invoked synchronously after each Commit, in
// registration order. Observers run on the committing goroutine.
func (s *Store) Observe(fn Observer) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.observers = append(s.observers, fn)
}

// Load reads and validates the persisted snapshot. Returns ErrNoSnapshot when
// the store has never been committed to.
func (s *Store) Load(ctx context.Context) (*domain.State, error) {
	var payload string
	err := s.db.QueryRowContext(ctx, `SELECT payload FROM app_state WHERE id = 1`).Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNoSnapshot
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read snapshot: %w", err)
	}
	if err := validateSnapshot(s.schema, []byte(payload)); err != nil {
		return nil, err
	}
	var snap snapshot
	if err := json.Unmarshal([]byte(payload), &snap); err != nil {
		return nil, fmt.Errorf("failed to decode snapshot: %w", err)
	}
	return snap.State, nil
}

// Commit persists state as the new snapshot and notifies observers. The state
// pointer is handed to observers as-is; callers must not mutate it afterwards.
func (s *Store) Commit(ctx context.Context, state *domain.State) error {
	if state == nil {
		return errors.New("cannot commit nil state")
	}
	payload, err := json.Marshal(snapshot{State: state, Version: SchemaVersion})
	if err != nil {
		return fmt.Errorf("failed to encode snapshot: %w", err)
	}

	s.mu.Lock()
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO app_state (id, payload, schema_version, updated_at)
		VALUES (1, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			payload = excluded.payload,
			schema_version = excluded.schema_version,
			updated_at = excluded.updated_at
	`, string(payload), SchemaVersion, time.Now().UTC().Format(time.RFC3339))
	observers := append([]Observer(nil), s.observers...)
	s.mu.Unlock()
	if err != nil {
		return fmt.Errorf("failed to write snapshot: %w", err)
	}

	for _, fn := range observers {
		fn(state)
	}
	return nil
}

// Reset deletes the snapshot row. Flags are intentionally untouched so that
// one-time maintenance passes do not re-run after a data reset.
func (s *Store) Reset(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, err := s.db.ExecContext(ctx, `DELETE FROM app_state`); err != nil {
		return fmt.Errorf("failed to reset snapshot: %w", err)
	}
	return nil
}

// Flag reports whether the named one-time flag has been set.
func (s *Store) Flag(ctx context.Context, name string) (bool, error) {
	var setAt string
	err := s.db.QueryRowContext(ctx, `SELECT set_at FROM app_flags WHERE name = ?`, name).Scan(&setAt)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to read flag %q: %w", name, err)
	}
	return true, nil
}

// SetFlag durably records the named one-time flag. Setting an already-set
// flag is a no-op.
func (s *Store) SetFlag(ctx context.Context, name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO app_flags (name, set_at) VALUES (?, ?)
		ON CONFLICT(name) DO NOTHING
	`, name, time.Now().UTC().Format(time.RFC3339))
	if err != nil {
		return fmt.Errorf("failed to set flag %q: %w", name, err)
	}
	return nil
}
