// SPDX-License-Identifier: Unlicense OR MIT

// Package storage persists small application state (window geometry,
// theme, hosted-application data) across runs. The stock
// implementation keeps a key-value table in a per-application SQLite
// database under the user config directory.
package storage

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	_ "modernc.org/sqlite"
)

// ErrClosed is returned by operations on a closed store.
var ErrClosed = errors.New("storage: store is closed")

// Store is an open key-value store scoped to one application id.
// Writes are buffered in memory until Flush.
type Store struct {
	mu     sync.Mutex
	db     *sql.DB
	cache  map[string][]byte
	dirty  map[string]bool
	closed bool
}

// Dir returns the directory holding the store for appID, creating it
// if needed.
func Dir(appID string) (string, error) {
	base, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("storage: locate config dir: %w", err)
	}
	dir := filepath.Join(base, appID)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("storage: create %s: %w", dir, err)
	}
	return dir, nil
}

// Open opens (or creates) the store for appID.
func Open(appID string) (*Store, error) {
	dir, err := Dir(appID)
	if err != nil {
		return nil, err
	}
	return OpenPath(filepath.Join(dir, "state.db"))
}

// OpenPath opens a store at an explicit database path. Tests use the
// special path ":memory:".
func OpenPath(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("storage: open %s: %w", path, err)
	}
	if _, err := db.Exec(`CREATE TABLE IF NOT EXISTS kv (
		key   TEXT PRIMARY KEY,
		value BLOB NOT NULL
	)`); err != nil {
		db.Close()
		return nil, fmt.Errorf("storage: init schema: %w", err)
	}
	s := &Store{
		db:    db,
		cache: make(map[string][]byte),
		dirty: make(map[string]bool),
	}
	if err := s.load(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

func (s *Store) load() error {
	rows, err := s.db.Query(`SELECT key, value FROM kv`)
	if err != nil {
		return fmt.Errorf("storage: load: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var key string
		var val []byte
		if err := rows.Scan(&key, &val); err != nil {
			return fmt.Errorf("storage: scan: %w", err)
		}
		s.cache[key] = val
	}
	return rows.Err()
}

// Get returns the value stored under key.
func (s *Store) Get(key string) ([]byte, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	val, ok := s.cache[key]
	return val, ok
}

// Set buffers a value under key. It is persisted on the next Flush.
func (s *Store) Set(key string, val []byte) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.cache[key] = val
	s.dirty[key] = true
}

// Flush writes buffered values to the database.
func (s *Store) Flush() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrClosed
	}
	if len(s.dirty) == 0 {
		return nil
	}
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("storage: begin: %w", err)
	}
	for key := range s.dirty {
		if _, err := tx.Exec(
			`INSERT INTO kv(key, value) VALUES(?, ?)
			 ON CONFLICT(key) DO UPDATE SET value = excluded.value`,
			key, s.cache[key],
		); err != nil {
			tx.Rollback()
			return fmt.Errorf("storage: upsert %s: %w", key, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("storage: commit: %w", err)
	}
	s.dirty = make(map[string]bool)
	return nil
}

// Close flushes and closes the store. Close is idempotent.
func (s *Store) Close() error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.mu.Unlock()
	flushErr := s.Flush()
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	if err := s.db.Close(); err != nil {
		return err
	}
	return flushErr
}
