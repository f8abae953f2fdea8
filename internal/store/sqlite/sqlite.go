// Package sqlite implements the client-local store on an embedded SQLite
// database, so session state survives process restarts without any server.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "modernc.org/sqlite" // CGO-less SQLite driver

	"github.com/logihub/logihub/internal/store"
)

// Store is a SQLite-backed implementation of store.Store.
type Store struct {
	db *sql.DB
}

// New opens (and if needed creates) the store database at path.
func New(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening store: %w", err)
	}
	if _, err := db.Exec(`PRAGMA journal_mode=WAL; PRAGMA busy_timeout=5000;`); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("configuring store: %w", err)
	}
	if _, err := db.Exec(`CREATE TABLE IF NOT EXISTS slots (
		scope      TEXT NOT NULL,
		key        TEXT NOT NULL,
		value      BLOB NOT NULL,
		updated_at TEXT NOT NULL,
		PRIMARY KEY (scope, key)
	)`); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("creating store schema: %w", err)
	}
	return &Store{db: db}, nil
}

var _ store.Store = (*Store)(nil)

// Get returns the value for key, or store.ErrNotFound.
func (s *Store) Get(ctx context.Context, scope store.Scope, key string) ([]byte, error) {
	var value []byte
	err := s.db.QueryRowContext(ctx,
		`SELECT value FROM slots WHERE scope = ? AND key = ?`,
		string(scope), key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return value, nil
}

// Put overwrites the value for key.
func (s *Store) Put(ctx context.Context, scope store.Scope, key string, value []byte) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO slots (scope, key, value, updated_at) VALUES (?, ?, ?, ?)
		 ON CONFLICT(scope, key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`,
		string(scope), key, value, time.Now().UTC().Format(time.RFC3339))
	return err
}

// Delete removes key. Deleting an absent key is not an error.
func (s *Store) Delete(ctx context.Context, scope store.Scope, key string) error {
	_, err := s.db.ExecContext(ctx,
		`DELETE FROM slots WHERE scope = ? AND key = ?`, string(scope), key)
	return err
}

// ClearSession removes every session-scoped value.
func (s *Store) ClearSession(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx,
		`DELETE FROM slots WHERE scope = ?`, string(store.ScopeSession))
	return err
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}
