// Package sqlite persists the identity client's token cache and pending
// redirect requests in a local SQLite database.
package sqlite

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	// Registers the "sqlite" driver.
	_ "modernc.org/sqlite"
)

const schema = `
CREATE TABLE IF NOT EXISTS token_cache (
	id         INTEGER PRIMARY KEY CHECK (id = 1),
	data       BLOB NOT NULL,
	updated_at INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS pending_redirects (
	state         TEXT PRIMARY KEY,
	code_verifier TEXT NOT NULL,
	redirect_uri  TEXT NOT NULL,
	start_page    TEXT NOT NULL DEFAULT '',
	scopes        TEXT NOT NULL,
	created_at    INTEGER NOT NULL
);
`

// Store owns the database handle shared by the token cache and the
// redirect store.
type Store struct {
	db    *sql.DB
	path  string
	clock func() time.Time
}

// Option configures a Store.
type Option func(*Store)

// WithClock sets the clock used for timestamps and expiry.
func WithClock(clock func() time.Time) Option {
	return func(s *Store) {
		if clock != nil {
			s.clock = clock
		}
	}
}

// Open opens or creates the database at path and applies the schema.
func Open(path string, opts ...Option) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return nil, fmt.Errorf("create data directory: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	// A single connection serialises writers from concurrent token requests.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(`PRAGMA busy_timeout = 5000`); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("configure database: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("migrate database: %w", err)
	}

	s := &Store{db: db, path: path, clock: time.Now}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	return s, nil
}

// Path returns the database file location.
func (s *Store) Path() string {
	return s.path
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}

// TokenCache returns the persistent token cache.
func (s *Store) TokenCache() *TokenCache {
	return &TokenCache{store: s}
}

// RedirectStore returns the persistent pending-redirect store.
func (s *Store) RedirectStore() *RedirectStore {
	return &RedirectStore{store: s}
}

// DefaultPath returns ~/.graph/graph.db.
func DefaultPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve home directory: %w", err)
	}
	return filepath.Join(home, ".graph", "graph.db"), nil
}
