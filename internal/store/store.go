// Package store provides SQLite storage for tunable presets and application settings.
package store

import (
	"database/sql"
	"fmt"
	"net/url"

	_ "modernc.org/sqlite"
)

// busyTimeoutMs lets a second atomesh process wait for the writer instead
// of failing with SQLITE_BUSY.
const busyTimeoutMs = 5000

// Store owns the preset database.
type Store struct {
	db   *sql.DB
	path string
}

// New opens the database at dbPath, creating it if needed, and brings the
// schema up to date.
func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite", dsn(dbPath))
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", dbPath, err)
	}
	db.SetMaxOpenConns(1)

	s := &Store{db: db, path: dbPath}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate %s: %w", dbPath, err)
	}
	return s, nil
}

func dsn(path string) string {
	q := url.Values{}
	q.Add("_pragma", fmt.Sprintf("busy_timeout(%d)", busyTimeoutMs))
	q.Add("_pragma", "foreign_keys(1)")
	return path + "?" + q.Encode()
}

func (s *Store) Close() error {
	return s.db.Close()
}

// DB exposes the connection for tests and ad hoc queries.
func (s *Store) DB() *sql.DB {
	return s.db
}

func (s *Store) Path() string {
	return s.path
}
