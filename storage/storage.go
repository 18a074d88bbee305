// Package storage persists the client's keyed records (credentials,
// settings) in a local SQLite database.
package storage

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	_ "github.com/mattn/go-sqlite3"
)

// ErrNotFound is returned when no record exists under the requested key.
var ErrNotFound = errors.New("storage: record not found")

// Store is a persistent key-value store. Values are JSON documents.
type Store struct {
	conn *sql.DB
}

// Open opens (or creates) the store database at path.
func Open(path string) (*Store, error) {
	conn, err := sql.Open("sqlite3", path+"?_journal_mode=WAL")
	if err != nil {
		return nil, err
	}

	s := &Store{conn: conn}
	if err := s.init(); err != nil {
		conn.Close()
		return nil, err
	}

	return s, nil
}

func (s *Store) Close() error {
	return s.conn.Close()
}

func (s *Store) init() error {
	_, err := s.conn.Exec(`CREATE TABLE IF NOT EXISTS records (
		key   TEXT PRIMARY KEY,
		value TEXT NOT NULL
	)`)
	return err
}

// Has reports whether a record exists under key.
func (s *Store) Has(key string) (bool, error) {
	var count int
	err := s.conn.QueryRow("SELECT COUNT(*) FROM records WHERE key = ?", key).Scan(&count)
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// Get unmarshals the record stored under key into v.
func (s *Store) Get(key string, v interface{}) error {
	var raw string
	err := s.conn.QueryRow("SELECT value FROM records WHERE key = ?", key).Scan(&raw)
	if err == sql.ErrNoRows {
		return ErrNotFound
	}
	if err != nil {
		return err
	}
	if err := json.Unmarshal([]byte(raw), v); err != nil {
		return fmt.Errorf("storage: decode %q: %w", key, err)
	}
	return nil
}

// Set stores v under key, overwriting any prior record.
func (s *Store) Set(key string, v interface{}) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("storage: encode %q: %w", key, err)
	}
	_, err = s.conn.Exec(
		"INSERT INTO records (key, value) VALUES (?, ?) ON CONFLICT(key) DO UPDATE SET value = excluded.value",
		key, string(raw),
	)
	return err
}

// Remove deletes the record stored under key. Removing a missing key is
// not an error.
func (s *Store) Remove(key string) error {
	_, err := s.conn.Exec("DELETE FROM records WHERE key = ?", key)
	return err
}
