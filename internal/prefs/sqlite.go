package prefs

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"
)

// SQLStore keeps settings in a single SQLite table.
type SQLStore struct {
	conn *sql.DB
	path string
}

var _ Store = (*SQLStore)(nil)

// OpenSQL opens or creates the settings database at path.
func OpenSQL(path string) (*SQLStore, error) {
	resolved, err := expandPath(path)
	if err != nil {
		return nil, fmt.Errorf("resolve path: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(resolved), 0o755); err != nil {
		return nil, fmt.Errorf("create settings dir: %w", err)
	}

	conn, err := sql.Open("sqlite", resolved)
	if err != nil {
		return nil, fmt.Errorf("open settings db: %w", err)
	}
	// One writer keeps SQLITE_BUSY away.
	conn.SetMaxOpenConns(1)

	if _, err := conn.Exec("PRAGMA journal_mode = WAL;"); err != nil {
		conn.Close()
		return nil, fmt.Errorf("configure settings db: %w", err)
	}
	if _, err := conn.Exec(`
		CREATE TABLE IF NOT EXISTS settings (
			key TEXT PRIMARY KEY,
			value TEXT NOT NULL,
			updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		)
	`); err != nil {
		conn.Close()
		return nil, fmt.Errorf("migrate settings db: %w", err)
	}

	return &SQLStore{conn: conn, path: resolved}, nil
}

// Path returns the database file path.
func (s *SQLStore) Path() string {
	return s.path
}

// Get implements Store. Read errors are treated as a missing key.
func (s *SQLStore) Get(key string) (string, bool) {
	var value string
	err := s.conn.QueryRow("SELECT value FROM settings WHERE key = ?", key).Scan(&value)
	if err != nil {
		return "", false
	}
	return value, true
}

// Set implements Store.
func (s *SQLStore) Set(key, value string) error {
	_, err := s.conn.Exec(`
		INSERT INTO settings (key, value, updated_at) VALUES (?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = CURRENT_TIMESTAMP
	`, key, value)
	if err != nil {
		return fmt.Errorf("write setting %s: %w", key, err)
	}
	return nil
}

// Delete implements Store.
func (s *SQLStore) Delete(key string) error {
	if _, err := s.conn.Exec("DELETE FROM settings WHERE key = ?", key); err != nil {
		return fmt.Errorf("delete setting %s: %w", key, err)
	}
	return nil
}

// Close implements Store.
func (s *SQLStore) Close() error {
	return s.conn.Close()
}
