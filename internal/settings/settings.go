// Package settings persists small user settings, such as the saved GitHub
// token and the preferred editor, in a local SQLite database.
package settings

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

// Setting keys.
const (
	KeyGitHubToken = "github.token"
	KeyEditor      = "editor"
)

// Store is a key-value table in SQLite.
type Store struct {
	db  *sql.DB
	now func() time.Time
}

// Open opens (creating if needed) the settings database at path.
func Open(path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create settings dir: %w", err)
	}
	db, err := sql.Open("sqlite", "file:"+path+"?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)")
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	s := &Store{db: db, now: time.Now}
	if err := s.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("init schema: %w", err)
	}
	return s, nil
}

// Close closes the database.
func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

func (s *Store) initSchema() error {
	_, err := s.db.Exec(`
CREATE TABLE IF NOT EXISTS settings (
    key TEXT PRIMARY KEY,
    value TEXT NOT NULL,
    updated_at TEXT NOT NULL
);`)
	return err
}

// Get returns the value for key. ok is false when the key is unset.
func (s *Store) Get(key string) (value string, ok bool, err error) {
	err = s.db.QueryRow(`SELECT value FROM settings WHERE key = ?`, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("get %s: %w", key, err)
	}
	return value, true, nil
}

// Set stores value under key, replacing any previous value.
func (s *Store) Set(key, value string) error {
	_, err := s.db.Exec(`
INSERT INTO settings (key, value, updated_at) VALUES (?, ?, ?)
ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`,
		key, value, s.now().UTC().Format(time.RFC3339))
	if err != nil {
		return fmt.Errorf("set %s: %w", key, err)
	}
	return nil
}

// Delete removes key. Deleting an unset key is not an error.
func (s *Store) Delete(key string) error {
	if _, err := s.db.Exec(`DELETE FROM settings WHERE key = ?`, key); err != nil {
		return fmt.Errorf("delete %s: %w", key, err)
	}
	return nil
}

// GitHubToken returns the saved token, or "" if none.
func (s *Store) GitHubToken() (string, error) {
	v, _, err := s.Get(KeyGitHubToken)
	return v, err
}

// SetGitHubToken saves token. An empty token removes the saved one.
func (s *Store) SetGitHubToken(token string) error {
	if token == "" {
		return s.Delete(KeyGitHubToken)
	}
	return s.Set(KeyGitHubToken, token)
}

// Editor returns the preferred editor command, falling back to $VISUAL and
// then $EDITOR.
func (s *Store) Editor() (string, error) {
	v, ok, err := s.Get(KeyEditor)
	if err != nil || ok {
		return v, err
	}
	if v := os.Getenv("VISUAL"); v != "" {
		return v, nil
	}
	return os.Getenv("EDITOR"), nil
}

// SetEditor saves the preferred editor command.
func (s *Store) SetEditor(cmd string) error {
	if cmd == "" {
		return s.Delete(KeyEditor)
	}
	return s.Set(KeyEditor, cmd)
}
