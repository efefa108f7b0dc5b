// Package settings persists user preferences between runs: the last opened
// config and the recently used configs and files.
package settings

import (
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"path"
	"slices"

	_ "modernc.org/sqlite"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// MaxRecent is how many entries each recent list keeps.
const MaxRecent = 10

// Kind selects a recent list.
type Kind string

const (
	KindConfigs Kind = "configs"
	KindFiles   Kind = "files"
)

// KeyLastOpened stores the path of the config opened last.
const KeyLastOpened = "lastOpened"

var ErrUnknownKind = errors.New("unknown recent list")

func (k Kind) valid() error {
	switch k {
	case KindConfigs, KindFiles:
		return nil
	}
	return fmt.Errorf("%q: %w", string(k), ErrUnknownKind)
}

// Store is a settings database.
type Store struct {
	db   *sql.DB
	path string
}

// Open opens or creates the settings database at dsn and applies pending
// migrations. ":memory:" gives a private throwaway store.
func Open(dsn string) (*Store, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("settings %s: %w", dsn, err)
	}
	// An in-memory database lives on a single connection, and the CLI
	// never writes from more than one goroutine.
	db.SetMaxOpenConns(1)
	s := &Store{db: db, path: dsn}
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, s.errorf("journal mode", err)
	}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) errorf(what string, err error) error {
	return fmt.Errorf("settings %s: %s: %w", s.path, what, err)
}

// Migrations returns the names of the applied migrations in order.
func (s *Store) Migrations() ([]string, error) {
	rows, err := s.db.Query("SELECT name FROM settings_migrations ORDER BY name")
	if err != nil {
		return nil, s.errorf("list migrations", err)
	}
	defer rows.Close()
	var names []string
	for rows.Next() {
		var n string
		if err := rows.Scan(&n); err != nil {
			return nil, err
		}
		names = append(names, n)
	}
	return names, rows.Err()
}

// migrate applies every embedded migration not yet recorded, in file name
// order, each in its own transaction.
func (s *Store) migrate() error {
	if _, err := s.db.Exec(`CREATE TABLE IF NOT EXISTS settings_migrations (
		name       TEXT PRIMARY KEY,
		applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
	)`); err != nil {
		return s.errorf("migrations table", err)
	}
	files, err := fs.Glob(migrationsFS, "migrations/*.sql")
	if err != nil {
		return s.errorf("embedded migrations", err)
	}
	done, err := s.Migrations()
	if err != nil {
		return err
	}
	for _, f := range files {
		name := path.Base(f)
		if slices.Contains(done, name) {
			continue
		}
		if err := s.apply(f, name); err != nil {
			return s.errorf("migration "+name, err)
		}
	}
	return nil
}

func (s *Store) apply(file, name string) error {
	ddl, err := migrationsFS.ReadFile(file)
	if err != nil {
		return err
	}
	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()
	if _, err := tx.Exec(string(ddl)); err != nil {
		return err
	}
	if _, err := tx.Exec("INSERT INTO settings_migrations (name) VALUES (?)", name); err != nil {
		return err
	}
	return tx.Commit()
}

// Get returns the value stored under key.
func (s *Store) Get(key string) (string, bool, error) {
	var v string
	err := s.db.QueryRow("SELECT value FROM settings WHERE key = ?", key).Scan(&v)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("get %s: %w", key, err)
	}
	return v, true, nil
}

// Set stores value under key.
func (s *Store) Set(key, value string) error {
	_, err := s.db.Exec(`INSERT INTO settings (key, value) VALUES (?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = CURRENT_TIMESTAMP`, key, value)
	if err != nil {
		return fmt.Errorf("set %s: %w", key, err)
	}
	return nil
}

// LastOpened returns the config opened last, or "" when there is none.
func (s *Store) LastOpened() (string, error) {
	v, _, err := s.Get(KeyLastOpened)
	return v, err
}

// SetLastOpened records path as the last opened config and moves it to the
// top of the recent configs.
func (s *Store) SetLastOpened(path string) error {
	if err := s.Set(KeyLastOpened, path); err != nil {
		return err
	}
	return s.Touch(KindConfigs, path)
}
