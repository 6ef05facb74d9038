// Package sqlitestore implements kvstore.Store on top of an embedded SQLite
// database. It is the default backend for the command-line front-end, where it
// plays the role local storage plays in a browser: one file per installation.
package sqlitestore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"regexp"
	"time"

	_ "modernc.org/sqlite"

	"github.com/dmitrymomot/stockroom/pkg/kvstore"
)

// Config describes where the database lives.
type Config struct {
	// Path is the database file. Use ":memory:" for a throwaway store.
	Path string `env:"SQLITE_PATH" envDefault:"stockroom.db"`
	// Table holds the key/value pairs.
	Table string `env:"SQLITE_TABLE" envDefault:"kv_records"`
	// BusyTimeout is how long a writer waits for a locked database.
	BusyTimeout time.Duration `env:"SQLITE_BUSY_TIMEOUT" envDefault:"5s"`
}

var (
	ErrInvalidTable    = errors.New("sqlitestore: invalid table name")
	ErrFailedToOpen    = errors.New("sqlitestore: failed to open database")
	ErrFailedToPrepare = errors.New("sqlitestore: failed to prepare schema")
)

var tableName = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// Store implements kvstore.Store with a single two-column table.
type Store struct {
	db    *sql.DB
	table string
	owned bool
}

// Open opens (or creates) the database described by cfg and prepares the schema.
// The returned store owns the connection; Close releases it.
func Open(ctx context.Context, cfg Config) (*Store, error) {
	db, err := sql.Open("sqlite", cfg.Path)
	if err != nil {
		return nil, errors.Join(ErrFailedToOpen, err)
	}
	// SQLite allows a single writer; one connection avoids SQLITE_BUSY churn.
	db.SetMaxOpenConns(1)

	if cfg.BusyTimeout > 0 {
		pragma := fmt.Sprintf("PRAGMA busy_timeout = %d", cfg.BusyTimeout.Milliseconds())
		if _, err := db.ExecContext(ctx, pragma); err != nil {
			_ = db.Close()
			return nil, errors.Join(ErrFailedToOpen, err)
		}
	}

	s, err := New(ctx, db, cfg.Table)
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	s.owned = true
	return s, nil
}

// New wraps an existing connection. An empty table name selects "kv_records".
func New(ctx context.Context, db *sql.DB, table string) (*Store, error) {
	if table == "" {
		table = "kv_records"
	}
	if !tableName.MatchString(table) {
		return nil, fmt.Errorf("%w: %q", ErrInvalidTable, table)
	}

	query := fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
		key        TEXT PRIMARY KEY,
		value      TEXT NOT NULL,
		updated_at INTEGER NOT NULL
	)`, table)
	if _, err := db.ExecContext(ctx, query); err != nil {
		return nil, errors.Join(ErrFailedToPrepare, err)
	}

	return &Store{db: db, table: table}, nil
}

func (s *Store) Get(ctx context.Context, key string) (string, error) {
	if key == "" {
		return "", kvstore.ErrEmptyKey
	}

	var value string
	query := fmt.Sprintf(`SELECT value FROM %s WHERE key = ?`, s.table)
	err := s.db.QueryRowContext(ctx, query, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", kvstore.ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("failed to read key %q: %w", key, err)
	}
	return value, nil
}

func (s *Store) Set(ctx context.Context, key, value string) error {
	if key == "" {
		return kvstore.ErrEmptyKey
	}

	query := fmt.Sprintf(`INSERT INTO %s (key, value, updated_at) VALUES (?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`, s.table)
	if _, err := s.db.ExecContext(ctx, query, key, value, time.Now().UnixMilli()); err != nil {
		return fmt.Errorf("failed to write key %q: %w", key, err)
	}
	return nil
}

func (s *Store) Delete(ctx context.Context, key string) error {
	if key == "" {
		return kvstore.ErrEmptyKey
	}

	query := fmt.Sprintf(`DELETE FROM %s WHERE key = ?`, s.table)
	if _, err := s.db.ExecContext(ctx, query, key); err != nil {
		return fmt.Errorf("failed to delete key %q: %w", key, err)
	}
	return nil
}

// Close closes the connection when the store opened it itself.
func (s *Store) Close() error {
	if !s.owned {
		return nil
	}
	return s.db.Close()
}

// Ping checks that the database file is still reachable.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}
