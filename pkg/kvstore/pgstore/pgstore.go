// Package pgstore keeps kvstore records in a PostgreSQL table.
package pgstore

import (
	"context"
	"embed"
	"errors"
	"io/fs"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/dmitrymomot/stockroom/pkg/kvstore"
	"github.com/dmitrymomot/stockroom/pkg/pg"
)

//go:embed migrations/*.sql
var migrationFiles embed.FS

// Migrations holds the goose migrations that create kv_records.
var Migrations fs.FS = mustSub(migrationFiles, "migrations")

var ErrQueryFailed = errors.New("pgstore: query failed")

// DB is the part of *pgxpool.Pool the store needs.
type DB interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

const (
	getQuery    = `SELECT value FROM kv_records WHERE key = $1`
	upsertQuery = `INSERT INTO kv_records (key, value, updated_at) VALUES ($1, $2, now())
ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value, updated_at = EXCLUDED.updated_at`
	deleteQuery = `DELETE FROM kv_records WHERE key = $1`
)

// Store implements kvstore.Store on top of a migrated pool.
type Store struct {
	db DB
}

var _ kvstore.Store = (*Store)(nil)

// New wraps db. Run pg.Migrate with Migrations first.
func New(db DB) *Store {
	if db == nil {
		panic("pgstore: db cannot be nil")
	}
	return &Store{db: db}
}

func (s *Store) Get(ctx context.Context, key string) (string, error) {
	if key == "" {
		return "", kvstore.ErrEmptyKey
	}
	var value string
	if err := s.db.QueryRow(ctx, getQuery, key).Scan(&value); err != nil {
		if pg.IsNotFoundError(err) {
			return "", kvstore.ErrNotFound
		}
		return "", errors.Join(ErrQueryFailed, err)
	}
	return value, nil
}

func (s *Store) Set(ctx context.Context, key, value string) error {
	if key == "" {
		return kvstore.ErrEmptyKey
	}
	if _, err := s.db.Exec(ctx, upsertQuery, key, value); err != nil {
		return errors.Join(ErrQueryFailed, err)
	}
	return nil
}

func (s *Store) Delete(ctx context.Context, key string) error {
	if key == "" {
		return kvstore.ErrEmptyKey
	}
	if _, err := s.db.Exec(ctx, deleteQuery, key); err != nil {
		return errors.Join(ErrQueryFailed, err)
	}
	return nil
}

func mustSub(fsys fs.FS, dir string) fs.FS {
	sub, err := fs.Sub(fsys, dir)
	if err != nil {
		panic(err)
	}
	return sub
}
