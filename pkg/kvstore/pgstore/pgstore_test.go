package pgstore_test

import (
	"context"
	"errors"
	"io/fs"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/stockroom/pkg/kvstore"
	"github.com/dmitrymomot/stockroom/pkg/kvstore/pgstore"
)

// fakeDB keeps rows in a map and dispatches on the bound arguments.
type fakeDB struct {
	rows map[string]string
	err  error
}

type fakeRow struct {
	value string
	err   error
}

func (r fakeRow) Scan(dest ...any) error {
	if r.err != nil {
		return r.err
	}
	*dest[0].(*string) = r.value
	return nil
}

func (f *fakeDB) QueryRow(_ context.Context, _ string, args ...any) pgx.Row {
	if f.err != nil {
		return fakeRow{err: f.err}
	}
	v, ok := f.rows[args[0].(string)]
	if !ok {
		return fakeRow{err: pgx.ErrNoRows}
	}
	return fakeRow{value: v}
}

func (f *fakeDB) Exec(_ context.Context, _ string, args ...any) (pgconn.CommandTag, error) {
	if f.err != nil {
		return pgconn.CommandTag{}, f.err
	}
	switch len(args) {
	case 2:
		f.rows[args[0].(string)] = args[1].(string)
	case 1:
		delete(f.rows, args[0].(string))
	}
	return pgconn.CommandTag{}, nil
}

func TestStore_RoundTrip(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := pgstore.New(&fakeDB{rows: map[string]string{}})

	_, err := store.Get(ctx, "products")
	require.ErrorIs(t, err, kvstore.ErrNotFound)

	require.NoError(t, store.Set(ctx, "products", "[]"))
	v, err := store.Get(ctx, "products")
	require.NoError(t, err)
	assert.Equal(t, "[]", v)

	require.NoError(t, store.Delete(ctx, "products"))
	_, err = store.Get(ctx, "products")
	assert.ErrorIs(t, err, kvstore.ErrNotFound)
}

func TestStore_Errors(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	boom := errors.New("connection reset")
	store := pgstore.New(&fakeDB{rows: map[string]string{}, err: boom})

	_, err := store.Get(ctx, "k")
	assert.ErrorIs(t, err, pgstore.ErrQueryFailed)
	assert.ErrorIs(t, err, boom)
	assert.ErrorIs(t, store.Set(ctx, "k", "v"), pgstore.ErrQueryFailed)
	assert.ErrorIs(t, store.Delete(ctx, "k"), pgstore.ErrQueryFailed)
	assert.ErrorIs(t, store.Set(ctx, "", "v"), kvstore.ErrEmptyKey)
	assert.Panics(t, func() { pgstore.New(nil) })
}

func TestMigrations_Embedded(t *testing.T) {
	t.Parallel()

	matches, err := fs.Glob(pgstore.Migrations, "*.sql")
	require.NoError(t, err)
	assert.Equal(t, []string{"00001_kv_records.sql"}, matches)
}
