package redisstore_test

import (
	"context"
	"testing"

	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"

	"github.com/dmitrymomot/stockroom/pkg/kvstore"
	"github.com/dmitrymomot/stockroom/pkg/kvstore/redisstore"
)

func TestStore_KeyPrefix(t *testing.T) {
	t.Parallel()

	client := goredis.NewClient(&goredis.Options{Addr: "localhost:0"})
	defer client.Close()

	s := redisstore.New(client, redisstore.WithPrefix("stockroom:"))
	assert.Equal(t, "stockroom:weekly_ayse", s.Key("weekly_ayse"))

	plain := redisstore.New(client)
	assert.Equal(t, "weekly_ayse", plain.Key("weekly_ayse"))
}

func TestStore_EmptyKey(t *testing.T) {
	t.Parallel()

	client := goredis.NewClient(&goredis.Options{Addr: "localhost:0"})
	defer client.Close()

	s := redisstore.New(client)
	ctx := context.Background()

	_, err := s.Get(ctx, "")
	assert.ErrorIs(t, err, kvstore.ErrEmptyKey)
	assert.ErrorIs(t, s.Set(ctx, "", "v"), kvstore.ErrEmptyKey)
	assert.ErrorIs(t, s.Delete(ctx, ""), kvstore.ErrEmptyKey)
}

func TestNew_PanicsOnNilClient(t *testing.T) {
	t.Parallel()

	assert.Panics(t, func() { redisstore.New(nil) })
}
