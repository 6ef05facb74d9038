package cli

import (
	"context"
	"errors"
	"log/slog"

	"github.com/dmitrymomot/stockroom/pkg/config"
	"github.com/dmitrymomot/stockroom/pkg/kvstore"
	"github.com/dmitrymomot/stockroom/pkg/kvstore/mongostore"
	"github.com/dmitrymomot/stockroom/pkg/kvstore/pgstore"
	"github.com/dmitrymomot/stockroom/pkg/kvstore/redisstore"
	"github.com/dmitrymomot/stockroom/pkg/kvstore/s3store"
	"github.com/dmitrymomot/stockroom/pkg/kvstore/sqlitestore"
	"github.com/dmitrymomot/stockroom/pkg/mongo"
	"github.com/dmitrymomot/stockroom/pkg/pg"
	"github.com/dmitrymomot/stockroom/pkg/redis"
)

// backend is an opened store plus its health check and whatever releases
// its connections.
type backend struct {
	name  string
	store kvstore.Store
	ping  func(context.Context) error
	close func(context.Context) error
}

func noop(context.Context) error { return nil }

// openBackend connects to the store named in cfg. Backend settings are read
// with the same config options as cfg itself.
func openBackend(ctx context.Context, cfg Config, log *slog.Logger, opts ...config.Option) (backend, error) {
	name, err := cfg.backend()
	if err != nil {
		return backend{}, err
	}

	b, err := dial(ctx, name, log, opts...)
	if err != nil {
		return backend{}, errors.Join(ErrFailedToOpenStore, err)
	}
	b.name = name
	if cfg.CacheSize > 0 {
		b.store = kvstore.NewCachedStore(b.store, cfg.CacheSize)
	}
	log.DebugContext(ctx, "store opened", slog.String("backend", name), slog.Int("cache", cfg.CacheSize))
	return b, nil
}

func dial(ctx context.Context, name string, log *slog.Logger, opts ...config.Option) (backend, error) {
	switch name {
	case BackendMemory:
		return backend{store: kvstore.NewMemoryStore(), ping: noop, close: noop}, nil

	case BackendSQLite:
		var c sqlitestore.Config
		if err := config.Load(&c, opts...); err != nil {
			return backend{}, err
		}
		s, err := sqlitestore.Open(ctx, c)
		if err != nil {
			return backend{}, err
		}
		return backend{store: s, ping: s.Ping, close: func(context.Context) error { return s.Close() }}, nil

	case BackendRedis:
		var c redis.Config
		if err := config.Load(&c, opts...); err != nil {
			return backend{}, err
		}
		client, err := redis.Connect(ctx, c)
		if err != nil {
			return backend{}, err
		}
		return backend{
			store: redisstore.New(client, redisstore.WithPrefix(c.KeyPrefix)),
			ping:  redis.Healthcheck(client),
			close: func(context.Context) error { return client.Close() },
		}, nil

	case BackendMongo:
		var c mongo.Config
		if err := config.Load(&c, opts...); err != nil {
			return backend{}, err
		}
		client, err := mongo.New(ctx, c)
		if err != nil {
			return backend{}, err
		}
		coll := client.Database(c.Database).Collection(c.Collection)
		return backend{
			store: mongostore.New(coll),
			ping:  mongo.Healthcheck(client),
			close: client.Disconnect,
		}, nil

	case BackendPostgres:
		var c pg.Config
		if err := config.Load(&c, opts...); err != nil {
			return backend{}, err
		}
		pool, err := pg.Connect(ctx, c)
		if err != nil {
			return backend{}, err
		}
		if err := pg.Migrate(ctx, pool, c, pgstore.Migrations, log); err != nil {
			pool.Close()
			return backend{}, err
		}
		return backend{
			store: pgstore.New(pool),
			ping:  pg.Healthcheck(pool),
			close: func(context.Context) error { pool.Close(); return nil },
		}, nil

	case BackendS3:
		var c s3store.Config
		if err := config.Load(&c, opts...); err != nil {
			return backend{}, err
		}
		s, err := s3store.New(ctx, c)
		if err != nil {
			return backend{}, err
		}
		return backend{store: s, ping: s.Ping, close: noop}, nil
	}
	return backend{}, ErrUnknownBackend
}
