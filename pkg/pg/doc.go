// Package pg connects stockroom to PostgreSQL through pgx/v5 and applies the
// schema with goose.
//
// Connect opens a *pgxpool.Pool and pings it, retrying with a linear back-off.
// Migrate runs goose migrations from any fs.FS against that pool, so packages can
// ship their schema embedded next to the code that uses it (see
// pkg/kvstore/pgstore). Healthcheck returns a ping check, and IsNotFoundError
// recognises an empty result.
//
//	pool, err := pg.Connect(ctx, cfg)
//	if err != nil {
//		return err
//	}
//	if err := pg.Migrate(ctx, pool, cfg, pgstore.Migrations, log); err != nil {
//		return err
//	}
package pg
