// Package redis connects stockroom to a Redis server.
//
// Connect parses the connection URL, pings the server and retries according to
// Config, so callers get either a ready client or a sentinel error they can
// match with errors.Is. Healthcheck returns a check suitable for readiness
// checks. The key-value adapter built on the client lives in
// pkg/kvstore/redisstore.
//
//	var cfg redis.Config
//	config.MustLoad(&cfg)
//
//	client, err := redis.Connect(ctx, cfg)
//	if err != nil {
//		return err
//	}
//	defer client.Close()
//
//	store := redisstore.New(client, redisstore.WithPrefix("stockroom:"))
package redis
