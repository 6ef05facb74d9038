package redis

import (
	"context"
	"errors"

	"github.com/redis/go-redis/v9"
)

// Healthcheck returns a check for the store's ping command.
func Healthcheck(client redis.UniversalClient) func(context.Context) error {
	return func(ctx context.Context) error {
		if client == nil {
			return errors.Join(ErrHealthcheckFailed, ErrNilClient)
		}
		if pong, err := client.Ping(ctx).Result(); err != nil || pong != "PONG" {
			return errors.Join(ErrHealthcheckFailed, err)
		}
		return nil
	}
}
