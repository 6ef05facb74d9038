package identity

import (
	"log/slog"
	"time"

	"github.com/dmitrymomot/stockroom/pkg/clock"
)

const (
	DefaultSessionTTL  = 24 * time.Hour
	DefaultRememberTTL = 30 * 24 * time.Hour
)

type Option func(*Resolver)

func WithClock(c clock.Clock) Option {
	return func(r *Resolver) {
		if c != nil {
			r.clock = c
		}
	}
}

// WithSessionTTL sets how long a plain sign-in lasts.
func WithSessionTTL(d time.Duration) Option {
	return func(r *Resolver) {
		if d > 0 {
			r.ttl = d
		}
	}
}

// WithRememberTTL sets how long a remember-me sign-in lasts.
func WithRememberTTL(d time.Duration) Option {
	return func(r *Resolver) {
		if d > 0 {
			r.rememberTTL = d
		}
	}
}

func WithLogger(l *slog.Logger) Option {
	return func(r *Resolver) {
		if l != nil {
			r.logger = l
		}
	}
}
