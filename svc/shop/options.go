package shop

import (
	"log/slog"

	"github.com/dmitrymomot/stockroom/pkg/clock"
	"github.com/dmitrymomot/stockroom/pkg/subscription"
)

type Option func(*options)

type options struct {
	clock      clock.Clock
	logger     *slog.Logger
	plans      *subscription.Plans
	bcryptCost int
}

func WithClock(c clock.Clock) Option {
	return func(o *options) {
		if c != nil {
			o.clock = c
		}
	}
}

func WithLogger(l *slog.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.logger = l
		}
	}
}

// WithPlans replaces the built-in plan catalog.
func WithPlans(p *subscription.Plans) Option {
	return func(o *options) {
		if p != nil {
			o.plans = p
		}
	}
}

// WithBcryptCost is mostly useful to speed up tests.
func WithBcryptCost(cost int) Option {
	return func(o *options) {
		if cost > 0 {
			o.bcryptCost = cost
		}
	}
}
