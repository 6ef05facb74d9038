package subscription

import (
	"log/slog"

	"github.com/dmitrymomot/stockroom/pkg/clock"
	"github.com/dmitrymomot/stockroom/pkg/kvstore"
)

type Option func(*Ledger)

func WithClock(c clock.Clock) Option {
	return func(l *Ledger) {
		if c != nil {
			l.clock = c
		}
	}
}

// WithLocker shares a key locker with other components using the same store.
func WithLocker(lk *kvstore.Locker) Option {
	return func(l *Ledger) {
		if lk != nil {
			l.locker = lk
		}
	}
}

func WithLogger(log *slog.Logger) Option {
	return func(l *Ledger) {
		if log != nil {
			l.logger = log
		}
	}
}

// WithDefaultPackage replaces the Free fallback.
func WithDefaultPackage(p Package) Option {
	return func(l *Ledger) { l.fallback = p }
}
