package subscription

import (
	"context"
	"errors"
	"log/slog"

	"github.com/dmitrymomot/stockroom/pkg/clock"
	"github.com/dmitrymomot/stockroom/pkg/identity"
	"github.com/dmitrymomot/stockroom/pkg/kvstore"
	"github.com/dmitrymomot/stockroom/pkg/logger"
	"github.com/dmitrymomot/stockroom/pkg/week"
)

// Base record keys, scoped per identity.
const (
	PackageKey = "package"
	UsageKey   = "weekly"
)

// Ledger reads and updates packages and weekly usage in a kvstore.Store.
// It is safe for concurrent use within one process.
type Ledger struct {
	store    kvstore.Store
	clock    clock.Clock
	locker   *kvstore.Locker
	logger   *slog.Logger
	fallback Package
}

func NewLedger(store kvstore.Store, opts ...Option) *Ledger {
	if store == nil {
		panic("subscription: store cannot be nil")
	}
	l := &Ledger{
		store:    store,
		clock:    clock.System(),
		locker:   &kvstore.Locker{},
		logger:   logger.Discard(),
		fallback: DefaultPackage,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// LoadPackage returns the recorded package, or the default when none is valid.
func (l *Ledger) LoadPackage(ctx context.Context, id identity.ID) (Package, error) {
	pkg, outcome, err := kvstore.Load[Package](ctx, l.store, id.Scope(PackageKey))
	if err != nil {
		return Package{}, errors.Join(ErrFailedToLoadPackage, err)
	}
	if outcome != kvstore.Found {
		if outcome == kvstore.Corrupt {
			l.logger.WarnContext(ctx, "corrupt package record, using default",
				logger.Identity(id.String()),
				logger.Package(l.fallback.Name),
			)
		}
		return l.fallback, nil
	}
	return pkg, nil
}

// SavePackage overwrites the package record.
func (l *Ledger) SavePackage(ctx context.Context, id identity.ID, pkg Package) error {
	if err := kvstore.Save(ctx, l.store, id.Scope(PackageKey), pkg); err != nil {
		return errors.Join(ErrFailedToSavePackage, err)
	}
	return nil
}

// EnsurePackage records the default package when id has no valid one yet
// and returns the package in effect.
func (l *Ledger) EnsurePackage(ctx context.Context, id identity.ID) (Package, error) {
	unlock := l.locker.Lock(id.Scope(PackageKey))
	defer unlock()

	pkg, outcome, err := kvstore.Load[Package](ctx, l.store, id.Scope(PackageKey))
	if err != nil {
		return Package{}, errors.Join(ErrFailedToLoadPackage, err)
	}
	if outcome == kvstore.Found {
		return pkg, nil
	}
	if err := l.SavePackage(ctx, id, l.fallback); err != nil {
		return Package{}, err
	}
	return l.fallback, nil
}

// AssignPackage switches id to pkg. Usage already counted this week is kept.
func (l *Ledger) AssignPackage(ctx context.Context, id identity.ID, pkg Package) error {
	if err := l.SavePackage(ctx, id, pkg); err != nil {
		return err
	}
	l.logger.InfoContext(ctx, "package assigned",
		logger.Identity(id.String()),
		logger.Package(pkg.Name),
		slog.String("limit", pkg.Limit.String()),
	)
	return nil
}

// LoadUsage returns the usage record for the current week. A missing, corrupt
// or stale record is replaced with a zero count and written back first.
func (l *Ledger) LoadUsage(ctx context.Context, id identity.ID) (Usage, error) {
	unlock := l.locker.Lock(id.Scope(UsageKey))
	defer unlock()
	return l.currentUsage(ctx, id)
}

// ResetUsage starts a fresh window for the current week.
func (l *Ledger) ResetUsage(ctx context.Context, id identity.ID) (Usage, error) {
	unlock := l.locker.Lock(id.Scope(UsageKey))
	defer unlock()

	fresh := Usage{WeekStart: week.Start(l.clock.Now())}
	if err := l.saveUsage(ctx, id, fresh); err != nil {
		return Usage{}, err
	}
	return fresh, nil
}

// TryConsume takes one add from the weekly quota if the package allows it.
func (l *Ledger) TryConsume(ctx context.Context, id identity.ID) (Grant, error) {
	unlock := l.locker.Lock(id.Scope(UsageKey))
	defer unlock()

	pkg, err := l.LoadPackage(ctx, id)
	if err != nil {
		return Grant{}, err
	}
	usage, err := l.currentUsage(ctx, id)
	if err != nil {
		return Grant{}, err
	}

	if !pkg.Limit.Allows(usage.Count) {
		l.logger.InfoContext(ctx, "weekly quota exhausted",
			logger.Identity(id.String()),
			logger.Package(pkg.Name),
			slog.Int("count", usage.Count),
		)
		return Grant{Granted: false, Remaining: Finite(0)}, nil
	}

	usage.Count++
	if err := l.saveUsage(ctx, id, usage); err != nil {
		return Grant{}, err
	}
	return Grant{Granted: true, Remaining: RemainingQuota(pkg, usage)}, nil
}

// Release hands back one unit consumed this week, for an add that was granted
// but could not be stored. The count never drops below zero.
func (l *Ledger) Release(ctx context.Context, id identity.ID) (Usage, error) {
	unlock := l.locker.Lock(id.Scope(UsageKey))
	defer unlock()

	usage, err := l.currentUsage(ctx, id)
	if err != nil {
		return Usage{}, err
	}
	if usage.Count == 0 {
		return usage, nil
	}
	usage.Count--
	if err := l.saveUsage(ctx, id, usage); err != nil {
		return Usage{}, err
	}
	return usage, nil
}

// Status reads package and usage together.
func (l *Ledger) Status(ctx context.Context, id identity.ID) (Status, error) {
	unlock := l.locker.Lock(id.Scope(UsageKey))
	defer unlock()

	pkg, err := l.LoadPackage(ctx, id)
	if err != nil {
		return Status{}, err
	}
	usage, err := l.currentUsage(ctx, id)
	if err != nil {
		return Status{}, err
	}
	return Status{
		Package:   pkg,
		Usage:     usage,
		Remaining: RemainingQuota(pkg, usage),
		ResetsOn:  usage.WeekStart.AddDays(7),
	}, nil
}

// currentUsage expects the usage lock to be held.
func (l *Ledger) currentUsage(ctx context.Context, id identity.ID) (Usage, error) {
	current := week.Start(l.clock.Now())

	usage, outcome, err := kvstore.Load[Usage](ctx, l.store, id.Scope(UsageKey))
	if err != nil {
		return Usage{}, errors.Join(ErrFailedToLoadUsage, err)
	}
	if outcome == kvstore.Found && usage.WeekStart.Equal(current) {
		return usage, nil
	}

	fresh := Usage{WeekStart: current}
	if err := l.saveUsage(ctx, id, fresh); err != nil {
		return Usage{}, err
	}
	l.logger.DebugContext(ctx, "weekly usage window started",
		logger.Identity(id.String()),
		slog.String("week_start", current.String()),
		slog.String("previous", outcome.String()),
	)
	return fresh, nil
}

func (l *Ledger) saveUsage(ctx context.Context, id identity.ID, u Usage) error {
	if err := kvstore.Save(ctx, l.store, id.Scope(UsageKey), u); err != nil {
		return errors.Join(ErrFailedToSaveUsage, err)
	}
	return nil
}
