package subscription_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/stockroom/pkg/clock"
	"github.com/dmitrymomot/stockroom/pkg/identity"
	"github.com/dmitrymomot/stockroom/pkg/kvstore"
	"github.com/dmitrymomot/stockroom/pkg/subscription"
	"github.com/dmitrymomot/stockroom/pkg/week"
)

// Wednesday 2026-10-21; its week starts on Monday 2026-10-19.
var wednesday = time.Date(2026, time.October, 21, 15, 30, 0, 0, time.UTC)

func newLedger(t *testing.T) (*subscription.Ledger, *kvstore.MemoryStore, *clock.Mock) {
	t.Helper()
	store := kvstore.NewMemoryStore()
	clk := clock.NewMock(wednesday)
	return subscription.NewLedger(store, subscription.WithClock(clk)), store, clk
}

func TestLedger_LoadPackage(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	ledger, store, _ := newLedger(t)
	id := identity.ID("ayse")

	pkg, err := ledger.LoadPackage(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, subscription.DefaultPackage, pkg)

	for _, raw := range []string{`{"name":"Broken","limit":-3}`, `not json`, `{"name":"x","limit":"many"}`} {
		require.NoError(t, store.Set(ctx, "package_ayse", raw))
		pkg, err = ledger.LoadPackage(ctx, id)
		require.NoError(t, err)
		assert.Equal(t, subscription.DefaultPackage, pkg, raw)
	}

	standard := subscription.Package{Name: "Standard", Limit: subscription.Finite(500)}
	require.NoError(t, ledger.SavePackage(ctx, id, standard))
	pkg, err = ledger.LoadPackage(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, standard, pkg)

	guest, err := ledger.LoadPackage(ctx, identity.Guest)
	require.NoError(t, err)
	assert.Equal(t, subscription.DefaultPackage, guest)
}

func TestLedger_LoadUsage_Idempotent(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	ledger, store, _ := newLedger(t)

	first, err := ledger.LoadUsage(ctx, "ayse")
	require.NoError(t, err)
	second, err := ledger.LoadUsage(ctx, "ayse")
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, week.Date{Year: 2026, Month: time.October, Day: 19}, first.WeekStart)
	assert.Zero(t, first.Count)
	assert.JSONEq(t, `{"weekStart":"2026-10-19","count":0}`, store.Snapshot()["weekly_ayse"])
}

func TestLedger_LoadUsage_WeekBoundaryResets(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	ledger, store, _ := newLedger(t)
	require.NoError(t, store.Set(ctx, "weekly_ayse", `{"weekStart":"2026-10-12","count":100}`))

	usage, err := ledger.LoadUsage(ctx, "ayse")
	require.NoError(t, err)
	assert.Zero(t, usage.Count)
	assert.Equal(t, "2026-10-19", usage.WeekStart.String())
	assert.JSONEq(t, `{"weekStart":"2026-10-19","count":0}`, store.Snapshot()["weekly_ayse"])
}

func TestLedger_LoadUsage_CorruptResets(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	ledger, store, _ := newLedger(t)

	for _, raw := range []string{`{`, `{"weekStart":"2026-10-19","count":-4}`, `{"weekStart":"yesterday","count":2}`} {
		require.NoError(t, store.Set(ctx, "weekly", raw))
		usage, err := ledger.LoadUsage(ctx, identity.Guest)
		require.NoError(t, err)
		assert.Zero(t, usage.Count, raw)
	}
}

func TestLedger_TryConsume_FiniteLimit(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	ledger, _, _ := newLedger(t)
	id := identity.ID("ayse")
	require.NoError(t, ledger.SavePackage(ctx, id, subscription.Package{Name: "Tiny", Limit: subscription.Finite(3)}))

	var granted []bool
	for range 4 {
		g, err := ledger.TryConsume(ctx, id)
		require.NoError(t, err)
		granted = append(granted, g.Granted)
	}
	assert.Equal(t, []bool{true, true, true, false}, granted)

	usage, err := ledger.LoadUsage(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, 3, usage.Count)
}

func TestLedger_TryConsume_RemainingAndRefusal(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	ledger, store, _ := newLedger(t)
	require.NoError(t, ledger.SavePackage(ctx, "ayse", subscription.Package{Name: "Two", Limit: subscription.Finite(2)}))

	g, err := ledger.TryConsume(ctx, "ayse")
	require.NoError(t, err)
	assert.Equal(t, subscription.Grant{Granted: true, Remaining: subscription.Finite(1)}, g)

	g, err = ledger.TryConsume(ctx, "ayse")
	require.NoError(t, err)
	assert.Equal(t, subscription.Grant{Granted: true, Remaining: subscription.Finite(0)}, g)

	before := store.Snapshot()
	g, err = ledger.TryConsume(ctx, "ayse")
	require.NoError(t, err)
	assert.Equal(t, subscription.Grant{Granted: false, Remaining: subscription.Finite(0)}, g)
	assert.Equal(t, before, store.Snapshot())
}

func TestLedger_FreeThenUnlimited(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	ledger, _, _ := newLedger(t)
	id := identity.ID("ayse")

	for i := range 100 {
		g, err := ledger.TryConsume(ctx, id)
		require.NoError(t, err)
		require.True(t, g.Granted, "add %d", i+1)
	}

	g, err := ledger.TryConsume(ctx, id)
	require.NoError(t, err)
	assert.False(t, g.Granted)

	require.NoError(t, ledger.AssignPackage(ctx, id, subscription.Package{Name: "Unlimited", Limit: subscription.Unlimited}))
	g, err = ledger.TryConsume(ctx, id)
	require.NoError(t, err)
	assert.True(t, g.Granted)
	assert.True(t, g.Remaining.IsUnlimited())

	usage, err := ledger.LoadUsage(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, 101, usage.Count)
}

func TestLedger_DowngradeKeepsCount(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	ledger, _, _ := newLedger(t)
	require.NoError(t, ledger.AssignPackage(ctx, "ayse", subscription.Package{Name: "Unlimited", Limit: subscription.Unlimited}))
	for range 5 {
		_, err := ledger.TryConsume(ctx, "ayse")
		require.NoError(t, err)
	}

	require.NoError(t, ledger.AssignPackage(ctx, "ayse", subscription.Package{Name: "Tiny", Limit: subscription.Finite(3)}))
	status, err := ledger.Status(ctx, "ayse")
	require.NoError(t, err)
	assert.Equal(t, 5, status.Usage.Count)
	assert.Equal(t, subscription.Finite(0), status.Remaining)

	g, err := ledger.TryConsume(ctx, "ayse")
	require.NoError(t, err)
	assert.False(t, g.Granted)
}

func TestLedger_NextWeekRestoresQuota(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	ledger, _, clk := newLedger(t)
	require.NoError(t, ledger.SavePackage(ctx, "ayse", subscription.Package{Name: "One", Limit: subscription.Finite(1)}))

	g, err := ledger.TryConsume(ctx, "ayse")
	require.NoError(t, err)
	require.True(t, g.Granted)

	// Sunday evening is still the same week.
	clk.Set(time.Date(2026, time.October, 25, 23, 59, 0, 0, time.UTC))
	g, err = ledger.TryConsume(ctx, "ayse")
	require.NoError(t, err)
	assert.False(t, g.Granted)

	clk.Set(time.Date(2026, time.October, 26, 0, 0, 1, 0, time.UTC))
	g, err = ledger.TryConsume(ctx, "ayse")
	require.NoError(t, err)
	assert.True(t, g.Granted)
}

func TestLedger_StatusResetsOn(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	ledger, _, clk := newLedger(t)

	status, err := ledger.Status(ctx, "ayse")
	require.NoError(t, err)
	assert.Equal(t, week.Date{Year: 2026, Month: time.October, Day: 19}, status.Usage.WeekStart)
	assert.Equal(t, week.Date{Year: 2026, Month: time.October, Day: 26}, status.ResetsOn)

	// Crosses a month boundary.
	clk.Set(time.Date(2026, time.October, 29, 9, 0, 0, 0, time.UTC))
	status, err = ledger.Status(ctx, "ayse")
	require.NoError(t, err)
	assert.Equal(t, week.Date{Year: 2026, Month: time.November, Day: 2}, status.ResetsOn)
}

func TestLedger_IdentitiesAreIsolated(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	ledger, _, _ := newLedger(t)
	require.NoError(t, ledger.SavePackage(ctx, "ayse", subscription.Package{Name: "One", Limit: subscription.Finite(1)}))

	_, err := ledger.TryConsume(ctx, "ayse")
	require.NoError(t, err)

	other, err := ledger.Status(ctx, "mehmet")
	require.NoError(t, err)
	assert.Equal(t, subscription.DefaultPackage, other.Package)
	assert.Zero(t, other.Usage.Count)
	assert.Equal(t, subscription.Finite(100), other.Remaining)
}

func TestLedger_ResetUsage(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	ledger, _, _ := newLedger(t)
	for range 3 {
		_, err := ledger.TryConsume(ctx, "ayse")
		require.NoError(t, err)
	}

	usage, err := ledger.ResetUsage(ctx, "ayse")
	require.NoError(t, err)
	assert.Zero(t, usage.Count)

	status, err := ledger.Status(ctx, "ayse")
	require.NoError(t, err)
	assert.Equal(t, subscription.Finite(100), status.Remaining)
}

func TestLedger_ConcurrentConsumeNeverExceedsLimit(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	ledger, _, _ := newLedger(t)
	require.NoError(t, ledger.SavePackage(ctx, "ayse", subscription.Package{Name: "Ten", Limit: subscription.Finite(10)}))

	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		granted int
	)
	for range 50 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			g, err := ledger.TryConsume(ctx, "ayse")
			assert.NoError(t, err)
			if g.Granted {
				mu.Lock()
				granted++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 10, granted)
	usage, err := ledger.LoadUsage(ctx, "ayse")
	require.NoError(t, err)
	assert.Equal(t, 10, usage.Count)
}

func TestLedger_EnsurePackage(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	ledger, store, _ := newLedger(t)

	pkg, err := ledger.EnsurePackage(ctx, "ayse")
	require.NoError(t, err)
	assert.Equal(t, subscription.DefaultPackage, pkg)
	assert.JSONEq(t, `{"name":"Free","limit":100}`, store.Snapshot()["package_ayse"])

	unl := subscription.Package{Name: "Unlimited", Limit: subscription.Unlimited}
	require.NoError(t, ledger.AssignPackage(ctx, "ayse", unl))
	pkg, err = ledger.EnsurePackage(ctx, "ayse")
	require.NoError(t, err)
	assert.Equal(t, unl, pkg)
}

func TestLedger_Release(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	ledger, _, _ := newLedger(t)

	usage, err := ledger.Release(ctx, "ayse")
	require.NoError(t, err)
	assert.Zero(t, usage.Count, "never below zero")

	for range 2 {
		_, err := ledger.TryConsume(ctx, "ayse")
		require.NoError(t, err)
	}
	usage, err = ledger.Release(ctx, "ayse")
	require.NoError(t, err)
	assert.Equal(t, 1, usage.Count)

	status, err := ledger.Status(ctx, "ayse")
	require.NoError(t, err)
	assert.Equal(t, subscription.Finite(99), status.Remaining)
}
