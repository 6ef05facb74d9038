// Package subscription keeps the weekly add quota for every identity.
//
// Each identity has an active Package (a name and a Limit) and a Usage record
// counting accepted adds in the current Monday-aligned week. The Ledger owns
// both records:
//
//   - LoadPackage falls back to the Free package when nothing valid is stored.
//   - LoadUsage replaces a missing, corrupt or stale usage record with a fresh
//     window and persists it before returning, so repeated reads agree.
//   - TryConsume checks the limit and increments the counter as one step under a
//     per-identity lock. A refusal leaves storage untouched.
//   - AssignPackage swaps the package and keeps the count already used this week.
//
// Limit is either Finite(n) or Unlimited. At the storage boundary it accepts a
// non-negative integer, "unlimited", the infinity spellings "Infinity", "inf" and
// "∞", and JSON null. Anything else makes the package record corrupt.
//
// Plans is the catalog of packages a user can switch to; DefaultPlans provides
// free, standard and unlimited tiers and LoadPlansYAML reads a custom catalog.
//
//	grant, err := ledger.TryConsume(ctx, id)
//	if err != nil {
//		return err
//	}
//	if !grant.Granted {
//		// weekly quota used up
//	}
package subscription
