// Package kvstore provides the key-value persistence primitive used by every
// stockroom component, together with a typed record layer on top of it.
//
// Store is deliberately tiny: Get, Set and Delete on string blobs. It mirrors
// what a browser's local storage offers, so any backend that can hold a string
// under a key can host the whole application state. Backends live in
// sub-packages (sqlitestore, redisstore, mongostore, pgstore, s3store); an
// in-memory store and an LRU read-through cache live here.
//
// # Records
//
// Load decodes a JSON record and reports an Outcome instead of failing on bad
// data. Missing and corrupt records are handled by the caller in one branch:
//
//	pkg, outcome, err := kvstore.Load[Package](ctx, store, key)
//	if err != nil {
//		return err // backend failure
//	}
//	if outcome != kvstore.Found {
//		pkg = DefaultPackage
//	}
//
// # Locking
//
// Locker hands out one mutex per key. Components wrap their read-modify-write
// cycles with it so that concurrent callers in the same process never interleave
// between the read and the write. It does not coordinate separate processes.
package kvstore
