// Package catalog stores each identity's products as one ordered list under the
// identity-scoped "products" key.
//
// The catalog does not check quota; callers ask the subscription ledger first
// and only then call Add. Every mutation validates its input before touching
// storage and runs under a per-list lock. Lists written before products carried
// ids are migrated on first read: missing ids are generated and the list is
// saved back.
//
// Search folds case and diacritics on both sides, so "ı", "I" and "İ" all match
// "İğne", and combines the text match with an exact category filter.
package catalog
