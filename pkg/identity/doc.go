// Package identity tells which user's namespace the current caller works in.
//
// An ID is an opaque username; the empty ID is the guest. ID.Scope turns a base
// record key into the key for that namespace ("products" for the guest,
// "products_ayse" for ayse), which is how product lists, packages and usage
// counters stay separated between users.
//
// Resolver keeps two records in the store: the currentUser marker naming the
// signed-in identity and a session record bounding it in time. Current reads
// them, clearing both and reporting the guest when the session has expired or
// belongs to somebody else.
package identity
