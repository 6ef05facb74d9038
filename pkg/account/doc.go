// Package account keeps the registry of user accounts under the "users" key.
//
// Usernames are unique and double as identity.ID values, so they are limited
// to characters that are safe inside scoped storage keys. Secrets are bcrypt
// hashes; a record still holding a plaintext password (written before hashing
// was introduced) is accepted once on a matching login and rewritten as a hash.
package account
