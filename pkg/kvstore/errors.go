package kvstore

import "errors"

var (
	// ErrNotFound is returned by Store.Get when the key holds no value.
	ErrNotFound = errors.New("kvstore: key not found")

	// ErrEmptyKey is returned when an operation receives an empty key.
	ErrEmptyKey = errors.New("kvstore: empty key")

	// ErrEncodeRecord is returned when a record cannot be serialised.
	ErrEncodeRecord = errors.New("kvstore: failed to encode record")
)
