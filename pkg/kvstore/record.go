package kvstore

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
)

// Outcome tells how a record read went.
type Outcome int

const (
	// Missing means nothing is stored under the key (or it holds JSON null).
	Missing Outcome = iota
	// Found means the record decoded cleanly.
	Found
	// Corrupt means a value exists but does not decode into the record type.
	Corrupt
)

func (o Outcome) String() string {
	switch o {
	case Found:
		return "found"
	case Corrupt:
		return "corrupt"
	default:
		return "missing"
	}
}

// Load reads and decodes the JSON record under key.
// The returned error is reserved for backend failures; bad data is reported
// through the Outcome and never as an error.
func Load[T any](ctx context.Context, s Store, key string) (T, Outcome, error) {
	var zero T

	raw, err := s.Get(ctx, key)
	if errors.Is(err, ErrNotFound) {
		return zero, Missing, nil
	}
	if err != nil {
		return zero, Missing, err
	}

	trimmed := strings.TrimSpace(raw)
	if trimmed == "" || trimmed == "null" {
		return zero, Missing, nil
	}

	var v T
	if err := json.Unmarshal([]byte(trimmed), &v); err != nil {
		return zero, Corrupt, nil
	}
	return v, Found, nil
}

// Save encodes v as JSON and stores it under key.
func Save[T any](ctx context.Context, s Store, key string, v T) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return errors.Join(ErrEncodeRecord, err)
	}
	return s.Set(ctx, key, string(raw))
}
