package cli

import "errors"

var (
	ErrUnknownBackend      = errors.New("unknown storage backend")
	ErrFailedToOpenStore   = errors.New("failed to open storage backend")
	ErrInvalidOutputFormat = errors.New("invalid output format")
	ErrConfirmationNeeded  = errors.New("refusing to delete every product without --yes")
)
