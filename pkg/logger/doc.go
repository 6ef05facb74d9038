// Package logger builds the *slog.Logger used across stockroom.
//
// New applies functional options over a JSON-at-info default: pick the format
// and level, add static attributes, or register ContextExtractor callbacks that
// pull values out of the context on every record. WithEnvironment bundles the
// usual development (text, debug) and production (json, info) presets.
//
// The attribute helpers in attr.go keep key names stable between packages:
//
//	log := logger.New(logger.WithEnvironment(os.Getenv("APP_ENV"), "stockroom"))
//	log.InfoContext(ctx, "product added",
//		logger.Identity(id), logger.ProductID(p.ID), logger.Remaining(grant.Remaining))
//
// Libraries in this module accept an optional logger and fall back to Discard.
package logger
