// Package cli implements the stockroom command line: a cobra command tree over
// svc/shop with table, json and yaml output. The storage backend and logger
// are chosen from the environment when the first command runs.
package cli
