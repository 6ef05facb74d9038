package cli

import (
	"context"
	"time"

	"github.com/spf13/cobra"

	"github.com/dmitrymomot/stockroom/pkg/kvstore"
)

type pinger interface {
	Ping(ctx context.Context) error
}

// injected wraps a store handed in with WithStore. It is never closed.
func injected(s kvstore.Store) backend {
	b := backend{name: "injected", store: s, ping: noop, close: noop}
	if p, ok := s.(pinger); ok {
		b.ping = p.Ping
	}
	return b
}

func (a *app) newPingCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "ping",
		Short: "Check that the storage backend is reachable",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			start := time.Now()
			if err := a.backend.ping(cmd.Context()); err != nil {
				return err
			}
			took := time.Since(start).Round(time.Microsecond)
			result := map[string]string{"backend": a.backend.name, "status": "ok", "latency": took.String()}
			return a.print(result, func() *Table {
				t := NewTable("BACKEND", "STATUS", "LATENCY")
				t.AddRow(a.backend.name, "ok", took.String())
				return t
			})
		},
	}
}
