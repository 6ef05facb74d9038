package cli

import (
	"context"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/dmitrymomot/stockroom/pkg/config"
	"github.com/dmitrymomot/stockroom/pkg/kvstore"
	"github.com/dmitrymomot/stockroom/pkg/logger"
	"github.com/dmitrymomot/stockroom/pkg/subscription"
	"github.com/dmitrymomot/stockroom/svc/shop"
)

// Option configures the command tree. Tests use them to swap the environment,
// the outputs and the store.
type Option func(*app)

// WithOutput sets where results and logs are written.
func WithOutput(out, errOut io.Writer) Option {
	return func(a *app) {
		if out != nil {
			a.out = out
		}
		if errOut != nil {
			a.errOut = errOut
		}
	}
}

// WithEnvironment reads configuration from vars instead of the process environment.
func WithEnvironment(vars map[string]string) Option {
	return func(a *app) { a.env = vars }
}

// WithStore bypasses STOCKROOM_STORE. The store is not closed by the CLI.
func WithStore(s kvstore.Store) Option {
	return func(a *app) { a.store = s }
}

// WithServiceOptions passes extra options to shop.New.
func WithServiceOptions(opts ...shop.Option) Option {
	return func(a *app) { a.serviceOpts = append(a.serviceOpts, opts...) }
}

type app struct {
	out, errOut io.Writer
	env         map[string]string
	store       kvstore.Store
	serviceOpts []shop.Option

	format  string
	svc     *shop.Service
	logger  *slog.Logger
	backend backend
}

// NewRootCmd builds the stockroom command tree.
func NewRootCmd(opts ...Option) *cobra.Command {
	a := &app{out: os.Stdout, errOut: os.Stderr, logger: logger.Discard()}
	for _, opt := range opts {
		opt(a)
	}

	root := &cobra.Command{
		Use:   "stockroom",
		Short: "Track product inventory within a weekly subscription quota",
		Long: `stockroom keeps a product inventory per user. Every plan allows a number
of new products per week (Monday to Sunday); editing, restocking and deleting
products is always free.`,
		PersistentPreRunE:  a.setup,
		PersistentPostRunE: a.teardown,
		SilenceUsage:       true,
		SilenceErrors:      true,
	}
	root.SetOut(a.out)
	root.SetErr(a.errOut)
	root.PersistentFlags().StringVarP(&a.format, "output", "o", FormatTable, "output format: table, json, yaml")

	root.AddCommand(
		a.newSignupCmd(),
		a.newLoginCmd(),
		a.newLogoutCmd(),
		a.newWhoamiCmd(),
		a.newUsersCmd(),
		a.newSettingsCmd(),
		a.newPlansCmd(),
		a.newBuyCmd(),
		a.newQuotaCmd(),
		a.newAddCmd(),
		a.newQtyCmd(),
		a.newEditCmd(),
		a.newRmCmd(),
		a.newClearCmd(),
		a.newListCmd(),
		a.newSearchCmd(),
		a.newStatsCmd(),
		a.newLangCmd(),
		a.newPingCmd(),
	)
	return root
}

// Execute runs the CLI against the process environment.
func Execute(ctx context.Context) error {
	return NewRootCmd().ExecuteContext(ctx)
}

func (a *app) configOptions() []config.Option {
	if a.env == nil {
		return nil
	}
	return []config.Option{config.WithEnvironment(a.env)}
}

func (a *app) setup(cmd *cobra.Command, _ []string) error {
	if err := checkFormat(a.format); err != nil {
		return err
	}

	var cfg Config
	if err := config.Load(&cfg, a.configOptions()...); err != nil {
		return err
	}
	log, err := cfg.logger(a.errOut)
	if err != nil {
		return err
	}
	a.logger = log.With(logger.Command(cmd.Name()))

	// Everything that can fail runs before the backend is opened: cobra skips
	// PersistentPostRunE when this hook errors, so nothing would close it.
	opts := []shop.Option{shop.WithLogger(a.logger)}
	if cfg.PlansFile != "" {
		plans, err := subscription.LoadPlansFile(cfg.PlansFile)
		if err != nil {
			return err
		}
		opts = append(opts, shop.WithPlans(plans))
	}

	if a.store != nil {
		a.backend = injected(a.store)
	} else if a.backend, err = openBackend(cmd.Context(), cfg, a.logger, a.configOptions()...); err != nil {
		return err
	}
	a.svc = shop.New(a.backend.store, append(opts, a.serviceOpts...)...)
	return nil
}

func (a *app) teardown(cmd *cobra.Command, _ []string) error {
	if a.backend.close == nil {
		return nil
	}
	return a.backend.close(cmd.Context())
}
