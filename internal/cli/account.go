package cli

import (
	"github.com/spf13/cobra"

	"github.com/dmitrymomot/stockroom/pkg/account"
	"github.com/dmitrymomot/stockroom/svc/shop"
)

func (a *app) newSignupCmd() *cobra.Command {
	var in shop.SignupInput
	cmd := &cobra.Command{
		Use:   "signup <username>",
		Short: "Create an account and sign in",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			in.Username = args[0]
			u, err := a.svc.Signup(cmd.Context(), in)
			if err != nil {
				return err
			}
			a.message("Welcome, %s.", u.DisplayName)
			return a.printUser(u)
		},
	}
	cmd.Flags().StringVarP(&in.Password, "password", "p", "", "account password")
	cmd.Flags().StringVar(&in.DisplayName, "display-name", "", "name shown in the header (defaults to the username)")
	cmd.Flags().BoolVar(&in.Remember, "remember", false, "keep the session for 30 days")
	_ = cmd.MarkFlagRequired("password")
	return cmd
}

func (a *app) newLoginCmd() *cobra.Command {
	var (
		password string
		remember bool
	)
	cmd := &cobra.Command{
		Use:   "login <username>",
		Short: "Sign in",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			res, err := a.svc.Login(cmd.Context(), args[0], password, remember)
			if err != nil {
				return err
			}
			a.message("Signed in as %s.", res.User.DisplayName)
			if res.PendingAction == shop.PendingBuy {
				a.message("You started a purchase before signing in; run 'stockroom buy <plan>' to finish it.")
			}
			return a.print(res, func() *Table {
				t := NewTable("USERNAME", "DISPLAY NAME", "PENDING")
				t.AddRow(res.User.Username, res.User.DisplayName, res.PendingAction)
				return t
			})
		},
	}
	cmd.Flags().StringVarP(&password, "password", "p", "", "account password")
	cmd.Flags().BoolVar(&remember, "remember", false, "keep the session for 30 days")
	_ = cmd.MarkFlagRequired("password")
	return cmd
}

func (a *app) newLogoutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Sign out and continue as guest",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := a.svc.Logout(cmd.Context()); err != nil {
				return err
			}
			a.message("Signed out.")
			return nil
		},
	}
}

func (a *app) newWhoamiCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the signed-in user",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			u, ok, err := a.svc.CurrentUser(cmd.Context())
			if err != nil {
				return err
			}
			if !ok {
				a.message("guest")
				if a.format != FormatTable {
					return a.print(map[string]any{"guest": true}, nil)
				}
				return nil
			}
			return a.printUser(u)
		},
	}
}

func (a *app) newUsersCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "users",
		Short: "List the accounts registered on this store",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			users, err := a.svc.Users(cmd.Context())
			if err != nil {
				return err
			}
			return a.print(users, func() *Table {
				t := NewTable("USERNAME", "NAME")
				for _, u := range users {
					t.AddRow(u.Username, u.DisplayName)
				}
				return t
			})
		},
	}
}

func (a *app) newSettingsCmd() *cobra.Command {
	var s account.Settings
	cmd := &cobra.Command{
		Use:   "settings",
		Short: "Change display name or password",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			u, err := a.svc.UpdateSettings(cmd.Context(), s)
			if err != nil {
				return err
			}
			a.message("Settings saved.")
			return a.printUser(u)
		},
	}
	cmd.Flags().StringVar(&s.DisplayName, "display-name", "", "new display name")
	cmd.Flags().StringVar(&s.Password, "password", "", "new password")
	cmd.MarkFlagsOneRequired("display-name", "password")
	return cmd
}

func (a *app) printUser(u account.User) error {
	return a.print(u, func() *Table {
		t := NewTable("USERNAME", "DISPLAY NAME")
		t.AddRow(u.Username, u.DisplayName)
		return t
	})
}
