package cli

import (
	"github.com/spf13/cobra"

	"github.com/dmitrymomot/stockroom/pkg/subscription"
)

func (a *app) newPlansCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "plans",
		Short: "List subscription plans",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			plans := a.svc.Plans()
			return a.print(plans, func() *Table {
				t := NewTable("ID", "NAME", "WEEKLY LIMIT", "PRICE", "DESCRIPTION")
				for _, p := range plans {
					t.AddRow(p.ID, p.Name, p.Limit.String(), money(p.Price), truncate(p.Description, 40))
				}
				return t
			})
		},
	}
}

func (a *app) newBuyCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "buy <plan>",
		Short: "Switch to another plan (no payment is taken)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			status, err := a.svc.Checkout(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			a.message("You are now on the %s plan.", status.Package.Name)
			return a.printStatus(status)
		},
	}
}

func (a *app) newQuotaCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "quota",
		Short: "Show the current package and this week's usage",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ov, err := a.svc.Overview(cmd.Context())
			if err != nil {
				return err
			}
			return a.print(ov, func() *Table {
				who := "guest"
				if ov.User != nil {
					who = ov.User.DisplayName
				}
				t := NewTable("USER", "PACKAGE", "LIMIT", "WEEK OF", "USED", "REMAINING", "RESETS", "PRODUCTS")
				t.AddRow(who, ov.Status.Package.Name, ov.Status.Package.Limit.String(),
					ov.Status.Usage.WeekStart.String(), itoa(ov.Status.Usage.Count),
					ov.Status.Remaining.String(), ov.Status.ResetsOn.String(), itoa(ov.Stats.Products))
				return t
			})
		},
	}
}

func (a *app) printStatus(s subscription.Status) error {
	return a.print(s, func() *Table {
		t := NewTable("PACKAGE", "LIMIT", "WEEK OF", "USED", "REMAINING", "RESETS")
		t.AddRow(s.Package.Name, s.Package.Limit.String(), s.Usage.WeekStart.String(),
			itoa(s.Usage.Count), s.Remaining.String(), s.ResetsOn.String())
		return t
	})
}
