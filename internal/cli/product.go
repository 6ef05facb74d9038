package cli

import (
	"fmt"
	"sort"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/dmitrymomot/stockroom/pkg/catalog"
)

func (a *app) newAddCmd() *cobra.Command {
	var f catalog.Fields
	cmd := &cobra.Command{
		Use:   "add <name>",
		Short: "Add a product (uses one unit of weekly quota)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f.Name = args[0]
			res, err := a.svc.AddProduct(cmd.Context(), f)
			if err != nil {
				return err
			}
			a.message("Added %s. Remaining this week: %s.", res.Product.Name, res.Remaining)
			return a.print(res, func() *Table { return productTable(res.Product) })
		},
	}
	productFlags(cmd, &f)
	return cmd
}

func (a *app) newEditCmd() *cobra.Command {
	var f catalog.Fields
	cmd := &cobra.Command{
		Use:   "edit <id>",
		Short: "Change product fields; flags not given keep their value",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			products, err := a.svc.Products(ctx)
			if err != nil {
				return err
			}
			current, ok := find(products, args[0])
			if !ok {
				return fmt.Errorf("%w: %s", catalog.ErrNotFound, args[0])
			}

			flags := cmd.Flags()
			merged := catalog.Fields{
				Name:        pick(flags.Changed("name"), f.Name, current.Name),
				Category:    pick(flags.Changed("category"), f.Category, current.Category),
				Quantity:    pick(flags.Changed("qty"), f.Quantity, current.Quantity),
				Price:       pick(flags.Changed("price"), f.Price, current.Price),
				Description: pick(flags.Changed("description"), f.Description, current.Description),
			}
			p, err := a.svc.EditProduct(ctx, args[0], merged)
			if err != nil {
				return err
			}
			a.message("Saved %s.", p.Name)
			return a.print(p, func() *Table { return productTable(p) })
		},
	}
	cmd.Flags().StringVar(&f.Name, "name", "", "product name")
	productFlags(cmd, &f)
	return cmd
}

func (a *app) newQtyCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "qty <id> <delta>",
		Short: "Change stock by delta (never below zero)",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			delta, err := strconv.Atoi(args[1])
			if err != nil {
				return fmt.Errorf("delta must be a whole number: %w", err)
			}
			p, err := a.svc.ChangeQuantity(cmd.Context(), args[0], delta)
			if err != nil {
				return err
			}
			return a.print(p, func() *Table { return productTable(p) })
		},
	}
}

func (a *app) newRmCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "rm <id>",
		Short: "Delete a product",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.svc.DeleteProduct(cmd.Context(), args[0]); err != nil {
				return err
			}
			a.message("Deleted %s.", args[0])
			return nil
		},
	}
}

func (a *app) newClearCmd() *cobra.Command {
	var yes bool
	cmd := &cobra.Command{
		Use:   "clear",
		Short: "Delete every product (quota already used stays used)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if !yes {
				return ErrConfirmationNeeded
			}
			if err := a.svc.DeleteAll(cmd.Context()); err != nil {
				return err
			}
			a.message("All products deleted.")
			return nil
		},
	}
	cmd.Flags().BoolVar(&yes, "yes", false, "confirm deleting everything")
	return cmd
}

func (a *app) newListCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List products",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			products, err := a.svc.Products(cmd.Context())
			if err != nil {
				return err
			}
			return a.printProducts(products)
		},
	}
}

func (a *app) newSearchCmd() *cobra.Command {
	var q catalog.Query
	cmd := &cobra.Command{
		Use:   "search [text]",
		Short: "Find products by name or description, optionally within a category",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 1 {
				q.Text = args[0]
			}
			products, err := a.svc.Search(cmd.Context(), q)
			if err != nil {
				return err
			}
			return a.printProducts(products)
		},
	}
	cmd.Flags().StringVarP(&q.Category, "category", "c", "", "exact category")
	return cmd
}

func (a *app) newStatsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show stock totals",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			s, err := a.svc.Stats(cmd.Context())
			if err != nil {
				return err
			}
			return a.print(s, func() *Table {
				t := NewTable("CATEGORY", "PRODUCTS")
				categories := make([]string, 0, len(s.ByCategory))
				for c := range s.ByCategory {
					categories = append(categories, c)
				}
				sort.Strings(categories)
				for _, c := range categories {
					name := c
					if name == "" {
						name = "-"
					}
					t.AddRow(name, itoa(s.ByCategory[c]))
				}
				t.AddRow("TOTAL", fmt.Sprintf("%d (stock %d, value %s)", s.Products, s.Stock, money(s.Value)))
				return t
			})
		},
	}
}

func (a *app) printProducts(products []catalog.Product) error {
	return a.print(products, func() *Table {
		t := NewTable("ID", "NAME", "CATEGORY", "QTY", "PRICE", "VALUE", "ADDED")
		for _, p := range products {
			t.AddRow(p.ID, truncate(p.Name, 32), truncate(p.Category, 16), itoa(p.Quantity),
				money(p.Price), money(p.Value()), p.DateAdded.Format(time.DateOnly))
		}
		return t
	})
}

func productTable(p catalog.Product) *Table {
	t := NewTable("ID", "NAME", "CATEGORY", "QTY", "PRICE", "DESCRIPTION")
	t.AddRow(p.ID, p.Name, p.Category, itoa(p.Quantity), money(p.Price), truncate(p.Description, 40))
	return t
}

// productFlags registers the editable fields except the name.
// Cobra rejects non-numeric --qty and --price before RunE.
func productFlags(cmd *cobra.Command, f *catalog.Fields) {
	cmd.Flags().StringVarP(&f.Category, "category", "c", "", "category")
	cmd.Flags().IntVarP(&f.Quantity, "qty", "q", 0, "quantity in stock")
	cmd.Flags().Float64Var(&f.Price, "price", 0, "unit price")
	cmd.Flags().StringVarP(&f.Description, "description", "d", "", "free text description")
}

func find(products []catalog.Product, id string) (catalog.Product, bool) {
	for _, p := range products {
		if p.ID == id {
			return p, true
		}
	}
	return catalog.Product{}, false
}

func pick[T any](changed bool, flag, current T) T {
	if changed {
		return flag
	}
	return current
}

func itoa(n int) string { return strconv.Itoa(n) }
