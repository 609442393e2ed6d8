package cli

import (
	"fmt"
	"io"

	"orderdesk/internal/invoice"
	"orderdesk/internal/model"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

func (a *app) productsCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "products",
		Aliases: []string{"product"},
		Short:   "Inspect the product catalogue",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List products",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			products, err := a.client().Products(cmd.Context())
			if err != nil {
				return err
			}
			return renderProducts(cmd.OutOrStdout(), products)
		},
	})
	return cmd
}

func renderProducts(out io.Writer, products []model.Product) error {
	table := tablewriter.NewWriter(out)
	table.Header("ID", "Name", "Price", "Status")
	for _, p := range products {
		if err := table.Append(p.ID, p.Name, invoice.Amount(p.Price), string(p.Status)); err != nil {
			return fmt.Errorf("failed to render products: %w", err)
		}
	}
	if err := table.Render(); err != nil {
		return fmt.Errorf("failed to render products: %w", err)
	}
	return nil
}

func (a *app) summaryCommand() *cobra.Command {
	var days int

	cmd := &cobra.Command{
		Use:   "summary",
		Short: "Show order counts and revenue for the last days",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			c := a.client()

			var (
				summary  *model.Summary
				products []model.Product
			)
			g, ctx := errgroup.WithContext(cmd.Context())
			g.Go(func() error {
				var err error
				summary, err = c.Summary(ctx, days)
				return err
			})
			g.Go(func() error {
				var err error
				products, err = c.Products(ctx)
				return err
			})
			if err := g.Wait(); err != nil {
				return err
			}

			return renderSummary(cmd.OutOrStdout(), summary, products)
		},
	}
	cmd.Flags().IntVarP(&days, "days", "d", 7, "number of days to cover (1-365)")
	return cmd
}

func renderSummary(out io.Writer, s *model.Summary, products []model.Product) error {
	fmt.Fprintf(out, "Orders: %d  Revenue: %s\n", s.TotalOrders, invoice.Amount(s.TotalRevenue))

	byStatus := tablewriter.NewWriter(out)
	byStatus.Header("Status", "Orders")
	for _, st := range model.Statuses {
		if err := byStatus.Append(st.String(), s.ByStatus[st]); err != nil {
			return fmt.Errorf("failed to render summary: %w", err)
		}
	}
	if err := byStatus.Render(); err != nil {
		return fmt.Errorf("failed to render summary: %w", err)
	}

	daily := tablewriter.NewWriter(out)
	daily.Header("Day", "Orders", "Revenue")
	for _, d := range s.Daily {
		if err := daily.Append(d.Day, d.Orders, invoice.Amount(d.Revenue)); err != nil {
			return fmt.Errorf("failed to render summary: %w", err)
		}
	}
	if err := daily.Render(); err != nil {
		return fmt.Errorf("failed to render summary: %w", err)
	}

	available := 0
	for _, p := range products {
		if p.Status == model.ProductAvailable {
			available++
		}
	}
	fmt.Fprintf(out, "Products: %d available of %d\n", available, len(products))
	return nil
}
