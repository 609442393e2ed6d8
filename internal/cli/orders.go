package cli

import (
	"fmt"
	"io"
	"strings"

	"orderdesk/internal/board"
	"orderdesk/internal/invoice"
	"orderdesk/internal/model"
	"orderdesk/internal/workflow"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"
)

func (a *app) ordersCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "orders",
		Aliases: []string{"order"},
		Short:   "List, inspect and move orders",
	}
	cmd.AddCommand(
		a.ordersListCommand(),
		a.ordersShowCommand(),
		a.ordersAdvanceCommand(),
		a.ordersMoveCommand("send", "Hand a received order to the courier", model.StatusSended),
		a.ordersMoveCommand("receive", "Take a sended order back to received", model.StatusReceived),
		a.ordersExportCommand(),
	)
	return cmd
}

func (a *app) ordersListCommand() *cobra.Command {
	var (
		status string
		search string
		page   int
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "Show one page of orders",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			filter, err := model.ParseStatusFilter(status)
			if err != nil {
				return err
			}

			b := board.New(a.client(), a.role(), a.v.GetInt(keyLimit), a.logger)
			if err := b.SetCriteria(cmd.Context(), filter, search); err != nil {
				return err
			}
			if page > 1 {
				if err := b.Goto(cmd.Context(), page); err != nil {
					return err
				}
			}

			v := b.View()
			if page > v.TotalPages {
				fmt.Fprintf(cmd.ErrOrStderr(), "page %d is out of range, showing page %d\n", page, v.Page)
			}
			return a.renderOrders(cmd.OutOrStdout(), v)
		},
	}
	cmd.Flags().StringVarP(&status, "status", "s", "", "status filter (received, sended, in-transit, delivered or all)")
	cmd.Flags().StringVarP(&search, "search", "q", "", "match customer name, mobile or (courier) address")
	cmd.Flags().IntVar(&page, "page", 1, "page number")
	cmd.Flags().Int(keyLimit, 10, "orders per page")
	_ = a.v.BindPFlag(keyLimit, cmd.Flags().Lookup(keyLimit))
	return cmd
}

func (a *app) renderOrders(out io.Writer, v board.View) error {
	table := tablewriter.NewWriter(out)
	table.Header("Order", "Customer", "Mobile", "Product", "Qty", "Status", "Total", "Next")
	for _, o := range v.Orders {
		if err := table.Append(
			invoice.OrderNumber(o.ID),
			o.FullName,
			o.Mobile,
			o.Product,
			o.Quantity.Int(),
			o.Status.String(),
			invoice.Amount(invoice.ComputeTotals(o).GrandTotal),
			actions(o.Status, a.role()),
		); err != nil {
			return fmt.Errorf("failed to render orders: %w", err)
		}
	}
	if err := table.Render(); err != nil {
		return fmt.Errorf("failed to render orders: %w", err)
	}

	fmt.Fprintf(out, "Page %d of %d (%d orders)\n", v.Page, v.TotalPages, v.Total)
	return nil
}

func actions(s model.Status, role model.Role) string {
	next := workflow.Next(s, role)
	if len(next) == 0 {
		return "-"
	}
	names := make([]string, len(next))
	for i, n := range next {
		names[i] = n.String()
	}
	return strings.Join(names, ", ")
}

func (a *app) ordersShowCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "show <order-id>",
		Short: "Print an order as an invoice",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			o, err := a.client().GetOrder(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprint(out, invoice.FormatInvoice(*o))
			fmt.Fprintf(out, "\nNext: %s\n", actions(o.Status, a.role()))
			return nil
		},
	}
}

func (a *app) ordersAdvanceCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "advance <order-id>",
		Short: "Move an order one delivery step forward",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			o, err := a.client().GetOrder(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			target, ok := workflow.Advance(o.Status)
			if !ok {
				return model.NewDomainError(model.ErrCodeInvalidTransition,
					fmt.Sprintf("order %s has no next delivery step from %s", invoice.OrderNumber(o.ID), o.Status))
			}
			return a.move(cmd, *o, target)
		},
	}
}

func (a *app) ordersMoveCommand(use, short string, target model.Status) *cobra.Command {
	return &cobra.Command{
		Use:   use + " <order-id>",
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			o, err := a.client().GetOrder(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return a.move(cmd, *o, target)
		},
	}
}

// move checks the change locally before asking the backend to make it.
func (a *app) move(cmd *cobra.Command, o model.Order, target model.Status) error {
	if _, err := workflow.ApplyTransition(o, target, a.role()); err != nil {
		return err
	}
	updated, err := a.client().UpdateStatus(cmd.Context(), o.ID, target)
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Order %s: %s -> %s\n", invoice.OrderNumber(updated.ID), o.Status, updated.Status)
	return nil
}

func (a *app) ordersExportCommand() *cobra.Command {
	var (
		status string
		search string
		format string
		dir    string
	)

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Download the batch export of all matching orders",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			filter, err := model.ParseStatusFilter(status)
			if err != nil {
				return err
			}
			if err := checkFormat(format); err != nil {
				return err
			}

			params := model.ListParams{Status: filter, Search: search}
			doc, err := a.client().ExportOrders(cmd.Context(), params, format)
			if err != nil {
				return err
			}
			return writeFile(cmd.OutOrStdout(), dir, doc, "orders-export."+format)
		},
	}
	cmd.Flags().StringVarP(&status, "status", "s", "", "status filter")
	cmd.Flags().StringVarP(&search, "search", "q", "", "search term")
	cmd.Flags().StringVarP(&format, "format", "f", "txt", "txt or pdf")
	cmd.Flags().StringVarP(&dir, "out", "o", ".", "directory to write the file to")
	return cmd
}

func (a *app) invoiceCommand() *cobra.Command {
	var format, dir string

	cmd := &cobra.Command{
		Use:   "invoice <order-id>",
		Short: "Download an order invoice",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := checkFormat(format); err != nil {
				return err
			}
			doc, err := a.client().Invoice(cmd.Context(), args[0], format)
			if err != nil {
				return err
			}
			return writeFile(cmd.OutOrStdout(), dir, doc, "invoice-"+invoice.InvoiceNumber(args[0])+"."+format)
		},
	}
	cmd.Flags().StringVarP(&format, "format", "f", "txt", "txt or pdf")
	cmd.Flags().StringVarP(&dir, "out", "o", ".", "directory to write the file to")
	return cmd
}

func checkFormat(format string) error {
	if format != "txt" && format != "pdf" {
		return model.NewValidationError(fmt.Sprintf("unknown format %q, want txt or pdf", format))
	}
	return nil
}
