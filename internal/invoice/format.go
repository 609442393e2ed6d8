// Package invoice renders orders as plain-text invoices and batch exports,
// and as real PDF documents built from the same text.
package invoice

import (
	"fmt"
	"strings"
	"time"

	"orderdesk/internal/model"
)

const (
	width      = 60
	dateLayout = "2006-01-02"
)

var (
	heavyRule = strings.Repeat("=", width)
	lightRule = strings.Repeat("-", width)
)

// FormatInvoice renders a single order. The output depends only on the
// order, so identical input always yields identical bytes.
func FormatInvoice(o model.Order) string {
	t := ComputeTotals(o)
	var b strings.Builder

	line(&b, heavyRule)
	line(&b, center("INVOICE"))
	line(&b, center("Order Management System"))
	line(&b, heavyRule)

	field(&b, "Invoice Number", InvoiceNumber(o.ID))
	field(&b, "Order Number", OrderNumber(o.ID))
	field(&b, "Invoice Date", formatDate(o.CreatedAt))
	field(&b, "Payment Method", PaymentMethod)
	field(&b, "Status", strings.ToUpper(string(o.Status)))
	line(&b, lightRule)

	line(&b, "CUSTOMER DETAILS")
	field(&b, "Name", o.FullName)
	field(&b, "Phone", o.Mobile)
	field(&b, "Email", optional(o.Email, "N/A"))
	field(&b, "Address", o.Address)
	line(&b, lightRule)

	line(&b, "COURIER DETAILS")
	field(&b, "Courier Company", CourierCompany(o))
	field(&b, "Tracking Number", TrackingNumber(o))
	field(&b, "Delivery Method", DeliveryMethod)
	field(&b, "COD Amount", Amount(t.GrandTotal))
	line(&b, lightRule)

	line(&b, "ORDER ITEMS")
	line(&b, fmt.Sprintf("%-24s %5s %14s %14s", "PRODUCT", "QTY", "UNIT PRICE", "TOTAL"))
	line(&b, fmt.Sprintf("%-24s %5d %14s %14s",
		truncate(o.Product, 24), t.Quantity, Amount(t.UnitPrice), Amount(t.Subtotal)))
	line(&b, lightRule)

	amountLine(&b, "Subtotal", Amount(t.Subtotal))
	amountLine(&b, "Delivery Charge", Amount(t.DeliveryCharge))
	amountLine(&b, "Discount", "- "+Amount(t.Discount))
	amountLine(&b, "Grand Total", Amount(t.GrandTotal))
	line(&b, heavyRule)

	line(&b, "Thank you for your business! This is a computer-generated")
	line(&b, "invoice and does not require a signature.")

	return b.String()
}

// FormatBatch renders a compact export of many orders. exportDate is the only
// time-dependent value in the output and is supplied by the caller.
func FormatBatch(orders []model.Order, exportDate time.Time) string {
	var b strings.Builder

	line(&b, heavyRule)
	line(&b, center("ORDERS EXPORT"))
	line(&b, heavyRule)
	field(&b, "Export Date", formatDate(exportDate))
	field(&b, "Order Count", fmt.Sprintf("%d", len(orders)))
	line(&b, heavyRule)

	for _, o := range orders {
		t := ComputeTotals(o)
		field(&b, "Order", InvoiceNumber(o.ID))
		field(&b, "Date", formatDate(o.CreatedAt))
		field(&b, "Status", string(o.Status))
		field(&b, "Customer", o.FullName+" ("+o.Mobile+")")
		field(&b, "Product", o.Product)
		field(&b, "Quantity", fmt.Sprintf("%d", t.Quantity))
		field(&b, "Total", Amount(t.GrandTotal))
		field(&b, "Courier", CourierCompany(o)+" / "+TrackingNumber(o))
		line(&b, lightRule)
	}

	return b.String()
}

// Filename returns the download name for an invoice in the given extension.
func Filename(o model.Order, ext string) string {
	return "invoice-" + InvoiceNumber(o.ID) + "." + ext
}

// BatchFilename returns the download name for a batch export.
func BatchFilename(exportDate time.Time, ext string) string {
	return "orders-" + formatDate(exportDate) + "." + ext
}

func formatDate(t time.Time) string {
	if t.IsZero() {
		return "N/A"
	}
	return t.UTC().Format(dateLayout)
}

func optional(s *string, fallback string) string {
	if s == nil || strings.TrimSpace(*s) == "" {
		return fallback
	}
	return *s
}

func line(b *strings.Builder, s string) {
	b.WriteString(s)
	b.WriteByte('\n')
}

func field(b *strings.Builder, label, value string) {
	fmt.Fprintf(b, "%-16s: %s\n", label, value)
}

func amountLine(b *strings.Builder, label, value string) {
	fmt.Fprintf(b, "%40s %19s\n", label+":", value)
}

func center(s string) string {
	pad := (width - len(s)) / 2
	if pad <= 0 {
		return s
	}
	return strings.Repeat(" ", pad) + s
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "~"
}
