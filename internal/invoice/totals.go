package invoice

import (
	"strings"

	"orderdesk/internal/model"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// Display fallbacks for orders that carry no pricing. They exist only so
// legacy records still render; the catalog price snapshotted at order
// creation is authoritative and usually differs (the catalog lists 10000).
const (
	FallbackUnitPrice      int64 = 1500
	FallbackDeliveryCharge int64 = 200
	FallbackDiscount       int64 = 0
)

// Delivery block defaults.
const (
	DefaultCourierCompany = "Express Delivery"
	DeliveryMethod        = "Standard Delivery"
	PaymentMethod         = "Cash on Delivery"
	CurrencyPrefix        = "Rs. "
)

// Totals is the arithmetic behind one order's invoice.
type Totals struct {
	UnitPrice      int64
	Quantity       int64
	Subtotal       int64
	DeliveryCharge int64
	Discount       int64
	GrandTotal     int64
}

// ComputeTotals applies the pricing fallbacks and returns
// subtotal + delivery - discount. A negative quantity counts as zero.
func ComputeTotals(o model.Order) Totals {
	t := Totals{
		UnitPrice:      valueOr(o.Price, FallbackUnitPrice),
		Quantity:       int64(o.Quantity),
		DeliveryCharge: valueOr(o.DeliveryCharge, FallbackDeliveryCharge),
		Discount:       valueOr(o.Discount, FallbackDiscount),
	}
	if t.Quantity < 0 {
		t.Quantity = 0
	}
	t.Subtotal = t.UnitPrice * t.Quantity
	t.GrandTotal = t.Subtotal + t.DeliveryCharge - t.Discount
	return t
}

// InvoiceNumber derives "INV-" plus the upper-cased first 8 characters of id.
func InvoiceNumber(id string) string {
	return "INV-" + strings.ToUpper(prefix(id, 8))
}

// OrderNumber is the short display form of an order id.
func OrderNumber(id string) string {
	return "#" + prefix(id, 8)
}

// TrackingNumber returns the order's tracking number or a placeholder
// derived from its id.
func TrackingNumber(o model.Order) string {
	if o.TrackingNumber != nil && strings.TrimSpace(*o.TrackingNumber) != "" {
		return *o.TrackingNumber
	}
	return "TRK-" + prefix(o.ID, 10)
}

// CourierCompany returns the assigned courier or the default service.
func CourierCompany(o model.Order) string {
	if o.CourierCompany != nil && strings.TrimSpace(*o.CourierCompany) != "" {
		return *o.CourierCompany
	}
	return DefaultCourierCompany
}

var printer = message.NewPrinter(language.English)

// Amount renders an integer amount with thousands separators and the
// currency prefix, e.g. "Rs. 4,700".
func Amount(v int64) string {
	return CurrencyPrefix + printer.Sprintf("%d", v)
}

func valueOr(v *int64, fallback int64) int64 {
	if v == nil {
		return fallback
	}
	return *v
}

func prefix(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
