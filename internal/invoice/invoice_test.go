package invoice

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"orderdesk/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func int64Ptr(v int64) *int64 { return &v }
func strPtr(s string) *string { return &s }

func decodeOrder(t *testing.T, raw string) model.Order {
	t.Helper()
	var o model.Order
	require.NoError(t, json.Unmarshal([]byte(raw), &o))
	return o
}

func TestComputeTotals_Fallbacks(t *testing.T) {
	o := decodeOrder(t, `{"id":"abc12345","quantity":"3"}`)

	totals := ComputeTotals(o)

	assert.Equal(t, int64(1500), totals.UnitPrice)
	assert.Equal(t, int64(3), totals.Quantity)
	assert.Equal(t, int64(4500), totals.Subtotal)
	assert.Equal(t, int64(200), totals.DeliveryCharge)
	assert.Equal(t, int64(0), totals.Discount)
	assert.Equal(t, int64(4700), totals.GrandTotal)
	assert.Equal(t, "INV-ABC12345", InvoiceNumber(o.ID))
}

func TestComputeTotals_ExplicitPricing(t *testing.T) {
	o := model.Order{
		ID:             "f00dbabe-1111",
		Quantity:       2,
		Price:          int64Ptr(10000),
		DeliveryCharge: int64Ptr(0),
		Discount:       int64Ptr(500),
	}

	totals := ComputeTotals(o)

	assert.Equal(t, int64(20000), totals.Subtotal)
	assert.Equal(t, int64(0), totals.DeliveryCharge)
	assert.Equal(t, int64(19500), totals.GrandTotal)
}

func TestComputeTotals_MalformedQuantity(t *testing.T) {
	o := decodeOrder(t, `{"id":"abc12345","quantity":"abc"}`)

	totals := ComputeTotals(o)

	assert.Equal(t, int64(0), totals.Subtotal)
	assert.Equal(t, int64(200), totals.GrandTotal)

	var text string
	require.NotPanics(t, func() { text = FormatInvoice(o) })
	assert.NotContains(t, text, "NaN")
	assert.Contains(t, text, "Subtotal:")
	assert.Regexp(t, `Subtotal:\s+Rs\. 0\n`, text)
}

func TestComputeTotals_NegativeQuantityClamps(t *testing.T) {
	totals := ComputeTotals(model.Order{Quantity: -2})
	assert.Equal(t, int64(0), totals.Quantity)
	assert.Equal(t, int64(0), totals.Subtotal)
}

func TestInvoiceNumber(t *testing.T) {
	assert.Equal(t, "INV-ABC12345", InvoiceNumber("abc12345"))
	assert.Equal(t, "INV-9F1C2D3E", InvoiceNumber("9f1c2d3e-77aa-4bb1-8c00-0123456789ab"))
	assert.Equal(t, "INV-AB", InvoiceNumber("ab"))
	assert.Equal(t, "#9f1c2d3e", OrderNumber("9f1c2d3e-77aa-4bb1-8c00-0123456789ab"))
}

func TestTrackingAndCourierFallbacks(t *testing.T) {
	o := model.Order{ID: "9f1c2d3e-77aa-4bb1"}
	assert.Equal(t, "TRK-9f1c2d3e-7", TrackingNumber(o))
	assert.Equal(t, "Express Delivery", CourierCompany(o))

	o.TrackingNumber = strPtr("PX-4411")
	o.CourierCompany = strPtr("Pronto")
	assert.Equal(t, "PX-4411", TrackingNumber(o))
	assert.Equal(t, "Pronto", CourierCompany(o))
}

func TestAmount(t *testing.T) {
	assert.Equal(t, "Rs. 0", Amount(0))
	assert.Equal(t, "Rs. 200", Amount(200))
	assert.Equal(t, "Rs. 4,700", Amount(4700))
	assert.Equal(t, "Rs. 1,234,567", Amount(1234567))
}

func sampleOrder() model.Order {
	return model.Order{
		ID:        "abc12345-6789-4def-8000-000000000001",
		FullName:  "Nimal Perera",
		Address:   "12 Temple Road, Kandy",
		Mobile:    "0771234567",
		Product:   "Herbal Cream",
		Quantity:  3,
		Status:    model.StatusSended,
		CreatedAt: time.Date(2025, 3, 14, 18, 30, 0, 0, time.FixedZone("LKT", 5*3600+1800)),
	}
}

func TestFormatInvoice(t *testing.T) {
	text := FormatInvoice(sampleOrder())

	expectedInOrder := []string{
		"INVOICE",
		"Invoice Number  : INV-ABC12345",
		"Order Number    : #abc12345",
		"Invoice Date    : 2025-03-14",
		"Payment Method  : Cash on Delivery",
		"Status          : SENDED",
		"CUSTOMER DETAILS",
		"Name            : Nimal Perera",
		"Phone           : 0771234567",
		"Email           : N/A",
		"Address         : 12 Temple Road, Kandy",
		"COURIER DETAILS",
		"Courier Company : Express Delivery",
		"Tracking Number : TRK-abc12345-6",
		"COD Amount      : Rs. 4,700",
		"ORDER ITEMS",
		"Herbal Cream",
		"Subtotal:",
		"Delivery Charge:",
		"Discount:",
		"Grand Total:",
	}

	pos := 0
	for _, want := range expectedInOrder {
		idx := strings.Index(text[pos:], want)
		require.GreaterOrEqual(t, idx, 0, "missing or out of order: %q", want)
		pos += idx + len(want)
	}

	assert.Regexp(t, `Grand Total:\s+Rs\. 4,700\n`, text)
	assert.Regexp(t, `Herbal Cream\s+3\s+Rs\. 1,500\s+Rs\. 4,500\n`, text)
}

func TestFormatInvoice_Deterministic(t *testing.T) {
	o := sampleOrder()
	first := FormatInvoice(o)

	for i := 0; i < 5; i++ {
		assert.Equal(t, first, FormatInvoice(o))
	}

	// The same instant in another zone renders the same date.
	o.CreatedAt = o.CreatedAt.UTC()
	assert.Equal(t, first, FormatInvoice(o))
}

func TestFormatBatch(t *testing.T) {
	exportDate := time.Date(2025, 4, 1, 9, 0, 0, 0, time.UTC)
	a := sampleOrder()
	b := sampleOrder()
	b.ID = "ffee0011-2233"
	b.FullName = "Kamala Silva"
	b.Quantity = 1
	b.Price = int64Ptr(10000)
	b.DeliveryCharge = int64Ptr(350)
	b.CourierCompany = strPtr("Pronto")
	b.TrackingNumber = strPtr("PX-1")

	text := FormatBatch([]model.Order{a, b}, exportDate)

	assert.Contains(t, text, "Export Date     : 2025-04-01")
	assert.Contains(t, text, "Order Count     : 2")
	assert.Contains(t, text, "Order           : INV-ABC12345")
	assert.Contains(t, text, "Order           : INV-FFEE0011")
	assert.Contains(t, text, "Customer        : Kamala Silva (0771234567)")
	assert.Contains(t, text, "Total           : Rs. 10,350")
	assert.Contains(t, text, "Courier         : Pronto / PX-1")
	assert.Equal(t, 2, strings.Count(text, strings.Repeat("-", 60)+"\n"))

	assert.Equal(t, text, FormatBatch([]model.Order{a, b}, exportDate))
}

func TestFormatBatch_Empty(t *testing.T) {
	text := FormatBatch(nil, time.Date(2025, 4, 1, 0, 0, 0, 0, time.UTC))

	assert.Contains(t, text, "Order Count     : 0")
	assert.NotContains(t, text, "Order           :")
}

func TestFilenames(t *testing.T) {
	assert.Equal(t, "invoice-INV-ABC12345.txt", Filename(sampleOrder(), "txt"))
	assert.Equal(t, "orders-2025-04-01.pdf", BatchFilename(time.Date(2025, 4, 1, 0, 0, 0, 0, time.UTC), "pdf"))
}

func TestRenderPDF(t *testing.T) {
	var buf bytes.Buffer

	err := RenderPDF(&buf, sampleOrder())

	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(buf.Bytes(), []byte("%PDF-")))
}

func TestRenderBatchPDF(t *testing.T) {
	orders := make([]model.Order, 0, 40)
	for i := 0; i < 40; i++ {
		orders = append(orders, sampleOrder())
	}
	var buf bytes.Buffer

	err := RenderBatchPDF(&buf, orders, time.Date(2025, 4, 1, 0, 0, 0, 0, time.UTC))

	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(buf.Bytes(), []byte("%PDF-")))
}
