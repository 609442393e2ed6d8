package invoice

import (
	"fmt"
	"io"
	"strings"
	"time"

	"orderdesk/internal/model"

	"github.com/go-pdf/fpdf"
)

const (
	pdfFont       = "Courier"
	pdfFontSize   = 9
	pdfLineHeight = 4.2
)

// RenderPDF writes the invoice for o as a PDF document. The document's
// creation date is the order's creation date so repeated renders match.
func RenderPDF(w io.Writer, o model.Order) error {
	return renderText(w, InvoiceNumber(o.ID), FormatInvoice(o), o.CreatedAt)
}

// RenderBatchPDF writes a batch export as a PDF document.
func RenderBatchPDF(w io.Writer, orders []model.Order, exportDate time.Time) error {
	return renderText(w, "Orders export "+formatDate(exportDate), FormatBatch(orders, exportDate), exportDate)
}

func renderText(w io.Writer, title, text string, stamp time.Time) error {
	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetTitle(title, true)
	pdf.SetCreator("orderdesk", true)
	if !stamp.IsZero() {
		pdf.SetCreationDate(stamp.UTC())
		pdf.SetModificationDate(stamp.UTC())
	}
	pdf.AddPage()
	pdf.SetFont(pdfFont, "", pdfFontSize)

	// Core fonts are cp1252; characters outside it are replaced.
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	for _, l := range strings.Split(strings.TrimRight(text, "\n"), "\n") {
		pdf.CellFormat(0, pdfLineHeight, tr(l), "", 1, "L", false, 0, "")
	}

	if err := pdf.Error(); err != nil {
		return fmt.Errorf("failed to build pdf: %w", err)
	}
	if err := pdf.Output(w); err != nil {
		return fmt.Errorf("failed to write pdf: %w", err)
	}
	return nil
}
