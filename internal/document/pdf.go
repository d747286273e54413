package document

import (
	"bytes"
	"fmt"

	"storefront/internal/model"

	"github.com/go-pdf/fpdf"
)

// RenderInvoicePDF produces the fixed-layout invoice document: header with
// invoice metadata, one line per order item, then tax/shipping/total. Layout
// only; all amounts come from the already-persisted invoice and order.
func RenderInvoicePDF(inv *model.Invoice, order *model.Order, customerName string) ([]byte, error) {
	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.AddPage()
	pdf.SetFont("Helvetica", "B", 14)

	line := func(text string) {
		pdf.CellFormat(0, 7, text, "", 1, "L", false, 0, "")
	}

	line("Invoice #: " + inv.InvoiceNumber)
	line("Date: " + inv.GeneratedAt.Format("2006-01-02"))
	line("Customer: " + customerName)
	line("Billing Address: " + inv.BillingAddress)
	line("Shipping Address: " + inv.ShippingAddress)
	line("Payment Method: " + inv.PaymentMethod)
	pdf.Ln(7)

	line("Items:")
	for _, item := range order.Items {
		line(fmt.Sprintf("%s x%d - Rs.%.2f", item.ProductName, item.Quantity, item.Price))
	}
	pdf.Ln(7)

	line(fmt.Sprintf("Tax: Rs.%.2f", inv.TaxAmount))
	line(fmt.Sprintf("Shipping: Rs.%.2f", inv.ShippingFee))
	line(fmt.Sprintf("Total: Rs.%.2f", inv.TotalAmount))

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("failed to render invoice PDF: %w", err)
	}

	return buf.Bytes(), nil
}
