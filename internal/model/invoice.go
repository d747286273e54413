package model

import (
	"time"

	"github.com/google/uuid"
)

// InvoiceStatus enumerates the lifecycle of a generated invoice.
type InvoiceStatus string

const (
	InvoiceStatusGenerated InvoiceStatus = "GENERATED"
	InvoiceStatusSent      InvoiceStatus = "SENT"
	InvoiceStatusCancelled InvoiceStatus = "CANCELLED"
)

// Invoice is the billing document derived from a finalized order. At most one
// invoice exists per order; amounts are derived at generation time and are not
// independently settable afterwards.
type Invoice struct {
	ID              uuid.UUID     `json:"id" db:"id"`
	InvoiceNumber   string        `json:"invoiceNumber" db:"invoice_number"`
	OrderID         uuid.UUID     `json:"orderId" db:"order_id"`
	UserID          uuid.UUID     `json:"userId" db:"user_id"`
	TotalAmount     float64       `json:"totalAmount" db:"total_amount"`
	TaxAmount       float64       `json:"taxAmount" db:"tax_amount"`
	ShippingFee     float64       `json:"shippingFee" db:"shipping_fee"`
	PaymentMethod   string        `json:"paymentMethod" db:"payment_method"`
	BillingAddress  string        `json:"billingAddress" db:"billing_address"`
	ShippingAddress string        `json:"shippingAddress" db:"shipping_address"`
	Status          InvoiceStatus `json:"status" db:"status"`
	FilePath        *string       `json:"filePath,omitempty" db:"file_path"`
	GeneratedAt     time.Time     `json:"generatedAt" db:"generated_at"`
}
