package model

import (
	"time"

	"github.com/google/uuid"
)

// OrderStatusPending is the initial status of every order. Status is stored
// verbatim as supplied by the caller; only the delivered transition is
// special-cased (see OrderStatusDelivered).
const (
	OrderStatusPending   = "PENDING"
	OrderStatusDelivered = "DELIVERED"
)

// Order represents a placed customer order. Identity, creation time, addresses
// and payment method are immutable once persisted; only Status changes.
type Order struct {
	ID              uuid.UUID   `json:"id" db:"id"`
	UserID          uuid.UUID   `json:"userId" db:"user_id"`
	Status          string      `json:"status" db:"status"`
	TotalAmount     float64     `json:"totalAmount" db:"total_amount"`
	PaymentMethod   string      `json:"paymentMethod" db:"payment_method"`
	BillingAddress  string      `json:"billingAddress" db:"billing_address"`
	ShippingAddress string      `json:"shippingAddress" db:"shipping_address"`
	Items           []OrderItem `json:"items"`
	CreatedAt       time.Time   `json:"createdAt" db:"created_at"`
}

// OrderItem is one line of an order. ProductName and ProductPrice are frozen
// at placement time and never change afterwards; ProductID may be cleared once
// the order is delivered so the line survives later product deletion.
type OrderItem struct {
	ID           uuid.UUID `json:"id" db:"id"`
	OrderID      uuid.UUID `json:"-" db:"order_id"`
	ProductID    *string   `json:"productId" db:"product_id"`
	Quantity     int       `json:"quantity" db:"quantity"`
	Price        float64   `json:"price" db:"price"`
	ProductName  string    `json:"productName" db:"product_name"`
	ProductPrice float64   `json:"productPrice" db:"product_price"`
}

// ItemTotal returns quantity x unit price at placement.
func (i OrderItem) ItemTotal() float64 {
	return float64(i.Quantity) * i.Price
}

// PlaceOrderRequest is the payload for placing an order from a user's cart.
type PlaceOrderRequest struct {
	UserID        uuid.UUID `json:"userId"`
	PaymentMethod string    `json:"paymentMethod"`
}

// UpdateStatusRequest is the payload for advancing an order's status.
type UpdateStatusRequest struct {
	Status string `json:"status"`
}
