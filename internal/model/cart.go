package model

import (
	"time"

	"github.com/google/uuid"
)

// Cart holds a user's pending items. A cart is created once at registration
// and survives order placement; only its items are cleared.
type Cart struct {
	ID        uuid.UUID  `json:"id" db:"id"`
	UserID    uuid.UUID  `json:"userId" db:"user_id"`
	Items     []CartItem `json:"items"`
	CreatedAt time.Time  `json:"createdAt" db:"created_at"`
}

// CartItem is one product line in a cart. Price is a snapshot taken when the
// item was added; order placement uses the current catalogue price instead.
type CartItem struct {
	ID        uuid.UUID `json:"id" db:"id"`
	CartID    uuid.UUID `json:"-" db:"cart_id"`
	ProductID string    `json:"productId" db:"product_id"`
	Quantity  int       `json:"quantity" db:"quantity"`
	Price     float64   `json:"price" db:"price"`
	AddedAt   time.Time `json:"addedAt" db:"added_at"`
}

// ItemTotal returns quantity x add-time price for display purposes.
func (i CartItem) ItemTotal() float64 {
	return float64(i.Quantity) * i.Price
}

// AddItemRequest is the payload for adding a product to a cart.
type AddItemRequest struct {
	ProductID string `json:"productId"`
	Quantity  int    `json:"quantity"`
}

// UpdateQuantityRequest is the payload for changing a cart item's quantity.
type UpdateQuantityRequest struct {
	Quantity int `json:"quantity"`
}
