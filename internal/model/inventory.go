package model

import (
	"time"

	"github.com/google/uuid"
)

// Inventory is the stock ledger record for a product. ProductID is nullable:
// the record outlives product deletion so stock history is never lost.
// Quantity never goes below zero.
type Inventory struct {
	ID          uuid.UUID `json:"id" db:"id"`
	ProductID   *string   `json:"productId" db:"product_id"`
	Quantity    int       `json:"quantity" db:"quantity"`
	LastUpdated time.Time `json:"lastUpdated" db:"last_updated"`
}
