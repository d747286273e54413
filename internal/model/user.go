package model

import (
	"time"

	"github.com/google/uuid"
)

// User represents a registered customer.
type User struct {
	ID              uuid.UUID `json:"id" db:"id"`
	Name            string    `json:"name" db:"name"`
	Email           string    `json:"email" db:"email"`
	Password        string    `json:"-" db:"password"`
	EmailVerified   bool      `json:"emailVerified" db:"email_verified"`
	BillingAddress  string    `json:"billingAddress" db:"billing_address"`
	ShippingAddress string    `json:"shippingAddress" db:"shipping_address"`
	CreatedAt       time.Time `json:"createdAt" db:"created_at"`
}

// RegisterRequest is the payload for user registration: the user details plus
// the one-time code previously delivered to the email address.
type RegisterRequest struct {
	Name            string `json:"name"`
	Email           string `json:"email"`
	Password        string `json:"password"`
	BillingAddress  string `json:"billingAddress"`
	ShippingAddress string `json:"shippingAddress"`
	OTP             string `json:"otp"`
}
