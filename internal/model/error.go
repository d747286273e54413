package model

import "fmt"

// Standard error codes for API responses
const (
	ErrCodeInvalidJSON         = "INVALID_JSON"
	ErrCodeNotFound            = "NOT_FOUND"
	ErrCodeEmptyCart           = "EMPTY_CART"
	ErrCodeInsufficientStock   = "INSUFFICIENT_STOCK"
	ErrCodeInvalidQuantity     = "INVALID_QUANTITY"
	ErrCodeConstraintViolation = "CONSTRAINT_VIOLATION"
	ErrCodeItemNotInCart       = "ITEM_NOT_IN_CART"
	ErrCodeEmailRegistered     = "EMAIL_ALREADY_REGISTERED"
	ErrCodeInvalidOTP          = "INVALID_OTP"
	ErrCodeUnauthorised        = "UNAUTHORIZED"
	ErrCodeInternalError       = "INTERNAL_ERROR"
)

// DomainError represents a business rule failure surfaced to API clients.
type DomainError struct {
	Code    string
	Message string
}

func (e *DomainError) Error() string {
	return e.Message
}

// NewDomainError creates a new domain error
func NewDomainError(code, message string) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
	}
}

// Common domain errors
var (
	ErrEmptyCart       = NewDomainError(ErrCodeEmptyCart, "Cart is empty")
	ErrInvalidQuantity = NewDomainError(ErrCodeInvalidQuantity, "Quantity must be greater than zero")
	ErrEmailRegistered = NewDomainError(ErrCodeEmailRegistered, "Email already registered")
	ErrInvalidOTP      = NewDomainError(ErrCodeInvalidOTP, "Invalid or expired OTP")
	ErrItemNotInCart   = NewDomainError(ErrCodeItemNotInCart, "Item does not belong to this cart")
)

// NotFoundError identifies which entity a lookup failed to find.
type NotFoundError struct {
	Entity string
	ID     string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s not found: %s", e.Entity, e.ID)
}

// NewNotFoundError creates a NotFoundError for the given entity and identifier.
func NewNotFoundError(entity, id string) *NotFoundError {
	return &NotFoundError{Entity: entity, ID: id}
}

// InsufficientStockError reports a reservation that exceeds available stock.
// Requested and Available let the caller retry with a smaller quantity.
type InsufficientStockError struct {
	ProductID   string
	ProductName string
	Requested   int
	Available   int
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("insufficient stock for product %q: requested %d, available %d",
		e.ProductName, e.Requested, e.Available)
}

// ConstraintViolationError is a conflict caused by a deliberate business rule,
// e.g. deleting a product still referenced by order items.
type ConstraintViolationError struct {
	Message string
}

func (e *ConstraintViolationError) Error() string {
	return e.Message
}
