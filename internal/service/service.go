package service

import (
	"context"

	"storefront/internal/model"

	"github.com/google/uuid"
)

// UserService defines operations for registration and user management.
type UserService interface {
	// SendOTP generates a one-time code for the email and delivers it by mail.
	SendOTP(ctx context.Context, email string) error

	// Register verifies the one-time code, then creates the user and their cart.
	Register(ctx context.Context, req *model.RegisterRequest) (*model.User, error)

	// GetByID retrieves a single user.
	GetByID(ctx context.Context, id uuid.UUID) (*model.User, error)

	// GetAll retrieves all users.
	GetAll(ctx context.Context) ([]model.User, error)

	// Update changes a user's name, email and password.
	Update(ctx context.Context, id uuid.UUID, upd *model.User) (*model.User, error)

	// Delete removes a user.
	Delete(ctx context.Context, id uuid.UUID) error
}

// ProductService defines operations for catalogue management.
type ProductService interface {
	// Create persists a new product and initializes its inventory record.
	Create(ctx context.Context, p *model.Product) (*model.Product, error)

	// GetByID retrieves a single product with current stock.
	GetByID(ctx context.Context, id string) (*model.Product, error)

	// GetAll retrieves all products with current stock.
	GetAll(ctx context.Context) ([]model.Product, error)

	// Update changes a product's mutable fields and syncs the stock quantity.
	Update(ctx context.Context, id string, upd *model.Product) (*model.Product, error)

	// UpdateName changes only the product name.
	UpdateName(ctx context.Context, id, name string) (*model.Product, error)

	// Delete removes a product. Fails with ConstraintViolationError while any
	// order item still references it; the inventory record is unlinked, not
	// deleted.
	Delete(ctx context.Context, id string) (*model.Product, error)
}

// CartService defines operations for cart maintenance.
type CartService interface {
	// GetCart retrieves a cart with its items.
	GetCart(ctx context.Context, cartID uuid.UUID) (*model.Cart, error)

	// GetCartByUser retrieves a user's cart with its items.
	GetCartByUser(ctx context.Context, userID uuid.UUID) (*model.Cart, error)

	// AddItem adds a product to the cart, merging quantity into an existing
	// line for the same product. The item records the price at add time.
	AddItem(ctx context.Context, cartID uuid.UUID, req *model.AddItemRequest) (*model.Cart, error)

	// UpdateItemQuantity changes a cart item's quantity.
	UpdateItemQuantity(ctx context.Context, cartID, itemID uuid.UUID, qty int) (*model.Cart, error)

	// RemoveItem deletes a single cart item.
	RemoveItem(ctx context.Context, cartID, itemID uuid.UUID) (*model.Cart, error)

	// ClearByUser removes every item from the user's cart.
	ClearByUser(ctx context.Context, userID uuid.UUID) error
}

// OrderService defines operations for order placement and lifecycle.
type OrderService interface {
	// PlaceOrder converts the user's cart into a persisted order, reserving
	// stock for every line. All-or-nothing: any failed line aborts the whole
	// placement with no stock decremented and the cart intact.
	PlaceOrder(ctx context.Context, userID uuid.UUID, paymentMethod string) (*model.Order, error)

	// GetByID retrieves an order with its items.
	GetByID(ctx context.Context, orderID uuid.UUID) (*model.Order, error)

	// ListByUser retrieves all orders placed by a user.
	ListByUser(ctx context.Context, userID uuid.UUID) ([]model.Order, error)

	// UpdateStatus sets the order status. Transitioning to DELIVERED unlinks
	// product references from the order's items, leaving the snapshots as the
	// permanent audit record. Unlinking is idempotent.
	UpdateStatus(ctx context.Context, orderID uuid.UUID, status string) (*model.Order, error)
}

// InventoryService defines read and compensation operations on the stock ledger.
type InventoryService interface {
	// CurrentStock returns the available quantity for a product.
	CurrentStock(ctx context.Context, productID string) (int, error)

	// ValidateStock checks that the requested quantity is available. Advisory:
	// the authoritative check happens under lock at placement time.
	ValidateStock(ctx context.Context, productID string, qty int) error

	// RestoreStock releases every reservation of an order, e.g. after a
	// cancellation.
	RestoreStock(ctx context.Context, orderID uuid.UUID) error

	// ListLowStock returns products with stock strictly below the threshold.
	ListLowStock(ctx context.Context, threshold int) ([]model.Product, error)
}

// InvoiceService defines invoice generation and rendering.
type InvoiceService interface {
	// GetOrCreateInvoice returns the order's invoice, generating it on first
	// call. Idempotent: at most one invoice ever exists per order.
	GetOrCreateInvoice(ctx context.Context, orderID uuid.UUID) (*model.Invoice, error)

	// RenderPDF produces the invoice document for an order.
	RenderPDF(ctx context.Context, orderID uuid.UUID) ([]byte, error)
}
