package repository

import (
	"context"

	"storefront/internal/model"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// Querier is the subset of pgx operations shared by *pgxpool.Pool and pgx.Tx.
// Repository internals use it where the same statement runs either standalone
// or inside a caller-owned transaction.
type Querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// StockLine is a locked view of one inventory row joined with its product's
// current name and price. Valid until the owning transaction ends.
type StockLine struct {
	ProductID    string
	ProductName  string
	ProductPrice float64
	Quantity     int
}

// UserRepository defines the interface for user data access operations.
type UserRepository interface {
	// BeginTx starts a new database transaction.
	BeginTx(ctx context.Context) (pgx.Tx, error)

	// Create inserts a new user within the provided transaction.
	Create(ctx context.Context, tx pgx.Tx, user *model.User) error

	// GetByID retrieves a user by ID. Returns nil when not found.
	GetByID(ctx context.Context, id uuid.UUID) (*model.User, error)

	// GetByEmail retrieves a user by email address. Returns nil when not found.
	GetByEmail(ctx context.Context, email string) (*model.User, error)

	// ExistsByEmail reports whether a user with the email is registered.
	ExistsByEmail(ctx context.Context, email string) (bool, error)

	// GetAll retrieves all users.
	GetAll(ctx context.Context) ([]model.User, error)

	// Update persists changes to name, email and password.
	Update(ctx context.Context, user *model.User) error

	// Delete removes a user. Returns false when no row matched.
	Delete(ctx context.Context, id uuid.UUID) (bool, error)
}

// ProductRepository defines the interface for product data access operations.
type ProductRepository interface {
	// BeginTx starts a new database transaction.
	BeginTx(ctx context.Context) (pgx.Tx, error)

	// Create inserts a new product within the provided transaction.
	Create(ctx context.Context, tx pgx.Tx, p *model.Product) error

	// GetByID retrieves a product with its current stock. Returns nil when not found.
	GetByID(ctx context.Context, id string) (*model.Product, error)

	// Lookup retrieves a product's identity, name and price inside the
	// provided transaction, without the stock join. Returns nil when not found.
	Lookup(ctx context.Context, tx pgx.Tx, id string) (*model.Product, error)

	// GetAll retrieves all products with their current stock.
	GetAll(ctx context.Context) ([]model.Product, error)

	// Update persists changes to all mutable product fields.
	Update(ctx context.Context, p *model.Product) (bool, error)

	// UpdateName changes only the product name.
	UpdateName(ctx context.Context, id, name string) (bool, error)

	// Delete removes a product within the provided transaction.
	Delete(ctx context.Context, tx pgx.Tx, id string) error

	// IsReferencedByOrderItems reports whether any order item still links the product.
	IsReferencedByOrderItems(ctx context.Context, id string) (bool, error)
}

// InventoryRepository owns the stock ledger rows.
type InventoryRepository interface {
	// Create inserts the inventory record for a product within the provided transaction.
	Create(ctx context.Context, tx pgx.Tx, inv *model.Inventory) error

	// GetByProductID retrieves the inventory record for a product. Returns nil when not found.
	GetByProductID(ctx context.Context, productID string) (*model.Inventory, error)

	// LockLine locks the product's inventory row for the duration of tx and
	// returns its quantity together with the product's current name and price.
	// Returns nil when the product has no inventory record.
	LockLine(ctx context.Context, tx pgx.Tx, productID string) (*StockLine, error)

	// Deduct decrements a previously locked inventory row.
	Deduct(ctx context.Context, tx pgx.Tx, productID string, qty int) error

	// Restore increments the inventory row, compensating a reservation.
	Restore(ctx context.Context, productID string, qty int) error

	// SetQuantity overwrites the quantity for a product.
	SetQuantity(ctx context.Context, productID string, qty int) error

	// UnlinkProduct clears the product reference, preserving the record.
	UnlinkProduct(ctx context.Context, tx pgx.Tx, productID string) error

	// ListLowStock returns products whose stock is strictly below threshold.
	ListLowStock(ctx context.Context, threshold int) ([]model.Product, error)
}

// CartRepository defines the interface for cart data access operations.
type CartRepository interface {
	// Create inserts an empty cart within the provided transaction.
	Create(ctx context.Context, tx pgx.Tx, cart *model.Cart) error

	// GetByID retrieves a cart with its items. Returns nil when not found.
	GetByID(ctx context.Context, id uuid.UUID) (*model.Cart, error)

	// GetByUserID retrieves a user's cart with its items, ordered by insertion
	// time. Returns nil when the user has no cart.
	GetByUserID(ctx context.Context, userID uuid.UUID) (*model.Cart, error)

	// AddItem inserts a new cart item.
	AddItem(ctx context.Context, item *model.CartItem) error

	// GetItem retrieves a single cart item. Returns nil when not found.
	GetItem(ctx context.Context, itemID uuid.UUID) (*model.CartItem, error)

	// UpdateItemQuantity changes a cart item's quantity.
	UpdateItemQuantity(ctx context.Context, itemID uuid.UUID, qty int) error

	// RemoveItem deletes a single cart item.
	RemoveItem(ctx context.Context, itemID uuid.UUID) error

	// ClearItems deletes every item of a cart; the cart itself persists.
	ClearItems(ctx context.Context, cartID uuid.UUID) error

	// ClearItemsTx is ClearItems within a caller-owned transaction, used by
	// order placement so the clear commits atomically with the order.
	ClearItemsTx(ctx context.Context, tx pgx.Tx, cartID uuid.UUID) error
}

// OrderRepository defines the interface for order data access operations.
type OrderRepository interface {
	// BeginTx starts a new database transaction.
	BeginTx(ctx context.Context) (pgx.Tx, error)

	// Create inserts a new order within the provided transaction.
	Create(ctx context.Context, tx pgx.Tx, order *model.Order) error

	// CreateItems inserts the order's items within the provided transaction.
	CreateItems(ctx context.Context, tx pgx.Tx, items []model.OrderItem) error

	// GetByID retrieves an order with its items. Returns nil when not found.
	GetByID(ctx context.Context, id uuid.UUID) (*model.Order, error)

	// ListByUser retrieves all orders placed by a user, newest first.
	ListByUser(ctx context.Context, userID uuid.UUID) ([]model.Order, error)

	// UpdateStatus sets the order status. Returns false when no row matched.
	UpdateStatus(ctx context.Context, tx pgx.Tx, orderID uuid.UUID, status string) (bool, error)

	// GetItemsForUpdate locks and returns the order's items for the duration of tx.
	GetItemsForUpdate(ctx context.Context, tx pgx.Tx, orderID uuid.UUID) ([]model.OrderItem, error)

	// UpdateItemSnapshots writes snapshot fields and product references back
	// for the given items.
	UpdateItemSnapshots(ctx context.Context, tx pgx.Tx, items []model.OrderItem) error
}

// InvoiceRepository defines the interface for invoice data access operations.
type InvoiceRepository interface {
	// GetByOrderID retrieves the invoice for an order. Returns nil when none exists.
	GetByOrderID(ctx context.Context, orderID uuid.UUID) (*model.Invoice, error)

	// Create inserts a new invoice. Returns ErrInvoiceExists when the order
	// already has one (unique constraint on order_id).
	Create(ctx context.Context, inv *model.Invoice) error

	// UpdateFilePath records where the rendered PDF was archived.
	UpdateFilePath(ctx context.Context, id uuid.UUID, path string) error
}
