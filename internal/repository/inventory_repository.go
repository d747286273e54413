package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"storefront/internal/model"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
)

// inventoryRepository implements the InventoryRepository interface using PostgreSQL.
type inventoryRepository struct {
	pool   *pgxpool.Pool
	logger zerolog.Logger
}

// NewInventoryRepository creates a new PostgreSQL-backed inventory repository.
func NewInventoryRepository(pool *pgxpool.Pool, logger zerolog.Logger) InventoryRepository {
	return &inventoryRepository{
		pool:   pool,
		logger: logger.With().Str("repository", "inventory").Logger(),
	}
}

// Create inserts the inventory record for a product within the provided transaction.
func (r *inventoryRepository) Create(ctx context.Context, tx pgx.Tx, inv *model.Inventory) error {
	query := `
		INSERT INTO inventory (id, product_id, quantity, last_updated)
		VALUES ($1, $2, $3, $4)
	`

	_, err := tx.Exec(ctx, query, inv.ID, inv.ProductID, inv.Quantity, inv.LastUpdated)
	if err != nil {
		r.logger.Error().Err(err).Msg("failed to create inventory record")
		return fmt.Errorf("failed to create inventory record: %w", err)
	}

	return nil
}

// GetByProductID retrieves the inventory record for a product. Returns nil when not found.
func (r *inventoryRepository) GetByProductID(ctx context.Context, productID string) (*model.Inventory, error) {
	query := `
		SELECT id, product_id, quantity, last_updated
		FROM inventory
		WHERE product_id = $1
	`

	var inv model.Inventory
	err := r.pool.QueryRow(ctx, query, productID).Scan(&inv.ID, &inv.ProductID, &inv.Quantity, &inv.LastUpdated)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			r.logger.Debug().Str("product_id", productID).Msg("inventory record not found")
			return nil, nil
		}
		r.logger.Error().Err(err).Str("product_id", productID).Msg("failed to query inventory")
		return nil, fmt.Errorf("failed to query inventory: %w", err)
	}

	return &inv, nil
}

// LockLine locks the product's inventory row for the duration of tx and
// returns its quantity together with the product's current name and price.
// Concurrent reservations against the same product serialize on this lock, so
// the quantity read here stays valid until the transaction commits.
func (r *inventoryRepository) LockLine(ctx context.Context, tx pgx.Tx, productID string) (*StockLine, error) {
	query := `
		SELECT i.product_id, p.name, p.price, i.quantity
		FROM inventory i
		JOIN products p ON p.id = i.product_id
		WHERE i.product_id = $1
		FOR UPDATE OF i
	`

	var line StockLine
	err := tx.QueryRow(ctx, query, productID).Scan(&line.ProductID, &line.ProductName, &line.ProductPrice, &line.Quantity)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			r.logger.Debug().Str("product_id", productID).Msg("no inventory line to lock")
			return nil, nil
		}
		r.logger.Error().Err(err).Str("product_id", productID).Msg("failed to lock inventory line")
		return nil, fmt.Errorf("failed to lock inventory line: %w", err)
	}

	return &line, nil
}

// Deduct decrements a previously locked inventory row. The CHECK constraint on
// quantity backstops the caller's availability check.
func (r *inventoryRepository) Deduct(ctx context.Context, tx pgx.Tx, productID string, qty int) error {
	query := `
		UPDATE inventory
		SET quantity = quantity - $2, last_updated = $3
		WHERE product_id = $1
	`

	_, err := tx.Exec(ctx, query, productID, qty, time.Now())
	if err != nil {
		r.logger.Error().Err(err).
			Str("product_id", productID).
			Int("quantity", qty).
			Msg("failed to deduct stock")
		return fmt.Errorf("failed to deduct stock: %w", err)
	}

	r.logger.Debug().Str("product_id", productID).Int("quantity", qty).Msg("stock deducted")

	return nil
}

// Restore increments the inventory row, compensating a reservation. A single
// UPDATE is atomic, so no explicit lock is needed here.
func (r *inventoryRepository) Restore(ctx context.Context, productID string, qty int) error {
	query := `
		UPDATE inventory
		SET quantity = quantity + $2, last_updated = $3
		WHERE product_id = $1
	`

	_, err := r.pool.Exec(ctx, query, productID, qty, time.Now())
	if err != nil {
		r.logger.Error().Err(err).
			Str("product_id", productID).
			Int("quantity", qty).
			Msg("failed to restore stock")
		return fmt.Errorf("failed to restore stock: %w", err)
	}

	r.logger.Debug().Str("product_id", productID).Int("quantity", qty).Msg("stock restored")

	return nil
}

// SetQuantity overwrites the quantity for a product.
func (r *inventoryRepository) SetQuantity(ctx context.Context, productID string, qty int) error {
	query := `
		UPDATE inventory
		SET quantity = $2, last_updated = $3
		WHERE product_id = $1
	`

	_, err := r.pool.Exec(ctx, query, productID, qty, time.Now())
	if err != nil {
		r.logger.Error().Err(err).Str("product_id", productID).Msg("failed to set stock quantity")
		return fmt.Errorf("failed to set stock quantity: %w", err)
	}

	return nil
}

// UnlinkProduct clears the product reference, preserving the record so stock
// history survives product deletion.
func (r *inventoryRepository) UnlinkProduct(ctx context.Context, tx pgx.Tx, productID string) error {
	query := `
		UPDATE inventory
		SET product_id = NULL, last_updated = $2
		WHERE product_id = $1
	`

	_, err := tx.Exec(ctx, query, productID, time.Now())
	if err != nil {
		r.logger.Error().Err(err).Str("product_id", productID).Msg("failed to unlink inventory record")
		return fmt.Errorf("failed to unlink inventory record: %w", err)
	}

	r.logger.Debug().Str("product_id", productID).Msg("inventory record unlinked")

	return nil
}

// ListLowStock returns products whose stock is strictly below threshold.
func (r *inventoryRepository) ListLowStock(ctx context.Context, threshold int) ([]model.Product, error) {
	query := `
		SELECT p.id, p.name, p.price, p.category, p.description, p.image_url, i.quantity, p.created_at
		FROM inventory i
		JOIN products p ON p.id = i.product_id
		WHERE i.quantity < $1
		ORDER BY i.quantity, p.name
	`

	rows, err := r.pool.Query(ctx, query, threshold)
	if err != nil {
		r.logger.Error().Err(err).Int("threshold", threshold).Msg("failed to query low stock products")
		return nil, fmt.Errorf("failed to query low stock products: %w", err)
	}
	defer rows.Close()

	var products []model.Product
	for rows.Next() {
		var p model.Product
		err := rows.Scan(&p.ID, &p.Name, &p.Price, &p.Category, &p.Description,
			&p.ImageURL, &p.Stock, &p.CreatedAt)
		if err != nil {
			r.logger.Error().Err(err).Msg("failed to scan low stock row")
			return nil, fmt.Errorf("failed to scan low stock product: %w", err)
		}
		products = append(products, p)
	}

	if err := rows.Err(); err != nil {
		r.logger.Error().Err(err).Msg("error iterating low stock rows")
		return nil, fmt.Errorf("error iterating low stock products: %w", err)
	}

	return products, nil
}
