package repository

import (
	"context"
	"errors"
	"fmt"

	"storefront/internal/model"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
)

// productRepository implements the ProductRepository interface using PostgreSQL.
type productRepository struct {
	pool   *pgxpool.Pool
	logger zerolog.Logger
}

// NewProductRepository creates a new PostgreSQL-backed product repository.
func NewProductRepository(pool *pgxpool.Pool, logger zerolog.Logger) ProductRepository {
	return &productRepository{
		pool:   pool,
		logger: logger.With().Str("repository", "product").Logger(),
	}
}

// BeginTx starts a new database transaction.
func (r *productRepository) BeginTx(ctx context.Context) (pgx.Tx, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		r.logger.Error().Err(err).Msg("failed to begin transaction")
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	return tx, nil
}

// Create inserts a new product within the provided transaction.
func (r *productRepository) Create(ctx context.Context, tx pgx.Tx, p *model.Product) error {
	query := `
		INSERT INTO products (id, name, price, category, description, image_url, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`

	_, err := tx.Exec(ctx, query, p.ID, p.Name, p.Price, p.Category, p.Description, p.ImageURL, p.CreatedAt)
	if err != nil {
		r.logger.Error().Err(err).Str("product_id", p.ID).Msg("failed to create product")
		return fmt.Errorf("failed to create product: %w", err)
	}

	return nil
}

// productSelect joins inventory so Stock reflects the ledger quantity.
// Unlinked inventory rows (product_id IS NULL) never match, so a product
// without a ledger record reports zero stock.
const productSelect = `
	SELECT p.id, p.name, p.price, p.category, p.description, p.image_url,
	       COALESCE(i.quantity, 0), p.created_at
	FROM products p
	LEFT JOIN inventory i ON i.product_id = p.id
`

func scanProduct(row pgx.Row) (*model.Product, error) {
	var p model.Product
	err := row.Scan(&p.ID, &p.Name, &p.Price, &p.Category, &p.Description,
		&p.ImageURL, &p.Stock, &p.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// GetByID retrieves a product with its current stock. Returns nil when not found.
func (r *productRepository) GetByID(ctx context.Context, id string) (*model.Product, error) {
	p, err := scanProduct(r.pool.QueryRow(ctx, productSelect+` WHERE p.id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			r.logger.Debug().Str("product_id", id).Msg("product not found")
			return nil, nil
		}
		r.logger.Error().Err(err).Str("product_id", id).Msg("failed to query product")
		return nil, fmt.Errorf("failed to query product: %w", err)
	}

	return p, nil
}

// Lookup retrieves a product's identity, name and price inside the provided
// transaction. Returns nil when not found.
func (r *productRepository) Lookup(ctx context.Context, tx pgx.Tx, id string) (*model.Product, error) {
	var p model.Product
	err := tx.QueryRow(ctx, `SELECT id, name, price FROM products WHERE id = $1`, id).
		Scan(&p.ID, &p.Name, &p.Price)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		r.logger.Error().Err(err).Str("product_id", id).Msg("failed to look up product")
		return nil, fmt.Errorf("failed to look up product: %w", err)
	}
	return &p, nil
}

// GetAll retrieves all products with their current stock.
func (r *productRepository) GetAll(ctx context.Context) ([]model.Product, error) {
	rows, err := r.pool.Query(ctx, productSelect+` ORDER BY p.name`)
	if err != nil {
		r.logger.Error().Err(err).Msg("failed to query products")
		return nil, fmt.Errorf("failed to query products: %w", err)
	}
	defer rows.Close()

	var products []model.Product
	for rows.Next() {
		var p model.Product
		err := rows.Scan(&p.ID, &p.Name, &p.Price, &p.Category, &p.Description,
			&p.ImageURL, &p.Stock, &p.CreatedAt)
		if err != nil {
			r.logger.Error().Err(err).Msg("failed to scan product row")
			return nil, fmt.Errorf("failed to scan product: %w", err)
		}
		products = append(products, p)
	}

	if err := rows.Err(); err != nil {
		r.logger.Error().Err(err).Msg("error iterating product rows")
		return nil, fmt.Errorf("error iterating products: %w", err)
	}

	return products, nil
}

// Update persists changes to all mutable product fields.
func (r *productRepository) Update(ctx context.Context, p *model.Product) (bool, error) {
	query := `
		UPDATE products
		SET name = $2, price = $3, category = $4, description = $5, image_url = $6
		WHERE id = $1
	`

	tag, err := r.pool.Exec(ctx, query, p.ID, p.Name, p.Price, p.Category, p.Description, p.ImageURL)
	if err != nil {
		r.logger.Error().Err(err).Str("product_id", p.ID).Msg("failed to update product")
		return false, fmt.Errorf("failed to update product: %w", err)
	}

	return tag.RowsAffected() > 0, nil
}

// UpdateName changes only the product name.
func (r *productRepository) UpdateName(ctx context.Context, id, name string) (bool, error) {
	tag, err := r.pool.Exec(ctx, `UPDATE products SET name = $2 WHERE id = $1`, id, name)
	if err != nil {
		r.logger.Error().Err(err).Str("product_id", id).Msg("failed to update product name")
		return false, fmt.Errorf("failed to update product name: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}

// Delete removes a product within the provided transaction.
func (r *productRepository) Delete(ctx context.Context, tx pgx.Tx, id string) error {
	_, err := tx.Exec(ctx, `DELETE FROM products WHERE id = $1`, id)
	if err != nil {
		r.logger.Error().Err(err).Str("product_id", id).Msg("failed to delete product")
		return fmt.Errorf("failed to delete product: %w", err)
	}

	r.logger.Debug().Str("product_id", id).Msg("product deleted")

	return nil
}

// IsReferencedByOrderItems reports whether any order item still links the product.
func (r *productRepository) IsReferencedByOrderItems(ctx context.Context, id string) (bool, error) {
	var referenced bool
	err := r.pool.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM order_items WHERE product_id = $1)`, id).Scan(&referenced)
	if err != nil {
		r.logger.Error().Err(err).Str("product_id", id).Msg("failed to check order item references")
		return false, fmt.Errorf("failed to check order item references: %w", err)
	}
	return referenced, nil
}
