package repository

import (
	"context"
	"errors"
	"fmt"

	"storefront/internal/model"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
)

// cartRepository implements the CartRepository interface using PostgreSQL.
type cartRepository struct {
	pool   *pgxpool.Pool
	logger zerolog.Logger
}

// NewCartRepository creates a new PostgreSQL-backed cart repository.
func NewCartRepository(pool *pgxpool.Pool, logger zerolog.Logger) CartRepository {
	return &cartRepository{
		pool:   pool,
		logger: logger.With().Str("repository", "cart").Logger(),
	}
}

// Create inserts an empty cart within the provided transaction.
func (r *cartRepository) Create(ctx context.Context, tx pgx.Tx, cart *model.Cart) error {
	query := `
		INSERT INTO carts (id, user_id, created_at)
		VALUES ($1, $2, $3)
	`

	_, err := tx.Exec(ctx, query, cart.ID, cart.UserID, cart.CreatedAt)
	if err != nil {
		r.logger.Error().Err(err).Str("user_id", cart.UserID.String()).Msg("failed to create cart")
		return fmt.Errorf("failed to create cart: %w", err)
	}

	return nil
}

// GetByID retrieves a cart with its items. Returns nil when not found.
func (r *cartRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Cart, error) {
	return r.getCart(ctx, `SELECT id, user_id, created_at FROM carts WHERE id = $1`, id)
}

// GetByUserID retrieves a user's cart with its items. Returns nil when the
// user has no cart.
func (r *cartRepository) GetByUserID(ctx context.Context, userID uuid.UUID) (*model.Cart, error) {
	return r.getCart(ctx, `SELECT id, user_id, created_at FROM carts WHERE user_id = $1`, userID)
}

func (r *cartRepository) getCart(ctx context.Context, query string, arg uuid.UUID) (*model.Cart, error) {
	var cart model.Cart
	err := r.pool.QueryRow(ctx, query, arg).Scan(&cart.ID, &cart.UserID, &cart.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			r.logger.Debug().Str("key", arg.String()).Msg("cart not found")
			return nil, nil
		}
		r.logger.Error().Err(err).Str("key", arg.String()).Msg("failed to query cart")
		return nil, fmt.Errorf("failed to query cart: %w", err)
	}

	items, err := r.getItems(ctx, cart.ID)
	if err != nil {
		return nil, err
	}
	cart.Items = items

	return &cart, nil
}

// getItems returns a cart's items in insertion order.
func (r *cartRepository) getItems(ctx context.Context, cartID uuid.UUID) ([]model.CartItem, error) {
	query := `
		SELECT id, cart_id, product_id, quantity, price, added_at
		FROM cart_items
		WHERE cart_id = $1
		ORDER BY added_at, id
	`

	rows, err := r.pool.Query(ctx, query, cartID)
	if err != nil {
		r.logger.Error().Err(err).Str("cart_id", cartID.String()).Msg("failed to query cart items")
		return nil, fmt.Errorf("failed to query cart items: %w", err)
	}
	defer rows.Close()

	var items []model.CartItem
	for rows.Next() {
		var item model.CartItem
		err := rows.Scan(&item.ID, &item.CartID, &item.ProductID, &item.Quantity, &item.Price, &item.AddedAt)
		if err != nil {
			r.logger.Error().Err(err).Msg("failed to scan cart item row")
			return nil, fmt.Errorf("failed to scan cart item: %w", err)
		}
		items = append(items, item)
	}

	if err := rows.Err(); err != nil {
		r.logger.Error().Err(err).Msg("error iterating cart item rows")
		return nil, fmt.Errorf("error iterating cart items: %w", err)
	}

	return items, nil
}

// AddItem inserts a new cart item.
func (r *cartRepository) AddItem(ctx context.Context, item *model.CartItem) error {
	query := `
		INSERT INTO cart_items (id, cart_id, product_id, quantity, price, added_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`

	_, err := r.pool.Exec(ctx, query, item.ID, item.CartID, item.ProductID, item.Quantity, item.Price, item.AddedAt)
	if err != nil {
		r.logger.Error().Err(err).
			Str("cart_id", item.CartID.String()).
			Str("product_id", item.ProductID).
			Msg("failed to add cart item")
		return fmt.Errorf("failed to add cart item: %w", err)
	}

	return nil
}

// GetItem retrieves a single cart item. Returns nil when not found.
func (r *cartRepository) GetItem(ctx context.Context, itemID uuid.UUID) (*model.CartItem, error) {
	query := `
		SELECT id, cart_id, product_id, quantity, price, added_at
		FROM cart_items
		WHERE id = $1
	`

	var item model.CartItem
	err := r.pool.QueryRow(ctx, query, itemID).Scan(&item.ID, &item.CartID, &item.ProductID,
		&item.Quantity, &item.Price, &item.AddedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		r.logger.Error().Err(err).Str("item_id", itemID.String()).Msg("failed to query cart item")
		return nil, fmt.Errorf("failed to query cart item: %w", err)
	}

	return &item, nil
}

// UpdateItemQuantity changes a cart item's quantity.
func (r *cartRepository) UpdateItemQuantity(ctx context.Context, itemID uuid.UUID, qty int) error {
	_, err := r.pool.Exec(ctx, `UPDATE cart_items SET quantity = $2 WHERE id = $1`, itemID, qty)
	if err != nil {
		r.logger.Error().Err(err).Str("item_id", itemID.String()).Msg("failed to update cart item quantity")
		return fmt.Errorf("failed to update cart item quantity: %w", err)
	}
	return nil
}

// RemoveItem deletes a single cart item.
func (r *cartRepository) RemoveItem(ctx context.Context, itemID uuid.UUID) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM cart_items WHERE id = $1`, itemID)
	if err != nil {
		r.logger.Error().Err(err).Str("item_id", itemID.String()).Msg("failed to remove cart item")
		return fmt.Errorf("failed to remove cart item: %w", err)
	}
	return nil
}

// ClearItems deletes every item of a cart; the cart itself persists.
func (r *cartRepository) ClearItems(ctx context.Context, cartID uuid.UUID) error {
	return r.clearItems(ctx, r.pool, cartID)
}

// ClearItemsTx is ClearItems within a caller-owned transaction.
func (r *cartRepository) ClearItemsTx(ctx context.Context, tx pgx.Tx, cartID uuid.UUID) error {
	return r.clearItems(ctx, tx, cartID)
}

func (r *cartRepository) clearItems(ctx context.Context, q Querier, cartID uuid.UUID) error {
	_, err := q.Exec(ctx, `DELETE FROM cart_items WHERE cart_id = $1`, cartID)
	if err != nil {
		r.logger.Error().Err(err).Str("cart_id", cartID.String()).Msg("failed to clear cart items")
		return fmt.Errorf("failed to clear cart items: %w", err)
	}

	r.logger.Debug().Str("cart_id", cartID.String()).Msg("cart items cleared")

	return nil
}
