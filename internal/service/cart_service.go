package service

import (
	"context"
	"fmt"
	"time"

	"storefront/internal/model"
	"storefront/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// cartService implements CartService.
type cartService struct {
	cartRepo    repository.CartRepository
	productRepo repository.ProductRepository
	logger      zerolog.Logger
}

// NewCartService creates a new cart service.
func NewCartService(
	cartRepo repository.CartRepository,
	productRepo repository.ProductRepository,
	logger zerolog.Logger,
) CartService {
	return &cartService{
		cartRepo:    cartRepo,
		productRepo: productRepo,
		logger:      logger.With().Str("service", "cart").Logger(),
	}
}

// GetCart retrieves a cart with its items.
func (s *cartService) GetCart(ctx context.Context, cartID uuid.UUID) (*model.Cart, error) {
	cart, err := s.cartRepo.GetByID(ctx, cartID)
	if err != nil {
		return nil, fmt.Errorf("failed to get cart: %w", err)
	}
	if cart == nil {
		return nil, model.NewNotFoundError("cart", cartID.String())
	}
	return cart, nil
}

// GetCartByUser retrieves a user's cart with its items.
func (s *cartService) GetCartByUser(ctx context.Context, userID uuid.UUID) (*model.Cart, error) {
	cart, err := s.cartRepo.GetByUserID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get cart: %w", err)
	}
	if cart == nil {
		return nil, model.NewNotFoundError("cart", "for user "+userID.String())
	}
	return cart, nil
}

// AddItem adds a product to the cart. A second add of the same product merges
// into the existing line instead of creating a duplicate. The line records the
// product's price at add time; the authoritative price is re-read at checkout.
func (s *cartService) AddItem(ctx context.Context, cartID uuid.UUID, req *model.AddItemRequest) (*model.Cart, error) {
	if req.Quantity <= 0 {
		return nil, model.ErrInvalidQuantity
	}

	cart, err := s.GetCart(ctx, cartID)
	if err != nil {
		return nil, err
	}

	product, err := s.productRepo.GetByID(ctx, req.ProductID)
	if err != nil {
		return nil, fmt.Errorf("failed to add cart item: %w", err)
	}
	if product == nil {
		return nil, model.NewNotFoundError("product", req.ProductID)
	}

	if product.Stock < req.Quantity {
		return nil, &model.InsufficientStockError{
			ProductID:   product.ID,
			ProductName: product.Name,
			Requested:   req.Quantity,
			Available:   product.Stock,
		}
	}

	var existing *model.CartItem
	for i := range cart.Items {
		if cart.Items[i].ProductID == req.ProductID {
			existing = &cart.Items[i]
			break
		}
	}

	if existing != nil {
		if err := s.cartRepo.UpdateItemQuantity(ctx, existing.ID, existing.Quantity+req.Quantity); err != nil {
			return nil, fmt.Errorf("failed to add cart item: %w", err)
		}
	} else {
		item := &model.CartItem{
			ID:        uuid.New(),
			CartID:    cartID,
			ProductID: req.ProductID,
			Quantity:  req.Quantity,
			Price:     product.Price,
			AddedAt:   time.Now(),
		}
		if err := s.cartRepo.AddItem(ctx, item); err != nil {
			return nil, fmt.Errorf("failed to add cart item: %w", err)
		}
	}

	s.logger.Info().
		Str("cart_id", cartID.String()).
		Str("product_id", req.ProductID).
		Int("quantity", req.Quantity).
		Msg("item added to cart")

	return s.GetCart(ctx, cartID)
}

// UpdateItemQuantity changes a cart item's quantity.
func (s *cartService) UpdateItemQuantity(ctx context.Context, cartID, itemID uuid.UUID, qty int) (*model.Cart, error) {
	if qty <= 0 {
		return nil, model.ErrInvalidQuantity
	}

	if err := s.ownItem(ctx, cartID, itemID); err != nil {
		return nil, err
	}

	if err := s.cartRepo.UpdateItemQuantity(ctx, itemID, qty); err != nil {
		return nil, fmt.Errorf("failed to update cart item: %w", err)
	}

	return s.GetCart(ctx, cartID)
}

// RemoveItem deletes a single cart item.
func (s *cartService) RemoveItem(ctx context.Context, cartID, itemID uuid.UUID) (*model.Cart, error) {
	if err := s.ownItem(ctx, cartID, itemID); err != nil {
		return nil, err
	}

	if err := s.cartRepo.RemoveItem(ctx, itemID); err != nil {
		return nil, fmt.Errorf("failed to remove cart item: %w", err)
	}

	s.logger.Info().Str("cart_id", cartID.String()).Str("item_id", itemID.String()).Msg("item removed from cart")
	return s.GetCart(ctx, cartID)
}

// ClearByUser removes every item from the user's cart.
func (s *cartService) ClearByUser(ctx context.Context, userID uuid.UUID) error {
	cart, err := s.cartRepo.GetByUserID(ctx, userID)
	if err != nil {
		return fmt.Errorf("failed to clear cart: %w", err)
	}
	if cart == nil {
		return model.NewNotFoundError("cart", "for user "+userID.String())
	}

	if err := s.cartRepo.ClearItems(ctx, cart.ID); err != nil {
		return fmt.Errorf("failed to clear cart: %w", err)
	}

	s.logger.Info().Str("cart_id", cart.ID.String()).Msg("cart cleared")
	return nil
}

// ownItem verifies that the item exists and belongs to the cart.
func (s *cartService) ownItem(ctx context.Context, cartID, itemID uuid.UUID) error {
	item, err := s.cartRepo.GetItem(ctx, itemID)
	if err != nil {
		return fmt.Errorf("failed to get cart item: %w", err)
	}
	if item == nil || item.CartID != cartID {
		return model.ErrItemNotInCart
	}
	return nil
}
