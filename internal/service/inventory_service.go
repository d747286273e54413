package service

import (
	"context"
	"fmt"

	"storefront/internal/model"
	"storefront/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// inventoryService implements InventoryService.
type inventoryService struct {
	inventoryRepo repository.InventoryRepository
	orderRepo     repository.OrderRepository
	productRepo   repository.ProductRepository
	logger        zerolog.Logger
}

// NewInventoryService creates a new inventory service.
func NewInventoryService(
	inventoryRepo repository.InventoryRepository,
	orderRepo repository.OrderRepository,
	productRepo repository.ProductRepository,
	logger zerolog.Logger,
) InventoryService {
	return &inventoryService{
		inventoryRepo: inventoryRepo,
		orderRepo:     orderRepo,
		productRepo:   productRepo,
		logger:        logger.With().Str("service", "inventory").Logger(),
	}
}

// CurrentStock returns the available quantity for a product.
func (s *inventoryService) CurrentStock(ctx context.Context, productID string) (int, error) {
	inv, err := s.inventoryRepo.GetByProductID(ctx, productID)
	if err != nil {
		return 0, fmt.Errorf("failed to get stock: %w", err)
	}
	if inv == nil {
		return 0, model.NewNotFoundError("inventory", "for product "+productID)
	}
	return inv.Quantity, nil
}

// ValidateStock checks that the requested quantity is available. The check is
// advisory; placement re-checks under a row lock.
func (s *inventoryService) ValidateStock(ctx context.Context, productID string, qty int) error {
	if qty <= 0 {
		return model.ErrInvalidQuantity
	}

	available, err := s.CurrentStock(ctx, productID)
	if err != nil {
		return err
	}

	if available < qty {
		product, err := s.productRepo.GetByID(ctx, productID)
		if err != nil {
			return fmt.Errorf("failed to validate stock: %w", err)
		}
		name := productID
		if product != nil {
			name = product.Name
		}
		return &model.InsufficientStockError{
			ProductID:   productID,
			ProductName: name,
			Requested:   qty,
			Available:   available,
		}
	}

	return nil
}

// RestoreStock releases every reservation held by an order's items, e.g.
// after a cancellation. Items whose product has since been unlinked are
// skipped: there is no ledger line left to credit.
func (s *inventoryService) RestoreStock(ctx context.Context, orderID uuid.UUID) error {
	order, err := s.orderRepo.GetByID(ctx, orderID)
	if err != nil {
		return fmt.Errorf("failed to restore stock: %w", err)
	}
	if order == nil {
		return model.NewNotFoundError("order", orderID.String())
	}

	for _, item := range order.Items {
		if item.ProductID == nil {
			continue
		}
		if err := s.inventoryRepo.Restore(ctx, *item.ProductID, item.Quantity); err != nil {
			return fmt.Errorf("failed to restore stock: %w", err)
		}
		s.logger.Info().
			Str("order_id", orderID.String()).
			Str("product_id", *item.ProductID).
			Int("quantity", item.Quantity).
			Msg("stock restored")
	}

	return nil
}

// ListLowStock returns products with stock strictly below the threshold.
func (s *inventoryService) ListLowStock(ctx context.Context, threshold int) ([]model.Product, error) {
	products, err := s.inventoryRepo.ListLowStock(ctx, threshold)
	if err != nil {
		return nil, fmt.Errorf("failed to list low stock: %w", err)
	}
	return products, nil
}
