package service

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"storefront/internal/model"
	"storefront/internal/repository"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog"
)

// orderService implements OrderService.
type orderService struct {
	orderRepo     repository.OrderRepository
	userRepo      repository.UserRepository
	cartRepo      repository.CartRepository
	productRepo   repository.ProductRepository
	inventoryRepo repository.InventoryRepository
	logger        zerolog.Logger
}

// NewOrderService creates a new order service.
func NewOrderService(
	orderRepo repository.OrderRepository,
	userRepo repository.UserRepository,
	cartRepo repository.CartRepository,
	productRepo repository.ProductRepository,
	inventoryRepo repository.InventoryRepository,
	logger zerolog.Logger,
) OrderService {
	return &orderService{
		orderRepo:     orderRepo,
		userRepo:      userRepo,
		cartRepo:      cartRepo,
		productRepo:   productRepo,
		inventoryRepo: inventoryRepo,
		logger:        logger.With().Str("service", "order").Logger(),
	}
}

// PlaceOrder converts the user's cart into a persisted order. Reservations,
// order rows and the cart clear commit as one transaction, so a failed line
// rolls back every earlier reservation of the same attempt and leaves the
// cart intact.
func (s *orderService) PlaceOrder(ctx context.Context, userID uuid.UUID, paymentMethod string) (*model.Order, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to place order: %w", err)
	}
	if user == nil {
		return nil, model.NewNotFoundError("user", userID.String())
	}

	cart, err := s.cartRepo.GetByUserID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to place order: %w", err)
	}
	if cart == nil {
		return nil, model.NewNotFoundError("cart", "for user "+userID.String())
	}

	if len(cart.Items) == 0 {
		s.logger.Warn().Str("user_id", userID.String()).Msg("attempted to place order from empty cart")
		return nil, model.ErrEmptyCart
	}

	// Inventory rows are locked in product-ID order so two concurrent
	// placements over overlapping products cannot deadlock.
	lines := make([]model.CartItem, len(cart.Items))
	copy(lines, cart.Items)
	sort.Slice(lines, func(i, j int) bool { return lines[i].ProductID < lines[j].ProductID })

	tx, err := s.orderRepo.BeginTx(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to place order: %w", err)
	}

	defer func() {
		if err != nil {
			if rbErr := tx.Rollback(ctx); rbErr != nil {
				s.logger.Error().Err(rbErr).Msg("failed to rollback transaction")
			}
		}
	}()

	now := time.Now()
	order := &model.Order{
		ID:              uuid.New(),
		UserID:          user.ID,
		Status:          model.OrderStatusPending,
		PaymentMethod:   paymentMethod,
		BillingAddress:  user.BillingAddress,
		ShippingAddress: user.ShippingAddress,
		CreatedAt:       now,
	}

	var total float64
	items := make([]model.OrderItem, 0, len(lines))

	for _, line := range lines {
		var stock *repository.StockLine
		stock, err = s.inventoryRepo.LockLine(ctx, tx, line.ProductID)
		if err != nil {
			return nil, fmt.Errorf("failed to place order: %w", err)
		}
		if stock == nil {
			err = model.NewNotFoundError("inventory", "for product "+line.ProductID)
			return nil, err
		}

		if stock.Quantity < line.Quantity {
			s.logger.Warn().
				Str("user_id", userID.String()).
				Str("product_id", line.ProductID).
				Int("requested", line.Quantity).
				Int("available", stock.Quantity).
				Msg("insufficient stock, aborting placement")
			err = &model.InsufficientStockError{
				ProductID:   line.ProductID,
				ProductName: stock.ProductName,
				Requested:   line.Quantity,
				Available:   stock.Quantity,
			}
			return nil, err
		}

		if err = s.inventoryRepo.Deduct(ctx, tx, line.ProductID, line.Quantity); err != nil {
			return nil, fmt.Errorf("failed to place order: %w", err)
		}

		// Snapshot freezes at checkout: the current catalogue price wins over
		// the cart item's add-time price.
		productID := line.ProductID
		item := model.OrderItem{
			ID:           uuid.New(),
			OrderID:      order.ID,
			ProductID:    &productID,
			Quantity:     line.Quantity,
			Price:        stock.ProductPrice,
			ProductName:  stock.ProductName,
			ProductPrice: stock.ProductPrice,
		}
		total += item.ItemTotal()
		items = append(items, item)
	}

	order.TotalAmount = total
	order.Items = items

	if err = s.orderRepo.Create(ctx, tx, order); err != nil {
		return nil, fmt.Errorf("failed to place order: %w", err)
	}

	if err = s.orderRepo.CreateItems(ctx, tx, items); err != nil {
		return nil, fmt.Errorf("failed to place order: %w", err)
	}

	if err = s.cartRepo.ClearItemsTx(ctx, tx, cart.ID); err != nil {
		return nil, fmt.Errorf("failed to place order: %w", err)
	}

	if err = tx.Commit(ctx); err != nil {
		s.logger.Error().Err(err).Str("order_id", order.ID.String()).Msg("failed to commit placement")
		return nil, fmt.Errorf("failed to place order: %w", err)
	}

	s.logger.Info().
		Str("order_id", order.ID.String()).
		Str("user_id", userID.String()).
		Int("item_count", len(items)).
		Float64("total_amount", total).
		Msg("order placed successfully")

	return order, nil
}

// GetByID retrieves an order with its items.
func (s *orderService) GetByID(ctx context.Context, orderID uuid.UUID) (*model.Order, error) {
	order, err := s.orderRepo.GetByID(ctx, orderID)
	if err != nil {
		return nil, fmt.Errorf("failed to get order: %w", err)
	}
	if order == nil {
		return nil, model.NewNotFoundError("order", orderID.String())
	}
	return order, nil
}

// ListByUser retrieves all orders placed by a user.
func (s *orderService) ListByUser(ctx context.Context, userID uuid.UUID) ([]model.Order, error) {
	orders, err := s.orderRepo.ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list orders: %w", err)
	}
	return orders, nil
}

// UpdateStatus sets the order status. Transitioning to DELIVERED (in any
// case) unlinks product references from the order's items in the same
// transaction: the snapshots become the permanent audit record, independent
// of later product mutation or deletion.
func (s *orderService) UpdateStatus(ctx context.Context, orderID uuid.UUID, status string) (*model.Order, error) {
	tx, err := s.orderRepo.BeginTx(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to update order status: %w", err)
	}

	defer func() {
		if err != nil {
			if rbErr := tx.Rollback(ctx); rbErr != nil {
				s.logger.Error().Err(rbErr).Msg("failed to rollback transaction")
			}
		}
	}()

	var updated bool
	updated, err = s.orderRepo.UpdateStatus(ctx, tx, orderID, status)
	if err != nil {
		return nil, fmt.Errorf("failed to update order status: %w", err)
	}
	if !updated {
		err = model.NewNotFoundError("order", orderID.String())
		return nil, err
	}

	if strings.EqualFold(status, model.OrderStatusDelivered) {
		if err = s.unlinkItems(ctx, tx, orderID); err != nil {
			return nil, err
		}
	}

	if err = tx.Commit(ctx); err != nil {
		s.logger.Error().Err(err).Str("order_id", orderID.String()).Msg("failed to commit status update")
		return nil, fmt.Errorf("failed to update order status: %w", err)
	}

	s.logger.Info().
		Str("order_id", orderID.String()).
		Str("status", status).
		Msg("order status updated")

	return s.GetByID(ctx, orderID)
}

// unlinkItems clears product references from the order's items, filling any
// snapshot field not captured at placement from the current product first.
// Items already unlinked are skipped, which makes re-delivery a no-op.
func (s *orderService) unlinkItems(ctx context.Context, tx pgx.Tx, orderID uuid.UUID) error {
	items, err := s.orderRepo.GetItemsForUpdate(ctx, tx, orderID)
	if err != nil {
		return fmt.Errorf("failed to unlink order items: %w", err)
	}

	var changed []model.OrderItem
	for _, item := range items {
		if item.ProductID == nil {
			continue
		}

		if item.ProductName == "" {
			product, err := s.productRepo.Lookup(ctx, tx, *item.ProductID)
			if err != nil {
				return fmt.Errorf("failed to unlink order items: %w", err)
			}
			if product != nil {
				item.ProductName = product.Name
				item.ProductPrice = product.Price
			}
		}

		item.ProductID = nil
		changed = append(changed, item)
	}

	if len(changed) == 0 {
		return nil
	}

	if err := s.orderRepo.UpdateItemSnapshots(ctx, tx, changed); err != nil {
		return fmt.Errorf("failed to unlink order items: %w", err)
	}

	s.logger.Info().
		Str("order_id", orderID.String()).
		Int("item_count", len(changed)).
		Msg("unlinked products from delivered order items")

	return nil
}
