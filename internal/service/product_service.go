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

// productService implements ProductService.
type productService struct {
	productRepo   repository.ProductRepository
	inventoryRepo repository.InventoryRepository
	logger        zerolog.Logger
}

// NewProductService creates a new product service.
func NewProductService(
	productRepo repository.ProductRepository,
	inventoryRepo repository.InventoryRepository,
	logger zerolog.Logger,
) ProductService {
	return &productService{
		productRepo:   productRepo,
		inventoryRepo: inventoryRepo,
		logger:        logger.With().Str("service", "product").Logger(),
	}
}

// Create persists a new product and its inventory record in one transaction.
func (s *productService) Create(ctx context.Context, p *model.Product) (*model.Product, error) {
	if p.Name == "" {
		return nil, &model.DomainError{Code: model.ErrCodeInvalidJSON, Message: "product name is required"}
	}
	if p.Price < 0 {
		return nil, &model.DomainError{Code: model.ErrCodeInvalidJSON, Message: "product price must not be negative"}
	}
	if p.Stock < 0 {
		return nil, &model.DomainError{Code: model.ErrCodeInvalidJSON, Message: "product stock must not be negative"}
	}
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	p.CreatedAt = time.Now()

	tx, err := s.productRepo.BeginTx(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to create product: %w", err)
	}

	defer func() {
		if err != nil {
			if rbErr := tx.Rollback(ctx); rbErr != nil {
				s.logger.Error().Err(rbErr).Msg("failed to rollback transaction")
			}
		}
	}()

	if err = s.productRepo.Create(ctx, tx, p); err != nil {
		return nil, fmt.Errorf("failed to create product: %w", err)
	}

	productID := p.ID
	inv := &model.Inventory{
		ID:          uuid.New(),
		ProductID:   &productID,
		Quantity:    p.Stock,
		LastUpdated: time.Now(),
	}
	if err = s.inventoryRepo.Create(ctx, tx, inv); err != nil {
		return nil, fmt.Errorf("failed to create product: %w", err)
	}

	if err = tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to create product: %w", err)
	}

	s.logger.Info().Str("product_id", p.ID).Str("name", p.Name).Int("stock", p.Stock).Msg("product created")
	return p, nil
}

// GetByID retrieves a single product with current stock.
func (s *productService) GetByID(ctx context.Context, id string) (*model.Product, error) {
	product, err := s.productRepo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get product: %w", err)
	}
	if product == nil {
		return nil, model.NewNotFoundError("product", id)
	}
	return product, nil
}

// GetAll retrieves all products with current stock.
func (s *productService) GetAll(ctx context.Context) ([]model.Product, error) {
	products, err := s.productRepo.GetAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get products: %w", err)
	}
	return products, nil
}

// Update changes a product's mutable fields and syncs the stock quantity.
func (s *productService) Update(ctx context.Context, id string, upd *model.Product) (*model.Product, error) {
	product, err := s.productRepo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to update product: %w", err)
	}
	if product == nil {
		return nil, model.NewNotFoundError("product", id)
	}
	if upd.Price < 0 {
		return nil, &model.DomainError{Code: model.ErrCodeInvalidJSON, Message: "product price must not be negative"}
	}
	if upd.Stock < 0 {
		return nil, &model.DomainError{Code: model.ErrCodeInvalidJSON, Message: "product stock must not be negative"}
	}

	product.Name = upd.Name
	product.Price = upd.Price
	product.Category = upd.Category
	product.Description = upd.Description
	product.ImageURL = upd.ImageURL

	updated, err := s.productRepo.Update(ctx, product)
	if err != nil {
		return nil, fmt.Errorf("failed to update product: %w", err)
	}
	if !updated {
		return nil, model.NewNotFoundError("product", id)
	}

	if upd.Stock != product.Stock {
		if err := s.inventoryRepo.SetQuantity(ctx, id, upd.Stock); err != nil {
			return nil, fmt.Errorf("failed to update product: %w", err)
		}
		product.Stock = upd.Stock
	}

	s.logger.Info().Str("product_id", id).Msg("product updated")
	return product, nil
}

// UpdateName changes only the product name.
func (s *productService) UpdateName(ctx context.Context, id, name string) (*model.Product, error) {
	if name == "" {
		return nil, &model.DomainError{Code: model.ErrCodeInvalidJSON, Message: "product name is required"}
	}

	updated, err := s.productRepo.UpdateName(ctx, id, name)
	if err != nil {
		return nil, fmt.Errorf("failed to update product name: %w", err)
	}
	if !updated {
		return nil, model.NewNotFoundError("product", id)
	}

	s.logger.Info().Str("product_id", id).Str("name", name).Msg("product renamed")
	return s.GetByID(ctx, id)
}

// Delete removes a product. It refuses while any order item still references
// the product; the inventory record is unlinked rather than deleted, so the
// ledger row survives the catalogue entry.
func (s *productService) Delete(ctx context.Context, id string) (*model.Product, error) {
	product, err := s.productRepo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to delete product: %w", err)
	}
	if product == nil {
		return nil, model.NewNotFoundError("product", id)
	}

	referenced, err := s.productRepo.IsReferencedByOrderItems(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to delete product: %w", err)
	}
	if referenced {
		s.logger.Warn().Str("product_id", id).Msg("delete refused, product still referenced by order items")
		return nil, &model.ConstraintViolationError{
			Message: "Cannot delete product: it is still referenced in order items. Deliver or cancel the orders first.",
		}
	}

	tx, err := s.productRepo.BeginTx(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to delete product: %w", err)
	}

	defer func() {
		if err != nil {
			if rbErr := tx.Rollback(ctx); rbErr != nil {
				s.logger.Error().Err(rbErr).Msg("failed to rollback transaction")
			}
		}
	}()

	if err = s.inventoryRepo.UnlinkProduct(ctx, tx, id); err != nil {
		return nil, fmt.Errorf("failed to delete product: %w", err)
	}

	if err = s.productRepo.Delete(ctx, tx, id); err != nil {
		return nil, fmt.Errorf("failed to delete product: %w", err)
	}

	if err = tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to delete product: %w", err)
	}

	s.logger.Info().Str("product_id", id).Msg("product deleted")
	return product, nil
}
