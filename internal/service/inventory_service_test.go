package service

import (
	"context"
	"testing"

	"storefront/internal/model"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newInventoryServiceForTest(
	inventoryRepo *MockInventoryRepository,
	orderRepo *MockOrderRepository,
	productRepo *MockProductRepository,
) InventoryService {
	return NewInventoryService(inventoryRepo, orderRepo, productRepo, zerolog.Nop())
}

func TestInventoryService_ValidateStock_Available(t *testing.T) {
	ctx := context.Background()

	mockInventoryRepo := new(MockInventoryRepository)
	mockOrderRepo := new(MockOrderRepository)
	mockProductRepo := new(MockProductRepository)

	svc := newInventoryServiceForTest(mockInventoryRepo, mockOrderRepo, mockProductRepo)

	productID := "P001"
	mockInventoryRepo.On("GetByProductID", ctx, productID).
		Return(&model.Inventory{ID: uuid.New(), ProductID: &productID, Quantity: 5}, nil)

	err := svc.ValidateStock(ctx, productID, 3)

	require.NoError(t, err)
}

func TestInventoryService_ValidateStock_Insufficient(t *testing.T) {
	ctx := context.Background()

	mockInventoryRepo := new(MockInventoryRepository)
	mockOrderRepo := new(MockOrderRepository)
	mockProductRepo := new(MockProductRepository)

	svc := newInventoryServiceForTest(mockInventoryRepo, mockOrderRepo, mockProductRepo)

	productID := "P001"
	mockInventoryRepo.On("GetByProductID", ctx, productID).
		Return(&model.Inventory{ID: uuid.New(), ProductID: &productID, Quantity: 1}, nil)
	mockProductRepo.On("GetByID", ctx, productID).
		Return(&model.Product{ID: productID, Name: "Widget"}, nil)

	err := svc.ValidateStock(ctx, productID, 3)

	require.Error(t, err)
	var insufficient *model.InsufficientStockError
	require.ErrorAs(t, err, &insufficient)
	assert.Equal(t, "Widget", insufficient.ProductName)
	assert.Equal(t, 3, insufficient.Requested)
	assert.Equal(t, 1, insufficient.Available)
}

func TestInventoryService_ValidateStock_InvalidQuantity(t *testing.T) {
	ctx := context.Background()

	mockInventoryRepo := new(MockInventoryRepository)
	mockOrderRepo := new(MockOrderRepository)
	mockProductRepo := new(MockProductRepository)

	svc := newInventoryServiceForTest(mockInventoryRepo, mockOrderRepo, mockProductRepo)

	err := svc.ValidateStock(ctx, "P001", 0)

	require.Error(t, err)
	assert.Equal(t, model.ErrInvalidQuantity, err)
	mockInventoryRepo.AssertNotCalled(t, "GetByProductID")
}

func TestInventoryService_RestoreStock_SkipsUnlinkedItems(t *testing.T) {
	ctx := context.Background()
	orderID := uuid.New()
	productID := "P001"

	mockInventoryRepo := new(MockInventoryRepository)
	mockOrderRepo := new(MockOrderRepository)
	mockProductRepo := new(MockProductRepository)

	svc := newInventoryServiceForTest(mockInventoryRepo, mockOrderRepo, mockProductRepo)

	order := &model.Order{
		ID: orderID,
		Items: []model.OrderItem{
			{ID: uuid.New(), OrderID: orderID, ProductID: &productID, Quantity: 2},
			{ID: uuid.New(), OrderID: orderID, ProductID: nil, Quantity: 1, ProductName: "Gone"},
		},
	}

	mockOrderRepo.On("GetByID", ctx, orderID).Return(order, nil)
	mockInventoryRepo.On("Restore", ctx, productID, 2).Return(nil)

	err := svc.RestoreStock(ctx, orderID)

	require.NoError(t, err)
	mockInventoryRepo.AssertExpectations(t)
	mockInventoryRepo.AssertNumberOfCalls(t, "Restore", 1)
}

func TestInventoryService_RestoreStock_OrderNotFound(t *testing.T) {
	ctx := context.Background()
	orderID := uuid.New()

	mockInventoryRepo := new(MockInventoryRepository)
	mockOrderRepo := new(MockOrderRepository)
	mockProductRepo := new(MockProductRepository)

	svc := newInventoryServiceForTest(mockInventoryRepo, mockOrderRepo, mockProductRepo)

	mockOrderRepo.On("GetByID", ctx, orderID).Return(nil, nil)

	err := svc.RestoreStock(ctx, orderID)

	require.Error(t, err)
	var notFound *model.NotFoundError
	require.ErrorAs(t, err, &notFound)
	mockInventoryRepo.AssertNotCalled(t, "Restore")
}

func TestInventoryService_ListLowStock(t *testing.T) {
	ctx := context.Background()

	mockInventoryRepo := new(MockInventoryRepository)
	mockOrderRepo := new(MockOrderRepository)
	mockProductRepo := new(MockProductRepository)

	svc := newInventoryServiceForTest(mockInventoryRepo, mockOrderRepo, mockProductRepo)

	low := []model.Product{{ID: "P001", Name: "Widget", Stock: 2}}
	mockInventoryRepo.On("ListLowStock", ctx, 5).Return(low, nil)

	products, err := svc.ListLowStock(ctx, 5)

	require.NoError(t, err)
	require.Len(t, products, 1)
	assert.Equal(t, "P001", products[0].ID)
}
