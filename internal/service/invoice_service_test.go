package service

import (
	"context"
	"fmt"
	"testing"
	"time"

	"storefront/internal/model"
	"storefront/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func testOrder() *model.Order {
	productID := "P001"
	orderID := uuid.New()
	return &model.Order{
		ID:              orderID,
		UserID:          uuid.New(),
		Status:          model.OrderStatusPending,
		TotalAmount:     200.00,
		PaymentMethod:   "CARD",
		BillingAddress:  "12 Hill Road",
		ShippingAddress: "12 Hill Road",
		Items: []model.OrderItem{
			{ID: uuid.New(), OrderID: orderID, ProductID: &productID, Quantity: 2, Price: 100.00, ProductName: "Widget", ProductPrice: 100.00},
		},
		CreatedAt: time.Now(),
	}
}

func TestInvoiceService_GetOrCreateInvoice_Generates(t *testing.T) {
	ctx := context.Background()
	order := testOrder()

	mockInvoiceRepo := new(MockInvoiceRepository)
	mockOrderRepo := new(MockOrderRepository)
	mockUserRepo := new(MockUserRepository)

	svc := NewInvoiceService(mockInvoiceRepo, mockOrderRepo, mockUserRepo, nil, zerolog.Nop())

	mockInvoiceRepo.On("GetByOrderID", ctx, order.ID).Return(nil, nil)
	mockOrderRepo.On("GetByID", ctx, order.ID).Return(order, nil)
	mockInvoiceRepo.On("Create", ctx, mock.AnythingOfType("*model.Invoice")).Return(nil)

	inv, err := svc.GetOrCreateInvoice(ctx, order.ID)

	require.NoError(t, err)
	require.NotNil(t, inv)
	assert.Equal(t, order.ID, inv.OrderID)
	assert.Equal(t, order.UserID, inv.UserID)
	assert.InDelta(t, 200.00, inv.TotalAmount, 0.001)
	assert.InDelta(t, 36.00, inv.TaxAmount, 0.001)
	assert.InDelta(t, 50.00, inv.ShippingFee, 0.001)
	assert.Equal(t, model.InvoiceStatusGenerated, inv.Status)

	expectedNumber := fmt.Sprintf("INV-%s-%s", time.Now().Format("20060102"), order.ID)
	assert.Equal(t, expectedNumber, inv.InvoiceNumber)

	mockInvoiceRepo.AssertExpectations(t)
}

func TestInvoiceService_GetOrCreateInvoice_ReturnsExisting(t *testing.T) {
	ctx := context.Background()
	orderID := uuid.New()
	existing := &model.Invoice{
		ID:            uuid.New(),
		InvoiceNumber: "INV-20260101-" + orderID.String(),
		OrderID:       orderID,
		TotalAmount:   200.00,
		TaxAmount:     36.00,
		ShippingFee:   50.00,
		Status:        model.InvoiceStatusGenerated,
	}

	mockInvoiceRepo := new(MockInvoiceRepository)
	mockOrderRepo := new(MockOrderRepository)
	mockUserRepo := new(MockUserRepository)

	svc := NewInvoiceService(mockInvoiceRepo, mockOrderRepo, mockUserRepo, nil, zerolog.Nop())

	mockInvoiceRepo.On("GetByOrderID", ctx, orderID).Return(existing, nil)

	inv, err := svc.GetOrCreateInvoice(ctx, orderID)

	require.NoError(t, err)
	assert.Equal(t, existing, inv)
	mockOrderRepo.AssertNotCalled(t, "GetByID")
	mockInvoiceRepo.AssertNotCalled(t, "Create")
}

func TestInvoiceService_GetOrCreateInvoice_LosesRaceReReads(t *testing.T) {
	ctx := context.Background()
	order := testOrder()
	winner := &model.Invoice{
		ID:          uuid.New(),
		OrderID:     order.ID,
		TotalAmount: 200.00,
		Status:      model.InvoiceStatusGenerated,
	}

	mockInvoiceRepo := new(MockInvoiceRepository)
	mockOrderRepo := new(MockOrderRepository)
	mockUserRepo := new(MockUserRepository)

	svc := NewInvoiceService(mockInvoiceRepo, mockOrderRepo, mockUserRepo, nil, zerolog.Nop())

	// A concurrent caller inserted between our read and our create. The
	// unique constraint rejects our row and we return theirs.
	mockInvoiceRepo.On("GetByOrderID", ctx, order.ID).Return(nil, nil).Once()
	mockOrderRepo.On("GetByID", ctx, order.ID).Return(order, nil)
	mockInvoiceRepo.On("Create", ctx, mock.AnythingOfType("*model.Invoice")).
		Return(repository.ErrInvoiceExists)
	mockInvoiceRepo.On("GetByOrderID", ctx, order.ID).Return(winner, nil).Once()

	inv, err := svc.GetOrCreateInvoice(ctx, order.ID)

	require.NoError(t, err)
	assert.Equal(t, winner.ID, inv.ID)
	mockInvoiceRepo.AssertExpectations(t)
}

func TestInvoiceService_GetOrCreateInvoice_OrderNotFound(t *testing.T) {
	ctx := context.Background()
	orderID := uuid.New()

	mockInvoiceRepo := new(MockInvoiceRepository)
	mockOrderRepo := new(MockOrderRepository)
	mockUserRepo := new(MockUserRepository)

	svc := NewInvoiceService(mockInvoiceRepo, mockOrderRepo, mockUserRepo, nil, zerolog.Nop())

	mockInvoiceRepo.On("GetByOrderID", ctx, orderID).Return(nil, nil)
	mockOrderRepo.On("GetByID", ctx, orderID).Return(nil, nil)

	inv, err := svc.GetOrCreateInvoice(ctx, orderID)

	require.Error(t, err)
	var notFound *model.NotFoundError
	require.ErrorAs(t, err, &notFound)
	assert.Equal(t, "order", notFound.Entity)
	assert.Nil(t, inv)
}

func TestInvoiceService_RenderPDF_ArchivesOnce(t *testing.T) {
	ctx := context.Background()
	order := testOrder()
	existing := &model.Invoice{
		ID:            uuid.New(),
		InvoiceNumber: "INV-20260828-" + order.ID.String(),
		OrderID:       order.ID,
		UserID:        order.UserID,
		TotalAmount:   200.00,
		TaxAmount:     36.00,
		ShippingFee:   50.00,
		Status:        model.InvoiceStatusGenerated,
		GeneratedAt:   time.Now(),
	}

	mockInvoiceRepo := new(MockInvoiceRepository)
	mockOrderRepo := new(MockOrderRepository)
	mockUserRepo := new(MockUserRepository)
	mockArchiver := new(MockArchiver)

	svc := NewInvoiceService(mockInvoiceRepo, mockOrderRepo, mockUserRepo, mockArchiver, zerolog.Nop())

	mockInvoiceRepo.On("GetByOrderID", ctx, order.ID).Return(existing, nil)
	mockOrderRepo.On("GetByID", ctx, order.ID).Return(order, nil)
	mockUserRepo.On("GetByID", ctx, order.UserID).
		Return(&model.User{ID: order.UserID, Name: "Asha"}, nil)
	mockArchiver.On("Archive", ctx, existing.InvoiceNumber+".pdf", mock.AnythingOfType("[]uint8")).
		Return("s3://invoices/"+existing.InvoiceNumber+".pdf", nil)
	mockInvoiceRepo.On("UpdateFilePath", ctx, existing.ID, "s3://invoices/"+existing.InvoiceNumber+".pdf").
		Return(nil)

	pdf, err := svc.RenderPDF(ctx, order.ID)

	require.NoError(t, err)
	require.NotEmpty(t, pdf)
	assert.Equal(t, "%PDF", string(pdf[:4]))
	mockArchiver.AssertExpectations(t)
	mockInvoiceRepo.AssertExpectations(t)
}

func TestInvoiceService_RenderPDF_SkipsArchiveWhenAlreadyStored(t *testing.T) {
	ctx := context.Background()
	order := testOrder()
	path := "s3://invoices/stored.pdf"
	existing := &model.Invoice{
		ID:            uuid.New(),
		InvoiceNumber: "INV-20260828-" + order.ID.String(),
		OrderID:       order.ID,
		UserID:        order.UserID,
		TotalAmount:   200.00,
		TaxAmount:     36.00,
		ShippingFee:   50.00,
		Status:        model.InvoiceStatusGenerated,
		FilePath:      &path,
		GeneratedAt:   time.Now(),
	}

	mockInvoiceRepo := new(MockInvoiceRepository)
	mockOrderRepo := new(MockOrderRepository)
	mockUserRepo := new(MockUserRepository)
	mockArchiver := new(MockArchiver)

	svc := NewInvoiceService(mockInvoiceRepo, mockOrderRepo, mockUserRepo, mockArchiver, zerolog.Nop())

	mockInvoiceRepo.On("GetByOrderID", ctx, order.ID).Return(existing, nil)
	mockOrderRepo.On("GetByID", ctx, order.ID).Return(order, nil)
	mockUserRepo.On("GetByID", ctx, order.UserID).
		Return(&model.User{ID: order.UserID, Name: "Asha"}, nil)

	pdf, err := svc.RenderPDF(ctx, order.ID)

	require.NoError(t, err)
	require.NotEmpty(t, pdf)
	mockArchiver.AssertNotCalled(t, "Archive")
}
