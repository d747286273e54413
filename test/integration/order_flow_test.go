package integration

import (
	"context"
	"testing"
	"time"

	"storefront/internal/model"
	"storefront/internal/repository"
	"storefront/internal/service"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fixture struct {
	users     repository.UserRepository
	products  repository.ProductRepository
	inventory repository.InventoryRepository
	carts     repository.CartRepository
	orders    repository.OrderRepository
	invoices  repository.InvoiceRepository

	productSvc   service.ProductService
	cartSvc      service.CartService
	orderSvc     service.OrderService
	inventorySvc service.InventoryService
	invoiceSvc   service.InvoiceService
}

func newFixture(db *TestDB) *fixture {
	logger := zerolog.Nop()
	f := &fixture{
		users:     repository.NewUserRepository(db.Pool, logger),
		products:  repository.NewProductRepository(db.Pool, logger),
		inventory: repository.NewInventoryRepository(db.Pool, logger),
		carts:     repository.NewCartRepository(db.Pool, logger),
		orders:    repository.NewOrderRepository(db.Pool, logger),
		invoices:  repository.NewInvoiceRepository(db.Pool, logger),
	}
	f.productSvc = service.NewProductService(f.products, f.inventory, logger)
	f.cartSvc = service.NewCartService(f.carts, f.products, logger)
	f.orderSvc = service.NewOrderService(f.orders, f.users, f.carts, f.products, f.inventory, logger)
	f.inventorySvc = service.NewInventoryService(f.inventory, f.orders, f.products, logger)
	f.invoiceSvc = service.NewInvoiceService(f.invoices, f.orders, f.users, nil, logger)
	return f
}

// createUserWithCart persists a user and their empty cart directly, bypassing
// the OTP flow.
func (f *fixture) createUserWithCart(t *testing.T, ctx context.Context) *model.User {
	t.Helper()

	user := &model.User{
		ID:              uuid.New(),
		Name:            "Asha",
		Email:           uuid.NewString() + "@example.com",
		Password:        "secret",
		EmailVerified:   true,
		BillingAddress:  "12 Hill Road",
		ShippingAddress: "12 Hill Road",
		CreatedAt:       time.Now(),
	}

	tx, err := f.users.BeginTx(ctx)
	require.NoError(t, err)
	require.NoError(t, f.users.Create(ctx, tx, user))
	require.NoError(t, f.carts.Create(ctx, tx, &model.Cart{ID: uuid.New(), UserID: user.ID, CreatedAt: time.Now()}))
	require.NoError(t, tx.Commit(ctx))

	return user
}

func TestOrderFlow(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	db := SetupTestDB(t)
	f := newFixture(db)
	ctx := context.Background()

	user := f.createUserWithCart(t, ctx)

	widget, err := f.productSvc.Create(ctx, &model.Product{Name: "Widget", Price: 12.50, Category: "tools", Stock: 10})
	require.NoError(t, err)
	gadget, err := f.productSvc.Create(ctx, &model.Product{Name: "Gadget", Price: 18.00, Category: "tools", Stock: 4})
	require.NoError(t, err)

	cart, err := f.cartSvc.GetCartByUser(ctx, user.ID)
	require.NoError(t, err)

	_, err = f.cartSvc.AddItem(ctx, cart.ID, &model.AddItemRequest{ProductID: widget.ID, Quantity: 2})
	require.NoError(t, err)
	_, err = f.cartSvc.AddItem(ctx, cart.ID, &model.AddItemRequest{ProductID: gadget.ID, Quantity: 1})
	require.NoError(t, err)

	// Adding the same product again merges into the existing line.
	updated, err := f.cartSvc.AddItem(ctx, cart.ID, &model.AddItemRequest{ProductID: widget.ID, Quantity: 1})
	require.NoError(t, err)
	require.Len(t, updated.Items, 2)

	order, err := f.orderSvc.PlaceOrder(ctx, user.ID, "CARD")
	require.NoError(t, err)
	require.Len(t, order.Items, 2)
	assert.Equal(t, model.OrderStatusPending, order.Status)
	assert.InDelta(t, 3*12.50+1*18.00, order.TotalAmount, 0.001)

	// Stock was reserved and the cart emptied.
	widgetStock, err := f.inventorySvc.CurrentStock(ctx, widget.ID)
	require.NoError(t, err)
	assert.Equal(t, 7, widgetStock)

	emptied, err := f.cartSvc.GetCartByUser(ctx, user.ID)
	require.NoError(t, err)
	assert.Empty(t, emptied.Items)

	// Gadget dropped below the threshold of 5.
	low, err := f.inventorySvc.ListLowStock(ctx, 5)
	require.NoError(t, err)
	lowIDs := make([]string, 0, len(low))
	for _, p := range low {
		lowIDs = append(lowIDs, p.ID)
	}
	assert.Contains(t, lowIDs, gadget.ID)
	assert.NotContains(t, lowIDs, widget.ID)

	// Invoice generation is idempotent.
	inv1, err := f.invoiceSvc.GetOrCreateInvoice(ctx, order.ID)
	require.NoError(t, err)
	inv2, err := f.invoiceSvc.GetOrCreateInvoice(ctx, order.ID)
	require.NoError(t, err)
	assert.Equal(t, inv1.ID, inv2.ID)
	assert.InDelta(t, order.TotalAmount*0.18, inv1.TaxAmount, 0.01)
	assert.InDelta(t, 50.00, inv1.ShippingFee, 0.001)

	// Delivery unlinks products from the order's items but preserves the
	// snapshots.
	delivered, err := f.orderSvc.UpdateStatus(ctx, order.ID, "DELIVERED")
	require.NoError(t, err)
	for _, item := range delivered.Items {
		assert.Nil(t, item.ProductID)
		assert.NotEmpty(t, item.ProductName)
	}

	// The widget is no longer referenced, so deleting it now succeeds and
	// leaves its ledger record unlinked rather than deleted.
	_, err = f.productSvc.Delete(ctx, widget.ID)
	require.NoError(t, err)

	_, err = f.productSvc.GetByID(ctx, widget.ID)
	var notFound *model.NotFoundError
	require.ErrorAs(t, err, &notFound)
}

func TestOrderFlow_InsufficientStockIsAtomic(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	db := SetupTestDB(t)
	f := newFixture(db)
	ctx := context.Background()

	user := f.createUserWithCart(t, ctx)

	widget, err := f.productSvc.Create(ctx, &model.Product{Name: "Widget", Price: 12.50, Category: "tools", Stock: 10})
	require.NoError(t, err)
	scarce, err := f.productSvc.Create(ctx, &model.Product{Name: "Scarce", Price: 99.00, Category: "tools", Stock: 2})
	require.NoError(t, err)

	cart, err := f.cartSvc.GetCartByUser(ctx, user.ID)
	require.NoError(t, err)

	_, err = f.cartSvc.AddItem(ctx, cart.ID, &model.AddItemRequest{ProductID: widget.ID, Quantity: 2})
	require.NoError(t, err)
	_, err = f.cartSvc.AddItem(ctx, cart.ID, &model.AddItemRequest{ProductID: scarce.ID, Quantity: 2})
	require.NoError(t, err)

	// Drain the scarce product behind the cart's back.
	require.NoError(t, f.inventory.SetQuantity(ctx, scarce.ID, 1))

	_, err = f.orderSvc.PlaceOrder(ctx, user.ID, "CARD")
	var insufficient *model.InsufficientStockError
	require.ErrorAs(t, err, &insufficient)
	assert.Equal(t, scarce.ID, insufficient.ProductID)

	// Nothing was deducted, the cart is intact.
	widgetStock, err := f.inventorySvc.CurrentStock(ctx, widget.ID)
	require.NoError(t, err)
	assert.Equal(t, 10, widgetStock)

	intact, err := f.cartSvc.GetCartByUser(ctx, user.ID)
	require.NoError(t, err)
	assert.Len(t, intact.Items, 2)
}

func TestOrderFlow_DeleteReferencedProductRefused(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	db := SetupTestDB(t)
	f := newFixture(db)
	ctx := context.Background()

	user := f.createUserWithCart(t, ctx)

	widget, err := f.productSvc.Create(ctx, &model.Product{Name: "Widget", Price: 12.50, Category: "tools", Stock: 10})
	require.NoError(t, err)

	cart, err := f.cartSvc.GetCartByUser(ctx, user.ID)
	require.NoError(t, err)
	_, err = f.cartSvc.AddItem(ctx, cart.ID, &model.AddItemRequest{ProductID: widget.ID, Quantity: 1})
	require.NoError(t, err)

	order, err := f.orderSvc.PlaceOrder(ctx, user.ID, "CARD")
	require.NoError(t, err)

	// A pending order still references the product.
	_, err = f.productSvc.Delete(ctx, widget.ID)
	var constraint *model.ConstraintViolationError
	require.ErrorAs(t, err, &constraint)

	// Cancelling restores the reservation.
	require.NoError(t, f.inventorySvc.RestoreStock(ctx, order.ID))
	stock, err := f.inventorySvc.CurrentStock(ctx, widget.ID)
	require.NoError(t, err)
	assert.Equal(t, 10, stock)
}
