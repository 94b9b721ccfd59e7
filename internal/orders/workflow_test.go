package orders_test

import (
	"context"
	"testing"

	"commerce-service/internal/catalog"
	"commerce-service/internal/gateway"
	"commerce-service/internal/orders"
	"commerce-service/internal/store"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// These tests run the placement workflow end to end: orders service, the
// real gateway adapter, the catalog service and the in-memory stores.

type workflowFixture struct {
	catalogSvc *catalog.Service
	orderSvc   *orders.Service
	orderRepo  *store.MemoryOrderStore
}

func newWorkflow(t *testing.T) *workflowFixture {
	t.Helper()
	catalogSvc := catalog.NewService(store.NewMemoryProductStore(), nil)
	orderRepo := store.NewMemoryOrderStore()
	gw := gateway.NewCatalogGateway(catalogSvc, nil)
	return &workflowFixture{
		catalogSvc: catalogSvc,
		orderSvc:   orders.NewService(orderRepo, gw, nil),
		orderRepo:  orderRepo,
	}
}

func (f *workflowFixture) createProduct(t *testing.T, sku string, price float64, stock int) *catalog.Product {
	t.Helper()
	product, err := f.catalogSvc.CreateProduct(context.Background(), catalog.CreateProductInput{
		SKU:          sku,
		Name:         "Product " + sku,
		Price:        price,
		Currency:     "USD",
		InitialStock: stock,
	})
	require.NoError(t, err)
	return product
}

func (f *workflowFixture) stockOf(t *testing.T, productID uuid.UUID) int {
	t.Helper()
	product, err := f.catalogSvc.GetProduct(context.Background(), productID)
	require.NoError(t, err)
	return product.Stock.Quantity()
}

func TestWorkflowConfirmedOrderReducesStock(t *testing.T) {
	f := newWorkflow(t)
	product := f.createProduct(t, "LAPTOP-001", 1299.99, 10)

	order, err := f.orderSvc.PlaceOrder(context.Background(),
		placeOrderInput(orders.ItemInput{ProductID: product.ID.String(), Quantity: 2}))
	require.NoError(t, err)

	assert.Equal(t, orders.StatusConfirmed, order.Status)
	assert.Equal(t, int64(129999), order.Items[0].UnitPriceCents)
	assert.Equal(t, 8, f.stockOf(t, product.ID))
}

func TestWorkflowInsufficientStockLeavesStockIntact(t *testing.T) {
	f := newWorkflow(t)
	product := f.createProduct(t, "LAPTOP-001", 1299.99, 10)

	_, err := f.orderSvc.PlaceOrder(context.Background(),
		placeOrderInput(orders.ItemInput{ProductID: product.ID.String(), Quantity: 15}))
	require.Error(t, err)

	stockErr, ok := err.(*orders.InsufficientStockError)
	require.True(t, ok)
	assert.Equal(t, 15, stockErr.Requested)
	assert.Equal(t, 10, stockErr.Available)
	assert.Equal(t, 10, f.stockOf(t, product.ID))
}

func TestWorkflowMissingSecondProduct(t *testing.T) {
	f := newWorkflow(t)
	product := f.createProduct(t, "LAPTOP-001", 1299.99, 10)

	_, err := f.orderSvc.PlaceOrder(context.Background(),
		placeOrderInput(
			orders.ItemInput{ProductID: product.ID.String(), Quantity: 2},
			orders.ItemInput{ProductID: uuid.New().String(), Quantity: 1},
		))
	require.Error(t, err)
	assert.IsType(t, &orders.ProductNotFoundError{}, err)
	assert.Equal(t, 10, f.stockOf(t, product.ID))
}

func TestWorkflowMultiItemRollbackNetsZero(t *testing.T) {
	f := newWorkflow(t)
	first := f.createProduct(t, "LAPTOP-001", 1299.99, 10)
	second := f.createProduct(t, "MOUSE-001", 49.99, 5)
	third := f.createProduct(t, "MONITOR-01", 399.99, 1)

	// third item requests more than available, so the whole order fails
	_, err := f.orderSvc.PlaceOrder(context.Background(),
		placeOrderInput(
			orders.ItemInput{ProductID: first.ID.String(), Quantity: 4},
			orders.ItemInput{ProductID: second.ID.String(), Quantity: 2},
			orders.ItemInput{ProductID: third.ID.String(), Quantity: 3},
		))
	require.Error(t, err)
	assert.IsType(t, &orders.InsufficientStockError{}, err)

	assert.Equal(t, 10, f.stockOf(t, first.ID))
	assert.Equal(t, 5, f.stockOf(t, second.ID))
	assert.Equal(t, 1, f.stockOf(t, third.ID))
}

func TestWorkflowPriceCapturedAtOrderTime(t *testing.T) {
	f := newWorkflow(t)
	product := f.createProduct(t, "LAPTOP-001", 1299.99, 10)

	order, err := f.orderSvc.PlaceOrder(context.Background(),
		placeOrderInput(orders.ItemInput{ProductID: product.ID.String(), Quantity: 1}))
	require.NoError(t, err)

	// reading the order back returns the captured price, independent of
	// whatever the catalog says afterwards
	persisted, err := f.orderSvc.GetOrder(context.Background(), order.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(129999), persisted.Items[0].UnitPriceCents)
}

func TestWorkflowListOrders(t *testing.T) {
	f := newWorkflow(t)
	product := f.createProduct(t, "LAPTOP-001", 1299.99, 10)

	for i := 0; i < 3; i++ {
		_, err := f.orderSvc.PlaceOrder(context.Background(),
			placeOrderInput(orders.ItemInput{ProductID: product.ID.String(), Quantity: 1}))
		require.NoError(t, err)
	}

	list, err := f.orderSvc.ListOrders(context.Background(), 10, 0)
	require.NoError(t, err)
	assert.Len(t, list, 3)
}
