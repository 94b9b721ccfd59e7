package gateway_test

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

func newGateway(t *testing.T) (*gateway.CatalogGateway, *catalog.Service) {
	t.Helper()
	svc := catalog.NewService(store.NewMemoryProductStore(), nil)
	return gateway.NewCatalogGateway(svc, nil), svc
}

func createProduct(t *testing.T, svc *catalog.Service, stock int) *catalog.Product {
	t.Helper()
	product, err := svc.CreateProduct(context.Background(), catalog.CreateProductInput{
		SKU:          "LAPTOP-001",
		Name:         "Gaming Laptop",
		Price:        1299.99,
		Currency:     "USD",
		InitialStock: stock,
	})
	require.NoError(t, err)
	return product
}

func TestCheckAvailability(t *testing.T) {
	gw, svc := newGateway(t)
	product := createProduct(t, svc, 10)

	snapshot, err := gw.CheckAvailability(context.Background(), product.ID)
	require.NoError(t, err)

	assert.Equal(t, product.ID, snapshot.ProductID)
	assert.Equal(t, "Gaming Laptop", snapshot.Name)
	assert.Equal(t, int64(129999), snapshot.UnitPriceCents)
	assert.Equal(t, "USD", snapshot.Currency)
	assert.Equal(t, 10, snapshot.Available)
}

func TestCheckAvailabilityRepeatedReadsAgree(t *testing.T) {
	gw, svc := newGateway(t)
	product := createProduct(t, svc, 10)

	first, err := gw.CheckAvailability(context.Background(), product.ID)
	require.NoError(t, err)
	second, err := gw.CheckAvailability(context.Background(), product.ID)
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

func TestCheckAvailabilityNotFound(t *testing.T) {
	gw, _ := newGateway(t)

	_, err := gw.CheckAvailability(context.Background(), uuid.New())
	require.Error(t, err)

	notFound, ok := err.(*orders.ProductNotFoundError)
	require.True(t, ok, "expected *orders.ProductNotFoundError, got %T", err)
	assert.NotEmpty(t, notFound.ProductID)
}

func TestReserveTranslatesInsufficientStock(t *testing.T) {
	gw, svc := newGateway(t)
	product := createProduct(t, svc, 10)

	result, err := gw.Reserve(context.Background(), product.ID, 15)
	require.NoError(t, err)

	assert.Equal(t, orders.ReservationInsufficientStock, result.Status)
	assert.Equal(t, product.ID, result.ProductID)
	assert.Equal(t, 15, result.Requested)
	assert.Equal(t, 10, result.Available)
}

func TestReserveTranslatesNotFound(t *testing.T) {
	gw, _ := newGateway(t)
	missing := uuid.New()

	result, err := gw.Reserve(context.Background(), missing, 2)
	require.NoError(t, err)

	assert.Equal(t, orders.ReservationProductNotFound, result.Status)
	assert.Equal(t, missing, result.ProductID)
}

func TestReserveSuccess(t *testing.T) {
	gw, svc := newGateway(t)
	product := createProduct(t, svc, 10)

	result, err := gw.Reserve(context.Background(), product.ID, 3)
	require.NoError(t, err)

	assert.Equal(t, orders.ReservationReserved, result.Status)
	assert.Equal(t, 7, result.Available)
}

func TestReleaseRestoresStock(t *testing.T) {
	gw, svc := newGateway(t)
	product := createProduct(t, svc, 10)

	_, err := gw.Reserve(context.Background(), product.ID, 3)
	require.NoError(t, err)
	require.NoError(t, gw.Release(context.Background(), product.ID, 3))

	snapshot, err := gw.CheckAvailability(context.Background(), product.ID)
	require.NoError(t, err)
	assert.Equal(t, 10, snapshot.Available)
}
