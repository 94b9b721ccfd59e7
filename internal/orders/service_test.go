package orders_test

import (
	"context"
	"errors"
	"testing"

	"commerce-service/internal/orders"
	"commerce-service/internal/store"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeGateway scripts gateway outcomes per product and records call order.
type fakeGateway struct {
	snapshots map[uuid.UUID]orders.ProductSnapshot
	// reserveDenied maps product IDs to a scripted non-Reserved outcome.
	reserveDenied map[uuid.UUID]orders.ReservationResult
	// reserveErr maps product IDs to an infrastructure error from Reserve.
	reserveErr map[uuid.UUID]error
	// releaseErr, when set, makes every Release call fail.
	releaseErr error

	availabilityCalls []uuid.UUID
	reserveCalls      []uuid.UUID
	releaseCalls      []uuid.UUID
}

func newFakeGateway() *fakeGateway {
	return &fakeGateway{
		snapshots:     make(map[uuid.UUID]orders.ProductSnapshot),
		reserveDenied: make(map[uuid.UUID]orders.ReservationResult),
		reserveErr:    make(map[uuid.UUID]error),
	}
}

func (g *fakeGateway) addProduct(priceCents int64, available int) uuid.UUID {
	id := uuid.New()
	g.snapshots[id] = orders.ProductSnapshot{
		ProductID:      id,
		Name:           "Test Product",
		UnitPriceCents: priceCents,
		Currency:       "USD",
		Available:      available,
	}
	return id
}

func (g *fakeGateway) CheckAvailability(ctx context.Context, productID uuid.UUID) (*orders.ProductSnapshot, error) {
	g.availabilityCalls = append(g.availabilityCalls, productID)
	snapshot, ok := g.snapshots[productID]
	if !ok {
		return nil, &orders.ProductNotFoundError{ProductID: productID.String()}
	}
	return &snapshot, nil
}

func (g *fakeGateway) Reserve(ctx context.Context, productID uuid.UUID, quantity int) (orders.ReservationResult, error) {
	g.reserveCalls = append(g.reserveCalls, productID)
	if err, failed := g.reserveErr[productID]; failed {
		return orders.ReservationResult{}, err
	}
	if result, denied := g.reserveDenied[productID]; denied {
		return result, nil
	}
	snapshot, ok := g.snapshots[productID]
	if !ok {
		return orders.ReservationResult{
			Status:    orders.ReservationProductNotFound,
			ProductID: productID,
			Requested: quantity,
		}, nil
	}
	if quantity > snapshot.Available {
		return orders.ReservationResult{
			Status:    orders.ReservationInsufficientStock,
			ProductID: productID,
			Requested: quantity,
			Available: snapshot.Available,
		}, nil
	}
	snapshot.Available -= quantity
	g.snapshots[productID] = snapshot
	return orders.ReservationResult{
		Status:    orders.ReservationReserved,
		ProductID: productID,
		Requested: quantity,
		Available: snapshot.Available,
	}, nil
}

func (g *fakeGateway) Release(ctx context.Context, productID uuid.UUID, quantity int) error {
	g.releaseCalls = append(g.releaseCalls, productID)
	if g.releaseErr != nil {
		return g.releaseErr
	}
	snapshot, ok := g.snapshots[productID]
	if !ok {
		return nil
	}
	snapshot.Available += quantity
	g.snapshots[productID] = snapshot
	return nil
}

func placeOrderInput(items ...orders.ItemInput) orders.PlaceOrderInput {
	return orders.PlaceOrderInput{
		Customer: orders.CustomerInput{
			CustomerID: "cust-1",
			Name:       "Alice Johnson",
			Email:      "alice@example.com",
			Phone:      "+1-555-0101",
		},
		Items: items,
		Address: orders.AddressInput{
			Street:     "123 Main Street",
			City:       "Springfield",
			State:      "IL",
			PostalCode: "62704",
			Country:    "USA",
		},
	}
}

func TestPlaceOrderConfirmed(t *testing.T) {
	gw := newFakeGateway()
	productID := gw.addProduct(129999, 10)
	repo := store.NewMemoryOrderStore()
	svc := orders.NewService(repo, gw, nil)

	order, err := svc.PlaceOrder(context.Background(),
		placeOrderInput(orders.ItemInput{ProductID: productID.String(), Quantity: 2}))
	require.NoError(t, err)

	assert.Equal(t, orders.StatusConfirmed, order.Status)
	require.Len(t, order.Items, 1)
	// unit price captured at order time
	assert.Equal(t, int64(129999), order.Items[0].UnitPriceCents)
	assert.Equal(t, int64(2*129999), order.TotalCents())
	assert.Equal(t, 8, gw.snapshots[productID].Available)

	persisted, err := repo.GetByID(context.Background(), order.ID)
	require.NoError(t, err)
	assert.Equal(t, orders.StatusConfirmed, persisted.Status)
}

func TestPlaceOrderValidationSkipsGateway(t *testing.T) {
	gw := newFakeGateway()
	productID := gw.addProduct(129999, 10)
	svc := orders.NewService(store.NewMemoryOrderStore(), gw, nil)

	// quantity 0 is rejected before any gateway interaction
	_, err := svc.PlaceOrder(context.Background(),
		placeOrderInput(orders.ItemInput{ProductID: productID.String(), Quantity: 0}))
	require.Error(t, err)
	assert.IsType(t, &orders.ValidationError{}, err)
	assert.Empty(t, gw.availabilityCalls)
	assert.Empty(t, gw.reserveCalls)

	// no items
	_, err = svc.PlaceOrder(context.Background(), placeOrderInput())
	require.Error(t, err)
	assert.IsType(t, &orders.ValidationError{}, err)

	// malformed product id
	_, err = svc.PlaceOrder(context.Background(),
		placeOrderInput(orders.ItemInput{ProductID: "not-a-uuid", Quantity: 1}))
	require.Error(t, err)
	assert.IsType(t, &orders.ValidationError{}, err)
	assert.Empty(t, gw.availabilityCalls)
}

func TestPlaceOrderInsufficientStock(t *testing.T) {
	gw := newFakeGateway()
	productID := gw.addProduct(129999, 10)
	repo := store.NewMemoryOrderStore()
	svc := orders.NewService(repo, gw, nil)

	_, err := svc.PlaceOrder(context.Background(),
		placeOrderInput(orders.ItemInput{ProductID: productID.String(), Quantity: 15}))
	require.Error(t, err)

	stockErr, ok := err.(*orders.InsufficientStockError)
	require.True(t, ok)
	assert.Equal(t, 15, stockErr.Requested)
	assert.Equal(t, 10, stockErr.Available)
	assert.Equal(t, productID.String(), stockErr.ProductID)

	// no stock was taken
	assert.Equal(t, 10, gw.snapshots[productID].Available)

	// the failed order was recorded for diagnostics
	failed, err := repo.List(context.Background(), 10, 0)
	require.NoError(t, err)
	require.Len(t, failed, 1)
	assert.Equal(t, orders.StatusFailed, failed[0].Status)
	assert.Contains(t, failed[0].FailureReason, "insufficient stock")
}

func TestPlaceOrderMissingProductBeforeReservations(t *testing.T) {
	gw := newFakeGateway()
	first := gw.addProduct(129999, 10)
	missing := uuid.New()
	svc := orders.NewService(store.NewMemoryOrderStore(), gw, nil)

	_, err := svc.PlaceOrder(context.Background(),
		placeOrderInput(
			orders.ItemInput{ProductID: first.String(), Quantity: 1},
			orders.ItemInput{ProductID: missing.String(), Quantity: 1},
		))
	require.Error(t, err)

	nfErr, ok := err.(*orders.ProductNotFoundError)
	require.True(t, ok)
	assert.Equal(t, missing.String(), nfErr.ProductID)

	// availability phase aborts before any reservation is attempted, so the
	// first item's stock is untouched
	assert.Empty(t, gw.reserveCalls)
	assert.Equal(t, 10, gw.snapshots[first].Available)
}

func TestPlaceOrderRollbackReverseOrder(t *testing.T) {
	gw := newFakeGateway()
	first := gw.addProduct(1000, 10)
	second := gw.addProduct(2000, 10)
	third := gw.addProduct(3000, 10)
	gw.reserveDenied[third] = orders.ReservationResult{
		Status:    orders.ReservationInsufficientStock,
		ProductID: third,
		Requested: 5,
		Available: 1,
	}
	svc := orders.NewService(store.NewMemoryOrderStore(), gw, nil)

	_, err := svc.PlaceOrder(context.Background(),
		placeOrderInput(
			orders.ItemInput{ProductID: first.String(), Quantity: 2},
			orders.ItemInput{ProductID: second.String(), Quantity: 3},
			orders.ItemInput{ProductID: third.String(), Quantity: 5},
		))
	require.Error(t, err)
	assert.IsType(t, &orders.InsufficientStockError{}, err)

	// reservations acquired in request order, rolled back LIFO
	assert.Equal(t, []uuid.UUID{first, second, third}, gw.reserveCalls)
	assert.Equal(t, []uuid.UUID{second, first}, gw.releaseCalls)

	// net effect on stock is zero
	assert.Equal(t, 10, gw.snapshots[first].Available)
	assert.Equal(t, 10, gw.snapshots[second].Available)
}

func TestPlaceOrderProductVanishesDuringReservation(t *testing.T) {
	gw := newFakeGateway()
	first := gw.addProduct(1000, 10)
	second := gw.addProduct(2000, 10)
	gw.reserveDenied[second] = orders.ReservationResult{
		Status:    orders.ReservationProductNotFound,
		ProductID: second,
		Requested: 1,
	}
	svc := orders.NewService(store.NewMemoryOrderStore(), gw, nil)

	_, err := svc.PlaceOrder(context.Background(),
		placeOrderInput(
			orders.ItemInput{ProductID: first.String(), Quantity: 2},
			orders.ItemInput{ProductID: second.String(), Quantity: 1},
		))
	require.Error(t, err)
	assert.IsType(t, &orders.ProductNotFoundError{}, err)

	// first reservation rolled back
	assert.Equal(t, []uuid.UUID{first}, gw.releaseCalls)
	assert.Equal(t, 10, gw.snapshots[first].Available)
}

func TestPlaceOrderReleaseFailureKeepsOriginalError(t *testing.T) {
	gw := newFakeGateway()
	first := gw.addProduct(1000, 10)
	second := gw.addProduct(2000, 10)
	gw.reserveDenied[second] = orders.ReservationResult{
		Status:    orders.ReservationInsufficientStock,
		ProductID: second,
		Requested: 5,
		Available: 2,
	}
	gw.releaseErr = errors.New("catalog unreachable")
	svc := orders.NewService(store.NewMemoryOrderStore(), gw, nil)

	_, err := svc.PlaceOrder(context.Background(),
		placeOrderInput(
			orders.ItemInput{ProductID: first.String(), Quantity: 2},
			orders.ItemInput{ProductID: second.String(), Quantity: 5},
		))
	require.Error(t, err)

	// release failures are logged, never surfaced; the caller still sees the
	// denial that failed the order
	stockErr, ok := err.(*orders.InsufficientStockError)
	require.True(t, ok)
	assert.Equal(t, second.String(), stockErr.ProductID)

	// compensation was still attempted for the acquired reservation
	assert.Equal(t, []uuid.UUID{first}, gw.releaseCalls)
}

func TestPlaceOrderReserveInfrastructureErrorRollsBack(t *testing.T) {
	gw := newFakeGateway()
	first := gw.addProduct(1000, 10)
	second := gw.addProduct(2000, 10)
	gw.reserveErr[second] = errors.New("catalog timeout")
	svc := orders.NewService(store.NewMemoryOrderStore(), gw, nil)

	_, err := svc.PlaceOrder(context.Background(),
		placeOrderInput(
			orders.ItemInput{ProductID: first.String(), Quantity: 2},
			orders.ItemInput{ProductID: second.String(), Quantity: 1},
		))
	require.Error(t, err)
	assert.ErrorContains(t, err, "catalog timeout")

	// the acquired reservation was rolled back before surfacing
	assert.Equal(t, []uuid.UUID{first}, gw.releaseCalls)
	assert.Equal(t, 10, gw.snapshots[first].Available)
}

func TestPlaceOrderPersistFailureCompensates(t *testing.T) {
	gw := newFakeGateway()
	productID := gw.addProduct(129999, 10)
	repo := store.NewMemoryOrderStore()
	repo.FailSave = errors.New("connection reset")
	svc := orders.NewService(repo, gw, nil)

	_, err := svc.PlaceOrder(context.Background(),
		placeOrderInput(orders.ItemInput{ProductID: productID.String(), Quantity: 2}))
	require.Error(t, err)

	persistErr, ok := err.(*orders.PersistenceError)
	require.True(t, ok)
	assert.ErrorContains(t, persistErr, "connection reset")

	// stock reserved for the unstorable order was released
	assert.Equal(t, []uuid.UUID{productID}, gw.releaseCalls)
	assert.Equal(t, 10, gw.snapshots[productID].Available)
}

func TestGetOrderNotFound(t *testing.T) {
	svc := orders.NewService(store.NewMemoryOrderStore(), newFakeGateway(), nil)

	_, err := svc.GetOrder(context.Background(), uuid.New())
	require.Error(t, err)
	assert.IsType(t, &orders.NotFoundError{}, err)
}
