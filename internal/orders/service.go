package orders

import (
	"context"
	"fmt"
	"time"

	"commerce-service/internal/util"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Service exposes the orders use cases. PlaceOrder is the cross-context
// workflow: it validates items against the catalog through the gateway,
// reserves stock per item, and confirms the order only when every
// reservation succeeded.
type Service struct {
	repo      OrderRepository
	gateway   InventoryGateway
	publisher EventPublisher
	logger    *zap.Logger
}

func NewService(repo OrderRepository, gateway InventoryGateway, publisher EventPublisher) *Service {
	return &Service{
		repo:      repo,
		gateway:   gateway,
		publisher: publisher,
		logger:    util.GetLogger(),
	}
}

// PlaceOrderInput carries the primitives of an order placement request.
type PlaceOrderInput struct {
	Customer CustomerInput
	Items    []ItemInput
	Address  AddressInput
}

type CustomerInput struct {
	CustomerID string
	Name       string
	Email      string
	Phone      string
}

type ItemInput struct {
	ProductID string
	Quantity  int
}

type AddressInput struct {
	Street     string
	City       string
	State      string
	PostalCode string
	Country    string
}

// reservation records one acquired reservation so it can be compensated in
// reverse order of acquisition.
type reservation struct {
	productID uuid.UUID
	quantity  int
}

// PlaceOrder runs the order placement workflow:
//
//  1. Validate the request and build a PENDING order. No gateway calls are
//     made if validation fails.
//  2. Check availability for every item, in request order, capturing the
//     unit price at order time.
//  3. Reserve stock per item, in the same order, sequentially. Any failure
//     rolls back prior reservations in reverse order, marks the order
//     FAILED and surfaces a typed error naming the offending product.
//  4. Confirm and persist the order. A persistence failure after successful
//     reservations triggers full compensation before surfacing.
func (s *Service) PlaceOrder(ctx context.Context, in PlaceOrderInput) (*Order, error) {
	ctx, span := util.StartSpan(ctx, "OrderService.PlaceOrder")
	defer span.End()

	start := time.Now()
	defer func() {
		util.PlaceOrderLatency.Observe(time.Since(start).Seconds())
	}()

	order, err := s.buildOrder(in)
	if err != nil {
		util.OrdersFailedTotal.WithLabelValues("validation").Inc()
		return nil, err
	}

	// Availability phase: all products must exist before any stock moves.
	for i := range order.Items {
		snapshot, err := s.gateway.CheckAvailability(ctx, order.Items[i].ProductID)
		if err != nil {
			if nf, ok := err.(*ProductNotFoundError); ok {
				s.failOrder(ctx, order, nf.Error())
				util.OrdersFailedTotal.WithLabelValues("product_not_found").Inc()
				return nil, nf
			}
			return nil, fmt.Errorf("availability check failed for product %s: %w",
				order.Items[i].ProductID, err)
		}
		order.Items[i].ProductName = snapshot.Name
		order.Items[i].UnitPriceCents = snapshot.UnitPriceCents
	}

	// Reservation phase: strictly sequential, compensations collected as
	// reservations are acquired and executed LIFO on failure.
	var acquired []reservation
	for _, item := range order.Items {
		result, err := s.gateway.Reserve(ctx, item.ProductID, item.Quantity.Value())
		if err != nil {
			s.rollback(ctx, order.ID, acquired)
			s.failOrder(ctx, order, err.Error())
			util.OrdersFailedTotal.WithLabelValues("reservation_error").Inc()
			return nil, fmt.Errorf("reservation failed for product %s: %w", item.ProductID, err)
		}

		switch result.Status {
		case ReservationReserved:
			acquired = append(acquired, reservation{
				productID: item.ProductID,
				quantity:  item.Quantity.Value(),
			})

		case ReservationInsufficientStock:
			s.rollback(ctx, order.ID, acquired)
			stockErr := &InsufficientStockError{
				ProductID: result.ProductID.String(),
				Requested: result.Requested,
				Available: result.Available,
			}
			s.failOrder(ctx, order, stockErr.Error())
			util.OrdersFailedTotal.WithLabelValues("insufficient_stock").Inc()
			return nil, stockErr

		case ReservationProductNotFound:
			// Product disappeared since the availability phase. Treated
			// identically to insufficient stock: rollback and fail.
			s.rollback(ctx, order.ID, acquired)
			nfErr := &ProductNotFoundError{ProductID: result.ProductID.String()}
			s.failOrder(ctx, order, nfErr.Error())
			util.OrdersFailedTotal.WithLabelValues("product_not_found").Inc()
			return nil, nfErr
		}
	}

	if err := order.Confirm(); err != nil {
		s.rollback(ctx, order.ID, acquired)
		return nil, err
	}

	if err := s.repo.Save(ctx, order); err != nil {
		// Stock is reserved but the confirmed order cannot be stored. Release
		// everything so availability is not permanently lost, then surface.
		s.logger.Error("Failed to persist confirmed order, compensating reservations",
			zap.String("order_id", order.ID.String()),
			zap.Error(err))
		s.rollback(ctx, order.ID, acquired)
		util.OrdersFailedTotal.WithLabelValues("persistence").Inc()
		return nil, &PersistenceError{Op: "save order", Err: err}
	}

	util.OrdersConfirmedTotal.Inc()
	s.logger.Info("Order confirmed",
		zap.String("order_id", order.ID.String()),
		zap.Int("items", len(order.Items)),
		zap.Int64("total_cents", order.TotalCents()))

	if s.publisher != nil {
		if err := s.publisher.PublishOrderConfirmed(ctx, order); err != nil {
			s.logger.Error("Failed to publish OrderConfirmed event", zap.Error(err))
		}
	}

	return order, nil
}

// buildOrder constructs the value objects and the candidate PENDING order.
func (s *Service) buildOrder(in PlaceOrderInput) (*Order, error) {
	customer, err := NewCustomerInfo(in.Customer.CustomerID, in.Customer.Name, in.Customer.Email, in.Customer.Phone)
	if err != nil {
		return nil, err
	}

	address, err := NewShippingAddress(in.Address.Street, in.Address.City, in.Address.State, in.Address.PostalCode, in.Address.Country)
	if err != nil {
		return nil, err
	}

	items := make([]OrderItem, 0, len(in.Items))
	for _, item := range in.Items {
		productID, err := uuid.Parse(item.ProductID)
		if err != nil {
			return nil, NewValidationError("product_id", fmt.Sprintf("invalid product id: %s", item.ProductID))
		}
		quantity, err := NewQuantity(item.Quantity)
		if err != nil {
			return nil, err
		}
		items = append(items, OrderItem{
			ProductID: productID,
			Quantity:  quantity,
		})
	}

	return NewOrder(customer, items, address)
}

// rollback releases acquired reservations in reverse order of acquisition.
// Best effort: release failures are logged for manual reconciliation, never
// re-raised, since the order has already failed terminally.
func (s *Service) rollback(ctx context.Context, orderID uuid.UUID, acquired []reservation) {
	for i := len(acquired) - 1; i >= 0; i-- {
		r := acquired[i]
		if err := s.gateway.Release(ctx, r.productID, r.quantity); err != nil {
			s.logger.Error("Failed to release reservation during rollback",
				zap.String("order_id", orderID.String()),
				zap.String("product_id", r.productID.String()),
				zap.Int("quantity", r.quantity),
				zap.Error(err))
		}
		util.ReservationRollbacksTotal.Inc()
	}
}

// failOrder marks the order FAILED and persists it for diagnostics. The
// persisted failure record is best effort; the typed error the caller maps
// to a response is what matters.
func (s *Service) failOrder(ctx context.Context, order *Order, reason string) {
	if err := order.MarkFailed(reason); err != nil {
		s.logger.Error("Failed to mark order failed", zap.Error(err))
		return
	}
	if err := s.repo.Save(ctx, order); err != nil {
		s.logger.Error("Failed to persist failed order",
			zap.String("order_id", order.ID.String()),
			zap.Error(err))
	}
	if s.publisher != nil {
		if err := s.publisher.PublishOrderFailed(ctx, order); err != nil {
			s.logger.Error("Failed to publish OrderFailed event", zap.Error(err))
		}
	}
}

// GetOrder retrieves an order by ID.
func (s *Service) GetOrder(ctx context.Context, orderID uuid.UUID) (*Order, error) {
	return s.repo.GetByID(ctx, orderID)
}

// ListOrders retrieves a page of orders, newest first.
func (s *Service) ListOrders(ctx context.Context, limit, offset int) ([]*Order, error) {
	if limit <= 0 || limit > 100 {
		limit = 100
	}
	if offset < 0 {
		offset = 0
	}
	return s.repo.List(ctx, limit, offset)
}
