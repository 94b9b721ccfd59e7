package broker

import (
	"context"
	"fmt"
	"time"

	"commerce-service/internal/catalog"
	"commerce-service/internal/orders"

	"github.com/google/uuid"
)

// Event types
const (
	EventTypeProductCreated = "PRODUCT_CREATED"
	EventTypeStockReserved  = "STOCK_RESERVED"
	EventTypeStockReleased  = "STOCK_RELEASED"
	EventTypeOrderConfirmed = "ORDER_CONFIRMED"
	EventTypeOrderFailed    = "ORDER_FAILED"
)

// BaseEvent contains common fields for all events.
type BaseEvent struct {
	EventID   string    `json:"event_id"`
	EventType string    `json:"event_type"`
	Timestamp time.Time `json:"timestamp"`
}

func newBaseEvent(eventType string) BaseEvent {
	return BaseEvent{
		EventID:   uuid.New().String(),
		EventType: eventType,
		Timestamp: time.Now().UTC(),
	}
}

// ProductCreatedEvent is published when a catalog product is created.
type ProductCreatedEvent struct {
	BaseEvent
	ProductID  string `json:"product_id"`
	SKU        string `json:"sku"`
	Name       string `json:"name"`
	PriceCents int64  `json:"price_cents"`
	Currency   string `json:"currency"`
	Available  int    `json:"available"`
}

// StockReservedEvent is published after a successful reservation.
type StockReservedEvent struct {
	BaseEvent
	ProductID string `json:"product_id"`
	Quantity  int    `json:"quantity"`
	Available int    `json:"available"`
}

// StockReleasedEvent is published after a compensating release.
type StockReleasedEvent struct {
	BaseEvent
	ProductID string `json:"product_id"`
	Quantity  int    `json:"quantity"`
}

// OrderEventItem carries one order line in order events.
type OrderEventItem struct {
	ProductID      string `json:"product_id"`
	Quantity       int    `json:"quantity"`
	UnitPriceCents int64  `json:"unit_price_cents"`
}

// OrderConfirmedEvent is published when an order reaches CONFIRMED.
type OrderConfirmedEvent struct {
	BaseEvent
	OrderID    string           `json:"order_id"`
	CustomerID string           `json:"customer_id"`
	TotalCents int64            `json:"total_cents"`
	Items      []OrderEventItem `json:"items"`
}

// OrderFailedEvent is published when an order placement fails terminally.
type OrderFailedEvent struct {
	BaseEvent
	OrderID string `json:"order_id"`
	Reason  string `json:"reason"`
}

// EventPublisher publishes domain events for both contexts. It satisfies
// catalog.EventPublisher and orders.EventPublisher.
type EventPublisher struct {
	producer *Producer
}

func NewEventPublisher(producer *Producer) *EventPublisher {
	return &EventPublisher{producer: producer}
}

func (ep *EventPublisher) PublishProductCreated(ctx context.Context, product *catalog.Product) error {
	event := &ProductCreatedEvent{
		BaseEvent:  newBaseEvent(EventTypeProductCreated),
		ProductID:  product.ID.String(),
		SKU:        product.SKU.String(),
		Name:       product.Name,
		PriceCents: product.Price.AmountCents(),
		Currency:   product.Price.Currency(),
		Available:  product.Stock.Quantity(),
	}
	return ep.producer.PublishEvent(ctx, productKey(event.ProductID), event)
}

func (ep *EventPublisher) PublishStockReserved(ctx context.Context, productID string, quantity, available int) error {
	event := &StockReservedEvent{
		BaseEvent: newBaseEvent(EventTypeStockReserved),
		ProductID: productID,
		Quantity:  quantity,
		Available: available,
	}
	return ep.producer.PublishEvent(ctx, productKey(productID), event)
}

func (ep *EventPublisher) PublishStockReleased(ctx context.Context, productID string, quantity int) error {
	event := &StockReleasedEvent{
		BaseEvent: newBaseEvent(EventTypeStockReleased),
		ProductID: productID,
		Quantity:  quantity,
	}
	return ep.producer.PublishEvent(ctx, productKey(productID), event)
}

func (ep *EventPublisher) PublishOrderConfirmed(ctx context.Context, order *orders.Order) error {
	items := make([]OrderEventItem, 0, len(order.Items))
	for _, item := range order.Items {
		items = append(items, OrderEventItem{
			ProductID:      item.ProductID.String(),
			Quantity:       item.Quantity.Value(),
			UnitPriceCents: item.UnitPriceCents,
		})
	}

	event := &OrderConfirmedEvent{
		BaseEvent:  newBaseEvent(EventTypeOrderConfirmed),
		OrderID:    order.ID.String(),
		CustomerID: order.Customer.CustomerID,
		TotalCents: order.TotalCents(),
		Items:      items,
	}
	return ep.producer.PublishEvent(ctx, orderKey(event.OrderID), event)
}

func (ep *EventPublisher) PublishOrderFailed(ctx context.Context, order *orders.Order) error {
	event := &OrderFailedEvent{
		BaseEvent: newBaseEvent(EventTypeOrderFailed),
		OrderID:   order.ID.String(),
		Reason:    order.FailureReason,
	}
	return ep.producer.PublishEvent(ctx, orderKey(event.OrderID), event)
}

func productKey(productID string) string {
	return fmt.Sprintf("product-%s", productID)
}

func orderKey(orderID string) string {
	return fmt.Sprintf("order-%s", orderID)
}
