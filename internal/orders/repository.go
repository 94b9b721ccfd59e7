package orders

import (
	"context"

	"github.com/google/uuid"
)

// OrderRepository is the storage port for the Order aggregate. Items are
// persisted with their order and read back in line order.
type OrderRepository interface {
	Save(ctx context.Context, order *Order) error
	GetByID(ctx context.Context, id uuid.UUID) (*Order, error)
	List(ctx context.Context, limit, offset int) ([]*Order, error)
}

// EventPublisher publishes order lifecycle events, best effort.
type EventPublisher interface {
	PublishOrderConfirmed(ctx context.Context, order *Order) error
	PublishOrderFailed(ctx context.Context, order *Order) error
}
