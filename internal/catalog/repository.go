package catalog

import (
	"context"

	"github.com/google/uuid"
)

// ProductRepository is the storage port for the Product aggregate.
//
// ReserveStock and ReleaseStock are atomic read-modify-write operations:
// two concurrent reservations against the same product must never both
// succeed if their combined quantity exceeds availability.
type ProductRepository interface {
	Create(ctx context.Context, product *Product) error
	GetByID(ctx context.Context, id uuid.UUID) (*Product, error)
	GetBySKU(ctx context.Context, sku string) (*Product, error)
	List(ctx context.Context, limit, offset int) ([]*Product, error)
	ReserveStock(ctx context.Context, id uuid.UUID, quantity int) (available int, err error)
	ReleaseStock(ctx context.Context, id uuid.UUID, quantity int) error
}

// EventPublisher publishes catalog domain events. Publishing is best effort;
// implementations should not block use-case completion on broker errors.
type EventPublisher interface {
	PublishProductCreated(ctx context.Context, product *Product) error
	PublishStockReserved(ctx context.Context, productID string, quantity, available int) error
	PublishStockReleased(ctx context.Context, productID string, quantity int) error
}
