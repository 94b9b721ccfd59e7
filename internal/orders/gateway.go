package orders

import (
	"context"

	"github.com/google/uuid"
)

// ProductSnapshot is the read-only projection of a catalog product exposed to
// the orders context. It never carries the catalog's internal representation.
type ProductSnapshot struct {
	ProductID      uuid.UUID
	Name           string
	UnitPriceCents int64
	Currency       string
	Available      int
}

// ReservationStatus classifies the outcome of a reservation attempt.
type ReservationStatus string

const (
	ReservationReserved          ReservationStatus = "RESERVED"
	ReservationInsufficientStock ReservationStatus = "INSUFFICIENT_STOCK"
	ReservationProductNotFound   ReservationStatus = "PRODUCT_NOT_FOUND"
)

// ReservationResult reports a reservation outcome with enough context to
// build an attributable error.
type ReservationResult struct {
	Status    ReservationStatus
	ProductID uuid.UUID
	Requested int
	Available int
}

// InventoryGateway is the anti-corruption boundary toward the catalog
// context. It is the single seam across which Orders may know about Catalog.
type InventoryGateway interface {
	// CheckAvailability returns a snapshot of the product, or
	// *ProductNotFoundError when the product does not exist.
	CheckAvailability(ctx context.Context, productID uuid.UUID) (*ProductSnapshot, error)

	// Reserve attempts to reserve quantity units of the product. Business
	// outcomes (insufficient stock, missing product) are reported in the
	// result, not as errors; the error return is for infrastructure failures.
	Reserve(ctx context.Context, productID uuid.UUID, quantity int) (ReservationResult, error)

	// Release returns previously reserved units. Best-effort compensation:
	// callers log failures instead of re-raising them.
	Release(ctx context.Context, productID uuid.UUID, quantity int) error
}
