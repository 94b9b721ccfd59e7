// Package gateway adapts the catalog application service to the
// InventoryGateway port owned by the orders context. It is the only place
// where the two bounded contexts meet: catalog errors and types are
// translated here and never leak into the orders domain model.
package gateway

import (
	"context"
	"fmt"

	"commerce-service/internal/catalog"
	"commerce-service/internal/orders"
	"commerce-service/internal/redisclient"
	"commerce-service/internal/util"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// CatalogGateway implements orders.InventoryGateway against the in-process
// catalog service. Availability reads go through the Redis snapshot cache
// when one is configured; reservations and releases always hit the catalog
// service, whose storage transaction is authoritative for stock.
type CatalogGateway struct {
	catalog *catalog.Service
	cache   *redisclient.Client
	logger  *zap.Logger
}

// NewCatalogGateway creates the adapter. cache may be nil; the gateway then
// reads straight from the catalog service.
func NewCatalogGateway(catalogService *catalog.Service, cache *redisclient.Client) *CatalogGateway {
	return &CatalogGateway{
		catalog: catalogService,
		cache:   cache,
		logger:  util.GetLogger(),
	}
}

// CheckAvailability returns the product projection the orders context is
// allowed to see.
func (g *CatalogGateway) CheckAvailability(ctx context.Context, productID uuid.UUID) (*orders.ProductSnapshot, error) {
	ctx, span := util.StartSpan(ctx, "CatalogGateway.CheckAvailability")
	defer span.End()

	if g.cache != nil {
		cached, err := g.cache.GetSnapshot(ctx, productID.String())
		if err == nil {
			return &orders.ProductSnapshot{
				ProductID:      productID,
				Name:           cached.Name,
				UnitPriceCents: cached.PriceCents,
				Currency:       cached.Currency,
				Available:      cached.Available,
			}, nil
		}
		if err != redisclient.ErrCacheMiss {
			g.logger.Warn("Snapshot cache read failed, falling back to catalog",
				zap.String("product_id", productID.String()),
				zap.Error(err))
		}
	}

	product, err := g.catalog.GetProduct(ctx, productID)
	if err != nil {
		if _, ok := err.(*catalog.NotFoundError); ok {
			return nil, &orders.ProductNotFoundError{ProductID: productID.String()}
		}
		return nil, fmt.Errorf("catalog lookup failed: %w", err)
	}

	snapshot := &orders.ProductSnapshot{
		ProductID:      product.ID,
		Name:           product.Name,
		UnitPriceCents: product.Price.AmountCents(),
		Currency:       product.Price.Currency(),
		Available:      product.Stock.Quantity(),
	}

	if g.cache != nil {
		if err := g.cache.SetSnapshot(ctx, productID.String(), redisclient.Snapshot{
			Name:       snapshot.Name,
			PriceCents: snapshot.UnitPriceCents,
			Currency:   snapshot.Currency,
			Available:  snapshot.Available,
		}); err != nil {
			g.logger.Warn("Failed to warm snapshot cache",
				zap.String("product_id", productID.String()),
				zap.Error(err))
		}
	}

	return snapshot, nil
}

// Reserve delegates to the catalog's ReserveStock use case and translates
// catalog failures into gateway-level outcomes.
func (g *CatalogGateway) Reserve(ctx context.Context, productID uuid.UUID, quantity int) (orders.ReservationResult, error) {
	ctx, span := util.StartSpan(ctx, "CatalogGateway.Reserve")
	defer span.End()

	available, err := g.catalog.ReserveStock(ctx, productID, quantity)
	if err != nil {
		switch cerr := err.(type) {
		case *catalog.NotFoundError:
			return orders.ReservationResult{
				Status:    orders.ReservationProductNotFound,
				ProductID: productID,
				Requested: quantity,
			}, nil
		case *catalog.InsufficientStockError:
			return orders.ReservationResult{
				Status:    orders.ReservationInsufficientStock,
				ProductID: productID,
				Requested: cerr.Requested,
				Available: cerr.Available,
			}, nil
		default:
			return orders.ReservationResult{}, fmt.Errorf("reserve failed: %w", err)
		}
	}

	return orders.ReservationResult{
		Status:    orders.ReservationReserved,
		ProductID: productID,
		Requested: quantity,
		Available: available,
	}, nil
}

// Release returns reserved units to the catalog. Failures propagate so the
// caller can log them; the orders workflow treats them as best effort.
func (g *CatalogGateway) Release(ctx context.Context, productID uuid.UUID, quantity int) error {
	ctx, span := util.StartSpan(ctx, "CatalogGateway.Release")
	defer span.End()

	if err := g.catalog.ReleaseStock(ctx, productID, quantity); err != nil {
		return err
	}

	// the cached availability undercounts after a compensating release; drop
	// the snapshot and let the next read repopulate from the catalog
	if g.cache != nil {
		if err := g.cache.InvalidateSnapshot(ctx, productID.String()); err != nil {
			g.logger.Warn("Failed to invalidate snapshot after release",
				zap.String("product_id", productID.String()),
				zap.Error(err))
		}
	}
	return nil
}
