package catalog

import (
	"context"
	"fmt"

	"commerce-service/internal/util"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Service exposes the catalog use cases over the ProductRepository port.
type Service struct {
	repo      ProductRepository
	publisher EventPublisher
	logger    *zap.Logger
}

func NewService(repo ProductRepository, publisher EventPublisher) *Service {
	return &Service{
		repo:      repo,
		publisher: publisher,
		logger:    util.GetLogger(),
	}
}

// CreateProductInput carries the primitives for product creation.
type CreateProductInput struct {
	SKU          string
	Name         string
	Description  string
	Price        float64
	Currency     string
	InitialStock int
}

// CreateProduct validates the input, constructs the aggregate and persists it.
func (s *Service) CreateProduct(ctx context.Context, in CreateProductInput) (*Product, error) {
	ctx, span := util.StartSpan(ctx, "CatalogService.CreateProduct")
	defer span.End()

	sku, err := NewSKU(in.SKU)
	if err != nil {
		return nil, err
	}
	price, err := PriceFromFloat(in.Price, in.Currency)
	if err != nil {
		return nil, err
	}
	stock, err := NewStock(in.InitialStock)
	if err != nil {
		return nil, err
	}

	product, err := NewProduct(sku, in.Name, in.Description, price, stock)
	if err != nil {
		return nil, err
	}

	existing, err := s.repo.GetBySKU(ctx, sku.String())
	if err != nil {
		if _, ok := err.(*NotFoundError); !ok {
			return nil, fmt.Errorf("failed to check SKU uniqueness: %w", err)
		}
	}
	if existing != nil {
		return nil, &DuplicateSKUError{SKU: sku.String()}
	}

	if err := s.repo.Create(ctx, product); err != nil {
		// a concurrent create can slip past the GetBySKU check and hit the
		// repository's uniqueness guarantee instead
		if _, ok := err.(*DuplicateSKUError); ok {
			return nil, err
		}
		return nil, fmt.Errorf("failed to persist product: %w", err)
	}

	util.ProductsCreatedTotal.Inc()
	s.logger.Info("Product created",
		zap.String("product_id", product.ID.String()),
		zap.String("sku", product.SKU.String()))

	if s.publisher != nil {
		if err := s.publisher.PublishProductCreated(ctx, product); err != nil {
			s.logger.Error("Failed to publish ProductCreated event", zap.Error(err))
		}
	}

	return product, nil
}

// ReserveStock atomically deducts quantity from the product's availability.
// Returns the remaining available quantity on success.
func (s *Service) ReserveStock(ctx context.Context, productID uuid.UUID, quantity int) (int, error) {
	ctx, span := util.StartSpan(ctx, "CatalogService.ReserveStock")
	defer span.End()

	if quantity <= 0 {
		return 0, NewValidationError("quantity", "must be greater than zero")
	}

	available, err := s.repo.ReserveStock(ctx, productID, quantity)
	if err != nil {
		switch err.(type) {
		case *NotFoundError, *InsufficientStockError:
			util.StockReservationsFailedTotal.WithLabelValues(reservationFailureReason(err)).Inc()
			return 0, err
		default:
			util.StockReservationsFailedTotal.WithLabelValues("error").Inc()
			return 0, fmt.Errorf("failed to reserve stock: %w", err)
		}
	}

	util.StockReservedTotal.Add(float64(quantity))
	s.logger.Info("Stock reserved",
		zap.String("product_id", productID.String()),
		zap.Int("quantity", quantity),
		zap.Int("available", available))

	if s.publisher != nil {
		if err := s.publisher.PublishStockReserved(ctx, productID.String(), quantity, available); err != nil {
			s.logger.Error("Failed to publish StockReserved event", zap.Error(err))
		}
	}

	return available, nil
}

// ReleaseStock adds quantity back to the product's availability. Used as the
// compensating inverse of ReserveStock.
func (s *Service) ReleaseStock(ctx context.Context, productID uuid.UUID, quantity int) error {
	ctx, span := util.StartSpan(ctx, "CatalogService.ReleaseStock")
	defer span.End()

	if quantity <= 0 {
		return NewValidationError("quantity", "must be greater than zero")
	}

	if err := s.repo.ReleaseStock(ctx, productID, quantity); err != nil {
		return fmt.Errorf("failed to release stock: %w", err)
	}

	util.StockReleasedTotal.Add(float64(quantity))
	s.logger.Info("Stock released",
		zap.String("product_id", productID.String()),
		zap.Int("quantity", quantity))

	if s.publisher != nil {
		if err := s.publisher.PublishStockReleased(ctx, productID.String(), quantity); err != nil {
			s.logger.Error("Failed to publish StockReleased event", zap.Error(err))
		}
	}

	return nil
}

// GetProduct retrieves a product by ID.
func (s *Service) GetProduct(ctx context.Context, productID uuid.UUID) (*Product, error) {
	return s.repo.GetByID(ctx, productID)
}

// GetProductBySKU retrieves a product by SKU.
func (s *Service) GetProductBySKU(ctx context.Context, sku string) (*Product, error) {
	return s.repo.GetBySKU(ctx, sku)
}

// ListProducts retrieves a page of products.
func (s *Service) ListProducts(ctx context.Context, limit, offset int) ([]*Product, error) {
	if limit <= 0 || limit > 100 {
		limit = 100
	}
	if offset < 0 {
		offset = 0
	}
	return s.repo.List(ctx, limit, offset)
}

func reservationFailureReason(err error) string {
	switch err.(type) {
	case *NotFoundError:
		return "not_found"
	case *InsufficientStockError:
		return "insufficient_stock"
	default:
		return "error"
	}
}
