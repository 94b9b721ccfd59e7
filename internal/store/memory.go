package store

import (
	"context"
	"sort"
	"sync"

	"commerce-service/internal/catalog"
	"commerce-service/internal/orders"

	"github.com/google/uuid"
)

// MemoryProductStore implements catalog.ProductRepository in memory. It backs
// the workflow tests and lets the service run without Postgres.
type MemoryProductStore struct {
	mu       sync.Mutex
	products map[uuid.UUID]*catalog.Product
	bySKU    map[string]uuid.UUID
}

func NewMemoryProductStore() *MemoryProductStore {
	return &MemoryProductStore{
		products: make(map[uuid.UUID]*catalog.Product),
		bySKU:    make(map[string]uuid.UUID),
	}
}

func (m *MemoryProductStore) Create(ctx context.Context, product *catalog.Product) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.bySKU[product.SKU.String()]; exists {
		return &catalog.DuplicateSKUError{SKU: product.SKU.String()}
	}

	copied := *product
	m.products[product.ID] = &copied
	m.bySKU[product.SKU.String()] = product.ID
	return nil
}

func (m *MemoryProductStore) GetByID(ctx context.Context, id uuid.UUID) (*catalog.Product, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	product, ok := m.products[id]
	if !ok {
		return nil, &catalog.NotFoundError{ProductID: id.String()}
	}
	copied := *product
	return &copied, nil
}

func (m *MemoryProductStore) GetBySKU(ctx context.Context, sku string) (*catalog.Product, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	id, ok := m.bySKU[sku]
	if !ok {
		return nil, &catalog.NotFoundError{ProductID: sku}
	}
	copied := *m.products[id]
	return &copied, nil
}

func (m *MemoryProductStore) List(ctx context.Context, limit, offset int) ([]*catalog.Product, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	all := make([]*catalog.Product, 0, len(m.products))
	for _, product := range m.products {
		copied := *product
		all = append(all, &copied)
	}
	sort.Slice(all, func(i, j int) bool {
		if all[i].CreatedAt.Equal(all[j].CreatedAt) {
			return all[i].ID.String() < all[j].ID.String()
		}
		return all[i].CreatedAt.Before(all[j].CreatedAt)
	})

	if offset >= len(all) {
		return []*catalog.Product{}, nil
	}
	end := offset + limit
	if end > len(all) {
		end = len(all)
	}
	return all[offset:end], nil
}

// ReserveStock serializes on the store mutex, giving the same no-lost-update
// guarantee the Postgres adapter gets from its row lock.
func (m *MemoryProductStore) ReserveStock(ctx context.Context, id uuid.UUID, quantity int) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	product, ok := m.products[id]
	if !ok {
		return 0, &catalog.NotFoundError{ProductID: id.String()}
	}

	updated, err := product.ReserveStock(quantity)
	if err != nil {
		return 0, err
	}
	m.products[id] = updated
	return updated.Stock.Quantity(), nil
}

func (m *MemoryProductStore) ReleaseStock(ctx context.Context, id uuid.UUID, quantity int) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	product, ok := m.products[id]
	if !ok {
		return &catalog.NotFoundError{ProductID: id.String()}
	}

	updated, err := product.ReleaseStock(quantity)
	if err != nil {
		return err
	}
	m.products[id] = updated
	return nil
}

// MemoryOrderStore implements orders.OrderRepository in memory.
type MemoryOrderStore struct {
	mu      sync.Mutex
	byID    map[uuid.UUID]*orders.Order
	ordered []uuid.UUID

	// FailSave forces Save to return the given error; used by tests to
	// exercise the persistence-failure compensation path.
	FailSave error
}

func NewMemoryOrderStore() *MemoryOrderStore {
	return &MemoryOrderStore{byID: make(map[uuid.UUID]*orders.Order)}
}

func (m *MemoryOrderStore) Save(ctx context.Context, order *orders.Order) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.FailSave != nil {
		return m.FailSave
	}

	if _, exists := m.byID[order.ID]; !exists {
		m.ordered = append(m.ordered, order.ID)
	}
	copied := *order
	copied.Items = append([]orders.OrderItem(nil), order.Items...)
	m.byID[order.ID] = &copied
	return nil
}

func (m *MemoryOrderStore) GetByID(ctx context.Context, id uuid.UUID) (*orders.Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	order, ok := m.byID[id]
	if !ok {
		return nil, &orders.NotFoundError{OrderID: id.String()}
	}
	copied := *order
	copied.Items = append([]orders.OrderItem(nil), order.Items...)
	return &copied, nil
}

func (m *MemoryOrderStore) List(ctx context.Context, limit, offset int) ([]*orders.Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	// newest first
	result := make([]*orders.Order, 0, limit)
	for i := len(m.ordered) - 1 - offset; i >= 0 && len(result) < limit; i-- {
		order := m.byID[m.ordered[i]]
		copied := *order
		copied.Items = append([]orders.OrderItem(nil), order.Items...)
		result = append(result, &copied)
	}
	return result, nil
}
