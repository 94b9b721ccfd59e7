package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"commerce-service/internal/catalog"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

// ProductStore is the Postgres adapter for catalog.ProductRepository.
type ProductStore struct {
	store *Store
}

func NewProductStore(store *Store) *ProductStore {
	return &ProductStore{store: store}
}

type productRow struct {
	ID          uuid.UUID `db:"id"`
	SKU         string    `db:"sku"`
	Name        string    `db:"name"`
	Description string    `db:"description"`
	PriceCents  int64     `db:"price_cents"`
	Currency    string    `db:"currency"`
	Stock       int       `db:"stock"`
	Active      bool      `db:"active"`
	CreatedAt   time.Time `db:"created_at"`
	UpdatedAt   time.Time `db:"updated_at"`
}

func (r productRow) toDomain() (*catalog.Product, error) {
	sku, err := catalog.NewSKU(r.SKU)
	if err != nil {
		return nil, fmt.Errorf("corrupt product row %s: %w", r.ID, err)
	}
	price, err := catalog.NewPrice(r.PriceCents, r.Currency)
	if err != nil {
		return nil, fmt.Errorf("corrupt product row %s: %w", r.ID, err)
	}
	stock, err := catalog.NewStock(r.Stock)
	if err != nil {
		return nil, fmt.Errorf("corrupt product row %s: %w", r.ID, err)
	}
	return &catalog.Product{
		ID:          r.ID,
		SKU:         sku,
		Name:        r.Name,
		Description: r.Description,
		Price:       price,
		Stock:       stock,
		Active:      r.Active,
		CreatedAt:   r.CreatedAt,
		UpdatedAt:   r.UpdatedAt,
	}, nil
}

// Create inserts a new product row.
func (ps *ProductStore) Create(ctx context.Context, product *catalog.Product) error {
	query := `
		INSERT INTO products (id, sku, name, description, price_cents, currency, stock, active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`

	_, err := ps.store.db.ExecContext(ctx, query,
		product.ID, product.SKU.String(), product.Name, product.Description,
		product.Price.AmountCents(), product.Price.Currency(),
		product.Stock.Quantity(), product.Active,
		product.CreatedAt, product.UpdatedAt)
	if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == "23505" {
		return &catalog.DuplicateSKUError{SKU: product.SKU.String()}
	}
	return err
}

// GetByID retrieves a product by ID.
func (ps *ProductStore) GetByID(ctx context.Context, id uuid.UUID) (*catalog.Product, error) {
	var row productRow
	err := ps.store.db.GetContext(ctx, &row, "SELECT * FROM products WHERE id = $1", id)
	if err == sql.ErrNoRows {
		return nil, &catalog.NotFoundError{ProductID: id.String()}
	}
	if err != nil {
		return nil, err
	}
	return row.toDomain()
}

// GetBySKU retrieves a product by SKU.
func (ps *ProductStore) GetBySKU(ctx context.Context, sku string) (*catalog.Product, error) {
	var row productRow
	err := ps.store.db.GetContext(ctx, &row, "SELECT * FROM products WHERE sku = $1", sku)
	if err == sql.ErrNoRows {
		return nil, &catalog.NotFoundError{ProductID: sku}
	}
	if err != nil {
		return nil, err
	}
	return row.toDomain()
}

// List retrieves a page of products ordered by creation time.
func (ps *ProductStore) List(ctx context.Context, limit, offset int) ([]*catalog.Product, error) {
	var rows []productRow
	err := ps.store.db.SelectContext(ctx, &rows,
		"SELECT * FROM products ORDER BY created_at, id LIMIT $1 OFFSET $2", limit, offset)
	if err != nil {
		return nil, err
	}

	products := make([]*catalog.Product, 0, len(rows))
	for _, row := range rows {
		product, err := row.toDomain()
		if err != nil {
			return nil, err
		}
		products = append(products, product)
	}
	return products, nil
}

// ReserveStock deducts quantity inside a transaction holding a row lock, so
// concurrent reservations against the same product serialize and can never
// jointly exceed availability.
func (ps *ProductStore) ReserveStock(ctx context.Context, id uuid.UUID, quantity int) (int, error) {
	tx, err := ps.store.db.BeginTxx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer tx.Rollback()

	var available int
	err = tx.GetContext(ctx, &available,
		"SELECT stock FROM products WHERE id = $1 AND active = TRUE FOR UPDATE", id)
	if err == sql.ErrNoRows {
		return 0, &catalog.NotFoundError{ProductID: id.String()}
	}
	if err != nil {
		return 0, fmt.Errorf("failed to lock product: %w", err)
	}

	if available < quantity {
		return 0, &catalog.InsufficientStockError{
			ProductID: id.String(),
			Requested: quantity,
			Available: available,
		}
	}

	_, err = tx.ExecContext(ctx,
		"UPDATE products SET stock = stock - $1, updated_at = NOW() WHERE id = $2",
		quantity, id)
	if err != nil {
		return 0, fmt.Errorf("failed to reserve stock: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return 0, err
	}
	return available - quantity, nil
}

// ReleaseStock adds quantity back to the product's availability.
func (ps *ProductStore) ReleaseStock(ctx context.Context, id uuid.UUID, quantity int) error {
	res, err := ps.store.db.ExecContext(ctx,
		"UPDATE products SET stock = stock + $1, updated_at = NOW() WHERE id = $2",
		quantity, id)
	if err != nil {
		return err
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return &catalog.NotFoundError{ProductID: id.String()}
	}
	return nil
}
