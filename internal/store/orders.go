package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"commerce-service/internal/orders"

	"github.com/google/uuid"
)

// OrderStore is the Postgres adapter for orders.OrderRepository.
type OrderStore struct {
	store *Store
}

func NewOrderStore(store *Store) *OrderStore {
	return &OrderStore{store: store}
}

type orderRow struct {
	ID            uuid.UUID  `db:"id"`
	CustomerID    string     `db:"customer_id"`
	CustomerName  string     `db:"customer_name"`
	CustomerEmail string     `db:"customer_email"`
	CustomerPhone string     `db:"customer_phone"`
	Street        string     `db:"street"`
	City          string     `db:"city"`
	State         string     `db:"state"`
	PostalCode    string     `db:"postal_code"`
	Country       string     `db:"country"`
	Status        string     `db:"status"`
	FailureReason string     `db:"failure_reason"`
	TotalCents    int64      `db:"total_cents"`
	CreatedAt     time.Time  `db:"created_at"`
	UpdatedAt     time.Time  `db:"updated_at"`
	ConfirmedAt   *time.Time `db:"confirmed_at"`
}

type orderItemRow struct {
	OrderID        uuid.UUID `db:"order_id"`
	LineNo         int       `db:"line_no"`
	ProductID      uuid.UUID `db:"product_id"`
	ProductName    string    `db:"product_name"`
	Quantity       int       `db:"quantity"`
	UnitPriceCents int64     `db:"unit_price_cents"`
}

// Save persists the order and its items in one transaction. Orders are
// written once their terminal status is determined, so this is an upsert
// only on the order row to tolerate a failed order being re-saved.
func (os *OrderStore) Save(ctx context.Context, order *orders.Order) error {
	tx, err := os.store.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	orderQuery := `
		INSERT INTO orders (id, customer_id, customer_name, customer_email, customer_phone,
			street, city, state, postal_code, country,
			status, failure_reason, total_cents, created_at, updated_at, confirmed_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)
		ON CONFLICT (id) DO UPDATE SET
			status = EXCLUDED.status,
			failure_reason = EXCLUDED.failure_reason,
			updated_at = EXCLUDED.updated_at,
			confirmed_at = EXCLUDED.confirmed_at`

	_, err = tx.ExecContext(ctx, orderQuery,
		order.ID,
		order.Customer.CustomerID, order.Customer.Name, order.Customer.Email, order.Customer.Phone,
		order.ShippingAddress.Street, order.ShippingAddress.City, order.ShippingAddress.State,
		order.ShippingAddress.PostalCode, order.ShippingAddress.Country,
		string(order.Status), order.FailureReason, order.TotalCents(),
		order.CreatedAt, order.UpdatedAt, order.ConfirmedAt)
	if err != nil {
		return fmt.Errorf("failed to save order: %w", err)
	}

	if _, err := tx.ExecContext(ctx, "DELETE FROM order_items WHERE order_id = $1", order.ID); err != nil {
		return fmt.Errorf("failed to clear order items: %w", err)
	}

	itemQuery := `
		INSERT INTO order_items (order_id, line_no, product_id, product_name, quantity, unit_price_cents)
		VALUES ($1, $2, $3, $4, $5, $6)`

	for i, item := range order.Items {
		_, err := tx.ExecContext(ctx, itemQuery,
			order.ID, i, item.ProductID, item.ProductName,
			item.Quantity.Value(), item.UnitPriceCents)
		if err != nil {
			return fmt.Errorf("failed to save order item: %w", err)
		}
	}

	return tx.Commit()
}

// GetByID retrieves an order with its items in line order.
func (os *OrderStore) GetByID(ctx context.Context, id uuid.UUID) (*orders.Order, error) {
	var row orderRow
	err := os.store.db.GetContext(ctx, &row, "SELECT * FROM orders WHERE id = $1", id)
	if err == sql.ErrNoRows {
		return nil, &orders.NotFoundError{OrderID: id.String()}
	}
	if err != nil {
		return nil, err
	}

	var itemRows []orderItemRow
	err = os.store.db.SelectContext(ctx, &itemRows,
		"SELECT order_id, line_no, product_id, product_name, quantity, unit_price_cents FROM order_items WHERE order_id = $1 ORDER BY line_no",
		id)
	if err != nil {
		return nil, err
	}

	return toOrder(row, itemRows)
}

// List retrieves a page of orders, newest first, items included.
func (os *OrderStore) List(ctx context.Context, limit, offset int) ([]*orders.Order, error) {
	var rows []orderRow
	err := os.store.db.SelectContext(ctx, &rows,
		"SELECT * FROM orders ORDER BY created_at DESC, id LIMIT $1 OFFSET $2", limit, offset)
	if err != nil {
		return nil, err
	}

	result := make([]*orders.Order, 0, len(rows))
	for _, row := range rows {
		var itemRows []orderItemRow
		err = os.store.db.SelectContext(ctx, &itemRows,
			"SELECT order_id, line_no, product_id, product_name, quantity, unit_price_cents FROM order_items WHERE order_id = $1 ORDER BY line_no",
			row.ID)
		if err != nil {
			return nil, err
		}
		order, err := toOrder(row, itemRows)
		if err != nil {
			return nil, err
		}
		result = append(result, order)
	}
	return result, nil
}

func toOrder(row orderRow, itemRows []orderItemRow) (*orders.Order, error) {
	items := make([]orders.OrderItem, 0, len(itemRows))
	for _, ir := range itemRows {
		quantity, err := orders.NewQuantity(ir.Quantity)
		if err != nil {
			return nil, fmt.Errorf("corrupt order item row for order %s: %w", row.ID, err)
		}
		items = append(items, orders.OrderItem{
			ProductID:      ir.ProductID,
			ProductName:    ir.ProductName,
			Quantity:       quantity,
			UnitPriceCents: ir.UnitPriceCents,
		})
	}

	return &orders.Order{
		ID: row.ID,
		Customer: orders.CustomerInfo{
			CustomerID: row.CustomerID,
			Name:       row.CustomerName,
			Email:      row.CustomerEmail,
			Phone:      row.CustomerPhone,
		},
		Items: items,
		ShippingAddress: orders.ShippingAddress{
			Street:     row.Street,
			City:       row.City,
			State:      row.State,
			PostalCode: row.PostalCode,
			Country:    row.Country,
		},
		Status:        orders.OrderStatus(row.Status),
		FailureReason: row.FailureReason,
		CreatedAt:     row.CreatedAt,
		UpdatedAt:     row.UpdatedAt,
		ConfirmedAt:   row.ConfirmedAt,
	}, nil
}
