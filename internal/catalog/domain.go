package catalog

import (
	"math"
	"time"

	"github.com/google/uuid"
)

// SKU is the immutable stock keeping unit assigned to a product.
// At least 5 characters, alphanumeric and hyphens only.
type SKU struct {
	value string
}

func NewSKU(value string) (SKU, error) {
	if value == "" {
		return SKU{}, NewValidationError("sku", "must not be empty")
	}
	if len(value) < 5 {
		return SKU{}, NewValidationError("sku", "must be at least 5 characters")
	}
	for _, r := range value {
		alnum := (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9')
		if !alnum && r != '-' {
			return SKU{}, NewValidationError("sku", "must contain only alphanumeric characters and hyphens")
		}
	}
	return SKU{value: value}, nil
}

func (s SKU) String() string {
	return s.value
}

// Price holds an amount in minor units (cents) together with its currency.
// Amount and currency are immutable as a pair.
type Price struct {
	amountCents int64
	currency    string
}

func NewPrice(amountCents int64, currency string) (Price, error) {
	if amountCents <= 0 {
		return Price{}, NewValidationError("price", "must be greater than zero")
	}
	if len(currency) != 3 {
		return Price{}, NewValidationError("currency", "must be a 3-letter code")
	}
	for _, r := range currency {
		if r < 'A' || r > 'Z' {
			return Price{}, NewValidationError("currency", "must be uppercase letters")
		}
	}
	return Price{amountCents: amountCents, currency: currency}, nil
}

// PriceFromFloat converts a decimal amount (e.g. 1299.99) to cents.
// Amounts with more than two decimal places are rejected.
func PriceFromFloat(amount float64, currency string) (Price, error) {
	cents := amount * 100
	if math.Abs(cents-math.Round(cents)) > 1e-6 {
		return Price{}, NewValidationError("price", "must have at most two decimal places")
	}
	return NewPrice(int64(math.Round(cents)), currency)
}

func (p Price) AmountCents() int64 { return p.amountCents }
func (p Price) Currency() string   { return p.currency }

// Stock wraps a non-negative available quantity. Reserve and Release return
// a new value; the quantity can never go negative.
type Stock struct {
	quantity int
}

func NewStock(quantity int) (Stock, error) {
	if quantity < 0 {
		return Stock{}, NewValidationError("stock", "must not be negative")
	}
	return Stock{quantity: quantity}, nil
}

func (s Stock) Quantity() int { return s.quantity }

func (s Stock) IsAvailable(requested int) bool {
	return s.quantity >= requested
}

func (s Stock) Reserve(n int) (Stock, error) {
	if n <= 0 {
		return Stock{}, NewValidationError("quantity", "must be greater than zero")
	}
	if !s.IsAvailable(n) {
		return Stock{}, &InsufficientStockError{Requested: n, Available: s.quantity}
	}
	return Stock{quantity: s.quantity - n}, nil
}

func (s Stock) Release(n int) (Stock, error) {
	if n <= 0 {
		return Stock{}, NewValidationError("quantity", "must be greater than zero")
	}
	return Stock{quantity: s.quantity + n}, nil
}

// Product is the catalog aggregate root.
type Product struct {
	ID          uuid.UUID
	SKU         SKU
	Name        string
	Description string
	Price       Price
	Stock       Stock
	Active      bool
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

func NewProduct(sku SKU, name, description string, price Price, initialStock Stock) (*Product, error) {
	if name == "" {
		return nil, NewValidationError("name", "must not be empty")
	}
	if len(name) < 3 {
		return nil, NewValidationError("name", "must be at least 3 characters")
	}
	now := time.Now().UTC()
	return &Product{
		ID:          uuid.New(),
		SKU:         sku,
		Name:        name,
		Description: description,
		Price:       price,
		Stock:       initialStock,
		Active:      true,
		CreatedAt:   now,
		UpdatedAt:   now,
	}, nil
}

// ReserveStock returns a copy of the product with the quantity deducted.
// Pure: no side effects beyond the returned state.
func (p *Product) ReserveStock(quantity int) (*Product, error) {
	if !p.Active {
		return nil, NewValidationError("product", "cannot reserve stock of an inactive product")
	}
	stock, err := p.Stock.Reserve(quantity)
	if err != nil {
		if ins, ok := err.(*InsufficientStockError); ok {
			ins.ProductID = p.ID.String()
		}
		return nil, err
	}
	updated := *p
	updated.Stock = stock
	updated.UpdatedAt = time.Now().UTC()
	return &updated, nil
}

// ReleaseStock is the compensating inverse of ReserveStock. Over-release
// beyond original capacity is the caller's responsibility.
func (p *Product) ReleaseStock(quantity int) (*Product, error) {
	stock, err := p.Stock.Release(quantity)
	if err != nil {
		return nil, err
	}
	updated := *p
	updated.Stock = stock
	updated.UpdatedAt = time.Now().UTC()
	return &updated, nil
}

func (p *Product) Deactivate() {
	p.Active = false
	p.UpdatedAt = time.Now().UTC()
}

func (p *Product) Activate() {
	p.Active = true
	p.UpdatedAt = time.Now().UTC()
}
