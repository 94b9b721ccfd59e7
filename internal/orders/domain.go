package orders

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// OrderStatus is the order lifecycle state. CONFIRMED and FAILED are terminal.
type OrderStatus string

const (
	StatusPending   OrderStatus = "PENDING"
	StatusConfirmed OrderStatus = "CONFIRMED"
	StatusFailed    OrderStatus = "FAILED"
)

// Quantity is a positive item count.
type Quantity struct {
	value int
}

func NewQuantity(value int) (Quantity, error) {
	if value <= 0 {
		return Quantity{}, NewValidationError("quantity", "must be greater than zero")
	}
	return Quantity{value: value}, nil
}

func (q Quantity) Value() int { return q.value }

// CustomerInfo identifies the ordering customer.
type CustomerInfo struct {
	CustomerID string
	Name       string
	Email      string
	Phone      string
}

func NewCustomerInfo(customerID, name, email, phone string) (CustomerInfo, error) {
	if customerID == "" {
		return CustomerInfo{}, NewValidationError("customer_id", "must not be empty")
	}
	if len(name) < 3 {
		return CustomerInfo{}, NewValidationError("customer_name", "must be at least 3 characters")
	}
	if !validEmail(email) {
		return CustomerInfo{}, NewValidationError("email", "must be a valid email address")
	}
	if phone == "" {
		return CustomerInfo{}, NewValidationError("phone", "must not be empty")
	}
	return CustomerInfo{CustomerID: customerID, Name: name, Email: email, Phone: phone}, nil
}

func validEmail(email string) bool {
	at := strings.Index(email, "@")
	if at <= 0 || at == len(email)-1 {
		return false
	}
	return !strings.ContainsAny(email, " \t")
}

// ShippingAddress is the delivery destination. All fields required.
type ShippingAddress struct {
	Street     string
	City       string
	State      string
	PostalCode string
	Country    string
}

func NewShippingAddress(street, city, state, postalCode, country string) (ShippingAddress, error) {
	if len(street) < 5 {
		return ShippingAddress{}, NewValidationError("street", "must be at least 5 characters")
	}
	if len(city) < 2 {
		return ShippingAddress{}, NewValidationError("city", "must be at least 2 characters")
	}
	if state == "" {
		return ShippingAddress{}, NewValidationError("state", "must not be empty")
	}
	if postalCode == "" {
		return ShippingAddress{}, NewValidationError("postal_code", "must not be empty")
	}
	if country == "" {
		return ShippingAddress{}, NewValidationError("country", "must not be empty")
	}
	return ShippingAddress{
		Street:     street,
		City:       city,
		State:      state,
		PostalCode: postalCode,
		Country:    country,
	}, nil
}

// OrderItem is one line of an order. The unit price is captured at order time
// and stays decoupled from later catalog price changes. ProductID is a weak
// reference; Orders never holds catalog state.
type OrderItem struct {
	ProductID      uuid.UUID
	ProductName    string
	Quantity       Quantity
	UnitPriceCents int64
}

func (i OrderItem) SubtotalCents() int64 {
	return int64(i.Quantity.Value()) * i.UnitPriceCents
}

// Order is the orders aggregate root. Items keep insertion order.
type Order struct {
	ID              uuid.UUID
	Customer        CustomerInfo
	Items           []OrderItem
	ShippingAddress ShippingAddress
	Status          OrderStatus
	FailureReason   string
	CreatedAt       time.Time
	UpdatedAt       time.Time
	ConfirmedAt     *time.Time
}

func NewOrder(customer CustomerInfo, items []OrderItem, address ShippingAddress) (*Order, error) {
	if len(items) == 0 {
		return nil, NewValidationError("items", "order must contain at least one item")
	}
	now := time.Now().UTC()
	return &Order{
		ID:              uuid.New(),
		Customer:        customer,
		Items:           items,
		ShippingAddress: address,
		Status:          StatusPending,
		CreatedAt:       now,
		UpdatedAt:       now,
	}, nil
}

// TotalCents derives the order total from its items.
func (o *Order) TotalCents() int64 {
	var total int64
	for _, item := range o.Items {
		total += item.SubtotalCents()
	}
	return total
}

// Confirm transitions PENDING -> CONFIRMED.
func (o *Order) Confirm() error {
	if o.Status != StatusPending {
		return &InvalidStateError{Current: o.Status, Requested: StatusConfirmed}
	}
	now := time.Now().UTC()
	o.Status = StatusConfirmed
	o.ConfirmedAt = &now
	o.UpdatedAt = now
	return nil
}

// MarkFailed transitions PENDING -> FAILED, recording the reason for
// diagnostics.
func (o *Order) MarkFailed(reason string) error {
	if o.Status != StatusPending {
		return &InvalidStateError{Current: o.Status, Requested: StatusFailed}
	}
	o.Status = StatusFailed
	o.FailureReason = reason
	o.UpdatedAt = time.Now().UTC()
	return nil
}
