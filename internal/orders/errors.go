package orders

import "fmt"

// ValidationError indicates a malformed order request, caught before any
// gateway interaction.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("validation failed on %s: %s", e.Field, e.Message)
	}
	return fmt.Sprintf("validation failed: %s", e.Message)
}

func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{Field: field, Message: message}
}

// NotFoundError indicates a referenced order is absent.
type NotFoundError struct {
	OrderID string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("order not found: %s", e.OrderID)
}

// ProductNotFoundError names the offending product of a failed placement.
type ProductNotFoundError struct {
	ProductID string
}

func (e *ProductNotFoundError) Error() string {
	return fmt.Sprintf("product not found: %s", e.ProductID)
}

// InsufficientStockError identifies the failing product and the requested
// versus available quantities. Surfaced only after compensation has run.
type InsufficientStockError struct {
	ProductID string
	Requested int
	Available int
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("insufficient stock for product %s: requested=%d, available=%d",
		e.ProductID, e.Requested, e.Available)
}

// InvalidStateError indicates an illegal aggregate transition. This is a
// workflow bug, not a user error.
type InvalidStateError struct {
	Current   OrderStatus
	Requested OrderStatus
}

func (e *InvalidStateError) Error() string {
	return fmt.Sprintf("invalid order state transition: %s -> %s", e.Current, e.Requested)
}

// PersistenceError indicates a storage failure after reservations succeeded.
// Compensation has been attempted by the time this surfaces; it still warrants
// operator attention.
type PersistenceError struct {
	Op  string
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("persistence failure during %s: %v", e.Op, e.Err)
}

func (e *PersistenceError) Unwrap() error {
	return e.Err
}
