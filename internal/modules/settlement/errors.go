package settlement

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
)

// Validation errors, rejected before any storage interaction.
var (
	ErrEmptyCart            = errors.New("cart has no items")
	ErrInvalidQuantity      = errors.New("line quantity must be a positive integer")
	ErrInvalidPaymentMethod = errors.New("invalid payment method (allowed: CASH, CARD, MOBILE_MONEY, VOUCHER)")
	ErrInvalidDiscount      = errors.New("discount must be non-negative and not exceed the subtotal")
	ErrTransactionNotFound  = errors.New("transaction not found")
)

// ProductNotFoundError reports a cart line referencing an unknown product.
type ProductNotFoundError struct {
	ProductID uuid.UUID
}

func (e *ProductNotFoundError) Error() string {
	return fmt.Sprintf("product not found (ID %s)", e.ProductID)
}

// InsufficientStockError reports a cart line whose quantity exceeded the
// available stock at the moment of the settlement attempt.
type InsufficientStockError struct {
	ProductID   uuid.UUID
	ProductName string
	Requested   int
	Available   int
}

func (e *InsufficientStockError) Error() string {
	name := e.ProductName
	if name == "" {
		name = "product " + e.ProductID.String()
	}
	return fmt.Sprintf("insufficient stock for %s: requested %d, available %d", name, e.Requested, e.Available)
}

// PersistenceError wraps a storage failure. The settlement is always fully
// rolled back before this is returned; the engine never auto-retries.
type PersistenceError struct {
	Op  string
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("settlement storage failure (%s): %v", e.Op, e.Err)
}

func (e *PersistenceError) Unwrap() error { return e.Err }
