package settlement

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// PaymentMethod represents how a sale was paid.
type PaymentMethod string

const (
	PaymentCash        PaymentMethod = "CASH"
	PaymentCard        PaymentMethod = "CARD"
	PaymentMobileMoney PaymentMethod = "MOBILE_MONEY"
	PaymentVoucher     PaymentMethod = "VOUCHER"
)

// ParsePaymentMethod normalises a caller-supplied method string.
func ParsePaymentMethod(s string) (PaymentMethod, bool) {
	m := PaymentMethod(strings.ToUpper(strings.TrimSpace(s)))
	switch m {
	case PaymentCash, PaymentCard, PaymentMobileMoney, PaymentVoucher:
		return m, true
	}
	return "", false
}

// CartLine is one requested item in a proposed sale. UnitPrice is captured
// from the caller and recorded as the price at time of sale.
type CartLine struct {
	ProductID uuid.UUID `json:"product_id"`
	Quantity  int       `json:"quantity"`
	UnitPrice float64   `json:"unit_price"`
}

// Transaction is an immutable ledger header. It is created exactly once by
// Settle and never updated afterwards.
type Transaction struct {
	ID            uuid.UUID         `json:"id"`
	CashierID     uuid.UUID         `json:"cashier_id"`
	Total         float64           `json:"total"`
	Discount      float64           `json:"discount_amount"`
	PaymentMethod PaymentMethod     `json:"payment_method"`
	CustomerEmail string            `json:"customer_email,omitempty"`
	CashierName   string            `json:"cashier_name,omitempty"`
	Lines         []TransactionLine `json:"items,omitempty"`
	CreatedAt     time.Time         `json:"created_at"`
}

// TransactionLine is an immutable ledger line item.
type TransactionLine struct {
	ID            uuid.UUID `json:"id"`
	TransactionID uuid.UUID `json:"transaction_id"`
	ProductID     uuid.UUID `json:"product_id"`
	ProductName   string    `json:"product_name,omitempty"`
	Quantity      int       `json:"quantity"`
	UnitPrice     float64   `json:"unit_price"`
	Subtotal      float64   `json:"subtotal"`
}

// SettleRequest is the inbound boundary payload for a settlement.
type SettleRequest struct {
	Lines         []CartLine `json:"items"`
	PaymentMethod string     `json:"payment_method"`
	Discount      float64    `json:"discount_amount,omitempty"`
	CustomerEmail string     `json:"customer_email,omitempty"`

	// CashierID comes from the authenticated session, not the body.
	CashierID uuid.UUID `json:"-"`
}

// SettleResult is returned to the caller on success, suitable for receipt
// generation.
type SettleResult struct {
	TransactionID uuid.UUID `json:"transaction_id"`
	Total         float64   `json:"total"`
}

// ListFilter pages and date-filters ledger listings.
type ListFilter struct {
	StartDate string // YYYY-MM-DD, inclusive
	EndDate   string // YYYY-MM-DD, inclusive
	Page      int
	Limit     int
}
