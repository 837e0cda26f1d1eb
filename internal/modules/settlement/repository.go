package settlement

import (
	"context"

	"github.com/google/uuid"
)

// ProductInfo is the slice of catalog state the engine reads: enough for the
// optimistic pre-check and for naming products in error messages.
type ProductInfo struct {
	ID    uuid.UUID
	Name  string
	Price float64
	Stock int
}

// Ledger is the engine's storage contract. CreateSettlement is the single
// all-or-nothing unit: it must decrement stock for every line with a
// conditional update (stock = stock - qty only where stock >= qty) and insert
// the transaction header and lines, committing all of it or none of it.
//
// On a line whose conditional decrement matches no row, implementations
// return *ProductNotFoundError or *InsufficientStockError and leave no trace
// of the attempt. Any other failure is reported as *PersistenceError, also
// fully rolled back.
type Ledger interface {
	CreateSettlement(ctx context.Context, tx *Transaction, lines []TransactionLine) error
	GetTransaction(ctx context.Context, id string) (*Transaction, error)
	ListTransactions(ctx context.Context, filter ListFilter) ([]*Transaction, error)
}

// StockReader serves the engine's optimistic pre-check. It is never the
// enforcement mechanism; only the conditional update inside CreateSettlement
// is trusted to prevent oversell.
type StockReader interface {
	ProductInfo(ctx context.Context, id uuid.UUID) (*ProductInfo, error)
}

// LoyaltyAccruer credits points to a customer account. Accrual is a
// best-effort side effect of a committed settlement; its failure must never
// fail the settlement itself.
type LoyaltyAccruer interface {
	AccruePoints(ctx context.Context, email string, points int) error
}

// ReceiptNotifier receives the outcome of a committed settlement,
// fire-and-forget. A notifier failure must not affect the settlement.
type ReceiptNotifier interface {
	SettlementCompleted(ctx context.Context, tx *Transaction, lines []TransactionLine)
}
