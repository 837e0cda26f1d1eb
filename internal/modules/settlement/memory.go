package settlement

import (
	"context"
	"sort"
	"sync"

	"github.com/google/uuid"
)

// MemoryLedger is an in-process implementation of Ledger and StockReader
// with the same all-or-nothing semantics as the Postgres store. The whole
// settlement unit runs under one lock, so the check-and-decrement is atomic
// with respect to other settlements exactly like the SQL conditional update.
type MemoryLedger struct {
	mu           sync.Mutex
	products     map[uuid.UUID]ProductInfo
	transactions map[uuid.UUID]*Transaction
	lines        map[uuid.UUID][]TransactionLine

	// failWith, when set, makes CreateSettlement abort with a
	// PersistenceError after validating, simulating storage loss.
	failWith error
}

var (
	_ Ledger      = (*MemoryLedger)(nil)
	_ StockReader = (*MemoryLedger)(nil)
)

func NewMemoryLedger() *MemoryLedger {
	return &MemoryLedger{
		products:     make(map[uuid.UUID]ProductInfo),
		transactions: make(map[uuid.UUID]*Transaction),
		lines:        make(map[uuid.UUID][]TransactionLine),
	}
}

// AddProduct seeds catalog state.
func (m *MemoryLedger) AddProduct(p ProductInfo) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.products[p.ID] = p
}

// StockOf reports the current stock level, or -1 for an unknown product.
func (m *MemoryLedger) StockOf(id uuid.UUID) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.products[id]
	if !ok {
		return -1
	}
	return p.Stock
}

// FailNextWith makes subsequent settlements abort with the given error.
func (m *MemoryLedger) FailNextWith(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failWith = err
}

func (m *MemoryLedger) CreateSettlement(ctx context.Context, t *Transaction, lines []TransactionLine) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	// Check every line before touching anything, in input order.
	for _, l := range lines {
		p, ok := m.products[l.ProductID]
		if !ok {
			return &ProductNotFoundError{ProductID: l.ProductID}
		}
		if p.Stock < l.Quantity {
			return &InsufficientStockError{
				ProductID:   l.ProductID,
				ProductName: p.Name,
				Requested:   l.Quantity,
				Available:   p.Stock,
			}
		}
	}
	if m.failWith != nil {
		return &PersistenceError{Op: "commit", Err: m.failWith}
	}

	for _, l := range lines {
		p := m.products[l.ProductID]
		p.Stock -= l.Quantity
		m.products[l.ProductID] = p
	}
	cp := *t
	m.transactions[t.ID] = &cp
	m.lines[t.ID] = append([]TransactionLine(nil), lines...)
	return nil
}

func (m *MemoryLedger) GetTransaction(ctx context.Context, id string) (*Transaction, error) {
	uid, err := uuid.Parse(id)
	if err != nil {
		return nil, ErrTransactionNotFound
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	t, ok := m.transactions[uid]
	if !ok {
		return nil, ErrTransactionNotFound
	}
	cp := *t
	cp.Lines = append([]TransactionLine(nil), m.lines[uid]...)
	for i := range cp.Lines {
		if p, ok := m.products[cp.Lines[i].ProductID]; ok {
			cp.Lines[i].ProductName = p.Name
		}
	}
	return &cp, nil
}

func (m *MemoryLedger) ListTransactions(ctx context.Context, filter ListFilter) ([]*Transaction, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	txs := make([]*Transaction, 0, len(m.transactions))
	for _, t := range m.transactions {
		cp := *t
		txs = append(txs, &cp)
	}
	sort.Slice(txs, func(i, j int) bool { return txs[i].CreatedAt.After(txs[j].CreatedAt) })
	if filter.Limit > 0 {
		start := (filter.Page - 1) * filter.Limit
		if start > len(txs) {
			start = len(txs)
		}
		end := start + filter.Limit
		if end > len(txs) {
			end = len(txs)
		}
		txs = txs[start:end]
	}
	return txs, nil
}

func (m *MemoryLedger) ProductInfo(ctx context.Context, id uuid.UUID) (*ProductInfo, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.products[id]
	if !ok {
		return nil, &ProductNotFoundError{ProductID: id}
	}
	cp := p
	return &cp, nil
}
