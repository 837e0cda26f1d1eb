package settlement

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeLoyalty struct {
	mu     sync.Mutex
	points map[string]int
	err    error
}

func (f *fakeLoyalty) AccruePoints(ctx context.Context, email string, points int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	if f.points == nil {
		f.points = map[string]int{}
	}
	f.points[email] += points
	return nil
}

type fakeNotifier struct {
	events chan *Transaction
}

func (f *fakeNotifier) SettlementCompleted(ctx context.Context, tx *Transaction, lines []TransactionLine) {
	f.events <- tx
}

func newEngine(t *testing.T) (Service, *MemoryLedger) {
	t.Helper()
	ledger := NewMemoryLedger()
	svc := NewService(ledger, ledger, nil, nil, nil)
	return svc, ledger
}

func seedProduct(ledger *MemoryLedger, name string, price float64, stock int) uuid.UUID {
	id := uuid.New()
	ledger.AddProduct(ProductInfo{ID: id, Name: name, Price: price, Stock: stock})
	return id
}

func TestSettleHappyPath(t *testing.T) {
	svc, ledger := newEngine(t)
	productA := seedProduct(ledger, "Apples", 2.00, 5)
	cashier := uuid.New()

	result, err := svc.Settle(context.Background(), SettleRequest{
		Lines:         []CartLine{{ProductID: productA, Quantity: 3, UnitPrice: 2.00}},
		PaymentMethod: "cash",
		CashierID:     cashier,
	})
	require.NoError(t, err)
	assert.InDelta(t, 6.00, result.Total, 1e-9)
	assert.Equal(t, 2, ledger.StockOf(productA))

	tx, err := svc.GetTransaction(context.Background(), result.TransactionID.String())
	require.NoError(t, err)
	assert.Equal(t, cashier, tx.CashierID)
	assert.Equal(t, PaymentCash, tx.PaymentMethod)
	require.Len(t, tx.Lines, 1)
	assert.Equal(t, 3, tx.Lines[0].Quantity)
	assert.InDelta(t, 6.00, tx.Lines[0].Subtotal, 1e-9)
}

func TestSettleTotalComputation(t *testing.T) {
	svc, ledger := newEngine(t)
	productA := seedProduct(ledger, "Coffee", 10.00, 10)
	productB := seedProduct(ledger, "Milk", 5.50, 10)

	result, err := svc.Settle(context.Background(), SettleRequest{
		Lines: []CartLine{
			{ProductID: productA, Quantity: 2, UnitPrice: 10.00},
			{ProductID: productB, Quantity: 1, UnitPrice: 5.50},
		},
		PaymentMethod: "card",
		Discount:      3.00,
		CashierID:     uuid.New(),
	})
	require.NoError(t, err)
	// 2*10.00 + 1*5.50 - 3.00
	assert.InDelta(t, 22.50, result.Total, 1e-9)
}

func TestSettleValidation(t *testing.T) {
	svc, ledger := newEngine(t)
	product := seedProduct(ledger, "Bread", 1.50, 10)

	tests := []struct {
		name string
		req  SettleRequest
		want error
	}{
		{
			name: "empty cart",
			req:  SettleRequest{PaymentMethod: "cash"},
			want: ErrEmptyCart,
		},
		{
			name: "unknown payment method",
			req: SettleRequest{
				Lines:         []CartLine{{ProductID: product, Quantity: 1, UnitPrice: 1.50}},
				PaymentMethod: "cheque",
			},
			want: ErrInvalidPaymentMethod,
		},
		{
			name: "zero quantity",
			req: SettleRequest{
				Lines:         []CartLine{{ProductID: product, Quantity: 0, UnitPrice: 1.50}},
				PaymentMethod: "cash",
			},
			want: ErrInvalidQuantity,
		},
		{
			name: "negative discount",
			req: SettleRequest{
				Lines:         []CartLine{{ProductID: product, Quantity: 1, UnitPrice: 1.50}},
				PaymentMethod: "cash",
				Discount:      -1,
			},
			want: ErrInvalidDiscount,
		},
		{
			name: "discount exceeds subtotal",
			req: SettleRequest{
				Lines:         []CartLine{{ProductID: product, Quantity: 1, UnitPrice: 1.50}},
				PaymentMethod: "cash",
				Discount:      2.00,
			},
			want: ErrInvalidDiscount,
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			tc.req.CashierID = uuid.New()
			_, err := svc.Settle(context.Background(), tc.req)
			assert.ErrorIs(t, err, tc.want)
			assert.Equal(t, 10, ledger.StockOf(product), "stock must be untouched")
		})
	}
}

func TestSettleUnknownProduct(t *testing.T) {
	svc, ledger := newEngine(t)
	known := seedProduct(ledger, "Rice", 4.00, 8)
	unknown := uuid.New()

	_, err := svc.Settle(context.Background(), SettleRequest{
		Lines: []CartLine{
			{ProductID: known, Quantity: 1, UnitPrice: 4.00},
			{ProductID: unknown, Quantity: 1, UnitPrice: 9.99},
		},
		PaymentMethod: "cash",
		CashierID:     uuid.New(),
	})
	var notFound *ProductNotFoundError
	require.ErrorAs(t, err, &notFound)
	assert.Equal(t, unknown, notFound.ProductID)
	assert.Equal(t, 8, ledger.StockOf(known))

	txs, err := svc.ListTransactions(context.Background(), ListFilter{})
	require.NoError(t, err)
	assert.Empty(t, txs)
}

func TestSettleInsufficientStock(t *testing.T) {
	svc, ledger := newEngine(t)
	productA := seedProduct(ledger, "Sugar", 3.00, 10)
	productB := seedProduct(ledger, "Salt", 1.00, 2)

	req := SettleRequest{
		Lines: []CartLine{
			{ProductID: productA, Quantity: 1, UnitPrice: 3.00},
			{ProductID: productB, Quantity: 5, UnitPrice: 1.00},
		},
		PaymentMethod: "cash",
		CashierID:     uuid.New(),
	}

	// Failure is idempotent: same error and no side effects, both times.
	for i := 0; i < 2; i++ {
		_, err := svc.Settle(context.Background(), req)
		var insufficient *InsufficientStockError
		require.ErrorAs(t, err, &insufficient)
		assert.Equal(t, productB, insufficient.ProductID)
		assert.Equal(t, 5, insufficient.Requested)
		assert.Equal(t, 2, insufficient.Available)
		assert.Equal(t, 10, ledger.StockOf(productA))
		assert.Equal(t, 2, ledger.StockOf(productB))
	}

	txs, err := svc.ListTransactions(context.Background(), ListFilter{})
	require.NoError(t, err)
	assert.Empty(t, txs)
}

func TestSettlePersistenceFailure(t *testing.T) {
	svc, ledger := newEngine(t)
	product := seedProduct(ledger, "Tea", 2.50, 4)
	ledger.FailNextWith(errors.New("disk full"))

	_, err := svc.Settle(context.Background(), SettleRequest{
		Lines:         []CartLine{{ProductID: product, Quantity: 1, UnitPrice: 2.50}},
		PaymentMethod: "card",
		CashierID:     uuid.New(),
	})
	var persistence *PersistenceError
	require.ErrorAs(t, err, &persistence)
	assert.Equal(t, 4, ledger.StockOf(product), "rollback must restore stock")
}

func TestSettleConcurrentDepletion(t *testing.T) {
	const stock, callers = 5, 20

	svc, ledger := newEngine(t)
	product := seedProduct(ledger, "Last Units", 1.00, stock)

	var wg sync.WaitGroup
	errs := make(chan error, callers)
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := svc.Settle(context.Background(), SettleRequest{
				Lines:         []CartLine{{ProductID: product, Quantity: 1, UnitPrice: 1.00}},
				PaymentMethod: "cash",
				CashierID:     uuid.New(),
			})
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)

	var succeeded, failed int
	for err := range errs {
		if err == nil {
			succeeded++
			continue
		}
		var insufficient *InsufficientStockError
		require.ErrorAs(t, err, &insufficient)
		failed++
	}
	assert.Equal(t, stock, succeeded)
	assert.Equal(t, callers-stock, failed)
	assert.Equal(t, 0, ledger.StockOf(product))

	txs, err := svc.ListTransactions(context.Background(), ListFilter{})
	require.NoError(t, err)
	assert.Len(t, txs, stock)
}

func TestSettleExactDepletionRace(t *testing.T) {
	svc, ledger := newEngine(t)
	product := seedProduct(ledger, "Final Item", 7.00, 1)

	results := make(chan error, 2)
	for i := 0; i < 2; i++ {
		go func() {
			_, err := svc.Settle(context.Background(), SettleRequest{
				Lines:         []CartLine{{ProductID: product, Quantity: 1, UnitPrice: 7.00}},
				PaymentMethod: "mobile_money",
				CashierID:     uuid.New(),
			})
			results <- err
		}()
	}

	first, second := <-results, <-results
	if first == nil {
		var insufficient *InsufficientStockError
		require.ErrorAs(t, second, &insufficient)
	} else {
		require.NoError(t, second)
		var insufficient *InsufficientStockError
		require.ErrorAs(t, first, &insufficient)
	}
	assert.Equal(t, 0, ledger.StockOf(product))
}

func TestSettleLoyaltyAccrual(t *testing.T) {
	ledger := NewMemoryLedger()
	loyalty := &fakeLoyalty{}
	svc := NewService(ledger, ledger, loyalty, nil, nil)
	product := seedProduct(ledger, "Wine", 25.00, 3)

	_, err := svc.Settle(context.Background(), SettleRequest{
		Lines:         []CartLine{{ProductID: product, Quantity: 1, UnitPrice: 25.00}},
		PaymentMethod: "card",
		Discount:      3.00,
		CustomerEmail: "amara@example.com",
		CashierID:     uuid.New(),
	})
	require.NoError(t, err)
	// floor(22.00 / 10) = 2 points
	assert.Equal(t, 2, loyalty.points["amara@example.com"])
}

func TestSettleLoyaltyFailureDoesNotFailSettlement(t *testing.T) {
	ledger := NewMemoryLedger()
	loyalty := &fakeLoyalty{err: errors.New("customers table offline")}
	svc := NewService(ledger, ledger, loyalty, nil, nil)
	product := seedProduct(ledger, "Cheese", 12.00, 6)

	result, err := svc.Settle(context.Background(), SettleRequest{
		Lines:         []CartLine{{ProductID: product, Quantity: 2, UnitPrice: 12.00}},
		PaymentMethod: "cash",
		CustomerEmail: "lee@example.com",
		CashierID:     uuid.New(),
	})
	require.NoError(t, err)
	assert.InDelta(t, 24.00, result.Total, 1e-9)
	assert.Equal(t, 4, ledger.StockOf(product), "settlement itself must commit")
}

func TestSettleNotifiesReceiptConsumer(t *testing.T) {
	ledger := NewMemoryLedger()
	notifier := &fakeNotifier{events: make(chan *Transaction, 1)}
	svc := NewService(ledger, ledger, nil, notifier, nil)
	product := seedProduct(ledger, "Juice", 3.50, 9)

	result, err := svc.Settle(context.Background(), SettleRequest{
		Lines:         []CartLine{{ProductID: product, Quantity: 2, UnitPrice: 3.50}},
		PaymentMethod: "voucher",
		CashierID:     uuid.New(),
	})
	require.NoError(t, err)

	tx := <-notifier.events
	assert.Equal(t, result.TransactionID, tx.ID)
	assert.InDelta(t, 7.00, tx.Total, 1e-9)
}
