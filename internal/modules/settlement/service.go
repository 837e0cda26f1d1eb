package settlement

import (
	"context"
	"errors"
	"math"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Service converts carts into committed ledger transactions.
type Service interface {
	// Settle validates the cart, atomically decrements stock and writes the
	// ledger entry. On any failure the store is left exactly as it was.
	Settle(ctx context.Context, req SettleRequest) (*SettleResult, error)

	GetTransaction(ctx context.Context, id string) (*Transaction, error)
	ListTransactions(ctx context.Context, filter ListFilter) ([]*Transaction, error)
}

type service struct {
	ledger   Ledger
	stock    StockReader
	loyalty  LoyaltyAccruer
	notifier ReceiptNotifier
	logger   *zap.Logger
}

// NewService creates the settlement engine. loyalty and notifier are
// optional; pass nil to disable the corresponding side effect.
func NewService(ledger Ledger, stock StockReader, loyalty LoyaltyAccruer, notifier ReceiptNotifier, logger *zap.Logger) Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &service{
		ledger:   ledger,
		stock:    stock,
		loyalty:  loyalty,
		notifier: notifier,
		logger:   logger,
	}
}

func (s *service) Settle(ctx context.Context, req SettleRequest) (*SettleResult, error) {
	if len(req.Lines) == 0 {
		return nil, ErrEmptyCart
	}
	method, ok := ParsePaymentMethod(req.PaymentMethod)
	if !ok {
		return nil, ErrInvalidPaymentMethod
	}

	var subtotal float64
	for _, l := range req.Lines {
		if l.Quantity <= 0 {
			return nil, ErrInvalidQuantity
		}
		subtotal += l.UnitPrice * float64(l.Quantity)
	}
	if req.Discount < 0 || req.Discount > subtotal {
		return nil, ErrInvalidDiscount
	}

	// Optimistic pre-check. Lines are visited in input order so failures are
	// deterministic; the message can name the product. The conditional
	// update inside CreateSettlement remains the sole enforcement of
	// stock >= 0 under concurrent settlements.
	for _, l := range req.Lines {
		info, err := s.stock.ProductInfo(ctx, l.ProductID)
		if err != nil {
			return nil, err
		}
		if info.Stock < l.Quantity {
			return nil, &InsufficientStockError{
				ProductID:   l.ProductID,
				ProductName: info.Name,
				Requested:   l.Quantity,
				Available:   info.Stock,
			}
		}
	}

	total := subtotal - req.Discount
	tx := &Transaction{
		ID:            uuid.New(),
		CashierID:     req.CashierID,
		Total:         total,
		Discount:      req.Discount,
		PaymentMethod: method,
		CustomerEmail: req.CustomerEmail,
		CreatedAt:     time.Now(),
	}
	lines := make([]TransactionLine, 0, len(req.Lines))
	for _, l := range req.Lines {
		lines = append(lines, TransactionLine{
			ID:            uuid.New(),
			TransactionID: tx.ID,
			ProductID:     l.ProductID,
			Quantity:      l.Quantity,
			UnitPrice:     l.UnitPrice,
			Subtotal:      l.UnitPrice * float64(l.Quantity),
		})
	}

	if err := s.ledger.CreateSettlement(ctx, tx, lines); err != nil {
		var pe *PersistenceError
		if errors.As(err, &pe) {
			s.logger.Error("settlement aborted",
				zap.String("transaction_id", tx.ID.String()),
				zap.Error(err))
		}
		return nil, err
	}

	s.logger.Info("settlement committed",
		zap.String("transaction_id", tx.ID.String()),
		zap.String("cashier_id", tx.CashierID.String()),
		zap.Float64("total", total),
		zap.Int("lines", len(lines)))

	// The settlement is durable from here on. Loyalty accrual and receipt
	// notification are best-effort and must not surface an error.
	if req.CustomerEmail != "" && s.loyalty != nil {
		points := int(math.Floor(total / 10))
		if err := s.loyalty.AccruePoints(ctx, req.CustomerEmail, points); err != nil {
			s.logger.Warn("loyalty accrual failed",
				zap.String("transaction_id", tx.ID.String()),
				zap.String("customer_email", req.CustomerEmail),
				zap.Int("points", points),
				zap.Error(err))
		}
	}
	if s.notifier != nil {
		go s.notifier.SettlementCompleted(context.WithoutCancel(ctx), tx, lines)
	}

	return &SettleResult{TransactionID: tx.ID, Total: total}, nil
}

func (s *service) GetTransaction(ctx context.Context, id string) (*Transaction, error) {
	return s.ledger.GetTransaction(ctx, id)
}

func (s *service) ListTransactions(ctx context.Context, filter ListFilter) ([]*Transaction, error) {
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.Limit < 1 || filter.Limit > 200 {
		filter.Limit = 50
	}
	return s.ledger.ListTransactions(ctx, filter)
}
