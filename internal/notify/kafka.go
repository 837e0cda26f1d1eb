package notify

import (
	"context"
	"encoding/json"
	"time"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	"github.com/marketlane/pos-backend/internal/modules/settlement"
)

// ReceiptEvent is published for every committed settlement. Consumers
// (receipt printer, reporting pipelines) read it off the topic; a publish
// failure never touches the already-committed settlement.
type ReceiptEvent struct {
	TransactionID string        `json:"transaction_id"`
	CashierID     string        `json:"cashier_id"`
	Total         float64       `json:"total"`
	Discount      float64       `json:"discount_amount"`
	PaymentMethod string        `json:"payment_method"`
	CustomerEmail string        `json:"customer_email,omitempty"`
	Lines         []ReceiptLine `json:"items"`
	OccurredAt    time.Time     `json:"occurred_at"`
}

type ReceiptLine struct {
	ProductID string  `json:"product_id"`
	Quantity  int     `json:"quantity"`
	UnitPrice float64 `json:"unit_price"`
	Subtotal  float64 `json:"subtotal"`
}

// KafkaPublisher writes receipt events to a Kafka topic.
type KafkaPublisher struct {
	writer *kafka.Writer
	logger *zap.Logger
}

var _ settlement.ReceiptNotifier = (*KafkaPublisher)(nil)

func NewKafkaPublisher(brokers, topic string, logger *zap.Logger) *KafkaPublisher {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &KafkaPublisher{
		writer: &kafka.Writer{
			Addr:         kafka.TCP(brokers),
			Topic:        topic,
			Balancer:     &kafka.LeastBytes{},
			BatchTimeout: 10 * time.Millisecond,
		},
		logger: logger,
	}
}

func (p *KafkaPublisher) SettlementCompleted(ctx context.Context, tx *settlement.Transaction, lines []settlement.TransactionLine) {
	event := ReceiptEvent{
		TransactionID: tx.ID.String(),
		CashierID:     tx.CashierID.String(),
		Total:         tx.Total,
		Discount:      tx.Discount,
		PaymentMethod: string(tx.PaymentMethod),
		CustomerEmail: tx.CustomerEmail,
		OccurredAt:    tx.CreatedAt,
	}
	for _, l := range lines {
		event.Lines = append(event.Lines, ReceiptLine{
			ProductID: l.ProductID.String(),
			Quantity:  l.Quantity,
			UnitPrice: l.UnitPrice,
			Subtotal:  l.Subtotal,
		})
	}

	payload, err := json.Marshal(event)
	if err != nil {
		p.logger.Error("failed to marshal receipt event",
			zap.String("transaction_id", event.TransactionID),
			zap.Error(err))
		return
	}

	writeCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	err = p.writer.WriteMessages(writeCtx, kafka.Message{
		Key:   []byte(event.TransactionID),
		Value: payload,
	})
	if err != nil {
		p.logger.Error("failed to publish receipt event",
			zap.String("transaction_id", event.TransactionID),
			zap.Error(err))
		return
	}

	p.logger.Info("receipt event published",
		zap.String("transaction_id", event.TransactionID),
		zap.Float64("total", event.Total))
}

func (p *KafkaPublisher) Close() error {
	if p.writer != nil {
		return p.writer.Close()
	}
	return nil
}
