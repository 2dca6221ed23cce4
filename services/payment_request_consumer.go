package services

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/clickpaysolution/PaymentGateway/models"
	kafkago "github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

// PaymentRequestConsumer drains the payment-requests topic and creates
// payments through the orchestrator. Upstream services use this path when
// they want asynchronous payment creation instead of the HTTP API.
type PaymentRequestConsumer struct {
	reader   *kafkago.Reader
	payments PaymentService
	logger   *zap.Logger
	topic    string
}

func NewPaymentRequestConsumer(brokers []string, topic, groupID string, payments PaymentService, logger *zap.Logger) *PaymentRequestConsumer {
	topic = strings.TrimSpace(topic)
	if topic == "" {
		logger.Fatal("PaymentRequestConsumer topic is empty")
	}
	r := kafkago.NewReader(kafkago.ReaderConfig{
		Brokers:  brokers,
		Topic:    topic,
		GroupID:  groupID,
		MinBytes: 1e3,
		MaxBytes: 10e6,
	})
	logger.Info("PaymentRequestConsumer initialized",
		zap.String("topic", topic),
		zap.Strings("brokers", brokers),
		zap.String("group_id", groupID))
	return &PaymentRequestConsumer{reader: r, payments: payments, logger: logger, topic: topic}
}

// Start blocks, reading payment requests until ctx is cancelled.
func (c *PaymentRequestConsumer) Start(ctx context.Context) {
	c.logger.Info("Starting PaymentRequestConsumer", zap.String("topic", c.topic))
	for {
		m, err := c.reader.ReadMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			c.logger.Warn("Error reading payment request", zap.Error(err))
			continue
		}

		var req models.PaymentRequestMessage
		if err := json.Unmarshal(m.Value, &req); err != nil {
			c.logger.Warn("Invalid payment request JSON",
				zap.Error(err), zap.String("payload", string(m.Value)))
			continue
		}
		if req.MerchantID == "" {
			c.logger.Warn("Payment request missing merchant_id", zap.String("payload", string(m.Value)))
			continue
		}

		resp, svcErr := c.payments.CreatePayment(ctx, req.MerchantID, &models.CreatePaymentRequest{
			Amount:      req.Amount,
			Currency:    req.Currency,
			Method:      req.Method,
			UPIID:       req.UPIID,
			CallbackURL: req.CallbackURL,
			Description: req.Description,
		})
		if svcErr != nil {
			c.logger.Warn("Queued payment creation failed",
				zap.String("merchant_id", req.MerchantID),
				zap.String("idempotency_key", req.IdempotencyKey),
				zap.String("error", svcErr.Message))
			continue
		}

		c.logger.Info("Queued payment created",
			zap.String("merchant_id", req.MerchantID),
			zap.String("transaction_id", resp.TransactionID))
	}
}

func (c *PaymentRequestConsumer) Close() {
	_ = c.reader.Close()
	c.logger.Info("PaymentRequestConsumer closed")
}
