package kafka

import (
	"context"
	"encoding/json"

	kafkago "github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	"github.com/thinhchuht/ResiBuy-sub001/models"
)

// checkoutKey is the message key for every checkout event; the order pipeline
// partitions on it.
const checkoutKey = "checkout"

// Producer publishes finalized checkout events to the checkout topic. The
// HTTP handler returns once the broker accepts the message, not once the
// order exists.
type Producer struct {
	writer *kafkago.Writer
	logger *zap.Logger
}

// NewProducer creates a producer for the given brokers and topic.
func NewProducer(brokers []string, topic string, logger *zap.Logger) *Producer {
	writer := &kafkago.Writer{
		Addr:         kafkago.TCP(brokers...),
		Topic:        topic,
		Balancer:     &kafkago.LeastBytes{},
		RequiredAcks: kafkago.RequireOne,
	}

	return &Producer{writer: writer, logger: logger}
}

// PublishCheckout serializes and publishes a checkout event. Errors are
// returned to the caller, which owns the compensating lock release.
func (p *Producer) PublishCheckout(ctx context.Context, event models.CheckoutEvent) error {
	data, err := json.Marshal(event)
	if err != nil {
		return err
	}

	msg := kafkago.Message{
		Key:   []byte(checkoutKey),
		Value: data,
	}

	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		p.logger.Error("Failed to publish checkout event",
			zap.String("cart_id", event.Checkout.CartID),
			zap.Error(err),
		)
		return err
	}

	p.logger.Info("Checkout event published",
		zap.String("cart_id", event.Checkout.CartID),
		zap.String("payment_id", event.PaymentID),
	)
	return nil
}

// Close flushes and closes the underlying writer.
func (p *Producer) Close() error {
	return p.writer.Close()
}
