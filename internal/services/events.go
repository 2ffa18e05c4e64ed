package services

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/segmentio/kafka-go"
)

// Order event types published to the order topic.
const (
	EventOrderCreated       = "order.created"
	EventOrderStatusChanged = "order.status_changed"
	EventPaymentConfirmed   = "payment.confirmed"
)

// OrderEvent is the payload emitted for order lifecycle changes.
type OrderEvent struct {
	Type        string    `json:"type"`
	OrderID     uuid.UUID `json:"order_id"`
	OrderNumber string    `json:"order_number"`
	UserID      uuid.UUID `json:"user_id"`
	Status      string    `json:"status,omitempty"`
	TotalAmount float64   `json:"total_amount"`
	OccurredAt  time.Time `json:"occurred_at"`
}

// EventProducer publishes order events to Kafka. A nil producer (no
// brokers configured) silently drops events.
type EventProducer struct {
	writer *kafka.Writer
}

// NewEventProducer returns nil when no brokers are configured.
func NewEventProducer(brokers []string, topic string) *EventProducer {
	if len(brokers) == 0 {
		return nil
	}
	return &EventProducer{
		writer: &kafka.Writer{
			Addr:     kafka.TCP(brokers...),
			Topic:    topic,
			Balancer: &kafka.LeastBytes{},
		},
	}
}

// Publish sends one event keyed by the order number.
func (p *EventProducer) Publish(ctx context.Context, key string, event OrderEvent) error {
	if p == nil || p.writer == nil {
		return nil
	}

	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("events: marshal failed: %w", err)
	}

	if err := p.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(key),
		Value: data,
	}); err != nil {
		return fmt.Errorf("events: write failed: %w", err)
	}

	return nil
}

// Close flushes and closes the underlying writer.
func (p *EventProducer) Close() error {
	if p == nil || p.writer == nil {
		return nil
	}
	return p.writer.Close()
}
