// Package events publishes fulfillment facts to a message broker after the
// owning transaction has committed.
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

const (
	TopicOrders    = "order_events"
	TopicDelivery  = "delivery_events"
	TopicInventory = "inventory_events"
)

type Envelope struct {
	ID         string    `json:"id"`
	Type       string    `json:"type"`
	OccurredAt time.Time `json:"occurred_at"`
	Payload    any       `json:"payload"`
}

func NewEnvelope(eventType string, payload any) Envelope {
	return Envelope{
		ID:         uuid.NewString(),
		Type:       eventType,
		OccurredAt: time.Now().UTC(),
		Payload:    payload,
	}
}

type Publisher interface {
	Publish(ctx context.Context, topic, key string, event Envelope) error
	Close() error
}

func encode(event Envelope) ([]byte, error) {
	data, err := json.Marshal(event)
	if err != nil {
		return nil, fmt.Errorf("events: json.Marshal failed: %w", err)
	}
	return data, nil
}

type NopPublisher struct{}

func (NopPublisher) Publish(context.Context, string, string, Envelope) error { return nil }
func (NopPublisher) Close() error { return nil }

// New picks the broker implementation by name: kafka, amqp or none.
func New(broker string, kafkaBrokers []string, amqpURL, amqpExchange string) (Publisher, error) {
	switch broker {
	case "kafka":
		if len(kafkaBrokers) == 0 {
			return nil, fmt.Errorf("events: KAFKA_BROKERS is empty")
		}
		return NewKafkaPublisher(kafkaBrokers), nil
	case "amqp":
		return NewAMQPPublisher(amqpURL, amqpExchange)
	case "", "none":
		return NopPublisher{}, nil
	default:
		return nil, fmt.Errorf("events: unknown broker %q", broker)
	}
}
