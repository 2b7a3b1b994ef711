package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/Kalind02/food-ordering-api/internal/domain"
)

// OrderCreated is the payload published when a new order is durably recorded.
// Idempotent replays do not publish.
type OrderCreated struct {
	OrderID   string             `json:"order_id"`
	UserID    string             `json:"user_id"`
	Items     []domain.OrderItem `json:"items"`
	Total     float64            `json:"total"`
	Status    string             `json:"status"`
	CreatedAt time.Time          `json:"created_at"`
}

type Publisher struct {
	writer *kafka.Writer
	topic  string
}

func NewPublisher(brokers []string, topic string) *Publisher {
	writer := &kafka.Writer{
		Addr:         kafka.TCP(brokers...),
		Topic:        topic,
		Balancer:     &kafka.LeastBytes{},
		WriteTimeout: 10 * time.Second,
		ReadTimeout:  10 * time.Second,
		RequiredAcks: kafka.RequireOne,
	}
	return &Publisher{
		writer: writer,
		topic:  topic,
	}
}

func (p *Publisher) PublishOrderCreated(ctx context.Context, order domain.Order) error {
	payload := OrderCreated{
		OrderID:   order.ID,
		UserID:    order.UserID,
		Items:     order.Items,
		Total:     order.Total,
		Status:    string(order.Status),
		CreatedAt: order.CreatedAt,
	}
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("encode order created: %w", err)
	}

	msg := kafka.Message{
		Key:   []byte(order.ID),
		Value: data,
		Time:  time.Now(),
	}
	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("publish order created: %w", err)
	}
	return nil
}

func (p *Publisher) Close() error {
	return p.writer.Close()
}
