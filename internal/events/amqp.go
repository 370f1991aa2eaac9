package events

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	amqp "github.com/rabbitmq/amqp091-go"
)

// AMQPPublisher sends events as JSON to a durable topic exchange.
type AMQPPublisher struct {
	mu       sync.Mutex
	conn     *amqp.Connection
	ch       *amqp.Channel
	exchange string
}

type message struct {
	Type          string         `json:"type"`
	AppointmentID string         `json:"appointment_id"`
	Payload       map[string]any `json:"payload,omitempty"`
	OccurredAt    string         `json:"occurred_at"`
}

func NewAMQPPublisher(url, exchange string) (*AMQPPublisher, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("dial rabbitmq: %w", err)
	}
	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("open channel: %w", err)
	}
	if err := ch.ExchangeDeclare(exchange, "topic", true, false, false, false, nil); err != nil {
		_ = ch.Close()
		_ = conn.Close()
		return nil, fmt.Errorf("declare exchange: %w", err)
	}
	return &AMQPPublisher{conn: conn, ch: ch, exchange: exchange}, nil
}

func (p *AMQPPublisher) Publish(ctx context.Context, ev Event) error {
	body, err := encodeMessage(ev)
	if err != nil {
		return err
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	err = p.ch.PublishWithContext(ctx, p.exchange, ev.RoutingKey(), false, false, amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Timestamp:    ev.OccurredAt,
		Body:         body,
	})
	if err != nil {
		return fmt.Errorf("publish %s: %w", ev.Type, err)
	}
	return nil
}

// Ping fails once the broker connection has been closed.
func (p *AMQPPublisher) Ping(context.Context) error {
	if p.conn == nil || p.conn.IsClosed() {
		return amqp.ErrClosed
	}
	return nil
}

func (p *AMQPPublisher) Close() error {
	if p.ch != nil {
		_ = p.ch.Close()
	}
	if p.conn != nil {
		return p.conn.Close()
	}
	return nil
}

func encodeMessage(ev Event) ([]byte, error) {
	b, err := json.Marshal(message{
		Type:          ev.Type,
		AppointmentID: ev.AppointmentID.String(),
		Payload:       ev.Payload,
		OccurredAt:    ev.OccurredAt.Format("2006-01-02T15:04:05Z07:00"),
	})
	if err != nil {
		return nil, fmt.Errorf("marshal %s: %w", ev.Type, err)
	}
	return b, nil
}
