package nats

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"order-card-bot/pkg/events"
)

var ErrNotConnected = errors.New("nats is not connected")

// Publisher sends events to JetStream under events.<TYPE>.
type Publisher struct {
	conn *Conn
}

func NewPublisher(conn *Conn) *Publisher {
	return &Publisher{conn: conn}
}

func (p *Publisher) Publish(ctx context.Context, event events.Event) error {
	if !p.conn.Connected() {
		return ErrNotConnected
	}

	data, err := json.Marshal(envelope{
		Type:       event.EventType(),
		Data:       event.Payload(),
		OccurredAt: event.Timestamp(),
	})
	if err != nil {
		return fmt.Errorf("failed to marshal event payload: %w", err)
	}

	subject := events.Subject(event.EventType())
	if _, err := p.conn.js.Publish(ctx, subject, data); err != nil {
		return fmt.Errorf("failed to publish event to subject %s: %w", subject, err)
	}
	return nil
}
