package nats

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"order-card-bot/pkg/events"

	"github.com/nats-io/nats.go/jetstream"
)

// EventHandler processes one delivered event. A returned error asks for redelivery.
type EventHandler = func(ctx context.Context, event events.Event) error

type envelope struct {
	Type       string                 `json:"type"`
	Data       map[string]interface{} `json:"data"`
	OccurredAt time.Time              `json:"occurred_at"`
}

// Subscriber consumes events with durable JetStream consumers.
type Subscriber struct {
	conn     *Conn
	contexts []jetstream.ConsumeContext
}

func NewSubscriber(conn *Conn) *Subscriber {
	return &Subscriber{conn: conn}
}

// Subscribe registers handler for one event type under a durable consumer name.
func (s *Subscriber) Subscribe(ctx context.Context, eventType, durableName string, handler EventHandler) error {
	if !s.conn.Connected() {
		return ErrNotConnected
	}

	consumer, err := s.conn.js.CreateOrUpdateConsumer(ctx, StreamName, jetstream.ConsumerConfig{
		Durable:       durableName,
		FilterSubject: events.Subject(eventType),
		AckPolicy:     jetstream.AckExplicitPolicy,
		MaxDeliver:    5,
	})
	if err != nil {
		return fmt.Errorf("failed to create consumer: %w", err)
	}

	cc, err := consumer.Consume(func(msg jetstream.Msg) {
		var env envelope
		if err := json.Unmarshal(msg.Data(), &env); err != nil {
			log.Printf("[ERROR] Dropping undecodable event on %s: %v", msg.Subject(), err)
			_ = msg.Term()
			return
		}

		event := events.BaseEvent{Type: env.Type, Data: env.Data, OccurredAt: env.OccurredAt}
		if err := handler(ctx, event); err != nil {
			log.Printf("[WARN] Handler failed for event %s: %v", msg.Subject(), err)
			_ = msg.Nak()
			return
		}
		_ = msg.Ack()
	})
	if err != nil {
		return fmt.Errorf("failed to start consuming: %w", err)
	}

	s.contexts = append(s.contexts, cc)
	log.Printf("[INFO] Subscribed to %s with durable %s", events.Subject(eventType), durableName)
	return nil
}

// Stop ends every consumer started by Subscribe.
func (s *Subscriber) Stop() {
	for _, cc := range s.contexts {
		cc.Stop()
	}
	s.contexts = nil
}
