package nats

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"
)

const StreamName = "EVENTS"

// Conn is one NATS connection shared by the publisher and the subscriber.
type Conn struct {
	nc *nats.Conn
	js jetstream.JetStream
}

// Connect dials NATS and makes sure the events stream exists.
func Connect(url string) (*Conn, error) {
	nc, err := nats.Connect(url,
		nats.Name("order-card-bot"),
		nats.RetryOnFailedConnect(true),
		nats.MaxReconnects(5),
		nats.ReconnectWait(2*time.Second),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to NATS: %w", err)
	}

	js, err := jetstream.New(nc)
	if err != nil {
		nc.Close()
		return nil, fmt.Errorf("failed to create JetStream context: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	// reports are kept for a week so a late notifier can still pick them up
	_, err = js.CreateOrUpdateStream(ctx, jetstream.StreamConfig{
		Name:      StreamName,
		Subjects:  []string{"events.>"},
		Storage:   jetstream.FileStorage,
		Retention: jetstream.LimitsPolicy,
		MaxAge:    7 * 24 * time.Hour,
	})
	if err != nil {
		log.Printf("[WARN] Failed to ensure stream %s: %v", StreamName, err)
	}

	return &Conn{nc: nc, js: js}, nil
}

// Connected reports whether the underlying connection is currently usable.
func (c *Conn) Connected() bool {
	return c != nil && c.nc != nil && c.nc.IsConnected()
}

func (c *Conn) Close() {
	if c != nil && c.nc != nil {
		c.nc.Close()
	}
}
