package websocket

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"order-card-bot/internal/conversation"
	"order-card-bot/internal/pkg/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type silentResponder struct {
	op   int64
	got  []conversation.Prompt
	fail bool
}

func (r *silentResponder) Emit(ctx context.Context, p conversation.Prompt) error {
	r.got = append(r.got, p)
	if r.fail {
		return errors.New("chat gone")
	}
	return nil
}

func (r *silentResponder) SourceUser() int64 { return r.op }

type greeter struct{}

func (greeter) Handle(ctx context.Context, ev conversation.Event, r conversation.Responder) error {
	return r.Emit(ctx, conversation.Prompt{Text: "hello " + ev.Text})
}

func startHub(t *testing.T) *Hub {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	hub := NewHub(nil, "test", logger.NewNopLogger())
	go hub.Run(ctx)
	return hub
}

func attach(t *testing.T, hub *Hub, operatorID int64) *Client {
	t.Helper()
	client := &Client{Hub: hub, OperatorID: operatorID, Send: make(chan []byte, 4)}
	hub.register <- client
	require.Eventually(t, func() bool { return hub.Connected(operatorID) > 0 }, time.Second, 5*time.Millisecond)
	return client
}

func TestHub_SendsOnlyToOperator(t *testing.T) {
	hub := startHub(t)
	mine := attach(t, hub, 1)
	other := attach(t, hub, 2)

	hub.Send(context.Background(), 1, conversation.Prompt{Text: "Draft #1 updated."})

	select {
	case raw := <-mine.Send:
		var frame Frame
		require.NoError(t, json.Unmarshal(raw, &frame))
		assert.Equal(t, "prompt", frame.Type)
		assert.Equal(t, "Draft #1 updated.", frame.Prompt.Text)
	case <-time.After(time.Second):
		t.Fatal("prompt not delivered")
	}
	assert.Empty(t, other.Send)
}

func TestHub_UnregisterClosesClient(t *testing.T) {
	hub := startHub(t)
	client := attach(t, hub, 5)

	hub.unregister <- client

	assert.Eventually(t, func() bool { return hub.Connected(5) == 0 }, time.Second, 5*time.Millisecond)
	_, open := <-client.Send
	assert.False(t, open)
}

func TestMirror(t *testing.T) {
	hub := startHub(t)
	watcher := attach(t, hub, 9)

	t.Run("forwards to the original responder and the hub", func(t *testing.T) {
		r := &silentResponder{op: 9}
		require.NoError(t, hub.Mirror(greeter{}).Handle(context.Background(), conversation.TextEvent("there"), r))

		require.Len(t, r.got, 1)
		assert.Equal(t, "hello there", r.got[0].Text)
		select {
		case <-watcher.Send:
		case <-time.After(time.Second):
			t.Fatal("mirror did not reach the hub")
		}
	})

	t.Run("original error is kept", func(t *testing.T) {
		r := &silentResponder{op: 9, fail: true}
		assert.Error(t, hub.Mirror(greeter{}).Handle(context.Background(), conversation.TextEvent("x"), r))
		<-watcher.Send
	})
}
