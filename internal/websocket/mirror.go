package websocket

import (
	"context"

	"order-card-bot/internal/conversation"
)

type ConversationHandler interface {
	Handle(ctx context.Context, ev conversation.Event, r conversation.Responder) error
}

// Mirror wraps a conversation so every emitted prompt is also pushed to the hub.
func (h *Hub) Mirror(next ConversationHandler) ConversationHandler {
	return &mirroredHandler{hub: h, next: next}
}

type mirroredHandler struct {
	hub  *Hub
	next ConversationHandler
}

func (m *mirroredHandler) Handle(ctx context.Context, ev conversation.Event, r conversation.Responder) error {
	return m.next.Handle(ctx, ev, &mirroredResponder{hub: m.hub, Responder: r})
}

type mirroredResponder struct {
	conversation.Responder
	hub *Hub
}

func (r *mirroredResponder) Emit(ctx context.Context, p conversation.Prompt) error {
	err := r.Responder.Emit(ctx, p)
	r.hub.Send(ctx, r.SourceUser(), p)
	return err
}
