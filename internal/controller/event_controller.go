package controller

import (
	"context"
	"sync"

	"order-card-bot/internal/conversation"
	"order-card-bot/internal/dto"
	"order-card-bot/internal/pkg/serverutils"

	"github.com/gofiber/fiber/v2"
)

type ConversationHandler interface {
	Handle(ctx context.Context, ev conversation.Event, r conversation.Responder) error
}

type IEventController interface {
	RegisterRoutes(r fiber.Router, auth fiber.Handler)
	Handle(ctx *fiber.Ctx) error
}

type eventController struct {
	conversation ConversationHandler
}

func NewEventController(conversation ConversationHandler) IEventController {
	return &eventController{conversation: conversation}
}

func (c *eventController) RegisterRoutes(r fiber.Router, auth fiber.Handler) {
	h := r.Group("/events")
	h.Use(auth)
	h.Post("", c.Handle)
}

// Handle feeds one operator action to the conversation and returns every prompt it produced.
func (c *eventController) Handle(ctx *fiber.Ctx) error {
	operatorID, ok := serverutils.OperatorID(ctx)
	if !ok {
		return fiber.ErrUnauthorized
	}

	var req dto.EventRequest
	if err := ctx.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	out := &collectingResponder{operatorID: operatorID}
	if err := c.conversation.Handle(ctx.UserContext(), toEvent(req), out); err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Event handled", dto.EventResponse{Prompts: out.responses()}))
}

func toEvent(req dto.EventRequest) conversation.Event {
	switch {
	case req.Button != "":
		return conversation.ButtonEvent(req.Button)
	case req.File != nil:
		return conversation.FileEvent(conversation.FileRef{
			ID:       req.File.URL,
			Name:     req.File.Name,
			MimeType: req.File.MimeType,
			Size:     req.File.Size,
		})
	default:
		return conversation.TextEvent(req.Text)
	}
}

// collectingResponder buffers prompts for the HTTP response.
type collectingResponder struct {
	operatorID int64
	mu         sync.Mutex
	prompts    []conversation.Prompt
}

func (r *collectingResponder) Emit(ctx context.Context, p conversation.Prompt) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.prompts = append(r.prompts, p)
	return nil
}

func (r *collectingResponder) SourceUser() int64 {
	return r.operatorID
}

func (r *collectingResponder) responses() []dto.PromptResponse {
	r.mu.Lock()
	defer r.mu.Unlock()

	res := make([]dto.PromptResponse, 0, len(r.prompts))
	for _, p := range r.prompts {
		pr := dto.PromptResponse{Text: p.Text}
		for _, row := range p.Choices {
			choices := make([]dto.ChoiceResponse, 0, len(row))
			for _, ch := range row {
				choices = append(choices, dto.ChoiceResponse{Label: ch.Label, Data: ch.Data})
			}
			pr.Choices = append(pr.Choices, choices)
		}
		res = append(res, pr)
	}
	return res
}
