package controller

import (
	"order-card-bot/internal/pkg/serverutils"
	internalWS "order-card-bot/internal/websocket"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
)

type IWebsocketController interface {
	RegisterRoutes(r fiber.Router, auth fiber.Handler)
	Upgrade(ctx *fiber.Ctx) error
}

type websocketController struct {
	hub *internalWS.Hub
}

func NewWebsocketController(hub *internalWS.Hub) IWebsocketController {
	return &websocketController{hub: hub}
}

func (c *websocketController) RegisterRoutes(r fiber.Router, auth fiber.Handler) {
	r.Get("/ws", tokenFromQuery, auth, c.Upgrade)
}

// tokenFromQuery lets browsers, which cannot set headers on websocket requests, pass ?token=.
func tokenFromQuery(ctx *fiber.Ctx) error {
	if ctx.Get(fiber.HeaderAuthorization) == "" {
		if token := ctx.Query("token"); token != "" {
			ctx.Request().Header.Set(fiber.HeaderAuthorization, "Bearer "+token)
		}
	}
	return ctx.Next()
}

func (c *websocketController) Upgrade(ctx *fiber.Ctx) error {
	operatorID, ok := serverutils.OperatorID(ctx)
	if !ok {
		return fiber.ErrUnauthorized
	}
	if !websocket.IsWebSocketUpgrade(ctx) {
		return fiber.ErrUpgradeRequired
	}
	return websocket.New(func(conn *websocket.Conn) {
		internalWS.ServeWs(c.hub, conn, operatorID)
	})(ctx)
}
