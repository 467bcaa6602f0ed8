package controller

import (
	"order-card-bot/internal/pkg/serverutils"

	"github.com/gofiber/fiber/v2"
)

type IHealthController interface {
	RegisterRoutes(r fiber.Router)
	Check(ctx *fiber.Ctx) error
}

type healthController struct {
	storageBackend string
	transports     []string
}

func NewHealthController(storageBackend string, transports ...string) IHealthController {
	return &healthController{storageBackend: storageBackend, transports: transports}
}

func (c *healthController) RegisterRoutes(r fiber.Router) {
	r.Get("/health", c.Check)
}

func (c *healthController) Check(ctx *fiber.Ctx) error {
	return ctx.JSON(serverutils.SuccessResponse("OK", fiber.Map{
		"storage":    c.storageBackend,
		"transports": c.transports,
	}))
}
