package controller

import (
	"order-card-bot/internal/dto"
	"order-card-bot/internal/entity"
	"order-card-bot/internal/pkg/serverutils"
	"order-card-bot/internal/repository/contract"
	"order-card-bot/pkg/extractor"

	"github.com/gofiber/fiber/v2"
)

type IDraftController interface {
	RegisterRoutes(r fiber.Router, auth fiber.Handler)
	GetAll(ctx *fiber.Ctx) error
	Show(ctx *fiber.Ctx) error
}

type draftController struct {
	drafts contract.DraftStore
}

func NewDraftController(drafts contract.DraftStore) IDraftController {
	return &draftController{drafts: drafts}
}

func (c *draftController) RegisterRoutes(r fiber.Router, auth fiber.Handler) {
	h := r.Group("/drafts")
	h.Use(auth)
	h.Get("", c.GetAll)
	h.Get(":index", c.Show)
}

func (c *draftController) GetAll(ctx *fiber.Ctx) error {
	operatorID, ok := serverutils.OperatorID(ctx)
	if !ok {
		return fiber.ErrUnauthorized
	}

	drafts, err := c.drafts.List(ctx.UserContext(), operatorID)
	if err != nil {
		return err
	}

	res := make([]dto.DraftResponse, 0, len(drafts))
	for i, d := range drafts {
		res = append(res, toDraftResponse(i, d))
	}
	return ctx.JSON(serverutils.SuccessResponse("Success get all drafts", res))
}

func (c *draftController) Show(ctx *fiber.Ctx) error {
	operatorID, ok := serverutils.OperatorID(ctx)
	if !ok {
		return fiber.ErrUnauthorized
	}
	index, err := ctx.ParamsInt("index")
	if err != nil || index < 0 {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid draft index")
	}

	drafts, err := c.drafts.List(ctx.UserContext(), operatorID)
	if err != nil {
		return err
	}
	if index >= len(drafts) {
		return fiber.NewError(fiber.StatusNotFound, "Draft not found")
	}

	return ctx.JSON(serverutils.SuccessResponse("Success show draft", toDraftResponse(index, drafts[index])))
}

func toDraftResponse(index int, d *entity.Draft) dto.DraftResponse {
	res := dto.DraftResponse{
		Index:       index,
		Title:       d.Title,
		Body:        d.Body,
		DueISO:      d.DueISO,
		Comment:     d.Comment,
		Checklists:  make([]dto.ChecklistResponse, 0, len(d.Checklists)),
		Members:     make([]string, 0, len(d.Members)),
		Labels:      make([]string, 0, len(d.Labels)),
		Attachments: len(d.Attachments),
		Edited:      d.Edited,
		CreatedAt:   d.CreatedAt,
	}
	if d.HasDue() {
		if due, err := extractor.ParseDue(d.DueISO); err == nil {
			res.Due = extractor.FormatDate(due)
		}
	}
	for _, cl := range d.Checklists {
		res.Checklists = append(res.Checklists, dto.ChecklistResponse{Name: cl.Name, Items: cl.Items})
	}
	for _, m := range d.Members {
		res.Members = append(res.Members, m.Name)
	}
	for _, l := range d.Labels {
		res.Labels = append(res.Labels, l.Name)
	}
	return res
}
