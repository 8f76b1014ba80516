package controller

import (
	"spa-booking-be/internal/dto"
	"spa-booking-be/internal/pkg/serverutils"
	"spa-booking-be/internal/service"

	"github.com/gofiber/fiber/v2"
)

type ICancelRequestController interface {
	RegisterRoutes(r fiber.Router, auth fiber.Handler)
	Create(ctx *fiber.Ctx) error
	List(ctx *fiber.Ctx) error
	Approve(ctx *fiber.Ctx) error
	Reject(ctx *fiber.Ctx) error
}

type cancelRequestController struct {
	service service.ICancelRequestService
}

func NewCancelRequestController(service service.ICancelRequestService) ICancelRequestController {
	return &cancelRequestController{service: service}
}

func (c *cancelRequestController) RegisterRoutes(r fiber.Router, auth fiber.Handler) {
	h := r.Group("/cancel-requests", auth)
	h.Post("", c.Create)
	h.Get("", c.List)
	h.Post("/:id/approve", c.Approve)
	h.Post("/:id/reject", c.Reject)
}

func (c *cancelRequestController) Create(ctx *fiber.Ctx) error {
	var req dto.CreateCancelRequest
	if err := ctx.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.service.Create(ctx.UserContext(), serverutils.ActorFromCtx(ctx), &req)
	if err != nil {
		return err
	}
	return ctx.Status(fiber.StatusCreated).JSON(serverutils.SuccessResponse("Cancellation requested", res))
}

func (c *cancelRequestController) List(ctx *fiber.Ctx) error {
	res, err := c.service.List(ctx.UserContext(), ctx.Query("status"))
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Success fetching cancel requests", res))
}

func (c *cancelRequestController) Approve(ctx *fiber.Ctx) error {
	id, err := paramID(ctx, "id")
	if err != nil {
		return err
	}

	res, err := c.service.Approve(ctx.UserContext(), serverutils.ActorFromCtx(ctx), id)
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Cancellation approved", res))
}

func (c *cancelRequestController) Reject(ctx *fiber.Ctx) error {
	id, err := paramID(ctx, "id")
	if err != nil {
		return err
	}

	res, err := c.service.Reject(ctx.UserContext(), serverutils.ActorFromCtx(ctx), id)
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Cancellation rejected", res))
}
