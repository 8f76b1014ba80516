package controller

import (
	"spa-booking-be/internal/dto"
	"spa-booking-be/internal/pkg/serverutils"
	"spa-booking-be/internal/service"

	"github.com/gofiber/fiber/v2"
)

type IRefundController interface {
	RegisterRoutes(r fiber.Router, auth fiber.Handler)
	Issue(ctx *fiber.Ctx) error
	List(ctx *fiber.Ctx) error
	Pending(ctx *fiber.Ctx) error
}

type refundController struct {
	service service.IRefundService
}

func NewRefundController(service service.IRefundService) IRefundController {
	return &refundController{service: service}
}

func (c *refundController) RegisterRoutes(r fiber.Router, auth fiber.Handler) {
	h := r.Group("/refunds", auth)
	h.Post("", c.Issue)
	h.Get("", c.List)
	h.Get("/pending", c.Pending)
}

func (c *refundController) Issue(ctx *fiber.Ctx) error {
	var req dto.IssueRefundRequest
	if err := ctx.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.service.IssueRefund(ctx.UserContext(), serverutils.ActorFromCtx(ctx), &req)
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Refund issued", res))
}

func (c *refundController) List(ctx *fiber.Ctx) error {
	from, to, err := queryRange(ctx)
	if err != nil {
		return err
	}

	res, err := c.service.ListRefunds(ctx.UserContext(), from, to)
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Success fetching refunds", res))
}

func (c *refundController) Pending(ctx *fiber.Ctx) error {
	res, err := c.service.ListPending(ctx.UserContext())
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Success fetching pending refunds", res))
}
