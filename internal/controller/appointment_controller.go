package controller

import (
	"spa-booking-be/internal/dto"
	"spa-booking-be/internal/pkg/serverutils"
	"spa-booking-be/internal/service"

	"github.com/gofiber/fiber/v2"
)

type IAppointmentController interface {
	RegisterRoutes(r fiber.Router, auth fiber.Handler)
	Create(ctx *fiber.Ctx) error
	Get(ctx *fiber.Ctx) error
	History(ctx *fiber.Ctx) error
	Confirm(ctx *fiber.Ctx) error
	Reject(ctx *fiber.Ctx) error
	Approve(ctx *fiber.Ctx) error
	Complete(ctx *fiber.Ctx) error
	Cancel(ctx *fiber.Ctx) error
	Remind(ctx *fiber.Ctx) error
	DepositLink(ctx *fiber.Ctx) error
	Settle(ctx *fiber.Ctx) error
}

type appointmentController struct {
	service service.IAppointmentService
}

func NewAppointmentController(service service.IAppointmentService) IAppointmentController {
	return &appointmentController{service: service}
}

func (c *appointmentController) RegisterRoutes(r fiber.Router, auth fiber.Handler) {
	h := r.Group("/appointments", auth)
	h.Post("", c.Create)
	h.Get("/:id", c.Get)
	h.Get("/:id/history", c.History)

	h.Post("/:id/confirm", c.Confirm)
	h.Post("/:id/reject", c.Reject)
	h.Post("/:id/approve", c.Approve)
	h.Post("/:id/complete", c.Complete)
	h.Post("/:id/cancel", c.Cancel)
	h.Post("/:id/remind", c.Remind)
	h.Post("/:id/deposit-link", c.DepositLink)
	h.Post("/:id/settle", c.Settle)
}

func (c *appointmentController) Create(ctx *fiber.Ctx) error {
	var req dto.CreateAppointmentRequest
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
	return ctx.Status(fiber.StatusCreated).JSON(serverutils.SuccessResponse("Appointment created", res))
}

func (c *appointmentController) Get(ctx *fiber.Ctx) error {
	id, err := paramID(ctx, "id")
	if err != nil {
		return err
	}

	res, err := c.service.Get(ctx.UserContext(), id)
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Success fetching appointment", res))
}

func (c *appointmentController) History(ctx *fiber.Ctx) error {
	id, err := paramID(ctx, "id")
	if err != nil {
		return err
	}

	res, err := c.service.History(ctx.UserContext(), id)
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Success fetching history", res))
}

func (c *appointmentController) Confirm(ctx *fiber.Ctx) error {
	id, err := paramID(ctx, "id")
	if err != nil {
		return err
	}

	res, err := c.service.Confirm(ctx.UserContext(), serverutils.ActorFromCtx(ctx), id)
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Appointment confirmed", res))
}

func (c *appointmentController) Reject(ctx *fiber.Ctx) error {
	id, err := paramID(ctx, "id")
	if err != nil {
		return err
	}
	var req dto.ReasonRequest
	if len(ctx.Body()) > 0 {
		if err := ctx.BodyParser(&req); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
		}
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.service.Reject(ctx.UserContext(), serverutils.ActorFromCtx(ctx), id, req.Reason)
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Appointment rejected", res))
}

func (c *appointmentController) Approve(ctx *fiber.Ctx) error {
	id, err := paramID(ctx, "id")
	if err != nil {
		return err
	}

	res, err := c.service.Approve(ctx.UserContext(), serverutils.ActorFromCtx(ctx), id)
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Appointment approved", res))
}

func (c *appointmentController) Complete(ctx *fiber.Ctx) error {
	id, err := paramID(ctx, "id")
	if err != nil {
		return err
	}

	res, err := c.service.MarkCompleted(ctx.UserContext(), serverutils.ActorFromCtx(ctx), id)
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Appointment completed", res))
}

func (c *appointmentController) Cancel(ctx *fiber.Ctx) error {
	id, err := paramID(ctx, "id")
	if err != nil {
		return err
	}
	var req dto.CancelAppointmentRequest
	if err := ctx.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.service.Cancel(ctx.UserContext(), serverutils.ActorFromCtx(ctx), id, req.Reason)
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Appointment cancelled", res))
}

func (c *appointmentController) Remind(ctx *fiber.Ctx) error {
	id, err := paramID(ctx, "id")
	if err != nil {
		return err
	}
	var req dto.RemindDoctorRequest
	if len(ctx.Body()) > 0 {
		if err := ctx.BodyParser(&req); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
		}
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	if err := c.service.RequestComplete(ctx.UserContext(), serverutils.ActorFromCtx(ctx), id, &req); err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse[any]("Doctor reminded", nil))
}

func (c *appointmentController) DepositLink(ctx *fiber.Ctx) error {
	id, err := paramID(ctx, "id")
	if err != nil {
		return err
	}
	var req dto.DepositLinkRequest
	if len(ctx.Body()) > 0 {
		if err := ctx.BodyParser(&req); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
		}
	}

	res, err := c.service.CreateDepositLink(ctx.UserContext(), serverutils.ActorFromCtx(ctx), id, &req)
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Deposit link created", res))
}

func (c *appointmentController) Settle(ctx *fiber.Ctx) error {
	id, err := paramID(ctx, "id")
	if err != nil {
		return err
	}
	var req dto.SettleRequest
	if err := ctx.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}
	method, err := service.ParseSettlement(&req)
	if err != nil {
		return err
	}

	res, err := c.service.Settle(ctx.UserContext(), serverutils.ActorFromCtx(ctx), id, method)
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Settlement recorded", res))
}
