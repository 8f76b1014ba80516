package controller

import (
	"spa-booking-be/internal/dto"
	"spa-booking-be/internal/pkg/exceptions"
	"spa-booking-be/internal/pkg/logger"
	"spa-booking-be/internal/pkg/serverutils"
	"spa-booking-be/internal/service"

	"github.com/gofiber/fiber/v2"
)

type IPaymentController interface {
	RegisterRoutes(r fiber.Router)
	Reconcile(ctx *fiber.Ctx) error
	Return(ctx *fiber.Ctx) error
	Webhook(ctx *fiber.Ctx) error
}

type paymentController struct {
	service service.IPaymentService
	logger  logger.ILogger
}

func NewPaymentController(service service.IPaymentService, logger logger.ILogger) IPaymentController {
	return &paymentController{service: service, logger: logger}
}

// RegisterRoutes mounts public routes. The gateway and the customer's browser have no token.
func (c *paymentController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/payment")
	h.Post("/reconcile", c.Reconcile)
	h.Get("/return", c.Return)
	h.Post("/webhook", c.Webhook)
}

func (c *paymentController) Reconcile(ctx *fiber.Ctx) error {
	var req dto.ReconcileRequest
	if err := ctx.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}
	outcome, ok := service.ParseOutcome(req.Status)
	if !ok {
		return exceptions.NewValidation("unknown status %q", req.Status)
	}

	res, err := c.service.Reconcile(ctx.UserContext(), req.OrderCode, outcome)
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Payment reconciled", res))
}

// Return handles the gateway redirect (?orderCode=X[&status=CANCELLED]).
func (c *paymentController) Return(ctx *fiber.Ctx) error {
	orderCode := ctx.Query("orderCode")
	if orderCode == "" {
		return exceptions.NewValidation("orderCode is required")
	}

	outcome := service.OutcomeSuccess
	if status := ctx.Query("status"); status != "" {
		parsed, ok := service.ParseOutcome(status)
		if !ok {
			return exceptions.NewValidation("unknown status %q", status)
		}
		outcome = parsed
	}

	res, err := c.service.Reconcile(ctx.UserContext(), orderCode, outcome)
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Payment reconciled", res))
}

func (c *paymentController) Webhook(ctx *fiber.Ctx) error {
	var req dto.MidtransWebhookRequest
	if err := ctx.BodyParser(&req); err != nil {
		c.logger.Warn("PAYMENT", "Webhook body parsing failed", map[string]interface{}{"error": err.Error()})
		return ctx.SendStatus(fiber.StatusBadRequest)
	}

	c.logger.Info("PAYMENT", "Webhook received", map[string]interface{}{
		"orderCode": req.OrderId,
		"status":    req.TransactionStatus,
	})

	// Non-2xx makes the gateway retry the notification.
	if _, err := c.service.HandleNotification(ctx.UserContext(), &req); err != nil {
		return err
	}
	return ctx.SendStatus(fiber.StatusOK)
}
