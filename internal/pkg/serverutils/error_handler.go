package serverutils

import (
	"errors"

	"spa-booking-be/internal/pkg/exceptions"
	"spa-booking-be/internal/pkg/logger"

	"github.com/gofiber/fiber/v2"
)

// ErrorHandlerMiddleware renders errors returned by downstream handlers.
func ErrorHandlerMiddleware(log logger.ILogger) fiber.Handler {
	return func(ctx *fiber.Ctx) error {
		err := ctx.Next()
		if err == nil {
			return nil
		}
		return RenderError(ctx, log, err)
	}
}

func RenderError(ctx *fiber.Ctx, log logger.ILogger, err error) error {
	if he, ok := exceptions.AsHTTP(err); ok {
		body := ErrorResponse(he.StatusCode(), he.ClientMessage())
		body.Error = he.Code()
		return ctx.Status(he.StatusCode()).JSON(body)
	}

	var fe *fiber.Error
	if errors.As(err, &fe) {
		return ctx.Status(fe.Code).JSON(ErrorResponse(fe.Code, fe.Message))
	}

	if log != nil {
		log.Error("HTTP", "Unhandled error", map[string]interface{}{
			"method": ctx.Method(),
			"path":   ctx.Path(),
			"error":  err.Error(),
		})
	}
	return ctx.Status(fiber.StatusInternalServerError).JSON(ErrorResponse(fiber.StatusInternalServerError, "Internal server error"))
}
