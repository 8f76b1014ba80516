package controller

import (
	"bytes"
	"fmt"
	"time"

	"spa-booking-be/internal/pkg/serverutils"
	"spa-booking-be/internal/service"

	"github.com/gofiber/fiber/v2"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

type IReportController interface {
	RegisterRoutes(r fiber.Router, auth fiber.Handler)
	CashierRevenue(ctx *fiber.Ctx) error
	CashierRevenueXLSX(ctx *fiber.Ctx) error
}

type reportController struct {
	service service.IRevenueService
}

func NewReportController(service service.IRevenueService) IReportController {
	return &reportController{service: service}
}

func (c *reportController) RegisterRoutes(r fiber.Router, auth fiber.Handler) {
	h := r.Group("/reports", auth)
	h.Get("/cashier-revenue", c.CashierRevenue)
	h.Get("/cashier-revenue.xlsx", c.CashierRevenueXLSX)
}

func (c *reportController) CashierRevenue(ctx *fiber.Ctx) error {
	from, to, err := queryRange(ctx)
	if err != nil {
		return err
	}

	res, err := c.service.CashierRevenue(ctx.UserContext(), from, to)
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Cashier revenue", res))
}

func (c *reportController) CashierRevenueXLSX(ctx *fiber.Ctx) error {
	from, to, err := queryRange(ctx)
	if err != nil {
		return err
	}

	var buf bytes.Buffer
	if err := c.service.ExportCashierRevenue(ctx.UserContext(), from, to, &buf); err != nil {
		return err
	}

	filename := fmt.Sprintf("cashier-revenue-%s.xlsx", time.Now().UTC().Format("20060102"))
	ctx.Set(fiber.HeaderContentType, xlsxContentType)
	ctx.Set(fiber.HeaderContentDisposition, fmt.Sprintf(`attachment; filename="%s"`, filename))
	return ctx.Send(buf.Bytes())
}
