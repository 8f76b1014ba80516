package service

import (
	"context"
	"io"
	"time"

	"spa-booking-be/internal/dto"
	"spa-booking-be/internal/entity"
	"spa-booking-be/internal/mapper"
	"spa-booking-be/internal/pkg/exceptions"
	"spa-booking-be/internal/repository/specification"
	"spa-booking-be/pkg/report"
	"spa-booking-be/pkg/revenue"
)

const defaultRangeDays = 30

type IRevenueService interface {
	CashierRevenue(ctx context.Context, from, to time.Time) (*dto.CashierRevenueResponse, error)
	ExportCashierRevenue(ctx context.Context, from, to time.Time, out io.Writer) error
}

type revenueService struct {
	*Deps
	rangeDays int
}

func NewRevenueService(deps *Deps, rangeDays int) IRevenueService {
	return &revenueService{Deps: deps, rangeDays: rangeDays}
}

func (s *revenueService) CashierRevenue(ctx context.Context, from, to time.Time) (*dto.CashierRevenueResponse, error) {
	r, err := s.build(ctx, from, to)
	if err != nil {
		return nil, err
	}
	return mapper.RevenueToResponse(r), nil
}

func (s *revenueService) ExportCashierRevenue(ctx context.Context, from, to time.Time, out io.Writer) error {
	r, err := s.build(ctx, from, to)
	if err != nil {
		return err
	}
	return report.WriteCashierRevenue(out, r)
}

func (s *revenueService) build(ctx context.Context, from, to time.Time) (revenue.Report, error) {
	if from.IsZero() && to.IsZero() {
		from, to = defaultReportRange(s.now(), s.rangeDays)
	} else if to.IsZero() {
		to = s.now()
	}
	if to.Before(from) {
		return revenue.Report{}, exceptions.NewValidation("from must not be after to")
	}

	uow := s.UowFactory.NewUnitOfWork(ctx)
	invoices, err := uow.InvoiceRepository().FindAll(ctx,
		specification.PaymentStatusIs{PaymentStatus: string(entity.PaymentStatusPaid)},
		specification.CreatedBetween{From: from, To: to},
	)
	if err != nil {
		return revenue.Report{}, err
	}

	r := revenue.Aggregate(invoices, from, to)
	s.Logger.Debug("REPORT", "Cashier revenue aggregated", map[string]interface{}{
		"from":     from.Format(time.RFC3339),
		"to":       to.Format(time.RFC3339),
		"invoices": r.CountInvoices,
		"total":    r.TotalCollected.String(),
	})
	return r, nil
}

func defaultReportRange(now time.Time, days int) (time.Time, time.Time) {
	if days <= 0 {
		days = defaultRangeDays
	}
	return revenue.DefaultRange(now, days)
}
