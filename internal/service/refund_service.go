package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"spa-booking-be/internal/dto"
	"spa-booking-be/internal/entity"
	"spa-booking-be/internal/mapper"
	"spa-booking-be/internal/pkg/exceptions"
	"spa-booking-be/internal/repository/specification"
	"spa-booking-be/pkg/events"
	"spa-booking-be/pkg/money"

	"github.com/google/uuid"
)

type IRefundService interface {
	IssueRefund(ctx context.Context, actor entity.Actor, req *dto.IssueRefundRequest) (*dto.RefundResponse, error)
	ListPending(ctx context.Context) ([]*dto.RefundResponse, error)
	ListRefunds(ctx context.Context, from, to time.Time) ([]*dto.RefundResponse, error)
}

type refundService struct {
	*Deps
}

func NewRefundService(deps *Deps) IRefundService {
	return &refundService{Deps: deps}
}

func (s *refundService) IssueRefund(ctx context.Context, actor entity.Actor, req *dto.IssueRefundRequest) (*dto.RefundResponse, error) {
	method, ok := entity.ParseRefundMethod(strings.ToLower(req.Method))
	if !ok {
		return nil, exceptions.NewValidation("unknown refund method %q", req.Method)
	}
	if !req.Amount.IsPositive() {
		return nil, exceptions.NewValidation("refund amount must be greater than zero")
	}
	if err := wholeAmounts(map[string]money.Amount{"amount": req.Amount}); err != nil {
		return nil, err
	}

	uow := s.UowFactory.NewUnitOfWork(ctx)
	if err := uow.Begin(ctx); err != nil {
		return nil, err
	}
	defer uow.Rollback()

	appt, err := lockAppointment(ctx, uow, req.AppointmentId)
	if err != nil {
		return nil, err
	}
	if appt.Status != entity.AppointmentStatusCancelled && appt.Status != entity.AppointmentStatusRejected {
		return nil, &exceptions.InvalidTransitionError{
			Op:      "refund",
			Current: string(appt.Status),
			Reason:  "only cancelled or rejected appointments can be refunded",
		}
	}

	invoices, err := uow.InvoiceRepository().FindAll(ctx, specification.ByAppointment{AppointmentID: appt.Id})
	if err != nil {
		return nil, err
	}
	collected := entity.AmountCollected(invoices)
	if req.Amount.GreaterThan(collected) {
		return nil, &exceptions.InsufficientCollectedAmountError{
			Requested: req.Amount.String(),
			Collected: collected.String(),
		}
	}

	record, err := uow.RefundRepository().FindOne(ctx, specification.ByAppointment{AppointmentID: appt.Id})
	if err != nil {
		return nil, err
	}
	if record != nil && record.RefundStatus == entity.RefundStatusCompleted {
		return nil, &exceptions.InvalidTransitionError{
			Op:      "refund",
			Current: string(appt.Status),
			Reason:  "refund already completed",
		}
	}

	now := s.now()
	reason := strings.TrimSpace(req.Reason)
	isNew := record == nil
	if isNew {
		record = &entity.RefundRecord{
			AppointmentId: appt.Id,
			CreatedAt:     now,
		}
	} else if reason == "" {
		reason = record.RefundReason
	}
	record.RefundAmount = req.Amount
	record.RefundMethod = method
	record.RefundStatus = entity.RefundStatusCompleted
	record.RefundReason = reason
	record.StaffId = actor.Id
	record.ProcessedAt = &now
	record.UpdatedAt = now

	if isNew {
		err = uow.RefundRepository().Create(ctx, record)
	} else {
		err = uow.RefundRepository().Update(ctx, record)
	}
	if err != nil {
		return nil, fmt.Errorf("save refund: %w", err)
	}

	var refundable []uuid.UUID
	for _, inv := range invoices {
		if inv.PaymentStatus.CanMoveTo(entity.PaymentStatusRefunded) {
			refundable = append(refundable, inv.Id)
		}
	}
	refunded, err := uow.InvoiceRepository().MarkRefunded(ctx, refundable)
	if err != nil {
		return nil, fmt.Errorf("mark invoices refunded: %w", err)
	}

	if err := uow.Commit(); err != nil {
		return nil, err
	}

	s.Metrics.Refund(string(method))
	details := map[string]interface{}{
		"refundId":         record.Id.String(),
		"appointmentId":    appt.Id.String(),
		"amount":           record.RefundAmount.String(),
		"collected":        collected.String(),
		"method":           string(method),
		"invoicesRefunded": refunded,
	}
	if actor.Id != nil {
		details["staffId"] = actor.Id.String()
	}
	s.Logger.Info("REFUND", "Refund issued", details)

	data := eventData(appt)
	data["refund_id"] = record.Id.String()
	data["amount"] = record.RefundAmount.String()
	data["method"] = string(method)
	s.notify(ctx, events.RefundIssued, data)

	return mapper.RefundToResponse(record), nil
}

// ListPending is the cashier worklist of refunds owed but not yet paid out.
func (s *refundService) ListPending(ctx context.Context) ([]*dto.RefundResponse, error) {
	uow := s.UowFactory.NewUnitOfWork(ctx)
	items, err := uow.RefundRepository().FindAll(ctx,
		specification.RefundStatusIs{Status: string(entity.RefundStatusPending)},
		specification.OrderBy{Field: "created_at"},
	)
	if err != nil {
		return nil, err
	}
	return mapper.RefundsToResponse(items), nil
}

func (s *refundService) ListRefunds(ctx context.Context, from, to time.Time) ([]*dto.RefundResponse, error) {
	if from.IsZero() && to.IsZero() {
		from, to = defaultReportRange(s.now(), 0)
	}
	if to.Before(from) {
		return nil, exceptions.NewValidation("from must not be after to")
	}

	uow := s.UowFactory.NewUnitOfWork(ctx)
	items, err := uow.RefundRepository().FindAll(ctx,
		specification.CreatedBetween{From: from, To: to},
		specification.OrderBy{Field: "created_at", Desc: true},
	)
	if err != nil {
		return nil, err
	}
	return mapper.RefundsToResponse(items), nil
}
