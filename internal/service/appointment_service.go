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
	"spa-booking-be/internal/repository/unitofwork"
	"spa-booking-be/pkg/events"
	"spa-booking-be/pkg/gateway"
	"spa-booking-be/pkg/lifecycle"
	"spa-booking-be/pkg/money"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
)

type IAppointmentService interface {
	Create(ctx context.Context, actor entity.Actor, req *dto.CreateAppointmentRequest) (*dto.AppointmentResponse, error)
	Get(ctx context.Context, id uuid.UUID) (*dto.AppointmentResponse, error)
	History(ctx context.Context, id uuid.UUID) ([]*dto.AppointmentHistoryResponse, error)

	Confirm(ctx context.Context, actor entity.Actor, id uuid.UUID) (*dto.TransitionResponse, error)
	Reject(ctx context.Context, actor entity.Actor, id uuid.UUID, reason string) (*dto.TransitionResponse, error)
	Approve(ctx context.Context, actor entity.Actor, id uuid.UUID) (*dto.TransitionResponse, error)
	MarkCompleted(ctx context.Context, actor entity.Actor, id uuid.UUID) (*dto.TransitionResponse, error)
	Cancel(ctx context.Context, actor entity.Actor, id uuid.UUID, reason string) (*dto.TransitionResponse, error)
	RequestComplete(ctx context.Context, actor entity.Actor, id uuid.UUID, req *dto.RemindDoctorRequest) error

	CreateDepositLink(ctx context.Context, actor entity.Actor, id uuid.UUID, req *dto.DepositLinkRequest) (*dto.PaymentLinkResponse, error)
	Settle(ctx context.Context, actor entity.Actor, id uuid.UUID, method lifecycle.SettlementMethod) (*dto.SettlementResponse, error)
}

type appointmentService struct {
	*Deps
}

func NewAppointmentService(deps *Deps) IAppointmentService {
	return &appointmentService{Deps: deps}
}

func (s *appointmentService) Create(ctx context.Context, actor entity.Actor, req *dto.CreateAppointmentRequest) (*dto.AppointmentResponse, error) {
	if !req.EndTime.After(req.StartTime) {
		return nil, exceptions.NewValidation("endTime must be after startTime")
	}
	if len(req.Details) == 0 {
		return nil, exceptions.NewValidation("at least one service is required")
	}

	amounts := map[string]money.Amount{"discountAmount": req.DiscountAmount}
	if req.DepositAmount != nil {
		amounts["depositAmount"] = *req.DepositAmount
	}
	for i, d := range req.Details {
		amounts[fmt.Sprintf("details[%d].price", i)] = d.Price
	}
	if err := wholeAmounts(amounts); err != nil {
		return nil, err
	}

	lines := make([]money.Line, 0, len(req.Details))
	details := make([]entity.AppointmentDetail, 0, len(req.Details))
	for _, d := range req.Details {
		lines = append(lines, money.Line{Price: d.Price, Quantity: d.Quantity})
		details = append(details, entity.AppointmentDetail{
			Id:        uuid.New(),
			ServiceId: d.ServiceId,
			Quantity:  d.Quantity,
			Price:     d.Price,
		})
	}

	gross, err := money.Gross(lines)
	if err != nil {
		return nil, exceptions.NewValidation("invalid service line: %v", err)
	}
	total, err := money.Net(gross, req.DiscountAmount)
	if err != nil {
		return nil, exceptions.NewValidation("invalid discount: %v", err)
	}

	deposit := money.Zero
	if req.DepositAmount != nil {
		deposit = *req.DepositAmount
	} else if deposit, err = money.DefaultDeposit(total, s.Payment.DepositRate); err != nil {
		return nil, exceptions.NewValidation("invalid deposit rate: %v", err)
	}
	if err := (money.Breakdown{Total: total, Deposit: deposit}).Validate(); err != nil {
		return nil, exceptions.NewValidation("invalid deposit: %v", err)
	}

	now := s.now()
	appt := &entity.Appointment{
		Id:              uuid.New(),
		CustomerId:      req.CustomerId,
		DoctorId:        req.DoctorId,
		StaffId:         req.StaffId,
		VoucherId:       req.VoucherId,
		Status:          entity.AppointmentStatusPending,
		AppointmentDate: req.AppointmentDate,
		StartTime:       req.StartTime,
		EndTime:         req.EndTime,
		Note:            strings.TrimSpace(req.Note),
		DiscountAmount:  req.DiscountAmount,
		TotalAmount:     total,
		DepositAmount:   deposit,
		Details:         details,
		CreatedAt:       now,
		UpdatedAt:       now,
	}

	uow := s.UowFactory.NewUnitOfWork(ctx)
	if err := uow.Begin(ctx); err != nil {
		return nil, err
	}
	defer uow.Rollback()

	if err := uow.AppointmentRepository().Create(ctx, appt); err != nil {
		return nil, fmt.Errorf("create appointment: %w", err)
	}
	err = uow.AppointmentRepository().AppendHistory(ctx, &entity.AppointmentHistory{
		AppointmentId: appt.Id,
		NewStatus:     entity.AppointmentStatusPending,
		ActorId:       actor.Id,
		ActorRole:     actor.Role,
		ChangedAt:     now,
	})
	if err != nil {
		return nil, fmt.Errorf("write history: %w", err)
	}
	if err := uow.Commit(); err != nil {
		return nil, err
	}

	s.Logger.Info("APPOINTMENT", "Appointment created", map[string]interface{}{
		"appointmentId": appt.Id.String(),
		"customerId":    appt.CustomerId.String(),
		"total":         total.String(),
		"deposit":       deposit.String(),
	})
	s.notify(ctx, events.AppointmentCreated, eventData(appt))

	return mapper.AppointmentToResponse(appt, nil), nil
}

func (s *appointmentService) Get(ctx context.Context, id uuid.UUID) (*dto.AppointmentResponse, error) {
	uow := s.UowFactory.NewUnitOfWork(ctx)

	appt, err := uow.AppointmentRepository().FindOne(ctx, specification.ByID{ID: id})
	if err != nil {
		return nil, err
	}
	if appt == nil {
		return nil, exceptions.NewNotFound("appointment", id)
	}

	invoices, err := uow.InvoiceRepository().FindAll(ctx,
		specification.ByAppointment{AppointmentID: id},
		specification.OrderBy{Field: "created_at"},
	)
	if err != nil {
		return nil, err
	}
	return mapper.AppointmentToResponse(appt, invoices), nil
}

func (s *appointmentService) History(ctx context.Context, id uuid.UUID) ([]*dto.AppointmentHistoryResponse, error) {
	uow := s.UowFactory.NewUnitOfWork(ctx)

	appt, err := uow.AppointmentRepository().FindOne(ctx, specification.ByID{ID: id})
	if err != nil {
		return nil, err
	}
	if appt == nil {
		return nil, exceptions.NewNotFound("appointment", id)
	}

	items, err := uow.AppointmentRepository().FindHistory(ctx, id)
	if err != nil {
		return nil, err
	}
	return mapper.HistoryToResponses(items), nil
}

func (s *appointmentService) Confirm(ctx context.Context, actor entity.Actor, id uuid.UUID) (*dto.TransitionResponse, error) {
	return s.run(ctx, actor, id, lifecycle.OpConfirm, "")
}

func (s *appointmentService) Reject(ctx context.Context, actor entity.Actor, id uuid.UUID, reason string) (*dto.TransitionResponse, error) {
	return s.run(ctx, actor, id, lifecycle.OpReject, reason)
}

func (s *appointmentService) Approve(ctx context.Context, actor entity.Actor, id uuid.UUID) (*dto.TransitionResponse, error) {
	return s.run(ctx, actor, id, lifecycle.OpApprove, "")
}

func (s *appointmentService) MarkCompleted(ctx context.Context, actor entity.Actor, id uuid.UUID) (*dto.TransitionResponse, error) {
	return s.run(ctx, actor, id, lifecycle.OpMarkCompleted, "")
}

func (s *appointmentService) Cancel(ctx context.Context, actor entity.Actor, id uuid.UUID, reason string) (*dto.TransitionResponse, error) {
	if strings.TrimSpace(reason) == "" {
		return nil, exceptions.NewValidation("a cancellation reason is required")
	}
	return s.run(ctx, actor, id, lifecycle.OpCancel, reason)
}

// run executes a single status transition in its own transaction.
func (s *appointmentService) run(ctx context.Context, actor entity.Actor, id uuid.UUID, op lifecycle.Operation, reason string) (*dto.TransitionResponse, error) {
	uow := s.UowFactory.NewUnitOfWork(ctx)
	if err := uow.Begin(ctx); err != nil {
		return nil, err
	}
	defer uow.Rollback()

	appt, err := lockAppointment(ctx, uow, id)
	if err != nil {
		return nil, err
	}

	var (
		tr     lifecycle.Transition
		refund *entity.RefundRecord
	)
	if op == lifecycle.OpCancel {
		tr, refund, err = s.cancelAppointment(ctx, uow, appt, reason, actor)
	} else {
		tr, err = s.transition(ctx, uow, appt, op, reason, actor)
	}
	if err != nil {
		s.logFailure("APPOINTMENT", "Transition refused", err, map[string]interface{}{
			"appointmentId": id.String(),
			"op":            string(op),
		})
		return nil, err
	}

	if err := uow.Commit(); err != nil {
		return nil, err
	}

	s.committed(appt, tr, actor)
	data := eventData(appt)
	if refund != nil {
		data["refund_due"] = refund.RefundAmount.String()
	}
	s.notify(ctx, statusEvent(tr.To), data)

	return &dto.TransitionResponse{AppointmentId: appt.Id, From: string(tr.From), To: string(tr.To), At: tr.At}, nil
}

// cancelAppointment cancels on the caller's transaction. Open checkout links are
// closed and, if money was collected, the pending refund obligation is written.
func (d *Deps) cancelAppointment(ctx context.Context, uow unitofwork.UnitOfWork, appt *entity.Appointment, reason string, actor entity.Actor) (lifecycle.Transition, *entity.RefundRecord, error) {
	tr, err := d.transition(ctx, uow, appt, lifecycle.OpCancel, reason, actor)
	if err != nil {
		return tr, nil, err
	}

	if _, err := uow.PaymentAttemptRepository().FailPending(ctx, appt.Id, tr.At); err != nil {
		return tr, nil, fmt.Errorf("close open payment attempts: %w", err)
	}

	obligation, err := d.refundObligation(ctx, uow, appt, reason, tr.At)
	if err != nil {
		return tr, nil, err
	}
	return tr, obligation, nil
}

// refundObligation makes the pending refund cover everything collected and not yet
// refunded. A completed refund is returned unchanged.
func (d *Deps) refundObligation(ctx context.Context, uow unitofwork.UnitOfWork, appt *entity.Appointment, reason string, at time.Time) (*entity.RefundRecord, error) {
	invoices, err := uow.InvoiceRepository().FindAll(ctx, specification.ByAppointment{AppointmentID: appt.Id})
	if err != nil {
		return nil, err
	}
	collected := entity.AmountCollected(invoices)
	if !collected.IsPositive() {
		return nil, nil
	}

	existing, err := uow.RefundRepository().FindOne(ctx, specification.ByAppointment{AppointmentID: appt.Id})
	if err != nil {
		return nil, err
	}
	if existing != nil {
		if existing.RefundStatus != entity.RefundStatusPending || existing.RefundAmount.Equal(collected) {
			return existing, nil
		}
		existing.RefundAmount = collected
		existing.UpdatedAt = at
		if err := uow.RefundRepository().Update(ctx, existing); err != nil {
			return nil, fmt.Errorf("update refund obligation: %w", err)
		}
		return existing, nil
	}

	obligation := &entity.RefundRecord{
		AppointmentId: appt.Id,
		RefundAmount:  collected,
		RefundStatus:  entity.RefundStatusPending,
		RefundReason:  strings.TrimSpace(reason),
		CreatedAt:     at,
		UpdatedAt:     at,
	}
	if err := uow.RefundRepository().Create(ctx, obligation); err != nil {
		return nil, fmt.Errorf("record refund obligation: %w", err)
	}
	return obligation, nil
}

func (s *appointmentService) RequestComplete(ctx context.Context, actor entity.Actor, id uuid.UUID, req *dto.RemindDoctorRequest) error {
	uow := s.UowFactory.NewUnitOfWork(ctx)

	appt, err := uow.AppointmentRepository().FindOne(ctx, specification.ByID{ID: id})
	if err != nil {
		return err
	}
	if appt == nil {
		return exceptions.NewNotFound("appointment", id)
	}
	if err := lifecycle.Require(lifecycle.OpRequestComplete, appt); err != nil {
		return err
	}
	if appt.DoctorId == nil {
		return &exceptions.InvalidTransitionError{
			Op:      string(lifecycle.OpRequestComplete),
			Current: string(appt.Status),
			Reason:  "no doctor assigned",
		}
	}

	data := eventData(appt)
	data["end_time"] = appt.EndTime.Format(time.RFC3339)
	if req != nil {
		if req.DoctorEmail != "" {
			data["doctor_email"] = req.DoctorEmail
		}
		if req.Message != "" {
			data["message"] = req.Message
		}
	}
	if actor.Id != nil {
		data["requested_by"] = actor.Id.String()
	}
	s.notify(ctx, events.DoctorReminder, data)

	s.Logger.Info("APPOINTMENT", "Doctor reminded to complete appointment", map[string]interface{}{
		"appointmentId": id.String(),
		"doctorId":      appt.DoctorId.String(),
	})
	return nil
}

func (s *appointmentService) CreateDepositLink(ctx context.Context, actor entity.Actor, id uuid.UUID, req *dto.DepositLinkRequest) (*dto.PaymentLinkResponse, error) {
	ctx, span := tracer.Start(ctx, "AppointmentService.CreateDepositLink")
	defer span.End()
	span.SetAttributes(attribute.String("appointment.id", id.String()))

	uow := s.UowFactory.NewUnitOfWork(ctx)
	appt, err := uow.AppointmentRepository().FindOne(ctx, specification.ByID{ID: id})
	if err != nil {
		return nil, err
	}
	if appt == nil {
		return nil, exceptions.NewNotFound("appointment", id)
	}
	if err := lifecycle.Require(lifecycle.OpCreateDepositLink, appt); err != nil {
		return nil, err
	}

	amount := appt.DepositAmount
	if req != nil && req.Amount != nil {
		amount = *req.Amount
		if err := wholeAmounts(map[string]money.Amount{"amount": amount}); err != nil {
			return nil, err
		}
	}
	if amount.IsZero() {
		if amount, err = money.DefaultDeposit(appt.TotalAmount, s.Payment.DepositRate); err != nil {
			return nil, exceptions.NewValidation("invalid deposit rate: %v", err)
		}
	}
	if err := (money.Breakdown{Total: appt.TotalAmount, Deposit: amount}).Validate(); err != nil {
		return nil, exceptions.NewValidation("invalid deposit: %v", err)
	}
	if !amount.IsPositive() {
		return nil, exceptions.NewValidation("deposit must be greater than zero")
	}

	return s.openPaymentLink(ctx, actor, appt, entity.PaymentPurposeDeposit, amount, lifecycle.OpCreateDepositLink, nil)
}

func (s *appointmentService) Settle(ctx context.Context, actor entity.Actor, id uuid.UUID, method lifecycle.SettlementMethod) (*dto.SettlementResponse, error) {
	ctx, span := tracer.Start(ctx, "AppointmentService.Settle")
	defer span.End()
	span.SetAttributes(attribute.String("appointment.id", id.String()))

	switch method.(type) {
	case lifecycle.Cash:
		span.SetAttributes(attribute.String("settlement.method", "cash"))
		return s.settleCash(ctx, actor, id)
	case lifecycle.GatewayQR:
		span.SetAttributes(attribute.String("settlement.method", "qr"))
		return s.settleQR(ctx, actor, id)
	default:
		return nil, exceptions.NewValidation("unknown settlement method")
	}
}

func (s *appointmentService) settleCash(ctx context.Context, actor entity.Actor, id uuid.UUID) (*dto.SettlementResponse, error) {
	uow := s.UowFactory.NewUnitOfWork(ctx)
	if err := uow.Begin(ctx); err != nil {
		return nil, err
	}
	defer uow.Rollback()

	appt, err := lockAppointment(ctx, uow, id)
	if err != nil {
		return nil, err
	}

	invoices, err := uow.InvoiceRepository().FindAll(ctx, specification.ByAppointment{AppointmentID: id})
	if err != nil {
		return nil, err
	}
	balance := balanceDue(appt, invoices)

	tr, err := s.transition(ctx, uow, appt, lifecycle.OpSettleCash, "", actor)
	if err != nil {
		s.logFailure("APPOINTMENT", "Cash settlement refused", err, map[string]interface{}{"appointmentId": id.String()})
		return nil, err
	}

	var invoice *entity.Invoice
	if balance.IsPositive() {
		invoice, err = entity.NewPaidInvoice(appt, entity.InvoiceTypeFinal, balance, money.Zero, entity.PaymentMethodCash, actor.Id, nil, tr.At)
		if err != nil {
			return nil, err
		}
		if err := uow.InvoiceRepository().Create(ctx, invoice); err != nil {
			return nil, fmt.Errorf("create final invoice: %w", err)
		}
	}

	if err := uow.Commit(); err != nil {
		return nil, err
	}

	s.committed(appt, tr, actor)
	data := eventData(appt)
	data["amount"] = balance.String()
	data["method"] = string(entity.PaymentMethodCash)
	s.notify(ctx, events.AppointmentPaid, data)

	return &dto.SettlementResponse{
		Method:  lifecycle.Cash{}.Name(),
		Status:  string(appt.Status),
		Invoice: mapper.InvoiceToResponse(invoice),
	}, nil
}

func (s *appointmentService) settleQR(ctx context.Context, actor entity.Actor, id uuid.UUID) (*dto.SettlementResponse, error) {
	uow := s.UowFactory.NewUnitOfWork(ctx)
	appt, err := uow.AppointmentRepository().FindOne(ctx, specification.ByID{ID: id})
	if err != nil {
		return nil, err
	}
	if appt == nil {
		return nil, exceptions.NewNotFound("appointment", id)
	}
	if err := lifecycle.Require(lifecycle.OpSettleQR, appt); err != nil {
		return nil, err
	}

	invoices, err := uow.InvoiceRepository().FindAll(ctx, specification.ByAppointment{AppointmentID: id})
	if err != nil {
		return nil, err
	}
	balance := balanceDue(appt, invoices)
	if !balance.IsPositive() {
		return nil, exceptions.NewValidation("nothing left to collect, settle with cash to close the appointment")
	}

	link, err := s.openPaymentLink(ctx, actor, appt, entity.PaymentPurposeFinal, balance, lifecycle.OpSettleQR, actor.Id)
	if err != nil {
		return nil, err
	}
	return &dto.SettlementResponse{
		Method:      lifecycle.GatewayQR{OrderCode: link.OrderCode}.Name(),
		Status:      string(appt.Status),
		PaymentLink: link,
	}, nil
}

// openPaymentLink calls the gateway first, then records the attempt and the order
// code on the appointment after re-checking the precondition under a row lock.
func (s *appointmentService) openPaymentLink(ctx context.Context, actor entity.Actor, appt *entity.Appointment, purpose entity.PaymentPurpose, amount money.Amount, guard lifecycle.Operation, cashierId *uuid.UUID) (*dto.PaymentLinkResponse, error) {
	prefix := "DEP"
	description := "Spa booking deposit"
	if purpose == entity.PaymentPurposeFinal {
		prefix = "FIN"
		description = "Spa booking balance"
	}

	now := s.now()
	orderCode := gateway.NewOrderCode(prefix, now)
	returnURL, cancelURL := gateway.ReturnURLs(s.Payment.ReturnURL, orderCode)

	started := time.Now()
	link, err := s.Gateway.CreateCheckoutLink(ctx, gateway.CheckoutRequest{
		OrderCode:    orderCode,
		Amount:       amount,
		Description:  description,
		CustomerName: appt.CustomerId.String(),
		ReturnURL:    returnURL,
		CancelURL:    cancelURL,
	})
	s.Metrics.ObserveGateway("create_checkout_link", time.Since(started).Seconds())
	if err != nil {
		gwErr := &exceptions.GatewayError{Op: "create_checkout_link", Err: err}
		s.logFailure("PAYMENT", "Gateway refused checkout link", gwErr, map[string]interface{}{
			"appointmentId": appt.Id.String(),
			"orderCode":     orderCode,
		})
		return nil, gwErr
	}

	uow := s.UowFactory.NewUnitOfWork(ctx)
	if err := uow.Begin(ctx); err != nil {
		return nil, err
	}
	defer uow.Rollback()

	locked, err := lockAppointment(ctx, uow, appt.Id)
	if err != nil {
		return nil, err
	}
	if err := lifecycle.Require(guard, locked); err != nil {
		return nil, err
	}

	// one open link per purpose; an older link that still gets paid is recorded late
	superseded, err := uow.PaymentAttemptRepository().FailPending(ctx, locked.Id, now, purpose)
	if err != nil {
		return nil, fmt.Errorf("supersede open payment attempts: %w", err)
	}

	if purpose == entity.PaymentPurposeDeposit {
		locked.DepositAmount = amount
	}
	locked.OrderCode = &orderCode
	locked.UpdatedAt = now
	if err := uow.AppointmentRepository().SaveIfStatus(ctx, locked, locked.Status); err != nil {
		return nil, err
	}

	attempt := &entity.PaymentAttempt{
		OrderCode:     orderCode,
		AppointmentId: locked.Id,
		Purpose:       purpose,
		Amount:        amount,
		Status:        entity.PaymentAttemptPending,
		CashierId:     cashierId,
		CheckoutUrl:   link.CheckoutURL,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if err := uow.PaymentAttemptRepository().Create(ctx, attempt); err != nil {
		return nil, fmt.Errorf("record payment attempt: %w", err)
	}

	if err := uow.Commit(); err != nil {
		return nil, err
	}

	s.Logger.Info("PAYMENT", "Checkout link created", map[string]interface{}{
		"appointmentId": locked.Id.String(),
		"orderCode":     orderCode,
		"purpose":       string(purpose),
		"amount":        amount.String(),
		"superseded":    superseded,
	})
	data := eventData(locked)
	data["order_code"] = orderCode
	data["purpose"] = string(purpose)
	data["checkout_url"] = link.CheckoutURL
	s.notify(ctx, events.PaymentLinkCreated, data)

	return &dto.PaymentLinkResponse{
		AppointmentId: locked.Id,
		OrderCode:     orderCode,
		CheckoutUrl:   link.CheckoutURL,
		Amount:        amount,
		Purpose:       string(purpose),
	}, nil
}

// balanceDue is what is still owed on the appointment, never negative.
func balanceDue(appt *entity.Appointment, invoices []*entity.Invoice) money.Amount {
	balance := appt.TotalAmount.Sub(entity.AmountCollected(invoices))
	if balance.IsNegative() {
		return money.Zero
	}
	return balance
}

// ParseSettlement maps the settle request to a settlement method.
func ParseSettlement(req *dto.SettleRequest) (lifecycle.SettlementMethod, error) {
	m, ok := lifecycle.ParseSettlement(strings.ToLower(req.Method))
	if !ok {
		return nil, exceptions.NewValidation("unknown settlement method %q", req.Method)
	}
	return m, nil
}
