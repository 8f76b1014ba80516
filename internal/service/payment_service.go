package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"spa-booking-be/internal/dto"
	"spa-booking-be/internal/entity"
	"spa-booking-be/internal/pkg/exceptions"
	"spa-booking-be/internal/repository/specification"
	"spa-booking-be/internal/repository/unitofwork"
	"spa-booking-be/pkg/events"
	"spa-booking-be/pkg/gateway"
	"spa-booking-be/pkg/lifecycle"
	"spa-booking-be/pkg/locker"
	"spa-booking-be/pkg/money"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

type ReconcileOutcome string

const (
	OutcomeSuccess   ReconcileOutcome = "success"
	OutcomeCancelled ReconcileOutcome = "cancelled"
)

// ParseOutcome accepts the redirect spellings the checkout page may forward.
func ParseOutcome(s string) (ReconcileOutcome, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "success", "paid":
		return OutcomeSuccess, true
	case "cancelled", "canceled":
		return OutcomeCancelled, true
	}
	return "", false
}

type IPaymentService interface {
	Reconcile(ctx context.Context, orderCode string, outcome ReconcileOutcome) (*dto.ReconcileResponse, error)
	HandleNotification(ctx context.Context, req *dto.MidtransWebhookRequest) (*dto.ReconcileResponse, error)
}

type paymentService struct {
	*Deps
}

func NewPaymentService(deps *Deps) IPaymentService {
	return &paymentService{Deps: deps}
}

func (s *paymentService) Reconcile(ctx context.Context, orderCode string, outcome ReconcileOutcome) (*dto.ReconcileResponse, error) {
	ctx, span := tracer.Start(ctx, "PaymentService.Reconcile")
	defer span.End()
	span.SetAttributes(
		attribute.String("payment.order_code", orderCode),
		attribute.String("payment.outcome", string(outcome)),
	)

	orderCode = strings.TrimSpace(orderCode)
	if orderCode == "" {
		return nil, exceptions.NewValidation("orderCode is required")
	}

	if s.Locker != nil {
		acquired, release, err := locker.Acquire(ctx, s.Locker, "payment:order:"+orderCode, s.Payment.LockTTL, s.Payment.LockWait)
		if err != nil {
			s.Logger.Warn("PAYMENT", "Order lock unavailable, relying on row lock", map[string]interface{}{
				"orderCode": orderCode,
				"error":     err.Error(),
			})
		} else if !acquired {
			s.Logger.Debug("PAYMENT", "Order lock busy, continuing under row lock", map[string]interface{}{"orderCode": orderCode})
		}
		defer release()
	}

	res, err := s.reconcile(ctx, orderCode, outcome)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		s.logFailure("PAYMENT", "Reconciliation failed", err, map[string]interface{}{
			"orderCode": orderCode,
			"outcome":   string(outcome),
		})
		return nil, err
	}
	span.SetAttributes(
		attribute.Bool("payment.applied", res.Applied),
		attribute.Bool("payment.duplicate", res.DuplicateCallback),
	)
	return res, nil
}

func (s *paymentService) reconcile(ctx context.Context, orderCode string, outcome ReconcileOutcome) (*dto.ReconcileResponse, error) {
	uow := s.UowFactory.NewUnitOfWork(ctx)
	attempt, err := uow.PaymentAttemptRepository().FindOne(ctx, specification.ByOrderCode{OrderCode: orderCode})
	if err != nil {
		return nil, fmt.Errorf("load payment attempt: %w", err)
	}
	if attempt == nil {
		s.Metrics.Reconciliation("unknown", "order_not_found")
		return nil, &exceptions.OrderNotFoundError{OrderCode: orderCode}
	}

	if attempt.Status == entity.PaymentAttemptPaid {
		s.Metrics.Reconciliation(string(attempt.Purpose), "duplicate")
		return s.duplicate(ctx, uow, attempt), nil
	}

	switch outcome {
	case OutcomeCancelled:
		return s.failAttempt(ctx, orderCode, nil)
	case OutcomeSuccess:
	default:
		return nil, exceptions.NewValidation("unknown reconcile outcome %q", outcome)
	}

	started := time.Now()
	verification, err := s.Gateway.VerifyPayment(ctx, orderCode)
	s.Metrics.ObserveGateway("verify_payment", time.Since(started).Seconds())
	if err != nil {
		return nil, &exceptions.GatewayError{Op: "verify_payment", Err: err}
	}

	switch verification.State {
	case gateway.StatePaid:
		return s.applyPayment(ctx, orderCode, verification)
	case gateway.StateFailed:
		return s.failAttempt(ctx, orderCode, verification.Raw)
	default:
		s.Metrics.Reconciliation(string(attempt.Purpose), "pending")
		s.Logger.Info("PAYMENT", "Gateway still reports payment pending", map[string]interface{}{
			"orderCode": orderCode,
			"rawStatus": verification.RawStatus,
		})
		return &dto.ReconcileResponse{
			OrderCode:     orderCode,
			AppointmentId: &attempt.AppointmentId,
			Purpose:       string(attempt.Purpose),
			AttemptStatus: string(attempt.Status),
		}, nil
	}
}

// applyPayment settles a verified payment: one transaction for the status change,
// the paid invoice and the attempt.
func (s *paymentService) applyPayment(ctx context.Context, orderCode string, verification *gateway.Verification) (*dto.ReconcileResponse, error) {
	uow := s.UowFactory.NewUnitOfWork(ctx)
	if err := uow.Begin(ctx); err != nil {
		return nil, err
	}
	defer uow.Rollback()

	attempt, err := uow.PaymentAttemptRepository().FindByOrderCodeForUpdate(ctx, orderCode)
	if err != nil {
		return nil, fmt.Errorf("lock payment attempt: %w", err)
	}
	if attempt == nil {
		return nil, &exceptions.OrderNotFoundError{OrderCode: orderCode}
	}
	if attempt.Status == entity.PaymentAttemptPaid {
		s.Metrics.Reconciliation(string(attempt.Purpose), "duplicate")
		return s.duplicate(ctx, uow, attempt), nil
	}

	appt, err := lockAppointment(ctx, uow, attempt.AppointmentId)
	if err != nil {
		return nil, err
	}

	op := lifecycle.OpReconcileDeposit
	invoiceType := entity.InvoiceTypeDeposit
	if attempt.Purpose == entity.PaymentPurposeFinal {
		op = lifecycle.OpReconcileFinal
		invoiceType = entity.InvoiceTypeFinal
	}

	// the gateway holds the money either way, so it is recorded even when the
	// appointment has moved on (cancelled, or deposited through another link)
	if !lifecycle.Allowed(op, appt.Status) {
		return s.applyLatePayment(ctx, uow, attempt, appt, invoiceType, verification)
	}
	if attempt.Purpose == entity.PaymentPurposeDeposit {
		appt.DepositAmount = attempt.Amount
	}

	tr, err := s.transition(ctx, uow, appt, op, "", entity.SystemActor(entity.RoleGateway))
	if err != nil {
		return nil, err
	}

	invoice, err := entity.NewPaidInvoice(appt, invoiceType, attempt.Amount, money.Zero, entity.PaymentMethodQR, attempt.CashierId, &orderCode, tr.At)
	if err != nil {
		return nil, err
	}
	if err := uow.InvoiceRepository().Create(ctx, invoice); err != nil {
		return nil, fmt.Errorf("create %s invoice: %w", invoiceType, err)
	}

	attempt.Status = entity.PaymentAttemptPaid
	attempt.GatewayPayload = verification.Raw
	attempt.UpdatedAt = tr.At
	if err := uow.PaymentAttemptRepository().Update(ctx, attempt); err != nil {
		return nil, fmt.Errorf("mark attempt paid: %w", err)
	}

	if err := uow.Commit(); err != nil {
		return nil, err
	}

	s.committed(appt, tr, entity.SystemActor(entity.RoleGateway))
	s.Metrics.Reconciliation(string(attempt.Purpose), "applied")
	s.Logger.Info("PAYMENT", "Payment reconciled", map[string]interface{}{
		"orderCode":     orderCode,
		"appointmentId": appt.Id.String(),
		"purpose":       string(attempt.Purpose),
		"amount":        attempt.Amount.String(),
		"invoiceId":     invoice.Id.String(),
	})

	data := eventData(appt)
	data["order_code"] = orderCode
	data["amount"] = attempt.Amount.String()
	s.notify(ctx, statusEvent(tr.To), data)

	return &dto.ReconcileResponse{
		OrderCode:         orderCode,
		AppointmentId:     &appt.Id,
		Purpose:           string(attempt.Purpose),
		AttemptStatus:     string(attempt.Status),
		AppointmentStatus: string(appt.Status),
		Applied:           true,
	}, nil
}

// applyLatePayment records a verified payment without a status change: the paid
// invoice, the attempt, and for a cancelled or rejected appointment a refund obligation
// covering it. Runs on applyPayment's transaction.
func (s *paymentService) applyLatePayment(ctx context.Context, uow unitofwork.UnitOfWork, attempt *entity.PaymentAttempt, appt *entity.Appointment, invoiceType entity.InvoiceType, verification *gateway.Verification) (*dto.ReconcileResponse, error) {
	now := s.now()
	orderCode := attempt.OrderCode

	invoice, err := entity.NewPaidInvoice(appt, invoiceType, attempt.Amount, money.Zero, entity.PaymentMethodQR, attempt.CashierId, &orderCode, now)
	if err != nil {
		return nil, err
	}
	if err := uow.InvoiceRepository().Create(ctx, invoice); err != nil {
		return nil, fmt.Errorf("create %s invoice: %w", invoiceType, err)
	}

	attempt.Status = entity.PaymentAttemptPaid
	attempt.GatewayPayload = verification.Raw
	attempt.UpdatedAt = now
	if err := uow.PaymentAttemptRepository().Update(ctx, attempt); err != nil {
		return nil, fmt.Errorf("mark attempt paid: %w", err)
	}

	var obligation *entity.RefundRecord
	if appt.Status == entity.AppointmentStatusCancelled || appt.Status == entity.AppointmentStatusRejected {
		reason := "payment received after cancellation"
		if appt.CancelReason != nil && strings.TrimSpace(*appt.CancelReason) != "" {
			reason = *appt.CancelReason
		}
		if obligation, err = s.refundObligation(ctx, uow, appt, reason, now); err != nil {
			return nil, err
		}
	}

	if err := uow.Commit(); err != nil {
		return nil, err
	}

	s.Metrics.Reconciliation(string(attempt.Purpose), "late")
	details := map[string]interface{}{
		"orderCode":         orderCode,
		"appointmentId":     appt.Id.String(),
		"appointmentStatus": string(appt.Status),
		"purpose":           string(attempt.Purpose),
		"amount":            attempt.Amount.String(),
		"invoiceId":         invoice.Id.String(),
	}

	res := &dto.ReconcileResponse{
		OrderCode:         orderCode,
		AppointmentId:     &appt.Id,
		Purpose:           string(attempt.Purpose),
		AttemptStatus:     string(attempt.Status),
		AppointmentStatus: string(appt.Status),
		Applied:           true,
		LatePayment:       true,
	}

	data := eventData(appt)
	data["order_code"] = orderCode
	data["amount"] = attempt.Amount.String()

	switch {
	case obligation != nil && obligation.RefundStatus == entity.RefundStatusPending:
		due := obligation.RefundAmount
		res.RefundDue = &due
		details["refundDue"] = due.String()
		data["refund_due"] = due.String()
		s.Logger.Warn("PAYMENT", "Late payment recorded, refund owed", details)
	case obligation != nil:
		details["refundId"] = obligation.Id.String()
		s.Logger.Error("PAYMENT", "Late payment arrived after the refund was completed, refund it manually", details)
	default:
		s.Logger.Warn("PAYMENT", "Late payment recorded without a status change", details)
	}
	s.notify(ctx, events.PaymentReceivedLate, data)

	return res, nil
}

// failAttempt marks a pending attempt failed. The appointment is left alone.
func (s *paymentService) failAttempt(ctx context.Context, orderCode string, payload []byte) (*dto.ReconcileResponse, error) {
	uow := s.UowFactory.NewUnitOfWork(ctx)
	if err := uow.Begin(ctx); err != nil {
		return nil, err
	}
	defer uow.Rollback()

	attempt, err := uow.PaymentAttemptRepository().FindByOrderCodeForUpdate(ctx, orderCode)
	if err != nil {
		return nil, fmt.Errorf("lock payment attempt: %w", err)
	}
	if attempt == nil {
		return nil, &exceptions.OrderNotFoundError{OrderCode: orderCode}
	}
	if attempt.Status == entity.PaymentAttemptPaid {
		return s.duplicate(ctx, uow, attempt), nil
	}

	if attempt.Status == entity.PaymentAttemptPending {
		attempt.Status = entity.PaymentAttemptFailed
		attempt.GatewayPayload = payload
		attempt.UpdatedAt = s.now()
		if err := uow.PaymentAttemptRepository().Update(ctx, attempt); err != nil {
			return nil, fmt.Errorf("mark attempt failed: %w", err)
		}
	}

	if err := uow.Commit(); err != nil {
		return nil, err
	}

	s.Metrics.Reconciliation(string(attempt.Purpose), "failed")
	s.Logger.Info("PAYMENT", "Payment attempt closed without payment", map[string]interface{}{
		"orderCode":     orderCode,
		"appointmentId": attempt.AppointmentId.String(),
	})

	return &dto.ReconcileResponse{
		OrderCode:     orderCode,
		AppointmentId: &attempt.AppointmentId,
		Purpose:       string(attempt.Purpose),
		AttemptStatus: string(attempt.Status),
	}, nil
}

func (s *paymentService) duplicate(ctx context.Context, uow unitofwork.UnitOfWork, attempt *entity.PaymentAttempt) *dto.ReconcileResponse {
	res := &dto.ReconcileResponse{
		OrderCode:         attempt.OrderCode,
		AppointmentId:     &attempt.AppointmentId,
		Purpose:           string(attempt.Purpose),
		AttemptStatus:     string(attempt.Status),
		Applied:           true,
		DuplicateCallback: true,
	}
	if appt, err := uow.AppointmentRepository().FindOne(ctx, specification.ByID{ID: attempt.AppointmentId}); err == nil && appt != nil {
		res.AppointmentStatus = string(appt.Status)
	}

	s.Logger.Info("PAYMENT", "Duplicate payment callback ignored", map[string]interface{}{
		"orderCode":     attempt.OrderCode,
		"appointmentId": attempt.AppointmentId.String(),
	})
	return res
}

func (s *paymentService) HandleNotification(ctx context.Context, req *dto.MidtransWebhookRequest) (*dto.ReconcileResponse, error) {
	if !gateway.ValidSignature(req.OrderId, req.StatusCode, req.GrossAmount, s.Payment.ServerKey, req.SignatureKey) {
		s.Logger.Warn("PAYMENT", "Webhook signature mismatch", map[string]interface{}{
			"orderCode": req.OrderId,
		})
		return nil, exceptions.NewValidation("invalid signature")
	}

	var outcome ReconcileOutcome
	switch req.TransactionStatus {
	case "capture", "settlement":
		outcome = OutcomeSuccess
	case "deny", "cancel", "expire":
		outcome = OutcomeCancelled
	case "pending":
		return &dto.ReconcileResponse{OrderCode: req.OrderId, AttemptStatus: string(entity.PaymentAttemptPending)}, nil
	default:
		s.Logger.Warn("PAYMENT", "Webhook with unknown transaction status ignored", map[string]interface{}{
			"orderCode": req.OrderId,
			"status":    req.TransactionStatus,
		})
		return &dto.ReconcileResponse{OrderCode: req.OrderId}, nil
	}

	return s.Reconcile(ctx, req.OrderId, outcome)
}
