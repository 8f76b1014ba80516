package service

import (
	"context"
	"errors"
	"sync"
	"testing"

	"spa-booking-be/internal/dto"
	"spa-booking-be/internal/entity"
	"spa-booking-be/internal/pkg/exceptions"
	"spa-booking-be/pkg/events"
	"spa-booking-be/pkg/gateway"
	"spa-booking-be/pkg/money"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseOutcome(t *testing.T) {
	tests := []struct {
		in   string
		want ReconcileOutcome
		ok   bool
	}{
		{"success", OutcomeSuccess, true},
		{"PAID", OutcomeSuccess, true},
		{"CANCELLED", OutcomeCancelled, true},
		{"canceled", OutcomeCancelled, true},
		{"refunded", "", false},
	}
	for _, tt := range tests {
		got, ok := ParseOutcome(tt.in)
		assert.Equal(t, tt.ok, ok, tt.in)
		assert.Equal(t, tt.want, got, tt.in)
	}
}

func TestReconcileDeposit(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	id := h.confirmed(t)

	link, err := h.appointments.CreateDepositLink(ctx, h.customer, id, nil)
	require.NoError(t, err)
	assert.Equal(t, entity.PaymentAttemptPending, h.attempt(t, link.OrderCode).Status)

	h.gw.SetState(link.OrderCode, gateway.StatePaid)
	res, err := h.payments.Reconcile(ctx, link.OrderCode, OutcomeSuccess)
	require.NoError(t, err)
	assert.True(t, res.Applied)
	assert.False(t, res.DuplicateCallback)
	assert.Equal(t, string(entity.AppointmentStatusDeposited), res.AppointmentStatus)
	assert.Equal(t, []string{link.OrderCode}, h.gw.Verified)

	attempt := h.attempt(t, link.OrderCode)
	assert.Equal(t, entity.PaymentAttemptPaid, attempt.Status)
	assert.NotEmpty(t, attempt.GatewayPayload)

	invoices := h.invoices(t, id)
	require.Len(t, invoices, 1)
	assert.Equal(t, entity.InvoiceTypeDeposit, invoices[0].InvoiceType)
	assert.Equal(t, entity.PaymentStatusPaid, invoices[0].PaymentStatus)
	assert.True(t, invoices[0].FinalAmount.Equal(link.Amount))

	assert.Equal(t, float64(1), testutil.ToFloat64(h.metrics.ReconciliationsTotal.WithLabelValues("deposit", "applied")))
}

func TestDuplicateCallbacksAreIdempotent(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	id := h.confirmed(t)

	link, err := h.appointments.CreateDepositLink(ctx, h.customer, id, nil)
	require.NoError(t, err)
	h.gw.SetState(link.OrderCode, gateway.StatePaid)

	first, err := h.payments.Reconcile(ctx, link.OrderCode, OutcomeSuccess)
	require.NoError(t, err)
	second, err := h.payments.Reconcile(ctx, link.OrderCode, OutcomeSuccess)
	require.NoError(t, err)
	cancelled, err := h.payments.Reconcile(ctx, link.OrderCode, OutcomeCancelled)
	require.NoError(t, err)

	assert.False(t, first.DuplicateCallback)
	assert.True(t, second.DuplicateCallback)
	assert.True(t, cancelled.DuplicateCallback)
	assert.Equal(t, string(entity.AppointmentStatusDeposited), second.AppointmentStatus)

	assert.Len(t, h.invoices(t, id), 1)
	assert.Equal(t, entity.PaymentAttemptPaid, h.attempt(t, link.OrderCode).Status)
}

func TestConcurrentCallbacksApplyOnce(t *testing.T) {
	h := newHarness(t)
	id := h.confirmed(t)

	link, err := h.appointments.CreateDepositLink(context.Background(), h.customer, id, nil)
	require.NoError(t, err)
	h.gw.SetState(link.OrderCode, gateway.StatePaid)

	const callers = 5
	var wg sync.WaitGroup
	results := make([]*dto.ReconcileResponse, callers)
	errs := make([]error, callers)
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i], errs[i] = h.payments.Reconcile(context.Background(), link.OrderCode, OutcomeSuccess)
		}(i)
	}
	wg.Wait()

	applied := 0
	for i := range results {
		require.NoError(t, errs[i])
		if !results[i].DuplicateCallback {
			applied++
		}
	}
	assert.Equal(t, 1, applied)
	assert.Len(t, h.invoices(t, id), 1)
	assert.Equal(t, entity.AppointmentStatusDeposited, h.status(t, id))
}

func TestReconcileCancelledOnlyTouchesAttempt(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	id := h.confirmed(t)

	link, err := h.appointments.CreateDepositLink(ctx, h.customer, id, nil)
	require.NoError(t, err)

	res, err := h.payments.Reconcile(ctx, link.OrderCode, OutcomeCancelled)
	require.NoError(t, err)
	assert.False(t, res.Applied)
	assert.Equal(t, string(entity.PaymentAttemptFailed), res.AttemptStatus)
	assert.Empty(t, h.gw.Verified)

	assert.Equal(t, entity.AppointmentStatusConfirmed, h.status(t, id))
	assert.Empty(t, h.invoices(t, id))

	// a fresh link can still be opened
	_, err = h.appointments.CreateDepositLink(ctx, h.customer, id, nil)
	assert.NoError(t, err)
}

func TestReconcileNeverTrustsRedirect(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	id := h.confirmed(t)

	link, err := h.appointments.CreateDepositLink(ctx, h.customer, id, nil)
	require.NoError(t, err)

	t.Run("still pending at the gateway", func(t *testing.T) {
		res, err := h.payments.Reconcile(ctx, link.OrderCode, OutcomeSuccess)
		require.NoError(t, err)
		assert.False(t, res.Applied)
		assert.Equal(t, string(entity.PaymentAttemptPending), res.AttemptStatus)
		assert.Equal(t, entity.AppointmentStatusConfirmed, h.status(t, id))
	})

	t.Run("gateway unavailable", func(t *testing.T) {
		h.gw.FailVerify = errors.New("core api timeout")
		defer func() { h.gw.FailVerify = nil }()

		_, err := h.payments.Reconcile(ctx, link.OrderCode, OutcomeSuccess)
		var gerr *exceptions.GatewayError
		assert.True(t, errors.As(err, &gerr))
		assert.Equal(t, entity.AppointmentStatusConfirmed, h.status(t, id))
	})

	t.Run("gateway reports failure", func(t *testing.T) {
		h.gw.SetState(link.OrderCode, gateway.StateFailed)
		res, err := h.payments.Reconcile(ctx, link.OrderCode, OutcomeSuccess)
		require.NoError(t, err)
		assert.Equal(t, string(entity.PaymentAttemptFailed), res.AttemptStatus)
		assert.Empty(t, h.invoices(t, id))
	})
}

func TestReconcileUnknownOrder(t *testing.T) {
	h := newHarness(t)

	_, err := h.payments.Reconcile(context.Background(), "DEP-0-UNKNOWN", OutcomeSuccess)
	var oerr *exceptions.OrderNotFoundError
	require.True(t, errors.As(err, &oerr))
	assert.Equal(t, "DEP-0-UNKNOWN", oerr.OrderCode)
	assert.Equal(t, exceptions.SupportMessage, oerr.ClientMessage())
}

func TestReconcileRollsBackWhenTransitionFails(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	id := h.confirmed(t)

	// a deposit larger than the total can never be applied
	uow := h.deps.UowFactory.NewUnitOfWork(ctx)
	attempt := &entity.PaymentAttempt{
		OrderCode:     "DEP-1-OVERSIZED",
		AppointmentId: id,
		Purpose:       entity.PaymentPurposeDeposit,
		Amount:        money.New(900000),
		Status:        entity.PaymentAttemptPending,
	}
	require.NoError(t, uow.PaymentAttemptRepository().Create(ctx, attempt))
	h.gw.SetState(attempt.OrderCode, gateway.StatePaid)

	_, err := h.payments.Reconcile(ctx, attempt.OrderCode, OutcomeSuccess)
	var terr *exceptions.InvalidTransitionError
	require.True(t, errors.As(err, &terr))

	assert.Empty(t, h.invoices(t, id))
	assert.Equal(t, entity.PaymentAttemptPending, h.attempt(t, attempt.OrderCode).Status)
	assert.Equal(t, entity.AppointmentStatusConfirmed, h.status(t, id))
}

func TestPaymentAfterCancelIsRecorded(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	id := h.confirmed(t)

	link, err := h.appointments.CreateDepositLink(ctx, h.customer, id, nil)
	require.NoError(t, err)
	_, err = h.appointments.Cancel(ctx, h.staff, id, "changed plans")
	require.NoError(t, err)
	assert.Equal(t, entity.PaymentAttemptFailed, h.attempt(t, link.OrderCode).Status)
	assert.Nil(t, h.refundRecord(t, id))

	// the customer still pays on the old checkout page
	h.gw.SetState(link.OrderCode, gateway.StatePaid)
	res, err := h.payments.Reconcile(ctx, link.OrderCode, OutcomeSuccess)
	require.NoError(t, err)
	assert.True(t, res.Applied)
	assert.True(t, res.LatePayment)
	assert.False(t, res.DuplicateCallback)
	assert.Equal(t, string(entity.AppointmentStatusCancelled), res.AppointmentStatus)
	require.NotNil(t, res.RefundDue)
	assert.True(t, res.RefundDue.Equal(link.Amount))

	assert.Equal(t, entity.AppointmentStatusCancelled, h.status(t, id))
	assert.Equal(t, entity.PaymentAttemptPaid, h.attempt(t, link.OrderCode).Status)
	invoices := h.invoices(t, id)
	require.Len(t, invoices, 1)
	assert.Equal(t, entity.PaymentStatusPaid, invoices[0].PaymentStatus)

	record := h.refundRecord(t, id)
	require.NotNil(t, record)
	assert.Equal(t, entity.RefundStatusPending, record.RefundStatus)
	assert.True(t, record.RefundAmount.Equal(link.Amount))
	assert.Equal(t, "changed plans", record.RefundReason)

	assert.Equal(t, float64(1), testutil.ToFloat64(h.metrics.ReconciliationsTotal.WithLabelValues("deposit", "late")))
	assert.Contains(t, h.recorder.Types(), events.PaymentReceivedLate)

	again, err := h.payments.Reconcile(ctx, link.OrderCode, OutcomeSuccess)
	require.NoError(t, err)
	assert.True(t, again.DuplicateCallback)
	assert.Len(t, h.invoices(t, id), 1)

	refund, err := h.refunds.IssueRefund(ctx, h.cashier, &dto.IssueRefundRequest{
		AppointmentId: id,
		Amount:        link.Amount,
		Method:        "qr",
	})
	require.NoError(t, err)
	assert.Equal(t, string(entity.RefundStatusCompleted), refund.RefundStatus)
}

func TestLatePaymentTopsUpPendingRefund(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	id := h.confirmed(t)

	stale, err := h.appointments.CreateDepositLink(ctx, h.customer, id, nil)
	require.NoError(t, err)
	fresh, err := h.appointments.CreateDepositLink(ctx, h.customer, id, nil)
	require.NoError(t, err)
	assert.Equal(t, entity.PaymentAttemptFailed, h.attempt(t, stale.OrderCode).Status)

	h.gw.SetState(fresh.OrderCode, gateway.StatePaid)
	_, err = h.payments.Reconcile(ctx, fresh.OrderCode, OutcomeSuccess)
	require.NoError(t, err)
	_, err = h.appointments.Cancel(ctx, h.staff, id, "doctor unavailable")
	require.NoError(t, err)
	require.True(t, h.refundRecord(t, id).RefundAmount.Equal(fresh.Amount))

	h.gw.SetState(stale.OrderCode, gateway.StatePaid)
	res, err := h.payments.Reconcile(ctx, stale.OrderCode, OutcomeSuccess)
	require.NoError(t, err)
	assert.True(t, res.LatePayment)

	want := fresh.Amount.Add(stale.Amount)
	require.NotNil(t, res.RefundDue)
	assert.True(t, res.RefundDue.Equal(want))
	record := h.refundRecord(t, id)
	assert.Equal(t, entity.RefundStatusPending, record.RefundStatus)
	assert.True(t, record.RefundAmount.Equal(want))
	assert.Len(t, h.invoices(t, id), 2)
}

func TestLatePaymentAfterCompletedRefund(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	id := h.confirmed(t)

	stale, err := h.appointments.CreateDepositLink(ctx, h.customer, id, nil)
	require.NoError(t, err)
	fresh, err := h.appointments.CreateDepositLink(ctx, h.customer, id, nil)
	require.NoError(t, err)
	h.gw.SetState(fresh.OrderCode, gateway.StatePaid)
	_, err = h.payments.Reconcile(ctx, fresh.OrderCode, OutcomeSuccess)
	require.NoError(t, err)
	_, err = h.appointments.Cancel(ctx, h.staff, id, "doctor unavailable")
	require.NoError(t, err)
	_, err = h.refunds.IssueRefund(ctx, h.cashier, &dto.IssueRefundRequest{AppointmentId: id, Amount: fresh.Amount, Method: "cash"})
	require.NoError(t, err)

	h.gw.SetState(stale.OrderCode, gateway.StatePaid)
	res, err := h.payments.Reconcile(ctx, stale.OrderCode, OutcomeSuccess)
	require.NoError(t, err)
	assert.True(t, res.LatePayment)
	assert.Nil(t, res.RefundDue)

	// the money is on the books even though the refund ledger is closed
	paid := 0
	for _, inv := range h.invoices(t, id) {
		if inv.PaymentStatus == entity.PaymentStatusPaid {
			paid++
			assert.Equal(t, stale.OrderCode, *inv.OrderCode)
		}
	}
	assert.Equal(t, 1, paid)
	assert.Equal(t, entity.RefundStatusCompleted, h.refundRecord(t, id).RefundStatus)
}

func TestNewDepositLinkSupersedesOpenOne(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	id := h.confirmed(t)

	small := money.New(100000)
	first, err := h.appointments.CreateDepositLink(ctx, h.customer, id, &dto.DepositLinkRequest{Amount: &small})
	require.NoError(t, err)
	large := money.New(150000)
	second, err := h.appointments.CreateDepositLink(ctx, h.customer, id, &dto.DepositLinkRequest{Amount: &large})
	require.NoError(t, err)

	assert.Equal(t, entity.PaymentAttemptFailed, h.attempt(t, first.OrderCode).Status)
	assert.Equal(t, entity.PaymentAttemptPending, h.attempt(t, second.OrderCode).Status)

	// the superseded link is paid anyway: it still applies and sets the deposit
	h.gw.SetState(first.OrderCode, gateway.StatePaid)
	res, err := h.payments.Reconcile(ctx, first.OrderCode, OutcomeSuccess)
	require.NoError(t, err)
	assert.False(t, res.LatePayment)
	assert.Equal(t, string(entity.AppointmentStatusDeposited), res.AppointmentStatus)

	appt, err := h.appointments.Get(ctx, id)
	require.NoError(t, err)
	assert.True(t, appt.DepositAmount.Equal(small))

	// then the newer one too: recorded, no second transition
	h.gw.SetState(second.OrderCode, gateway.StatePaid)
	res, err = h.payments.Reconcile(ctx, second.OrderCode, OutcomeSuccess)
	require.NoError(t, err)
	assert.True(t, res.Applied)
	assert.True(t, res.LatePayment)
	assert.Nil(t, res.RefundDue)
	assert.Equal(t, entity.PaymentAttemptPaid, h.attempt(t, second.OrderCode).Status)

	appt, err = h.appointments.Get(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, string(entity.AppointmentStatusDeposited), appt.Status)
	assert.True(t, appt.AmountCollected.Equal(small.Add(large)))
	assert.Len(t, h.invoices(t, id), 2)
}

func TestDepositLinkRejectsMinorUnits(t *testing.T) {
	h := newHarness(t)
	id := h.confirmed(t)

	amount, err := money.Parse("150000.7")
	require.NoError(t, err)
	_, err = h.appointments.CreateDepositLink(context.Background(), h.customer, id, &dto.DepositLinkRequest{Amount: &amount})
	var verr *exceptions.ValidationError
	require.True(t, errors.As(err, &verr))
	assert.Contains(t, verr.Message, "whole amount")
	assert.Empty(t, h.gw.Links)
}

func TestWebhook(t *testing.T) {
	notification := func(orderCode, status, key string) *dto.MidtransWebhookRequest {
		req := &dto.MidtransWebhookRequest{
			OrderId:           orderCode,
			StatusCode:        "200",
			GrossAmount:       "200000.00",
			TransactionStatus: status,
		}
		req.SignatureKey = gateway.Signature(req.OrderId, req.StatusCode, req.GrossAmount, key)
		return req
	}

	t.Run("settlement applies the deposit", func(t *testing.T) {
		h := newHarness(t)
		id := h.confirmed(t)
		link, err := h.appointments.CreateDepositLink(context.Background(), h.customer, id, nil)
		require.NoError(t, err)
		h.gw.SetState(link.OrderCode, gateway.StatePaid)

		res, err := h.payments.HandleNotification(context.Background(), notification(link.OrderCode, "settlement", testServerKey))
		require.NoError(t, err)
		assert.True(t, res.Applied)
		assert.Equal(t, entity.AppointmentStatusDeposited, h.status(t, id))
	})

	t.Run("expire fails the attempt", func(t *testing.T) {
		h := newHarness(t)
		id := h.confirmed(t)
		link, err := h.appointments.CreateDepositLink(context.Background(), h.customer, id, nil)
		require.NoError(t, err)

		_, err = h.payments.HandleNotification(context.Background(), notification(link.OrderCode, "expire", testServerKey))
		require.NoError(t, err)
		assert.Equal(t, entity.PaymentAttemptFailed, h.attempt(t, link.OrderCode).Status)
		assert.Equal(t, entity.AppointmentStatusConfirmed, h.status(t, id))
	})

	t.Run("pending is a no-op", func(t *testing.T) {
		h := newHarness(t)
		id := h.confirmed(t)
		link, err := h.appointments.CreateDepositLink(context.Background(), h.customer, id, nil)
		require.NoError(t, err)

		_, err = h.payments.HandleNotification(context.Background(), notification(link.OrderCode, "pending", testServerKey))
		require.NoError(t, err)
		assert.Empty(t, h.gw.Verified)
		assert.Equal(t, entity.PaymentAttemptPending, h.attempt(t, link.OrderCode).Status)
	})

	t.Run("bad signature is refused", func(t *testing.T) {
		h := newHarness(t)
		_, err := h.payments.HandleNotification(context.Background(), notification("DEP-1-X", "settlement", "wrong-key"))
		var verr *exceptions.ValidationError
		assert.True(t, errors.As(err, &verr))
		assert.Empty(t, h.gw.Verified)
	})
}
