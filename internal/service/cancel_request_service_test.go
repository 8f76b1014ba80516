package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"spa-booking-be/internal/dto"
	"spa-booking-be/internal/entity"
	"spa-booking-be/internal/pkg/exceptions"
	"spa-booking-be/pkg/events"
	"spa-booking-be/pkg/lifecycle"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func (h *harness) requestCancel(t *testing.T, id uuid.UUID) *dto.CancelRequestResponse {
	t.Helper()
	cr, err := h.cancelRequests.Create(context.Background(), h.doctor, &dto.CreateCancelRequest{
		AppointmentId: id,
		Reason:        "  family emergency ",
	})
	require.NoError(t, err)
	return cr
}

func TestCreateCancelRequest(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	id := h.confirmed(t)

	cr := h.requestCancel(t, id)
	assert.Equal(t, string(entity.CancelRequestStatusPending), cr.Status)
	assert.Equal(t, "family emergency", cr.Reason)
	assert.Equal(t, h.doctorId, cr.DoctorId)
	assert.False(t, cr.Expired)
	assert.Contains(t, h.recorder.Types(), events.CancelRequestCreated)

	t.Run("second pending request is refused", func(t *testing.T) {
		_, err := h.cancelRequests.Create(ctx, h.doctor, &dto.CreateCancelRequest{AppointmentId: id, Reason: "again"})
		var derr *exceptions.DuplicatePendingRequestError
		assert.True(t, errors.As(err, &derr))
	})

	t.Run("another doctor cannot ask", func(t *testing.T) {
		other := h.confirmed(t)
		_, err := h.cancelRequests.Create(ctx, h.otherDocs, &dto.CreateCancelRequest{AppointmentId: other, Reason: "not mine"})
		var verr *exceptions.ValidationError
		assert.True(t, errors.As(err, &verr))
	})

	t.Run("blank reason", func(t *testing.T) {
		other := h.confirmed(t)
		_, err := h.cancelRequests.Create(ctx, h.doctor, &dto.CreateCancelRequest{AppointmentId: other, Reason: "   "})
		var verr *exceptions.ValidationError
		assert.True(t, errors.As(err, &verr))
	})

	t.Run("paid appointment cannot be cancelled", func(t *testing.T) {
		done := h.completed(t)
		_, err := h.appointments.Settle(ctx, h.cashier, done, lifecycle.Cash{})
		require.NoError(t, err)

		_, err = h.cancelRequests.Create(ctx, h.doctor, &dto.CreateCancelRequest{AppointmentId: done, Reason: "too late"})
		var terr *exceptions.InvalidTransitionError
		assert.True(t, errors.As(err, &terr))
	})

	t.Run("unknown appointment", func(t *testing.T) {
		_, err := h.cancelRequests.Create(ctx, h.doctor, &dto.CreateCancelRequest{AppointmentId: uuid.New(), Reason: "ghost"})
		var nerr *exceptions.NotFoundError
		assert.True(t, errors.As(err, &nerr))
	})
}

func TestApproveCancelRequest(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	id := h.deposited(t)
	cr := h.requestCancel(t, id)

	res, err := h.cancelRequests.Approve(ctx, h.manager, cr.Id)
	require.NoError(t, err)
	assert.Equal(t, string(entity.CancelRequestStatusApproved), res.Status)
	assert.Equal(t, h.manager.Id, res.ReviewedBy)
	require.NotNil(t, res.ReviewedAt)
	assert.Equal(t, entity.AppointmentStatusCancelled, h.status(t, id))

	history, err := h.appointments.History(ctx, id)
	require.NoError(t, err)
	last := history[len(history)-1]
	assert.Equal(t, string(entity.AppointmentStatusCancelled), last.NewStatus)
	assert.Equal(t, entity.RoleDoctor, last.ActorRole)
	assert.Equal(t, &h.doctorId, last.ActorId)
	assert.Equal(t, "family emergency", last.Reason)

	refund := h.refundRecord(t, id)
	require.NotNil(t, refund)
	assert.Equal(t, entity.RefundStatusPending, refund.RefundStatus)
	assert.Equal(t, int64(200000), refund.RefundAmount.Int64())

	t.Run("cannot approve twice", func(t *testing.T) {
		_, err := h.cancelRequests.Approve(ctx, h.manager, cr.Id)
		var terr *exceptions.InvalidTransitionError
		require.True(t, errors.As(err, &terr))
		assert.Contains(t, terr.Reason, "already approved")
	})
}

func TestApproveCancelRequestWithoutPayment(t *testing.T) {
	h := newHarness(t)
	id := h.confirmed(t)
	cr := h.requestCancel(t, id)

	_, err := h.cancelRequests.Approve(context.Background(), h.manager, cr.Id)
	require.NoError(t, err)
	assert.Nil(t, h.refundRecord(t, id))
}

func TestApproveExpiredCancelRequest(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	id := h.confirmed(t)
	cr := h.requestCancel(t, id)

	h.advance(48 * time.Hour)

	_, err := h.cancelRequests.Approve(ctx, h.manager, cr.Id)
	var terr *exceptions.InvalidTransitionError
	require.True(t, errors.As(err, &terr))
	assert.Equal(t, "appointment has already ended", terr.Reason)
	assert.Equal(t, entity.AppointmentStatusConfirmed, h.status(t, id))

	// expiry wins over the request status
	_, err = h.cancelRequests.Reject(ctx, h.manager, cr.Id)
	require.NoError(t, err)
	_, err = h.cancelRequests.Approve(ctx, h.manager, cr.Id)
	require.True(t, errors.As(err, &terr))
	assert.Equal(t, "appointment has already ended", terr.Reason)

	list, err := h.cancelRequests.List(ctx, "")
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.True(t, list[0].Expired)
}

func TestRejectCancelRequest(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	id := h.confirmed(t)
	cr := h.requestCancel(t, id)

	res, err := h.cancelRequests.Reject(ctx, h.manager, cr.Id)
	require.NoError(t, err)
	assert.Equal(t, string(entity.CancelRequestStatusRejected), res.Status)
	assert.Equal(t, entity.AppointmentStatusConfirmed, h.status(t, id))
	assert.Contains(t, h.recorder.Types(), events.CancelRequestRejected)

	_, err = h.cancelRequests.Reject(ctx, h.manager, cr.Id)
	var terr *exceptions.InvalidTransitionError
	assert.True(t, errors.As(err, &terr))

	// a rejected request frees the slot for a new one
	again := h.requestCancel(t, id)
	assert.NotEqual(t, cr.Id, again.Id)

	_, err = h.cancelRequests.Reject(ctx, h.manager, uuid.New())
	var nerr *exceptions.NotFoundError
	assert.True(t, errors.As(err, &nerr))
}

func TestListCancelRequests(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	first := h.requestCancel(t, h.confirmed(t))
	second := h.requestCancel(t, h.confirmed(t))
	_, err := h.cancelRequests.Reject(ctx, h.manager, first.Id)
	require.NoError(t, err)

	all, err := h.cancelRequests.List(ctx, "")
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, second.Id, all[0].Id)
	assert.Equal(t, string(entity.AppointmentStatusConfirmed), all[0].AppointmentStatus)

	pending, err := h.cancelRequests.List(ctx, "pending")
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, second.Id, pending[0].Id)

	_, err = h.cancelRequests.List(ctx, "archived")
	var verr *exceptions.ValidationError
	assert.True(t, errors.As(err, &verr))
}
