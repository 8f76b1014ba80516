package service

import (
	"context"
	"fmt"
	"strings"

	"spa-booking-be/internal/dto"
	"spa-booking-be/internal/entity"
	"spa-booking-be/internal/mapper"
	"spa-booking-be/internal/pkg/exceptions"
	"spa-booking-be/internal/repository/specification"
	"spa-booking-be/pkg/events"
	"spa-booking-be/pkg/lifecycle"

	"github.com/google/uuid"
)

const opReviewCancelRequest = "review cancel request for"

type ICancelRequestService interface {
	Create(ctx context.Context, actor entity.Actor, req *dto.CreateCancelRequest) (*dto.CancelRequestResponse, error)
	Approve(ctx context.Context, actor entity.Actor, id uuid.UUID) (*dto.CancelRequestResponse, error)
	Reject(ctx context.Context, actor entity.Actor, id uuid.UUID) (*dto.CancelRequestResponse, error)
	List(ctx context.Context, status string) ([]*dto.CancelRequestResponse, error)
}

type cancelRequestService struct {
	*Deps
}

func NewCancelRequestService(deps *Deps) ICancelRequestService {
	return &cancelRequestService{Deps: deps}
}

func (s *cancelRequestService) Create(ctx context.Context, actor entity.Actor, req *dto.CreateCancelRequest) (*dto.CancelRequestResponse, error) {
	if actor.Id == nil {
		return nil, exceptions.NewValidation("a doctor id is required to request a cancellation")
	}
	reason := strings.TrimSpace(req.Reason)
	if reason == "" {
		return nil, exceptions.NewValidation("reason is required")
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
	if err := lifecycle.Require(lifecycle.OpCancel, appt); err != nil {
		return nil, err
	}
	if appt.DoctorId != nil && *appt.DoctorId != *actor.Id {
		return nil, exceptions.NewValidation("only the assigned doctor can request this cancellation")
	}

	pending, err := uow.CancelRequestRepository().Count(ctx,
		specification.ByAppointment{AppointmentID: appt.Id},
		specification.ByStatus{Status: string(entity.CancelRequestStatusPending)},
	)
	if err != nil {
		return nil, err
	}
	if pending > 0 {
		return nil, &exceptions.DuplicatePendingRequestError{AppointmentID: appt.Id.String()}
	}

	cr := &entity.DoctorCancelRequest{
		Id:            uuid.New(),
		AppointmentId: appt.Id,
		DoctorId:      *actor.Id,
		Reason:        reason,
		Status:        entity.CancelRequestStatusPending,
		CreatedAt:     s.now(),
	}
	if err := uow.CancelRequestRepository().Create(ctx, cr); err != nil {
		if isDuplicateKey(err) {
			return nil, &exceptions.DuplicatePendingRequestError{AppointmentID: appt.Id.String()}
		}
		return nil, fmt.Errorf("create cancel request: %w", err)
	}

	if err := uow.Commit(); err != nil {
		return nil, err
	}

	s.Logger.Info("CANCEL_REQUEST", "Doctor requested cancellation", map[string]interface{}{
		"requestId":     cr.Id.String(),
		"appointmentId": appt.Id.String(),
		"doctorId":      cr.DoctorId.String(),
	})
	data := eventData(appt)
	data["request_id"] = cr.Id.String()
	data["reason"] = reason
	s.notify(ctx, events.CancelRequestCreated, data)

	return mapper.CancelRequestToResponse(cr, appt, appt.HasExpired(s.now())), nil
}

// Approve cancels the appointment on the doctor's behalf. An appointment whose time
// window has ended cannot be cancelled this way, whatever the request status.
func (s *cancelRequestService) Approve(ctx context.Context, actor entity.Actor, id uuid.UUID) (*dto.CancelRequestResponse, error) {
	uow := s.UowFactory.NewUnitOfWork(ctx)
	if err := uow.Begin(ctx); err != nil {
		return nil, err
	}
	defer uow.Rollback()

	cr, err := uow.CancelRequestRepository().FindOne(ctx, specification.ByID{ID: id})
	if err != nil {
		return nil, err
	}
	if cr == nil {
		return nil, exceptions.NewNotFound("cancel request", id)
	}

	appt, err := lockAppointment(ctx, uow, cr.AppointmentId)
	if err != nil {
		return nil, err
	}

	now := s.now()
	if appt.HasExpired(now) {
		return nil, &exceptions.InvalidTransitionError{
			Op:      opReviewCancelRequest,
			Current: string(appt.Status),
			Reason:  "appointment has already ended",
		}
	}
	if cr.Status != entity.CancelRequestStatusPending {
		return nil, &exceptions.InvalidTransitionError{
			Op:      opReviewCancelRequest,
			Current: string(appt.Status),
			Reason:  fmt.Sprintf("request is already %s", cr.Status),
		}
	}

	cr.Status = entity.CancelRequestStatusApproved
	cr.ReviewedBy = actor.Id
	cr.ReviewedAt = &now
	resolved, err := uow.CancelRequestRepository().ResolveIfPending(ctx, cr)
	if err != nil {
		return nil, err
	}
	if !resolved {
		return nil, &exceptions.ConcurrentModificationError{AppointmentID: appt.Id.String()}
	}

	doctor := entity.Actor{Id: &cr.DoctorId, Role: entity.RoleDoctor}
	tr, refund, err := s.cancelAppointment(ctx, uow, appt, cr.Reason, doctor)
	if err != nil {
		s.logFailure("CANCEL_REQUEST", "Approval refused", err, map[string]interface{}{
			"requestId":     id.String(),
			"appointmentId": appt.Id.String(),
		})
		return nil, err
	}

	if err := uow.Commit(); err != nil {
		return nil, err
	}

	s.committed(appt, tr, doctor)
	s.Logger.Info("CANCEL_REQUEST", "Cancellation request approved", map[string]interface{}{
		"requestId":     id.String(),
		"appointmentId": appt.Id.String(),
	})
	data := eventData(appt)
	data["request_id"] = cr.Id.String()
	if refund != nil {
		data["refund_due"] = refund.RefundAmount.String()
	}
	s.notify(ctx, events.AppointmentCancelled, data)

	return mapper.CancelRequestToResponse(cr, appt, false), nil
}

func (s *cancelRequestService) Reject(ctx context.Context, actor entity.Actor, id uuid.UUID) (*dto.CancelRequestResponse, error) {
	uow := s.UowFactory.NewUnitOfWork(ctx)
	if err := uow.Begin(ctx); err != nil {
		return nil, err
	}
	defer uow.Rollback()

	cr, err := uow.CancelRequestRepository().FindOne(ctx, specification.ByID{ID: id})
	if err != nil {
		return nil, err
	}
	if cr == nil {
		return nil, exceptions.NewNotFound("cancel request", id)
	}
	if cr.Status != entity.CancelRequestStatusPending {
		return nil, &exceptions.InvalidTransitionError{
			Op:      opReviewCancelRequest,
			Current: string(cr.Status),
			Reason:  "request is not pending",
		}
	}

	now := s.now()
	cr.Status = entity.CancelRequestStatusRejected
	cr.ReviewedBy = actor.Id
	cr.ReviewedAt = &now
	resolved, err := uow.CancelRequestRepository().ResolveIfPending(ctx, cr)
	if err != nil {
		return nil, err
	}
	if !resolved {
		return nil, &exceptions.ConcurrentModificationError{AppointmentID: cr.AppointmentId.String()}
	}

	if err := uow.Commit(); err != nil {
		return nil, err
	}

	s.Logger.Info("CANCEL_REQUEST", "Cancellation request rejected", map[string]interface{}{
		"requestId":     id.String(),
		"appointmentId": cr.AppointmentId.String(),
	})
	s.notify(ctx, events.CancelRequestRejected, map[string]interface{}{
		"request_id":     cr.Id.String(),
		"appointment_id": cr.AppointmentId.String(),
		"doctor_id":      cr.DoctorId.String(),
	})

	return mapper.CancelRequestToResponse(cr, nil, false), nil
}

func (s *cancelRequestService) List(ctx context.Context, status string) ([]*dto.CancelRequestResponse, error) {
	specs := []specification.Specification{specification.OrderBy{Field: "created_at", Desc: true}}
	if status != "" {
		switch entity.CancelRequestStatus(status) {
		case entity.CancelRequestStatusPending, entity.CancelRequestStatusApproved, entity.CancelRequestStatusRejected:
			specs = append(specs, specification.ByStatus{Status: status})
		default:
			return nil, exceptions.NewValidation("unknown cancel request status %q", status)
		}
	}

	uow := s.UowFactory.NewUnitOfWork(ctx)
	requests, err := uow.CancelRequestRepository().FindAll(ctx, specs...)
	if err != nil {
		return nil, err
	}
	if len(requests) == 0 {
		return []*dto.CancelRequestResponse{}, nil
	}

	ids := make([]uuid.UUID, 0, len(requests))
	for _, r := range requests {
		ids = append(ids, r.AppointmentId)
	}
	appts, err := uow.AppointmentRepository().FindAll(ctx, specification.ByIDs{IDs: ids})
	if err != nil {
		return nil, err
	}
	byId := make(map[uuid.UUID]*entity.Appointment, len(appts))
	for _, a := range appts {
		byId[a.Id] = a
	}

	now := s.now()
	res := make([]*dto.CancelRequestResponse, 0, len(requests))
	for _, r := range requests {
		appt := byId[r.AppointmentId]
		expired := appt != nil && appt.HasExpired(now)
		res = append(res, mapper.CancelRequestToResponse(r, appt, expired))
	}
	return res, nil
}
