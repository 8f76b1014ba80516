package mapper

import (
	"spa-booking-be/internal/entity"
	"spa-booking-be/internal/model"
)

type CancelRequestMapper struct{}

func NewCancelRequestMapper() *CancelRequestMapper {
	return &CancelRequestMapper{}
}

func (m *CancelRequestMapper) ToEntity(r *model.DoctorCancelRequest) *entity.DoctorCancelRequest {
	if r == nil {
		return nil
	}
	return &entity.DoctorCancelRequest{
		Id:            r.Id,
		AppointmentId: r.AppointmentId,
		DoctorId:      r.DoctorId,
		Reason:        r.Reason,
		Status:        entity.CancelRequestStatus(r.Status),
		ReviewedBy:    r.ReviewedBy,
		ReviewedAt:    r.ReviewedAt,
		CreatedAt:     r.CreatedAt,
	}
}

func (m *CancelRequestMapper) ToModel(r *entity.DoctorCancelRequest) *model.DoctorCancelRequest {
	if r == nil {
		return nil
	}
	return &model.DoctorCancelRequest{
		Id:            r.Id,
		AppointmentId: r.AppointmentId,
		DoctorId:      r.DoctorId,
		Reason:        r.Reason,
		Status:        string(r.Status),
		ReviewedBy:    r.ReviewedBy,
		ReviewedAt:    r.ReviewedAt,
		CreatedAt:     r.CreatedAt,
	}
}
