package mapper

import (
	"spa-booking-be/internal/entity"
	"spa-booking-be/internal/model"
)

type RefundMapper struct{}

func NewRefundMapper() *RefundMapper {
	return &RefundMapper{}
}

func (m *RefundMapper) ToEntity(r *model.RefundRecord) *entity.RefundRecord {
	if r == nil {
		return nil
	}
	return &entity.RefundRecord{
		Id:            r.Id,
		AppointmentId: r.AppointmentId,
		RefundAmount:  r.RefundAmount,
		RefundMethod:  entity.RefundMethod(r.RefundMethod),
		RefundStatus:  entity.RefundStatus(r.RefundStatus),
		RefundReason:  r.RefundReason,
		StaffId:       r.StaffId,
		ProcessedAt:   r.ProcessedAt,
		CreatedAt:     r.CreatedAt,
		UpdatedAt:     r.UpdatedAt,
	}
}

func (m *RefundMapper) ToModel(r *entity.RefundRecord) *model.RefundRecord {
	if r == nil {
		return nil
	}
	return &model.RefundRecord{
		Id:            r.Id,
		AppointmentId: r.AppointmentId,
		RefundAmount:  r.RefundAmount,
		RefundMethod:  string(r.RefundMethod),
		RefundStatus:  string(r.RefundStatus),
		RefundReason:  r.RefundReason,
		StaffId:       r.StaffId,
		ProcessedAt:   r.ProcessedAt,
		CreatedAt:     r.CreatedAt,
		UpdatedAt:     r.UpdatedAt,
	}
}
