package mapper

import (
	"spa-booking-be/internal/entity"
	"spa-booking-be/internal/model"
)

type AppointmentMapper struct{}

func NewAppointmentMapper() *AppointmentMapper {
	return &AppointmentMapper{}
}

func (m *AppointmentMapper) ToEntity(a *model.Appointment) *entity.Appointment {
	if a == nil {
		return nil
	}
	e := &entity.Appointment{
		Id:              a.Id,
		CustomerId:      a.CustomerId,
		DoctorId:        a.DoctorId,
		StaffId:         a.StaffId,
		VoucherId:       a.VoucherId,
		Status:          entity.AppointmentStatus(a.Status),
		AppointmentDate: a.AppointmentDate,
		StartTime:       a.StartTime,
		EndTime:         a.EndTime,
		Note:            a.Note,
		CancelReason:    a.CancelReason,
		CancelledAt:     a.CancelledAt,
		OrderCode:       a.OrderCode,
		DiscountAmount:  a.DiscountAmount,
		TotalAmount:     a.TotalAmount,
		DepositAmount:   a.DepositAmount,
		CreatedAt:       a.CreatedAt,
		UpdatedAt:       a.UpdatedAt,
	}
	for _, d := range a.Details {
		e.Details = append(e.Details, entity.AppointmentDetail{
			Id:            d.Id,
			AppointmentId: d.AppointmentId,
			ServiceId:     d.ServiceId,
			Quantity:      d.Quantity,
			Price:         d.Price,
		})
	}
	return e
}

func (m *AppointmentMapper) ToModel(a *entity.Appointment) *model.Appointment {
	if a == nil {
		return nil
	}
	res := &model.Appointment{
		Id:              a.Id,
		CustomerId:      a.CustomerId,
		DoctorId:        a.DoctorId,
		StaffId:         a.StaffId,
		VoucherId:       a.VoucherId,
		Status:          string(a.Status),
		AppointmentDate: a.AppointmentDate,
		StartTime:       a.StartTime,
		EndTime:         a.EndTime,
		Note:            a.Note,
		CancelReason:    a.CancelReason,
		CancelledAt:     a.CancelledAt,
		OrderCode:       a.OrderCode,
		DiscountAmount:  a.DiscountAmount,
		TotalAmount:     a.TotalAmount,
		DepositAmount:   a.DepositAmount,
		CreatedAt:       a.CreatedAt,
		UpdatedAt:       a.UpdatedAt,
	}
	for _, d := range a.Details {
		res.Details = append(res.Details, model.AppointmentDetail{
			Id:            d.Id,
			AppointmentId: d.AppointmentId,
			ServiceId:     d.ServiceId,
			Quantity:      d.Quantity,
			Price:         d.Price,
		})
	}
	return res
}

func (m *AppointmentMapper) HistoryToEntity(h *model.AppointmentHistory) *entity.AppointmentHistory {
	return &entity.AppointmentHistory{
		Id:            h.Id,
		AppointmentId: h.AppointmentId,
		OldStatus:     entity.AppointmentStatus(h.OldStatus),
		NewStatus:     entity.AppointmentStatus(h.NewStatus),
		ActorId:       h.ActorId,
		ActorRole:     h.ActorRole,
		Reason:        h.Reason,
		ChangedAt:     h.ChangedAt,
	}
}

func (m *AppointmentMapper) HistoryToModel(h *entity.AppointmentHistory) *model.AppointmentHistory {
	return &model.AppointmentHistory{
		Id:            h.Id,
		AppointmentId: h.AppointmentId,
		OldStatus:     string(h.OldStatus),
		NewStatus:     string(h.NewStatus),
		ActorId:       h.ActorId,
		ActorRole:     h.ActorRole,
		Reason:        h.Reason,
		ChangedAt:     h.ChangedAt,
	}
}
