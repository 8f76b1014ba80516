package mapper

import (
	"spa-booking-be/internal/entity"
	"spa-booking-be/internal/model"
)

type InvoiceMapper struct{}

func NewInvoiceMapper() *InvoiceMapper {
	return &InvoiceMapper{}
}

func (m *InvoiceMapper) ToEntity(i *model.Invoice) *entity.Invoice {
	if i == nil {
		return nil
	}
	return &entity.Invoice{
		Id:            i.Id,
		AppointmentId: i.AppointmentId,
		CustomerId:    i.CustomerId,
		InvoiceType:   entity.InvoiceType(i.InvoiceType),
		Total:         i.Total,
		Discount:      i.Discount,
		FinalAmount:   i.FinalAmount,
		Status:        entity.InvoiceStatus(i.Status),
		PaymentStatus: entity.PaymentStatus(i.PaymentStatus),
		PaymentMethod: entity.PaymentMethod(i.PaymentMethod),
		CashierId:     i.CashierId,
		OrderCode:     i.OrderCode,
		CreatedAt:     i.CreatedAt,
		UpdatedAt:     i.UpdatedAt,
	}
}

func (m *InvoiceMapper) ToModel(i *entity.Invoice) *model.Invoice {
	if i == nil {
		return nil
	}
	return &model.Invoice{
		Id:            i.Id,
		AppointmentId: i.AppointmentId,
		CustomerId:    i.CustomerId,
		InvoiceType:   string(i.InvoiceType),
		Total:         i.Total,
		Discount:      i.Discount,
		FinalAmount:   i.FinalAmount,
		Status:        string(i.Status),
		PaymentStatus: string(i.PaymentStatus),
		PaymentMethod: string(i.PaymentMethod),
		CashierId:     i.CashierId,
		OrderCode:     i.OrderCode,
		CreatedAt:     i.CreatedAt,
		UpdatedAt:     i.UpdatedAt,
	}
}
