package mapper

import (
	"spa-booking-be/internal/entity"
	"spa-booking-be/internal/model"

	"gorm.io/datatypes"
)

type PaymentAttemptMapper struct{}

func NewPaymentAttemptMapper() *PaymentAttemptMapper {
	return &PaymentAttemptMapper{}
}

func (m *PaymentAttemptMapper) ToEntity(p *model.PaymentAttempt) *entity.PaymentAttempt {
	if p == nil {
		return nil
	}
	return &entity.PaymentAttempt{
		Id:             p.Id,
		OrderCode:      p.OrderCode,
		AppointmentId:  p.AppointmentId,
		Purpose:        entity.PaymentPurpose(p.Purpose),
		Amount:         p.Amount,
		Status:         entity.PaymentAttemptStatus(p.Status),
		CashierId:      p.CashierId,
		CheckoutUrl:    p.CheckoutUrl,
		GatewayPayload: []byte(p.GatewayPayload),
		CreatedAt:      p.CreatedAt,
		UpdatedAt:      p.UpdatedAt,
	}
}

func (m *PaymentAttemptMapper) ToModel(p *entity.PaymentAttempt) *model.PaymentAttempt {
	if p == nil {
		return nil
	}
	var payload datatypes.JSON
	if len(p.GatewayPayload) > 0 {
		payload = datatypes.JSON(p.GatewayPayload)
	}
	return &model.PaymentAttempt{
		Id:             p.Id,
		OrderCode:      p.OrderCode,
		AppointmentId:  p.AppointmentId,
		Purpose:        string(p.Purpose),
		Amount:         p.Amount,
		Status:         string(p.Status),
		CashierId:      p.CashierId,
		CheckoutUrl:    p.CheckoutUrl,
		GatewayPayload: payload,
		CreatedAt:      p.CreatedAt,
		UpdatedAt:      p.UpdatedAt,
	}
}
