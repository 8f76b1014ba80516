package dto

import (
	"time"

	"spa-booking-be/pkg/money"

	"github.com/google/uuid"
)

type IssueRefundRequest struct {
	AppointmentId uuid.UUID    `json:"appointmentId" validate:"required"`
	Amount        money.Amount `json:"amount" validate:"gt=0,whole"`
	Method        string       `json:"method" validate:"required,oneof=cash qr card"`
	Reason        string       `json:"reason" validate:"max=1000"`
}

type RefundResponse struct {
	Id            uuid.UUID    `json:"id"`
	AppointmentId uuid.UUID    `json:"appointmentId"`
	RefundAmount  money.Amount `json:"refundAmount"`
	RefundMethod  string       `json:"refundMethod"`
	RefundStatus  string       `json:"refundStatus"`
	RefundReason  string       `json:"refundReason"`
	StaffId       *uuid.UUID   `json:"staffId"`
	ProcessedAt   *time.Time   `json:"processedAt"`
	CreatedAt     time.Time    `json:"createdAt"`
}
