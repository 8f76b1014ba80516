package dto

import (
	"time"

	"spa-booking-be/pkg/money"

	"github.com/google/uuid"
)

type AppointmentDetailRequest struct {
	ServiceId uuid.UUID    `json:"serviceId" validate:"required"`
	Quantity  int          `json:"quantity" validate:"required,min=1"`
	Price     money.Amount `json:"price" validate:"gte=0,whole"`
}

type CreateAppointmentRequest struct {
	CustomerId      uuid.UUID                  `json:"customerId" validate:"required"`
	DoctorId        *uuid.UUID                 `json:"doctorId"`
	StaffId         *uuid.UUID                 `json:"staffId"`
	VoucherId       *uuid.UUID                 `json:"voucherId"`
	AppointmentDate time.Time                  `json:"appointmentDate" validate:"required"`
	StartTime       time.Time                  `json:"startTime" validate:"required"`
	EndTime         time.Time                  `json:"endTime" validate:"required"`
	Note            string                     `json:"note" validate:"max=2000"`
	DiscountAmount  money.Amount               `json:"discountAmount" validate:"gte=0,whole"`
	DepositAmount   *money.Amount              `json:"depositAmount" validate:"omitempty,gte=0,whole"`
	Details         []AppointmentDetailRequest `json:"details" validate:"required,min=1,dive"`
}

type ReasonRequest struct {
	Reason string `json:"reason" validate:"max=1000"`
}

type CancelAppointmentRequest struct {
	Reason string `json:"reason" validate:"required,max=1000"`
}

type AssignDoctorRequest struct {
	DoctorId *uuid.UUID `json:"doctorId"`
}

type RemindDoctorRequest struct {
	DoctorEmail string `json:"doctorEmail" validate:"omitempty,email"`
	Message     string `json:"message" validate:"max=500"`
}

type DepositLinkRequest struct {
	// Amount overrides the default deposit. It must not exceed the total.
	Amount *money.Amount `json:"amount" validate:"omitempty,gt=0,whole"`
}

type SettleRequest struct {
	Method string `json:"method" validate:"required,oneof=cash qr transfer"`
}

type AppointmentDetailResponse struct {
	Id        uuid.UUID    `json:"id"`
	ServiceId uuid.UUID    `json:"serviceId"`
	Quantity  int          `json:"quantity"`
	Price     money.Amount `json:"price"`
}

type InvoiceResponse struct {
	Id            uuid.UUID    `json:"id"`
	InvoiceType   string       `json:"invoiceType"`
	Total         money.Amount `json:"total"`
	Discount      money.Amount `json:"discount"`
	FinalAmount   money.Amount `json:"finalAmount"`
	Status        string       `json:"status"`
	PaymentStatus string       `json:"paymentStatus"`
	PaymentMethod string       `json:"paymentMethod"`
	CashierId     *uuid.UUID   `json:"cashierId"`
	OrderCode     *string      `json:"orderCode"`
	CreatedAt     time.Time    `json:"createdAt"`
}

type AppointmentResponse struct {
	Id              uuid.UUID                   `json:"id"`
	CustomerId      uuid.UUID                   `json:"customerId"`
	DoctorId        *uuid.UUID                  `json:"doctorId"`
	StaffId         *uuid.UUID                  `json:"staffId"`
	VoucherId       *uuid.UUID                  `json:"voucherId"`
	Status          string                      `json:"status"`
	AppointmentDate time.Time                   `json:"appointmentDate"`
	StartTime       time.Time                   `json:"startTime"`
	EndTime         time.Time                   `json:"endTime"`
	Note            string                      `json:"note"`
	CancelReason    *string                     `json:"cancelReason"`
	CancelledAt     *time.Time                  `json:"cancelledAt"`
	OrderCode       *string                     `json:"orderCode"`
	DiscountAmount  money.Amount                `json:"discountAmount"`
	TotalAmount     money.Amount                `json:"totalAmount"`
	DepositAmount   money.Amount                `json:"depositAmount"`
	AmountCollected money.Amount                `json:"amountCollected"`
	Balance         money.Amount                `json:"balance"`
	Details         []AppointmentDetailResponse `json:"details"`
	Invoices        []InvoiceResponse           `json:"invoices,omitempty"`
	CreatedAt       time.Time                   `json:"createdAt"`
	UpdatedAt       time.Time                   `json:"updatedAt"`
}

type AppointmentHistoryResponse struct {
	OldStatus string     `json:"oldStatus"`
	NewStatus string     `json:"newStatus"`
	ActorId   *uuid.UUID `json:"actorId"`
	ActorRole string     `json:"actorRole"`
	Reason    string     `json:"reason"`
	ChangedAt time.Time  `json:"changedAt"`
}

type TransitionResponse struct {
	AppointmentId uuid.UUID `json:"appointmentId"`
	From          string    `json:"from"`
	To            string    `json:"to"`
	At            time.Time `json:"at"`
}

type PaymentLinkResponse struct {
	AppointmentId uuid.UUID    `json:"appointmentId"`
	OrderCode     string       `json:"orderCode"`
	CheckoutUrl   string       `json:"checkoutUrl"`
	Amount        money.Amount `json:"amount"`
	Purpose       string       `json:"purpose"`
}

// SettlementResponse carries either the cash invoice or the QR checkout link.
type SettlementResponse struct {
	Method      string               `json:"method"`
	Status      string               `json:"status"`
	Invoice     *InvoiceResponse     `json:"invoice,omitempty"`
	PaymentLink *PaymentLinkResponse `json:"paymentLink,omitempty"`
}
