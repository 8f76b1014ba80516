package dto

import (
	"spa-booking-be/pkg/money"

	"github.com/google/uuid"
)

type ReconcileRequest struct {
	OrderCode string `json:"orderCode" validate:"required,max=64"`
	Status    string `json:"status" validate:"required,oneof=success cancelled SUCCESS CANCELLED PAID"`
}

type ReconcileResponse struct {
	OrderCode         string     `json:"orderCode"`
	AppointmentId     *uuid.UUID `json:"appointmentId,omitempty"`
	Purpose           string     `json:"purpose,omitempty"`
	AttemptStatus     string     `json:"attemptStatus"`
	AppointmentStatus string     `json:"appointmentStatus,omitempty"`
	Applied           bool       `json:"applied"`
	DuplicateCallback bool       `json:"duplicateCallback"`
	// LatePayment marks money recorded while the appointment could no longer take it.
	LatePayment bool          `json:"latePayment,omitempty"`
	RefundDue   *money.Amount `json:"refundDue,omitempty"`
}

// MidtransWebhookRequest is the server-to-server notification body.
type MidtransWebhookRequest struct {
	TransactionTime   string `json:"transaction_time"`
	TransactionStatus string `json:"transaction_status"`
	TransactionId     string `json:"transaction_id"`
	StatusMessage     string `json:"status_message"`
	StatusCode        string `json:"status_code"`
	SignatureKey      string `json:"signature_key"`
	PaymentType       string `json:"payment_type"`
	OrderId           string `json:"order_id"`
	MerchantId        string `json:"merchant_id"`
	GrossAmount       string `json:"gross_amount"`
	FraudStatus       string `json:"fraud_status"`
	Currency          string `json:"currency"`
}
