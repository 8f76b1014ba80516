package entity

import (
	"time"

	"spa-booking-be/pkg/money"

	"github.com/google/uuid"
)

type PaymentPurpose string

const (
	PaymentPurposeDeposit PaymentPurpose = "deposit"
	PaymentPurposeFinal   PaymentPurpose = "final"
)

type PaymentAttemptStatus string

const (
	PaymentAttemptPending PaymentAttemptStatus = "pending"
	PaymentAttemptPaid    PaymentAttemptStatus = "paid"
	PaymentAttemptFailed  PaymentAttemptStatus = "failed"
)

// PaymentAttempt correlates one gateway checkout link with the appointment it pays for.
type PaymentAttempt struct {
	Id             uuid.UUID
	OrderCode      string
	AppointmentId  uuid.UUID
	Purpose        PaymentPurpose
	Amount         money.Amount
	Status         PaymentAttemptStatus
	CashierId      *uuid.UUID
	CheckoutUrl    string
	GatewayPayload []byte
	CreatedAt      time.Time
	UpdatedAt      time.Time
}
