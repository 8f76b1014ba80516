package entity

import (
	"time"

	"spa-booking-be/pkg/money"

	"github.com/google/uuid"
)

type InvoiceType string

const (
	InvoiceTypeDeposit InvoiceType = "deposit"
	InvoiceTypeFinal   InvoiceType = "final"
)

type InvoiceStatus string

const (
	InvoiceStatusCompleted InvoiceStatus = "completed"
	InvoiceStatusCancelled InvoiceStatus = "cancelled"
)

type PaymentStatus string

const (
	PaymentStatusUnpaid   PaymentStatus = "unpaid"
	PaymentStatusPaid     PaymentStatus = "paid"
	PaymentStatusRefunded PaymentStatus = "refunded"
)

// CanMoveTo enforces unpaid -> paid -> refunded, never backward.
func (s PaymentStatus) CanMoveTo(next PaymentStatus) bool {
	switch s {
	case PaymentStatusUnpaid:
		return next == PaymentStatusPaid
	case PaymentStatusPaid:
		return next == PaymentStatusRefunded
	}
	return false
}

type PaymentMethod string

const (
	PaymentMethodCash PaymentMethod = "cash"
	PaymentMethodQR   PaymentMethod = "qr"
)

type Invoice struct {
	Id            uuid.UUID
	AppointmentId uuid.UUID
	CustomerId    uuid.UUID
	InvoiceType   InvoiceType
	Total         money.Amount
	Discount      money.Amount
	FinalAmount   money.Amount
	Status        InvoiceStatus
	PaymentStatus PaymentStatus
	PaymentMethod PaymentMethod
	CashierId     *uuid.UUID
	OrderCode     *string
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// NewPaidInvoice builds an invoice whose finalAmount is total minus discount.
func NewPaidInvoice(appt *Appointment, typ InvoiceType, total, discount money.Amount, method PaymentMethod, cashierId *uuid.UUID, orderCode *string, now time.Time) (*Invoice, error) {
	final, err := money.Net(total, discount)
	if err != nil {
		return nil, err
	}
	return &Invoice{
		Id:            uuid.New(),
		AppointmentId: appt.Id,
		CustomerId:    appt.CustomerId,
		InvoiceType:   typ,
		Total:         total,
		Discount:      discount,
		FinalAmount:   final,
		Status:        InvoiceStatusCompleted,
		PaymentStatus: PaymentStatusPaid,
		PaymentMethod: method,
		CashierId:     cashierId,
		OrderCode:     orderCode,
		CreatedAt:     now,
		UpdatedAt:     now,
	}, nil
}

// AmountCollected sums finalAmount over paid invoices.
func AmountCollected(invoices []*Invoice) money.Amount {
	sum := money.Zero
	for _, inv := range invoices {
		if inv.PaymentStatus == PaymentStatusPaid {
			sum = sum.Add(inv.FinalAmount)
		}
	}
	return sum
}
