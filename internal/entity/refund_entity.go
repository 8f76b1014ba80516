package entity

import (
	"time"

	"spa-booking-be/pkg/money"

	"github.com/google/uuid"
)

type RefundStatus string

const (
	RefundStatusPending   RefundStatus = "pending"
	RefundStatusCompleted RefundStatus = "completed"
)

type RefundMethod string

const (
	RefundMethodCash RefundMethod = "cash"
	RefundMethodQR   RefundMethod = "qr"
	RefundMethodCard RefundMethod = "card"
)

func ParseRefundMethod(s string) (RefundMethod, bool) {
	switch RefundMethod(s) {
	case RefundMethodCash, RefundMethodQR, RefundMethodCard:
		return RefundMethod(s), true
	}
	return "", false
}

// RefundRecord is the ledger entry for money returned on a cancelled appointment.
// A pending record is the obligation written at cancel time.
type RefundRecord struct {
	Id            uuid.UUID
	AppointmentId uuid.UUID
	RefundAmount  money.Amount
	RefundMethod  RefundMethod
	RefundStatus  RefundStatus
	RefundReason  string
	StaffId       *uuid.UUID
	ProcessedAt   *time.Time
	CreatedAt     time.Time
	UpdatedAt     time.Time
}
