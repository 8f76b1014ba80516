package entity

import (
	"time"

	"spa-booking-be/pkg/money"

	"github.com/google/uuid"
)

type AppointmentStatus string

const (
	AppointmentStatusPending   AppointmentStatus = "pending"
	AppointmentStatusConfirmed AppointmentStatus = "confirmed"
	AppointmentStatusRejected  AppointmentStatus = "rejected"
	AppointmentStatusDeposited AppointmentStatus = "deposited"
	AppointmentStatusApproved  AppointmentStatus = "approved"
	AppointmentStatusCompleted AppointmentStatus = "completed"
	AppointmentStatusPaid      AppointmentStatus = "paid"
	AppointmentStatusCancelled AppointmentStatus = "cancelled"
)

func (s AppointmentStatus) IsTerminal() bool {
	return s == AppointmentStatusRejected || s == AppointmentStatusCancelled || s == AppointmentStatusPaid
}

type Appointment struct {
	Id              uuid.UUID
	CustomerId      uuid.UUID
	DoctorId        *uuid.UUID
	StaffId         *uuid.UUID
	VoucherId       *uuid.UUID
	Status          AppointmentStatus
	AppointmentDate time.Time
	StartTime       time.Time
	EndTime         time.Time
	Note            string
	CancelReason    *string
	CancelledAt     *time.Time
	OrderCode       *string
	DiscountAmount  money.Amount
	TotalAmount     money.Amount
	DepositAmount   money.Amount
	Details         []AppointmentDetail
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

type AppointmentDetail struct {
	Id            uuid.UUID
	AppointmentId uuid.UUID
	ServiceId     uuid.UUID
	Quantity      int
	Price         money.Amount
}

func (a *Appointment) Breakdown() money.Breakdown {
	return money.Breakdown{Total: a.TotalAmount, Deposit: a.DepositAmount}
}

// HasExpired reports whether the booked time window has already ended.
func (a *Appointment) HasExpired(now time.Time) bool {
	return !a.EndTime.After(now)
}

type AppointmentHistory struct {
	Id            uuid.UUID
	AppointmentId uuid.UUID
	OldStatus     AppointmentStatus
	NewStatus     AppointmentStatus
	ActorId       *uuid.UUID
	ActorRole     string
	Reason        string
	ChangedAt     time.Time
}
