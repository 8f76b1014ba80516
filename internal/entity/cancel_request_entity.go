package entity

import (
	"time"

	"github.com/google/uuid"
)

type CancelRequestStatus string

const (
	CancelRequestStatusPending  CancelRequestStatus = "pending"
	CancelRequestStatusApproved CancelRequestStatus = "approved"
	CancelRequestStatusRejected CancelRequestStatus = "rejected"
)

// DoctorCancelRequest is a doctor asking staff to cancel one appointment.
type DoctorCancelRequest struct {
	Id            uuid.UUID
	AppointmentId uuid.UUID
	DoctorId      uuid.UUID
	Reason        string
	Status        CancelRequestStatus
	ReviewedBy    *uuid.UUID
	ReviewedAt    *time.Time
	CreatedAt     time.Time
}
