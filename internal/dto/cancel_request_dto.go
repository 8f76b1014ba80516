package dto

import (
	"time"

	"github.com/google/uuid"
)

type CreateCancelRequest struct {
	AppointmentId uuid.UUID `json:"appointmentId" validate:"required"`
	Reason        string    `json:"reason" validate:"required,min=3,max=1000"`
}

type CancelRequestResponse struct {
	Id                uuid.UUID  `json:"id"`
	AppointmentId     uuid.UUID  `json:"appointmentId"`
	DoctorId          uuid.UUID  `json:"doctorId"`
	Reason            string     `json:"reason"`
	Status            string     `json:"status"`
	ReviewedBy        *uuid.UUID `json:"reviewedBy"`
	ReviewedAt        *time.Time `json:"reviewedAt"`
	CreatedAt         time.Time  `json:"createdAt"`
	AppointmentStatus string     `json:"appointmentStatus,omitempty"`
	AppointmentEnd    *time.Time `json:"appointmentEnd,omitempty"`
	// Expired is true once the appointment has ended. Approval is refused then.
	Expired bool `json:"expired"`
}
