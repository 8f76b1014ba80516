package model

import (
	"time"

	"github.com/google/uuid"
)

// DoctorCancelRequest GORM model. The partial unique index keeps at most one pending
// request per appointment.
type DoctorCancelRequest struct {
	Id            uuid.UUID  `gorm:"type:uuid;primaryKey"`
	AppointmentId uuid.UUID  `gorm:"type:uuid;not null;index:idx_cancel_request_pending,unique,where:status = 'pending'"`
	DoctorId      uuid.UUID  `gorm:"type:uuid;not null;index"`
	Reason        string     `gorm:"type:text;not null"`
	Status        string     `gorm:"type:varchar(16);not null;default:'pending';index"`
	ReviewedBy    *uuid.UUID `gorm:"type:uuid"`
	ReviewedAt    *time.Time
	CreatedAt     time.Time `gorm:"autoCreateTime"`

	// Relations
	Appointment Appointment `gorm:"foreignKey:AppointmentId"`
}

func (DoctorCancelRequest) TableName() string {
	return "doctor_cancel_requests"
}
