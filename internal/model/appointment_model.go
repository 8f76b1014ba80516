package model

import (
	"time"

	"spa-booking-be/pkg/money"

	"github.com/google/uuid"
)

type Appointment struct {
	Id              uuid.UUID    `gorm:"type:uuid;primaryKey"`
	CustomerId      uuid.UUID    `gorm:"type:uuid;not null;index"`
	DoctorId        *uuid.UUID   `gorm:"type:uuid;index"`
	StaffId         *uuid.UUID   `gorm:"type:uuid"`
	VoucherId       *uuid.UUID   `gorm:"type:uuid"`
	Status          string       `gorm:"type:varchar(32);not null;index"`
	AppointmentDate time.Time    `gorm:"not null"`
	StartTime       time.Time    `gorm:"not null"`
	EndTime         time.Time    `gorm:"not null"`
	Note            string       `gorm:"type:text"`
	CancelReason    *string      `gorm:"type:text"`
	CancelledAt     *time.Time
	OrderCode       *string      `gorm:"type:varchar(64);index"`
	DiscountAmount  money.Amount `gorm:"type:decimal(12,2);not null;default:0"`
	TotalAmount     money.Amount `gorm:"type:decimal(12,2);not null"`
	DepositAmount   money.Amount `gorm:"type:decimal(12,2);not null;default:0"`
	CreatedAt       time.Time    `gorm:"autoCreateTime"`
	UpdatedAt       time.Time    `gorm:"autoUpdateTime"`

	// Relations
	Details []AppointmentDetail `gorm:"foreignKey:AppointmentId"`
}

func (Appointment) TableName() string {
	return "appointments"
}

type AppointmentDetail struct {
	Id            uuid.UUID    `gorm:"type:uuid;primaryKey"`
	AppointmentId uuid.UUID    `gorm:"type:uuid;not null;index"`
	ServiceId     uuid.UUID    `gorm:"type:uuid;not null"`
	Quantity      int          `gorm:"not null;default:1"`
	Price         money.Amount `gorm:"type:decimal(12,2);not null"` // snapshot at booking time
}

func (AppointmentDetail) TableName() string {
	return "appointment_details"
}

type AppointmentHistory struct {
	Id            uuid.UUID  `gorm:"type:uuid;primaryKey"`
	AppointmentId uuid.UUID  `gorm:"type:uuid;not null;index"`
	OldStatus     string     `gorm:"type:varchar(32);not null"`
	NewStatus     string     `gorm:"type:varchar(32);not null"`
	ActorId       *uuid.UUID `gorm:"type:uuid"`
	ActorRole     string     `gorm:"type:varchar(32)"`
	Reason        string     `gorm:"type:text"`
	ChangedAt     time.Time  `gorm:"not null"`
}

func (AppointmentHistory) TableName() string {
	return "appointment_histories"
}
