package model

import (
	"time"

	"spa-booking-be/pkg/money"

	"github.com/google/uuid"
)

type RefundRecord struct {
	Id            uuid.UUID    `gorm:"type:uuid;primaryKey"`
	AppointmentId uuid.UUID    `gorm:"type:uuid;not null;uniqueIndex"`
	RefundAmount  money.Amount `gorm:"type:decimal(12,2);not null"`
	RefundMethod  string       `gorm:"type:varchar(16)"` // cash, qr, card; empty while pending
	RefundStatus  string       `gorm:"type:varchar(16);not null;default:'pending';index"`
	RefundReason  string       `gorm:"type:text"`
	StaffId       *uuid.UUID   `gorm:"type:uuid"`
	ProcessedAt   *time.Time
	CreatedAt     time.Time `gorm:"autoCreateTime"`
	UpdatedAt     time.Time `gorm:"autoUpdateTime"`

	// Relations
	Appointment Appointment `gorm:"foreignKey:AppointmentId"`
}

func (RefundRecord) TableName() string {
	return "appointment_refunds"
}
