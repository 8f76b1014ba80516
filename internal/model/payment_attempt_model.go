package model

import (
	"time"

	"spa-booking-be/pkg/money"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

type PaymentAttempt struct {
	Id             uuid.UUID      `gorm:"type:uuid;primaryKey"`
	OrderCode      string         `gorm:"type:varchar(64);uniqueIndex;not null"`
	AppointmentId  uuid.UUID      `gorm:"type:uuid;not null;index"`
	Purpose        string         `gorm:"type:varchar(16);not null"`
	Amount         money.Amount   `gorm:"type:decimal(12,2);not null"`
	Status         string         `gorm:"type:varchar(16);not null;default:'pending'"`
	CashierId      *uuid.UUID     `gorm:"type:uuid"`
	CheckoutUrl    string         `gorm:"type:text"`
	GatewayPayload datatypes.JSON `gorm:"type:json"`
	CreatedAt      time.Time      `gorm:"autoCreateTime"`
	UpdatedAt      time.Time      `gorm:"autoUpdateTime"`
}

func (PaymentAttempt) TableName() string {
	return "payment_attempts"
}
