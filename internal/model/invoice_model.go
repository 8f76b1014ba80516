package model

import (
	"time"

	"spa-booking-be/pkg/money"

	"github.com/google/uuid"
)

type Invoice struct {
	Id            uuid.UUID    `gorm:"type:uuid;primaryKey"`
	AppointmentId uuid.UUID    `gorm:"type:uuid;not null;index"`
	CustomerId    uuid.UUID    `gorm:"type:uuid;not null;index"`
	InvoiceType   string       `gorm:"type:varchar(16);not null"`
	Total         money.Amount `gorm:"type:decimal(12,2);not null"`
	Discount      money.Amount `gorm:"type:decimal(12,2);not null;default:0"`
	FinalAmount   money.Amount `gorm:"type:decimal(12,2);not null"`
	Status        string       `gorm:"type:varchar(16);not null"`
	PaymentStatus string       `gorm:"type:varchar(16);not null;default:'unpaid';index"`
	PaymentMethod string       `gorm:"type:varchar(16)"`
	CashierId     *uuid.UUID   `gorm:"type:uuid;index"` // nil = customer paid through the gateway
	OrderCode     *string      `gorm:"type:varchar(64)"`
	CreatedAt     time.Time    `gorm:"index"`
	UpdatedAt     time.Time    `gorm:"autoUpdateTime"`
}

func (Invoice) TableName() string {
	return "invoices"
}
