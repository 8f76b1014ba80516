package specification

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ByOrderCode filters by gateway order code
type ByOrderCode struct {
	OrderCode string
}

func (s ByOrderCode) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("order_code = ?", s.OrderCode)
}

// ByAppointment filters child rows of one appointment
type ByAppointment struct {
	AppointmentID uuid.UUID
}

func (s ByAppointment) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("appointment_id = ?", s.AppointmentID)
}

type ByStatus struct {
	Status string
}

func (s ByStatus) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("status = ?", s.Status)
}

// CreatedBetween is inclusive on both ends
type CreatedBetween struct {
	From time.Time
	To   time.Time
}

func (s CreatedBetween) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("created_at >= ? AND created_at <= ?", s.From, s.To)
}

type PaymentStatusIs struct {
	PaymentStatus string
}

func (s PaymentStatusIs) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("payment_status = ?", s.PaymentStatus)
}

type RefundStatusIs struct {
	Status string
}

func (s RefundStatusIs) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("refund_status = ?", s.Status)
}
