package unitofwork

import (
	"context"

	"spa-booking-be/internal/repository/contract"
)

type UnitOfWork interface {
	Begin(ctx context.Context) error
	Commit() error
	Rollback() error

	AppointmentRepository() contract.AppointmentRepository
	InvoiceRepository() contract.InvoiceRepository
	PaymentAttemptRepository() contract.PaymentAttemptRepository
	CancelRequestRepository() contract.CancelRequestRepository
	RefundRepository() contract.RefundRepository
}
