package contract

import (
	"context"

	"spa-booking-be/internal/entity"
	"spa-booking-be/internal/repository/specification"

	"github.com/google/uuid"
)

type AppointmentRepository interface {
	Create(ctx context.Context, appt *entity.Appointment) error
	FindOne(ctx context.Context, specs ...specification.Specification) (*entity.Appointment, error)
	FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.Appointment, error)
	// FindForUpdate row-locks the appointment for the rest of the transaction.
	FindForUpdate(ctx context.Context, id uuid.UUID) (*entity.Appointment, error)
	// SaveIfStatus persists mutable fields only while the stored status still equals
	// expected. A miss returns *exceptions.ConcurrentModificationError.
	SaveIfStatus(ctx context.Context, appt *entity.Appointment, expected entity.AppointmentStatus) error
	AppendHistory(ctx context.Context, h *entity.AppointmentHistory) error
	FindHistory(ctx context.Context, appointmentId uuid.UUID) ([]*entity.AppointmentHistory, error)
}
