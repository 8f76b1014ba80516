package contract

import (
	"context"
	"time"

	"spa-booking-be/internal/entity"
	"spa-booking-be/internal/repository/specification"

	"github.com/google/uuid"
)

type PaymentAttemptRepository interface {
	Create(ctx context.Context, attempt *entity.PaymentAttempt) error
	FindOne(ctx context.Context, specs ...specification.Specification) (*entity.PaymentAttempt, error)
	FindByOrderCodeForUpdate(ctx context.Context, orderCode string) (*entity.PaymentAttempt, error)
	Update(ctx context.Context, attempt *entity.PaymentAttempt) error
	// FailPending closes the appointment's pending attempts, all purposes when none are given.
	FailPending(ctx context.Context, appointmentId uuid.UUID, at time.Time, purposes ...entity.PaymentPurpose) (int64, error)
}
