package contract

import (
	"context"

	"spa-booking-be/internal/entity"
	"spa-booking-be/internal/repository/specification"
)

type CancelRequestRepository interface {
	Create(ctx context.Context, req *entity.DoctorCancelRequest) error
	FindOne(ctx context.Context, specs ...specification.Specification) (*entity.DoctorCancelRequest, error)
	FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.DoctorCancelRequest, error)
	Count(ctx context.Context, specs ...specification.Specification) (int64, error)
	// ResolveIfPending writes the review outcome only while the request is still pending.
	ResolveIfPending(ctx context.Context, req *entity.DoctorCancelRequest) (bool, error)
}
