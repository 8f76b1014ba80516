package contract

import (
	"context"

	"spa-booking-be/internal/entity"
	"spa-booking-be/internal/repository/specification"
)

type RefundRepository interface {
	Create(ctx context.Context, refund *entity.RefundRecord) error
	FindOne(ctx context.Context, specs ...specification.Specification) (*entity.RefundRecord, error)
	FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.RefundRecord, error)
	Update(ctx context.Context, refund *entity.RefundRecord) error
}
