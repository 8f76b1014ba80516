package implementation

import (
	"context"
	"errors"

	"spa-booking-be/internal/entity"
	"spa-booking-be/internal/mapper"
	"spa-booking-be/internal/model"
	"spa-booking-be/internal/repository/contract"
	"spa-booking-be/internal/repository/specification"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type refundRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.RefundMapper
}

func NewRefundRepository(db *gorm.DB) contract.RefundRepository {
	return &refundRepositoryImpl{
		db:     db,
		mapper: mapper.NewRefundMapper(),
	}
}

func (r *refundRepositoryImpl) Create(ctx context.Context, refund *entity.RefundRecord) error {
	if refund.Id == uuid.Nil {
		refund.Id = uuid.New()
	}
	m := r.mapper.ToModel(refund)
	if err := r.db.WithContext(ctx).Omit(clause.Associations).Create(m).Error; err != nil {
		return err
	}
	refund.CreatedAt = m.CreatedAt
	refund.UpdatedAt = m.UpdatedAt
	return nil
}

func (r *refundRepositoryImpl) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.RefundRecord, error) {
	var m model.RefundRecord
	query := r.db.WithContext(ctx)
	for _, spec := range specs {
		query = spec.Apply(query)
	}

	if err := query.First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return r.mapper.ToEntity(&m), nil
}

func (r *refundRepositoryImpl) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.RefundRecord, error) {
	var models []*model.RefundRecord
	query := r.db.WithContext(ctx)
	for _, spec := range specs {
		query = spec.Apply(query)
	}

	if err := query.Find(&models).Error; err != nil {
		return nil, err
	}

	res := make([]*entity.RefundRecord, 0, len(models))
	for _, m := range models {
		res = append(res, r.mapper.ToEntity(m))
	}
	return res, nil
}

func (r *refundRepositoryImpl) Update(ctx context.Context, refund *entity.RefundRecord) error {
	return r.db.WithContext(ctx).Model(&model.RefundRecord{}).
		Where("id = ?", refund.Id).
		Updates(map[string]interface{}{
			"refund_amount": refund.RefundAmount,
			"refund_method": string(refund.RefundMethod),
			"refund_status": string(refund.RefundStatus),
			"refund_reason": refund.RefundReason,
			"staff_id":      refund.StaffId,
			"processed_at":  refund.ProcessedAt,
		}).Error
}
