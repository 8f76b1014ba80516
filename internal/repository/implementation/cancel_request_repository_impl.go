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

type cancelRequestRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.CancelRequestMapper
}

func NewCancelRequestRepository(db *gorm.DB) contract.CancelRequestRepository {
	return &cancelRequestRepositoryImpl{
		db:     db,
		mapper: mapper.NewCancelRequestMapper(),
	}
}

func (r *cancelRequestRepositoryImpl) Create(ctx context.Context, req *entity.DoctorCancelRequest) error {
	if req.Id == uuid.Nil {
		req.Id = uuid.New()
	}
	m := r.mapper.ToModel(req)
	if err := r.db.WithContext(ctx).Omit(clause.Associations).Create(m).Error; err != nil {
		return err
	}
	req.CreatedAt = m.CreatedAt
	return nil
}

func (r *cancelRequestRepositoryImpl) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.DoctorCancelRequest, error) {
	var m model.DoctorCancelRequest
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

func (r *cancelRequestRepositoryImpl) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.DoctorCancelRequest, error) {
	var models []*model.DoctorCancelRequest
	query := r.db.WithContext(ctx)
	for _, spec := range specs {
		query = spec.Apply(query)
	}

	if err := query.Find(&models).Error; err != nil {
		return nil, err
	}

	res := make([]*entity.DoctorCancelRequest, 0, len(models))
	for _, m := range models {
		res = append(res, r.mapper.ToEntity(m))
	}
	return res, nil
}

func (r *cancelRequestRepositoryImpl) Count(ctx context.Context, specs ...specification.Specification) (int64, error) {
	var count int64
	query := r.db.WithContext(ctx).Model(&model.DoctorCancelRequest{})
	for _, spec := range specs {
		query = spec.Apply(query)
	}
	err := query.Count(&count).Error
	return count, err
}

func (r *cancelRequestRepositoryImpl) ResolveIfPending(ctx context.Context, req *entity.DoctorCancelRequest) (bool, error) {
	res := r.db.WithContext(ctx).Model(&model.DoctorCancelRequest{}).
		Where("id = ? AND status = ?", req.Id, string(entity.CancelRequestStatusPending)).
		Updates(map[string]interface{}{
			"status":      string(req.Status),
			"reviewed_by": req.ReviewedBy,
			"reviewed_at": req.ReviewedAt,
		})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}
