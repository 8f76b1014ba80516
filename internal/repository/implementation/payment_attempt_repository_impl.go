package implementation

import (
	"context"
	"errors"
	"time"

	"spa-booking-be/internal/entity"
	"spa-booking-be/internal/mapper"
	"spa-booking-be/internal/model"
	"spa-booking-be/internal/repository/contract"
	"spa-booking-be/internal/repository/specification"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type paymentAttemptRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.PaymentAttemptMapper
}

func NewPaymentAttemptRepository(db *gorm.DB) contract.PaymentAttemptRepository {
	return &paymentAttemptRepositoryImpl{
		db:     db,
		mapper: mapper.NewPaymentAttemptMapper(),
	}
}

func (r *paymentAttemptRepositoryImpl) Create(ctx context.Context, attempt *entity.PaymentAttempt) error {
	if attempt.Id == uuid.Nil {
		attempt.Id = uuid.New()
	}
	m := r.mapper.ToModel(attempt)
	if err := r.db.WithContext(ctx).Create(m).Error; err != nil {
		return err
	}
	attempt.CreatedAt = m.CreatedAt
	attempt.UpdatedAt = m.UpdatedAt
	return nil
}

func (r *paymentAttemptRepositoryImpl) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.PaymentAttempt, error) {
	var m model.PaymentAttempt
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

func (r *paymentAttemptRepositoryImpl) FindByOrderCodeForUpdate(ctx context.Context, orderCode string) (*entity.PaymentAttempt, error) {
	var m model.PaymentAttempt
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("order_code = ?", orderCode).
		First(&m).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return r.mapper.ToEntity(&m), nil
}

func (r *paymentAttemptRepositoryImpl) Update(ctx context.Context, attempt *entity.PaymentAttempt) error {
	updates := map[string]interface{}{
		"status":       string(attempt.Status),
		"checkout_url": attempt.CheckoutUrl,
		"cashier_id":   attempt.CashierId,
	}
	if len(attempt.GatewayPayload) > 0 {
		updates["gateway_payload"] = datatypes.JSON(attempt.GatewayPayload)
	}
	return r.db.WithContext(ctx).Model(&model.PaymentAttempt{}).
		Where("id = ?", attempt.Id).
		Updates(updates).Error
}

func (r *paymentAttemptRepositoryImpl) FailPending(ctx context.Context, appointmentId uuid.UUID, at time.Time, purposes ...entity.PaymentPurpose) (int64, error) {
	query := r.db.WithContext(ctx).Model(&model.PaymentAttempt{}).
		Where("appointment_id = ? AND status = ?", appointmentId, string(entity.PaymentAttemptPending))
	if len(purposes) > 0 {
		names := make([]string, 0, len(purposes))
		for _, p := range purposes {
			names = append(names, string(p))
		}
		query = query.Where("purpose IN ?", names)
	}

	res := query.Updates(map[string]interface{}{
		"status":     string(entity.PaymentAttemptFailed),
		"updated_at": at,
	})
	return res.RowsAffected, res.Error
}
