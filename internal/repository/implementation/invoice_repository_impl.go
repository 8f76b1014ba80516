package implementation

import (
	"context"

	"spa-booking-be/internal/entity"
	"spa-booking-be/internal/mapper"
	"spa-booking-be/internal/model"
	"spa-booking-be/internal/repository/contract"
	"spa-booking-be/internal/repository/specification"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type invoiceRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.InvoiceMapper
}

func NewInvoiceRepository(db *gorm.DB) contract.InvoiceRepository {
	return &invoiceRepositoryImpl{
		db:     db,
		mapper: mapper.NewInvoiceMapper(),
	}
}

func (r *invoiceRepositoryImpl) Create(ctx context.Context, invoice *entity.Invoice) error {
	if invoice.Id == uuid.Nil {
		invoice.Id = uuid.New()
	}
	m := r.mapper.ToModel(invoice)
	if err := r.db.WithContext(ctx).Create(m).Error; err != nil {
		return err
	}
	invoice.CreatedAt = m.CreatedAt
	invoice.UpdatedAt = m.UpdatedAt
	return nil
}

func (r *invoiceRepositoryImpl) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.Invoice, error) {
	var models []*model.Invoice
	query := r.db.WithContext(ctx)
	for _, spec := range specs {
		query = spec.Apply(query)
	}

	if err := query.Find(&models).Error; err != nil {
		return nil, err
	}

	res := make([]*entity.Invoice, 0, len(models))
	for _, m := range models {
		res = append(res, r.mapper.ToEntity(m))
	}
	return res, nil
}

func (r *invoiceRepositoryImpl) MarkRefunded(ctx context.Context, ids []uuid.UUID) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	res := r.db.WithContext(ctx).Model(&model.Invoice{}).
		Where("id IN ? AND payment_status = ?", ids, string(entity.PaymentStatusPaid)).
		Updates(map[string]interface{}{
			"payment_status": string(entity.PaymentStatusRefunded),
			"status":         string(entity.InvoiceStatusCancelled),
		})
	return res.RowsAffected, res.Error
}
