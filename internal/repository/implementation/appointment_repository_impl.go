package implementation

import (
	"context"
	"errors"
	"time"

	"spa-booking-be/internal/entity"
	"spa-booking-be/internal/mapper"
	"spa-booking-be/internal/model"
	"spa-booking-be/internal/pkg/exceptions"
	"spa-booking-be/internal/repository/contract"
	"spa-booking-be/internal/repository/specification"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type appointmentRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.AppointmentMapper
}

func NewAppointmentRepository(db *gorm.DB) contract.AppointmentRepository {
	return &appointmentRepositoryImpl{
		db:     db,
		mapper: mapper.NewAppointmentMapper(),
	}
}

func (r *appointmentRepositoryImpl) applySpecifications(db *gorm.DB, specs ...specification.Specification) *gorm.DB {
	for _, spec := range specs {
		db = spec.Apply(db)
	}
	return db
}

func (r *appointmentRepositoryImpl) Create(ctx context.Context, appt *entity.Appointment) error {
	m := r.mapper.ToModel(appt)
	if m.Id == uuid.Nil {
		m.Id = uuid.New()
	}
	for i := range m.Details {
		if m.Details[i].Id == uuid.Nil {
			m.Details[i].Id = uuid.New()
		}
		m.Details[i].AppointmentId = m.Id
	}

	if err := r.db.WithContext(ctx).Create(m).Error; err != nil {
		return err
	}

	*appt = *r.mapper.ToEntity(m)
	return nil
}

func (r *appointmentRepositoryImpl) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.Appointment, error) {
	var m model.Appointment
	query := r.applySpecifications(r.db.WithContext(ctx).Preload("Details"), specs...)

	if err := query.First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return r.mapper.ToEntity(&m), nil
}

func (r *appointmentRepositoryImpl) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.Appointment, error) {
	var models []*model.Appointment
	query := r.applySpecifications(r.db.WithContext(ctx).Preload("Details"), specs...)

	if err := query.Find(&models).Error; err != nil {
		return nil, err
	}

	res := make([]*entity.Appointment, 0, len(models))
	for _, m := range models {
		res = append(res, r.mapper.ToEntity(m))
	}
	return res, nil
}

func (r *appointmentRepositoryImpl) FindForUpdate(ctx context.Context, id uuid.UUID) (*entity.Appointment, error) {
	var m model.Appointment
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Preload("Details").
		Where("id = ?", id).
		First(&m).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return r.mapper.ToEntity(&m), nil
}

func (r *appointmentRepositoryImpl) SaveIfStatus(ctx context.Context, appt *entity.Appointment, expected entity.AppointmentStatus) error {
	if appt.UpdatedAt.IsZero() {
		appt.UpdatedAt = time.Now()
	}

	res := r.db.WithContext(ctx).Model(&model.Appointment{}).
		Where("id = ? AND status = ?", appt.Id, string(expected)).
		Updates(map[string]interface{}{
			"status":         string(appt.Status),
			"doctor_id":      appt.DoctorId,
			"staff_id":       appt.StaffId,
			"cancel_reason":  appt.CancelReason,
			"cancelled_at":   appt.CancelledAt,
			"order_code":     appt.OrderCode,
			"deposit_amount": appt.DepositAmount,
			"updated_at":     appt.UpdatedAt,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return &exceptions.ConcurrentModificationError{AppointmentID: appt.Id.String()}
	}
	return nil
}

func (r *appointmentRepositoryImpl) AppendHistory(ctx context.Context, h *entity.AppointmentHistory) error {
	if h.Id == uuid.Nil {
		h.Id = uuid.New()
	}
	if h.ChangedAt.IsZero() {
		h.ChangedAt = time.Now()
	}
	return r.db.WithContext(ctx).Create(r.mapper.HistoryToModel(h)).Error
}

func (r *appointmentRepositoryImpl) FindHistory(ctx context.Context, appointmentId uuid.UUID) ([]*entity.AppointmentHistory, error) {
	var models []*model.AppointmentHistory
	err := r.db.WithContext(ctx).
		Where("appointment_id = ?", appointmentId).
		Order("changed_at ASC").
		Find(&models).Error
	if err != nil {
		return nil, err
	}

	res := make([]*entity.AppointmentHistory, 0, len(models))
	for _, m := range models {
		res = append(res, r.mapper.HistoryToEntity(m))
	}
	return res, nil
}
