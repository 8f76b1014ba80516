package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"spa-booking-be/internal/entity"
	"spa-booking-be/internal/pkg/exceptions"
	"spa-booking-be/internal/pkg/logger"
	"spa-booking-be/internal/repository/unitofwork"
	"spa-booking-be/pkg/events"
	"spa-booking-be/pkg/gateway"
	"spa-booking-be/pkg/lifecycle"
	"spa-booking-be/pkg/locker"
	"spa-booking-be/pkg/metrics"
	"spa-booking-be/pkg/money"
	"spa-booking-be/pkg/notify"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel"
	"gorm.io/gorm"
)

var tracer = otel.Tracer("spa-booking-be/internal/service")

// PaymentSettings holds the knobs the booking services read from config.
type PaymentSettings struct {
	ReturnURL   string
	ServerKey   string
	DepositRate decimal.Decimal
	LockTTL     time.Duration
	LockWait    time.Duration
}

// Deps bundles the collaborators shared by the booking services.
type Deps struct {
	UowFactory unitofwork.RepositoryFactory
	Gateway    gateway.Gateway
	Notifier   notify.Notifier
	Locker     locker.Locker
	Logger     logger.ILogger
	Metrics    *metrics.Metrics
	Payment    PaymentSettings
	Clock      func() time.Time
}

func (d *Deps) now() time.Time {
	if d.Clock != nil {
		return d.Clock()
	}
	return time.Now().UTC()
}

func (d *Deps) notify(ctx context.Context, eventType string, data map[string]interface{}) {
	if d.Notifier == nil {
		return
	}
	d.Notifier.Notify(ctx, events.New(eventType, data, d.now()))
}

// lockAppointment loads the appointment under a row lock. Must run inside Begin/Commit.
func lockAppointment(ctx context.Context, uow unitofwork.UnitOfWork, id uuid.UUID) (*entity.Appointment, error) {
	appt, err := uow.AppointmentRepository().FindForUpdate(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("load appointment %s: %w", id, err)
	}
	if appt == nil {
		return nil, exceptions.NewNotFound("appointment", id)
	}
	return appt, nil
}

// transition applies op through the state machine and persists it with a status
// compare-and-swap plus a history row, all on the caller's transaction.
func (d *Deps) transition(ctx context.Context, uow unitofwork.UnitOfWork, appt *entity.Appointment, op lifecycle.Operation, reason string, actor entity.Actor) (lifecycle.Transition, error) {
	expected := appt.Status
	tr, err := lifecycle.Apply(appt, op, lifecycle.Input{Reason: reason, Now: d.now()})
	if err != nil {
		return tr, err
	}

	if err := uow.AppointmentRepository().SaveIfStatus(ctx, appt, expected); err != nil {
		return tr, err
	}

	err = uow.AppointmentRepository().AppendHistory(ctx, &entity.AppointmentHistory{
		AppointmentId: appt.Id,
		OldStatus:     tr.From,
		NewStatus:     tr.To,
		ActorId:       actor.Id,
		ActorRole:     actor.Role,
		Reason:        reason,
		ChangedAt:     tr.At,
	})
	if err != nil {
		return tr, fmt.Errorf("write history: %w", err)
	}
	return tr, nil
}

// committed records metrics and logs for a transition once its transaction is durable.
func (d *Deps) committed(appt *entity.Appointment, tr lifecycle.Transition, actor entity.Actor) {
	d.Metrics.Transition(string(tr.Op), string(tr.From), string(tr.To))

	details := map[string]interface{}{
		"appointmentId": appt.Id.String(),
		"op":            string(tr.Op),
		"from":          string(tr.From),
		"to":            string(tr.To),
		"actorRole":     actor.Role,
	}
	if actor.Id != nil {
		details["actorId"] = actor.Id.String()
	}
	d.Logger.Info("APPOINTMENT", "Status changed", details)
}

// logFailure logs unexpected errors. Domain errors are expected outcomes and go to Warn.
func (d *Deps) logFailure(module, message string, err error, details map[string]interface{}) {
	if details == nil {
		details = map[string]interface{}{}
	}
	details["error"] = err.Error()

	if _, ok := exceptions.AsHTTP(err); ok {
		d.Logger.Warn(module, message, details)
		return
	}
	d.Logger.Error(module, message, details)
}

func eventData(appt *entity.Appointment) map[string]interface{} {
	data := map[string]interface{}{
		"appointment_id": appt.Id.String(),
		"customer_id":    appt.CustomerId.String(),
		"status":         string(appt.Status),
	}
	if appt.DoctorId != nil {
		data["doctor_id"] = appt.DoctorId.String()
	}
	return data
}

var statusEvents = map[entity.AppointmentStatus]string{
	entity.AppointmentStatusConfirmed: events.AppointmentConfirmed,
	entity.AppointmentStatusRejected:  events.AppointmentRejected,
	entity.AppointmentStatusDeposited: events.AppointmentDeposited,
	entity.AppointmentStatusApproved:  events.AppointmentApproved,
	entity.AppointmentStatusCompleted: events.AppointmentCompleted,
	entity.AppointmentStatusPaid:      events.AppointmentPaid,
	entity.AppointmentStatusCancelled: events.AppointmentCancelled,
}

func statusEvent(s entity.AppointmentStatus) string {
	return statusEvents[s]
}

// wholeAmounts rejects amounts with a minor-unit part. The gateway only charges whole VND.
func wholeAmounts(amounts map[string]money.Amount) error {
	for field, a := range amounts {
		if !a.IsWhole() {
			return exceptions.NewValidation("%s must be a whole amount, got %s", field, a.Decimal().String())
		}
	}
	return nil
}

func isDuplicateKey(err error) bool {
	return err != nil && errors.Is(err, gorm.ErrDuplicatedKey)
}
