package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"spa-booking-be/internal/dto"
	"spa-booking-be/internal/entity"
	"spa-booking-be/internal/pkg/logger"
	"spa-booking-be/internal/repository/specification"
	"spa-booking-be/internal/repository/unitofwork"
	"spa-booking-be/internal/testutil"
	"spa-booking-be/pkg/gateway"
	"spa-booking-be/pkg/locker"
	"spa-booking-be/pkg/metrics"
	"spa-booking-be/pkg/money"
	"spa-booking-be/pkg/notify"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

const testServerKey = "SB-Mid-server-test"

type harness struct {
	db       *gorm.DB
	gw       *gateway.Fake
	recorder *notify.Recorder
	metrics  *metrics.Metrics
	deps     *Deps

	mu  sync.Mutex
	now time.Time

	appointments   IAppointmentService
	payments       IPaymentService
	cancelRequests ICancelRequestService
	refunds        IRefundService
	revenue        IRevenueService

	doctorId  uuid.UUID
	staff     entity.Actor
	cashier   entity.Actor
	customer  entity.Actor
	manager   entity.Actor
	doctor    entity.Actor
	otherDocs entity.Actor
}

func newHarness(t *testing.T) *harness {
	t.Helper()

	h := &harness{
		db:       testutil.NewTestDB(t),
		gw:       gateway.NewFake(),
		recorder: notify.NewRecorder(),
		metrics:  metrics.NewMetrics("test", prometheus.NewRegistry()),
		now:      time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC),
		doctorId: uuid.New(),
	}
	h.staff = actor(entity.RoleStaff)
	h.cashier = actor(entity.RoleCashier)
	h.customer = actor(entity.RoleCustomer)
	h.manager = actor(entity.RoleManager)
	h.doctor = entity.Actor{Id: &h.doctorId, Role: entity.RoleDoctor}
	h.otherDocs = actor(entity.RoleDoctor)

	h.deps = &Deps{
		UowFactory: unitofwork.NewRepositoryFactory(h.db),
		Gateway:    h.gw,
		Notifier:   h.recorder,
		Locker:     locker.NewMemoryLocker(),
		Logger:     logger.NewNop(),
		Metrics:    h.metrics,
		Payment: PaymentSettings{
			ReturnURL:   "http://localhost:5173/payment/result",
			ServerKey:   testServerKey,
			DepositRate: decimal.RequireFromString("0.5"),
			LockTTL:     5 * time.Second,
			LockWait:    50 * time.Millisecond,
		},
		Clock: h.clock,
	}

	h.appointments = NewAppointmentService(h.deps)
	h.payments = NewPaymentService(h.deps)
	h.cancelRequests = NewCancelRequestService(h.deps)
	h.refunds = NewRefundService(h.deps)
	h.revenue = NewRevenueService(h.deps, 30)
	return h
}

func actor(role string) entity.Actor {
	id := uuid.New()
	return entity.Actor{Id: &id, Role: role}
}

// clock ticks one second per read so history rows order deterministically.
func (h *harness) clock() time.Time {
	h.mu.Lock()
	defer h.mu.Unlock()
	t := h.now
	h.now = h.now.Add(time.Second)
	return t
}

func (h *harness) advance(d time.Duration) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.now = h.now.Add(d)
}

// book creates a pending appointment tomorrow: two units at 200000, default deposit.
func (h *harness) book(t *testing.T, mutate ...func(*dto.CreateAppointmentRequest)) *dto.AppointmentResponse {
	t.Helper()

	start := h.clock().Add(24 * time.Hour)
	doctorId := h.doctorId
	req := &dto.CreateAppointmentRequest{
		CustomerId:      *h.customer.Id,
		DoctorId:        &doctorId,
		AppointmentDate: start.Truncate(24 * time.Hour),
		StartTime:       start,
		EndTime:         start.Add(time.Hour),
		Details: []dto.AppointmentDetailRequest{
			{ServiceId: uuid.New(), Quantity: 2, Price: money.New(200000)},
		},
	}
	for _, m := range mutate {
		m(req)
	}

	res, err := h.appointments.Create(context.Background(), h.customer, req)
	require.NoError(t, err)
	return res
}

func (h *harness) confirmed(t *testing.T, mutate ...func(*dto.CreateAppointmentRequest)) uuid.UUID {
	t.Helper()
	appt := h.book(t, mutate...)
	_, err := h.appointments.Confirm(context.Background(), h.staff, appt.Id)
	require.NoError(t, err)
	return appt.Id
}

// deposited walks an appointment through the deposit checkout and its callback.
func (h *harness) deposited(t *testing.T, mutate ...func(*dto.CreateAppointmentRequest)) uuid.UUID {
	t.Helper()
	id := h.confirmed(t, mutate...)

	link, err := h.appointments.CreateDepositLink(context.Background(), h.customer, id, nil)
	require.NoError(t, err)
	h.gw.SetState(link.OrderCode, gateway.StatePaid)

	res, err := h.payments.Reconcile(context.Background(), link.OrderCode, OutcomeSuccess)
	require.NoError(t, err)
	require.True(t, res.Applied)
	return id
}

func (h *harness) completed(t *testing.T, mutate ...func(*dto.CreateAppointmentRequest)) uuid.UUID {
	t.Helper()
	id := h.deposited(t, mutate...)
	_, err := h.appointments.MarkCompleted(context.Background(), h.doctor, id)
	require.NoError(t, err)
	return id
}

func (h *harness) status(t *testing.T, id uuid.UUID) entity.AppointmentStatus {
	t.Helper()
	res, err := h.appointments.Get(context.Background(), id)
	require.NoError(t, err)
	return entity.AppointmentStatus(res.Status)
}

func (h *harness) invoices(t *testing.T, id uuid.UUID) []*entity.Invoice {
	t.Helper()
	uow := h.deps.UowFactory.NewUnitOfWork(context.Background())
	items, err := uow.InvoiceRepository().FindAll(context.Background(), specification.ByAppointment{AppointmentID: id})
	require.NoError(t, err)
	return items
}

func (h *harness) attempt(t *testing.T, orderCode string) *entity.PaymentAttempt {
	t.Helper()
	uow := h.deps.UowFactory.NewUnitOfWork(context.Background())
	a, err := uow.PaymentAttemptRepository().FindOne(context.Background(), specification.ByOrderCode{OrderCode: orderCode})
	require.NoError(t, err)
	require.NotNil(t, a)
	return a
}

func (h *harness) refundRecord(t *testing.T, id uuid.UUID) *entity.RefundRecord {
	t.Helper()
	uow := h.deps.UowFactory.NewUnitOfWork(context.Background())
	r, err := uow.RefundRepository().FindOne(context.Background(), specification.ByAppointment{AppointmentID: id})
	require.NoError(t, err)
	return r
}
