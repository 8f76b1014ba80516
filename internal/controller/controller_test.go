package controller_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"spa-booking-be/internal/controller"
	"spa-booking-be/internal/entity"
	"spa-booking-be/internal/pkg/logger"
	"spa-booking-be/internal/pkg/serverutils"
	"spa-booking-be/internal/repository/unitofwork"
	"spa-booking-be/internal/service"
	"spa-booking-be/internal/testutil"
	"spa-booking-be/pkg/gateway"
	"spa-booking-be/pkg/locker"
	"spa-booking-be/pkg/metrics"
	"spa-booking-be/pkg/notify"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const secret = "test-secret"

type envelope struct {
	Success bool            `json:"success"`
	Code    int             `json:"code"`
	Message string          `json:"message"`
	Error   string          `json:"error"`
	Data    json.RawMessage `json:"data"`
}

type api struct {
	app *fiber.App
	gw  *gateway.Fake
}

func newAPI(t *testing.T) *api {
	t.Helper()

	gw := gateway.NewFake()
	deps := &service.Deps{
		UowFactory: unitofwork.NewRepositoryFactory(testutil.NewTestDB(t)),
		Gateway:    gw,
		Notifier:   notify.NewRecorder(),
		Locker:     locker.NewMemoryLocker(),
		Logger:     logger.NewNop(),
		Metrics:    metrics.NewMetrics("test", prometheus.NewRegistry()),
		Payment: service.PaymentSettings{
			ReturnURL:   "http://localhost:5173/payment/result",
			ServerKey:   "server-key",
			DepositRate: decimal.RequireFromString("0.3"),
			LockTTL:     time.Second,
			LockWait:    10 * time.Millisecond,
		},
	}

	app := fiber.New(fiber.Config{
		ErrorHandler: func(ctx *fiber.Ctx, err error) error {
			return serverutils.RenderError(ctx, nil, err)
		},
	})
	r := app.Group("/api")
	auth := serverutils.JwtMiddleware(secret)

	controller.NewPaymentController(service.NewPaymentService(deps), logger.NewNop()).RegisterRoutes(r)
	controller.NewAppointmentController(service.NewAppointmentService(deps)).RegisterRoutes(r, auth)
	controller.NewCancelRequestController(service.NewCancelRequestService(deps)).RegisterRoutes(r, auth)
	controller.NewRefundController(service.NewRefundService(deps)).RegisterRoutes(r, auth)
	controller.NewReportController(service.NewRevenueService(deps, 30)).RegisterRoutes(r, auth)

	return &api{app: app, gw: gw}
}

func token(t *testing.T, role string) string {
	t.Helper()
	claims := jwt.MapClaims{
		"user_id": uuid.NewString(),
		"role":    role,
		"exp":     time.Now().Add(time.Hour).Unix(),
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	require.NoError(t, err)
	return signed
}

func (a *api) call(t *testing.T, method, path, bearer string, body interface{}) (*http.Response, envelope) {
	t.Helper()

	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(b)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}

	resp, err := a.app.Test(req, -1)
	require.NoError(t, err)

	var env envelope
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	if len(raw) > 0 && resp.Header.Get("Content-Type") == fiber.MIMEApplicationJSON {
		require.NoError(t, json.Unmarshal(raw, &env))
	}
	return resp, env
}

func bookingBody() map[string]interface{} {
	start := time.Now().UTC().Add(48 * time.Hour).Truncate(time.Hour)
	return map[string]interface{}{
		"customerId":      uuid.NewString(),
		"appointmentDate": start.Format(time.RFC3339),
		"startTime":       start.Format(time.RFC3339),
		"endTime":         start.Add(time.Hour).Format(time.RFC3339),
		"details": []map[string]interface{}{
			{"serviceId": uuid.NewString(), "quantity": 1, "price": 500000},
		},
	}
}

func TestAppointmentRoutesRequireToken(t *testing.T) {
	a := newAPI(t)

	resp, env := a.call(t, http.MethodPost, "/api/appointments", "", bookingBody())
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.Equal(t, "Missing token", env.Message)

	resp, env = a.call(t, http.MethodPost, "/api/appointments", "not-a-jwt", bookingBody())
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.Equal(t, "Invalid token", env.Message)
}

func TestBookingFlowOverHTTP(t *testing.T) {
	a := newAPI(t)
	staff := token(t, entity.RoleStaff)

	resp, env := a.call(t, http.MethodPost, "/api/appointments", token(t, entity.RoleCustomer), bookingBody())
	require.Equal(t, http.StatusCreated, resp.StatusCode, env.Message)

	var created struct {
		Id            uuid.UUID `json:"id"`
		Status        string    `json:"status"`
		DepositAmount string    `json:"depositAmount"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &created))
	assert.Equal(t, string(entity.AppointmentStatusPending), created.Status)
	assert.Equal(t, "150000", created.DepositAmount)

	base := fmt.Sprintf("/api/appointments/%s", created.Id)

	resp, env = a.call(t, http.MethodPost, base+"/approve", staff, nil)
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	assert.Equal(t, "INVALID_TRANSITION", env.Error)

	resp, _ = a.call(t, http.MethodPost, base+"/confirm", staff, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp, env = a.call(t, http.MethodPost, base+"/deposit-link", token(t, entity.RoleCustomer), nil)
	require.Equal(t, http.StatusOK, resp.StatusCode, env.Message)
	var link struct {
		OrderCode   string `json:"orderCode"`
		CheckoutUrl string `json:"checkoutUrl"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &link))
	require.NotEmpty(t, link.OrderCode)

	// the browser redirect is only a hint until the gateway confirms
	resp, env = a.call(t, http.MethodGet, "/api/payment/return?orderCode="+link.OrderCode, "", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(env.Data), `"applied":false`)

	a.gw.SetState(link.OrderCode, gateway.StatePaid)
	resp, env = a.call(t, http.MethodPost, "/api/payment/reconcile", "", map[string]string{
		"orderCode": link.OrderCode,
		"status":    "SUCCESS",
	})
	require.Equal(t, http.StatusOK, resp.StatusCode, env.Message)
	assert.Contains(t, string(env.Data), `"appointmentStatus":"deposited"`)

	resp, env = a.call(t, http.MethodGet, base+"/history", staff, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var history []map[string]interface{}
	require.NoError(t, json.Unmarshal(env.Data, &history))
	assert.Len(t, history, 3)
}

func TestErrorRendering(t *testing.T) {
	a := newAPI(t)
	staff := token(t, entity.RoleStaff)

	t.Run("bad uuid", func(t *testing.T) {
		resp, env := a.call(t, http.MethodGet, "/api/appointments/nope", staff, nil)
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		assert.Equal(t, "VALIDATION_FAILED", env.Error)
		assert.False(t, env.Success)
	})

	t.Run("unknown appointment", func(t *testing.T) {
		resp, env := a.call(t, http.MethodGet, "/api/appointments/"+uuid.NewString(), staff, nil)
		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
		assert.Equal(t, "NOT_FOUND", env.Error)
	})

	t.Run("unknown order code", func(t *testing.T) {
		resp, env := a.call(t, http.MethodPost, "/api/payment/reconcile", "", map[string]string{
			"orderCode": "DEP-404",
			"status":    "success",
		})
		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
		assert.Equal(t, "ORDER_NOT_FOUND", env.Error)
		assert.Contains(t, env.Message, "contact support")
	})

	t.Run("missing body field", func(t *testing.T) {
		resp, env := a.call(t, http.MethodPost, "/api/appointments/"+uuid.NewString()+"/settle", staff, map[string]string{})
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		assert.Contains(t, env.Message, "Method")
	})

	t.Run("webhook with a forged signature", func(t *testing.T) {
		resp, _ := a.call(t, http.MethodPost, "/api/payment/webhook", "", map[string]string{
			"order_id":           "DEP-1",
			"status_code":        "200",
			"gross_amount":       "1000.00",
			"transaction_status": "settlement",
			"signature_key":      "forged",
		})
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})
}

func TestCashierRevenueReport(t *testing.T) {
	a := newAPI(t)
	manager := token(t, entity.RoleManager)

	resp, env := a.call(t, http.MethodGet, "/api/reports/cashier-revenue?from=2026-01-01&to=2026-01-31", manager, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var report struct {
		To            time.Time `json:"to"`
		CountInvoices int       `json:"countInvoices"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &report))
	assert.Zero(t, report.CountInvoices)
	assert.Equal(t, 31, report.To.Day())
	assert.Equal(t, 23, report.To.Hour())

	resp, env = a.call(t, http.MethodGet, "/api/reports/cashier-revenue?from=yesterday", manager, nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "VALIDATION_FAILED", env.Error)

	resp, _ = a.call(t, http.MethodGet, "/api/reports/cashier-revenue.xlsx", manager, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, resp.Header.Get(fiber.HeaderContentDisposition), "attachment")
	assert.Contains(t, resp.Header.Get(fiber.HeaderContentType), "spreadsheetml")
}

func TestCancelRequestAndRefundRoutes(t *testing.T) {
	a := newAPI(t)
	manager := token(t, entity.RoleManager)

	resp, env := a.call(t, http.MethodGet, "/api/cancel-requests?status=pending", manager, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assertEmptyList(t, env.Data)

	resp, env = a.call(t, http.MethodGet, "/api/refunds/pending", token(t, entity.RoleCashier), nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assertEmptyList(t, env.Data)

	resp, env = a.call(t, http.MethodPost, "/api/refunds", token(t, entity.RoleCashier), map[string]interface{}{
		"appointmentId": uuid.NewString(),
		"amount":        1000,
		"method":        "cheque",
	})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "VALIDATION_FAILED", env.Error)
}

// empty slices are dropped by the envelope's omitempty
func assertEmptyList(t *testing.T, data json.RawMessage) {
	t.Helper()
	if len(data) == 0 {
		return
	}
	var items []json.RawMessage
	require.NoError(t, json.Unmarshal(data, &items))
	assert.Empty(t, items)
}
