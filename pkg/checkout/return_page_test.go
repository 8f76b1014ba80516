package checkout

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func reconcileServer(t *testing.T, hits *int32, seen *map[string]string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(hits, 1)
		assert.Equal(t, "/api/payment/reconcile", r.URL.Path)

		body := map[string]string{}
		_ = json.NewDecoder(r.Body).Decode(&body)
		*seen = body

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"success":true,"message":"Payment reconciled","data":{"appointmentStatus":"deposited","duplicateCallback":false}}`))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestConfirmCallsReconcileOnce(t *testing.T) {
	var hits int32
	var seen map[string]string
	srv := reconcileServer(t, &hits, &seen)

	page, err := NewReturnPage(srv.URL, "?orderCode=DEP-1")
	require.NoError(t, err)

	var wg sync.WaitGroup
	for i := 0; i < 5; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			res, err := page.Confirm()
			assert.NoError(t, err)
			assert.True(t, res.Success)
		}()
	}
	wg.Wait()

	res, err := page.Confirm()
	require.NoError(t, err)
	assert.Equal(t, "deposited", res.AppointmentStatus)
	assert.Equal(t, http.StatusOK, res.HTTPStatus)

	assert.Equal(t, int32(1), atomic.LoadInt32(&hits))
	assert.Equal(t, 1, page.Calls())
	assert.Equal(t, "DEP-1", seen["orderCode"])
	assert.Equal(t, OutcomeSuccess, seen["status"])
}

func TestCancelledQuery(t *testing.T) {
	var hits int32
	var seen map[string]string
	srv := reconcileServer(t, &hits, &seen)

	page, err := NewReturnPage(srv.URL+"/", "orderCode=FIN-9&status=CANCELLED")
	require.NoError(t, err)
	assert.Equal(t, OutcomeCancelled, page.Outcome())

	_, err = page.Confirm()
	require.NoError(t, err)
	assert.Equal(t, OutcomeCancelled, seen["status"])
}

func TestMissingOrderCode(t *testing.T) {
	_, err := NewReturnPage("http://localhost", "status=CANCELLED")
	assert.ErrorIs(t, err, ErrMissingOrderCode)
}

func TestMalformedDataIsAnError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"success":true,"message":"Payment reconciled","data":"deposited"}`))
	}))
	t.Cleanup(srv.Close)

	page, err := NewReturnPage(srv.URL, "orderCode=DEP-2")
	require.NoError(t, err)

	res, err := page.Confirm()
	assert.Nil(t, res)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "decode reconcile data")

	// the latch keeps the failure too
	_, again := page.Confirm()
	assert.Equal(t, err, again)
	assert.Equal(t, 1, page.Calls())
}
