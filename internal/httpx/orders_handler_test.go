package httpx

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/anatechlabs/sample-portal/internal/orders"
	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeCreator struct {
	key orders.OrderKey
	err error
}

func (f *fakeCreator) CreateOrder(context.Context, *orders.Submission) (orders.OrderKey, error) {
	if f.err != nil {
		return orders.OrderKey{}, f.err
	}
	return f.key, nil
}

type fakeTransitioner struct {
	res orders.TransitionResult
	err error
}

func (f *fakeTransitioner) TransitionStatus(context.Context, int64, orders.Status, string) (orders.TransitionResult, error) {
	if f.err != nil {
		return orders.TransitionResult{}, f.err
	}
	return f.res, nil
}

type fakeReader struct {
	detail *orders.OrderDetail
	err    error
}

func (f *fakeReader) GetOrder(context.Context, int64) (*orders.OrderDetail, error) {
	return f.detail, f.err
}

func (f *fakeReader) GetOrderStatus(context.Context, int64) (orders.Status, error) {
	if f.err != nil {
		return "", f.err
	}
	return f.detail.Order.Status, nil
}

type fakeSessions map[string]string

func (f fakeSessions) Actor(_ context.Context, token string) (string, error) {
	return f[token], nil
}

func newTestRouter(creator *fakeCreator, trans *fakeTransitioner, reader *fakeReader) *chi.Mux {
	log := zap.NewNop()
	oh := &OrdersHandler{
		Submissions: &orders.SubmissionService{Store: creator, Prefix: "ANA", Log: log},
		Transitions: &orders.TransitionService{Store: trans, Prefix: "ANA", Log: log},
		Reader:      reader,
		Sessions:    fakeSessions{"tok-1": "admin"},
		Prefix:      "ANA",
		Log:         log,
	}
	r := NewRouter()
	oh.Register(r)
	return r
}

func doJSON(t *testing.T, r http.Handler, method, path string, body any, authed bool) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	if authed {
		req.Header.Set("Authorization", "Bearer tok-1")
	}
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	var out map[string]any
	if rec.Body.Len() > 0 {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	}
	return rec, out
}

func submitBody() map[string]any {
	return map[string]any{
		"fullName": "Priya Raman",
		"email":    "priya@example.com",
		"services": []map[string]any{
			{"service": "A", "quantity": 2, "price": 500},
			{"service": "B", "quantity": 1, "price": 300},
		},
		"subtotal":   1300,
		"gst":        234,
		"finalTotal": 1534,
	}
}

func TestSubmitOrderOK(t *testing.T) {
	created := time.Date(2025, time.February, 3, 10, 0, 0, 0, time.UTC)
	r := newTestRouter(&fakeCreator{key: orders.OrderKey{ID: 9, CreatedAt: created}}, &fakeTransitioner{}, &fakeReader{})

	rec, out := doJSON(t, r, http.MethodPost, "/submit-order", submitBody(), false)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, true, out["ok"])
	assert.Equal(t, "ANA-2025-9", out["orderId"])
}

func TestSubmitOrderValidationError(t *testing.T) {
	r := newTestRouter(&fakeCreator{}, &fakeTransitioner{}, &fakeReader{})

	body := submitBody()
	body["finalTotal"] = 9999
	rec, out := doJSON(t, r, http.MethodPost, "/submit-order", body, false)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, false, out["ok"])
}

func TestSubmitOrderTransactionFailure(t *testing.T) {
	r := newTestRouter(&fakeCreator{err: errors.New("pq: deadlock detected")}, &fakeTransitioner{}, &fakeReader{})

	rec, out := doJSON(t, r, http.MethodPost, "/submit-order", submitBody(), false)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, false, out["ok"])
	// internal detail stays server-side
	assert.Equal(t, "Transaction failed, please retry", out["error"])
}

func TestUpdateStatusRequiresSession(t *testing.T) {
	r := newTestRouter(&fakeCreator{}, &fakeTransitioner{}, &fakeReader{})

	rec, _ := doJSON(t, r, http.MethodPost, "/update-order-status",
		map[string]any{"orderId": 1, "newStatus": "Confirmed"}, false)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestUpdateStatusInvalidValue(t *testing.T) {
	r := newTestRouter(&fakeCreator{}, &fakeTransitioner{}, &fakeReader{})

	rec, _ := doJSON(t, r, http.MethodPost, "/update-order-status",
		map[string]any{"orderId": 1, "newStatus": "Shipped"}, true)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestUpdateStatusNotFound(t *testing.T) {
	r := newTestRouter(&fakeCreator{}, &fakeTransitioner{err: orders.ErrNotFound}, &fakeReader{})

	rec, out := doJSON(t, r, http.MethodPost, "/update-order-status",
		map[string]any{"orderId": 404, "newStatus": "Confirmed"}, true)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "Order not found", out["error"])
}

func TestUpdateStatusNoOp(t *testing.T) {
	trans := &fakeTransitioner{res: orders.TransitionResult{Changed: false, OldStatus: orders.StatusConfirmed}}
	r := newTestRouter(&fakeCreator{}, trans, &fakeReader{})

	rec, out := doJSON(t, r, http.MethodPost, "/update-order-status",
		map[string]any{"orderId": 2, "newStatus": "Confirmed"}, true)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, true, out["ok"])
	assert.Equal(t, "No status change detected.", out["message"])
}

func TestUpdateStatusChanged(t *testing.T) {
	trans := &fakeTransitioner{res: orders.TransitionResult{Changed: true, OldStatus: orders.StatusPending}}
	r := newTestRouter(&fakeCreator{}, trans, &fakeReader{})

	rec, out := doJSON(t, r, http.MethodPost, "/update-order-status",
		map[string]any{"orderId": 2, "newStatus": "Confirmed"}, true)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, true, out["ok"])
	_, hasMsg := out["message"]
	assert.False(t, hasMsg)
}

func TestUpdateStatusTransactionFailure(t *testing.T) {
	r := newTestRouter(&fakeCreator{}, &fakeTransitioner{err: errors.New("connection reset")}, &fakeReader{})

	rec, out := doJSON(t, r, http.MethodPost, "/update-order-status",
		map[string]any{"orderId": 2, "newStatus": "Confirmed"}, true)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "Transaction failed", out["error"])
}

func TestGetOrder(t *testing.T) {
	created := time.Date(2025, time.February, 3, 10, 0, 0, 0, time.UTC)
	reader := &fakeReader{detail: &orders.OrderDetail{
		Order: orders.Order{
			ID: 9, CustomerName: "Priya Raman", CustomerEmail: "priya@example.com",
			Status: orders.StatusPending, PaymentStatus: "success",
			Subtotal: 1300, GST: 234, TotalAmount: 1534, CreatedAt: created,
		},
		Items: []orders.LineItem{
			{ServiceName: "A", Quantity: 2, Price: 500, LineTotal: 1000},
			{ServiceName: "B", Quantity: 1, Price: 300, LineTotal: 300},
		},
		Payment: &orders.Payment{Amount: 1534},
	}}
	r := newTestRouter(&fakeCreator{}, &fakeTransitioner{}, reader)

	rec, out := doJSON(t, r, http.MethodGet, "/orders/9", nil, false)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ANA-2025-9", out["orderId"])
	assert.Equal(t, 1534.0, out["finalTotal"])
	assert.Equal(t, 1534.0, out["paymentAmount"])
	items, ok := out["items"].([]any)
	require.True(t, ok)
	assert.Len(t, items, 2)
}

func TestGetOrderNotFound(t *testing.T) {
	r := newTestRouter(&fakeCreator{}, &fakeTransitioner{}, &fakeReader{err: orders.ErrNotFound})

	rec, _ := doJSON(t, r, http.MethodGet, "/orders/12345", nil, false)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
