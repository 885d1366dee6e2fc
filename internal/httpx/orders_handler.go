package httpx

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/anatechlabs/sample-portal/internal/notify"
	"github.com/anatechlabs/sample-portal/internal/orders"
	"github.com/anatechlabs/sample-portal/internal/redisx"
	"github.com/go-chi/chi/v5"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// OrderReader serves the portal's order detail view.
type OrderReader interface {
	GetOrder(ctx context.Context, orderID int64) (*orders.OrderDetail, error)
	GetOrderStatus(ctx context.Context, orderID int64) (orders.Status, error)
}

type OrdersHandler struct {
	Submissions *orders.SubmissionService
	Transitions *orders.TransitionService
	Reader      OrderReader
	Sessions    SessionStore
	Redis       *redis.Client
	Prefix      string
	Log         *zap.Logger
}

type updateStatusReq struct {
	OrderID   int64  `json:"orderId"`
	NewStatus string `json:"newStatus"`
}

type orderItemResp struct {
	Service   string  `json:"service"`
	Quantity  int     `json:"quantity"`
	Price     float64 `json:"price"`
	LineTotal float64 `json:"lineTotal"`
}

type orderResp struct {
	OrderID       string          `json:"orderId"`
	CustomerName  string          `json:"customerName"`
	CustomerEmail string          `json:"customerEmail"`
	CompanyName   string          `json:"companyName,omitempty"`
	Status        string          `json:"status"`
	PaymentStatus string          `json:"paymentStatus"`
	Subtotal      float64         `json:"subtotal"`
	GST           float64         `json:"gst"`
	FinalTotal    float64         `json:"finalTotal"`
	Items         []orderItemResp `json:"items"`
	PaymentAmount float64         `json:"paymentAmount,omitempty"`
	CreatedAt     time.Time       `json:"createdAt"`
}

func (h *OrdersHandler) Register(r *chi.Mux) {
	r.Post("/submit-order", h.submitOrder)
	r.Group(func(gr chi.Router) {
		gr.Use(RequireSession(h.Sessions))
		gr.Post("/update-order-status", h.updateOrderStatus)
	})
	r.Get("/orders/{id}", h.getOrder)
	r.Get("/orders/{id}/status", h.getOrderStatus)
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func (h *OrdersHandler) submitOrder(w http.ResponseWriter, r *http.Request) {
	var sub orders.Submission
	if err := json.NewDecoder(r.Body).Decode(&sub); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]any{"ok": false, "error": "invalid json"})
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	res, hooks, err := h.Submissions.Submit(ctx, &sub)
	if err != nil {
		if errors.Is(err, orders.ErrInvalidSubmission) {
			writeJSON(w, http.StatusBadRequest, map[string]any{"ok": false, "error": err.Error()})
			return
		}
		// rolled back; no order was created
		h.Log.Error("order submission failed", zap.Error(err))
		writeJSON(w, http.StatusInternalServerError, map[string]any{"ok": false, "error": "Transaction failed, please retry"})
		return
	}

	// emails, event, and cache only fire after the commit above
	notify.Go(hooks)

	writeJSON(w, http.StatusOK, map[string]any{"ok": true, "orderId": res.DisplayID})
}

func (h *OrdersHandler) updateOrderStatus(w http.ResponseWriter, r *http.Request) {
	var req updateStatusReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]any{"ok": false, "error": "invalid json"})
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	res, hooks, err := h.Transitions.ChangeStatus(ctx, orders.ChangeInput{
		OrderID:   req.OrderID,
		NewStatus: req.NewStatus,
		Actor:     ActorFrom(r.Context()),
	})
	switch {
	case errors.Is(err, orders.ErrUnauthorized):
		writeJSON(w, http.StatusUnauthorized, map[string]any{"ok": false, "error": "authentication required"})
		return
	case errors.Is(err, orders.ErrMissingField), errors.Is(err, orders.ErrInvalidStatus):
		writeJSON(w, http.StatusBadRequest, map[string]any{"ok": false, "error": err.Error()})
		return
	case errors.Is(err, orders.ErrNotFound):
		writeJSON(w, http.StatusNotFound, map[string]any{"ok": false, "error": "Order not found"})
		return
	case err != nil:
		h.Log.Error("status change failed", zap.Int64("order_id", req.OrderID), zap.Error(err))
		writeJSON(w, http.StatusInternalServerError, map[string]any{"ok": false, "error": "Transaction failed"})
		return
	}

	notify.Go(hooks)

	if !res.Changed {
		writeJSON(w, http.StatusOK, map[string]any{"ok": true, "message": "No status change detected."})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"ok": true})
}

func (h *OrdersHandler) getOrder(w http.ResponseWriter, r *http.Request) {
	orderID, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || orderID <= 0 {
		writeJSON(w, http.StatusBadRequest, map[string]any{"ok": false, "error": "invalid id"})
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	d, err := h.Reader.GetOrder(ctx, orderID)
	if errors.Is(err, orders.ErrNotFound) {
		writeJSON(w, http.StatusNotFound, map[string]any{"ok": false, "error": "Order not found"})
		return
	}
	if err != nil {
		h.Log.Error("order fetch failed", zap.Int64("order_id", orderID), zap.Error(err))
		writeJSON(w, http.StatusInternalServerError, map[string]any{"ok": false, "error": "internal error"})
		return
	}

	resp := orderResp{
		OrderID:       orders.DisplayID(h.Prefix, d.Order.CreatedAt, d.Order.ID),
		CustomerName:  d.Order.CustomerName,
		CustomerEmail: d.Order.CustomerEmail,
		CompanyName:   d.Order.CompanyName,
		Status:        string(d.Order.Status),
		PaymentStatus: d.Order.PaymentStatus,
		Subtotal:      d.Order.Subtotal,
		GST:           d.Order.GST,
		FinalTotal:    d.Order.TotalAmount,
		CreatedAt:     d.Order.CreatedAt,
	}
	for _, it := range d.Items {
		resp.Items = append(resp.Items, orderItemResp{
			Service: it.ServiceName, Quantity: it.Quantity, Price: it.Price, LineTotal: it.LineTotal,
		})
	}
	if d.Payment != nil {
		resp.PaymentAmount = d.Payment.Amount
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *OrdersHandler) getOrderStatus(w http.ResponseWriter, r *http.Request) {
	orderID, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || orderID <= 0 {
		writeJSON(w, http.StatusBadRequest, map[string]any{"ok": false, "error": "invalid id"})
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	// cache first, DB on miss
	key := fmt.Sprintf(redisx.KeyOrderStatus, orderID)
	if h.Redis != nil {
		if s, err := h.Redis.Get(ctx, key).Result(); err == nil && s != "" {
			writeJSON(w, http.StatusOK, map[string]any{"status": s})
			return
		}
	}

	status, err := h.Reader.GetOrderStatus(ctx, orderID)
	if errors.Is(err, orders.ErrNotFound) {
		writeJSON(w, http.StatusNotFound, map[string]any{"ok": false, "error": "Order not found"})
		return
	}
	if err != nil {
		h.Log.Error("status fetch failed", zap.Int64("order_id", orderID), zap.Error(err))
		writeJSON(w, http.StatusInternalServerError, map[string]any{"ok": false, "error": "internal error"})
		return
	}
	if h.Redis != nil {
		_ = h.Redis.Set(ctx, key, string(status), redisx.TTLStatusCache).Err()
	}
	writeJSON(w, http.StatusOK, map[string]any{"status": string(status)})
}
