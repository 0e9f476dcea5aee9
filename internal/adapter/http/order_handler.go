package http

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/YelzhanWeb/dinehub/internal/adapter/logger"
	"github.com/YelzhanWeb/dinehub/internal/domain"
	"github.com/YelzhanWeb/dinehub/internal/interfaces"
)

type OrderHandler struct {
	base
	orders   interfaces.OrderService
	tracking interfaces.TrackingService
}

func NewOrderHandler(orders interfaces.OrderService, tracking interfaces.TrackingService, logger logger.Logger) *OrderHandler {
	return &OrderHandler{base: base{logger: logger}, orders: orders, tracking: tracking}
}

func (h *OrderHandler) RegisterRoutes(r chi.Router) {
	r.Get("/orders", h.List)
	r.Get("/orders/{orderID}", h.Get)
	r.Get("/orders/{orderID}/history", h.History)
	r.Post("/orders/{orderID}/status", h.Transition)
	r.Put("/orders/{orderID}/eta", h.UpdateETA)
}

type OrderResponse struct {
	ID                   string             `json:"id"`
	OrderNumber          string             `json:"order_number"`
	TokenNumber          int                `json:"token_number"`
	OutletID             string             `json:"outlet_id"`
	Status               domain.Status      `json:"status"`
	Items                []domain.OrderItem `json:"items"`
	TotalAmount          domain.Money       `json:"total_amount_inr"`
	EstimatedWaitMinutes int                `json:"estimated_wait_minutes"`
	CreatedAt            time.Time          `json:"created_at"`
	UpdatedAt            time.Time          `json:"updated_at"`
}

type TransitionRequest struct {
	Status string `json:"status"`
}

type UpdateETARequest struct {
	Minutes *int `json:"minutes"`
}

type UpdateETAResponse struct {
	Applied bool          `json:"applied"`
	Order   OrderResponse `json:"order"`
}

func toOrderResponse(o *domain.Order) OrderResponse {
	return OrderResponse{
		ID:                   o.ID,
		OrderNumber:          o.Number,
		TokenNumber:          o.TokenNumber,
		OutletID:             o.OutletID,
		Status:               o.Status,
		Items:                o.Items,
		TotalAmount:          o.TotalAmount,
		EstimatedWaitMinutes: o.EstimatedWaitMinutes,
		CreatedAt:            o.CreatedAt,
		UpdatedAt:            o.UpdatedAt,
	}
}

func (h *OrderHandler) List(w http.ResponseWriter, r *http.Request) {
	q := interfaces.OrderQuery{
		OutletID: r.URL.Query().Get("outlet_id"),
	}
	if raw := r.URL.Query().Get("active"); raw != "" {
		active, err := strconv.ParseBool(raw)
		if err != nil {
			h.badRequest(w, "Validation failed", domain.FieldError{Field: "active", Message: "must be true or false"})
			return
		}
		q.ActiveOnly = active
	}
	if raw := r.URL.Query().Get("limit"); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil || limit < 1 {
			h.badRequest(w, "Validation failed", domain.FieldError{Field: "limit", Message: "must be a positive integer"})
			return
		}
		q.Limit = limit
	}

	list, err := h.tracking.ListOrders(r.Context(), sessionFrom(r.Context()), q)
	if err != nil {
		h.fail(w, r, "orders_list_failed", err)
		return
	}
	respondJSON(w, http.StatusOK, list)
}

func (h *OrderHandler) Get(w http.ResponseWriter, r *http.Request) {
	m, err := h.tracking.GetOrder(r.Context(), sessionFrom(r.Context()), chi.URLParam(r, "orderID"))
	if err != nil {
		h.fail(w, r, "order_get_failed", err)
		return
	}
	respondJSON(w, http.StatusOK, m)
}

func (h *OrderHandler) History(w http.ResponseWriter, r *http.Request) {
	history, err := h.tracking.GetOrderHistory(r.Context(), sessionFrom(r.Context()), chi.URLParam(r, "orderID"))
	if err != nil {
		h.fail(w, r, "order_history_failed", err)
		return
	}
	respondJSON(w, http.StatusOK, history)
}

func (h *OrderHandler) Transition(w http.ResponseWriter, r *http.Request) {
	var req TransitionRequest
	if err := decodeJSON(r, &req); err != nil {
		h.badRequest(w, "Invalid request body")
		return
	}
	target, ok := domain.ParseStatus(req.Status)
	if !ok {
		h.badRequest(w, "Validation failed", domain.FieldError{Field: "status", Message: "is not a known order status"})
		return
	}

	order, err := h.orders.Transition(r.Context(), sessionFrom(r.Context()), interfaces.TransitionCommand{
		OrderID: chi.URLParam(r, "orderID"),
		Target:  target,
	})
	if err != nil {
		h.fail(w, r, "transition_failed", err)
		return
	}
	respondJSON(w, http.StatusOK, toOrderResponse(order))
}

func (h *OrderHandler) UpdateETA(w http.ResponseWriter, r *http.Request) {
	var req UpdateETARequest
	if err := decodeJSON(r, &req); err != nil {
		h.badRequest(w, "Invalid request body")
		return
	}
	if req.Minutes == nil || *req.Minutes < 0 {
		h.badRequest(w, "Validation failed", domain.FieldError{Field: "minutes", Message: "must be zero or more"})
		return
	}

	order, applied, err := h.orders.UpdateEstimatedWait(r.Context(), sessionFrom(r.Context()), chi.URLParam(r, "orderID"), *req.Minutes)
	if err != nil {
		h.fail(w, r, "eta_update_failed", err)
		return
	}
	respondJSON(w, http.StatusOK, UpdateETAResponse{Applied: applied, Order: toOrderResponse(order)})
}
