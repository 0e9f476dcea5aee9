package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/YelzhanWeb/dinehub/internal/adapter/logger"
	"github.com/YelzhanWeb/dinehub/internal/domain"
	"github.com/YelzhanWeb/dinehub/internal/interfaces"
)

type CartHandler struct {
	base
	cart   interfaces.CartService
	orders interfaces.OrderService
}

func NewCartHandler(cart interfaces.CartService, orders interfaces.OrderService, logger logger.Logger) *CartHandler {
	return &CartHandler{base: base{logger: logger}, cart: cart, orders: orders}
}

func (h *CartHandler) RegisterRoutes(r chi.Router) {
	r.Get("/cart", h.View)
	r.Post("/cart/items", h.AddItem)
	r.Put("/cart/items/{itemID}", h.SetQuantity)
	r.Delete("/cart/items/{itemID}", h.RemoveItem)
	r.Post("/cart/checkout", h.Checkout)
	r.Put("/profile", h.SaveProfile)
}

type AddItemRequest struct {
	MenuItemID string `json:"menu_item_id"`
	Quantity   *int   `json:"quantity,omitempty"`
}

type SetQuantityRequest struct {
	Quantity *int `json:"quantity"`
}

type CheckoutRequest struct {
	OutletID string `json:"outlet_id"`
}

func (h *CartHandler) View(w http.ResponseWriter, r *http.Request) {
	view, err := h.cart.View(r.Context(), sessionFrom(r.Context()).ID)
	if err != nil {
		h.fail(w, r, "cart_view_failed", err)
		return
	}
	respondJSON(w, http.StatusOK, view)
}

func (h *CartHandler) AddItem(w http.ResponseWriter, r *http.Request) {
	var req AddItemRequest
	if err := decodeJSON(r, &req); err != nil {
		h.badRequest(w, "Invalid request body")
		return
	}
	if req.MenuItemID == "" {
		h.badRequest(w, "Validation failed", domain.FieldError{Field: "menu_item_id", Message: "is required"})
		return
	}

	quantity := 1
	if req.Quantity != nil {
		quantity = *req.Quantity
	}

	view, err := h.cart.AddItem(r.Context(), sessionFrom(r.Context()).ID, req.MenuItemID, quantity)
	if err != nil {
		h.fail(w, r, "cart_add_failed", err)
		return
	}
	respondJSON(w, http.StatusOK, view)
}

func (h *CartHandler) SetQuantity(w http.ResponseWriter, r *http.Request) {
	var req SetQuantityRequest
	if err := decodeJSON(r, &req); err != nil {
		h.badRequest(w, "Invalid request body")
		return
	}
	if req.Quantity == nil {
		h.badRequest(w, "Validation failed", domain.FieldError{Field: "quantity", Message: "is required"})
		return
	}

	view, err := h.cart.SetQuantity(r.Context(), sessionFrom(r.Context()).ID, chi.URLParam(r, "itemID"), *req.Quantity)
	if err != nil {
		h.fail(w, r, "cart_update_failed", err)
		return
	}
	respondJSON(w, http.StatusOK, view)
}

func (h *CartHandler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	view, err := h.cart.RemoveItem(r.Context(), sessionFrom(r.Context()).ID, chi.URLParam(r, "itemID"))
	if err != nil {
		h.fail(w, r, "cart_remove_failed", err)
		return
	}
	respondJSON(w, http.StatusOK, view)
}

func (h *CartHandler) Checkout(w http.ResponseWriter, r *http.Request) {
	var req CheckoutRequest
	if err := decodeJSON(r, &req); err != nil {
		h.badRequest(w, "Invalid request body")
		return
	}
	if req.OutletID == "" {
		h.badRequest(w, "Validation failed", domain.FieldError{Field: "outlet_id", Message: "is required"})
		return
	}

	order, err := h.orders.Checkout(r.Context(), sessionFrom(r.Context()).ID, req.OutletID)
	if err != nil {
		h.fail(w, r, "checkout_failed", err)
		return
	}
	respondJSON(w, http.StatusCreated, toOrderResponse(order))
}

func (h *CartHandler) SaveProfile(w http.ResponseWriter, r *http.Request) {
	var req domain.Profile
	if err := decodeJSON(r, &req); err != nil {
		h.badRequest(w, "Invalid request body")
		return
	}

	saved, err := h.cart.SaveProfile(r.Context(), sessionFrom(r.Context()).ID, req)
	if err != nil {
		h.fail(w, r, "profile_save_failed", err)
		return
	}
	respondJSON(w, http.StatusOK, saved)
}
