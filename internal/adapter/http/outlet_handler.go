package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/YelzhanWeb/dinehub/internal/adapter/logger"
	"github.com/YelzhanWeb/dinehub/internal/interfaces"
)

type OutletHandler struct {
	base
	outlets interfaces.OutletDirectory
}

func NewOutletHandler(outlets interfaces.OutletDirectory, logger logger.Logger) *OutletHandler {
	return &OutletHandler{base: base{logger: logger}, outlets: outlets}
}

func (h *OutletHandler) RegisterRoutes(r chi.Router) {
	r.Get("/outlets", h.List)
	r.Get("/outlets/{outletID}", h.Get)
}

func (h *OutletHandler) List(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, h.outlets.List())
}

func (h *OutletHandler) Get(w http.ResponseWriter, r *http.Request) {
	o, ok := h.outlets.FindOutlet(chi.URLParam(r, "outletID"))
	if !ok {
		respondError(w, "Outlet not found", http.StatusNotFound, nil)
		return
	}
	respondJSON(w, http.StatusOK, o)
}
