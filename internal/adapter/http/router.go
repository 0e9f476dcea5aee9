package http

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/YelzhanWeb/dinehub/internal/adapter/auth"
	"github.com/YelzhanWeb/dinehub/internal/adapter/logger"
	"github.com/YelzhanWeb/dinehub/internal/interfaces"
)

// Pinger reports whether a backing store is reachable.
type Pinger func(ctx context.Context) error

type RouterDeps struct {
	Cart     interfaces.CartService
	Orders   interfaces.OrderService
	Tracking interfaces.TrackingService
	Outlets  interfaces.OutletDirectory
	Sessions interfaces.SessionStore
	Tokens   *auth.Tokens
	Metrics  http.Handler
	Health   Pinger
	Logger   logger.Logger
}

func NewRouter(d RouterDeps) http.Handler {
	r := chi.NewRouter()
	r.Use(RequestIDMiddleware)
	r.Use(RecoveryMiddleware(d.Logger))
	r.Use(LoggingMiddleware(d.Logger))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		if d.Health != nil {
			if err := d.Health(r.Context()); err != nil {
				respondJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable", "error": err.Error()})
				return
			}
		}
		respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	if d.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", d.Metrics)
	}

	NewOutletHandler(d.Outlets, d.Logger).RegisterRoutes(r)

	r.Group(func(r chi.Router) {
		r.Use(SessionMiddleware(d.Sessions, d.Tokens, d.Logger))
		NewCartHandler(d.Cart, d.Orders, d.Logger).RegisterRoutes(r)
		NewOrderHandler(d.Orders, d.Tracking, d.Logger).RegisterRoutes(r)
	})

	return r
}
