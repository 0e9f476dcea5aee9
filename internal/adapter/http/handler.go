package http

import (
	"errors"
	"net/http"

	"github.com/YelzhanWeb/dinehub/internal/adapter/logger"
	"github.com/YelzhanWeb/dinehub/internal/domain"
)

// base carries what every handler needs to report failures.
type base struct {
	logger logger.Logger
}

// fail logs unexpected errors and renders any error as JSON.
func (b base) fail(w http.ResponseWriter, r *http.Request, action string, err error) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		b.logger.Error(action, "Request failed", RequestIDFrom(r.Context()), map[string]any{"path": r.URL.Path}, err)
		respondError(w, "Internal server error", status, nil)
		return
	}

	var verr *domain.ValidationError
	if errors.As(err, &verr) {
		respondError(w, "Validation failed", status, verr.Fields)
		return
	}
	respondError(w, err.Error(), status, nil)
}

func (b base) badRequest(w http.ResponseWriter, message string, fields ...domain.FieldError) {
	respondError(w, message, http.StatusBadRequest, fields)
}
