package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/YelzhanWeb/dinehub/internal/domain"
)

type ErrorResponse struct {
	Error  string              `json:"error"`
	Errors []domain.FieldError `json:"errors,omitempty"`
}

func respondJSON(w http.ResponseWriter, statusCode int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(body)
}

func respondError(w http.ResponseWriter, message string, statusCode int, fields []domain.FieldError) {
	respondJSON(w, statusCode, ErrorResponse{Error: message, Errors: fields})
}

// statusFor maps domain errors onto HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, domain.ErrInvalidQuantity), errors.Is(err, domain.ErrInvalidProfile):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrUnauthenticated):
		return http.StatusUnauthorized
	case errors.Is(err, domain.ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrInvalidTransition):
		return http.StatusConflict
	case errors.Is(err, domain.ErrEmptyCart), errors.Is(err, domain.ErrOutletClosed):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

func decodeJSON(r *http.Request, dst any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	return dec.Decode(dst)
}
