package domain

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrInvalidQuantity   = errors.New("quantity must be positive")
	ErrEmptyCart         = errors.New("cart is empty")
	ErrInvalidTransition = errors.New("invalid status transition")
	ErrNotFound          = errors.New("not found")
	ErrUnauthenticated   = errors.New("client identity required")
	ErrForbidden         = errors.New("operation not permitted for this role")
	ErrInvalidProfile    = errors.New("invalid profile")
	ErrOutletClosed      = errors.New("outlet is not accepting orders")

	// ErrConcurrentUpdate is returned by repositories when the stored order
	// version no longer matches the one the caller loaded.
	ErrConcurrentUpdate = fmt.Errorf("%w: order was modified concurrently", ErrInvalidTransition)
)

// TransitionError describes a rejected lifecycle change.
type TransitionError struct {
	From  Status
	To    Status
	Stale bool
}

func (e *TransitionError) Error() string {
	if e.Stale {
		return fmt.Sprintf("cannot move order from %s to %s: order state changed concurrently", e.From, e.To)
	}
	return fmt.Sprintf("cannot move order from %s to %s", e.From, e.To)
}

func (e *TransitionError) Unwrap() error {
	return ErrInvalidTransition
}

// FieldError is a single failed profile field.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationError collects every failing field of a submitted payload.
type ValidationError struct {
	Fields []FieldError
}

func (e *ValidationError) Error() string {
	parts := make([]string, len(e.Fields))
	for i, f := range e.Fields {
		parts[i] = f.Field + ": " + f.Message
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

func (e *ValidationError) Unwrap() error {
	return ErrInvalidProfile
}
