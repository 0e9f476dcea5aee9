package interfaces

import (
	"context"

	"github.com/YelzhanWeb/dinehub/internal/domain"
)

// OrderFilter narrows a listing. Empty fields match everything.
type OrderFilter struct {
	OutletID   string
	ClientID   string
	ActiveOnly bool
	Limit      int
}

// Интерфейсы Репозиториев (Adapter/Postgres, Adapter/NATS KV, Adapter/Memory)
type OrderRepository interface {
	// Create stores a new order, sets its Version and logs its initial status.
	Create(ctx context.Context, order *domain.Order) error
	FindByID(ctx context.Context, id string) (*domain.Order, error)
	FindByNumber(ctx context.Context, number string) (*domain.Order, error)
	// Update persists order only if the stored version still equals
	// expectedVersion, otherwise it returns domain.ErrConcurrentUpdate.
	// A non-nil entry is appended to the status history in the same write.
	Update(ctx context.Context, order *domain.Order, expectedVersion int, entry *domain.StatusLog) error
	List(ctx context.Context, filter OrderFilter) ([]*domain.Order, error)
	CountActive(ctx context.Context, outletID string) (int, error)
	GetStatusHistory(ctx context.Context, orderID string) ([]*domain.StatusLog, error)
}

// SequenceGenerator issues order numbers and per-outlet token numbers.
type SequenceGenerator interface {
	Next(ctx context.Context, outletID string) (domain.Ticket, error)
}

// WaitTimeEstimator decides the ETA in minutes for a new order at outletID.
type WaitTimeEstimator interface {
	Estimate(ctx context.Context, outletID string) (int, error)
}

// SessionStore owns client sessions. Update runs fn with exclusive access
// to the session, creating a guest session when id is unknown.
type SessionStore interface {
	Get(ctx context.Context, id string) (*domain.Session, error)
	Update(ctx context.Context, id string, fn func(s *domain.Session) error) error
}

// OutletDirectory resolves outlets and their menus. Missing ids yield false.
type OutletDirectory interface {
	FindOutlet(id string) (domain.Outlet, bool)
	FindMenuItem(id string) (domain.MenuItem, bool)
	List() []domain.Outlet
}
