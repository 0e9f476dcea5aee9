// Package memory keeps orders, counters and sessions in process memory.
// It is the default store and the one tests run against.
package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/YelzhanWeb/dinehub/internal/domain"
	"github.com/YelzhanWeb/dinehub/internal/interfaces"
)

type orderRepository struct {
	mu       sync.RWMutex
	orders   map[string]*domain.Order
	byNumber map[string]string
	history  map[string][]*domain.StatusLog
}

func NewOrderRepository() interfaces.OrderRepository {
	return &orderRepository{
		orders:   make(map[string]*domain.Order),
		byNumber: make(map[string]string),
		history:  make(map[string][]*domain.StatusLog),
	}
}

func (r *orderRepository) Create(ctx context.Context, order *domain.Order) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.orders[order.ID]; exists {
		return domain.ErrConcurrentUpdate
	}

	order.Version = 1
	r.orders[order.ID] = order.Clone()
	r.byNumber[order.Number] = order.ID
	r.history[order.ID] = []*domain.StatusLog{{
		OrderID:   order.ID,
		Status:    order.Status,
		ChangedBy: order.ClientID,
		ChangedAt: order.CreatedAt,
	}}
	return nil
}

func (r *orderRepository) FindByID(ctx context.Context, id string) (*domain.Order, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	o, ok := r.orders[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return o.Clone(), nil
}

func (r *orderRepository) FindByNumber(ctx context.Context, number string) (*domain.Order, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	id, ok := r.byNumber[number]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return r.orders[id].Clone(), nil
}

func (r *orderRepository) Update(ctx context.Context, order *domain.Order, expectedVersion int, entry *domain.StatusLog) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	stored, ok := r.orders[order.ID]
	if !ok {
		return domain.ErrNotFound
	}
	if stored.Version != expectedVersion {
		return domain.ErrConcurrentUpdate
	}

	order.Version = expectedVersion + 1
	r.orders[order.ID] = order.Clone()
	if entry != nil {
		e := *entry
		r.history[order.ID] = append(r.history[order.ID], &e)
	}
	return nil
}

// List returns matching orders, newest first.
func (r *orderRepository) List(ctx context.Context, filter interfaces.OrderFilter) ([]*domain.Order, error) {
	r.mu.RLock()
	out := make([]*domain.Order, 0)
	for _, o := range r.orders {
		if matches(o, filter) {
			out = append(out, o.Clone())
		}
	}
	r.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].Number > out[j].Number
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})

	if filter.Limit > 0 && len(out) > filter.Limit {
		out = out[:filter.Limit]
	}
	return out, nil
}

func (r *orderRepository) CountActive(ctx context.Context, outletID string) (int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	n := 0
	for _, o := range r.orders {
		if o.OutletID == outletID && !o.Status.IsTerminal() {
			n++
		}
	}
	return n, nil
}

func (r *orderRepository) GetStatusHistory(ctx context.Context, orderID string) ([]*domain.StatusLog, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	entries, ok := r.history[orderID]
	if !ok {
		return nil, domain.ErrNotFound
	}

	out := make([]*domain.StatusLog, len(entries))
	for i, e := range entries {
		c := *e
		out[i] = &c
	}
	return out, nil
}

func matches(o *domain.Order, f interfaces.OrderFilter) bool {
	if f.OutletID != "" && o.OutletID != f.OutletID {
		return false
	}
	if f.ClientID != "" && o.ClientID != f.ClientID {
		return false
	}
	if f.ActiveOnly && o.Status.IsTerminal() {
		return false
	}
	return true
}
