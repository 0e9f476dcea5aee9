package natskv

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/YelzhanWeb/dinehub/internal/domain"
	"github.com/YelzhanWeb/dinehub/internal/interfaces"
)

const (
	orderPrefix  = "order."
	numberPrefix = "number."
)

// record keeps the order and its history under one key so a single
// revision check covers both.
type record struct {
	Order   orderDoc            `json:"order"`
	History []*domain.StatusLog `json:"history"`
}

type orderDoc struct {
	ID                   string             `json:"id"`
	Number               string             `json:"number"`
	TokenNumber          int                `json:"token_number"`
	OutletID             string             `json:"outlet_id"`
	ClientID             string             `json:"client_id"`
	ClientName           string             `json:"client_name"`
	Items                []domain.OrderItem `json:"items"`
	TotalAmount          domain.Money       `json:"total_amount_inr"`
	Status               domain.Status      `json:"status"`
	EstimatedWaitMinutes int                `json:"estimated_wait_minutes"`
	ProcessedBy          *string            `json:"processed_by,omitempty"`
	CreatedAt            time.Time          `json:"created_at"`
	UpdatedAt            time.Time          `json:"updated_at"`
}

type orderRepository struct {
	bucket Bucket
}

func NewOrderRepository(bucket Bucket) interfaces.OrderRepository {
	return &orderRepository{bucket: bucket}
}

func (r *orderRepository) Create(ctx context.Context, order *domain.Order) error {
	rec := record{
		Order: toDoc(order),
		History: []*domain.StatusLog{{
			OrderID:   order.ID,
			Status:    order.Status,
			ChangedBy: order.ClientID,
			ChangedAt: order.CreatedAt,
		}},
	}
	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("failed to marshal order: %w", err)
	}

	rev, err := r.bucket.Create(ctx, orderPrefix+order.ID, data)
	if err != nil {
		if errors.Is(err, errRevisionMismatch) {
			return domain.ErrConcurrentUpdate
		}
		return fmt.Errorf("failed to store order: %w", err)
	}

	// индекс по номеру заказа; без него заказ удаляется, чтобы повтор не создал дубль
	if _, err := r.bucket.Create(ctx, numberPrefix+order.Number, []byte(order.ID)); err != nil {
		if delErr := r.bucket.Delete(ctx, orderPrefix+order.ID); delErr != nil {
			return fmt.Errorf("failed to index order number: %w (rollback failed: %v)", err, delErr)
		}
		return fmt.Errorf("failed to index order number: %w", err)
	}

	order.Version = int(rev)
	return nil
}

func (r *orderRepository) FindByID(ctx context.Context, id string) (*domain.Order, error) {
	rec, rev, err := r.load(ctx, id)
	if err != nil {
		return nil, err
	}
	return fromDoc(rec.Order, rev), nil
}

func (r *orderRepository) FindByNumber(ctx context.Context, number string) (*domain.Order, error) {
	id, _, err := r.bucket.Get(ctx, numberPrefix+number)
	if err != nil {
		if errors.Is(err, errKeyMissing) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("failed to resolve order number: %w", err)
	}
	return r.FindByID(ctx, string(id))
}

// Update uses the KV revision as the order version. The revision a caller
// loaded must still be current for the write to land.
func (r *orderRepository) Update(ctx context.Context, order *domain.Order, expectedVersion int, entry *domain.StatusLog) error {
	rec, rev, err := r.load(ctx, order.ID)
	if err != nil {
		return err
	}
	if int(rev) != expectedVersion {
		return domain.ErrConcurrentUpdate
	}

	rec.Order = toDoc(order)
	if entry != nil {
		e := *entry
		rec.History = append(rec.History, &e)
	}

	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("failed to marshal order: %w", err)
	}

	newRev, err := r.bucket.Update(ctx, orderPrefix+order.ID, data, rev)
	if err != nil {
		if errors.Is(err, errRevisionMismatch) {
			return domain.ErrConcurrentUpdate
		}
		return fmt.Errorf("failed to update order: %w", err)
	}

	order.Version = int(newRev)
	return nil
}

func (r *orderRepository) List(ctx context.Context, filter interfaces.OrderFilter) ([]*domain.Order, error) {
	keys, err := r.bucket.Keys(ctx, orderPrefix)
	if err != nil {
		return nil, fmt.Errorf("failed to list orders: %w", err)
	}

	out := make([]*domain.Order, 0, len(keys))
	for _, k := range keys {
		rec, rev, err := r.load(ctx, strings.TrimPrefix(k, orderPrefix))
		if errors.Is(err, domain.ErrNotFound) {
			continue
		}
		if err != nil {
			return nil, err
		}

		o := fromDoc(rec.Order, rev)
		if filter.OutletID != "" && o.OutletID != filter.OutletID {
			continue
		}
		if filter.ClientID != "" && o.ClientID != filter.ClientID {
			continue
		}
		if filter.ActiveOnly && o.Status.IsTerminal() {
			continue
		}
		out = append(out, o)
	}

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
	orders, err := r.List(ctx, interfaces.OrderFilter{OutletID: outletID, ActiveOnly: true})
	if err != nil {
		return 0, err
	}
	return len(orders), nil
}

func (r *orderRepository) GetStatusHistory(ctx context.Context, orderID string) ([]*domain.StatusLog, error) {
	rec, _, err := r.load(ctx, orderID)
	if err != nil {
		return nil, err
	}
	return rec.History, nil
}

func (r *orderRepository) load(ctx context.Context, id string) (*record, uint64, error) {
	data, rev, err := r.bucket.Get(ctx, orderPrefix+id)
	if err != nil {
		if errors.Is(err, errKeyMissing) {
			return nil, 0, domain.ErrNotFound
		}
		return nil, 0, fmt.Errorf("failed to load order: %w", err)
	}

	var rec record
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, 0, fmt.Errorf("failed to decode order %s: %w", id, err)
	}
	return &rec, rev, nil
}

func toDoc(o *domain.Order) orderDoc {
	return orderDoc{
		ID:                   o.ID,
		Number:               o.Number,
		TokenNumber:          o.TokenNumber,
		OutletID:             o.OutletID,
		ClientID:             o.ClientID,
		ClientName:           o.ClientName,
		Items:                o.Items,
		TotalAmount:          o.TotalAmount,
		Status:               o.Status,
		EstimatedWaitMinutes: o.EstimatedWaitMinutes,
		ProcessedBy:          o.ProcessedBy,
		CreatedAt:            o.CreatedAt,
		UpdatedAt:            o.UpdatedAt,
	}
}

func fromDoc(d orderDoc, rev uint64) *domain.Order {
	return &domain.Order{
		ID:                   d.ID,
		Number:               d.Number,
		TokenNumber:          d.TokenNumber,
		OutletID:             d.OutletID,
		ClientID:             d.ClientID,
		ClientName:           d.ClientName,
		Items:                d.Items,
		TotalAmount:          d.TotalAmount,
		Status:               d.Status,
		EstimatedWaitMinutes: d.EstimatedWaitMinutes,
		ProcessedBy:          d.ProcessedBy,
		CreatedAt:            d.CreatedAt,
		UpdatedAt:            d.UpdatedAt,
		Version:              int(rev),
	}
}
