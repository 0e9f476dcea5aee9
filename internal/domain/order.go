package domain

import (
	"fmt"
	"time"
)

// Order is the durable record created at checkout. Only Status,
// EstimatedWaitMinutes and the bookkeeping fields change afterwards.
type Order struct {
	ID                   string
	Number               string
	TokenNumber          int
	OutletID             string
	ClientID             string
	ClientName           string
	Items                []OrderItem
	TotalAmount          Money
	Status               Status
	EstimatedWaitMinutes int
	ProcessedBy          *string
	CreatedAt            time.Time
	UpdatedAt            time.Time
	Version              int
}

// OrderItem is a frozen copy of a cart line taken at checkout.
type OrderItem struct {
	MenuItemID string `json:"menu_item_id"`
	Name       string `json:"name"`
	UnitPrice  Money  `json:"unit_price"`
	Quantity   int    `json:"quantity"`
}

func (i OrderItem) LineTotal() Money {
	return i.UnitPrice.Times(i.Quantity)
}

// ClientIdentity is who an order is placed for.
type ClientIdentity struct {
	ClientID   string
	ClientName string
}

// Ticket carries the numbers issued for a new order.
type Ticket struct {
	OrderNumber string
	TokenNumber int
}

// FormatOrderNumber renders ORD_YYYYMMDD_NNN for the UTC day of day.
func FormatOrderNumber(day time.Time, seq int) string {
	return fmt.Sprintf("ORD_%s_%03d", day.UTC().Format("20060102"), seq)
}

// NewOrder creates a pending order. The total is computed once here and is
// never recomputed from the items afterwards.
func NewOrder(id string, client ClientIdentity, outletID string, items []OrderItem, ticket Ticket, waitMinutes int, now time.Time) (*Order, error) {
	if client.ClientID == "" {
		return nil, ErrUnauthenticated
	}
	if len(items) == 0 {
		return nil, ErrEmptyCart
	}

	snapshot := make([]OrderItem, len(items))
	var total Money
	for i, item := range items {
		if item.Quantity <= 0 {
			return nil, ErrInvalidQuantity
		}
		snapshot[i] = item
		total += item.LineTotal()
	}

	if waitMinutes < 0 {
		waitMinutes = 0
	}

	return &Order{
		ID:                   id,
		Number:               ticket.OrderNumber,
		TokenNumber:          ticket.TokenNumber,
		OutletID:             outletID,
		ClientID:             client.ClientID,
		ClientName:           client.ClientName,
		Items:                snapshot,
		TotalAmount:          total,
		Status:               StatusPending,
		EstimatedWaitMinutes: waitMinutes,
		CreatedAt:            now,
		UpdatedAt:            now,
	}, nil
}

// TransitionTo moves the order along the lifecycle. Requesting the current
// state again succeeds without changing anything.
func (o *Order) TransitionTo(newStatus Status, actor string, now time.Time) error {
	if newStatus == o.Status {
		return nil
	}
	if !o.CanTransitionTo(newStatus) {
		return &TransitionError{From: o.Status, To: newStatus}
	}

	o.Status = newStatus
	o.UpdatedAt = now
	if actor != "" {
		o.ProcessedBy = &actor
	}

	return nil
}

// CanTransitionTo checks if the order can transition to the new status
func (o *Order) CanTransitionTo(newStatus Status) bool {
	for _, s := range transitions[o.Status] {
		if s == newStatus {
			return true
		}
	}
	return false
}

// UpdateEstimatedWait stores a new ETA while the order is pending or
// accepted. In any other state, or for a negative value, it does nothing
// and reports false.
func (o *Order) UpdateEstimatedWait(minutes int, now time.Time) bool {
	if minutes < 0 {
		return false
	}
	if o.Status != StatusPending && o.Status != StatusAccepted {
		return false
	}
	o.EstimatedWaitMinutes = minutes
	o.UpdatedAt = now
	return true
}

// MinutesSince is the whole number of minutes elapsed since creation.
func (o *Order) MinutesSince(now time.Time) int {
	elapsed := now.Sub(o.CreatedAt)
	if elapsed < 0 {
		return 0
	}
	return int(elapsed / time.Minute)
}

// Clone returns a deep copy so callers cannot mutate stored state.
func (o *Order) Clone() *Order {
	c := *o
	c.Items = make([]OrderItem, len(o.Items))
	copy(c.Items, o.Items)
	if o.ProcessedBy != nil {
		p := *o.ProcessedBy
		c.ProcessedBy = &p
	}
	return &c
}
