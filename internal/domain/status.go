package domain

import "time"

type Status string

const (
	StatusPending   Status = "pending"
	StatusAccepted  Status = "accepted"
	StatusPreparing Status = "preparing"
	StatusReady     Status = "ready"
	StatusCompleted Status = "completed"
	StatusCancelled Status = "cancelled"
)

// transitions is the order lifecycle. Terminal states map to nothing.
var transitions = map[Status][]Status{
	StatusPending:   {StatusAccepted, StatusCancelled},
	StatusAccepted:  {StatusPreparing, StatusCancelled},
	StatusPreparing: {StatusReady, StatusCancelled},
	StatusReady:     {StatusCompleted},
	StatusCompleted: {},
	StatusCancelled: {},
}

// Statuses lists every known lifecycle state in lifecycle order.
func Statuses() []Status {
	return []Status{StatusPending, StatusAccepted, StatusPreparing, StatusReady, StatusCompleted, StatusCancelled}
}

func (s Status) IsValid() bool {
	_, ok := transitions[s]
	return ok
}

func (s Status) IsTerminal() bool {
	return s == StatusCompleted || s == StatusCancelled
}

// AllowedTargets returns the states reachable from s in one step.
func (s Status) AllowedTargets() []Status {
	out := make([]Status, len(transitions[s]))
	copy(out, transitions[s])
	return out
}

// ParseStatus accepts only the known lifecycle states.
func ParseStatus(raw string) (Status, bool) {
	s := Status(raw)
	return s, s.IsValid()
}

// StatusLog represents a log entry for order status changes
type StatusLog struct {
	OrderID   string    `json:"order_id"`
	Status    Status    `json:"status"`
	ChangedBy string    `json:"changed_by"`
	ChangedAt time.Time `json:"changed_at"`
	Notes     *string   `json:"notes,omitempty"`
}
