package interfaces

import (
	"context"
	"time"

	"github.com/YelzhanWeb/dinehub/internal/domain"
)

// Сообщения RabbitMQ
type OrderPlacedMessage struct {
	OrderID              string             `json:"order_id"`
	OrderNumber          string             `json:"order_number"`
	TokenNumber          int                `json:"token_number"`
	OutletID             string             `json:"outlet_id"`
	ClientID             string             `json:"client_id"`
	ClientName           string             `json:"client_name"`
	Items                []domain.OrderItem `json:"items"`
	TotalAmount          domain.Money       `json:"total_amount_inr"`
	EstimatedWaitMinutes int                `json:"estimated_wait_minutes"`
	CreatedAt            time.Time          `json:"created_at"`
}

type StatusUpdateMessage struct {
	OrderID              string        `json:"order_id"`
	OrderNumber          string        `json:"order_number"`
	OutletID             string        `json:"outlet_id"`
	OldStatus            domain.Status `json:"old_status"`
	NewStatus            domain.Status `json:"new_status"`
	ChangedBy            string        `json:"changed_by"`
	Timestamp            time.Time     `json:"timestamp"`
	EstimatedWaitMinutes int           `json:"estimated_wait_minutes"`
}

// Интерфейсы Messaging (Adapter/RabbitMQ)
type MessagePublisher interface {
	PublishOrderPlaced(ctx context.Context, msg OrderPlacedMessage) error
	PublishStatusUpdate(ctx context.Context, msg StatusUpdateMessage) error
}

type MessageConsumer interface {
	ConsumeOrderPlaced(ctx context.Context, outletID string, handler MessageHandler) error
	ConsumeNotifications(ctx context.Context, handler MessageHandler) error
}

type MessageHandler func(ctx context.Context, body []byte) error

// Metrics records business events. Implementations must be safe for
// concurrent use.
type Metrics interface {
	OrderPlaced(outletID string, total domain.Money)
	StatusChanged(from, to domain.Status)
	TransitionRejected(from, to domain.Status, stale bool)
	CartMutated(op string)
}
