package rabbitmq

import (
	"context"
	"encoding/json"
	"fmt"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/YelzhanWeb/dinehub/internal/interfaces"
)

type publisher struct {
	conn Connection
}

func NewPublisher(conn Connection) interfaces.MessagePublisher {
	return &publisher{conn: conn}
}

func (p *publisher) PublishOrderPlaced(ctx context.Context, msg interfaces.OrderPlacedMessage) error {
	ch, err := p.conn.Channel()
	if err != nil {
		return fmt.Errorf("failed to open channel: %w", err)
	}
	defer ch.Close()

	if err := declareOrdersExchange(ch); err != nil {
		return err
	}

	body, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("failed to marshal message: %w", err)
	}

	err = ch.PublishWithContext(ctx, OrdersExchange, OutletRoutingKey(msg.OutletID), false, false, amqp.Publishing{
		DeliveryMode: amqp.Persistent,
		ContentType:  "application/json",
		MessageId:    msg.OrderID,
		Timestamp:    msg.CreatedAt,
		Body:         body,
	})
	if err != nil {
		return fmt.Errorf("failed to publish order: %w", err)
	}

	return nil
}

func (p *publisher) PublishStatusUpdate(ctx context.Context, msg interfaces.StatusUpdateMessage) error {
	ch, err := p.conn.Channel()
	if err != nil {
		return fmt.Errorf("failed to open channel: %w", err)
	}
	defer ch.Close()

	if err := declareNotificationsExchange(ch); err != nil {
		return err
	}

	body, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("failed to marshal message: %w", err)
	}

	err = ch.PublishWithContext(ctx, NotificationsExchange, "", false, false, amqp.Publishing{
		ContentType: "application/json",
		Timestamp:   msg.Timestamp,
		Body:        body,
	})
	if err != nil {
		return fmt.Errorf("failed to publish status update: %w", err)
	}

	return nil
}

// NopPublisher is used when RabbitMQ is disabled.
type NopPublisher struct{}

func (NopPublisher) PublishOrderPlaced(context.Context, interfaces.OrderPlacedMessage) error {
	return nil
}

func (NopPublisher) PublishStatusUpdate(context.Context, interfaces.StatusUpdateMessage) error {
	return nil
}
