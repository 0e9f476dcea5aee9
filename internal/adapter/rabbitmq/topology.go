package rabbitmq

import (
	"fmt"

	amqp "github.com/rabbitmq/amqp091-go"
)

const (
	OrdersExchange        = "orders_topic"
	OrdersDLX             = "orders_dlq"
	NotificationsExchange = "notifications_fanout"
)

// OutletRoutingKey routes new orders to the outlet that has to cook them.
func OutletRoutingKey(outletID string) string {
	return "outlet." + outletID
}

func outletQueue(outletID string) string {
	return "outlet_" + outletID + "_orders"
}

func declareOrdersExchange(ch Channel) error {
	if err := ch.ExchangeDeclare(OrdersExchange, "topic", true, false, false, false, nil); err != nil {
		return fmt.Errorf("failed to declare orders exchange: %w", err)
	}
	return nil
}

func declareNotificationsExchange(ch Channel) error {
	if err := ch.ExchangeDeclare(NotificationsExchange, "fanout", true, false, false, false, nil); err != nil {
		return fmt.Errorf("failed to declare notifications exchange: %w", err)
	}
	return nil
}

// setupOutletQueue declares a durable per-outlet queue with a dead-letter
// queue for messages the board could not handle.
func setupOutletQueue(ch Channel, outletID string) (string, error) {
	if err := declareOrdersExchange(ch); err != nil {
		return "", err
	}

	if err := ch.ExchangeDeclare(OrdersDLX, "direct", true, false, false, false, nil); err != nil {
		return "", fmt.Errorf("failed to declare DLQ exchange: %w", err)
	}

	queue := outletQueue(outletID)
	dlq := queue + "_dlq"
	if _, err := ch.QueueDeclare(dlq, true, false, false, false, nil); err != nil {
		return "", fmt.Errorf("failed to declare DLQ: %w", err)
	}
	if err := ch.QueueBind(dlq, OutletRoutingKey(outletID), OrdersDLX, false, nil); err != nil {
		return "", fmt.Errorf("failed to bind DLQ: %w", err)
	}

	args := amqp.Table{"x-dead-letter-exchange": OrdersDLX}
	q, err := ch.QueueDeclare(queue, true, false, false, false, args)
	if err != nil {
		return "", fmt.Errorf("failed to declare outlet queue: %w", err)
	}
	if err := ch.QueueBind(q.Name, OutletRoutingKey(outletID), OrdersExchange, false, nil); err != nil {
		return "", fmt.Errorf("failed to bind outlet queue: %w", err)
	}
	return q.Name, nil
}
