package rabbitmq

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/YelzhanWeb/dinehub/internal/adapter/logger"
	"github.com/YelzhanWeb/dinehub/internal/interfaces"
)

const reconnectDelay = 5 * time.Second

type consumer struct {
	conn     Connection
	prefetch int
	logger   logger.Logger
}

func NewConsumer(conn Connection, prefetch int, logger logger.Logger) interfaces.MessageConsumer {
	return &consumer{conn: conn, prefetch: prefetch, logger: logger}
}

// ConsumeOrderPlaced feeds new orders of one outlet to handler. Failed
// messages are dead-lettered.
func (c *consumer) ConsumeOrderPlaced(ctx context.Context, outletID string, handler interfaces.MessageHandler) error {
	return c.loop(ctx, "outlet_orders", func(ctx context.Context) error {
		return c.consumeOutlet(ctx, outletID, handler)
	})
}

// ConsumeNotifications reads status updates from an exclusive queue bound
// to the fanout exchange. Handler errors are logged and dropped.
func (c *consumer) ConsumeNotifications(ctx context.Context, handler interfaces.MessageHandler) error {
	return c.loop(ctx, "notifications", func(ctx context.Context) error {
		return c.consumeNotifications(ctx, handler)
	})
}

// loop переподключается, пока контекст не отменён
func (c *consumer) loop(ctx context.Context, name string, run func(ctx context.Context) error) error {
	for {
		err := run(ctx)

		if ctx.Err() != nil {
			return ctx.Err()
		}
		if err == nil {
			return nil
		}

		c.logger.Warn("consumer_disconnected", fmt.Sprintf("%s consumer disconnected, reconnecting in %s", name, reconnectDelay), "",
			map[string]any{"error": err.Error()})

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(reconnectDelay):
		}
	}
}

func (c *consumer) consumeOutlet(ctx context.Context, outletID string, handler interfaces.MessageHandler) error {
	ch, err := c.conn.Channel()
	if err != nil {
		return fmt.Errorf("failed to open channel: %w", err)
	}
	defer ch.Close()

	closeChan := ch.NotifyClose()

	if err := ch.Qos(c.prefetch, 0, false); err != nil {
		return fmt.Errorf("failed to set QoS: %w", err)
	}

	queue, err := setupOutletQueue(ch, outletID)
	if err != nil {
		return err
	}

	msgs, err := ch.Consume(queue, "", false, false, false, false, nil)
	if err != nil {
		return fmt.Errorf("failed to start consuming: %w", err)
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case err := <-closeChan:
			if err != nil {
				return fmt.Errorf("channel closed: %w", err)
			}
			return errors.New("channel closed gracefully")

		case msg, ok := <-msgs:
			if !ok {
				return errors.New("messages channel closed")
			}

			if err := handler(ctx, msg.Body); err != nil {
				// в DLQ, без повторной доставки
				_ = msg.Nack(false, false)
				continue
			}
			_ = msg.Ack(false)
		}
	}
}

func (c *consumer) consumeNotifications(ctx context.Context, handler interfaces.MessageHandler) error {
	ch, err := c.conn.Channel()
	if err != nil {
		return fmt.Errorf("failed to open channel: %w", err)
	}
	defer ch.Close()

	closeChan := ch.NotifyClose()

	if err := declareNotificationsExchange(ch); err != nil {
		return err
	}

	q, err := ch.QueueDeclare("", false, true, true, false, nil)
	if err != nil {
		return fmt.Errorf("failed to declare queue: %w", err)
	}

	if err := ch.QueueBind(q.Name, "", NotificationsExchange, false, nil); err != nil {
		return fmt.Errorf("failed to bind queue: %w", err)
	}

	msgs, err := ch.Consume(q.Name, "", true, false, false, false, nil)
	if err != nil {
		return fmt.Errorf("failed to start consuming: %w", err)
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case err := <-closeChan:
			if err != nil {
				return fmt.Errorf("channel closed: %w", err)
			}
			return errors.New("channel closed gracefully")

		case msg, ok := <-msgs:
			if !ok {
				return errors.New("messages channel closed")
			}

			if err := handler(ctx, msg.Body); err != nil {
				c.logger.Warn("notification_dropped", "Notification handler failed", "", map[string]any{"error": err.Error()})
			}
		}
	}
}
