package amqp

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/YelzhanWeb/dinehub/internal/adapter/logger"
	"github.com/YelzhanWeb/dinehub/internal/interfaces"
)

// NotificationHandler prints every status change it receives.
type NotificationHandler struct {
	out    io.Writer
	logger logger.Logger
}

func NewNotificationHandler(out io.Writer, logger logger.Logger) *NotificationHandler {
	return &NotificationHandler{
		out:    out,
		logger: logger,
	}
}

func (h *NotificationHandler) HandleNotification(ctx context.Context, body []byte) error {
	var msg interfaces.StatusUpdateMessage
	if err := json.Unmarshal(body, &msg); err != nil {
		h.logger.Error("message_parse_failed", "Failed to parse notification", "", nil, err)
		return err
	}

	h.logger.Debug("notification_received", fmt.Sprintf("Received status update for order %s", msg.OrderNumber),
		msg.OrderNumber, map[string]any{
			"order_number": msg.OrderNumber,
			"outlet_id":    msg.OutletID,
			"new_status":   msg.NewStatus,
		})

	_, err := fmt.Fprintf(h.out, "Notification for order %s: status changed from '%s' to '%s' by %s (ETA %d min)\n",
		msg.OrderNumber, msg.OldStatus, msg.NewStatus, msg.ChangedBy, msg.EstimatedWaitMinutes)
	return err
}
