package amqp

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/YelzhanWeb/dinehub/internal/adapter/logger"
	"github.com/YelzhanWeb/dinehub/internal/interfaces"
)

// BoardHandler prints incoming orders for an outlet's kitchen board.
type BoardHandler struct {
	out    io.Writer
	logger logger.Logger
}

func NewBoardHandler(out io.Writer, logger logger.Logger) *BoardHandler {
	return &BoardHandler{out: out, logger: logger}
}

func (h *BoardHandler) HandleOrderPlaced(ctx context.Context, body []byte) error {
	var msg interfaces.OrderPlacedMessage
	if err := json.Unmarshal(body, &msg); err != nil {
		h.logger.Error("message_parse_failed", "Failed to parse order message", "", nil, err)
		return err
	}
	if msg.OrderNumber == "" || len(msg.Items) == 0 {
		err := fmt.Errorf("order message %q has no number or items", msg.OrderID)
		h.logger.Error("message_invalid", "Rejected order message", "", nil, err)
		return err
	}

	h.logger.Debug("order_received", "New order for outlet", msg.OrderNumber, map[string]any{
		"outlet_id":    msg.OutletID,
		"token_number": msg.TokenNumber,
	})

	var b strings.Builder
	fmt.Fprintf(&b, "#%d  %s  %s  (ETA %d min)\n", msg.TokenNumber, msg.OrderNumber, msg.ClientName, msg.EstimatedWaitMinutes)
	for _, item := range msg.Items {
		fmt.Fprintf(&b, "    %d × %s\n", item.Quantity, item.Name)
	}
	fmt.Fprintf(&b, "    total %s\n", msg.TotalAmount)

	_, err := io.WriteString(h.out, b.String())
	return err
}
