package amqp

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/YelzhanWeb/dinehub/internal/adapter/logger"
	"github.com/YelzhanWeb/dinehub/internal/domain"
	"github.com/YelzhanWeb/dinehub/internal/interfaces"
)

func TestNotificationHandler(t *testing.T) {
	var out bytes.Buffer
	h := NewNotificationHandler(&out, logger.Nop())

	body, err := json.Marshal(interfaces.StatusUpdateMessage{
		OrderNumber:          "ORD_20260314_001",
		OldStatus:            domain.StatusPending,
		NewStatus:            domain.StatusAccepted,
		ChangedBy:            "staff-1",
		EstimatedWaitMinutes: 18,
	})
	require.NoError(t, err)

	require.NoError(t, h.HandleNotification(context.Background(), body))
	assert.Equal(t, "Notification for order ORD_20260314_001: status changed from 'pending' to 'accepted' by staff-1 (ETA 18 min)\n", out.String())

	assert.Error(t, h.HandleNotification(context.Background(), []byte("{")))
}

func TestBoardHandler(t *testing.T) {
	var out bytes.Buffer
	h := NewBoardHandler(&out, logger.Nop())

	body, err := json.Marshal(interfaces.OrderPlacedMessage{
		OrderNumber:          "ORD_20260314_002",
		TokenNumber:          7,
		ClientName:           "Asha",
		EstimatedWaitMinutes: 12,
		Items: []domain.OrderItem{
			{Name: "Burger", UnitPrice: domain.Rupees(150), Quantity: 2},
			{Name: "Fries", UnitPrice: domain.Rupees(80), Quantity: 1},
		},
		TotalAmount: domain.Rupees(380),
	})
	require.NoError(t, err)

	require.NoError(t, h.HandleOrderPlaced(context.Background(), body))
	assert.Contains(t, out.String(), "#7  ORD_20260314_002  Asha  (ETA 12 min)")
	assert.Contains(t, out.String(), "2 × Burger")
	assert.Contains(t, out.String(), "total ₹380.00")

	empty, _ := json.Marshal(interfaces.OrderPlacedMessage{OrderNumber: "X"})
	assert.Error(t, h.HandleOrderPlaced(context.Background(), empty))
}
