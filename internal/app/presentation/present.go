// Package presentation turns orders into what an order card shows for a
// given viewer role. It never mutates the order it is given.
package presentation

import (
	"time"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/YelzhanWeb/dinehub/internal/domain"
	"github.com/YelzhanWeb/dinehub/internal/interfaces"
)

const defaultBadgeClass = "bg-yellow-500/20 text-yellow-500 border-yellow-500/40"

var badgeClasses = map[domain.Status]string{
	domain.StatusPending:   defaultBadgeClass,
	domain.StatusAccepted:  "bg-blue-500/20 text-blue-500 border-blue-500/40",
	domain.StatusPreparing: "bg-primary/20 text-primary border-primary/40",
	domain.StatusReady:     "bg-green-500/20 text-green-500 border-green-500/40",
	domain.StatusCompleted: "bg-gray-500/20 text-gray-500 border-gray-500/40",
	domain.StatusCancelled: "bg-destructive/20 text-destructive border-destructive/40",
}

// Badge maps a status to its style. Statuses it does not know get the
// pending style with their own label.
func Badge(s domain.Status) interfaces.BadgeStyle {
	class, ok := badgeClasses[s]
	if !ok {
		class = defaultBadgeClass
	}
	return interfaces.BadgeStyle{
		Label: cases.Title(language.English).String(string(s)),
		Class: class,
	}
}

// Present builds the display model. outlet may be nil when the order's
// outlet is no longer in the directory.
func Present(order *domain.Order, outlet *domain.Outlet, role domain.ViewerRole, now time.Time) *interfaces.DisplayModel {
	lines := make([]interfaces.DisplayLine, len(order.Items))
	for i, item := range order.Items {
		lines[i] = interfaces.DisplayLine{
			Name:      item.Name,
			Quantity:  item.Quantity,
			LineTotal: item.LineTotal().String(),
		}
	}

	m := &interfaces.DisplayModel{
		OrderID:     order.ID,
		OrderNumber: order.Number,
		TokenNumber: order.TokenNumber,
		Status:      order.Status,
		Badge:       Badge(order.Status),
		Lines:       lines,
		Total:       order.TotalAmount.String(),
		MinutesAgo:  order.MinutesSince(now),
	}

	if role == domain.RoleStaff {
		m.Client = &interfaces.ClientView{
			ClientID:   order.ClientID,
			ClientName: order.ClientName,
		}
		return m
	}

	m.Outlet = &interfaces.OutletView{EstimatedWaitMinutes: order.EstimatedWaitMinutes}
	if outlet != nil {
		m.Outlet.Name = outlet.Name
	}
	return m
}
