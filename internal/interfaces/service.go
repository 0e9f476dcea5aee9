package interfaces

import (
	"context"

	"github.com/YelzhanWeb/dinehub/internal/domain"
)

// Команды для сервисов
type TransitionCommand struct {
	OrderID string
	Target  domain.Status
}

type OrderQuery struct {
	OutletID   string
	ActiveOnly bool
	Limit      int
}

// Интерфейсы Сервисов (Business Logic)
type CartService interface {
	View(ctx context.Context, sessionID string) (*CartView, error)
	AddItem(ctx context.Context, sessionID, menuItemID string, quantity int) (*CartView, error)
	RemoveItem(ctx context.Context, sessionID, menuItemID string) (*CartView, error)
	SetQuantity(ctx context.Context, sessionID, menuItemID string, quantity int) (*CartView, error)
	SaveProfile(ctx context.Context, sessionID string, profile domain.Profile) (*domain.Profile, error)
}

type OrderService interface {
	Checkout(ctx context.Context, sessionID, outletID string) (*domain.Order, error)
	Transition(ctx context.Context, sess *domain.Session, cmd TransitionCommand) (*domain.Order, error)
	UpdateEstimatedWait(ctx context.Context, sess *domain.Session, orderID string, minutes int) (*domain.Order, bool, error)
}

type TrackingService interface {
	GetOrder(ctx context.Context, sess *domain.Session, orderID string) (*DisplayModel, error)
	GetOrderHistory(ctx context.Context, sess *domain.Session, orderID string) ([]*domain.StatusLog, error)
	ListOrders(ctx context.Context, sess *domain.Session, q OrderQuery) ([]*DisplayModel, error)
}

// Ответы Cart Service
type CartView struct {
	Lines     []domain.CartLine `json:"lines"`
	ItemCount int               `json:"item_count"`
	Total     domain.Money      `json:"total_inr"`
	LoggedIn  bool              `json:"logged_in"`
}

// DisplayModel is what an order card renders for one viewer role.
type DisplayModel struct {
	OrderID     string        `json:"order_id"`
	OrderNumber string        `json:"order_number"`
	TokenNumber int           `json:"token_number"`
	Status      domain.Status `json:"status"`
	Badge       BadgeStyle    `json:"badge"`
	Lines       []DisplayLine `json:"lines"`
	Total       string        `json:"total"`
	MinutesAgo  int           `json:"minutes_ago"`
	Client      *ClientView   `json:"client,omitempty"`
	Outlet      *OutletView   `json:"outlet,omitempty"`
}

type BadgeStyle struct {
	Label string `json:"label"`
	Class string `json:"class"`
}

type DisplayLine struct {
	Name      string `json:"name"`
	Quantity  int    `json:"quantity"`
	LineTotal string `json:"line_total"`
}

// ClientView is shown to staff only.
type ClientView struct {
	ClientID   string `json:"client_id"`
	ClientName string `json:"client_name"`
}

// OutletView is shown to customers only. Name is empty when the outlet
// could not be resolved.
type OutletView struct {
	Name                 string `json:"name,omitempty"`
	EstimatedWaitMinutes int    `json:"estimated_wait_minutes"`
}
