package tracking

import (
	"context"
	"time"

	"github.com/YelzhanWeb/dinehub/internal/adapter/logger"
	"github.com/YelzhanWeb/dinehub/internal/app/presentation"
	"github.com/YelzhanWeb/dinehub/internal/domain"
	"github.com/YelzhanWeb/dinehub/internal/interfaces"
)

// Service is the read side: it loads orders and renders them for the
// viewer. Customers only ever see their own orders.
type Service struct {
	orderRepo interfaces.OrderRepository
	outlets   interfaces.OutletDirectory
	logger    logger.Logger
	listLimit int
	now       func() time.Time
}

func NewService(orderRepo interfaces.OrderRepository, outlets interfaces.OutletDirectory, logger logger.Logger, listLimit int) *Service {
	return &Service{
		orderRepo: orderRepo,
		outlets:   outlets,
		logger:    logger,
		listLimit: listLimit,
		now:       time.Now,
	}
}

// WithClock replaces time.Now, for tests.
func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

func (s *Service) GetOrder(ctx context.Context, sess *domain.Session, orderID string) (*interfaces.DisplayModel, error) {
	order, err := s.visibleOrder(ctx, sess, orderID)
	if err != nil {
		return nil, err
	}
	return s.present(order, sess), nil
}

func (s *Service) GetOrderHistory(ctx context.Context, sess *domain.Session, orderID string) ([]*domain.StatusLog, error) {
	order, err := s.visibleOrder(ctx, sess, orderID)
	if err != nil {
		return nil, err
	}
	return s.orderRepo.GetStatusHistory(ctx, order.ID)
}

// ListOrders returns newest orders first. Staff may filter by outlet and
// active state; customers are always limited to their own orders.
func (s *Service) ListOrders(ctx context.Context, sess *domain.Session, q interfaces.OrderQuery) ([]*interfaces.DisplayModel, error) {
	if sess == nil || !sess.LoggedIn {
		return nil, domain.ErrUnauthenticated
	}

	filter := interfaces.OrderFilter{
		OutletID:   q.OutletID,
		ActiveOnly: q.ActiveOnly,
		Limit:      q.Limit,
	}
	if filter.Limit <= 0 || filter.Limit > s.listLimit {
		filter.Limit = s.listLimit
	}
	if !sess.IsStaff() {
		filter.ClientID = sess.ClientID
	}

	orders, err := s.orderRepo.List(ctx, filter)
	if err != nil {
		return nil, err
	}

	out := make([]*interfaces.DisplayModel, len(orders))
	for i, o := range orders {
		out[i] = s.present(o, sess)
	}
	return out, nil
}

// visibleOrder hides other clients' orders behind ErrNotFound.
func (s *Service) visibleOrder(ctx context.Context, sess *domain.Session, orderID string) (*domain.Order, error) {
	if sess == nil || !sess.LoggedIn {
		return nil, domain.ErrUnauthenticated
	}

	order, err := s.orderRepo.FindByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if !sess.IsStaff() && order.ClientID != sess.ClientID {
		s.logger.Debug("order_hidden", "Order belongs to another client", order.Number, nil)
		return nil, domain.ErrNotFound
	}
	return order, nil
}

func (s *Service) present(order *domain.Order, sess *domain.Session) *interfaces.DisplayModel {
	role := domain.RoleCustomer
	if sess.IsStaff() {
		role = domain.RoleStaff
	}

	var outlet *domain.Outlet
	if o, ok := s.outlets.FindOutlet(order.OutletID); ok {
		outlet = &o
	}
	return presentation.Present(order, outlet, role, s.now())
}
