package order

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/YelzhanWeb/dinehub/internal/adapter/logger"
	"github.com/YelzhanWeb/dinehub/internal/domain"
	"github.com/YelzhanWeb/dinehub/internal/interfaces"
)

type Service struct {
	repo        interfaces.OrderRepository
	sequence    interfaces.SequenceGenerator
	estimator   interfaces.WaitTimeEstimator
	sessions    interfaces.SessionStore
	outlets     interfaces.OutletDirectory
	publisher   interfaces.MessagePublisher
	metrics     interfaces.Metrics
	logger      logger.Logger
	defaultWait int

	now   func() time.Time
	newID func() string
}

func NewService(
	repo interfaces.OrderRepository,
	sequence interfaces.SequenceGenerator,
	estimator interfaces.WaitTimeEstimator,
	sessions interfaces.SessionStore,
	outlets interfaces.OutletDirectory,
	publisher interfaces.MessagePublisher,
	metrics interfaces.Metrics,
	logger logger.Logger,
	defaultWaitMinutes int,
) *Service {
	return &Service{
		repo:        repo,
		sequence:    sequence,
		estimator:   estimator,
		sessions:    sessions,
		outlets:     outlets,
		publisher:   publisher,
		metrics:     metrics,
		logger:      logger,
		defaultWait: defaultWaitMinutes,
		now:         time.Now,
		newID:       uuid.NewString,
	}
}

// WithClock replaces time.Now, for tests.
func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

// Checkout freezes the session cart into a pending order for outletID.
// The cart is cleared only when the order has been stored.
func (s *Service) Checkout(ctx context.Context, sessionID, outletID string) (*domain.Order, error) {
	var order *domain.Order

	err := s.sessions.Update(ctx, sessionID, func(sess *domain.Session) error {
		// 1. Кто заказывает
		client, err := sess.Identity()
		if err != nil {
			return err
		}

		if sess.Cart.IsEmpty() {
			return domain.ErrEmptyCart
		}

		// 2. Куда
		outlet, ok := s.outlets.FindOutlet(outletID)
		if !ok {
			return fmt.Errorf("outlet %s: %w", outletID, domain.ErrNotFound)
		}
		if !outlet.Open {
			return domain.ErrOutletClosed
		}

		// 3. Номер заказа и токен
		ticket, err := s.sequence.Next(ctx, outletID)
		if err != nil {
			return fmt.Errorf("failed to issue order number: %w", err)
		}

		// 4. Доменная сущность (снимок корзины и итог)
		o, err := domain.NewOrder(s.newID(), client, outletID, sess.Cart.Snapshot(), ticket, s.estimate(ctx, outletID), s.now().UTC())
		if err != nil {
			return err
		}

		// 5. Сохранение вместе с начальной записью в истории
		if err := s.repo.Create(ctx, o); err != nil {
			s.logger.Error("db_transaction_failed", "Failed to create order", sessionID, map[string]any{"outlet_id": outletID}, err)
			return err
		}

		sess.Cart.Clear()
		order = o
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.metrics.OrderPlaced(order.OutletID, order.TotalAmount)
	s.logger.Info("order_placed", "Order created", order.Number, map[string]any{
		"order_id":     order.ID,
		"outlet_id":    order.OutletID,
		"token_number": order.TokenNumber,
		"total":        order.TotalAmount.String(),
	})

	// 6. Публикация; заказ уже сохранён, поэтому ошибка только логируется
	msg := interfaces.OrderPlacedMessage{
		OrderID:              order.ID,
		OrderNumber:          order.Number,
		TokenNumber:          order.TokenNumber,
		OutletID:             order.OutletID,
		ClientID:             order.ClientID,
		ClientName:           order.ClientName,
		Items:                order.Items,
		TotalAmount:          order.TotalAmount,
		EstimatedWaitMinutes: order.EstimatedWaitMinutes,
		CreatedAt:            order.CreatedAt,
	}
	if err := s.publisher.PublishOrderPlaced(ctx, msg); err != nil {
		s.logger.Error("rabbitmq_publish_failed", "Failed to publish order", order.Number, nil, err)
	}

	return order, nil
}

// Transition applies one lifecycle step on behalf of sess. Staff may drive
// any allowed edge; a customer may only cancel their own pending order.
func (s *Service) Transition(ctx context.Context, sess *domain.Session, cmd interfaces.TransitionCommand) (*domain.Order, error) {
	if sess == nil || !sess.LoggedIn {
		return nil, domain.ErrUnauthenticated
	}

	order, err := s.repo.FindByID(ctx, cmd.OrderID)
	if err != nil {
		return nil, err
	}

	if !sess.IsStaff() && !customerMayCancel(sess, order, cmd.Target) {
		return nil, domain.ErrForbidden
	}

	from := order.Status
	expected := order.Version
	now := s.now().UTC()

	if err := order.TransitionTo(cmd.Target, sess.ClientID, now); err != nil {
		s.metrics.TransitionRejected(from, cmd.Target, false)
		return nil, err
	}
	if from == cmd.Target {
		return order, nil
	}

	// ETA пересчитывается при принятии заказа
	if cmd.Target == domain.StatusAccepted {
		order.UpdateEstimatedWait(s.estimate(ctx, order.OutletID), now)
	}

	entry := &domain.StatusLog{
		OrderID:   order.ID,
		Status:    cmd.Target,
		ChangedBy: sess.ClientID,
		ChangedAt: now,
	}
	if err := s.repo.Update(ctx, order, expected, entry); err != nil {
		if errors.Is(err, domain.ErrConcurrentUpdate) {
			s.metrics.TransitionRejected(from, cmd.Target, true)
			s.logger.Warn("transition_stale", "Order changed concurrently", order.Number, map[string]any{
				"from": from,
				"to":   cmd.Target,
			})
			return nil, &domain.TransitionError{From: from, To: cmd.Target, Stale: true}
		}
		return nil, err
	}

	s.metrics.StatusChanged(from, cmd.Target)
	s.logger.Info("status_changed", fmt.Sprintf("Order moved from %s to %s", from, cmd.Target), order.Number, map[string]any{
		"order_id":   order.ID,
		"changed_by": sess.ClientID,
	})

	s.publishStatus(ctx, order, from, sess.ClientID, now)
	return order, nil
}

// UpdateEstimatedWait changes the ETA of a pending or accepted order. The
// bool is false when the order's state ignores ETA changes.
func (s *Service) UpdateEstimatedWait(ctx context.Context, sess *domain.Session, orderID string, minutes int) (*domain.Order, bool, error) {
	if sess == nil || !sess.LoggedIn {
		return nil, false, domain.ErrUnauthenticated
	}
	if !sess.IsStaff() {
		return nil, false, domain.ErrForbidden
	}

	order, err := s.repo.FindByID(ctx, orderID)
	if err != nil {
		return nil, false, err
	}

	expected := order.Version
	now := s.now().UTC()
	if !order.UpdateEstimatedWait(minutes, now) {
		return order, false, nil
	}

	if err := s.repo.Update(ctx, order, expected, nil); err != nil {
		return nil, false, err
	}

	s.logger.Debug("eta_updated", "Estimated wait updated", order.Number, map[string]any{"minutes": minutes})
	s.publishStatus(ctx, order, order.Status, sess.ClientID, now)
	return order, true, nil
}

func (s *Service) estimate(ctx context.Context, outletID string) int {
	minutes, err := s.estimator.Estimate(ctx, outletID)
	if err != nil || minutes <= 0 {
		if err != nil {
			s.logger.Warn("estimate_failed", "Falling back to default wait time", "", map[string]any{
				"outlet_id": outletID,
				"error":     err.Error(),
			})
		}
		return s.defaultWait
	}
	return minutes
}

func (s *Service) publishStatus(ctx context.Context, order *domain.Order, from domain.Status, actor string, now time.Time) {
	msg := interfaces.StatusUpdateMessage{
		OrderID:              order.ID,
		OrderNumber:          order.Number,
		OutletID:             order.OutletID,
		OldStatus:            from,
		NewStatus:            order.Status,
		ChangedBy:            actor,
		Timestamp:            now,
		EstimatedWaitMinutes: order.EstimatedWaitMinutes,
	}
	if err := s.publisher.PublishStatusUpdate(ctx, msg); err != nil {
		s.logger.Error("rabbitmq_publish_failed", "Failed to publish status update", order.Number, nil, err)
	}
}

// customerMayCancel also admits a repeated cancel, which is a no-op.
func customerMayCancel(sess *domain.Session, order *domain.Order, target domain.Status) bool {
	if target != domain.StatusCancelled || order.ClientID != sess.ClientID {
		return false
	}
	return order.Status == domain.StatusPending || order.Status == domain.StatusCancelled
}
