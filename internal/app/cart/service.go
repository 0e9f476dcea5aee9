package cart

import (
	"context"
	"fmt"

	"github.com/YelzhanWeb/dinehub/internal/adapter/logger"
	"github.com/YelzhanWeb/dinehub/internal/domain"
	"github.com/YelzhanWeb/dinehub/internal/interfaces"
)

type Service struct {
	sessions interfaces.SessionStore
	outlets  interfaces.OutletDirectory
	metrics  interfaces.Metrics
	logger   logger.Logger
}

func NewService(sessions interfaces.SessionStore, outlets interfaces.OutletDirectory, metrics interfaces.Metrics, logger logger.Logger) *Service {
	return &Service{
		sessions: sessions,
		outlets:  outlets,
		metrics:  metrics,
		logger:   logger,
	}
}

func (s *Service) View(ctx context.Context, sessionID string) (*interfaces.CartView, error) {
	sess, err := s.sessions.Get(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to load session: %w", err)
	}
	return toView(sess), nil
}

// AddItem resolves the menu item by id so the line carries the current price.
func (s *Service) AddItem(ctx context.Context, sessionID, menuItemID string, quantity int) (*interfaces.CartView, error) {
	item, ok := s.outlets.FindMenuItem(menuItemID)
	if !ok {
		return nil, fmt.Errorf("menu item %s: %w", menuItemID, domain.ErrNotFound)
	}

	return s.mutate(ctx, sessionID, "add", func(c *domain.Cart) error {
		return c.AddItem(item, quantity)
	})
}

func (s *Service) RemoveItem(ctx context.Context, sessionID, menuItemID string) (*interfaces.CartView, error) {
	return s.mutate(ctx, sessionID, "remove", func(c *domain.Cart) error {
		c.RemoveItem(menuItemID)
		return nil
	})
}

func (s *Service) SetQuantity(ctx context.Context, sessionID, menuItemID string, quantity int) (*interfaces.CartView, error) {
	return s.mutate(ctx, sessionID, "set_quantity", func(c *domain.Cart) error {
		return c.SetQuantity(menuItemID, quantity)
	})
}

// SaveProfile stores a validated profile. An invalid profile leaves the
// previously saved one in place.
func (s *Service) SaveProfile(ctx context.Context, sessionID string, profile domain.Profile) (*domain.Profile, error) {
	var saved domain.Profile
	err := s.sessions.Update(ctx, sessionID, func(sess *domain.Session) error {
		if err := sess.SaveProfile(profile); err != nil {
			return err
		}
		saved = *sess.Profile
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Debug("profile_saved", "Profile saved", sessionID, nil)
	return &saved, nil
}

func (s *Service) mutate(ctx context.Context, sessionID, op string, fn func(c *domain.Cart) error) (*interfaces.CartView, error) {
	var view *interfaces.CartView
	err := s.sessions.Update(ctx, sessionID, func(sess *domain.Session) error {
		if err := fn(sess.Cart); err != nil {
			return err
		}
		view = toView(sess)
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.metrics.CartMutated(op)
	s.logger.Debug("cart_updated", "Cart updated", sessionID, map[string]any{
		"op":         op,
		"item_count": view.ItemCount,
	})
	return view, nil
}

func toView(sess *domain.Session) *interfaces.CartView {
	c := sess.Cart
	if c == nil {
		c = domain.NewCart()
	}
	return &interfaces.CartView{
		Lines:     c.Lines(),
		ItemCount: c.ItemCount(),
		Total:     c.Total(),
		LoggedIn:  sess.LoggedIn,
	}
}
