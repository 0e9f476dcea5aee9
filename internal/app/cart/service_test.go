package cart

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/YelzhanWeb/dinehub/internal/adapter/logger"
	"github.com/YelzhanWeb/dinehub/internal/adapter/memory"
	"github.com/YelzhanWeb/dinehub/internal/adapter/metrics"
	"github.com/YelzhanWeb/dinehub/internal/app/outlet"
	"github.com/YelzhanWeb/dinehub/internal/domain"
)

func newService() *Service {
	dir := outlet.NewDirectory([]domain.Outlet{{
		ID: "burger-barn", Name: "Burger Barn", Open: true,
		Menu: []domain.MenuItem{
			{ID: "burger", Name: "Burger", PriceINR: domain.Rupees(150)},
			{ID: "fries", Name: "Fries", PriceINR: domain.Rupees(80)},
		},
	}})
	return NewService(memory.NewSessionStore(), dir, metrics.Nop{}, logger.Nop())
}

func TestService_CartFlow(t *testing.T) {
	ctx := context.Background()
	s := newService()

	_, err := s.AddItem(ctx, "s-1", "burger", 1)
	require.NoError(t, err)
	_, err = s.AddItem(ctx, "s-1", "fries", 1)
	require.NoError(t, err)
	view, err := s.AddItem(ctx, "s-1", "burger", 1)
	require.NoError(t, err)

	assert.Equal(t, 3, view.ItemCount)
	assert.Equal(t, domain.Rupees(380), view.Total)
	require.Len(t, view.Lines, 2)
	assert.Equal(t, "burger", view.Lines[0].MenuItem.ID)
	assert.False(t, view.LoggedIn)

	view, err = s.SetQuantity(ctx, "s-1", "fries", 0)
	require.NoError(t, err)
	assert.Equal(t, domain.Rupees(300), view.Total)

	view, err = s.RemoveItem(ctx, "s-1", "burger")
	require.NoError(t, err)
	assert.Equal(t, 0, view.ItemCount)
}

func TestService_Rejections(t *testing.T) {
	ctx := context.Background()
	s := newService()

	_, err := s.AddItem(ctx, "s-1", "sushi", 1)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	_, err = s.AddItem(ctx, "s-1", "burger", 0)
	assert.ErrorIs(t, err, domain.ErrInvalidQuantity)

	_, err = s.SetQuantity(ctx, "s-1", "burger", 2)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	view, err := s.View(ctx, "s-1")
	require.NoError(t, err)
	assert.Equal(t, 0, view.ItemCount)
}

func TestService_SaveProfile(t *testing.T) {
	ctx := context.Background()
	s := newService()

	saved, err := s.SaveProfile(ctx, "s-1", domain.Profile{
		Name: "  Asha Rao ", Email: "asha@example.com", Phone: "+919876543210",
	})
	require.NoError(t, err)
	assert.Equal(t, "Asha Rao", saved.Name)

	_, err = s.SaveProfile(ctx, "s-1", domain.Profile{Name: "A", Email: "nope", Phone: "123"})
	var verr *domain.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Len(t, verr.Fields, 3)
	assert.ErrorIs(t, err, domain.ErrInvalidProfile)
}
