package http

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/YelzhanWeb/dinehub/internal/adapter/auth"
	"github.com/YelzhanWeb/dinehub/internal/adapter/logger"
	"github.com/YelzhanWeb/dinehub/internal/adapter/memory"
	"github.com/YelzhanWeb/dinehub/internal/adapter/metrics"
	"github.com/YelzhanWeb/dinehub/internal/adapter/rabbitmq"
	"github.com/YelzhanWeb/dinehub/internal/app/cart"
	"github.com/YelzhanWeb/dinehub/internal/app/order"
	"github.com/YelzhanWeb/dinehub/internal/app/outlet"
	"github.com/YelzhanWeb/dinehub/internal/app/tracking"
	"github.com/YelzhanWeb/dinehub/internal/config"
	"github.com/YelzhanWeb/dinehub/internal/domain"
	"github.com/YelzhanWeb/dinehub/internal/interfaces"
)

type testServer struct {
	handler http.Handler
	tokens  *auth.Tokens
}

func newTestServer(t *testing.T, health Pinger) *testServer {
	t.Helper()

	dir := outlet.NewDirectory([]domain.Outlet{
		{
			ID: "burger-barn", Name: "Burger Barn", AvgPrepMinutes: 10, Open: true,
			Menu: []domain.MenuItem{
				{ID: "classic-burger", Name: "Classic Burger", PriceINR: domain.Rupees(150)},
				{ID: "fries", Name: "Fries", PriceINR: domain.Rupees(80)},
			},
		},
		{ID: "chai-point", Name: "Chai Point", AvgPrepMinutes: 5, Open: false},
	})

	lgr := logger.Nop()
	repo := memory.NewOrderRepository()
	sessions := memory.NewSessionStore()
	rec := metrics.NewRecorder()
	tokens := auth.NewTokens(config.AuthConfig{JWTSecret: "test-secret", Issuer: "dinehub", TokenTTL: time.Hour})

	orders := order.NewService(
		repo,
		memory.NewSequence(time.Now),
		outlet.NewQueueEstimator(dir, repo, 3, 20),
		sessions,
		dir,
		rabbitmq.NopPublisher{},
		rec,
		lgr,
		20,
	)

	h := NewRouter(RouterDeps{
		Cart:     cart.NewService(sessions, dir, rec, lgr),
		Orders:   orders,
		Tracking: tracking.NewService(repo, dir, lgr, 50),
		Outlets:  dir,
		Sessions: sessions,
		Tokens:   tokens,
		Metrics:  rec.Handler(),
		Health:   health,
		Logger:   lgr,
	})
	return &testServer{handler: h, tokens: tokens}
}

type client struct {
	t         *testing.T
	srv       *testServer
	sessionID string
	token     string
}

func (s *testServer) guest(t *testing.T) *client {
	return &client{t: t, srv: s}
}

func (s *testServer) login(t *testing.T, clientID, name string, role domain.ViewerRole) *client {
	raw, err := s.tokens.Issue(clientID, name, role)
	require.NoError(t, err)
	return &client{t: t, srv: s, token: raw}
}

func (c *client) do(method, path string, body any) *httptest.ResponseRecorder {
	c.t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(c.t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	if c.sessionID != "" {
		req.Header.Set(HeaderSessionID, c.sessionID)
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	rr := httptest.NewRecorder()
	c.srv.handler.ServeHTTP(rr, req)
	if id := rr.Header().Get(HeaderSessionID); id != "" {
		c.sessionID = id
	}
	return rr
}

func decode[T any](t *testing.T, rr *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &v))
	return v
}

func TestHealth(t *testing.T) {
	rr := newTestServer(t, nil).guest(t).do(http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.NotEmpty(t, rr.Header().Get(HeaderRequestID))

	down := newTestServer(t, func(context.Context) error { return errors.New("db down") })
	rr = down.guest(t).do(http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusServiceUnavailable, rr.Code)
}

func TestMetricsEndpoint(t *testing.T) {
	rr := newTestServer(t, nil).guest(t).do(http.MethodGet, "/metrics", nil)
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), "go_goroutines")
}

func TestOutlets(t *testing.T) {
	c := newTestServer(t, nil).guest(t)

	rr := c.do(http.MethodGet, "/outlets", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	outlets := decode[[]domain.Outlet](t, rr)
	assert.Len(t, outlets, 2)

	rr = c.do(http.MethodGet, "/outlets/burger-barn", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "Burger Barn", decode[domain.Outlet](t, rr).Name)

	rr = c.do(http.MethodGet, "/outlets/nope", nil)
	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestCart_GuestFlow(t *testing.T) {
	c := newTestServer(t, nil).guest(t)

	rr := c.do(http.MethodPost, "/cart/items", AddItemRequest{MenuItemID: "classic-burger"})
	require.Equal(t, http.StatusOK, rr.Code)
	require.NotEmpty(t, c.sessionID)

	qty := 2
	rr = c.do(http.MethodPost, "/cart/items", AddItemRequest{MenuItemID: "fries", Quantity: &qty})
	require.Equal(t, http.StatusOK, rr.Code)

	view := decode[map[string]any](t, c.do(http.MethodGet, "/cart", nil))
	assert.Equal(t, float64(3), view["item_count"])
	assert.Equal(t, 310.0, view["total_inr"])
	assert.Equal(t, false, view["logged_in"])

	rr = c.do(http.MethodPut, "/cart/items/fries", SetQuantityRequest{Quantity: &qty})
	assert.Equal(t, http.StatusOK, rr.Code)

	rr = c.do(http.MethodDelete, "/cart/items/classic-burger", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, float64(2), decode[map[string]any](t, rr)["item_count"])

	rr = c.do(http.MethodPost, "/cart/checkout", CheckoutRequest{OutletID: "burger-barn"})
	assert.Equal(t, http.StatusUnauthorized, rr.Code)
}

func TestCart_Errors(t *testing.T) {
	zero := 0
	tests := []struct {
		name   string
		method string
		path   string
		body   any
		status int
	}{
		{"unknown item", http.MethodPost, "/cart/items", AddItemRequest{MenuItemID: "pizza"}, http.StatusNotFound},
		{"missing item id", http.MethodPost, "/cart/items", AddItemRequest{}, http.StatusBadRequest},
		{"zero quantity", http.MethodPost, "/cart/items", AddItemRequest{MenuItemID: "fries", Quantity: &zero}, http.StatusBadRequest},
		{"unknown field", http.MethodPost, "/cart/items", map[string]any{"item": "fries"}, http.StatusBadRequest},
		{"set quantity absent", http.MethodPut, "/cart/items/fries", map[string]any{"quantity": 3}, http.StatusNotFound},
		{"set quantity missing", http.MethodPut, "/cart/items/fries", map[string]any{}, http.StatusBadRequest},
		{"bad profile", http.MethodPut, "/profile", domain.Profile{Name: "A", Email: "x", Phone: "123"}, http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := newTestServer(t, nil).guest(t).do(tt.method, tt.path, tt.body)
			assert.Equal(t, tt.status, rr.Code)
		})
	}
}

func TestProfile_ValidationFields(t *testing.T) {
	rr := newTestServer(t, nil).guest(t).do(http.MethodPut, "/profile", domain.Profile{Name: "Asha", Email: "bad", Phone: "+919876543210"})
	require.Equal(t, http.StatusBadRequest, rr.Code)

	resp := decode[ErrorResponse](t, rr)
	require.Len(t, resp.Errors, 1)
	assert.Equal(t, "email", resp.Errors[0].Field)
}

func TestInvalidToken(t *testing.T) {
	srv := newTestServer(t, nil)
	c := &client{t: t, srv: srv, token: "garbage"}
	rr := c.do(http.MethodGet, "/cart", nil)
	assert.Equal(t, http.StatusUnauthorized, rr.Code)
}

func TestOrderLifecycle(t *testing.T) {
	srv := newTestServer(t, nil)
	customer := srv.login(t, "client-1", "Asha", domain.RoleCustomer)
	staff := srv.login(t, "staff-1", "Ravi", domain.RoleStaff)
	stranger := srv.login(t, "client-2", "Vikram", domain.RoleCustomer)

	// closed outlet and empty cart are rejected before anything is stored
	rr := customer.do(http.MethodPost, "/cart/checkout", CheckoutRequest{OutletID: "burger-barn"})
	assert.Equal(t, http.StatusUnprocessableEntity, rr.Code)
	rr = customer.do(http.MethodPost, "/cart/items", AddItemRequest{MenuItemID: "classic-burger"})
	require.Equal(t, http.StatusOK, rr.Code)
	rr = customer.do(http.MethodPost, "/cart/checkout", CheckoutRequest{OutletID: "chai-point"})
	assert.Equal(t, http.StatusUnprocessableEntity, rr.Code)

	rr = customer.do(http.MethodPost, "/cart/checkout", CheckoutRequest{OutletID: "burger-barn"})
	require.Equal(t, http.StatusCreated, rr.Code)
	placed := decode[OrderResponse](t, rr)
	assert.Equal(t, domain.StatusPending, placed.Status)
	assert.Equal(t, 1, placed.TokenNumber)
	assert.Equal(t, domain.Rupees(150), placed.TotalAmount)
	assert.Equal(t, 10, placed.EstimatedWaitMinutes)

	view := decode[map[string]any](t, customer.do(http.MethodGet, "/cart", nil))
	assert.Equal(t, float64(0), view["item_count"])

	path := "/orders/" + placed.ID

	rr = customer.do(http.MethodPost, path+"/status", TransitionRequest{Status: "accepted"})
	assert.Equal(t, http.StatusForbidden, rr.Code)

	rr = staff.do(http.MethodPost, path+"/status", TransitionRequest{Status: "baking"})
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	rr = staff.do(http.MethodPost, path+"/status", TransitionRequest{Status: "ready"})
	assert.Equal(t, http.StatusConflict, rr.Code)

	rr = staff.do(http.MethodPost, path+"/status", TransitionRequest{Status: "accepted"})
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, domain.StatusAccepted, decode[OrderResponse](t, rr).Status)

	minutes := 25
	rr = staff.do(http.MethodPut, path+"/eta", UpdateETARequest{Minutes: &minutes})
	require.Equal(t, http.StatusOK, rr.Code)
	eta := decode[UpdateETAResponse](t, rr)
	assert.True(t, eta.Applied)
	assert.Equal(t, 25, eta.Order.EstimatedWaitMinutes)

	rr = customer.do(http.MethodPut, path+"/eta", UpdateETARequest{Minutes: &minutes})
	assert.Equal(t, http.StatusForbidden, rr.Code)

	rr = customer.do(http.MethodGet, path, nil)
	require.Equal(t, http.StatusOK, rr.Code)
	card := decode[map[string]any](t, rr)
	assert.Equal(t, "accepted", card["status"])
	assert.NotNil(t, card["outlet"])
	assert.Nil(t, card["client"])

	rr = staff.do(http.MethodGet, path, nil)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.NotNil(t, decode[map[string]any](t, rr)["client"])

	rr = stranger.do(http.MethodGet, path, nil)
	assert.Equal(t, http.StatusNotFound, rr.Code)

	rr = customer.do(http.MethodGet, path+"/history", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	history := decode[[]domain.StatusLog](t, rr)
	require.Len(t, history, 2)
	assert.Equal(t, domain.StatusPending, history[0].Status)
	assert.Equal(t, domain.StatusAccepted, history[1].Status)

	rr = staff.do(http.MethodGet, "/orders?active=true&outlet_id=burger-barn", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Len(t, decode[[]map[string]any](t, rr), 1)

	rr = stranger.do(http.MethodGet, "/orders", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Empty(t, decode[[]map[string]any](t, rr))

	rr = staff.do(http.MethodGet, "/orders?limit=zero", nil)
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	rr = srv.guest(t).do(http.MethodGet, "/orders", nil)
	assert.Equal(t, http.StatusUnauthorized, rr.Code)
}

func TestCustomerCancel(t *testing.T) {
	srv := newTestServer(t, nil)
	customer := srv.login(t, "client-1", "Asha", domain.RoleCustomer)

	require.Equal(t, http.StatusOK, customer.do(http.MethodPost, "/cart/items", AddItemRequest{MenuItemID: "fries"}).Code)
	rr := customer.do(http.MethodPost, "/cart/checkout", CheckoutRequest{OutletID: "burger-barn"})
	require.Equal(t, http.StatusCreated, rr.Code)
	placed := decode[OrderResponse](t, rr)

	for i := 0; i < 2; i++ {
		rr = customer.do(http.MethodPost, "/orders/"+placed.ID+"/status", TransitionRequest{Status: "cancelled"})
		require.Equal(t, http.StatusOK, rr.Code)
		assert.Equal(t, domain.StatusCancelled, decode[OrderResponse](t, rr).Status)
	}
}

func TestSession_IsolatedBetweenClients(t *testing.T) {
	srv := newTestServer(t, nil)
	alice := srv.login(t, "alice", "Alice", domain.RoleCustomer)
	bob := srv.login(t, "bob", "Bob", domain.RoleCustomer)
	staff := srv.login(t, "staff-1", "Ravi", domain.RoleStaff)

	rr := alice.do(http.MethodPut, "/profile", domain.Profile{Name: "Alice Real", Email: "alice@example.com", Phone: "+919876543210"})
	require.Equal(t, http.StatusOK, rr.Code)
	qty := 2
	rr = alice.do(http.MethodPost, "/cart/items", AddItemRequest{MenuItemID: "classic-burger", Quantity: &qty})
	require.Equal(t, http.StatusOK, rr.Code)
	require.Equal(t, "client:alice", alice.sessionID)

	t.Run("guest cannot use a client session id", func(t *testing.T) {
		guest := srv.guest(t)
		guest.sessionID = alice.sessionID
		rr := guest.do(http.MethodGet, "/cart", nil)
		assert.Equal(t, http.StatusForbidden, rr.Code)
		assert.NotContains(t, rr.Body.String(), "classic-burger")
	})

	t.Run("another client cannot use a client session id", func(t *testing.T) {
		intruder := &client{t: t, srv: srv, token: bob.token, sessionID: alice.sessionID}
		rr := intruder.do(http.MethodPost, "/cart/checkout", CheckoutRequest{OutletID: "burger-barn"})
		assert.Equal(t, http.StatusForbidden, rr.Code)
	})

	t.Run("owned guest-style session ids are refused too", func(t *testing.T) {
		// alice starts as a guest and logs in on the same session
		shared := srv.guest(t)
		require.Equal(t, http.StatusOK, shared.do(http.MethodGet, "/cart", nil).Code)
		owned := &client{t: t, srv: srv, token: alice.token, sessionID: shared.sessionID}
		require.Equal(t, http.StatusOK, owned.do(http.MethodGet, "/cart", nil).Code)

		rr := shared.do(http.MethodGet, "/cart", nil)
		assert.Equal(t, http.StatusForbidden, rr.Code)

		intruder := &client{t: t, srv: srv, token: bob.token, sessionID: shared.sessionID}
		rr = intruder.do(http.MethodGet, "/cart", nil)
		assert.Equal(t, http.StatusForbidden, rr.Code)
	})

	view := decode[map[string]any](t, alice.do(http.MethodGet, "/cart", nil))
	assert.Equal(t, float64(2), view["item_count"], "alice's cart is untouched")

	rr = bob.do(http.MethodPost, "/cart/items", AddItemRequest{MenuItemID: "fries"})
	require.Equal(t, http.StatusOK, rr.Code)
	rr = bob.do(http.MethodPost, "/cart/checkout", CheckoutRequest{OutletID: "burger-barn"})
	require.Equal(t, http.StatusCreated, rr.Code)
	rr = alice.do(http.MethodPost, "/cart/checkout", CheckoutRequest{OutletID: "burger-barn"})
	require.Equal(t, http.StatusCreated, rr.Code)

	rr = staff.do(http.MethodGet, "/orders", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	names := map[string]string{}
	for _, card := range decode[[]interfaces.DisplayModel](t, rr) {
		require.NotNil(t, card.Client)
		names[card.Client.ClientID] = card.Client.ClientName
	}
	assert.Equal(t, map[string]string{"alice": "Alice Real", "bob": "Bob"}, names)
}

func TestAuthorizationSchemes(t *testing.T) {
	srv := newTestServer(t, nil)
	raw, err := srv.tokens.Issue("client-1", "Asha", domain.RoleCustomer)
	require.NoError(t, err)

	tests := []struct {
		name     string
		header   string
		status   int
		loggedIn bool
	}{
		{"basic auth is ignored", "Basic dXNlcjpwYXNz", http.StatusOK, false},
		{"lowercase bearer", "bearer " + raw, http.StatusOK, true},
		{"bearer", "Bearer " + raw, http.StatusOK, true},
		{"bad bearer", "Bearer nope", http.StatusUnauthorized, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/cart", nil)
			req.Header.Set("Authorization", tt.header)
			rr := httptest.NewRecorder()
			srv.handler.ServeHTTP(rr, req)

			require.Equal(t, tt.status, rr.Code)
			if tt.status == http.StatusOK {
				assert.Equal(t, tt.loggedIn, decode[map[string]any](t, rr)["logged_in"])
			}
		})
	}
}
