package domain

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProfile_Validate(t *testing.T) {
	valid := Profile{Name: "Asha Rao", Email: "asha@example.com", Phone: "+919876543210"}

	tests := []struct {
		name   string
		mutate func(p *Profile)
		fields []string
	}{
		{"valid without address", func(p *Profile) {}, nil},
		{"valid with address", func(p *Profile) { p.Address = "12 Foodie Lane" }, nil},
		{"short name", func(p *Profile) { p.Name = "A" }, []string{"name"}},
		{"missing email", func(p *Profile) { p.Email = "" }, []string{"email"}},
		{"bad email", func(p *Profile) { p.Email = "asha@" }, []string{"email"}},
		{"phone without country code", func(p *Profile) { p.Phone = "9876543210" }, []string{"phone"}},
		{"phone too short", func(p *Profile) { p.Phone = "+91987654321" }, []string{"phone"}},
		{"everything missing", func(p *Profile) { *p = Profile{} }, []string{"name", "email", "phone"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := valid
			tt.mutate(&p)
			err := p.Validate()
			if tt.fields == nil {
				assert.NoError(t, err)
				return
			}

			require.ErrorIs(t, err, ErrInvalidProfile)
			var verr *ValidationError
			require.True(t, errors.As(err, &verr))
			var got []string
			for _, f := range verr.Fields {
				got = append(got, f.Field)
			}
			assert.ElementsMatch(t, tt.fields, got)
		})
	}
}

func TestSession_Identity(t *testing.T) {
	s := NewGuestSession("guest-1")
	_, err := s.Identity()
	assert.ErrorIs(t, err, ErrUnauthenticated)

	s.LoggedIn = true
	_, err = s.Identity()
	assert.ErrorIs(t, err, ErrUnauthenticated, "logged in without a client id")

	s.ClientID = "c-1"
	s.DisplayName = "asha"
	id, err := s.Identity()
	require.NoError(t, err)
	assert.Equal(t, "asha", id.ClientName)

	require.NoError(t, s.SaveProfile(Profile{Name: "  Asha Rao ", Email: "asha@example.com", Phone: "+919876543210"}))
	id, err = s.Identity()
	require.NoError(t, err)
	assert.Equal(t, ClientIdentity{ClientID: "c-1", ClientName: "Asha Rao"}, id)
}

func TestSession_SaveProfileRejectsInvalid(t *testing.T) {
	s := NewGuestSession("g")
	err := s.SaveProfile(Profile{Name: "Asha"})
	assert.ErrorIs(t, err, ErrInvalidProfile)
	assert.Nil(t, s.Profile)
}

func TestSession_Binding(t *testing.T) {
	burger := MenuItem{ID: "burger", Name: "Burger", PriceINR: Rupees(150)}

	s := NewGuestSession("s-1")
	require.NoError(t, s.BindGuest())
	require.NoError(t, s.Cart.AddItem(burger, 1))
	require.NoError(t, s.SaveProfile(Profile{Name: "Someone", Email: "x@example.com", Phone: "+919876543210"}))

	// first login takes ownership, keeps the cart and drops the guest profile
	require.NoError(t, s.BindClient("alice", "Alice", RoleCustomer))
	assert.Equal(t, "alice", s.Owner)
	assert.True(t, s.LoggedIn)
	assert.Equal(t, 1, s.Cart.ItemCount())
	assert.Nil(t, s.Profile)

	require.NoError(t, s.SaveProfile(Profile{Name: "Alice Real", Email: "alice@example.com", Phone: "+919876543210"}))
	require.NoError(t, s.BindClient("alice", "Alice", RoleCustomer))
	require.NotNil(t, s.Profile, "same owner keeps the profile")

	err := s.BindClient("bob", "Bob", RoleCustomer)
	assert.ErrorIs(t, err, ErrForbidden)
	assert.Equal(t, "alice", s.ClientID)

	assert.ErrorIs(t, s.BindGuest(), ErrForbidden)
	assert.True(t, s.LoggedIn)

	assert.ErrorIs(t, NewGuestSession("s-2").BindClient("", "x", RoleCustomer), ErrUnauthenticated)
}
