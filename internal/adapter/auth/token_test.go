package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/YelzhanWeb/dinehub/internal/config"
	"github.com/YelzhanWeb/dinehub/internal/domain"
)

func newTokens(secret string) *Tokens {
	return NewTokens(config.AuthConfig{JWTSecret: secret, Issuer: "dinehub", TokenTTL: time.Hour})
}

func TestTokens_RoundTrip(t *testing.T) {
	tokens := newTokens("s3cret")

	raw, err := tokens.Issue("client-1", "Asha", domain.RoleStaff)
	require.NoError(t, err)

	claims, err := tokens.Parse(raw)
	require.NoError(t, err)
	assert.Equal(t, "client-1", claims.Subject)
	assert.Equal(t, "Asha", claims.Name)
	assert.Equal(t, domain.RoleStaff, claims.Role)
}

func TestTokens_Rejects(t *testing.T) {
	tokens := newTokens("s3cret")
	raw, err := tokens.Issue("client-1", "Asha", domain.RoleCustomer)
	require.NoError(t, err)

	_, err = newTokens("other").Parse(raw)
	assert.ErrorIs(t, err, ErrInvalidToken)

	expired := newTokens("s3cret")
	expired.now = func() time.Time { return time.Now().Add(2 * time.Hour) }
	_, err = expired.Parse(raw)
	assert.ErrorIs(t, err, ErrInvalidToken)

	_, err = tokens.Parse("not-a-token")
	assert.ErrorIs(t, err, ErrInvalidToken)

	_, err = tokens.Issue("", "x", domain.RoleCustomer)
	assert.Error(t, err)
	_, err = tokens.Issue("c", "x", domain.ViewerRole("admin"))
	assert.Error(t, err)
}
