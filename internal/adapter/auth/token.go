package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/YelzhanWeb/dinehub/internal/config"
	"github.com/YelzhanWeb/dinehub/internal/domain"
)

var ErrInvalidToken = errors.New("invalid token")

// Claims identify the client behind a bearer token. Subject is the client id.
type Claims struct {
	Name string            `json:"name"`
	Role domain.ViewerRole `json:"role"`
	jwt.RegisteredClaims
}

type Tokens struct {
	secret []byte
	issuer string
	ttl    time.Duration
	now    func() time.Time
}

func NewTokens(cfg config.AuthConfig) *Tokens {
	return &Tokens{
		secret: []byte(cfg.JWTSecret),
		issuer: cfg.Issuer,
		ttl:    cfg.TokenTTL,
		now:    time.Now,
	}
}

// Issue signs an HS256 token for clientID.
func (t *Tokens) Issue(clientID, name string, role domain.ViewerRole) (string, error) {
	if clientID == "" {
		return "", errors.New("client id is required")
	}
	if !role.IsValid() {
		return "", fmt.Errorf("unknown role %q", role)
	}

	now := t.now()
	claims := &Claims{
		Name: name,
		Role: role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   clientID,
			Issuer:    t.issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(t.ttl)),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(t.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, nil
}

// Parse verifies signature, issuer and expiry.
func (t *Tokens) Parse(raw string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(raw, claims,
		func(token *jwt.Token) (any, error) {
			return t.secret, nil
		},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(t.issuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(t.now),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if !token.Valid || claims.Subject == "" {
		return nil, ErrInvalidToken
	}
	if !claims.Role.IsValid() {
		claims.Role = domain.RoleCustomer
	}
	return claims, nil
}
