package auth

import (
	"fmt"
	"time"

	"github.com/arkicoffee/storefront-backend/pkg/config"
	"github.com/golang-jwt/jwt/v5"
)

type sessionClaims struct {
	Name string `json:"name"`
	jwt.RegisteredClaims
}

// TokenIssuer mints and verifies HS256 session tokens.
type TokenIssuer struct {
	secret []byte
	issuer string
	ttl    time.Duration
}

// NewTokenIssuer builds an issuer from JWT config.
func NewTokenIssuer(cfg config.JWTConfig) (*TokenIssuer, error) {
	if cfg.Secret == "" {
		return nil, fmt.Errorf("jwt secret required")
	}
	ttl := cfg.Expiration()
	if ttl <= 0 {
		return nil, fmt.Errorf("jwt expiration must be positive")
	}
	return &TokenIssuer{
		secret: []byte(cfg.Secret),
		issuer: cfg.Issuer,
		ttl:    ttl,
	}, nil
}

// Issue returns a signed session token for the user.
func (t *TokenIssuer) Issue(user User) (string, error) {
	now := time.Now()
	claims := sessionClaims{
		Name: user.Name,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.Email,
			Issuer:    t.issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(t.ttl)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(t.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

// Verify parses a session token and returns the embedded user.
func (t *TokenIssuer) Verify(raw string) (User, error) {
	var claims sessionClaims
	token, err := jwt.ParseWithClaims(raw, &claims, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", token.Header["alg"])
		}
		return t.secret, nil
	}, jwt.WithIssuer(t.issuer), jwt.WithExpirationRequired())
	if err != nil {
		return User{}, fmt.Errorf("parse token: %w", err)
	}
	if !token.Valid {
		return User{}, fmt.Errorf("invalid token")
	}
	return User{Name: claims.Name, Email: claims.Subject}, nil
}

// TTL exposes the configured session lifetime for cookie expiry.
func (t *TokenIssuer) TTL() time.Duration {
	return t.ttl
}
