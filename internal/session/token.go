package session

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/marshospital/hospice/internal/hospital"
)

// DefaultTokenTTL bounds how long a session token stays valid.
const DefaultTokenTTL = 12 * time.Hour

// Claims carries the session identity inside an HMAC-signed JWT.
type Claims struct {
	Name string `json:"name"`
	Role string `json:"role"`
	jwt.RegisteredClaims
}

// TokenIssuer signs and verifies session tokens.
type TokenIssuer struct {
	secret []byte
	ttl    time.Duration
}

// NewTokenIssuer creates an issuer with the default TTL.
func NewTokenIssuer(secret string) *TokenIssuer {
	return &TokenIssuer{secret: []byte(secret), ttl: DefaultTokenTTL}
}

// Issue signs a token for the given principal.
func (t *TokenIssuer) Issue(id, name string, role hospital.Role) (string, error) {
	if len(t.secret) == 0 {
		return "", errors.New("session: token secret not configured")
	}
	now := time.Now()
	claims := Claims{
		Name: name,
		Role: string(role),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   id,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(t.ttl)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(t.secret)
	if err != nil {
		return "", fmt.Errorf("session: sign token: %w", err)
	}
	return signed, nil
}

// Verify parses a token and returns its claims.
func (t *TokenIssuer) Verify(tokenString string) (Claims, error) {
	claims := Claims{}
	token, err := jwt.ParseWithClaims(tokenString, &claims, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return t.secret, nil
	})
	if err != nil {
		return Claims{}, fmt.Errorf("session: verify token: %w", err)
	}
	if !token.Valid {
		return Claims{}, errors.New("session: invalid token")
	}
	return claims, nil
}
