// Package auth issues and verifies staff sessions and decides which role may
// call which route.
package auth

import (
	"errors"
	"fmt"
	"time"

	"orderdesk/internal/model"

	"github.com/golang-jwt/jwt/v5"
)

const issuer = "orderdesk"

// Claims are the JWT claims carried by a session token.
type Claims struct {
	Username string     `json:"username"`
	Role     model.Role `json:"role"`
	jwt.RegisteredClaims
}

// TokenIssuer signs and verifies HS256 session tokens.
type TokenIssuer struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// NewTokenIssuer creates an issuer. ttl is the lifetime of issued tokens.
func NewTokenIssuer(secret string, ttl time.Duration) *TokenIssuer {
	return &TokenIssuer{
		secret: []byte(secret),
		ttl:    ttl,
		now:    time.Now,
	}
}

// Issue creates a session for username acting as role.
func (i *TokenIssuer) Issue(username string, role model.Role) (model.Session, error) {
	if !role.IsStaff() {
		return model.Session{}, fmt.Errorf("cannot issue token for role %q", role)
	}

	now := i.now()
	expiresAt := now.Add(i.ttl)
	claims := &Claims{
		Username: username,
		Role:     role,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    issuer,
			Subject:   username,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(i.secret)
	if err != nil {
		return model.Session{}, fmt.Errorf("failed to sign token: %w", err)
	}

	return model.Session{
		Token:     token,
		Username:  username,
		Role:      role,
		ExpiresAt: expiresAt.UTC().Truncate(time.Second),
	}, nil
}

// Parse verifies a token and returns its session. Every failure, including
// expiry, is reported as model.ErrUnauthorised.
func (i *TokenIssuer) Parse(tokenString string) (model.Session, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(*jwt.Token) (any, error) {
		return i.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(issuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(i.now),
	)
	if err != nil || !token.Valid {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return model.Session{}, model.NewDomainError(model.ErrCodeUnauthorised, "Session has expired")
		}
		return model.Session{}, model.ErrUnauthorised
	}
	if !claims.Role.IsStaff() || claims.Username == "" {
		return model.Session{}, model.ErrUnauthorised
	}

	return model.Session{
		Token:     tokenString,
		Username:  claims.Username,
		Role:      claims.Role,
		ExpiresAt: claims.ExpiresAt.Time.UTC(),
	}, nil
}
