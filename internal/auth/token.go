package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// ErrNoExpiry is returned when a token carries no exp claim.
var ErrNoExpiry = errors.New("token has no expiry")

// Token is an access token issued by the SSO service.
type Token struct {
	AccessToken string
	TokenType   string
	ExpiresIn   time.Duration
	IssuedAt    time.Time
}

// ExpiresAt prefers the JWT exp claim and falls back to IssuedAt+ExpiresIn.
// The zero time means the expiry is unknown.
func (t Token) ExpiresAt() time.Time {
	if exp, err := TokenExpiry(t.AccessToken); err == nil {
		return exp
	}
	if t.ExpiresIn > 0 {
		return t.IssuedAt.Add(t.ExpiresIn)
	}
	return time.Time{}
}

// RefreshAt returns when a replacement should be fetched: ahead of expiry by
// margin, but never earlier than halfway through the token's lifetime.
func (t Token) RefreshAt(margin time.Duration) time.Time {
	exp := t.ExpiresAt()
	if exp.IsZero() {
		return time.Time{}
	}
	at := exp.Add(-margin)
	half := t.IssuedAt.Add(exp.Sub(t.IssuedAt) / 2)
	if at.Before(half) {
		return half
	}
	return at
}

// TokenExpiry reads the exp claim of a JWT without verifying its signature.
func TokenExpiry(token string) (time.Time, error) {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return time.Time{}, fmt.Errorf("parse token: %w", err)
	}

	exp, err := claims.GetExpirationTime()
	if err != nil {
		return time.Time{}, fmt.Errorf("read exp claim: %w", err)
	}
	if exp == nil {
		return time.Time{}, ErrNoExpiry
	}
	return exp.Time, nil
}
