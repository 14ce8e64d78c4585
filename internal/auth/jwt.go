// Package auth handles passwords, session lifecycle and the session cookie.
//
// SESSION FLOW:
//  1. Signup/signin creates a server-side session keyed by a random token.
//  2. The token is wrapped in an HS256 JWT and set as the "sid" cookie.
//  3. RequireSession verifies the JWT, loads the session from the store and
//     puts it in the request context.
//  4. Logout deletes the session and clears the cookie.
//
// The JWT only proves the cookie was issued by this server. The store is the
// source of truth, so a logged-out token stays dead even if its JWT is still
// inside its expiry.
package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const issuer = "habit-tracker"

// ErrInvalidToken is returned for any cookie value that fails verification.
var ErrInvalidToken = errors.New("auth: invalid token")

// TokenService signs and verifies session cookie values.
type TokenService struct {
	secret []byte
}

// NewTokenService creates a TokenService with the given secret.
func NewTokenService(secret string) (*TokenService, error) {
	if len(secret) < 16 {
		return nil, errors.New("auth: session secret must be at least 16 characters")
	}
	return &TokenService{secret: []byte(secret)}, nil
}

// Sign wraps a session token in a JWT that expires at expiresAt.
// The session token is carried in both "sub" and "jti".
func (s *TokenService) Sign(sessionToken string, expiresAt time.Time) (string, error) {
	now := time.Now()

	c := jwt.RegisteredClaims{
		ID:        sessionToken,
		Subject:   sessionToken,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(expiresAt),
		Issuer:    issuer,
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, c).SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("auth: signing token: %w", err)
	}
	return signed, nil
}

// SignWithDuration is Sign with a relative expiry. Used in tests.
func (s *TokenService) SignWithDuration(sessionToken string, d time.Duration) (string, error) {
	return s.Sign(sessionToken, time.Now().Add(d))
}

// Validate verifies a signed cookie value and returns the session token.
// Only HS256 tokens from this issuer with an expiry are accepted.
func (s *TokenService) Validate(signed string) (string, error) {
	token, err := jwt.ParseWithClaims(
		signed,
		&jwt.RegisteredClaims{},
		func(token *jwt.Token) (any, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
			}
			return s.secret, nil
		},
		jwt.WithValidMethods([]string{"HS256"}),
		jwt.WithIssuer(issuer),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return "", fmt.Errorf("%w: expired", ErrInvalidToken)
		}
		return "", fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	c, ok := token.Claims.(*jwt.RegisteredClaims)
	if !ok || !token.Valid {
		return "", fmt.Errorf("%w: bad claims", ErrInvalidToken)
	}
	if c.Subject == "" {
		return "", fmt.Errorf("%w: no subject", ErrInvalidToken)
	}
	return c.Subject, nil
}
