// Package token mints and parses the HS256 JWTs used both as magic-link tokens
// and as bearer access credentials.
package token

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

var (
	ErrInvalid = errors.New("invalid token")
	ErrExpired = errors.New("token expired")
)

// Purpose is carried in the audience claim. A token only parses for the
// purpose it was issued for.
type Purpose string

const (
	MagicLink Purpose = "magic-link"
	Access    Purpose = "access"
)

// Claims carries the registered claims plus the user binding.
type Claims struct {
	jwt.RegisteredClaims
	UserID string `json:"userId"`
	Email  string `json:"email"`
}

// Signer issues and verifies tokens with a shared secret.
type Signer struct {
	secret []byte
	now    func() time.Time
}

func NewSigner(secret string) *Signer {
	return &Signer{secret: []byte(secret), now: time.Now}
}

// WithClock returns a copy of the signer reading time from now.
func (s *Signer) WithClock(now func() time.Time) *Signer {
	return &Signer{secret: s.secret, now: now}
}

// Issue mints a token for the user valid for ttl. Every token carries a fresh jti,
// so two tokens issued for the same user in the same second still differ.
func (s *Signer) Issue(purpose Purpose, userID, email string, ttl time.Duration) (string, time.Time, error) {
	now := s.now()
	expiresAt := now.Add(ttl)

	t := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Subject:   userID,
			Audience:  jwt.ClaimStrings{string(purpose)},
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
		UserID: userID,
		Email:  email,
	})

	signed, err := t.SignedString(s.secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("sign token: %w", err)
	}
	return signed, expiresAt, nil
}

// Parse verifies signature, algorithm, expiry and purpose and returns the claims.
func (s *Signer) Parse(purpose Purpose, tokenString string) (*Claims, error) {
	claims := &Claims{}

	t, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		return s.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithAudience(string(purpose)),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, fmt.Errorf("%w: %v", ErrExpired, err)
		}
		return nil, fmt.Errorf("%w: %v", ErrInvalid, err)
	}

	if !t.Valid || claims.UserID == "" {
		return nil, ErrInvalid
	}

	return claims, nil
}
