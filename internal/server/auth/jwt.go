// Package auth signs and verifies the HS256 JWTs handed out to clients.
package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/gophaccounts/internal/common"
	"github.com/golang-jwt/jwt/v5"
)

// Claims is the token payload: standard claims (sub, iat, exp) plus the
// token type and, for refresh tokens, the session marker.
type Claims struct {
	jwt.RegisteredClaims
	Type   string `json:"type"`
	Marker string `json:"rt,omitempty"`
}

// NewClaims builds claims for subject of the given type. marker may be empty.
func NewClaims(subject, tokenType, marker string) Claims {
	return Claims{
		RegisteredClaims: jwt.RegisteredClaims{Subject: subject},
		Type:             tokenType,
		Marker:           marker,
	}
}

// Option configures a Signer.
type Option func(*Signer)

// WithClock replaces time.Now, mostly for tests.
func WithClock(now func() time.Time) Option {
	return func(s *Signer) { s.now = now }
}

// Signer issues and checks tokens with one static secret.
type Signer struct {
	secret []byte
	now    func() time.Time
}

func NewSigner(secret []byte, opts ...Option) *Signer {
	s := &Signer{secret: secret, now: time.Now}
	for _, o := range opts {
		o(s)
	}
	return s
}

// Sign stamps iat/exp onto claims and returns the compact token together
// with its exact expiry. exp has whole-second precision, so the returned
// time is what a verifier will see.
func (s *Signer) Sign(claims Claims, ttl time.Duration) (string, time.Time, error) {
	now := s.now()
	claims.IssuedAt = jwt.NewNumericDate(now)
	claims.ExpiresAt = jwt.NewNumericDate(now.Add(ttl))

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("%w: sign token: %v", common.ErrorInternal, err)
	}
	return token, claims.ExpiresAt.Time, nil
}

// Verify checks signature, algorithm and expiry and returns the claims.
// Expired tokens give common.ErrTokenExpired; anything else wrong with the
// token gives common.ErrInvalidSignature.
func (s *Signer) Verify(token string) (*Claims, error) {
	claims := &Claims{}

	parsed, err := jwt.ParseWithClaims(token, claims,
		func(*jwt.Token) (any, error) { return s.secret, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, common.ErrTokenExpired
		}
		return nil, common.ErrInvalidSignature
	}

	if !parsed.Valid || claims.Subject == "" {
		return nil, common.ErrInvalidSignature
	}

	return claims, nil
}
