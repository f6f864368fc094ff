// Package common defines shared constants and sentinel errors used across
// client and server layers of GophAccounts. Callers should use errors.Is to
// match these values.
package common

import (
	"errors"
	"fmt"
)

// Categories. Every domain error below wraps exactly one of them so boundary
// layers can map a whole family to a transport status with a single errors.Is.
var (
	ErrValidation = errors.New("validation error")
	ErrConflict   = errors.New("conflict")
	ErrAuth       = errors.New("authentication error")
)

var (
	// Repository-level errors.
	ErrorNotFound      = errors.New("not found")
	ErrorAlreadyExists = errors.New("already exists")

	// Service-level errors (generic/internal flow control).
	ErrorInternal = errors.New("internal error")

	// Credential errors.
	ErrWeakCredential          = fmt.Errorf("%w: password must be 8+ chars and contain letters and digits", ErrValidation)
	ErrPasswordTooLong         = fmt.Errorf("%w: password must not exceed 72 bytes", ErrValidation)
	ErrInvalidEmail            = fmt.Errorf("%w: invalid email", ErrValidation)
	ErrCorruptCredentialRecord = errors.New("corrupt credential record")

	// Registration errors.
	ErrEmailTaken = fmt.Errorf("%w: email already registered", ErrConflict)

	// Login errors.
	ErrInvalidCredentials = fmt.Errorf("%w: invalid credentials", ErrAuth)
	ErrAccountNotActive   = fmt.Errorf("%w: account is not activated", ErrAuth)

	// Token errors.
	ErrInvalidToken     = fmt.Errorf("%w: invalid token", ErrAuth)
	ErrInvalidSignature = fmt.Errorf("%w: invalid token signature", ErrAuth)
	ErrTokenExpired     = fmt.Errorf("%w: token expired", ErrAuth)
	ErrWrongTokenType   = fmt.Errorf("%w: invalid token type", ErrAuth)

	// Refresh session errors.
	ErrSessionRevoked = fmt.Errorf("%w: refresh token revoked", ErrAuth)
	ErrSessionExpired = fmt.Errorf("%w: refresh token expired", ErrAuth)
)
