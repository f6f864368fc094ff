// Package credentials validates password strength and hashes passwords
// with bcrypt.
package credentials

import (
	"errors"
	"fmt"
	"unicode/utf8"

	"github.com/dmitrijs2005/gophaccounts/internal/common"
	"golang.org/x/crypto/bcrypt"
)

const (
	minPasswordRunes = 8
	// bcrypt only looks at the first 72 bytes.
	maxPasswordBytes = 72
)

// Policy holds the bcrypt work factor and a precomputed digest used to
// burn time on logins for unknown accounts.
type Policy struct {
	cost  int
	dummy []byte
}

// NewPolicy returns a Policy hashing with cost. Out-of-range costs fall back
// to bcrypt.DefaultCost.
func NewPolicy(cost int) *Policy {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = bcrypt.DefaultCost
	}

	dummy, err := bcrypt.GenerateFromPassword([]byte("dummy-password-1"), cost)
	if err != nil {
		panic(fmt.Sprintf("credentials: dummy digest: %v", err))
	}

	return &Policy{cost: cost, dummy: dummy}
}

// Validate requires at least 8 characters with one ASCII letter and one
// ASCII digit, and at most 72 bytes.
func (p *Policy) Validate(password string) error {
	if len(password) > maxPasswordBytes {
		return common.ErrPasswordTooLong
	}
	if utf8.RuneCountInString(password) < minPasswordRunes {
		return common.ErrWeakCredential
	}

	var letter, digit bool
	for _, r := range password {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z':
			letter = true
		case r >= '0' && r <= '9':
			digit = true
		}
	}
	if !letter || !digit {
		return common.ErrWeakCredential
	}
	return nil
}

// Hash returns a salted bcrypt digest of password.
func (p *Policy) Hash(password string) (string, error) {
	digest, err := bcrypt.GenerateFromPassword([]byte(password), p.cost)
	if err != nil {
		if errors.Is(err, bcrypt.ErrPasswordTooLong) {
			return "", common.ErrPasswordTooLong
		}
		return "", fmt.Errorf("%w: hash password: %v", common.ErrorInternal, err)
	}
	return string(digest), nil
}

// Verify compares password with digest in constant time. A mismatch is
// (false, nil); a digest that is not bcrypt gives ErrCorruptCredentialRecord.
func (p *Policy) Verify(password, digest string) (bool, error) {
	err := bcrypt.CompareHashAndPassword([]byte(digest), []byte(password))
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, bcrypt.ErrMismatchedHashAndPassword):
		return false, nil
	default:
		return false, fmt.Errorf("%w: %v", common.ErrCorruptCredentialRecord, err)
	}
}

// VerifyDummy spends about as long as Verify against a real account.
func (p *Policy) VerifyDummy(password string) {
	_ = bcrypt.CompareHashAndPassword(p.dummy, []byte(password))
}
