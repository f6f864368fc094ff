package models

import "time"

// ActivationToken is the single live activation secret of a user.
type ActivationToken struct {
	UserID    string
	Token     string
	ExpiresAt time.Time
}

// Expired reports whether the token can no longer be used at now.
// The boundary is inclusive: a token is dead at its expiry instant.
func (t ActivationToken) Expired(now time.Time) bool {
	return !now.Before(t.ExpiresAt)
}
