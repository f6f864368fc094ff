package models

import "time"

// RefreshSession backs one issued refresh token. Deleting the row revokes
// the token; ExpiresAt equals the token's exp claim.
type RefreshSession struct {
	ID        int64
	UserID    string
	Marker    string
	ExpiresAt time.Time
	CreatedAt time.Time
}

// Expired reports whether the session is past its expiry at now (inclusive).
func (s RefreshSession) Expired(now time.Time) bool {
	return !now.Before(s.ExpiresAt)
}
