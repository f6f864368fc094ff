package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestExpiryBoundaryIsInclusive(t *testing.T) {
	exp := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)

	at := ActivationToken{ExpiresAt: exp}
	assert.False(t, at.Expired(exp.Add(-time.Nanosecond)))
	assert.True(t, at.Expired(exp))
	assert.True(t, at.Expired(exp.Add(time.Second)))

	rs := RefreshSession{ExpiresAt: exp}
	assert.False(t, rs.Expired(exp.Add(-time.Second)))
	assert.True(t, rs.Expired(exp))
}
