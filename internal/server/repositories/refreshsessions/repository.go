// Package refreshsessions declares the server-side repository contract for
// persisted refresh sessions. A session row is what keeps a refresh token
// usable; deleting it revokes the token.
package refreshsessions

import (
	"context"

	"github.com/dmitrijs2005/gophaccounts/internal/server/models"
)

// Repository defines operations for creating, finding and revoking sessions.
type Repository interface {
	// Create stores s and fills in its ID and CreatedAt.
	Create(ctx context.Context, s *models.RefreshSession) error

	// GetByMarker returns the session for marker, or common.ErrorNotFound.
	GetByMarker(ctx context.Context, marker string) (*models.RefreshSession, error)

	// DeleteByMarker removes the session. Deleting a missing session is not
	// an error.
	DeleteByMarker(ctx context.Context, marker string) error
}
