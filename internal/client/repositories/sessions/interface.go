package sessions

import (
	"context"

	"github.com/dmitrijs2005/gophaccounts/internal/client/models"
)

// Repository stores at most one session.
type Repository interface {
	// Load returns the cached session, or nil when none is stored.
	Load(ctx context.Context) (*models.Session, error)
	Save(ctx context.Context, s *models.Session) error
	Clear(ctx context.Context) error
}
