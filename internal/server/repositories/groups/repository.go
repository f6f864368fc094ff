// Package groups persists user groups.
package groups

import (
	"context"

	"github.com/dmitrijs2005/gophaccounts/internal/server/models"
)

type Repository interface {
	// GetOrCreate returns the group named name, creating it if needed.
	// Concurrent callers observe the same row.
	GetOrCreate(ctx context.Context, name string) (*models.UserGroup, error)
}
