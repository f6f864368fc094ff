// Package users declares the user directory contract and its PostgreSQL
// implementation.
package users

import (
	"context"

	"github.com/dmitrijs2005/gophaccounts/internal/server/models"
)

type Repository interface {
	// Create inserts user and fills in ID and timestamps. A duplicate email
	// yields common.ErrorAlreadyExists.
	Create(ctx context.Context, user *models.User) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	GetByID(ctx context.Context, id string) (*models.User, error)
	// Activate marks the user active. Unknown ids yield common.ErrorNotFound.
	Activate(ctx context.Context, id string) error
}
