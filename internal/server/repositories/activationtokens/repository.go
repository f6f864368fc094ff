// Package activationtokens stores the single live activation token of each
// pending user.
package activationtokens

import (
	"context"

	"github.com/dmitrijs2005/gophaccounts/internal/server/models"
)

// Repository defines operations on activation tokens.
type Repository interface {
	// Upsert stores t as the only token of t.UserID, replacing any previous
	// one in a single statement.
	Upsert(ctx context.Context, t *models.ActivationToken) error

	// Consume deletes the token row and returns it. An unknown token yields
	// common.ErrorNotFound. Two concurrent consumers cannot both get the row.
	Consume(ctx context.Context, token string) (*models.ActivationToken, error)
}
