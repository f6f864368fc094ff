package groups

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/gophaccounts/internal/dbx"
	"github.com/dmitrijs2005/gophaccounts/internal/server/models"
)

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// GetOrCreate relies on a no-op ON CONFLICT update so RETURNING yields the
// row in both the insert and the existing case.
func (r *PostgresRepository) GetOrCreate(ctx context.Context, name string) (*models.UserGroup, error) {
	query := `
		INSERT INTO user_groups (name)
		VALUES ($1)
		ON CONFLICT (name) DO UPDATE SET name = EXCLUDED.name
		RETURNING id, name
	`

	g := &models.UserGroup{}
	if err := r.db.QueryRowContext(ctx, query, name).Scan(&g.ID, &g.Name); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return g, nil
}
