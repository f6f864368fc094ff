// Package refreshsessions provides a PostgreSQL-backed repository for refresh
// sessions used by the server's token flow.
package refreshsessions

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/gophaccounts/internal/common"
	"github.com/dmitrijs2005/gophaccounts/internal/dbx"
	"github.com/dmitrijs2005/gophaccounts/internal/server/models"
)

// PostgresRepository implements Repository over dbx.DBTX
// (satisfied by *sql.DB or *sql.Tx).
type PostgresRepository struct {
	db dbx.DBTX
}

// NewPostgresRepository constructs a repository bound to the given DBTX.
func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// Create inserts a session row. ExpiresAt is taken as given so it matches the
// refresh token's exp claim exactly.
func (r *PostgresRepository) Create(ctx context.Context, s *models.RefreshSession) error {
	query := `
		INSERT INTO refresh_sessions (user_id, marker, expires_at)
		VALUES ($1, $2, $3)
		RETURNING id, created_at
	`
	if err := r.db.QueryRowContext(ctx, query, s.UserID, s.Marker, s.ExpiresAt).Scan(&s.ID, &s.CreatedAt); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

// GetByMarker returns the session row for marker.
// If not found, it returns common.ErrorNotFound.
func (r *PostgresRepository) GetByMarker(ctx context.Context, marker string) (*models.RefreshSession, error) {
	query := `
		SELECT id, user_id, marker, expires_at, created_at
		FROM refresh_sessions
		WHERE marker = $1
	`
	s := &models.RefreshSession{}
	if err := r.db.QueryRowContext(ctx, query, marker).Scan(&s.ID, &s.UserID, &s.Marker, &s.ExpiresAt, &s.CreatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return s, nil
}

// DeleteByMarker removes a session by marker.
func (r *PostgresRepository) DeleteByMarker(ctx context.Context, marker string) error {
	query := `
		DELETE FROM refresh_sessions
		WHERE marker = $1
	`
	if _, err := r.db.ExecContext(ctx, query, marker); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}
