// Package services contains application services for the accounts CLI.
// The auth service drives the remote account operations and keeps the
// signed-in session cached in the local database between runs.
package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/gophaccounts/internal/client/client"
	"github.com/dmitrijs2005/gophaccounts/internal/client/models"
	"github.com/dmitrijs2005/gophaccounts/internal/client/repositories/sessions"
)

// AuthService defines account operations for the CLI.
//
// Contract:
//   - Register, Activate, ResendActivation: proxy to the server and return
//     its message.
//   - Login: authenticate and persist the session locally.
//   - Restore: load a cached session into the client; returns the email.
//   - Refresh, WhoAmI: use the session; refreshed tokens are persisted.
//   - Logout: revoke on the server (best-effort) and clear the cache.
//   - Ping, Close: liveness and resource cleanup.
type AuthService interface {
	Register(ctx context.Context, email string, password []byte) (string, error)
	Activate(ctx context.Context, token string) (string, error)
	ResendActivation(ctx context.Context, email string) (string, error)
	Login(ctx context.Context, email string, password []byte) error
	Restore(ctx context.Context) (string, error)
	Refresh(ctx context.Context) error
	WhoAmI(ctx context.Context) (string, error)
	Logout(ctx context.Context) error
	Ping(ctx context.Context) error
	Close(ctx context.Context) error
}

type authService struct {
	client client.Client
	db     *sql.DB
	email  string
	now    func() time.Time
}

// NewAuthService constructs an AuthService bound to the given API client and DB.
func NewAuthService(client client.Client, db *sql.DB) AuthService {
	return &authService{client: client, db: db, now: time.Now}
}

func (a *authService) getSessionRepo() sessions.Repository {
	return sessions.NewSQLiteRepository(a.db)
}

func (a *authService) Register(ctx context.Context, email string, password []byte) (string, error) {
	return a.client.Register(ctx, email, string(password))
}

func (a *authService) Activate(ctx context.Context, token string) (string, error) {
	return a.client.Activate(ctx, token)
}

func (a *authService) ResendActivation(ctx context.Context, email string) (string, error) {
	return a.client.ResendActivation(ctx, email)
}

func (a *authService) Login(ctx context.Context, email string, password []byte) error {
	if err := a.client.Login(ctx, email, string(password)); err != nil {
		return fmt.Errorf("login error: %w", err)
	}

	a.email = email
	if err := a.persist(ctx); err != nil {
		return fmt.Errorf("session saving error: %w", err)
	}
	return nil
}

// persist stores the client's current tokens when they differ from the
// cached ones.
func (a *authService) persist(ctx context.Context) error {
	access, refresh := a.client.Tokens()
	repo := a.getSessionRepo()

	cur, err := repo.Load(ctx)
	if err != nil {
		return err
	}
	if cur != nil && cur.AccessToken == access && cur.RefreshToken == refresh {
		return nil
	}

	return repo.Save(ctx, &models.Session{
		Email:        a.email,
		AccessToken:  access,
		RefreshToken: refresh,
		UpdatedAt:    a.now().UTC(),
	})
}

func (a *authService) Restore(ctx context.Context) (string, error) {
	s, err := a.getSessionRepo().Load(ctx)
	if err != nil {
		return "", err
	}
	if s == nil {
		return "", client.ErrNotLoggedIn
	}

	a.email = s.Email
	a.client.SetTokens(s.AccessToken, s.RefreshToken)
	return s.Email, nil
}

func (a *authService) Refresh(ctx context.Context) error {
	if err := a.client.Refresh(ctx); err != nil {
		return err
	}
	return a.persist(ctx)
}

func (a *authService) WhoAmI(ctx context.Context) (string, error) {
	userID, err := a.client.WhoAmI(ctx)
	if err != nil {
		return "", err
	}
	// the call may have refreshed the access token
	if err := a.persist(ctx); err != nil {
		return "", err
	}
	return userID, nil
}

// Logout clears the local session even when the server could not be
// reached; only local storage errors are returned.
func (a *authService) Logout(ctx context.Context) error {
	_, err := a.client.Logout(ctx)
	if err != nil && !errors.Is(err, client.ErrNotLoggedIn) {
		a.client.SetTokens("", "")
	}

	a.email = ""
	return a.getSessionRepo().Clear(ctx)
}

// Ping proxies a liveness check to the underlying client.
func (a *authService) Ping(ctx context.Context) error {
	return a.client.Ping(ctx)
}

// Close releases resources held by the underlying client and database.
func (a *authService) Close(ctx context.Context) error {
	return errors.Join(a.client.Close(), a.db.Close())
}
