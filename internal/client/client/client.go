package client

import (
	"context"
)

// Client is the transport-agnostic contract the CLI talks to. Login keeps
// the issued tokens on the client; protected calls send the access token.
type Client interface {
	Close() error
	Register(ctx context.Context, email, password string) (string, error)
	Activate(ctx context.Context, token string) (string, error)
	ResendActivation(ctx context.Context, email string) (string, error)
	Login(ctx context.Context, email, password string) error
	Refresh(ctx context.Context) error
	Logout(ctx context.Context) (string, error)
	WhoAmI(ctx context.Context) (string, error)
	Ping(ctx context.Context) error
	Tokens() (access, refresh string)
	SetTokens(access, refresh string)
}
