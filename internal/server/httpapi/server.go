// Package httpapi exposes the account operations as a REST API under
// /api/v1/accounts.
package httpapi

import (
	"context"
	"net"

	"github.com/dmitrijs2005/gophaccounts/internal/logging"
	"github.com/dmitrijs2005/gophaccounts/internal/server/models"
	"github.com/dmitrijs2005/gophaccounts/internal/server/services"
	"github.com/gofiber/fiber/v2"
)

// Accounts is the registration side used by the handlers.
type Accounts interface {
	Register(ctx context.Context, email, password string) (*models.User, error)
	Activate(ctx context.Context, token string) error
	ResendActivation(ctx context.Context, email string) error
}

// Sessions is the token side used by the handlers and the bearer middleware.
type Sessions interface {
	Login(ctx context.Context, email, password string) (*services.TokenPair, error)
	RefreshAccess(ctx context.Context, refreshToken string) (*services.TokenPair, error)
	Logout(ctx context.Context, refreshToken string) error
	Authenticate(ctx context.Context, accessToken string) (string, error)
}

type HTTPServer struct {
	address  string
	accounts Accounts
	sessions Sessions
	logger   logging.Logger
}

func NewHTTPServer(a string, l logging.Logger, accounts Accounts, sessions Sessions) *HTTPServer {
	return &HTTPServer{
		address:  a,
		logger:   l.With("module", "http_server"),
		accounts: accounts,
		sessions: sessions,
	}
}

// App builds the fiber application with all routes mounted.
func (s *HTTPServer) App() *fiber.App {
	app := fiber.New(fiber.Config{
		DisableStartupMessage: true,
		ErrorHandler:          s.errorHandler,
	})

	app.Use(s.requestLogger)
	RegisterRoutes(app, s)

	return app
}

func RegisterRoutes(app *fiber.App, s *HTTPServer) {
	g := app.Group("/api/v1/accounts")

	g.Post("/register", s.Register)
	g.Post("/activate", s.Activate)
	g.Post("/resend-activation", s.ResendActivation)
	g.Post("/login", s.Login)
	g.Post("/refresh", s.Refresh)
	g.Post("/logout", s.Logout)
	g.Get("/me", s.requireBearer, s.Me)
}

func (s *HTTPServer) Run(ctx context.Context) error {
	listen, err := net.Listen("tcp", s.address)
	if err != nil {
		return err
	}

	return s.serve(ctx, listen)
}

func (s *HTTPServer) serve(ctx context.Context, listen net.Listener) error {
	app := s.App()

	go func() {
		<-ctx.Done()
		s.logger.Info(ctx, "Stopping HTTP server...")
		_ = app.Shutdown()
	}()

	s.logger.Info(ctx, "Starting HTTP server", "address", listen.Addr().String())

	return app.Listener(listen)
}
