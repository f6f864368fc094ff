// Package server wires configuration, storage, the mailer and the account
// services together and runs the gRPC and HTTP boundaries until shutdown.
package server

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/dmitrijs2005/gophaccounts/internal/dbx"
	"github.com/dmitrijs2005/gophaccounts/internal/logging"
	"github.com/dmitrijs2005/gophaccounts/internal/server/auth"
	"github.com/dmitrijs2005/gophaccounts/internal/server/config"
	"github.com/dmitrijs2005/gophaccounts/internal/server/credentials"
	"github.com/dmitrijs2005/gophaccounts/internal/server/httpapi"
	"github.com/dmitrijs2005/gophaccounts/internal/server/mailer"
	"github.com/dmitrijs2005/gophaccounts/internal/server/repositories/memory"
	"github.com/dmitrijs2005/gophaccounts/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/gophaccounts/internal/server/services"
	_ "github.com/jackc/pgx/v5/stdlib"

	gs "github.com/dmitrijs2005/gophaccounts/internal/server/grpc"
)

type App struct {
	config         *config.Config
	logger         logging.Logger
	db             *sql.DB
	accountService *services.AccountService
	sessionService *services.SessionService
}

// storage is what the services need from a backend: a handle for single
// statements, a transactor and the repositories.
type storage struct {
	db      dbx.DBTX
	tx      dbx.Transactor
	manager repomanager.RepositoryManager
	sqlDB   *sql.DB
}

func openStorage(ctx context.Context, c *config.Config) (*storage, error) {
	if c.DatabaseDSN == config.MemoryDSN {
		s := memory.NewStore()
		return &storage{db: s, tx: s, manager: s}, nil
	}

	db, err := sql.Open("pgx", c.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("db open error: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("db ping error: %w", err)
	}

	m := repomanager.NewPostgresRepositoryManager()
	if err := m.RunMigrations(ctx, db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("migrations error: %w", err)
	}

	return &storage{db: db, tx: dbx.NewSQLTransactor(db, nil), manager: m, sqlDB: db}, nil
}

func NewApp(ctx context.Context, c *config.Config) (*App, error) {

	logger := logging.NewJSONLogger(os.Stdout, logging.ParseLevel(c.LogLevel))

	st, err := openStorage(ctx, c)
	if err != nil {
		return nil, err
	}

	ml, err := mailer.New(ctx, c, logger)
	if err != nil {
		if st.sqlDB != nil {
			_ = st.sqlDB.Close()
		}
		return nil, fmt.Errorf("mailer init error: %w", err)
	}

	policy := credentials.NewPolicy(c.BcryptCost)
	signer := auth.NewSigner([]byte(c.SecretKey))

	as := services.NewAccountService(st.db, st.tx, st.manager, policy, ml, logger, c)
	ss := services.NewSessionService(st.db, st.manager, policy, signer, logger, c)

	return &App{config: c, logger: logger, db: st.sqlDB, accountService: as, sessionService: ss}, nil
}

func (app *App) initSignalHandler(cancelFunc context.CancelFunc) {
	// Channel to catch OS signals.
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		<-sigs
		cancelFunc()
	}()
}

func (app *App) startGRPCServer(ctx context.Context, cancelFunc context.CancelFunc) {
	s := gs.NewGRPCServer(app.config.EndpointAddrGRPC, app.logger, app.accountService, app.sessionService)

	if err := s.Run(ctx); err != nil {
		app.logger.Error(ctx, err.Error())
		cancelFunc()
	}
}

func (app *App) startHTTPServer(ctx context.Context, cancelFunc context.CancelFunc) {
	s := httpapi.NewHTTPServer(app.config.EndpointAddrHTTP, app.logger, app.accountService, app.sessionService)

	if err := s.Run(ctx); err != nil {
		app.logger.Error(ctx, err.Error())
		cancelFunc()
	}
}

func (app *App) Run(ctx context.Context) {

	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	app.logger.Info(ctx, "Starting app...")

	app.initSignalHandler(cancelFunc)

	var wg sync.WaitGroup

	wg.Add(2)
	go func() {
		defer wg.Done()
		app.startGRPCServer(ctx, cancelFunc)
	}()
	go func() {
		defer wg.Done()
		app.startHTTPServer(ctx, cancelFunc)
	}()

	wg.Wait()

	if app.db != nil {
		if err := app.db.Close(); err != nil {
			app.logger.Error(ctx, "db close error", "error", err)
		}
	}

	app.logger.Info(ctx, "App stopped")
}
