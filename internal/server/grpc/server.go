package grpc

import (
	"context"
	"net"

	"github.com/dmitrijs2005/gophaccounts/internal/logging"
	pb "github.com/dmitrijs2005/gophaccounts/internal/proto"
	"github.com/dmitrijs2005/gophaccounts/internal/server/models"
	"github.com/dmitrijs2005/gophaccounts/internal/server/services"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
)

// Accounts is the registration side used by the handlers.
type Accounts interface {
	Register(ctx context.Context, email, password string) (*models.User, error)
	Activate(ctx context.Context, token string) error
	ResendActivation(ctx context.Context, email string) error
}

// Sessions is the token side used by the handlers and the access-token
// interceptor.
type Sessions interface {
	Login(ctx context.Context, email, password string) (*services.TokenPair, error)
	RefreshAccess(ctx context.Context, refreshToken string) (*services.TokenPair, error)
	Logout(ctx context.Context, refreshToken string) error
	Authenticate(ctx context.Context, accessToken string) (string, error)
}

type GRPCServer struct {
	pb.UnimplementedAccountServiceServer
	address  string
	accounts Accounts
	sessions Sessions
	logger   logging.Logger
}

func NewGRPCServer(a string, l logging.Logger, accounts Accounts, sessions Sessions) *GRPCServer {
	return &GRPCServer{
		address:  a,
		logger:   l.With("module", "grpc_server"),
		accounts: accounts,
		sessions: sessions,
	}
}

// newServer builds a grpc.Server with the interceptor chain, the account
// service and the standard health service registered.
func (s *GRPCServer) newServer() *grpc.Server {
	srv := grpc.NewServer(grpc.ChainUnaryInterceptor(s.loggingInterceptor, s.accessTokenInterceptor))

	pb.RegisterAccountServiceServer(srv, s)

	hs := health.NewServer()
	hs.SetServingStatus(pb.AccountService_ServiceDesc.ServiceName, healthpb.HealthCheckResponse_SERVING)
	healthpb.RegisterHealthServer(srv, hs)

	return srv
}

func (s *GRPCServer) Run(ctx context.Context) error {

	// announces address
	listen, err := net.Listen("tcp", s.address)
	if err != nil {
		return err
	}

	return s.serve(ctx, listen)
}

func (s *GRPCServer) serve(ctx context.Context, listen net.Listener) error {
	srv := s.newServer()

	go func() {
		<-ctx.Done()
		s.logger.Info(ctx, "Stopping gRPC server...")
		srv.GracefulStop()
	}()

	s.logger.Info(ctx, "Starting gRPC server", "address", listen.Addr().String())

	// starts accepting incoming connections
	if err := srv.Serve(listen); err != nil {
		return err
	}

	return nil
}
