package client

import (
	"context"
	"fmt"
	"sync"

	"github.com/dmitrijs2005/gophaccounts/internal/common"
	pb "github.com/dmitrijs2005/gophaccounts/internal/proto"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
)

type GRPCClient struct {
	endpointURL string
	conn        *grpc.ClientConn
	client      pb.AccountServiceClient
	health      healthpb.HealthClient

	mu           sync.Mutex
	accessToken  string
	refreshToken string
}

func withAccessToken(ctx context.Context, token string) context.Context {
	md, _ := metadata.FromOutgoingContext(ctx)
	md = md.Copy()
	if md == nil {
		md = metadata.MD{}
	}
	md.Delete(common.AccessTokenHeaderName)
	md.Set(common.AccessTokenHeaderName, token)

	return metadata.NewOutgoingContext(ctx, md)
}

func (s *GRPCClient) accessTokenInterceptor(
	ctx context.Context,
	method string,
	req, reply any,
	cc *grpc.ClientConn,
	invoker grpc.UnaryInvoker,
	opts ...grpc.CallOption,
) error {

	access, refresh := s.Tokens()
	if access != "" {
		ctx = withAccessToken(ctx, access)
	}

	err := invoker(ctx, method, req, reply, cc, opts...)

	if err != nil {

		st, ok := status.FromError(err)
		if !ok {
			return err
		}

		if st.Code() != codes.Unauthenticated || st.Message() != common.ErrTokenExpired.Error() {
			return err
		}

		if refresh == "" || method == pb.AccountService_Refresh_FullMethodName {
			return err
		}

		if rerr := s.Refresh(ctx); rerr != nil {
			return err
		}

		// tokens refreshed, retry once with the new access token
		access, _ = s.Tokens()
		ctx = withAccessToken(ctx, access)
		return invoker(ctx, method, req, reply, cc, opts...)
	}

	return nil
}

func NewAccountsClientService(endpointURL string) (*GRPCClient, error) {
	c := &GRPCClient{endpointURL: endpointURL}
	err := c.InitGRPCClient()
	if err != nil {
		return nil, err
	}
	return c, nil
}

func (s *GRPCClient) InitGRPCClient(opts ...grpc.DialOption) error {

	opts = append([]grpc.DialOption{
		grpc.WithTransportCredentials(insecure.NewCredentials()),
		grpc.WithUnaryInterceptor(s.accessTokenInterceptor),
	}, opts...)

	conn, err := grpc.NewClient(s.endpointURL, opts...)
	if err != nil {
		return err
	}
	s.conn = conn
	s.client = pb.NewAccountServiceClient(conn)
	s.health = healthpb.NewHealthClient(conn)
	return nil
}

func (s *GRPCClient) Tokens() (string, string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.accessToken, s.refreshToken
}

func (s *GRPCClient) SetTokens(access, refresh string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.accessToken, s.refreshToken = access, refresh
}

func (s *GRPCClient) Register(ctx context.Context, email, password string) (string, error) {
	resp, err := s.client.Register(ctx, &pb.RegisterRequest{Email: email, Password: password})
	if err != nil {
		return "", s.mapError(err)
	}
	return resp.GetMessage(), nil
}

func (s *GRPCClient) Activate(ctx context.Context, token string) (string, error) {
	resp, err := s.client.Activate(ctx, &pb.ActivateRequest{Token: token})
	if err != nil {
		return "", s.mapError(err)
	}
	return resp.GetMessage(), nil
}

func (s *GRPCClient) ResendActivation(ctx context.Context, email string) (string, error) {
	resp, err := s.client.ResendActivation(ctx, &pb.ResendActivationRequest{Email: email})
	if err != nil {
		return "", s.mapError(err)
	}
	return resp.GetMessage(), nil
}

func (s *GRPCClient) Login(ctx context.Context, email, password string) error {
	resp, err := s.client.Login(ctx, &pb.LoginRequest{Email: email, Password: password})
	if err != nil {
		return s.mapError(err)
	}

	s.SetTokens(resp.GetAccessToken(), resp.GetRefreshToken())
	return nil
}

// Refresh exchanges the held refresh token for a new access token.
func (s *GRPCClient) Refresh(ctx context.Context) error {
	_, refresh := s.Tokens()
	if refresh == "" {
		return ErrNotLoggedIn
	}

	resp, err := s.client.Refresh(ctx, &pb.RefreshRequest{RefreshToken: refresh})
	if err != nil {
		return s.mapError(err)
	}

	s.SetTokens(resp.GetAccessToken(), resp.GetRefreshToken())
	return nil
}

// Logout revokes the held refresh token and forgets both tokens.
func (s *GRPCClient) Logout(ctx context.Context) (string, error) {
	_, refresh := s.Tokens()
	if refresh == "" {
		return "", ErrNotLoggedIn
	}

	resp, err := s.client.Logout(ctx, &pb.LogoutRequest{RefreshToken: refresh})
	if err != nil {
		return "", s.mapError(err)
	}

	s.SetTokens("", "")
	return resp.GetMessage(), nil
}

func (s *GRPCClient) WhoAmI(ctx context.Context) (string, error) {
	resp, err := s.client.WhoAmI(ctx, &pb.WhoAmIRequest{})
	if err != nil {
		return "", s.mapError(err)
	}
	return resp.GetUserId(), nil
}

// Ping asks the standard health service whether the account service serves.
func (s *GRPCClient) Ping(ctx context.Context) error {
	resp, err := s.health.Check(ctx, &healthpb.HealthCheckRequest{Service: pb.AccountService_ServiceDesc.ServiceName})
	if err != nil {
		return s.mapError(err)
	}

	if resp.GetStatus() != healthpb.HealthCheckResponse_SERVING {
		return ErrUnavailable
	}

	return nil
}

func (s *GRPCClient) Close() error {
	return s.conn.Close()
}

func (s *GRPCClient) mapError(err error) error {
	if err == nil {
		return nil
	}
	st, _ := status.FromError(err)
	switch st.Code() {
	case codes.Unauthenticated:
		return fmt.Errorf("%w: %s", ErrUnauthorized, st.Message())
	case codes.PermissionDenied:
		return ErrNotActivated
	case codes.InvalidArgument:
		return fmt.Errorf("%w: %s", ErrInvalidInput, st.Message())
	case codes.AlreadyExists:
		return fmt.Errorf("%w: %s", ErrAlreadyExists, st.Message())
	case codes.Unavailable, codes.DeadlineExceeded:
		return ErrUnavailable
	default:
		return fmt.Errorf("rpc error: %w", err)
	}
}
