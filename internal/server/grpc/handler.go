package grpc

import (
	"context"

	"github.com/dmitrijs2005/gophaccounts/internal/common"
	pb "github.com/dmitrijs2005/gophaccounts/internal/proto"
	"github.com/dmitrijs2005/gophaccounts/internal/server/dto"
	"github.com/dmitrijs2005/gophaccounts/internal/server/services"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

func tokenPair(p *services.TokenPair) *pb.TokenPairResponse {
	return &pb.TokenPairResponse{
		AccessToken:  p.AccessToken,
		RefreshToken: p.RefreshToken,
		TokenType:    pb.TokenTypeBearer,
	}
}

func (s *GRPCServer) Register(ctx context.Context, req *pb.RegisterRequest) (*pb.MessageResponse, error) {
	r := dto.CredentialsRequest{Email: req.GetEmail(), Password: req.GetPassword()}
	if err := dto.Check(r); err != nil {
		return nil, s.toStatus(ctx, err)
	}

	if _, err := s.accounts.Register(ctx, r.Email, r.Password); err != nil {
		return nil, s.toStatus(ctx, err)
	}
	return &pb.MessageResponse{Message: common.MsgRegistered}, nil
}

func (s *GRPCServer) Activate(ctx context.Context, req *pb.ActivateRequest) (*pb.MessageResponse, error) {
	r := dto.ActivationRequest{Token: req.GetToken()}
	if err := dto.Check(r); err != nil {
		return nil, s.toStatus(ctx, err)
	}

	if err := s.accounts.Activate(ctx, r.Token); err != nil {
		return nil, s.toStatus(ctx, err)
	}
	return &pb.MessageResponse{Message: common.MsgActivated}, nil
}

func (s *GRPCServer) ResendActivation(ctx context.Context, req *pb.ResendActivationRequest) (*pb.MessageResponse, error) {
	r := dto.EmailRequest{Email: req.GetEmail()}
	if err := dto.Check(r); err != nil {
		return nil, s.toStatus(ctx, err)
	}

	if err := s.accounts.ResendActivation(ctx, r.Email); err != nil {
		return nil, s.toStatus(ctx, err)
	}
	return &pb.MessageResponse{Message: common.MsgActivationResent}, nil
}

func (s *GRPCServer) Login(ctx context.Context, req *pb.LoginRequest) (*pb.TokenPairResponse, error) {
	r := dto.CredentialsRequest{Email: req.GetEmail(), Password: req.GetPassword()}
	if err := dto.Check(r); err != nil {
		return nil, s.toStatus(ctx, err)
	}

	tokens, err := s.sessions.Login(ctx, r.Email, r.Password)
	if err != nil {
		return nil, s.toStatus(ctx, err)
	}
	return tokenPair(tokens), nil
}

func (s *GRPCServer) Refresh(ctx context.Context, req *pb.RefreshRequest) (*pb.TokenPairResponse, error) {
	r := dto.RefreshRequest{RefreshToken: req.GetRefreshToken()}
	if err := dto.Check(r); err != nil {
		return nil, s.toStatus(ctx, err)
	}

	tokens, err := s.sessions.RefreshAccess(ctx, r.RefreshToken)
	if err != nil {
		return nil, s.toStatus(ctx, err)
	}
	return tokenPair(tokens), nil
}

func (s *GRPCServer) Logout(ctx context.Context, req *pb.LogoutRequest) (*pb.MessageResponse, error) {
	r := dto.RefreshRequest{RefreshToken: req.GetRefreshToken()}
	if err := dto.Check(r); err != nil {
		return nil, s.toStatus(ctx, err)
	}

	if err := s.sessions.Logout(ctx, r.RefreshToken); err != nil {
		return nil, s.toStatus(ctx, err)
	}
	return &pb.MessageResponse{Message: common.MsgLoggedOut}, nil
}

// WhoAmI echoes the user id the access-token interceptor put in ctx.
func (s *GRPCServer) WhoAmI(ctx context.Context, _ *pb.WhoAmIRequest) (*pb.WhoAmIResponse, error) {
	userID, ok := ctx.Value(UserIDKey).(string)
	if !ok || userID == "" {
		return nil, status.Error(codes.Unauthenticated, "missing token")
	}
	return &pb.WhoAmIResponse{UserId: userID}, nil
}
