package grpc

import (
	"context"
	"strings"
	"time"

	"github.com/dmitrijs2005/gophaccounts/internal/common"
	pb "github.com/dmitrijs2005/gophaccounts/internal/proto"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
)

type ctxKey string

// UserIDKey holds the authenticated user id in the handler context.
const UserIDKey ctxKey = "userID"

// protectedMethods require a valid access token.
var protectedMethods = map[string]struct{}{
	pb.AccountService_WhoAmI_FullMethodName: {},
}

// accessTokenFromMD reads the token from the access_token key, falling back
// to a standard "authorization: Bearer ..." entry.
func accessTokenFromMD(md metadata.MD) string {
	if values := md.Get(common.AccessTokenHeaderName); len(values) > 0 && values[0] != "" {
		return values[0]
	}
	if values := md.Get("authorization"); len(values) > 0 {
		if token, ok := strings.CutPrefix(values[0], "Bearer "); ok {
			return token
		}
	}
	return ""
}

func (s *GRPCServer) accessTokenInterceptor(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {

	if _, ok := protectedMethods[info.FullMethod]; ok {

		var accessToken string
		if md, ok := metadata.FromIncomingContext(ctx); ok {
			accessToken = accessTokenFromMD(md)
		}
		if len(accessToken) == 0 {
			return nil, status.Error(codes.Unauthenticated, "missing token")
		}

		userID, err := s.sessions.Authenticate(ctx, accessToken)
		if err != nil {
			return nil, s.toStatus(ctx, err)
		}

		ctx = context.WithValue(ctx, UserIDKey, userID)
	}

	return handler(ctx, req)
}

func (s *GRPCServer) loggingInterceptor(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
	start := time.Now()
	resp, err := handler(ctx, req)

	s.logger.Info(ctx, "grpc request",
		"method", info.FullMethod,
		"code", status.Code(err).String(),
		"duration", time.Since(start),
	)
	return resp, err
}
