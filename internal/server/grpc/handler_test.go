package grpc

import (
	"context"
	"errors"
	"testing"

	"github.com/dmitrijs2005/gophaccounts/internal/common"
	pb "github.com/dmitrijs2005/gophaccounts/internal/proto"
	"github.com/dmitrijs2005/gophaccounts/internal/server/models"
	"github.com/dmitrijs2005/gophaccounts/internal/server/services"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

type fakeAccounts struct {
	regErr, actErr, resendErr error

	gotEmail, gotPassword, gotToken string
}

func (f *fakeAccounts) Register(_ context.Context, email, password string) (*models.User, error) {
	f.gotEmail, f.gotPassword = email, password
	if f.regErr != nil {
		return nil, f.regErr
	}
	return &models.User{ID: "u1", Email: email}, nil
}

func (f *fakeAccounts) Activate(_ context.Context, token string) error {
	f.gotToken = token
	return f.actErr
}

func (f *fakeAccounts) ResendActivation(_ context.Context, email string) error {
	f.gotEmail = email
	return f.resendErr
}

type fakeSessions struct {
	loginErr, refreshErr, logoutErr, authErr error
	authOut                                  string
	authToken                                string
}

func (f *fakeSessions) Login(context.Context, string, string) (*services.TokenPair, error) {
	if f.loginErr != nil {
		return nil, f.loginErr
	}
	return &services.TokenPair{AccessToken: "a", RefreshToken: "r"}, nil
}

func (f *fakeSessions) RefreshAccess(_ context.Context, rt string) (*services.TokenPair, error) {
	if f.refreshErr != nil {
		return nil, f.refreshErr
	}
	return &services.TokenPair{AccessToken: "a2", RefreshToken: rt}, nil
}

func (f *fakeSessions) Logout(context.Context, string) error { return f.logoutErr }

func (f *fakeSessions) Authenticate(_ context.Context, token string) (string, error) {
	f.authToken = token
	return f.authOut, f.authErr
}

func TestRegister_Handler(t *testing.T) {
	fa := &fakeAccounts{}
	s := newTestServer(fa, nil)

	resp, err := s.Register(context.Background(), &pb.RegisterRequest{Email: "a@b.com", Password: "abcd1234"})
	require.NoError(t, err)
	assert.Equal(t, common.MsgRegistered, resp.GetMessage())
	assert.Equal(t, "a@b.com", fa.gotEmail)
	assert.Equal(t, "abcd1234", fa.gotPassword)
}

func TestRegister_Handler_RejectsBadRequestBeforeService(t *testing.T) {
	fa := &fakeAccounts{}
	s := newTestServer(fa, nil)

	_, err := s.Register(context.Background(), &pb.RegisterRequest{Email: "a@b.com"})
	assert.Equal(t, codes.InvalidArgument, status.Code(err))
	assert.Empty(t, fa.gotEmail)
}

func TestErrorMapping(t *testing.T) {
	tests := []struct {
		err  error
		want codes.Code
	}{
		{common.ErrWeakCredential, codes.InvalidArgument},
		{common.ErrPasswordTooLong, codes.InvalidArgument},
		{common.ErrEmailTaken, codes.AlreadyExists},
		{common.ErrInvalidCredentials, codes.Unauthenticated},
		{common.ErrAccountNotActive, codes.PermissionDenied},
		{common.ErrInvalidToken, codes.Unauthenticated},
		{common.ErrTokenExpired, codes.Unauthenticated},
		{common.ErrSessionRevoked, codes.Unauthenticated},
		{context.Canceled, codes.Canceled},
		{errors.New("db exploded"), codes.Internal},
	}

	for _, tt := range tests {
		t.Run(tt.err.Error(), func(t *testing.T) {
			s := newTestServer(&fakeAccounts{regErr: tt.err}, nil)

			_, err := s.Register(context.Background(), &pb.RegisterRequest{Email: "a@b.com", Password: "abcd1234"})
			assert.Equal(t, tt.want, status.Code(err))
			if tt.want == codes.Internal {
				assert.Equal(t, "internal error", status.Convert(err).Message(), "details must not leak")
			}
		})
	}
}

func TestActivate_Handler(t *testing.T) {
	fa := &fakeAccounts{}
	s := newTestServer(fa, nil)

	resp, err := s.Activate(context.Background(), &pb.ActivateRequest{Token: "tok"})
	require.NoError(t, err)
	assert.Equal(t, common.MsgActivated, resp.GetMessage())
	assert.Equal(t, "tok", fa.gotToken)

	fa.actErr = common.ErrTokenExpired
	_, err = s.Activate(context.Background(), &pb.ActivateRequest{Token: "tok"})
	assert.Equal(t, codes.Unauthenticated, status.Code(err))

	_, err = s.Activate(context.Background(), &pb.ActivateRequest{})
	assert.Equal(t, codes.InvalidArgument, status.Code(err))
}

func TestResendActivation_Handler(t *testing.T) {
	s := newTestServer(&fakeAccounts{}, nil)

	resp, err := s.ResendActivation(context.Background(), &pb.ResendActivationRequest{Email: "ghost@b.com"})
	require.NoError(t, err)
	assert.Equal(t, common.MsgActivationResent, resp.GetMessage())
}

func TestLoginRefreshLogout_Handlers(t *testing.T) {
	fs := &fakeSessions{}
	s := newTestServer(nil, fs)
	ctx := context.Background()

	pair, err := s.Login(ctx, &pb.LoginRequest{Email: "a@b.com", Password: "abcd1234"})
	require.NoError(t, err)
	assert.Equal(t, "a", pair.GetAccessToken())
	assert.Equal(t, "r", pair.GetRefreshToken())

	pair, err = s.Refresh(ctx, &pb.RefreshRequest{RefreshToken: "r"})
	require.NoError(t, err)
	assert.Equal(t, "a2", pair.GetAccessToken())
	assert.Equal(t, "r", pair.GetRefreshToken())

	resp, err := s.Logout(ctx, &pb.LogoutRequest{RefreshToken: "r"})
	require.NoError(t, err)
	assert.Equal(t, common.MsgLoggedOut, resp.GetMessage())

	fs.loginErr = common.ErrInvalidCredentials
	_, err = s.Login(ctx, &pb.LoginRequest{Email: "a@b.com", Password: "x"})
	assert.Equal(t, codes.Unauthenticated, status.Code(err))

	fs.refreshErr = common.ErrSessionExpired
	_, err = s.Refresh(ctx, &pb.RefreshRequest{RefreshToken: "r"})
	assert.Equal(t, codes.Unauthenticated, status.Code(err))

	fs.logoutErr = common.ErrorInternal
	_, err = s.Logout(ctx, &pb.LogoutRequest{RefreshToken: "r"})
	assert.Equal(t, codes.Internal, status.Code(err))
}

func TestWhoAmI_Handler(t *testing.T) {
	s := newTestServer(nil, nil)

	_, err := s.WhoAmI(context.Background(), &pb.WhoAmIRequest{})
	assert.Equal(t, codes.Unauthenticated, status.Code(err))

	ctx := context.WithValue(context.Background(), UserIDKey, "u1")
	resp, err := s.WhoAmI(ctx, &pb.WhoAmIRequest{})
	require.NoError(t, err)
	assert.Equal(t, "u1", resp.GetUserId())
}
