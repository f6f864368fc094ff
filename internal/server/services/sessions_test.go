package services

import (
	"context"
	"testing"
	"time"

	"github.com/dmitrijs2005/gophaccounts/internal/common"
	"github.com/dmitrijs2005/gophaccounts/internal/server/auth"
	"github.com/dmitrijs2005/gophaccounts/internal/server/credentials"
	"github.com/dmitrijs2005/gophaccounts/internal/server/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

type sessionFixture struct {
	rm     *fakeRepoManager
	svc    *SessionService
	signer *auth.Signer
	policy *credentials.Policy
	clock  *fakeClock
}

func newSessionFixture(t *testing.T) *sessionFixture {
	t.Helper()
	clock := &fakeClock{t: time.Date(2025, 5, 1, 12, 0, 0, 0, time.UTC)}
	rm := newFakeRepoManager()
	policy := credentials.NewPolicy(bcrypt.MinCost)
	signer := auth.NewSigner([]byte("k"), auth.WithClock(clock.Now))

	svc := NewSessionService(nil, rm, policy, signer, nopLogger{}, testConfig())
	svc.now = clock.Now

	return &sessionFixture{rm: rm, svc: svc, signer: signer, policy: policy, clock: clock}
}

func (f *sessionFixture) user(t *testing.T, active bool) *models.User {
	t.Helper()
	digest, err := f.policy.Hash("abcdefg1")
	require.NoError(t, err)
	u := &models.User{ID: "u1", Email: "alice@example.com", HashedPassword: digest, IsActive: active}
	f.rm.u.getOut = u
	return u
}

func TestLogin_Success(t *testing.T) {
	f := newSessionFixture(t)
	f.user(t, true)

	pair, err := f.svc.Login(context.Background(), "Alice@Example.com", "abcdefg1")
	require.NoError(t, err)

	access, err := f.signer.Verify(pair.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, "u1", access.Subject)
	assert.Equal(t, common.TokenTypeAccess, access.Type)
	assert.True(t, f.clock.t.Add(15*time.Minute).Equal(access.ExpiresAt.Time))

	refresh, err := f.signer.Verify(pair.RefreshToken)
	require.NoError(t, err)
	assert.Equal(t, common.TokenTypeRefresh, refresh.Type)
	assert.NotEmpty(t, refresh.Marker)

	require.NotNil(t, f.rm.rs.created)
	assert.Equal(t, refresh.Marker, f.rm.rs.created.Marker)
	assert.Equal(t, "u1", f.rm.rs.created.UserID)
	assert.True(t, refresh.ExpiresAt.Time.Equal(f.rm.rs.created.ExpiresAt), "session expiry equals token exp")
}

func TestLogin_Failures(t *testing.T) {
	t.Run("unknown email", func(t *testing.T) {
		f := newSessionFixture(t)
		f.rm.u.getErr = common.ErrorNotFound

		_, err := f.svc.Login(context.Background(), "ghost@example.com", "abcdefg1")
		assert.ErrorIs(t, err, common.ErrInvalidCredentials)
	})

	t.Run("wrong password", func(t *testing.T) {
		f := newSessionFixture(t)
		f.user(t, true)

		_, err := f.svc.Login(context.Background(), "alice@example.com", "abcdefg2")
		assert.ErrorIs(t, err, common.ErrInvalidCredentials)
		assert.Nil(t, f.rm.rs.created)
	})

	t.Run("wrong password on inactive account is still invalid credentials", func(t *testing.T) {
		f := newSessionFixture(t)
		f.user(t, false)

		_, err := f.svc.Login(context.Background(), "alice@example.com", "nope12345")
		assert.ErrorIs(t, err, common.ErrInvalidCredentials)
	})

	t.Run("inactive", func(t *testing.T) {
		f := newSessionFixture(t)
		f.user(t, false)

		_, err := f.svc.Login(context.Background(), "alice@example.com", "abcdefg1")
		assert.ErrorIs(t, err, common.ErrAccountNotActive)
		assert.Nil(t, f.rm.rs.created)
	})

	t.Run("corrupt digest", func(t *testing.T) {
		f := newSessionFixture(t)
		f.rm.u.getOut = &models.User{ID: "u1", HashedPassword: "garbage", IsActive: true}

		_, err := f.svc.Login(context.Background(), "alice@example.com", "abcdefg1")
		assert.ErrorIs(t, err, common.ErrorInternal)
	})

	t.Run("session store error", func(t *testing.T) {
		f := newSessionFixture(t)
		f.user(t, true)
		f.rm.rs.createErr = errBoom{}

		_, err := f.svc.Login(context.Background(), "alice@example.com", "abcdefg1")
		assert.ErrorIs(t, err, common.ErrorInternal)
	})
}

func (f *sessionFixture) refreshToken(t *testing.T, subject, marker string) string {
	t.Helper()
	tok, _, err := f.signer.Sign(auth.NewClaims(subject, common.TokenTypeRefresh, marker), 7*24*time.Hour)
	require.NoError(t, err)
	return tok
}

func TestRefreshAccess(t *testing.T) {
	t.Run("ok returns same refresh token", func(t *testing.T) {
		f := newSessionFixture(t)
		f.rm.rs.getOut = &models.RefreshSession{UserID: "u1", Marker: "m1", ExpiresAt: f.clock.t.Add(time.Hour)}
		rt := f.refreshToken(t, "u1", "m1")

		pair, err := f.svc.RefreshAccess(context.Background(), rt)
		require.NoError(t, err)
		assert.Equal(t, rt, pair.RefreshToken)

		sub, err := f.svc.Authenticate(context.Background(), pair.AccessToken)
		require.NoError(t, err)
		assert.Equal(t, "u1", sub)
	})

	t.Run("access token is wrong type", func(t *testing.T) {
		f := newSessionFixture(t)
		access, _, err := f.signer.Sign(auth.NewClaims("u1", common.TokenTypeAccess, ""), time.Minute)
		require.NoError(t, err)

		_, err = f.svc.RefreshAccess(context.Background(), access)
		assert.ErrorIs(t, err, common.ErrWrongTokenType)
	})

	t.Run("tampered", func(t *testing.T) {
		f := newSessionFixture(t)
		_, err := f.svc.RefreshAccess(context.Background(), f.refreshToken(t, "u1", "m1")+"x")
		assert.ErrorIs(t, err, common.ErrInvalidSignature)
	})

	t.Run("expired token", func(t *testing.T) {
		f := newSessionFixture(t)
		rt := f.refreshToken(t, "u1", "m1")
		f.clock.t = f.clock.t.Add(8 * 24 * time.Hour)

		_, err := f.svc.RefreshAccess(context.Background(), rt)
		assert.ErrorIs(t, err, common.ErrTokenExpired)
	})

	t.Run("revoked", func(t *testing.T) {
		f := newSessionFixture(t)
		f.rm.rs.getErr = common.ErrorNotFound

		_, err := f.svc.RefreshAccess(context.Background(), f.refreshToken(t, "u1", "m1"))
		assert.ErrorIs(t, err, common.ErrSessionRevoked)
	})

	t.Run("subject mismatch", func(t *testing.T) {
		f := newSessionFixture(t)
		f.rm.rs.getOut = &models.RefreshSession{UserID: "someone-else", Marker: "m1", ExpiresAt: f.clock.t.Add(time.Hour)}

		_, err := f.svc.RefreshAccess(context.Background(), f.refreshToken(t, "u1", "m1"))
		assert.ErrorIs(t, err, common.ErrSessionRevoked)
	})

	t.Run("missing marker", func(t *testing.T) {
		f := newSessionFixture(t)
		_, err := f.svc.RefreshAccess(context.Background(), f.refreshToken(t, "u1", ""))
		assert.ErrorIs(t, err, common.ErrSessionRevoked)
	})

	t.Run("session expired at boundary", func(t *testing.T) {
		f := newSessionFixture(t)
		f.rm.rs.getOut = &models.RefreshSession{UserID: "u1", Marker: "m1", ExpiresAt: f.clock.t}

		_, err := f.svc.RefreshAccess(context.Background(), f.refreshToken(t, "u1", "m1"))
		assert.ErrorIs(t, err, common.ErrSessionExpired)
	})

	t.Run("storage error", func(t *testing.T) {
		f := newSessionFixture(t)
		f.rm.rs.getErr = errBoom{}

		_, err := f.svc.RefreshAccess(context.Background(), f.refreshToken(t, "u1", "m1"))
		assert.ErrorIs(t, err, common.ErrorInternal)
	})
}

func TestLogout(t *testing.T) {
	t.Run("deletes session", func(t *testing.T) {
		f := newSessionFixture(t)
		require.NoError(t, f.svc.Logout(context.Background(), f.refreshToken(t, "u1", "m1")))
		assert.Equal(t, []string{"m1"}, f.rm.rs.deleted)
	})

	t.Run("garbage token is a no-op", func(t *testing.T) {
		f := newSessionFixture(t)
		require.NoError(t, f.svc.Logout(context.Background(), "garbage"))
		assert.Empty(t, f.rm.rs.deleted)
	})

	t.Run("access token is a no-op", func(t *testing.T) {
		f := newSessionFixture(t)
		access, _, err := f.signer.Sign(auth.NewClaims("u1", common.TokenTypeAccess, ""), time.Minute)
		require.NoError(t, err)

		require.NoError(t, f.svc.Logout(context.Background(), access))
		assert.Empty(t, f.rm.rs.deleted)
	})

	t.Run("expired token is a no-op", func(t *testing.T) {
		f := newSessionFixture(t)
		rt := f.refreshToken(t, "u1", "m1")
		f.clock.t = f.clock.t.Add(30 * 24 * time.Hour)

		require.NoError(t, f.svc.Logout(context.Background(), rt))
		assert.Empty(t, f.rm.rs.deleted)
	})

	t.Run("storage error propagates", func(t *testing.T) {
		f := newSessionFixture(t)
		f.rm.rs.delErr = errBoom{}

		err := f.svc.Logout(context.Background(), f.refreshToken(t, "u1", "m1"))
		assert.ErrorIs(t, err, common.ErrorInternal)
	})
}

func TestAuthenticate(t *testing.T) {
	f := newSessionFixture(t)

	_, err := f.svc.Authenticate(context.Background(), f.refreshToken(t, "u1", "m1"))
	assert.ErrorIs(t, err, common.ErrWrongTokenType)

	_, err = f.svc.Authenticate(context.Background(), "nope")
	assert.ErrorIs(t, err, common.ErrInvalidSignature)
}
