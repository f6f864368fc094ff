package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/dmitrijs2005/gophaccounts/internal/common"
	"github.com/dmitrijs2005/gophaccounts/internal/logging"
	"github.com/dmitrijs2005/gophaccounts/internal/server/auth"
	"github.com/dmitrijs2005/gophaccounts/internal/server/config"
	"github.com/dmitrijs2005/gophaccounts/internal/server/credentials"
	"github.com/dmitrijs2005/gophaccounts/internal/server/models"
	"github.com/dmitrijs2005/gophaccounts/internal/server/repositories/memory"
	"github.com/dmitrijs2005/gophaccounts/internal/server/services"
	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

type nopLogger struct{}

func (n nopLogger) Debug(context.Context, string, ...any) {}
func (n nopLogger) Info(context.Context, string, ...any)  {}
func (n nopLogger) Warn(context.Context, string, ...any)  {}
func (n nopLogger) Error(context.Context, string, ...any) {}
func (n nopLogger) With(...any) logging.Logger            { return n }

type fakeAccounts struct {
	err      error
	gotEmail string
}

func (f *fakeAccounts) Register(_ context.Context, email, _ string) (*models.User, error) {
	f.gotEmail = email
	if f.err != nil {
		return nil, f.err
	}
	return &models.User{ID: "u1", Email: email}, nil
}

func (f *fakeAccounts) Activate(context.Context, string) error         { return f.err }
func (f *fakeAccounts) ResendActivation(context.Context, string) error { return f.err }

type fakeSessions struct {
	err        error
	authOut    string
	gotRefresh string
}

func (f *fakeSessions) Login(context.Context, string, string) (*services.TokenPair, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &services.TokenPair{AccessToken: "a", RefreshToken: "r"}, nil
}

func (f *fakeSessions) RefreshAccess(_ context.Context, rt string) (*services.TokenPair, error) {
	f.gotRefresh = rt
	if f.err != nil {
		return nil, f.err
	}
	return &services.TokenPair{AccessToken: "a2", RefreshToken: rt}, nil
}

func (f *fakeSessions) Logout(_ context.Context, rt string) error {
	f.gotRefresh = rt
	return f.err
}

func (f *fakeSessions) Authenticate(context.Context, string) (string, error) {
	return f.authOut, f.err
}

func doJSON(t *testing.T, app *fiber.App, method, path string, body any, headers ...string) (int, map[string]string) {
	t.Helper()

	var r io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(t, err)
		r = bytes.NewReader(b)
	}
	req := httptest.NewRequest(method, path, r)
	req.Header.Set("Content-Type", "application/json")
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}

	resp, err := app.Test(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	out := map[string]string{}
	_ = json.NewDecoder(resp.Body).Decode(&out)
	return resp.StatusCode, out
}

func TestRegister(t *testing.T) {
	fa := &fakeAccounts{}
	app := NewHTTPServer("", nopLogger{}, fa, &fakeSessions{}).App()

	t.Run("success", func(t *testing.T) {
		code, body := doJSON(t, app, http.MethodPost, "/api/v1/accounts/register",
			map[string]string{"email": "a@b.com", "password": "abcd1234"})
		assert.Equal(t, fiber.StatusCreated, code)
		assert.Equal(t, common.MsgRegistered, body["message"])
		assert.Equal(t, "a@b.com", fa.gotEmail)
	})

	t.Run("bad request", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/api/v1/accounts/register", strings.NewReader(""))
		req.Header.Set("Content-Type", "application/json")

		resp, err := app.Test(req)
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
	})

	t.Run("invalid email", func(t *testing.T) {
		code, _ := doJSON(t, app, http.MethodPost, "/api/v1/accounts/register",
			map[string]string{"email": "nope", "password": "abcd1234"})
		assert.Equal(t, fiber.StatusBadRequest, code)
	})
}

func TestTokenBodies(t *testing.T) {
	fs := &fakeSessions{}
	app := NewHTTPServer("", nopLogger{}, &fakeAccounts{}, fs).App()

	code, pair := doJSON(t, app, http.MethodPost, "/api/v1/accounts/login",
		map[string]string{"email": "a@b.com", "password": "abcd1234"})
	require.Equal(t, fiber.StatusOK, code)
	assert.Equal(t, map[string]string{"access": "a", "refresh": "r"}, pair)

	code, pair = doJSON(t, app, http.MethodPost, "/api/v1/accounts/refresh", map[string]string{"refresh": "x.y.z"})
	require.Equal(t, fiber.StatusOK, code)
	assert.Equal(t, "x.y.z", fs.gotRefresh)
	assert.Equal(t, map[string]string{"access": "a2", "refresh": "x.y.z"}, pair)

	code, body := doJSON(t, app, http.MethodPost, "/api/v1/accounts/logout", map[string]string{"refresh": "l.m.n"})
	require.Equal(t, fiber.StatusOK, code)
	assert.Equal(t, "l.m.n", fs.gotRefresh)
	assert.Equal(t, common.MsgLoggedOut, body["message"])

	code, body = doJSON(t, app, http.MethodPost, "/api/v1/accounts/logout", map[string]string{"refresh_token": "l.m.n"})
	assert.Equal(t, fiber.StatusBadRequest, code)
	assert.Contains(t, body["detail"], "refresh")
}

func TestErrorStatus(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{common.ErrWeakCredential, fiber.StatusBadRequest},
		{common.ErrEmailTaken, fiber.StatusConflict},
		{common.ErrInvalidCredentials, fiber.StatusUnauthorized},
		{common.ErrAccountNotActive, fiber.StatusForbidden},
		{common.ErrSessionRevoked, fiber.StatusUnauthorized},
		{errors.New("db exploded"), fiber.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.err.Error(), func(t *testing.T) {
			app := NewHTTPServer("", nopLogger{}, &fakeAccounts{}, &fakeSessions{err: tt.err}).App()

			code, body := doJSON(t, app, http.MethodPost, "/api/v1/accounts/login",
				map[string]string{"email": "a@b.com", "password": "abcd1234"})
			assert.Equal(t, tt.want, code)
			if tt.want == fiber.StatusInternalServerError {
				assert.Equal(t, "internal error", body["detail"])
			}
		})
	}
}

func TestRegister_PasswordTooLongDetail(t *testing.T) {
	app := NewHTTPServer("", nopLogger{}, &fakeAccounts{err: common.ErrPasswordTooLong}, &fakeSessions{}).App()

	code, body := doJSON(t, app, http.MethodPost, "/api/v1/accounts/register",
		map[string]string{"email": "a@b.com", "password": strings.Repeat("a1", 40)})
	assert.Equal(t, fiber.StatusBadRequest, code)
	assert.Contains(t, body["detail"], "72 bytes")
}

func TestNotFound(t *testing.T) {
	app := NewHTTPServer("", nopLogger{}, &fakeAccounts{}, &fakeSessions{}).App()

	code, _ := doJSON(t, app, http.MethodGet, "/api/v1/accounts/nope", nil)
	assert.Equal(t, fiber.StatusNotFound, code)
}

func TestMe(t *testing.T) {
	app := NewHTTPServer("", nopLogger{}, &fakeAccounts{}, &fakeSessions{authOut: "u1"}).App()

	code, _ := doJSON(t, app, http.MethodGet, "/api/v1/accounts/me", nil)
	assert.Equal(t, fiber.StatusUnauthorized, code)

	code, body := doJSON(t, app, http.MethodGet, "/api/v1/accounts/me", nil, "Authorization", "Bearer tok")
	assert.Equal(t, fiber.StatusOK, code)
	assert.Equal(t, "u1", body["user_id"])
}

func TestRequestID(t *testing.T) {
	app := NewHTTPServer("", nopLogger{}, &fakeAccounts{}, &fakeSessions{}).App()

	req := httptest.NewRequest(http.MethodGet, "/api/v1/accounts/me", nil)
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.NotEmpty(t, resp.Header.Get(requestIDHeader))

	req = httptest.NewRequest(http.MethodGet, "/api/v1/accounts/me", nil)
	req.Header.Set(requestIDHeader, "abc")
	resp, err = app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, "abc", resp.Header.Get(requestIDHeader))
}

type tokenMailer struct{ last string }

func (m *tokenMailer) Send(_ context.Context, _, _, body string) error {
	m.last = body
	return nil
}

func TestFullFlow_MemoryStore(t *testing.T) {
	cfg := &config.Config{
		SecretKey:                       "secret",
		AccessTokenValidityDuration:     time.Minute,
		RefreshTokenValidityDuration:    time.Hour,
		ActivationTokenValidityDuration: time.Hour,
	}
	store := memory.NewStore()
	policy := credentials.NewPolicy(bcrypt.MinCost)
	ml := &tokenMailer{}

	accounts := services.NewAccountService(store, store, store, policy, ml, nopLogger{}, cfg)
	sessions := services.NewSessionService(store, store, policy, auth.NewSigner([]byte(cfg.SecretKey)), nopLogger{}, cfg)
	app := NewHTTPServer("", nopLogger{}, accounts, sessions).App()

	creds := map[string]string{"email": "User@Example.com", "password": "abcd1234"}

	code, _ := doJSON(t, app, http.MethodPost, "/api/v1/accounts/register", creds)
	require.Equal(t, fiber.StatusCreated, code)

	code, _ = doJSON(t, app, http.MethodPost, "/api/v1/accounts/register", creds)
	assert.Equal(t, fiber.StatusConflict, code)

	code, _ = doJSON(t, app, http.MethodPost, "/api/v1/accounts/login", creds)
	assert.Equal(t, fiber.StatusForbidden, code)

	token := strings.TrimPrefix(ml.last, "Use this token to activate: ")
	code, body := doJSON(t, app, http.MethodPost, "/api/v1/accounts/activate", map[string]string{"token": token})
	require.Equal(t, fiber.StatusOK, code)
	assert.Equal(t, common.MsgActivated, body["message"])

	code, _ = doJSON(t, app, http.MethodPost, "/api/v1/accounts/activate", map[string]string{"token": token})
	assert.Equal(t, fiber.StatusUnauthorized, code)

	code, pair := doJSON(t, app, http.MethodPost, "/api/v1/accounts/login", creds)
	require.Equal(t, fiber.StatusOK, code)
	require.NotEmpty(t, pair["access"])
	require.NotEmpty(t, pair["refresh"])

	code, me := doJSON(t, app, http.MethodGet, "/api/v1/accounts/me", nil, "Authorization", "Bearer "+pair["access"])
	require.Equal(t, fiber.StatusOK, code)
	assert.NotEmpty(t, me["user_id"])

	code, _ = doJSON(t, app, http.MethodGet, "/api/v1/accounts/me", nil, "Authorization", "Bearer "+pair["refresh"])
	assert.Equal(t, fiber.StatusUnauthorized, code)

	code, refreshed := doJSON(t, app, http.MethodPost, "/api/v1/accounts/refresh", map[string]string{"refresh": pair["refresh"]})
	require.Equal(t, fiber.StatusOK, code)
	assert.Equal(t, pair["refresh"], refreshed["refresh"])

	code, _ = doJSON(t, app, http.MethodPost, "/api/v1/accounts/logout", map[string]string{"refresh": pair["refresh"]})
	require.Equal(t, fiber.StatusOK, code)

	code, _ = doJSON(t, app, http.MethodPost, "/api/v1/accounts/refresh", map[string]string{"refresh": pair["refresh"]})
	assert.Equal(t, fiber.StatusUnauthorized, code)

	code, body = doJSON(t, app, http.MethodPost, "/api/v1/accounts/resend-activation", map[string]string{"email": "ghost@example.com"})
	assert.Equal(t, fiber.StatusOK, code)
	assert.Equal(t, common.MsgActivationResent, body["message"])
}
