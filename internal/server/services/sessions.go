package services

import (
	"context"
	"errors"
	"time"

	"github.com/dmitrijs2005/gophaccounts/internal/common"
	"github.com/dmitrijs2005/gophaccounts/internal/dbx"
	"github.com/dmitrijs2005/gophaccounts/internal/logging"
	"github.com/dmitrijs2005/gophaccounts/internal/server/auth"
	"github.com/dmitrijs2005/gophaccounts/internal/server/config"
	"github.com/dmitrijs2005/gophaccounts/internal/server/credentials"
	"github.com/dmitrijs2005/gophaccounts/internal/server/models"
	"github.com/dmitrijs2005/gophaccounts/internal/server/repositories/repomanager"
)

// TokenPair bundles a short-lived access token and a long-lived refresh token.
type TokenPair struct {
	AccessToken  string
	RefreshToken string
}

// SessionService provides authentication-related operations:
// - Login: verify credentials and mint tokens
// - RefreshAccess: mint a new access token from a live refresh session
// - Logout: revoke the refresh session
// - Authenticate: resolve an access token to its user id
type SessionService struct {
	db          dbx.DBTX
	repomanager repomanager.RepositoryManager
	policy      *credentials.Policy
	signer      *auth.Signer
	log         logging.Logger

	accessTokenValidityDuration  time.Duration
	refreshTokenValidityDuration time.Duration

	now func() time.Time
}

// NewSessionService constructs a SessionService using repositories and server config.
func NewSessionService(db dbx.DBTX, m repomanager.RepositoryManager, policy *credentials.Policy,
	signer *auth.Signer, log logging.Logger, cfg *config.Config) *SessionService {
	return &SessionService{
		db:                           db,
		repomanager:                  m,
		policy:                       policy,
		signer:                       signer,
		log:                          log.With("module", "sessions"),
		accessTokenValidityDuration:  cfg.AccessTokenValidityDuration,
		refreshTokenValidityDuration: cfg.RefreshTokenValidityDuration,
		now:                          time.Now,
	}
}

// Login checks credentials and, for an active account, returns a token pair
// backed by a new refresh session. Unknown email and wrong password are the
// same error.
func (s *SessionService) Login(ctx context.Context, email, password string) (*TokenPair, error) {
	user, err := s.repomanager.Users(s.db).GetByEmail(ctx, NormalizeEmail(email))
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			s.policy.VerifyDummy(password)
			return nil, common.ErrInvalidCredentials
		}
		return nil, internalErr("lookup user", err)
	}

	ok, err := s.policy.Verify(password, user.HashedPassword)
	if err != nil {
		s.log.Error(ctx, "stored credential unreadable", "user_id", user.ID, "error", err)
		return nil, internalErr("verify password", err)
	}
	if !ok {
		return nil, common.ErrInvalidCredentials
	}
	if !user.IsActive {
		return nil, common.ErrAccountNotActive
	}

	pair, err := s.generateTokenPair(ctx, user.ID)
	if err != nil {
		return nil, err
	}

	s.log.Info(ctx, "user logged in", "user_id", user.ID)
	return pair, nil
}

// RefreshAccess returns a new access token for a live refresh token. The
// refresh token itself is returned unchanged.
func (s *SessionService) RefreshAccess(ctx context.Context, refreshToken string) (*TokenPair, error) {
	claims, err := s.signer.Verify(refreshToken)
	if err != nil {
		return nil, err
	}
	if claims.Type != common.TokenTypeRefresh {
		return nil, common.ErrWrongTokenType
	}
	if claims.Marker == "" {
		return nil, common.ErrSessionRevoked
	}

	session, err := s.repomanager.RefreshSessions(s.db).GetByMarker(ctx, claims.Marker)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrSessionRevoked
		}
		return nil, internalErr("lookup refresh session", err)
	}
	if session.UserID != claims.Subject {
		return nil, common.ErrSessionRevoked
	}
	if session.Expired(s.now()) {
		return nil, common.ErrSessionExpired
	}

	access, _, err := s.signer.Sign(auth.NewClaims(claims.Subject, common.TokenTypeAccess, ""), s.accessTokenValidityDuration)
	if err != nil {
		return nil, err
	}
	return &TokenPair{AccessToken: access, RefreshToken: refreshToken}, nil
}

// Logout revokes the session behind refreshToken. Tokens that do not verify
// or are not refresh tokens are ignored; only storage failures are reported.
func (s *SessionService) Logout(ctx context.Context, refreshToken string) error {
	claims, err := s.signer.Verify(refreshToken)
	if err != nil {
		s.log.Debug(ctx, "logout with unusable token", "error", err)
		return nil
	}
	if claims.Type != common.TokenTypeRefresh || claims.Marker == "" {
		return nil
	}

	if err := s.repomanager.RefreshSessions(s.db).DeleteByMarker(ctx, claims.Marker); err != nil {
		return internalErr("delete refresh session", err)
	}

	s.log.Info(ctx, "user logged out", "user_id", claims.Subject)
	return nil
}

// Authenticate verifies an access token and returns its subject.
func (s *SessionService) Authenticate(_ context.Context, accessToken string) (string, error) {
	claims, err := s.signer.Verify(accessToken)
	if err != nil {
		return "", err
	}
	if claims.Type != common.TokenTypeAccess {
		return "", common.ErrWrongTokenType
	}
	return claims.Subject, nil
}

func (s *SessionService) generateTokenPair(ctx context.Context, userID string) (*TokenPair, error) {
	access, _, err := s.signer.Sign(auth.NewClaims(userID, common.TokenTypeAccess, ""), s.accessTokenValidityDuration)
	if err != nil {
		return nil, err
	}

	marker, err := common.MakeRandURLSafeString(tokenBytes)
	if err != nil {
		return nil, internalErr("generate refresh marker", err)
	}

	refresh, expiresAt, err := s.signer.Sign(auth.NewClaims(userID, common.TokenTypeRefresh, marker), s.refreshTokenValidityDuration)
	if err != nil {
		return nil, err
	}

	err = s.repomanager.RefreshSessions(s.db).Create(ctx, &models.RefreshSession{
		UserID:    userID,
		Marker:    marker,
		ExpiresAt: expiresAt,
	})
	if err != nil {
		return nil, internalErr("store refresh session", err)
	}

	return &TokenPair{AccessToken: access, RefreshToken: refresh}, nil
}
