package services

import (
	"context"
	"errors"
	"time"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/go-ozzo/ozzo-validation/is"

	"github.com/dmitrijs2005/gophaccounts/internal/common"
	"github.com/dmitrijs2005/gophaccounts/internal/dbx"
	"github.com/dmitrijs2005/gophaccounts/internal/logging"
	"github.com/dmitrijs2005/gophaccounts/internal/server/config"
	"github.com/dmitrijs2005/gophaccounts/internal/server/credentials"
	"github.com/dmitrijs2005/gophaccounts/internal/server/mailer"
	"github.com/dmitrijs2005/gophaccounts/internal/server/models"
	"github.com/dmitrijs2005/gophaccounts/internal/server/repositories/repomanager"
)

const (
	activationSubject = "Activate your account"
	activationBody    = "Use this token to activate: "
)

// AccountService registers users and walks them through activation.
type AccountService struct {
	db            dbx.DBTX
	tx            dbx.Transactor
	repomanager   repomanager.RepositoryManager
	policy        *credentials.Policy
	mailer        mailer.Mailer
	log           logging.Logger
	activationTTL time.Duration
	now           func() time.Time
}

// NewAccountService wires an AccountService. Single statements run on db,
// multi-statement units through tx.
func NewAccountService(db dbx.DBTX, tx dbx.Transactor, m repomanager.RepositoryManager,
	policy *credentials.Policy, ml mailer.Mailer, log logging.Logger, cfg *config.Config) *AccountService {
	return &AccountService{
		db:            db,
		tx:            tx,
		repomanager:   m,
		policy:        policy,
		mailer:        ml,
		log:           log.With("module", "accounts"),
		activationTTL: cfg.ActivationTokenValidityDuration,
		now:           time.Now,
	}
}

// Register creates an inactive user in the USER group together with its
// activation token, then mails the token. A mail failure does not fail
// registration.
func (s *AccountService) Register(ctx context.Context, email, password string) (*models.User, error) {
	email = NormalizeEmail(email)
	if err := validation.Validate(email, validation.Required, is.Email); err != nil {
		return nil, common.ErrInvalidEmail
	}
	if err := s.policy.Validate(password); err != nil {
		return nil, err
	}

	_, err := s.repomanager.Users(s.db).GetByEmail(ctx, email)
	switch {
	case err == nil:
		return nil, common.ErrEmailTaken
	case !errors.Is(err, common.ErrorNotFound):
		return nil, internalErr("lookup user", err)
	}

	digest, err := s.policy.Hash(password)
	if err != nil {
		return nil, err
	}

	var (
		user  *models.User
		token string
	)
	err = s.tx.InTx(ctx, func(ctx context.Context, tx dbx.DBTX) error {
		group, err := s.repomanager.Groups(tx).GetOrCreate(ctx, models.GroupUser)
		if err != nil {
			return internalErr("get user group", err)
		}

		user, err = s.repomanager.Users(tx).Create(ctx, &models.User{
			Email:          email,
			HashedPassword: digest,
			GroupID:        group.ID,
		})
		if err != nil {
			if errors.Is(err, common.ErrorAlreadyExists) {
				return common.ErrEmailTaken
			}
			return internalErr("create user", err)
		}

		token, err = s.issue(ctx, tx, user.ID)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.log.Info(ctx, "user registered", "user_id", user.ID)
	s.sendActivation(ctx, email, token)
	return user, nil
}

// issue stores a fresh activation token for userID, replacing any previous
// one, and returns it.
func (s *AccountService) issue(ctx context.Context, db dbx.DBTX, userID string) (string, error) {
	token, err := common.MakeRandURLSafeString(tokenBytes)
	if err != nil {
		return "", internalErr("generate activation token", err)
	}

	err = s.repomanager.ActivationTokens(db).Upsert(ctx, &models.ActivationToken{
		UserID:    userID,
		Token:     token,
		ExpiresAt: s.now().Add(s.activationTTL),
	})
	if err != nil {
		return "", internalErr("store activation token", err)
	}
	return token, nil
}

func (s *AccountService) sendActivation(ctx context.Context, email, token string) {
	if err := s.mailer.Send(ctx, email, activationSubject, activationBody+token); err != nil {
		s.log.Error(ctx, "activation mail failed", "to", email, "error", err)
	}
}

// Activate consumes token and marks its owner active. An expired token is
// reported as common.ErrTokenExpired and stays in place; an unknown or
// already used one gives common.ErrInvalidToken.
func (s *AccountService) Activate(ctx context.Context, token string) error {
	if token == "" {
		return common.ErrInvalidToken
	}

	var userID string
	err := s.tx.InTx(ctx, func(ctx context.Context, tx dbx.DBTX) error {
		at, err := s.repomanager.ActivationTokens(tx).Consume(ctx, token)
		if err != nil {
			if errors.Is(err, common.ErrorNotFound) {
				return common.ErrInvalidToken
			}
			return internalErr("consume activation token", err)
		}

		// returning an error rolls the delete back
		if at.Expired(s.now()) {
			return common.ErrTokenExpired
		}

		if err := s.repomanager.Users(tx).Activate(ctx, at.UserID); err != nil {
			if errors.Is(err, common.ErrorNotFound) {
				return common.ErrInvalidToken
			}
			return internalErr("activate user", err)
		}
		userID = at.UserID
		return nil
	})
	if err != nil {
		return err
	}

	s.log.Info(ctx, "user activated", "user_id", userID)
	return nil
}

// ResendActivation issues and mails a new token to a pending user. Unknown
// and already active addresses are silently ignored so the result does not
// reveal whether an account exists.
func (s *AccountService) ResendActivation(ctx context.Context, email string) error {
	email = NormalizeEmail(email)

	user, err := s.repomanager.Users(s.db).GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil
		}
		return internalErr("lookup user", err)
	}
	if user.IsActive {
		return nil
	}

	token, err := s.issue(ctx, s.db, user.ID)
	if err != nil {
		return err
	}

	s.log.Debug(ctx, "activation reissued", "user_id", user.ID)
	s.sendActivation(ctx, email, token)
	return nil
}
