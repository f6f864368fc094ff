package services

import (
	"context"
	"database/sql"
	"sync"
	"time"

	"github.com/dmitrijs2005/gophaccounts/internal/dbx"
	"github.com/dmitrijs2005/gophaccounts/internal/logging"
	"github.com/dmitrijs2005/gophaccounts/internal/server/models"
	"github.com/dmitrijs2005/gophaccounts/internal/server/repositories/activationtokens"
	"github.com/dmitrijs2005/gophaccounts/internal/server/repositories/groups"
	"github.com/dmitrijs2005/gophaccounts/internal/server/repositories/refreshsessions"
	"github.com/dmitrijs2005/gophaccounts/internal/server/repositories/users"
)

type errBoom struct{}

func (errBoom) Error() string { return "boom" }

type nopLogger struct{}

func (n nopLogger) Debug(context.Context, string, ...any) {}
func (n nopLogger) Info(context.Context, string, ...any)  {}
func (n nopLogger) Warn(context.Context, string, ...any)  {}
func (n nopLogger) Error(context.Context, string, ...any) {}
func (n nopLogger) With(...any) logging.Logger            { return n }

type fakeClock struct{ t time.Time }

func (c *fakeClock) Now() time.Time { return c.t }

type sentMail struct{ to, subject, body string }

type countingMailer struct {
	mu   sync.Mutex
	sent []sentMail
	err  error
}

func (m *countingMailer) Send(_ context.Context, to, subject, body string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.sent = append(m.sent, sentMail{to, subject, body})
	return nil
}

func (m *countingMailer) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sent)
}

func (m *countingMailer) last() sentMail {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.sent[len(m.sent)-1]
}

// fakeTx runs fn directly and records the outcome.
type fakeTx struct {
	calls int
	err   error
}

func (f *fakeTx) InTx(ctx context.Context, fn func(ctx context.Context, tx dbx.DBTX) error) error {
	f.calls++
	f.err = fn(ctx, nil)
	return f.err
}

type fakeUsersRepo struct {
	getOut    *models.User
	getErr    error
	createErr error
	actErr    error

	created   *models.User
	activated string
}

func (f *fakeUsersRepo) Create(_ context.Context, u *models.User) (*models.User, error) {
	if f.createErr != nil {
		return nil, f.createErr
	}
	u.ID = "u-new"
	f.created = u
	return u, nil
}

func (f *fakeUsersRepo) GetByEmail(context.Context, string) (*models.User, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	return f.getOut, nil
}

func (f *fakeUsersRepo) GetByID(context.Context, string) (*models.User, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	return f.getOut, nil
}

func (f *fakeUsersRepo) Activate(_ context.Context, id string) error {
	if f.actErr != nil {
		return f.actErr
	}
	f.activated = id
	return nil
}

type fakeGroupsRepo struct{ err error }

func (f *fakeGroupsRepo) GetOrCreate(_ context.Context, name string) (*models.UserGroup, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &models.UserGroup{ID: 1, Name: name}, nil
}

type fakeActivationRepo struct {
	upsertErr  error
	consumeOut *models.ActivationToken
	consumeErr error

	upserted *models.ActivationToken
}

func (f *fakeActivationRepo) Upsert(_ context.Context, t *models.ActivationToken) error {
	if f.upsertErr != nil {
		return f.upsertErr
	}
	f.upserted = t
	return nil
}

func (f *fakeActivationRepo) Consume(context.Context, string) (*models.ActivationToken, error) {
	if f.consumeErr != nil {
		return nil, f.consumeErr
	}
	return f.consumeOut, nil
}

type fakeSessionsRepo struct {
	createErr error
	getOut    *models.RefreshSession
	getErr    error
	delErr    error

	created *models.RefreshSession
	deleted []string
}

func (f *fakeSessionsRepo) Create(_ context.Context, s *models.RefreshSession) error {
	if f.createErr != nil {
		return f.createErr
	}
	f.created = s
	return nil
}

func (f *fakeSessionsRepo) GetByMarker(context.Context, string) (*models.RefreshSession, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	return f.getOut, nil
}

func (f *fakeSessionsRepo) DeleteByMarker(_ context.Context, marker string) error {
	if f.delErr != nil {
		return f.delErr
	}
	f.deleted = append(f.deleted, marker)
	return nil
}

type fakeRepoManager struct {
	u  *fakeUsersRepo
	g  *fakeGroupsRepo
	at *fakeActivationRepo
	rs *fakeSessionsRepo
}

func newFakeRepoManager() *fakeRepoManager {
	return &fakeRepoManager{
		u:  &fakeUsersRepo{},
		g:  &fakeGroupsRepo{},
		at: &fakeActivationRepo{},
		rs: &fakeSessionsRepo{},
	}
}

func (m *fakeRepoManager) RunMigrations(context.Context, *sql.DB) error          { return nil }
func (m *fakeRepoManager) Users(dbx.DBTX) users.Repository                       { return m.u }
func (m *fakeRepoManager) Groups(dbx.DBTX) groups.Repository                     { return m.g }
func (m *fakeRepoManager) ActivationTokens(dbx.DBTX) activationtokens.Repository { return m.at }
func (m *fakeRepoManager) RefreshSessions(dbx.DBTX) refreshsessions.Repository   { return m.rs }
