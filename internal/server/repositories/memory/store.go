// Package memory provides an in-process RepositoryManager used for local
// development (DSN "memory") and service-level tests. Data lives in maps and
// is lost on exit.
package memory

import (
	"context"
	"database/sql"
	"errors"
	"sync"
	"time"

	"github.com/dmitrijs2005/gophaccounts/internal/dbx"
	"github.com/dmitrijs2005/gophaccounts/internal/server/models"
	"github.com/dmitrijs2005/gophaccounts/internal/server/repositories/activationtokens"
	"github.com/dmitrijs2005/gophaccounts/internal/server/repositories/groups"
	"github.com/dmitrijs2005/gophaccounts/internal/server/repositories/refreshsessions"
	"github.com/dmitrijs2005/gophaccounts/internal/server/repositories/users"
)

var errNoSQL = errors.New("memory store does not execute SQL")

type state struct {
	users         map[string]models.User // by id
	groups        map[string]models.UserGroup
	activation    map[string]models.ActivationToken // by user id
	sessions      map[string]models.RefreshSession  // by marker
	nextGroupID   int64
	nextSessionID int64
}

func newState() state {
	return state{
		users:      map[string]models.User{},
		groups:     map[string]models.UserGroup{},
		activation: map[string]models.ActivationToken{},
		sessions:   map[string]models.RefreshSession{},
	}
}

// Store is a RepositoryManager, a dbx.Transactor and a dbx.DBTX at once, so
// services can be wired to it exactly like to a real database.
//
// Transactions are serialized by txMu. Writes made through a transaction
// handle are recorded in its undo log, and rollback replays only that log, so
// writes made outside the transaction survive it. Reads outside a
// transaction may observe uncommitted writes. Id sequences are not rolled
// back.
type Store struct {
	noSQL
	txMu sync.Mutex
	mu   sync.RWMutex
	data state
	now  func() time.Time
}

// NewStore returns an empty store.
func NewStore() *Store {
	return &Store{data: newState(), now: time.Now}
}

// RunMigrations is a no-op; the store has no schema.
func (s *Store) RunMigrations(context.Context, *sql.DB) error { return nil }

func (s *Store) Users(h dbx.DBTX) users.Repository   { return &userRepo{s: s, tx: txOf(h)} }
func (s *Store) Groups(h dbx.DBTX) groups.Repository { return &groupRepo{s: s, tx: txOf(h)} }
func (s *Store) ActivationTokens(h dbx.DBTX) activationtokens.Repository {
	return &activationRepo{s: s, tx: txOf(h)}
}
func (s *Store) RefreshSessions(h dbx.DBTX) refreshsessions.Repository {
	return &sessionRepo{s: s, tx: txOf(h)}
}

// InTx runs fn with a transaction handle. If fn fails or panics, every write
// made through that handle is undone.
func (s *Store) InTx(ctx context.Context, fn func(ctx context.Context, tx dbx.DBTX) error) (err error) {
	s.txMu.Lock()
	defer s.txMu.Unlock()

	t := &memTx{}
	defer func() {
		if p := recover(); p != nil {
			s.rollback(t)
			panic(p)
		}
		if err != nil {
			s.rollback(t)
		}
	}()

	return fn(ctx, t)
}

func (s *Store) rollback(t *memTx) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := len(t.undo) - 1; i >= 0; i-- {
		t.undo[i]()
	}
	t.undo = nil
}

// memTx is the handle passed to InTx callbacks. It is only touched by the
// goroutine running the transaction, with Store.mu held.
type memTx struct {
	noSQL
	undo []func()
}

func txOf(h dbx.DBTX) *memTx {
	t, _ := h.(*memTx)
	return t
}

// remember records how to put m[k] back to its current state. It is a no-op
// outside a transaction.
func remember[K comparable, V any](t *memTx, m map[K]V, k K) {
	if t == nil {
		return
	}
	old, had := m[k]
	t.undo = append(t.undo, func() {
		if had {
			m[k] = old
		} else {
			delete(m, k)
		}
	})
}

// noSQL implements dbx.DBTX for handles that cannot run SQL.
type noSQL struct{}

// ExecContext implements dbx.DBTX and always fails.
func (noSQL) ExecContext(context.Context, string, ...any) (sql.Result, error) {
	return nil, errNoSQL
}

// QueryContext implements dbx.DBTX and always fails.
func (noSQL) QueryContext(context.Context, string, ...any) (*sql.Rows, error) {
	return nil, errNoSQL
}

// QueryRowContext implements dbx.DBTX. It returns nil; callers must not use
// SQL against the memory store.
func (noSQL) QueryRowContext(context.Context, string, ...any) *sql.Row {
	return nil
}
