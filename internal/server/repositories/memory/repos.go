package memory

import (
	"context"

	"github.com/dmitrijs2005/gophaccounts/internal/common"
	"github.com/dmitrijs2005/gophaccounts/internal/server/models"
	"github.com/google/uuid"
)

type userRepo struct {
	s  *Store
	tx *memTx
}

func (r *userRepo) Create(_ context.Context, user *models.User) (*models.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	for _, u := range r.s.data.users {
		if u.Email == user.Email {
			return nil, common.ErrorAlreadyExists
		}
	}

	now := r.s.now()
	user.ID = uuid.NewString()
	user.CreatedAt = now
	user.UpdatedAt = now
	remember(r.tx, r.s.data.users, user.ID)
	r.s.data.users[user.ID] = *user
	return user, nil
}

func (r *userRepo) GetByEmail(_ context.Context, email string) (*models.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	for _, u := range r.s.data.users {
		if u.Email == email {
			return &u, nil
		}
	}
	return nil, common.ErrorNotFound
}

func (r *userRepo) GetByID(_ context.Context, id string) (*models.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	u, ok := r.s.data.users[id]
	if !ok {
		return nil, common.ErrorNotFound
	}
	return &u, nil
}

func (r *userRepo) Activate(_ context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	u, ok := r.s.data.users[id]
	if !ok {
		return common.ErrorNotFound
	}
	u.IsActive = true
	u.UpdatedAt = r.s.now()
	remember(r.tx, r.s.data.users, id)
	r.s.data.users[id] = u
	return nil
}

type groupRepo struct {
	s  *Store
	tx *memTx
}

func (r *groupRepo) GetOrCreate(_ context.Context, name string) (*models.UserGroup, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	g, ok := r.s.data.groups[name]
	if !ok {
		r.s.data.nextGroupID++
		g = models.UserGroup{ID: r.s.data.nextGroupID, Name: name}
		remember(r.tx, r.s.data.groups, name)
		r.s.data.groups[name] = g
	}
	return &g, nil
}

type activationRepo struct {
	s  *Store
	tx *memTx
}

func (r *activationRepo) Upsert(_ context.Context, t *models.ActivationToken) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.data.users[t.UserID]; !ok {
		return common.ErrorNotFound
	}
	for uid, existing := range r.s.data.activation {
		if existing.Token == t.Token && uid != t.UserID {
			return common.ErrorAlreadyExists
		}
	}
	remember(r.tx, r.s.data.activation, t.UserID)
	r.s.data.activation[t.UserID] = *t
	return nil
}

func (r *activationRepo) Consume(_ context.Context, token string) (*models.ActivationToken, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	for uid, t := range r.s.data.activation {
		if t.Token == token {
			remember(r.tx, r.s.data.activation, uid)
			delete(r.s.data.activation, uid)
			return &t, nil
		}
	}
	return nil, common.ErrorNotFound
}

type sessionRepo struct {
	s  *Store
	tx *memTx
}

func (r *sessionRepo) Create(_ context.Context, sess *models.RefreshSession) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.data.sessions[sess.Marker]; ok {
		return common.ErrorAlreadyExists
	}
	r.s.data.nextSessionID++
	sess.ID = r.s.data.nextSessionID
	sess.CreatedAt = r.s.now()
	remember(r.tx, r.s.data.sessions, sess.Marker)
	r.s.data.sessions[sess.Marker] = *sess
	return nil
}

func (r *sessionRepo) GetByMarker(_ context.Context, marker string) (*models.RefreshSession, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	sess, ok := r.s.data.sessions[marker]
	if !ok {
		return nil, common.ErrorNotFound
	}
	return &sess, nil
}

func (r *sessionRepo) DeleteByMarker(_ context.Context, marker string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	remember(r.tx, r.s.data.sessions, marker)
	delete(r.s.data.sessions, marker)
	return nil
}
