// Package memory holds map-backed repository implementations with the
// same error semantics as the Postgres adapters. They serve the memory
// storage mode and the test suite.
package memory

import (
	"context"
	"sync"

	"dispatch-service/internal/domain/entity"
	"dispatch-service/internal/domain/repository"
)

// userRepository implements repository.UserRepository in memory.
type userRepository struct {
	mu      sync.RWMutex
	byID    map[string]*entity.User
	byEmail map[string]string
}

// NewUserRepository creates an empty in-memory user repository.
func NewUserRepository() repository.UserRepository {
	return &userRepository{
		byID:    make(map[string]*entity.User),
		byEmail: make(map[string]string),
	}
}

func (r *userRepository) Create(_ context.Context, user *entity.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, taken := r.byEmail[user.Email]; taken {
		return entity.NewAlreadyExistsError("User", "email="+user.Email)
	}
	r.byID[user.ID] = cloneUser(user)
	r.byEmail[user.Email] = user.ID
	return nil
}

func (r *userRepository) GetByID(_ context.Context, id string) (*entity.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	user, ok := r.byID[id]
	if !ok {
		return nil, entity.NewNotFoundError("User", id)
	}
	return cloneUser(user), nil
}

func (r *userRepository) GetByEmail(_ context.Context, email string) (*entity.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	id, ok := r.byEmail[email]
	if !ok {
		return nil, entity.NewNotFoundError("User", email)
	}
	return cloneUser(r.byID[id]), nil
}

func (r *userRepository) ExistsByEmail(_ context.Context, email string) (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.byEmail[email]
	return ok, nil
}

func (r *userRepository) Update(_ context.Context, user *entity.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	stored, ok := r.byID[user.ID]
	if !ok {
		return entity.NewNotFoundError("User", user.ID)
	}
	if stored.Email != user.Email {
		delete(r.byEmail, stored.Email)
		r.byEmail[user.Email] = user.ID
	}
	r.byID[user.ID] = cloneUser(user)
	return nil
}

func (r *userRepository) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	user, ok := r.byID[id]
	if !ok {
		return entity.NewNotFoundError("User", id)
	}
	delete(r.byEmail, user.Email)
	delete(r.byID, id)
	return nil
}

// cloneUser copies the user so callers never share mutable state with the
// store.
func cloneUser(u *entity.User) *entity.User {
	c := *u
	if u.Age != nil {
		age := *u.Age
		c.Age = &age
	}
	c.Metadata = cloneMap(u.Metadata)
	return &c
}

func cloneMap(m map[string]any) map[string]any {
	out := make(map[string]any, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}
