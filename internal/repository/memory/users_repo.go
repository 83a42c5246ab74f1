// Package memory holds map-backed repositories used by tests and the
// "memory" database driver.
package memory

import (
	"alcyxob/trainer-marketplace/internal/domain"
	"alcyxob/trainer-marketplace/internal/repository"
	"context"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type UsersRepo struct {
	mu    sync.RWMutex
	items map[primitive.ObjectID]domain.User
}

func NewUsersRepo() *UsersRepo {
	return &UsersRepo{
		items: make(map[primitive.ObjectID]domain.User),
	}
}

var _ repository.UserRepository = (*UsersRepo)(nil)

func (r *UsersRepo) Create(_ context.Context, user *domain.User) (primitive.ObjectID, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	email := domain.NormalizeEmail(user.Email)
	for _, u := range r.items {
		if u.Email == email {
			return primitive.NilObjectID, repository.ErrDuplicateKey
		}
	}

	now := time.Now().UTC()
	user.ID = primitive.NewObjectID()
	user.Email = email
	user.CreatedAt = now
	user.UpdatedAt = now
	r.items[user.ID] = *user

	return user.ID, nil
}

func (r *UsersRepo) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	email = domain.NormalizeEmail(email)

	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, u := range r.items {
		if u.Email == email {
			return &u, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *UsersRepo) GetByID(_ context.Context, id primitive.ObjectID) (*domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	u, ok := r.items[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &u, nil
}

func (r *UsersRepo) GetByIDs(_ context.Context, ids []primitive.ObjectID) ([]domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := []domain.User{}
	for _, id := range ids {
		if u, ok := r.items[id]; ok {
			out = append(out, u)
		}
	}
	return out, nil
}

func (r *UsersRepo) Update(_ context.Context, user *domain.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	cur, ok := r.items[user.ID]
	if !ok {
		return repository.ErrNotFound
	}
	user.UpdatedAt = time.Now().UTC()
	cur.FirstName = user.FirstName
	cur.LastName = user.LastName
	cur.PasswordHash = user.PasswordHash
	cur.UpdatedAt = user.UpdatedAt
	r.items[user.ID] = cur
	return nil
}

func (r *UsersRepo) Delete(_ context.Context, id primitive.ObjectID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.items[id]; !ok {
		return repository.ErrNotFound
	}
	delete(r.items, id)
	return nil
}

// Len reports the number of stored users.
func (r *UsersRepo) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.items)
}
