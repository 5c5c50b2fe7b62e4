package memory

import (
	"context"
	"sync"

	"github.com/geocoder89/courseapi/internal/domain/user"
)

type UsersRepo struct {
	mu      sync.RWMutex
	items   map[string]user.User // id -> user
	byEmail map[string]string    // normalized email -> id
}

func NewUsersRepo() *UsersRepo {
	return &UsersRepo{
		items:   make(map[string]user.User),
		byEmail: make(map[string]string),
	}
}

// Create checks and claims the e-mail under one lock so concurrent
// registrations of the same address cannot both succeed.
func (r *UsersRepo) Create(_ context.Context, u user.User) (user.User, error) {
	u.EmailAddress = user.NormalizeEmail(u.EmailAddress)

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, taken := r.byEmail[u.EmailAddress]; taken {
		return user.User{}, user.ErrEmailTaken()
	}

	r.items[u.ID] = u
	r.byEmail[u.EmailAddress] = u.ID

	return u, nil
}

func (r *UsersRepo) GetByEmail(_ context.Context, email string) (user.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	id, ok := r.byEmail[user.NormalizeEmail(email)]
	if !ok {
		return user.User{}, user.ErrNotFound
	}
	return r.items[id], nil
}

func (r *UsersRepo) GetByID(_ context.Context, id string) (user.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	u, ok := r.items[id]
	if !ok {
		return user.User{}, user.ErrNotFound
	}
	return u, nil
}
