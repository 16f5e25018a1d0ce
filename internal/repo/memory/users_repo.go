// Package memory holds mutex-guarded in-memory repos with the same
// contract as the postgres ones. They back the tests and STORE=memory
// dev mode.
package memory

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/showcasehq/showcase/internal/domain/user"
)

type UsersRepo struct {
	mu    sync.RWMutex
	byUID map[string]user.User
}

func NewUsersRepo() *UsersRepo {
	return &UsersRepo{
		byUID: make(map[string]user.User),
	}
}

func (r *UsersRepo) GetByUID(_ context.Context, uid string) (user.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	u, ok := r.byUID[uid]

	if !ok {
		return user.User{}, user.ErrNotFound
	}

	return u, nil
}

func (r *UsersRepo) Create(_ context.Context, req user.RegisterRequest) (user.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.byUID[req.FirebaseUID]; ok {
		return user.User{}, user.ErrDuplicate
	}

	for _, existing := range r.byUID {
		if existing.Email == req.Email {
			return user.User{}, user.ErrDuplicate
		}
	}

	u := user.User{
		ID:          uuid.NewString(),
		FirebaseUID: req.FirebaseUID,
		Name:        req.Name,
		Email:       req.Email,
		CreatedAt:   time.Now().UTC(),
	}

	r.byUID[u.FirebaseUID] = u

	return u, nil
}
