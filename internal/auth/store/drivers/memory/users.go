package memory

import (
	"context"

	"github.com/aussiebroadwan/tinylink/internal/auth/domain"
	"github.com/aussiebroadwan/tinylink/internal/auth/store"
)

type usersRepo struct {
	s *Store
}

func (r *usersRepo) CreateUser(ctx context.Context, u domain.User) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.users[u.Username]; ok {
		return store.ErrAlreadyExists
	}

	if u.CreatedAt.IsZero() {
		u.CreatedAt = r.s.now()
	}
	u.UpdatedAt = u.CreatedAt
	r.s.users[u.Username] = u
	return nil
}

func (r *usersRepo) GetUserByUsername(ctx context.Context, username string) (domain.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	u, ok := r.s.users[username]
	if !ok {
		return domain.User{}, store.ErrNotFound
	}
	return u, nil
}

func (r *usersRepo) SwapPasswordDigest(ctx context.Context, username, oldDigest, newDigest string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	u, ok := r.s.users[username]
	if !ok || u.PasswordDigest != oldDigest {
		return store.ErrNotFound
	}

	u.PasswordDigest = newDigest
	u.UpdatedAt = r.s.now()
	r.s.users[username] = u
	return nil
}

func (r *usersRepo) CountUsers(ctx context.Context) (int, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	return len(r.s.users), nil
}
