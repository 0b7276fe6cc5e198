package memory

import (
	"context"
	"sort"
	"time"

	userdomain "github.com/AlibekovAA/fadechat/internal/user/domain"
	userrepo "github.com/AlibekovAA/fadechat/internal/user/repository"
)

type UserRepository struct {
	s *Store
}

var _ userrepo.Repository = (*UserRepository)(nil)

func (r *UserRepository) Create(_ context.Context, user userdomain.User) error {
	if err := r.s.lock(); err != nil {
		return err
	}
	defer r.s.mu.Unlock()

	if _, exists := r.s.users[user.Username]; exists {
		return userrepo.ErrUsernameAlreadyExists
	}
	r.s.users[user.Username] = user
	r.s.usernames[user.ID] = user.Username
	return nil
}

func (r *UserRepository) FindByUsername(_ context.Context, username string) (userdomain.User, error) {
	if err := r.s.lock(); err != nil {
		return userdomain.User{}, err
	}
	defer r.s.mu.Unlock()

	user, ok := r.s.users[username]
	if !ok {
		return userdomain.User{}, userrepo.ErrUserNotFound
	}
	return user, nil
}

func (r *UserRepository) FindByID(_ context.Context, id userdomain.ID) (userdomain.User, error) {
	if err := r.s.lock(); err != nil {
		return userdomain.User{}, err
	}
	defer r.s.mu.Unlock()

	username, ok := r.s.usernames[id]
	if !ok {
		return userdomain.User{}, userrepo.ErrUserNotFound
	}
	return r.s.users[username], nil
}

func (r *UserRepository) ListUsernames(_ context.Context) ([]string, error) {
	if err := r.s.lock(); err != nil {
		return nil, err
	}
	defer r.s.mu.Unlock()

	usernames := make([]string, 0, len(r.s.users))
	for username := range r.s.users {
		usernames = append(usernames, username)
	}
	sort.Strings(usernames)
	return usernames, nil
}

func (r *UserRepository) UpdateLastLogin(_ context.Context, id userdomain.ID, at time.Time) error {
	if err := r.s.lock(); err != nil {
		return err
	}
	defer r.s.mu.Unlock()

	username, ok := r.s.usernames[id]
	if !ok {
		return userrepo.ErrUserNotFound
	}
	user := r.s.users[username]
	user.LastLoginAt = &at
	r.s.users[username] = user
	return nil
}
