package memory

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/toryoki/jobhub/internal/domain/user"
	"github.com/toryoki/jobhub/internal/repo/postgres"
)

// UsersRepo is an in-memory mirror of the postgres users repository. Tests
// use it to run full credential flows without a database.
type UsersRepo struct {
	mu    sync.RWMutex
	users map[string]user.User // keyed by id
}

func NewUsersRepo() *UsersRepo {
	return &UsersRepo{users: make(map[string]user.User)}
}

func (r *UsersRepo) Create(ctx context.Context, p user.CreateParams) (user.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, u := range r.users {
		if u.Email == p.Email {
			return user.User{}, postgres.ErrEmailAlreadyUsed
		}
	}

	now := time.Now().UTC()

	u := user.User{
		ID:           uuid.NewString(),
		Name:         p.Name,
		Email:        p.Email,
		Role:         p.Role,
		PasswordHash: p.PasswordHash,
		Active:       true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	r.users[u.ID] = u
	return u, nil
}

func (r *UsersRepo) GetByEmail(ctx context.Context, email string, includeInactive bool) (user.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, u := range r.users {
		if u.Email == email && (includeInactive || u.Active) {
			return u, nil
		}
	}

	return user.User{}, postgres.ErrUserNotFound
}

func (r *UsersRepo) GetByID(ctx context.Context, id string, includeInactive bool) (user.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	u, ok := r.users[id]

	if !ok || (!includeInactive && !u.Active) {
		return user.User{}, postgres.ErrUserNotFound
	}

	return u, nil
}

func (r *UsersRepo) GetByResetTokenHash(ctx context.Context, tokenHash string, now time.Time) (user.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, u := range r.users {
		if !u.Active || u.PasswordResetTokenHash == nil || u.PasswordResetExpires == nil {
			continue
		}
		if *u.PasswordResetTokenHash == tokenHash && now.Before(*u.PasswordResetExpires) {
			return u, nil
		}
	}

	return user.User{}, postgres.ErrUserNotFound
}

func (r *UsersRepo) UpdateProfile(ctx context.Context, id string, name, email *string) (user.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	u, ok := r.users[id]

	if !ok || !u.Active {
		return user.User{}, postgres.ErrUserNotFound
	}

	if email != nil {
		for otherID, other := range r.users {
			if otherID != id && other.Email == *email {
				return user.User{}, postgres.ErrEmailAlreadyUsed
			}
		}
		u.Email = *email
	}
	if name != nil {
		u.Name = *name
	}

	u.UpdatedAt = time.Now().UTC()
	r.users[id] = u
	return u, nil
}

func (r *UsersRepo) UpdatePassword(ctx context.Context, id, passwordHash string, changedAt time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	u, ok := r.users[id]

	if !ok || !u.Active {
		return postgres.ErrUserNotFound
	}

	u.PasswordHash = passwordHash
	u.PasswordChangedAt = &changedAt
	u.PasswordResetTokenHash = nil
	u.PasswordResetExpires = nil
	u.UpdatedAt = time.Now().UTC()

	r.users[id] = u
	return nil
}

func (r *UsersRepo) SetResetToken(ctx context.Context, id, tokenHash string, expiresAt time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	u, ok := r.users[id]

	if !ok || !u.Active {
		return postgres.ErrUserNotFound
	}

	u.PasswordResetTokenHash = &tokenHash
	u.PasswordResetExpires = &expiresAt
	u.UpdatedAt = time.Now().UTC()

	r.users[id] = u
	return nil
}

func (r *UsersRepo) ClearResetToken(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	u, ok := r.users[id]

	if !ok {
		return postgres.ErrUserNotFound
	}

	u.PasswordResetTokenHash = nil
	u.PasswordResetExpires = nil
	u.UpdatedAt = time.Now().UTC()

	r.users[id] = u
	return nil
}

func (r *UsersRepo) Deactivate(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	u, ok := r.users[id]

	if !ok || !u.Active {
		return postgres.ErrUserNotFound
	}

	u.Active = false
	u.UpdatedAt = time.Now().UTC()

	r.users[id] = u
	return nil
}
