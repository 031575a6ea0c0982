package memory

import (
	"context"
	"strings"
	"sync"

	"github.com/Lucas23-IECI/PlantillaWeb-sub001/internal/domain"
	apperrors "github.com/Lucas23-IECI/PlantillaWeb-sub001/pkg/errors"
)

// UserRepository implements repository.UserRepository. Emails are unique
// case-insensitively.
type UserRepository struct {
	mu    sync.RWMutex
	users []domain.User
}

// NewUserRepository creates an empty user repository.
func NewUserRepository() *UserRepository {
	return &UserRepository{}
}

// Create stores u.
func (r *UserRepository) Create(_ context.Context, u *domain.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	email := strings.ToLower(u.Email)
	for _, existing := range r.users {
		if strings.ToLower(existing.Email) == email {
			return apperrors.AlreadyExists("El email ya está registrado")
		}
	}
	r.users = append(r.users, *u)
	return nil
}

// GetByID returns the user with id.
func (r *UserRepository) GetByID(_ context.Context, id string) (*domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for i := range r.users {
		if r.users[i].ID == id {
			u := r.users[i]
			return &u, nil
		}
	}
	return nil, apperrors.NotFound("Usuario no encontrado")
}

// GetByEmail returns the user registered with email.
func (r *UserRepository) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	email = strings.ToLower(strings.TrimSpace(email))
	for i := range r.users {
		if strings.ToLower(r.users[i].Email) == email {
			u := r.users[i]
			return &u, nil
		}
	}
	return nil, apperrors.NotFound("Usuario no encontrado")
}

// Count returns the number of accounts.
func (r *UserRepository) Count(_ context.Context) (int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.users), nil
}
