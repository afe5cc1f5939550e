package memory

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/Apurer/canteen-api/internal/domains/users/domain"
	"github.com/Apurer/canteen-api/internal/domains/users/ports"
	"github.com/Apurer/canteen-api/internal/shared/principal"
)

var _ ports.Repository = (*Repository)(nil)

// Repository is an in-memory user store for development and tests.
type Repository struct {
	mu      sync.RWMutex
	users   map[int64]domain.User
	byEmail map[string]int64
	nextID  int64
	now     func() time.Time
}

func NewRepository() *Repository {
	return &Repository{
		users:   map[int64]domain.User{},
		byEmail: map[string]int64{},
		now:     time.Now,
	}
}

func (r *Repository) Create(_ context.Context, user *domain.User) (*domain.User, error) {
	if user == nil {
		return nil, errors.New("user is nil")
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, taken := r.byEmail[user.Email]; taken {
		return nil, ports.ErrEmailTaken
	}
	r.nextID++
	stored := *user
	stored.ID = r.nextID
	now := r.now()
	stored.CreatedAt, stored.UpdatedAt = now, now
	r.users[stored.ID] = stored
	r.byEmail[stored.Email] = stored.ID
	return &stored, nil
}

func (r *Repository) GetByID(_ context.Context, id int64) (*domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	u, ok := r.users[id]
	if !ok {
		return nil, ports.ErrNotFound
	}
	return &u, nil
}

func (r *Repository) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	id, ok := r.byEmail[email]
	if !ok {
		return nil, ports.ErrNotFound
	}
	u := r.users[id]
	return &u, nil
}

func (r *Repository) UpdateRole(_ context.Context, id int64, role principal.Role) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return nil, ports.ErrNotFound
	}
	u.Role = role
	u.UpdatedAt = r.now()
	r.users[id] = u
	return &u, nil
}

func (r *Repository) List(_ context.Context) ([]*domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*domain.User, 0, len(r.users))
	for _, u := range r.users {
		copy := u
		out = append(out, &copy)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}
