package ports

import (
	"context"
	"fmt"

	"github.com/Apurer/canteen-api/internal/domains/users/domain"
	"github.com/Apurer/canteen-api/internal/shared/failure"
	"github.com/Apurer/canteen-api/internal/shared/principal"
)

var (
	ErrNotFound   = fmt.Errorf("user %w", failure.ErrNotFound)
	ErrEmailTaken = fmt.Errorf("email already registered: %w", failure.ErrConflict)
)

type Repository interface {
	// Create inserts a user; ErrEmailTaken when the email is registered.
	Create(ctx context.Context, user *domain.User) (*domain.User, error)
	GetByID(ctx context.Context, id int64) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	// UpdateRole changes the role of an existing user.
	UpdateRole(ctx context.Context, id int64, role principal.Role) (*domain.User, error)
	List(ctx context.Context) ([]*domain.User, error)
}
