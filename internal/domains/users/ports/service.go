package ports

import (
	"context"

	"github.com/Apurer/canteen-api/internal/domains/users/domain"
	"github.com/Apurer/canteen-api/internal/shared/principal"
)

type SignUpInput struct {
	Name     string
	Email    string
	Password string
	Phone    string
}

type AdminSignUpInput struct {
	Name      string
	Email     string
	Password  string
	Phone     string
	SecretKey string
}

// AuthResult is a freshly issued token with the account it belongs to.
type AuthResult struct {
	Token string
	User  *domain.User
}

// Service exposes account and authentication use cases to adapters.
type Service interface {
	SignUp(ctx context.Context, input SignUpInput) (*AuthResult, error)
	SignIn(ctx context.Context, email, password string) (*AuthResult, error)
	AdminSignUp(ctx context.Context, input AdminSignUpInput) (*AuthResult, error)
	SignOut(ctx context.Context, token string) error
	// Authenticate resolves a bearer token to the caller it was issued for.
	Authenticate(ctx context.Context, token string) (principal.Principal, error)
	ListUsers(ctx context.Context, caller principal.Principal) ([]*domain.User, error)
	// PurgeExpiredSessions removes sessions past their expiry.
	PurgeExpiredSessions(ctx context.Context) (int64, error)
}
