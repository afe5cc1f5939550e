package domain

import (
	"errors"
	"net/mail"
	"strings"
	"time"

	"github.com/Apurer/canteen-api/internal/shared/principal"
)

// MinPasswordLength is the shortest accepted password.
const MinPasswordLength = 6

var (
	ErrEmptyName     = errors.New("name is required")
	ErrInvalidEmail  = errors.New("email address is invalid")
	ErrEmptyPassword = errors.New("password is required")
	ErrWeakPassword  = errors.New("password must be at least 6 characters")
)

// User is a canteen account. PasswordHash never leaves the service boundary.
type User struct {
	ID           int64
	Name         string
	Email        string
	PasswordHash string
	Phone        string
	Role         principal.Role
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// NewUser builds a customer account from signup fields.
func NewUser(name, email, phone string) (*User, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, ErrEmptyName
	}
	normalized, err := NormalizeEmail(email)
	if err != nil {
		return nil, err
	}
	return &User{
		Name:  name,
		Email: normalized,
		Phone: strings.TrimSpace(phone),
		Role:  principal.RoleUser,
	}, nil
}

// NormalizeEmail lowercases and validates an address. Emails are unique case-insensitively.
func NormalizeEmail(email string) (string, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return "", ErrInvalidEmail
	}
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email {
		return "", ErrInvalidEmail
	}
	return email, nil
}

// ValidatePassword checks a plaintext password before hashing.
func ValidatePassword(password string) error {
	if strings.TrimSpace(password) == "" {
		return ErrEmptyPassword
	}
	if len(password) < MinPasswordLength {
		return ErrWeakPassword
	}
	return nil
}

// Principal is the capability the account grants once authenticated.
func (u *User) Principal() principal.Principal {
	return principal.Principal{UserID: u.ID, Role: u.Role}
}

// Promote grants the admin role.
func (u *User) Promote() {
	u.Role = principal.RoleAdmin
}
