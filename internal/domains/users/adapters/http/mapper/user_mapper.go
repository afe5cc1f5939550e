package mapper

import (
	"time"

	userdomain "github.com/Apurer/canteen-api/internal/domains/users/domain"
	userports "github.com/Apurer/canteen-api/internal/domains/users/ports"
)

type SignUpRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
	Phone    string `json:"phone"`
}

type SignInRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type AdminSignUpRequest struct {
	Name      string `json:"name"`
	Email     string `json:"email" binding:"required"`
	Password  string `json:"password" binding:"required"`
	Phone     string `json:"phone"`
	SecretKey string `json:"secretKey"`
}

type TokenResponse struct {
	Token string `json:"token"`
	Role  string `json:"role"`
}

// User is the listing payload; credentials are never serialized.
type User struct {
	UserID    int64     `json:"user_id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Phone     string    `json:"phone,omitempty"`
	Role      string    `json:"role"`
	CreatedAt time.Time `json:"created_at"`
}

func ToSignUpInput(req SignUpRequest) userports.SignUpInput {
	return userports.SignUpInput{Name: req.Name, Email: req.Email, Password: req.Password, Phone: req.Phone}
}

func ToAdminSignUpInput(req AdminSignUpRequest) userports.AdminSignUpInput {
	return userports.AdminSignUpInput{
		Name:      req.Name,
		Email:     req.Email,
		Password:  req.Password,
		Phone:     req.Phone,
		SecretKey: req.SecretKey,
	}
}

func FromAuthResult(result *userports.AuthResult) TokenResponse {
	return TokenResponse{Token: result.Token, Role: string(result.User.Role)}
}

// FromDomainUser converts a domain user into a transport representation.
func FromDomainUser(user *userdomain.User) User {
	if user == nil {
		return User{}
	}
	return User{
		UserID:    user.ID,
		Name:      user.Name,
		Email:     user.Email,
		Phone:     user.Phone,
		Role:      string(user.Role),
		CreatedAt: user.CreatedAt,
	}
}

// FromDomainUsers converts a slice of domain users to transport representation.
func FromDomainUsers(users []*userdomain.User) []User {
	result := make([]User, 0, len(users))
	for _, user := range users {
		result = append(result, FromDomainUser(user))
	}
	return result
}
