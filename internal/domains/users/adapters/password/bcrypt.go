// Package password hashes credentials with bcrypt.
package password

import (
	"golang.org/x/crypto/bcrypt"

	"github.com/Apurer/canteen-api/internal/domains/users/ports"
)

var _ ports.PasswordHasher = Bcrypt{}

// Bcrypt hashes with the configured cost; zero means bcrypt.DefaultCost.
type Bcrypt struct {
	Cost int
}

func (b Bcrypt) Hash(password string) (string, error) {
	cost := b.Cost
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

func (b Bcrypt) Compare(hash, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}
