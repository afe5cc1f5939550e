package ports

import (
	"time"

	"github.com/Apurer/canteen-api/internal/shared/principal"
)

// Claims are the verified contents of a bearer token.
type Claims struct {
	SessionID string
	UserID    int64
	Role      principal.Role
	ExpiresAt time.Time
}

// TokenIssuer signs and verifies bearer tokens.
type TokenIssuer interface {
	Issue(claims Claims) (string, error)
	// Parse verifies signature and expiry.
	Parse(token string) (Claims, error)
}

// PasswordHasher derives and checks credential hashes.
type PasswordHasher interface {
	Hash(password string) (string, error)
	Compare(hash, password string) bool
}
