// Package token issues and verifies HS256 bearer tokens.
package token

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/Apurer/canteen-api/internal/domains/users/ports"
	"github.com/Apurer/canteen-api/internal/shared/principal"
)

var _ ports.TokenIssuer = (*JWT)(nil)

const issuer = "canteen-api"

// JWT signs tokens carrying the user id, role and session id.
type JWT struct {
	secret []byte
}

type claims struct {
	Role string `json:"role"`
	jwt.RegisteredClaims
}

func NewJWT(secret string) (*JWT, error) {
	if len(secret) < 16 {
		return nil, errors.New("jwt secret must be at least 16 bytes")
	}
	return &JWT{secret: []byte(secret)}, nil
}

func (j *JWT) Issue(c ports.Claims) (string, error) {
	now := time.Now()
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, claims{
		Role: string(c.Role),
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        c.SessionID,
			Subject:   strconv.FormatInt(c.UserID, 10),
			Issuer:    issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(c.ExpiresAt),
		},
	})
	return tok.SignedString(j.secret)
}

func (j *JWT) Parse(raw string) (ports.Claims, error) {
	var parsed claims
	_, err := jwt.ParseWithClaims(raw, &parsed, func(*jwt.Token) (any, error) {
		return j.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(issuer),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		return ports.Claims{}, err
	}
	userID, err := strconv.ParseInt(parsed.Subject, 10, 64)
	if err != nil || userID <= 0 {
		return ports.Claims{}, fmt.Errorf("token subject %q is not a user id", parsed.Subject)
	}
	if parsed.ID == "" {
		return ports.Claims{}, errors.New("token carries no session id")
	}
	role := principal.Role(parsed.Role)
	if !role.Valid() {
		return ports.Claims{}, fmt.Errorf("token role %q is unknown", parsed.Role)
	}
	return ports.Claims{
		SessionID: parsed.ID,
		UserID:    userID,
		Role:      role,
		ExpiresAt: parsed.ExpiresAt.Time,
	}, nil
}
