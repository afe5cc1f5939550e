package token

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Apurer/canteen-api/internal/domains/users/ports"
	"github.com/Apurer/canteen-api/internal/shared/principal"
)

const secret = "0123456789abcdef-test"

func TestJWT_RoundTrip(t *testing.T) {
	j, err := NewJWT(secret)
	require.NoError(t, err)
	exp := time.Now().Add(time.Hour).Truncate(time.Second)

	raw, err := j.Issue(ports.Claims{SessionID: "s-1", UserID: 42, Role: principal.RoleAdmin, ExpiresAt: exp})
	require.NoError(t, err)

	got, err := j.Parse(raw)
	require.NoError(t, err)
	assert.Equal(t, "s-1", got.SessionID)
	assert.Equal(t, int64(42), got.UserID)
	assert.Equal(t, principal.RoleAdmin, got.Role)
	assert.True(t, exp.Equal(got.ExpiresAt))
}

func TestJWT_Rejects(t *testing.T) {
	j, err := NewJWT(secret)
	require.NoError(t, err)
	other, err := NewJWT("another-secret-of-16")
	require.NoError(t, err)

	expired, err := j.Issue(ports.Claims{SessionID: "s", UserID: 1, Role: principal.RoleUser, ExpiresAt: time.Now().Add(-time.Minute)})
	require.NoError(t, err)
	_, err = j.Parse(expired)
	require.ErrorIs(t, err, jwt.ErrTokenExpired)

	forged, err := other.Issue(ports.Claims{SessionID: "s", UserID: 1, Role: principal.RoleAdmin, ExpiresAt: time.Now().Add(time.Hour)})
	require.NoError(t, err)
	_, err = j.Parse(forged)
	require.ErrorIs(t, err, jwt.ErrTokenSignatureInvalid)

	none := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.MapClaims{"sub": "1", "jti": "s", "iss": issuer, "exp": time.Now().Add(time.Hour).Unix()})
	unsigned, err := none.SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)
	_, err = j.Parse(unsigned)
	require.Error(t, err)

	_, err = NewJWT("short")
	require.Error(t, err)
}
