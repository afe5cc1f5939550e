package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Apurer/canteen-api/internal/shared/principal"
)

func TestNewUser(t *testing.T) {
	u, err := NewUser(" Asha ", " Asha@Campus.EDU ", "98450")
	require.NoError(t, err)
	assert.Equal(t, "Asha", u.Name)
	assert.Equal(t, "asha@campus.edu", u.Email)
	assert.Equal(t, principal.RoleUser, u.Role)

	_, err = NewUser("", "a@b.c", "")
	require.ErrorIs(t, err, ErrEmptyName)
	_, err = NewUser("Asha", "not-an-email", "")
	require.ErrorIs(t, err, ErrInvalidEmail)
	_, err = NewUser("Asha", "Asha <a@b.c>", "")
	require.ErrorIs(t, err, ErrInvalidEmail)
}

func TestValidatePassword(t *testing.T) {
	require.ErrorIs(t, ValidatePassword("  "), ErrEmptyPassword)
	require.ErrorIs(t, ValidatePassword("abc"), ErrWeakPassword)
	require.NoError(t, ValidatePassword("secret1"))
}

func TestPromoteAndSessionExpiry(t *testing.T) {
	u := &User{ID: 4, Role: principal.RoleUser}
	u.Promote()
	assert.True(t, u.Principal().IsAdmin())

	now := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	s := Session{ExpiresAt: now}
	assert.True(t, s.Expired(now))
	assert.False(t, s.Expired(now.Add(-time.Second)))
}
