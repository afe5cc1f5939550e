package application

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/Apurer/canteen-api/internal/domains/users/adapters/memory"
	"github.com/Apurer/canteen-api/internal/domains/users/adapters/password"
	"github.com/Apurer/canteen-api/internal/domains/users/adapters/token"
	"github.com/Apurer/canteen-api/internal/domains/users/ports"
	"github.com/Apurer/canteen-api/internal/shared/failure"
	"github.com/Apurer/canteen-api/internal/shared/principal"
)

const adminSecret = "let-me-run-the-canteen"

type fixture struct {
	svc   *Service
	users *memory.Repository
	now   time.Time
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	jwt, err := token.NewJWT("unit-test-signing-secret")
	require.NoError(t, err)
	f := &fixture{users: memory.NewRepository(), now: time.Now()}
	f.svc = NewService(
		f.users,
		memory.NewSessionStore(),
		jwt,
		password.Bcrypt{Cost: bcrypt.MinCost},
		WithAdminSecret(adminSecret),
		WithTokenTTL(time.Hour),
		WithClock(func() time.Time { return f.now }),
	)
	return f
}

func signUp(t *testing.T, f *fixture, email string) *ports.AuthResult {
	t.Helper()
	res, err := f.svc.SignUp(context.Background(), ports.SignUpInput{Name: "Student", Email: email, Password: "hunter22"})
	require.NoError(t, err)
	return res
}

func TestSignUpAndAuthenticate(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	res := signUp(t, f, "Ravi@Campus.edu")
	assert.NotEmpty(t, res.Token)
	assert.Equal(t, principal.RoleUser, res.User.Role)
	assert.Equal(t, "ravi@campus.edu", res.User.Email)
	assert.NotEqual(t, "hunter22", res.User.PasswordHash)

	caller, err := f.svc.Authenticate(ctx, res.Token)
	require.NoError(t, err)
	assert.Equal(t, principal.Principal{UserID: res.User.ID, Role: principal.RoleUser}, caller)

	_, err = f.svc.SignUp(ctx, ports.SignUpInput{Name: "Again", Email: "ravi@campus.edu", Password: "hunter22"})
	require.ErrorIs(t, err, failure.ErrConflict)

	_, err = f.svc.SignUp(ctx, ports.SignUpInput{Name: "Short", Email: "s@campus.edu", Password: "abc"})
	require.ErrorIs(t, err, failure.ErrValidation)
}

func TestSignIn(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	signUp(t, f, "meera@campus.edu")

	res, err := f.svc.SignIn(ctx, "MEERA@campus.edu", "hunter22")
	require.NoError(t, err)
	assert.Equal(t, principal.RoleUser, res.User.Role)

	_, err = f.svc.SignIn(ctx, "meera@campus.edu", "wrong-pass")
	require.ErrorIs(t, err, failure.ErrUnauthorized)
	_, err = f.svc.SignIn(ctx, "nobody@campus.edu", "hunter22")
	require.ErrorIs(t, err, failure.ErrUnauthorized)
}

func TestSignOutRevokesToken(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	res := signUp(t, f, "arjun@campus.edu")

	require.NoError(t, f.svc.SignOut(ctx, res.Token))
	_, err := f.svc.Authenticate(ctx, res.Token)
	require.ErrorIs(t, err, failure.ErrUnauthorized)
	require.NoError(t, f.svc.SignOut(ctx, res.Token))

	_, err = f.svc.Authenticate(ctx, "garbage")
	require.ErrorIs(t, err, failure.ErrUnauthorized)
}

func TestSessionsExpireAndArePurged(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	signUp(t, f, "kiran@campus.edu")
	signUp(t, f, "divya@campus.edu")

	f.now = f.now.Add(2 * time.Hour)
	purged, err := f.svc.PurgeExpiredSessions(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), purged)
}

func TestAdminSignUp(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	existing := signUp(t, f, "warden@campus.edu")

	_, err := f.svc.AdminSignUp(ctx, ports.AdminSignUpInput{Email: "warden@campus.edu", Password: "hunter22", SecretKey: "admin123"})
	require.ErrorIs(t, err, failure.ErrForbidden)

	_, err = f.svc.AdminSignUp(ctx, ports.AdminSignUpInput{Email: "warden@campus.edu", Password: "nope-nope", SecretKey: adminSecret})
	require.ErrorIs(t, err, failure.ErrUnauthorized)

	promoted, err := f.svc.AdminSignUp(ctx, ports.AdminSignUpInput{Email: "warden@campus.edu", Password: "hunter22", SecretKey: adminSecret})
	require.NoError(t, err)
	assert.Equal(t, existing.User.ID, promoted.User.ID)
	assert.Equal(t, principal.RoleAdmin, promoted.User.Role)

	caller, err := f.svc.Authenticate(ctx, existing.Token)
	require.NoError(t, err)
	assert.True(t, caller.IsAdmin())

	fresh, err := f.svc.AdminSignUp(ctx, ports.AdminSignUpInput{Email: "chef@campus.edu", Password: "kitchen1", SecretKey: adminSecret})
	require.NoError(t, err)
	assert.Equal(t, "chef", fresh.User.Name)
	assert.Equal(t, principal.RoleAdmin, fresh.User.Role)
}

func TestAdminSignUpDisabledWithoutSecret(t *testing.T) {
	f := newFixture(t)
	f.svc.adminSecret = ""
	_, err := f.svc.AdminSignUp(context.Background(), ports.AdminSignUpInput{Email: "x@campus.edu", Password: "kitchen1"})
	require.ErrorIs(t, err, failure.ErrForbidden)
}

func TestListUsersIsAdminOnly(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	a := signUp(t, f, "one@campus.edu")
	signUp(t, f, "two@campus.edu")

	_, err := f.svc.ListUsers(ctx, a.User.Principal())
	require.ErrorIs(t, err, failure.ErrForbidden)

	users, err := f.svc.ListUsers(ctx, principal.Principal{UserID: 50, Role: principal.RoleAdmin})
	require.NoError(t, err)
	require.Len(t, users, 2)
	assert.Equal(t, "one@campus.edu", users[0].Email)
}
