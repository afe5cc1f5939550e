package application

import (
	"context"
	"crypto/subtle"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/Apurer/canteen-api/internal/domains/users/domain"
	"github.com/Apurer/canteen-api/internal/domains/users/ports"
	"github.com/Apurer/canteen-api/internal/shared/principal"
)

// DefaultTokenTTL applies when no token lifetime is configured.
const DefaultTokenTTL = 24 * time.Hour

// Service exposes account and authentication use cases.
type Service struct {
	repo        ports.Repository
	sessions    ports.SessionStore
	tokens      ports.TokenIssuer
	hasher      ports.PasswordHasher
	adminSecret string
	tokenTTL    time.Duration
	now         func() time.Time
	newID       func() string
}

type Option func(*Service)

// WithAdminSecret enables admin signup guarded by secret. Empty disables it.
func WithAdminSecret(secret string) Option {
	return func(s *Service) {
		s.adminSecret = strings.TrimSpace(secret)
	}
}

func WithTokenTTL(ttl time.Duration) Option {
	return func(s *Service) {
		if ttl > 0 {
			s.tokenTTL = ttl
		}
	}
}

// WithClock overrides the time source for deterministic testing.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

func NewService(repo ports.Repository, sessions ports.SessionStore, tokens ports.TokenIssuer, hasher ports.PasswordHasher, opts ...Option) *Service {
	s := &Service{
		repo:     repo,
		sessions: sessions,
		tokens:   tokens,
		hasher:   hasher,
		tokenTTL: DefaultTokenTTL,
		now:      time.Now,
		newID:    uuid.NewString,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	return s
}

func (s *Service) SignUp(ctx context.Context, input ports.SignUpInput) (*ports.AuthResult, error) {
	user, err := s.newAccount(input.Name, input.Email, input.Password, input.Phone)
	if err != nil {
		return nil, mapError(err)
	}
	created, err := s.repo.Create(ctx, user)
	if err != nil {
		return nil, err
	}
	return s.issue(ctx, created)
}

func (s *Service) SignIn(ctx context.Context, email, password string) (*ports.AuthResult, error) {
	user, err := s.verify(ctx, email, password)
	if err != nil {
		return nil, err
	}
	return s.issue(ctx, user)
}

// AdminSignUp creates an admin account, or promotes the existing account with
// that email once its password checks out.
func (s *Service) AdminSignUp(ctx context.Context, input ports.AdminSignUpInput) (*ports.AuthResult, error) {
	if s.adminSecret == "" || subtle.ConstantTimeCompare([]byte(input.SecretKey), []byte(s.adminSecret)) != 1 {
		return nil, errInvalidSecret
	}
	email, err := domain.NormalizeEmail(input.Email)
	if err != nil {
		return nil, mapError(err)
	}
	existing, err := s.repo.GetByEmail(ctx, email)
	switch {
	case err == nil:
		if !s.hasher.Compare(existing.PasswordHash, input.Password) {
			return nil, errInvalidCredentials
		}
		if existing.Role != principal.RoleAdmin {
			if existing, err = s.repo.UpdateRole(ctx, existing.ID, principal.RoleAdmin); err != nil {
				return nil, err
			}
		}
		return s.issue(ctx, existing)
	case !errors.Is(err, ports.ErrNotFound):
		return nil, err
	}

	name := input.Name
	if strings.TrimSpace(name) == "" {
		name = email[:strings.Index(email, "@")]
	}
	user, err := s.newAccount(name, email, input.Password, input.Phone)
	if err != nil {
		return nil, mapError(err)
	}
	user.Promote()
	created, err := s.repo.Create(ctx, user)
	if err != nil {
		return nil, err
	}
	return s.issue(ctx, created)
}

// SignOut revokes the session behind token. Signing out twice is not an error.
func (s *Service) SignOut(ctx context.Context, token string) error {
	claims, err := s.tokens.Parse(token)
	if err != nil {
		return errInvalidToken
	}
	if err := s.sessions.Delete(ctx, claims.SessionID); err != nil && !errors.Is(err, ports.ErrSessionNotFound) {
		return err
	}
	return nil
}

// Authenticate accepts a token only while its session exists and its user
// still does. The role comes from the stored account, so promotions apply at once.
func (s *Service) Authenticate(ctx context.Context, token string) (principal.Principal, error) {
	claims, err := s.tokens.Parse(strings.TrimSpace(token))
	if err != nil {
		return principal.Principal{}, errInvalidToken
	}
	session, err := s.sessions.Get(ctx, claims.SessionID)
	if err != nil {
		if errors.Is(err, ports.ErrSessionNotFound) {
			return principal.Principal{}, errInvalidToken
		}
		return principal.Principal{}, err
	}
	if session.UserID != claims.UserID || session.Expired(s.now()) {
		return principal.Principal{}, errInvalidToken
	}
	user, err := s.repo.GetByID(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, ports.ErrNotFound) {
			return principal.Principal{}, errInvalidToken
		}
		return principal.Principal{}, err
	}
	return user.Principal(), nil
}

func (s *Service) ListUsers(ctx context.Context, caller principal.Principal) ([]*domain.User, error) {
	if !caller.IsAdmin() {
		return nil, errAdminOnly
	}
	return s.repo.List(ctx)
}

func (s *Service) PurgeExpiredSessions(ctx context.Context) (int64, error) {
	return s.sessions.PurgeExpired(ctx, s.now())
}

func (s *Service) newAccount(name, email, password, phone string) (*domain.User, error) {
	user, err := domain.NewUser(name, email, phone)
	if err != nil {
		return nil, err
	}
	if err := domain.ValidatePassword(password); err != nil {
		return nil, err
	}
	hash, err := s.hasher.Hash(password)
	if err != nil {
		return nil, err
	}
	user.PasswordHash = hash
	return user, nil
}

func (s *Service) verify(ctx context.Context, email, password string) (*domain.User, error) {
	normalized, err := domain.NormalizeEmail(email)
	if err != nil || password == "" {
		return nil, errInvalidCredentials
	}
	user, err := s.repo.GetByEmail(ctx, normalized)
	if err != nil {
		if errors.Is(err, ports.ErrNotFound) {
			return nil, errInvalidCredentials
		}
		return nil, err
	}
	if !s.hasher.Compare(user.PasswordHash, password) {
		return nil, errInvalidCredentials
	}
	return user, nil
}

func (s *Service) issue(ctx context.Context, user *domain.User) (*ports.AuthResult, error) {
	now := s.now()
	session := domain.Session{
		ID:        s.newID(),
		UserID:    user.ID,
		ExpiresAt: now.Add(s.tokenTTL),
		CreatedAt: now,
	}
	token, err := s.tokens.Issue(ports.Claims{
		SessionID: session.ID,
		UserID:    user.ID,
		Role:      user.Role,
		ExpiresAt: session.ExpiresAt,
	})
	if err != nil {
		return nil, err
	}
	if err := s.sessions.Save(ctx, session); err != nil {
		return nil, err
	}
	return &ports.AuthResult{Token: token, User: user}, nil
}

var _ ports.Service = (*Service)(nil)
