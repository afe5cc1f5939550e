package observability

import (
	"context"
	"io"
	"log/slog"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
	nooptrace "go.opentelemetry.io/otel/trace/noop"

	userdomain "github.com/Apurer/canteen-api/internal/domains/users/domain"
	userports "github.com/Apurer/canteen-api/internal/domains/users/ports"
	"github.com/Apurer/canteen-api/internal/shared/principal"
)

const tracerName = "github.com/Apurer/canteen-api/internal/domains/users/adapters/observability/service"

// Service decorates the user service with tracing, logging, and metrics.
type Service struct {
	inner   userports.Service
	tracer  trace.Tracer
	logger  *slog.Logger
	metrics serviceMetrics
}

type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) { s.logger = logger }
}

func WithTracer(tr trace.Tracer) Option {
	return func(s *Service) { s.tracer = tr }
}

func WithMeter(m metric.Meter) Option {
	return func(s *Service) { s.metrics = newServiceMetrics(m) }
}

// New wraps the core user service.
func New(inner userports.Service, opts ...Option) userports.Service {
	s := &Service{
		inner:   inner,
		tracer:  nooptrace.NewTracerProvider().Tracer(tracerName),
		logger:  defaultLogger(),
		metrics: newServiceMetrics(nil),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	if s.tracer == nil {
		s.tracer = nooptrace.NewTracerProvider().Tracer(tracerName)
	}
	if s.logger == nil {
		s.logger = defaultLogger()
	}
	return s
}

func (s *Service) SignUp(ctx context.Context, input userports.SignUpInput) (*userports.AuthResult, error) {
	ctx, span := s.tracer.Start(ctx, "UserService.SignUp")
	defer span.End()
	result, err := s.inner.SignUp(ctx, input)
	if err != nil {
		return nil, s.handleError(ctx, span, err, "signup failed")
	}
	span.SetAttributes(attribute.Int64("user.id", result.User.ID))
	s.metrics.recordSignup(ctx, result.User.Role)
	s.logInfo(ctx, "user signed up", slog.Int64("user.id", result.User.ID))
	return result, nil
}

func (s *Service) SignIn(ctx context.Context, email, password string) (*userports.AuthResult, error) {
	ctx, span := s.tracer.Start(ctx, "UserService.SignIn")
	defer span.End()
	result, err := s.inner.SignIn(ctx, email, password)
	if err != nil {
		s.metrics.recordLogin(ctx, false)
		return nil, s.handleError(ctx, span, err, "signin failed")
	}
	span.SetAttributes(attribute.Int64("user.id", result.User.ID))
	s.metrics.recordLogin(ctx, true)
	return result, nil
}

func (s *Service) AdminSignUp(ctx context.Context, input userports.AdminSignUpInput) (*userports.AuthResult, error) {
	ctx, span := s.tracer.Start(ctx, "UserService.AdminSignUp")
	defer span.End()
	result, err := s.inner.AdminSignUp(ctx, input)
	if err != nil {
		return nil, s.handleError(ctx, span, err, "admin signup failed")
	}
	span.SetAttributes(attribute.Int64("user.id", result.User.ID))
	s.metrics.recordSignup(ctx, result.User.Role)
	s.logInfo(ctx, "admin account granted", slog.Int64("user.id", result.User.ID))
	return result, nil
}

func (s *Service) SignOut(ctx context.Context, token string) error {
	ctx, span := s.tracer.Start(ctx, "UserService.SignOut")
	defer span.End()
	if err := s.inner.SignOut(ctx, token); err != nil {
		return s.handleError(ctx, span, err, "signout failed")
	}
	return nil
}

// Authenticate runs on every protected request, so it only traces.
func (s *Service) Authenticate(ctx context.Context, token string) (principal.Principal, error) {
	ctx, span := s.tracer.Start(ctx, "UserService.Authenticate")
	defer span.End()
	caller, err := s.inner.Authenticate(ctx, token)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return principal.Principal{}, err
	}
	span.SetAttributes(attribute.Int64("caller.id", caller.UserID), attribute.String("caller.role", string(caller.Role)))
	return caller, nil
}

func (s *Service) ListUsers(ctx context.Context, caller principal.Principal) ([]*userdomain.User, error) {
	ctx, span := s.tracer.Start(ctx, "UserService.ListUsers", trace.WithAttributes(attribute.Int64("caller.id", caller.UserID)))
	defer span.End()
	users, err := s.inner.ListUsers(ctx, caller)
	if err != nil {
		return nil, s.handleError(ctx, span, err, "failed to list users", slog.Int64("caller.id", caller.UserID))
	}
	return users, nil
}

func (s *Service) PurgeExpiredSessions(ctx context.Context) (int64, error) {
	ctx, span := s.tracer.Start(ctx, "UserService.PurgeExpiredSessions")
	defer span.End()
	purged, err := s.inner.PurgeExpiredSessions(ctx)
	if err != nil {
		return 0, s.handleError(ctx, span, err, "failed to purge sessions")
	}
	s.logInfo(ctx, "expired sessions purged", slog.Int64("sessions.purged", purged))
	return purged, nil
}

func (s *Service) handleError(ctx context.Context, span trace.Span, err error, msg string, attrs ...slog.Attr) error {
	if span != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	s.logError(ctx, msg, err, attrs...)
	return err
}

func (s *Service) logInfo(ctx context.Context, msg string, attrs ...slog.Attr) {
	if s.logger == nil {
		return
	}
	s.logger.LogAttrs(ctx, slog.LevelInfo, msg, attrs...)
}

func (s *Service) logError(ctx context.Context, msg string, err error, attrs ...slog.Attr) {
	if s.logger == nil {
		return
	}
	if err != nil {
		attrs = append(attrs, slog.String("error", err.Error()))
	}
	s.logger.LogAttrs(ctx, slog.LevelWarn, msg, attrs...)
}

type serviceMetrics struct {
	signups metric.Int64Counter
	logins  metric.Int64Counter
}

func newServiceMetrics(m metric.Meter) serviceMetrics {
	if m == nil {
		return serviceMetrics{}
	}
	signups, _ := m.Int64Counter("users.service.signups", metric.WithDescription("Accounts created or promoted, by role"))
	logins, _ := m.Int64Counter("users.service.logins", metric.WithDescription("Sign-in attempts by outcome"))
	return serviceMetrics{signups: signups, logins: logins}
}

func (m serviceMetrics) recordSignup(ctx context.Context, role principal.Role) {
	if m.signups != nil {
		m.signups.Add(ctx, 1, metric.WithAttributes(attribute.String("user.role", string(role))))
	}
}

func (m serviceMetrics) recordLogin(ctx context.Context, ok bool) {
	if m.logins != nil {
		m.logins.Add(ctx, 1, metric.WithAttributes(attribute.Bool("login.succeeded", ok)))
	}
}

func defaultLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

var _ userports.Service = (*Service)(nil)
