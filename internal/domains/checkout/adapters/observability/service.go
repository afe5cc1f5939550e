package observability

import (
	"context"
	"log/slog"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
	nooptrace "go.opentelemetry.io/otel/trace/noop"

	"github.com/Apurer/canteen-api/internal/domains/checkout/ports"
	"github.com/Apurer/canteen-api/internal/shared/principal"
)

const tracerName = "github.com/Apurer/canteen-api/internal/domains/checkout/adapters/observability/service"

// Service decorates the checkout coordinator with tracing, logging, and metrics.
type Service struct {
	next    ports.Service
	tracer  trace.Tracer
	logger  *slog.Logger
	metrics serviceMetrics
}

type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

func WithTracer(tr trace.Tracer) Option {
	return func(s *Service) {
		s.tracer = tr
	}
}

func WithMeter(m metric.Meter) Option {
	return func(s *Service) {
		s.metrics = newServiceMetrics(m)
	}
}

func New(next ports.Service, opts ...Option) *Service {
	s := &Service{
		next:   next,
		tracer: nooptrace.NewTracerProvider().Tracer(tracerName),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	if s.tracer == nil {
		s.tracer = nooptrace.NewTracerProvider().Tracer(tracerName)
	}
	return s
}

func (s *Service) Checkout(ctx context.Context, caller principal.Principal, input ports.Input) (*ports.Result, error) {
	ctx, span := s.tracer.Start(ctx, "CheckoutService.Checkout", trace.WithAttributes(
		attribute.Int64("cart.id", input.CartID),
		attribute.Int64("caller.id", caller.UserID),
		attribute.Bool("checkout.idempotent", input.IdempotencyKey != ""),
	))
	defer span.End()

	s.logInfo(ctx, "checking out cart", slog.Int64("cart.id", input.CartID), slog.Int64("caller.id", caller.UserID))
	result, err := s.next.Checkout(ctx, caller, input)
	if err != nil {
		s.metrics.recordFailure(ctx)
		return nil, s.handleError(ctx, span, err, "checkout failed", slog.Int64("cart.id", input.CartID))
	}
	span.SetAttributes(
		attribute.Int64("order.id", result.Order.ID),
		attribute.Bool("checkout.replayed", result.Replayed),
	)
	if result.Replayed {
		s.metrics.recordReplay(ctx)
		s.logInfo(ctx, "checkout replayed", slog.Int64("cart.id", input.CartID), slog.Int64("order.id", result.Order.ID))
		return result, nil
	}
	s.metrics.recordPlaced(ctx)
	s.logInfo(ctx, "order placed",
		slog.Int64("cart.id", input.CartID),
		slog.Int64("order.id", result.Order.ID),
		slog.String("total", result.Order.TotalAmount.String()),
	)
	return result, nil
}

func (s *Service) logInfo(ctx context.Context, msg string, attrs ...slog.Attr) {
	if s.logger == nil {
		return
	}
	s.logger.LogAttrs(ctx, slog.LevelInfo, msg, attrs...)
}

func (s *Service) handleError(ctx context.Context, span trace.Span, err error, msg string, attrs ...slog.Attr) error {
	if span != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	if s.logger != nil {
		attrs = append(attrs, slog.String("error", err.Error()))
		s.logger.LogAttrs(ctx, slog.LevelWarn, msg, attrs...)
	}
	return err
}

type serviceMetrics struct {
	placed   metric.Int64Counter
	replayed metric.Int64Counter
	failed   metric.Int64Counter
}

func newServiceMetrics(m metric.Meter) serviceMetrics {
	if m == nil {
		return serviceMetrics{}
	}
	placed, _ := m.Int64Counter("checkout.service.orders_placed", metric.WithDescription("Orders placed through checkout"))
	replayed, _ := m.Int64Counter("checkout.service.replays", metric.WithDescription("Checkouts answered from an idempotency record"))
	failed, _ := m.Int64Counter("checkout.service.failures", metric.WithDescription("Checkouts rolled back"))
	return serviceMetrics{placed: placed, replayed: replayed, failed: failed}
}

func (m serviceMetrics) recordPlaced(ctx context.Context) {
	if m.placed != nil {
		m.placed.Add(ctx, 1)
	}
}

func (m serviceMetrics) recordReplay(ctx context.Context) {
	if m.replayed != nil {
		m.replayed.Add(ctx, 1)
	}
}

func (m serviceMetrics) recordFailure(ctx context.Context) {
	if m.failed != nil {
		m.failed.Add(ctx, 1)
	}
}

var _ ports.Service = (*Service)(nil)
