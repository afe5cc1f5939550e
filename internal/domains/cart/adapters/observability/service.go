package observability

import (
	"context"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
	nooptrace "go.opentelemetry.io/otel/trace/noop"

	cartdomain "github.com/Apurer/canteen-api/internal/domains/cart/domain"
	cartports "github.com/Apurer/canteen-api/internal/domains/cart/ports"
	"github.com/Apurer/canteen-api/internal/shared/principal"
)

const tracerName = "github.com/Apurer/canteen-api/internal/domains/cart/adapters/observability/service"

// Service decorates the cart service with tracing, logging, and metrics.
type Service struct {
	inner   cartports.Service
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

// New wraps the core cart service.
func New(inner cartports.Service, opts ...Option) cartports.Service {
	s := &Service{
		inner:  inner,
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

func (s *Service) GetCart(ctx context.Context, caller principal.Principal) (*cartdomain.Cart, error) {
	ctx, span := s.tracer.Start(ctx, "CartService.GetCart", trace.WithAttributes(attribute.Int64("user.id", caller.UserID)))
	defer span.End()

	cart, err := s.inner.GetCart(ctx, caller)
	if err != nil {
		return nil, s.handleError(ctx, span, err, "failed to load cart", slog.Int64("user.id", caller.UserID))
	}
	span.SetAttributes(attribute.Int64("cart.id", cart.ID), attribute.Int("cart.items", len(cart.Items)))
	return cart, nil
}

func (s *Service) AddItem(ctx context.Context, caller principal.Principal, productID int64, quantity int) (*cartdomain.Cart, error) {
	ctx, span := s.tracer.Start(ctx, "CartService.AddItem", trace.WithAttributes(
		attribute.Int64("user.id", caller.UserID),
		attribute.Int64("product.id", productID),
		attribute.Int("quantity", quantity),
	))
	defer span.End()

	s.logInfo(ctx, "adding cart item", slog.Int64("user.id", caller.UserID), slog.Int64("product.id", productID), slog.Int("quantity", quantity))
	cart, err := s.inner.AddItem(ctx, caller, productID, quantity)
	if err != nil {
		return nil, s.handleError(ctx, span, err, "failed to add cart item", slog.Int64("product.id", productID))
	}
	s.metrics.recordReserved(ctx, quantity)
	return cart, nil
}

func (s *Service) UpdateItemQuantity(ctx context.Context, caller principal.Principal, cartItemID int64, quantity int) (*cartdomain.Cart, error) {
	ctx, span := s.tracer.Start(ctx, "CartService.UpdateItemQuantity", trace.WithAttributes(
		attribute.Int64("user.id", caller.UserID),
		attribute.Int64("cart_item.id", cartItemID),
		attribute.Int("quantity", quantity),
	))
	defer span.End()

	s.logInfo(ctx, "updating cart item", slog.Int64("cart_item.id", cartItemID), slog.Int("quantity", quantity))
	cart, err := s.inner.UpdateItemQuantity(ctx, caller, cartItemID, quantity)
	if err != nil {
		return nil, s.handleError(ctx, span, err, "failed to update cart item", slog.Int64("cart_item.id", cartItemID))
	}
	return cart, nil
}

func (s *Service) RemoveItem(ctx context.Context, caller principal.Principal, productID int64) (*cartdomain.Cart, error) {
	ctx, span := s.tracer.Start(ctx, "CartService.RemoveItem", trace.WithAttributes(
		attribute.Int64("user.id", caller.UserID),
		attribute.Int64("product.id", productID),
	))
	defer span.End()

	s.logInfo(ctx, "removing cart item", slog.Int64("user.id", caller.UserID), slog.Int64("product.id", productID))
	cart, err := s.inner.RemoveItem(ctx, caller, productID)
	if err != nil {
		return nil, s.handleError(ctx, span, err, "failed to remove cart item", slog.Int64("product.id", productID))
	}
	return cart, nil
}

func (s *Service) ClearCart(ctx context.Context, caller principal.Principal) (*cartdomain.Cart, error) {
	ctx, span := s.tracer.Start(ctx, "CartService.ClearCart", trace.WithAttributes(attribute.Int64("user.id", caller.UserID)))
	defer span.End()

	s.logInfo(ctx, "clearing cart", slog.Int64("user.id", caller.UserID))
	cart, err := s.inner.ClearCart(ctx, caller)
	if err != nil {
		return nil, s.handleError(ctx, span, err, "failed to clear cart", slog.Int64("user.id", caller.UserID))
	}
	return cart, nil
}

func (s *Service) ReleaseAbandoned(ctx context.Context, idleFor time.Duration) (int, error) {
	ctx, span := s.tracer.Start(ctx, "CartService.ReleaseAbandoned", trace.WithAttributes(attribute.String("idle_for", idleFor.String())))
	defer span.End()

	released, err := s.inner.ReleaseAbandoned(ctx, idleFor)
	if err != nil {
		return released, s.handleError(ctx, span, err, "failed to release abandoned carts", slog.Int("released", released))
	}
	s.metrics.recordAbandoned(ctx, released)
	s.logInfo(ctx, "abandoned carts released", slog.Int("released", released), slog.Duration("idle_for", idleFor))
	return released, nil
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
	itemsReserved  metric.Int64Counter
	cartsAbandoned metric.Int64Counter
}

func newServiceMetrics(m metric.Meter) serviceMetrics {
	if m == nil {
		return serviceMetrics{}
	}
	reserved, _ := m.Int64Counter("cart.service.items_reserved", metric.WithDescription("Units reserved by add-to-cart"))
	abandoned, _ := m.Int64Counter("cart.service.carts_abandoned", metric.WithDescription("Idle carts emptied by housekeeping"))
	return serviceMetrics{itemsReserved: reserved, cartsAbandoned: abandoned}
}

func (m serviceMetrics) recordReserved(ctx context.Context, quantity int) {
	if m.itemsReserved != nil {
		m.itemsReserved.Add(ctx, int64(quantity))
	}
}

func (m serviceMetrics) recordAbandoned(ctx context.Context, count int) {
	if m.cartsAbandoned != nil && count > 0 {
		m.cartsAbandoned.Add(ctx, int64(count))
	}
}

var _ cartports.Service = (*Service)(nil)
