package observability

import (
	"context"
	"log/slog"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
	nooptrace "go.opentelemetry.io/otel/trace/noop"

	catalogdomain "github.com/Apurer/canteen-api/internal/domains/catalog/domain"
	catalogports "github.com/Apurer/canteen-api/internal/domains/catalog/ports"
	"github.com/Apurer/canteen-api/internal/shared/principal"
)

const tracerName = "github.com/Apurer/canteen-api/internal/domains/catalog/adapters/observability/service"

// Service decorates the catalog service with tracing, logging, and metrics.
type Service struct {
	inner   catalogports.Service
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

// New wraps the core catalog service.
func New(inner catalogports.Service, opts ...Option) catalogports.Service {
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

func (s *Service) GetProduct(ctx context.Context, id int64) (*catalogdomain.Product, error) {
	ctx, span := s.tracer.Start(ctx, "CatalogService.GetProduct", trace.WithAttributes(attribute.Int64("product.id", id)))
	defer span.End()

	result, err := s.inner.GetProduct(ctx, id)
	if err != nil {
		return nil, s.handleError(ctx, span, err, "failed to load product", slog.Int64("product.id", id))
	}
	return result, nil
}

func (s *Service) ListProducts(ctx context.Context, filter catalogports.ListFilter) ([]*catalogdomain.Product, error) {
	ctx, span := s.tracer.Start(ctx, "CatalogService.ListProducts", trace.WithAttributes(
		attribute.String("filter.tag", filter.Tag),
		attribute.Bool("filter.in_stock", filter.InStockOnly),
		attribute.Int("filter.limit", filter.Limit),
	))
	defer span.End()

	result, err := s.inner.ListProducts(ctx, filter)
	if err != nil {
		return nil, s.handleError(ctx, span, err, "failed to list products")
	}
	span.SetAttributes(attribute.Int("products.count", len(result)))
	return result, nil
}

func (s *Service) UpsertProduct(ctx context.Context, caller principal.Principal, product *catalogdomain.Product) (*catalogdomain.Product, error) {
	var id int64
	if product != nil {
		id = product.ID
	}
	ctx, span := s.tracer.Start(ctx, "CatalogService.UpsertProduct", trace.WithAttributes(
		attribute.Int64("product.id", id),
		attribute.Int64("caller.id", caller.UserID),
	))
	defer span.End()

	s.logInfo(ctx, "upserting product", slog.Int64("product.id", id), slog.Int64("caller.id", caller.UserID))
	result, err := s.inner.UpsertProduct(ctx, caller, product)
	if err != nil {
		return nil, s.handleError(ctx, span, err, "failed to upsert product", slog.Int64("product.id", id))
	}
	s.metrics.recordUpsert(ctx, id == 0)
	s.logInfo(ctx, "product saved", slog.Int64("product.id", result.ID), slog.Int("stock", result.StockQuantity))
	return result, nil
}

func (s *Service) DeleteProduct(ctx context.Context, caller principal.Principal, id int64) error {
	ctx, span := s.tracer.Start(ctx, "CatalogService.DeleteProduct", trace.WithAttributes(attribute.Int64("product.id", id)))
	defer span.End()

	s.logInfo(ctx, "deleting product", slog.Int64("product.id", id), slog.Int64("caller.id", caller.UserID))
	if err := s.inner.DeleteProduct(ctx, caller, id); err != nil {
		return s.handleError(ctx, span, err, "failed to delete product", slog.Int64("product.id", id))
	}
	s.logInfo(ctx, "product deleted", slog.Int64("product.id", id))
	return nil
}

func (s *Service) AdjustStock(ctx context.Context, id int64, delta int) (*catalogdomain.Product, error) {
	ctx, span := s.tracer.Start(ctx, "CatalogService.AdjustStock", trace.WithAttributes(
		attribute.Int64("product.id", id),
		attribute.Int("stock.delta", delta),
	))
	defer span.End()

	result, err := s.inner.AdjustStock(ctx, id, delta)
	if err != nil {
		s.metrics.recordRejected(ctx)
		return nil, s.handleError(ctx, span, err, "failed to adjust stock", slog.Int64("product.id", id), slog.Int("stock.delta", delta))
	}
	span.SetAttributes(attribute.Int("stock.remaining", result.StockQuantity))
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
	productsUpserted metric.Int64Counter
	stockRejected    metric.Int64Counter
}

func newServiceMetrics(m metric.Meter) serviceMetrics {
	if m == nil {
		return serviceMetrics{}
	}
	upserted, _ := m.Int64Counter("catalog.service.products_upserted", metric.WithDescription("Number of products created or replaced"))
	rejected, _ := m.Int64Counter("catalog.service.stock_adjustments_rejected", metric.WithDescription("Stock adjustments refused"))
	return serviceMetrics{productsUpserted: upserted, stockRejected: rejected}
}

func (m serviceMetrics) recordUpsert(ctx context.Context, created bool) {
	if m.productsUpserted != nil {
		m.productsUpserted.Add(ctx, 1, metric.WithAttributes(attribute.Bool("product.created", created)))
	}
}

func (m serviceMetrics) recordRejected(ctx context.Context) {
	if m.stockRejected != nil {
		m.stockRejected.Add(ctx, 1)
	}
}

var _ catalogports.Service = (*Service)(nil)
