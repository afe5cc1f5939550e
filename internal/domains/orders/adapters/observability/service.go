package observability

import (
	"context"
	"log/slog"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
	nooptrace "go.opentelemetry.io/otel/trace/noop"

	ordersdomain "github.com/Apurer/canteen-api/internal/domains/orders/domain"
	ordersports "github.com/Apurer/canteen-api/internal/domains/orders/ports"
	"github.com/Apurer/canteen-api/internal/shared/principal"
)

const tracerName = "github.com/Apurer/canteen-api/internal/domains/orders/adapters/observability/service"

// Service decorates the order and payment services with tracing, logging, and metrics.
type Service struct {
	orders   ordersports.Service
	payments ordersports.PaymentService
	tracer   trace.Tracer
	logger   *slog.Logger
	metrics  serviceMetrics
}

var (
	_ ordersports.Service        = (*Service)(nil)
	_ ordersports.PaymentService = (*Service)(nil)
)

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

// New wraps the core order and payment services.
func New(orders ordersports.Service, payments ordersports.PaymentService, opts ...Option) *Service {
	s := &Service{
		orders:   orders,
		payments: payments,
		tracer:   nooptrace.NewTracerProvider().Tracer(tracerName),
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

func (s *Service) ListOrders(ctx context.Context, caller principal.Principal) ([]*ordersdomain.Order, error) {
	ctx, span := s.tracer.Start(ctx, "OrderService.ListOrders", trace.WithAttributes(
		attribute.Int64("caller.id", caller.UserID),
		attribute.String("caller.role", string(caller.Role)),
	))
	defer span.End()

	result, err := s.orders.ListOrders(ctx, caller)
	if err != nil {
		return nil, s.handleError(ctx, span, err, "failed to list orders", slog.Int64("caller.id", caller.UserID))
	}
	span.SetAttributes(attribute.Int("orders.count", len(result)))
	return result, nil
}

func (s *Service) GetOrder(ctx context.Context, caller principal.Principal, id int64) (*ordersdomain.Order, error) {
	ctx, span := s.tracer.Start(ctx, "OrderService.GetOrder", trace.WithAttributes(attribute.Int64("order.id", id)))
	defer span.End()

	result, err := s.orders.GetOrder(ctx, caller, id)
	if err != nil {
		return nil, s.handleError(ctx, span, err, "failed to load order", slog.Int64("order.id", id))
	}
	return result, nil
}

func (s *Service) CreateOrder(ctx context.Context, caller principal.Principal, input ordersports.CreateOrderInput) (*ordersdomain.Order, error) {
	ctx, span := s.tracer.Start(ctx, "OrderService.CreateOrder", trace.WithAttributes(
		attribute.Int64("order.user_id", input.UserID),
		attribute.Int("order.lines", len(input.Items)),
	))
	defer span.End()

	s.logInfo(ctx, "creating manual order", slog.Int64("order.user_id", input.UserID), slog.Int64("caller.id", caller.UserID))
	result, err := s.orders.CreateOrder(ctx, caller, input)
	if err != nil {
		return nil, s.handleError(ctx, span, err, "failed to create order", slog.Int64("order.user_id", input.UserID))
	}
	s.metrics.recordStatus(ctx, result.Status)
	s.logInfo(ctx, "order created", slog.Int64("order.id", result.ID), slog.String("total", result.TotalAmount.String()))
	return result, nil
}

func (s *Service) UpdateOrder(ctx context.Context, caller principal.Principal, id int64, patch ordersports.OrderPatch) (*ordersdomain.Order, error) {
	ctx, span := s.tracer.Start(ctx, "OrderService.UpdateOrder", trace.WithAttributes(attribute.Int64("order.id", id)))
	defer span.End()

	s.logInfo(ctx, "updating order", slog.Int64("order.id", id), slog.Int64("caller.id", caller.UserID))
	result, err := s.orders.UpdateOrder(ctx, caller, id, patch)
	if err != nil {
		return nil, s.handleError(ctx, span, err, "failed to update order", slog.Int64("order.id", id))
	}
	if patch.Status != nil {
		s.metrics.recordStatus(ctx, result.Status)
	}
	s.logInfo(ctx, "order updated", slog.Int64("order.id", id), slog.String("status", string(result.Status)))
	return result, nil
}

func (s *Service) DeleteOrder(ctx context.Context, caller principal.Principal, id int64) error {
	ctx, span := s.tracer.Start(ctx, "OrderService.DeleteOrder", trace.WithAttributes(attribute.Int64("order.id", id)))
	defer span.End()

	s.logInfo(ctx, "deleting order", slog.Int64("order.id", id), slog.Int64("caller.id", caller.UserID))
	if err := s.orders.DeleteOrder(ctx, caller, id); err != nil {
		return s.handleError(ctx, span, err, "failed to delete order", slog.Int64("order.id", id))
	}
	s.logInfo(ctx, "order deleted", slog.Int64("order.id", id))
	return nil
}

func (s *Service) CreatePendingPayment(ctx context.Context, caller principal.Principal, input ordersports.PaymentInput) (*ordersdomain.Payment, error) {
	ctx, span := s.tracer.Start(ctx, "PaymentService.CreatePendingPayment", trace.WithAttributes(attribute.Int64("order.id", input.OrderID)))
	defer span.End()

	result, err := s.payments.CreatePendingPayment(ctx, caller, input)
	if err != nil {
		return nil, s.handleError(ctx, span, err, "failed to create payment", slog.Int64("order.id", input.OrderID))
	}
	span.SetAttributes(attribute.Int64("payment.id", result.ID))
	return result, nil
}

func (s *Service) GetPaymentByOrder(ctx context.Context, caller principal.Principal, orderID int64) (*ordersdomain.Payment, error) {
	ctx, span := s.tracer.Start(ctx, "PaymentService.GetPaymentByOrder", trace.WithAttributes(attribute.Int64("order.id", orderID)))
	defer span.End()

	result, err := s.payments.GetPaymentByOrder(ctx, caller, orderID)
	if err != nil {
		return nil, s.handleError(ctx, span, err, "failed to load payment", slog.Int64("order.id", orderID))
	}
	return result, nil
}

func (s *Service) UpdatePaymentStatus(ctx context.Context, caller principal.Principal, paymentID int64, status ordersdomain.PaymentStatus, transactionID string) (*ordersdomain.Payment, error) {
	ctx, span := s.tracer.Start(ctx, "PaymentService.UpdatePaymentStatus", trace.WithAttributes(
		attribute.Int64("payment.id", paymentID),
		attribute.String("payment.status", string(status)),
	))
	defer span.End()

	s.logInfo(ctx, "updating payment status", slog.Int64("payment.id", paymentID), slog.String("status", string(status)))
	result, err := s.payments.UpdatePaymentStatus(ctx, caller, paymentID, status, transactionID)
	if err != nil {
		return nil, s.handleError(ctx, span, err, "failed to update payment status", slog.Int64("payment.id", paymentID))
	}
	s.metrics.recordPayment(ctx, result.Status)
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
	orderStatus   metric.Int64Counter
	paymentStatus metric.Int64Counter
}

func newServiceMetrics(m metric.Meter) serviceMetrics {
	if m == nil {
		return serviceMetrics{}
	}
	orderStatus, _ := m.Int64Counter("orders.service.status_changes", metric.WithDescription("Order status changes by target status"))
	paymentStatus, _ := m.Int64Counter("orders.service.payment_status_changes", metric.WithDescription("Payment status changes by target status"))
	return serviceMetrics{orderStatus: orderStatus, paymentStatus: paymentStatus}
}

func (m serviceMetrics) recordStatus(ctx context.Context, status ordersdomain.Status) {
	if m.orderStatus != nil {
		m.orderStatus.Add(ctx, 1, metric.WithAttributes(attribute.String("order.status", string(status))))
	}
}

func (m serviceMetrics) recordPayment(ctx context.Context, status ordersdomain.PaymentStatus) {
	if m.paymentStatus != nil {
		m.paymentStatus.Add(ctx, 1, metric.WithAttributes(attribute.String("payment.status", string(status))))
	}
}

var (
	_ ordersports.Service        = (*Service)(nil)
	_ ordersports.PaymentService = (*Service)(nil)
)
