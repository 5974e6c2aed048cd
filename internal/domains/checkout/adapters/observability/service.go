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

	"github.com/tropicbliss/ESD-Project/internal/domains/checkout/domain"
	"github.com/tropicbliss/ESD-Project/internal/domains/checkout/ports"
	"github.com/tropicbliss/ESD-Project/internal/shared/fault"
)

const tracerName = "github.com/tropicbliss/ESD-Project/internal/domains/checkout/adapters/observability/service"

// Service decorates the checkout application port with tracing, logging, and metrics.
type Service struct {
	inner   ports.Service
	tracer  trace.Tracer
	logger  *slog.Logger
	metrics serviceMetrics
}

type Option func(*Service)

// WithLogger injects a slog logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

// WithTracer injects a tracer implementation.
func WithTracer(tr trace.Tracer) Option {
	return func(s *Service) {
		s.tracer = tr
	}
}

// WithMeter injects the meter used to create service metrics instruments.
func WithMeter(m metric.Meter) Option {
	return func(s *Service) {
		s.metrics = newServiceMetrics(m)
	}
}

// New wires a decorator around the core service.
func New(inner ports.Service, opts ...Option) ports.Service {
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

// Checkout runs the checkout saga with instrumentation.
func (s *Service) Checkout(ctx context.Context, req domain.CheckoutRequest) (*domain.CheckoutResult, error) {
	ctx, span := s.startSpan(ctx, "Service.Checkout",
		attribute.String("groomer.name", req.GroomerName),
		attribute.String("price.tier", string(req.Tier)),
		attribute.Int("pets.count", len(req.Pets)),
		attribute.Bool("idempotency.key_present", req.IdempotencyKey != ""),
	)
	defer span.End()

	s.logInfo(ctx, "checkout started", slog.String("groomer.name", req.GroomerName), slog.String("user.name", req.UserName))
	result, err := s.inner.Checkout(ctx, req)
	if err != nil {
		s.metrics.recordCheckout(ctx, err)
		return nil, s.handleError(ctx, span, err, "checkout failed", slog.String("groomer.name", req.GroomerName))
	}
	s.metrics.recordCheckout(ctx, nil)
	span.SetAttributes(
		attribute.String("appointment.id", result.AppointmentID),
		attribute.Float64("checkout.total", result.TotalPrice),
	)
	s.logInfo(ctx, "checkout completed",
		slog.String("appointment.id", result.AppointmentID),
		slog.String("transaction.id", result.TransactionID),
		slog.Float64("total", result.TotalPrice),
	)
	return result, nil
}

// Refund runs the refund saga with instrumentation.
func (s *Service) Refund(ctx context.Context, req domain.RefundRequest) (*domain.RefundResult, error) {
	ctx, span := s.startSpan(ctx, "Service.Refund", attribute.String("appointment.id", req.AppointmentID))
	defer span.End()

	s.logInfo(ctx, "refund started", slog.String("appointment.id", req.AppointmentID))
	result, err := s.inner.Refund(ctx, req)
	s.metrics.recordRefund(ctx, err)
	if err != nil {
		return nil, s.handleError(ctx, span, err, "refund failed", slog.String("appointment.id", req.AppointmentID))
	}
	s.logInfo(ctx, "refund completed", slog.String("appointment.id", result.AppointmentID), slog.String("transaction.id", result.TransactionID))
	return result, nil
}

func (s *Service) GetSaga(ctx context.Context, id string) (*domain.SagaRecord, error) {
	ctx, span := s.startSpan(ctx, "Service.GetSaga", attribute.String("saga.id", id))
	defer span.End()
	record, err := s.inner.GetSaga(ctx, id)
	if err != nil {
		return nil, s.handleError(ctx, span, err, "failed to load saga", slog.String("saga.id", id))
	}
	return record, nil
}

func (s *Service) ListSagas(ctx context.Context, outcome domain.Outcome) ([]*domain.SagaRecord, error) {
	ctx, span := s.startSpan(ctx, "Service.ListSagas", attribute.String("saga.outcome", string(outcome)))
	defer span.End()
	records, err := s.inner.ListSagas(ctx, outcome)
	if err != nil {
		return nil, s.handleError(ctx, span, err, "failed to list sagas")
	}
	span.SetAttributes(attribute.Int("saga.result.count", len(records)))
	return records, nil
}

func (s *Service) startSpan(ctx context.Context, name string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	tracer := s.tracer
	if tracer == nil {
		tracer = nooptrace.NewTracerProvider().Tracer(tracerName)
	}
	return tracer.Start(ctx, name, trace.WithAttributes(attrs...))
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
		attrs = append(attrs, slog.String("error", err.Error()), slog.String("failure.kind", string(fault.KindOf(err))))
		if f, ok := fault.As(err); ok && f.Compensation != "" {
			attrs = append(attrs, slog.String("compensation", f.Compensation))
		}
	}
	s.logger.LogAttrs(ctx, slog.LevelError, msg, attrs...)
}

func (s *Service) handleError(ctx context.Context, span trace.Span, err error, msg string, attrs ...slog.Attr) error {
	if err == nil {
		return nil
	}
	if span != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		span.SetAttributes(attribute.String("failure.kind", string(fault.KindOf(err))))
	}
	s.logError(ctx, msg, err, attrs...)
	return err
}

func defaultLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type serviceMetrics struct {
	checkouts metric.Int64Counter
	refunds   metric.Int64Counter
}

func newServiceMetrics(m metric.Meter) serviceMetrics {
	if m == nil {
		return serviceMetrics{}
	}
	checkouts, _ := m.Int64Counter("checkout.service.checkouts", metric.WithDescription("Checkout sagas by outcome"))
	refunds, _ := m.Int64Counter("checkout.service.refunds", metric.WithDescription("Refund sagas by outcome"))
	return serviceMetrics{checkouts: checkouts, refunds: refunds}
}

func (m serviceMetrics) recordCheckout(ctx context.Context, err error) {
	addCounter(ctx, m.checkouts, 1, outcomeAttrs(err)...)
}

func (m serviceMetrics) recordRefund(ctx context.Context, err error) {
	addCounter(ctx, m.refunds, 1, outcomeAttrs(err)...)
}

func outcomeAttrs(err error) []attribute.KeyValue {
	if err == nil {
		return []attribute.KeyValue{attribute.String("outcome", string(domain.OutcomeCompleted))}
	}
	outcome := domain.OutcomeOf(domain.FailureOf(err))
	return []attribute.KeyValue{
		attribute.String("outcome", string(outcome)),
		attribute.String("failure.kind", string(fault.KindOf(err))),
	}
}

func addCounter(ctx context.Context, counter metric.Int64Counter, value int64, attrs ...attribute.KeyValue) {
	if counter == nil {
		return
	}
	counter.Add(ctx, value, metric.WithAttributes(attrs...))
}

var _ ports.Service = (*Service)(nil)
