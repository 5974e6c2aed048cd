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

	"github.com/tropicbliss/ESD-Project/internal/domains/bookings/domain"
	"github.com/tropicbliss/ESD-Project/internal/domains/bookings/ports"
	"github.com/tropicbliss/ESD-Project/internal/shared/fault"
)

const tracerName = "github.com/tropicbliss/ESD-Project/internal/domains/bookings/adapters/observability/service"

// Service decorates the bookings service with tracing, logging, and metrics.
type Service struct {
	inner   ports.Service
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

func New(inner ports.Service, opts ...Option) ports.Service {
	s := &Service{
		inner:   inner,
		tracer:  nooptrace.NewTracerProvider().Tracer(tracerName),
		logger:  slog.New(slog.NewTextHandler(io.Discard, nil)),
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
		s.logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return s
}

func (s *Service) ChangeStatus(ctx context.Context, change domain.StatusChange) error {
	ctx, span := s.tracer.Start(ctx, "Service.ChangeStatus", trace.WithAttributes(
		attribute.String("appointment.id", change.AppointmentID),
		attribute.String("appointment.status", string(change.Status)),
	))
	defer span.End()
	if err := s.inner.ChangeStatus(ctx, change); err != nil {
		return s.handleError(ctx, span, err, "failed to change appointment status", slog.String("appointment.id", change.AppointmentID))
	}
	s.metrics.recordStatusChange(ctx, string(change.Status))
	s.logger.LogAttrs(ctx, slog.LevelInfo, "appointment status changed",
		slog.String("appointment.id", change.AppointmentID),
		slog.String("appointment.status", string(change.Status)),
	)
	return nil
}

func (s *Service) UserAppointments(ctx context.Context, userName string) ([]domain.AppointmentSummary, error) {
	return listing(ctx, s, "Service.UserAppointments", attribute.String("user.name", userName), func(ctx context.Context) ([]domain.AppointmentSummary, error) {
		return s.inner.UserAppointments(ctx, userName)
	})
}

func (s *Service) ArrivingCustomers(ctx context.Context, groomerName string) ([]domain.CustomerAppointment, error) {
	return listing(ctx, s, "Service.ArrivingCustomers", attribute.String("groomer.name", groomerName), func(ctx context.Context) ([]domain.CustomerAppointment, error) {
		return s.inner.ArrivingCustomers(ctx, groomerName)
	})
}

func (s *Service) StayingCustomers(ctx context.Context, groomerName string) ([]domain.CustomerAppointment, error) {
	return listing(ctx, s, "Service.StayingCustomers", attribute.String("groomer.name", groomerName), func(ctx context.Context) ([]domain.CustomerAppointment, error) {
		return s.inner.StayingCustomers(ctx, groomerName)
	})
}

func (s *Service) FutureCapacity(ctx context.Context, groomerName string) ([]domain.FutureCapacity, error) {
	return listing(ctx, s, "Service.FutureCapacity", attribute.String("groomer.name", groomerName), func(ctx context.Context) ([]domain.FutureCapacity, error) {
		return s.inner.FutureCapacity(ctx, groomerName)
	})
}

func (s *Service) Comments(ctx context.Context, groomerName string) ([]domain.Comment, error) {
	return listing(ctx, s, "Service.Comments", attribute.String("groomer.name", groomerName), func(ctx context.Context) ([]domain.Comment, error) {
		return s.inner.Comments(ctx, groomerName)
	})
}

// listing traces one read model call and records the result size.
func listing[T any](ctx context.Context, s *Service, name string, attr attribute.KeyValue, call func(context.Context) ([]T, error)) ([]T, error) {
	ctx, span := s.tracer.Start(ctx, name, trace.WithAttributes(attr))
	defer span.End()
	list, err := call(ctx)
	if err != nil {
		return nil, s.handleError(ctx, span, err, "booking listing failed", slog.String("operation", name))
	}
	span.SetAttributes(attribute.Int("result.count", len(list)))
	return list, nil
}

func (s *Service) handleError(ctx context.Context, span trace.Span, err error, msg string, attrs ...slog.Attr) error {
	kind := fault.KindOf(err)
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
	span.SetAttributes(attribute.String("failure.kind", string(kind)))
	s.metrics.recordFailure(ctx, kind)
	attrs = append(attrs, slog.String("error", err.Error()), slog.String("failure.kind", string(kind)))
	s.logger.LogAttrs(ctx, slog.LevelError, msg, attrs...)
	return err
}

type serviceMetrics struct {
	statusChanges metric.Int64Counter
	failures      metric.Int64Counter
}

func newServiceMetrics(m metric.Meter) serviceMetrics {
	if m == nil {
		return serviceMetrics{}
	}
	statusChanges, _ := m.Int64Counter("bookings.service.status_changes", metric.WithDescription("Appointment status changes by target status"))
	failures, _ := m.Int64Counter("bookings.service.failures", metric.WithDescription("Failed booking operations by kind"))
	return serviceMetrics{statusChanges: statusChanges, failures: failures}
}

func (m serviceMetrics) recordStatusChange(ctx context.Context, status string) {
	if m.statusChanges == nil {
		return
	}
	m.statusChanges.Add(ctx, 1, metric.WithAttributes(attribute.String("appointment.status", status)))
}

func (m serviceMetrics) recordFailure(ctx context.Context, kind fault.Kind) {
	if m.failures == nil {
		return
	}
	m.failures.Add(ctx, 1, metric.WithAttributes(attribute.String("failure.kind", string(kind))))
}

var _ ports.Service = (*Service)(nil)
