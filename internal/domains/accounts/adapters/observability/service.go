package observability

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
	nooptrace "go.opentelemetry.io/otel/trace/noop"

	"github.com/tropicbliss/ESD-Project/internal/domains/accounts/domain"
	"github.com/tropicbliss/ESD-Project/internal/domains/accounts/ports"
	"github.com/tropicbliss/ESD-Project/internal/shared/fault"
	"github.com/tropicbliss/ESD-Project/internal/shared/grooming"
)

const tracerName = "github.com/tropicbliss/ESD-Project/internal/domains/accounts/adapters/observability/service"

// Service decorates the accounts service with tracing, logging, and metrics.
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

// New wraps the core accounts service.
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

func (s *Service) CreateUser(ctx context.Context, user domain.User) error {
	ctx, span := s.startSpan(ctx, "Service.CreateUser", attribute.String("user.name", user.Name))
	defer span.End()
	if err := s.inner.CreateUser(ctx, user); err != nil {
		return s.handleError(ctx, span, err, "failed to create user", slog.String("user.name", user.Name))
	}
	s.metrics.recordRegistration(ctx, "user")
	s.logger.LogAttrs(ctx, slog.LevelInfo, "user created", slog.String("user.name", user.Name))
	return nil
}

func (s *Service) GetUser(ctx context.Context, name string) (*domain.User, error) {
	ctx, span := s.startSpan(ctx, "Service.GetUser", attribute.String("user.name", name))
	defer span.End()
	user, err := s.inner.GetUser(ctx, name)
	if err != nil {
		return nil, s.handleError(ctx, span, err, "failed to load user", slog.String("user.name", name))
	}
	return user, nil
}

func (s *Service) UpdateUser(ctx context.Context, name string, update domain.UserUpdate) error {
	ctx, span := s.startSpan(ctx, "Service.UpdateUser", attribute.String("user.name", name))
	defer span.End()
	if err := s.inner.UpdateUser(ctx, name, update); err != nil {
		return s.handleError(ctx, span, err, "failed to update user", slog.String("user.name", name))
	}
	return nil
}

func (s *Service) CreateGroomer(ctx context.Context, groomer domain.Groomer) (json.RawMessage, error) {
	ctx, span := s.startSpan(ctx, "Service.CreateGroomer", attribute.String("groomer.name", groomer.Name))
	defer span.End()
	body, err := s.inner.CreateGroomer(ctx, groomer)
	if err != nil {
		return nil, s.handleError(ctx, span, err, "failed to create groomer", slog.String("groomer.name", groomer.Name))
	}
	s.metrics.recordRegistration(ctx, "groomer")
	s.logger.LogAttrs(ctx, slog.LevelInfo, "groomer created", slog.String("groomer.name", groomer.Name))
	return body, nil
}

func (s *Service) SearchGroomers(ctx context.Context, keyword string) ([]domain.Groomer, error) {
	ctx, span := s.startSpan(ctx, "Service.SearchGroomers", attribute.String("groomer.keyword", keyword))
	defer span.End()
	list, err := s.inner.SearchGroomers(ctx, keyword)
	if err != nil {
		return nil, s.handleError(ctx, span, err, "failed to search groomers")
	}
	span.SetAttributes(attribute.Int("groomer.result.count", len(list)))
	return list, nil
}

func (s *Service) GetGroomer(ctx context.Context, name string) (*domain.Groomer, error) {
	ctx, span := s.startSpan(ctx, "Service.GetGroomer", attribute.String("groomer.name", name))
	defer span.End()
	groomer, err := s.inner.GetGroomer(ctx, name)
	if err != nil {
		return nil, s.handleError(ctx, span, err, "failed to load groomer", slog.String("groomer.name", name))
	}
	return groomer, nil
}

func (s *Service) UpdateGroomer(ctx context.Context, name string, update domain.GroomerUpdate) error {
	ctx, span := s.startSpan(ctx, "Service.UpdateGroomer", attribute.String("groomer.name", name))
	defer span.End()
	if err := s.inner.UpdateGroomer(ctx, name, update); err != nil {
		return s.handleError(ctx, span, err, "failed to update groomer", slog.String("groomer.name", name))
	}
	return nil
}

func (s *Service) ListGroomers(ctx context.Context, filter domain.GroomerFilter) ([]domain.Groomer, error) {
	attrs := []attribute.KeyValue{}
	if filter.PetType != nil {
		attrs = append(attrs, attribute.String("groomer.pet_type", string(*filter.PetType)))
	}
	ctx, span := s.startSpan(ctx, "Service.ListGroomers", attrs...)
	defer span.End()
	list, err := s.inner.ListGroomers(ctx, filter)
	if err != nil {
		return nil, s.handleError(ctx, span, err, "failed to list groomers")
	}
	span.SetAttributes(attribute.Int("groomer.result.count", len(list)))
	return list, nil
}

func (s *Service) Accepts(ctx context.Context, name string, petTypes []grooming.PetType) (grooming.PriceQuote, error) {
	ctx, span := s.startSpan(ctx, "Service.Accepts",
		attribute.String("groomer.name", name),
		attribute.Int("pet_types.count", len(petTypes)),
	)
	defer span.End()
	quote, err := s.inner.Accepts(ctx, name, petTypes)
	if err != nil {
		return nil, s.handleError(ctx, span, err, "acceptance check failed", slog.String("groomer.name", name))
	}
	return quote, nil
}

func (s *Service) startSpan(ctx context.Context, name string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	return s.tracer.Start(ctx, name, trace.WithAttributes(attrs...))
}

func (s *Service) handleError(ctx context.Context, span trace.Span, err error, msg string, attrs ...slog.Attr) error {
	if err == nil {
		return nil
	}
	kind := fault.KindOf(err)
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
	span.SetAttributes(attribute.String("failure.kind", string(kind)))
	s.metrics.recordFailure(ctx, kind)
	attrs = append(attrs, slog.String("error", err.Error()), slog.String("failure.kind", string(kind)))
	s.logger.LogAttrs(ctx, slog.LevelError, msg, attrs...)
	return err
}

func defaultLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type serviceMetrics struct {
	registrations metric.Int64Counter
	failures      metric.Int64Counter
}

func newServiceMetrics(m metric.Meter) serviceMetrics {
	if m == nil {
		return serviceMetrics{}
	}
	registrations, _ := m.Int64Counter("accounts.service.registrations", metric.WithDescription("Accounts registered by type"))
	failures, _ := m.Int64Counter("accounts.service.failures", metric.WithDescription("Failed account operations by kind"))
	return serviceMetrics{registrations: registrations, failures: failures}
}

func (m serviceMetrics) recordRegistration(ctx context.Context, recipient string) {
	if m.registrations == nil {
		return
	}
	m.registrations.Add(ctx, 1, metric.WithAttributes(attribute.String("account.type", recipient)))
}

func (m serviceMetrics) recordFailure(ctx context.Context, kind fault.Kind) {
	if m.failures == nil {
		return
	}
	m.failures.Add(ctx, 1, metric.WithAttributes(attribute.String("failure.kind", string(kind))))
}

var _ ports.Service = (*Service)(nil)
