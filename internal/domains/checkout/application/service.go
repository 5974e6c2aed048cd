package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/tropicbliss/ESD-Project/internal/domains/checkout/domain"
	"github.com/tropicbliss/ESD-Project/internal/domains/checkout/ports"
	"github.com/tropicbliss/ESD-Project/internal/shared/fault"
)

// Service orchestrates the checkout bounded context use cases. The sagas themselves run in
// the configured orchestrator; the service owns validation, idempotent replay and the journal.
type Service struct {
	workflows   ports.WorkflowOrchestrator
	journal     ports.Journal
	idempotency ports.IdempotencyStore
	logger      *slog.Logger
	now         func() time.Time
	newID       func() string
	deadline    time.Duration
	inflight    *keyLocks
}

// Option configures the service.
type Option func(*Service)

// WithJournal records every saga execution.
func WithJournal(journal ports.Journal) Option {
	return func(s *Service) {
		s.journal = journal
	}
}

// WithIdempotencyStore enables replay of checkouts carrying an idempotency key.
func WithIdempotencyStore(store ports.IdempotencyStore) Option {
	return func(s *Service) {
		s.idempotency = store
	}
}

// WithLogger injects a slog logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithClock overrides the time source, useful in tests.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

// WithIDGenerator overrides how saga ids are minted.
func WithIDGenerator(newID func() string) Option {
	return func(s *Service) {
		if newID != nil {
			s.newID = newID
		}
	}
}

// WithSagaDeadline sets the aggregate deadline handed to every execution.
func WithSagaDeadline(d time.Duration) Option {
	return func(s *Service) {
		if d > 0 {
			s.deadline = d
		}
	}
}

// NewService wires the checkout service around an orchestrator.
func NewService(workflows ports.WorkflowOrchestrator, opts ...Option) *Service {
	s := &Service{
		workflows: workflows,
		logger:    slog.Default(),
		now:       time.Now,
		newID:     uuid.NewString,
		deadline:  DefaultDeadline,
		inflight:  newKeyLocks(),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	return s
}

// Checkout validates the request, replays a stored result for a repeated idempotency key,
// and otherwise runs the checkout saga. Failed checkouts are never stored for replay.
func (s *Service) Checkout(ctx context.Context, req domain.CheckoutRequest) (*domain.CheckoutResult, error) {
	if err := ValidateCheckout(req); err != nil {
		return nil, err
	}
	if s.workflows == nil {
		return nil, fault.Internal("checkout orchestrator not configured")
	}

	key := strings.TrimSpace(req.IdempotencyKey)
	var fingerprint string
	if key != "" && s.idempotency != nil {
		hash, err := FingerprintCheckout(req)
		if err != nil {
			return nil, fault.Wrap(fault.KindInternalError, "fingerprint checkout request", err)
		}
		fingerprint = hash
		release, err := s.inflight.acquire(ctx, key)
		if err != nil {
			return nil, timeoutOf(err)
		}
		defer release()
		existing, err := s.idempotency.Get(ctx, key)
		if err != nil {
			return nil, fault.Wrap(fault.KindInternalError, "load idempotency record", err)
		}
		if existing != nil {
			if existing.RequestHash != fingerprint {
				return nil, idempotencyConflict()
			}
			result := existing.Result
			s.logger.InfoContext(ctx, "replaying checkout", slog.String("idempotency.key", key), slog.String("appointment.id", result.AppointmentID))
			return &result, nil
		}
	}

	record := domain.SagaRecord{
		ID:          s.newID(),
		Kind:        domain.SagaCheckout,
		GroomerName: req.GroomerName,
		UserName:    req.UserName,
		Outcome:     domain.OutcomeRunning,
		StartedAt:   s.now().UTC(),
	}
	s.journalStart(ctx, record)

	outcome, err := s.workflows.RunCheckout(ctx, domain.CheckoutCommand{SagaID: record.ID, Request: req, Deadline: s.deadline})
	if err != nil {
		err = ensureKind(err, fault.KindInternalError)
		s.journalFinish(ctx, record, nil, domain.FailureOf(err))
		return nil, err
	}
	if outcome.Session != nil {
		record.TransactionID = outcome.Session.TransactionID()
	}
	if outcome.Failure != nil {
		s.journalFinish(ctx, record, outcome.Trail, outcome.Failure)
		return nil, outcome.Failure.Err()
	}
	if outcome.Result == nil {
		failure := &domain.Failure{Kind: fault.KindInternalError, Message: "checkout finished without a result"}
		s.journalFinish(ctx, record, outcome.Trail, failure)
		return nil, failure.Err()
	}
	result := *outcome.Result
	record.AppointmentID = result.AppointmentID
	record.TransactionID = result.TransactionID
	record.Total = result.TotalPrice
	s.journalFinish(ctx, record, outcome.Trail, nil)

	if fingerprint != "" {
		stored, err := s.idempotency.Save(ctx, ports.IdempotencyRecord{
			Key:         key,
			RequestHash: fingerprint,
			Result:      result,
			CreatedAt:   s.now().UTC(),
		})
		switch {
		case errors.Is(err, ports.ErrIdempotencyConflict):
			// Another process claimed the key for a different request while this one ran.
			return nil, idempotencyConflict().WithCompensation(s.discard(ctx, result))
		case err != nil:
			s.logger.WarnContext(ctx, "failed to store idempotency record", slog.String("idempotency.key", key), slog.String("error", err.Error()))
		case stored != nil && stored.Result.AppointmentID != "" && stored.Result.AppointmentID != result.AppointmentID:
			// Another process finished the same request first; this run is undone and the caller sees that one.
			s.discard(ctx, result)
			replay := stored.Result
			return &replay, nil
		}
	}
	return &result, nil
}

// Refund runs the refund saga for an appointment.
func (s *Service) Refund(ctx context.Context, req domain.RefundRequest) (*domain.RefundResult, error) {
	if err := ValidateRefund(req); err != nil {
		return nil, err
	}
	if s.workflows == nil {
		return nil, fault.Internal("refund orchestrator not configured")
	}
	record := domain.SagaRecord{
		ID:            s.newID(),
		Kind:          domain.SagaRefund,
		AppointmentID: req.AppointmentID,
		Outcome:       domain.OutcomeRunning,
		StartedAt:     s.now().UTC(),
	}
	s.journalStart(ctx, record)

	outcome, err := s.workflows.RunRefund(ctx, domain.RefundCommand{SagaID: record.ID, Request: req, Deadline: s.deadline})
	if err != nil {
		err = ensureKind(err, fault.KindInternalError)
		s.journalFinish(ctx, record, nil, domain.FailureOf(err))
		return nil, err
	}
	record.TransactionID = outcome.TransactionID
	if outcome.Failure != nil {
		s.journalFinish(ctx, record, outcome.Trail, outcome.Failure)
		return nil, outcome.Failure.Err()
	}
	if outcome.Result == nil {
		failure := &domain.Failure{Kind: fault.KindInternalError, Message: "refund finished without a result"}
		s.journalFinish(ctx, record, outcome.Trail, failure)
		return nil, failure.Err()
	}
	s.journalFinish(ctx, record, outcome.Trail, nil)
	result := *outcome.Result
	return &result, nil
}

// GetSaga loads one journal entry.
func (s *Service) GetSaga(ctx context.Context, id string) (*domain.SagaRecord, error) {
	if strings.TrimSpace(id) == "" {
		return nil, fmt.Errorf("%w: saga id is required", ErrInvalidInput)
	}
	if s.journal == nil {
		return nil, fault.NotFound("saga journal is not enabled")
	}
	record, err := s.journal.Get(ctx, id)
	if errors.Is(err, ports.ErrSagaNotFound) {
		return nil, fault.Wrap(fault.KindNotFound, "saga not found", err)
	}
	if err != nil {
		return nil, fault.Wrap(fault.KindInternalError, "load saga", err)
	}
	return record, nil
}

// ListSagas lists journal entries, optionally filtered by outcome.
func (s *Service) ListSagas(ctx context.Context, outcome domain.Outcome) ([]*domain.SagaRecord, error) {
	if outcome != "" {
		if _, err := domain.ParseOutcome(string(outcome)); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrInvalidInput, err)
		}
	}
	if s.journal == nil {
		return []*domain.SagaRecord{}, nil
	}
	records, err := s.journal.List(ctx, outcome)
	if err != nil {
		return nil, fault.Wrap(fault.KindInternalError, "list sagas", err)
	}
	return records, nil
}

func (s *Service) journalStart(ctx context.Context, record domain.SagaRecord) {
	if s.journal == nil {
		return
	}
	if err := s.journal.Start(ctx, record); err != nil {
		s.logger.WarnContext(ctx, "failed to journal saga start", slog.String("saga.id", record.ID), slog.String("error", err.Error()))
	}
}

func (s *Service) journalFinish(ctx context.Context, record domain.SagaRecord, trail domain.Trail, failure *domain.Failure) {
	if s.journal == nil {
		return
	}
	finished := s.now().UTC()
	record.Steps = append([]string{}, trail...)
	record.Outcome = domain.OutcomeOf(failure)
	record.FinishedAt = &finished
	if failure != nil {
		record.FailureKind = string(failure.Kind)
		record.FailureMessage = failure.Message
	}
	if err := s.journal.Finish(context.WithoutCancel(ctx), record); err != nil {
		s.logger.WarnContext(ctx, "failed to journal saga outcome", slog.String("saga.id", record.ID), slog.String("error", err.Error()))
	}
}

// discard undoes a completed checkout that lost its idempotency key by running the refund
// saga against its appointment. It reports the compensation outcome.
func (s *Service) discard(ctx context.Context, result domain.CheckoutResult) string {
	ctx = context.WithoutCancel(ctx)
	if _, err := s.Refund(ctx, domain.RefundRequest{AppointmentID: result.AppointmentID}); err != nil {
		s.logger.ErrorContext(ctx, "failed to undo duplicate checkout",
			slog.String("appointment.id", result.AppointmentID),
			slog.String("transaction.id", result.TransactionID),
			slog.String("error", err.Error()))
		return fault.CompensationFailed
	}
	s.logger.WarnContext(ctx, "undid duplicate checkout", slog.String("appointment.id", result.AppointmentID))
	return fault.CompensationApplied
}

func idempotencyConflict() *fault.Error {
	return fault.Wrap(fault.KindConflict, "idempotency key was already used with a different request", ports.ErrIdempotencyConflict)
}

var _ ports.Service = (*Service)(nil)
