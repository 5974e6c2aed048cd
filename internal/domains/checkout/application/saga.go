package application

import (
	"context"
	"errors"
	"time"

	"github.com/tropicbliss/ESD-Project/internal/domains/checkout/domain"
	"github.com/tropicbliss/ESD-Project/internal/shared/fault"
)

const (
	// DefaultDeadline bounds a whole checkout or refund.
	DefaultDeadline = 30 * time.Second
	// DefaultCompensationTimeout bounds the compensating refund, which runs after the deadline may have passed.
	DefaultCompensationTimeout = 10 * time.Second
)

// Saga runs checkout and refund in-process. Steps run strictly in order and the first
// failure ends the execution.
type Saga struct {
	steps               *Steps
	deadline            time.Duration
	compensationTimeout time.Duration
}

// SagaOption configures the saga.
type SagaOption func(*Saga)

// WithDeadline sets the aggregate deadline used when a command carries none.
func WithDeadline(d time.Duration) SagaOption {
	return func(s *Saga) {
		if d > 0 {
			s.deadline = d
		}
	}
}

// WithCompensationTimeout bounds the compensating action.
func WithCompensationTimeout(d time.Duration) SagaOption {
	return func(s *Saga) {
		if d > 0 {
			s.compensationTimeout = d
		}
	}
}

// NewSaga builds an in-process saga over steps.
func NewSaga(steps *Steps, opts ...SagaOption) *Saga {
	s := &Saga{steps: steps, deadline: DefaultDeadline, compensationTimeout: DefaultCompensationTimeout}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	return s
}

// Checkout converts a request into a payment session and a persisted appointment. Once a
// payment session exists, any later failure (the deadline included) refunds or voids it
// exactly once before the failure is reported.
func (s *Saga) Checkout(ctx context.Context, cmd domain.CheckoutCommand) *domain.CheckoutOutcome {
	out := &domain.CheckoutOutcome{}
	if err := ValidateCheckout(cmd.Request); err != nil {
		return out.Fail(err)
	}
	ctx, cancel := context.WithTimeout(ctx, s.budget(cmd.Deadline))
	defer cancel()
	req := cmd.Request

	if err := live(ctx); err != nil {
		return out.Fail(err)
	}
	quote, err := s.steps.CheckAcceptance(ctx, req)
	err = deadlineAware(ctx, err)
	out.Trail.Add(domain.StepAccepts, err)
	if err != nil {
		return out.Fail(err)
	}

	if err := live(ctx); err != nil {
		return out.Fail(err)
	}
	days, err := s.steps.ResolveDuration(ctx, req)
	err = deadlineAware(ctx, err)
	out.Trail.Add(domain.StepDuration, err)
	if err != nil {
		return out.Fail(err)
	}

	price, total, err := ResolvePrice(quote, req.Tier, days)
	out.Trail.Add(domain.StepPrice, err)
	if err != nil {
		return out.Fail(err)
	}

	if err := live(ctx); err != nil {
		return out.Fail(err)
	}
	session, err := s.steps.CreatePaymentSession(ctx, domain.ChargeRequest{
		Reference:   cmd.SagaID,
		GroomerName: req.GroomerName,
		UserName:    req.UserName,
		Tier:        req.Tier,
		Price:       price,
		Days:        int(days),
		Total:       total,
	})
	err = deadlineAware(ctx, err)
	out.Trail.Add(domain.StepPayment, err)
	if err != nil {
		return out.Fail(err)
	}
	out.Session = session

	appointmentID, err := "", live(ctx)
	if err == nil {
		appointmentID, err = s.steps.PersistAppointment(ctx, domain.NewAppointment(req, total, *session))
		err = deadlineAware(ctx, err)
		out.Trail.Add(domain.StepAppointment, err)
	}
	if err != nil {
		return out.Fail(s.compensate(ctx, cmd.SagaID, session, err, &out.Trail))
	}

	out.Result = &domain.CheckoutResult{
		CheckoutURL:   session.URL,
		AppointmentID: appointmentID,
		TransactionID: session.TransactionID(),
		TotalPrice:    total,
		DayLength:     int(days),
	}
	return out
}

// Refund looks up the appointment's transaction, refunds it, then deletes the appointment.
// A refund failure leaves the appointment in place.
func (s *Saga) Refund(ctx context.Context, cmd domain.RefundCommand) *domain.RefundOutcome {
	out := &domain.RefundOutcome{}
	if err := ValidateRefund(cmd.Request); err != nil {
		return out.Fail(err)
	}
	ctx, cancel := context.WithTimeout(ctx, s.budget(cmd.Deadline))
	defer cancel()
	id := cmd.Request.AppointmentID

	tx, err := s.steps.LookupTransaction(ctx, id)
	err = deadlineAware(ctx, err)
	out.Trail.Add(domain.StepLookup, err)
	if err != nil {
		return out.Fail(err)
	}
	out.TransactionID = tx

	if err := live(ctx); err != nil {
		return out.Fail(err)
	}
	err = deadlineAware(ctx, s.steps.RefundPayment(ctx, tx, cmd.SagaID))
	out.Trail.Add(domain.StepRefund, err)
	if err != nil {
		return out.Fail(err)
	}

	if err := live(ctx); err != nil {
		return out.Fail(err)
	}
	err = deadlineAware(ctx, s.steps.DeleteAppointment(ctx, id))
	out.Trail.Add(domain.StepDelete, err)
	if err != nil {
		return out.Fail(err)
	}

	out.Result = &domain.RefundResult{AppointmentID: id, TransactionID: tx}
	return out
}

func (s *Saga) compensate(ctx context.Context, sagaID string, session *domain.PaymentSession, cause error, trail *domain.Trail) error {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.compensationTimeout)
	defer cancel()
	err := s.steps.CancelPayment(ctx, session.TransactionID(), sagaID)
	trail.Add(domain.StepCompensate, err)
	failure := fault.Classify(cause)
	if err != nil {
		return failure.WithCompensation(fault.CompensationFailed)
	}
	return failure.WithCompensation(fault.CompensationApplied)
}

func (s *Saga) budget(d time.Duration) time.Duration {
	if d > 0 {
		return d
	}
	return s.deadline
}

// live reports the aggregate deadline as a Timeout before a step starts.
func live(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return timeoutOf(err)
	}
	return nil
}

// deadlineAware reclassifies a step failure caused by the aggregate deadline.
func deadlineAware(ctx context.Context, err error) error {
	if err == nil {
		return nil
	}
	if ctxErr := ctx.Err(); ctxErr != nil {
		return timeoutOf(ctxErr)
	}
	return err
}

func timeoutOf(err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return fault.Wrap(fault.KindTimeout, "checkout deadline exceeded", err)
	}
	return fault.Wrap(fault.KindTimeout, "request cancelled", err)
}
