package checkout

import (
	"context"
	"errors"

	"go.temporal.io/sdk/activity"
	"go.temporal.io/sdk/temporal"

	"github.com/tropicbliss/ESD-Project/internal/domains/checkout/application"
	"github.com/tropicbliss/ESD-Project/internal/domains/checkout/domain"
	"github.com/tropicbliss/ESD-Project/internal/shared/fault"
	"github.com/tropicbliss/ESD-Project/internal/shared/grooming"
)

const (
	CheckAcceptanceActivityName      = "checkout.activities.CheckAcceptance"
	ResolveDurationActivityName      = "checkout.activities.ResolveDuration"
	CreatePaymentSessionActivityName = "checkout.activities.CreatePaymentSession"
	PersistAppointmentActivityName   = "checkout.activities.PersistAppointment"
	// CancelPaymentActivityName is the compensation for a session whose appointment was never persisted.
	CancelPaymentActivityName     = "checkout.activities.CancelPayment"
	LookupTransactionActivityName = "checkout.activities.LookupTransaction"
	RefundPaymentActivityName     = "checkout.activities.RefundPayment"
	DeleteAppointmentActivityName = "checkout.activities.DeleteAppointment"
)

// PaymentReversal identifies a transaction to refund or void.
type PaymentReversal struct {
	TransactionID  string
	IdempotencyKey string
}

// Activities exposes the checkout saga steps to Temporal.
type Activities struct {
	steps *application.Steps
}

// NewActivities wires the checkout steps into the Temporal activities bundle.
func NewActivities(steps *application.Steps) *Activities {
	return &Activities{steps: steps}
}

func (a *Activities) CheckAcceptance(ctx context.Context, req domain.CheckoutRequest) (grooming.PriceQuote, error) {
	if err := a.ready(ctx); err != nil {
		return nil, err
	}
	logger := activity.GetLogger(ctx)
	logger.Info("CheckAcceptance activity started", "groomer", req.GroomerName)
	quote, err := a.steps.CheckAcceptance(ctx, req)
	if err != nil {
		logger.Error("CheckAcceptance activity failed", "groomer", req.GroomerName, "error", err)
		return nil, ToApplicationError(err)
	}
	return quote, nil
}

func (a *Activities) ResolveDuration(ctx context.Context, req domain.CheckoutRequest) (domain.StayDuration, error) {
	if err := a.ready(ctx); err != nil {
		return 0, err
	}
	days, err := a.steps.ResolveDuration(ctx, req)
	if err != nil {
		activity.GetLogger(ctx).Error("ResolveDuration activity failed", "error", err)
		return 0, ToApplicationError(err)
	}
	return days, nil
}

func (a *Activities) CreatePaymentSession(ctx context.Context, charge domain.ChargeRequest) (*domain.PaymentSession, error) {
	if err := a.ready(ctx); err != nil {
		return nil, err
	}
	logger := activity.GetLogger(ctx)
	logger.Info("CreatePaymentSession activity started", "sagaId", charge.Reference, "days", charge.Days)
	session, err := a.steps.CreatePaymentSession(ctx, charge)
	if err != nil {
		logger.Error("CreatePaymentSession activity failed", "sagaId", charge.Reference, "error", err)
		return nil, ToApplicationError(err)
	}
	logger.Info("CreatePaymentSession activity completed", "sagaId", charge.Reference, "transactionId", session.TransactionID())
	return session, nil
}

func (a *Activities) PersistAppointment(ctx context.Context, appt domain.Appointment) (string, error) {
	if err := a.ready(ctx); err != nil {
		return "", err
	}
	logger := activity.GetLogger(ctx)
	id, err := a.steps.PersistAppointment(ctx, appt)
	if err != nil {
		logger.Error("PersistAppointment activity failed", "transactionId", appt.TransactionID, "error", err)
		return "", ToApplicationError(err)
	}
	logger.Info("PersistAppointment activity completed", "appointmentId", id)
	return id, nil
}

// CancelPayment refunds or voids the session. It runs once; a failure is reported as a
// failed compensation rather than retried.
func (a *Activities) CancelPayment(ctx context.Context, input PaymentReversal) error {
	if err := a.ready(ctx); err != nil {
		return err
	}
	logger := activity.GetLogger(ctx)
	logger.Info("CancelPayment activity started", "transactionId", input.TransactionID)
	if err := a.steps.CancelPayment(ctx, input.TransactionID, input.IdempotencyKey); err != nil {
		logger.Error("CancelPayment activity failed", "transactionId", input.TransactionID, "error", err)
		return ToApplicationError(err)
	}
	logger.Info("CancelPayment activity completed", "transactionId", input.TransactionID)
	return nil
}

func (a *Activities) LookupTransaction(ctx context.Context, appointmentID string) (string, error) {
	if err := a.ready(ctx); err != nil {
		return "", err
	}
	tx, err := a.steps.LookupTransaction(ctx, appointmentID)
	if err != nil {
		activity.GetLogger(ctx).Error("LookupTransaction activity failed", "appointmentId", appointmentID, "error", err)
		return "", ToApplicationError(err)
	}
	return tx, nil
}

func (a *Activities) RefundPayment(ctx context.Context, input PaymentReversal) error {
	if err := a.ready(ctx); err != nil {
		return err
	}
	logger := activity.GetLogger(ctx)
	logger.Info("RefundPayment activity started", "transactionId", input.TransactionID)
	if err := a.steps.RefundPayment(ctx, input.TransactionID, input.IdempotencyKey); err != nil {
		logger.Error("RefundPayment activity failed", "transactionId", input.TransactionID, "error", err)
		return ToApplicationError(err)
	}
	return nil
}

func (a *Activities) DeleteAppointment(ctx context.Context, appointmentID string) error {
	if err := a.ready(ctx); err != nil {
		return err
	}
	if err := a.steps.DeleteAppointment(ctx, appointmentID); err != nil {
		activity.GetLogger(ctx).Error("DeleteAppointment activity failed", "appointmentId", appointmentID, "error", err)
		return ToApplicationError(err)
	}
	return nil
}

func (a *Activities) ready(ctx context.Context) error {
	if a == nil || a.steps == nil {
		activity.GetLogger(ctx).Error("checkout activities not initialized")
		return temporal.NewNonRetryableApplicationError("checkout activities not initialized", string(fault.KindInternalError), nil)
	}
	return nil
}

// ToApplicationError carries a classified failure across the activity boundary as a
// non-retryable error: the kind becomes the error type and the observed downstream status
// travels as the detail.
func ToApplicationError(err error) error {
	if err == nil {
		return nil
	}
	f := fault.Classify(err)
	var cause error
	if f.Err != nil && !errors.Is(f.Err, context.DeadlineExceeded) {
		cause = errors.New(f.Err.Error())
	}
	return temporal.NewNonRetryableApplicationError(f.Detail(), string(f.Kind), cause, f.Status)
}

// FromActivityError turns an activity failure back into a classified failure. Activity
// timeouts count as the saga deadline expiring.
func FromActivityError(err error) error {
	if err == nil {
		return nil
	}
	var appErr *temporal.ApplicationError
	if errors.As(err, &appErr) {
		f := fault.New(fault.Kind(appErr.Type()), appErr.Message())
		if f.Kind == "" {
			f.Kind = fault.KindInternalError
		}
		if appErr.HasDetails() {
			var status int
			if detailErr := appErr.Details(&status); detailErr == nil {
				f = f.WithStatus(status)
			}
		}
		return f
	}
	var timeoutErr *temporal.TimeoutError
	if errors.As(err, &timeoutErr) {
		return fault.Wrap(fault.KindTimeout, "checkout deadline exceeded", err)
	}
	var canceledErr *temporal.CanceledError
	if errors.As(err, &canceledErr) {
		return fault.Wrap(fault.KindTimeout, "request cancelled", err)
	}
	return fault.Wrap(fault.KindInternalError, err.Error(), err)
}
