package sequences

import (
	"time"

	"go.temporal.io/sdk/temporal"
	"go.temporal.io/sdk/workflow"

	"github.com/tropicbliss/ESD-Project/internal/domains/checkout/application"
	"github.com/tropicbliss/ESD-Project/internal/domains/checkout/domain"
	checkoutactivities "github.com/tropicbliss/ESD-Project/internal/platform/temporal/activities/checkout"
	"github.com/tropicbliss/ESD-Project/internal/shared/fault"
	"github.com/tropicbliss/ESD-Project/internal/shared/grooming"
)

// CompensationTimeout bounds the single attempt of the compensating refund.
const CompensationTimeout = 10 * time.Second

// budget tracks the aggregate deadline of one saga in workflow time.
type budget struct {
	deadline time.Time
}

func newBudget(ctx workflow.Context, d time.Duration) budget {
	if d <= 0 {
		d = application.DefaultDeadline
	}
	return budget{deadline: workflow.Now(ctx).Add(d)}
}

// forward returns activity options for a forward step bounded by what is left of the deadline.
// Forward steps are attempted once.
func (b budget) forward(ctx workflow.Context) (workflow.Context, error) {
	remaining := b.deadline.Sub(workflow.Now(ctx))
	if remaining <= 0 {
		return ctx, fault.Timeout("checkout deadline exceeded")
	}
	return workflow.WithActivityOptions(ctx, workflow.ActivityOptions{
		StartToCloseTimeout:    remaining,
		ScheduleToCloseTimeout: remaining,
		RetryPolicy:            &temporal.RetryPolicy{MaximumAttempts: 1},
	}), nil
}

// RunCheckoutSequence executes the checkout steps in order. Once a payment session exists,
// any later failure runs the compensating refund exactly once, outside the deadline.
func RunCheckoutSequence(ctx workflow.Context, cmd domain.CheckoutCommand) *domain.CheckoutOutcome {
	logger := workflow.GetLogger(ctx)
	out := &domain.CheckoutOutcome{}
	if err := application.ValidateCheckout(cmd.Request); err != nil {
		return out.Fail(err)
	}
	req := cmd.Request
	b := newBudget(ctx, cmd.Deadline)
	logger.Info("checkout sequence started", "sagaId", cmd.SagaID, "groomer", req.GroomerName)

	actCtx, err := b.forward(ctx)
	if err != nil {
		return out.Fail(err)
	}
	var quote grooming.PriceQuote
	err = checkoutactivities.FromActivityError(workflow.ExecuteActivity(actCtx, checkoutactivities.CheckAcceptanceActivityName, req).Get(ctx, &quote))
	out.Trail.Add(domain.StepAccepts, err)
	if err != nil {
		return out.Fail(err)
	}

	if actCtx, err = b.forward(ctx); err != nil {
		return out.Fail(err)
	}
	var days domain.StayDuration
	err = checkoutactivities.FromActivityError(workflow.ExecuteActivity(actCtx, checkoutactivities.ResolveDurationActivityName, req).Get(ctx, &days))
	out.Trail.Add(domain.StepDuration, err)
	if err != nil {
		return out.Fail(err)
	}

	price, total, err := application.ResolvePrice(quote, req.Tier, days)
	out.Trail.Add(domain.StepPrice, err)
	if err != nil {
		return out.Fail(err)
	}

	if actCtx, err = b.forward(ctx); err != nil {
		return out.Fail(err)
	}
	charge := domain.ChargeRequest{
		Reference:   cmd.SagaID,
		GroomerName: req.GroomerName,
		UserName:    req.UserName,
		Tier:        req.Tier,
		Price:       price,
		Days:        int(days),
		Total:       total,
	}
	var session domain.PaymentSession
	err = checkoutactivities.FromActivityError(workflow.ExecuteActivity(actCtx, checkoutactivities.CreatePaymentSessionActivityName, charge).Get(ctx, &session))
	out.Trail.Add(domain.StepPayment, err)
	if err != nil {
		return out.Fail(err)
	}
	out.Session = &session

	var appointmentID string
	if actCtx, err = b.forward(ctx); err == nil {
		appt := domain.NewAppointment(req, total, session)
		err = checkoutactivities.FromActivityError(workflow.ExecuteActivity(actCtx, checkoutactivities.PersistAppointmentActivityName, appt).Get(ctx, &appointmentID))
		out.Trail.Add(domain.StepAppointment, err)
	}
	if err != nil {
		logger.Error("checkout sequence failed after payment; compensating", "sagaId", cmd.SagaID, "transactionId", session.TransactionID(), "error", err)
		return out.Fail(compensate(ctx, cmd.SagaID, session, err, &out.Trail))
	}

	out.Result = &domain.CheckoutResult{
		CheckoutURL:   session.URL,
		AppointmentID: appointmentID,
		TransactionID: session.TransactionID(),
		TotalPrice:    total,
		DayLength:     int(days),
	}
	logger.Info("checkout sequence completed", "sagaId", cmd.SagaID, "appointmentId", appointmentID)
	return out
}

func compensate(ctx workflow.Context, sagaID string, session domain.PaymentSession, cause error, trail *domain.Trail) error {
	compCtx, _ := workflow.NewDisconnectedContext(ctx)
	compCtx = workflow.WithActivityOptions(compCtx, workflow.ActivityOptions{
		StartToCloseTimeout: CompensationTimeout,
		RetryPolicy:         &temporal.RetryPolicy{MaximumAttempts: 1},
	})
	input := checkoutactivities.PaymentReversal{TransactionID: session.TransactionID(), IdempotencyKey: sagaID}
	err := checkoutactivities.FromActivityError(workflow.ExecuteActivity(compCtx, checkoutactivities.CancelPaymentActivityName, input).Get(compCtx, nil))
	trail.Add(domain.StepCompensate, err)
	failure := fault.Classify(cause)
	if err != nil {
		workflow.GetLogger(ctx).Error("compensation failed", "sagaId", sagaID, "transactionId", input.TransactionID, "error", err)
		return failure.WithCompensation(fault.CompensationFailed)
	}
	return failure.WithCompensation(fault.CompensationApplied)
}

// RunRefundSequence looks up, refunds, then deletes. A refund failure leaves the appointment in place.
func RunRefundSequence(ctx workflow.Context, cmd domain.RefundCommand) *domain.RefundOutcome {
	logger := workflow.GetLogger(ctx)
	out := &domain.RefundOutcome{}
	if err := application.ValidateRefund(cmd.Request); err != nil {
		return out.Fail(err)
	}
	id := cmd.Request.AppointmentID
	b := newBudget(ctx, cmd.Deadline)
	logger.Info("refund sequence started", "sagaId", cmd.SagaID, "appointmentId", id)

	actCtx, err := b.forward(ctx)
	if err != nil {
		return out.Fail(err)
	}
	var tx string
	err = checkoutactivities.FromActivityError(workflow.ExecuteActivity(actCtx, checkoutactivities.LookupTransactionActivityName, id).Get(ctx, &tx))
	out.Trail.Add(domain.StepLookup, err)
	if err != nil {
		return out.Fail(err)
	}
	out.TransactionID = tx

	if actCtx, err = b.forward(ctx); err != nil {
		return out.Fail(err)
	}
	reversal := checkoutactivities.PaymentReversal{TransactionID: tx, IdempotencyKey: cmd.SagaID}
	err = checkoutactivities.FromActivityError(workflow.ExecuteActivity(actCtx, checkoutactivities.RefundPaymentActivityName, reversal).Get(ctx, nil))
	out.Trail.Add(domain.StepRefund, err)
	if err != nil {
		logger.Error("refund sequence failed; appointment kept", "sagaId", cmd.SagaID, "appointmentId", id, "error", err)
		return out.Fail(err)
	}

	if actCtx, err = b.forward(ctx); err != nil {
		return out.Fail(err)
	}
	err = checkoutactivities.FromActivityError(workflow.ExecuteActivity(actCtx, checkoutactivities.DeleteAppointmentActivityName, id).Get(ctx, nil))
	out.Trail.Add(domain.StepDelete, err)
	if err != nil {
		return out.Fail(err)
	}

	out.Result = &domain.RefundResult{AppointmentID: id, TransactionID: tx}
	logger.Info("refund sequence completed", "sagaId", cmd.SagaID, "appointmentId", id)
	return out
}
