package checkout

import (
	"go.temporal.io/sdk/workflow"

	"github.com/tropicbliss/ESD-Project/internal/domains/checkout/domain"
	"github.com/tropicbliss/ESD-Project/internal/platform/temporal/sequences"
)

const (
	// CheckoutWorkflowName is the public identifier for registering the checkout saga.
	CheckoutWorkflowName = "checkout.workflows.Checkout"
	// RefundWorkflowName is the public identifier for registering the refund saga.
	RefundWorkflowName = "checkout.workflows.Refund"
	// TaskQueue is the queue consumed by the worker processing checkout workflows.
	TaskQueue = "CHECKOUT"
)

// CheckoutWorkflowInput captures the payload required to run one checkout.
type CheckoutWorkflowInput struct {
	Command domain.CheckoutCommand
	TraceID string
}

// RefundWorkflowInput captures the payload required to run one refund.
type RefundWorkflowInput struct {
	Command domain.RefundCommand
	TraceID string
}

// CheckoutWorkflow runs the checkout saga. Business failures are reported in the outcome so
// the caller sees the classified failure rather than a workflow error.
func CheckoutWorkflow(ctx workflow.Context, input CheckoutWorkflowInput) (*domain.CheckoutOutcome, error) {
	logger := workflow.GetLogger(ctx)
	logger.Info("CheckoutWorkflow started", withTraceID(input.TraceID, "sagaId", input.Command.SagaID)...)
	outcome := sequences.RunCheckoutSequence(ctx, input.Command)
	if outcome.Failure != nil {
		logger.Warn("CheckoutWorkflow finished with failure", withTraceID(input.TraceID,
			"sagaId", input.Command.SagaID,
			"kind", string(outcome.Failure.Kind),
			"compensation", outcome.Failure.Compensation)...)
		return outcome, nil
	}
	logger.Info("CheckoutWorkflow completed", withTraceID(input.TraceID, "sagaId", input.Command.SagaID, "appointmentId", outcome.Result.AppointmentID)...)
	return outcome, nil
}

// RefundWorkflow runs the refund saga.
func RefundWorkflow(ctx workflow.Context, input RefundWorkflowInput) (*domain.RefundOutcome, error) {
	logger := workflow.GetLogger(ctx)
	logger.Info("RefundWorkflow started", withTraceID(input.TraceID, "sagaId", input.Command.SagaID)...)
	outcome := sequences.RunRefundSequence(ctx, input.Command)
	if outcome.Failure != nil {
		logger.Warn("RefundWorkflow finished with failure", withTraceID(input.TraceID, "sagaId", input.Command.SagaID, "kind", string(outcome.Failure.Kind))...)
		return outcome, nil
	}
	logger.Info("RefundWorkflow completed", withTraceID(input.TraceID, "sagaId", input.Command.SagaID)...)
	return outcome, nil
}

func withTraceID(traceID string, keyvals ...interface{}) []interface{} {
	if traceID == "" {
		return keyvals
	}
	return append(keyvals, "traceId", traceID)
}
