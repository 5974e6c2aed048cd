package workflows

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"time"

	oteltrace "go.opentelemetry.io/otel/trace"
	"go.temporal.io/api/serviceerror"
	"go.temporal.io/sdk/client"

	"github.com/tropicbliss/ESD-Project/internal/domains/checkout/application"
	"github.com/tropicbliss/ESD-Project/internal/domains/checkout/domain"
	"github.com/tropicbliss/ESD-Project/internal/domains/checkout/ports"
	checkoutworkflows "github.com/tropicbliss/ESD-Project/internal/platform/temporal/workflows/checkout"
)

var (
	_ ports.WorkflowOrchestrator = (*TemporalCheckoutWorkflows)(nil)
	_ ports.WorkflowOrchestrator = (*InlineCheckoutWorkflows)(nil)
)

// TemporalCheckoutWorkflows starts the checkout and refund sagas on a Temporal cluster.
type TemporalCheckoutWorkflows struct {
	client    client.Client
	taskQueue string
}

// NewTemporalCheckoutWorkflows wires a Temporal client into the orchestrator.
func NewTemporalCheckoutWorkflows(c client.Client) *TemporalCheckoutWorkflows {
	return &TemporalCheckoutWorkflows{client: c, taskQueue: checkoutworkflows.TaskQueue}
}

// RunCheckout starts the checkout workflow and waits for its outcome. A repeated idempotency
// key maps to the same workflow id, so a concurrent retry joins the running execution.
func (o *TemporalCheckoutWorkflows) RunCheckout(ctx context.Context, cmd domain.CheckoutCommand) (*domain.CheckoutOutcome, error) {
	if o == nil || o.client == nil {
		return nil, errors.New("temporal checkout workflows not configured")
	}
	traceComponent := workflowTraceComponent(ctx)
	workflowID := buildWorkflowID("checkout", cmd.Request.IdempotencyKey, cmd.SagaID)
	options := client.StartWorkflowOptions{
		ID:                       workflowID,
		TaskQueue:                o.taskQueue,
		WorkflowExecutionTimeout: executionTimeout(cmd.Deadline),
	}
	var outcome domain.CheckoutOutcome
	err := o.execute(ctx, options, cmd.Request.IdempotencyKey, &outcome,
		checkoutworkflows.CheckoutWorkflow,
		checkoutworkflows.CheckoutWorkflowInput{Command: cmd, TraceID: traceComponent})
	if err != nil {
		return nil, err
	}
	return &outcome, nil
}

// RunRefund starts the refund workflow and waits for its outcome.
func (o *TemporalCheckoutWorkflows) RunRefund(ctx context.Context, cmd domain.RefundCommand) (*domain.RefundOutcome, error) {
	if o == nil || o.client == nil {
		return nil, errors.New("temporal checkout workflows not configured")
	}
	traceComponent := workflowTraceComponent(ctx)
	options := client.StartWorkflowOptions{
		ID:                       buildWorkflowID("refund", "", cmd.SagaID),
		TaskQueue:                o.taskQueue,
		WorkflowExecutionTimeout: executionTimeout(cmd.Deadline),
	}
	var outcome domain.RefundOutcome
	err := o.execute(ctx, options, "", &outcome,
		checkoutworkflows.RefundWorkflow,
		checkoutworkflows.RefundWorkflowInput{Command: cmd, TraceID: traceComponent})
	if err != nil {
		return nil, err
	}
	return &outcome, nil
}

func (o *TemporalCheckoutWorkflows) execute(ctx context.Context, options client.StartWorkflowOptions, idempotencyKey string, result interface{}, workflow interface{}, input interface{}) error {
	run, err := o.client.ExecuteWorkflow(ctx, options, workflow, input)
	if err != nil {
		var alreadyStarted *serviceerror.WorkflowExecutionAlreadyStarted
		if errors.As(err, &alreadyStarted) && strings.TrimSpace(idempotencyKey) != "" {
			existingRun := o.client.GetWorkflow(ctx, options.ID, alreadyStarted.RunId)
			return existingRun.Get(ctx, result)
		}
		return err
	}
	return run.Get(ctx, result)
}

// InlineCheckoutWorkflows runs the sagas in-process without Temporal, useful for tests or dev fallbacks.
type InlineCheckoutWorkflows struct {
	saga *application.Saga
}

// NewInlineCheckoutWorkflows wraps the in-process saga.
func NewInlineCheckoutWorkflows(saga *application.Saga) *InlineCheckoutWorkflows {
	return &InlineCheckoutWorkflows{saga: saga}
}

// RunCheckout runs the checkout saga synchronously.
func (o *InlineCheckoutWorkflows) RunCheckout(ctx context.Context, cmd domain.CheckoutCommand) (*domain.CheckoutOutcome, error) {
	if o == nil || o.saga == nil {
		return nil, errors.New("inline checkout workflows not configured")
	}
	return o.saga.Checkout(ctx, cmd), nil
}

// RunRefund runs the refund saga synchronously.
func (o *InlineCheckoutWorkflows) RunRefund(ctx context.Context, cmd domain.RefundCommand) (*domain.RefundOutcome, error) {
	if o == nil || o.saga == nil {
		return nil, errors.New("inline checkout workflows not configured")
	}
	return o.saga.Refund(ctx, cmd), nil
}

func buildWorkflowID(kind, idempotencyKey, sagaID string) string {
	if key := strings.TrimSpace(idempotencyKey); key != "" {
		return fmt.Sprintf("%s-idem-%s", kind, hashIdempotencyKey(key))
	}
	return fmt.Sprintf("%s-%s", kind, sagaID)
}

func hashIdempotencyKey(key string) string {
	sum := sha256.Sum256([]byte(key))
	// Use the first 16 hex chars to keep workflow IDs readable while remaining deterministic.
	return hex.EncodeToString(sum[:8])
}

// executionTimeout leaves room for the compensation that may run after the saga deadline.
func executionTimeout(deadline time.Duration) time.Duration {
	if deadline <= 0 {
		deadline = application.DefaultDeadline
	}
	return deadline + time.Minute
}

func workflowTraceComponent(ctx context.Context) string {
	span := oteltrace.SpanFromContext(ctx)
	if span == nil {
		return ""
	}
	spanCtx := span.SpanContext()
	if !spanCtx.IsValid() {
		return ""
	}
	traceID := spanCtx.TraceID()
	if !traceID.IsValid() {
		return ""
	}
	return traceID.String()
}
