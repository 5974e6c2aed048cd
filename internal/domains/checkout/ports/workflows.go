package ports

import (
	"context"

	"github.com/tropicbliss/ESD-Project/internal/domains/checkout/domain"
)

// WorkflowOrchestrator executes the checkout and refund sagas. Business failures are
// reported in the outcome; the error return is reserved for the orchestrator itself failing.
type WorkflowOrchestrator interface {
	RunCheckout(ctx context.Context, cmd domain.CheckoutCommand) (*domain.CheckoutOutcome, error)
	RunRefund(ctx context.Context, cmd domain.RefundCommand) (*domain.RefundOutcome, error)
}
