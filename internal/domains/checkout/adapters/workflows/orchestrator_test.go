package workflows

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/tropicbliss/ESD-Project/internal/domains/checkout/application"
	"github.com/tropicbliss/ESD-Project/internal/domains/checkout/domain"
)

func TestBuildWorkflowID(t *testing.T) {
	first := buildWorkflowID("checkout", "key-1", "saga-a")
	again := buildWorkflowID("checkout", " key-1 ", "saga-b")
	require.Equal(t, first, again)
	require.True(t, strings.HasPrefix(first, "checkout-idem-"))
	require.Len(t, strings.TrimPrefix(first, "checkout-idem-"), 16)

	require.Equal(t, "refund-saga-a", buildWorkflowID("refund", "", "saga-a"))
}

func TestExecutionTimeoutCoversCompensation(t *testing.T) {
	require.Equal(t, 90*time.Second, executionTimeout(30*time.Second))
	require.Equal(t, application.DefaultDeadline+time.Minute, executionTimeout(0))
}

func TestInlineWorkflows_NotConfigured(t *testing.T) {
	var inline *InlineCheckoutWorkflows
	_, err := inline.RunCheckout(context.Background(), domain.CheckoutCommand{})
	require.Error(t, err)

	var temporal *TemporalCheckoutWorkflows
	_, err = temporal.RunRefund(context.Background(), domain.RefundCommand{})
	require.Error(t, err)
}
