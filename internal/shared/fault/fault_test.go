package fault

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestHTTPStatus_PrefersDownstreamStatus(t *testing.T) {
	err := PersistenceError("appointment cannot be found").WithStatus(http.StatusNotFound)
	require.Equal(t, http.StatusNotFound, err.HTTPStatus())

	require.Equal(t, http.StatusInternalServerError, PersistenceError("boom").HTTPStatus())
	require.Equal(t, http.StatusGatewayTimeout, Timeout("slow").HTTPStatus())
	require.Equal(t, http.StatusBadRequest, InvalidRange("bad").HTTPStatus())
}

func TestKindOf_ThroughWrapping(t *testing.T) {
	wrapped := fmt.Errorf("checkout: %w", Rejected("pet type not accepted"))
	require.Equal(t, KindRejected, KindOf(wrapped))
	require.True(t, errors.Is(wrapped, Rejected("")))
	require.False(t, errors.Is(wrapped, NotFound("")))

	require.Equal(t, KindTimeout, KindOf(fmt.Errorf("call: %w", context.DeadlineExceeded)))
	require.Equal(t, KindInternalError, KindOf(errors.New("plain")))
	require.Equal(t, Kind(""), KindOf(nil))
}

func TestClassify_KeepsExistingClassification(t *testing.T) {
	original := PaymentError("card declined").WithStatus(http.StatusPaymentRequired)
	got := Classify(fmt.Errorf("wrapped: %w", original))
	require.Same(t, original, got)

	unknown := Classify(errors.New("socket closed"))
	require.Equal(t, KindInternalError, unknown.Kind)
	require.Equal(t, "socket closed", unknown.Detail())
}

func TestWithCompensation_DoesNotMutateOriginal(t *testing.T) {
	original := PersistenceError("insert failed")
	annotated := original.WithCompensation(CompensationApplied)
	require.Empty(t, original.Compensation)
	require.Equal(t, CompensationApplied, annotated.Compensation)
	require.Equal(t, "PersistenceError: insert failed", annotated.Error())
}
