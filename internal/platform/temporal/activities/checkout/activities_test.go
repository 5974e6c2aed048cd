package checkout

import (
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/require"
	"go.temporal.io/sdk/temporal"

	"github.com/tropicbliss/ESD-Project/internal/shared/fault"
)

func TestToApplicationError_NeverRetryable(t *testing.T) {
	err := ToApplicationError(fault.PaymentError("provider unavailable").WithStatus(http.StatusBadGateway))

	var appErr *temporal.ApplicationError
	require.True(t, errors.As(err, &appErr))
	require.True(t, appErr.NonRetryable())
	require.Equal(t, string(fault.KindPaymentError), appErr.Type())

	back, ok := fault.As(FromActivityError(err))
	require.True(t, ok)
	require.Equal(t, fault.KindPaymentError, back.Kind)
	require.Equal(t, http.StatusBadGateway, back.HTTPStatus())
	require.Equal(t, "provider unavailable", back.Detail())
}

func TestToApplicationError_Nil(t *testing.T) {
	require.NoError(t, ToApplicationError(nil))
}
