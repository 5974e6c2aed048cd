package groomingserver

import (
	"errors"

	"github.com/gin-gonic/gin"

	accountsapp "github.com/tropicbliss/ESD-Project/internal/domains/accounts/application"
	bookingsapp "github.com/tropicbliss/ESD-Project/internal/domains/bookings/application"
	checkoutapp "github.com/tropicbliss/ESD-Project/internal/domains/checkout/application"
	apierrors "github.com/tropicbliss/ESD-Project/internal/shared/errors"
)

// Classified failures keep their originating status, local validation failures are 400 and
// anything else is 500.
var responder = apierrors.NewChainedResponder("", apierrors.MapFault, mapInvalidInput)

func respondProblem(c *gin.Context, problem apierrors.ProblemDetail) {
	responder.Respond(c, problem)
}

// respondBadRequest answers a malformed payload without calling any service.
func respondBadRequest(c *gin.Context, err error) {
	respondProblem(c, apierrors.ErrBadRequest.WithDetail(err.Error()))
}

func respondError(c *gin.Context, err error) {
	if err == nil {
		return
	}
	responder.RespondError(c, err)
}

func mapInvalidInput(err error) (apierrors.ProblemDetail, bool) {
	if errors.Is(err, checkoutapp.ErrInvalidInput) ||
		errors.Is(err, accountsapp.ErrInvalidInput) ||
		errors.Is(err, bookingsapp.ErrInvalidInput) {
		return apierrors.NewValidationProblem(err.Error(), nil), true
	}
	return apierrors.ProblemDetail{}, false
}
