package groomingserver

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	checkoutmapper "github.com/tropicbliss/ESD-Project/internal/domains/checkout/adapters/http/mapper"
	checkoutdomain "github.com/tropicbliss/ESD-Project/internal/domains/checkout/domain"
	checkoutports "github.com/tropicbliss/ESD-Project/internal/domains/checkout/ports"
)

// CheckoutAPI serves the checkout and refund sagas and their journal.
type CheckoutAPI struct {
	service checkoutports.Service
}

func NewCheckoutAPI(service checkoutports.Service) CheckoutAPI {
	return CheckoutAPI{service: service}
}

// Post /checkout
// Books a stay and opens a payment session. With ?redirect=true the client is sent to the
// payment page.
func (api *CheckoutAPI) Checkout(c *gin.Context) {
	var payload checkoutmapper.Checkout
	if err := c.ShouldBindJSON(&payload); err != nil {
		respondBadRequest(c, err)
		return
	}
	req, err := checkoutmapper.ToCheckoutRequest(payload, c.GetHeader(checkoutmapper.IdempotencyKeyHeader))
	if err != nil {
		respondBadRequest(c, err)
		return
	}
	result, err := api.service.Checkout(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}
	body := checkoutmapper.FromCheckoutResult(result)
	if redirect, _ := strconv.ParseBool(c.Query("redirect")); redirect && result.CheckoutURL != "" {
		c.Header("Location", result.CheckoutURL)
		c.JSON(http.StatusSeeOther, body)
		return
	}
	c.JSON(http.StatusOK, body)
}

// Post /refund
// Refunds the payment of an appointment, then deletes the appointment.
func (api *CheckoutAPI) Refund(c *gin.Context) {
	var payload checkoutmapper.Refund
	if err := c.ShouldBindJSON(&payload); err != nil {
		respondBadRequest(c, err)
		return
	}
	result, err := api.service.Refund(c.Request.Context(), checkoutmapper.ToRefundRequest(payload))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, checkoutmapper.FromRefundResult(result))
}

// Get /sagas/:id
func (api *CheckoutAPI) GetSaga(c *gin.Context) {
	record, err := api.service.GetSaga(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, checkoutmapper.FromSagaRecord(record))
}

// Get /sagas
// Lists journal entries, optionally filtered by ?outcome=.
func (api *CheckoutAPI) ListSagas(c *gin.Context) {
	records, err := api.service.ListSagas(c.Request.Context(), checkoutdomain.Outcome(c.Query("outcome")))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, checkoutmapper.FromSagaRecordList(records))
}
