package groomingserver

import (
	"net/http"

	"github.com/gin-gonic/gin"

	bookingsdomain "github.com/tropicbliss/ESD-Project/internal/domains/bookings/domain"
	bookingsports "github.com/tropicbliss/ESD-Project/internal/domains/bookings/ports"
	"github.com/tropicbliss/ESD-Project/internal/shared/grooming"
)

// BookingAPI serves appointment listings, capacity, comments and status changes.
type BookingAPI struct {
	service bookingsports.Service
}

func NewBookingAPI(service bookingsports.Service) BookingAPI {
	return BookingAPI{service: service}
}

type statusPayload struct {
	Status string `json:"status"`
	From   string `json:"from,omitempty"`
}

// Post /appointments/status/:id
func (api *BookingAPI) ChangeStatus(c *gin.Context) {
	var payload statusPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		respondBadRequest(c, err)
		return
	}
	change := bookingsdomain.StatusChange{AppointmentID: c.Param("id"), Status: grooming.AppointmentStatus(payload.Status), From: grooming.AppointmentStatus(payload.From)}
	if err := api.service.ChangeStatus(c.Request.Context(), change); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusOK)
}

// Get /appointments/user/:user_name
func (api *BookingAPI) UserAppointments(c *gin.Context) {
	list, err := api.service.UserAppointments(c.Request.Context(), c.Param("user_name"))
	respondList(c, list, err)
}

// Get /appointments/signin/:groomer_name
func (api *BookingAPI) ArrivingCustomers(c *gin.Context) {
	list, err := api.service.ArrivingCustomers(c.Request.Context(), c.Param("groomer_name"))
	respondList(c, list, err)
}

// Get /appointments/staying/:groomer_name
func (api *BookingAPI) StayingCustomers(c *gin.Context) {
	list, err := api.service.StayingCustomers(c.Request.Context(), c.Param("groomer_name"))
	respondList(c, list, err)
}

// Get /capacity/check/:groomer_name
func (api *BookingAPI) FutureCapacity(c *gin.Context) {
	list, err := api.service.FutureCapacity(c.Request.Context(), c.Param("groomer_name"))
	respondList(c, list, err)
}

// Get /comments/read/:groomer_name
func (api *BookingAPI) Comments(c *gin.Context) {
	list, err := api.service.Comments(c.Request.Context(), c.Param("groomer_name"))
	respondList(c, list, err)
}

func respondList[T any](c *gin.Context, list []T, err error) {
	if err != nil {
		respondError(c, err)
		return
	}
	if list == nil {
		list = []T{}
	}
	c.JSON(http.StatusOK, list)
}
