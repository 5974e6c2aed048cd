// Package appointments is the client for the appointments service.
package appointments

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/tropicbliss/ESD-Project/internal/clients/http/downstream"
	bookingsdomain "github.com/tropicbliss/ESD-Project/internal/domains/bookings/domain"
	checkoutdomain "github.com/tropicbliss/ESD-Project/internal/domains/checkout/domain"
	"github.com/tropicbliss/ESD-Project/internal/platform/httpclient"
	"github.com/tropicbliss/ESD-Project/internal/shared/fault"
	"github.com/tropicbliss/ESD-Project/internal/shared/grooming"
)

const service = "appointments"

// Client calls the appointments service.
type Client struct {
	http *downstream.Client
}

// NewClient builds an appointments client on the shared pool.
func NewClient(baseURL string, pool *httpclient.Pool) (*Client, error) {
	c, err := downstream.New(service, baseURL, pool)
	if err != nil {
		return nil, err
	}
	return &Client{http: c}, nil
}

type quantityRequest struct {
	StartTime string `json:"startTime"`
	EndTime   string `json:"endTime"`
}

type quantityResponse struct {
	DayLength int `json:"dayLength"`
}

// Duration asks the service how many billable days lie between start and end.
func (c *Client) Duration(ctx context.Context, start, end time.Time) (checkoutdomain.StayDuration, error) {
	resp, err := c.http.Do(ctx, downstream.Call{
		Method:  http.MethodPost,
		Path:    []downstream.Segment{downstream.Lit("quantity")},
		Body:    quantityRequest{StartTime: start.UTC().Format(time.RFC3339), EndTime: end.UTC().Format(time.RFC3339)},
		Failure: fault.KindInternalError,
	})
	if err != nil {
		return 0, err
	}
	if resp.Status == http.StatusBadRequest {
		return 0, resp.Failure(fault.KindInvalidRange)
	}
	if !resp.OK() {
		return 0, resp.Failure(fault.KindInternalError)
	}
	var body quantityResponse
	if err := resp.Decode(&body); err != nil {
		return 0, fault.Wrap(fault.KindInternalError, "decode stay duration", err)
	}
	days := checkoutdomain.StayDuration(body.DayLength)
	if err := days.Validate(); err != nil {
		return 0, fault.Wrap(fault.KindInvalidRange, err.Error(), err)
	}
	return days, nil
}

type createRequest struct {
	UserName      string             `json:"userName"`
	GroomerName   string             `json:"groomerName"`
	PetInfo       []grooming.Pet     `json:"petInfo"`
	PriceTier     grooming.PriceTier `json:"priceTier"`
	TotalPrice    float64            `json:"totalPrice"`
	StartTime     string             `json:"startTime"`
	EndTime       string             `json:"endTime"`
	TransactionID string             `json:"transactionId"`
}

type createResponse struct {
	ID string `json:"id"`
}

// Create persists a paid appointment and returns its identifier. Every failure is a
// PersistenceError; the service's status code is kept.
func (c *Client) Create(ctx context.Context, appt checkoutdomain.Appointment) (string, error) {
	resp, err := c.http.Do(ctx, downstream.Call{
		Method: http.MethodPost,
		Path:   []downstream.Segment{downstream.Lit("create")},
		Body: createRequest{
			UserName:      appt.UserName,
			GroomerName:   appt.GroomerName,
			PetInfo:       appt.Pets,
			PriceTier:     appt.Tier,
			TotalPrice:    appt.TotalPrice,
			StartTime:     appt.Start.UTC().Format(time.RFC3339),
			EndTime:       appt.End.UTC().Format(time.RFC3339),
			TransactionID: appt.TransactionID,
		},
		Failure: fault.KindPersistenceError,
	})
	if err != nil {
		return "", err
	}
	if !resp.OK() {
		return "", resp.Failure(fault.KindPersistenceError)
	}
	var body createResponse
	if err := resp.Decode(&body); err != nil || strings.TrimSpace(body.ID) == "" {
		return "", fault.Wrap(fault.KindPersistenceError, "appointments returned no id", err)
	}
	return body.ID, nil
}

type transactionResponse struct {
	TransactionID string `json:"transactionId"`
}

// Transaction looks up the payment transaction of an appointment.
func (c *Client) Transaction(ctx context.Context, appointmentID string) (string, error) {
	resp, err := c.http.Do(ctx, downstream.Call{
		Path:    []downstream.Segment{downstream.Lit("transaction"), downstream.Param("id", appointmentID)},
		Failure: fault.KindInternalError,
	})
	if err != nil {
		return "", err
	}
	if !resp.OK() {
		return "", resp.Failure(downstream.KindForStatus(resp.Status, fault.KindInternalError))
	}
	var body transactionResponse
	if err := resp.Decode(&body); err != nil {
		return "", fault.Wrap(fault.KindInternalError, "decode transaction", err)
	}
	if strings.TrimSpace(body.TransactionID) == "" {
		return "", fault.NotFound("appointment has no transaction")
	}
	return body.TransactionID, nil
}

// Delete removes an appointment. Every failure is a PersistenceError.
func (c *Client) Delete(ctx context.Context, appointmentID string) error {
	resp, err := c.http.Do(ctx, downstream.Call{
		Method:  http.MethodDelete,
		Path:    []downstream.Segment{downstream.Lit("delete"), downstream.Param("id", appointmentID)},
		Failure: fault.KindPersistenceError,
	})
	if err != nil {
		return err
	}
	if !resp.OK() {
		return resp.Failure(fault.KindPersistenceError)
	}
	return nil
}

type statusRequest struct {
	Status grooming.AppointmentStatus `json:"status"`
}

// ChangeStatus moves an appointment to a new lifecycle status.
func (c *Client) ChangeStatus(ctx context.Context, change bookingsdomain.StatusChange) error {
	resp, err := c.http.Do(ctx, downstream.Call{
		Method:  http.MethodPost,
		Path:    []downstream.Segment{downstream.Lit("status"), downstream.Param("id", change.AppointmentID)},
		Body:    statusRequest{Status: change.Status},
		Failure: fault.KindPersistenceError,
	})
	if err != nil {
		return err
	}
	if !resp.OK() {
		return resp.Failure(downstream.KindForStatus(resp.Status, fault.KindPersistenceError))
	}
	return nil
}

// ForUser lists a customer's appointments.
func (c *Client) ForUser(ctx context.Context, userName string) ([]bookingsdomain.AppointmentSummary, error) {
	var out []bookingsdomain.AppointmentSummary
	err := c.list(ctx, "user", "user_name", userName, &out)
	return out, err
}

// Arriving lists customers due to sign in with a groomer.
func (c *Client) Arriving(ctx context.Context, groomerName string) ([]bookingsdomain.CustomerAppointment, error) {
	var out []bookingsdomain.CustomerAppointment
	err := c.list(ctx, "signin", "groomer_name", groomerName, &out)
	return out, err
}

// Staying lists customers currently staying with a groomer.
func (c *Client) Staying(ctx context.Context, groomerName string) ([]bookingsdomain.CustomerAppointment, error) {
	var out []bookingsdomain.CustomerAppointment
	err := c.list(ctx, "staying", "groomer_name", groomerName, &out)
	return out, err
}

// Capacity lists a groomer's free places on upcoming dates.
func (c *Client) Capacity(ctx context.Context, groomerName string) ([]bookingsdomain.FutureCapacity, error) {
	var out []bookingsdomain.FutureCapacity
	err := c.list(ctx, "check", "groomer_name", groomerName, &out)
	return out, err
}

func (c *Client) list(ctx context.Context, route, param, value string, out any) error {
	resp, err := c.http.Do(ctx, downstream.Call{
		Path:    []downstream.Segment{downstream.Lit(route), downstream.Param(param, value)},
		Failure: fault.KindInternalError,
	})
	if err != nil {
		return err
	}
	if !resp.OK() {
		return resp.Failure(downstream.KindForStatus(resp.Status, fault.KindInternalError))
	}
	if err := resp.Decode(out); err != nil {
		return fault.Wrap(fault.KindInternalError, "decode appointments listing", err)
	}
	return nil
}
