package domain

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/tropicbliss/ESD-Project/internal/shared/grooming"
)

var (
	ErrMissingGroomer = errors.New("groomer name is required")
	ErrMissingUser    = errors.New("user name is required")
	ErrNoPets         = errors.New("at least one pet is required")
	ErrInvalidRange   = errors.New("the end date is earlier than the start date")
	ErrMissingTimes   = errors.New("start and end times are required")
	ErrShortStay      = errors.New("stay must be at least one day")
	ErrMissingID      = errors.New("appointment id is required")
)

// CheckoutRequest is a customer's request to book and pay for a stay.
type CheckoutRequest struct {
	GroomerName    string             `json:"groomerName"`
	Pets           []grooming.Pet     `json:"pets"`
	Start          time.Time          `json:"startTime"`
	End            time.Time          `json:"endTime"`
	UserName       string             `json:"userName"`
	Tier           grooming.PriceTier `json:"priceTier"`
	IdempotencyKey string             `json:"-"`
}

// Validate enforces the request invariants that can be checked without any collaborator.
// A range violation is reported as ErrInvalidRange so callers can classify it separately.
func (r CheckoutRequest) Validate() error {
	if strings.TrimSpace(r.GroomerName) == "" {
		return ErrMissingGroomer
	}
	if strings.TrimSpace(r.UserName) == "" {
		return ErrMissingUser
	}
	if len(r.Pets) == 0 {
		return ErrNoPets
	}
	for i, pet := range r.Pets {
		if err := pet.Validate(); err != nil {
			return fmt.Errorf("pets[%d]: %w", i, err)
		}
	}
	if _, err := grooming.ParsePriceTier(string(r.Tier)); err != nil {
		return err
	}
	if r.Start.IsZero() || r.End.IsZero() {
		return ErrMissingTimes
	}
	if !r.End.After(r.Start) {
		return ErrInvalidRange
	}
	return nil
}

// PetTypes returns the distinct pet types in request order.
func (r CheckoutRequest) PetTypes() []grooming.PetType {
	seen := make(map[grooming.PetType]struct{}, len(r.Pets))
	out := make([]grooming.PetType, 0, len(r.Pets))
	for _, pet := range r.Pets {
		if _, ok := seen[pet.Type]; ok {
			continue
		}
		seen[pet.Type] = struct{}{}
		out = append(out, pet.Type)
	}
	return out
}

// StayDuration is the number of billable days of a stay.
type StayDuration int

// Validate rejects stays shorter than a day.
func (d StayDuration) Validate() error {
	if d < 1 {
		return ErrShortStay
	}
	return nil
}

// ChargeRequest asks the payment provider for a checkout session.
type ChargeRequest struct {
	Reference   string             `json:"reference"`
	GroomerName string             `json:"groomerName"`
	UserName    string             `json:"userName"`
	Tier        grooming.PriceTier `json:"priceTier"`
	Price       grooming.TierPrice `json:"price"`
	Days        int                `json:"days"`
	Total       float64            `json:"total"`
}

// PaymentSession is the provider session created for one checkout attempt.
type PaymentSession struct {
	ID  string `json:"id"`
	URL string `json:"url"`
}

// TransactionID is the identifier stored on the appointment and used for refunds.
func (s PaymentSession) TransactionID() string { return s.ID }

// Appointment is the record persisted by the appointments collaborator.
type Appointment struct {
	ID            string                     `json:"id,omitempty"`
	GroomerName   string                     `json:"groomerName"`
	UserName      string                     `json:"userName"`
	Pets          []grooming.Pet             `json:"pets"`
	Tier          grooming.PriceTier         `json:"priceTier"`
	TotalPrice    float64                    `json:"totalPrice"`
	Start         time.Time                  `json:"startTime"`
	End           time.Time                  `json:"endTime"`
	TransactionID string                     `json:"transactionId"`
	Status        grooming.AppointmentStatus `json:"status"`
}

// NewAppointment builds the appointment for a paid checkout.
func NewAppointment(req CheckoutRequest, total float64, session PaymentSession) Appointment {
	pets := make([]grooming.Pet, len(req.Pets))
	copy(pets, req.Pets)
	for i := range pets {
		if pets[i].Gender == "" {
			pets[i].Gender = grooming.GenderUnspecified
		}
	}
	return Appointment{
		GroomerName:   req.GroomerName,
		UserName:      req.UserName,
		Pets:          pets,
		Tier:          req.Tier,
		TotalPrice:    total,
		Start:         req.Start,
		End:           req.End,
		TransactionID: session.TransactionID(),
		Status:        grooming.StatusAwaiting,
	}
}

// CheckoutResult is returned to the customer after a successful checkout.
type CheckoutResult struct {
	CheckoutURL   string  `json:"checkoutUrl"`
	AppointmentID string  `json:"appointmentId"`
	TransactionID string  `json:"transactionId"`
	TotalPrice    float64 `json:"totalPrice"`
	DayLength     int     `json:"dayLength"`
}

// RefundRequest reverses a completed checkout.
type RefundRequest struct {
	AppointmentID string `json:"appointmentId"`
}

// Validate checks the identifier is present.
func (r RefundRequest) Validate() error {
	if strings.TrimSpace(r.AppointmentID) == "" {
		return ErrMissingID
	}
	return nil
}

// RefundResult reports a completed refund.
type RefundResult struct {
	AppointmentID string `json:"appointmentId"`
	TransactionID string `json:"transactionId"`
}
