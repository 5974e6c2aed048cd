package domain

import (
	"errors"
	"strings"

	"github.com/tropicbliss/ESD-Project/internal/shared/grooming"
)

var (
	ErrEmptyID      = errors.New("appointment id is required")
	ErrEmptyGroomer = errors.New("groomer name is required")
	ErrEmptyUser    = errors.New("user name is required")
)

// AppointmentSummary is a customer's view of one of their bookings.
type AppointmentSummary struct {
	ID                string   `json:"id"`
	GroomerName       string   `json:"groomerName"`
	StartDate         string   `json:"startDate"`
	EndDate           string   `json:"endDate"`
	GroomerPictureURL string   `json:"groomerPictureUrl"`
	PetNames          []string `json:"petNames"`
}

// CustomerAppointment is a groomer's view of a booking.
type CustomerAppointment struct {
	ID         string             `json:"id"`
	UserName   string             `json:"userName"`
	StartDate  string             `json:"startDate"`
	EndDate    string             `json:"endDate"`
	Pets       []grooming.Pet     `json:"pets"`
	PriceTier  grooming.PriceTier `json:"priceTier"`
	TotalPrice float64            `json:"totalPrice"`
}

// FutureCapacity is the number of free places a groomer has on a date.
type FutureCapacity struct {
	Date     string `json:"date"`
	Capacity int    `json:"capacity"`
}

// Comment is a review left for a groomer.
type Comment struct {
	ID       string `json:"id"`
	UserName string `json:"userName"`
	Title    string `json:"title"`
	Message  string `json:"message"`
	Rating   int    `json:"rating"`
}

// StatusChange moves an appointment along its lifecycle. From is the status the caller
// believes the appointment has now; it is optional.
type StatusChange struct {
	AppointmentID string
	Status        grooming.AppointmentStatus
	From          grooming.AppointmentStatus
}

// Validate checks the identifier and status locally so bad input never reaches the
// collaborator. A known From status must not move backwards.
func (c StatusChange) Validate() error {
	if strings.TrimSpace(c.AppointmentID) == "" {
		return ErrEmptyID
	}
	to, err := grooming.ParseStatus(string(c.Status))
	if err != nil {
		return err
	}
	if c.From == "" {
		return nil
	}
	from, err := grooming.ParseStatus(string(c.From))
	if err != nil {
		return err
	}
	return grooming.CanTransition(from, to)
}

// RequireName rejects blank path names.
func RequireName(name string, err error) error {
	if strings.TrimSpace(name) == "" {
		return err
	}
	return nil
}
