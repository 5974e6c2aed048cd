package domain

import (
	"errors"
	"fmt"
	"strings"

	"github.com/tropicbliss/ESD-Project/internal/shared/grooming"
)

var (
	ErrEmptyName      = errors.New("name is required")
	ErrEmptyContact   = errors.New("contact number is required")
	ErrEmptyEmail     = errors.New("email is required")
	ErrEmptyAddress   = errors.New("address is required")
	ErrEmptyPicture   = errors.New("picture url is required")
	ErrCapacity       = errors.New("capacity must be at least one")
	ErrNoAcceptedPets = errors.New("at least one accepted pet type is required")
	ErrNegativePrice  = errors.New("prices must be greater or equal to zero")
	ErrEmptyUpdate    = errors.New("nothing to update")
)

// User is a customer account.
type User struct {
	Name      string `json:"name"`
	ContactNo string `json:"contactNo"`
	Email     string `json:"email"`
}

// Validate checks the required fields.
func (u User) Validate() error {
	switch {
	case strings.TrimSpace(u.Name) == "":
		return ErrEmptyName
	case strings.TrimSpace(u.ContactNo) == "":
		return ErrEmptyContact
	case strings.TrimSpace(u.Email) == "":
		return ErrEmptyEmail
	}
	return nil
}

// UserUpdate changes a user's contact details; nil fields are left untouched.
type UserUpdate struct {
	ContactNo *string `json:"contactNo"`
	Email     *string `json:"email"`
}

// Groomer is a grooming business as listed by the groomer service.
type Groomer struct {
	Name         string             `json:"name"`
	PictureURL   string             `json:"pictureUrl"`
	Capacity     int                `json:"capacity,omitempty"`
	Address      string             `json:"address"`
	ContactNo    string             `json:"contactNo"`
	Email        string             `json:"email"`
	AcceptedPets []grooming.PetType `json:"acceptedPets"`
	Basic        int                `json:"basic"`
	Premium      int                `json:"premium"`
	Luxury       int                `json:"luxury"`
}

// Validate checks a groomer being registered.
func (g Groomer) Validate() error {
	switch {
	case strings.TrimSpace(g.Name) == "":
		return ErrEmptyName
	case strings.TrimSpace(g.PictureURL) == "":
		return ErrEmptyPicture
	case strings.TrimSpace(g.Address) == "":
		return ErrEmptyAddress
	case strings.TrimSpace(g.ContactNo) == "":
		return ErrEmptyContact
	case strings.TrimSpace(g.Email) == "":
		return ErrEmptyEmail
	case g.Capacity < 1:
		return ErrCapacity
	case len(g.AcceptedPets) == 0:
		return ErrNoAcceptedPets
	case g.Basic < 0 || g.Premium < 0 || g.Luxury < 0:
		return ErrNegativePrice
	}
	return validatePetTypes(g.AcceptedPets)
}

// GroomerUpdate is a partial groomer update; nil fields are left untouched.
type GroomerUpdate struct {
	PictureURL   *string             `json:"pictureUrl,omitempty"`
	Capacity     *int                `json:"capacity,omitempty"`
	Address      *string             `json:"address,omitempty"`
	ContactNo    *string             `json:"contactNo,omitempty"`
	Email        *string             `json:"email,omitempty"`
	AcceptedPets *[]grooming.PetType `json:"acceptedPets,omitempty"`
	Basic        *int                `json:"basic,omitempty"`
	Premium      *int                `json:"premium,omitempty"`
	Luxury       *int                `json:"luxury,omitempty"`
}

// Validate checks the supplied fields only.
func (u GroomerUpdate) Validate() error {
	if u == (GroomerUpdate{}) {
		return ErrEmptyUpdate
	}
	if u.Capacity != nil && *u.Capacity < 1 {
		return ErrCapacity
	}
	for _, price := range []*int{u.Basic, u.Premium, u.Luxury} {
		if price != nil && *price < 0 {
			return ErrNegativePrice
		}
	}
	if u.AcceptedPets != nil {
		if len(*u.AcceptedPets) == 0 {
			return ErrNoAcceptedPets
		}
		return validatePetTypes(*u.AcceptedPets)
	}
	return nil
}

// GroomerFilter narrows a groomer listing.
type GroomerFilter struct {
	PetType *grooming.PetType `json:"petType,omitempty"`
}

// Validate checks the pet type when one is given.
func (f GroomerFilter) Validate() error {
	if f.PetType == nil {
		return nil
	}
	_, err := grooming.ParsePetType(string(*f.PetType))
	return err
}

func validatePetTypes(types []grooming.PetType) error {
	for i, t := range types {
		if _, err := grooming.ParsePetType(string(t)); err != nil {
			return fmt.Errorf("acceptedPets[%d]: %w", i, err)
		}
	}
	return nil
}
